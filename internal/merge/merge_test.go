package merge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suvichaar/quotepipe/internal/model"
	"github.com/suvichaar/quotepipe/internal/table"
)

func TestNormalizeID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"canonical passes through", "3-marie_curie-1", "3-marie_curie-1"},
		{"leading zeros stripped", "03-marie_curie-1", "3-marie_curie-1"},
		{"case folded", "3-Marie_Curie-1", "3-marie_curie-1"},
		{"trimmed", "  1-bob-1  ", "1-bob-1"},
		{"rest keeps its own hyphens", "02-jean-luc-2", "2-jean-luc-2"},
		{"all-zero ordinal", "000-x-1", "0-x-1"},
		{"no hyphen passes through lowered", "WeirdValue", "weirdvalue"},
		{"non-digit prefix passes through", "x1-bob-1", "x1-bob-1"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizeID(tt.in))
		})
	}
}

func TestNormalizeIDEquivalence(t *testing.T) {
	t.Parallel()
	assert.Equal(t, NormalizeID("03-Marie_Curie-1"), NormalizeID("3-marie_curie-1"))
}

func TestNormalizeIDIdempotent(t *testing.T) {
	t.Parallel()

	for _, id := range []string{"03-Marie_Curie-1", "1-bob-1", "garbage", "", "000-x-1"} {
		once := NormalizeID(id)
		assert.Equal(t, once, NormalizeID(once), "norm not idempotent for %q", id)
	}
}

func resultLineJSON(customID, content string) string {
	rec := `{"custom_id":` + jsonString(customID) +
		`,"response":{"body":{"choices":[{"message":{"content":` + jsonString(content) + `}}]}}}`
	return rec
}

func jsonString(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)
	return `"` + replacer.Replace(s) + `"`
}

func TestLoadResultsFencedContent(t *testing.T) {
	t.Parallel()

	content := "```json\n{\"storytitle\":\"T\",\"metadescription\":\"D\",\"metakeywords\":\"K\"}\n```"
	results, err := LoadResults(strings.NewReader(resultLineJSON("01-bob-1", content)))
	require.NoError(t, err)

	meta, ok := results["1-bob-1"]
	require.True(t, ok)
	assert.Equal(t, "T", meta.StoryTitle)
	assert.Equal(t, "D", meta.MetaDescription)
	assert.Equal(t, "K", meta.MetaKeywords)
}

func TestLoadResultsUnfencedContent(t *testing.T) {
	t.Parallel()

	content := `{"storytitle":"T","metadescription":"D","metakeywords":"K"}`
	results, err := LoadResults(strings.NewReader(resultLineJSON("1-bob-1", content)))
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestLoadResultsSkipsBadLines(t *testing.T) {
	t.Parallel()

	good := resultLineJSON("1-ann-1", `{"storytitle":"T","metadescription":"D","metakeywords":"K"}`)
	lines := []string{
		"not json at all",
		`{"response":{"body":{"choices":[{"message":{"content":"{}"}}]}}}`, // no custom_id
		`{"custom_id":"2-b-1"}`,                                            // no response path
		resultLineJSON("3-c-1", "not a json triple"),                       // bad inner payload
		good,
		"",
	}

	results, err := LoadResults(strings.NewReader(strings.Join(lines, "\n")))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results, "1-ann-1")
}

func TestLoadResultsOversizedLine(t *testing.T) {
	t.Parallel()

	good := resultLineJSON("1-ann-1", `{"storytitle":"T","metadescription":"D","metakeywords":"K"}`)
	huge := strings.Repeat("x", 5*1024*1024)

	results, err := LoadResults(strings.NewReader(huge + "\n" + good))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Contains(t, results, "1-ann-1")
}

func TestLoadResultsSingleLineFence(t *testing.T) {
	t.Parallel()

	content := "```json {\"storytitle\":\"T\",\"metadescription\":\"D\",\"metakeywords\":\"K\"}```"
	results, err := LoadResults(strings.NewReader(resultLineJSON("1-bob-1", content)))
	require.NoError(t, err)

	meta, ok := results["1-bob-1"]
	require.True(t, ok)
	assert.Equal(t, "T", meta.StoryTitle)
}

func TestLoadResultsLastWins(t *testing.T) {
	t.Parallel()

	first := resultLineJSON("1-a-1", `{"storytitle":"first","metadescription":"","metakeywords":""}`)
	second := resultLineJSON("01-A-1", `{"storytitle":"second","metadescription":"","metakeywords":""}`)

	results, err := LoadResults(strings.NewReader(first + "\n" + second))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "second", results["1-a-1"].StoryTitle)
}

func TestStripFence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"json tag", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"no trailing fence", "```json\n{\"a\":1}", `{"a":1}`},
		{"surrounding whitespace", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
		{"lone fence line", "```", ""},
		{"single line with json tag", "```json {\"a\":1}```", `{"a":1}`},
		{"single line bare fence", "```{\"a\":1}```", `{"a":1}`},
		{"single line no trailing fence", "```json {\"a\":1}", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, StripFence(tt.in))
		})
	}
}

func TestMergePreservesRowsAndOrder(t *testing.T) {
	t.Parallel()

	in := &table.Table{
		Header: []string{"custom_id", "Author"},
		Rows: [][]string{
			{"1-Bob-1", "Bob"},
			{"2-Ann-1", "Ann"},
			{"3-Cid-1", "Cid"},
		},
	}
	results := map[string]model.GeneratedMetadata{
		"1-bob-1": {StoryTitle: "T", MetaDescription: "D", MetaKeywords: "K"},
	}

	out, err := Merge(in, results)
	require.NoError(t, err)

	require.Len(t, out.Rows, len(in.Rows))
	assert.Equal(t, []string{"custom_id", "Author", "storytitle", "metadescription", "metakeywords"}, out.Header)

	// Matched row gets the triple.
	assert.Equal(t, []string{"1-Bob-1", "Bob", "T", "D", "K"}, out.Rows[0])
	// Unmatched rows get empty strings, never an error.
	assert.Equal(t, []string{"2-Ann-1", "Ann", "", "", ""}, out.Rows[1])
	assert.Equal(t, []string{"3-Cid-1", "Cid", "", "", ""}, out.Rows[2])
}

func TestMergeNormalizedJoin(t *testing.T) {
	t.Parallel()

	in := &table.Table{
		Header: []string{"custom_id"},
		Rows:   [][]string{{"1-Bob-1"}},
	}
	content := "```json\n{\"storytitle\":\"T\",\"metadescription\":\"D\",\"metakeywords\":\"K\"}\n```"
	results, err := LoadResults(strings.NewReader(resultLineJSON("01-bob-1", content)))
	require.NoError(t, err)

	out, err := Merge(in, results)
	require.NoError(t, err)
	assert.Equal(t, []string{"1-Bob-1", "T", "D", "K"}, out.Rows[0])
}

func TestMergeMissingCustomIDColumn(t *testing.T) {
	t.Parallel()

	_, err := Merge(&table.Table{Header: []string{"Author"}}, nil)
	var schemaErr *model.SchemaError
	require.ErrorAs(t, err, &schemaErr)
	assert.Equal(t, "custom_id", schemaErr.Column)
}
