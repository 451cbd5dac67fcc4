// Package merge reconciles generation results with the identified table.
// Result files come from an external text-generating service, so nothing on
// the per-line level is trusted: every parse step is allowed to fail and
// only excludes that line.
package merge

import (
	"bufio"
	"encoding/json"
	"io"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/suvichaar/quotepipe/internal/identify"
	"github.com/suvichaar/quotepipe/internal/model"
	"github.com/suvichaar/quotepipe/internal/table"
)

// Merged output columns, appended to the identified table in this order.
var metadataColumns = []string{"storytitle", "metadescription", "metakeywords"}

var idPattern = regexp.MustCompile(`^(\d+)-(.+)$`)

// NormalizeID canonicalizes an identifier for comparison: lowercase, trim,
// and strip leading zeros from the ordinal when the value has the expected
// "<digits>-<rest>" shape. Values of any other shape pass through with only
// the lowercase/trim applied. The function is idempotent.
func NormalizeID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	m := idPattern.FindStringSubmatch(id)
	if m == nil {
		return id
	}
	ordinal := strings.TrimLeft(m[1], "0")
	if ordinal == "" {
		ordinal = "0"
	}
	return ordinal + "-" + m[2]
}

// resultLine mirrors the nested shape of one generation result record.
type resultLine struct {
	CustomID string `json:"custom_id"`
	Response struct {
		Body struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
		} `json:"body"`
	} `json:"response"`
}

// StripFence removes an optional fenced-code wrapper: a leading ``` (with or
// without a language tag) and a trailing ``` at the end. The wrapper may sit
// on its own lines or share a single line with the content. Text without a
// leading fence is returned trimmed but otherwise untouched.
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.Index(s, "\n"); idx != -1 {
		s = s[idx+1:]
	} else {
		// Single-line fence: drop the opening token and optional json tag.
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
	}
	if end := strings.LastIndex(s, "```"); end != -1 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}

// parseLine attempts one result line. It is total: any malformed line yields
// ok=false and contributes nothing. A line is usable only when it is valid
// JSON, carries a custom_id, has the nested content path, and the content
// (after fence stripping) parses as the metadata triple.
func parseLine(line string) (id string, meta model.GeneratedMetadata, ok bool) {
	var rec resultLine
	if err := json.Unmarshal([]byte(line), &rec); err != nil {
		return "", meta, false
	}
	if rec.CustomID == "" || len(rec.Response.Body.Choices) == 0 {
		return "", meta, false
	}

	content := StripFence(rec.Response.Body.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(content), &meta); err != nil {
		return "", meta, false
	}
	return NormalizeID(rec.CustomID), meta, true
}

// LoadResults reads a newline-delimited result file and returns metadata
// keyed by normalized identifier. Unusable lines are skipped and counted;
// duplicate identifiers overwrite, so the last parsed triple wins.
func LoadResults(r io.Reader) (map[string]model.GeneratedMetadata, error) {
	results := make(map[string]model.GeneratedMetadata)
	skipped := 0

	// ReadString instead of a Scanner: a line of any length is still just
	// one line, never a read error.
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			if id, meta, ok := parseLine(trimmed); ok {
				results[id] = meta
			} else {
				skipped++
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "merge: read results")
		}
	}

	if skipped > 0 {
		zap.L().Warn("merge: skipped unparseable result lines",
			zap.Int("skipped", skipped),
			zap.Int("parsed", len(results)),
		)
	}
	return results, nil
}

// Merge attaches the metadata triple to every row of the identified table,
// matching on normalized custom_id. Rows without a result get empty strings
// for all three fields; that is incompleteness, not an error. Row count and
// order are preserved, and the normalization key is never emitted.
func Merge(t *table.Table, results map[string]model.GeneratedMetadata) (*table.Table, error) {
	if err := t.RequireColumns(identify.ColumnCustomID); err != nil {
		return nil, err
	}
	idIdx, _ := t.Column(identify.ColumnCustomID)

	out := &table.Table{
		Header: append(append([]string(nil), t.Header...), metadataColumns...),
		Rows:   make([][]string, 0, len(t.Rows)),
	}
	for _, row := range t.Rows {
		meta := results[NormalizeID(row[idIdx])]
		merged := append([]string(nil), row...)
		merged = append(merged, meta.StoryTitle, meta.MetaDescription, meta.MetaKeywords)
		out.Rows = append(out.Rows, merged)
	}
	return out, nil
}
