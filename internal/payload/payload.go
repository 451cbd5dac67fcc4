// Package payload turns identified quote rows into the newline-delimited
// JSON batch file the generation service consumes.
package payload

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/suvichaar/quotepipe/internal/identify"
	"github.com/suvichaar/quotepipe/internal/model"
	"github.com/suvichaar/quotepipe/internal/structure"
	"github.com/suvichaar/quotepipe/internal/table"
)

// Fixed request metadata, passed through opaquely by the batch service.
const (
	Method   = "POST"
	Endpoint = "/chat/completions"

	systemPrompt = "You are a creative and SEO-savvy content writer."
)

// Message is one role/content pair in the request body.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Body is the model invocation embedded in a BatchRequest.
type Body struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// BatchRequest is one generation request, keyed by the record's custom_id.
type BatchRequest struct {
	CustomID string `json:"custom_id"`
	Method   string `json:"method"`
	URL      string `json:"url"`
	Body     Body   `json:"body"`
}

// Prompt renders the user prompt for one record: the author, a bulleted
// block of the surviving quotes in slot order, and the instruction to answer
// with exactly one JSON object holding the three metadata keys.
func Prompt(author string, quotes []string) string {
	lines := make([]string, 0, len(quotes))
	for _, q := range quotes {
		lines = append(lines, "- "+q)
	}
	block := strings.Join(lines, "\n")

	return fmt.Sprintf("You're given a series of quotes by %s.\n"+
		"Use them to generate metadata for a web story.\n"+
		"Quotes:\n%s\n\n"+
		"Please respond ONLY in this exact JSON format:\n"+
		"{\n  \"storytitle\": \"...\",\n  \"metadescription\": \"...\",\n  \"metakeywords\": \"...\"\n}",
		author, block)
}

// Build converts every row of an identified table into a BatchRequest, in
// row order. The table needs custom_id, Author, and the slot columns; absent
// and blank slots are dropped from the prompt.
func Build(t *table.Table, modelName string) ([]BatchRequest, error) {
	required := append([]string{identify.ColumnCustomID}, structure.Columns()...)
	if err := t.RequireColumns(required...); err != nil {
		return nil, err
	}

	idIdx, _ := t.Column(identify.ColumnCustomID)
	authorIdx, _ := t.Column(identify.ColumnAuthor)
	slotCols := structure.Columns()[:model.SlotCount]
	slotIdx := make([]int, len(slotCols))
	for i, col := range slotCols {
		slotIdx[i], _ = t.Column(col)
	}

	reqs := make([]BatchRequest, 0, len(t.Rows))
	for _, row := range t.Rows {
		var quotes []string
		for _, idx := range slotIdx {
			slot := model.SlotFromCell(row[idx])
			if slot.Absent {
				continue
			}
			quotes = append(quotes, slot.Text)
		}

		reqs = append(reqs, BatchRequest{
			CustomID: row[idIdx],
			Method:   Method,
			URL:      Endpoint,
			Body: Body{
				Model: modelName,
				Messages: []Message{
					{Role: "system", Content: systemPrompt},
					{Role: "user", Content: Prompt(row[authorIdx], quotes)},
				},
			},
		})
	}
	return reqs, nil
}

// EncodeJSONL writes the requests as newline-delimited JSON, one request per
// line in input order. json.Marshal never emits newlines, so no request can
// span lines.
func EncodeJSONL(w io.Writer, reqs []BatchRequest) error {
	for _, req := range reqs {
		data, err := json.Marshal(req)
		if err != nil {
			return eris.Wrapf(err, "payload: marshal request %s", req.CustomID)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return eris.Wrap(err, "payload: write request")
		}
	}
	return nil
}
