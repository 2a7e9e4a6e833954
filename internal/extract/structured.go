package extract

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/mtext/internal/normalize"
	"github.com/joseph-ayodele/mtext/internal/provider"
)

// structuredSuffix is appended to the prompt in --json mode.
const structuredSuffix = "\n\nReturn ONLY a JSON object of the form " +
	`{"text": "<extracted text>", "language": "<ISO 639-1 code>"}` +
	" with no commentary and no markdown fences."

// pageSchemaJSON constrains what a provider may return for one page.
const pageSchemaJSON = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"text":     {"type": "string", "minLength": 1},
		"language": {"type": "string", "minLength": 2, "maxLength": 8}
	},
	"required": ["text"]
}`

var pageSchema = jsonschema.MustCompileString("page.schema.json", pageSchemaJSON)

// PageFields is one validated page of structured output.
type PageFields struct {
	Page     int    `json:"page"`
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

// DocumentFields is the structured document written to disk in --json mode.
type DocumentFields struct {
	Source   string       `json:"source"`
	Provider string       `json:"provider"`
	Model    string       `json:"model"`
	Pages    []PageFields `json:"pages"`
}

// parsePage validates a provider's raw page response against the page schema.
// Models wrap JSON in markdown fences often enough that fences are stripped
// before parsing.
func parsePage(raw string, index int) (PageFields, error) {
	cleaned := stripFences(raw)

	var doc any
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return PageFields{}, fmt.Errorf("parse page json: %w", err)
	}
	if err := pageSchema.Validate(doc); err != nil {
		return PageFields{}, fmt.Errorf("page json schema validation: %w", err)
	}

	var fields PageFields
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return PageFields{}, fmt.Errorf("unmarshal page fields: %w", err)
	}
	fields.Page = index
	return fields, nil
}

func marshalDocument(doc normalize.Document, c provider.Client, pages []PageFields) (string, error) {
	out := DocumentFields{
		Source:   filepath.Base(doc.SourcePath),
		Provider: string(c.Name()),
		Model:    c.Model(),
		Pages:    pages,
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal structured document: %w", err)
	}
	return string(b), nil
}

// stripFences removes a surrounding markdown code fence, if present.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		return s
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
