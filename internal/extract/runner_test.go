package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/joseph-ayodele/mtext/constants"
	"github.com/joseph-ayodele/mtext/internal/common"
	"github.com/joseph-ayodele/mtext/internal/normalize"
	"github.com/joseph-ayodele/mtext/internal/provider"
)

// fakeClient returns canned text per call, optionally failing on a given call
// number (1-based).
type fakeClient struct {
	id      provider.ID
	model   string
	respond func(call int) string
	failOn  int
	calls   int
	prompts []string
}

func (f *fakeClient) Name() provider.ID { return f.id }
func (f *fakeClient) Model() string     { return f.model }

func (f *fakeClient) ExtractText(_ context.Context, req provider.Request) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, req.Prompt)
	if f.failOn != 0 && f.calls == f.failOn {
		return "", errors.New("upstream boom")
	}
	return f.respond(f.calls), nil
}

func pdfDoc(pages int) normalize.Document {
	doc := normalize.Document{SourcePath: "report.pdf", Format: constants.PDF}
	for i := 1; i <= pages; i++ {
		doc.Pages = append(doc.Pages, normalize.PageImage{
			Index:    i,
			Data:     []byte(fmt.Sprintf("page-%d", i)),
			MIMEType: "image/png",
		})
	}
	return doc
}

func imageDoc() normalize.Document {
	return normalize.Document{
		SourcePath: "scan.png",
		Format:     constants.IMAGE,
		Pages:      []normalize.PageImage{{Index: 1, Data: []byte("img"), MIMEType: "image/png"}},
	}
}

func TestRun_PDFGetsPageMarkers(t *testing.T) {
	c := &fakeClient{id: provider.Gemini, model: "m", respond: func(call int) string {
		return fmt.Sprintf("text of page %d", call)
	}}
	r := NewRunner(Config{}, nil)

	results := r.Run(context.Background(), []provider.Client{c}, pdfDoc(3), "extract")
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	res := results[0]
	if res.Failed() {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	want := "--- Page 1 ---\ntext of page 1\n\n--- Page 2 ---\ntext of page 2\n\n--- Page 3 ---\ntext of page 3"
	if res.Text != want {
		t.Fatalf("text = %q, want %q", res.Text, want)
	}
	if res.Pages != 3 {
		t.Fatalf("pages = %d, want 3", res.Pages)
	}
}

func TestRun_ImageIsVerbatim(t *testing.T) {
	c := &fakeClient{id: provider.OpenAI, model: "m", respond: func(int) string { return "hello" }}
	r := NewRunner(Config{}, nil)

	res := r.Run(context.Background(), []provider.Client{c}, imageDoc(), "extract")[0]
	if res.Text != "hello" {
		t.Fatalf("image text = %q, want bare %q", res.Text, "hello")
	}
}

func TestRun_FailureIsIsolatedPerProvider(t *testing.T) {
	good := &fakeClient{id: provider.Gemini, model: "m", respond: func(int) string { return "ok" }}
	bad := &fakeClient{id: provider.OpenAI, model: "m", respond: func(int) string { return "ok" }, failOn: 2}
	r := NewRunner(Config{}, nil)

	results := r.Run(context.Background(), []provider.Client{good, bad}, pdfDoc(3), "extract")
	if results[0].Failed() {
		t.Fatalf("good provider should succeed: %v", results[0].Err)
	}

	if !results[1].Failed() {
		t.Fatal("bad provider should fail")
	}
	var perr *common.ProviderError
	if !errors.As(results[1].Err, &perr) {
		t.Fatalf("expected *common.ProviderError, got %T", results[1].Err)
	}
	if perr.Provider != "openai" || perr.Page != 2 {
		t.Fatalf("error should name openai page 2: %+v", perr)
	}
	// failed on page 2 of 3: no third call
	if bad.calls != 2 {
		t.Fatalf("bad provider called %d times, want 2", bad.calls)
	}
}

func TestRun_Deterministic(t *testing.T) {
	mk := func() *fakeClient {
		return &fakeClient{id: provider.Gemini, model: "m", respond: func(call int) string {
			return fmt.Sprintf("fixed %d", call)
		}}
	}
	r := NewRunner(Config{}, nil)

	a := r.Run(context.Background(), []provider.Client{mk()}, pdfDoc(2), "p")[0].Text
	b := r.Run(context.Background(), []provider.Client{mk()}, pdfDoc(2), "p")[0].Text
	if a != b {
		t.Fatalf("same inputs produced different text:\n%q\n%q", a, b)
	}
}

func TestRun_StructuredAppendsJSONInstruction(t *testing.T) {
	c := &fakeClient{id: provider.Gemini, model: "m", respond: func(int) string {
		return `{"text": "hello", "language": "en"}`
	}}
	r := NewRunner(Config{Structured: true}, nil)

	res := r.Run(context.Background(), []provider.Client{c}, imageDoc(), "extract")[0]
	if res.Failed() {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	if !strings.Contains(c.prompts[0], "JSON object") {
		t.Fatalf("prompt should carry the JSON instruction, got %q", c.prompts[0])
	}

	var doc DocumentFields
	if err := json.Unmarshal([]byte(res.Text), &doc); err != nil {
		t.Fatalf("result is not valid JSON: %v", err)
	}
	if doc.Provider != "gemini" || doc.Source != "scan.png" {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if len(doc.Pages) != 1 || doc.Pages[0].Page != 1 || doc.Pages[0].Text != "hello" || doc.Pages[0].Language != "en" {
		t.Fatalf("unexpected pages: %+v", doc.Pages)
	}
}

func TestRun_StructuredAcceptsFencedJSON(t *testing.T) {
	c := &fakeClient{id: provider.Anthropic, model: "m", respond: func(int) string {
		return "```json\n{\"text\": \"fenced\"}\n```"
	}}
	r := NewRunner(Config{Structured: true}, nil)

	res := r.Run(context.Background(), []provider.Client{c}, imageDoc(), "extract")[0]
	if res.Failed() {
		t.Fatalf("unexpected failure: %v", res.Err)
	}
	var doc DocumentFields
	if err := json.Unmarshal([]byte(res.Text), &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Pages[0].Text != "fenced" {
		t.Fatalf("text = %q", doc.Pages[0].Text)
	}
}

func TestRun_StructuredRejectsInvalidJSON(t *testing.T) {
	c := &fakeClient{id: provider.OpenAI, model: "m", respond: func(int) string {
		return "this is not json"
	}}
	r := NewRunner(Config{Structured: true}, nil)

	res := r.Run(context.Background(), []provider.Client{c}, pdfDoc(2), "extract")[0]
	if !res.Failed() {
		t.Fatal("expected failure for non-JSON response")
	}
	var perr *common.ProviderError
	if !errors.As(res.Err, &perr) || perr.Page != 1 {
		t.Fatalf("expected provider error naming page 1, got %v", res.Err)
	}
}

func TestRun_StructuredRejectsSchemaViolation(t *testing.T) {
	// valid JSON, but "text" is required
	c := &fakeClient{id: provider.OpenAI, model: "m", respond: func(int) string {
		return `{"language": "en"}`
	}}
	r := NewRunner(Config{Structured: true}, nil)

	res := r.Run(context.Background(), []provider.Client{c}, imageDoc(), "extract")[0]
	if !res.Failed() {
		t.Fatal("expected schema validation failure")
	}
}

func TestStripFences(t *testing.T) {
	cases := []struct{ in, want string }{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, c := range cases {
		if got := stripFences(c.in); got != c.want {
			t.Errorf("stripFences(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
