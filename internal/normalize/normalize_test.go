package normalize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/mtext/constants"
	"github.com/joseph-ayodele/mtext/internal/common"
)

// stubRunner simulates pdftoppm: it writes pageCount fake PNGs next to the
// prefix it is given, or fails.
type stubRunner struct {
	pageCount int
	err       error
	lastBin   string
	lastArgs  []string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.lastBin = name
	s.lastArgs = args
	if s.err != nil {
		return nil, []byte("stub failure"), s.err
	}
	prefix := args[len(args)-1]
	for i := 1; i <= s.pageCount; i++ {
		path := fmt.Sprintf("%s-%02d.png", prefix, i)
		if err := os.WriteFile(path, []byte(fmt.Sprintf("png-page-%d", i)), 0o644); err != nil {
			return nil, nil, err
		}
	}
	return nil, nil, nil
}

func newTestNormalizer(cfg common.RasterConfig, r Runner) *Normalizer {
	n := NewNormalizer(cfg, nil)
	n.runner = r
	return n
}

func TestNormalize_ImageReturnsSinglePage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.JPG")
	if err := os.WriteFile(path, []byte("jpeg-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := NewNormalizer(common.RasterConfig{}, nil).Normalize(context.Background(), path)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if doc.Format != constants.IMAGE {
		t.Fatalf("format = %q, want IMAGE", doc.Format)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(doc.Pages))
	}
	p := doc.Pages[0]
	if p.Index != 1 || string(p.Data) != "jpeg-bytes" || p.MIMEType != "image/jpeg" {
		t.Fatalf("unexpected page: %+v", p)
	}
}

func TestNormalize_UnsupportedExtension(t *testing.T) {
	_, err := NewNormalizer(common.RasterConfig{}, nil).Normalize(context.Background(), "notes.docx")
	if !errors.Is(err, common.ErrUnsupportedFileType) {
		t.Fatalf("expected ErrUnsupportedFileType, got %v", err)
	}
}

func TestNormalize_PDFPagesInOrder(t *testing.T) {
	stub := &stubRunner{pageCount: 3}
	n := newTestNormalizer(common.RasterConfig{DPI: 150}, stub)

	doc, err := n.Normalize(context.Background(), "report.pdf")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if doc.Format != constants.PDF {
		t.Fatalf("format = %q, want PDF", doc.Format)
	}
	if len(doc.Pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(doc.Pages))
	}
	for i, p := range doc.Pages {
		if p.Index != i+1 {
			t.Errorf("page %d has index %d", i, p.Index)
		}
		if want := fmt.Sprintf("png-page-%d", i+1); string(p.Data) != want {
			t.Errorf("page %d data = %q, want %q", i, p.Data, want)
		}
		if p.MIMEType != "image/png" {
			t.Errorf("page %d mime = %q", i, p.MIMEType)
		}
	}
}

func TestNormalize_PopplerPathJoinsBinary(t *testing.T) {
	stub := &stubRunner{pageCount: 1}
	n := newTestNormalizer(common.RasterConfig{PopplerPath: filepath.Join("opt", "poppler", "bin")}, stub)

	if _, err := n.Normalize(context.Background(), "one.pdf"); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	want := filepath.Join("opt", "poppler", "bin", "pdftoppm")
	if stub.lastBin != want {
		t.Fatalf("binary = %q, want %q", stub.lastBin, want)
	}
}

func TestNormalize_RasterizerFailure(t *testing.T) {
	stub := &stubRunner{err: errors.New("exit status 1")}
	n := newTestNormalizer(common.RasterConfig{}, stub)

	_, err := n.Normalize(context.Background(), "broken.pdf")
	if !errors.Is(err, common.ErrRasterization) {
		t.Fatalf("expected ErrRasterization, got %v", err)
	}
}

func TestNormalize_ZeroPagesIsRasterizationError(t *testing.T) {
	stub := &stubRunner{pageCount: 0}
	n := newTestNormalizer(common.RasterConfig{}, stub)

	_, err := n.Normalize(context.Background(), "empty.pdf")
	if !errors.Is(err, common.ErrRasterization) {
		t.Fatalf("expected ErrRasterization for zero pages, got %v", err)
	}
}

func TestNormalize_MaxPagesCap(t *testing.T) {
	stub := &stubRunner{pageCount: 5}
	n := newTestNormalizer(common.RasterConfig{MaxPages: 2}, stub)

	doc, err := n.Normalize(context.Background(), "long.pdf")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("expected cap at 2 pages, got %d", len(doc.Pages))
	}
}
