// Package normalize turns an input file into an ordered sequence of page
// images: one page for image files, one per PDF page via the external poppler
// pdftoppm binary.
package normalize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/joseph-ayodele/mtext/constants"
	"github.com/joseph-ayodele/mtext/internal/common"
)

// PageImage is one page's raw image bytes plus its 1-indexed position in the
// source document.
type PageImage struct {
	Index    int
	Data     []byte
	MIMEType string
}

// Document is the normalized form of an input file.
type Document struct {
	SourcePath string
	Format     string // constants.PDF | constants.IMAGE
	Pages      []PageImage
}

type Normalizer struct {
	cfg    common.RasterConfig
	runner Runner
	logger *slog.Logger
}

func NewNormalizer(cfg common.RasterConfig, logger *slog.Logger) *Normalizer {
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 150
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{cfg: cfg, runner: execRunner{}, logger: logger}
}

// Normalize picks a strategy based on file extension. Rasterization is
// all-or-nothing: a failing PDF yields no pages at all.
func (n *Normalizer) Normalize(ctx context.Context, path string) (Document, error) {
	ext := constants.NormalizeExt(filepath.Ext(path))
	n.logger.Debug("normalize.start", "path", path, "ext", ext)

	switch constants.MapExtToFormat(ext) {
	case constants.IMAGE:
		data, err := os.ReadFile(path)
		if err != nil {
			return Document{}, fmt.Errorf("read image %q: %w", path, err)
		}
		return Document{
			SourcePath: path,
			Format:     constants.IMAGE,
			Pages:      []PageImage{{Index: 1, Data: data, MIMEType: constants.MIMEForExt(ext)}},
		}, nil
	case constants.PDF:
		pages, err := n.rasterize(ctx, path)
		if err != nil {
			return Document{}, err
		}
		return Document{SourcePath: path, Format: constants.PDF, Pages: pages}, nil
	default:
		n.logger.Error("normalize.unsupported_extension", "extension", ext, "path", path)
		return Document{}, fmt.Errorf("%w: %q", common.ErrUnsupportedFileType, ext)
	}
}

// rasterize renders every PDF page to PNG with pdftoppm and reads the results
// back in ascending page order.
func (n *Normalizer) rasterize(ctx context.Context, path string) ([]PageImage, error) {
	tmpDir, err := os.MkdirTemp("", "mtext-pp-*")
	if err != nil {
		return nil, fmt.Errorf("%w: create temp dir: %v", common.ErrRasterization, err)
	}
	defer func(dir string) {
		if rerr := os.RemoveAll(dir); rerr != nil {
			n.logger.Warn("normalize.tmpdir_cleanup_failed", "dir", dir, "error", rerr)
		}
	}(tmpDir)

	bin := n.cfg.Pdftoppm
	if n.cfg.PopplerPath != "" {
		bin = filepath.Join(n.cfg.PopplerPath, bin)
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := n.runner.Run(ctx, bin, "-r", fmt.Sprintf("%d", n.cfg.DPI), "-png", path, prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: pdftoppm: %v: %s", common.ErrRasterization, err, common.Truncate(string(errb), 400))
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...); pdftoppm
	// zero-pads page numbers, so a lexical sort is page order
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: pdftoppm produced no pages for %q", common.ErrRasterization, path)
	}
	if n.cfg.MaxPages > 0 && len(matches) > n.cfg.MaxPages {
		n.logger.Warn("normalize.page_cap_applied", "rendered", len(matches), "cap", n.cfg.MaxPages)
		matches = matches[:n.cfg.MaxPages]
	}

	pages := make([]PageImage, 0, len(matches))
	for i, img := range matches {
		data, err := os.ReadFile(img)
		if err != nil {
			return nil, fmt.Errorf("%w: read rendered page %d: %v", common.ErrRasterization, i+1, err)
		}
		pages = append(pages, PageImage{Index: i + 1, Data: data, MIMEType: "image/png"})
	}

	n.logger.Debug("normalize.rasterized", "path", path, "pages", len(pages), "dpi", n.cfg.DPI)
	return pages, nil
}
