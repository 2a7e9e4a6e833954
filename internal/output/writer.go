// Package output writes per-provider extraction results to timestamped files.
package output

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/mtext/internal/common"
	"github.com/joseph-ayodele/mtext/internal/provider"
)

// timestampLayout mirrors the %Y%m%d-%H%M%S filenames the tool has always
// produced.
const timestampLayout = "20060102-150405"

type Writer struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger
}

func NewWriter(dir string, logger *slog.Logger) *Writer {
	if dir == "" {
		dir = "."
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{dir: dir, now: time.Now, logger: logger}
}

// Write stores content as {basename}_{provider}_extracted_{timestamp}{ext}
// in the writer's directory and returns the written path. ext includes the
// dot (".txt" or ".json").
func (w *Writer) Write(sourcePath string, id provider.ID, content string, ext string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
	name := fmt.Sprintf("%s_%s_extracted_%s%s", base, id, w.now().Format(timestampLayout), ext)
	path := filepath.Join(w.dir, name)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		w.logger.Error("output.write_failed", "path", path, "error", err)
		return "", fmt.Errorf("%w: %q: %v", common.ErrWrite, path, err)
	}

	w.logger.Info("output.written", "path", path, "bytes", len(content))
	return path, nil
}
