// File path: internal/docs/extract.go
package docs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/quillon/docchat/internal/common"
)

// ErrUnsupported marks file types the extractor has no handler for. Callers
// skip such files with a warning rather than failing the whole build.
var ErrUnsupported = errors.New("unsupported file type")

var textExtensions = map[string]struct{}{
	".txt":  {},
	".md":   {},
	".csv":  {},
	".json": {},
	".py":   {},
	".js":   {},
	".html": {},
	".css":  {},
}

// ExtractText pulls raw text from a file, dispatching on extension. Text
// formats are read as UTF-8; PDFs are parsed page by page with newline
// separators. Unknown extensions yield ErrUnsupported.
func ExtractText(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := textExtensions[ext]; ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return string(data), nil
	}
	if ext == ".pdf" {
		return extractPDF(path)
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupported, ext)
}

func extractPDF(path string) (string, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer file.Close()
	var builder strings.Builder
	logger := common.Logger()
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("docs: failed to extract pdf page", "path", path, "page", pageNum, "error", err)
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}
