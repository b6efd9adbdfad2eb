// Package report renders climate summaries to PDF files.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/couchcryptid/climatescope/internal/domain"
)

// Writer renders reports into a single output directory.
type Writer struct {
	dir    string
	logger *slog.Logger
}

// NewWriter creates a Writer for dir. The directory is created on first render.
func NewWriter(dir string, logger *slog.Logger) *Writer {
	return &Writer{dir: dir, logger: logger}
}

// Dir returns the output directory.
func (w *Writer) Dir() string { return w.dir }

// FileName returns the report file name for a (country, year) pair. Path
// separators in country are replaced so the name stays inside the directory.
func FileName(country string, year int) string {
	safe := strings.NewReplacer("/", "_", `\`, "_").Replace(country)
	return fmt.Sprintf("%s_%d_report.pdf", safe, year)
}

// Path returns where the report for (country, year) is written.
func (w *Writer) Path(country string, year int) string {
	return filepath.Join(w.dir, FileName(country, year))
}

// fileMode leaves finished reports readable by other local users.
const fileMode os.FileMode = 0o644

// Render writes r as a one-page PDF and returns its path. An existing report
// for the same country and year is replaced atomically.
func (w *Writer) Render(ctx context.Context, r domain.Report) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create reports dir: %w", err)
	}

	pdf := build(r)

	tmp, err := os.CreateTemp(w.dir, ".report-*.pdf.tmp")
	if err != nil {
		return "", fmt.Errorf("create temp report: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := tmp.Chmod(fileMode); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("chmod temp report: %w", err)
	}
	if err := pdf.Output(tmp); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("render pdf: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp report: %w", err)
	}

	path := w.Path(r.Country, r.Year)
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("move report into place: %w", err)
	}

	w.logger.Debug("report written", "path", path, "country", r.Country, "year", r.Year)
	return path, nil
}

func build(r domain.Report) *fpdf.Fpdf {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(r.GeneratedAt)
	pdf.SetModificationDate(r.GeneratedAt)
	pdf.SetTitle(r.Title(), true)

	// Core fonts are cp1252; the title carries an en dash.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(200, 10, tr(r.Title()), "", 1, "C", false, 0, "")
	pdf.CellFormat(200, 10, tr(r.AverageLine()), "", 1, "L", false, 0, "")
	return pdf
}
