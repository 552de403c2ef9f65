package printsheet

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
)

// pdfDate is stamped on every document so rebuilds are byte-identical.
var pdfDate = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Item is one QR code to print.
type Item struct {
	Num string
	PNG []byte
}

// Options controls text rendering.
type Options struct {
	LabelPrefix string  // "Eintrag" yields "Eintrag 007"
	Title       string  // document title metadata
	FontSize    float64 // points
}

// DefaultOptions returns German labels in 9pt Helvetica.
func DefaultOptions() Options {
	return Options{LabelPrefix: "Eintrag", Title: "QR-Codes", FontSize: 9}
}

// Render draws items on grid and writes the PDF to w.
func Render(w io.Writer, grid Grid, items []Item, opts Options) error {
	if err := grid.Validate(); err != nil {
		return err
	}
	if opts.FontSize <= 0 {
		opts.FontSize = DefaultOptions().FontSize
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreationDate(pdfDate)
	pdf.SetModificationDate(pdfDate)
	pdf.SetCatalogSort(true)
	pdf.SetCreator("photosite", true)
	if opts.Title != "" {
		pdf.SetTitle(opts.Title, true)
	}
	pdf.SetFont("Helvetica", "", opts.FontSize)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	nums := make([]string, len(items))
	for i, it := range items {
		nums[i] = it.Num
	}
	pages, placements := grid.Place(nums)

	added := 0
	for i, p := range placements {
		for added <= p.Page {
			pdf.AddPage()
			added++
		}

		name := "qr-" + p.Num
		imgOpts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, imgOpts, bytes.NewReader(items[i].PNG))
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("qr image for %s: %w", p.Num, err)
		}

		pdf.ImageOptions(name,
			PxToMM(p.QR.X), PxToMM(p.QR.Y), PxToMM(p.QR.W), PxToMM(p.QR.H),
			false, imgOpts, 0, "")

		if grid.Labels && opts.LabelPrefix != "" {
			pdf.SetXY(PxToMM(p.Label.X), PxToMM(p.Label.Y))
			text := tr(labelText(opts.LabelPrefix, p.Num))
			pdf.CellFormat(PxToMM(p.Label.W), PxToMM(p.Label.H), text, "", 0, "CM", false, 0, "")
		}
	}

	for added < pages {
		pdf.AddPage()
		added++
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(w)
}

// labelText joins prefix and num. Characters outside cp1252 used by
// the core fonts are replaced with plain equivalents.
func labelText(prefix, num string) string {
	return strings.NewReplacer("\u2011", "-").Replace(prefix + " " + num)
}

// WriteFile renders the PDF to path, creating parent directories.
func WriteFile(path string, grid Grid, items []Item, opts Options) error {
	var buf bytes.Buffer
	if err := Render(&buf, grid, items, opts); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
