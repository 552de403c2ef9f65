package site

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"photosite/internal/catalog"
	"photosite/internal/printsheet"
	"photosite/internal/qr"
)

// writeQR writes one PNG per entry, then the requested print sheets. The
// sheets take every entry whose PNG exists, in entry order.
func (b *Builder) writeQR(opts Options, labelGrid printsheet.Grid, res *Result) error {
	dir := filepath.Join(opts.Out, filepath.FromSlash(QRCodesDir))
	for _, e := range res.Entries {
		link := catalog.DetailLink(opts.BaseURL, e.Num)
		if err := qr.WriteFile(filepath.Join(dir, e.Num+".png"), link, qr.DefaultOptions()); err != nil {
			return err
		}
		res.QRCodes++
	}
	b.logger.Debug("qr codes written", zap.Int("count", res.QRCodes), zap.String("dir", dir))

	if !opts.OverviewPDF && !opts.LabelsPDF {
		return nil
	}
	items, err := printItems(dir, res.Entries)
	if err != nil {
		return err
	}
	popts := printsheet.DefaultOptions()
	popts.LabelPrefix = b.cfg.Texts.EntryTitle

	if opts.OverviewPDF {
		path := filepath.Join(opts.Out, OverviewPDF)
		if err := printsheet.WriteFile(path, printsheet.OverviewGrid(opts.EntryLabels), items, popts); err != nil {
			return err
		}
		res.PDFs = append(res.PDFs, path)
	}
	if opts.LabelsPDF {
		path := filepath.Join(opts.Out, LabelsPDF)
		if err := printsheet.WriteFile(path, labelGrid, items, popts); err != nil {
			return err
		}
		res.PDFs = append(res.PDFs, path)
	}
	return nil
}

func printItems(dir string, entries []Entry) ([]printsheet.Item, error) {
	var items []printsheet.Item
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join(dir, e.Num+".png"))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, printsheet.Item{Num: e.Num, PNG: data})
	}
	return items, nil
}
