// Package sheet reads and writes the entries spreadsheet that links
// images to their date, description, and link.
//
// Two formats are supported, chosen by file extension: .xlsx and .csv.
// Header matching on read is forgiving: case, whitespace, and the
// characters / \ _ - are ignored, so "Datum/Jahr", "datum_jahr", and
// "DATUM JAHR" all name the same column.
package sheet

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Column headers written by Write.
const (
	ColID          = "ID"
	ColImage       = "Bildernamen"
	ColDate        = "Datum/Jahr"
	ColDescription = "Beschreibung"
	ColLink        = "Link"
)

// Header is the header row written by Write.
var Header = []string{ColID, ColImage, ColDate, ColDescription, ColLink}

var (
	// ErrNoImageColumn is returned when no header names the image column.
	ErrNoImageColumn = errors.New("sheet must contain the column 'Bildname'")
	// ErrUnsupportedFormat is returned for paths that are neither .xlsx nor .csv.
	ErrUnsupportedFormat = errors.New("unsupported sheet format")
	// ErrEmpty is returned when the sheet has no header row.
	ErrEmpty = errors.New("sheet is empty")
)

// Row is one entry of the spreadsheet. All values are kept as the text
// found in the cell; Date is interpreted by the consumer.
type Row struct {
	ID          string
	Image       string
	Date        string
	Description string
	Link        string
}

func (r Row) values() []string {
	return []string{r.ID, r.Image, r.Date, r.Description, r.Link}
}

// Write writes rows with the standard header to path, creating parent
// directories as needed.
func Write(path string, rows []Row) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return writeXLSX(path, rows)
	case ".csv":
		return writeCSV(path, rows)
	default:
		return fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// Read reads rows from path. Rows without an image name are skipped.
func Read(path string) ([]Row, error) {
	var records [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		records, err = readXLSX(path)
	case ".csv":
		records, err = readCSV(path)
	default:
		return nil, fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
	if err != nil {
		return nil, err
	}
	return fromRecords(records)
}

// =============================================================================
// Column Detection
// =============================================================================

// NormalizeColumn lowercases name and strips whitespace and the
// characters / \ _ -.
func NormalizeColumn(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '/', '\\', '_', '-':
			return -1
		}
		return r
	}, s)
}

// columnAliases lists accepted normalized header names per field, in
// order of preference.
var columnAliases = struct {
	id, image, desc, date, link []string
}{
	id:    []string{"id"},
	image: []string{"bildname", "bildernamen", "bild", "image", "filename"},
	desc:  []string{"beschreibung", "text", "description"},
	date:  []string{"datumjahr", "datum", "date"},
	link:  []string{"link", "url"},
}

type columns struct {
	id, image, desc, date, link int
}

func detectColumns(header []string) (columns, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := NormalizeColumn(h)
		if _, seen := index[key]; !seen {
			index[key] = i
		}
	}
	find := func(aliases []string) int {
		for _, a := range aliases {
			if i, ok := index[a]; ok {
				return i
			}
		}
		return -1
	}
	c := columns{
		id:    find(columnAliases.id),
		image: find(columnAliases.image),
		desc:  find(columnAliases.desc),
		date:  find(columnAliases.date),
		link:  find(columnAliases.link),
	}
	if c.image < 0 {
		return c, ErrNoImageColumn
	}
	return c, nil
}

func fromRecords(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, ErrEmpty
	}
	cols, err := detectColumns(records[0])
	if err != nil {
		return nil, err
	}
	cell := func(rec []string, i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	var rows []Row
	for _, rec := range records[1:] {
		img := strings.TrimSpace(cell(rec, cols.image))
		if img == "" {
			continue
		}
		rows = append(rows, Row{
			ID:          strings.TrimSpace(cell(rec, cols.id)),
			Image:       img,
			Date:        strings.TrimSpace(cell(rec, cols.date)),
			Description: cell(rec, cols.desc),
			Link:        strings.TrimSpace(cell(rec, cols.link)),
		})
	}
	return rows, nil
}
