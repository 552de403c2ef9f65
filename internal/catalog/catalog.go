// Package catalog turns a folder of images into spreadsheet rows.
//
// Every image gets a timestamp from the scan chain (file name, EXIF,
// OS metadata, modification time). Images are ordered by that timestamp,
// ties broken by path, and numbered from 1 with IDs zero-padded to at
// least three digits.
package catalog

import (
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.uber.org/zap"

	"photosite/internal/dating"
	"photosite/internal/media"
	"photosite/internal/sheet"
)

// TimestampLayout is the format of the date column written by a scan.
const TimestampLayout = "2006-01-02 15:04:05"

// minIDWidth is the smallest number of digits in an ID.
const minIDWidth = 3

// Options controls a scan.
type Options struct {
	Recursive    bool   // include subfolders
	BaseURL      string // if set, fills Link as {BaseURL}/e/{ID}.html
	DescFromName bool   // fill the description from the file name
}

// Item is an image with its resolved timestamp.
type Item struct {
	Path       string
	Resolution dating.Resolution
}

// Result is the outcome of a scan.
type Result struct {
	Items   []Item
	Rows    []sheet.Row
	Width   int                   // digits per ID
	Sources map[dating.Source]int // how many timestamps came from each source
}

// Scanner scans folders into rows.
type Scanner struct {
	resolver *dating.Resolver
	logger   *zap.Logger
}

// NewScanner returns a Scanner using the scan chain. A nil logger
// disables logging.
func NewScanner(logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		resolver: dating.NewResolver(dating.ScanChain...),
		logger:   logger,
	}
}

// Scan finds the images in dir, resolves and sorts their timestamps, and
// builds one row per image. An empty folder yields an empty Result.
func (s *Scanner) Scan(dir string, opts Options) (*Result, error) {
	files, err := media.Find(dir, opts.Recursive)
	if err != nil {
		return nil, err
	}

	res := &Result{Sources: make(map[dating.Source]int)}
	for _, path := range files {
		r, err := s.resolver.Resolve(path)
		if err != nil {
			s.logger.Warn("skipping image without timestamp", zap.String("path", path), zap.Error(err))
			continue
		}
		s.logger.Debug("resolved timestamp",
			zap.String("path", path),
			zap.Stringer("source", r.Source),
			zap.Time("time", r.Time),
		)
		res.Items = append(res.Items, Item{Path: path, Resolution: r})
		res.Sources[r.Source]++
	}

	SortItems(res.Items)
	res.Width = IDWidth(len(res.Items))
	res.Rows = make([]sheet.Row, 0, len(res.Items))
	for i, it := range res.Items {
		id := FormatID(i+1, res.Width)
		name := filepath.Base(it.Path)
		row := sheet.Row{
			ID:    id,
			Image: name,
			Date:  it.Resolution.Time.Format(TimestampLayout),
		}
		if opts.DescFromName {
			row.Description = DescriptionFromName(name)
		}
		if opts.BaseURL != "" {
			row.Link = DetailLink(opts.BaseURL, id)
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

// SortItems orders items by timestamp, then by path.
func SortItems(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, tj := items[i].Resolution.Time, items[j].Resolution.Time
		if !ti.Equal(tj) {
			return ti.Before(tj)
		}
		return items[i].Path < items[j].Path
	})
}

// IDWidth returns the number of digits for n IDs: at least three, and
// enough to fit n.
func IDWidth(n int) int {
	return max(minIDWidth, len(strconv.Itoa(n)))
}

// FormatID zero-pads n to width digits.
func FormatID(n, width int) string {
	return fmt.Sprintf("%0*d", width, n)
}

// DetailLink returns the URL of the detail page for id under base.
func DetailLink(base, id string) string {
	return strings.TrimRight(base, "/") + "/e/" + id + ".html"
}

var separatorRun = regexp.MustCompile(`[_\-]+`)

// DescriptionFromName turns "summer_at-the--lake.jpg" into
// "Summer at the lake".
func DescriptionFromName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.TrimSpace(separatorRun.ReplaceAllString(base, " "))
	if base == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(base)
	return string(unicode.ToUpper(r)) + base[size:]
}

// =============================================================================
// Preview
// =============================================================================

// Preview writes the first limit rows as a table, followed by the totals.
func (r *Result) Preview(w io.Writer, limit int) {
	n := min(limit, len(r.Rows))
	rows := make([][]string, 0, n)
	for _, row := range r.Rows[:n] {
		rows = append(rows, []string{row.ID, row.Image, row.Date, row.Description, row.Link})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(sheet.Header...).
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
	fmt.Fprintf(w, "\nTotal rows: %d (ID width=%d digits). Use --write to save the sheet.\n", len(r.Rows), r.Width)
}
