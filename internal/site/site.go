// Package site builds the static photo site from the entries sheet and
// the images folder.
//
// A build reads the sheet, checks that every referenced image exists and
// can be decoded, wipes and recreates the output directory, then writes
// resized images, thumbnails, one detail page per entry, the index, and
// optionally QR codes and their print sheets. The output depends only on the sheet, the images,
// and the configuration, so rebuilding produces identical files.
package site

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"photosite/internal/dating"
	"photosite/internal/imaging"
	"photosite/internal/printsheet"
	"photosite/internal/sheet"
)

// Output layout below the site root.
const (
	ImagesDir  = "assets/images"
	ThumbsDir  = "assets/thumbs"
	QRCodesDir = "assets/qrcodes"
	EntriesDir = "e"

	OverviewPDF = "qrcodes.pdf"
	LabelsPDF   = "qrcodes_labels.pdf"

	// DateLayout is how dates are shown on the site.
	DateLayout = "02.01.2006"
)

var (
	// ErrMissingImages is returned when rows reference images that do not exist.
	ErrMissingImages = errors.New("images not found")
	// ErrBaseURLRequired is returned when QR output is requested without a base URL.
	ErrBaseURLRequired = errors.New("--base-url is required to generate QR codes")
	// ErrUnreadableImages is returned when referenced images exist but cannot be decoded.
	ErrUnreadableImages = errors.New("images cannot be decoded")
	// ErrDuplicateNumber is returned when two rows share an entry number.
	ErrDuplicateNumber = errors.New("duplicate entry number")
	// ErrUnsafeOutput is returned when the output directory must not be wiped.
	ErrUnsafeOutput = errors.New("refusing to clean output directory")
)

// =============================================================================
// Configuration
// =============================================================================

// Texts are the user visible strings of the site and the print sheets.
type Texts struct {
	Lang         string `yaml:"lang"`
	Brand        string `yaml:"brand"`
	IndexTitle   string `yaml:"index_title"`
	IndexHeading string `yaml:"index_heading"`
	EntryTitle   string `yaml:"entry_title"`
	Footer       string `yaml:"footer"`
	Back         string `yaml:"back"`
	Previous     string `yaml:"previous"`
	Next         string `yaml:"next"`
}

// DefaultTexts returns the German texts of the gift site.
func DefaultTexts() Texts {
	return Texts{
		Lang:         "de",
		Brand:        "🎁 QR‑Geschenk",
		IndexTitle:   "Übersicht",
		IndexHeading: "Alle Einträge",
		EntryTitle:   "Eintrag",
		Footer:       "Erstellt mit ❤️ fürs Geschenk",
		Back:         "← Zurück zur Übersicht",
		Previous:     "« Vorheriger",
		Next:         "Nächster »",
	}
}

// Config controls image processing and texts.
type Config struct {
	Texts        Texts
	MaxWidth     int // published images are scaled down to this width
	ThumbWidth   int // thumbnails are scaled to exactly this width
	ImageQuality int
	ThumbQuality int
	Workers      int
}

// DefaultConfig returns the standard build configuration.
func DefaultConfig() Config {
	return Config{
		Texts:        DefaultTexts(),
		MaxWidth:     1600,
		ThumbWidth:   600,
		ImageQuality: 88,
		ThumbQuality: 82,
		Workers:      runtime.NumCPU(),
	}
}

// Options are the inputs of one build.
type Options struct {
	Sheet   string
	Images  string
	Out     string
	BaseURL string

	MakeQR      bool // write assets/qrcodes/<num>.png
	OverviewPDF bool // write qrcodes.pdf
	LabelsPDF   bool // write qrcodes_labels.pdf
	Labels      printsheet.LabelOptions
	EntryLabels bool // print "Eintrag <num>" under each code
}

// WantsQR reports whether any QR output was requested.
func (o Options) WantsQR() bool {
	return o.MakeQR || o.OverviewPDF || o.LabelsPDF
}

// =============================================================================
// Data Types
// =============================================================================

// Entry is one published photo.
type Entry struct {
	Num         string
	Image       string // file name as given in the sheet
	Asset       string // published file name below assets/images
	Date        time.Time
	DateSource  dating.Source
	Description string
}

// Href is the entry's page relative to the site root.
func (e Entry) Href() string {
	return EntriesDir + "/" + e.Num + ".html"
}

// Result describes a finished build.
type Result struct {
	Out     string
	Entries []Entry
	QRCodes int
	PDFs    []string
}

// Builder builds sites.
type Builder struct {
	cfg      Config
	logger   *zap.Logger
	resolver *dating.Resolver
}

// New returns a Builder. A nil logger discards output.
func New(cfg Config, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultConfig()
	if cfg.MaxWidth <= 0 {
		cfg.MaxWidth = def.MaxWidth
	}
	if cfg.ThumbWidth <= 0 {
		cfg.ThumbWidth = def.ThumbWidth
	}
	if cfg.ImageQuality <= 0 || cfg.ImageQuality > 100 {
		cfg.ImageQuality = def.ImageQuality
	}
	if cfg.ThumbQuality <= 0 || cfg.ThumbQuality > 100 {
		cfg.ThumbQuality = def.ThumbQuality
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	return &Builder{
		cfg:      cfg,
		logger:   logger,
		resolver: dating.NewResolver(dating.BuildChain...),
	}
}

// =============================================================================
// Build
// =============================================================================

// Build runs the whole pipeline. Every check that can fail runs before the
// output directory is touched.
func (b *Builder) Build(ctx context.Context, opts Options) (*Result, error) {
	if opts.WantsQR() && strings.TrimSpace(opts.BaseURL) == "" {
		return nil, ErrBaseURLRequired
	}
	var labelGrid printsheet.Grid
	if opts.LabelsPDF {
		lo := opts.Labels
		lo.Labels = opts.EntryLabels
		labelGrid = printsheet.LabelGrid(lo)
		if err := labelGrid.Validate(); err != nil {
			return nil, err
		}
	}

	if _, err := os.Stat(opts.Sheet); err != nil {
		return nil, fmt.Errorf("sheet not found: %w", err)
	}
	if info, err := os.Stat(opts.Images); err != nil {
		return nil, fmt.Errorf("images folder not found: %w", err)
	} else if !info.IsDir() {
		return nil, fmt.Errorf("images folder %s is not a directory", opts.Images)
	}

	rows, err := sheet.Read(opts.Sheet)
	if err != nil {
		return nil, err
	}
	entries, err := newEntries(rows)
	if err != nil {
		return nil, err
	}
	if err := checkImages(opts.Images, entries); err != nil {
		return nil, err
	}
	b.resolveDates(opts.Images, rows, entries)

	if err := cleanOutput(opts.Out, opts.Images, opts.Sheet); err != nil {
		return nil, err
	}
	b.logger.Debug("output directory reset", zap.String("out", opts.Out))

	if err := b.writeAssets(ctx, opts.Images, opts.Out, entries); err != nil {
		return nil, err
	}
	if err := writePages(ctx, opts.Out, b.cfg.Texts, entries); err != nil {
		return nil, err
	}
	if opts.BaseURL != "" {
		if err := writeSitemap(opts.Out, opts.BaseURL, entries); err != nil {
			return nil, err
		}
	}

	res := &Result{Out: opts.Out, Entries: entries}
	if opts.WantsQR() {
		if err := b.writeQR(opts, labelGrid, res); err != nil {
			return nil, err
		}
	}

	b.logger.Info("site built",
		zap.String("out", opts.Out),
		zap.Int("entries", len(entries)),
		zap.Int("qrcodes", res.QRCodes),
	)
	return res, nil
}

// numPattern limits entry numbers to digits; they name files and are
// printed on labels.
var numPattern = regexp.MustCompile(`^[0-9]+$`)

// newEntries turns rows into entries and assigns entry numbers: the row's
// ID when present, else the 1-based position padded to three digits.
func newEntries(rows []sheet.Row) ([]Entry, error) {
	entries := make([]Entry, 0, len(rows))
	seen := make(map[string]int, len(rows))
	assets := make(map[string]string, len(rows))

	for i, r := range rows {
		num := strings.TrimSpace(r.ID)
		if num == "" {
			num = fmt.Sprintf("%03d", i+1)
		}
		if !numPattern.MatchString(num) {
			return nil, fmt.Errorf("entry %d: invalid entry number %q", i+1, num)
		}
		if prev, ok := seen[num]; ok {
			return nil, fmt.Errorf("%w %s (entries %d and %d)", ErrDuplicateNumber, num, prev+1, i+1)
		}
		seen[num] = i

		name := strings.TrimSpace(r.Image)
		if !filepath.IsLocal(name) {
			return nil, fmt.Errorf("entry %d: image name %q must stay inside the images folder", i+1, name)
		}
		asset, _ := imaging.OutputName(filepath.ToSlash(name))
		if other, ok := assets[asset]; ok && other != name {
			return nil, fmt.Errorf("entry %d: %s and %s would both be published as %s", i+1, other, name, asset)
		}
		assets[asset] = name

		entries = append(entries, Entry{
			Num:         num,
			Image:       name,
			Asset:       asset,
			Description: r.Description,
		})
	}
	return entries, nil
}

// checkImages reports every missing or undecodable image in one error.
func checkImages(dir string, entries []Entry) error {
	var missing, unreadable []string
	checked := map[string]bool{}
	for _, e := range entries {
		if checked[e.Image] {
			continue
		}
		checked[e.Image] = true
		path := filepath.Join(dir, e.Image)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			missing = append(missing, e.Image)
			continue
		}
		if _, _, err := imaging.DecodeConfig(path); err != nil {
			unreadable = append(unreadable, e.Image)
		}
	}
	var errs []error
	if len(missing) > 0 {
		errs = append(errs, fmt.Errorf("%w in %s: %s", ErrMissingImages, dir, strings.Join(missing, ", ")))
	}
	if len(unreadable) > 0 {
		errs = append(errs, fmt.Errorf("%w in %s: %s", ErrUnreadableImages, dir, strings.Join(unreadable, ", ")))
	}
	return errors.Join(errs...)
}

// resolveDates fills in each entry's date: the sheet's date cell first,
// then the source image's EXIF, then its modification time.
func (b *Builder) resolveDates(dir string, rows []sheet.Row, entries []Entry) {
	for i := range entries {
		if t, ok := dating.ParseSheetDate(rows[i].Date); ok {
			entries[i].Date, entries[i].DateSource = t, dating.SourceSheet
			continue
		}
		res, err := b.resolver.Resolve(filepath.Join(dir, entries[i].Image))
		if err != nil {
			b.logger.Warn("no date for entry", zap.String("num", entries[i].Num), zap.Error(err))
			continue
		}
		entries[i].Date, entries[i].DateSource = res.Time, res.Source
		b.logger.Debug("entry dated",
			zap.String("num", entries[i].Num),
			zap.Stringer("source", res.Source),
		)
	}
}
