// Package dating resolves the capture timestamp of an image file.
//
// A Resolver walks an ordered chain of sources and returns the first one
// that yields a timestamp:
//
//	filename     canonical or camera-style timestamp in the file stem
//	exif         DateTimeOriginal, DateTimeDigitized, DateTime
//	os-metadata  Spotlight creation date or file birth time (macOS only)
//	mtime        file modification time
//
// Naive timestamps (filename, EXIF) are interpreted in the local zone.
package dating

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// Source identifies where a timestamp came from.
type Source int

const (
	SourceFilename Source = iota
	SourceEXIF
	SourceOSMetadata
	SourceModTime
	SourceSheet
)

func (s Source) String() string {
	switch s {
	case SourceFilename:
		return "filename"
	case SourceEXIF:
		return "exif"
	case SourceOSMetadata:
		return "os-metadata"
	case SourceModTime:
		return "mtime"
	case SourceSheet:
		return "sheet"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// Chains used by the tools.
var (
	ScanChain   = []Source{SourceFilename, SourceEXIF, SourceOSMetadata, SourceModTime}
	RenameChain = []Source{SourceEXIF, SourceModTime}
	BuildChain  = []Source{SourceEXIF, SourceModTime}
)

// Resolution is a resolved timestamp and its source.
type Resolution struct {
	Time   time.Time
	Source Source
}

type lookupFunc func(path string) (time.Time, bool)

// Resolver resolves timestamps along a fixed chain of sources.
type Resolver struct {
	chain   []Source
	lookups map[Source]lookupFunc
}

// NewResolver returns a Resolver trying the given sources in order.
// SourceSheet is not file based and is ignored here.
func NewResolver(chain ...Source) *Resolver {
	return &Resolver{
		chain: append([]Source(nil), chain...),
		lookups: map[Source]lookupFunc{
			SourceFilename:   func(p string) (time.Time, bool) { return FromFilename(filepath.Base(p)) },
			SourceEXIF:       FromEXIF,
			SourceOSMetadata: fromOSMetadata,
			SourceModTime:    FromModTime,
		},
	}
}

// Resolve returns the first timestamp found along the chain.
func (r *Resolver) Resolve(path string) (Resolution, error) {
	for _, src := range r.chain {
		lookup, ok := r.lookups[src]
		if !ok {
			continue
		}
		if t, ok := lookup(path); ok {
			return Resolution{Time: t, Source: src}, nil
		}
	}
	return Resolution{}, fmt.Errorf("no timestamp for %s", path)
}

// =============================================================================
// Filename Patterns
// =============================================================================

// filenamePatterns are tried in order on the file stem; first valid match wins.
// Each regex captures year, month, day, hour, minute, second.
var filenamePatterns = []struct {
	regex *regexp.Regexp
	desc  string
}{
	// Canonical: 2025-06-19_123456.jpeg, 2025-06-19-123456.jpg
	{regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})[_\-](\d{2})(\d{2})(\d{2})`), "canonical timestamp"},

	// Camera: IMG_20250619_123456.jpg, PXL_20250619_123456789.jpg
	{regexp.MustCompile(`(\d{4})(\d{2})(\d{2})_(\d{2})(\d{2})(\d{2})`), "camera timestamp"},
}

// FromFilename extracts a timestamp from a file name.
// A match that is not a real calendar date or clock time is skipped.
func FromFilename(name string) (time.Time, bool) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	for _, p := range filenamePatterns {
		for _, m := range p.regex.FindAllStringSubmatch(stem, -1) {
			if t, ok := fromParts(m[1:]); ok {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// fromParts builds a local time from year, month, day, hour, minute, second.
func fromParts(parts []string) (time.Time, bool) {
	if len(parts) != 6 {
		return time.Time{}, false
	}
	s := fmt.Sprintf("%s-%s-%s %s:%s:%s", parts[0], parts[1], parts[2], parts[3], parts[4], parts[5])
	t, err := time.ParseInLocation("2006-01-02 15:04:05", s, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// =============================================================================
// EXIF
// =============================================================================

var exifDateRe = regexp.MustCompile(`(\d{4}):(\d{2}):(\d{2})[ T](\d{2}):(\d{2}):(\d{2})`)

// exifFields are tried in order.
var exifFields = []exif.FieldName{
	exif.DateTimeOriginal,
	exif.DateTimeDigitized,
	exif.DateTime,
}

// FromEXIF reads the capture timestamp from a file's EXIF metadata.
// Unreadable files, files without EXIF, and malformed values yield false.
func FromEXIF(path string) (t time.Time, ok bool) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	// Malformed maker notes can make the decoder panic.
	defer func() {
		if recover() != nil {
			t, ok = time.Time{}, false
		}
	}()

	x, err := exif.Decode(f)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return time.Time{}, false
	}

	for _, field := range exifFields {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		raw, err := tag.StringVal()
		if err != nil || raw == "" {
			continue
		}
		m := exifDateRe.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		if t, ok := fromParts(m[1:]); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// =============================================================================
// File System
// =============================================================================

// FromModTime returns the file modification time.
func FromModTime(path string) (time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime().In(time.Local), true
}
