// Package rename converts images to JPEG under canonical timestamped names
// of the form YYYY-MM-DD_HHMMSS.jpeg.
//
// Renaming is two-phase. Plan decides every target without touching the
// disk; Apply performs the conversions. Plans never overwrite: a target
// that exists on disk or was claimed by an earlier plan gets a -1, -2, ...
// suffix. A file that already carries its own target name keeps it, so
// re-running on a converted folder changes nothing.
package rename

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"photosite/internal/dating"
	"photosite/internal/imaging"
	"photosite/internal/media"
)

// NameLayout is the time layout of a canonical file name, without extension.
const NameLayout = "2006-01-02_150405"

// Ext is the extension of converted files.
const Ext = ".jpeg"

// DefaultQuality is the JPEG quality used when none is given.
const DefaultQuality = 95

// =============================================================================
// Data Types
// =============================================================================

// Plan describes what happens to one source file.
type Plan struct {
	Source     string
	Target     string // empty for duplicates
	Resolution dating.Resolution
	Canonical  bool   // Source already has its target name
	Duplicate  string // earlier source with identical content, if any
}

// Summary counts the outcome of Apply.
type Summary struct {
	Converted  int
	Unchanged  int
	Duplicates int
	Failed     int
}

// Renamer plans and applies conversions.
type Renamer struct {
	resolver *dating.Resolver
	logger   *zap.Logger
}

// New returns a Renamer dating files by EXIF, then modification time.
func New(logger *zap.Logger) *Renamer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Renamer{
		resolver: dating.NewResolver(dating.RenameChain...),
		logger:   logger,
	}
}

// TargetName returns the canonical file name for t.
func TargetName(t time.Time) string {
	return t.Format(NameLayout) + Ext
}

// =============================================================================
// Planning
// =============================================================================

// Plan computes the target of every image in dir. The disk is not changed.
func (r *Renamer) Plan(dir string, recursive bool) ([]Plan, error) {
	files, err := media.Find(dir, recursive)
	if err != nil {
		return nil, err
	}

	claimed := make(map[string]bool)
	seen := make(map[uint64]string)
	plans := make([]Plan, 0, len(files))

	for _, src := range files {
		res, err := r.resolver.Resolve(src)
		if err != nil {
			r.logger.Warn("skipping image without timestamp", zap.String("path", src), zap.Error(err))
			continue
		}
		p := Plan{Source: src, Resolution: res}

		sum, err := contentHash(src)
		if err != nil {
			r.logger.Warn("could not hash image", zap.String("path", src), zap.Error(err))
		} else if first, ok := seen[sum]; ok {
			p.Duplicate = first
			plans = append(plans, p)
			continue
		} else {
			seen[sum] = src
		}

		p.Target, p.Canonical = uniqueTarget(filepath.Join(filepath.Dir(src), TargetName(res.Time)), src, claimed)
		claimed[p.Target] = true
		plans = append(plans, p)
	}
	return plans, nil
}

// uniqueTarget returns target, or target with the first free -N suffix.
// The source's own path always counts as free; canonical reports that
// the returned path is src.
func uniqueTarget(target, src string, claimed map[string]bool) (path string, canonical bool) {
	ext := filepath.Ext(target)
	base := strings.TrimSuffix(target, ext)
	candidate := target
	for i := 1; ; i++ {
		if candidate == src {
			return candidate, true
		}
		if !claimed[candidate] && !exists(candidate) {
			return candidate, false
		}
		candidate = fmt.Sprintf("%s-%d%s", base, i, ext)
	}
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

// contentHash hashes the whole file with xxhash.
func contentHash(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, fmt.Errorf("hash %s: %w", path, err)
	}
	return h.Sum64(), nil
}

// =============================================================================
// Reporting
// =============================================================================

// WritePlan prints the plan: a summary line, then one line per file.
func WritePlan(w io.Writer, plans []Plan) {
	exifCount, dupes := 0, 0
	for _, p := range plans {
		if p.Resolution.Source == dating.SourceEXIF {
			exifCount++
		}
		if p.Duplicate != "" {
			dupes++
		}
	}
	total := len(plans)
	fmt.Fprintf(w, "Found %d image(s). EXIF date used for %d; fallback for %d.\n", total, exifCount, total-exifCount)
	if dupes > 0 {
		fmt.Fprintf(w, "%d duplicate(s) will be left untouched.\n", dupes)
	}

	for _, p := range plans {
		flag := "mtime"
		if p.Resolution.Source == dating.SourceEXIF {
			flag = "EXIF "
		}
		date := p.Resolution.Time.Format("2006-01-02 15:04:05")
		name := filepath.Base(p.Source)
		switch {
		case p.Duplicate != "":
			fmt.Fprintf(w, "[dup  ] %s  (same content as %s)\n", name, filepath.Base(p.Duplicate))
		case p.Canonical:
			fmt.Fprintf(w, "[%s] %s  (unchanged, date=%s)\n", flag, name, date)
		default:
			fmt.Fprintf(w, "[%s] %s  ->  %s  (date=%s)\n", flag, name, filepath.Base(p.Target), date)
		}
	}
}

// =============================================================================
// Conversion
// =============================================================================

// Apply converts every planned file. Failures are logged and counted; a
// failed file is left in place.
func (r *Renamer) Apply(plans []Plan, quality int) Summary {
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	var s Summary
	for _, p := range plans {
		switch {
		case p.Duplicate != "":
			s.Duplicates++
			continue
		case p.Canonical:
			s.Unchanged++
			continue
		}

		if err := convert(p.Source, p.Target, quality, p.Resolution.Time); err != nil {
			r.logger.Error("converting image", zap.String("path", p.Source), zap.Error(err))
			s.Failed++
			continue
		}
		s.Converted++

		if p.Source != p.Target {
			if err := os.Remove(p.Source); err != nil {
				r.logger.Warn("removing source", zap.String("path", p.Source), zap.Error(err))
			}
		}
		r.logger.Debug("converted",
			zap.String("source", p.Source),
			zap.String("target", p.Target),
		)
	}
	return s
}

// convert re-encodes src as JPEG at dst. The encoder drops EXIF, so the
// target's modification time is set to ts; the next run then dates the
// file to the same name.
func convert(src, dst string, quality int, ts time.Time) error {
	img, _, err := imaging.Decode(src)
	if err != nil {
		return err
	}
	if err := imaging.WriteFile(dst, imaging.Flatten(img), imaging.JPEG, quality); err != nil {
		return err
	}
	return os.Chtimes(dst, ts, ts)
}
