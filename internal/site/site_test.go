package site

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"photosite/internal/dating"
	"photosite/internal/imaging"
	"photosite/internal/printsheet"
	"photosite/internal/sheet"
	"photosite/internal/testutil"
)

type fixture struct {
	root   string
	images string
	sheet  string
	out    string
}

// newFixture writes three images and a sheet referencing them.
func newFixture(t *testing.T) fixture {
	t.Helper()
	root := t.TempDir()
	f := fixture{
		root:   root,
		images: filepath.Join(root, "images"),
		sheet:  filepath.Join(root, "entries.csv"),
		out:    filepath.Join(root, "docs"),
	}
	testutil.WriteJPEG(t, filepath.Join(f.images, "a.jpg"), 1700, 20, testutil.DateTimeOriginal("2019:05:06 07:08:09"))
	testutil.WritePNG(t, filepath.Join(f.images, "b.png"), 40, 30, true)
	testutil.SetModTime(t, filepath.Join(f.images, "b.png"), time.Date(2018, 3, 3, 12, 0, 0, 0, time.Local))
	testutil.WriteJPEG(t, filepath.Join(f.images, "c.jpeg"), 30, 30)

	f.writeSheet(t, []sheet.Row{
		{Image: "a.jpg", Description: "Am **See**\nzweite Zeile"},
		{Image: "b.png", Description: "Mit *Oma* & <Opa>"},
		{Image: "c.jpeg", Date: "24.12.2020", Description: strings.Repeat("x", 130)},
	})
	return f
}

func (f fixture) writeSheet(t *testing.T, rows []sheet.Row) {
	t.Helper()
	require.NoError(t, sheet.Write(f.sheet, rows))
}

func (f fixture) options() Options {
	return Options{
		Sheet:       f.sheet,
		Images:      f.images,
		Out:         f.out,
		Labels:      printsheet.DefaultLabelOptions(),
		EntryLabels: true,
	}
}

func (f fixture) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.out, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

// snapshot hashes every file below dir by relative path.
func snapshot(t *testing.T, dir string) map[string]uint64 {
	t.Helper()
	files := map[string]uint64{}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(dir, path)
		files[filepath.ToSlash(rel)] = xxhash.Sum64(data)
		return nil
	})
	require.NoError(t, err)
	return files
}

func newBuilder(t *testing.T) *Builder {
	cfg := DefaultConfig()
	cfg.Workers = 2
	return New(cfg, zaptest.NewLogger(t))
}

func TestBuildWritesSite(t *testing.T) {
	f := newFixture(t)
	res, err := newBuilder(t).Build(context.Background(), f.options())
	require.NoError(t, err)
	require.Len(t, res.Entries, 3)

	assert.Equal(t, []string{"001", "002", "003"}, []string{res.Entries[0].Num, res.Entries[1].Num, res.Entries[2].Num})
	assert.Equal(t, dating.SourceEXIF, res.Entries[0].DateSource)
	assert.Equal(t, dating.SourceModTime, res.Entries[1].DateSource)
	assert.Equal(t, dating.SourceSheet, res.Entries[2].DateSource)

	files := snapshot(t, f.out)
	for _, name := range []string{
		"index.html", "e/001.html", "e/002.html", "e/003.html",
		"assets/images/a.jpg", "assets/images/b.png", "assets/images/c.jpeg",
		"assets/thumbs/a.jpg", "assets/thumbs/b.png", "assets/thumbs/c.jpeg",
	} {
		assert.Contains(t, files, name)
	}
	assert.NotContains(t, files, "sitemap.xml", "no base URL, no sitemap")
	assert.NotContains(t, files, "qrcodes.pdf")

	img, _, err := imaging.Decode(filepath.Join(f.out, "assets", "images", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, 1600, img.Bounds().Dx())
	thumb, format, err := imaging.Decode(filepath.Join(f.out, "assets", "thumbs", "b.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 600, thumb.Bounds().Dx())

	first := f.read(t, "e/001.html")
	assert.Contains(t, first, `<img src="../assets/images/a.jpg" alt="">`)
	assert.Contains(t, first, `<div class="entry-meta">06.05.2019</div>`)
	assert.Contains(t, first, "Am <strong>See</strong>\nzweite Zeile")
	assert.Contains(t, first, `<a href="002.html">Nächster »</a>`)
	assert.NotContains(t, first, "Vorheriger")
	assert.Contains(t, first, `<title>Eintrag 001</title>`)

	second := f.read(t, "e/002.html")
	assert.Contains(t, second, `<a href="001.html">« Vorheriger</a>`)
	assert.Contains(t, second, `<a href="003.html">Nächster »</a>`)
	assert.Contains(t, second, "Mit <em>Oma</em> &amp; &lt;Opa&gt;")
	assert.Contains(t, second, "03.03.2018")

	last := f.read(t, "e/003.html")
	assert.Contains(t, last, "24.12.2020")
	assert.NotContains(t, last, "Nächster")

	index := f.read(t, "index.html")
	assert.Equal(t, 3, strings.Count(index, `class="card"`))
	assert.Contains(t, index, `<a class="card" href="e/001.html"><img class="thumb" src="assets/thumbs/a.jpg" alt="">`)
	assert.Contains(t, index, "<span>#001</span><span>06.05.2019</span></div><div>Am <strong>See</strong></div>")
	assert.Contains(t, index, strings.Repeat("x", 120)+"…")
}

func TestBuildIsReproducible(t *testing.T) {
	f := newFixture(t)
	opts := f.options()
	opts.BaseURL = "https://example.org/geschenk/"
	opts.MakeQR, opts.OverviewPDF, opts.LabelsPDF = true, true, true

	b := newBuilder(t)
	_, err := b.Build(context.Background(), opts)
	require.NoError(t, err)
	first := snapshot(t, f.out)

	// leftovers from earlier builds are removed
	require.NoError(t, os.WriteFile(filepath.Join(f.out, "stale.html"), []byte("old"), 0o644))

	_, err = b.Build(context.Background(), opts)
	require.NoError(t, err)
	if diff := cmp.Diff(first, snapshot(t, f.out)); diff != "" {
		t.Errorf("rebuild changed output (-first +second):\n%s", diff)
	}
}

func TestBuildQRCodesAndSheets(t *testing.T) {
	f := newFixture(t)
	opts := f.options()
	opts.BaseURL = "https://example.org/geschenk/"
	opts.MakeQR, opts.LabelsPDF = true, true

	res, err := newBuilder(t).Build(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, 3, res.QRCodes)
	assert.Equal(t, []string{filepath.Join(f.out, LabelsPDF)}, res.PDFs)

	files := snapshot(t, f.out)
	assert.Contains(t, files, "assets/qrcodes/001.png")
	assert.Contains(t, files, "assets/qrcodes/003.png")
	assert.Contains(t, files, "qrcodes_labels.pdf")
	assert.NotContains(t, files, "qrcodes.pdf")

	sitemap := f.read(t, "sitemap.xml")
	assert.Contains(t, sitemap, "<loc>https://example.org/geschenk/</loc>")
	assert.Contains(t, sitemap, "<loc>https://example.org/geschenk/e/002.html</loc>")
}

func TestBuildQRRequiresBaseURL(t *testing.T) {
	f := newFixture(t)
	opts := f.options()
	opts.OverviewPDF = true

	_, err := newBuilder(t).Build(context.Background(), opts)
	assert.ErrorIs(t, err, ErrBaseURLRequired)
	assert.NoDirExists(t, f.out)
}

func TestBuildRejectsOversizedLabelGrid(t *testing.T) {
	f := newFixture(t)
	opts := f.options()
	opts.BaseURL = "https://example.org"
	opts.LabelsPDF = true
	opts.Labels.Cols = 6

	_, err := newBuilder(t).Build(context.Background(), opts)
	assert.ErrorIs(t, err, printsheet.ErrGridTooLarge)
	assert.NoDirExists(t, f.out)
}

func TestBuildReportsAllMissingImages(t *testing.T) {
	f := newFixture(t)
	f.writeSheet(t, []sheet.Row{
		{Image: "a.jpg"},
		{Image: "gone.jpg"},
		{Image: "also-gone.png"},
	})
	require.NoError(t, os.MkdirAll(f.out, 0o755))
	keep := filepath.Join(f.out, "keep.txt")
	require.NoError(t, os.WriteFile(keep, nil, 0o644))

	_, err := newBuilder(t).Build(context.Background(), f.options())
	require.ErrorIs(t, err, ErrMissingImages)
	assert.Contains(t, err.Error(), "gone.jpg")
	assert.Contains(t, err.Error(), "also-gone.png")
	assert.FileExists(t, keep, "output is untouched when images are missing")
}

func TestBuildUndecodableImageKeepsPreviousSite(t *testing.T) {
	f := newFixture(t)
	_, err := newBuilder(t).Build(context.Background(), f.options())
	require.NoError(t, err)
	before := snapshot(t, f.out)

	require.NoError(t, os.WriteFile(filepath.Join(f.images, "x.heic"), []byte("not really heic"), 0o644))
	f.writeSheet(t, []sheet.Row{
		{Image: "a.jpg"},
		{Image: "x.heic"},
		{Image: "gone.jpg"},
	})

	_, err = newBuilder(t).Build(context.Background(), f.options())
	require.ErrorIs(t, err, ErrUnreadableImages)
	require.ErrorIs(t, err, ErrMissingImages)
	assert.Contains(t, err.Error(), "x.heic")
	assert.Contains(t, err.Error(), "gone.jpg")
	assert.NotContains(t, err.Error(), "a.jpg")
	if diff := cmp.Diff(before, snapshot(t, f.out)); diff != "" {
		t.Errorf("previous site changed (-before +after):\n%s", diff)
	}
}

func TestBuildMissingInputs(t *testing.T) {
	f := newFixture(t)
	opts := f.options()
	opts.Sheet = filepath.Join(f.root, "nope.xlsx")
	_, err := newBuilder(t).Build(context.Background(), opts)
	assert.Error(t, err)

	opts = f.options()
	opts.Images = filepath.Join(f.root, "nope")
	_, err = newBuilder(t).Build(context.Background(), opts)
	assert.Error(t, err)
	assert.NoDirExists(t, f.out)
}

func TestBuildRefusesToCleanInputFolder(t *testing.T) {
	f := newFixture(t)
	opts := f.options()
	opts.Out = f.root

	_, err := newBuilder(t).Build(context.Background(), opts)
	assert.ErrorIs(t, err, ErrUnsafeOutput)
	assert.FileExists(t, f.sheet)
}

func TestNewEntries(t *testing.T) {
	entries, err := newEntries([]sheet.Row{
		{Image: "a.jpg"},
		{ID: "17", Image: "b.webp"},
		{Image: "sub/c.png"},
	})
	require.NoError(t, err)
	assert.Equal(t, "001", entries[0].Num)
	assert.Equal(t, "17", entries[1].Num)
	assert.Equal(t, "b.jpg", entries[1].Asset)
	assert.Equal(t, "003", entries[2].Num)
	assert.Equal(t, "sub/c.png", entries[2].Asset)
	assert.Equal(t, "e/17.html", entries[1].Href())
}

func TestNewEntriesErrors(t *testing.T) {
	tests := []struct {
		name string
		rows []sheet.Row
		want error
	}{
		{"duplicate id", []sheet.Row{{ID: "5", Image: "a.jpg"}, {ID: "5", Image: "b.jpg"}}, ErrDuplicateNumber},
		{"id clashes with position", []sheet.Row{{ID: "002", Image: "a.jpg"}, {Image: "b.jpg"}}, ErrDuplicateNumber},
		{"unsafe id", []sheet.Row{{ID: "../x", Image: "a.jpg"}}, nil},
		{"letters in id", []sheet.Row{{ID: "A1", Image: "a.jpg"}}, nil},
		{"dotted id", []sheet.Row{{ID: "1.5", Image: "a.jpg"}}, nil},
		{"escaping image", []sheet.Row{{Image: "../a.jpg"}}, nil},
		{"same published name", []sheet.Row{{Image: "a.webp"}, {Image: "a.jpg"}}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newEntries(tt.rows)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestCheckOutput(t *testing.T) {
	root := t.TempDir()
	images := filepath.Join(root, "images")
	require.NoError(t, os.MkdirAll(images, 0o755))

	assert.NoError(t, checkOutput(filepath.Join(root, "docs"), images))
	assert.ErrorIs(t, checkOutput(root, images), ErrUnsafeOutput)
	assert.ErrorIs(t, checkOutput(images, images), ErrUnsafeOutput)
	assert.ErrorIs(t, checkOutput("."), ErrUnsafeOutput)
	assert.ErrorIs(t, checkOutput(""), ErrUnsafeOutput)
	assert.ErrorIs(t, checkOutput(string(filepath.Separator)), ErrUnsafeOutput)
}
