// Package testutil builds image fixtures for tests: small JPEG and PNG
// files, optionally carrying a hand-assembled EXIF block.
package testutil

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"
)

// EXIF tag IDs used by the fixtures.
const (
	tagDateTime          = 0x0132
	tagExifIFDPointer    = 0x8769
	tagDateTimeOriginal  = 0x9003
	tagDateTimeDigitized = 0x9004
)

// Tag is an ASCII EXIF tag.
type Tag struct {
	id    uint16
	value string
	exif  bool // stored in the Exif sub-IFD rather than IFD0
}

// DateTimeOriginal returns a DateTimeOriginal tag ("2006:01:02 15:04:05").
func DateTimeOriginal(v string) Tag { return Tag{id: tagDateTimeOriginal, value: v, exif: true} }

// DateTimeDigitized returns a DateTimeDigitized tag.
func DateTimeDigitized(v string) Tag { return Tag{id: tagDateTimeDigitized, value: v, exif: true} }

// DateTime returns an IFD0 DateTime tag.
func DateTime(v string) Tag { return Tag{id: tagDateTime, value: v} }

// Gradient returns a w x h RGBA image with a simple gradient.
func Gradient(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 255 / max(1, w)), G: uint8(y * 255 / max(1, h)), B: 128, A: 255})
		}
	}
	return img
}

// WriteJPEG writes a w x h JPEG to path, with an EXIF block when tags are given.
func WriteJPEG(t testing.TB, path string, w, h int, tags ...Tag) {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, Gradient(w, h), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	data := buf.Bytes()
	if len(tags) > 0 {
		data = withEXIF(data, tags)
	}
	write(t, path, data)
}

// WritePNG writes a w x h PNG to path. With transparent set the left half
// of the image is fully transparent.
func WritePNG(t testing.TB, path string, w, h int, transparent bool) {
	t.Helper()
	img := Gradient(w, h)
	if transparent {
		for y := 0; y < h; y++ {
			for x := 0; x < w/2; x++ {
				img.Set(x, y, color.RGBA{})
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	write(t, path, buf.Bytes())
}

// SetModTime sets both access and modification time of path.
func SetModTime(t testing.TB, path string, ts time.Time) {
	t.Helper()
	if err := os.Chtimes(path, ts, ts); err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}

func write(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// withEXIF inserts an APP1 Exif segment right after the JPEG SOI marker.
func withEXIF(jpg []byte, tags []Tag) []byte {
	payload := append([]byte("Exif\x00\x00"), buildTIFF(tags)...)
	seg := []byte{0xFF, 0xE1, 0, 0}
	binary.BigEndian.PutUint16(seg[2:], uint16(len(payload)+2))
	seg = append(seg, payload...)

	out := make([]byte, 0, len(jpg)+len(seg))
	out = append(out, jpg[:2]...)
	out = append(out, seg...)
	out = append(out, jpg[2:]...)
	return out
}

// buildTIFF lays out a little-endian TIFF with IFD0 (ASCII tags plus the
// Exif pointer) followed by the Exif sub-IFD.
func buildTIFF(tags []Tag) []byte {
	var ifd0, sub []Tag
	for _, tg := range tags {
		if tg.exif {
			sub = append(sub, tg)
		} else {
			ifd0 = append(ifd0, tg)
		}
	}
	sort.Slice(ifd0, func(i, j int) bool { return ifd0[i].id < ifd0[j].id })
	sort.Slice(sub, func(i, j int) bool { return sub[i].id < sub[j].id })

	le := binary.LittleEndian
	ifdSize := func(n int) int { return 2 + 12*n + 4 }
	dataSize := func(ts []Tag) int {
		n := 0
		for _, tg := range ts {
			n += len(tg.value) + 1
		}
		return n
	}

	ifd0Off := 8
	data0Off := ifd0Off + ifdSize(len(ifd0)+1)
	subOff := data0Off + dataSize(ifd0)
	data1Off := subOff + ifdSize(len(sub))

	var buf bytes.Buffer
	buf.Write([]byte{'I', 'I', 0x2A, 0x00})
	binary.Write(&buf, le, uint32(ifd0Off))

	writeIFD := func(ts []Tag, dataOff int, pointer int) {
		n := len(ts)
		if pointer > 0 {
			n++
		}
		binary.Write(&buf, le, uint16(n))
		off := dataOff
		for _, tg := range ts {
			binary.Write(&buf, le, tg.id)
			binary.Write(&buf, le, uint16(2)) // ASCII
			binary.Write(&buf, le, uint32(len(tg.value)+1))
			binary.Write(&buf, le, uint32(off))
			off += len(tg.value) + 1
		}
		if pointer > 0 {
			binary.Write(&buf, le, uint16(tagExifIFDPointer))
			binary.Write(&buf, le, uint16(4)) // LONG
			binary.Write(&buf, le, uint32(1))
			binary.Write(&buf, le, uint32(pointer))
		}
		binary.Write(&buf, le, uint32(0))
		for _, tg := range ts {
			buf.WriteString(tg.value)
			buf.WriteByte(0)
		}
	}

	writeIFD(ifd0, data0Off, subOff)
	writeIFD(sub, data1Off, 0)
	return buf.Bytes()
}
