package sheet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var sampleRows = []Row{
	{ID: "001", Image: "2020-01-01_120000.jpeg", Date: "2020-01-01 12:00:00", Description: "New *year*", Link: "https://example.org/e/001.html"},
	{ID: "002", Image: "beach.png", Date: "2020-07-14 09:30:00", Description: "Line one\nLine two"},
	{ID: "003", Image: "x; y.jpg", Date: "", Description: "semi;colon, comma"},
}

func TestNormalizeColumn(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Datum/Jahr", "datumjahr"},
		{" DATUM JAHR ", "datumjahr"},
		{"datum_jahr", "datumjahr"},
		{"Bild-Name", "bildname"},
		{`Bild\Name`, "bildname"},
		{"Beschreibung", "beschreibung"},
	}
	for _, tt := range tests {
		if got := NormalizeColumn(tt.in); got != tt.want {
			t.Errorf("NormalizeColumn(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, ext := range []string{".xlsx", ".csv"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out", "entries"+ext)
			require.NoError(t, Write(path, sampleRows))

			got, err := Read(path)
			require.NoError(t, err)
			if diff := cmp.Diff(sampleRows, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestReadHeaderAliases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entries.csv")
	content := "Nr,Bildname,Text,Datum,Datum/Jahr\n" +
		"1,a.jpg,hello,01.01.2000,2004\n" +
		",,,,\n" +
		"2,b.jpg,,02.02.2002,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := Read(path)
	require.NoError(t, err)
	want := []Row{
		{Image: "a.jpg", Description: "hello", Date: "2004"},
		{Image: "b.jpg", Date: ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestReadStripsBOM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entries.csv")
	content := append([]byte{0xEF, 0xBB, 0xBF}, []byte("ID;Bildernamen\n7;a.jpg\n")...)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Equal(t, []Row{{ID: "7", Image: "a.jpg"}}, got)
}

func TestReadMissingImageColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entries.csv")
	require.NoError(t, os.WriteFile(path, []byte("ID;Beschreibung\n1;x\n"), 0o644))

	_, err := Read(path)
	assert.ErrorIs(t, err, ErrNoImageColumn)
}

func TestReadXLSXSerialDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entries.xlsx")
	f := excelize.NewFile()
	name := f.GetSheetName(0)
	require.NoError(t, f.SetCellValue(name, "A1", "Bildname"))
	require.NoError(t, f.SetCellValue(name, "B1", "Datum"))
	require.NoError(t, f.SetCellValue(name, "A2", "a.jpg"))
	require.NoError(t, f.SetCellValue(name, "B2", 43831))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	got, err := Read(path)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a.jpg", got[0].Image)
	assert.Equal(t, "43831", got[0].Date)
}

func TestUnsupportedFormat(t *testing.T) {
	err := Write(filepath.Join(t.TempDir(), "entries.ods"), sampleRows)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Read("entries.txt")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "entries.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	_, err := Read(path)
	assert.ErrorIs(t, err, ErrEmpty)
}
