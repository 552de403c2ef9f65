package dating

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var yearOnlyRe = regexp.MustCompile(`^\d{4}$`)

// sheetLayouts are tried in order; day comes before month.
var sheetLayouts = []string{
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
	"2.1.2006",
	"02/01/2006 15:04:05",
	"02/01/2006",
	"2/1/2006",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006:01:02 15:04:05",
	"01.2006",
	"2006-01",
}

// largest serial Excel can display (9999-12-31)
const maxExcelSerial = 2958465

// ParseSheetDate interprets a date cell from the spreadsheet.
// A bare four digit value is January 1 of that year. The day-first layouts
// are tried next, so "03.2004" is March 2004; any other number is an Excel
// serial date.
// Empty or unparseable cells yield false.
func ParseSheetDate(cell string) (time.Time, bool) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return time.Time{}, false
	}
	if yearOnlyRe.MatchString(s) {
		year, _ := strconv.Atoi(s)
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local), true
	}
	for _, layout := range sheetLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		if serial <= 0 || serial > maxExcelSerial {
			return time.Time{}, false
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return time.Time{}, false
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.Local), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(time.Local), true
	}
	return time.Time{}, false
}
