//go:build darwin

package dating

import (
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"
)

// fromOSMetadata asks Spotlight for the content creation date and falls
// back to the file birth time.
func fromOSMetadata(path string) (time.Time, bool) {
	if t, ok := spotlightCreationDate(path); ok {
		return t, true
	}
	return birthTime(path)
}

// spotlightCreationDate runs `mdls` for kMDItemContentCreationDate.
// Output looks like "2023-05-01 10:20:30 +0000" or "(null)".
func spotlightCreationDate(path string) (time.Time, bool) {
	out, err := exec.Command("mdls", "-raw", "-name", "kMDItemContentCreationDate", path).Output()
	if err != nil {
		return time.Time{}, false
	}
	s := strings.TrimSpace(string(out))
	if s == "" || s == "(null)" {
		return time.Time{}, false
	}
	if t, err := time.Parse("2006-01-02 15:04:05 -0700", s); err == nil {
		return t.In(time.Local), true
	}
	parts := strings.Fields(s)
	if len(parts) < 2 {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02 15:04:05", parts[0]+" "+parts[1], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func birthTime(path string) (time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok || st.Birthtimespec.Sec == 0 {
		return time.Time{}, false
	}
	return time.Unix(st.Birthtimespec.Sec, st.Birthtimespec.Nsec).In(time.Local), true
}
