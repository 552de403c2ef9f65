package testutil

import (
	"os"
	"testing"
)

// Chdir changes the working directory to dir for the duration of the
// test and restores the previous one on cleanup, like testing.T.Chdir
// in Go 1.24.
func Chdir(t testing.TB, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatal(err)
		}
	})
}
