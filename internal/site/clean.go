package site

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// cleanOutput removes out and recreates the site skeleton. It refuses to
// remove the working directory, a filesystem root, or any directory that
// holds one of the inputs.
func cleanOutput(out string, inputs ...string) error {
	if err := checkOutput(out, inputs...); err != nil {
		return err
	}
	if err := os.RemoveAll(out); err != nil {
		return fmt.Errorf("clean %s: %w", out, err)
	}
	for _, dir := range []string{ImagesDir, ThumbsDir, EntriesDir} {
		if err := os.MkdirAll(filepath.Join(out, filepath.FromSlash(dir)), 0o755); err != nil {
			return err
		}
	}
	return nil
}

func checkOutput(out string, inputs ...string) error {
	if strings.TrimSpace(out) == "" {
		return fmt.Errorf("%w: empty path", ErrUnsafeOutput)
	}
	absOut, err := realPath(out)
	if err != nil {
		return err
	}
	if filepath.Dir(absOut) == absOut {
		return fmt.Errorf("%w %s: filesystem root", ErrUnsafeOutput, out)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	if cwd, err = realPath(cwd); err == nil && cwd == absOut {
		return fmt.Errorf("%w %s: working directory", ErrUnsafeOutput, out)
	}
	for _, in := range inputs {
		absIn, err := realPath(in)
		if err != nil {
			return err
		}
		if within(absIn, absOut) {
			return fmt.Errorf("%w %s: it contains %s", ErrUnsafeOutput, out, in)
		}
	}
	return nil
}

// realPath returns the absolute path of p with symlinks resolved as far
// as p exists.
func realPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return abs, nil
}

// within reports whether p is dir or lies below it.
func within(p, dir string) bool {
	rel, err := filepath.Rel(dir, p)
	if err != nil {
		return false
	}
	return rel == "." || filepath.IsLocal(rel)
}
