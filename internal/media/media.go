// Package media finds the image files the other tools operate on.
package media

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotDirectory is returned when the scan root is missing or not a directory.
var ErrNotDirectory = errors.New("not a directory")

// =============================================================================
// Supported File Types
// =============================================================================

// imageExts contains the supported image file extensions.
var imageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
	".heic": true, // discovered and dated; not decodable
	".heif": true,
}

// skipFolders contains directory names to skip during recursive scans.
// These are system folders that never hold user photos.
var skipFolders = map[string]bool{
	".stfolder":       true, // Syncthing
	".fseventsd":      true, // macOS filesystem events
	".Trashes":        true, // macOS trash
	".Spotlight-V100": true, // macOS Spotlight index
	"@eaDir":          true, // Synology thumbnails
	"$RECYCLE.BIN":    true, // Windows recycle bin
}

// IsImage reports whether name has a supported image extension.
func IsImage(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

// =============================================================================
// File Discovery
// =============================================================================

// Find returns the image files under root, sorted by path.
// Without recursive only the direct children of root are considered.
// Hidden files are ignored; in recursive mode hidden and system
// directories are not descended into. Symlinks to files are followed,
// symlinked directories are not.
func Find(root string, recursive bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("folder not found: %s: %w", root, ErrNotDirectory)
		}
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("folder not found: %s: %w", root, ErrNotDirectory)
	}

	var files []string
	if !recursive {
		entries, err := os.ReadDir(root)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", root, err)
		}
		for _, e := range entries {
			if e.IsDir() || isHidden(e.Name()) || !IsImage(e.Name()) {
				continue
			}
			path := filepath.Join(root, e.Name())
			if !isFile(path, e) {
				continue
			}
			files = append(files, path)
		}
		sort.Strings(files)
		return files, nil
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, the walk goes on
		}
		if d.IsDir() {
			if path != root && (isHidden(d.Name()) || skipFolders[d.Name()]) {
				return filepath.SkipDir
			}
			return nil
		}
		if isHidden(d.Name()) || !isFile(path, d) {
			return nil
		}
		if IsImage(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// isFile reports whether d is a regular file, following symlinks.
func isFile(path string, d fs.DirEntry) bool {
	if d.Type()&fs.ModeSymlink == 0 {
		return d.Type().IsRegular()
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// isHidden also catches the "._name.jpg" AppleDouble files macOS leaves on
// shared volumes, which carry an image extension but no image.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
