// Package scanner collects the source files under a directory tree.
package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

type FileInfo struct {
	Path string
	Size int64
}

type Scanner struct {
	rootDir string
	match   func(path string) bool
}

// New returns a Scanner for rootDir. A nil match accepts every file.
func New(rootDir string, match func(path string) bool) *Scanner {
	return &Scanner{
		rootDir: rootDir,
		match:   match,
	}
}

// Scan walks the tree, skipping hidden directories below the root, and
// returns the matching files sorted by path.
func (s *Scanner) Scan() ([]FileInfo, error) {
	var files []FileInfo

	err := filepath.WalkDir(s.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != s.rootDir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if s.match != nil && !s.match(path) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, FileInfo{Path: path, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking %s: %w", s.rootDir, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// Paths returns only the file paths of Scan.
func (s *Scanner) Paths() ([]string, error) {
	files, err := s.Scan()
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = f.Path
	}
	return paths, nil
}
