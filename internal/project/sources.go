package project

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(filepath.ToSlash(p), '/')
		if err != nil {
			return nil, fmt.Errorf("invalid source pattern %q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// Select walks root and returns the files whose slash-separated path
// relative to root matches any pattern. Hidden directories are skipped.
func Select(root string, patterns []string) ([]string, error) {
	globs, err := compileGlobs(patterns)
	if err != nil {
		return nil, err
	}
	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		for _, g := range globs {
			if g.Match(rel) {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("select sources in %s: %w", root, err)
	}
	return files, nil
}

// Expand turns command line arguments into unit documents: files are kept,
// directories contribute every file matching DefaultSource. Each file
// appears once, in argument order.
func Expand(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		key := filepath.Clean(p)
		if abs, err := filepath.Abs(key); err == nil {
			key = abs
		}
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, p)
	}
	for _, arg := range args {
		isFile, err := fileExists(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if isFile {
			add(arg)
			continue
		}
		if _, err := os.Stat(arg); err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		files, err := Select(arg, []string{DefaultSource})
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			add(f)
		}
	}
	return out, nil
}
