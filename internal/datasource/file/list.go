package file

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ReadList returns the non-empty lines of a list file, skipping lines that
// start with '#'. Order is preserved.
func ReadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open list %s: %w", path, err)
	}
	defer f.Close()

	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read list %s: %w", path, err)
	}
	return out, nil
}

// Resolve expands a dataset's file inputs into an ordered path list.
//
// pattern may be a plain path or a glob; glob matches are sorted. listFile,
// when set, contributes one path per line, resolved relative to the list
// file's directory. A pattern that matches nothing is an error so a typo does
// not silently produce an empty schema.
func Resolve(pattern, listFile string) ([]string, error) {
	var out []string
	if pattern != "" {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q: %w", pattern, os.ErrNotExist)
		}
		sort.Strings(matches)
		out = append(out, matches...)
	}
	if listFile != "" {
		lines, err := ReadList(listFile)
		if err != nil {
			return nil, err
		}
		base := filepath.Dir(listFile)
		for _, l := range lines {
			if !filepath.IsAbs(l) {
				l = filepath.Join(base, l)
			}
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no input files")
	}
	return out, nil
}
