package csvimport

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
)

var partFilePattern = regexp.MustCompile(`^(.+)-part-(\d+)\.csv$`)

// HeaderPath returns the conventional header-file path for prefix within dir.
func HeaderPath(dir, prefix string) string {
	return filepath.Join(dir, prefix+"-header.csv")
}

// DiscoverDataFiles globs dir for "<prefix>-part-NNN.csv" files and returns
// their full paths sorted by the numeric NNN suffix (spec.md's
// "DataFileSet" file-discovery collaborator).
func DiscoverDataFiles(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	type numbered struct {
		path string
		n    int
	}
	var found []numbered
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := partFilePattern.FindStringSubmatch(e.Name())
		if m == nil || m[1] != prefix {
			continue
		}
		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		found = append(found, numbered{path: filepath.Join(dir, e.Name()), n: n})
	}

	sort.Slice(found, func(i, j int) bool { return found[i].n < found[j].n })

	paths := make([]string, len(found))
	for i, f := range found {
		paths[i] = f.path
	}
	return paths, nil
}
