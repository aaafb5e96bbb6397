package main

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"lzmc/dotlzm"

	"github.com/remeh/sizedwaitgroup"
)

const maxCompileWorkers = 8

type LibraryEntry struct {
	Path  string
	Chart *dotlzm.Chart
}

// ScanLibrary walks root for .lzm charts and compiles them with bounded
// parallelism. Charts that fail to read are counted and the first failure is
// reported; charts that compile with diagnostics are still returned, the
// caller decides what a fatal diagnostic means for it.
func ScanLibrary(root string) ([]LibraryEntry, error) {
	var paths []string
	if err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			fmt.Println(err.Error())
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(d.Name()), ".lzm") {
			paths = append(paths, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	sort.Strings(paths)

	var (
		mu       sync.Mutex
		entries  = make([]LibraryEntry, 0, len(paths))
		firstErr error
		firstP   string
		failed   int
	)
	swg := sizedwaitgroup.New(maxCompileWorkers)
	for _, p := range paths {
		swg.Add()
		p := p
		Run(func() {
			defer swg.Done()
			chart, err := dotlzm.CompileFile(p)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				if firstErr == nil {
					firstErr, firstP = err, p
				}
				return
			}
			entries = append(entries, LibraryEntry{Path: p, Chart: chart})
		})
	}
	swg.Wait()

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	if firstErr != nil {
		return entries, fmt.Errorf("compiled %d/%d .lzm files; first failure %s: %w",
			len(entries), len(paths), firstP, firstErr)
	}
	return entries, nil
}
