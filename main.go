package main

import (
	"fmt"
	"os"
	"strings"

	"lzmc/dotlzm"
)

func main() {
	root := "charts"
	if len(os.Args) > 1 {
		root = os.Args[1]
	}

	if mirror := os.Getenv("LZMC_MIRROR"); mirror != "" {
		DownloadChartPacks(mirror, root, loadPackManifest("packs.txt"))
	}

	entries, err := ScanLibrary(root)
	if err != nil {
		panic(err)
	}

	db, err := OpenChartDB("charts.db")
	if err != nil {
		panic(err)
	}
	defer db.Close()

	failed := 0
	for _, e := range entries {
		if err := db.Upsert(e.Path, e.Chart); err != nil {
			panic(err)
		}
		for _, d := range e.Chart.Diagnostics {
			fmt.Printf("%s: %s\n", e.Path, d)
		}
		if e.Chart.Failed() {
			failed++
			Quarantine("_quarantine", e.Path, diagnosticsReport(e.Chart))
		}
	}
	fmt.Printf("indexed %d charts (%d failed)\n\n", len(entries), failed)

	rows, err := db.List()
	if err != nil {
		panic(err)
	}
	for _, r := range rows {
		status := "ok"
		if r.Failed {
			status = "FAILED"
		}
		fmt.Printf("%-40s %s %3d bpm  %4d measures  %5d objects  %8.1fms  %s\n",
			r.Path, r.AudioFilename, r.Tempo, r.Measures, r.Objects, r.DurationMs, status)
	}
}

// loadPackManifest reads one pack id per line; a missing manifest means
// nothing to download.
func loadPackManifest(path string) []int {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var ids []int
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var id int
		if _, err := fmt.Sscanf(line, "%d", &id); err != nil {
			panic(err)
		}
		ids = append(ids, id)
	}
	return ids
}

func diagnosticsReport(c *dotlzm.Chart) string {
	var sb strings.Builder
	for _, d := range c.Diagnostics {
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
