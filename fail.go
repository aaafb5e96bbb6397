package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Quarantine records why a chart was rejected so a rescan can skip it.
func Quarantine(dir, chartPath, reason string) {
	fmt.Printf("quarantine: %s\n", chartPath)
	if err := os.MkdirAll(dir, 0777); err != nil {
		panic(err)
	}
	name := strings.ReplaceAll(filepath.ToSlash(chartPath), "/", "_")
	file, err := os.Create(filepath.Join(dir, name+".txt"))
	if err != nil {
		panic(err)
	}
	defer file.Close()
	if _, err = file.Write([]byte(reason)); err != nil {
		panic(err)
	}
}
