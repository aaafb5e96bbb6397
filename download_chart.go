package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/levigross/grequests"
)

var rateLimitedFrom atomic.Pointer[time.Time]

func rateLimited() time.Duration {
	lastLimit := rateLimitedFrom.Load()
	now := time.Now()
	rateLimitedFrom.CompareAndSwap(nil, &now)
	if lastLimit != nil {
		return max(time.Minute, time.Since(*lastLimit))
	}
	return time.Minute
}

// DownloadChartPack fetches one chart-pack zip from the mirror and returns
// its files by name. Throttle responses back off and retry.
func DownloadChartPack(mirror string, id int) (map[string][]byte, error) {
	done := GetToken()
	defer done()
	for {
		data, retry, err := downloadChartPackBytes(mirror, id)
		if retry {
			cooldown := rateLimited()
			fmt.Printf("mirror throttled, backing off %s\n", cooldown)
			time.Sleep(cooldown)
			continue
		}
		if err != nil {
			return nil, err
		}
		return unpackChartZip(data)
	}
}

func downloadChartPackBytes(mirror string, id int) (data []byte, retry bool, err error) {
	Throttle()
	resp, err := grequests.Get(
		fmt.Sprintf("%s/packs/%d.zip", strings.TrimSuffix(mirror, "/"), id),
		grequests.FromRequestOptions(&grequests.RequestOptions{
			UserAgent:      "lzmc",
			RequestTimeout: 2 * time.Minute,
		}),
	)
	if err != nil {
		if strings.Contains(err.Error(), "connection refused") {
			return nil, true, nil
		}
		return nil, false, fmt.Errorf("pack %d: %w", id, err)
	}
	defer resp.Close()
	if resp.StatusCode == 429 || resp.StatusCode == 503 {
		return nil, true, nil
	}
	if !resp.Ok {
		return nil, false, fmt.Errorf("pack %d: status %d", id, resp.StatusCode)
	}
	return resp.Bytes(), false, nil
}

func unpackChartZip(data []byte) (map[string][]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pack zip: %w", err)
	}
	files := make(map[string][]byte, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s in pack: %w", f.Name, err)
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s in pack: %w", f.Name, err)
		}
		files[filepath.Base(f.Name)] = b
	}
	return files, nil
}

// DownloadChartPacks pulls every pack not already on disk into
// destRoot/<id>/, in parallel behind the shared throttle.
func DownloadChartPacks(mirror, destRoot string, ids []int) {
	wg := sync.WaitGroup{}
	counter := atomic.Uint32{}
	total := atomic.Uint32{}
	for _, id := range ids {
		dir := filepath.Join(destRoot, fmt.Sprintf("%d", id))
		if hasChartFiles(dir) {
			fmt.Printf("%d already downloaded\n", id)
			continue
		}
		wg.Add(1)
		id := id
		Run(func() {
			defer wg.Done()
			total.Add(1)
			files, err := DownloadChartPack(mirror, id)
			if err != nil {
				PanicF("DownloadChartPack failed id = %d, err = %s", id, err.Error())
			}
			if err := os.MkdirAll(dir, 0777); err != nil {
				PanicF("MkdirAll failed id = %d, err = %s", id, err.Error())
			}
			counter.Add(1)
			fmt.Printf("%d downloaded (%d/%d)\n", id, counter.Load(), total.Load())
			for name, data := range files {
				if err := os.WriteFile(filepath.Join(dir, name), data, 0666); err != nil {
					PanicF("WriteFile failed id = %d, err = %s", id, err.Error())
				}
			}
		})
	}
	wg.Wait()
}

func hasChartFiles(dir string) bool {
	found := false
	_ = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if strings.HasSuffix(info.Name(), ".lzm") {
			found = true
		}
		return nil
	})
	return found
}
