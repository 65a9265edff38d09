package zoneinfo

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/zoneinfo/go-tzif/tzif"
)

// Names lists the zone names under dir, sorted. A file counts as a
// zone when it starts with the TZif magic; tab files, leap second
// lists, and other distribution files are skipped no matter how they
// are named.
func Names(dir string) ([]string, error) {
	var names []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ok, err := hasMagic(path)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	sort.Strings(names)
	return names, nil
}

// WalkAll decodes every zone file under dir and returns the results
// keyed by zone name. Decoding runs on a bounded worker pool; workers
// <= 0 selects one worker per CPU. Files without the TZif magic are
// skipped, while a zone file that fails to decode fails the whole
// walk.
func WalkAll(ctx context.Context, dir string, workers int) (map[string]tzif.File, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	var (
		mu    sync.Mutex
		zones = make(map[string]tzif.File)
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		g.Go(func() error {
			ok, err := hasMagic(path)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			f, err := DecodePath(path)
			if err != nil {
				return err
			}
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			mu.Lock()
			zones[filepath.ToSlash(rel)] = f
			mu.Unlock()
			return nil
		})
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, err)
	}
	if walkErr != nil {
		return nil, fmt.Errorf("walk %s: %w", dir, walkErr)
	}
	return zones, nil
}

// hasMagic reports whether the file at path begins with the TZif
// signature. Files too short to carry it are not zone files.
func hasMagic(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()
	var magic [4]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		return false, nil
	}
	return bytes.Equal(magic[:], tzif.Magic[:]), nil
}
