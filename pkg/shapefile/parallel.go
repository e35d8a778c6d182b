package shapefile

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/beetlebugorg/extrude/pkg/extrude"
)

// LoadParallel reads several shapefiles into one dataset. Records keep the
// order of paths, then file order, whatever order the files finish in.
//
// Files are read by a pool of Workers goroutines when Parallel is set. With
// SkipErrors, files that fail are left out and their errors returned
// alongside the dataset; otherwise the first failure stops loading.
//
// Example:
//
//	ds, errs := shapefile.LoadParallel(paths, shapefile.Options{
//	    HeightFields: []string{"HEIGHT_ROOF"},
//	    Parallel:     true,
//	    Workers:      8,
//	    SkipErrors:   true,
//	    Progress: func(loaded, total int) {
//	        fmt.Printf("\rLoading: %d/%d", loaded, total)
//	    },
//	})
//	if len(errs) > 0 {
//	    fmt.Printf("\nSkipped %d files due to errors\n", len(errs))
//	}
func LoadParallel(paths []string, opts Options) (*extrude.Dataset, []error) {
	var files [][]polygon
	var errs []error
	if !opts.Parallel || len(paths) <= 1 {
		files, errs = readSerial(paths, opts)
	} else {
		files, errs = readParallel(paths, opts)
	}
	if files == nil {
		return nil, errs
	}

	b := extrude.NewDatasetBuilder()
	for i, polys := range files {
		if polys == nil {
			continue
		}
		if err := addPolygons(b, paths[i], polys); err != nil {
			return nil, append(errs, err)
		}
	}
	ds, err := b.Build()
	if err != nil {
		return nil, append(errs, err)
	}
	return ds, errs
}

// readParallel reads files with a worker pool. The result is indexed like
// paths, with nil for failed files, or nil on a fatal error.
func readParallel(paths []string, opts Options) ([][]polygon, []error) {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	type loadResult struct {
		index int
		polys []polygon
		err   error
	}

	jobs := make(chan int, len(paths))
	results := make(chan loadResult, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				polys, err := readFile(paths[index], opts)
				results <- loadResult{index: index, polys: polys, err: err}
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	files := make([][]polygon, len(paths))
	var errs []error
	var fatal error
	loaded := 0
	for result := range results {
		loaded++
		if opts.Progress != nil {
			opts.Progress(loaded, len(paths))
		}
		if result.err != nil {
			logError(opts, result.err)
			if !opts.SkipErrors {
				// Keep draining so the workers can exit.
				if fatal == nil {
					fatal = result.err
				}
				continue
			}
			errs = append(errs, result.err)
			continue
		}
		files[result.index] = nonNil(result.polys)
	}
	if fatal != nil {
		return nil, []error{fatal}
	}
	return files, errs
}

// readSerial reads files one at a time.
func readSerial(paths []string, opts Options) ([][]polygon, []error) {
	files := make([][]polygon, len(paths))
	var errs []error
	for i, path := range paths {
		if opts.Progress != nil {
			opts.Progress(i, len(paths))
		}
		polys, err := readFile(path, opts)
		if err != nil {
			logError(opts, err)
			if !opts.SkipErrors {
				return nil, []error{err}
			}
			errs = append(errs, err)
			continue
		}
		files[i] = nonNil(polys)
	}
	if opts.Progress != nil {
		opts.Progress(len(paths), len(paths))
	}
	return files, errs
}

func logError(opts Options, err error) {
	if opts.ErrorLog != nil {
		fmt.Fprintf(opts.ErrorLog, "Error loading shapefile: %v\n", err)
	}
	extrude.Logger().Warn("shapefile load failed", "error", err)
}

// nonNil distinguishes a file without records from a failed one.
func nonNil(polys []polygon) []polygon {
	if polys == nil {
		return []polygon{}
	}
	return polys
}
