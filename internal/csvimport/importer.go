package csvimport

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sync"

	conc "dev.helix.gds/internal/concurrency"
	"dev.helix.gds/internal/concurrency/atomicx"
)

// ImportResult aggregates one Import run: how many rows were read and
// accepted, how many were rejected by the visitor (recorded, not fatal),
// a per-file row count for reporting, and the chained error surfaced by
// the bounded-concurrency driver for any file-level (I/O) failure.
type ImportResult struct {
	RowsRead     int64
	RowsRejected int64
	RowsByFile   map[string]int64
	Err          error
}

// Options tunes the bounded-concurrency driver (C7) underlying Import,
// beyond its required concurrency level and pool.
type Options struct {
	WaitMillis     int64
	MaxWaitRetries int64
}

// Import discovers every "<prefix>-part-NNN.csv" file under dir, and feeds
// one task per file through the bounded-concurrency driver (C7) at the
// given concurrency, calling visit once per data row. A visitor error
// rejects that row (counted, not fatal); only a file-open/read failure
// surfaces as a task error chained into the result.
func Import(dir, prefix string, concurrency conc.Concurrency, pool *conc.WorkerPool, opts Options, visit LineVisitor) (*ImportResult, error) {
	files, err := DiscoverDataFiles(dir, prefix)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return &ImportResult{}, nil
	}

	var rowsRead, rowsRejected atomicx.PaddedCounter
	var mu sync.Mutex
	rowsByFile := make(map[string]int64, len(files))

	tasks := make([]conc.Task, len(files))
	for i, path := range files {
		path := path
		tasks[i] = conc.NewTaskFunc(path, func(ctx context.Context) (interface{}, error) {
			read, rejected, err := importOneFile(path, visit)
			rowsRead.Add(read)
			rowsRejected.Add(rejected)
			mu.Lock()
			rowsByFile[path] = read
			mu.Unlock()
			return nil, err
		})
	}

	cfg, err := conc.NewDriverConfig(concurrency, conc.NewSliceTaskIterator(tasks))
	if err != nil {
		return nil, err
	}
	if opts.WaitMillis > 0 {
		cfg.WaitMillis = opts.WaitMillis
	}
	if opts.MaxWaitRetries > 0 {
		cfg.MaxWaitRetries = opts.MaxWaitRetries
	}
	if pool != nil {
		cfg.Executor = pool
		cfg.ForceUsageOfExecutor = true
	}

	_, runErr := conc.RunWithConcurrency(cfg)

	return &ImportResult{
		RowsRead:     rowsRead.Load(),
		RowsRejected: rowsRejected.Load(),
		RowsByFile:   rowsByFile,
		Err:          runErr,
	}, nil
}

func importOneFile(path string, visit LineVisitor) (read, rejected int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("opening data file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	lineNumber := 0
	for {
		record, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return read, rejected, fmt.Errorf("reading %s at line %d: %w", path, lineNumber+1, readErr)
		}
		lineNumber++
		if visit != nil {
			if visitErr := visit(lineNumber, record); visitErr != nil {
				rejected++
				continue
			}
		}
		read++
	}
	return read, rejected, nil
}
