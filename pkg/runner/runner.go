package runner

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/yaklabco/jsoncomma/pkg/pipeline"
)

// Runner processes discovered files on a bounded worker pool.
type Runner struct {
	Pipeline *pipeline.Pipeline
}

// New creates a Runner with the given pipeline.
func New(p *pipeline.Pipeline) *Runner {
	return &Runner{Pipeline: p}
}

// Run discovers files and processes each on an ants pool sized by
// opts.Jobs. Outcomes come back in discovery order regardless of which
// worker finished first. A cancelled context stops new files from starting.
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{Files: make([]FileOutcome, 0, len(files))}
	result.Stats.FilesDiscovered = len(files)
	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(files))

	pool, err := ants.NewPool(jobs)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	outcomes := make([]FileOutcome, len(files))
	done := make([]bool, len(files))
	var wg sync.WaitGroup

	for idx, path := range files {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			res, err := r.Pipeline.ProcessFile(ctx, path, opts.Pipeline)
			outcomes[idx] = FileOutcome{Path: path, Result: res, Error: err}
			done[idx] = true
		})
		if submitErr != nil {
			wg.Done()
			outcomes[idx] = FileOutcome{Path: path, Error: fmt.Errorf("schedule %s: %w", path, submitErr)}
			done[idx] = true
		}
	}
	wg.Wait()

	for idx, outcome := range outcomes {
		if done[idx] {
			result.accumulate(outcome)
		}
	}

	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}
	return result, nil
}
