package runner

import "github.com/yaklabco/jsoncomma/pkg/pipeline"

// FileOutcome is the result for one file.
type FileOutcome struct {
	Path string

	// Result is nil when Error is set.
	Result *pipeline.Result

	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	FilesDiscovered int
	FilesProcessed  int
	FilesCached     int
	FilesSkipped    int
	FilesErrored    int

	// FilesNeedingRepair counts files whose repair produced edits, written or not.
	FilesNeedingRepair int
	FilesWritten       int
	EditsTotal         int
	CommasInserted     int
	CommasDeleted      int
}

// Result is the overall runner result.
type Result struct {
	// Files are in discovery order (sorted by path).
	Files []FileOutcome
	Stats Stats
}

// NeedsRepair reports whether any file needed a repair.
func (r *Result) NeedsRepair() bool {
	return r != nil && r.Stats.FilesNeedingRepair > 0
}

// HasErrors reports whether any file failed.
func (r *Result) HasErrors() bool {
	return r != nil && r.Stats.FilesErrored > 0
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}
	if outcome.Result == nil {
		return
	}

	res := outcome.Result
	r.Stats.FilesProcessed++
	if res.Cached {
		r.Stats.FilesCached++
	}
	if res.Skipped {
		r.Stats.FilesSkipped++
	}
	if res.Written {
		r.Stats.FilesWritten++
	}
	if res.Changed() {
		r.Stats.FilesNeedingRepair++
	}
	for _, edit := range res.Edits {
		r.Stats.EditsTotal++
		if edit.IsInsert() {
			r.Stats.CommasInserted++
		} else {
			r.Stats.CommasDeleted++
		}
	}
}
