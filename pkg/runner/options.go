// Package runner repairs many files concurrently through a pipeline.Pipeline.
package runner

import "github.com/yaklabco/jsoncomma/pkg/pipeline"

// Options controls multi-file discovery and processing.
type Options struct {
	// Paths are files or directories to process. Empty means ".".
	Paths []string

	// WorkingDir resolves relative Paths and anchors ignore globs.
	// Empty means the process working directory.
	WorkingDir string

	// Extensions are extra extensions (lowercase, leading dot) treated as
	// JSON on top of the built-in JSON-like set.
	Extensions []string

	// Markdown also discovers .md and .markdown files.
	Markdown bool

	// ExcludeGlobs skip matching files or directories, relative to WorkingDir.
	ExcludeGlobs []string

	// FollowSymlinks walks into symlinked directories.
	FollowSymlinks bool

	// Jobs bounds the worker pool. 0 or negative means runtime.NumCPU().
	Jobs int

	// Pipeline is applied to every file.
	Pipeline pipeline.Options
}

func (o Options) effectivePaths() []string {
	if len(o.Paths) == 0 {
		return []string{"."}
	}
	return o.Paths
}
