package logging

// Structured log keys shared across packages.
const (
	FieldError  = "error"
	FieldPath   = "path"
	FieldConfig = "config"

	// Run options.
	FieldDryRun = "dry_run"
	FieldCheck  = "check"
	FieldJobs   = "jobs"
	FieldRemote = "remote"

	// Repairs.
	FieldEdits  = "edits"
	FieldBytes  = "bytes"
	FieldRanges = "ranges"
	FieldSyntax = "syntax"
	FieldScope  = "scope"

	// Remote backend.
	FieldAddr       = "addr"
	FieldExecutable = "executable"

	// Run totals.
	FieldFilesDiscovered = "files_discovered"
	FieldFilesProcessed  = "files_processed"
	FieldFilesRepaired   = "files_repaired"
	FieldEditsTotal      = "edits_total"
	FieldFilesFailed     = "files_failed"

	// Build information.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
