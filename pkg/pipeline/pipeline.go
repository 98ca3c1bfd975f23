// Package pipeline runs one file through a repair with the safety steps
// around it: clean-cache lookup, in-memory repair, diff, concurrent
// modification check, backup and atomic write.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/jsoncomma/internal/logging"
	"github.com/yaklabco/jsoncomma/pkg/cache"
	"github.com/yaklabco/jsoncomma/pkg/comma"
	"github.com/yaklabco/jsoncomma/pkg/fix"
	"github.com/yaklabco/jsoncomma/pkg/fsutil"
	"github.com/yaklabco/jsoncomma/pkg/markdown"
	"github.com/yaklabco/jsoncomma/pkg/oracle"
	"github.com/yaklabco/jsoncomma/pkg/textbuf"
)

// Pipeline error types for categorization.
var (
	// ErrRepairFailure indicates the repair itself failed.
	ErrRepairFailure = errors.New("repair failure")

	// ErrWriteFailure indicates the repaired content could not be written.
	ErrWriteFailure = errors.New("write failure")
)

// Repairer repairs one buffer. comma.Engine (through Local) and
// remote.Backend both satisfy it.
type Repairer interface {
	Repair(ctx context.Context, req comma.Request) (*comma.Result, error)
}

// Local repairs with the embedded engine. Each call gets its own tokenizer,
// so one Local can serve many workers at once.
type Local struct {
	Grammar comma.Grammar
}

// Repair implements Repairer.
func (l Local) Repair(ctx context.Context, req comma.Request) (*comma.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return comma.New(oracle.NewTokenizer(), l.Grammar).Repair(req)
}

// Options controls how one file is processed.
type Options struct {
	// DryRun computes the repair and its diff without writing.
	DryRun bool

	// Check only reports whether the file needs repair.
	Check bool

	// Backup selects the backup mode used before writing. Empty means none.
	Backup fsutil.BackupMode

	// Markdown repairs JSON code blocks when the path is a Markdown file.
	Markdown bool

	// Scope and Preserve are passed to the repair request. Both are ignored
	// for Markdown files.
	Scope    []textbuf.Range
	Preserve []textbuf.Position
}

func (o Options) writes() bool {
	return !o.DryRun && !o.Check
}

// Result is the outcome of processing one file.
type Result struct {
	Path string

	// Snapshot is the file state before processing. Nil for in-memory content.
	Snapshot *fsutil.Snapshot

	// Original is the content that was read.
	Original []byte

	// Content is the repaired content. Equal to Original when nothing changed.
	Content []byte

	// Edits are the applied edits in application order.
	Edits []fix.TextEdit

	// Positions are the remapped Preserve positions.
	Positions []textbuf.Position

	// Diff is set whenever the content changed.
	Diff *fix.Diff

	// Cached is true when the clean cache vouched for the file.
	Cached bool

	// Skipped is true when the file changed on disk during processing.
	Skipped    bool
	SkipReason string

	BackupCreated bool
	Written       bool
}

// Changed reports whether the repair produced any edit.
func (r *Result) Changed() bool {
	return r != nil && len(r.Edits) > 0
}

// Summary returns a short human-readable status.
func (r *Result) Summary() string {
	switch {
	case r.Skipped:
		return "skipped: " + r.SkipReason
	case r.Written && r.BackupCreated:
		return "repaired (backup created)"
	case r.Written:
		return "repaired"
	case r.Changed():
		return "needs repair"
	case r.Cached:
		return "ok (cached)"
	default:
		return "ok"
	}
}

// Pipeline processes files with a Repairer.
type Pipeline struct {
	repairer  Repairer
	cache     *cache.Store
	namespace string
	logger    *log.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithCache enables the clean cache. namespace identifies the repair
// behavior (grammar and backend), so verdicts from one never vouch for
// another.
func WithCache(store *cache.Store, namespace string) Option {
	return func(p *Pipeline) {
		p.cache = store
		p.namespace = namespace
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Pipeline.
func New(repairer Repairer, opts ...Option) *Pipeline {
	p := &Pipeline{repairer: repairer, logger: logging.Default()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessFile runs the full pipeline for one file:
//  1. Read and snapshot the file.
//  2. Repair in memory (or answer from the clean cache).
//  3. Stop here for check and dry-run, or when nothing changed.
//  4. Skip the file if it changed on disk since step 1.
//  5. Back it up if configured.
//  6. Write atomically, keeping the original mode.
func (p *Pipeline) ProcessFile(ctx context.Context, path string, opts Options) (*Result, error) {
	original, snap, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, err
	}

	result, err := p.ProcessContent(ctx, path, original, opts)
	if err != nil {
		return nil, err
	}
	result.Snapshot = snap

	if !result.Changed() || !opts.writes() {
		return result, nil
	}

	modified, err := snap.Changed(ctx)
	if err != nil {
		return nil, fmt.Errorf("check modified: %w", err)
	}
	if modified {
		result.Skipped = true
		result.SkipReason = "file modified during processing"
		p.logger.Warn("file changed while repairing, not writing", logging.FieldPath, path)
		return result, nil
	}

	if opts.Backup != "" && opts.Backup != fsutil.BackupModeNone {
		created, err := fsutil.CreateBackup(ctx, path, original, snap.Mode, opts.Backup)
		if err != nil {
			return nil, fmt.Errorf("create backup: %w", err)
		}
		result.BackupCreated = created
	}

	if err := fsutil.WriteAtomic(ctx, path, result.Content, snap.Mode); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	result.Written = true
	p.remember(result.Content, opts)

	p.logger.Debug("repaired file", logging.FieldPath, path, logging.FieldEdits, len(result.Edits))
	return result, nil
}

// ProcessContent repairs content without any file I/O. path only selects
// Markdown handling and labels the diff.
func (p *Pipeline) ProcessContent(ctx context.Context, path string, content []byte, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("processing cancelled: %w", err)
	}

	result := &Result{Path: path, Original: content, Content: content}

	if p.known(content, opts) {
		result.Cached = true
		p.logger.Debug("clean cache hit", logging.FieldPath, path)
		return result, nil
	}

	var err error
	if opts.Markdown && IsMarkdown(path) {
		err = p.repairMarkdown(ctx, result)
	} else {
		err = p.repairText(ctx, result, opts)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrRepairFailure, path, err)
	}

	if !result.Changed() {
		p.remember(content, opts)
		return result, nil
	}

	diff, err := fix.GenerateDiff(path, result.Original, result.Content)
	if err != nil {
		return nil, fmt.Errorf("diff %s: %w", path, err)
	}
	result.Diff = diff
	return result, nil
}

func (p *Pipeline) repairText(ctx context.Context, result *Result, opts Options) error {
	buf := textbuf.New(result.Original)
	repaired, err := p.repairer.Repair(ctx, comma.Request{
		Buffer:   buf,
		Scope:    opts.Scope,
		Preserve: opts.Preserve,
	})
	if err != nil {
		return err
	}
	if len(opts.Scope) > 0 {
		p.logger.Debug("scoped repair", logging.FieldPath, result.Path, logging.FieldRanges, len(opts.Scope))
	}
	result.Edits = repaired.Edits
	result.Positions = repaired.Positions
	result.Content = buf.Bytes()
	return nil
}

func (p *Pipeline) repairMarkdown(ctx context.Context, result *Result) error {
	content, edits, err := markdown.Repair(result.Original, func(buf *textbuf.Buffer) ([]fix.TextEdit, error) {
		repaired, err := p.repairer.Repair(ctx, comma.Request{Buffer: buf})
		if err != nil {
			return nil, err
		}
		return repaired.Edits, nil
	})
	if err != nil {
		return err
	}
	result.Edits = edits
	result.Content = content
	return nil
}

// cacheable reports whether opts allow the clean cache. Scoped requests say
// nothing about the rest of the file, and tracked positions must be
// reported even for clean content.
func (p *Pipeline) cacheable(opts Options) bool {
	return p.cache != nil && len(opts.Scope) == 0 && len(opts.Preserve) == 0
}

// known reports whether the cache already vouches for content.
func (p *Pipeline) known(content []byte, opts Options) bool {
	if !p.cacheable(opts) {
		return false
	}
	clean, err := p.cache.IsClean(p.key(content, opts))
	if err != nil {
		p.logger.Warn("clean cache unavailable", logging.FieldError, err)
		return false
	}
	return clean
}

func (p *Pipeline) remember(content []byte, opts Options) {
	if !p.cacheable(opts) {
		return
	}
	if err := p.cache.MarkClean(p.key(content, opts)); err != nil {
		p.logger.Warn("clean cache unavailable", logging.FieldError, err)
	}
}

func (p *Pipeline) key(content []byte, opts Options) []byte {
	mode := "text"
	if opts.Markdown {
		mode = "markdown"
	}
	return cache.Key(content, p.namespace+"/"+mode)
}

// IsMarkdown reports whether path has a Markdown extension.
func IsMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	default:
		return false
	}
}
