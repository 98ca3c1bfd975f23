// Package comma repairs comma placement in JSON-like text.
//
// A repair runs two passes over a buffer. The first inserts commas missing
// between sibling values, the second deletes commas left dangling before a
// closing bracket. Every candidate is confirmed against an oracle.Classifier
// so commas and brackets inside strings and comments are never touched.
package comma

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/jsoncomma/internal/logging"
	"github.com/yaklabco/jsoncomma/pkg/fix"
	"github.com/yaklabco/jsoncomma/pkg/oracle"
	"github.com/yaklabco/jsoncomma/pkg/textbuf"
)

// Request is one repair invocation.
type Request struct {
	// Buffer is repaired in place.
	Buffer *textbuf.Buffer

	// Scope restricts edits to the given selections. Nil, empty, or only
	// empty ranges mean the whole buffer.
	Scope []textbuf.Range

	// Preserve lists positions to carry across the edits.
	Preserve []textbuf.Position
}

// Result describes a completed repair.
type Result struct {
	// Positions are the remapped Preserve positions, in the same order.
	Positions []textbuf.Position

	// Edits are the applied edits in application order. Each edit's offsets
	// refer to the buffer as it was just before that edit.
	Edits []fix.TextEdit
}

// Changed reports whether any edit was applied.
func (r *Result) Changed() bool {
	return r != nil && len(r.Edits) > 0
}

// Engine repairs buffers with a fixed classifier and grammar.
// An Engine is safe for concurrent use when its classifier is.
type Engine struct {
	classifier oracle.Classifier
	grammar    Grammar
	pats       *patterns
	logger     *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug output.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithGrammar replaces the grammar the patterns are built from.
func WithGrammar(grammar Grammar) Option {
	return func(e *Engine) {
		e.grammar = grammar
	}
}

// WithClassifier replaces the oracle.
func WithClassifier(classifier oracle.Classifier) Option {
	return func(e *Engine) {
		if classifier != nil {
			e.classifier = classifier
		}
	}
}

// New creates an Engine. A nil classifier selects the embedded tokenizer.
func New(classifier oracle.Classifier, grammar Grammar, opts ...Option) *Engine {
	if classifier == nil {
		classifier = oracle.NewTokenizer()
	}
	engine := &Engine{
		classifier: classifier,
		grammar:    grammar,
		logger:     logging.Default(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	engine.pats = engine.grammar.compile()
	return engine
}

// Grammar returns the engine's grammar.
func (e *Engine) Grammar() Grammar {
	return e.grammar
}

// Repair runs the request with a fresh tokenizer and the default grammar.
// Options may override either.
func Repair(req Request, opts ...Option) (*Result, error) {
	return New(nil, DefaultGrammar(), opts...).Repair(req)
}

// Repair validates the request, then runs the missing-comma pass followed by
// the trailing-comma pass. On a validation error the buffer is untouched.
func (e *Engine) Repair(req Request) (*Result, error) {
	if req.Buffer == nil {
		return nil, ErrNoBuffer
	}
	if err := Validate(req); err != nil {
		return nil, err
	}

	saved := slices.Clone(req.Preserve)
	scan := &scanner{
		buf:      req.Buffer,
		classify: e.classifier,
		pats:     e.pats,
		scope:    newScope(req.Scope),
		logger:   e.logger,
		edits:    fix.NewEditBuilder(),
	}
	if nester, ok := e.classifier.(oracle.Nester); ok {
		scan.nester = nester
	}

	if err := scan.run(); err != nil {
		return nil, fmt.Errorf("repair: %w", err)
	}

	return &Result{
		Positions: Clamp(req.Buffer, saved),
		Edits:     scan.edits.Edits,
	}, nil
}

// Validate checks every scope range and tracked position against the buffer.
func Validate(req Request) error {
	size := req.Buffer.Len()
	for idx, r := range req.Scope {
		if !r.Valid(size) {
			return &RangeError{Index: idx, Range: r, Len: size}
		}
	}

	lines := req.Buffer.LineCount()
	for idx, pos := range req.Preserve {
		if pos.Row < 0 || pos.Column < 0 || pos.Row >= lines {
			return &PositionError{Index: idx, Position: pos, Lines: lines}
		}
	}
	return nil
}
