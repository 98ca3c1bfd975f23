package remote

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/yaklabco/jsoncomma/pkg/comma"
	"github.com/yaklabco/jsoncomma/pkg/fix"
)

// ErrUnsafeResponse is returned when the server changed more than commas.
var ErrUnsafeResponse = errors.New("remote response changes more than commas")

// Fixer is the part of a Client the backend needs.
type Fixer interface {
	Fix(ctx context.Context, text []byte) ([]byte, error)
}

// Backend repairs buffers through a remote server instead of the local engine.
type Backend struct {
	fixer  Fixer
	engine *comma.Engine
	dmp    *diffmatchpatch.DiffMatchPatch
}

// NewBackend creates a Backend sending text to fixer. grammar must be the one
// the server repairs with; it decides which returned edits a scoped request
// keeps.
func NewBackend(fixer Fixer, grammar comma.Grammar) *Backend {
	return &Backend{
		fixer:  fixer,
		engine: comma.New(nil, grammar),
		dmp:    diffmatchpatch.New(),
	}
}

// Repair honours the same request contract as comma.Engine.Repair. The
// whole buffer is always sent, so the server sees every value in context;
// with selections, only the returned edits whose matches the selections
// allow are kept. Nothing is written to the buffer unless the response is
// accepted.
func (b *Backend) Repair(ctx context.Context, req comma.Request) (*comma.Result, error) {
	if req.Buffer == nil {
		return nil, comma.ErrNoBuffer
	}
	if err := comma.Validate(req); err != nil {
		return nil, err
	}

	original := req.Buffer.Bytes()
	fixed, err := b.fixer.Fix(ctx, original)
	if err != nil {
		return nil, err
	}

	edits, ok := commaEdits(original, fixed)
	if !ok {
		return nil, b.unsafe(string(original), string(fixed))
	}
	edits, err = fix.PrepareEdits(edits, len(original))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsafeResponse, err)
	}
	edits = b.engine.KeepInScope(original, req.Scope, edits)

	saved := slices.Clone(req.Preserve)
	if len(edits) > 0 {
		req.Buffer.Replace(fix.ApplyEdits(original, edits))
	}
	return &comma.Result{
		Positions: comma.Clamp(req.Buffer, saved),
		Edits:     fix.Rebase(edits),
	}, nil
}

// commaEdits aligns text with fixed and returns the comma insertions and
// deletions that turn one into the other, against text. It fails when the two
// differ in anything but commas. Where bytes differ, one of them must be a
// comma, so the alignment never has to choose.
func commaEdits(text, fixed []byte) ([]fix.TextEdit, bool) {
	var edits []fix.TextEdit
	i, j := 0, 0
	for i < len(text) || j < len(fixed) {
		switch {
		case i < len(text) && j < len(fixed) && text[i] == fixed[j]:
			i++
			j++
		case j < len(fixed) && fixed[j] == ',':
			edits = append(edits, fix.TextEdit{StartOffset: i, EndOffset: i, NewText: ","})
			j++
		case i < len(text) && text[i] == ',':
			edits = append(edits, fix.TextEdit{StartOffset: i, EndOffset: i + 1})
			i++
		default:
			return nil, false
		}
	}
	return edits, true
}

// unsafe describes the first change in fixed that is not a comma.
func (b *Backend) unsafe(text, fixed string) error {
	offset := 0
	for _, diff := range b.dmp.DiffMain(text, fixed, false) {
		switch {
		case diff.Type == diffmatchpatch.DiffEqual:
			offset += len(diff.Text)
		case strings.Trim(diff.Text, ",") == "":
			if diff.Type == diffmatchpatch.DiffDelete {
				offset += len(diff.Text)
			}
		case diff.Type == diffmatchpatch.DiffInsert:
			return fmt.Errorf("%w: inserted %q at %d", ErrUnsafeResponse, diff.Text, offset)
		default:
			return fmt.Errorf("%w: deleted %q at %d", ErrUnsafeResponse, diff.Text, offset)
		}
	}
	return ErrUnsafeResponse
}
