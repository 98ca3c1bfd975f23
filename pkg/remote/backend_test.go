package remote_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/jsoncomma/pkg/comma"
	"github.com/yaklabco/jsoncomma/pkg/fix"
	"github.com/yaklabco/jsoncomma/pkg/remote"
	"github.com/yaklabco/jsoncomma/pkg/textbuf"
)

// localFixer repairs in process, recording what it was sent.
type localFixer struct {
	sent []string
}

func (f *localFixer) Fix(_ context.Context, text []byte) ([]byte, error) {
	f.sent = append(f.sent, string(text))
	buf := textbuf.New(text)
	if _, err := comma.Repair(comma.Request{Buffer: buf}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fixedFixer always answers with the same text or error.
type fixedFixer struct {
	text string
	err  error
}

func (f fixedFixer) Fix(context.Context, []byte) ([]byte, error) {
	return []byte(f.text), f.err
}

func TestBackendRepair(t *testing.T) {
	t.Parallel()

	buf := textbuf.NewString("[\n{\"a\":1,}\n{\"b\":2}\n]")
	backend := remote.NewBackend(&localFixer{}, comma.DefaultGrammar())

	result, err := backend.Repair(context.Background(), comma.Request{
		Buffer:   buf,
		Preserve: []textbuf.Position{{Row: 1, Column: 8}},
	})
	require.NoError(t, err)

	assert.Equal(t, "[\n{\"a\":1},\n{\"b\":2}\n]", buf.String())
	assert.Equal(t, []textbuf.Position{{Row: 1, Column: 8}}, result.Positions)
	assert.Equal(t, []fix.TextEdit{
		{StartOffset: 8, EndOffset: 9},
		{StartOffset: 9, EndOffset: 9, NewText: ","},
	}, result.Edits)
}

func TestBackendRepairScope(t *testing.T) {
	t.Parallel()

	fixer := &localFixer{}
	buf := textbuf.NewString(`[[1,] [2,] [3,]]`)

	_, err := remote.NewBackend(fixer, comma.DefaultGrammar()).Repair(context.Background(), comma.Request{
		Buffer: buf,
		Scope:  []textbuf.Range{{Begin: 11, End: 15}, {Begin: 1, End: 5}, {Begin: 3, End: 4}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{`[[1,] [2,] [3,]]`}, fixer.sent)
	assert.Equal(t, `[[1] [2,] [3]]`, buf.String())
}

func TestBackendMatchesLocalEngine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		scope []textbuf.Range
	}{
		{name: "whole buffer", input: "{\"a\": 1 \"b\": [true \"x\",],}"},
		{name: "values joined inside the selection", input: `[{"a":1}{"b":2}]`, scope: []textbuf.Range{{Begin: 1, End: 15}}},
		{name: "match past the envelope", input: "[1,\n\n\n]", scope: []textbuf.Range{{Begin: 2, End: 3}}},
		{name: "doubled trailing comma", input: `[1,,]`, scope: []textbuf.Range{{Begin: 4, End: 5}}},
		{name: "nested arrays", input: `[["x"]["y"] [1,]]`, scope: []textbuf.Range{{Begin: 6, End: 12}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			local := textbuf.NewString(tt.input)
			want, err := comma.Repair(comma.Request{Buffer: local, Scope: tt.scope})
			require.NoError(t, err)

			buf := textbuf.NewString(tt.input)
			got, err := remote.NewBackend(&localFixer{}, comma.DefaultGrammar()).Repair(context.Background(), comma.Request{
				Buffer: buf,
				Scope:  tt.scope,
			})
			require.NoError(t, err)

			assert.Equal(t, local.String(), buf.String())
			assert.Equal(t, want.Changed(), got.Changed())
		})
	}
}

func TestBackendRejects(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	tests := []struct {
		name    string
		fixer   remote.Fixer
		wantErr error
	}{
		{name: "changed a value", fixer: fixedFixer{text: `{"a": 2}`}, wantErr: remote.ErrUnsafeResponse},
		{name: "added whitespace", fixer: fixedFixer{text: `{"a": 1 }`}, wantErr: remote.ErrUnsafeResponse},
		{name: "transport failure", fixer: fixedFixer{err: boom}, wantErr: boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			const input = `{"a": 1}`
			buf := textbuf.NewString(input)

			_, err := remote.NewBackend(tt.fixer, comma.DefaultGrammar()).Repair(context.Background(), comma.Request{Buffer: buf})
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, input, buf.String())
		})
	}

	_, err := remote.NewBackend(fixedFixer{}, comma.DefaultGrammar()).Repair(context.Background(), comma.Request{
		Buffer: textbuf.NewString("[]"),
		Scope:  []textbuf.Range{{Begin: 0, End: 5}},
	})
	require.ErrorIs(t, err, comma.ErrInvalidRange)
}
