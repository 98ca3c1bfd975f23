package comma_test

import (
	"errors"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/jsoncomma/pkg/comma"
	"github.com/yaklabco/jsoncomma/pkg/fix"
	"github.com/yaklabco/jsoncomma/pkg/oracle"
	"github.com/yaklabco/jsoncomma/pkg/textbuf"
)

func repairString(t *testing.T, input string, scope ...textbuf.Range) string {
	t.Helper()

	buf := textbuf.NewString(input)
	_, err := comma.Repair(comma.Request{Buffer: buf, Scope: scope})
	require.NoError(t, err)
	return buf.String()
}

func TestRepair(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trailing comma in object", input: `{"a": 1,}`, want: `{"a": 1}`},
		{name: "trailing comma in array", input: `[1, 2, ]`, want: `[1, 2 ]`},
		{name: "trailing comma before comment", input: "[1, // last\n]", want: "[1 // last\n]"},
		{name: "doubled trailing comma", input: `[1,,]`, want: `[1]`},
		{name: "doubled trailing comma in object", input: `{"a":1,,}`, want: `{"a":1}`},
		{name: "trailing commas around comment", input: "[1, /*x*/ ,\n]", want: "[1 /*x*/ \n]"},
		{name: "objects in array", input: `[{"a":1}{"b":2}]`, want: `[{"a":1},{"b":2}]`},
		{name: "top-level objects untouched", input: `{"a": 1}{"b": 2}`, want: `{"a": 1}{"b": 2}`},
		{name: "top-level arrays untouched", input: `["x"]["y"]`, want: `["x"]["y"]`},
		{name: "nested arrays", input: `[["x"]["y"]]`, want: `[["x"],["y"]]`},
		{
			name:  "value before line comment",
			input: "{\"a\": 1 // comment\n\"b\": 2}",
			want:  "{\"a\": 1, // comment\n\"b\": 2}",
		},
		{name: "value before block comment", input: `[1 /* "x" */ "y"]`, want: `[1, /* "x" */ "y"]`},
		{name: "members on one line", input: `{"a": 1 "b": 2}`, want: `{"a": 1, "b": 2}`},
		{name: "members on separate lines", input: "{\n  \"a\": \"x\"\n  \"b\": [1]\n}", want: "{\n  \"a\": \"x\",\n  \"b\": [1]\n}"},
		{name: "true before object", input: `[true {}]`, want: `[true, {}]`},
		{name: "null before array", input: `[null []]`, want: `[null, []]`},
		{name: "false before string", input: `[false "x"]`, want: `[false, "x"]`},
		{name: "bare word is not a literal", input: `[foe "x"]`, want: `[foe "x"]`},
		{name: "three strings", input: `["a" "b" "c"]`, want: `["a", "b", "c"]`},
		{name: "both passes", input: `{"a":1 "b":2,}`, want: `{"a":1, "b":2}`},
		{name: "comma inside string", input: `{"a": "x,y"}`, want: `{"a": "x,y"}`},
		{name: "brackets inside string", input: `{"a": "}{", "b": "x\",]"}`, want: `{"a": "}{", "b": "x\",]"}`},
		{name: "comma inside comment", input: "[1, // a,]\n2]", want: "[1, // a,]\n2]"},
		{name: "joins inside block comment", input: `[1, /* ]"x" ,} */ 2]`, want: `[1, /* ]"x" ,} */ 2]`},
		{name: "already valid", input: `{"a": [1, 2], "b": {"c": null}}`, want: `{"a": [1, 2], "b": {"c": null}}`},
		{name: "empty buffer", input: ``, want: ``},
		{name: "crlf lines", input: "[\r\n  1\r\n  \"x\",\r\n]", want: "[\r\n  1,\r\n  \"x\"\r\n]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, repairString(t, tt.input))
		})
	}
}

func TestRepairIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		`{"a": 1,}`,
		`[{"a":1}{"b":2}]`,
		"{\n  \"a\": 1 // one\n  \"b\": [true false,]\n  \"c\": {\"d\": null,},\n}",
		`[[1 2] ["x" "y",] {}{},]`,
		`[1,,]`,
		`{"a":1,,}`,
		"[1, /*x*/ ,\n]",
		"[{} {},, // end\n,]",
	}

	for _, input := range inputs {
		once := repairString(t, input)

		buf := textbuf.NewString(once)
		result, err := comma.Repair(comma.Request{Buffer: buf})
		require.NoError(t, err)
		assert.False(t, result.Changed(), "second repair of %q changed %q", input, once)
		assert.Equal(t, once, buf.String())
	}
}

func TestRepairOnlyTouchesCommas(t *testing.T) {
	t.Parallel()

	input := "{\n  \"name\": \"x, y\" /* a, } */\n  \"list\": [1 2 {\"k\": [\"v\",]},]\n  \"n\": null,\n}"
	output := repairString(t, input)

	dmp := diffmatchpatch.New()
	for _, diff := range dmp.DiffMain(input, output, false) {
		if diff.Type == diffmatchpatch.DiffEqual {
			continue
		}
		assert.Equal(t, ",", diff.Text, "unexpected %s", diff.Type)
	}
}

func TestRepairEdits(t *testing.T) {
	t.Parallel()

	input := `{"a":1 "b":2,}`
	buf := textbuf.NewString(input)

	result, err := comma.Repair(comma.Request{Buffer: buf})
	require.NoError(t, err)
	require.Equal(t, []fix.TextEdit{
		{StartOffset: 6, EndOffset: 6, NewText: ","},
		{StartOffset: 13, EndOffset: 14},
	}, result.Edits)

	replayed := []byte(input)
	for _, edit := range result.Edits {
		replayed = fix.ApplyEdits(replayed, []fix.TextEdit{edit})
	}
	assert.Equal(t, buf.String(), string(replayed))
}

func TestRepairScope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		scope []textbuf.Range
		want  string
	}{
		{
			name:  "first object selected",
			input: `{"a":1,}{"b":2,}`,
			scope: []textbuf.Range{{Begin: 0, End: 8}},
			want:  `{"a":1}{"b":2,}`,
		},
		{
			name:  "second object selected",
			input: `{"a":1,}{"b":2,}`,
			scope: []textbuf.Range{{Begin: 8, End: 16}},
			want:  `{"a":1,}{"b":2}`,
		},
		{
			name:  "both selected",
			input: `{"a":1,}{"b":2,}`,
			scope: []textbuf.Range{{Begin: 0, End: 8}, {Begin: 8, End: 16}},
			want:  `{"a":1}{"b":2}`,
		},
		{
			name:  "selection one byte short",
			input: `[1,]`,
			scope: []textbuf.Range{{Begin: 3, End: 4}},
			want:  `[1]`,
		},
		{
			name:  "selection starting after the closing quote",
			input: "[\"a\"\n\"b\"]",
			scope: []textbuf.Range{{Begin: 4, End: 8}},
			want:  "[\"a\",\n\"b\"]",
		},
		{
			name:  "match starting before the envelope",
			input: "[\"a\"\n\"b\"]",
			scope: []textbuf.Range{{Begin: 5, End: 8}},
			want:  "[\"a\"\n\"b\"]",
		},
		{
			name:  "match running past the envelope",
			input: "[1,\n\n\n]",
			scope: []textbuf.Range{{Begin: 2, End: 3}},
			want:  "[1,\n\n\n]",
		},
		{
			name:  "doubled trailing comma selected",
			input: `[1,,]`,
			scope: []textbuf.Range{{Begin: 4, End: 5}},
			want:  `[1]`,
		},
		{
			name:  "selection away from the match",
			input: `[1,    2,]`,
			scope: []textbuf.Range{{Begin: 4, End: 6}},
			want:  `[1,    2,]`,
		},
		{
			name:  "cursors only",
			input: `{"a":1,}{"b":2,}`,
			scope: []textbuf.Range{{Begin: 3, End: 3}, {Begin: 12, End: 12}},
			want:  `{"a":1}{"b":2}`,
		},
		{
			name:  "selection follows earlier insert",
			input: `[["a" "b"] [1,]]`,
			scope: []textbuf.Range{{Begin: 1, End: 15}},
			want:  `[["a", "b"], [1]]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, repairString(t, tt.input, tt.scope...))
		})
	}
}

func TestRepairPreservesPositions(t *testing.T) {
	t.Parallel()

	buf := textbuf.NewString("[\n[\n1,2,]\n]")
	result, err := comma.Repair(comma.Request{
		Buffer: buf,
		Preserve: []textbuf.Position{
			{Row: 2, Column: 10},
			{Row: 0, Column: 0},
			{Row: 2, Column: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "[\n[\n1,2]\n]", buf.String())
	assert.Equal(t, []textbuf.Position{
		{Row: 2, Column: 4},
		{Row: 0, Column: 0},
		{Row: 2, Column: 2},
	}, result.Positions)
}

func TestRepairRejectsInvalidRequests(t *testing.T) {
	t.Parallel()

	const input = `{"a":1,}`

	tests := []struct {
		name     string
		scope    []textbuf.Range
		preserve []textbuf.Position
		want     error
	}{
		{name: "inverted range", scope: []textbuf.Range{{Begin: 5, End: 2}}, want: comma.ErrInvalidRange},
		{name: "range past end", scope: []textbuf.Range{{Begin: 0, End: 8}, {Begin: 0, End: 100}}, want: comma.ErrInvalidRange},
		{name: "negative range", scope: []textbuf.Range{{Begin: -1, End: 2}}, want: comma.ErrInvalidRange},
		{name: "row past end", preserve: []textbuf.Position{{Row: 3}}, want: comma.ErrInvalidPosition},
		{name: "negative column", preserve: []textbuf.Position{{Column: -1}}, want: comma.ErrInvalidPosition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			buf := textbuf.NewString(input)
			revision := buf.Revision()

			_, err := comma.Repair(comma.Request{Buffer: buf, Scope: tt.scope, Preserve: tt.preserve})
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "error %v is not %v", err, tt.want)
			assert.Equal(t, input, buf.String())
			assert.Equal(t, revision, buf.Revision())
		})
	}

	var rangeErr *comma.RangeError
	_, err := comma.Repair(comma.Request{Buffer: textbuf.NewString(input), Scope: []textbuf.Range{{Begin: 0, End: 9}}})
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, 0, rangeErr.Index)

	_, err = comma.Repair(comma.Request{})
	assert.ErrorIs(t, err, comma.ErrNoBuffer)
}

func TestRepairGrammar(t *testing.T) {
	t.Parallel()

	buf := textbuf.NewString(`[1 "a" true "b"]`)
	_, err := comma.Repair(comma.Request{Buffer: buf}, comma.WithGrammar(comma.Grammar{LiteralTails: "e"}))
	require.NoError(t, err)
	assert.Equal(t, `[1 "a" true, "b"]`, buf.String())
}

// flatClassifier classifies like the tokenizer but does not report depth.
type flatClassifier struct {
	tok *oracle.Tokenizer
}

func (f flatClassifier) Classify(buf *textbuf.Buffer, offset int) oracle.TokenClass {
	return f.tok.Classify(buf, offset)
}

// blindClassifier never recognises anything.
type blindClassifier struct{}

func (blindClassifier) Classify(*textbuf.Buffer, int) oracle.TokenClass {
	return oracle.Other
}

func TestEngineClassifier(t *testing.T) {
	t.Parallel()

	t.Run("without nesting every join is a sibling", func(t *testing.T) {
		t.Parallel()

		engine := comma.New(flatClassifier{tok: oracle.NewTokenizer()}, comma.DefaultGrammar())
		buf := textbuf.NewString(`["x"]["y"]`)
		_, err := engine.Repair(comma.Request{Buffer: buf})
		require.NoError(t, err)
		assert.Equal(t, `["x"],["y"]`, buf.String())
	})

	t.Run("unclassified text is left alone", func(t *testing.T) {
		t.Parallel()

		engine := comma.New(blindClassifier{}, comma.DefaultGrammar())
		buf := textbuf.NewString(`[{"a":1,}{"b":2}]`)
		result, err := engine.Repair(comma.Request{Buffer: buf})
		require.NoError(t, err)
		assert.False(t, result.Changed())
		assert.Equal(t, `[{"a":1,}{"b":2}]`, buf.String())
	})
}
