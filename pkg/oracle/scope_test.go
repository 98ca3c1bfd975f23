package oracle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/jsoncomma/pkg/oracle"
)

func TestInScope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path    string
		content string
		want    bool
	}{
		{path: "package.json", want: true},
		{path: "tsconfig.JSONC", want: true},
		{path: "conf/app.json5", want: true},
		{path: "proj.code-workspace", want: true},
		{path: "Preferences.sublime-settings", want: true},
		{path: ".babelrc", want: true},
		{path: "events.jsonl", content: `{"a":1}`, want: false},
		{path: "main.go", content: "package main\n", want: false},
		{path: "README.md", content: "# title\n", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, oracle.InScope(tt.path, []byte(tt.content)))
		})
	}
}

func TestShouldEnable(t *testing.T) {
	t.Parallel()

	assert.True(t, oracle.ShouldEnable("", "Packages/JSON/JSON.sublime-syntax", ""))
	assert.True(t, oracle.ShouldEnable("", "", "source.json meta.mapping"))
	assert.True(t, oracle.ShouldEnable("settings.jsonc", "Plain Text", "text.plain"))
	assert.False(t, oracle.ShouldEnable("notes.txt", "Plain Text", "text.plain"))
	assert.False(t, oracle.ShouldEnable("", "", ""))
}
