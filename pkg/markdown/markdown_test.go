package markdown_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/jsoncomma/pkg/comma"
	"github.com/yaklabco/jsoncomma/pkg/fix"
	"github.com/yaklabco/jsoncomma/pkg/markdown"
	"github.com/yaklabco/jsoncomma/pkg/textbuf"
)

const doc = "# Config\n" +
	"\n" +
	"Trailing commas, like this, are fine in prose.\n" +
	"\n" +
	"```json\n" +
	"{\"a\": 1,}\n" +
	"```\n" +
	"\n" +
	"```go\n" +
	"x := []int{1, 2,}\n" +
	"```\n" +
	"\n" +
	"```JSONC title=\"b\"\n" +
	"[\n  \"x\"\n  \"y\",\n]\n" +
	"```\n" +
	"\n" +
	"- item\n" +
	"\n" +
	"  ```json\n" +
	"  [1,\n" +
	"  2,]\n" +
	"  ```\n"

func repairBuffer(buf *textbuf.Buffer) ([]fix.TextEdit, error) {
	result, err := comma.Repair(comma.Request{Buffer: buf})
	if err != nil {
		return nil, err
	}
	return result.Edits, nil
}

func TestBlocks(t *testing.T) {
	t.Parallel()

	blocks := markdown.Blocks([]byte(doc))
	require.Len(t, blocks, 2)

	assert.Equal(t, "json", blocks[0].Lang)
	assert.Equal(t, "{\"a\": 1,}\n", doc[blocks[0].Body.Begin:blocks[0].Body.End])
	assert.Equal(t, "jsonc", blocks[1].Lang)
	assert.Equal(t, "[\n  \"x\"\n  \"y\",\n]\n", doc[blocks[1].Body.Begin:blocks[1].Body.End])
}

func TestRepair(t *testing.T) {
	t.Parallel()

	out, edits, err := markdown.Repair([]byte(doc), repairBuffer)
	require.NoError(t, err)

	want := "# Config\n" +
		"\n" +
		"Trailing commas, like this, are fine in prose.\n" +
		"\n" +
		"```json\n" +
		"{\"a\": 1}\n" +
		"```\n" +
		"\n" +
		"```go\n" +
		"x := []int{1, 2,}\n" +
		"```\n" +
		"\n" +
		"```JSONC title=\"b\"\n" +
		"[\n  \"x\",\n  \"y\"\n]\n" +
		"```\n" +
		"\n" +
		"- item\n" +
		"\n" +
		"  ```json\n" +
		"  [1,\n" +
		"  2,]\n" +
		"  ```\n"
	assert.Equal(t, want, string(out))
	require.Len(t, edits, 3)

	replayed := []byte(doc)
	for _, edit := range edits {
		replayed = fix.ApplyEdits(replayed, []fix.TextEdit{edit})
	}
	assert.Equal(t, want, string(replayed))
}

func TestRepairWithoutBlocks(t *testing.T) {
	t.Parallel()

	content := []byte("just text, nothing else,\n")
	out, edits, err := markdown.Repair(content, repairBuffer)
	require.NoError(t, err)
	assert.Equal(t, content, out)
	assert.Empty(t, edits)
}
