package fix_test

import (
	"strings"
	"testing"

	"github.com/yaklabco/jsoncomma/pkg/fix"
)

func TestGenerateDiff(t *testing.T) {
	t.Parallel()

	t.Run("identical content", func(t *testing.T) {
		t.Parallel()

		diff, err := fix.GenerateDiff("a.json", []byte("{}\n"), []byte("{}\n"))
		if err != nil {
			t.Fatal(err)
		}
		if diff.HasChanges() {
			t.Error("expected no changes")
		}
		if diff.FullString() != "" {
			t.Error("expected empty FullString for nil diff")
		}
	})

	t.Run("comma insertion", func(t *testing.T) {
		t.Parallel()

		original := []byte("{\n  \"a\": 1\n  \"b\": 2\n}\n")
		modified := []byte("{\n  \"a\": 1,\n  \"b\": 2\n}\n")

		diff, err := fix.GenerateDiff("/cfg/a.json", original, modified)
		if err != nil {
			t.Fatal(err)
		}
		if !diff.HasChanges() {
			t.Fatal("expected changes")
		}
		if diff.Additions != 1 || diff.Deletions != 1 {
			t.Errorf("Additions/Deletions = %d/%d, want 1/1", diff.Additions, diff.Deletions)
		}

		full := diff.FullString()
		for _, want := range []string{
			"diff --git a/cfg/a.json b/cfg/a.json",
			"--- a/cfg/a.json",
			"+++ b/cfg/a.json",
			"-  \"a\": 1\n",
			"+  \"a\": 1,\n",
		} {
			if !strings.Contains(full, want) {
				t.Errorf("diff missing %q:\n%s", want, full)
			}
		}
	})
}
