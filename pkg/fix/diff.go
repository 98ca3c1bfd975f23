package fix

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// contextLines is the number of context lines to show around changes.
const contextLines = 3

// Diff is a unified diff between the original and repaired content of a file.
type Diff struct {
	// Path is the file path for the diff header.
	Path string

	// Unified is the diff body, starting at the ---/+++ header.
	Unified string

	// Additions is the number of lines added.
	Additions int

	// Deletions is the number of lines deleted.
	Deletions int
}

// GenerateDiff creates a unified diff between original and modified content.
// Returns nil if the contents are identical.
func GenerateDiff(path string, original, modified []byte) (*Diff, error) {
	if string(original) == string(modified) {
		return nil, nil
	}

	name := strings.TrimPrefix(path, "/")
	unified, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(original)),
		B:        difflib.SplitLines(string(modified)),
		FromFile: "a/" + name,
		ToFile:   "b/" + name,
		Context:  contextLines,
	})
	if err != nil {
		return nil, fmt.Errorf("generate diff for %s: %w", path, err)
	}

	diff := &Diff{Path: path, Unified: unified}
	diff.count()
	return diff, nil
}

// count tallies added and removed lines, skipping the file headers.
func (d *Diff) count() {
	scanner := bufio.NewScanner(strings.NewReader(d.Unified))
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			d.Additions++
		case strings.HasPrefix(line, "-"):
			d.Deletions++
		}
	}
}

// GitHeader returns the "diff --git" header line.
func (d *Diff) GitHeader() string {
	if d == nil {
		return ""
	}
	path := strings.TrimPrefix(d.Path, "/")
	return fmt.Sprintf("diff --git a/%s b/%s", path, path)
}

// String returns the diff in unified format (without the git header).
func (d *Diff) String() string {
	if d == nil {
		return ""
	}
	return d.Unified
}

// FullString returns the complete diff including the git header.
func (d *Diff) FullString() string {
	if !d.HasChanges() {
		return ""
	}
	return d.GitHeader() + "\n" + d.Unified
}

// HasChanges returns true if the diff contains any changes.
func (d *Diff) HasChanges() bool {
	return d != nil && d.Unified != ""
}
