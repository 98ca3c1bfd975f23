package runner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/yaklabco/jsoncomma/pkg/oracle"
	"github.com/yaklabco/jsoncomma/pkg/pipeline"
)

// Discover resolves opts.Paths into a sorted, deduplicated list of absolute
// file paths.
//
// Directories are walked for JSON-like files (the built-in extension set
// plus opts.Extensions, and Markdown when enabled). Hidden entries are
// skipped unless their name is itself a known JSON file such as .eslintrc.
// A file named explicitly is also accepted when its language is detected as
// JSON from its name or content.
func Discover(ctx context.Context, opts Options) ([]string, error) {
	workDir, err := resolveWorkDir(opts.WorkingDir)
	if err != nil {
		return nil, fmt.Errorf("resolve working directory: %w", err)
	}

	d := &discoverer{opts: opts, workDir: workDir, seen: make(map[string]bool)}

	for _, input := range opts.effectivePaths() {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("discovery cancelled: %w", err)
		}

		absPath := input
		if !filepath.IsAbs(absPath) {
			absPath = filepath.Join(workDir, absPath)
		}
		absPath = filepath.Clean(absPath)

		info, err := os.Stat(absPath)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", input, err)
		}

		if info.IsDir() {
			if err := d.walk(ctx, absPath); err != nil {
				return nil, err
			}
			continue
		}
		if d.excluded(absPath) {
			continue
		}
		if d.wanted(absPath) || detectedJSON(absPath) {
			d.add(absPath)
		}
	}

	slices.Sort(d.files)
	return d.files, nil
}

type discoverer struct {
	opts    Options
	workDir string
	seen    map[string]bool
	files   []string
}

func (d *discoverer) add(path string) {
	if !d.seen[path] {
		d.seen[path] = true
		d.files = append(d.files, path)
	}
}

func (d *discoverer) walk(ctx context.Context, root string) error {
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if walkErr != nil {
			if errors.Is(walkErr, fs.ErrPermission) {
				return nil
			}
			return walkErr
		}

		name := entry.Name()
		if entry.IsDir() {
			if path != root && (strings.HasPrefix(name, ".") || d.excluded(path)) {
				return filepath.SkipDir
			}
			return nil
		}

		if entry.Type()&fs.ModeSymlink != 0 {
			target, err := os.Stat(path)
			if err != nil {
				return nil //nolint:nilerr // Broken symlinks are skipped.
			}
			if target.IsDir() {
				if !d.opts.FollowSymlinks {
					return nil
				}
				resolved, err := filepath.EvalSymlinks(path)
				if err != nil {
					return nil //nolint:nilerr // Unresolvable symlinks are skipped.
				}
				return d.walk(ctx, resolved)
			}
		}

		if strings.HasPrefix(name, ".") && !oracle.IsJSONExtension(name) {
			return nil
		}
		if d.wanted(path) && !d.excluded(path) {
			d.add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walk directory %s: %w", root, err)
	}
	return nil
}

// wanted reports whether path's name or extension selects it.
func (d *discoverer) wanted(path string) bool {
	if oracle.IsJSONExtension(path) {
		return true
	}
	if d.opts.Markdown && pipeline.IsMarkdown(path) {
		return true
	}
	ext := strings.ToLower(filepath.Ext(path))
	return ext != "" && slices.ContainsFunc(d.opts.Extensions, func(e string) bool {
		return strings.EqualFold(e, ext)
	})
}

func (d *discoverer) excluded(path string) bool {
	rel, err := filepath.Rel(d.workDir, path)
	if err != nil {
		rel = path
	}
	return matchesExcludePattern(rel, d.opts.ExcludeGlobs)
}

// detectedJSON asks the language detector about a file given by name.
func detectedJSON(path string) bool {
	const sniff = 8 << 10

	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	head := make([]byte, sniff)
	n, _ := file.Read(head)
	return oracle.InScope(path, head[:n])
}

func resolveWorkDir(workDir string) (string, error) {
	if workDir == "" {
		return os.Getwd()
	}
	return filepath.Abs(workDir)
}

// matchesExcludePattern checks if the path matches any exclude pattern.
func matchesExcludePattern(relPath string, patterns []string) bool {
	return slices.ContainsFunc(patterns, func(pattern string) bool {
		return matchGlob(relPath, pattern)
	})
}

// matchGlob matches a slash-separated path against a glob. "**" matches any
// number of whole segments. A pattern without a slash also matches the base
// name, so "*.json" and "node_modules" work at any depth.
func matchGlob(path, pattern string) bool {
	path = filepath.ToSlash(path)
	pattern = filepath.ToSlash(pattern)

	if !strings.Contains(pattern, "/") && pattern != "**" {
		if ok, _ := filepath.Match(pattern, filepath.Base(path)); ok {
			return true
		}
	}
	return matchSegments(strings.Split(path, "/"), strings.Split(pattern, "/"))
}

func matchSegments(path, pattern []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			for skip := 0; skip <= len(path); skip++ {
				if matchSegments(path[skip:], rest) {
					return true
				}
			}
			return false
		}
		if len(path) == 0 {
			return false
		}
		if ok, err := filepath.Match(pattern[0], path[0]); err != nil || !ok {
			return false
		}
		path, pattern = path[1:], pattern[1:]
	}
	return len(path) == 0
}
