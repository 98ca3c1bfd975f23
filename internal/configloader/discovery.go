package configloader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// appName names the system, user and cache directories.
const appName = "jsoncomma"

// ConfigPaths holds the configuration files found for one run. A layer with
// no file is left empty.
type ConfigPaths struct {
	System   string // /etc/jsoncomma/config.yaml or %ProgramData%\jsoncomma
	User     string // $XDG_CONFIG_HOME/jsoncomma/config.yaml
	Project  string // nearest .jsoncomma.yml at or above the working directory
	Explicit string // --config
}

// Project file names, most preferred first.
//
//nolint:gochecknoglobals // Read-only lookup table.
var projectConfigFiles = []string{
	".jsoncomma.yml",
	".jsoncomma.yaml",
	"jsoncomma.yml",
	"jsoncomma.yaml",
}

//nolint:gochecknoglobals // Read-only lookup table.
var layerConfigFiles = []string{"config.yaml", "config.yml"}

// A directory holding one of these is a repository root; the project search
// does not climb past it.
//
//nolint:gochecknoglobals // Read-only lookup table.
var vcsRootMarkers = []string{".git", ".hg", ".svn"}

// DiscoverPaths locates the system, user and project configuration files
// that apply to workDir.
func DiscoverPaths(ctx context.Context, workDir string) (*ConfigPaths, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context cancelled: %w", err)
	}

	project, err := FindProjectConfig(ctx, workDir)
	if err != nil {
		return nil, err
	}

	return &ConfigPaths{
		System:  firstFile(systemConfigDir(), layerConfigFiles),
		User:    firstFile(userConfigDir(), layerConfigFiles),
		Project: project,
	}, nil
}

func systemConfigDir() string {
	if runtime.GOOS != "windows" {
		return filepath.Join("/etc", appName)
	}
	base := os.Getenv("ProgramData")
	if base == "" {
		base = `C:\ProgramData`
	}
	return filepath.Join(base, appName)
}

func userConfigDir() string {
	if base := os.Getenv("XDG_CONFIG_HOME"); base != "" {
		return filepath.Join(base, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", appName)
}

// firstFile returns the first of names that is a regular file in dir.
func firstFile(dir string, names []string) string {
	if dir == "" {
		return ""
	}
	for _, name := range names {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate
		}
	}
	return ""
}

// FindProjectConfig walks from startDir towards the filesystem root and
// returns the first project configuration file it meets. The walk ends
// without a result at a repository root, at the home directory, or at the
// filesystem root.
func FindProjectConfig(ctx context.Context, startDir string) (string, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}

	home, _ := os.UserHomeDir()

	for {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("context cancelled: %w", err)
		}
		if found := firstFile(dir, projectConfigFiles); found != "" {
			return found, nil
		}
		if dir == home || isVCSRoot(dir) {
			return "", nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func isVCSRoot(dir string) bool {
	for _, marker := range vcsRootMarkers {
		if info, err := os.Stat(filepath.Join(dir, marker)); err == nil && info.IsDir() {
			return true
		}
	}
	return false
}

// DefaultCacheDir returns $XDG_CACHE_HOME/jsoncomma, falling back to the
// platform user cache directory.
func DefaultCacheDir() (string, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		var err error
		if base, err = os.UserCacheDir(); err != nil {
			return "", fmt.Errorf("locate cache directory: %w", err)
		}
	}
	return filepath.Join(base, appName), nil
}
