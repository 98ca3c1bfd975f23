package oracle

import (
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-enry/go-enry/v2"
)

// jsonExtensions are file extensions always treated as JSON-like.
//
//nolint:gochecknoglobals // Read-only lookup table.
var jsonExtensions = map[string]bool{
	".json":               true,
	".jsonc":              true,
	".json5":              true,
	".code-workspace":     true,
	".code-snippets":      true,
	".sublime-settings":   true,
	".sublime-keymap":     true,
	".sublime-commands":   true,
	".sublime-menu":       true,
	".sublime-project":    true,
	".sublime-build":      true,
	".sublime-mousemap":   true,
	".babelrc":            true,
	".eslintrc":           true,
	".jshintrc":           true,
	".webmanifest":        true,
	".geojson":            true,
	".tsbuildinfo":        true,
	".ipynb":              true,
	".har":                true,
	".avsc":               true,
	".mcmeta":             true,
	".tern-project":       true,
	".jscsrc":             true,
	".arcconfig":          true,
	".watchmanconfig":     true,
	".prettierrc":         true,
	".swcrc":              true,
	".stylelintrc":        true,
	".htmlhintrc":         true,
	".imgbotconfig":       true,
	".all-contributorsrc": true,
}

// languageCache memoizes language lookups by file name. File names are
// immutable inputs, so entries never go stale.
//
//nolint:gochecknoglobals // Process-wide memo of an immutable lookup.
var languageCache sync.Map

// IsJSONExtension reports whether path has an extension that is always
// treated as JSON-like. JSON Lines files are excluded: every line is its own
// document and commas between them would be wrong.
func IsJSONExtension(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	if jsonExtensions[base] {
		return true
	}
	return jsonExtensions[strings.ToLower(filepath.Ext(path))]
}

// InScope reports whether a file belongs to a JSON-like grammar at all.
// The extension is checked first, then the language go-enry infers from the
// file name and, failing that, from the content.
func InScope(path string, content []byte) bool {
	if IsJSONExtension(path) {
		return true
	}
	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		return false
	}

	if lang := languageByName(path); lang != "" {
		return isJSONLanguage(lang)
	}

	if len(content) == 0 {
		return false
	}
	lang, safe := enry.GetLanguageByClassifier(content, []string{"JSON", "JSON with Comments", "JSON5", "YAML", "JavaScript"})
	return safe && isJSONLanguage(lang)
}

// ShouldEnable decides whether a host should run the engine automatically,
// from the cheapest signals to the most expensive one: the syntax name, the
// scope name, the file extension and finally the language of the file name.
func ShouldEnable(filename, syntax, scope string) bool {
	switch {
	case strings.Contains(strings.ToLower(syntax), "json"):
		return true
	case strings.Contains(strings.ToLower(scope), "json"):
		return true
	case filename != "" && IsJSONExtension(filename):
		return true
	case filename != "":
		return isJSONLanguage(languageByName(filename))
	default:
		return false
	}
}

func languageByName(path string) string {
	if cached, ok := languageCache.Load(path); ok {
		lang, _ := cached.(string)
		return lang
	}

	lang, _ := enry.GetLanguageByFilename(path)
	if lang == "" {
		lang, _ = enry.GetLanguageByExtension(path)
	}
	languageCache.Store(path, lang)
	return lang
}

// isJSONLanguage matches the JSON family of linguist names (JSON, JSON5,
// JSON with Comments, JSONLD) but not JSONiq, which is a query language.
func isJSONLanguage(lang string) bool {
	lower := strings.ToLower(lang)
	return strings.Contains(lower, "json") && lower != "jsoniq"
}
