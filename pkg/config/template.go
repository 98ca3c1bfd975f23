package config

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// commentWrapWidth is the maximum width for wrapped comments in templates.
const commentWrapWidth = 70

// TemplateHeader opens every generated configuration file.
const TemplateHeader = `# jsoncomma configuration.
# Settings here apply to this directory and everything below it, up to the
# repository root. Environment variables (JSONCOMMA_*) and flags override them.`

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full lists every setting with its default value and documentation.
	// If false, only the grammar is set and the common settings are shown
	// commented out.
	Full bool
}

// GenerateTemplate creates a commented YAML configuration file holding the
// defaults of NewConfig.
func GenerateTemplate(opts TemplateOptions) []byte {
	defaults := NewConfig()

	var buf bytes.Buffer
	buf.WriteString(TemplateHeader + "\n")
	if opts.Full {
		buf.WriteString("#\n# Every setting is listed with its default value.\n")
	}

	buf.WriteString("\n")
	writeComment(&buf, "", "Bytes that can end a literal value. A missing comma is only inserted "+
		"after a literal whose last byte is in this set. The default covers numbers, "+
		"true, false and null.")
	buf.WriteString("grammar:\n")
	fmt.Fprintf(&buf, "  literal_tails: %s\n", strconv.Quote(defaults.Grammar.LiteralTails))

	buf.WriteString("\n")
	writeComment(&buf, "", "Extra file extensions treated as JSON when searching directories")
	buf.WriteString("# extensions:\n#   - \".jsonx\"\n")

	buf.WriteString("\n")
	writeComment(&buf, "", "File patterns to ignore (glob patterns, ** matches any directories)")
	buf.WriteString("# ignore:\n#   - \"node_modules/**\"\n#   - \"testdata/**\"\n")

	buf.WriteString("\n")
	writeComment(&buf, "", "Repair json code blocks in Markdown files")
	if opts.Full {
		fmt.Fprintf(&buf, "markdown: %t\n", defaults.Markdown)
	} else {
		fmt.Fprintf(&buf, "# markdown: %t\n", defaults.Markdown)
	}

	if !opts.Full {
		return buf.Bytes()
	}

	buf.WriteString("\n")
	writeComment(&buf, "", "Backups written next to each repaired file before it is replaced")
	buf.WriteString("backups:\n")
	fmt.Fprintf(&buf, "  enabled: %t\n", defaults.Backups.Enabled)
	writeComment(&buf, "  ", "sidecar writes <file>.bak; none disables backups")
	fmt.Fprintf(&buf, "  mode: %s\n", defaults.Backups.Mode)

	buf.WriteString("\n")
	writeComment(&buf, "", "Cache of files already known to need no repair, keyed by content hash")
	buf.WriteString("cache:\n")
	fmt.Fprintf(&buf, "  enabled: %t\n", defaults.Cache.Enabled)
	writeComment(&buf, "  ", "Defaults to $XDG_CACHE_HOME/jsoncomma")
	buf.WriteString("  # dir: /tmp/jsoncomma\n")

	buf.WriteString("\n")
	writeComment(&buf, "", "Remote repair server used by fix --remote")
	buf.WriteString("remote:\n")
	writeComment(&buf, "  ", "Binary started with \"server\"; defaults to the running executable")
	buf.WriteString("  # executable: /usr/local/bin/jsoncomma\n")
	writeComment(&buf, "  ", "A server already listening; when set, no process is started")
	buf.WriteString("  # addr: localhost:4000\n")
	writeComment(&buf, "  ", "Bounds the handshake and each request")
	fmt.Fprintf(&buf, "  timeout: %s\n", defaults.Remote.Timeout)

	return buf.Bytes()
}

// writeComment writes text as wrapped comment lines at indent.
func writeComment(buf *bytes.Buffer, indent, text string) {
	buf.WriteString(indent + "# " + wrapComment(text, commentWrapWidth, indent) + "\n")
}

// wrapComment wraps a comment to fit within maxWidth characters.
func wrapComment(text string, maxWidth int, indent string) string {
	if len(text) <= maxWidth {
		return text
	}

	var lines []string
	currentLine := ""

	for _, word := range strings.Fields(text) {
		switch {
		case currentLine == "":
			currentLine = word
		case len(currentLine)+1+len(word) <= maxWidth:
			currentLine += " " + word
		default:
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n"+indent+"# ")
}
