package config_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/jsoncomma/pkg/config"
)

func TestConfigClone(t *testing.T) {
	t.Parallel()

	t.Run("nil config returns nil", func(t *testing.T) {
		t.Parallel()

		var c *config.Config
		assert.Nil(t, c.Clone())
	})

	t.Run("deep copies slices", func(t *testing.T) {
		t.Parallel()

		original := config.NewConfig()
		original.Ignore = []string{"vendor/**"}
		original.Extensions = []string{".jsonx"}
		original.Jobs = 3

		clone := original.Clone()
		require.NotSame(t, original, clone)
		assert.Equal(t, original, clone)

		clone.Ignore[0] = "node_modules/**"
		clone.Extensions = append(clone.Extensions, ".other")
		assert.Equal(t, []string{"vendor/**"}, original.Ignore)
		assert.Equal(t, []string{".jsonx"}, original.Extensions)
	})
}

func TestFromYAML(t *testing.T) {
	t.Parallel()

	data := []byte(`
grammar:
  literal_tails: "el"
extensions: [".jsonx"]
ignore: ["dist/**"]
backups:
  enabled: true
  mode: sidecar
cache:
  enabled: true
  dir: /tmp/jc
remote:
  executable: /usr/local/bin/jsoncomma
  timeout: 3s
markdown: true
`)

	cfg, err := config.FromYAML(data)
	require.NoError(t, err)

	assert.Equal(t, "el", cfg.Grammar.LiteralTails)
	assert.Equal(t, []string{".jsonx"}, cfg.Extensions)
	assert.Equal(t, []string{"dist/**"}, cfg.Ignore)
	assert.True(t, cfg.Backups.Enabled)
	assert.True(t, cfg.Cache.Enabled)
	assert.Equal(t, "/tmp/jc", cfg.Cache.Dir)
	assert.Equal(t, "/usr/local/bin/jsoncomma", cfg.Remote.Executable)
	assert.Equal(t, 3*time.Second, cfg.Remote.Timeout)
	assert.True(t, cfg.Markdown)

	_, err = config.FromYAML([]byte("grammar: [unclosed"))
	require.Error(t, err)
}

func TestToYAMLRoundTrip(t *testing.T) {
	t.Parallel()

	original := config.NewConfig()
	original.Ignore = []string{"build/**"}
	original.DryRun = true

	data, err := original.ToYAMLWithHeader("# jsoncomma configuration")
	require.NoError(t, err)
	assert.Contains(t, string(data), "# jsoncomma configuration\n\n")
	assert.Contains(t, string(data), "literal_tails: 0123456789el")
	assert.NotContains(t, string(data), "dryrun")

	parsed, err := config.FromYAML(data)
	require.NoError(t, err)
	assert.Equal(t, original.Grammar, parsed.Grammar)
	assert.Equal(t, original.Ignore, parsed.Ignore)
	assert.Equal(t, original.Remote, parsed.Remote)
	assert.False(t, parsed.DryRun)
}

func TestOutputFormatIsValid(t *testing.T) {
	t.Parallel()

	for _, format := range config.OutputFormats() {
		assert.True(t, format.IsValid(), format)
	}
	assert.False(t, config.OutputFormat("checkstyle").IsValid())
	assert.Equal(t, "text, json, diff, sarif, table, summary", config.FormatList())
}

func TestGenerateTemplate(t *testing.T) {
	t.Parallel()

	defaults := config.NewConfig()

	tests := []struct {
		name string
		opts config.TemplateOptions
	}{
		{name: "minimal", opts: config.TemplateOptions{}},
		{name: "full", opts: config.TemplateOptions{Full: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			data := config.GenerateTemplate(tt.opts)
			assert.True(t, strings.HasPrefix(string(data), config.TemplateHeader+"\n"))
			for line := range strings.SplitSeq(strings.TrimSpace(string(data)), "\n") {
				assert.LessOrEqual(t, len(line), 80, "line too long: %q", line)
			}

			// Decoded over a zero Config, the template restores every default
			// it sets.
			parsed, err := config.FromYAML(data)
			require.NoError(t, err)
			assert.Equal(t, defaults.Grammar, parsed.Grammar)
			assert.Empty(t, parsed.Extensions)
			assert.Empty(t, parsed.Ignore)
			assert.Equal(t, defaults.Markdown, parsed.Markdown)
			if tt.opts.Full {
				assert.Equal(t, defaults.Backups, parsed.Backups)
				assert.Equal(t, defaults.Cache, parsed.Cache)
				assert.Equal(t, defaults.Remote, parsed.Remote)
			}
		})
	}
}

func TestDecodeYAMLLayers(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	require.NoError(t, cfg.DecodeYAML([]byte("markdown: true\nremote:\n  addr: localhost:4000\n")))
	require.NoError(t, cfg.DecodeYAML([]byte("markdown: false\n")))

	assert.False(t, cfg.Markdown)
	assert.Equal(t, "localhost:4000", cfg.Remote.Addr)
	assert.Equal(t, config.DefaultRemoteTimeout, cfg.Remote.Timeout)
	assert.Equal(t, config.DefaultLiteralTails, cfg.Grammar.LiteralTails)
}
