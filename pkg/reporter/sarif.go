package reporter

import (
	"bufio"
	"cmp"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/jsoncomma/pkg/comma"
	"github.com/yaklabco/jsoncomma/pkg/fix"
	"github.com/yaklabco/jsoncomma/pkg/runner"
	"github.com/yaklabco/jsoncomma/pkg/textbuf"
)

// SARIF version used by this reporter.
const sarifVersion = "2.1.0"

// SARIF schema URI.
const sarifSchemaURI = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"

const sarifInformationURI = "https://github.com/yaklabco/jsoncomma"

// SARIFOutput represents the root SARIF document.
type SARIFOutput struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []SARIFRun `json:"runs"`
}

// SARIFRun represents a single run.
type SARIFRun struct {
	Tool        SARIFTool         `json:"tool"`
	Invocations []SARIFInvocation `json:"invocations"`
	Results     []SARIFResult     `json:"results"`
}

// SARIFTool describes the tool.
type SARIFTool struct {
	Driver SARIFDriver `json:"driver"`
}

// SARIFDriver contains tool metadata and rules.
type SARIFDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri"`
	Rules          []SARIFRule `json:"rules"`
}

// SARIFRule describes one kind of comma repair.
type SARIFRule struct {
	ID               string               `json:"id"`
	ShortDescription SARIFMultiformatText `json:"shortDescription"`
	DefaultConfig    *SARIFRuleConfig     `json:"defaultConfiguration,omitempty"`
}

// SARIFMultiformatText contains text in multiple formats.
type SARIFMultiformatText struct {
	Text string `json:"text"`
}

// SARIFRuleConfig contains rule configuration.
type SARIFRuleConfig struct {
	Level string `json:"level"`
}

// SARIFInvocation records whether the run completed and which files failed.
type SARIFInvocation struct {
	ExecutionSuccessful bool                `json:"executionSuccessful"`
	Notifications       []SARIFNotification `json:"toolExecutionNotifications,omitempty"`
}

// SARIFNotification is a per-file failure.
type SARIFNotification struct {
	Level     string          `json:"level"`
	Message   SARIFMessage    `json:"message"`
	Locations []SARIFLocation `json:"locations,omitempty"`
}

// SARIFResult is one comma repair.
type SARIFResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   SARIFMessage    `json:"message"`
	Locations []SARIFLocation `json:"locations"`
	Fixes     []SARIFFix      `json:"fixes,omitempty"`
}

// SARIFMessage contains the result message.
type SARIFMessage struct {
	Text string `json:"text"`
}

// SARIFLocation describes a code location.
type SARIFLocation struct {
	PhysicalLocation SARIFPhysicalLocation `json:"physicalLocation"`
}

// SARIFPhysicalLocation contains file path and region.
type SARIFPhysicalLocation struct {
	ArtifactLocation SARIFArtifactLocation `json:"artifactLocation"`
	Region           *SARIFRegion          `json:"region,omitempty"`
}

// SARIFArtifactLocation contains the file URI.
type SARIFArtifactLocation struct {
	URI string `json:"uri"`
}

// SARIFRegion is a span of the original file. Lines and columns are
// 1-based; EndColumn is exclusive, so an insertion point has
// StartColumn == EndColumn.
type SARIFRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn"`
	EndLine     int `json:"endLine"`
	EndColumn   int `json:"endColumn"`
}

// SARIFFix represents a proposed fix.
type SARIFFix struct {
	Description     SARIFMessage          `json:"description"`
	ArtifactChanges []SARIFArtifactChange `json:"artifactChanges"`
}

// SARIFArtifactChange describes changes to a file.
type SARIFArtifactChange struct {
	ArtifactLocation SARIFArtifactLocation `json:"artifactLocation"`
	Replacements     []SARIFReplacement    `json:"replacements"`
}

// SARIFReplacement describes a text replacement.
type SARIFReplacement struct {
	DeletedRegion   SARIFRegion           `json:"deletedRegion"`
	InsertedContent *SARIFInsertedContent `json:"insertedContent,omitempty"`
}

// SARIFInsertedContent contains the replacement text.
type SARIFInsertedContent struct {
	Text string `json:"text"`
}

// sarifRules describes the two repairs, in the order results reference them.
//
//nolint:gochecknoglobals // Read-only lookup table.
var sarifRules = []SARIFRule{
	{
		ID:               comma.MissingComma.String(),
		ShortDescription: SARIFMultiformatText{Text: "Sibling values are not separated by a comma"},
		DefaultConfig:    &SARIFRuleConfig{Level: "warning"},
	},
	{
		ID:               comma.TrailingComma.String(),
		ShortDescription: SARIFMultiformatText{Text: "A comma precedes a closing bracket"},
		DefaultConfig:    &SARIFRuleConfig{Level: "warning"},
	},
}

// SARIFReporter formats results as SARIF, one result per comma repair.
type SARIFReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewSARIFReporter creates a new SARIF reporter.
func NewSARIFReporter(opts Options) *SARIFReporter {
	return &SARIFReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *SARIFReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := r.buildOutput(result)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode SARIF: %w", err)
	}

	if result == nil {
		return 0, nil
	}
	return result.Stats.FilesNeedingRepair, nil
}

func (r *SARIFReporter) buildOutput(result *runner.Result) *SARIFOutput {
	run := SARIFRun{
		Tool: SARIFTool{
			Driver: SARIFDriver{
				Name:           "jsoncomma",
				Version:        cmp.Or(r.opts.ToolVersion, "dev"),
				InformationURI: sarifInformationURI,
				Rules:          sarifRules,
			},
		},
		Invocations: []SARIFInvocation{{ExecutionSuccessful: true}},
		Results:     make([]SARIFResult, 0),
	}
	output := &SARIFOutput{Schema: sarifSchemaURI, Version: sarifVersion, Runs: []SARIFRun{run}}
	if result == nil {
		return output
	}

	current := &output.Runs[0]
	invocation := &current.Invocations[0]

	for _, file := range result.Files {
		uri := displayPath(file.Path, r.opts.WorkingDir)
		artifact := SARIFArtifactLocation{URI: uri}

		if file.Error != nil {
			invocation.ExecutionSuccessful = false
			invocation.Notifications = append(invocation.Notifications, SARIFNotification{
				Level:     "error",
				Message:   SARIFMessage{Text: file.Error.Error()},
				Locations: []SARIFLocation{{PhysicalLocation: SARIFPhysicalLocation{ArtifactLocation: artifact}}},
			})
			continue
		}
		if !file.Result.Changed() {
			continue
		}

		original := textbuf.New(file.Result.Original)
		for _, edit := range fix.Unrebase(file.Result.Edits) {
			region := sarifRegion(original, edit)
			ruleID, message, description := comma.MissingComma.String(), "Missing comma", "Insert a comma"
			replacement := SARIFReplacement{DeletedRegion: region, InsertedContent: &SARIFInsertedContent{Text: edit.NewText}}
			if !edit.IsInsert() {
				ruleID, message, description = comma.TrailingComma.String(), "Trailing comma", "Remove the comma"
				replacement.InsertedContent = nil
			}

			current.Results = append(current.Results, SARIFResult{
				RuleID:  ruleID,
				Level:   "warning",
				Message: SARIFMessage{Text: message},
				Locations: []SARIFLocation{{
					PhysicalLocation: SARIFPhysicalLocation{ArtifactLocation: artifact, Region: &region},
				}},
				Fixes: []SARIFFix{{
					Description: SARIFMessage{Text: description},
					ArtifactChanges: []SARIFArtifactChange{{
						ArtifactLocation: artifact,
						Replacements:     []SARIFReplacement{replacement},
					}},
				}},
			})
		}
	}

	return output
}

// sarifRegion locates edit in the original file. An insertion is an empty
// region at the insertion point.
func sarifRegion(original *textbuf.Buffer, edit fix.TextEdit) SARIFRegion {
	start := original.RowCol(edit.StartOffset)
	end := original.RowCol(edit.EndOffset)
	return SARIFRegion{
		StartLine:   start.Row + 1,
		StartColumn: start.Column + 1,
		EndLine:     end.Row + 1,
		EndColumn:   end.Column + 1,
	}
}
