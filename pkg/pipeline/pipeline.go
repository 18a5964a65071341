// Package pipeline provides the core diagram pipeline for lzmap.
//
// This package implements the complete classify → build → validate → layout →
// resolve → serialize pipeline used by CLI and API alike. Centralizing the
// staging here keeps behavior consistent across entry points.
//
// # Architecture
//
// The stages run strictly in order; each consumes the previous stage's full
// output. Only layout writes bounds, and only the connection resolver adds
// edges. Validation failure aborts the run before layout — no partial diagram
// is ever produced.
//
// The whole pipeline is single-threaded and performs no I/O (the optional
// artifact cache sits outside the stages). Each invocation builds its own
// model arena, so concurrent invocations are independent.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Records: records,
//	    Preset:  preset.Default(),
//	    Formats: []string{pipeline.FormatDrawio},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doc := result.Artifacts[pipeline.FormatDrawio]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lzmap/lzmap/pkg/classify"
	"github.com/lzmap/lzmap/pkg/layout"
	"github.com/lzmap/lzmap/pkg/model"
	"github.com/lzmap/lzmap/pkg/preset"
)

// Format constants for output formats.
const (
	// FormatDrawio is the draw.io XML diagram document.
	FormatDrawio = "drawio"
	// FormatJSON is the flat node/edge list for interactive graph views.
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDrawio: true,
	FormatJSON:   true,
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: drawio, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Options contains all configuration for one pipeline invocation.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Input
	Records []classify.Record `json:"records"`
	Preset  preset.Preset     `json:"preset"`

	// Render options
	Formats []string `json:"formats,omitempty"`
	Legend  bool     `json:"legend,omitempty"`
	Title   string   `json:"title,omitempty"`

	// Layout metrics. The zero value means layout.Default.
	Layout layout.Config `json:"-"`

	// Refresh bypasses the artifact cache.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Preset.Name == "" {
		o.Preset = preset.Default()
	}
	if err := o.Preset.Validate(); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatDrawio}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Layout == (layout.Config{}) {
		o.Layout = layout.Default
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Model is the validated, laid-out containment model.
	Model *model.Model

	// Groups is the per-tier classification summary.
	Groups []classify.Group

	// InputHash is the content hash of (records, preset, render options).
	InputHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Mismatch is the non-fatal classification coverage error, if any.
	// Serialization proceeds with the grouping as computed.
	Mismatch error

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which artifacts came from the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	RecordCount int
	NodeCount   int
	EdgeCount   int
	BuildTime   time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits per rendered format.
type CacheInfo struct {
	Hits map[string]bool // format → served from cache
}
