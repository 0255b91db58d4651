// Package pipeline runs the table → network → diagram pipeline for prodnet.
//
// The CLI and any other entry point share this package so that caching,
// validation and stage reporting behave the same everywhere.
//
// # Stages
//
//  1. Sanitize: reduce a raw table to the schema's industries and auxiliary
//     vectors ([iotable.Sanitize]).
//  2. Build: compute upstreamness and the supplier/customer lists
//     ([network.Build]).
//  3. Render: draw the network or one neighbourhood as DOT, SVG or JSON.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	raw, _ := iotable.Load("IOUse_2015.xlsx", s.Layout)
//	result, err := runner.Execute(ctx, raw, s, pipeline.Options{Threshold: 0.05})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg, _, err := runner.Render(ctx, result.Network, pipeline.RenderOptions{Format: pipeline.FormatSVG})
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/matzehuels/prodnet/pkg/cache"
	"github.com/matzehuels/prodnet/pkg/errors"
	"github.com/matzehuels/prodnet/pkg/graph"
	"github.com/matzehuels/prodnet/pkg/network"
)

// Stage names reported through observability hooks and stage errors.
const (
	StageSanitize = "sanitize"
	StageBuild    = "build"
	StageRender   = "render"
)

// Output formats for Render.
const (
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT:  true,
	FormatSVG:  true,
	FormatJSON: true,
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Options configures a network build.
type Options struct {
	// Threshold is the minimum input share for a flow to be material.
	Threshold float64 `json:"threshold" validate:"gte=0,lte=1"`
	// TopK bounds each supplier and customer list. Zero means
	// [network.DefaultTopK].
	TopK int `json:"top_k" validate:"gte=0,lte=1000"`
	// ConditionCap bounds cond(I - A). Zero means
	// [network.DefaultConditionCap].
	ConditionCap float64 `json:"condition_cap" validate:"gte=0"`
	// Refresh skips the cache lookup but still stores the result.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-" validate:"-"`

	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := errors.ValidateThreshold(o.Threshold); err != nil {
		return err
	}
	if err := validate.Struct(o); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid options")
	}
	if o.TopK == 0 {
		o.TopK = network.DefaultTopK
	}
	if o.ConditionCap == 0 {
		o.ConditionCap = network.DefaultConditionCap
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Params converts the options to build parameters.
func (o *Options) Params() network.Params {
	return network.Params{
		Threshold:    o.Threshold,
		TopK:         o.TopK,
		ConditionCap: o.ConditionCap,
	}
}

// NetworkKeyOpts returns cache key options for the build.
func (o *Options) NetworkKeyOpts() cache.NetworkKeyOpts {
	return cache.NetworkKeyOpts{
		Threshold:    o.Threshold,
		TopK:         o.TopK,
		ConditionCap: o.ConditionCap,
	}
}

// RenderOptions configures Render.
type RenderOptions struct {
	Format string `json:"format" validate:"omitempty,oneof=dot svg json"`
	// Direction selects which lists become edges: suppliers, customers or
	// both (the default).
	Direction string `json:"direction,omitempty" validate:"omitempty,oneof=suppliers customers both"`
	// Focus draws only the neighbourhood of this industry.
	Focus    string `json:"focus,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`
}

// ValidateAndSetDefaults checks the options and fills in defaults.
func (o *RenderOptions) ValidateAndSetDefaults() error {
	if o.Format == "" {
		o.Format = FormatSVG
	}
	if o.Direction == "" {
		o.Direction = graph.DirectionBoth
	}
	if err := validate.Struct(o); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "invalid render options")
	}
	if o.Focus != "" {
		if err := errors.ValidateIndustryCode(o.Focus); err != nil {
			return err
		}
	}
	return nil
}

// RenderKeyOpts returns cache key options for the render.
func (o *RenderOptions) RenderKeyOpts() cache.RenderKeyOpts {
	return cache.RenderKeyOpts{
		Format:    o.Format,
		Direction: o.Direction,
		Focus:     o.Focus,
		Detailed:  o.Detailed,
	}
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: dot, svg, json)", format)
	}
	return nil
}

// Result contains the outputs of a build.
type Result struct {
	// RunID identifies this run in logs.
	RunID uuid.UUID
	// Scope is the schema scope the table was sanitized under.
	Scope string
	// Network is the built production network.
	Network *network.Network
	// TableHash is the content hash of the raw table.
	TableHash string
	// Options are the effective options after defaults.
	Options Options
	// Unrecognized lists raw labels that are neither industries, auxiliary
	// labels nor explicitly dropped.
	UnrecognizedRows []string
	UnrecognizedCols []string

	Stats     Stats
	CacheInfo CacheInfo
}

// Meta returns the document metadata describing this build.
func (r *Result) Meta() *graph.Meta {
	return &graph.Meta{
		Schema:    r.Scope,
		TableHash: r.TableHash,
		Threshold: r.Options.Threshold,
		TopK:      r.Options.TopK,
	}
}

// Stats contains build statistics.
type Stats struct {
	Industries    int
	SupplierEdges int
	CustomerEdges int
	SanitizeTime  time.Duration
	BuildTime     time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	NetworkHit bool
}

// SweepPoint is the network size at one threshold.
type SweepPoint struct {
	Threshold     float64 `json:"threshold"`
	SupplierEdges int     `json:"supplier_edges"`
	CustomerEdges int     `json:"customer_edges"`
}
