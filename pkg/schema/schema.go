// Package schema describes the canonical layout of an input-output use table.
//
// A Schema is the data that ties the pipeline to one national-accounts
// vintage: the ordered list of industries, the labels of the auxiliary rows
// and columns the pipeline needs, the labels known to be irrelevant, and the
// markers used for missing data. Schemas are plain TOML files so a new
// vintage is a new file, not new code.
//
// # File Format
//
//	name = "bea-2015-summary"
//	vintage = "2015"
//	missing_sentinels = ["---"]
//
//	[layout]
//	header_row = 5
//	skip_rows = [6]
//	label_column = 0
//
//	[aux]
//	total_intermediate_row = "T005"
//	total_intermediate_col = "T001"
//	final_consumption_col = "F010"
//
//	[drop]
//	rows = ["V001", "T018"]
//	columns = ["F02E", "T019"]
//
//	[[industries]]
//	code = "111CA"
//	name = "Farms"
//
// [Default] returns the embedded BEA 2015 summary schema.
package schema

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/prodnet/pkg/errors"
)

//go:embed bea2015.toml
var bea2015 []byte

// Industry is one row/column of the sanitized table.
type Industry struct {
	Code string `toml:"code" validate:"required"`
	Name string `toml:"name" validate:"required"`
}

// AuxLabels names the auxiliary row and columns retained by the sanitizer.
type AuxLabels struct {
	// TotalIntermediateRow holds each consumer's total intermediate inputs (BEA "T005").
	TotalIntermediateRow string `toml:"total_intermediate_row" validate:"required"`
	// TotalIntermediateCol holds each producer's total intermediate sales (BEA "T001").
	TotalIntermediateCol string `toml:"total_intermediate_col" validate:"required"`
	// FinalConsumptionCol holds personal consumption expenditures (BEA "F010").
	FinalConsumptionCol string `toml:"final_consumption_col" validate:"required"`
}

// DropLabels lists rows and columns known to be irrelevant. Anything in the
// raw table that is neither kept nor listed here is reported as unrecognized.
type DropLabels struct {
	Rows    []string `toml:"rows"`
	Columns []string `toml:"columns"`
}

// Layout locates the table inside a spreadsheet. Row and column numbers are
// zero-based.
type Layout struct {
	Sheet       string `toml:"sheet"`
	HeaderRow   int    `toml:"header_row" validate:"gte=0"`
	SkipRows    []int  `toml:"skip_rows"`
	LabelColumn int    `toml:"label_column" validate:"gte=0"`
}

// Schema is the canonical description of one table vintage.
type Schema struct {
	Name             string     `toml:"name" validate:"required"`
	Vintage          string     `toml:"vintage"`
	MissingSentinels []string   `toml:"missing_sentinels"`
	Layout           Layout     `toml:"layout"`
	Aux              AuxLabels  `toml:"aux" validate:"required"`
	Drop             DropLabels `toml:"drop"`
	Industries       []Industry `toml:"industries" validate:"required,min=1,dive"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Default returns the embedded BEA 2015 summary-level schema.
func Default() *Schema {
	s, err := Parse(bea2015)
	if err != nil {
		panic(fmt.Sprintf("schema: embedded bea2015.toml is invalid: %v", err))
	}
	return s
}

// DefaultTOML returns the source of the embedded schema, as a starting
// point for a custom vintage.
func DefaultTOML() []byte {
	return append([]byte(nil), bea2015...)
}

// Load reads and validates a TOML schema file.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "schema %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSchema, err, "read schema %s", path)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a TOML schema.
func Parse(data []byte) (*Schema, error) {
	var s Schema
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSchema, err, "decode schema")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidSchema, "unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks required fields, industry code syntax and uniqueness of
// every label the sanitizer keeps.
func (s *Schema) Validate() error {
	if err := validate.Struct(s); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSchema, err, "schema %q", s.Name)
	}

	seen := make(map[string]string, len(s.Industries)+3)
	claim := func(label, role string) error {
		if prev, ok := seen[label]; ok {
			return errors.New(errors.ErrCodeInvalidSchema, "label %q used as both %s and %s", label, prev, role)
		}
		seen[label] = role
		return nil
	}

	for _, ind := range s.Industries {
		if err := errors.ValidateIndustryCode(ind.Code); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidSchema, err, "schema %q", s.Name)
		}
		if err := claim(ind.Code, "industry"); err != nil {
			return err
		}
	}
	if err := claim(s.Aux.TotalIntermediateRow, "total intermediate row"); err != nil {
		return err
	}
	// The two auxiliary columns live on the other axis from the auxiliary
	// row, so they only have to be distinct from industries and each other.
	delete(seen, s.Aux.TotalIntermediateRow)
	if err := claim(s.Aux.TotalIntermediateCol, "total intermediate column"); err != nil {
		return err
	}
	if err := claim(s.Aux.FinalConsumptionCol, "final consumption column"); err != nil {
		return err
	}

	for _, l := range s.Drop.Rows {
		if seen[l] == "industry" || l == s.Aux.TotalIntermediateRow {
			return errors.New(errors.ErrCodeInvalidSchema, "row %q is both kept and dropped", l)
		}
	}
	for _, l := range s.Drop.Columns {
		if _, kept := seen[l]; kept {
			return errors.New(errors.ErrCodeInvalidSchema, "column %q is both kept and dropped", l)
		}
	}

	for _, r := range s.Layout.SkipRows {
		if r == s.Layout.HeaderRow {
			return errors.New(errors.ErrCodeInvalidSchema, "header row %d is also skipped", r)
		}
	}
	return nil
}

// Len returns the number of industries.
func (s *Schema) Len() int { return len(s.Industries) }

// Codes returns the industry codes in canonical order.
func (s *Schema) Codes() []string {
	codes := make([]string, len(s.Industries))
	for i, ind := range s.Industries {
		codes[i] = ind.Code
	}
	return codes
}

// Names returns the industry names in canonical order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.Industries))
	for i, ind := range s.Industries {
		names[i] = ind.Name
	}
	return names
}

// Index maps each industry code to its canonical position.
func (s *Schema) Index() map[string]int {
	idx := make(map[string]int, len(s.Industries))
	for i, ind := range s.Industries {
		idx[ind.Code] = i
	}
	return idx
}

// IsMissing reports whether a raw cell value is a missing-data marker.
func (s *Schema) IsMissing(cell string) bool {
	v := strings.TrimSpace(cell)
	for _, m := range s.MissingSentinels {
		if v == m {
			return true
		}
	}
	return false
}

// Scope returns a short identifier for cache namespacing, e.g.
// "bea-2015-summary@2015".
func (s *Schema) Scope() string {
	if s.Vintage == "" {
		return s.Name
	}
	return s.Name + "@" + s.Vintage
}
