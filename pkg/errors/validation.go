package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// industryCodeRegex matches national-accounts industry codes such as
// "111CA", "3361MV", "GSLE" or "22".
var industryCodeRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// ValidateIndustryCode validates an industry code taken from a schema or a
// command line argument.
//
// The rules are intentionally conservative:
//   - No empty codes
//   - No control characters or whitespace
//   - Maximum length of 32 characters
//   - Letters, digits, '_', '.', '-' only, starting with a letter or digit
func ValidateIndustryCode(code string) error {
	if code == "" {
		return New(ErrCodeInvalidCode, "industry code cannot be empty")
	}

	if len(code) > 32 {
		return New(ErrCodeInvalidCode, "industry code too long (max 32 characters): %q", code)
	}

	for _, r := range code {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidCode, "industry code contains whitespace or control characters: %q", code)
		}
	}

	if !industryCodeRegex.MatchString(code) {
		return New(ErrCodeInvalidCode, "invalid industry code: %q", code)
	}

	return nil
}

// ValidateThreshold checks that a relevance threshold is a finite number in [0, 1].
func ValidateThreshold(threshold float64) error {
	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return New(ErrCodeInvalidThreshold, "threshold must be finite, got %v", threshold)
	}
	if threshold < 0 || threshold > 1 {
		return New(ErrCodeInvalidThreshold, "threshold must be in [0, 1], got %v", threshold)
	}
	return nil
}

// ValidateTableFilename validates the name of an input table file.
// Only CSV and XLSX workbooks are accepted.
func ValidateTableFilename(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "table path cannot be empty")
	}

	for _, r := range path {
		if r == '\x00' {
			return New(ErrCodeInvalidInput, "table path contains a null byte")
		}
	}

	lower := strings.ToLower(path)
	if strings.HasSuffix(lower, ".xls") {
		return New(ErrCodeInvalidFormat, "legacy .xls workbook %q is not supported: re-save it as .xlsx or export it as .csv", path)
	}
	if !strings.HasSuffix(lower, ".csv") && !strings.HasSuffix(lower, ".xlsx") {
		return New(ErrCodeInvalidFormat, "unsupported table format: %q (must be .csv or .xlsx)", path)
	}

	return nil
}
