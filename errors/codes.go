package errors

// ErrorCategory classifies errors by where they originate.
type ErrorCategory string

// Error categories.
const (
	// CategoryInput indicates malformed structured input.
	CategoryInput ErrorCategory = "input"

	// CategoryNetwork indicates a transport failure propagated from a fetch
	// collaborator.
	CategoryNetwork ErrorCategory = "network"

	// CategoryFormat indicates a malformed payload (BibTeX, CSL-JSON) or a
	// payload missing a field needed for display.
	CategoryFormat ErrorCategory = "format"

	// CategoryConfig indicates a malformed directive combination or date range.
	CategoryConfig ErrorCategory = "config"

	// CategoryInternal indicates unexpected errors or bugs.
	CategoryInternal ErrorCategory = "internal"
)

// String returns the string representation of the category.
func (c ErrorCategory) String() string {
	return string(c)
}

// ErrorCode identifies specific error types within categories.
type ErrorCode string

// Error codes.
const (
	// Input errors
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT" // Malformed structured input

	// Network errors
	ErrCodeNetwork    ErrorCode = "NETWORK_ERR" // Transport failure
	ErrCodeHTTPStatus ErrorCode = "HTTP_STATUS" // Non-success HTTP status

	// Format errors
	ErrCodeMalformedBibtex ErrorCode = "MALFORMED_BIBTEX" // BibTeX could not be parsed
	ErrCodeMalformedCSL    ErrorCode = "MALFORMED_CSL"    // CSL-JSON could not be parsed
	ErrCodeBadYear         ErrorCode = "BAD_YEAR"         // Year tag is not numeric
	ErrCodeMissingField    ErrorCode = "MISSING_FIELD"    // Field required for display is absent
	ErrCodeNoDisplayText   ErrorCode = "NO_DISPLAY_TEXT"  // Source yielded nothing to display

	// Config errors
	ErrCodeBadDirective ErrorCode = "BAD_DIRECTIVE"  // Malformed directive combination
	ErrCodeBadDateRange ErrorCode = "BAD_DATE_RANGE" // Malformed date range
	ErrCodeBadConfig    ErrorCode = "BAD_CONFIG"     // Malformed configuration file

	// Internal errors
	ErrCodeInternal ErrorCode = "INTERNAL" // Unexpected internal error
)

// String returns the string representation of the error code.
func (c ErrorCode) String() string {
	return string(c)
}

// DefaultCategory returns the category an error code belongs to.
func (c ErrorCode) DefaultCategory() ErrorCategory {
	switch c {
	case ErrCodeInvalidInput:
		return CategoryInput

	case ErrCodeNetwork, ErrCodeHTTPStatus:
		return CategoryNetwork

	case ErrCodeMalformedBibtex, ErrCodeMalformedCSL, ErrCodeBadYear,
		ErrCodeMissingField, ErrCodeNoDisplayText:
		return CategoryFormat

	case ErrCodeBadDirective, ErrCodeBadDateRange, ErrCodeBadConfig:
		return CategoryConfig

	default:
		return CategoryInternal
	}
}

// codeDescriptions provides human-readable descriptions for error codes.
var codeDescriptions = map[ErrorCode]string{
	ErrCodeInvalidInput:    "invalid input",
	ErrCodeNetwork:         "network error",
	ErrCodeHTTPStatus:      "unexpected HTTP status",
	ErrCodeMalformedBibtex: "malformed bibtex",
	ErrCodeMalformedCSL:    "malformed CSL-JSON",
	ErrCodeBadYear:         "year is not a number",
	ErrCodeMissingField:    "required field missing",
	ErrCodeNoDisplayText:   "no display text",
	ErrCodeBadDirective:    "malformed directive",
	ErrCodeBadDateRange:    "malformed date range",
	ErrCodeBadConfig:       "malformed configuration",
	ErrCodeInternal:        "internal error",
}

// Description returns a human-readable description for the error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}
