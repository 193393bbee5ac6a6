// Package errors provides the structured error taxonomy used across
// resumekit. Every failure that crosses a package boundary carries a code
// and a category so callers can decide whether it aborts the run or is
// recovered locally.
//
// # Error Categories
//
// Errors are classified into five categories:
//
//   - Input: the structured input record is malformed
//   - Network: a fetch collaborator failed (transport or HTTP status)
//   - Format: a fetched payload could not be parsed or formatted
//   - Config: a directive combination or date range is malformed
//   - Internal: unexpected errors indicating bugs
//
// # Usage
//
// Create a new error:
//
//	err := errors.New(errors.ErrCodeBadDirective, "unknown project source")
//
// Wrap an existing error with context:
//
//	wrapped := errors.Wrap(err, "importing projects")
//
// Check the category of an error anywhere in a chain:
//
//	if errors.IsCategory(err, errors.CategoryFormat) {
//	    // drop the citation
//	}
package errors
