package errors

import (
	"fmt"
	"strings"
)

// Violation is a single structural or reference defect found in a model.
// NodeIDs carries every node (or edge endpoint) implicated, so a defect can
// be located without re-running with tracing.
type Violation struct {
	Code    Code     // REFERENCE, STRUCTURAL, or LAYOUT_INVARIANT
	NodeIDs []string // Offending node ids, in detection order
	Message string   // Human-readable description
}

// String formats the violation as "CODE [id, id]: message".
func (v Violation) String() string {
	if len(v.NodeIDs) == 0 {
		return fmt.Sprintf("%s: %s", v.Code, v.Message)
	}
	return fmt.Sprintf("%s [%s]: %s", v.Code, strings.Join(v.NodeIDs, ", "), v.Message)
}

// ValidationError aggregates every violation found in a single pass.
// The validator collects all defects rather than stopping at the first, so a
// single run reports the full repair surface.
type ValidationError struct {
	Violations []Violation
}

// Error implements the error interface, listing every violation.
func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return "model validation failed: " + e.Violations[0].String()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "model validation failed with %d violations:", len(e.Violations))
	for _, v := range e.Violations {
		sb.WriteString("\n  - ")
		sb.WriteString(v.String())
	}
	return sb.String()
}

// Add appends a violation.
func (e *ValidationError) Add(code Code, nodeIDs []string, format string, args ...any) {
	e.Violations = append(e.Violations, Violation{
		Code:    code,
		NodeIDs: nodeIDs,
		Message: fmt.Sprintf(format, args...),
	})
}

// HasCode reports whether any violation carries the given code.
func (e *ValidationError) HasCode(code Code) bool {
	for _, v := range e.Violations {
		if v.Code == code {
			return true
		}
	}
	return false
}

// ErrOrNil returns the error if any violations were collected, nil otherwise.
// This keeps call sites from returning a non-nil interface wrapping an empty
// struct.
func (e *ValidationError) ErrOrNil() error {
	if len(e.Violations) == 0 {
		return nil
	}
	return e
}
