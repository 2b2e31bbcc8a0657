package models

import "fmt"

// ErrorType represents different categories of rewriter errors
type ErrorType int

const (
	ErrorTypeParse ErrorType = iota
	ErrorTypeDirectiveSyntax
	ErrorTypeValidation
	ErrorTypeGeneration
	ErrorTypeFileSystem
)

// RewriteError represents an error that occurred while rewriting a project
type RewriteError struct {
	Type    ErrorType // type of error
	File    string    // file where error occurred
	Line    int       // line number where error occurred
	Message string    // error message
	Cause   error     // underlying error cause
}

// Error implements the error interface
func (e *RewriteError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error cause
func (e *RewriteError) Unwrap() error {
	return e.Cause
}
