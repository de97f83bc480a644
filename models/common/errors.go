package common

import (
	"fmt"
	"runtime"
)

type ProcessingError struct {
	Identifier string
	IsFatal    bool
	Message    string
	RunID      string
	Source     string
}

// NewProcessingError returns a new ProcessingError. Param runID is the
// ID of the match run being processed when the error occurred. Param
// identifier names the thing that failed: a bucket, an object key, a
// trace ID, or a request URL. Fatal errors are those which will fail
// again on retry (a bucket that doesn't exist, credentials that are
// rejected). Non-fatal errors are transient, like a dropped network
// connection, and a later run is likely to succeed.
func NewProcessingError(runID, identifier, message string, isFatal bool) *ProcessingError {
	_, filename, line, ok := runtime.Caller(1)
	source := "unknown:0"
	if ok {
		source = fmt.Sprintf("%s:%d", filename, line)
	}
	return &ProcessingError{
		Identifier: identifier,
		IsFatal:    isFatal,
		Message:    message,
		RunID:      runID,
		Source:     source,
	}
}

func (e *ProcessingError) Error() string {
	severity := "non-fatal"
	if e.IsFatal {
		severity = "fatal"
	}
	return fmt.Sprintf("(run %s) (message: %s) (severity: %s) "+
		"(identifier: %s) (source: %s)", e.RunID, e.Message,
		severity, e.Identifier, e.Source)
}
