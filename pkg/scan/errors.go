package scan

import (
	"errors"
	"strings"
)

// ErrScan is matched by every *ScanError.
var ErrScan = errors.New("scan failed")

// ScanError reports that a namespace could not be scanned: the directory is
// missing or unreadable, the module path is unknown, or nothing under the
// root namespace declares a unit. It is fatal; no check runs after it.
type ScanError struct {
	Dir    string
	Root   string
	Reason string
	Err    error
}

func (e *ScanError) Error() string {
	var sb strings.Builder
	sb.WriteString("scan ")
	sb.WriteString(e.Dir)
	if e.Root != "" {
		sb.WriteString(" (root ")
		sb.WriteString(e.Root)
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(e.Reason)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

// Unwrap allows errors.Is(err, ErrScan) as well as matching the cause.
func (e *ScanError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrScan}
	}
	return []error{ErrScan, e.Err}
}
