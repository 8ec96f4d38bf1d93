// Package errs defines the error taxonomy shared across the pipeline.
//
// ConfigurationError is fatal and surfaced immediately, never retried.
// UnsupportedFormatError skips a single document; ingestion continues.
// ServiceError wraps a remote embedding/generation/store failure and is
// propagated whole to the caller, who decides on retry.
package errs

import (
	"errors"
	"fmt"
)

// ConfigurationError reports a missing credential or invalid parameter.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration: " + e.Reason
}

// Configurationf builds a ConfigurationError from a format string.
func Configurationf(format string, args ...any) error {
	return &ConfigurationError{Reason: fmt.Sprintf(format, args...)}
}

// IsConfiguration reports whether err is a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// UnsupportedFormatError reports a document type no loader can parse.
type UnsupportedFormatError struct {
	Path string
	Ext  string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q: %s", e.Ext, e.Path)
}

// IsUnsupportedFormat reports whether err is an UnsupportedFormatError.
func IsUnsupportedFormat(err error) bool {
	var ue *UnsupportedFormatError
	return errors.As(err, &ue)
}

// ServiceError wraps a failure from a remote service or persisted store.
type ServiceError struct {
	Service string
	Err     error
}

func (e *ServiceError) Error() string {
	return e.Service + ": " + e.Err.Error()
}

func (e *ServiceError) Unwrap() error { return e.Err }

// Servicef wraps err as a ServiceError for the named service.
func Servicef(service string, err error) error {
	if err == nil {
		return nil
	}
	return &ServiceError{Service: service, Err: err}
}

// IsService reports whether err is a ServiceError.
func IsService(err error) bool {
	var se *ServiceError
	return errors.As(err, &se)
}
