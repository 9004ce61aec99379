package config

import "errors"

// ErrConfiguration is the kind of every invalid-configuration error.
// It is fatal and surfaces before any record is processed.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError wraps every problem found in a run configuration.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return "invalid configuration: " + e.Err.Error()
}

func (e *ConfigurationError) Unwrap() []error {
	return []error{ErrConfiguration, e.Err}
}

func invalid(errs ...error) error {
	if err := errors.Join(errs...); err != nil {
		return &ConfigurationError{Err: err}
	}
	return nil
}
