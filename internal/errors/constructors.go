package errors

// Convenience constructors matching the loop's error taxonomy. Severity and
// retryability defaults encode the propagation policy: configuration errors
// are terminal for the run, everything else is absorbed inside the loop.

// ConfigError creates a fatal configuration error (point source unreachable,
// unparsable, or empty).
func ConfigError(message string) *PointwatchError {
	return New(CategoryConfig, SeverityFatal, message)
}

// WrapConfig wraps a cause as a fatal configuration error.
func WrapConfig(err error, message string) *PointwatchError {
	return Wrap(err, CategoryConfig, SeverityFatal, message)
}

// ValidationError creates a validation error for bad user input.
func ValidationError(message string) *PointwatchError {
	return New(CategoryValidation, SeverityError, message)
}

// ConnectionError creates a retryable per-cycle connection error.
func ConnectionError(message string) *PointwatchError {
	return New(CategoryConnection, SeverityError, message).WithRetryable(true)
}

// WrapConnection wraps a cause as a retryable connection error.
func WrapConnection(err error, message string) *PointwatchError {
	e := Wrap(err, CategoryConnection, SeverityError, message)
	return e.WithRetryable(true)
}

// WrapRead wraps a cause as an isolated per-point read error.
func WrapRead(err error, point string) *PointwatchError {
	e := Wrap(err, CategoryRead, SeverityWarning, "point read failed")
	return e.WithRetryable(true).WithContext("point", point)
}

// WrapPublish wraps a cause as a non-fatal publish error.
func WrapPublish(err error, subject string) *PointwatchError {
	e := Wrap(err, CategoryPublish, SeverityWarning, "broadcast publish failed")
	return e.WithContext("subject", subject)
}

// DaemonError creates a daemon lifecycle error.
func DaemonError(message string) *PointwatchError {
	return New(CategoryDaemon, SeverityError, message)
}

// InternalError creates an unexpected internal error.
func InternalError(message string) *PointwatchError {
	return New(CategoryInternal, SeverityError, message)
}
