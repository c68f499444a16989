package resource

import "fmt"

// A ProviderTransientError is returned from a provider operation when the
// failure is expected to clear on its own, such as rate limiting or
// eventual-consistency propagation. The operation is retried with backoff.
type ProviderTransientError struct {
	Err error
}

func (e ProviderTransientError) Error() string {
	return fmt.Sprintf("transient: %v", e.Err)
}

// Cause returns the underlying error.
func (e ProviderTransientError) Cause() error { return e.Err }

// A ProviderFatalError is returned from a provider operation when retrying
// cannot help, such as validation, permission or conflict failures. The
// operation fails immediately.
type ProviderFatalError struct {
	Err error
}

func (e ProviderFatalError) Error() string {
	return fmt.Sprintf("fatal: %v", e.Err)
}

// Cause returns the underlying error.
func (e ProviderFatalError) Cause() error { return e.Err }
