package manager

import "fmt"

// ValidationError rejects a request before any side effect. The message is
// safe to show to callers.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return e.Reason
}

// NotFoundError means an id didn't resolve to an entity.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// ProviderError wraps a failure from an external metadata provider. The sync
// engine degrades on these rather than failing the operation; it exists so
// logs can tell provider trouble apart from our own.
type ProviderError struct {
	Provider string
	Err      error
}

func (e ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e ProviderError) Unwrap() error {
	return e.Err
}
