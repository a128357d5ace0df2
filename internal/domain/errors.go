package domain

import "fmt"

// ResolutionError reports that the account handle could not be resolved by
// the provider. It is the only fetch failure that aborts a run.
type ResolutionError struct {
	Handle string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("account %q could not be resolved", e.Handle)
}

// RenderError reports that the card could not be rendered. It aborts the
// run without touching any previously written artifact.
type RenderError struct {
	Err error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render card: %v", e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
