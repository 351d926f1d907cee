package composition

import "fmt"

// ValidationError reports an upload whose declared content type is not accepted.
// Nothing has been written to disk when it is returned.
type ValidationError struct {
	Kind        AssetKind
	ContentType string
	Message     string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// CompositionError reports a failure inside the media compositor, such as
// undecodable audio or an encoder error.
type CompositionError struct {
	ID  string
	Err error
}

func (e *CompositionError) Error() string {
	return fmt.Sprintf("composition %s failed: %v", e.ID, e.Err)
}

func (e *CompositionError) Unwrap() error {
	return e.Err
}

// InfrastructureError reports a failure around the compositor: staging the
// uploads, preparing the output location, or publishing the result.
type InfrastructureError struct {
	ID  string
	Op  string
	Err error
}

func (e *InfrastructureError) Error() string {
	return fmt.Sprintf("composition %s: %s: %v", e.ID, e.Op, e.Err)
}

func (e *InfrastructureError) Unwrap() error {
	return e.Err
}
