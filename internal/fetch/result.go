package fetch

// Status tags the provenance of a fetched value.
type Status int

const (
	// StatusOK means the value came from the live upstream source.
	StatusOK Status = iota
	// StatusFallback means the source substituted a regional default.
	StatusFallback
	// StatusErr means the source failed and no value is usable.
	StatusErr
)

// Result is the tagged outcome of one external-data fetch. The pure engine
// code branches on provenance explicitly instead of swallowing errors.
type Result[T any] struct {
	Status Status
	Value  T
	Reason string
}

func Ok[T any](v T) Result[T] {
	return Result[T]{Status: StatusOK, Value: v}
}

func Fallback[T any](v T, reason string) Result[T] {
	return Result[T]{Status: StatusFallback, Value: v, Reason: reason}
}

func Err[T any](reason string) Result[T] {
	return Result[T]{Status: StatusErr, Reason: reason}
}

// OK reports whether the value came from the live source.
func (r Result[T]) OK() bool { return r.Status == StatusOK }

// Usable reports whether the result carries any value at all.
func (r Result[T]) Usable() bool { return r.Status != StatusErr }
