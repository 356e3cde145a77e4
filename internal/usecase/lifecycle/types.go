package lifecycle

import "fmt"

// SweepError records one item a sweep could not handle. The sweep keeps
// going; the caller gets the full list at the end.
type SweepError struct {
	Item string
	Err  error
}

func (e SweepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Item, e.Err)
}

func (e SweepError) Unwrap() error { return e.Err }

// SweepReport summarises one run of a sweep: how many items were acted on
// and which ones failed.
type SweepReport struct {
	Processed int          `json:"processed"`
	Errors    []SweepError `json:"errors,omitempty"`
}

func (r *SweepReport) addError(item string, err error) {
	r.Errors = append(r.Errors, SweepError{Item: item, Err: err})
}
