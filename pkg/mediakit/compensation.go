package mediakit

import (
	"encoding/json"
	"fmt"
)

// CleanupResult reports the outcome of one best-effort delete. It is
// returned, not thrown: cleanup failures never abort a commit.
type CleanupResult struct {
	Form MediaForm
	Err  error
}

// OK reports whether the delete succeeded.
func (r CleanupResult) OK() bool {
	return r.Err == nil
}

// CleanupWarning is one non-fatal failure surfaced to the caller.
type CleanupWarning struct {
	Op   string     `json:"op"`
	Form *MediaForm `json:"form,omitempty"`
	Err  error      `json:"-"`
}

func (w CleanupWarning) String() string {
	if w.Form != nil {
		return fmt.Sprintf("%s failed for %s: %v", w.Op, *w.Form, w.Err)
	}
	return fmt.Sprintf("%s failed: %v", w.Op, w.Err)
}

// MarshalJSON flattens the warning for API responses.
func (w CleanupWarning) MarshalJSON() ([]byte, error) {
	msg := ""
	if w.Err != nil {
		msg = w.Err.Error()
	}
	type wire struct {
		Op    string     `json:"op"`
		Form  *MediaForm `json:"form,omitempty"`
		Error string     `json:"error,omitempty"`
	}
	return json.Marshal(wire{Op: w.Op, Form: w.Form, Error: msg})
}

// compensationStack holds the inverse action for each remote mutation a
// commit performed, in creation order. Unwinding runs newest first.
type compensationStack []MediaForm

func (s *compensationStack) push(form MediaForm) {
	*s = append(*s, form)
}

// drop removes the newest entry matching the form. Used when a compensated
// asset is removed through the normal flow (raw video deleted after a
// successful conversion) so rollback does not delete it twice.
func (s *compensationStack) drop(form MediaForm) {
	stack := *s
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == form {
			*s = append(stack[:i], stack[i+1:]...)
			return
		}
	}
}
