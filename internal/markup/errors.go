package markup

import (
	"errors"
	"fmt"
)

// ErrConfiguration matches every *ConfigurationError via errors.Is.
var ErrConfiguration = errors.New("markup configuration error")

// IndexError is returned when a step reference points past the results computed so far.
type IndexError struct {
	Index     int
	Available int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("step index %d out of range (%d results available)", e.Index, e.Available)
}

// ConfigurationError identifies the step (and operation) of a malformed sequence.
// Step and Operation are zero-based; Operation is -1 when the step base is at fault.
type ConfigurationError struct {
	Category  Category
	Step      int
	StepName  string
	Operation int
	Reason    string
	Err       error
}

func (e *ConfigurationError) Error() string {
	where := fmt.Sprintf("step %d", e.Step+1)
	if e.StepName != "" {
		where += fmt.Sprintf(" (%q)", e.StepName)
	}
	if e.Category != "" {
		where = string(e.Category) + ": " + where
	}
	if e.Operation < 0 {
		where += ", base"
	} else {
		where += fmt.Sprintf(", operation %d", e.Operation+1)
	}
	return where + ": " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }
