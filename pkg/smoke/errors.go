package smoke

import (
	"errors"
	"fmt"
)

// ErrAssertion matches every *AssertionError via errors.Is.
var ErrAssertion = errors.New("smoke: assertion failed")

// AssertionError reports the first violated check.
type AssertionError struct {
	Scenario string
	Check    Check
	Detail   string
}

func (e *AssertionError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("scenario %s: %s failed", e.Scenario, e.Check)
	}
	return fmt.Sprintf("scenario %s: %s failed: %s", e.Scenario, e.Check, e.Detail)
}

// Is reports whether target is ErrAssertion.
func (e *AssertionError) Is(target error) bool {
	return target == ErrAssertion
}
