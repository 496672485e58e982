package document

import "fmt"

// InputContractError reports a document that does not have the node shape
// the scanner relies on.
type InputContractError struct {
	Path   string // location of the offending value, e.g. $.document.children[2]
	Reason string
	Err    error
}

func (e *InputContractError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("input contract violation at %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("input contract violation at %s: %s", e.Path, e.Reason)
}

func (e *InputContractError) Unwrap() error { return e.Err }

func contractError(path, reason string, err error) *InputContractError {
	return &InputContractError{Path: path, Reason: reason, Err: err}
}
