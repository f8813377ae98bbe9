package thermal

// InvalidInputError reports a malformed or mismatched matrix: empty input,
// ragged rows, or statistics computed from a different matrix than the one
// being processed.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}
