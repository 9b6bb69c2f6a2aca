package domain

// AskStatus is the terminal outcome of one ask operation. An empty corpus or
// an empty retrieval is a valid outcome, not an error.
type AskStatus string

const (
	AskStatusOK                AskStatus = "ok"
	AskStatusNoRelevantContext AskStatus = "no_relevant_context"
	AskStatusFailed            AskStatus = "failed"
)

// Citation identifies one corpus span the answer was grounded on.
type Citation struct {
	Source Source
	Start  float64
	End    float64
}

// Answer is the result of the ask operation.
type Answer struct {
	Text      string
	Citations []Citation
	Status    AskStatus
	// ErrorKind carries the domain error code when Status is failed.
	ErrorKind string
}
