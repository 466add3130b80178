package agent

import "errors"

var (
	// ErrEmptyQuery indicates an empty user query.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrNoChoices indicates the chat model returned no completion choices.
	ErrNoChoices = errors.New("chat model returned no choices")

	// ErrToolLoopExceeded indicates the model kept requesting tool calls
	// without ever producing a final answer.
	ErrToolLoopExceeded = errors.New("tool-call loop exceeded maximum rounds")
)
