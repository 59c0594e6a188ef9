package response

import "errors"

var (
	// ErrMalformedResponse means a JSON-mode response was not valid JSON.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrEmptyResult means parsing produced no documents at all.
	ErrEmptyResult = errors.New("response produced no documents")
)
