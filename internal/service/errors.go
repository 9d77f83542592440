package service

import "errors"

var (
	// ErrEmptyQuestion is returned when a question is missing or blank.
	// It is a client error and is never logged as a server failure.
	ErrEmptyQuestion = errors.New("question must not be empty")

	// ErrGenerationFailed is returned when the generation model errors
	// or times out. No partial answer is ever fabricated in its place.
	ErrGenerationFailed = errors.New("answer generation failed")
)
