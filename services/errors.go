package services

import "errors"

// Sentinel errors shared across the generation pipeline and quiz flow
var (
	// ErrExtractionFailed marks a document whose text could not be recovered
	ErrExtractionFailed = errors.New("document text extraction failed")

	// ErrProviderRequest marks a single provider attempt that did not
	// produce a usable reply
	ErrProviderRequest = errors.New("provider request failed")

	// ErrAllProvidersFailed is returned when every configured provider and
	// the keyless fallback have been tried once without success
	ErrAllProvidersFailed = errors.New("all providers failed")

	// ErrInvalidResponse marks a provider reply that parsed but did not
	// match the expected training shape
	ErrInvalidResponse = errors.New("invalid provider response")

	// Quiz session errors
	ErrQuizIncomplete      = errors.New("quiz has unanswered questions")
	ErrQuizAlreadyScored   = errors.New("quiz already submitted")
	ErrQuestionOutOfRange  = errors.New("question index out of range")
	ErrAnswerOutOfRange    = errors.New("answer index out of range")
	ErrQuizSessionNotFound = errors.New("quiz session not found")
)
