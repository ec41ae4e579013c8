package handlers

const (
	ErrInvalidFormData     = "Invalid form data"
	ErrInvalidRequestBody  = "Invalid request body"
	ErrInternalServerError = "Internal server error"

	// User-visible messages for the practice submission flow.
	MsgDailyLimitReached = "You have reached your daily submission limit. Please try again tomorrow."
	MsgSubmitFailed      = "Failed to submit your answer. Please try again."
	MsgQuestionLoading   = "Loading question..."
)
