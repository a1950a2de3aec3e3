package common

// ErrorResponse is the error body for every endpoint. EntryID is set only
// on duplicate-open-session conflicts so the client can reconcile against
// the existing entry.
type ErrorResponse struct {
	Error   string `json:"error"`
	EntryID string `json:"entryId,omitempty"`
}

func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{
		Error: message,
	}
}

func NewConflictResponse(message, entryID string) *ErrorResponse {
	return &ErrorResponse{
		Error:   message,
		EntryID: entryID,
	}
}
