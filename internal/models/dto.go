package models

// ErrorResponse is the JSON error envelope returned by API handlers.
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// MessageResponse is the {success, message} result shape used by the
// admin maintenance endpoints.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"user_id,omitempty"`
}
