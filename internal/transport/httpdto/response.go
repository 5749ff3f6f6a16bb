package httpdto

// ErrorResponse is the single error envelope every failing endpoint returns,
// so clients have one parsing path regardless of which call failed.
type ErrorResponse struct {
	Message string `json:"message"`
}

func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Message: message}
}
