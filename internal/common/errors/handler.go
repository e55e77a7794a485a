// internal/common/errors/handler.go
package errors

// ErrorHandler turns errors into response payloads and logs them once.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
}

// ErrorBody is the JSON error envelope returned to clients.
type ErrorBody struct {
	Error ErrorPayload `json:"error"`
}

type ErrorPayload struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle normalizes err, logs it and returns the status and body to send.
func (h *ErrorHandler) Handle(route string, err error) (int, ErrorBody) {
	stdErr := Normalize(err)
	status := HTTPStatus(stdErr.Code)

	fields := map[string]interface{}{
		"route":         route,
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"status":        status,
		"errorCategory": GetErrorCategory(stdErr.Code),
	}
	for k, v := range stdErr.Metadata {
		fields[k] = v
	}
	if status >= 500 {
		h.logger.Error("Request failed", fields)
	} else {
		h.logger.Warn("Request rejected", fields)
	}

	return status, ErrorBody{Error: ErrorPayload{
		Code:    stdErr.Code,
		Message: stdErr.Message,
		Details: stdErr.Details,
	}}
}
