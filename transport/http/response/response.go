package response

import (
	"encoding/json"
	"net/http"
	"stayhub/shared/constant"
	"stayhub/shared/failure"
	"stayhub/shared/logger"
)

// ErrorBody carries the machine code and human message of a failed operation.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Envelope is the uniform response shape: success flag, payload on success,
// error body on failure. Callers must inspect success before trusting data.
type Envelope struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorBody `json:"error,omitempty"`
}

type Message struct {
	Message string `json:"message"`
}

// WithJSON sends a success envelope containing the given payload
func WithJSON(writer http.ResponseWriter, code int, payload any) {
	respond(writer, code, Envelope{Success: true, Data: payload})
}

// WithMessage sends a success envelope with a simple text message
func WithMessage(writer http.ResponseWriter, code int, message string) {
	WithJSON(writer, code, Message{Message: message})
}

// WithError sends a failure envelope with the error's code and message
func WithError(writer http.ResponseWriter, err error) {
	respond(writer, failure.StatusOf(err), Envelope{
		Success: false,
		Error: &ErrorBody{
			Code:    failure.CodeOf(err),
			Message: err.Error(),
		},
	})
}

// WithRequestLimitExceeded sends a default response for when the request limit is exceeded
func WithRequestLimitExceeded(writer http.ResponseWriter) {
	WithError(writer, failure.RateLimited(constant.ResponseErrorRequestLimitExceeded))
}

// WithPreparingShutdown sends a default response for when the server is preparing to shut down
func WithPreparingShutdown(writer http.ResponseWriter) {
	respond(writer, http.StatusServiceUnavailable, Envelope{
		Success: false,
		Error: &ErrorBody{
			Code:    "unavailable",
			Message: constant.ResponseErrorPrepareShutdown,
		},
	})
}

func respond(writer http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.ErrorWithStack(err)

		return
	}

	writer.Header().Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)
	writer.WriteHeader(code)
	_, err = writer.Write(response)

	if err != nil {
		logger.ErrorWithStack(err)
	}
}
