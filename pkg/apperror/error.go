package apperror

import "net/http"

// AppError is an error carrying the HTTP status and the client-safe message.
// Err holds the underlying cause for server-side logging and is never serialized.
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message, nil)
}

func NotFound(message string) *AppError {
	return New(http.StatusNotFound, message, nil)
}

func TooLarge(message string) *AppError {
	return New(http.StatusRequestEntityTooLarge, message, nil)
}

func UnsupportedMedia(message string) *AppError {
	return New(http.StatusUnsupportedMediaType, message, nil)
}

func Unprocessable(message string, err error) *AppError {
	return New(http.StatusUnprocessableEntity, message, err)
}

func Unavailable(message string, err error) *AppError {
	return New(http.StatusServiceUnavailable, message, err)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, "Internal Server Error", err)
}
