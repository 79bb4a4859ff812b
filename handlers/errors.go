package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"TaskWheelService/response"
	"TaskWheelService/services"
	"TaskWheelService/validation"

	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 1 << 20

var (
	errEmptyBody    = errors.New("request body is required")
	errTrailingData = errors.New("request body must hold a single JSON object")
)

// decodeJSON reads the request body into dst. Unknown fields are refused and
// reported as a validation error naming the field. Anything after the first
// JSON value is refused too.
func decodeJSON(res http.ResponseWriter, req *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(res, req.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	err := dec.Decode(dst)
	switch {
	case err == nil:
		if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
			return errTrailingData
		}
		return nil
	case errors.Is(err, io.EOF):
		return errEmptyBody
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		field := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return services.NewValidationError(validation.FieldError{Field: field, Message: "Unknown field"})
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return services.NewValidationError(validation.FieldError{
			Field:   typeErr.Field,
			Message: "Must be a " + typeErr.Type.String(),
		})
	}
	return err
}

// writeError maps an error from the layers below onto a status code and an error envelope.
// A request whose client went away gets no response.
func writeError(res http.ResponseWriter, req *http.Request, log logrus.FieldLogger, operation string, err error) {
	var (
		status = http.StatusInternalServerError
		msg    = response.Failed("Server error")
		verr   *services.ValidationError
		serr   *services.StorageError
	)
	switch {
	case errors.Is(err, context.Canceled):
		return
	case errors.Is(err, context.DeadlineExceeded):
		status, msg = http.StatusRequestTimeout, response.Failed("Request timed out")
	case errors.As(err, &verr):
		status, msg = http.StatusBadRequest, response.Failed("Validation failed", verr.Fields...)
	case errors.Is(err, errEmptyBody):
		status, msg = http.StatusBadRequest, response.Failed("Request body is required")
	case errors.Is(err, errTrailingData):
		status, msg = http.StatusBadRequest, response.Failed("Invalid request body")
	case errors.Is(err, services.ErrNotFound):
		status, msg = http.StatusNotFound, response.Failed("Task not found")
	case errors.Is(err, services.ErrNoEligibleTask):
		status, msg = http.StatusNotFound, response.Failed("No pending tasks found for the selected category")
	case errors.Is(err, services.ErrEmailTaken):
		status, msg = http.StatusBadRequest, response.Failed("User already exists with this email")
	case errors.Is(err, services.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, response.Failed("Invalid credentials")
	case errors.Is(err, services.ErrInvalidToken), errors.Is(err, services.ErrExpiredToken), errors.Is(err, services.ErrMissingOwner):
		status, msg = http.StatusUnauthorized, response.Failed("Invalid or expired token")
	case errors.Is(err, services.ErrUserNotFound):
		status, msg = http.StatusNotFound, response.Failed("User not found")
	case errors.As(err, &serr):
		// storage details stay in the log
	default:
		var (
			syntaxErr *json.SyntaxError
			tooLarge  *http.MaxBytesError
		)
		switch {
		case errors.As(err, &tooLarge):
			status, msg = http.StatusRequestEntityTooLarge, response.Failed("Request body too large")
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			status, msg = http.StatusBadRequest, response.Failed("Invalid request body")
		}
	}

	entry := log.WithFields(logrus.Fields{
		"task operation": operation,
		"request":        req.Method + " " + req.URL.Path,
		"status":         status,
	})
	if status >= http.StatusInternalServerError {
		entry.Error(err.Error())
	} else {
		entry.Warn(err.Error())
	}
	_ = response.Write(res, status, msg)
}
