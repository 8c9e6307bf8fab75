package server

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/lattice/pkg/errors"
)

type errorBody struct {
	Error struct {
		Code    errors.Code `json:"code"`
		Message string      `json:"message"`
	} `json:"error"`
}

func errNotFound(format string, args ...any) error {
	return errors.New(errors.ErrCodeNotFound, format, args...)
}

// statusOf maps an error code to an HTTP status.
func statusOf(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidScene, errors.ErrCodeInvalidConstraints,
		errors.ErrCodeInvalidFormat, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeSceneNotFound:
		return http.StatusNotFound
	case errors.ErrCodeNodeNotFound:
		// A frame step named a node the scene does not have.
		return http.StatusUnprocessableEntity
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeCache:
		return http.StatusServiceUnavailable
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	if strings.HasPrefix(string(code), "LAYOUT_") {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusOf(code)

	var body errorBody
	body.Error.Code = code
	body.Error.Message = errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		body.Error.Message = "internal error"
	}
	if l, ok := r.Context().Value(loggerKey).(*log.Logger); ok && status >= 500 {
		l.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, body)
}
