package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"

	"shipcast/internal/grouper"
	"shipcast/internal/holiday"
	"shipcast/internal/runstore"
)

// HTTPError captures the metadata required to serialize an error response
// consistently.
type HTTPError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
	Err     error  `json:"-"`
}

func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func newHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// asHTTPError maps service and store errors onto the response taxonomy.
// Anything unrecognized is a generic internal failure; partial results are
// never returned.
func asHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	switch {
	case errors.Is(err, runstore.ErrNoBaseline):
		return newHTTPError(http.StatusBadRequest, "no_baseline",
			"no base forecast data available, run an analysis first", err)
	case errors.Is(err, runstore.ErrRunNotFound):
		return newHTTPError(http.StatusNotFound, "run_not_found",
			"analysis run not found or expired", err)
	case errors.Is(err, grouper.ErrNoRows):
		return newHTTPError(http.StatusBadRequest, "invalid_input",
			"no usable rows in uploaded file", err)
	case errors.Is(err, holiday.ErrNegativeWindow):
		return newHTTPError(http.StatusBadRequest, "invalid_input",
			"holiday window day counts must not be negative", err)
	}
	return newHTTPError(http.StatusInternalServerError, "internal_error",
		"forecast analysis failed", err)
}

func writeJSON(c *gin.Context, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		c.String(http.StatusInternalServerError, "unable to encode response")
		return
	}
	c.Data(status, "application/json; charset=utf-8", data)
}

func writeError(c *gin.Context, httpErr *HTTPError) {
	_ = c.Error(httpErr)
	writeJSON(c, httpErr.Status, httpErr)
	c.Abort()
}
