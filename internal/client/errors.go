package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vportal/odata-client/internal/models"
)

// ResponseError is a structured error derived from a non-2xx HTTP response.
// ODataError is populated when the body carries an OData v4 error object.
type ResponseError struct {
	StatusCode int
	Body       []byte
	ODataError *models.ODataError
}

// newResponseError builds a ResponseError, parsing the OData error body when
// one is present.
func newResponseError(statusCode int, body []byte) *ResponseError {
	respErr := &ResponseError{
		StatusCode: statusCode,
		Body:       body,
	}

	var envelope struct {
		Error *models.ODataError `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil {
		respErr.ODataError = envelope.Error
	}

	return respErr
}

func (e *ResponseError) Error() string {
	if e.ODataError == nil {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, strings.TrimSpace(string(e.Body)))
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "OData error (HTTP %d)", e.StatusCode)
	if e.ODataError.Code != "" {
		fmt.Fprintf(&msg, " [%s]", e.ODataError.Code)
	}
	fmt.Fprintf(&msg, ": %s", e.ODataError.Message)
	if e.ODataError.Target != "" {
		fmt.Fprintf(&msg, " (target: %s)", e.ODataError.Target)
	}
	for i, detail := range e.ODataError.Details {
		if i == 0 {
			msg.WriteString(" | Details: ")
		} else {
			msg.WriteString("; ")
		}
		msg.WriteString(detail.Message)
		if detail.Target != "" {
			fmt.Fprintf(&msg, " (target: %s)", detail.Target)
		}
	}
	return msg.String()
}
