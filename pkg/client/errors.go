package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// integrationName tags every typed error with the vendor this client talks to.
const integrationName = "viventium"

// Common errors returned by the client.
var (
	// ErrNoDivisions is returned when the vendor reports zero divisions for
	// the authenticated account.
	ErrNoDivisions = errors.New("viventium returned no divisions for this account")
)

// AuthError signals that the supplied token/cookie pair was rejected by the
// vendor's session layer (HTTP 400 or 401). It is not transient: the caller
// should re-authenticate and retry the whole operation.
type AuthError struct {
	Integration string
	StatusCode  int
	Reason      string
	Message     string
	ErrorType   string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("%s auth error (status %d %s): message: %s, error_type: %s",
		e.Integration, e.StatusCode, e.Reason, e.Message, e.ErrorType)
}

// APIError represents any other vendor API failure, including nominally
// successful responses whose body cannot be parsed as JSON.
type APIError struct {
	Integration string
	StatusCode  int
	Message     string
	ErrorType   string
	Headers     http.Header
	Err         error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s API error (status %d): %s", e.Integration, e.StatusCode, e.Message)
	if e.ErrorType != "" {
		msg = fmt.Sprintf("%s (error_type: %s)", msg, e.ErrorType)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// vendorError is the JSON shape Viventium uses for error bodies.
type vendorError struct {
	Message   string `json:"message"`
	ErrorType string `json:"error_type"`
}

// handleResponse classifies a response by status code: 200/201/204 must
// carry a valid JSON body, 400/401 mean the session was rejected, anything
// else is a generic API failure. A non-JSON error body falls back to
// raw-text diagnostics.
func handleResponse(resp *http.Response) (json.RawMessage, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{
			Integration: integrationName,
			StatusCode:  resp.StatusCode,
			Message:     "read response body",
			Err:         err,
		}
	}

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		if !json.Valid(body) {
			return nil, &APIError{
				Integration: integrationName,
				StatusCode:  resp.StatusCode,
				Message:     string(body),
			}
		}
		return json.RawMessage(body), nil
	}

	vendor := parseVendorError(body)
	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		return nil, &AuthError{
			Integration: integrationName,
			StatusCode:  resp.StatusCode,
			Reason:      http.StatusText(resp.StatusCode),
			Message:     vendor.Message,
			ErrorType:   vendor.ErrorType,
		}
	}

	return nil, &APIError{
		Integration: integrationName,
		StatusCode:  resp.StatusCode,
		Message:     vendor.Message,
		ErrorType:   vendor.ErrorType,
		Headers:     resp.Header.Clone(),
	}
}

// parseVendorError decodes the vendor error shape, falling back to the raw
// body text when the body is not a JSON object.
func parseVendorError(body []byte) vendorError {
	var vendor vendorError
	if err := json.Unmarshal(body, &vendor); err != nil {
		return vendorError{Message: strings.TrimSpace(string(body))}
	}
	return vendor
}
