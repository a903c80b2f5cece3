package lk

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

var (
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrClaimRejected    = errors.New("charger claim rejected")
	ErrChargerNotFound  = errors.New("charger not found")
)

// ErrorResponse is the error body the backend sends with non 2xx responses
type ErrorResponse struct {
	Detail json.RawMessage `json:"detail"`
}

// APIError is returned for every non 2xx response
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("api request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("api request failed with status %d: %s", e.StatusCode, e.Detail)
}

// Is makes a 401 match ErrNotAuthenticated
func (e *APIError) Is(target error) bool {
	return target == ErrNotAuthenticated && e.StatusCode == http.StatusUnauthorized
}

func getError(res *http.Response) error {
	apiErr := &APIError{StatusCode: res.StatusCode}

	body, err := io.ReadAll(res.Body)
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var errorResponse ErrorResponse
	if err := json.Unmarshal(body, &errorResponse); err != nil || len(errorResponse.Detail) == 0 {
		return apiErr
	}

	var detail string
	if err := json.Unmarshal(errorResponse.Detail, &detail); err == nil {
		apiErr.Detail = detail
	} else {
		// validation errors come as a list of objects
		apiErr.Detail = string(errorResponse.Detail)
	}
	return apiErr
}
