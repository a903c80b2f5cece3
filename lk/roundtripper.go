package lk

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
)

type lkRoundTripper struct {
	inner  http.RoundTripper
	client *Client
}

func (l lkRoundTripper) transport() http.RoundTripper {
	if l.inner != nil {
		return l.inner
	}
	return http.DefaultTransport
}

func (l lkRoundTripper) RoundTrip(request *http.Request) (*http.Response, error) {
	originalBody, err := cloneRequestBody(request)
	if err != nil {
		return nil, err
	}

	// Expired tokens are refreshed before they get rejected
	if l.client.tokenExpired() {
		log.Debugf("token expired, refreshing before %s %s", request.Method, request.URL.Path)
		if err := l.client.RefreshToken(request.Context()); err != nil {
			log.Warnf("token refresh failed: %v", err)
		}
	}

	if token := l.client.getToken(); token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}
	request.Header.Set("User-Agent", userAgent)

	response, err := l.transport().RoundTrip(request)
	if err != nil {
		return response, err
	}

	if response.StatusCode == http.StatusUnauthorized && l.client.hasCredentials() {
		log.Debugf("Received 401, attempting to log in again")

		_ = response.Body.Close()

		if err := l.client.refreshTokenIfNeeded(request.Context()); err != nil {
			log.Errorf("Failed to refresh token: %v", err)
			return nil, fmt.Errorf("authentication failed after token refresh attempts: %w", err)
		}

		retryReq, err := cloneRequest(request, originalBody)
		if err != nil {
			return nil, fmt.Errorf("failed to clone request for retry: %w", err)
		}
		if newToken := l.client.getToken(); newToken != "" {
			retryReq.Header.Set("Authorization", "Bearer "+newToken)
		}

		log.Debugf("Retrying request with refreshed token")
		return l.transport().RoundTrip(retryReq)
	}

	return response, nil
}

// cloneRequestBody reads and stores the request body for potential retry
func cloneRequestBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, err
	}

	req.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

func cloneRequest(original *http.Request, body []byte) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	newReq, err := http.NewRequestWithContext(original.Context(), original.Method, original.URL.String(), bodyReader)
	if err != nil {
		return nil, err
	}

	for key, values := range original.Header {
		for _, value := range values {
			newReq.Header.Add(key, value)
		}
	}

	return newReq, nil
}

var _ http.RoundTripper = &lkRoundTripper{}
