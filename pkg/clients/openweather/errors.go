package openweather

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Query identifies which provider endpoint failed.
type Query string

const (
	QueryCurrent  Query = "current"
	QueryForecast Query = "forecast"
)

// APIError is returned when the provider answers with a failure status.
type APIError struct {
	Query      Query
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openweather %s: status=%d, message=%s", e.Query, e.StatusCode, e.Message)
}

// ConnectivityError is returned when the provider could not be reached.
type ConnectivityError struct {
	Query Query
	Err   error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("openweather %s unreachable: %v", e.Query, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// connectivityError wraps a transport failure. The request URL carries the
// appid, so any *url.Error in the chain is rebuilt without its query string.
func connectivityError(query Query, err error) *ConnectivityError {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = &url.Error{Op: urlErr.Op, URL: stripQuery(urlErr.URL), Err: urlErr.Err}
	}
	return &ConnectivityError{Query: query, Err: err}
}

func stripQuery(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		return raw[:i]
	}
	return raw
}
