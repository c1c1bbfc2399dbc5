// Package controllers holds helpers shared by the long-running controllers.
package controllers

import (
	"net/http"
	"time"
)

// NewHTTPClient creates a standardized HTTP client with timeout
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
	}
}
