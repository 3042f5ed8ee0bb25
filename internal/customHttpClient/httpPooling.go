package customHttpClient

import (
	"net/http"
	"time"
)

const (
	maxIdleConns        = 50
	maxIdleConnsPerHost = 25
	idleConnTimeout     = 60 * time.Second
	requestTimeout      = 60 * time.Second
)

var pooled = &http.Client{
	Timeout: requestTimeout,
	Transport: &http.Transport{
		MaxIdleConns:        maxIdleConns,
		MaxIdleConnsPerHost: maxIdleConnsPerHost,
		IdleConnTimeout:     idleConnTimeout,
	},
}

// Pooled returns the shared connection-pooled client used for all
// embedding and chat API calls.
func Pooled() *http.Client {
	return pooled
}
