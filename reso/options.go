package reso

import (
	"net/http"
	"time"
)

// Option configures a Client.
type Option func(*clientOptions)

// clientOptions holds configuration options for the Client.
type clientOptions struct {
	timeout    time.Duration
	httpClient *http.Client
	datasetID  string
	userAgent  string
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *clientOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithHTTPClient supplies a custom *http.Client, replacing the default.
// The timeout option is ignored when a custom client is set.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = httpClient
	}
}

// WithDatasetID sets a dataset segment that is inserted into every request
// path, as some RESO bridges scope their OData tree per dataset:
// {base}/{dataset}/Property instead of {base}/Property.
func WithDatasetID(datasetID string) Option {
	return func(o *clientOptions) {
		o.datasetID = datasetID
	}
}

// WithUserAgent sets a custom User-Agent header value.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}
