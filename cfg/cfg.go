/*
Copyright 2023 - 2026 Dima Krasner

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package cfg defines the configuration surface consumed by the activity
// delivery queue.
package cfg

import (
	"context"
	"errors"
	"math"
	"net/url"
	"time"

	"github.com/dimkr/apqueue/data"
)

// ErrInvalidInboxURL is returned by the default VerifyURLValid predicate
// for an inbox URL that doesn't have the shape of a valid federation
// endpoint (not https, carries user info, has a query string or a
// path-traversal segment).
var ErrInvalidInboxURL = errors.New("invalid inbox URL")

// RetryPolicy controls the exponential backoff schedule a failed delivery
// is retried with. The wait before attempt n (1-indexed past the first) is
// InitialBackoffSeconds^n seconds: with the defaults (60, 3), the schedule
// is 60s, 3600s, 216000s (2.5 days), matching service restart, instance
// maintenance and rebuild-from-backup recovery horizons respectively.
type RetryPolicy struct {
	InitialBackoffSeconds int
	MaxRetries            int
}

// Config is the configuration bundle consumed by the delivery queue and
// the Deliver adapter.
type Config struct {
	// WorkerCount is the number of long-lived delivery workers spawned.
	WorkerCount int

	// RequestTimeout bounds each individual delivery attempt.
	RequestTimeout time.Duration

	// RetryPolicy is the backoff schedule applied to transient failures.
	RetryPolicy RetryPolicy

	// QueueBufferSize is the per-worker channel buffer. Zero reproduces
	// the unbounded-channel behavior of the original design; a positive
	// value makes Submit apply backpressure once a worker falls behind.
	QueueBufferSize int

	// StatsResetInterval is the period after which dead_last_hour and
	// completed_last_hour are reset to zero. Defaults to one hour;
	// overridable so tests don't have to wait an hour.
	StatsResetInterval time.Duration

	// MaxResponseBodySize bounds how much of a non-2xx response body is
	// read into a transient-failure error message.
	MaxResponseBodySize int64

	// ContentType is the Content-Type header value attached to outgoing
	// deliveries.
	ContentType string

	// HTTPSignatureCompat toggles a compatibility mode forwarded as-is to
	// the HTTP signer (e.g. omitting newer signature components some
	// older federated servers choke on).
	HTTPSignatureCompat bool

	// LocalDomains lists the host[:port] values that IsLocalURL treats as
	// local; inboxes resolving to one of these are never queued.
	LocalDomains []string

	// VerifyURLValid is an async predicate applied to each candidate
	// inbox immediately before it's queued; returning an error skips that
	// inbox without failing the whole delivery. Defaults to a predicate
	// that accepts any https:// URL with no user-info, no query string
	// and no "/.." path traversal.
	VerifyURLValid func(ctx context.Context, rawURL string) error
}

// IsLocalURL reports whether rawURL's host[:port] matches one of the
// configured local domains, meaning delivery to it should be skipped
// because the destination is this server itself.
func (c *Config) IsLocalURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	for _, domain := range c.LocalDomains {
		if u.Host == domain {
			return true
		}
	}

	return false
}

// FillDefaults replaces missing or invalid settings with defaults.
func (c *Config) FillDefaults() {
	if c.WorkerCount <= 0 || c.WorkerCount > math.MaxInt {
		c.WorkerCount = 4
	}

	if c.RequestTimeout <= 0 {
		c.RequestTimeout = time.Minute * 5
	}

	if c.RetryPolicy.InitialBackoffSeconds <= 0 {
		c.RetryPolicy.InitialBackoffSeconds = 60
	}

	if c.RetryPolicy.MaxRetries < 0 {
		c.RetryPolicy.MaxRetries = 3
	}

	if c.StatsResetInterval <= 0 {
		c.StatsResetInterval = time.Hour
	}

	if c.MaxResponseBodySize <= 0 {
		c.MaxResponseBodySize = 1024 * 1024
	}

	if c.ContentType == "" {
		c.ContentType = `application/activity+json`
	}

	if c.VerifyURLValid == nil {
		c.VerifyURLValid = defaultVerifyURLValid
	}
}

// defaultVerifyURLValid reuses the same URL-shape check the teacher applies
// to actor, object and activity IDs, since a valid inbox URL has the same
// shape requirements (https, no user info, no query, no path traversal).
func defaultVerifyURLValid(_ context.Context, rawURL string) error {
	if !data.IsIDValid(rawURL) {
		return &url.Error{Op: "verify", URL: rawURL, Err: ErrInvalidInboxURL}
	}

	return nil
}
