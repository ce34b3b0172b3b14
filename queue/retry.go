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

package queue

import (
	"context"
	"math"
	"time"

	"github.com/dimkr/apqueue/cfg"
)

// Retry invokes action up to 1+policy.MaxRetries times, sleeping between
// attempts for policy.InitialBackoffSeconds raised to the power of the
// attempt number: b, b^2, b^3, ... This is exponential in the base b, not
// b*2^n: with the defaults (b=60, k=3) the wait sequence is 60s, 3600s,
// 216000s (2.5 days), deliberately mirroring service-restart,
// maintenance-window and rebuild-from-backup recovery horizons.
//
// action is invoked afresh on every attempt, so it must rebuild any
// per-attempt state itself (a fresh HTTP signature, a fresh Date header).
// Retry never shares state across calls to action.
func Retry[T any](ctx context.Context, action func() (T, error), policy cfg.RetryPolicy) (T, error) {
	var (
		result T
		err    error
	)

	for attempt := 0; ; attempt++ {
		result, err = action()
		if err == nil {
			return result, nil
		}

		if attempt == policy.MaxRetries {
			return result, err
		}

		backoff := time.Duration(math.Pow(float64(policy.InitialBackoffSeconds), float64(attempt+1))) * time.Second

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return result, context.Cause(ctx)
		}
	}
}
