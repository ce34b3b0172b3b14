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

// Package queue implements the core of the outbound delivery subsystem: a
// bounded pool of long-lived workers that sign and POST activities to
// remote inboxes, with per-message retry, round-robin dispatch and
// lock-free operational statistics.
package queue

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dimkr/apqueue/cfg"
	"github.com/dimkr/apqueue/httpsig"
)

// ErrQueueClosed is returned by Submit once the queue has been shut down.
var ErrQueueClosed = errors.New("queue is closed")

// ActivityQueue owns N worker channels, the shared Stats counters, the
// round-robin dispatch cursor and the hourly stats-reset loop. The zero
// value is not usable; construct with [New].
type ActivityQueue struct {
	config   cfg.Config
	client   *http.Client
	sign     Signer
	stats    *Stats
	channels []chan SendTask
	cursor   atomic.Uint64

	group       *errgroup.Group
	groupCtx    context.Context
	cancelReset context.CancelFunc

	// closeMu serializes the closed transition against Submit: Submit
	// holds it for read across its check-then-send so Shutdown's write
	// lock can't close a channel a Submit call is still sending on, and
	// Shutdown holds it for write only long enough to flip closed, which
	// every future Submit observes before it ever touches a channel.
	closeMu sync.RWMutex
	closed  bool
}

// New constructs an ActivityQueue, allocates one channel per worker,
// spawns one worker goroutine per channel, and starts the hourly
// stats-reset loop. config is expected to have already been passed
// through [cfg.Config.FillDefaults] by the caller, the same way the
// teacher's own config consumers call FillDefaults once at startup rather
// than on every use. config.WorkerCount must be at least 1; violating
// this precondition is a programmer error and panics, matching spec.md
// §4.2's "may terminate the process" contract.
func New(ctx context.Context, client *http.Client, config cfg.Config, sign Signer) *ActivityQueue {
	if config.WorkerCount < 1 {
		panic("queue: WorkerCount must be at least 1")
	}

	if sign == nil {
		sign = Signer(httpsig.Sign)
	}

	group, groupCtx := errgroup.WithContext(ctx)

	q := &ActivityQueue{
		config:   config,
		client:   client,
		sign:     sign,
		stats:    &Stats{},
		channels: make([]chan SendTask, config.WorkerCount),
		group:    group,
		groupCtx: groupCtx,
	}

	for i := range q.channels {
		ch := make(chan SendTask, config.QueueBufferSize)
		q.channels[i] = ch

		group.Go(func() error {
			worker(groupCtx, ch, client, q.stats, &q.config, sign)
			return nil
		})
	}

	resetCtx, cancel := context.WithCancel(ctx)
	q.cancelReset = cancel
	go q.resetLoop(resetCtx)

	return q
}

// resetLoop zeroes the hourly counters on every window boundary until ctx
// is cancelled.
func (q *ActivityQueue) resetLoop(ctx context.Context) {
	ticker := time.NewTicker(q.config.StatsResetInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			q.stats.reset()
		case <-ctx.Done():
			return
		}
	}
}

// Submit hands task to one of the queue's workers via round-robin
// dispatch: index = fetch_add(1) mod worker_count. Dispatch never
// considers queue depth or worker load, trading optimality for
// lock-freedom. Returns [ErrQueueClosed] if the queue has been shut down.
func (q *ActivityQueue) Submit(task SendTask) error {
	q.closeMu.RLock()
	defer q.closeMu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	q.stats.Pending.Add(1)

	index := q.cursor.Add(1) % uint64(len(q.channels))

	select {
	case q.channels[index] <- task:
		return nil
	case <-q.groupCtx.Done():
		q.stats.Pending.Add(-1)
		return ErrQueueClosed
	}
}

// Stats returns a handle to the queue's shared counters. Readers use
// relaxed atomic loads and must tolerate momentary inconsistency.
func (q *ActivityQueue) Stats() *Stats {
	return q.stats
}

// Shutdown drops all sender channels, letting each worker drain and exit,
// cancels the reset loop, and awaits every worker. On success it returns
// exclusive ownership of Stats, which is now safe for the caller to read
// without a wrapping queue. If ctx is cancelled before every worker exits,
// Shutdown abandons the remaining workers and returns the context's
// cancellation cause wrapped. ctx does not reach the workers: their
// in-flight HTTP requests and backoff sleeps keep running until they
// finish or the context passed to [New] is cancelled.
func (q *ActivityQueue) Shutdown(ctx context.Context) (*Stats, error) {
	q.closeMu.Lock()
	// closeMu's write lock can only be granted once every in-flight
	// Submit has released its read lock, i.e. has either finished
	// sending on a channel or bailed out on q.groupCtx.Done(); it's
	// therefore safe to close every channel below the instant closed
	// flips, since no Submit still holding a reference to an open
	// channel can be in flight.
	if q.closed {
		q.closeMu.Unlock()
		return nil, ErrQueueClosed
	}
	q.closed = true
	q.closeMu.Unlock()

	q.cancelReset()

	for _, ch := range q.channels {
		close(ch)
	}

	done := make(chan error, 1)
	go func() {
		done <- q.group.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("worker panicked: %w", err)
		}
		return q.stats, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("shutdown abandoned pending workers: %w", context.Cause(ctx))
	}
}
