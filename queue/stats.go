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

import "sync/atomic"

// Stats holds the operational counters of a running queue. All four fields
// are mutated with relaxed atomic operations and are safe to read and write
// concurrently from any number of workers, submitters and the reset loop.
// Readers should expect momentary staleness: there is no instant at which
// all four fields can be read as a single consistent snapshot.
type Stats struct {
	// Pending counts tasks accepted by Submit but not yet picked up by a
	// worker.
	Pending atomic.Int64

	// Running counts tasks a worker is actively delivering, including the
	// time spent between retries.
	Running atomic.Int64

	// DeadLastHour counts tasks that exhausted their retries since the
	// last reset.
	DeadLastHour atomic.Int64

	// CompletedLastHour counts tasks that terminated with "accepted"
	// semantics (success, peer rejection or transport failure) since the
	// last reset.
	CompletedLastHour atomic.Int64
}

// Snapshot is a point-in-time copy of Stats, useful for logging without
// holding onto live atomic fields.
type Snapshot struct {
	Pending           int64
	Running           int64
	DeadLastHour      int64
	CompletedLastHour int64
}

// Snapshot reads all four counters. The read is not atomic as a whole; two
// fields may reflect different instants under concurrent mutation.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Pending:           s.Pending.Load(),
		Running:           s.Running.Load(),
		DeadLastHour:      s.DeadLastHour.Load(),
		CompletedLastHour: s.CompletedLastHour.Load(),
	}
}

// reset zeroes the hourly counters. Called by the queue's reset loop on
// every window boundary.
func (s *Stats) reset() {
	s.DeadLastHour.Store(0)
	s.CompletedLastHour.Store(0)
}
