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

// Command apqueue-demo delivers a single activity, read from stdin, to a
// list of inbox URLs, also read from stdin, and prints the final delivery
// statistics. It exists to exercise the queue end-to-end from a real
// binary rather than only from tests.
package main

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/dimkr/apqueue"
	"github.com/dimkr/apqueue/ap"
	"github.com/dimkr/apqueue/cfg"
	"github.com/dimkr/apqueue/logcontext"
	"github.com/dimkr/apqueue/queue"
)

func init() {
	maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))

	// the -workers default was computed before maxprocs adjusted GOMAXPROCS
	*workers = runtime.GOMAXPROCS(0)
	flag.Lookup("workers").DefValue = fmt.Sprint(*workers)
}

var (
	actorID    = flag.String("actor", "", "Sending actor URL")
	keyPath    = flag.String("key", "", "PEM-encoded private key path")
	workers    = flag.Int("workers", runtime.GOMAXPROCS(0), "Number of delivery workers")
	timeout    = flag.Duration("timeout", time.Minute, "Per-attempt request timeout")
	backoff    = flag.Int("backoff", 60, "Initial backoff in seconds")
	maxRetries = flag.Int("retries", 3, "Maximum retries past the first attempt")
	logLevel   = flag.Int("loglevel", int(slog.LevelInfo), "Logging verbosity")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s -actor URL -key PATH [flag]...\n", os.Args[0])
		fmt.Fprintf(flag.CommandLine.Output(), "Reads a JSON activity on the first line of stdin, then one inbox URL per line.\n")
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	if *actorID == "" || *keyPath == "" {
		flag.Usage()
	}

	slog.SetDefault(slog.New(logcontext.NewHandler(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.Level(*logLevel)}))))

	keyPEM, err := os.ReadFile(*keyPath)
	if err != nil {
		panic(err)
	}

	actor := &ap.Actor{ID: *actorID}
	actor.PrivateKeyPEMValue = string(keyPEM)

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		panic("missing activity JSON on stdin")
	}

	var activity ap.Activity
	if err := json.Unmarshal(scanner.Bytes(), &activity); err != nil {
		panic(err)
	}

	var inboxes []string
	for scanner.Scan() {
		if line := scanner.Text(); line != "" {
			inboxes = append(inboxes, line)
		}
	}

	config := cfg.Config{
		WorkerCount:    *workers,
		RequestTimeout: *timeout,
		RetryPolicy:    cfg.RetryPolicy{InitialBackoffSeconds: *backoff, MaxRetries: *maxRetries},
	}
	config.FillDefaults()

	client := &http.Client{
		Transport: &http.Transport{TLSClientConfig: &tls.Config{}},
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-sigs:
			slog.Info("received termination signal")
			cancel()
		case <-ctx.Done():
		}
	}()

	q := queue.New(ctx, client, config, nil)

	if err := apqueue.Deliver(ctx, q, &activity, actor, inboxes, config); err != nil {
		slog.Error("delivery failed", "error", err)
	}

	stats, err := q.Shutdown(context.Background())
	if err != nil {
		panic(err)
	}

	cancel()
	wg.Wait()

	snap := stats.Snapshot()
	fmt.Printf("completed=%d dead=%d pending=%d running=%d\n", snap.CompletedLastHour, snap.DeadLastHour, snap.Pending, snap.Running)
}
