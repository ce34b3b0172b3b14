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

package apqueue

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dimkr/apqueue/ap"
	"github.com/dimkr/apqueue/cfg"
	"github.com/dimkr/apqueue/queue"
)

func newTestActor(t *testing.T) *ap.Actor {
	t.Helper()

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)

	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	actor := &ap.Actor{
		ID:    "https://example.com/users/alice",
		Type:  ap.Person,
		Inbox: "https://example.com/users/alice/inbox",
	}
	actor.PrivateKeyPEMValue = string(pemBytes)
	return actor
}

func TestDeliver_DedupAndLocalFilter(t *testing.T) {
	var received atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	config := cfg.Config{
		WorkerCount:        4,
		RequestTimeout:     5 * time.Second,
		RetryPolicy:        cfg.RetryPolicy{InitialBackoffSeconds: 1, MaxRetries: 1},
		StatsResetInterval: time.Hour,
		LocalDomains:       []string{"local.example.com"},
		// the default VerifyURLValid requires https; the test server is
		// plain HTTP, so accept any well-formed URL here instead.
		VerifyURLValid: func(context.Context, string) error { return nil },
	}
	config.FillDefaults()

	q := queue.New(context.Background(), srv.Client(), config, nil)

	actor := newTestActor(t)
	activity := &ap.Activity{
		ID:     "https://example.com/activities/1",
		Type:   ap.Create,
		Actor:  actor.ID,
		Object: map[string]any{"id": "https://example.com/notes/1"},
	}

	inboxes := []string{
		srv.URL + "/a",
		srv.URL + "/b",
		srv.URL + "/a",
		"https://local.example.com/inbox",
		srv.URL + "/c",
	}

	err := Deliver(context.Background(), q, activity, actor, inboxes, config)
	require.NoError(t, err)

	stats, err := q.Shutdown(context.Background())
	require.NoError(t, err)

	snap := stats.Snapshot()
	require.EqualValues(t, 3, snap.CompletedLastHour)
	require.EqualValues(t, 3, received.Load())
}

func TestDeliver_MissingPrivateKey(t *testing.T) {
	config := cfg.Config{WorkerCount: 1}
	config.FillDefaults()

	q := queue.New(context.Background(), http.DefaultClient, config, nil)
	defer q.Shutdown(context.Background())

	actor := &ap.Actor{ID: "https://example.com/users/bob"}
	activity := &ap.Activity{ID: "https://example.com/activities/2", Actor: actor.ID}

	err := Deliver(context.Background(), q, activity, actor, []string{"https://example.com/inbox"}, config)
	require.ErrorIs(t, err, ErrMissingPrivateKey)
}
