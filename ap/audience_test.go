/*
Copyright 2025 - 2026 Dima Krasner

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

package ap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestActivity_AudienceRoundTrip exercises Audience the way an incoming
// activity actually carries it: "to"/"cc" as JSON arrays, deduplicated and
// order-preserved once decoded into an Activity envelope.
func TestActivity_AudienceRoundTrip(t *testing.T) {
	raw := `{
		"id": "https://example.com/activities/1",
		"type": "Create",
		"actor": "https://example.com/users/alice",
		"object": {"id": "https://example.com/notes/1"},
		"to": ["https://bob.example/inbox", "https://carol.example/inbox", "https://bob.example/inbox"],
		"cc": ["` + Public + `"]
	}`

	var activity Activity
	require.NoError(t, json.Unmarshal([]byte(raw), &activity))

	assert.Equal(t, []string{"https://bob.example/inbox", "https://carol.example/inbox"}, activity.To.Keys())
	assert.True(t, activity.IsPublic())

	out, err := json.Marshal(&activity)
	require.NoError(t, err)

	var roundTripped Activity
	require.NoError(t, json.Unmarshal(out, &roundTripped))
	assert.Equal(t, activity.To.Keys(), roundTripped.To.Keys())
}

// TestActivity_AudienceSingleString covers the Mastodon poll-vote quirk:
// a bare string instead of an array in "to".
func TestActivity_AudienceSingleString(t *testing.T) {
	raw := `{
		"id": "https://example.com/activities/2",
		"type": "Create",
		"actor": "https://example.com/users/alice",
		"object": {"id": "https://example.com/notes/2"},
		"to": "https://bob.example/inbox"
	}`

	var activity Activity
	require.NoError(t, json.Unmarshal([]byte(raw), &activity))

	assert.Equal(t, []string{"https://bob.example/inbox"}, activity.To.Keys())
	assert.False(t, activity.IsPublic())
}

// TestActivity_AudienceEmptyOmitted covers the zero-value case: an
// activity with no recipients at all must not serialize an empty "to".
func TestActivity_AudienceEmptyOmitted(t *testing.T) {
	activity := Activity{
		ID:     "https://example.com/activities/3",
		Type:   Create,
		Actor:  "https://example.com/users/alice",
		Object: map[string]any{"id": "https://example.com/notes/3"},
	}

	out, err := json.Marshal(&activity)
	require.NoError(t, err)
	assert.NotContains(t, string(out), `"to"`)
	assert.False(t, activity.IsPublic())
}

// TestActivity_AudienceAddDedups exercises Add directly, which stores into
// the same data.OrderedMap that Deliver's inbox dedup loop uses: repeated
// Add calls for the same recipient leave a single, first-position entry.
func TestActivity_AudienceAddDedups(t *testing.T) {
	var to Audience
	to.Add("https://bob.example/inbox")
	to.Add("https://carol.example/inbox")
	to.Add("https://bob.example/inbox")

	assert.Equal(t, []string{"https://bob.example/inbox", "https://carol.example/inbox"}, to.Keys())
	assert.True(t, to.Contains("https://bob.example/inbox"))
	assert.False(t, to.Contains("https://dave.example/inbox"))
}
