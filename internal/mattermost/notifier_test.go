package mattermost

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelNotifier(t *testing.T) {
	var got Post
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v4/teams/team1/channels/name/approvals", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "chan1"})
	})
	mux.HandleFunc("POST /api/v4/posts", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "post1", "channel_id": got.ChannelID})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	n, err := ResolveChannelNotifier(ctx, NewClient(srv.URL+"/", "tok"), "team1", "approvals")
	require.NoError(t, err)

	require.NoError(t, n.Notify(ctx, "hello"))
	assert.Equal(t, "chan1", got.ChannelID)
	require.Len(t, got.Props.Attachments, 1)
	assert.Equal(t, "hello", got.Props.Attachments[0].Text)
}

func TestCreatePost_ReturnsID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "post9"})
	}))
	defer srv.Close()

	id, err := NewClient(srv.URL, "tok").CreatePost(context.Background(), &Post{ChannelID: "chan1"})
	require.NoError(t, err)
	assert.Equal(t, "post9", id)
}

func TestChannelNotifier_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"nope"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewChannelNotifier(NewClient(srv.URL, "tok"), "chan1").Notify(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api error 403")
}
