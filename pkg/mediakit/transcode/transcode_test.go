package transcode_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iptvkit/mediakit/pkg/mediakit"
	"github.com/iptvkit/mediakit/pkg/mediakit/transcode"
)

func TestClient_ConvertToHLS(t *testing.T) {
	var gotBody map[string]interface{}
	var gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/convertVideoToM3U8", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"status": "ok",
			"payload": {
				"videoVersions": [
					{"path": "/hls/movie1/movie1.m3u8"},
					{"path": "/hls/movie1/movie1_low.m3u8"}
				]
			}
		}`))
	}))
	defer srv.Close()

	client, err := transcode.New(transcode.Config{BaseURL: srv.URL, Token: "secret"})
	require.NoError(t, err)

	result, err := client.ConvertToHLS(context.Background(), "https://videos.example.com/videos/raw.mp4", 3)
	require.NoError(t, err)
	require.Len(t, result.Renditions, 2)
	assert.Equal(t, "/hls/movie1/movie1.m3u8", result.Renditions[0].Path)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "https://videos.example.com/videos/raw.mp4", gotBody["url"])
	assert.Equal(t, float64(3), gotBody["segments"])
}

func TestClient_ConvertToHLS_EmptyVersions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","payload":{"videoVersions":[]}}`))
	}))
	defer srv.Close()

	client, err := transcode.New(transcode.Config{BaseURL: srv.URL})
	require.NoError(t, err)

	result, err := client.ConvertToHLS(context.Background(), "src", 2)
	require.NoError(t, err)
	assert.Empty(t, result.Renditions)
}

func TestClient_ConvertToHLS_RemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "transcoder busy", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client, err := transcode.New(transcode.Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.ConvertToHLS(context.Background(), "src", 2)
	require.Error(t, err)

	var remoteErr *mediakit.RemoteError
	require.True(t, errors.As(err, &remoteErr))
	assert.Equal(t, "transcoder", remoteErr.Service)
	assert.Equal(t, http.StatusServiceUnavailable, remoteErr.Status)
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := transcode.New(transcode.Config{})
	assert.Error(t, err)
}
