package ytmusic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/huozhe/spotify-downloader/internal/core"
)

func newServerClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := core.DefaultConfig()
	cfg.YTMusic.BaseURL = server.URL

	return NewClient(cfg, zap.NewNop()), server
}

func TestPlaylistID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
		wantErr  bool
	}{
		{"full url", "https://music.youtube.com/playlist?list=PL123abc", "PL123abc", false},
		{"no scheme", "music.youtube.com/playlist?list=PLxyz", "PLxyz", false},
		{"extra params", "https://music.youtube.com/playlist?list=PL1&si=share", "PL1", false},
		{"missing list param", "https://music.youtube.com/playlist?id=PL1", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := playlistID(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("playlistID(%q) err = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("playlistID(%q) = %q, want %q", tt.url, got, tt.expected)
			}
		})
	}
}

func TestPlaylistCandidates(t *testing.T) {
	c, _ := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/playlists/PL1/tracks" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tracks":[
			{"videoId":"v1","title":"First Song"},
			{"videoId":"","title":"Unavailable"},
			{"videoId":"v2","title":"Second Song"}
		]}`))
	})

	candidates, err := c.PlaylistCandidates(context.Background(), "https://music.youtube.com/playlist?list=PL1")
	if err != nil {
		t.Fatalf("PlaylistCandidates: %v", err)
	}

	if len(candidates) != 2 {
		t.Fatalf("got %d candidates, want 2 (missing videoId dropped)", len(candidates))
	}
	if candidates[0].Title != "First Song" || candidates[0].Link != "https://www.youtube.com/watch?v=v1" {
		t.Errorf("candidates[0] = %+v", candidates[0])
	}
	if candidates[1].Link != "https://www.youtube.com/watch?v=v2" {
		t.Errorf("candidates[1] = %+v", candidates[1])
	}
}

func TestPlaylistCandidatesServerError(t *testing.T) {
	c, _ := newServerClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.PlaylistCandidates(context.Background(), "https://music.youtube.com/playlist?list=PL1")
	if err == nil {
		t.Fatal("expected error for upstream failure")
	}
}

func TestResolve(t *testing.T) {
	c, _ := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("scope"); got != "songs" {
			t.Errorf("scope = %q, want songs", got)
		}
		if got := r.URL.Query().Get("q"); got != "Artist Title" {
			t.Errorf("q = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"videoId":"hit","title":"Title"}]}`))
	})

	link, err := c.Resolve(context.Background(), "Title", []string{"Artist"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if link != "https://www.youtube.com/watch?v=hit" {
		t.Errorf("link = %q", link)
	}
}

func TestResolveNoResults(t *testing.T) {
	c, _ := newServerClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[]}`))
	})

	if _, err := c.Resolve(context.Background(), "Nothing", nil); err == nil {
		t.Fatal("expected error when the search returns nothing")
	}
}

func TestResolvePrefersVideosScopeWhenConfigured(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("scope"); got != "videos" {
			t.Errorf("scope = %q, want videos", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"videoId":"v","title":"t"}]}`))
	}))
	defer server.Close()

	cfg := core.DefaultConfig()
	cfg.YTMusic.BaseURL = server.URL
	cfg.App.UseYouTube = true

	c := NewClient(cfg, zap.NewNop())
	if _, err := c.Resolve(context.Background(), "t", nil); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
}
