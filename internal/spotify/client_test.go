package spotify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"

	"github.com/huozhe/spotify-downloader/internal/core"
)

type stubResolver struct {
	resolve func(title string) (string, error)
}

func (s *stubResolver) Resolve(_ context.Context, title string, _ []string) (string, error) {
	if s.resolve == nil {
		return "", errors.New("unresolvable")
	}
	return s.resolve(title)
}

type stubLyrics struct{}

func (stubLyrics) Lyrics(_ context.Context, _ string, _ []string) (string, error) {
	return "", errors.New("no lyrics")
}

type stubProbe struct {
	existing map[string]bool
}

func (s *stubProbe) Exists(fileName, format string) bool {
	return s.existing[fileName+"."+format]
}

func newTestClient(resolver *stubResolver, probe *stubProbe) *Client {
	if resolver == nil {
		resolver = &stubResolver{}
	}
	if probe == nil {
		probe = &stubProbe{}
	}
	return NewClient(core.DefaultConfig(), resolver, stubLyrics{}, probe, zap.NewNop())
}

func TestExtractID(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		expected string
		wantErr  bool
	}{
		{"track url", "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC", "4uLU6hMCjMI75M1A2tKUQC", false},
		{"album url", "https://open.spotify.com/album/6fyR4wBPwLHKcRtxgd4sGh", "6fyR4wBPwLHKcRtxgd4sGh", false},
		{"playlist with query", "https://open.spotify.com/playlist/37i9dQZF1DX?si=x", "37i9dQZF1DX", false},
		{"intl prefix", "https://open.spotify.com/intl-de/track/4uLU6hMCjMI75M1A2tKUQC", "4uLU6hMCjMI75M1A2tKUQC", false},
		{"not a spotify url", "https://example.com/whatever", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractID(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("extractID(%q) err = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("extractID(%q) = %q, want %q", tt.url, got, tt.expected)
			}
		})
	}
}

func TestConvertTrack(t *testing.T) {
	track := &spotify.FullTrack{
		SimpleTrack: spotify.SimpleTrack{
			Name: "Song",
			Artists: []spotify.SimpleArtist{
				{Name: "First"},
				{Name: "Second"},
			},
		},
		Album: spotify.SimpleAlbum{Name: "The Album"},
	}

	song := convertTrack(track)
	if song.Name != "Song" {
		t.Errorf("Name = %q", song.Name)
	}
	if len(song.Artists) != 2 || song.Artists[0] != "First" || song.Artists[1] != "Second" {
		t.Errorf("Artists = %v", song.Artists)
	}
	if song.Album != "The Album" {
		t.Errorf("Album = %q", song.Album)
	}
	if song.AudioLink != "" {
		t.Errorf("fresh conversion carries AudioLink %q", song.AudioLink)
	}
}

func TestEnrichPreservesOrder(t *testing.T) {
	resolver := &stubResolver{
		resolve: func(title string) (string, error) { return "link-" + title, nil },
	}
	c := newTestClient(resolver, nil)

	var songs []*core.Song
	for i := 0; i < 20; i++ {
		songs = append(songs, &core.Song{Name: fmt.Sprintf("song-%02d", i), Artists: []string{"A"}})
	}

	enriched, err := c.enrich(context.Background(), songs, true)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if len(enriched) != len(songs) {
		t.Fatalf("got %d slots, want %d", len(enriched), len(songs))
	}

	for i, s := range enriched {
		want := fmt.Sprintf("song-%02d", i)
		if s == nil || s.Name != want {
			t.Errorf("slot %d = %v, want %s", i, s, want)
		}
		if s != nil && s.AudioLink != "link-"+want {
			t.Errorf("slot %d AudioLink = %q", i, s.AudioLink)
		}
	}
}

func TestEnrichSkipsMaterialized(t *testing.T) {
	resolver := &stubResolver{
		resolve: func(title string) (string, error) { return "link", nil },
	}
	done := &core.Song{Name: "Done", Artists: []string{"A"}}
	probe := &stubProbe{existing: map[string]bool{done.FileName() + ".mp3": true}}

	c := newTestClient(resolver, probe)

	enriched, err := c.enrich(context.Background(), []*core.Song{
		done,
		{Name: "Fresh", Artists: []string{"A"}},
	}, true)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}

	if enriched[0] != nil {
		t.Error("materialized song should become a nil slot")
	}
	if enriched[1] == nil || enriched[1].AudioLink != "link" {
		t.Errorf("fresh song slot = %v", enriched[1])
	}
}

func TestEnrichUnresolvableBecomesNilSlot(t *testing.T) {
	c := newTestClient(&stubResolver{}, nil)

	enriched, err := c.enrich(context.Background(), []*core.Song{
		{Name: "Nowhere", Artists: []string{"A"}},
	}, true)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if enriched[0] != nil {
		t.Error("unresolvable song should become a nil slot")
	}
}

func TestEnrichMetadataOnlyKeepsUnresolved(t *testing.T) {
	// Resolution suppressed: the resolver must not be consulted and songs
	// survive without links.
	resolver := &stubResolver{
		resolve: func(_ string) (string, error) {
			t.Error("resolver called despite suppressed resolution")
			return "", nil
		},
	}
	c := newTestClient(resolver, nil)

	enriched, err := c.enrich(context.Background(), []*core.Song{
		{Name: "Meta", Artists: []string{"A"}},
	}, false)
	if err != nil {
		t.Fatalf("enrich: %v", err)
	}
	if enriched[0] == nil || enriched[0].AudioLink != "" {
		t.Errorf("metadata-only slot = %v", enriched[0])
	}
}
