package core

import (
	"context"
	"errors"
	"strings"
)

// Song represents one track to be acquired: catalog metadata plus, once
// resolved, the audio-source link it will be downloaded from.
type Song struct {
	Name      string
	Artists   []string
	Album     string
	Lyrics    string
	AudioLink string
}

// SetAudioLink attaches the resolved audio-source link. The matcher is the
// only caller once a Song has left its constructor, so bulk fan-out never
// races on the field.
func (s *Song) SetAudioLink(link string) {
	s.AudioLink = link
}

// FileName derives the stable output file name (without extension) from the
// song's artists and name. Subsequent artists already mentioned in the song
// name are not repeated. The name doubles as the dedup identity key, so it
// must not change once Name and Artists are fixed.
func (s *Song) FileName() string {
	var b strings.Builder

	for i, artist := range s.Artists {
		if i > 0 && strings.Contains(strings.ToLower(s.Name), strings.ToLower(artist)) {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(artist)
	}

	b.WriteString(" - ")
	b.WriteString(s.Name)

	return sanitizeFileName(b.String())
}

// sanitizeFileName strips characters that are invalid in file names on common
// file systems.
func sanitizeFileName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch r {
		case '/', '?', '\\', '*', '|', '<', '>', ':':
		case '"':
			b.WriteRune('\'')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Candidate is one audio-source title with its opaque link identifier.
// Candidates are read-only during matching.
type Candidate struct {
	Title string
	Link  string
}

// MatchResult pairs a song (by position) with the candidate it matched and
// the similarity distance achieved. Zero distance is an exact character
// multiset match.
type MatchResult struct {
	SongIndex      int
	CandidateIndex int
	Distance       int
}

var (
	// ErrMalformedPairedRequest reports a paired query that does not split
	// into AudioURL|CatalogURL in that order.
	ErrMalformedPairedRequest = errors.New("malformed paired request, expected AudioURL|CatalogURL")

	// ErrNoCandidates reports that the audio source returned nothing to
	// match against.
	ErrNoCandidates = errors.New("audio source returned no candidates")
)

// CatalogProvider fetches song metadata from the catalog service. Bulk
// fetchers return fully populated songs in catalog order and may leave nil
// slots for already materialized entries; callers filter those out. They may
// fan out internally per the configured worker count but must preserve input
// ordering.
type CatalogProvider interface {
	// TrackMetadata fetches a single track's metadata without resolving an
	// audio link.
	TrackMetadata(ctx context.Context, url string) (*Song, error)
	// Track fetches a single track with its audio link resolved.
	Track(ctx context.Context, url string) (*Song, error)
	Album(ctx context.Context, url string) ([]*Song, error)
	Playlist(ctx context.Context, url string) ([]*Song, error)
	// PlaylistMetadata fetches a playlist's songs with audio-link
	// resolution suppressed, for reconciliation against a second source.
	PlaylistMetadata(ctx context.Context, url string) ([]*Song, error)
	Artist(ctx context.Context, url string) ([]*Song, error)
	Saved(ctx context.Context) ([]*Song, error)
	Search(ctx context.Context, term string) ([]*Song, error)
}

// AudioProvider lists candidate titles from the audio source.
type AudioProvider interface {
	PlaylistCandidates(ctx context.Context, playlistURL string) ([]Candidate, error)
}

// LyricsProvider fetches lyrics. Best-effort: callers swallow errors.
type LyricsProvider interface {
	Lyrics(ctx context.Context, title string, artists []string) (string, error)
}

// MaterializedProbe reports whether the output file for a song already exists
// on the target medium.
type MaterializedProbe interface {
	Exists(fileName, format string) bool
}

// Metrics receives dispatch-level counters. Implemented by the status server;
// NopMetrics is used when it is disabled.
type Metrics interface {
	RecordQuery(kind, status string)
	RecordSongs(count int)
	RecordDuplicate()
	RecordMismatch()
}

type nopMetrics struct{}

func (nopMetrics) RecordQuery(_, _ string) {}
func (nopMetrics) RecordSongs(_ int)       {}
func (nopMetrics) RecordDuplicate()        {}
func (nopMetrics) RecordMismatch()         {}

// NopMetrics returns a Metrics implementation that discards everything.
func NopMetrics() Metrics {
	return nopMetrics{}
}
