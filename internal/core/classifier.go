package core

import "strings"

// RequestKind identifies which of the mutually exclusive request kinds a raw
// query represents.
type RequestKind int

const (
	// KindSkip marks tracking-file artifacts left behind by earlier runs.
	KindSkip RequestKind = iota
	// KindPairedTrack is an audio-source watch URL paired with a catalog
	// track URL.
	KindPairedTrack
	// KindPairedPlaylist is an audio-source playlist URL paired with a
	// catalog URL.
	KindPairedPlaylist
	KindSingleTrack
	KindAlbum
	KindPlaylist
	KindArtist
	KindSaved
	KindSearch
)

func (k RequestKind) String() string {
	switch k {
	case KindSkip:
		return "skip"
	case KindPairedTrack:
		return "paired_track"
	case KindPairedPlaylist:
		return "paired_playlist"
	case KindSingleTrack:
		return "track"
	case KindAlbum:
		return "album"
	case KindPlaylist:
		return "playlist"
	case KindArtist:
		return "artist"
	case KindSaved:
		return "saved"
	case KindSearch:
		return "search"
	default:
		return "unknown"
	}
}

// Classification is the tagged result of classifying one raw query. Query
// holds the catalog URL or search term; paired kinds additionally carry the
// two split segments, or Err when the pair did not validate.
type Classification struct {
	Kind       RequestKind
	Query      string
	AudioURL   string
	CatalogURL string
	Err        error
}

const (
	trackingFileSuffix = ".spotdlTrackingFile"
	catalogMarker      = "open.spotify.com"
	watchMarker        = "youtube.com/watch?v="
	ytPlaylistMarker   = "music.youtube.com/playlist?list="
	savedKeyword       = "saved"
)

// classifierRules is evaluated in order; the first matching rule wins. The
// order matters because the markers overlap as substrings.
var classifierRules = []struct {
	match func(string) bool
	build func(string) Classification
}{
	{
		func(raw string) bool { return strings.HasSuffix(raw, trackingFileSuffix) },
		func(raw string) Classification { return Classification{Kind: KindSkip, Query: raw} },
	},
	{
		func(raw string) bool {
			return strings.Contains(raw, watchMarker) &&
				strings.Contains(raw, catalogMarker) &&
				strings.Contains(raw, "track") &&
				strings.Contains(raw, "|")
		},
		func(raw string) Classification { return splitPaired(KindPairedTrack, raw) },
	},
	{
		func(raw string) bool {
			return strings.Contains(raw, ytPlaylistMarker) &&
				strings.Contains(raw, catalogMarker) &&
				strings.Contains(raw, "|")
		},
		func(raw string) Classification { return splitPaired(KindPairedPlaylist, raw) },
	},
	{
		func(raw string) bool { return strings.Contains(raw, catalogMarker) && strings.Contains(raw, "track") },
		func(raw string) Classification { return Classification{Kind: KindSingleTrack, Query: raw} },
	},
	{
		func(raw string) bool { return strings.Contains(raw, catalogMarker) && strings.Contains(raw, "album") },
		func(raw string) Classification { return Classification{Kind: KindAlbum, Query: raw} },
	},
	{
		func(raw string) bool {
			return strings.Contains(raw, catalogMarker) && strings.Contains(raw, "playlist")
		},
		func(raw string) Classification { return Classification{Kind: KindPlaylist, Query: raw} },
	},
	{
		func(raw string) bool { return strings.Contains(raw, catalogMarker) && strings.Contains(raw, "artist") },
		func(raw string) Classification { return Classification{Kind: KindArtist, Query: raw} },
	},
	{
		func(raw string) bool { return raw == savedKeyword },
		func(raw string) Classification { return Classification{Kind: KindSaved, Query: raw} },
	},
}

// Classify maps a raw query string to exactly one request kind, falling
// through to a search term. Pure and total.
//
// Routing is substring-based, not URL parsing: a search term that happens to
// contain a marker substring will misclassify. That is an accepted limitation
// inherited from the query format.
func Classify(raw string) Classification {
	for _, rule := range classifierRules {
		if rule.match(raw) {
			return rule.build(raw)
		}
	}
	return Classification{Kind: KindSearch, Query: raw}
}

// splitPaired splits "AudioURL|CatalogURL" and validates segment count and
// ordering: the audio-source marker must sit in the first segment and the
// catalog marker in the second.
func splitPaired(kind RequestKind, raw string) Classification {
	c := Classification{Kind: kind, Query: raw}

	urls := strings.Split(raw, "|")
	if len(urls) <= 1 || !strings.Contains(urls[0], "youtube") || !strings.Contains(urls[1], "spotify") {
		c.Err = ErrMalformedPairedRequest
		return c
	}

	c.AudioURL = urls[0]
	c.CatalogURL = urls[1]
	return c
}
