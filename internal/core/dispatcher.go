package core

import (
	"context"

	"go.uber.org/zap"
)

// Result is the outcome of dispatching one classified query. Err records why
// a query produced nothing; the batch processor logs it and continues, so a
// failing query never aborts its siblings.
type Result struct {
	Kind  RequestKind
	Songs []*Song
	Err   error
}

// Dispatcher routes a classified query to the matching metadata-fetch
// pathway. Every collaborator failure is caught at this boundary and turned
// into an empty Result.
type Dispatcher struct {
	config  *Config
	catalog CatalogProvider
	audio   AudioProvider
	lyrics  LyricsProvider
	probe   MaterializedProbe
	matcher *Matcher
	logger  *zap.Logger
	metrics Metrics
}

func NewDispatcher(
	config *Config,
	catalog CatalogProvider,
	audio AudioProvider,
	lyrics LyricsProvider,
	probe MaterializedProbe,
	logger *zap.Logger,
	metrics Metrics,
) *Dispatcher {
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &Dispatcher{
		config:  config,
		catalog: catalog,
		audio:   audio,
		lyrics:  lyrics,
		probe:   probe,
		matcher: NewMatcher(logger.Named("matcher"), metrics),
		logger:  logger,
		metrics: metrics,
	}
}

// Dispatch fetches the songs for one classified query. The returned Result
// never carries nil song slots.
func (d *Dispatcher) Dispatch(ctx context.Context, c Classification) Result {
	if c.Err != nil {
		d.logger.Warn("Rejecting malformed query",
			zap.String("kind", c.Kind.String()),
			zap.String("query", c.Query),
			zap.Error(c.Err))
		d.metrics.RecordQuery(c.Kind.String(), "malformed")
		return Result{Kind: c.Kind, Err: c.Err}
	}

	songs, err := d.fetch(ctx, c)
	if err != nil {
		d.logger.Warn("Query failed, continuing with the rest of the batch",
			zap.String("kind", c.Kind.String()),
			zap.String("query", c.Query),
			zap.Error(err))
		d.metrics.RecordQuery(c.Kind.String(), "error")
		return Result{Kind: c.Kind, Err: err}
	}

	songs = filterEmpty(songs)
	d.metrics.RecordQuery(c.Kind.String(), "ok")
	d.metrics.RecordSongs(len(songs))

	return Result{Kind: c.Kind, Songs: songs}
}

func (d *Dispatcher) fetch(ctx context.Context, c Classification) ([]*Song, error) {
	switch c.Kind {
	case KindSingleTrack:
		return d.singleTrack(ctx, c.Query)
	case KindAlbum:
		d.logger.Info("Fetching album", zap.String("url", c.Query))
		return d.catalog.Album(ctx, c.Query)
	case KindPlaylist:
		d.logger.Info("Fetching playlist", zap.String("url", c.Query))
		return d.catalog.Playlist(ctx, c.Query)
	case KindArtist:
		d.logger.Info("Fetching artist", zap.String("url", c.Query))
		return d.catalog.Artist(ctx, c.Query)
	case KindSaved:
		d.logger.Info("Fetching saved songs")
		return d.catalog.Saved(ctx)
	case KindSearch:
		d.logger.Info("Searching catalog", zap.String("term", c.Query))
		return d.catalog.Search(ctx, c.Query)
	case KindPairedTrack:
		return d.pairedTrack(ctx, c)
	case KindPairedPlaylist:
		return d.pairedPlaylist(ctx, c)
	default:
		return nil, nil
	}
}

// singleTrack fetches one track with audio resolution. Tracks without a
// resolved audio link and tracks whose output file already exists yield
// nothing.
func (d *Dispatcher) singleTrack(ctx context.Context, url string) ([]*Song, error) {
	d.logger.Info("Fetching song", zap.String("url", url))

	song, err := d.catalog.Track(ctx, url)
	if err != nil {
		return nil, err
	}
	if song == nil || song.AudioLink == "" {
		return nil, nil
	}

	if d.probe.Exists(song.FileName(), d.config.App.OutputFormat) {
		d.logger.Info("Skipping already downloaded song", zap.String("file", song.FileName()))
		return nil, nil
	}

	d.attachLyrics(ctx, song)

	return []*Song{song}, nil
}

// pairedTrack builds one song from catalog metadata and the caller-supplied
// audio link. No matching is involved, the pairing is one-to-one.
func (d *Dispatcher) pairedTrack(ctx context.Context, c Classification) ([]*Song, error) {
	d.logger.Info("Fetching audio-source video with catalog metadata",
		zap.String("audio_url", c.AudioURL),
		zap.String("catalog_url", c.CatalogURL))

	song, err := d.catalog.TrackMetadata(ctx, c.CatalogURL)
	if err != nil {
		return nil, err
	}
	if song == nil {
		return nil, nil
	}

	if d.probe.Exists(song.FileName(), d.config.App.OutputFormat) {
		d.logger.Info("Skipping already downloaded song", zap.String("file", song.FileName()))
		return nil, nil
	}

	d.attachLyrics(ctx, song)
	song.AudioLink = c.AudioURL

	return []*Song{song}, nil
}

// pairedPlaylist reconciles catalog playlist metadata with the audio source's
// candidate titles through the matcher.
func (d *Dispatcher) pairedPlaylist(ctx context.Context, c Classification) ([]*Song, error) {
	d.logger.Info("Fetching audio-source playlist with catalog metadata",
		zap.String("audio_url", c.AudioURL),
		zap.String("catalog_url", c.CatalogURL))

	songs, err := d.catalog.PlaylistMetadata(ctx, c.CatalogURL)
	if err != nil {
		return nil, err
	}
	songs = filterEmpty(songs)

	candidates, err := d.audio.PlaylistCandidates(ctx, c.AudioURL)
	if err != nil {
		return nil, err
	}

	if _, err := d.matcher.Match(songs, candidates); err != nil {
		d.logger.Warn("No download links found on the audio source",
			zap.String("audio_url", c.AudioURL),
			zap.Error(err))
		return nil, nil
	}

	return songs, nil
}

// attachLyrics fetches lyrics best-effort: a lyrics failure never fails the
// track.
func (d *Dispatcher) attachLyrics(ctx context.Context, song *Song) {
	text, err := d.lyrics.Lyrics(ctx, song.Name, song.Artists)
	if err != nil {
		d.logger.Debug("Lyrics lookup failed",
			zap.String("song", song.Name),
			zap.Error(err))
		return
	}
	song.Lyrics = text
}

func filterEmpty(songs []*Song) []*Song {
	filtered := songs[:0]
	for _, s := range songs {
		if s != nil {
			filtered = append(filtered, s)
		}
	}
	return filtered
}
