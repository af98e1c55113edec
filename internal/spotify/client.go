// Package spotify implements the catalog collaborator on top of the Spotify
// Web API: track, album, playlist, artist, saved-library and search fetches.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/errgroup"

	"github.com/huozhe/spotify-downloader/internal/core"
	"github.com/huozhe/spotify-downloader/pkg/fuzzy"
)

var idRegex = regexp.MustCompile(`spotify\.com/(?:intl-[a-z]+/)?(?:track|album|playlist|artist)/([a-zA-Z0-9]+)`)

// AudioResolver finds a playable audio link for a track by title and artists.
type AudioResolver interface {
	Resolve(ctx context.Context, title string, artists []string) (string, error)
}

type Client struct {
	config     *core.Config
	logger     *zap.Logger
	api        *spotify.Client
	resolver   AudioResolver
	lyrics     core.LyricsProvider
	probe      core.MaterializedProbe
	normalizer *fuzzy.Normalizer
}

func NewClient(
	config *core.Config,
	resolver AudioResolver,
	lyrics core.LyricsProvider,
	probe core.MaterializedProbe,
	logger *zap.Logger,
) *Client {
	return &Client{
		config:     config,
		logger:     logger,
		resolver:   resolver,
		lyrics:     lyrics,
		probe:      probe,
		normalizer: fuzzy.NewNormalizer(),
	}
}

// Authenticate prefers a saved user token (required for the saved-library
// endpoint) and falls back to the client-credentials flow.
func (c *Client) Authenticate(ctx context.Context) error {
	if token, err := c.loadToken(); err == nil {
		c.api = spotify.New(spotifyauth.New(
			spotifyauth.WithClientID(c.config.Spotify.ClientID),
			spotifyauth.WithClientSecret(c.config.Spotify.ClientSecret),
		).Client(ctx, token))
		c.logger.Info("Authenticated with saved user token")
		return nil
	}

	cc := &clientcredentials.Config{
		ClientID:     c.config.Spotify.ClientID,
		ClientSecret: c.config.Spotify.ClientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}

	token, err := cc.Token(ctx)
	if err != nil {
		return fmt.Errorf("client credentials flow failed: %w", err)
	}

	c.api = spotify.New(spotifyauth.New().Client(ctx, token))
	c.logger.Info("Authenticated with client credentials")
	return nil
}

func (c *Client) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.config.Spotify.TokenPath)
	if err != nil {
		return nil, err
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, err
	}

	return &token, nil
}

// TrackMetadata fetches one track without resolving an audio link.
func (c *Client) TrackMetadata(ctx context.Context, url string) (*core.Song, error) {
	if c.api == nil {
		return nil, errors.New("client not authenticated")
	}

	id, err := extractID(url)
	if err != nil {
		return nil, err
	}

	track, err := c.api.GetTrack(ctx, spotify.ID(id))
	if err != nil {
		return nil, fmt.Errorf("track lookup failed: %w", err)
	}

	return convertTrack(track), nil
}

// Track fetches one track with its audio link resolved. The link stays empty
// when the audio source has nothing, callers treat that as unresolvable.
func (c *Client) Track(ctx context.Context, url string) (*core.Song, error) {
	song, err := c.TrackMetadata(ctx, url)
	if err != nil {
		return nil, err
	}

	link, err := c.resolver.Resolve(ctx, song.Name, song.Artists)
	if err != nil {
		c.logger.Warn("Audio link resolution failed",
			zap.String("song", song.Name),
			zap.Error(err))
		return song, nil
	}
	song.AudioLink = link

	return song, nil
}

func (c *Client) Album(ctx context.Context, url string) ([]*core.Song, error) {
	songs, err := c.albumSongs(ctx, url)
	if err != nil {
		return nil, err
	}
	return c.enrich(ctx, songs, true)
}

func (c *Client) Playlist(ctx context.Context, url string) ([]*core.Song, error) {
	songs, err := c.playlistSongs(ctx, url)
	if err != nil {
		return nil, err
	}
	return c.enrich(ctx, songs, true)
}

// PlaylistMetadata fetches a playlist's songs with audio-link resolution
// suppressed, so a second source can supply the links.
func (c *Client) PlaylistMetadata(ctx context.Context, url string) ([]*core.Song, error) {
	songs, err := c.playlistSongs(ctx, url)
	if err != nil {
		return nil, err
	}
	return c.enrich(ctx, songs, false)
}

func (c *Client) Artist(ctx context.Context, url string) ([]*core.Song, error) {
	if c.api == nil {
		return nil, errors.New("client not authenticated")
	}

	id, err := extractID(url)
	if err != nil {
		return nil, err
	}

	albums, err := c.api.GetArtistAlbums(ctx, spotify.ID(id),
		[]spotify.AlbumType{spotify.AlbumTypeAlbum, spotify.AlbumTypeSingle})
	if err != nil {
		return nil, fmt.Errorf("artist albums lookup failed: %w", err)
	}

	var songs []*core.Song
	for {
		for i := range albums.Albums {
			albumSongs, err := c.fetchAlbumByID(ctx, albums.Albums[i].ID)
			if err != nil {
				c.logger.Warn("Skipping unreadable album",
					zap.String("album", albums.Albums[i].Name),
					zap.Error(err))
				continue
			}
			songs = append(songs, albumSongs...)
		}

		if err := c.api.NextPage(ctx, albums); err != nil {
			if errors.Is(err, spotify.ErrNoMorePages) {
				break
			}
			return nil, fmt.Errorf("artist albums paging failed: %w", err)
		}
	}

	return c.enrich(ctx, songs, true)
}

func (c *Client) Saved(ctx context.Context) ([]*core.Song, error) {
	if c.api == nil {
		return nil, errors.New("client not authenticated")
	}

	page, err := c.api.CurrentUsersTracks(ctx)
	if err != nil {
		return nil, fmt.Errorf("saved tracks lookup failed: %w", err)
	}

	var songs []*core.Song
	for {
		for i := range page.Tracks {
			songs = append(songs, convertTrack(&page.Tracks[i].FullTrack))
		}

		if err := c.api.NextPage(ctx, page); err != nil {
			if errors.Is(err, spotify.ErrNoMorePages) {
				break
			}
			return nil, fmt.Errorf("saved tracks paging failed: %w", err)
		}
	}

	return c.enrich(ctx, songs, true)
}

// Search runs a track search and returns the best-ranked hit, enriched like
// a single track.
func (c *Client) Search(ctx context.Context, term string) ([]*core.Song, error) {
	if c.api == nil {
		return nil, errors.New("client not authenticated")
	}

	results, err := c.api.Search(ctx, term, spotify.SearchTypeTrack)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if results.Tracks == nil || len(results.Tracks.Tracks) == 0 {
		return nil, fmt.Errorf("no results found for %q", term)
	}

	best := c.rankResults(results.Tracks.Tracks, term)
	enriched, err := c.enrich(ctx, []*core.Song{best}, true)
	if err != nil {
		return nil, err
	}
	return enriched, nil
}

// rankResults picks the hit whose normalized "artist - title" is most similar
// to the search term.
func (c *Client) rankResults(tracks []spotify.FullTrack, term string) *core.Song {
	normalizedTerm := c.normalizer.NormalizeTitle(term)

	bestIdx := 0
	bestScore := -1.0
	for i := range tracks {
		song := convertTrack(&tracks[i])
		candidate := c.normalizer.NormalizeArtist(firstArtist(song)) + " " + c.normalizer.NormalizeTitle(song.Name)
		if score := c.normalizer.Similarity(normalizedTerm, candidate); score > bestScore {
			bestIdx = i
			bestScore = score
		}
	}

	return convertTrack(&tracks[bestIdx])
}

func (c *Client) albumSongs(ctx context.Context, url string) ([]*core.Song, error) {
	if c.api == nil {
		return nil, errors.New("client not authenticated")
	}

	id, err := extractID(url)
	if err != nil {
		return nil, err
	}

	return c.fetchAlbumByID(ctx, spotify.ID(id))
}

func (c *Client) fetchAlbumByID(ctx context.Context, id spotify.ID) ([]*core.Song, error) {
	album, err := c.api.GetAlbum(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("album lookup failed: %w", err)
	}

	var songs []*core.Song
	page := &album.Tracks
	for {
		for i := range page.Tracks {
			songs = append(songs, convertSimpleTrack(&page.Tracks[i], album.Name))
		}

		if err := c.api.NextPage(ctx, page); err != nil {
			if errors.Is(err, spotify.ErrNoMorePages) {
				break
			}
			return nil, fmt.Errorf("album paging failed: %w", err)
		}
	}

	return songs, nil
}

func (c *Client) playlistSongs(ctx context.Context, url string) ([]*core.Song, error) {
	if c.api == nil {
		return nil, errors.New("client not authenticated")
	}

	id, err := extractID(url)
	if err != nil {
		return nil, err
	}

	page, err := c.api.GetPlaylistItems(ctx, spotify.ID(id))
	if err != nil {
		return nil, fmt.Errorf("playlist lookup failed: %w", err)
	}

	var songs []*core.Song
	for {
		for i := range page.Items {
			track := page.Items[i].Track.Track
			if track == nil {
				// Episodes and local files have no track payload.
				continue
			}
			songs = append(songs, convertTrack(track))
		}

		if err := c.api.NextPage(ctx, page); err != nil {
			if errors.Is(err, spotify.ErrNoMorePages) {
				break
			}
			return nil, fmt.Errorf("playlist paging failed: %w", err)
		}
	}

	return songs, nil
}

// enrich runs the per-song detail pass over a bulk fetch: materialized check,
// optional audio-link resolution and best-effort lyrics. It fans out up to
// the configured worker count but writes results by index, so output order
// matches input order. A song that is already materialized, or that cannot be
// resolved when resolution is requested, becomes a nil slot for the caller to
// filter. Per-song failures never fail the whole fetch.
func (c *Client) enrich(ctx context.Context, songs []*core.Song, resolveAudio bool) ([]*core.Song, error) {
	enriched := make([]*core.Song, len(songs))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.App.WorkerCount())

	for i := range songs {
		i := i
		g.Go(func() error {
			enriched[i] = c.enrichOne(gCtx, songs[i], resolveAudio)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return enriched, nil
}

func (c *Client) enrichOne(ctx context.Context, song *core.Song, resolveAudio bool) *core.Song {
	if song == nil {
		return nil
	}

	if c.probe.Exists(song.FileName(), c.config.App.OutputFormat) {
		c.logger.Info("Skipping already downloaded song", zap.String("file", song.FileName()))
		return nil
	}

	if resolveAudio {
		link, err := c.resolver.Resolve(ctx, song.Name, song.Artists)
		if err != nil || link == "" {
			c.logger.Warn("No audio link found for song",
				zap.String("song", song.Name),
				zap.Error(err))
			return nil
		}
		song.AudioLink = link
	}

	if text, err := c.lyrics.Lyrics(ctx, song.Name, song.Artists); err != nil {
		c.logger.Debug("Lyrics lookup failed",
			zap.String("song", song.Name),
			zap.Error(err))
	} else {
		song.Lyrics = text
	}

	return song
}

func convertTrack(track *spotify.FullTrack) *core.Song {
	artists := make([]string, 0, len(track.Artists))
	for _, a := range track.Artists {
		artists = append(artists, a.Name)
	}

	return &core.Song{
		Name:    track.Name,
		Artists: artists,
		Album:   track.Album.Name,
	}
}

func convertSimpleTrack(track *spotify.SimpleTrack, albumName string) *core.Song {
	artists := make([]string, 0, len(track.Artists))
	for _, a := range track.Artists {
		artists = append(artists, a.Name)
	}

	return &core.Song{
		Name:    track.Name,
		Artists: artists,
		Album:   albumName,
	}
}

func firstArtist(song *core.Song) string {
	if len(song.Artists) == 0 {
		return ""
	}
	return song.Artists[0]
}

func extractID(url string) (string, error) {
	matches := idRegex.FindStringSubmatch(url)
	if len(matches) < 2 {
		return "", fmt.Errorf("no spotify ID found in %q", url)
	}
	return matches[1], nil
}
