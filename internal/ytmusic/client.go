// Package ytmusic implements the audio-source collaborator over the YouTube
// Music proxy API: playlist candidate listings and per-track link search.
package ytmusic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/huozhe/spotify-downloader/internal/core"
)

const watchURLPrefix = "https://www.youtube.com/watch?v="

type trackPayload struct {
	VideoID string `json:"videoId"`
	Title   string `json:"title"`
}

type tracksResponse struct {
	Tracks []trackPayload `json:"tracks"`
}

type searchResponse struct {
	Results []trackPayload `json:"results"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	// useYouTube switches link search from the songs scope to plain video
	// search.
	useYouTube bool
}

func NewClient(config *core.Config, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(config.YTMusic.BaseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
		useYouTube: config.App.UseYouTube,
	}
}

// PlaylistCandidates lists the titles and watch links of a YouTube Music
// playlist, in playlist order.
func (c *Client) PlaylistCandidates(ctx context.Context, playlistURL string) ([]core.Candidate, error) {
	id, err := playlistID(playlistURL)
	if err != nil {
		return nil, err
	}

	var payload tracksResponse
	if err := c.get(ctx, fmt.Sprintf("%s/playlists/%s/tracks", c.baseURL, url.PathEscape(id)), &payload); err != nil {
		return nil, err
	}

	candidates := make([]core.Candidate, 0, len(payload.Tracks))
	for _, t := range payload.Tracks {
		if t.VideoID == "" {
			continue
		}
		candidates = append(candidates, core.Candidate{
			Title: t.Title,
			Link:  watchURLPrefix + t.VideoID,
		})
	}

	c.logger.Debug("Fetched playlist candidates",
		zap.String("playlist", id),
		zap.Int("count", len(candidates)))

	return candidates, nil
}

// Resolve searches for a watch link matching the given title and artists and
// returns the first hit.
func (c *Client) Resolve(ctx context.Context, title string, artists []string) (string, error) {
	query := strings.Join(append(append([]string{}, artists...), title), " ")

	scope := "songs"
	if c.useYouTube {
		scope = "videos"
	}

	var payload searchResponse
	endpoint := fmt.Sprintf("%s/search?q=%s&scope=%s", c.baseURL, url.QueryEscape(query), scope)
	if err := c.get(ctx, endpoint, &payload); err != nil {
		return "", err
	}

	for _, r := range payload.Results {
		if r.VideoID != "" {
			return watchURLPrefix + r.VideoID, nil
		}
	}

	return "", fmt.Errorf("no results for %q", query)
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to audio source failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("audio source returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding audio source response: %w", err)
	}

	return nil
}

// playlistID extracts the "list" parameter from a YouTube Music playlist URL.
func playlistID(rawURL string) (string, error) {
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid playlist URL: %w", err)
	}

	id := u.Query().Get("list")
	if id == "" {
		return "", fmt.Errorf("no playlist ID in %q", rawURL)
	}

	return id, nil
}
