// Package lyrics implements the best-effort lyrics collaborator against a
// Genius-style lyrics API.
package lyrics

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

type lyricsResponse struct {
	Lyrics string `json:"lyrics"`
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(config *core.Config, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(config.Lyrics.BaseURL, "/"),
		token:      config.Lyrics.Token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// Lyrics fetches the lyrics for a track. Callers treat any error as "no
// lyrics"; nothing downstream depends on this succeeding.
func (c *Client) Lyrics(ctx context.Context, title string, artists []string) (string, error) {
	query := title
	if len(artists) > 0 {
		query = artists[0] + " " + title
	}

	endpoint := fmt.Sprintf("%s/lyrics?q=%s", c.baseURL, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("lyrics request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("lyrics service returned status %d", resp.StatusCode)
	}

	var payload lyricsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decoding lyrics response: %w", err)
	}

	if payload.Lyrics == "" {
		return "", fmt.Errorf("no lyrics found for %q", query)
	}

	return payload.Lyrics, nil
}
