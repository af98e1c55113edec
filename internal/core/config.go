package core

import (
	"time"
)

type Config struct {
	Spotify SpotifyConfig
	YTMusic YTMusicConfig
	Lyrics  LyricsConfig
	Server  ServerConfig
	Log     LogConfig
	App     AppConfig
}

type SpotifyConfig struct {
	ClientID     string
	ClientSecret string
	TokenPath    string
}

type YTMusicConfig struct {
	BaseURL string
}

type LyricsConfig struct {
	BaseURL string
	Token   string
}

type ServerConfig struct {
	Enabled      bool
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LogConfig struct {
	Level string
}

type AppConfig struct {
	// OutputFormat is the target file extension used for materialized
	// checks and the generated playlist file.
	OutputFormat string
	// UseYouTube prefers plain YouTube search over YouTube Music when
	// resolving audio links.
	UseYouTube bool
	// GenerateM3U writes an M3U playlist file after the batch completes.
	GenerateM3U bool
	// M3UPath is the playlist file destination when GenerateM3U is set.
	M3UPath string
	// Threads is the worker-count hint for per-track fan-out inside bulk
	// fetches. Values below 1 are treated as 1.
	Threads int
}

// WorkerCount returns the fan-out limit for bulk fetches, never below 1.
func (c AppConfig) WorkerCount() int {
	if c.Threads < 1 {
		return 1
	}
	return c.Threads
}

func DefaultConfig() *Config {
	return &Config{
		Spotify: SpotifyConfig{
			TokenPath: "./spotify_token.json",
		},
		YTMusic: YTMusicConfig{
			BaseURL: "http://localhost:8008",
		},
		Lyrics: LyricsConfig{
			BaseURL: "https://api.genius.com",
		},
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         9090,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
		App: AppConfig{
			OutputFormat: "mp3",
			M3UPath:      "./spotdl.m3u",
			Threads:      4,
		},
	}
}
