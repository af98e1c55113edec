// Package main provides the spotdl CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/huozhe/spotify-downloader/internal/core"
	httpserver "github.com/huozhe/spotify-downloader/internal/http"
	"github.com/huozhe/spotify-downloader/internal/lyrics"
	"github.com/huozhe/spotify-downloader/internal/playlist"
	"github.com/huozhe/spotify-downloader/internal/spotify"
	"github.com/huozhe/spotify-downloader/internal/store"
	"github.com/huozhe/spotify-downloader/internal/ytmusic"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "spotdl [query ...]",
	Short: "Fetch and reconcile song metadata for download",
	Long: `spotdl classifies each query (catalog URLs, paired URLs or search terms),
fetches metadata from Spotify, resolves playable audio links from YouTube
Music and prints the deduplicated download manifest.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSpotdl,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("output-format", "mp3", "target output format")
	rootCmd.PersistentFlags().Bool("use-youtube", false, "prefer plain YouTube search for audio links")
	rootCmd.PersistentFlags().Bool("generate-m3u", false, "write an M3U playlist file after the batch")
	rootCmd.PersistentFlags().String("m3u-file", "./spotdl.m3u", "M3U playlist file path")
	rootCmd.PersistentFlags().Int("download-threads", 4, "worker count for per-track metadata fan-out")
	rootCmd.PersistentFlags().String("spotify-client-id", "", "Spotify client ID")
	rootCmd.PersistentFlags().String("spotify-client-secret", "", "Spotify client secret")
	rootCmd.PersistentFlags().String("ytmusic-base-url", "", "YouTube Music proxy base URL")
	rootCmd.PersistentFlags().String("lyrics-token", "", "lyrics API token")
	rootCmd.PersistentFlags().Bool("enable-status-server", false, "serve /metrics and health endpoints during the run")
	rootCmd.PersistentFlags().Int("server-port", 9090, "status server port")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(".env")
		viper.SetConfigType("env")
	}

	viper.SetEnvPrefix("SPOTDL")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}

	config = buildConfig()
	logger = buildLogger(config.Log.Level)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	cfg.Spotify.ClientID = viper.GetString("spotify-client-id")
	cfg.Spotify.ClientSecret = viper.GetString("spotify-client-secret")
	if path := viper.GetString("spotify-token-path"); path != "" {
		cfg.Spotify.TokenPath = path
	}

	if base := viper.GetString("ytmusic-base-url"); base != "" {
		cfg.YTMusic.BaseURL = base
	}

	if base := viper.GetString("lyrics-base-url"); base != "" {
		cfg.Lyrics.BaseURL = base
	}
	cfg.Lyrics.Token = viper.GetString("lyrics-token")

	cfg.Server.Enabled = viper.GetBool("enable-status-server")
	cfg.Server.Port = viper.GetInt("server-port")
	if host := viper.GetString("server-host"); host != "" {
		cfg.Server.Host = host
	}

	cfg.Log.Level = viper.GetString("log-level")

	if format := viper.GetString("output-format"); format != "" {
		cfg.App.OutputFormat = format
	}
	cfg.App.UseYouTube = viper.GetBool("use-youtube")
	cfg.App.GenerateM3U = viper.GetBool("generate-m3u")
	if path := viper.GetString("m3u-file"); path != "" {
		cfg.App.M3UPath = path
	}
	cfg.App.Threads = viper.GetInt("download-threads")

	return cfg
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)

	builtLogger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runSpotdl(_ *cobra.Command, queries []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := validateConfig(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	logger.Info("Starting spotdl",
		zap.Int("queries", len(queries)),
		zap.String("output_format", config.App.OutputFormat),
		zap.Bool("use_youtube", config.App.UseYouTube))

	var metrics core.Metrics = core.NopMetrics()
	g, gCtx := errgroup.WithContext(ctx)

	if config.Server.Enabled {
		server := httpserver.NewServer(&config.Server, logger.Named("http"))
		metrics = server
		g.Go(func() error {
			return server.Start(gCtx)
		})
	}

	ytmusicClient := ytmusic.NewClient(config, logger.Named("ytmusic"))
	lyricsClient := lyrics.NewClient(config, logger.Named("lyrics"))
	probe := store.NewFileProbe(".")

	spotifyClient := spotify.NewClient(config, ytmusicClient, lyricsClient, probe, logger.Named("spotify"))
	if err := spotifyClient.Authenticate(ctx); err != nil {
		return fmt.Errorf("failed to authenticate with Spotify: %w", err)
	}

	dispatcher := core.NewDispatcher(
		config,
		spotifyClient,
		ytmusicClient,
		lyricsClient,
		probe,
		logger.Named("dispatcher"),
		metrics,
	)

	seen := store.NewSeenStore(10000, 0.001)
	batch := core.NewBatchProcessor(dispatcher, seen, logger.Named("batch"), metrics)

	songs := batch.Process(ctx, queries)

	for _, song := range songs {
		fmt.Printf("%s.%s\t%s\n", song.FileName(), config.App.OutputFormat, song.AudioLink)
	}

	if config.App.GenerateM3U {
		if err := playlist.WriteM3U(config.App.M3UPath, songs, config.App.OutputFormat); err != nil {
			logger.Warn("Failed to write playlist file", zap.Error(err))
		}
	}

	logger.Info("Done", zap.Int("songs", len(songs)))

	cancel()
	if err := g.Wait(); err != nil {
		return err
	}

	return nil
}

func validateConfig() error {
	if config.Spotify.ClientID == "" {
		return fmt.Errorf("spotify client ID is required")
	}

	if config.Spotify.ClientSecret == "" {
		return fmt.Errorf("spotify client secret is required")
	}

	if config.App.Threads < 1 {
		return fmt.Errorf("download-threads must be at least 1")
	}

	return nil
}
