// Package playlist writes M3U playlist files for a completed batch.
package playlist

import (
	"fmt"
	"os"
	"strings"

	"github.com/huozhe/spotify-downloader/internal/core"
)

// WriteM3U writes the songs' output file names to an extended M3U file at
// path, in batch order.
func WriteM3U(path string, songs []*core.Song, format string) error {
	var b strings.Builder
	b.WriteString("#EXTM3U\n")

	for _, song := range songs {
		fmt.Fprintf(&b, "#EXTINF:-1,%s\n", song.Name)
		fmt.Fprintf(&b, "%s.%s\n", song.FileName(), format)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing playlist file: %w", err)
	}

	return nil
}
