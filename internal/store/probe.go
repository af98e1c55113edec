package store

import (
	"os"
	"path/filepath"
)

// FileProbe reports whether a song's output file has already been
// materialized in the output directory.
type FileProbe struct {
	dir string
}

func NewFileProbe(dir string) *FileProbe {
	if dir == "" {
		dir = "."
	}
	return &FileProbe{dir: dir}
}

func (p *FileProbe) Exists(fileName, format string) bool {
	info, err := os.Stat(filepath.Join(p.dir, fileName+"."+format))
	return err == nil && !info.IsDir()
}
