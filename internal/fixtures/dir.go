package fixtures

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
)

// DirSource reads fixtures from a filesystem (usually the site's data/ dir).
type DirSource struct {
	FS    fs.FS
	Label string
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{FS: os.DirFS(dir), Label: dir}
}

func NewFSSource(fsys fs.FS) *DirSource {
	return &DirSource{FS: fsys, Label: "fs"}
}

func (s *DirSource) Name() string {
	return "dir:" + s.Label
}

func (s *DirSource) Fetch(ctx context.Context, file string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := fs.ReadFile(s.FS, path.Clean(file))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("fixtures: %s: %w", file, ErrNotFound)
		}
		return nil, fmt.Errorf("fixtures: read %s: %w", file, err)
	}
	return b, nil
}
