package storage

import (
	"context"
	"os"
	"path"
	"path/filepath"
)

const defaultChunkSize = 64 * 1024

// LocalStore writes uploaded images under a single directory on the server's
// disk and derives the public URL path they are served back from.
type LocalStore struct {
	Dir       string
	BaseURL   string
	ChunkSize int
}

// Save streams data into Dir/name in fixed-size chunks, invoking onChunk with
// the running byte count after each write. Returns the public URL path of the
// stored file. Saving the same name again overwrites in place.
func (s *LocalStore) Save(ctx context.Context, name string, data []byte, onChunk func(written, total int)) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(s.Dir, name))
	if err != nil {
		return "", err
	}

	chunk := s.ChunkSize
	if chunk <= 0 {
		chunk = defaultChunkSize
	}

	total := len(data)
	for written := 0; written < total; {
		if err := ctx.Err(); err != nil {
			f.Close()
			return "", err
		}
		end := written + chunk
		if end > total {
			end = total
		}
		n, err := f.Write(data[written:end])
		if err != nil {
			f.Close()
			return "", err
		}
		written += n
		if onChunk != nil {
			onChunk(written, total)
		}
	}

	if err := f.Close(); err != nil {
		return "", err
	}
	return s.URL(name), nil
}

func (s *LocalStore) URL(name string) string {
	return path.Join(s.BaseURL, name)
}
