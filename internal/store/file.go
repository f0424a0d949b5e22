package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// FileStore keeps each collection as <dir>/<collection>.json.
type FileStore struct {
	fs  afero.Fs
	dir string
}

var _ Store = &FileStore{} // FileStore is-a Store.

// NewFileStore returns a FileStore rooted at dir of fs.
func NewFileStore(fs afero.Fs, dir string) *FileStore {
	return &FileStore{fs: fs, dir: dir}
}

// Load reads the current collection file.
func (s *FileStore) Load(_ context.Context, collection string) ([]byte, error) {
	var data, err = afero.ReadFile(s.fs, s.currentPath(collection))
	if os.IsNotExist(err) {
		return nil, ErrNotExist
	} else if err != nil {
		return nil, errors.WithMessage(err, "reading collection file")
	}
	return data, nil
}

// Save writes the complete collection to a temporary file, and then
// atomically moves it to the well-known location. Readers always observe
// either the previous or the new document, never a partial one.
func (s *FileStore) Save(_ context.Context, collection string, data []byte) error {
	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return errors.WithMessage(err, "creating store directory")
	}
	var f, err = s.fs.OpenFile(s.nextPath(collection), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return errors.WithMessage(err, "creating collection file")
	}

	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		err = errors.WithMessage(err, "writing collection file")
	} else if err = f.Close(); err != nil {
		err = errors.WithMessage(err, "closing collection file")
	} else if err = s.fs.Rename(s.nextPath(collection), s.currentPath(collection)); err != nil {
		err = errors.WithMessage(err, "renaming next => current")
	}
	return err
}

func (s *FileStore) currentPath(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}
func (s *FileStore) nextPath(collection string) string {
	return filepath.Join(s.dir, collection+".next.json")
}
