package fs

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Local stores artifacts in a directory on the local file system.
type Local struct {
	rootDir string
}

func NewLocal(rootDir string) (*Local, error) {
	if rootDir == "" {
		return nil, errors.New("root directory can't be empty")
	}

	if err := os.MkdirAll(rootDir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create artifact dir: %s", rootDir)
	}

	return &Local{rootDir: rootDir}, nil
}

func (l *Local) Create(ctx context.Context, name string, reader io.Reader) (int64, error) {
	var (
		logger = log.WithField("file", name)
		path   = filepath.Join(l.rootDir, name)
	)

	logger.Debugf("copying to: %s", path)
	written, err := l.copyFile(reader, path)
	if err != nil {
		return 0, errors.Wrap(err, "failed to copy file")
	}

	logger.Debugf("copied %d bytes", written)
	return written, nil
}

func (l *Local) Size(ctx context.Context, name string) (int64, error) {
	stat, err := os.Stat(filepath.Join(l.rootDir, name))
	if err != nil {
		return 0, err
	}

	return stat.Size(), nil
}

func (l *Local) Delete(ctx context.Context, name string) error {
	return os.Remove(filepath.Join(l.rootDir, name))
}

func (l *Local) copyFile(source io.Reader, destinationPath string) (int64, error) {
	dest, err := os.Create(destinationPath)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create destination file")
	}

	defer dest.Close()

	written, err := io.Copy(dest, source)
	if err != nil {
		return 0, errors.Wrap(err, "failed to copy data")
	}

	return written, nil
}
