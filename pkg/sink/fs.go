package sink

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"

	"github.com/inhies/go-bytesize"
	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

func newFs(path string) (afero.Fs, error) {
	fs := afero.NewOsFs()
	if exists, err := afero.DirExists(fs, path); err != nil {
		return nil, err
	} else if !exists {
		return nil, errors.New("dir not exists")
	}
	return afero.NewBasePathFs(fs, path), nil
}

// NewDir returns a sink writing below an existing directory.
func NewDir(dir string, logger *zap.Logger) (*Dir, error) {
	if dir == "" {
		return NewFs(afero.NewOsFs(), logger), nil
	}

	fs, err := newFs(dir)
	if err != nil {
		return nil, fmt.Errorf("create output dir failed: %w", err)
	}

	return NewFs(fs, logger), nil
}

func NewFs(fs afero.Fs, logger *zap.Logger) *Dir {
	return &Dir{fs: fs, log: logger.With(zap.String("sink", "fs"))}
}

// Dir writes each file to a temporary name first and renames it into place
// once fully written.
type Dir struct {
	fs  afero.Fs
	log *zap.Logger
}

func (d *Dir) Fs() afero.Fs {
	return d.fs
}

func (d *Dir) tmpname(name string) string {
	return fmt.Sprintf("%s.%s.tmp", name, xid.New().String())
}

func (d *Dir) Put(name string, write func(w io.Writer) error) error {
	if dir := filepath.Dir(name); dir != "." {
		if exists, err := afero.DirExists(d.fs, dir); err != nil {
			return err
		} else if !exists {
			if err2 := d.fs.MkdirAll(dir, 0755); err2 != nil {
				return err2
			}
		}
	}

	tmp := d.tmpname(name)
	f, err := d.fs.Create(tmp)
	if err != nil {
		return errors.Wrapf(err, "create %s", tmp)
	}

	cw := &countWriter{w: f}
	bw := bufio.NewWriter(cw)
	err = write(bw)
	if err == nil {
		err = bw.Flush()
	}
	if errC := f.Close(); err == nil {
		err = errC
	}

	if err != nil {
		if errR := d.fs.Remove(tmp); errR != nil {
			d.log.With(zap.String("tmp", tmp), zap.Error(errR)).Info("remove temp file failed")
		}
		return errors.Wrapf(err, "write %s", name)
	}

	if err := d.fs.Rename(tmp, name); err != nil {
		_ = d.fs.Remove(tmp)
		return errors.Wrapf(err, "rename %s", name)
	}

	d.log.With(
		zap.String("file", name),
		zap.String("size", bytesize.New(float64(cw.n)).String()),
	).Debug("saved")

	return nil
}
