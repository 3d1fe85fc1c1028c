package convert

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"

	"bmpenc/pkg/bitmap"
	"bmpenc/pkg/sink"
)

// Encoder turns a decoded image into a BMP file.
type Encoder interface {
	Encode(w io.Writer, img image.Image, topDown bool) error
}

// Local encodes in process.
type Local struct{}

func (Local) Encode(w io.Writer, img image.Image, topDown bool) error {
	dst, err := bitmap.FromImage(img, topDown)
	if err != nil {
		return err
	}
	return bitmap.Encode(w, dst)
}

func New(dst sink.Sink, logger *zap.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		dst: dst,
		enc: Local{},
		fs:  afero.NewOsFs(),
		log: logger,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.fetch == nil {
		p.fetch = NewFetcher(io.Discard, logger)
	}

	return p
}

// Pipeline loads source images, adapts them and writes them as BMP files.
type Pipeline struct {
	dst   sink.Sink
	enc   Encoder
	fs    afero.Fs
	fetch *Fetcher
	log   *zap.Logger
	// options
	fill    *image.Point
	topDown bool
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// OutputName derives the target file name for a source path or URL.
func OutputName(src string) string {
	name := src
	if isRemote(src) {
		if u, err := url.Parse(src); err == nil {
			name = u.Path
		}
	}

	base := path.Base(filepath.ToSlash(name))
	if base == "/" || base == "." {
		base = "image"
	}
	return strings.TrimSuffix(base, path.Ext(base)) + ".bmp"
}

func (p *Pipeline) read(src string) ([]byte, error) {
	return lo.Ternary(isRemote(src), p.fetch.Get, p.readFile)(src)
}

func (p *Pipeline) readFile(name string) ([]byte, error) {
	bs, err := afero.ReadFile(p.fs, name)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("source %s not found", name)
	}
	return bs, err
}

// Load reads and decodes src, applying the fill option.
func (p *Pipeline) Load(src string) (image.Image, error) {
	bs, err := p.read(src)
	if err != nil {
		return nil, fmt.Errorf("read source failed: %w", err)
	}

	// without a fill the source is written as is, so it has to fit a BMP
	if p.fill == nil {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(bs))
		if err != nil {
			return nil, fmt.Errorf("image decode failed: %w", err)
		}
		if err := bitmap.CheckDimensions(cfg.Width, cfg.Height); err != nil {
			return nil, fmt.Errorf("source %s: %w", src, err)
		}
	}

	img, format, err := image.Decode(bytes.NewReader(bs))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	p.log.With(
		zap.String("src", src),
		zap.String("format", format),
		zap.Int("w", img.Bounds().Dx()),
		zap.Int("h", img.Bounds().Dy()),
	).Debug("decoded")

	if p.fill != nil {
		img = imaging.Fill(img, p.fill.X, p.fill.Y, imaging.Center, imaging.Lanczos)
	}

	return img, nil
}

// Convert writes src as dst into the sink. An empty dst is derived from src.
func (p *Pipeline) Convert(src, dst string) error {
	img, err := p.Load(src)
	if err != nil {
		return err
	}

	if dst == "" {
		dst = OutputName(src)
	}

	start := time.Now()
	if err := p.dst.Put(dst, func(w io.Writer) error {
		return p.enc.Encode(w, img, p.topDown)
	}); err != nil {
		return fmt.Errorf("encode bitmap failed: %w", err)
	}

	p.log.With(
		zap.String("src", src),
		zap.String("dst", dst),
		zap.String("cost", time.Since(start).String()),
	).Info("converted")

	return nil
}
