package convert

import (
	"image"

	"github.com/spf13/afero"
)

type Option func(p *Pipeline)

// WithFill crops and scales every source to exactly w x h.
func WithFill(w, h int) Option {
	return func(p *Pipeline) {
		p.fill = &image.Point{X: w, Y: h}
	}
}

// WithTopDown stores rows top first, written with a negative height.
func WithTopDown(topDown bool) Option {
	return func(p *Pipeline) {
		p.topDown = topDown
	}
}

// WithFs reads local sources from fs instead of the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(p *Pipeline) {
		p.fs = fs
	}
}

func WithFetcher(f *Fetcher) Option {
	return func(p *Pipeline) {
		p.fetch = f
	}
}

// WithEncoder replaces the in-process encoder, e.g. with a remote client.
func WithEncoder(e Encoder) Option {
	return func(p *Pipeline) {
		p.enc = e
	}
}
