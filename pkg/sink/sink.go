package sink

import (
	"io"
)

// Sink receives encoded files. write streams the content and may be called
// at most once per Put; if write fails the sink must not keep a partial file.
type Sink interface {
	Put(name string, write func(w io.Writer) error) error
}

// countWriter tracks how many bytes went through.
type countWriter struct {
	w io.Writer
	n int64
}

func (c *countWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
