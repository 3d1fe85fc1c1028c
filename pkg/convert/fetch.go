package convert

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
)

func NewFetcher(progress io.Writer, logger *zap.Logger) *Fetcher {
	return &Fetcher{
		cli:      resty.New().SetDoNotParseResponse(true),
		progress: progress,
		log:      logger,
	}
}

// Fetcher downloads remote source images.
type Fetcher struct {
	cli      *resty.Client
	progress io.Writer
	log      *zap.Logger
}

func (f *Fetcher) Get(url string) ([]byte, error) {
	resp, err := f.cli.R().Get(url)
	if err != nil {
		return nil, err
	}

	defer func() {
		_ = resp.RawBody().Close()
	}()

	if resp.StatusCode() != http.StatusOK {
		return nil, errors.Errorf("unexpected status %s", resp.Status())
	}

	bar := progressbar.NewOptions64(
		resp.RawResponse.ContentLength,
		progressbar.OptionSetDescription(fmt.Sprintf("Downloading %s", url)),
		progressbar.OptionSetWriter(f.progress),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)

	var buf bytes.Buffer
	if _, err := io.Copy(io.MultiWriter(&buf, bar), resp.RawBody()); err != nil {
		return nil, err
	}
	_ = bar.Finish()

	f.log.With(zap.String("url", url), zap.Int("size", buf.Len())).Debug("downloaded")
	return buf.Bytes(), nil
}
