package remote

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net"
	"net/http"
	"net/rpc"

	"github.com/inhies/go-bytesize"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"bmpenc/pkg/bitmap"
	"bmpenc/pkg/config"
)

var ErrTooLarge = errors.New("image too large")

func NewService(cfg *config.Config, logger *zap.Logger) *Service {
	return &Service{
		maxUpload: cfg.MaxUploadBytes(),
		maxPixels: cfg.MaxPixels,
		log:       logger.With(zap.String("via", "rpc")),
	}
}

// Service encodes pictures sent over net/rpc.
type Service struct {
	maxUpload int64
	maxPixels int
	log       *zap.Logger
}

func (s *Service) Encode(req *EncodeRequest, resp *EncodeResponse) error {
	if s.maxUpload > 0 && int64(len(req.Image)) > s.maxUpload {
		return errors.Wrapf(ErrTooLarge, "%s exceeds %s",
			bytesize.New(float64(len(req.Image))), bytesize.New(float64(s.maxUpload)))
	}

	// reject from the header alone, decoding allocates the full picture
	cfg, _, err := image.DecodeConfig(bytes.NewReader(req.Image))
	if err != nil {
		return errors.Wrap(err, "decode image config")
	}
	if err := s.checkSize(cfg.Width, cfg.Height); err != nil {
		s.log.With(zap.Int("w", cfg.Width), zap.Int("h", cfg.Height), zap.Error(err)).Info("rejected")
		return err
	}

	img, _, err := image.Decode(bytes.NewReader(req.Image))
	if err != nil {
		return errors.Wrap(err, "decode image")
	}

	dst, err := bitmap.FromImage(img, req.TopDown)
	if err != nil {
		return err
	}

	bs, err := bitmap.EncodeBytes(dst)
	if err != nil {
		s.log.With(zap.Error(err)).Info("encode failed")
		return err
	}

	s.log.With(
		zap.Int("w", img.Bounds().Dx()),
		zap.Int("h", img.Bounds().Dy()),
		zap.Bool("topDown", req.TopDown),
		zap.Int("size", len(bs)),
	).Debug("encoded")

	resp.Bitmap = bs
	return nil
}

func (s *Service) checkSize(w, h int) error {
	if err := bitmap.CheckDimensions(w, h); err != nil {
		return err
	}
	if s.maxPixels > 0 && int64(w)*int64(h) > int64(s.maxPixels) {
		return errors.Wrapf(ErrTooLarge, "%dx%d exceeds %d pixels", w, h, s.maxPixels)
	}
	return nil
}

// Handler serves svc at the default net/rpc HTTP path.
func Handler(svc *Service) (http.Handler, error) {
	server := rpc.NewServer()
	if err := server.Register(svc); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle(rpc.DefaultRPCPath, server)
	return mux, nil
}

func Serve(svc *Service, srv *http.Server, lifecycle fx.Lifecycle, logger *zap.Logger) error {
	h, err := Handler(svc)
	if err != nil {
		return err
	}
	srv.Handler = h

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			logger.With(zap.String("addr", ln.Addr().String())).Info("listening")
			go func() {
				if err := srv.Serve(ln); err != http.ErrServerClosed {
					logger.With(zap.Error(err)).Error("serve failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})

	return nil
}
