package sink

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/inhies/go-bytesize"
	"github.com/pkg/errors"
	"go.bug.st/serial"
	"go.uber.org/zap"
)

var ErrPortNotFound = errors.New("serial port not found")

type Options struct {
	DTR      bool
	RTS      bool
	BaudRate int
}

func NewSerial(name string, opts *Options, logger *zap.Logger) *Serial {
	return &Serial{
		name:  name,
		opts:  opts,
		log:   logger.With(zap.String("sink", "serial"), zap.String("port", name)),
		ports: serial.GetPortsList,
		open:  serial.Open,
	}
}

// Serial streams every file to the first serial port whose name contains
// the configured name. The port is opened on first use.
type Serial struct {
	name string
	opts *Options
	log  *zap.Logger
	port serial.Port

	ports func() ([]string, error)
	open  func(name string, mode *serial.Mode) (serial.Port, error)
}

func (s *Serial) Ports() ([]string, error) {
	return s.ports()
}

func (s *Serial) Open() error {
	ports, err := s.Ports()
	if err != nil {
		return err
	}

	var matched string
	for _, name := range ports {
		if strings.Contains(name, s.name) {
			matched = name
			break
		}
	}
	if matched == "" {
		return ErrPortNotFound
	}

	port, err := s.open(matched, &serial.Mode{BaudRate: s.opts.BaudRate})
	if err != nil {
		return err
	}

	if err := port.SetDTR(s.opts.DTR); err != nil {
		_ = port.Close()
		return err
	}

	if err := port.SetRTS(s.opts.RTS); err != nil {
		_ = port.Close()
		return err
	}

	s.port = port
	return nil
}

// Put encodes into memory first, so a failed write sends nothing to the
// device. A port error mid transfer can still leave a partial file there.
func (s *Serial) Put(name string, write func(w io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}

	if s.port == nil {
		if err := s.Open(); err != nil {
			return errors.Wrap(err, "open serial failed")
		}
	}

	start := time.Now()
	n, err := buf.WriteTo(s.port)
	if err != nil {
		return errors.Wrap(err, "serial write failed")
	}

	s.log.With(
		zap.String("file", name),
		zap.String("sent", bytesize.New(float64(n)).String()),
		zap.String("cost", time.Since(start).String()),
	).Debug("transfer")

	return nil
}

func (s *Serial) Close() error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}
