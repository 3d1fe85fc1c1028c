package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/inhies/go-bytesize"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"bmpenc/pkg/convert"
	"bmpenc/pkg/remote"
	"bmpenc/pkg/sink"
)

var out = flag.StringP("out", "o", "", "output dir (default current dir)")
var name = flag.String("name", "", "output file name, single input only")
var fill = flag.String("fill", "", "crop and scale to WxH, e.g. 320x480")
var topDown = flag.Bool("top-down", false, "store rows top first (negative height)")
var remoteAddr = flag.String("remote", "", "bmpd addr to encode on")
var serialName = flag.String("serial", "", "stream to serial port instead of files")
var baud = flag.Int("baud", 115200, "serial baud rate")
var dryRun = flag.Bool("dry-run", false, "encode without writing anything")
var debug = flag.Bool("debug", false, "set debug")

func parseFill(s string) (int, int, error) {
	var w, h int
	if _, err := fmt.Sscanf(strings.ToLower(s), "%dx%d", &w, &h); err != nil {
		return 0, 0, fmt.Errorf("invalid fill %q: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("invalid fill %q", s)
	}
	return w, h, nil
}

func newLogger() *zap.Logger {
	logger, _ := lo.Ternary(*debug, zap.NewDevelopment, zap.NewProduction)()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func main() {
	flag.Parse()

	inputs := lo.Uniq(flag.Args())
	if len(inputs) == 0 {
		fmt.Fprintln(os.Stderr, "usage: bmpconv [flags] <file|url>...")
		flag.PrintDefaults()
		os.Exit(2)
	}
	if *name != "" && len(inputs) > 1 {
		log.Fatal("--name needs exactly one input")
	}

	logger := newLogger()
	defer func() {
		_ = logger.Sync()
	}()

	opts := []convert.Option{
		convert.WithTopDown(*topDown),
		convert.WithFetcher(convert.NewFetcher(lo.Ternary[io.Writer](len(inputs) == 1, os.Stderr, io.Discard), logger)),
	}

	if *fill != "" {
		w, h, err := parseFill(*fill)
		if err != nil {
			log.Fatal(err)
		}
		opts = append(opts, convert.WithFill(w, h))
	}

	if *remoteAddr != "" {
		cli, err := remote.New(*remoteAddr)
		if err != nil {
			log.Fatal(err)
		}
		defer func() {
			_ = cli.Close()
		}()
		opts = append(opts, convert.WithEncoder(cli))
	}

	var dst sink.Sink
	if *dryRun {
		dst = sink.Mock(logger)
	} else if *serialName != "" {
		s := sink.NewSerial(*serialName, &sink.Options{DTR: true, RTS: true, BaudRate: *baud}, logger)
		defer func() {
			_ = s.Close()
		}()
		dst = s
	} else {
		d, err := sink.NewDir(*out, logger)
		if err != nil {
			log.Fatal(err)
		}
		dst = d
	}

	p := convert.New(dst, logger, opts...)

	var bar *progressbar.ProgressBar
	if len(inputs) > 1 {
		bar = progressbar.Default(int64(len(inputs)), "Converting")
	}

	var failed []string
	for _, src := range inputs {
		if err := p.Convert(src, *name); err != nil {
			logger.With(zap.String("src", src), zap.Error(err)).Error("convert failed")
			failed = append(failed, src)
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if d, ok := dst.(*sink.Dir); ok && len(failed) < len(inputs) {
		var total int64
		done := lo.Filter(inputs, func(src string, _ int) bool {
			return !lo.Contains(failed, src)
		})
		for _, src := range done {
			fi, err := d.Fs().Stat(lo.Ternary(*name != "", *name, convert.OutputName(src)))
			if err == nil {
				total += fi.Size()
			}
		}
		logger.With(
			zap.Int("files", len(inputs)-len(failed)),
			zap.String("total", bytesize.New(float64(total)).String()),
		).Info("done")
	}

	if len(failed) > 0 {
		os.Exit(1)
	}
}
