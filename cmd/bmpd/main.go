package main

import (
	"log"
	"net/http"

	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"bmpenc/pkg/config"
	"bmpenc/pkg/remote"
)

var configFile = flag.String("config", "", "yaml config file")
var listen = flag.String("listen", ":9123", "listen addr")
var debug = flag.Bool("debug", false, "set debug")

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(afero.NewOsFs(), *configFile)
	if err != nil {
		return nil, err
	}
	if flag.CommandLine.Changed("listen") {
		cfg.Listen = *listen
	}
	if flag.CommandLine.Changed("debug") {
		cfg.Debug = *debug
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}

	fx.New(
		fx.Supply(cfg),
		fx.Provide(
			newLogger,
			func(cfg *config.Config) *http.Server {
				return &http.Server{Addr: cfg.Listen}
			},
			remote.NewService,
		),
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		fx.Invoke(
			remote.Serve,
		),
	).Run()
}
