package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/caarlos0/env"
	"github.com/gloworm-vision/colorlight/color"
	"github.com/gloworm-vision/colorlight/device"
	"github.com/gloworm-vision/colorlight/hardware"
	"github.com/gloworm-vision/colorlight/server"
	"github.com/gloworm-vision/colorlight/store"
	"github.com/sirupsen/logrus"
)

type config struct {
	HTTPAddr   string `env:"HTTP_ADDRESS" envDefault:":8000"`
	OSCAddress string `env:"OSC_ADDRESS" envDefault:"127.0.0.1"`
	OSCPort    int    `env:"OSC_PORT" envDefault:"1337"`
	StorePath  string `env:"STORE_PATH" envDefault:"colorlight.db"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	// GPIODriver overrides the stored hardware driver when set.
	GPIODriver string `env:"GPIO_DRIVER"`
}

const (
	defaultHTTPAddr   = ":8000"
	defaultOSCAddress = "127.0.0.1"
	defaultStorePath  = "colorlight.db"
	defaultLogLevel   = "info"
)

// loadConfig parses the environment. Variables that are exported but empty
// fall back to their defaults.
func loadConfig() (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("unable to parse environment: %w", err)
	}

	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = defaultHTTPAddr
	}
	if cfg.OSCAddress == "" {
		cfg.OSCAddress = defaultOSCAddress
	}
	if cfg.StorePath == "" {
		cfg.StorePath = defaultStorePath
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}

	return cfg, nil
}

func (c config) oscAddr() (string, error) {
	if c.OSCPort <= 0 || c.OSCPort > 65535 {
		return "", fmt.Errorf("invalid OSC_PORT %d", c.OSCPort)
	}

	host := c.OSCAddress
	if host == "" {
		host = defaultOSCAddress
	}

	return net.JoinHostPort(host, strconv.Itoa(c.OSCPort)), nil
}

var initialColor = color.Color{Red: 242, Green: 155, Blue: 212}

func main() {
	logger := logrus.New()

	if err := run(logger); err != nil {
		logger.WithError(err).Fatal("colord stopped")
	}
}

func run(logger *logrus.Logger) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	logger.SetLevel(level)

	oscAddr, err := cfg.oscAddr()
	if err != nil {
		return err
	}

	db, err := store.OpenBBolt(cfg.StorePath, 0666, nil)
	if err != nil {
		return fmt.Errorf("unable to open store: %w", err)
	}
	defer db.Close()

	hardwareConfig, err := store.LoadHardwareConfig(db)
	if err != nil {
		return fmt.Errorf("unable to load hardware config: %w", err)
	}

	if cfg.GPIODriver != "" {
		hardwareConfig.Driver = hardware.Driver(cfg.GPIODriver)
	}

	logger.WithField("config", hardwareConfig).Info("acquiring hardware")

	rgb, err := hardware.New(hardwareConfig, logger)
	if err != nil {
		return fmt.Errorf("unable to set up hardware: %w", err)
	}
	defer rgb.Close()

	state, err := device.New(rgb, initialColor)
	if err != nil {
		return fmt.Errorf("unable to apply initial color: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.Server{
		HTTPAddr: cfg.HTTPAddr,
		OSCAddr:  oscAddr,
		State:    state,
		Store:    db,
		Logger:   logger,
	}

	return srv.Run(ctx)
}
