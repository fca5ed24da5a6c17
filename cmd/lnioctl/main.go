package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danmuck/lnioctl/internal/api"
	"github.com/danmuck/lnioctl/internal/gpio"
	"github.com/danmuck/lnioctl/internal/logging"
	"github.com/danmuck/lnioctl/internal/module"
	"github.com/danmuck/lnioctl/internal/observability"
	"github.com/danmuck/lnioctl/internal/sv"
	"github.com/danmuck/lnioctl/internal/transport"
)

func main() {
	configPath := flag.String("config", "lnioctl.toml", "path to the module config file")
	flag.Parse()

	logging.ConfigureRuntime()
	logger := observability.InitLogger("lnioctl")

	cfg := defaultConfig()
	if _, err := os.Stat(*configPath); err == nil {
		loaded, err := loadConfig(*configPath)
		if err != nil {
			fatal(err)
		}
		cfg = loaded
	} else {
		logger.Warn().Str("path", *configPath).Msg("no config file, running with defaults")
	}

	store, err := sv.OpenFileStore(cfg.StorePath)
	if err != nil {
		fatal(err)
	}
	table := sv.NewTable(store)

	var driver gpio.Driver
	switch cfg.GPIODriver {
	case "rpio":
		driver, err = gpio.NewRPIODriver()
		if err != nil {
			fatal(err)
		}
	default:
		driver = gpio.NewSimDriver()
	}
	defer driver.Close()

	var bus transport.Transport
	switch cfg.Transport {
	case "tcp":
		bus, err = transport.DialTCP(cfg.BridgeAddr, logger)
		if err != nil {
			fatal(err)
		}
	default:
		near, far := transport.NewLoopbackPair()
		go drain(far)
		bus = near
	}
	defer bus.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mod := module.New(table, driver, bus, logger)
	mod.SetIdleInterval(cfg.IdleInterval)
	if err := mod.Boot(); err != nil {
		fatal(err)
	}

	srv := api.New(cfg.ID, cfg.StatusAddr, mod, cfg.CorsOrigins)
	go func() {
		if err := srv.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("status server failed")
		}
	}()
	logger.Info().Str("addr", cfg.StatusAddr).Msg("status server listening")

	if err := mod.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fatal(err)
	}
}

// drain keeps a simulated bus from backing up when nothing is attached to
// the far end.
func drain(far *transport.Loopback) {
	for {
		if _, ok := far.PollReceive(); !ok {
			time.Sleep(50 * time.Millisecond)
		}
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "lnioctl: %v\n", err)
	os.Exit(1)
}
