package main

import (
	"context"
	"errors"
	"flag"
	"image"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-seesaw/binarysensor"
	"github.com/coreman2200/funtimes-seesaw/diagnostics"
	"github.com/coreman2200/funtimes-seesaw/internal/bus"
	"github.com/coreman2200/funtimes-seesaw/internal/config"
	"github.com/coreman2200/funtimes-seesaw/internal/led"
	"github.com/coreman2200/funtimes-seesaw/internal/loop"
	"github.com/coreman2200/funtimes-seesaw/internal/pattern"
	"github.com/coreman2200/funtimes-seesaw/internal/ws"
	"github.com/coreman2200/funtimes-seesaw/neopixel"
	"github.com/coreman2200/funtimes-seesaw/seesaw"
)

func main() {
	// ---- Flags (override the config file when set) ----
	var (
		configPath = flag.String("config", "seesaw.yaml", "path to seesaw.yaml")
		busName    = flag.String("bus", "", "i2c bus name, empty for the first one")
		addr       = flag.Uint("addr", 0, "i2c address of the seesaw chip (0 keeps the config value)")
		httpAddr   = flag.String("http", "", "HTTP listen address, empty keeps the config value")
		mirror     = flag.String("mirror", "", "frame mirror: console | spi")
		pat        = flag.String("pattern", "", "light pattern: off | index_sweep | rgb_channels | rainbow | keys")
		level      = flag.String("log-level", "", "debug | info | warn | error")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	// ---- Config ----
	cfg, err := config.Load(*configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Warn().Str("path", *configPath).Msg("no config file; using NeoKey 1x4 defaults")
		cfg = config.Default()
	case err != nil:
		log.Fatal().Err(err).Msg("config")
	}
	if *busName != "" {
		cfg.Bus = *busName
	}
	if *addr != 0 {
		a, err := parseAddr(*addr)
		if err != nil {
			log.Fatal().Err(err).Msg("flags")
		}
		cfg.Address = a
	}
	if *httpAddr != "" {
		cfg.HTTPAddr = *httpAddr
	}
	if *mirror != "" {
		cfg.Mirror.Driver = *mirror
	}
	if *pat != "" && cfg.Light != nil {
		cfg.Light.Pattern = *pat
	}
	if *level != "" {
		cfg.LogLevel = *level
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	lvl, _ := config.ParseLevel(cfg.LogLevel)
	zerolog.SetGlobalLevel(lvl)

	// ---- Bus & session ----
	if _, err := host.Init(); err != nil {
		log.Fatal().Err(err).Msg("host init")
	}
	b, err := bus.Open(cfg.Bus, cfg.Address, physic.Frequency(cfg.BusSpeedKHz)*physic.KiloHertz)
	if err != nil {
		log.Fatal().Err(err).Msg("i2c")
	}
	defer b.Close()

	dev := seesaw.New(b, &seesaw.Opts{
		Addr:          cfg.Address,
		SoftwareReset: cfg.SoftwareReset,
		Logger:        &log.Logger,
	})

	d := &daemon{cfg: cfg, dev: dev, runner: pattern.NewRunner(pattern.Off)}
	d.srv = ws.New(ws.Opts{Describe: d.describe, Control: d.control, Logger: &log.Logger})

	// Sensors are listeners whatever the outcome of Begin; a failed session
	// never calls them.
	for i, sc := range cfg.SensorConfigs() {
		idx := i
		s, err := binarysensor.New(sc, func(name string, state bool) {
			log.Info().Str("sensor", name).Bool("state", state).Msg("binary sensor")
			d.runner.SetKey(idx, state)
			d.srv.PublishButton(name, state)
		})
		if err != nil {
			log.Fatal().Err(err).Msg("binary sensor")
		}
		d.sensors = append(d.sensors, s)
		dev.AddListener(s)
	}
	if opts, ok := cfg.StripOpts(); ok {
		opts.Logger = &log.Logger
		d.strip = neopixel.New(&opts)
		d.frame = image.NewNRGBA(d.strip.Bounds())
		d.runner = pattern.NewRunner(mustKind(cfg.Light.Pattern))
	}

	if err := dev.Begin(); err != nil {
		log.Error().Err(err).Msg("seesaw startup failed; serving status only")
		d.srv.PushDiag(diagnostics.FromError("SEESAW.FAILED", "seesaw startup failed", err))
	} else {
		log.Info().Stringer("hwid", dev.HardwareID()).Msg("seesaw ready")
		if err := binarysensor.ConfigureAll(dev, d.sensors...); err != nil {
			log.Error().Err(err).Msg("binary sensor setup")
			d.srv.PushDiag(diagnostics.FromError("SENSOR.SETUP", "binary sensor setup failed", err))
		}
		if d.strip != nil {
			if err := setupLight(d.strip, dev); err != nil {
				log.Error().Err(err).Msg("light setup")
				d.srv.PushDiag(diagnostics.FromError("LIGHT.SETUP", "light setup failed", err))
				if dev.State() == seesaw.Failed {
					d.srv.PushDiag(diagnostics.FromError("SEESAW.FAILED", "seesaw failed during light setup", err))
				}
			}
		}
	}

	// ---- Mirror ----
	if d.strip != nil {
		m, err := led.Open(led.Opts{
			Driver:    cfg.Mirror.Driver,
			SPIPort:   cfg.Mirror.SPIPort,
			Freq:      physic.Frequency(cfg.Mirror.SpeedKHz) * physic.KiloHertz,
			NumPixels: d.strip.Size(),
			Channels:  d.strip.Channels(),
			Logger:    &log.Logger,
		})
		if err != nil {
			log.Warn().Err(err).Msg("mirror disabled")
		}
		d.mirror = m
	}

	// ---- Loop & HTTP ----
	lopts := loop.Opts{
		Poll:          dev.Poll,
		PollInterval:  cfg.PollInterval,
		FrameInterval: cfg.FrameInterval,
		Signals:       []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Logger:        &log.Logger,
	}
	if d.strip != nil {
		lopts.Frame = d.renderFrame
	}
	d.loop = loop.New(lopts)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      d.srv.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	if cfg.HTTPAddr != "" {
		go func() {
			log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server starting")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal().Err(err).Msg("http server crashed")
			}
		}()
	}

	if err := d.loop.Run(context.Background()); err != nil {
		log.Error().Err(err).Msg("loop")
	}

	// ---- Shutdown ----
	_ = srv.Close()
	if d.strip != nil {
		if err := d.strip.Halt(); err != nil {
			log.Warn().Err(err).Msg("blank strip")
		}
	}
	if d.mirror != nil {
		_ = d.mirror.Close()
	}
}

type daemon struct {
	cfg     *config.Config
	dev     *seesaw.Device
	sensors []*binarysensor.Sensor
	strip   *neopixel.Strip
	mirror  *led.Mirror
	frame   *image.NRGBA
	runner  *pattern.Runner
	loop    *loop.Looper
	srv     *ws.Server
}

// renderFrame runs on the loop goroutine.
func (d *daemon) renderFrame(time.Duration) error {
	if !d.runner.Step(d.frame) {
		d.srv.PushDiag(diagnostics.Diagnostic{Severity: diagnostics.Info, Code: "PATTERN.DONE", Summary: "Pattern complete", Detail: string(d.runner.Kind())})
		d.runner = pattern.NewRunner(pattern.Off)
		d.runner.Step(d.frame)
	}
	if d.mirror != nil {
		_ = d.mirror.Render(d.frame)
	}
	return d.strip.Draw(d.strip.Bounds(), d.frame, image.Point{})
}

func (d *daemon) control(c ws.Command) error {
	if d.strip == nil {
		return errors.New("no light configured")
	}
	var kind pattern.Kind
	if c.Pattern != "" {
		k, err := pattern.ParseKind(c.Pattern)
		if err != nil {
			return err
		}
		kind = k
	}
	if c.Blank {
		kind = pattern.Off
	}
	return d.loop.Do(context.Background(), func() {
		if kind != "" {
			d.runner = pattern.NewRunner(kind)
			d.srv.PushDiag(diagnostics.Diagnostic{Severity: diagnostics.Info, Code: "PATTERN.RUNNING", Summary: "Running pattern", Detail: string(kind)})
		}
		if c.Brightness != nil {
			d.strip.SetBrightness(config.BrightnessByte(*c.Brightness))
		}
	})
}

func (d *daemon) describe() []diagnostics.Report {
	out := []diagnostics.Report{d.dev.Describe()}
	for _, s := range d.sensors {
		out = append(out, s.Describe())
	}
	if d.strip != nil {
		out = append(out, d.strip.Describe())
	}
	return out
}

func mustKind(s string) pattern.Kind {
	k, err := pattern.ParseKind(s)
	if err != nil {
		log.Fatal().Err(err).Msg("pattern")
	}
	return k
}
