package daemon

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"periph.io/x/host/v3"

	"github.com/fm-tuner/tunerd/pkg/config"
	"github.com/fm-tuner/tunerd/pkg/events"
	"github.com/fm-tuner/tunerd/pkg/store"
	"github.com/fm-tuner/tunerd/pkg/tea5767"
)

var (
	conf       config.Config
	dispatcher *Dispatcher
	hub        *events.Hub
	scheduler  *Scheduler
)

// Options are the daemon's process-level knobs, all set from CLI flags.
type Options struct {
	ConfigPath     string
	StorePath      string
	UnixSocketPath string
	AllowNonRoot   bool
	// MockTuner runs against a simulated chip instead of the I2C bus, for
	// development on machines without the hardware.
	MockTuner bool
}

func setupRoutes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logrus.StandardLogger()))
	router.GET("/status", getStatus)
	router.GET("/config", getConfig)
	router.GET("/stations", getStations)
	router.GET("/version", getVersion)
	router.GET("/events", getEvents)
	router.POST("/seek", postSeek)
	router.POST("/tune", postTune)
	router.POST("/step", postStep)
	router.POST("/save", postSave)
	router.PUT("/mute", putMute)
	router.PUT("/default-frequency", putDefaultFrequency)
	router.PUT("/seek-wrap", putSeekWrap)
	router.GET("/schedule", getSchedule)
	router.PUT("/schedule", putSchedule)
	router.DELETE("/schedule", deleteSchedule)
	router.POST("/schedule/skip", postScheduleSkip)
	router.POST("/schedule/postpone", postSchedulePostpone)

	return router
}

func openBus(cfg config.Config, mock bool) (tea5767.Bus, error) {
	if mock {
		logrus.Warn("Running against a simulated tuner, no hardware will be touched")
		return tea5767.NewMockBus(0, 90.4, 96.4, 100.3, 105.5), nil
	}

	if _, err := host.Init(); err != nil {
		return nil, err
	}
	return tea5767.OpenBus(cfg.I2CBus(), uint16(cfg.DeviceAddr()))
}

// Run starts the control core and blocks until SIGINT/SIGTERM.
func Run(opts Options) error {
	router := setupRoutes()

	cf, err := config.NewFile(opts.ConfigPath)
	if err != nil {
		logrus.Fatalf("failed to parse config during startup: %v", err)
	}
	if err := cf.Validate(); err != nil {
		logrus.Fatalf("invalid config: %v", err)
	}
	conf = cf
	logrus.WithFields(conf.LogrusFields()).Infof("config loaded")

	// Receive SIGHUP to reload config
	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGHUP)
		for range sigc {
			prev, err := config.NewRawFileConfigFromConfig(conf)
			if err != nil {
				logrus.Errorf("failed to snapshot config before reload: %v", err)
				continue
			}
			if err := cf.Load(); err != nil {
				logrus.Errorf("failed to reload config: %v", err)
				continue
			}
			if err := cf.Validate(); err != nil {
				// Load already swapped the values in, put the good ones back.
				cf.Replace(prev)
				logrus.Errorf("reloaded config is invalid, keeping previous values: %v", err)
				continue
			}
			logrus.Infof("config reloaded")
		}
	}()

	st, err := store.NewFile(opts.StorePath)
	if err != nil {
		logrus.Fatalf("failed to open preset store: %v", err)
	}
	presets := store.NewPresets(st)

	bus, err := openBus(conf, opts.MockTuner)
	if err != nil {
		logrus.Fatalf("failed to open tuner bus: %v", err)
	}

	band, err := tea5767.ParseBand(conf.Band())
	if err != nil {
		logrus.Fatal(err)
	}
	tuner := tea5767.New(bus, tea5767.Config{
		Band:         band,
		StopLevel:    tea5767.StopLevel(conf.SeekStopLevel()),
		PollInterval: time.Duration(conf.SeekPollIntervalMS()) * time.Millisecond,
		MaxPolls:     conf.SeekMaxPolls(),
		WrapOnEdge:   conf.WrapOnBandEdge(),
	})

	hub = events.NewHub()
	dispatcher = NewDispatcher(tuner, presets, hub, conf.EventPolicy())

	// Restore the last station before anything else may touch the tuner.
	if err := dispatcher.Restore(conf.DefaultFrequencyMHz()); err != nil {
		logrus.Errorf("failed to tune during startup: %v", err)
	}
	go dispatcher.Run()

	scheduler = NewScheduler(dispatcher)
	scheduler.Start()

	srv := &http.Server{
		Handler: router,
	}

	// Create the socket to listen on:
	l, err := net.Listen("unix", opts.UnixSocketPath)
	if err != nil {
		logrus.Fatal(err)
	}

	if conf.AllowNonRootAccess() || opts.AllowNonRoot {
		logrus.Infof("non-root access is allowed, changing permissions of %s to 0777", opts.UnixSocketPath)
		if err := os.Chmod(opts.UnixSocketPath, 0777); err != nil {
			logrus.Fatal(err)
		}
	}

	// Serve HTTP on unix socket
	go func() {
		logrus.Infof("http server listening on %s", l.Addr().String())
		if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatal(err)
		}
	}()

	// Handle common process-killing signals, so we can gracefully shut down:
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigc
	logrus.Infof("caught signal \"%s\": shutting down.", sig)

	logrus.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("failed to shutdown http server: %v", err)
	}
	cancel()

	scheduler.Stop()
	dispatcher.Stop()

	// The radio keeps playing the last station; only the bus handle goes.
	logrus.Info("closing tuner bus")
	if err := bus.Close(); err != nil {
		logrus.Errorf("failed to close tuner bus: %v", err)
	}

	logrus.Info("exiting")
	return nil
}
