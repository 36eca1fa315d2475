package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"media-explorer/internal/accel"
	"media-explorer/internal/handlers"
	"media-explorer/internal/logging"
	"media-explorer/internal/middleware"
	"media-explorer/internal/scanner"
	"media-explorer/internal/startup"
	"media-explorer/internal/thumbcache"
	"media-explorer/internal/thumbnail"

	"github.com/gorilla/mux"
)

func main() {
	startTime := time.Now()

	config, err := startup.LoadConfig()
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}

	// Artifact cache: index loads from its snapshot, periodic cleanup runs
	// until shutdown.
	cache, err := thumbcache.New(thumbcache.Config{
		Dir:             config.CacheDir,
		MaxSizeBytes:    config.CacheMaxSizeBytes(),
		MaxFiles:        config.CacheMaxFiles,
		CleanupInterval: config.CacheCleanupInterval,
		MaxAge:          config.CacheMaxAge,
	})
	if err != nil {
		logging.Fatal("Failed to initialize thumbnail cache: %v", err)
	}
	cache.Start()

	// Video pipeline: locate ffmpeg and wire the accelerator service. A
	// missing binary disables video thumbnails but nothing else.
	runner := accel.ExecRunner{}
	var accelSvc *accel.Service
	ffmpegPath, err := accel.LocateFFmpeg(config.FFmpegPath, config.RuntimeDir)
	startup.LogFFmpegStatus(ffmpegPath, err)
	if err == nil {
		capCache := accel.NewCapabilityCache(config.CacheDir, config.ProbeCacheTTL)
		accelSvc = accel.NewService(ffmpegPath, runner, capCache)
	}

	// Image pipeline: libvips for HEIC and large-image decoding.
	thumbnail.InitVips()
	defer thumbnail.ShutdownVips()

	thumbs := thumbnail.NewGenerator(cache, accelSvc, runner)
	scan := scanner.New(thumbs)

	h := handlers.New(scan, thumbs, cache, accelSvc, config)
	router := mux.NewRouter()
	h.RegisterRoutes(router)

	startup.LogHTTPRoutes(router, config.LogStaticFiles, config.LogHealthChecks)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogStaticFiles = config.LogStaticFiles
	loggingConfig.LogHealthChecks = config.LogHealthChecks

	var handler http.Handler = router
	if config.MetricsEnabled {
		handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)
	}
	handler = middleware.Logger(loggingConfig)(handler)

	server := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal("HTTP server error: %v", err)
		}
	}()

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime).Round(time.Millisecond),
	})

	// Block until SIGINT/SIGTERM, then drain.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping HTTP server")
	if err := server.Shutdown(ctx); err != nil {
		logging.Warn("HTTP server shutdown: %v", err)
	}
	startup.LogShutdownStepComplete("HTTP server stopped")

	startup.LogShutdownStep("Stopping cache cleanup loop")
	cache.Stop()
	startup.LogShutdownStepComplete("Cache cleanup loop stopped")

	startup.LogShutdownComplete()
}
