package cmd

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/MeKo-Tech/noisefield/internal/archive"
	"github.com/MeKo-Tech/noisefield/internal/raster"
	"github.com/MeKo-Tech/noisefield/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Render noise rasters on demand over HTTP",
	Long: `Serve GET /noise.png and /thumb.png. Query parameters (width, height, grid,
grid_width, grid_height, seed, gradients, sampler, size) override the flag defaults.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	addNoiseFlags(serveCmd, "serve")

	serveCmd.Flags().String("addr", "127.0.0.1:8080", "Listen address (host:port)")
	serveCmd.Flags().String("archive", "", "sqlite archive used as a render cache (empty disables caching)")
	serveCmd.Flags().Int("workers", runtime.NumCPU(), "Workers per render")
	serveCmd.Flags().Int("max-concurrent-renders", runtime.NumCPU(), "Max concurrent renders (default: number of CPUs)")
	serveCmd.Flags().Duration("render-timeout", 30*time.Second, "Timeout per render")
	serveCmd.Flags().Int("max-pixels", 4096*4096, "Largest width*height a request may ask for")
	serveCmd.Flags().Int("thumbnail-size", 128, "Default thumbnail size for /thumb.png")
	serveCmd.Flags().String("cache-control", "no-store", "Cache-Control header for served rasters")

	bindFlags(serveCmd, []flagBinding{
		{"serve.addr", "addr"},
		{"serve.archive", "archive"},
		{"serve.workers", "workers"},
		{"serve.max_concurrent_renders", "max-concurrent-renders"},
		{"serve.render_timeout", "render-timeout"},
		{"serve.max_pixels", "max-pixels"},
		{"serve.thumbnail_size", "thumbnail-size"},
		{"serve.cache_control", "cache-control"},
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	defaults, err := noiseConfig("serve")
	if err != nil {
		return err
	}

	addr := viper.GetString("serve.addr")
	archivePath := viper.GetString("serve.archive")
	maxConc := viper.GetInt("serve.max_concurrent_renders")
	cacheControl := viper.GetString("serve.cache_control")

	var (
		store          *archive.Store
		archiveHandler *server.ArchiveHandler
	)
	if archivePath != "" {
		store, err = archive.Open(archivePath, archive.Metadata{Name: "noisefield", Format: string(raster.FormatPNG), Version: "1"})
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer store.Close()
		archiveHandler = server.NewArchiveHandler(store, cacheControl, logger)
	}

	od := server.NewOnDemand(server.OnDemandConfig{
		Defaults:             defaults,
		Archive:              store,
		CacheControl:         cacheControl,
		Workers:              viper.GetInt("serve.workers"),
		MaxConcurrentRenders: maxConc,
		RenderTimeout:        viper.GetDuration("serve.render_timeout"),
		MaxPixels:            viper.GetInt("serve.max_pixels"),
		ThumbnailSize:        viper.GetInt("serve.thumbnail_size"),
	}, logger)

	logger.Info("noise server listening",
		"addr", addr,
		"archive", archivePath,
		"defaults", defaults.Key(),
		"max_concurrent_renders", maxConc,
	)

	srv := &http.Server{Addr: addr, Handler: server.NewMux(od, archiveHandler), ReadHeaderTimeout: 5 * time.Second}
	return srv.ListenAndServe()
}
