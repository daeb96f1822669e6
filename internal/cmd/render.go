package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/MeKo-Tech/noisefield/internal/archive"
	"github.com/MeKo-Tech/noisefield/internal/raster"
	"github.com/MeKo-Tech/noisefield/internal/render"
	"github.com/MeKo-Tech/noisefield/internal/worker"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a noise raster to a file",
	Long: `Render a greyscale simplex noise raster and save it. The output format follows
the file extension (.png, .bmp, .tif/.tiff).`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	addNoiseFlags(renderCmd, "render")

	renderCmd.Flags().StringP("output", "o", "noise.png", "Output file (.png, .bmp, .tif, .tiff)")
	renderCmd.Flags().IntP("workers", "w", 0, "Number of parallel workers (default: number of CPUs)")
	renderCmd.Flags().Int("rows-per-band", render.DefaultRowsPerBand, "Rows handed to a worker at a time")
	renderCmd.Flags().String("thumbnail", "", "Also write a downscaled copy to this path")
	renderCmd.Flags().Int("thumbnail-size", 128, "Longer side of the thumbnail in pixels")
	renderCmd.Flags().String("archive", "", "sqlite archive to reuse and store renders in")
	renderCmd.Flags().Bool("progress", true, "Show progress while rendering")
	renderCmd.Flags().Bool("force", false, "Overwrite existing output and ignore archived renders")
	renderCmd.Flags().Int("trace-every", 0, "Log every Nth pixel in both directions at debug level (0 disables)")

	bindFlags(renderCmd, []flagBinding{
		{"render.output", "output"},
		{"render.workers", "workers"},
		{"render.rows_per_band", "rows-per-band"},
		{"render.thumbnail", "thumbnail"},
		{"render.thumbnail_size", "thumbnail-size"},
		{"render.archive", "archive"},
		{"render.progress", "progress"},
		{"render.force", "force"},
		{"render.trace_every", "trace-every"},
	})
}

func runRender(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	c, err := noiseConfig("render")
	if err != nil {
		return err
	}

	output := viper.GetString("render.output")
	workers := viper.GetInt("render.workers")
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	rowsPerBand := viper.GetInt("render.rows_per_band")
	if rowsPerBand <= 0 {
		rowsPerBand = render.DefaultRowsPerBand
	}
	thumbPath := viper.GetString("render.thumbnail")
	thumbSize := viper.GetInt("render.thumbnail_size")
	archivePath := viper.GetString("render.archive")
	showProgress := viper.GetBool("render.progress")
	force := viper.GetBool("render.force")
	traceEvery := viper.GetInt("render.trace_every")

	// Fail on the extension before spending time on the pass.
	if _, err := raster.FormatFromPath(output); err != nil {
		return err
	}
	if thumbPath != "" {
		if _, err := raster.FormatFromPath(thumbPath); err != nil {
			return err
		}
	}
	if !force && fileExists(output) {
		return fmt.Errorf("output %s already exists (use --force to overwrite)", output)
	}

	logger.Info("Starting render",
		"key", c.Key(),
		"output", output,
		"workers", workers,
		"archive", archivePath,
	)

	var store *archive.Store
	if archivePath != "" {
		store, err = archive.Open(archivePath, archive.Metadata{Name: "noisefield", Format: string(raster.FormatPNG), Version: "1"})
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer store.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("Received interrupt signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
	}()

	img, err := loadArchived(store, c, force)
	if err != nil {
		return err
	}

	if img == nil {
		progress := worker.NewProgress(c.Width, c.Height, showProgress)

		opts := render.Options{
			Workers:     workers,
			RowsPerBand: rowsPerBand,
			Logger:      logger,
			OnProgress:  progress.Callback(),
		}
		if traceEvery > 0 {
			opts.Tracer = render.SlogTracer{Logger: logger, Every: traceEvery}
		}

		start := time.Now()
		gray, err := render.Image(ctx, c, opts)
		progress.Done()
		if err != nil {
			return fmt.Errorf("failed to render %s: %w", c.Key(), err)
		}
		logger.Info(progress.Summary(), "ms", time.Since(start).Milliseconds())
		img = gray

		if store != nil {
			data, err := raster.EncodeBytes(gray, raster.FormatPNG)
			if err != nil {
				return fmt.Errorf("failed to encode render for archive: %w", err)
			}
			if err := store.Put(archive.Entry{Config: c, Data: data}); err != nil {
				return fmt.Errorf("failed to archive render: %w", err)
			}
			logger.Debug("Archived render", "key", c.Key(), "bytes", len(data))
		}
	}

	if err := raster.WriteFile(output, img); err != nil {
		return err
	}
	logger.Info("Raster written", "path", output)

	if thumbPath != "" {
		thumb, err := raster.Thumbnail(img, thumbSize)
		if err != nil {
			return fmt.Errorf("failed to build thumbnail: %w", err)
		}
		if err := raster.WriteFile(thumbPath, thumb); err != nil {
			return err
		}
		logger.Info("Thumbnail written", "path", thumbPath, "size", thumbSize)
	}

	return nil
}

// loadArchived returns the archived raster for c, or nil when there is none
// (or force is set).
func loadArchived(store *archive.Store, c render.Config, force bool) (image.Image, error) {
	if store == nil || force {
		return nil, nil
	}

	data, err := store.Get(c.Key())
	if errors.Is(err, archive.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode archived render %s: %w", c.Key(), err)
	}
	logger.Info("Using archived render", "key", c.Key())
	return img, nil
}

func fileExists(p string) bool {
	st, err := os.Stat(p)
	if err != nil {
		return false
	}
	return !st.IsDir()
}
