package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/noisefield/internal/render"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type flagBinding struct {
	key  string
	flag string
}

func bindFlags(cmd *cobra.Command, bindings []flagBinding) {
	for _, bf := range bindings {
		if err := viper.BindPFlag(bf.key, cmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

// addNoiseFlags registers the flags that make up a render.Config under prefix.
func addNoiseFlags(cmd *cobra.Command, prefix string) {
	d := render.DefaultConfig()

	cmd.Flags().Int("width", d.Width, "Image width in pixels")
	cmd.Flags().Int("height", d.Height, "Image height in pixels")
	cmd.Flags().Int("grid", 0, "Lattice size in both directions (overrides --grid-width/--grid-height when > 0)")
	cmd.Flags().Int("grid-width", d.GridWidth, "Lattice cells across the image")
	cmd.Flags().Int("grid-height", d.GridHeight, "Lattice cells down the image")
	cmd.Flags().Int64("seed", d.Seed, "Seed for the gradient lattice")
	cmd.Flags().String("gradients", string(d.Gradients), "Gradient table: lattice (seeded) or fixed (8 directions)")
	cmd.Flags().String("sampler", string(d.Sampler), "Noise kernel: simplex, perlin or opensimplex")

	bindFlags(cmd, []flagBinding{
		{prefix + ".width", "width"},
		{prefix + ".height", "height"},
		{prefix + ".grid", "grid"},
		{prefix + ".grid_width", "grid-width"},
		{prefix + ".grid_height", "grid-height"},
		{prefix + ".seed", "seed"},
		{prefix + ".gradients", "gradients"},
		{prefix + ".sampler", "sampler"},
	})
}

// noiseConfig reads the render.Config bound under prefix and validates it.
func noiseConfig(prefix string) (render.Config, error) {
	gradients, err := render.ParseGradientKind(viper.GetString(prefix + ".gradients"))
	if err != nil {
		return render.Config{}, fmt.Errorf("%w: %v", render.ErrInvalidConfig, err)
	}
	sampler, err := render.ParseSamplerKind(viper.GetString(prefix + ".sampler"))
	if err != nil {
		return render.Config{}, fmt.Errorf("%w: %v", render.ErrInvalidConfig, err)
	}

	c := render.Config{
		Width:      viper.GetInt(prefix + ".width"),
		Height:     viper.GetInt(prefix + ".height"),
		GridWidth:  viper.GetInt(prefix + ".grid_width"),
		GridHeight: viper.GetInt(prefix + ".grid_height"),
		Seed:       viper.GetInt64(prefix + ".seed"),
		Gradients:  gradients,
		Sampler:    sampler,
	}
	if grid := viper.GetInt(prefix + ".grid"); grid > 0 {
		c.GridWidth, c.GridHeight = grid, grid
	}

	if err := c.Validate(); err != nil {
		return render.Config{}, err
	}
	return c, nil
}
