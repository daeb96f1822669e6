package cmd

import (
	"fmt"

	"github.com/MeKo-Tech/noisefield/internal/noise"
	"github.com/MeKo-Tech/noisefield/internal/render"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Sample the noise kernel and report its observed range",
	Long: `Evaluate the configured kernel on a regular grid spanning the whole lattice and
print the observed minimum, maximum and mean. Values outside [-1, 1] are clamped
when converted to intensities; the clipped count shows how often that happens.`,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	addNoiseFlags(inspectCmd, "inspect")
	inspectCmd.Flags().Int("samples", 10000, "Minimum number of points to sample")

	bindFlags(inspectCmd, []flagBinding{
		{"inspect.samples", "samples"},
	})
}

func runInspect(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	c, err := noiseConfig("inspect")
	if err != nil {
		return err
	}

	st, err := render.Survey(c, viper.GetInt("inspect.samples"))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "config   %s\n", c.Key())
	fmt.Fprintf(out, "samples  %d\n", st.Samples)
	fmt.Fprintf(out, "min      %+.6f (intensity %d)\n", st.Min, noise.ToIntensity(st.Min))
	fmt.Fprintf(out, "max      %+.6f (intensity %d)\n", st.Max, noise.ToIntensity(st.Max))
	fmt.Fprintf(out, "mean     %+.6f\n", st.Mean)
	fmt.Fprintf(out, "clipped  %d\n", st.Clipped)
	return nil
}
