package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/energy-atlas/pkg/models/domain"
	"github.com/de-tools/energy-atlas/pkg/runtime/chart"
	"github.com/de-tools/energy-atlas/pkg/services/pipeline"
)

type SeasonalCmd struct {
	weekly WeeklyCmd
	series string
}

func NewSeasonalCmd(env *Env) *cobra.Command {
	sc := &SeasonalCmd{weekly: WeeklyCmd{env: env}}
	cmd := &cobra.Command{
		Use:   "seasonal",
		Short: "Average deviation from the yearly mean by week of year",
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.series, "series", string(pipeline.SeriesStorage),
		"Series: storage, power, consumption, heating or cooling")
	cmd.Flags().StringVar(&sc.weekly.region, "region", "", "Storage region (default from config)")
	cmd.Flags().StringVar(&sc.weekly.fuel, "fuel", "", "Fuel type code for power (default from config)")
	cmd.Flags().StringVar(&sc.weekly.category, "category", "", "Consumption category (default from config)")
	cmd.Flags().IntVar(&sc.weekly.startYear, "start-year", 0, "Ignore weeks before this year (default from config)")
	sc.weekly.output.register(cmd, false)

	return cmd
}

func (sc *SeasonalCmd) run(cmd *cobra.Command, _ []string) error {
	if err := sc.weekly.env.ready(); err != nil {
		return err
	}
	series, err := pipeline.ParseSeries(sc.series)
	if err != nil {
		return err
	}
	req, err := sc.weekly.request()
	if err != nil {
		return err
	}

	result, err := sc.weekly.env.Pipeline.Seasonal(cmd.Context(), series, req)
	if err != nil {
		return err
	}
	zerolog.Ctx(cmd.Context()).Debug().Str("run_id", result.RunID).Msg("rendering seasonal curve")

	return sc.weekly.output.render(cmd, result.Table, chart.Options{
		Title:   fmt.Sprintf("%s %s seasonal deviation (%%)", req.Region, series),
		XColumn: domain.ColumnWeek,
		Columns: []string{domain.ColumnDeviation},
	})
}
