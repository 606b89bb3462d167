package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/energy-atlas/pkg/runtime/chart"
	"github.com/de-tools/energy-atlas/pkg/services/pipeline"
)

type WeeklyCmd struct {
	region    string
	fuel      string
	category  string
	startYear int
	output    output
	env       *Env
}

func NewWeeklyCmd(env *Env) *cobra.Command {
	wc := &WeeklyCmd{env: env}
	cmd := &cobra.Command{
		Use:   "weekly",
		Short: "Every series of a region merged on the weekly calendar",
		RunE:  wc.run,
	}

	cmd.Flags().StringVar(&wc.region, "region", "", "Storage region (default from config)")
	cmd.Flags().StringVar(&wc.fuel, "fuel", "", "Fuel type code for power generation (default from config)")
	cmd.Flags().StringVar(&wc.category, "category", "", "Consumption category (default from config)")
	cmd.Flags().IntVar(&wc.startYear, "start-year", 0, "Drop weeks before this year (default from config)")
	wc.output.register(cmd, false)

	return cmd
}

func (wc *WeeklyCmd) request() (pipeline.Request, error) {
	region, err := wc.env.region(wc.region)
	if err != nil {
		return pipeline.Request{}, err
	}
	fuel, err := wc.env.fuel(wc.fuel)
	if err != nil {
		return pipeline.Request{}, err
	}
	category, err := wc.env.category(wc.category)
	if err != nil {
		return pipeline.Request{}, err
	}
	return pipeline.Request{
		Region:    region,
		Fuel:      fuel,
		Category:  category,
		StartYear: wc.env.startYear(wc.startYear),
	}, nil
}

func (wc *WeeklyCmd) run(cmd *cobra.Command, _ []string) error {
	if err := wc.env.ready(); err != nil {
		return err
	}
	req, err := wc.request()
	if err != nil {
		return err
	}

	result, err := wc.env.Pipeline.Weekly(cmd.Context(), req)
	if err != nil {
		return err
	}
	zerolog.Ctx(cmd.Context()).Debug().Str("run_id", result.RunID).Msg("rendering weekly table")

	return wc.output.render(cmd, result.Table, chart.Options{
		Title: fmt.Sprintf("%s weekly", req.Region),
	})
}
