package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/de-tools/energy-atlas/pkg/runtime/chart"
	"github.com/de-tools/energy-atlas/pkg/services/pipeline"
)

type StorageCmd struct {
	region string
	output output
	env    *Env
}

func NewStorageCmd(env *Env) *cobra.Command {
	sc := &StorageCmd{env: env}
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Weekly working gas in storage (BCF)",
		RunE:  sc.run,
	}

	cmd.Flags().StringVar(&sc.region, "region", "", "Storage region (default from config)")
	sc.output.register(cmd, true)

	return cmd
}

func (sc *StorageCmd) run(cmd *cobra.Command, _ []string) error {
	if err := sc.env.ready(); err != nil {
		return err
	}
	region, err := sc.env.region(sc.region)
	if err != nil {
		return err
	}

	table, err := sc.env.Pipeline.StorageWeekly(cmd.Context(), region)
	if err != nil {
		return err
	}
	return sc.output.render(cmd, table, chart.Options{
		Title:   fmt.Sprintf("%s storage", region),
		Columns: []string{pipeline.ColumnStorage},
	})
}

type PowerGenCmd struct {
	region string
	fuel   string
	output output
	env    *Env
}

func NewPowerGenCmd(env *Env) *cobra.Command {
	pc := &PowerGenCmd{env: env}
	cmd := &cobra.Command{
		Use:   "powergen",
		Short: "Daily power generation by fuel, averaged into weeks",
		RunE:  pc.run,
	}

	cmd.Flags().StringVar(&pc.region, "region", "", "Storage region (default from config)")
	cmd.Flags().StringVar(&pc.fuel, "fuel", "", "Fuel type code, e.g. NG, COL, SUN (default from config)")
	pc.output.register(cmd, true)

	return cmd
}

func (pc *PowerGenCmd) run(cmd *cobra.Command, _ []string) error {
	if err := pc.env.ready(); err != nil {
		return err
	}
	region, err := pc.env.region(pc.region)
	if err != nil {
		return err
	}
	fuel, err := pc.env.fuel(pc.fuel)
	if err != nil {
		return err
	}

	table, err := pc.env.Pipeline.PowerWeekly(cmd.Context(), region, fuel)
	if err != nil {
		return err
	}
	return pc.output.render(cmd, table, chart.Options{
		Title:   fmt.Sprintf("%s %s generation", region, fuel),
		Columns: []string{pipeline.ColumnPower},
	})
}

type ConsumptionCmd struct {
	region   string
	category string
	output   output
	env      *Env
}

func NewConsumptionCmd(env *Env) *cobra.Command {
	cc := &ConsumptionCmd{env: env}
	cmd := &cobra.Command{
		Use:   "consumption",
		Short: "Monthly natural gas consumption spread over weeks",
		RunE:  cc.run,
	}

	cmd.Flags().StringVar(&cc.region, "region", "", "Storage region (default from config)")
	cmd.Flags().StringVar(&cc.category, "category", "", "Consumption category name or code (default from config)")
	cc.output.register(cmd, true)

	return cmd
}

func (cc *ConsumptionCmd) run(cmd *cobra.Command, _ []string) error {
	if err := cc.env.ready(); err != nil {
		return err
	}
	region, err := cc.env.region(cc.region)
	if err != nil {
		return err
	}
	category, err := cc.env.category(cc.category)
	if err != nil {
		return err
	}

	table, err := cc.env.Pipeline.ConsumptionWeekly(cmd.Context(), region, category)
	if err != nil {
		return err
	}
	return cc.output.render(cmd, table, chart.Options{
		Title:   fmt.Sprintf("%s %s consumption", region, category),
		Columns: []string{pipeline.ColumnConsumption},
	})
}

type DegreeDaysCmd struct {
	region    string
	startYear int
	endYear   int
	output    output
	env       *Env
}

func NewDegreeDaysCmd(env *Env) *cobra.Command {
	dc := &DegreeDaysCmd{env: env}
	cmd := &cobra.Command{
		Use:   "degreedays",
		Short: "Daily heating and cooling degree days averaged into weeks",
		RunE:  dc.run,
	}

	cmd.Flags().StringVar(&dc.region, "region", "", "Storage region (default from config)")
	cmd.Flags().IntVar(&dc.startYear, "start-year", 0, "First year to download (default from config)")
	cmd.Flags().IntVar(&dc.endYear, "end-year", 0, "Last year to download (default current year)")
	dc.output.register(cmd, false)

	return cmd
}

func (dc *DegreeDaysCmd) run(cmd *cobra.Command, _ []string) error {
	if err := dc.env.ready(); err != nil {
		return err
	}
	region, err := dc.env.region(dc.region)
	if err != nil {
		return err
	}
	start := dc.env.startYear(dc.startYear)
	end := dc.endYear
	if end <= 0 {
		end = time.Now().Year()
	}
	if start > end {
		return fmt.Errorf("start year %d is after end year %d", start, end)
	}

	table, err := dc.env.Pipeline.DegreeDaysWeekly(cmd.Context(), region, start, end)
	if err != nil {
		return err
	}
	return dc.output.render(cmd, table, chart.Options{
		Title: fmt.Sprintf("%s degree days", region),
	})
}
