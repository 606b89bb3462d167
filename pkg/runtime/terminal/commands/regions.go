package commands

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/de-tools/energy-atlas/pkg/models/domain"
)

type RegionsCmd struct {
	divisions bool
	env       *Env
}

func NewRegionsCmd(env *Env) *cobra.Command {
	rc := &RegionsCmd{env: env}
	cmd := &cobra.Command{
		Use:   "regions",
		Short: "List storage regions with their weather states and EIA respondents",
		RunE:  rc.run,
	}

	cmd.Flags().BoolVar(&rc.divisions, "divisions", false, "List NOAA climate divisions instead")

	return cmd
}

func (rc *RegionsCmd) run(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	if rc.divisions {
		if rc.env == nil || rc.env.Divisions == nil {
			return errNotReady
		}
		divisions, err := rc.env.Divisions.Regions(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list climate divisions: %w", err)
		}
		ids := make([]int, 0, len(divisions))
		for id := range divisions {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		for _, id := range ids {
			fmt.Fprintf(out, "%-6d %-3s %s\n", id, divisions[id].State, divisions[id].Name)
		}
		return nil
	}

	for _, info := range domain.Regions() {
		respondents := make([]string, len(info.Respondents))
		for i, r := range info.Respondents {
			respondents[i] = string(r)
		}
		fmt.Fprintf(out, "%s\n  series:      %s\n  states:      %s\n  respondents: %s\n",
			info.Region,
			info.SeriesID,
			orNone(strings.Join(info.States, ", ")),
			orNone(strings.Join(respondents, ", ")))
	}
	return nil
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
