package noaa

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/de-tools/energy-atlas/pkg/models/domain"
)

const (
	degreeDayHeaderLine = 3
	regionHeaderLine    = 4
)

func splitLines(body []byte) []string {
	lines := strings.Split(string(body), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, "\r")
	}
	return lines
}

// parseDegreeDays reads a StatesCONUS file. The first line names the kind, the
// fourth line is the header whose field count minus one gives the number of
// days, and every following non-blank line is a state row starting on Jan 1.
func parseDegreeDays(body []byte, kind Kind, year int, states []string) ([]time.Time, []float64, error) {
	lines := splitLines(body)
	if len(lines) <= degreeDayHeaderLine {
		return nil, nil, fmt.Errorf("%w: %d %s has %d lines", ErrMalformedTable, year, kind, len(lines))
	}
	if !strings.Contains(lines[0], string(kind)) {
		return nil, nil, fmt.Errorf("%w: %d file is not a %s table", ErrMalformedTable, year, kind)
	}

	nDays := len(strings.Split(lines[degreeDayHeaderLine], "|")) - 1
	if nDays < 1 {
		return nil, nil, fmt.Errorf("%w: %d %s header has no day columns", ErrMalformedTable, year, kind)
	}

	wanted := make(map[string]bool, len(states))
	for _, s := range states {
		wanted[s] = true
	}

	sums := make([]float64, nDays)
	matched := false
	for _, line := range lines[degreeDayHeaderLine+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "|")
		state := strings.TrimSpace(fields[0])
		if !wanted[state] {
			continue
		}
		if len(fields) < nDays+1 {
			return nil, nil, fmt.Errorf("%w: %d %s row %s has %d days, want %d",
				ErrMalformedTable, year, kind, state, len(fields)-1, nDays)
		}
		for day := 0; day < nDays; day++ {
			cell := strings.TrimSpace(fields[day+1])
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: %d %s state %s day %d: %q",
					ErrMalformedTable, year, kind, state, day+1, cell)
			}
			sums[day] += v
		}
		matched = true
	}

	if !matched {
		return []time.Time{}, []float64{}, nil
	}
	days := make([]time.Time, nDays)
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := range days {
		days[i] = jan1.AddDate(0, 0, i)
	}
	return days, sums, nil
}

// parseRegions reads ClimateDivisions.txt, locating columns by header name.
func parseRegions(body []byte) (map[int]domain.ClimateRegion, error) {
	lines := splitLines(body)
	if len(lines) <= regionHeaderLine {
		return nil, fmt.Errorf("%w: climate divisions has %d lines", ErrMalformedTable, len(lines))
	}

	header := strings.Split(lines[regionHeaderLine], "|")
	idIdx, stateIdx, nameIdx := -1, -1, -1
	for i, col := range header {
		switch strings.TrimSpace(col) {
		case "Region ID":
			idIdx = i
		case "ST":
			stateIdx = i
		case "Name":
			nameIdx = i
		}
	}
	if idIdx < 0 || stateIdx < 0 || nameIdx < 0 {
		return nil, fmt.Errorf("%w: climate divisions header %q", ErrMalformedTable, lines[regionHeaderLine])
	}
	width := max(idIdx, stateIdx, nameIdx) + 1

	out := make(map[int]domain.ClimateRegion)
	for _, line := range lines[regionHeaderLine+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, "|")
		if len(fields) < width {
			return nil, fmt.Errorf("%w: climate division row %q", ErrMalformedTable, line)
		}
		id, err := strconv.Atoi(strings.TrimSpace(fields[idIdx]))
		if err != nil {
			return nil, fmt.Errorf("%w: climate division id %q", ErrMalformedTable, fields[idIdx])
		}
		out[id] = domain.ClimateRegion{
			State: strings.TrimSpace(fields[stateIdx]),
			Name:  strings.TrimSpace(fields[nameIdx]),
		}
	}
	return out, nil
}
