package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnknownRegion   = errors.New("unknown storage region")
	ErrUnknownFuel     = errors.New("unknown fuel type")
	ErrUnknownCategory = errors.New("unknown consumption category")
)

// StorageRegion is an EIA natural gas storage reporting region.
type StorageRegion string

const (
	RegionEast     StorageRegion = "EAST"
	RegionMidwest  StorageRegion = "MIDWEST"
	RegionSouth    StorageRegion = "SOUTH"
	RegionMountain StorageRegion = "MOUNTAIN"
	RegionPacific  StorageRegion = "PACIFIC"
	RegionSalt     StorageRegion = "SALT"
	RegionNonSalt  StorageRegion = "NONSALT"
	RegionLower48  StorageRegion = "LOWER_48"
)

// FuelType is an EIA power generation fuel code.
type FuelType string

const (
	FuelNaturalGas FuelType = "NG"
	FuelOil        FuelType = "OIL"
	FuelCoal       FuelType = "COL"
	FuelNuclear    FuelType = "NUC"
	FuelHydro      FuelType = "WAT"
	FuelSolar      FuelType = "SUN"
	FuelWind       FuelType = "WND"
	FuelOther      FuelType = "OTH"
)

// Respondent is an EIA balancing authority region code.
type Respondent string

const (
	RespondentCalifornia  Respondent = "CAL"
	RespondentNorthwest   Respondent = "NW"
	RespondentSouthwest   Respondent = "SW"
	RespondentTexas       Respondent = "TX"
	RespondentCentral     Respondent = "CENT"
	RespondentMidwest     Respondent = "MIDW"
	RespondentTennessee   Respondent = "TEN"
	RespondentFlorida     Respondent = "FL"
	RespondentSoutheast   Respondent = "SE"
	RespondentCarolinas   Respondent = "CAR"
	RespondentMidAtlantic Respondent = "MIDA"
	RespondentNewYork     Respondent = "NY"
	RespondentNewEngland  Respondent = "NE"
)

type Timezone string

const (
	TimezoneEastern  Timezone = "Eastern"
	TimezoneCentral  Timezone = "Central"
	TimezoneMountain Timezone = "Mountain"
	TimezonePacific  Timezone = "Pacific"
)

// Location maps the EIA timezone facet to an IANA location name.
func (tz Timezone) Location() string {
	switch tz {
	case TimezoneCentral:
		return "America/Chicago"
	case TimezoneMountain:
		return "America/Denver"
	case TimezonePacific:
		return "America/Los_Angeles"
	default:
		return "America/New_York"
	}
}

// ConsumptionCategory is an EIA natural gas consumption process code.
type ConsumptionCategory string

const (
	ConsumptionElectricity ConsumptionCategory = "VEU"
	ConsumptionCommercial  ConsumptionCategory = "VCS"
	ConsumptionVehicleFuel ConsumptionCategory = "VDV"
	ConsumptionDelivery    ConsumptionCategory = "VGT"
	ConsumptionIndustrial  ConsumptionCategory = "VIN"
	ConsumptionResidential ConsumptionCategory = "VRS"
)

// RegionInfo groups everything known about one storage region.
type RegionInfo struct {
	Region      StorageRegion
	SeriesID    string
	States      []string
	Respondents []Respondent
}

var regions = map[StorageRegion]RegionInfo{
	RegionEast: {
		Region:   RegionEast,
		SeriesID: "NW2_EPG0_SWO_R31_BCF",
		States: []string{
			"FL", "GA", "SC", "NC", "VA", "WV", "OH", "PA", "MD",
			"DE", "NJ", "NY", "CT", "RI", "MA", "NH", "ME", "VT",
		},
		Respondents: []Respondent{
			RespondentMidAtlantic, RespondentNewYork, RespondentNewEngland,
			RespondentCarolinas, RespondentFlorida,
		},
	},
	RegionMidwest: {
		Region:      RegionMidwest,
		SeriesID:    "NW2_EPG0_SWO_R32_BCF",
		States:      []string{"MN", "IA", "MO", "IL", "WI", "MI", "IN", "KY", "TN"},
		Respondents: []Respondent{RespondentMidwest, RespondentTennessee},
	},
	RegionSouth: {
		Region:      RegionSouth,
		SeriesID:    "NW2_EPG0_SWO_R33_BCF",
		States:      []string{"TX", "OK", "KS", "AR", "LA", "MS", "AL"},
		Respondents: []Respondent{RespondentTexas, RespondentSoutheast},
	},
	RegionMountain: {
		Region:      RegionMountain,
		SeriesID:    "NW2_EPG0_SWO_R34_BCF",
		States:      []string{"NV", "AZ", "UT", "ID", "MT", "WY", "CO", "NM", "NE", "SD", "ND"},
		Respondents: []Respondent{RespondentCentral, RespondentNorthwest, RespondentSouthwest},
	},
	RegionPacific: {
		Region:      RegionPacific,
		SeriesID:    "NW2_EPG0_SWO_R35_BCF",
		States:      []string{"CA", "OR", "WA"},
		Respondents: []Respondent{RespondentCalifornia, RespondentNorthwest},
	},
	RegionSalt: {
		Region:   RegionSalt,
		SeriesID: "NW2_EPG0_SSO_R33_BCF",
	},
	RegionNonSalt: {
		Region:   RegionNonSalt,
		SeriesID: "NW2_EPG0_SNO_R33_BCF",
	},
	RegionLower48: {
		Region:   RegionLower48,
		SeriesID: "NW2_EPG0_SWO_R48_BCF",
	},
}

var fuels = []FuelType{
	FuelNaturalGas, FuelOil, FuelCoal, FuelNuclear,
	FuelHydro, FuelSolar, FuelWind, FuelOther,
}

var categories = map[string]ConsumptionCategory{
	"ELECTRICITY": ConsumptionElectricity,
	"COMMERCIAL":  ConsumptionCommercial,
	"VEHICLEFUEL": ConsumptionVehicleFuel,
	"DELIVERY":    ConsumptionDelivery,
	"INDUSTRIAL":  ConsumptionIndustrial,
	"RESIDENTIAL": ConsumptionResidential,
}

// Regions returns every storage region sorted by name.
func Regions() []RegionInfo {
	out := make([]RegionInfo, 0, len(regions))
	for _, info := range regions {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Region < out[j].Region })
	return out
}

// LookupRegion resolves a region name case-insensitively.
func LookupRegion(name string) (RegionInfo, error) {
	info, ok := regions[StorageRegion(strings.ToUpper(strings.TrimSpace(name)))]
	if !ok {
		return RegionInfo{}, fmt.Errorf("%w: %q", ErrUnknownRegion, name)
	}
	return info, nil
}

func ParseFuelType(s string) (FuelType, error) {
	f := FuelType(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range fuels {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFuel, s)
}

// ParseConsumptionCategory accepts either the category name (RESIDENTIAL) or
// its process code (VRS).
func ParseConsumptionCategory(s string) (ConsumptionCategory, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	if c, ok := categories[key]; ok {
		return c, nil
	}
	for _, c := range categories {
		if string(c) == key {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// DuoAreas returns the EIA consumption area codes for the region's respondents.
func (r RegionInfo) DuoAreas() []string {
	out := make([]string, len(r.Respondents))
	for i, resp := range r.Respondents {
		out[i] = "S" + string(resp)
	}
	return out
}

// ClimateRegion is one row of the NOAA climate division listing.
type ClimateRegion struct {
	State string
	Name  string
}
