package commands

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/energy-atlas/pkg/models/domain"
	"github.com/de-tools/energy-atlas/pkg/runtime/chart"
	"github.com/de-tools/energy-atlas/pkg/services/config"
	"github.com/de-tools/energy-atlas/pkg/services/pipeline"
)

type mockPipeline struct {
	mock.Mock
}

func (m *mockPipeline) table(args mock.Arguments) (*domain.Table, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Table), args.Error(1)
}

func (m *mockPipeline) result(args mock.Arguments) (*pipeline.Result, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pipeline.Result), args.Error(1)
}

func (m *mockPipeline) StorageWeekly(ctx context.Context, region domain.StorageRegion) (*domain.Table, error) {
	return m.table(m.Called(ctx, region))
}

func (m *mockPipeline) PowerWeekly(ctx context.Context, region domain.StorageRegion, fuel domain.FuelType) (*domain.Table, error) {
	return m.table(m.Called(ctx, region, fuel))
}

func (m *mockPipeline) ConsumptionWeekly(ctx context.Context, region domain.StorageRegion, category domain.ConsumptionCategory) (*domain.Table, error) {
	return m.table(m.Called(ctx, region, category))
}

func (m *mockPipeline) DegreeDaysWeekly(ctx context.Context, region domain.StorageRegion, startYear, endYear int) (*domain.Table, error) {
	return m.table(m.Called(ctx, region, startYear, endYear))
}

func (m *mockPipeline) Weekly(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
	return m.result(m.Called(ctx, req))
}

func (m *mockPipeline) Seasonal(ctx context.Context, series pipeline.Series, req pipeline.Request) (*pipeline.Result, error) {
	return m.result(m.Called(ctx, series, req))
}

type mockDivisions struct {
	mock.Mock
}

func (m *mockDivisions) Regions(ctx context.Context) (map[int]domain.ClimateRegion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]domain.ClimateRegion), args.Error(1)
}

func newEnv(p Pipeline) *Env {
	return &Env{
		Pipeline: p,
		Defaults: config.DefaultsConfig{
			Region:    "EAST",
			Fuel:      "NG",
			Category:  "RESIDENTIAL",
			StartYear: 2019,
		},
	}
}

func weeklyTable(t *testing.T, column string) *domain.Table {
	t.Helper()
	tbl := domain.NewTable(2)
	require.NoError(t, tbl.SetDates(domain.ColumnPeriod, []time.Time{
		time.Date(2023, 1, 6, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 1, 13, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, tbl.SetFloats(column, []float64{1, 2}))
	return tbl
}

func execute(cmd *cobra.Command, args ...string) (string, error) {
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestStorageCmd(t *testing.T) {
	p := new(mockPipeline)
	p.On("StorageWeekly", mock.Anything, domain.RegionSouth).Return(weeklyTable(t, pipeline.ColumnStorage), nil)

	out, err := execute(NewStorageCmd(newEnv(p)), "--region", "south", "--output", "csv")
	require.NoError(t, err)
	assert.Equal(t, "period,storage_bcf\n2023-01-06,1\n2023-01-13,2\n", out)
	p.AssertExpectations(t)
}

func TestStorageCmd_DefaultRegionTable(t *testing.T) {
	p := new(mockPipeline)
	p.On("StorageWeekly", mock.Anything, domain.RegionEast).Return(weeklyTable(t, pipeline.ColumnStorage), nil)

	out, err := execute(NewStorageCmd(newEnv(p)))
	require.NoError(t, err)
	assert.Contains(t, out, "storage_bcf")
	assert.Contains(t, out, "2 rows")
}

func TestStorageCmd_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
		want    string
	}{
		{name: "unknown region", args: []string{"--region", "ATLANTIS"}, wantErr: domain.ErrUnknownRegion},
		{name: "unknown format", args: []string{"--output", "pdf"}, want: "unknown output format"},
		{name: "xlsx needs file", args: []string{"--output", "xlsx"}, want: "needs --out"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := new(mockPipeline)
			p.On("StorageWeekly", mock.Anything, mock.Anything).Return(weeklyTable(t, pipeline.ColumnStorage), nil)

			_, err := execute(NewStorageCmd(newEnv(p)), tt.args...)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			}
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestStorageCmd_XLSXOverlay(t *testing.T) {
	p := new(mockPipeline)
	p.On("StorageWeekly", mock.Anything, domain.RegionEast).Return(weeklyTable(t, pipeline.ColumnStorage), nil)
	path := filepath.Join(t.TempDir(), "storage.xlsx")

	_, err := execute(NewStorageCmd(newEnv(p)), "--output", "xlsx", "--out", path, "--overlay")
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestPowerGenCmd(t *testing.T) {
	p := new(mockPipeline)
	p.On("PowerWeekly", mock.Anything, domain.RegionPacific, domain.FuelSolar).
		Return(weeklyTable(t, pipeline.ColumnPower), nil)

	out, err := execute(NewPowerGenCmd(newEnv(p)), "--region", "PACIFIC", "--fuel", "sun", "-o", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "power_mwh")

	_, err = execute(NewPowerGenCmd(newEnv(p)), "--fuel", "diesel")
	assert.True(t, errors.Is(err, domain.ErrUnknownFuel))
}

func TestConsumptionCmd(t *testing.T) {
	p := new(mockPipeline)
	p.On("ConsumptionWeekly", mock.Anything, domain.RegionEast, domain.ConsumptionIndustrial).
		Return(weeklyTable(t, pipeline.ColumnConsumption), nil)

	out, err := execute(NewConsumptionCmd(newEnv(p)), "--category", "industrial", "-o", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "consumption_mmcf")
	p.AssertExpectations(t)
}

func TestDegreeDaysCmd(t *testing.T) {
	p := new(mockPipeline)
	p.On("DegreeDaysWeekly", mock.Anything, domain.RegionMidwest, 2021, 2022).
		Return(weeklyTable(t, pipeline.ColumnHeating), nil)

	out, err := execute(NewDegreeDaysCmd(newEnv(p)),
		"--region", "MIDWEST", "--start-year", "2021", "--end-year", "2022", "-o", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "heating_days")

	_, err = execute(NewDegreeDaysCmd(newEnv(p)), "--start-year", "2023", "--end-year", "2022")
	assert.ErrorContains(t, err, "after end year")
}

func TestWeeklyCmd(t *testing.T) {
	p := new(mockPipeline)
	want := pipeline.Request{
		Region:    domain.RegionEast,
		Fuel:      domain.FuelNaturalGas,
		Category:  domain.ConsumptionResidential,
		StartYear: 2022,
	}
	p.On("Weekly", mock.Anything, want).
		Return(&pipeline.Result{RunID: "run-1", Table: weeklyTable(t, pipeline.ColumnStorage)}, nil)

	out, err := execute(NewWeeklyCmd(newEnv(p)), "--start-year", "2022", "-o", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "2023-01-13,2")
	p.AssertExpectations(t)
}

func TestSeasonalCmd(t *testing.T) {
	curve := domain.NewTable(2)
	require.NoError(t, curve.SetInts(domain.ColumnWeek, []int{1, 2}))
	require.NoError(t, curve.SetFloats(domain.ColumnDeviation, []float64{-5, 5}))

	p := new(mockPipeline)
	p.On("Seasonal", mock.Anything, pipeline.SeriesHeating, mock.AnythingOfType("pipeline.Request")).
		Return(&pipeline.Result{RunID: "run-2", Table: curve}, nil)

	out, err := execute(NewSeasonalCmd(newEnv(p)), "--series", "heating", "-o", "csv")
	require.NoError(t, err)
	assert.Equal(t, "week,deviation\n1,-5\n2,5\n", out)

	path := filepath.Join(t.TempDir(), "seasonal.xlsx")
	_, err = execute(NewSeasonalCmd(newEnv(p)), "--series", "heating", "-o", "xlsx", "--out", path)
	require.NoError(t, err)

	_, err = execute(NewSeasonalCmd(newEnv(p)), "--series", "wind")
	assert.True(t, errors.Is(err, pipeline.ErrUnknownSeries))
}

func TestRegionsCmd(t *testing.T) {
	out, err := execute(NewRegionsCmd(newEnv(new(mockPipeline))))
	require.NoError(t, err)
	assert.Contains(t, out, "EAST\n")
	assert.Contains(t, out, "SALT\n  series:      NW2_EPG0_SSO_R33_BCF\n  states:      -\n  respondents: -\n")
}

func TestRegionsCmd_Divisions(t *testing.T) {
	divisions := new(mockDivisions)
	divisions.On("Regions", mock.Anything).Return(map[int]domain.ClimateRegion{
		3004: {State: "NY", Name: "Coastal"},
		101:  {State: "AL", Name: "Northern Valley"},
	}, nil)
	env := newEnv(new(mockPipeline))
	env.Divisions = divisions

	out, err := execute(NewRegionsCmd(env), "--divisions")
	require.NoError(t, err)
	assert.Equal(t, "101    AL  Northern Valley\n3004   NY  Coastal\n", out)
}

func TestCommands_NotReady(t *testing.T) {
	_, err := execute(NewWeeklyCmd(&Env{}))
	assert.True(t, errors.Is(err, errNotReady))
}

type closeFailingFile struct {
	bytes.Buffer
	closeErr error
}

func (f *closeFailingFile) Close() error {
	return f.closeErr
}

func TestOutput_RenderToFile(t *testing.T) {
	flushErr := errors.New("disk full")
	tests := []struct {
		name     string
		closeErr error
		wantErr  error
	}{
		{name: "close succeeds"},
		{name: "close error is reported", closeErr: flushErr, wantErr: flushErr},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := &closeFailingFile{closeErr: tt.closeErr}
			o := &output{
				format: formatCSV,
				path:   "storage.csv",
				create: func(string) (io.WriteCloser, error) { return file, nil },
			}

			err := o.render(&cobra.Command{}, weeklyTable(t, pipeline.ColumnStorage), chart.Options{})

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				assert.Contains(t, err.Error(), "storage.csv")
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, "period,storage_bcf\n2023-01-06,1\n2023-01-13,2\n", file.String())
		})
	}
}

func TestStorageCmd_CSVToFile(t *testing.T) {
	p := new(mockPipeline)
	p.On("StorageWeekly", mock.Anything, domain.RegionEast).Return(weeklyTable(t, pipeline.ColumnStorage), nil)
	path := filepath.Join(t.TempDir(), "storage.csv")

	out, err := execute(NewStorageCmd(newEnv(p)), "-o", "csv", "--out", path)
	require.NoError(t, err)
	assert.Empty(t, out)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "period,storage_bcf\n2023-01-06,1\n2023-01-13,2\n", string(content))
}
