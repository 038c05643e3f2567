package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/climate-dashboard-api/internal/apperrors"
	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/query"
	"github.com/climate-dashboard-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) record(t *testing.T, actor *models.Account, source *models.DataSource, dt models.DataType, value float64, at time.Time, anomaly bool) *models.ClimateDataPoint {
	t.Helper()

	p, err := f.svc.Climate.RecordDataPoint(context.Background(), actor, &models.DataPointRequest{
		DataSourceID: source.ID,
		DataType:     string(dt),
		Value:        float(value),
		Unit:         "C",
		Timestamp:    at.Format(time.RFC3339),
		IsAnomaly:    anomaly,
	})
	require.NoError(t, err)
	return p
}

func TestListData_FiltersAndSummarizes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	analyst := f.seedAccount(t, "carol", models.RoleAnalyst)
	station := f.seedSource(t, "Station A")

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	f.record(t, analyst, station, models.DataTypeTemperature, 10, base, false)
	f.record(t, analyst, station, models.DataTypeTemperature, 20, base.Add(time.Hour), false)
	f.record(t, analyst, station, models.DataTypeTemperature, 999, base.Add(2*time.Hour), true)

	listing, err := f.svc.Climate.ListData(ctx, analyst, query.Params{"dataType": "temperature"})
	require.NoError(t, err)
	require.Len(t, listing.Data.Items, 3)
	assert.Equal(t, 999.0, listing.Data.Items[0].Value, "newest reading first")
	assert.Equal(t, "Station A", listing.Data.Items[0].DataSourceName)
	assert.Equal(t, 3, listing.Summary.TotalRecords)
	assert.Equal(t, 1, listing.Summary.AnomalyCount)
	require.NotNil(t, listing.Summary.MaxValue)
	assert.Equal(t, 999.0, *listing.Summary.MaxValue)
	require.NotNil(t, listing.Summary.AvgTemperature)
	assert.InDelta(t, 343.0, *listing.Summary.AvgTemperature, 0.001)

	listing, err = f.svc.Climate.ListData(ctx, analyst, query.Params{"isAnomaly": "true"})
	require.NoError(t, err)
	require.Len(t, listing.Data.Items, 1)
	assert.True(t, listing.Data.Items[0].IsAnomaly)
	assert.Equal(t, 1, listing.Summary.TotalRecords, "summary covers the filtered set")

	listing, err = f.svc.Climate.ListData(ctx, analyst, query.Params{"endDate": "2024-03-01"})
	require.NoError(t, err)
	assert.Len(t, listing.Data.Items, 3, "a bare end date includes the whole day")
}

func TestListData_EmptyAndOutOfRangePages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	analyst := f.seedAccount(t, "carol", models.RoleAnalyst)
	station := f.seedSource(t, "Station A")
	f.record(t, analyst, station, models.DataTypeTemperature, 12, time.Now().UTC(), false)

	listing, err := f.svc.Climate.ListData(ctx, analyst, query.Params{"dataType": "humidity"})
	require.NoError(t, err)
	assert.Empty(t, listing.Data.Items)
	assert.Equal(t, 1, listing.Data.Number)
	assert.Equal(t, 1, listing.Data.TotalPages)
	assert.Equal(t, 0, listing.Summary.TotalRecords)
	assert.Nil(t, listing.Summary.AvgValue)

	listing, err = f.svc.Climate.ListData(ctx, analyst, query.Params{"page": "9999"})
	require.NoError(t, err)
	assert.Equal(t, 1, listing.Data.Number, "page is clamped to the last page")
	assert.Len(t, listing.Data.Items, 1)

	_, err = f.svc.Climate.ListData(ctx, analyst, query.Params{"dataType": "plasma"})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	viewer := f.seedAccount(t, "bob", models.RoleViewer)
	_, err = f.svc.Climate.ListData(ctx, viewer, nil)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
}

func TestRecordDataPoint(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	analyst := f.seedAccount(t, "carol", models.RoleAnalyst)
	station := f.seedSource(t, "Station A")

	p := f.record(t, analyst, station, models.DataTypeHumidity, 55, time.Now().UTC(), false)
	assert.Equal(t, 1.0, p.QualityScore, "quality defaults to 1.0")
	assert.False(t, p.Processed)

	_, err := f.svc.Climate.RecordDataPoint(ctx, analyst, &models.DataPointRequest{
		DataSourceID: "6f1c2a0e-6a43-4d8c-9d5b-1b6f0d2f3e4a",
		DataType:     "humidity",
		Value:        float(40),
		Unit:         "%",
		Timestamp:    "2024-03-01",
	})
	require.Error(t, err)
	e, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindValidation, e.Kind)
	assert.Equal(t, "data_source_id", e.Field)

	_, err = f.svc.Climate.RecordDataPoint(ctx, analyst, &models.DataPointRequest{DataSourceID: station.ID})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	processed, err := f.svc.Climate.MarkProcessed(ctx, analyst, p.ID)
	require.NoError(t, err)
	assert.True(t, processed.Processed)

	_, err = f.svc.Climate.MarkProcessed(ctx, analyst, "missing")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestDataSources_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seedAccount(t, "admin", models.RoleAdministrator)
	analyst := f.seedAccount(t, "carol", models.RoleAnalyst)

	req := &models.DataSourceRequest{
		Name:             "Buoy 7",
		SourceType:       "ocean_buoy",
		Latitude:         float(44.5),
		Longitude:        float(-63.2),
		InstallationDate: "2021-06-01",
	}
	_, err := f.svc.Climate.CreateSource(ctx, analyst, req)
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))

	source, err := f.svc.Climate.CreateSource(ctx, admin, req)
	require.NoError(t, err)
	assert.True(t, source.IsActive)
	assert.Equal(t, time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC), source.InstallationDate)

	source, err = f.svc.Climate.SetSourceActive(ctx, admin, source.ID, false)
	require.NoError(t, err)
	assert.False(t, source.IsActive)

	listing, err := f.svc.Climate.ListSources(ctx, analyst, query.Params{"isActive": "false"})
	require.NoError(t, err)
	require.Len(t, listing.Sources.Items, 1)
	assert.Equal(t, 1, listing.Stats.TotalSources)
	assert.Equal(t, 0, listing.Stats.ActiveSources)

	f.record(t, analyst, source, models.DataTypeSeaLevel, 1.2, time.Now().UTC(), false)
	f.seedAlert(t, models.SeverityLow, time.Now().UTC())
	alert, err := f.svc.Alert.Raise(ctx, analyst, &models.AlertRequest{
		AlertType:    "sea_level_rise",
		Severity:     "medium",
		Title:        "Rising",
		DataSourceID: &source.ID,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Climate.DeleteSource(ctx, admin, source.ID))

	n, _ := f.repos.Climate.Count(ctx, nil)
	assert.Equal(t, 0, n, "readings are deleted with their source")
	gone, _ := f.repos.Alert.GetByID(ctx, alert.ID)
	assert.Nil(t, gone, "alerts are deleted with their source")
	left, _ := f.repos.Alert.Count(ctx, nil)
	assert.Equal(t, 1, left)

	err = f.svc.Climate.DeleteSource(ctx, admin, source.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	assert.Len(t, f.audit().Find(models.AuditActionSourceCreate), 1)
	assert.Len(t, f.audit().Find(models.AuditActionSourceActive), 1)

	deletes := f.audit().Find(models.AuditActionSourceDelete)
	require.Len(t, deletes, 2)
	assert.True(t, deletes[0].Success)
	assert.Equal(t, "Buoy 7", deletes[0].OldValue)
	assert.False(t, deletes[1].Success, "deleting a missing source is audited")
}

func TestCreateSource_RejectionIsAudited(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.seedAccount(t, "admin", models.RoleAdministrator)

	_, err := f.svc.Climate.CreateSource(ctx, admin, &models.DataSourceRequest{
		Name:       "Mystery",
		SourceType: "bogus",
		Latitude:   float(10),
		Longitude:  float(10),
	})
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))

	require.Len(t, f.audit().Entries, 1)
	entry := f.audit().Entries[0]
	assert.Equal(t, models.AuditActionSourceCreate, entry.Action)
	assert.Equal(t, admin.ID, entry.ActorID)
	assert.Equal(t, "Mystery", entry.NewValue)
	assert.False(t, entry.Success)
	assert.NotEmpty(t, entry.Message)

	n, _ := f.repos.DataSource.Count(ctx, nil)
	assert.Equal(t, 0, n)
}

func TestSetSourceActive_UnknownSourceIsAudited(t *testing.T) {
	f := newFixture(t)
	admin := f.seedAccount(t, "admin", models.RoleAdministrator)

	_, err := f.svc.Climate.SetSourceActive(context.Background(), admin, "missing", true)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	entries := f.audit().Find(models.AuditActionSourceActive)
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Success)
	assert.Equal(t, "missing", entries[0].TargetID)
}

func TestChart_OldestFirstWithinWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	analyst := f.seedAccount(t, "carol", models.RoleAnalyst)
	viewer := f.seedAccount(t, "bob", models.RoleViewer)
	station := f.seedSource(t, "Station A")

	now := time.Now().UTC().Truncate(time.Second)
	f.record(t, analyst, station, models.DataTypeTemperature, 18, now.Add(-2*time.Hour), false)
	f.record(t, analyst, station, models.DataTypeTemperature, 15, now.AddDate(0, 0, -3), false)
	f.record(t, analyst, station, models.DataTypeTemperature, 30, now.AddDate(0, 0, -40), false)
	f.record(t, analyst, station, models.DataTypeHumidity, 70, now.Add(-time.Hour), false)

	chart, err := f.svc.Climate.Chart(ctx, viewer, "", 0)
	require.NoError(t, err)
	assert.Equal(t, models.DataTypeTemperature, chart.DataType)
	assert.Equal(t, []float64{15, 18}, chart.Values)
	assert.Equal(t, "C", chart.Unit)
	require.Len(t, chart.Timestamps, 2)
	assert.Equal(t, now.AddDate(0, 0, -3).Format(time.RFC3339), chart.Timestamps[0])

	chart, err = f.svc.Climate.Chart(ctx, viewer, "temperature", 60)
	require.NoError(t, err)
	assert.Equal(t, []float64{30, 15, 18}, chart.Values)

	chart, err = f.svc.Climate.Chart(ctx, viewer, "co2_level", 7)
	require.NoError(t, err)
	assert.Empty(t, chart.Values)

	_, err = f.svc.Climate.Chart(ctx, viewer, "plasma", 7)
	assert.Equal(t, apperrors.KindValidation, apperrors.KindOf(err))
}

func TestHomeStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	analyst := f.seedAccount(t, "carol", models.RoleAnalyst)
	station := f.seedSource(t, "Station A")
	for i := 0; i < 7; i++ {
		f.record(t, analyst, station, models.DataTypeTemperature, float64(i), time.Now().UTC().Add(-time.Duration(i)*time.Minute), false)
	}
	f.seedAlert(t, models.SeverityHigh, time.Now().UTC())

	stats, err := f.svc.Climate.HomeStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, &service.HomeStats{
		ActiveSources:   1,
		TotalDataPoints: 7,
		ActiveAlerts:    1,
		RecentData:      stats.RecentData,
	}, stats)
	assert.Len(t, stats.RecentData, 5)
	assert.Equal(t, 0.0, stats.RecentData[0].Value)
}
