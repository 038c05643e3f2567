package benchmark

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/climate-dashboard-api/internal/access"
	"github.com/climate-dashboard-api/internal/config"
	"github.com/climate-dashboard-api/internal/mocks"
	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/query"
	"github.com/climate-dashboard-api/internal/service"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var severities = []models.Severity{
	models.SeverityLow, models.SeverityMedium, models.SeverityHigh, models.SeverityCritical,
}

// BenchmarkAlertsViewBuild benchmarks turning listing parameters into SQL
func BenchmarkAlertsViewBuild(b *testing.B) {
	p := query.Params{
		query.KeyStatus:     "active",
		query.KeyAlertType:  string(models.AlertTypeTemperatureAnomaly),
		query.KeyStartDate:  "2024-01-01",
		query.KeyEndDate:    "2024-06-30",
		query.KeySearchText: "heat wave",
		query.KeyPage:       "3",
	}
	scope := access.ScopeAlertsForRole(models.RoleAnalyst).Conditions("severity")

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		f, err := query.AlertsView.Build(p, scope...)
		if err != nil {
			b.Fatal(err)
		}
		if where, _ := f.Where(); where == "" {
			b.Fatal("expected a WHERE clause")
		}
	}
}

// BenchmarkFilterMatch benchmarks in-memory evaluation of a scoped filter
func BenchmarkFilterMatch(b *testing.B) {
	f := query.NewFilter(query.Eq("is_active", true), query.Search([]string{"title"}, "flood")).
		And(access.ScopeAlertsForRole(models.RoleViewer).Conditions("severity")...)

	record := map[string]interface{}{
		"is_active": true,
		"title":     "Coastal flood warning",
		"severity":  string(models.SeverityMedium),
	}
	get := func(column string) interface{} { return record[column] }

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if !f.Match(get) {
			b.Fatal("expected match")
		}
	}
}

// BenchmarkRequireCapability benchmarks the role ordering check
func BenchmarkRequireCapability(b *testing.B) {
	analyst := &models.Account{ID: uuid.New().String(), Role: models.RoleAnalyst, IsActive: true}

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := access.RequireCapability(analyst, models.RoleViewer); err != nil {
			b.Fatal(err)
		}
		if err := access.RequireCapability(analyst, models.RoleAdministrator); err == nil {
			b.Fatal("expected denial")
		}
	}
}

// BenchmarkAlertListing benchmarks a scoped, paginated listing over 1000 alerts
func BenchmarkAlertListing(b *testing.B) {
	repos := mocks.NewRepositories()
	ctx := context.Background()
	now := time.Now().UTC()

	for i := 0; i < 1000; i++ {
		repos.Alert.Create(ctx, &models.Alert{
			ID:        uuid.New().String(),
			AlertType: models.AlertTypeTemperatureAnomaly,
			Severity:  severities[i%len(severities)],
			Title:     fmt.Sprintf("Alert %04d", i),
			IsActive:  i%3 != 0,
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}

	svc := service.NewServices(repos, &config.Config{}, zerolog.Nop(), service.Deps{})
	viewer := &models.Account{ID: uuid.New().String(), Role: models.RoleViewer, IsActive: true}
	p := query.Params{query.KeyStatus: "active", query.KeyPage: "2"}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if _, err := svc.Alert.List(ctx, viewer, p); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}
