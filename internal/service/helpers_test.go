package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/climate-dashboard-api/internal/config"
	"github.com/climate-dashboard-api/internal/mocks"
	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/repository"
	"github.com/climate-dashboard-api/internal/service"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "s3cure-passw0rd"

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			SessionSecret:    "test-secret-that-is-at-least-32-bytes",
			SessionTTL:       time.Hour,
			CookieName:       "climate_session",
			MaxLoginAttempts: 3,
			LockoutWindow:    time.Minute,
			BcryptCost:       bcrypt.MinCost,
		},
		Metrics: config.MetricsConfig{
			CollectorEnabled: true,
			SampleInterval:   10 * time.Millisecond,
		},
	}
}

type recordingNotifier struct {
	mu      sync.Mutex
	entries []*models.AuditEntry
}

func (n *recordingNotifier) Publish(ctx context.Context, e *models.AuditEntry) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entries = append(n.entries, e)
	return nil
}

func (n *recordingNotifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.entries)
}

type fixture struct {
	repos    *repository.Repositories
	svc      *service.Services
	notifier *recordingNotifier
}

func newFixture(t *testing.T, deps ...service.Deps) *fixture {
	t.Helper()

	var d service.Deps
	if len(deps) > 0 {
		d = deps[0]
	}
	notifier := &recordingNotifier{}
	if d.Notifier == nil {
		d.Notifier = notifier
	}

	repos := mocks.NewRepositories()
	return &fixture{
		repos:    repos,
		svc:      service.NewServices(repos, testConfig(), zerolog.Nop(), d),
		notifier: notifier,
	}
}

func (f *fixture) audit() *mocks.MockAuditRepository {
	return f.repos.Audit.(*mocks.MockAuditRepository)
}

func (f *fixture) sessions() *mocks.MockSessionRepository {
	return f.repos.Session.(*mocks.MockSessionRepository)
}

// seedAccount stores an active account whose password is testPassword
func (f *fixture) seedAccount(t *testing.T, username string, role models.Role) *models.Account {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)

	now := time.Now().UTC()
	a := &models.Account{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        username + "@example.org",
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, f.repos.Account.Create(context.Background(), a))
	return a
}

func (f *fixture) seedSource(t *testing.T, name string) *models.DataSource {
	t.Helper()

	s := &models.DataSource{
		ID:               uuid.New().String(),
		Name:             name,
		SourceType:       models.SourceTypeWeatherStation,
		IsActive:         true,
		InstallationDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt:        time.Now().UTC(),
	}
	require.NoError(t, f.repos.DataSource.Create(context.Background(), s))
	return s
}

func (f *fixture) seedAlert(t *testing.T, severity models.Severity, createdAt time.Time) *models.Alert {
	t.Helper()

	a := &models.Alert{
		ID:        uuid.New().String(),
		AlertType: models.AlertTypeExtremeWeather,
		Severity:  severity,
		Title:     string(severity) + " alert",
		IsActive:  true,
		CreatedAt: createdAt,
	}
	require.NoError(t, f.repos.Alert.Create(context.Background(), a))
	return a
}

func float(v float64) *float64 { return &v }
