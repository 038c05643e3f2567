package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/climate-dashboard-api/internal/database"
	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/query"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

// AccountRepository defines the interface for account data operations
type AccountRepository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UpdateProfile(ctx context.Context, account *models.Account) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateRole(ctx context.Context, id string, role models.Role) error
	SetActive(ctx context.Context, id string, active bool) error
	RecordLogin(ctx context.Context, id, ip string, at time.Time) error
	SetActiveSession(ctx context.Context, id string, active bool) error
	List(ctx context.Context, f *query.Filter, w query.Window) ([]*models.Account, error)
	Count(ctx context.Context, f *query.Filter) (int, error)
	Stats(ctx context.Context) (*models.UserStats, error)
}

// DataSourceRepository defines the interface for data source operations
type DataSourceRepository interface {
	Create(ctx context.Context, source *models.DataSource) error
	GetByID(ctx context.Context, id string) (*models.DataSource, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f *query.Filter, w query.Window) ([]*models.DataSource, error)
	Count(ctx context.Context, f *query.Filter) (int, error)
	Stats(ctx context.Context) (*models.SourceStats, error)
	TypeDistribution(ctx context.Context) ([]models.SourceTypeCount, error)
}

// ClimateDataRepository defines the interface for climate reading operations
type ClimateDataRepository interface {
	Create(ctx context.Context, point *models.ClimateDataPoint) error
	GetByID(ctx context.Context, id string) (*models.ClimateDataPoint, error)
	MarkProcessed(ctx context.Context, id string) error
	List(ctx context.Context, f *query.Filter, w query.Window) ([]*models.ClimateDataPoint, error)
	Count(ctx context.Context, f *query.Filter) (int, error)
	Summary(ctx context.Context, f *query.Filter) (*models.ClimateSummary, error)
	Series(ctx context.Context, dataType models.DataType, from, to time.Time) ([]*models.ClimateDataPoint, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int, error)
}

// AlertRepository defines the interface for alert operations
type AlertRepository interface {
	Create(ctx context.Context, alert *models.Alert) error
	GetByID(ctx context.Context, id string) (*models.Alert, error)
	Acknowledge(ctx context.Context, id, accountID string, at time.Time) error
	Resolve(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, f *query.Filter, w query.Window) ([]*models.Alert, error)
	Count(ctx context.Context, f *query.Filter) (int, error)
	SeverityCounts(ctx context.Context, f *query.Filter) (map[models.Severity]int, error)
}

// MLModelRepository defines the interface for model registry operations
type MLModelRepository interface {
	Create(ctx context.Context, model *models.MLModel) error
	GetByID(ctx context.Context, id string) (*models.MLModel, error)
	SetActive(ctx context.Context, id string, active bool, at time.Time) error
	List(ctx context.Context, f *query.Filter, w query.Window) ([]*models.MLModel, error)
	Count(ctx context.Context, f *query.Filter) (int, error)
}

// TicketRepository defines the interface for support ticket operations
type TicketRepository interface {
	Create(ctx context.Context, ticket *models.SupportTicket) error
	GetByID(ctx context.Context, id string) (*models.SupportTicket, error)
	UpdateStatus(ctx context.Context, ticket *models.SupportTicket) error
	Assign(ctx context.Context, id, accountID string, at time.Time) error
	List(ctx context.Context, f *query.Filter, w query.Window) ([]*models.SupportTicket, error)
	Count(ctx context.Context, f *query.Filter) (int, error)
	StatusCounts(ctx context.Context, f *query.Filter) (map[models.TicketStatus]int, error)
}

// MetricsRepository defines the interface for system metrics samples
type MetricsRepository interface {
	Create(ctx context.Context, sample *models.SystemMetricsSample) error
	Latest(ctx context.Context) (*models.SystemMetricsSample, error)
	Range(ctx context.Context, from, to time.Time) ([]*models.SystemMetricsSample, error)
}

// AuditRepository defines the interface for the audit log
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditEntry) error
	List(ctx context.Context, f *query.Filter, w query.Window) ([]*models.AuditEntry, error)
	Count(ctx context.Context, f *query.Filter) (int, error)
}

// SessionRepository defines the interface for login sessions
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteAccountSessions(ctx context.Context, accountID string) error
}

// Repositories holds all repository interfaces
type Repositories struct {
	Account    AccountRepository
	DataSource DataSourceRepository
	Climate    ClimateDataRepository
	Alert      AlertRepository
	Model      MLModelRepository
	Ticket     TicketRepository
	Metrics    MetricsRepository
	Audit      AuditRepository
	Session    SessionRepository

	db *sqlx.DB
}

// New creates all repositories with the given database and redis connections
func New(db *database.DB, rdb *redis.Client, sessionTTL time.Duration) *Repositories {
	repos := bind(db.DB)
	repos.Session = NewSessionRepo(rdb, sessionTTL)
	repos.db = db.DB
	return repos
}

// bind creates the SQL repositories on a connection or transaction
func bind(ext sqlx.ExtContext) *Repositories {
	return &Repositories{
		Account:    NewAccountRepo(ext),
		DataSource: NewDataSourceRepo(ext),
		Climate:    NewClimateDataRepo(ext),
		Alert:      NewAlertRepo(ext),
		Model:      NewMLModelRepo(ext),
		Ticket:     NewTicketRepo(ext),
		Metrics:    NewMetricsRepo(ext),
		Audit:      NewAuditRepo(ext),
	}
}

// WithinTx runs fn against repositories bound to a single transaction and
// commits when fn returns nil. Repositories without a database (in-memory
// test doubles) run fn directly.
func (r *Repositories) WithinTx(ctx context.Context, fn func(tx *Repositories) error) error {
	if r.db == nil {
		return fn(r)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	scoped := bind(tx)
	scoped.Session = r.Session

	if err := fn(scoped); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
