package service

import (
	"context"
	"time"

	"github.com/climate-dashboard-api/internal/config"
	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/observability/metrics"
	"github.com/climate-dashboard-api/internal/query"
	"github.com/climate-dashboard-api/internal/repository"
	"github.com/climate-dashboard-api/internal/sysmon"
	"github.com/climate-dashboard-api/internal/validation"
	"github.com/rs/zerolog"
)

// ClientMeta describes where a request came from
type ClientMeta struct {
	IP        string
	UserAgent string
}

// LoginResult is returned on successful authentication
type LoginResult struct {
	Account   *models.Account
	Token     string
	ExpiresAt time.Time
	Redirect  string
}

// AuthService defines the interface for authentication and self-service
// account operations
type AuthService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.Account, error)
	CreateAdmin(ctx context.Context, req *models.RegisterRequest) (*models.Account, error)
	Login(ctx context.Context, req *models.LoginRequest, meta ClientMeta) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*models.Account, error)
	UpdateProfile(ctx context.Context, actor *models.Account, update *models.ProfileUpdate) (*models.Account, error)
	ChangePassword(ctx context.Context, actor *models.Account, current, next string) error
	RequestPasswordReset(ctx context.Context, email string) error
}

// RoleChange reports the outcome of a promotion or demotion
type RoleChange struct {
	Account *models.Account
	OldRole models.Role
	NewRole models.Role
}

// RoleChangeError is a rejected role change. OldRole is empty when the
// target could not be loaded; NewRole is the requested value as given.
type RoleChangeError struct {
	OldRole string
	NewRole string
	Err     error
}

func (e *RoleChangeError) Error() string { return e.Err.Error() }

func (e *RoleChangeError) Unwrap() error { return e.Err }

// AccountListing is the admin user management page
type AccountListing struct {
	Accounts *query.Page[*models.Account] `json:"accounts"`
	Stats    *models.UserStats            `json:"stats"`
}

// AdminService defines the interface for account administration
type AdminService interface {
	ListAccounts(ctx context.Context, actor *models.Account, p query.Params) (*AccountListing, error)
	GetAccount(ctx context.Context, actor *models.Account, id string) (*models.Account, error)
	ChangeRole(ctx context.Context, actor *models.Account, targetID, newRole string) (*RoleChange, error)
	ToggleStatus(ctx context.Context, actor *models.Account, targetID string) (*models.Account, error)
	ListAudit(ctx context.Context, actor *models.Account, p query.Params) (*query.Page[*models.AuditEntry], error)
}

// SourceListing is the data source management page
type SourceListing struct {
	Sources     *query.Page[*models.DataSource] `json:"sources"`
	Stats       *models.SourceStats             `json:"stats"`
	SourceTypes map[models.SourceType]string    `json:"source_types"`
}

// ClimateListing is the climate data page. Summary covers every filtered
// reading, not only the current page.
type ClimateListing struct {
	Data      *query.Page[*models.ClimateDataPoint] `json:"data"`
	Summary   *models.ClimateSummary                `json:"summary"`
	DataTypes map[models.DataType]string            `json:"data_types"`
}

// HomeStats are the public landing page counters
type HomeStats struct {
	ActiveSources   int                        `json:"total_data_sources"`
	TotalDataPoints int                        `json:"total_climate_data"`
	ActiveAlerts    int                        `json:"active_alerts"`
	RecentData      []*models.ClimateDataPoint `json:"recent_data"`
}

// ClimateService defines the interface for data sources and readings
type ClimateService interface {
	ListSources(ctx context.Context, actor *models.Account, p query.Params) (*SourceListing, error)
	CreateSource(ctx context.Context, actor *models.Account, req *models.DataSourceRequest) (*models.DataSource, error)
	SetSourceActive(ctx context.Context, actor *models.Account, id string, active bool) (*models.DataSource, error)
	DeleteSource(ctx context.Context, actor *models.Account, id string) error
	ListData(ctx context.Context, actor *models.Account, p query.Params) (*ClimateListing, error)
	RecordDataPoint(ctx context.Context, actor *models.Account, req *models.DataPointRequest) (*models.ClimateDataPoint, error)
	MarkProcessed(ctx context.Context, actor *models.Account, id string) (*models.ClimateDataPoint, error)
	Chart(ctx context.Context, actor *models.Account, dataType string, days int) (*models.ChartSeries, error)
	HomeStats(ctx context.Context) (*HomeStats, error)
}

// AlertListing is the alerts page. Counts cover the filtered, role-scoped set.
type AlertListing struct {
	Alerts         *query.Page[*models.Alert] `json:"alerts"`
	SeverityCounts map[models.Severity]int    `json:"severity_counts"`
}

// AlertService defines the interface for climate alerts
type AlertService interface {
	List(ctx context.Context, actor *models.Account, p query.Params) (*AlertListing, error)
	Raise(ctx context.Context, actor *models.Account, req *models.AlertRequest) (*models.Alert, error)
	Acknowledge(ctx context.Context, actor *models.Account, id string) (*models.Alert, error)
	Resolve(ctx context.Context, actor *models.Account, id string) (*models.Alert, error)
}

// TicketListing is the support page. Counts cover the filtered, owner-scoped set.
type TicketListing struct {
	Tickets      *query.Page[*models.SupportTicket] `json:"tickets"`
	StatusCounts map[models.TicketStatus]int        `json:"status_counts"`
}

// TicketService defines the interface for support tickets
type TicketService interface {
	List(ctx context.Context, actor *models.Account, p query.Params) (*TicketListing, error)
	Get(ctx context.Context, actor *models.Account, id string) (*models.SupportTicket, error)
	Create(ctx context.Context, actor *models.Account, req *models.TicketRequest) (*models.SupportTicket, error)
	UpdateStatus(ctx context.Context, actor *models.Account, id, status string) (*models.SupportTicket, error)
	Assign(ctx context.Context, actor *models.Account, id, assigneeID string) (*models.SupportTicket, error)
}

// ModelListing is the ML model registry page
type ModelListing struct {
	Models       *query.Page[*models.MLModel] `json:"models"`
	TotalModels  int                          `json:"total_models"`
	ActiveModels int                          `json:"active_models"`
}

// ModelService defines the interface for the ML model registry
type ModelService interface {
	List(ctx context.Context, actor *models.Account, p query.Params) (*ModelListing, error)
	Register(ctx context.Context, actor *models.Account, req *models.MLModelRequest) (*models.MLModel, error)
	SetActive(ctx context.Context, actor *models.Account, id string, active bool) (*models.MLModel, error)
}

// MetricsService defines the interface for host metrics collection
type MetricsService interface {
	StartCollector(ctx context.Context)
	StopCollector()
	Collect(ctx context.Context) (*models.SystemMetricsSample, error)
	Latest(ctx context.Context) (*models.SystemMetricsSample, error)
	Series(ctx context.Context, actor *models.Account, hours int) (*models.MetricsSeries, error)
}

// DashboardService defines the interface for the role dashboards
type DashboardService interface {
	Admin(ctx context.Context, actor *models.Account) (*AdminDashboard, error)
	Analyst(ctx context.Context, actor *models.Account) (*AnalystDashboard, error)
	Viewer(ctx context.Context, actor *models.Account) (*ViewerDashboard, error)
}

// Sampler reads host resource usage
type Sampler interface {
	Sample(ctx context.Context) (*sysmon.Snapshot, error)
}

// AuditNotifier receives audit entries after they are committed
type AuditNotifier interface {
	Publish(ctx context.Context, entry *models.AuditEntry) error
}

// Deps holds optional collaborators. Nil members disable the feature.
type Deps struct {
	Metrics  *metrics.Metrics
	Sampler  Sampler
	Notifier AuditNotifier
	Clock    func() time.Time
}

// Services holds all service interfaces
type Services struct {
	Auth      AuthService
	Admin     AdminService
	Climate   ClimateService
	Alert     AlertService
	Ticket    TicketService
	Model     ModelService
	Metrics   MetricsService
	Dashboard DashboardService
}

// NewServices creates all services
func NewServices(repos *repository.Repositories, cfg *config.Config, log zerolog.Logger, deps Deps) *Services {
	clock := deps.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}

	validator := validation.NewValidator()
	audit := newAuditor(repos, deps.Notifier, deps.Metrics, clock, log)
	tokens := newTokenService([]byte(cfg.Auth.SessionSecret))

	climateSvc := newClimateService(repos, validator, audit, deps.Metrics, clock, log)
	alertSvc := newAlertService(repos, validator, audit, clock, log)
	modelSvc := newModelService(repos, validator, audit, clock, log)
	metricsSvc := newMetricsService(repos, deps.Sampler, deps.Metrics, cfg.Metrics.SampleInterval, clock, log)

	return &Services{
		Auth:      newAuthService(repos, tokens, validator, &cfg.Auth, deps.Metrics, clock, log),
		Admin:     newAdminService(repos, audit, clock, log),
		Climate:   climateSvc,
		Alert:     alertSvc,
		Ticket:    newTicketService(repos, validator, audit, clock, log),
		Model:     modelSvc,
		Metrics:   metricsSvc,
		Dashboard: newDashboardService(repos, climateSvc, metricsSvc, alertSvc, modelSvc, clock, log),
	}
}
