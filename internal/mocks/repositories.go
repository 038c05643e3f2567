package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/climate-dashboard-api/internal/apperrors"
	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/query"
	"github.com/climate-dashboard-api/internal/repository"
)

// NewRepositories wires in-memory repositories into a Repositories value.
// Deleting a data source cascades to its readings and alerts.
func NewRepositories() *repository.Repositories {
	sources := NewMockDataSourceRepository()
	climate := NewMockClimateDataRepository(sources)
	alerts := NewMockAlertRepository()

	sources.OnDelete = func(id string) {
		climate.deleteBySource(id)
		alerts.deleteBySource(id)
	}

	return &repository.Repositories{
		Account:    NewMockAccountRepository(),
		DataSource: sources,
		Climate:    climate,
		Alert:      alerts,
		Model:      NewMockMLModelRepository(),
		Ticket:     NewMockTicketRepository(),
		Metrics:    NewMockMetricsRepository(),
		Audit:      NewMockAuditRepository(),
		Session:    NewMockSessionRepository(),
	}
}

// filterPage applies a filter, a fixed ordering and a window to records
func filterPage[T any](items []T, f *query.Filter, get func(T) query.Getter, less func(a, b T) bool, w query.Window) []T {
	matched := filterAll(items, f, get)
	sort.SliceStable(matched, func(i, j int) bool { return less(matched[i], matched[j]) })
	return query.Slice(matched, w)
}

func filterAll[T any](items []T, f *query.Filter, get func(T) query.Getter) []T {
	matched := make([]T, 0, len(items))
	for _, item := range items {
		if f.Match(get(item)) {
			matched = append(matched, item)
		}
	}
	return matched
}

func newestFirst(a, b time.Time, aID, bID string) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return aID < bID
}

// MockAccountRepository is an in-memory AccountRepository
type MockAccountRepository struct {
	mu       sync.Mutex
	Accounts map[string]*models.Account
	Err      error
}

var _ repository.AccountRepository = (*MockAccountRepository)(nil)

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{Accounts: make(map[string]*models.Account)}
}

func (m *MockAccountRepository) Create(ctx context.Context, a *models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, existing := range m.Accounts {
		if existing.Username == a.Username {
			return apperrors.Conflict("username", "an account with this username already exists")
		}
		if strings.EqualFold(existing.Email, a.Email) {
			return apperrors.Conflict("email", "an account with this email already exists")
		}
	}
	cp := *a
	m.Accounts[a.ID] = &cp
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.Accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Accounts {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *MockAccountRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	a, err := m.GetByUsername(ctx, username)
	return a != nil, err
}

func (m *MockAccountRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.Accounts {
		if strings.EqualFold(a.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockAccountRepository) UpdateProfile(ctx context.Context, a *models.Account) error {
	return m.update(a.ID, func(stored *models.Account) error {
		for id, other := range m.Accounts {
			if id != a.ID && strings.EqualFold(other.Email, a.Email) {
				return apperrors.Conflict("email", "an account with this email already exists")
			}
		}
		stored.FirstName = a.FirstName
		stored.LastName = a.LastName
		stored.Email = a.Email
		stored.Organization = a.Organization
		stored.Phone = a.Phone
		stored.UpdatedAt = a.UpdatedAt
		return nil
	})
}

func (m *MockAccountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return m.update(id, func(a *models.Account) error {
		a.PasswordHash = passwordHash
		return nil
	})
}

func (m *MockAccountRepository) UpdateRole(ctx context.Context, id string, role models.Role) error {
	return m.update(id, func(a *models.Account) error {
		a.Role = role
		return nil
	})
}

func (m *MockAccountRepository) SetActive(ctx context.Context, id string, active bool) error {
	return m.update(id, func(a *models.Account) error {
		a.IsActive = active
		if !active {
			a.IsActiveSession = false
		}
		return nil
	})
}

func (m *MockAccountRepository) RecordLogin(ctx context.Context, id, ip string, at time.Time) error {
	return m.update(id, func(a *models.Account) error {
		a.LastLoginIP = &ip
		a.LastLoginAt = &at
		a.IsActiveSession = true
		return nil
	})
}

func (m *MockAccountRepository) SetActiveSession(ctx context.Context, id string, active bool) error {
	return m.update(id, func(a *models.Account) error {
		a.IsActiveSession = active
		return nil
	})
}

func (m *MockAccountRepository) update(id string, fn func(*models.Account) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	a, ok := m.Accounts[id]
	if !ok {
		return apperrors.NotFound("user")
	}
	return fn(a)
}

func (m *MockAccountRepository) all() []*models.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Account, 0, len(m.Accounts))
	for _, a := range m.Accounts {
		cp := *a
		out = append(out, &cp)
	}
	return out
}

func accountGetter(a *models.Account) query.Getter {
	return func(column string) interface{} {
		switch column {
		case "username":
			return a.Username
		case "email":
			return a.Email
		case "first_name":
			return a.FirstName
		case "last_name":
			return a.LastName
		case "organization":
			return a.Organization
		case "role":
			return a.Role.String()
		case "is_active":
			return a.IsActive
		}
		return nil
	}
}

func (m *MockAccountRepository) List(ctx context.Context, f *query.Filter, w query.Window) ([]*models.Account, error) {
	return filterPage(m.all(), f, accountGetter, func(a, b *models.Account) bool {
		return a.Username < b.Username
	}, w), nil
}

func (m *MockAccountRepository) Count(ctx context.Context, f *query.Filter) (int, error) {
	return len(filterAll(m.all(), f, accountGetter)), nil
}

func (m *MockAccountRepository) Stats(ctx context.Context) (*models.UserStats, error) {
	stats := &models.UserStats{}
	for _, a := range m.all() {
		stats.TotalUsers++
		if a.IsActiveSession {
			stats.ActiveSessions++
		}
		switch a.Role {
		case models.RoleAdministrator:
			stats.AdminUsers++
		case models.RoleAnalyst:
			stats.AnalystUsers++
		case models.RoleViewer:
			stats.ViewerUsers++
		}
	}
	return stats, nil
}

// MockDataSourceRepository is an in-memory DataSourceRepository
type MockDataSourceRepository struct {
	mu       sync.Mutex
	Sources  map[string]*models.DataSource
	OnDelete func(id string)
}

var _ repository.DataSourceRepository = (*MockDataSourceRepository)(nil)

func NewMockDataSourceRepository() *MockDataSourceRepository {
	return &MockDataSourceRepository{Sources: make(map[string]*models.DataSource)}
}

func (m *MockDataSourceRepository) Create(ctx context.Context, s *models.DataSource) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.Sources[s.ID] = &cp
	return nil
}

func (m *MockDataSourceRepository) GetByID(ctx context.Context, id string) (*models.DataSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.Sources[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, nil
}

func (m *MockDataSourceRepository) SetActive(ctx context.Context, id string, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Sources[id]
	if !ok {
		return apperrors.NotFound("data source")
	}
	s.IsActive = active
	return nil
}

func (m *MockDataSourceRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	if _, ok := m.Sources[id]; !ok {
		m.mu.Unlock()
		return apperrors.NotFound("data source")
	}
	delete(m.Sources, id)
	m.mu.Unlock()

	if m.OnDelete != nil {
		m.OnDelete(id)
	}
	return nil
}

func (m *MockDataSourceRepository) all() []*models.DataSource {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.DataSource, 0, len(m.Sources))
	for _, s := range m.Sources {
		cp := *s
		out = append(out, &cp)
	}
	return out
}

func sourceGetter(s *models.DataSource) query.Getter {
	return func(column string) interface{} {
		switch column {
		case "name":
			return s.Name
		case "source_type":
			return string(s.SourceType)
		case "is_active":
			return s.IsActive
		case "created_at":
			return s.CreatedAt
		}
		return nil
	}
}

func (m *MockDataSourceRepository) List(ctx context.Context, f *query.Filter, w query.Window) ([]*models.DataSource, error) {
	return filterPage(m.all(), f, sourceGetter, func(a, b *models.DataSource) bool {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	}, w), nil
}

func (m *MockDataSourceRepository) Count(ctx context.Context, f *query.Filter) (int, error) {
	return len(filterAll(m.all(), f, sourceGetter)), nil
}

func (m *MockDataSourceRepository) Stats(ctx context.Context) (*models.SourceStats, error) {
	stats := &models.SourceStats{}
	for _, s := range m.all() {
		stats.TotalSources++
		if s.IsActive {
			stats.ActiveSources++
		}
		switch s.SourceType {
		case models.SourceTypeSatellite:
			stats.SatelliteCount++
		case models.SourceTypeWeatherStation:
			stats.WeatherStations++
		}
	}
	return stats, nil
}

func (m *MockDataSourceRepository) TypeDistribution(ctx context.Context) ([]models.SourceTypeCount, error) {
	counts := make(map[models.SourceType]int)
	for _, s := range m.all() {
		counts[s.SourceType]++
	}
	out := make([]models.SourceTypeCount, 0, len(counts))
	for t, n := range counts {
		out = append(out, models.SourceTypeCount{SourceType: t, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourceType < out[j].SourceType })
	return out, nil
}

// MockClimateDataRepository is an in-memory ClimateDataRepository. Readings
// must reference an existing source, as the foreign key requires.
type MockClimateDataRepository struct {
	mu      sync.Mutex
	Points  map[string]*models.ClimateDataPoint
	sources *MockDataSourceRepository
}

var _ repository.ClimateDataRepository = (*MockClimateDataRepository)(nil)

func NewMockClimateDataRepository(sources *MockDataSourceRepository) *MockClimateDataRepository {
	return &MockClimateDataRepository{
		Points:  make(map[string]*models.ClimateDataPoint),
		sources: sources,
	}
}

func (m *MockClimateDataRepository) Create(ctx context.Context, p *models.ClimateDataPoint) error {
	source, _ := m.sources.GetByID(ctx, p.DataSourceID)
	if source == nil {
		return apperrors.Validation("data_source_id", "referenced record does not exist")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	cp.DataSourceName = source.Name
	m.Points[p.ID] = &cp
	return nil
}

func (m *MockClimateDataRepository) GetByID(ctx context.Context, id string) (*models.ClimateDataPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.Points[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *MockClimateDataRepository) MarkProcessed(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.Points[id]
	if !ok {
		return apperrors.NotFound("climate data")
	}
	p.Processed = true
	return nil
}

func (m *MockClimateDataRepository) deleteBySource(sourceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.Points {
		if p.DataSourceID == sourceID {
			delete(m.Points, id)
		}
	}
}

func (m *MockClimateDataRepository) all() []*models.ClimateDataPoint {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.ClimateDataPoint, 0, len(m.Points))
	for _, p := range m.Points {
		cp := *p
		out = append(out, &cp)
	}
	return out
}

func climateGetter(p *models.ClimateDataPoint) query.Getter {
	return func(column string) interface{} {
		switch column {
		case "cd.data_type":
			return string(p.DataType)
		case "cd.data_source_id":
			return p.DataSourceID
		case "cd.timestamp":
			return p.Timestamp
		case "cd.is_anomaly":
			return p.IsAnomaly
		case "cd.processed":
			return p.Processed
		case "cd.value":
			return p.Value
		}
		return nil
	}
}

func (m *MockClimateDataRepository) List(ctx context.Context, f *query.Filter, w query.Window) ([]*models.ClimateDataPoint, error) {
	return filterPage(m.all(), f, climateGetter, func(a, b *models.ClimateDataPoint) bool {
		return newestFirst(a.Timestamp, b.Timestamp, a.ID, b.ID)
	}, w), nil
}

func (m *MockClimateDataRepository) Count(ctx context.Context, f *query.Filter) (int, error) {
	return len(filterAll(m.all(), f, climateGetter)), nil
}

func (m *MockClimateDataRepository) Summary(ctx context.Context, f *query.Filter) (*models.ClimateSummary, error) {
	points := filterAll(m.all(), f, climateGetter)
	summary := &models.ClimateSummary{ByType: []models.DataTypeStat{}}

	byType := make(map[models.DataType]*models.DataTypeStat)
	var sum, tempSum float64
	var tempCount int
	for _, p := range points {
		summary.TotalRecords++
		if p.IsAnomaly {
			summary.AnomalyCount++
		}
		sum += p.Value
		summary.MinValue = minPtr(summary.MinValue, p.Value)
		summary.MaxValue = maxPtr(summary.MaxValue, p.Value)

		switch p.DataType {
		case models.DataTypeTemperature:
			tempSum += p.Value
			tempCount++
		case models.DataTypeCO2Level:
			summary.MaxCO2 = maxPtr(summary.MaxCO2, p.Value)
		}

		stat, ok := byType[p.DataType]
		if !ok {
			stat = &models.DataTypeStat{DataType: p.DataType, Min: p.Value, Max: p.Value}
			byType[p.DataType] = stat
		}
		stat.Count++
		stat.Avg += p.Value
		if p.Value < stat.Min {
			stat.Min = p.Value
		}
		if p.Value > stat.Max {
			stat.Max = p.Value
		}
	}

	if summary.TotalRecords > 0 {
		avg := sum / float64(summary.TotalRecords)
		summary.AvgValue = &avg
	}
	if tempCount > 0 {
		avg := tempSum / float64(tempCount)
		summary.AvgTemperature = &avg
	}
	for _, stat := range byType {
		stat.Avg /= float64(stat.Count)
		summary.ByType = append(summary.ByType, *stat)
	}
	sort.Slice(summary.ByType, func(i, j int) bool { return summary.ByType[i].DataType < summary.ByType[j].DataType })

	return summary, nil
}

func (m *MockClimateDataRepository) Series(ctx context.Context, dataType models.DataType, from, to time.Time) ([]*models.ClimateDataPoint, error) {
	out := []*models.ClimateDataPoint{}
	for _, p := range m.all() {
		if p.DataType == dataType && !p.Timestamp.Before(from) && !p.Timestamp.After(to) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (m *MockClimateDataRepository) CountCreatedSince(ctx context.Context, since time.Time) (int, error) {
	n := 0
	for _, p := range m.all() {
		if !p.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func minPtr(cur *float64, v float64) *float64 {
	if cur == nil || v < *cur {
		return &v
	}
	return cur
}

func maxPtr(cur *float64, v float64) *float64 {
	if cur == nil || v > *cur {
		return &v
	}
	return cur
}

// MockAlertRepository is an in-memory AlertRepository
type MockAlertRepository struct {
	mu     sync.Mutex
	Alerts map[string]*models.Alert
	Err    error
}

var _ repository.AlertRepository = (*MockAlertRepository)(nil)

func NewMockAlertRepository() *MockAlertRepository {
	return &MockAlertRepository{Alerts: make(map[string]*models.Alert)}
}

func (m *MockAlertRepository) Create(ctx context.Context, a *models.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.Alerts[a.ID] = &cp
	return nil
}

func (m *MockAlertRepository) GetByID(ctx context.Context, id string) (*models.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.Alerts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (m *MockAlertRepository) Acknowledge(ctx context.Context, id, accountID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	a, ok := m.Alerts[id]
	if !ok {
		return apperrors.NotFound("alert")
	}
	a.AcknowledgedBy = &accountID
	a.AcknowledgedAt = &at
	return nil
}

func (m *MockAlertRepository) Resolve(ctx context.Context, id string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.Alerts[id]
	if !ok {
		return apperrors.NotFound("alert")
	}
	a.IsActive = false
	a.ResolvedAt = &at
	return nil
}

func (m *MockAlertRepository) deleteBySource(sourceID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, a := range m.Alerts {
		if a.DataSourceID != nil && *a.DataSourceID == sourceID {
			delete(m.Alerts, id)
		}
	}
}

func (m *MockAlertRepository) all() []*models.Alert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Alert, 0, len(m.Alerts))
	for _, a := range m.Alerts {
		cp := *a
		out = append(out, &cp)
	}
	return out
}

func alertGetter(a *models.Alert) query.Getter {
	return func(column string) interface{} {
		switch column {
		case "is_active":
			return a.IsActive
		case "severity":
			return string(a.Severity)
		case "alert_type":
			return string(a.AlertType)
		case "created_at":
			return a.CreatedAt
		case "title":
			return a.Title
		case "description":
			return a.Description
		}
		return nil
	}
}

func (m *MockAlertRepository) List(ctx context.Context, f *query.Filter, w query.Window) ([]*models.Alert, error) {
	return filterPage(m.all(), f, alertGetter, func(a, b *models.Alert) bool {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	}, w), nil
}

func (m *MockAlertRepository) Count(ctx context.Context, f *query.Filter) (int, error) {
	return len(filterAll(m.all(), f, alertGetter)), nil
}

func (m *MockAlertRepository) SeverityCounts(ctx context.Context, f *query.Filter) (map[models.Severity]int, error) {
	counts := make(map[models.Severity]int)
	for _, a := range filterAll(m.all(), f, alertGetter) {
		counts[a.Severity]++
	}
	return counts, nil
}

// MockMLModelRepository is an in-memory MLModelRepository
type MockMLModelRepository struct {
	mu     sync.Mutex
	Models map[string]*models.MLModel
}

var _ repository.MLModelRepository = (*MockMLModelRepository)(nil)

func NewMockMLModelRepository() *MockMLModelRepository {
	return &MockMLModelRepository{Models: make(map[string]*models.MLModel)}
}

func (m *MockMLModelRepository) Create(ctx context.Context, model *models.MLModel) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *model
	m.Models[model.ID] = &cp
	return nil
}

func (m *MockMLModelRepository) GetByID(ctx context.Context, id string) (*models.MLModel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if model, ok := m.Models[id]; ok {
		cp := *model
		return &cp, nil
	}
	return nil, nil
}

func (m *MockMLModelRepository) SetActive(ctx context.Context, id string, active bool, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	model, ok := m.Models[id]
	if !ok {
		return apperrors.NotFound("model")
	}
	model.IsActive = active
	model.LastUpdated = at
	return nil
}

func (m *MockMLModelRepository) all() []*models.MLModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.MLModel, 0, len(m.Models))
	for _, model := range m.Models {
		cp := *model
		out = append(out, &cp)
	}
	return out
}

func modelGetter(model *models.MLModel) query.Getter {
	return func(column string) interface{} {
		switch column {
		case "model_type":
			return string(model.ModelType)
		case "is_active":
			return model.IsActive
		case "name":
			return model.Name
		case "description":
			return model.Description
		}
		return nil
	}
}

func (m *MockMLModelRepository) List(ctx context.Context, f *query.Filter, w query.Window) ([]*models.MLModel, error) {
	return filterPage(m.all(), f, modelGetter, func(a, b *models.MLModel) bool {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	}, w), nil
}

func (m *MockMLModelRepository) Count(ctx context.Context, f *query.Filter) (int, error) {
	return len(filterAll(m.all(), f, modelGetter)), nil
}

// MockTicketRepository is an in-memory TicketRepository
type MockTicketRepository struct {
	mu      sync.Mutex
	Tickets map[string]*models.SupportTicket
	Err     error
}

var _ repository.TicketRepository = (*MockTicketRepository)(nil)

func NewMockTicketRepository() *MockTicketRepository {
	return &MockTicketRepository{Tickets: make(map[string]*models.SupportTicket)}
}

func (m *MockTicketRepository) Create(ctx context.Context, t *models.SupportTicket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	cp := *t
	m.Tickets[t.ID] = &cp
	return nil
}

func (m *MockTicketRepository) GetByID(ctx context.Context, id string) (*models.SupportTicket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.Tickets[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, nil
}

func (m *MockTicketRepository) UpdateStatus(ctx context.Context, t *models.SupportTicket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.Tickets[t.ID]
	if !ok {
		return apperrors.NotFound("ticket")
	}
	stored.Status = t.Status
	stored.UpdatedAt = t.UpdatedAt
	stored.ResolvedAt = t.ResolvedAt
	return nil
}

func (m *MockTicketRepository) Assign(ctx context.Context, id, accountID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.Tickets[id]
	if !ok {
		return apperrors.NotFound("ticket")
	}
	stored.AssignedTo = &accountID
	stored.UpdatedAt = at
	return nil
}

func (m *MockTicketRepository) all() []*models.SupportTicket {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.SupportTicket, 0, len(m.Tickets))
	for _, t := range m.Tickets {
		cp := *t
		out = append(out, &cp)
	}
	return out
}

func ticketGetter(t *models.SupportTicket) query.Getter {
	return func(column string) interface{} {
		switch column {
		case "status":
			return string(t.Status)
		case "priority":
			return string(t.Priority)
		case "title":
			return t.Title
		case "description":
			return t.Description
		case "created_by":
			return t.CreatedBy
		}
		return nil
	}
}

func (m *MockTicketRepository) List(ctx context.Context, f *query.Filter, w query.Window) ([]*models.SupportTicket, error) {
	return filterPage(m.all(), f, ticketGetter, func(a, b *models.SupportTicket) bool {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	}, w), nil
}

func (m *MockTicketRepository) Count(ctx context.Context, f *query.Filter) (int, error) {
	return len(filterAll(m.all(), f, ticketGetter)), nil
}

func (m *MockTicketRepository) StatusCounts(ctx context.Context, f *query.Filter) (map[models.TicketStatus]int, error) {
	counts := make(map[models.TicketStatus]int)
	for _, t := range filterAll(m.all(), f, ticketGetter) {
		counts[t.Status]++
	}
	return counts, nil
}

// MockMetricsRepository is an in-memory MetricsRepository
type MockMetricsRepository struct {
	mu      sync.Mutex
	Samples []*models.SystemMetricsSample
}

var _ repository.MetricsRepository = (*MockMetricsRepository)(nil)

func NewMockMetricsRepository() *MockMetricsRepository {
	return &MockMetricsRepository{}
}

func (m *MockMetricsRepository) Create(ctx context.Context, s *models.SystemMetricsSample) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.Samples = append(m.Samples, &cp)
	return nil
}

func (m *MockMetricsRepository) Latest(ctx context.Context) (*models.SystemMetricsSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *models.SystemMetricsSample
	for _, s := range m.Samples {
		if latest == nil || s.Timestamp.After(latest.Timestamp) {
			latest = s
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (m *MockMetricsRepository) Range(ctx context.Context, from, to time.Time) ([]*models.SystemMetricsSample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*models.SystemMetricsSample{}
	for _, s := range m.Samples {
		if !s.Timestamp.Before(from) && !s.Timestamp.After(to) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// Len returns the number of stored samples
func (m *MockMetricsRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Samples)
}

// MockAuditRepository is an in-memory AuditRepository
type MockAuditRepository struct {
	mu      sync.Mutex
	Entries []*models.AuditEntry
}

var _ repository.AuditRepository = (*MockAuditRepository)(nil)

func NewMockAuditRepository() *MockAuditRepository {
	return &MockAuditRepository{}
}

func (m *MockAuditRepository) Create(ctx context.Context, e *models.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.Entries = append(m.Entries, &cp)
	return nil
}

func (m *MockAuditRepository) all() []*models.AuditEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.AuditEntry, len(m.Entries))
	for i, e := range m.Entries {
		cp := *e
		out[i] = &cp
	}
	return out
}

func auditGetter(e *models.AuditEntry) query.Getter {
	return func(column string) interface{} {
		switch column {
		case "action":
			return e.Action
		case "created_at":
			return e.CreatedAt
		case "target_type":
			return e.TargetType
		case "target_id":
			return e.TargetID
		case "old_value":
			return e.OldValue
		case "new_value":
			return e.NewValue
		}
		return nil
	}
}

func (m *MockAuditRepository) List(ctx context.Context, f *query.Filter, w query.Window) ([]*models.AuditEntry, error) {
	return filterPage(m.all(), f, auditGetter, func(a, b *models.AuditEntry) bool {
		return newestFirst(a.CreatedAt, b.CreatedAt, a.ID, b.ID)
	}, w), nil
}

func (m *MockAuditRepository) Count(ctx context.Context, f *query.Filter) (int, error) {
	return len(filterAll(m.all(), f, auditGetter)), nil
}

// Find returns the entries recorded for action, oldest first
func (m *MockAuditRepository) Find(action string) []*models.AuditEntry {
	var out []*models.AuditEntry
	for _, e := range m.all() {
		if e.Action == action {
			out = append(out, e)
		}
	}
	return out
}

// MockSessionRepository is an in-memory SessionRepository
type MockSessionRepository struct {
	mu       sync.Mutex
	Sessions map[string]*models.Session
}

var _ repository.SessionRepository = (*MockSessionRepository)(nil)

func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{Sessions: make(map[string]*models.Session)}
}

func (m *MockSessionRepository) Create(ctx context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.Sessions[s.ID] = &cp
	return nil
}

func (m *MockSessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.Sessions[id]
	if !ok || time.Now().After(s.ExpiresAt) {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *MockSessionRepository) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Sessions, id)
	return nil
}

func (m *MockSessionRepository) DeleteAccountSessions(ctx context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.Sessions {
		if s.AccountID == accountID {
			delete(m.Sessions, id)
		}
	}
	return nil
}

// CountFor returns the number of sessions held by an account
func (m *MockSessionRepository) CountFor(accountID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.Sessions {
		if s.AccountID == accountID {
			n++
		}
	}
	return n
}
