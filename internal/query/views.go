package query

import (
	"sort"

	"github.com/climate-dashboard-api/internal/models"
)

// Page sizes per listing
const (
	SourcesPageSize  = 25
	ClimatePageSize  = 50
	AlertsPageSize   = 20
	TicketsPageSize  = 15
	AccountsPageSize = 20
	ModelsPageSize   = 25
	AuditPageSize    = 50
)

// SourcesView lists data sources, newest first
var SourcesView = &View{
	Name:     "data_sources",
	PageSize: SourcesPageSize,
	OrderBy:  "created_at DESC, id",
	Fields: []Field{
		{Key: KeySourceType, Column: "source_type", Kind: KindEnum, Allowed: labelKeys(models.ValidSourceTypes)},
		{Key: KeyIsActive, Column: "is_active", Kind: KindBool},
		{Key: KeySearchText, Kind: KindSearch, Columns: []string{"name"}},
	},
}

// ClimateDataView lists readings, most recent first
var ClimateDataView = &View{
	Name:     "climate_data",
	PageSize: ClimatePageSize,
	OrderBy:  "cd.timestamp DESC, cd.id",
	Fields: []Field{
		{Key: KeyDataType, Column: "cd.data_type", Kind: KindEnum, Allowed: labelKeys(models.ValidDataTypes)},
		{Key: KeySourceID, Column: "cd.data_source_id", Kind: KindUUID},
		{Key: KeyStartDate, Column: "cd.timestamp", Kind: KindDateFrom},
		{Key: KeyEndDate, Column: "cd.timestamp", Kind: KindDateTo},
		{Key: KeyIsAnomaly, Column: "cd.is_anomaly", Kind: KindBool},
		{Key: KeyProcessed, Column: "cd.processed", Kind: KindBool},
	},
}

// AlertsView lists alerts, most recent first
var AlertsView = &View{
	Name:     "alerts",
	PageSize: AlertsPageSize,
	OrderBy:  "created_at DESC, id",
	Fields: []Field{
		{Key: KeyStatus, Kind: KindMapped, Mapping: map[string]Condition{
			"active":   Eq("is_active", true),
			"resolved": Eq("is_active", false),
		}},
		{Key: KeySeverity, Column: "severity", Kind: KindEnum, Allowed: severityKeys()},
		{Key: KeyAlertType, Column: "alert_type", Kind: KindEnum, Allowed: labelKeys(models.ValidAlertTypes)},
		{Key: KeyStartDate, Column: "created_at", Kind: KindDateFrom},
		{Key: KeyEndDate, Column: "created_at", Kind: KindDateTo},
		{Key: KeySearchText, Kind: KindSearch, Columns: []string{"title", "description"}},
	},
}

// TicketsView lists support tickets, most recent first
var TicketsView = &View{
	Name:     "support_tickets",
	PageSize: TicketsPageSize,
	OrderBy:  "created_at DESC, id",
	Fields: []Field{
		{Key: KeyStatus, Column: "status", Kind: KindEnum, Allowed: ticketStatusKeys()},
		{Key: KeyPriority, Column: "priority", Kind: KindEnum, Allowed: priorityKeys()},
		{Key: KeySearchText, Kind: KindSearch, Columns: []string{"title", "description"}},
	},
}

// AccountsView lists accounts alphabetically
var AccountsView = &View{
	Name:     "accounts",
	PageSize: AccountsPageSize,
	OrderBy:  "username ASC",
	Fields: []Field{
		{Key: KeyRoleFilter, Column: "role", Kind: KindEnum, Allowed: roleKeys()},
		{Key: KeyStatus, Kind: KindMapped, Mapping: map[string]Condition{
			"active":   Eq("is_active", true),
			"inactive": Eq("is_active", false),
		}},
		{Key: KeySearchText, Kind: KindSearch, Columns: []string{"username", "email", "first_name", "last_name", "organization"}},
	},
}

// ModelsView lists registered ML models, newest first
var ModelsView = &View{
	Name:     "ml_models",
	PageSize: ModelsPageSize,
	OrderBy:  "created_at DESC, id",
	Fields: []Field{
		{Key: KeyModelType, Column: "model_type", Kind: KindEnum, Allowed: labelKeys(models.ValidModelTypes)},
		{Key: KeyIsActive, Column: "is_active", Kind: KindBool},
		{Key: KeySearchText, Kind: KindSearch, Columns: []string{"name", "description"}},
	},
}

// AuditView lists audit entries, most recent first
var AuditView = &View{
	Name:     "audit_log",
	PageSize: AuditPageSize,
	OrderBy:  "created_at DESC, id",
	Fields: []Field{
		{Key: KeyAction, Column: "action", Kind: KindEnum, Allowed: auditActions},
		{Key: KeyStartDate, Column: "created_at", Kind: KindDateFrom},
		{Key: KeyEndDate, Column: "created_at", Kind: KindDateTo},
		{Key: KeySearchText, Kind: KindSearch, Columns: []string{"target_type", "target_id", "old_value", "new_value"}},
	},
}

var auditActions = []string{
	models.AuditActionRoleChange,
	models.AuditActionStatusToggle,
	models.AuditActionAlertAcknowledge,
	models.AuditActionAlertResolve,
	models.AuditActionAlertRaise,
	models.AuditActionTicketCreate,
	models.AuditActionTicketStatus,
	models.AuditActionTicketAssign,
	models.AuditActionSourceCreate,
	models.AuditActionSourceActive,
	models.AuditActionSourceDelete,
	models.AuditActionModelRegister,
	models.AuditActionModelActive,
}

func labelKeys[K ~string](m map[K]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}

func boolKeys[K ~string](m map[K]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	return keys
}

func severityKeys() []string     { return boolKeys(models.ValidSeverities) }
func priorityKeys() []string     { return boolKeys(models.ValidPriorities) }
func ticketStatusKeys() []string { return boolKeys(models.ValidTicketStatuses) }

func roleKeys() []string {
	keys := make([]string, 0, len(models.AllRoles))
	for _, r := range models.AllRoles {
		keys = append(keys, r.String())
	}
	return keys
}
