package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/climate-dashboard-api/internal/apperrors"
	"github.com/google/uuid"
)

// Recognized parameter keys
const (
	KeyDataType   = "dataType"
	KeySourceID   = "sourceId"
	KeySourceType = "sourceType"
	KeyStartDate  = "startDate"
	KeyEndDate    = "endDate"
	KeyStatus     = "status"
	KeySearchText = "searchText"
	KeyRoleFilter = "roleFilter"
	KeyPage       = "page"
	KeyIsAnomaly  = "isAnomaly"
	KeyProcessed  = "processed"
	KeyIsActive   = "isActive"
	KeySeverity   = "severity"
	KeyAlertType  = "alertType"
	KeyPriority   = "priority"
	KeyModelType  = "modelType"
	KeyAction     = "action"
)

// Params holds raw listing parameters. Empty values are treated as absent.
type Params map[string]string

// FromValues collects the first value of every query key
func FromValues(values url.Values) Params {
	p := make(Params, len(values))
	for k, v := range values {
		if len(v) > 0 {
			p[k] = v[0]
		}
	}
	return p
}

// Get returns the trimmed value for key and whether it is present
func (p Params) Get(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

// FieldKind selects how a raw value becomes a condition
type FieldKind int

const (
	KindEnum FieldKind = iota
	KindUUID
	KindBool
	KindDateFrom
	KindDateTo
	KindSearch
	KindMapped
)

// Field binds a parameter key to a column
type Field struct {
	Key     string
	Column  string
	Kind    FieldKind
	Allowed []string             // KindEnum
	Columns []string             // KindSearch
	Mapping map[string]Condition // KindMapped
}

// View describes a fixed listing: page size, ordering and filterable keys
type View struct {
	Name     string
	PageSize int
	OrderBy  string
	Fields   []Field
}

// Build turns params into a filter. Each present recognized key adds exactly
// one condition; unrecognized keys are ignored. Scopes are appended as-is.
func (v *View) Build(p Params, scopes ...Condition) (*Filter, error) {
	f := &Filter{}
	for _, field := range v.Fields {
		raw, ok := p.Get(field.Key)
		if !ok {
			continue
		}
		cond, err := field.condition(raw)
		if err != nil {
			return nil, err
		}
		f.Conditions = append(f.Conditions, cond)
	}
	f.Conditions = append(f.Conditions, scopes...)
	return f, nil
}

// Window computes the pagination window for a filtered total
func (v *View) Window(p Params, total int) Window {
	raw, _ := p.Get(KeyPage)
	return Paginate(total, ParsePage(raw), v.PageSize)
}

func (f Field) condition(raw string) (Condition, error) {
	switch f.Kind {
	case KindEnum:
		for _, allowed := range f.Allowed {
			if raw == allowed {
				return Eq(f.Column, raw), nil
			}
		}
		return Condition{}, apperrors.Validationf(f.Key, "invalid value %q, must be one of: %s", raw, strings.Join(f.Allowed, ", "))
	case KindUUID:
		if _, err := uuid.Parse(raw); err != nil {
			return Condition{}, apperrors.Validationf(f.Key, "invalid identifier %q", raw)
		}
		return Eq(f.Column, raw), nil
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return Condition{}, apperrors.Validationf(f.Key, "invalid boolean %q", raw)
		}
		return Eq(f.Column, b), nil
	case KindDateFrom:
		t, _, err := ParseDate(raw)
		if err != nil {
			return Condition{}, apperrors.Validationf(f.Key, "invalid date %q, use YYYY-MM-DD or RFC 3339", raw)
		}
		return Gte(f.Column, t), nil
	case KindDateTo:
		t, dateOnly, err := ParseDate(raw)
		if err != nil {
			return Condition{}, apperrors.Validationf(f.Key, "invalid date %q, use YYYY-MM-DD or RFC 3339", raw)
		}
		if dateOnly {
			t = t.AddDate(0, 0, 1).Add(-time.Microsecond)
		}
		return Lte(f.Column, t), nil
	case KindSearch:
		return Search(f.Columns, raw), nil
	case KindMapped:
		if cond, ok := f.Mapping[raw]; ok {
			return cond, nil
		}
		keys := make([]string, 0, len(f.Mapping))
		for k := range f.Mapping {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return Condition{}, apperrors.Validationf(f.Key, "invalid value %q, must be one of: %s", raw, strings.Join(keys, ", "))
	}
	return Condition{}, apperrors.Validation(f.Key, "unsupported filter")
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseDate accepts RFC 3339, a local date-time, or a bare date (UTC).
// dateOnly reports whether the input carried no time of day.
func ParseDate(raw string) (t time.Time, dateOnly bool, err error) {
	for _, layout := range dateLayouts {
		if t, err = time.Parse(layout, raw); err == nil {
			return t.UTC(), false, nil
		}
	}
	t, err = time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), true, nil
}
