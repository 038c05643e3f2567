package validation

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/climate-dashboard-api/internal/apperrors"
	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/query"
	"github.com/google/uuid"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[\w.@+-]+$`)
	phoneRegex    = regexp.MustCompile(`^\+?[0-9 ()-]{5,20}$`)
	numericRegex  = regexp.MustCompile(`^[0-9]+$`)
)

// Field limits
const (
	MinUsernameLength = 3
	MaxUsernameLength = 150
	MinPasswordLength = 8
	MaxNameLength     = 150
	MaxOrgLength      = 200
	MaxTitleLength    = 200
	MaxVersionLength  = 20
	MaxUnitLength     = 20
)

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Errors is the list of problems found in one request
type Errors []ValidationError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, ve := range e {
		parts[i] = ve.Field + ": " + ve.Message
	}
	return strings.Join(parts, "; ")
}

// Err returns nil for an empty list, otherwise a validation error naming the
// first field and wrapping the full list
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return &apperrors.Error{Kind: apperrors.KindValidation, Field: e[0].Field, Message: e[0].Message, Err: e}
}

// Validator provides validation methods
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateRegistration validates a sign-up request
func (v *Validator) ValidateRegistration(req *models.RegisterRequest) Errors {
	var errors Errors

	// Validate username
	switch {
	case req.Username == "":
		errors = append(errors, ValidationError{Field: "username", Message: "username is required"})
	case utf8.RuneCountInString(req.Username) < MinUsernameLength || utf8.RuneCountInString(req.Username) > MaxUsernameLength:
		errors = append(errors, ValidationError{
			Field:   "username",
			Message: fmt.Sprintf("username must be between %d and %d characters", MinUsernameLength, MaxUsernameLength),
			Value:   req.Username,
		})
	case !usernameRegex.MatchString(req.Username):
		errors = append(errors, ValidationError{Field: "username", Message: "username may contain only letters, digits and @/./+/-/_", Value: req.Username})
	}

	// Validate email
	errors = append(errors, v.validateEmail(req.Email)...)

	// Validate password
	errors = append(errors, v.ValidatePassword(req.Password)...)

	errors = append(errors, v.validateContact(req.FirstName, req.LastName, req.Organization, req.Phone)...)

	return errors
}

// ValidatePassword checks password strength
func (v *Validator) ValidatePassword(password string) Errors {
	var errors Errors
	switch {
	case password == "":
		errors = append(errors, ValidationError{Field: "password", Message: "password is required"})
	case utf8.RuneCountInString(password) < MinPasswordLength:
		errors = append(errors, ValidationError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", MinPasswordLength)})
	case numericRegex.MatchString(password):
		errors = append(errors, ValidationError{Field: "password", Message: "password cannot be entirely numeric"})
	}
	return errors
}

// ValidateProfile validates the fields present in a profile update
func (v *Validator) ValidateProfile(update *models.ProfileUpdate) Errors {
	var errors Errors
	if update.Email != nil {
		errors = append(errors, v.validateEmail(*update.Email)...)
	}
	errors = append(errors, v.validateContact(
		deref(update.FirstName), deref(update.LastName), deref(update.Organization), deref(update.Phone),
	)...)
	return errors
}

func (v *Validator) validateEmail(email string) Errors {
	if email == "" {
		return Errors{{Field: "email", Message: "email is required"}}
	}
	if !emailRegex.MatchString(email) {
		return Errors{{Field: "email", Message: "invalid email format", Value: email}}
	}
	return nil
}

func (v *Validator) validateContact(firstName, lastName, organization, phone string) Errors {
	var errors Errors
	if utf8.RuneCountInString(firstName) > MaxNameLength {
		errors = append(errors, ValidationError{Field: "first_name", Message: fmt.Sprintf("first_name must be at most %d characters", MaxNameLength)})
	}
	if utf8.RuneCountInString(lastName) > MaxNameLength {
		errors = append(errors, ValidationError{Field: "last_name", Message: fmt.Sprintf("last_name must be at most %d characters", MaxNameLength)})
	}
	if utf8.RuneCountInString(organization) > MaxOrgLength {
		errors = append(errors, ValidationError{Field: "organization", Message: fmt.Sprintf("organization must be at most %d characters", MaxOrgLength)})
	}
	if phone != "" && !phoneRegex.MatchString(phone) {
		errors = append(errors, ValidationError{Field: "phone", Message: "invalid phone number", Value: phone})
	}
	return errors
}

// ValidateTicket validates a support ticket request. An empty priority is
// allowed and defaults to medium.
func (v *Validator) ValidateTicket(req *models.TicketRequest) Errors {
	var errors Errors

	errors = append(errors, requiredTitle(req.Title)...)

	if strings.TrimSpace(req.Description) == "" {
		errors = append(errors, ValidationError{Field: "description", Message: "description is required"})
	}

	if req.Priority != "" && !models.ValidPriorities[models.TicketPriority(req.Priority)] {
		errors = append(errors, ValidationError{
			Field:   "priority",
			Message: "invalid priority, must be one of: low, medium, high, urgent",
			Value:   req.Priority,
		})
	}

	return errors
}

// ValidateAlert validates a request to raise an alert
func (v *Validator) ValidateAlert(req *models.AlertRequest) Errors {
	var errors Errors

	if _, ok := models.ValidAlertTypes[models.AlertType(req.AlertType)]; !ok {
		errors = append(errors, ValidationError{Field: "alert_type", Message: "invalid alert type", Value: req.AlertType})
	}
	if !models.ValidSeverities[models.Severity(req.Severity)] {
		errors = append(errors, ValidationError{
			Field:   "severity",
			Message: "invalid severity, must be one of: low, medium, high, critical",
			Value:   req.Severity,
		})
	}

	errors = append(errors, requiredTitle(req.Title)...)

	if req.DataSourceID != nil && !isValidUUID(*req.DataSourceID) {
		errors = append(errors, ValidationError{Field: "data_source_id", Message: "invalid UUID format", Value: *req.DataSourceID})
	}
	errors = append(errors, finite("threshold_value", req.ThresholdValue)...)
	errors = append(errors, finite("actual_value", req.ActualValue)...)

	return errors
}

// ValidateDataSource validates a data source registration
func (v *Validator) ValidateDataSource(req *models.DataSourceRequest) Errors {
	var errors Errors

	if strings.TrimSpace(req.Name) == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "name is required"})
	} else if utf8.RuneCountInString(req.Name) > MaxTitleLength {
		errors = append(errors, ValidationError{Field: "name", Message: fmt.Sprintf("name must be at most %d characters", MaxTitleLength)})
	}

	if _, ok := models.ValidSourceTypes[models.SourceType(req.SourceType)]; !ok {
		errors = append(errors, ValidationError{Field: "source_type", Message: "invalid source type", Value: req.SourceType})
	}

	switch {
	case req.Latitude == nil:
		errors = append(errors, ValidationError{Field: "latitude", Message: "latitude is required"})
	case math.IsNaN(*req.Latitude) || *req.Latitude < -90 || *req.Latitude > 90:
		errors = append(errors, ValidationError{Field: "latitude", Message: "latitude must be between -90 and 90", Value: *req.Latitude})
	}

	switch {
	case req.Longitude == nil:
		errors = append(errors, ValidationError{Field: "longitude", Message: "longitude is required"})
	case math.IsNaN(*req.Longitude) || *req.Longitude < -180 || *req.Longitude > 180:
		errors = append(errors, ValidationError{Field: "longitude", Message: "longitude must be between -180 and 180", Value: *req.Longitude})
	}

	errors = append(errors, finite("altitude", req.Altitude)...)
	errors = append(errors, requiredDate("installation_date", req.InstallationDate)...)

	return errors
}

// ValidateDataPoint validates a climate reading
func (v *Validator) ValidateDataPoint(req *models.DataPointRequest) Errors {
	var errors Errors

	if req.DataSourceID == "" {
		errors = append(errors, ValidationError{Field: "data_source_id", Message: "data_source_id is required"})
	} else if !isValidUUID(req.DataSourceID) {
		errors = append(errors, ValidationError{Field: "data_source_id", Message: "invalid UUID format", Value: req.DataSourceID})
	}

	if _, ok := models.ValidDataTypes[models.DataType(req.DataType)]; !ok {
		errors = append(errors, ValidationError{Field: "data_type", Message: "invalid data type", Value: req.DataType})
	}

	if req.Value == nil {
		errors = append(errors, ValidationError{Field: "value", Message: "value is required"})
	} else {
		errors = append(errors, finite("value", req.Value)...)
	}

	if strings.TrimSpace(req.Unit) == "" {
		errors = append(errors, ValidationError{Field: "unit", Message: "unit is required"})
	} else if utf8.RuneCountInString(req.Unit) > MaxUnitLength {
		errors = append(errors, ValidationError{Field: "unit", Message: fmt.Sprintf("unit must be at most %d characters", MaxUnitLength)})
	}

	errors = append(errors, requiredDate("timestamp", req.Timestamp)...)

	if req.QualityScore != nil && (math.IsNaN(*req.QualityScore) || *req.QualityScore < 0 || *req.QualityScore > 1) {
		errors = append(errors, ValidationError{Field: "quality_score", Message: "quality_score must be between 0.0 and 1.0", Value: *req.QualityScore})
	}

	return errors
}

// ValidateModel validates a model registry entry
func (v *Validator) ValidateModel(req *models.MLModelRequest) Errors {
	var errors Errors

	if strings.TrimSpace(req.Name) == "" {
		errors = append(errors, ValidationError{Field: "name", Message: "name is required"})
	}
	if _, ok := models.ValidModelTypes[models.ModelType(req.ModelType)]; !ok {
		errors = append(errors, ValidationError{Field: "model_type", Message: "invalid model type", Value: req.ModelType})
	}
	if strings.TrimSpace(req.Version) == "" {
		errors = append(errors, ValidationError{Field: "version", Message: "version is required"})
	} else if utf8.RuneCountInString(req.Version) > MaxVersionLength {
		errors = append(errors, ValidationError{Field: "version", Message: fmt.Sprintf("version must be at most %d characters", MaxVersionLength)})
	}
	if req.AccuracyScore != nil && (math.IsNaN(*req.AccuracyScore) || *req.AccuracyScore < 0 || *req.AccuracyScore > 1) {
		errors = append(errors, ValidationError{Field: "accuracy_score", Message: "accuracy_score must be between 0.0 and 1.0", Value: *req.AccuracyScore})
	}

	startErrs := requiredDate("training_period_start", req.TrainingPeriodStart)
	endErrs := requiredDate("training_period_end", req.TrainingPeriodEnd)
	errors = append(errors, startErrs...)
	errors = append(errors, endErrs...)

	if len(startErrs) == 0 && len(endErrs) == 0 {
		start, _, _ := query.ParseDate(req.TrainingPeriodStart)
		end, _, _ := query.ParseDate(req.TrainingPeriodEnd)
		if end.Before(start) {
			errors = append(errors, ValidationError{Field: "training_period_end", Message: "training_period_end must not precede training_period_start"})
		}
	}

	return errors
}

func requiredTitle(title string) Errors {
	if strings.TrimSpace(title) == "" {
		return Errors{{Field: "title", Message: "title is required"}}
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return Errors{{Field: "title", Message: fmt.Sprintf("title must be at most %d characters", MaxTitleLength)}}
	}
	return nil
}

func requiredDate(field, raw string) Errors {
	if raw == "" {
		return Errors{{Field: field, Message: field + " is required"}}
	}
	if _, _, err := query.ParseDate(raw); err != nil {
		return Errors{{Field: field, Message: "invalid date, use YYYY-MM-DD or ISO 8601", Value: raw}}
	}
	return nil
}

func finite(field string, v *float64) Errors {
	if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
		return Errors{{Field: field, Message: field + " must be a finite number"}}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// isValidUUID checks if a string is a valid UUID
func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
