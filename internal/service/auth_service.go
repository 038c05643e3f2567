package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/climate-dashboard-api/internal/access"
	"github.com/climate-dashboard-api/internal/apperrors"
	"github.com/climate-dashboard-api/internal/config"
	"github.com/climate-dashboard-api/internal/models"
	"github.com/climate-dashboard-api/internal/observability/metrics"
	"github.com/climate-dashboard-api/internal/repository"
	"github.com/climate-dashboard-api/internal/validation"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// Auth outcomes recorded in metrics
const (
	outcomeSuccess   = "success"
	outcomeInvalid   = "invalid"
	outcomeDisabled  = "disabled"
	outcomeThrottled = "throttled"
	outcomeConflict  = "conflict"
)

// authService is the concrete implementation of AuthService
type authService struct {
	repos     *repository.Repositories
	tokens    *tokenService
	validator *validation.Validator
	cfg       *config.AuthConfig
	attempts  *cache.Cache
	dummyHash []byte
	metrics   *metrics.Metrics
	now       func() time.Time
	log       zerolog.Logger
}

// newAuthService creates a new AuthService. Failed logins are counted per
// username for the lockout window.
func newAuthService(repos *repository.Repositories, tokens *tokenService, validator *validation.Validator,
	cfg *config.AuthConfig, m *metrics.Metrics, clock func() time.Time, log zerolog.Logger) *authService {
	s := &authService{
		repos:     repos,
		tokens:    tokens,
		validator: validator,
		cfg:       cfg,
		attempts:  cache.New(cfg.LockoutWindow, 2*cfg.LockoutWindow),
		metrics:   m,
		now:       clock,
		log:       log.With().Str("service", "auth").Logger(),
	}

	// Unknown usernames are compared against this hash so they cost as much
	// as a wrong password.
	hash, err := bcrypt.GenerateFromPassword([]byte(uuid.New().String()), cfg.BcryptCost)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to generate placeholder password hash")
	}
	s.dummyHash = hash
	return s
}

// Register creates a Viewer account
func (s *authService) Register(ctx context.Context, req *models.RegisterRequest) (*models.Account, error) {
	account, err := s.create(ctx, req, models.RoleViewer)
	if err != nil {
		outcome := outcomeInvalid
		if apperrors.Is(err, apperrors.KindConflict) {
			outcome = outcomeConflict
		}
		s.metrics.RecordAuth("register", outcome)
		return nil, err
	}

	s.metrics.RecordAuth("register", outcomeSuccess)
	s.log.Info().Str("username", account.Username).Str("account_id", account.ID).Msg("Account registered")
	return account, nil
}

// CreateAdmin bootstraps an Administrator account
func (s *authService) CreateAdmin(ctx context.Context, req *models.RegisterRequest) (*models.Account, error) {
	account, err := s.create(ctx, req, models.RoleAdministrator)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("username", account.Username).Msg("Administrator account created")
	return account, nil
}

func (s *authService) create(ctx context.Context, req *models.RegisterRequest, role models.Role) (*models.Account, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := s.validator.ValidateRegistration(req).Err(); err != nil {
		return nil, err
	}

	// Checked in this order so a reused username is reported even when the
	// email is also taken
	exists, err := s.repos.Account.UsernameExists(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, apperrors.Conflict("username", "an account with this username already exists")
	}

	exists, err = s.repos.Account.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, apperrors.Conflict("email", "an account with this email already exists")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	account := &models.Account{
		ID:           uuid.New().String(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Role:         role,
		Organization: strings.TrimSpace(req.Organization),
		Phone:        strings.TrimSpace(req.Phone),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Unique constraints still guard against a concurrent registration
	if err := s.repos.Account.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Login verifies credentials and opens a session
func (s *authService) Login(ctx context.Context, req *models.LoginRequest, meta ClientMeta) (*LoginResult, error) {
	username := strings.TrimSpace(req.Username)
	key := strings.ToLower(username)

	if s.throttled(key) {
		s.metrics.RecordAuth("login", outcomeThrottled)
		s.log.Warn().Str("username", username).Str("ip", meta.IP).Msg("Login throttled")
		return nil, apperrors.ErrTooManyAttempts
	}

	account, err := s.repos.Account.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if !s.passwordMatches(account, req.Password) {
		s.recordFailure(key)
		s.metrics.RecordAuth("login", outcomeInvalid)
		s.log.Warn().Str("username", username).Str("ip", meta.IP).Msg("Failed login attempt")
		return nil, apperrors.ErrInvalidCredentials
	}

	if !account.IsActive {
		s.metrics.RecordAuth("login", outcomeDisabled)
		s.log.Warn().Str("username", username).Str("ip", meta.IP).Msg("Login attempt on deactivated account")
		return nil, apperrors.ErrAccountDisabled
	}

	s.attempts.Delete(key)

	now := s.now()
	session := &models.Session{
		ID:        uuid.New().String(),
		AccountID: account.ID,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
	}
	if err := s.repos.Session.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.tokens.Issue(session, account.Role)
	if err != nil {
		return nil, err
	}

	if err := s.repos.Account.RecordLogin(ctx, account.ID, meta.IP, now); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}
	ip := meta.IP
	account.LastLoginIP = &ip
	account.LastLoginAt = &now
	account.IsActiveSession = true

	s.metrics.RecordAuth("login", outcomeSuccess)
	s.log.Info().Str("username", account.Username).Str("ip", meta.IP).Str("role", account.Role.String()).Msg("Successful login")

	return &LoginResult{
		Account:   account,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		Redirect:  access.DashboardPath(account.Role),
	}, nil
}

// passwordMatches always runs one bcrypt comparison, even when account is nil
func (s *authService) passwordMatches(account *models.Account, password string) bool {
	hash := s.dummyHash
	if account != nil {
		hash = []byte(account.PasswordHash)
	}
	ok := bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
	return ok && account != nil
}

func (s *authService) throttled(key string) bool {
	n, ok := s.attempts.Get(key)
	return ok && n.(int) >= s.cfg.MaxLoginAttempts
}

func (s *authService) recordFailure(key string) {
	if _, err := s.attempts.IncrementInt(key, 1); err != nil {
		s.attempts.Set(key, 1, cache.DefaultExpiration)
	}
}

// Logout ends the session carried by token. Unknown or expired tokens are
// ignored.
func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil
	}

	if err := s.repos.Session.Delete(ctx, claims.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if err := s.repos.Account.SetActiveSession(ctx, claims.Subject, false); err != nil {
		return fmt.Errorf("failed to clear session flag: %w", err)
	}

	s.metrics.RecordAuth("logout", outcomeSuccess)
	s.log.Info().Str("account_id", claims.Subject).Msg("Logged out")
	return nil
}

// Authenticate resolves a session token to its active account
func (s *authService) Authenticate(ctx context.Context, token string) (*models.Account, error) {
	if token == "" {
		return nil, apperrors.ErrUnauthenticated
	}

	claims, err := s.tokens.Parse(token)
	if err != nil {
		s.log.Debug().Err(err).Msg("Rejected session token")
		return nil, apperrors.ErrUnauthenticated
	}

	session, err := s.repos.Session.Get(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil || session.AccountID != claims.Subject {
		return nil, apperrors.ErrUnauthenticated
	}

	account, err := s.repos.Account.GetByID(ctx, session.AccountID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		return nil, apperrors.ErrUnauthenticated
	}
	if !account.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}
	return account, nil
}

// UpdateProfile applies the non-nil fields of update to actor's account
func (s *authService) UpdateProfile(ctx context.Context, actor *models.Account, update *models.ProfileUpdate) (*models.Account, error) {
	if err := access.RequireCapability(actor, models.RoleViewer); err != nil {
		return nil, err
	}
	if err := s.validator.ValidateProfile(update).Err(); err != nil {
		return nil, err
	}

	account, err := s.repos.Account.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		return nil, apperrors.NotFound("user")
	}

	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		if !strings.EqualFold(email, account.Email) {
			exists, err := s.repos.Account.EmailExists(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("failed to check email: %w", err)
			}
			if exists {
				return nil, apperrors.Conflict("email", "an account with this email already exists")
			}
		}
		account.Email = email
	}
	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	apply(&account.FirstName, update.FirstName)
	apply(&account.LastName, update.LastName)
	apply(&account.Organization, update.Organization)
	apply(&account.Phone, update.Phone)
	account.UpdatedAt = s.now()

	if err := s.repos.Account.UpdateProfile(ctx, account); err != nil {
		return nil, err
	}

	s.log.Info().Str("account_id", account.ID).Msg("Profile updated")
	return account, nil
}

// ChangePassword replaces actor's password after verifying the current one.
// Every other session of the account is revoked.
func (s *authService) ChangePassword(ctx context.Context, actor *models.Account, current, next string) error {
	if err := access.RequireCapability(actor, models.RoleViewer); err != nil {
		return err
	}

	account, err := s.repos.Account.GetByID(ctx, actor.ID)
	if err != nil {
		return fmt.Errorf("failed to load account: %w", err)
	}
	if account == nil {
		return apperrors.NotFound("user")
	}
	if !s.passwordMatches(account, current) {
		return apperrors.Validation("current_password", "current password is incorrect")
	}
	if err := s.validator.ValidatePassword(next).Err(); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), s.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.repos.Account.UpdatePassword(ctx, account.ID, string(hash)); err != nil {
		return err
	}
	if err := s.repos.Session.DeleteAccountSessions(ctx, account.ID); err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}

	s.log.Info().Str("account_id", account.ID).Msg("Password changed")
	return nil
}

// RequestPasswordReset records a reset request. The outcome never reveals
// whether the email belongs to an account.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return apperrors.Validation("email", "email is required")
	}

	exists, err := s.repos.Account.EmailExists(ctx, email)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to look up password reset email")
		return nil
	}
	s.log.Info().Bool("known_account", exists).Msg("Password reset requested")
	return nil
}
