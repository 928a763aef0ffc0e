package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"creepycorners/internal/auth"
	"creepycorners/internal/cache"
	"creepycorners/internal/models"
	"creepycorners/internal/observability"
	"creepycorners/internal/repository"
	"creepycorners/internal/validation"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput is the validated body of POST /api/register.
type RegisterInput struct {
	Email    string
	Password string
}

// LoginInput is the validated body of POST /api/login.
type LoginInput struct {
	Email    string
	Password string
}

// Session is an issued token together with the user it belongs to.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// AuthService registers users, checks credentials and manages session tokens.
type AuthService struct {
	users    repository.UserRepository
	tokens   *auth.TokenManager
	cache    *cache.Cache
	revoke   bool
	hashCost int
}

// NewAuthService builds an AuthService. When revokeOnLogout is set and c has a
// Redis client, Logout blacklists the token id until it would have expired.
func NewAuthService(users repository.UserRepository, tokens *auth.TokenManager, c *cache.Cache, revokeOnLogout bool) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		cache:    c,
		revoke:   revokeOnLogout,
		hashCost: bcrypt.DefaultCost,
	}
}

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *AuthService) WithHashCost(cost int) *AuthService {
	s.hashCost = cost
	return s
}

// Register stores a new user with a bcrypt hash of the password.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (user *models.User, err error) {
	ctx, span := observability.StartSpan(ctx, "auth.Register")
	defer func() {
		observability.EndSpan(span, err)
		recordAuthOutcome("register", err)
	}()

	email := strings.TrimSpace(in.Email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, models.NewDuplicateIdentityError()
	} else if !models.HasCode(err, models.CodeNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user = &models.User{Email: email, Password: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, models.NewDuplicateIdentityError()
		}
		return nil, err
	}
	return user, nil
}

// Login checks credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (session *Session, err error) {
	ctx, span := observability.StartSpan(ctx, "auth.Login")
	defer func() {
		observability.EndSpan(span, err)
		recordAuthOutcome("login", err)
	}()

	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return nil, &models.AppError{Code: models.CodeNotFound, Message: "User not found"}
		}
		return nil, err
	}
	span.SetAttributes(attribute.Int("user.id", int(user.ID)))

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, models.NewInvalidCredentialsError()
	}

	return s.IssueSession(user)
}

// IssueSession signs a token for user.
func (s *AuthService) IssueSession(user *models.User) (*Session, error) {
	token, id, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &Session{Token: token, ExpiresAt: id.ExpiresAt, User: user}, nil
}

// Verify resolves a token to the identity it asserts.
func (s *AuthService) Verify(token string) (auth.Identity, error) {
	return s.tokens.Verify(token)
}

// TokenTTL is the lifetime of issued tokens.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokens.TTL()
}

// Logout revokes the token server-side when revocation is enabled. Otherwise
// the token stays valid until it expires and only the client copy is dropped.
func (s *AuthService) Logout(ctx context.Context, id auth.Identity) error {
	if !s.RevocationEnabled() || id.TokenID == "" {
		return nil
	}
	ttl := time.Until(id.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := s.cache.Mark(ctx, cache.RevokedTokenKey(id.TokenID), ttl); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// RevocationEnabled reports whether logout blacklists tokens.
func (s *AuthService) RevocationEnabled() bool {
	return s.revoke && s.cache.Enabled()
}

// IsRevoked reports whether the token id was blacklisted by Logout.
func (s *AuthService) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if !s.RevocationEnabled() || tokenID == "" {
		return false, nil
	}
	return s.cache.Marked(ctx, cache.RevokedTokenKey(tokenID))
}

func recordAuthOutcome(action string, err error) {
	outcome := "success"
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		outcome = strings.ToLower(appErr.Code)
	} else if err != nil {
		outcome = "error"
	}
	observability.AuthAttempts.WithLabelValues(action, outcome).Inc()
}
