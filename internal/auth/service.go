package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/timesheet/internal"
	"github.com/frahmantamala/timesheet/internal/core/datamodel/timesheet"
	"github.com/frahmantamala/timesheet/internal/core/events"
	"github.com/frahmantamala/timesheet/internal/store"
)

var errPasswordUnchanged = errors.New("password already migrated")

type ServiceAPI interface {
	Register(ctx context.Context, dto RegisterDTO) (*AuthResponse, error)
	Login(ctx context.Context, dto LoginDTO) (*AuthResponse, error)
	Authenticate(ctx context.Context, token string) (*internal.Principal, error)
}

type Service struct {
	store      *store.Store
	tokens     TokenGeneratorAPI
	publisher  events.Publisher
	bcryptCost int
	logger     *slog.Logger
}

func NewService(s *store.Store, tokens TokenGeneratorAPI, publisher events.Publisher, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		store:      s,
		tokens:     tokens,
		publisher:  publisher,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*AuthResponse, error) {
	if err := ValidateCredentials(dto.Email, dto.Password, dto.Name); err != nil {
		s.logger.Warn("registration rejected", "email", dto.Email, "error", err)
		return nil, err
	}

	hash, err := HashPassword(dto.Password, s.bcryptCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, ErrPasswordTooLong
	}
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	user := timesheet.User{
		Email:        dto.Email,
		Name:         strings.TrimSpace(dto.Name),
		PasswordHash: hash,
		IsAdmin:      IsAdminEmail(dto.Email),
		CreatedAt:    time.Now().UTC(),
	}

	change, err := s.store.Mutate(func(snap *timesheet.Snapshot) error {
		if err := ValidateRegistration(snap, dto.Email, dto.Password, dto.Name); err != nil {
			return err
		}
		snap.Users[user.Email] = user
		return nil
	})
	if err != nil {
		s.logger.Warn("registration rejected", "email", dto.Email, "error", err)
		return nil, err
	}
	if err := store.Publish(ctx, s.publisher, change, "user.registered"); err != nil {
		s.logger.Error("failed to publish store change", "error", err)
	}

	s.logger.Info("user registered", "email", user.Email, "is_admin", user.IsAdmin)
	return s.issue(user)
}

// Login fails the same way for an unknown email and a wrong password.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*AuthResponse, error) {
	var (
		user   timesheet.User
		exists bool
	)
	s.store.View(func(snap *timesheet.Snapshot) {
		user, exists = snap.Users[dto.Email]
	})

	if !exists || !s.passwordMatches(user, dto.Password) {
		s.logger.Warn("login failed", "email", dto.Email)
		return nil, ErrInvalidCredentials
	}

	if user.PasswordHash == "" {
		s.upgradePassword(ctx, user.Email, dto.Password)
	}

	return s.issue(user)
}

func (s *Service) passwordMatches(user timesheet.User, password string) bool {
	if user.PasswordHash != "" {
		return VerifyPassword(user.PasswordHash, password) == nil
	}
	if user.Password == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(user.Password), []byte(password)) == 1
}

// upgradePassword replaces a stored plaintext password with its hash. A failure
// is logged and leaves the plaintext in place for the next attempt.
func (s *Service) upgradePassword(ctx context.Context, email, password string) {
	hash, err := HashPassword(password, s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash legacy password", "email", email, "error", err)
		return
	}

	change, err := s.store.Mutate(func(snap *timesheet.Snapshot) error {
		u, exists := snap.Users[email]
		if !exists || u.PasswordHash != "" || u.Password != password {
			return errPasswordUnchanged
		}
		u.PasswordHash = hash
		u.Password = ""
		snap.Users[email] = u
		return nil
	})
	if errors.Is(err, errPasswordUnchanged) {
		return
	}
	if err != nil {
		s.logger.Error("failed to store password hash", "email", email, "error", err)
		return
	}
	if err := store.Publish(ctx, s.publisher, change, "user.password_hashed"); err != nil {
		s.logger.Error("failed to publish store change", "error", err)
	}
	s.logger.Info("legacy password hashed", "email", email)
}

// Authenticate resolves a bearer token to the stored user. The admin flag comes
// from the store, not from the token.
func (s *Service) Authenticate(ctx context.Context, token string) (*internal.Principal, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	var (
		user   timesheet.User
		exists bool
	)
	s.store.View(func(snap *timesheet.Snapshot) {
		user, exists = snap.Users[claims.Email]
	})
	if !exists {
		return nil, internal.ErrInvalidToken
	}

	return &internal.Principal{
		Email:   user.Email,
		Name:    user.Name,
		IsAdmin: user.IsAdmin,
	}, nil
}

func (s *Service) issue(user timesheet.User) (*AuthResponse, error) {
	token, expiresAt, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue token", err)
	}
	return &AuthResponse{
		User:        user.Public(),
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
