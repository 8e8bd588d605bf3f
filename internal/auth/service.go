package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ayush/pokedex/internal/models"
)

// UserStore defines the interface for account persistence.
type UserStore interface {
	CreateUser(ctx context.Context, username, email, hashedPw string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// Sessions issues and resolves session ids.
type Sessions interface {
	Create(ctx context.Context, userID int64) (string, error)
	Get(ctx context.Context, sessionID string) (int64, error)
	Delete(ctx context.Context, sessionID string) error
}

// Service implements signup, login, logout and session checks.
type Service struct {
	users     UserStore
	sessions  Sessions
	log       *zap.Logger
	validate  *validator.Validate
	cost      int
	dummyHash []byte
}

func NewService(users UserStore, sessions Sessions, log *zap.Logger) *Service {
	return newService(users, sessions, log, bcrypt.DefaultCost)
}

func newService(users UserStore, sessions Sessions, log *zap.Logger, cost int) *Service {
	// Compared against when the identifier is unknown so both failure
	// paths spend the same bcrypt time.
	dummy, err := bcrypt.GenerateFromPassword([]byte("pokedex-dummy-password"), cost)
	if err != nil {
		panic(err)
	}
	return &Service{
		users:     users,
		sessions:  sessions,
		log:       log,
		validate:  newValidator(),
		cost:      cost,
		dummyHash: dummy,
	}
}

// Signup validates the form, enforces username/email uniqueness and stores
// the account with a bcrypt hash of the password.
func (s *Service) Signup(ctx context.Context, form models.SignupForm) (*models.User, error) {
	verr := checkForm(s.validate, form)
	if verr == nil {
		verr = models.NewValidationError()
	}

	if _, bad := verr.Fields["email"]; !bad {
		taken, err := s.exists(ctx, s.users.GetUserByEmail, form.Email)
		if err != nil {
			return nil, err
		}
		if taken {
			addDuplicate(verr, models.ErrDuplicateEmail)
		}
	}
	if _, bad := verr.Fields["username"]; !bad {
		taken, err := s.exists(ctx, s.users.GetUserByUsername, form.Username)
		if err != nil {
			return nil, err
		}
		if taken {
			addDuplicate(verr, models.ErrDuplicateUsername)
		}
	}
	if !verr.Empty() {
		return nil, verr
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(form.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, form.Username, form.Email, string(hashed))
	switch {
	case errors.Is(err, models.ErrDuplicateEmail), errors.Is(err, models.ErrDuplicateUsername):
		// Lost a race with a concurrent signup; the unique constraint decided.
		verr = models.NewValidationError()
		addDuplicate(verr, err)
		return nil, verr
	case err != nil:
		return nil, err
	}

	s.log.Info("account created", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	return user, nil
}

func addDuplicate(verr *models.ValidationError, cause error) {
	switch {
	case errors.Is(cause, models.ErrDuplicateEmail):
		verr.Add("email", "That email address is already registered. Please use a different one or log in.", models.ErrDuplicateEmail)
	case errors.Is(cause, models.ErrDuplicateUsername):
		verr.Add("username", "That username is already taken. Please choose a different one.", models.ErrDuplicateUsername)
	}
}

func (s *Service) exists(ctx context.Context, get func(context.Context, string) (*models.User, error), key string) (bool, error) {
	_, err := get(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, models.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// Login checks the credentials and opens a session. identifier is tried as
// an email first and then as a username. Unknown identifiers and wrong
// passwords both return models.ErrBadCredential.
func (s *Service) Login(ctx context.Context, form models.LoginForm) (string, *models.User, error) {
	if verr := checkForm(s.validate, form); verr != nil {
		return "", nil, verr
	}

	user, err := s.users.GetUserByEmail(ctx, form.Identifier)
	if errors.Is(err, models.ErrNotFound) {
		user, err = s.users.GetUserByUsername(ctx, form.Identifier)
	}
	switch {
	case errors.Is(err, models.ErrNotFound):
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(form.Password))
		s.log.Info("login failed: unknown identifier")
		return "", nil, models.ErrBadCredential
	case err != nil:
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(form.Password)); err != nil {
		s.log.Info("login failed: wrong password", zap.Int64("user_id", user.ID))
		return "", nil, models.ErrBadCredential
	}

	sid, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}
	s.log.Info("login", zap.Int64("user_id", user.ID))
	return sid, user, nil
}

// Logout ends the session. Unknown or empty ids are ignored.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

// RequireAuth resolves a session id to its account or returns
// models.ErrUnauthenticated.
func (s *Service) RequireAuth(ctx context.Context, sessionID string) (*models.User, error) {
	if sessionID == "" {
		return nil, models.ErrUnauthenticated
	}
	userID, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		_ = s.sessions.Delete(ctx, sessionID)
		return nil, models.ErrUnauthenticated
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
