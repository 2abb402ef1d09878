package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Now-Tiger/Flow/internal/domain"
	"github.com/Now-Tiger/Flow/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// passwordCost is the bcrypt work factor for stored password hashes.
const passwordCost = 10

var errInvalidCredentials = fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)

type authService struct {
	users    repository.UserRepo
	observer UseCaseObserver
}

func NewAuthService(users repository.UserRepo, observers ...UseCaseObserver) AuthService {
	return &authService{users: users, observer: useCaseObserverOrNoop(observers)}
}

func (s *authService) Signup(ctx context.Context, in SignupInput) (u *domain.User, err error) {
	email := domain.NormalizeEmail(in.Email)
	done := startUseCase(ctx, s.observer, "signup", map[string]any{"email": email})
	defer func() { done(err) }()

	if email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}
	if _, lookupErr := s.users.GetByEmail(ctx, email); lookupErr == nil {
		return nil, fmt.Errorf("%w: email already registered", domain.ErrConflict)
	} else if !errors.Is(lookupErr, domain.ErrNotFound) {
		return nil, storeErr("looking up user", lookupErr)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), passwordCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	u = &domain.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err = s.users.Create(ctx, u); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: email already registered", domain.ErrConflict)
		}
		return nil, storeErr("creating user", err)
	}
	return u, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (u *domain.User, err error) {
	email = domain.NormalizeEmail(email)
	done := startUseCase(ctx, s.observer, "login", map[string]any{"email": email})
	defer func() { done(err) }()

	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}
	u, err = s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, storeErr("looking up user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, errInvalidCredentials
	}
	return u, nil
}

func (s *authService) Me(ctx context.Context, userID string) (*domain.User, error) {
	if err := requireSession(userID); err != nil {
		return nil, err
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr("loading user", err)
	}
	return u, nil
}

func (s *authService) EnsureUser(ctx context.Context, email string) (*domain.User, error) {
	email = domain.NormalizeEmail(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, storeErr("looking up user", err)
	}
	return s.Signup(ctx, SignupInput{Email: email, Password: uuid.New().String()})
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
