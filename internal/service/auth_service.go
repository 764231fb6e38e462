package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"character-hub/internal/domain"
	"character-hub/internal/favorites"
	"character-hub/internal/repository"
	"character-hub/internal/token"
)

var (
	// ErrPasswordFormat indicates a password outside 6-16 alphanumeric characters.
	ErrPasswordFormat = errors.New("password does not meet the format requirements")
	// ErrUsernameFormat indicates a username outside 1-8 alphanumeric or CJK characters.
	ErrUsernameFormat = errors.New("username does not meet the format requirements")
	// ErrEmailFormat indicates a malformed email address.
	ErrEmailFormat = errors.New("email does not meet the format requirements")
	// ErrConfirmationMismatch indicates the confirmation password differs from the password.
	ErrConfirmationMismatch = errors.New("confirm password does not match")
	// ErrUsernameTaken indicates the username is already registered.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already exists")
	// ErrUsernameNotFound indicates a login attempt for an unknown username.
	ErrUsernameNotFound = errors.New("username is wrong")
	// ErrPasswordIncorrect indicates a login attempt with the wrong password.
	ErrPasswordIncorrect = errors.New("password is wrong")
)

var (
	passwordPattern = regexp.MustCompile(`^[A-Za-z0-9]{6,16}$`)
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9\x{4e00}-\x{9fa5}]{1,8}$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// guestTrialQuota is the number of uses a fresh guest identity starts with.
const guestTrialQuota = 5

// RegisterInput carries the registration candidate as submitted.
type RegisterInput struct {
	Username      string
	Password      string
	PasswordAgain string
	Email         string
}

// AuthService validates credentials and mints identity tokens.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) error
	Login(ctx context.Context, username, password string) (string, error)
	Guest(ctx context.Context) (string, int, error)
}

type authService struct {
	accounts repository.AccountRepository
	sets     favorites.SetStore
	codec    *token.Codec
}

func NewAuthService(accounts repository.AccountRepository, sets favorites.SetStore, codec *token.Codec) AuthService {
	return &authService{
		accounts: accounts,
		sets:     sets,
		codec:    codec,
	}
}

// Register runs the candidate through the fixed check order; the first
// failing check decides the error. Success stores the credential but does
// not log the user in.
func (s *authService) Register(ctx context.Context, input RegisterInput) error {
	if !passwordPattern.MatchString(input.Password) {
		return ErrPasswordFormat
	}
	if !usernamePattern.MatchString(input.Username) {
		return ErrUsernameFormat
	}
	if !emailPattern.MatchString(input.Email) {
		return ErrEmailFormat
	}
	if input.PasswordAgain != input.Password {
		return ErrConfirmationMismatch
	}

	if _, err := s.accounts.FindByUsername(ctx, input.Username); err == nil {
		return ErrUsernameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("check username: %w", err)
	}

	if _, err := s.accounts.FindByEmail(ctx, input.Email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("check email: %w", err)
	}

	account := &domain.Account{
		Username: input.Username,
		Password: input.Password,
		Email:    input.Email,
	}
	if _, err := s.accounts.Create(ctx, account); err != nil {
		return fmt.Errorf("store account: %w", err)
	}
	return nil
}

// Login checks the submitted credential against the store and mints a
// logged-in token on match. An unknown username and a wrong password are
// reported as distinct errors.
func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)

	account, err := s.accounts.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUsernameNotFound
		}
		return "", fmt.Errorf("find account: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(account.Password), []byte(password)) != 1 {
		return "", ErrPasswordIncorrect
	}

	signed, err := s.codec.Issue(account.Username, false)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return signed, nil
}

// Guest mints a guest identity under a fresh random subject and seeds its
// trial quota in the set store.
func (s *authService) Guest(ctx context.Context) (string, int, error) {
	subject := uuid.NewString()

	if err := s.sets.SetGuestQuota(ctx, subject, guestTrialQuota); err != nil {
		return "", 0, fmt.Errorf("seed guest quota: %w", err)
	}

	signed, err := s.codec.Issue(subject, true)
	if err != nil {
		return "", 0, fmt.Errorf("issue guest token: %w", err)
	}
	return signed, guestTrialQuota, nil
}
