package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/validate"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/crypto/bcrypt"
)

// ActivationMailer delivers the activation link to a new account.
type ActivationMailer interface {
	SendActivation(ctx context.Context, to, username, link string, validFor time.Duration) error
}

type AuthService struct {
	Users   *repos.UserRepo
	Tokens  *ActivationTokens
	Mail    ActivationMailer
	BaseURL string
	Cost    int
	Now     func() time.Time
}

func NewAuthService(users *repos.UserRepo, tokens *ActivationTokens, mail ActivationMailer, baseURL string) *AuthService {
	return &AuthService{
		Users:   users,
		Tokens:  tokens,
		Mail:    mail,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Cost:    bcrypt.DefaultCost,
		Now:     time.Now,
	}
}

// ActivationLink builds the URL mailed to the user.
func (s *AuthService) ActivationLink(u *domain.User, token string) string {
	return fmt.Sprintf("%s/activate/%s/%s", s.BaseURL, EncodeUID(u.ID), token)
}

// Register creates an inactive account and mails its activation link. The
// user row stays in place when the mail fails; the account simply remains
// inactive and the error is returned.
func (s *AuthService) Register(ctx context.Context, f validate.Registration) (u *domain.User, err error) {
	ctx, span := tracer.Start(ctx, "account.register")
	defer func() { endSpan(span, err) }()

	if err := f.Check(); err != nil {
		return nil, err
	}
	if !strings.EqualFold(f.Email, f.ConfirmEmail) {
		return nil, domain.ErrEmailMismatch
	}
	if f.Password1 != f.Password2 {
		return nil, domain.ErrPasswordMismatch
	}
	if _, err := s.Users.ByEmail(ctx, f.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if _, err := s.Users.ByUsername(ctx, f.Username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(f.Password1), s.Cost)
	if err != nil {
		return nil, err
	}
	u = &domain.User{
		ID:        uuid.NewString(),
		Username:  f.Username,
		Email:     f.Email,
		Hash:      string(hash),
		Role:      domain.RoleUser,
		IsActive:  false,
		CreatedAt: s.Now().UTC(),
	}
	if err := s.Users.Create(ctx, *u); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", u.ID))

	token, err := s.Tokens.Issue(u)
	if err != nil {
		return u, fmt.Errorf("issue activation token: %w", err)
	}
	if err := s.Mail.SendActivation(ctx, u.Email, u.Username, s.ActivationLink(u, token), s.Tokens.TTL); err != nil {
		return u, fmt.Errorf("send activation mail: %w", err)
	}
	return u, nil
}

// Activate flips is_active for the user named by uidb64 when token is valid.
// Malformed ids, unknown users and bad tokens all yield ErrInvalidToken.
func (s *AuthService) Activate(ctx context.Context, uidb64, token string) (u *domain.User, err error) {
	ctx, span := tracer.Start(ctx, "account.activate")
	defer func() { endSpan(span, err) }()

	uid, err := DecodeUID(uidb64)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	u, err = s.Users.ByID(ctx, uid)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if err := s.Tokens.Verify(u, token); err != nil {
		return nil, err
	}
	if err := s.Users.SetActive(ctx, u.ID); err != nil {
		return nil, err
	}
	u.IsActive = true
	return u, nil
}

// Login checks credentials for a username or email. Inactive accounts are
// refused even with the right password.
func (s *AuthService) Login(ctx context.Context, login, password string) (*domain.User, error) {
	u, err := s.Users.ByLogin(ctx, strings.TrimSpace(login))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, domain.ErrBadCreds
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, domain.ErrBadCreds
	}
	if !u.IsActive {
		return nil, domain.ErrInactive
	}
	now := s.Now().UTC()
	if err := s.Users.TouchLastLogin(ctx, u.ID, now); err != nil {
		return nil, err
	}
	u.LastLogin.Time, u.LastLogin.Valid = now, true
	return u, nil
}

func (s *AuthService) CurrentUser(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, domain.ErrNotFound
	}
	return s.Users.ByID(ctx, id)
}
