package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"time"
	"unicode/utf8"

	"storefront/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ActivationTokens issues and checks account activation tokens. A token is an
// HS256 JWT whose subject is the user id and whose "fpr" claim fingerprints
// the user's mutable state (password hash, last login, active flag). Any
// change to that state, including the activation itself, voids the token.
type ActivationTokens struct {
	Secret []byte
	TTL    time.Duration
	Now    func() time.Time
}

type activationClaims struct {
	Fingerprint string `json:"fpr"`
	jwt.RegisteredClaims
}

func NewActivationTokens(secret string, ttl time.Duration) *ActivationTokens {
	return &ActivationTokens{Secret: []byte(secret), TTL: ttl, Now: time.Now}
}

func (t *ActivationTokens) fingerprint(u *domain.User) string {
	mac := hmac.New(sha256.New, t.Secret)
	mac.Write([]byte(u.ID))
	mac.Write([]byte{0})
	mac.Write([]byte(u.Hash))
	mac.Write([]byte{0})
	if u.LastLogin.Valid {
		mac.Write([]byte(strconv.FormatInt(u.LastLogin.Time.UTC().Unix(), 10)))
	}
	mac.Write([]byte{0})
	mac.Write([]byte(strconv.FormatBool(u.IsActive)))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (t *ActivationTokens) Issue(u *domain.User) (string, error) {
	now := t.Now()
	claims := activationClaims{
		Fingerprint: t.fingerprint(u),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.TTL)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.Secret)
}

// Verify checks signature, expiry, that the token was issued for u and that
// u's state still matches the fingerprint.
func (t *ActivationTokens) Verify(u *domain.User, token string) error {
	var claims activationClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return t.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithSubject(u.ID),
		jwt.WithTimeFunc(t.Now),
	)
	if err != nil {
		return domain.ErrInvalidToken
	}
	if !hmac.Equal([]byte(claims.Fingerprint), []byte(t.fingerprint(u))) {
		return domain.ErrInvalidToken
	}
	return nil
}

// EncodeUID renders a user id for use in an activation URL path.
func EncodeUID(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

func DecodeUID(s string) (string, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return "", err
	}
	if len(b) == 0 || !utf8.Valid(b) {
		return "", errors.New("empty or non-utf8 uid")
	}
	return string(b), nil
}
