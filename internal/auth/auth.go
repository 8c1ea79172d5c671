package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/Joseda-hg/kitchencheck/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired session")
	ErrForbidden          = errors.New("insufficient permissions")
	ErrNoSession          = errors.New("not logged in")
)

const minPasswordLength = 8

// Session identifies the user a repository call is made for. It is passed
// explicitly to every call.
type Session struct {
	UserID   string     `json:"user_id"`
	FullName string     `json:"full_name"`
	Role     model.Role `json:"role"`
}

func SessionFor(user model.User) Session {
	return Session{UserID: user.ID, FullName: user.FullName, Role: user.Role}
}

func (s Session) IsManager() bool {
	return s.Role == model.RoleManager
}

// RequireRole reports ErrForbidden unless the session holds role. Managers
// satisfy every role.
func RequireRole(session Session, role model.Role) error {
	if session.UserID == "" {
		return ErrNoSession
	}
	if session.Role == role || session.IsManager() {
		return nil
	}
	return ErrForbidden
}

func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(user model.User, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type claims struct {
	Role     model.Role `json:"role"`
	FullName string     `json:"name"`
	jwt.RegisteredClaims
}

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret string, ttl time.Duration) (*Tokens, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("session secret is required")
	}
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: time.Now}, nil
}

func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

func (t *Tokens) Issue(session Session) (string, error) {
	issuedAt := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Role:     session.Role,
		FullName: session.FullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    session.UserID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(t.ttl)),
		},
	})
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return signed, nil
}

func (t *Tokens) Verify(raw string) (Session, error) {
	parsed, err := jwt.ParseWithClaims(raw, &claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Session{}, ErrInvalidToken
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || c.Issuer == "" {
		return Session{}, ErrInvalidToken
	}
	return Session{UserID: c.Issuer, FullName: c.FullName, Role: c.Role}, nil
}
