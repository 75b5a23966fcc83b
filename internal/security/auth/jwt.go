package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/arbeit/talentportal/internal/domain"
	"github.com/arbeit/talentportal/internal/security"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
	ErrMissingToken = errors.New("missing bearer token")
)

// Claims is the JWT payload. Subject carries the user's email.
type Claims struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role"`
	ClientID string `json:"client_id,omitempty"`
	jwt.RegisteredClaims
}

// Principal converts validated claims into the caller identity
func (c *Claims) Principal() (security.Principal, error) {
	role, err := domain.ParseRole(c.Role)
	if err != nil {
		return security.Principal{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if role == domain.RoleClientUser && c.ClientID == "" {
		return security.Principal{}, fmt.Errorf("%w: client user without client_id", ErrTokenInvalid)
	}
	return security.Principal{Email: c.Email, Name: c.Name, Role: role, ClientID: c.ClientID}, nil
}

type TokenManager struct {
	secret string
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret, issuer string, ttl time.Duration) *TokenManager {
	if secret == "" {
		secret = "change-me-in-production"
	}
	if issuer == "" {
		issuer = "talentportal"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{secret: secret, issuer: issuer, ttl: ttl, now: time.Now}
}

// TTL is the lifetime of issued tokens
func (tm *TokenManager) TTL() time.Duration { return tm.ttl }

func (tm *TokenManager) GenerateToken(user *domain.User) (string, error) {
	return tm.generate(user, tm.ttl)
}

func (tm *TokenManager) generate(user *domain.User, expiresIn time.Duration) (string, error) {
	if user == nil || user.Email == "" || user.Role == "" {
		return "", fmt.Errorf("email and role required")
	}
	now := tm.now()
	claims := Claims{
		Email:    user.Email,
		Name:     user.Name,
		Role:     string(user.Role),
		ClientID: user.ClientID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
			Issuer:    tm.issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(tm.secret))
}

// ValidateToken returns ErrTokenExpired or ErrTokenInvalid on failure
func (tm *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tm.secret), nil
	}, jwt.WithIssuer(tm.issuer), jwt.WithTimeFunc(tm.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// ExtractToken pulls the token out of an "Authorization: Bearer <token>" header
func ExtractToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingToken
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrTokenInvalid
	}
	return parts[1], nil
}
