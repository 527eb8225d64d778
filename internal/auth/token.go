package auth

import (
	"errors"
	"strconv"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/account-service/internal/domain"
)

// ErrInvalidToken is returned for any token that fails verification,
// including expired and wrongly-signed ones.
var ErrInvalidToken = errors.New("invalid token")

// TokenManager issues and verifies the two JWT kinds. Access and refresh
// tokens are signed with distinct secrets so a leaked access token cannot be
// replayed against the refresh endpoint.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenManager builds a manager. Unset secrets are a configuration error.
func NewTokenManager(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*TokenManager, error) {
	if accessSecret == "" {
		return nil, errors.New("access token secret is not configured")
	}
	if refreshSecret == "" {
		return nil, errors.New("refresh token secret is not configured")
	}
	if accessTTL <= 0 {
		accessTTL = time.Hour
	}
	if refreshTTL <= 0 {
		refreshTTL = 30 * 24 * time.Hour
	}
	return &TokenManager{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// Claims describes the JWT payload shared by both token kinds.
type Claims struct {
	Name string      `json:"name"`
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// IssueAccessToken signs a short-lived access token for the identity.
func (tm *TokenManager) IssueAccessToken(identity domain.Identity) (string, time.Time, error) {
	return tm.issue(identity, tm.accessSecret, tm.accessTTL)
}

// IssueRefreshToken signs a long-lived refresh token for the identity.
func (tm *TokenManager) IssueRefreshToken(identity domain.Identity) (string, time.Time, error) {
	return tm.issue(identity, tm.refreshSecret, tm.refreshTTL)
}

// IssuePair issues both token kinds for the identity.
func (tm *TokenManager) IssuePair(identity domain.Identity) (*domain.TokenPair, error) {
	access, accessExp, err := tm.IssueAccessToken(identity)
	if err != nil {
		return nil, err
	}
	refresh, refreshExp, err := tm.IssueRefreshToken(identity)
	if err != nil {
		return nil, err
	}
	return &domain.TokenPair{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// VerifyAccessToken validates an access token and returns its identity.
func (tm *TokenManager) VerifyAccessToken(token string) (*domain.Identity, error) {
	return tm.verify(token, tm.accessSecret)
}

// VerifyRefreshToken validates a refresh token and returns its identity.
func (tm *TokenManager) VerifyRefreshToken(token string) (*domain.Identity, error) {
	return tm.verify(token, tm.refreshSecret)
}

func (tm *TokenManager) issue(identity domain.Identity, secret []byte, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		Name: identity.Name,
		Role: identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(identity.UserID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (tm *TokenManager) verify(tokenStr string, secret []byte) (*domain.Identity, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}
	role, err := domain.ParseRole(string(claims.Role))
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &domain.Identity{UserID: id, Name: claims.Name, Role: role}, nil
}
