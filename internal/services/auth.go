package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/belajar-alkitab-backend/internal/platform/apierr"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/ctxutil"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/logger"
)

// AuthService verifies access tokens minted by the identity provider. The
// backend never sees passwords; sign-in happens against the provider.
type AuthService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	// IssueAccessToken mints a token the way the provider does. Used by the
	// seeding CLI and tests.
	IssueAccessToken(userID uuid.UUID, email string, ttl time.Duration) (string, error)
}

type AuthConfig struct {
	SecretKey string
	// Audience, when set, must appear in the token's aud claim.
	Audience string
}

type accessClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

type authService struct {
	log *logger.Logger
	cfg AuthConfig
}

func NewAuthService(baseLog *logger.Logger, cfg AuthConfig) AuthService {
	return &authService{log: baseLog.With("service", "AuthService"), cfg: cfg}
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return ctx, apierr.Unauthenticated("missing token")
	}
	if as.cfg.SecretKey == "" {
		return ctx, apierr.Unauthenticated("token verification not configured")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if as.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(as.cfg.Audience))
	}

	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(as.cfg.SecretKey), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ctx, apierr.Unauthenticated("token expired")
		}
		as.log.Debug("token rejected", "error", err)
		return ctx, apierr.Unauthenticated("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return ctx, apierr.Unauthenticated("invalid token subject")
	}

	rd := &ctxutil.RequestData{
		UserID:      userID,
		Email:       claims.Email,
		TokenString: tokenString,
	}
	if claims.ExpiresAt != nil {
		rd.ExpiresAt = claims.ExpiresAt.Time
	}
	return ctxutil.WithRequestData(ctx, rd), nil
}

func (as *authService) IssueAccessToken(userID uuid.UUID, email string, ttl time.Duration) (string, error) {
	if userID == uuid.Nil {
		return "", fmt.Errorf("user id required")
	}
	if as.cfg.SecretKey == "" {
		return "", fmt.Errorf("signing key not configured")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	now := time.Now()
	claims := accessClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if as.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{as.cfg.Audience}
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(as.cfg.SecretKey))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}
