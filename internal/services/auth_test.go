package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/belajar-alkitab-backend/internal/data/repos/testutil"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/apierr"
	"github.com/yungbote/belajar-alkitab-backend/internal/platform/ctxutil"
)

func TestAuthServiceRoundTrip(t *testing.T) {
	svc := NewAuthService(testutil.Logger(t), AuthConfig{SecretKey: "s3cret", Audience: "authenticated"})
	userID := uuid.New()

	tok, err := svc.IssueAccessToken(userID, "murid@example.com", time.Hour)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	ctx, err := svc.SetContextFromToken(context.Background(), tok)
	if err != nil {
		t.Fatalf("SetContextFromToken: %v", err)
	}
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID != userID || rd.Email != "murid@example.com" {
		t.Fatalf("request data: %+v", rd)
	}
	if rd.ExpiresAt.Before(time.Now()) {
		t.Fatalf("expiry not carried: %v", rd.ExpiresAt)
	}
}

func TestAuthServiceRejects(t *testing.T) {
	log := testutil.Logger(t)
	svc := NewAuthService(log, AuthConfig{SecretKey: "s3cret", Audience: "authenticated"})
	userID := uuid.New()

	sign := func(key string, claims jwt.Claims, method jwt.SigningMethod) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(key))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return s
	}
	valid := func() jwt.RegisteredClaims {
		return jwt.RegisteredClaims{
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
	}

	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
	noExp := valid()
	noExp.ExpiresAt = nil
	wrongAud := valid()
	wrongAud.Audience = jwt.ClaimStrings{"anon"}
	badSub := valid()
	badSub.Subject = "not-a-uuid"

	cases := map[string]string{
		"empty":          "",
		"garbage":        "abc.def.ghi",
		"wrong key":      sign("other", valid(), jwt.SigningMethodHS256),
		"wrong method":   sign("s3cret", valid(), jwt.SigningMethodHS512),
		"expired":        sign("s3cret", expired, jwt.SigningMethodHS256),
		"no expiry":      sign("s3cret", noExp, jwt.SigningMethodHS256),
		"wrong audience": sign("s3cret", wrongAud, jwt.SigningMethodHS256),
		"bad subject":    sign("s3cret", badSub, jwt.SigningMethodHS256),
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			ctx, err := svc.SetContextFromToken(context.Background(), tok)
			if err == nil {
				t.Fatalf("expected rejection")
			}
			if status, _ := apierr.StatusOf(err); status != 401 {
				t.Fatalf("status: want=401 got=%d (%v)", status, err)
			}
			if ctxutil.GetRequestData(ctx) != nil {
				t.Fatalf("rejected token must not attach identity")
			}
		})
	}
}

func TestAuthServiceUnconfigured(t *testing.T) {
	svc := NewAuthService(testutil.Logger(t), AuthConfig{})
	if _, err := svc.IssueAccessToken(uuid.New(), "", time.Minute); err == nil {
		t.Fatalf("issuing without a key should fail")
	}
	if _, err := svc.SetContextFromToken(context.Background(), "x.y.z"); !apierr.IsAuthorization(err) {
		t.Fatalf("verifying without a key: %v", err)
	}
}
