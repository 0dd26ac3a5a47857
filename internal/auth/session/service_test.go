package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"casavia/internal/store"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Secret = []byte("0123456789abcdef0123456789abcdef")
	return cfg
}

func testService(t *testing.T) *Service {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "db.json"))
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	if err := st.Seed(); err != nil {
		t.Fatalf("store.Seed: %v", err)
	}

	svc, err := NewService(testConfig(), st)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestNewService_RejectsShortSecret(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Secret = []byte("too-short")
	if _, err := NewService(cfg, nil); err == nil {
		t.Fatalf("NewService must fail closed without a usable secret")
	}
}

func TestSignIn(t *testing.T) {
	t.Parallel()

	svc := testService(t)
	ctx := context.Background()

	issued, err := svc.SignIn(ctx, "amelia", "wanderlust22")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if issued.AccessToken == "" || issued.RefreshToken == "" {
		t.Fatalf("sign-in must mint both tokens: %+v", issued)
	}
	if issued.User.Username != "amelia" {
		t.Fatalf("user = %q, want amelia", issued.User.Username)
	}
	if !issued.RefreshExp.After(issued.AccessExp) {
		t.Fatalf("refresh expiry %v must outlive access expiry %v", issued.RefreshExp, issued.AccessExp)
	}

	for _, tc := range []struct{ id, secret string }{
		{"amelia", "nope"},
		{"ghost", "wanderlust22"},
		{"", ""},
	} {
		if _, err := svc.SignIn(ctx, tc.id, tc.secret); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("SignIn(%q,%q): got %v, want ErrInvalidCredentials", tc.id, tc.secret, err)
		}
	}
}

func TestRefresh(t *testing.T) {
	t.Parallel()

	svc := testService(t)
	ctx := context.Background()

	issued, err := svc.SignIn(ctx, "jakob", "fjordside")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, issued.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Fatalf("refresh must mint a new access token")
	}
	if refreshed.RefreshToken != "" {
		t.Fatalf("refresh must not rotate the refresh token")
	}
	if refreshed.User.ID != issued.User.ID {
		t.Fatalf("refresh resolved user %d, want %d", refreshed.User.ID, issued.User.ID)
	}

	for _, tok := range []string{"", "garbage", issued.AccessToken + "x"} {
		if _, err := svc.Refresh(ctx, tok); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Refresh(%q): got %v, want ErrInvalidToken", tok, err)
		}
	}
}

func TestRefresh_ExpiredToken(t *testing.T) {
	t.Parallel()

	svc := testService(t)

	expired, _, err := svc.IssueAccessToken(1, time.Now().UTC(), 0)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), expired); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired refresh token: got %v, want ErrInvalidToken", err)
	}
}

func TestVerifyAccess(t *testing.T) {
	t.Parallel()

	svc := testService(t)
	now := time.Now().UTC()

	issued, err := svc.SignIn(context.Background(), "sofia", "oldtownloft")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	claims, err := svc.VerifyAccess(issued.AccessToken, now)
	if err != nil {
		t.Fatalf("VerifyAccess: %v", err)
	}
	if claims.UserID != issued.User.ID {
		t.Fatalf("claims user %d, want %d", claims.UserID, issued.User.ID)
	}

	if _, err := svc.VerifyAccess(issued.AccessToken, claims.ExpiresAt); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("token at expiry: got %v, want ErrInvalidToken", err)
	}
	if _, err := svc.VerifyAccess("not-a-token", now); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage token: got %v, want ErrInvalidToken", err)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	secret := "0123456789abcdef0123456789abcdef"

	t.Run("missing secret fails closed", func(t *testing.T) {
		t.Setenv("CASAVIA_AUTH_SECRET", "")
		if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrConfig) {
			t.Fatalf("got %v, want ErrConfig", err)
		}
	})

	t.Run("short secret fails closed", func(t *testing.T) {
		t.Setenv("CASAVIA_AUTH_SECRET", "hunter2")
		if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrConfig) {
			t.Fatalf("got %v, want ErrConfig", err)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		t.Setenv("CASAVIA_AUTH_SECRET", secret)
		cfg, err := LoadConfigFromEnv()
		if err != nil {
			t.Fatalf("LoadConfigFromEnv: %v", err)
		}
		if cfg.AccessTTL != 15*time.Minute || cfg.RefreshTTL != 30*24*time.Hour {
			t.Fatalf("unexpected TTLs: %+v", cfg)
		}
		if !cfg.Enforced {
			t.Fatalf("enforcement must default to on")
		}
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("CASAVIA_AUTH_SECRET", secret)
		t.Setenv("CASAVIA_AUTH_ACCESS_TTL", "5m")
		t.Setenv("CASAVIA_AUTH_REFRESH_TTL", "168h")
		t.Setenv("CASAVIA_USE_AUTH", "false")
		cfg, err := LoadConfigFromEnv()
		if err != nil {
			t.Fatalf("LoadConfigFromEnv: %v", err)
		}
		if cfg.AccessTTL != 5*time.Minute || cfg.RefreshTTL != 7*24*time.Hour || cfg.Enforced {
			t.Fatalf("unexpected config: %+v", cfg)
		}
	})

	t.Run("access ttl above refresh ttl", func(t *testing.T) {
		t.Setenv("CASAVIA_AUTH_SECRET", secret)
		t.Setenv("CASAVIA_AUTH_ACCESS_TTL", "720h")
		t.Setenv("CASAVIA_AUTH_REFRESH_TTL", "1h")
		if _, err := LoadConfigFromEnv(); !errors.Is(err, ErrConfig) {
			t.Fatalf("got %v, want ErrConfig", err)
		}
	})
}
