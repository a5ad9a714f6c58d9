package usecase

import (
	"testing"
	"time"

	authdomain "notify-backend/internal/auth/domain"
	"notify-backend/pkg/config"

	"github.com/golang-jwt/jwt/v5"
)

type fakeUserRepo struct {
	users map[string]*authdomain.User
}

func (f *fakeUserRepo) Create(user *authdomain.User) error { return nil }

func (f *fakeUserRepo) FindByID(id string) (*authdomain.User, error) {
	return f.users[id], nil
}

func (f *fakeUserRepo) FindByEmail(email string) (*authdomain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:    "test-secret",
		ServiceToken: "svc-token-123",
	}
}

func signToken(t *testing.T, secret, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
		"iat":     time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestAuthorizeServiceToken(t *testing.T) {
	uc := NewAuthUsecase(&fakeUserRepo{}, testConfig())
	verdict, user, err := uc.Authorize("svc-token-123")
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if verdict != authdomain.VerdictService {
		t.Fatalf("verdict = %v, want service", verdict)
	}
	if user != nil {
		t.Error("service identity carries no user")
	}
}

func TestAuthorizeStaffAndRegularUsers(t *testing.T) {
	cfg := testConfig()
	repo := &fakeUserRepo{users: map[string]*authdomain.User{
		"staff-1": {ID: "staff-1", Email: "s@example.com", Role: authdomain.RoleStaff},
		"user-1":  {ID: "user-1", Email: "u@example.com", Role: authdomain.RoleMember},
	}}
	uc := NewAuthUsecase(repo, cfg)

	verdict, user, err := uc.Authorize(signToken(t, cfg.JWTSecret, "staff-1"))
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if verdict != authdomain.VerdictStaff || user == nil || user.ID != "staff-1" {
		t.Fatalf("got %v/%v, want staff verdict for staff-1", verdict, user)
	}

	verdict, user, err = uc.Authorize(signToken(t, cfg.JWTSecret, "user-1"))
	if err != nil {
		t.Fatalf("Authorize: %v", err)
	}
	if verdict != authdomain.VerdictUser || user == nil || user.ID != "user-1" {
		t.Fatalf("got %v/%v, want user verdict for user-1", verdict, user)
	}
}

func TestAuthorizeAnonymousCases(t *testing.T) {
	cfg := testConfig()
	repo := &fakeUserRepo{users: map[string]*authdomain.User{}}
	uc := NewAuthUsecase(repo, cfg)

	cases := []struct {
		label  string
		bearer string
	}{
		{"empty", ""},
		{"garbage", "not-a-token"},
		{"wrong secret", signToken(t, "other-secret", "user-1")},
		{"unknown user", signToken(t, cfg.JWTSecret, "ghost")},
	}
	for _, c := range cases {
		t.Run(c.label, func(t *testing.T) {
			verdict, user, err := uc.Authorize(c.bearer)
			if err != nil {
				t.Fatalf("Authorize: %v", err)
			}
			if verdict != authdomain.VerdictAnonymous || user != nil {
				t.Fatalf("got %v, want anonymous", verdict)
			}
		})
	}
}

func TestVerdictCanSend(t *testing.T) {
	if !authdomain.VerdictStaff.CanSend() || !authdomain.VerdictService.CanSend() {
		t.Error("staff and service must be allowed to send")
	}
	if authdomain.VerdictUser.CanSend() || authdomain.VerdictAnonymous.CanSend() {
		t.Error("users and anonymous callers must not be allowed to send")
	}
}
