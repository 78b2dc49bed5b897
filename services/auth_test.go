package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TheGringo-ai/LineSmart-sub000/models"
	"github.com/TheGringo-ai/LineSmart-sub000/repository"
)

func newTestAuthService() *AuthService {
	return NewAuthService(repository.NewMemoryStore(), "test-secret")
}

func TestSignupAndLogin(t *testing.T) {
	auth := newTestAuthService()
	ctx := context.Background()

	signup, err := auth.Signup(ctx, "owner@acme.test", "hunter22", "Acme Owner")
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	if signup.User.Role != models.RoleAdmin {
		t.Errorf("signup role = %s, expected admin", signup.User.Role)
	}
	if signup.User.CompanyID == "" {
		t.Error("signup must create a fresh company")
	}
	if signup.AccessToken == "" || signup.RefreshToken == "" {
		t.Error("signup must issue both tokens")
	}

	// Duplicate signup rejected
	if _, err := auth.Signup(ctx, "owner@acme.test", "other", "Someone"); err == nil {
		t.Error("duplicate signup must fail")
	}

	login, err := auth.Login(ctx, "owner@acme.test", "hunter22")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if login.User.ID != signup.User.ID {
		t.Error("login must resolve the same user")
	}

	if _, err := auth.Login(ctx, "owner@acme.test", "wrong"); err == nil {
		t.Error("wrong password must fail")
	}
	if _, err := auth.Login(ctx, "nobody@acme.test", "hunter22"); err == nil {
		t.Error("unknown email must fail")
	}
}

func TestInvitationFlow(t *testing.T) {
	auth := newTestAuthService()
	ctx := context.Background()

	owner, err := auth.Signup(ctx, "owner@acme.test", "hunter22", "Acme Owner")
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	token, err := auth.Invite(ctx, owner.User.CompanyID, "worker@acme.test", models.RoleEmployee)
	if err != nil {
		t.Fatalf("Invite failed: %v", err)
	}
	if token == "" {
		t.Fatal("Invite must return the raw token")
	}

	accepted, err := auth.AcceptInvitation(ctx, token, "secret99", "New Worker")
	if err != nil {
		t.Fatalf("AcceptInvitation failed: %v", err)
	}
	if accepted.User.CompanyID != owner.User.CompanyID {
		t.Error("invited account must join the inviter's company")
	}
	if accepted.User.Role != models.RoleEmployee {
		t.Errorf("invited role = %s, expected employee", accepted.User.Role)
	}

	// A redeemed invitation cannot be reused
	if _, err := auth.AcceptInvitation(ctx, token, "again", "Impostor"); err == nil {
		t.Error("redeemed invitation must not be accepted twice")
	}

	// Garbage tokens are rejected
	if _, err := auth.AcceptInvitation(ctx, "not-a-token", "pw", "Nobody"); err == nil {
		t.Error("unknown invitation token must fail")
	}
}

func TestTokenVerifyAndRefresh(t *testing.T) {
	auth := newTestAuthService()
	ctx := context.Background()

	signup, err := auth.Signup(ctx, "owner@acme.test", "hunter22", "Acme Owner")
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	user, err := auth.VerifyAccessToken(ctx, signup.AccessToken)
	if err != nil {
		t.Fatalf("VerifyAccessToken failed: %v", err)
	}
	if user.ID != signup.User.ID {
		t.Error("verified token must resolve the issuing user")
	}

	if _, err := auth.VerifyAccessToken(ctx, "garbage.token.here"); err == nil {
		t.Error("malformed token must fail verification")
	}

	// Tokens signed with another secret are rejected
	other := NewAuthService(repository.NewMemoryStore(), "different-secret")
	if _, err := other.VerifyAccessToken(ctx, signup.AccessToken); err == nil {
		t.Error("token signed with another secret must fail")
	}

	refreshed, err := auth.RefreshToken(ctx, signup.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Error("refresh must issue a new access token")
	}

	// Logout invalidates the refresh token
	if err := auth.Logout(ctx, signup.User.ID); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if _, err := auth.RefreshToken(ctx, signup.RefreshToken); err == nil {
		t.Error("refresh token must be invalid after logout")
	}
}

func TestAuthMiddleware(t *testing.T) {
	auth := newTestAuthService()
	ctx := context.Background()

	signup, err := auth.Signup(ctx, "owner@acme.test", "hunter22", "Acme Owner")
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	handler := auth.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := r.Context().Value("user").(*models.User)
		if !ok {
			t.Error("user missing from request context")
			return
		}
		w.Write([]byte(user.Email))
	}))

	t.Run("Valid access cookie", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.AddCookie(&http.Cookie{Name: "access_token", Value: signup.AccessToken})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, expected 200", rec.Code)
		}
		if rec.Body.String() != "owner@acme.test" {
			t.Errorf("body = %q", rec.Body.String())
		}
	})

	t.Run("Refresh cookie only", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		req.AddCookie(&http.Cookie{Name: "refresh_token", Value: signup.RefreshToken})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, expected 200 via refresh", rec.Code)
		}
	})

	t.Run("No cookies", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/protected", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, expected 401", rec.Code)
		}
	})
}
