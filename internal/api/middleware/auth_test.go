package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/acme/catalog-system/internal/core/domain"
	"github.com/acme/catalog-system/internal/core/ports"
)

type stubAuthService struct {
	authenticateFn func(header string) (*domain.User, error)
}

func (s *stubAuthService) Login(context.Context, string, string) (*ports.LoginResult, error) {
	return nil, domain.ErrInvalidCredentials
}

func (s *stubAuthService) Authenticate(_ context.Context, header string) (*domain.User, error) {
	return s.authenticateFn(header)
}

func (s *stubAuthService) Authorize(user *domain.User, required ...string) bool {
	return user.HasAnyRole(required...)
}

func TestAuthenticate_SetsUser(t *testing.T) {
	e := echo.New()
	stub := &stubAuthService{authenticateFn: func(header string) (*domain.User, error) {
		if header != "Bearer good" {
			t.Fatalf("unexpected header %q", header)
		}
		return &domain.User{ID: "u-1", Roles: []string{domain.RoleAdmin}}, nil
	}}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := Authenticate(stub)(func(c echo.Context) error {
		called = true
		if u := CurrentUser(c); u == nil || u.ID != "u-1" {
			t.Fatalf("user not set: %+v", u)
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
}

func TestAuthenticate_PropagatesFailures(t *testing.T) {
	for _, want := range []error{domain.ErrAuthorizationHeaderMissing, domain.ErrTokenInvalid, &domain.TokenExpiredError{Message: "expired"}} {
		e := echo.New()
		stub := &stubAuthService{authenticateFn: func(string) (*domain.User, error) { return nil, want }}
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

		handler := Authenticate(stub)(func(c echo.Context) error {
			t.Fatalf("should not reach next")
			return nil
		})

		if err := handler(c); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	}
}
