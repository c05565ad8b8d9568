package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/accessdesk/user-service/internal/api/middleware"
	"github.com/accessdesk/user-service/internal/core/domain"
	"github.com/accessdesk/user-service/internal/core/ports"
)

type stubUserService struct {
	listFn   func(ctx context.Context) ([]domain.UserView, error)
	getFn    func(ctx context.Context, id string) (*domain.UserView, error)
	createFn func(ctx context.Context, in ports.CreateUserInput) (*domain.UserView, error)
	updateFn func(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.UserView, error)
	deleteFn func(ctx context.Context, id string) error
}

func (s *stubUserService) List(ctx context.Context) ([]domain.UserView, error) {
	return s.listFn(ctx)
}

func (s *stubUserService) Get(ctx context.Context, id string) (*domain.UserView, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) Create(ctx context.Context, in ports.CreateUserInput) (*domain.UserView, error) {
	return s.createFn(ctx, in)
}

func (s *stubUserService) Update(ctx context.Context, id string, in ports.UpdateUserInput) (*domain.UserView, error) {
	return s.updateFn(ctx, id, in)
}

func (s *stubUserService) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

type stubRoleService struct {
	ports.RoleService
	createFn func(ctx context.Context, in ports.CreateRoleInput) (*domain.Role, error)
	getFn    func(ctx context.Context, id string) (*domain.Role, error)
}

func (s *stubRoleService) Create(ctx context.Context, in ports.CreateRoleInput) (*domain.Role, error) {
	return s.createFn(ctx, in)
}

func (s *stubRoleService) Get(ctx context.Context, id string) (*domain.Role, error) {
	return s.getFn(ctx, id)
}

type stubAuthService struct {
	loginFn func(ctx context.Context, email, password string) (*ports.LoginResult, error)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

// newContext builds an echo context for a JSON request. A non-nil principal
// is attached as if the Auth middleware had run.
func newContext(method, target, body string, principal *domain.Principal) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if principal != nil {
		middleware.SetPrincipal(c, principal)
	}
	return c, rec
}
