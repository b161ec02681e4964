package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/securecookie"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/unipress/portal/core"
	"github.com/unipress/portal/core/session"
	"github.com/unipress/portal/upstream"
)

type (
	Deps struct {
		Conf       *core.Config
		Logger     core.Logger
		Upstream   *upstream.Client
		Sessions   *session.Registry
		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server interface {
		http.Handler
		Start()
		Shutdown(context.Context) error
		Close() error
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
	}

	server struct {
		deps       Deps
		app        *echo.Echo
		sealer     *securecookie.SecureCookie
		errCh      chan error
		shutdownCh chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps Deps) Server {
	s := &server{
		deps:       deps,
		app:        echo.New(),
		sealer:     securecookie.New([]byte(deps.Conf.SecretKey), nil),
		errCh:      make(chan error, 1),
		shutdownCh: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdownCh, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.Use(s.sessionMiddleware)

	s.app.GET("/", home)

	registerAuthAPI(s.app, s.deps)
	registerAdminAPI(s.app.Group("/admin", s.gate(session.RoleAdmin)), s.deps)
	registerUMMAPI(s.app.Group("/umm", s.gate(session.RoleUMM)), s.deps)
	registerFMCAPI(s.app.Group("/fmc", s.gate(session.RoleFMC)), s.deps)
	registerStudentAPI(s.app.Group("/student", s.gate(session.RoleStudent)), s.deps)
	registerGuestAPI(s.app.Group("/guest", s.gate(session.RoleGuest)), s.deps)
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.errCh <- err
	}
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errCh
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdownCh
}

func (s *server) signalShutdown() {
	s.shutdownCh <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to the Unipress Portal!")
}
