package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/shikshaconnect/shiksha/core"
	"github.com/shikshaconnect/shiksha/core/attendance"
	"github.com/shikshaconnect/shiksha/core/student"
	"github.com/shikshaconnect/shiksha/core/user"
)

type (
	// Deps are the dependencies needed by the Server.
	Deps struct {
		Conf          *core.Config
		Logger        core.Logger
		Identity      core.IdentityProvider
		UserSvc       *user.Service
		StudentSvc    *student.Service
		AttendanceSvc *attendance.Service
		Validate      *validator.Validate
		Translator    ut.Translator
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
		addr     string
		app      *echo.Echo
		deps     *Deps
		errs     chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(addr string, shutdown chan os.Signal, deps *Deps) Server {
	if shutdown == nil {
		shutdown = make(chan os.Signal, 1)
	}
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	s := &server{
		addr:     addr,
		app:      echo.New(),
		deps:     deps,
		errs:     make(chan error, 1),
		shutdown: shutdown,
	}
	s.setup()
	return s
}

func (s *server) setup() {
	conf := s.deps.Conf

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.CORS())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator, s.signalShutdown)
	s.app.Debug = conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home(conf))

	api := s.app.Group("/api")
	auth := authMiddleware(s.deps.UserSvc)

	registerAuthAPI(api, auth, s.deps)
	registerStudentAPI(api, auth, s.deps)
	registerAttendanceAPI(api, auth, s.deps)
	registerAnalyticsAPI(api, auth, s.deps)
}

func (s *server) Start() {
	s.errs <- s.app.Start(s.addr)
}

func (s *server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) Close() error {
	return s.app.Close()
}

func (s *server) Errors() <-chan error {
	return s.errs
}

func (s *server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

// signalShutdown kicks off a graceful shutdown; called when an integrity
// error is caught.
func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(conf *core.Config) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		return ctx.JSON(http.StatusOK, echo.Map{"message": conf.AppName + " API is running"})
	}
}
