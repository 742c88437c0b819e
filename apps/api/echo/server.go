package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/mirpeset/mirpeset/core"
	"github.com/mirpeset/mirpeset/core/lesson"
	"github.com/mirpeset/mirpeset/core/recording"
	"github.com/mirpeset/mirpeset/core/schedule"
	"github.com/mirpeset/mirpeset/core/zman"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		LessonSvc    *lesson.Service
		RecordingSvc *recording.Service
		ZmanSvc      *zman.Service
		Parser       *schedule.Parser
		Logger       core.Logger
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	initJWTConfig()

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.CORS())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)
	admin := adminMiddleware()

	registerAuthAPI(v1)
	registerLessonAPI(v1, s.opts.LessonSvc, s.opts.RecordingSvc, jwt, admin)
	registerRecordingAPI(v1, s.opts.RecordingSvc, jwt, admin)
	registerZmanAPI(v1, s.opts.ZmanSvc, s.opts.Parser, jwt, admin)
	registerImportAPI(v1, s.opts.LessonSvc, s.opts.Parser, jwt, admin)
}

func (s *server) Start() {
	go func() {
		s.app.Logger.Info("server listening on ", s.opts.Address)
		if err := s.app.Start(s.opts.Address); err != nil && err != http.ErrServerClosed {
			s.app.Logger.Fatal(err)
		}
	}()

	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	<-s.shutdown

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		s.app.Logger.Error(err)
	}
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

// signalShutdown initiates a graceful shutdown on irrecoverable errors.
func (s *server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "ברוכים הבאים למרפסת!")
}
