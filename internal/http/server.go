package http

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"painel/internal/config"
	"painel/internal/log"
	"painel/internal/metrics"
	"painel/internal/middleware/ratelimit"
	"painel/internal/middleware/security"
	"painel/internal/middleware/trace"
	"painel/internal/services"
	appweb "painel/web"
)

const (
	readHeaderTimeout = 10 * time.Second
	readyTimeout      = 5 * time.Second
	staticMaxAge      = 3600
)

// Options configures the dashboard server.
type Options struct {
	Addr               string
	Title              string
	Dashboard          *services.Dashboard
	Users              config.Users
	SessionTTL         time.Duration
	RateLimitPerMinute int
	// TrustedProxies are extra CIDRs whose X-Forwarded-For is believed.
	TrustedProxies     []string
	Metrics            *metrics.Metrics
	Logger             *log.Logger
}

type Server struct {
	http.Server
	templates *template.Template
	dash      *services.Dashboard
	users     config.Users
	title     string
	ttl       time.Duration
	metrics   *metrics.Metrics
	logger    *log.Logger
	started   time.Time

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer parses the embedded templates and wires routes and middleware,
// returning a ready-to-run server.
func NewServer(opts Options) (*Server, error) {
	if opts.Dashboard == nil {
		return nil, errors.New("http server: dashboard is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = services.DefaultDashboardConfig().SessionTTL
	}

	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		templates: t,
		dash:      opts.Dashboard,
		users:     opts.Users,
		title:     opts.Title,
		ttl:       opts.SessionTTL,
		metrics:   opts.Metrics,
		logger:    opts.Logger.WithComponent(log.ComponentHTTP),
		started:   time.Now(),
		detector:  security.NewDetector(),
	}
	for _, cidr := range opts.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			return nil, fmt.Errorf("http server: %w", err)
		}
	}
	s.detector.OnSuspicious(s.metrics.Suspicious)
	s.limiter = ratelimit.NewLimiter(ratelimit.Config{
		RequestsPerMinute: opts.RateLimitPerMinute,
		OnReject: func(ip string) {
			s.metrics.RateLimited()
			s.logger.WithComponent(log.ComponentRateLimit).Warn("Rate limit exceeded", log.FieldClientIP, ip)
		},
	})
	s.tracer = trace.NewMiddleware(opts.Logger, s.detector.ExtractClientIP)

	router, err := s.routes()
	if err != nil {
		s.limiter.Stop()
		return nil, err
	}

	var h http.Handler = router
	h = handlers.CompressHandler(h)
	h = s.limiter.Middleware(s.detector.ExtractClientIP, s.rateLimited)(h)
	h = s.detector.Middleware(opts.Logger)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = s.tracer.Middleware(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger: s.logger}),
		handlers.PrintRecoveryStack(false),
	)(h)

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           h,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return s, nil
}

func (s *Server) routes() (*mux.Router, error) {
	r := mux.NewRouter()

	static, err := fs.Sub(appweb.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("mount static assets: %w", err)
	}
	r.PathPrefix("/static/").Handler(
		security.StaticAssetMiddleware(staticMaxAge)(
			http.StripPrefix("/static/", http.FileServer(http.FS(static))))).
		Methods(http.MethodGet, http.MethodHead)

	r.Handle("/", s.route("/", s.handleIndex)).Methods(http.MethodGet, http.MethodHead)
	r.Handle("/login", s.route("/login", s.handleLogin)).Methods(http.MethodPost)
	r.Handle("/logout", s.route("/logout", s.handleLogout)).Methods(http.MethodPost)

	ui := r.PathPrefix("/ui").Subrouter()
	ui.Handle("/year", s.route("/ui/year", s.withSession(s.handleSelectYear))).Methods(http.MethodPost)
	ui.Handle("/month", s.route("/ui/month", s.withSession(s.handleSelectMonth))).Methods(http.MethodPost)
	ui.Handle("/error/dismiss", s.route("/ui/error/dismiss", s.withSession(s.handleDismissError))).Methods(http.MethodPost)

	api := r.PathPrefix("/api").Subrouter()
	api.Handle("/years", s.route("/api/years", s.withAPISession(s.handleAPIYears))).Methods(http.MethodGet)
	api.Handle("/years/{year}", s.route("/api/years/{year}", s.withAPISession(s.handleAPIYear))).Methods(http.MethodGet)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", s.handleReady).Methods(http.MethodGet, http.MethodHead)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	r.NotFoundHandler = s.route("not_found", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	return r, nil
}

// route labels a handler for the HTTP metrics.
func (s *Server) route(name string, fn http.HandlerFunc) http.Handler {
	return s.metrics.WrapHandler(name, fn)
}

func (s *Server) rateLimited(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(http.StatusTooManyRequests, "Muitas requisições. Aguarde um instante e tente novamente.").Write(w)
}

// Shutdown stops background routines and gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
