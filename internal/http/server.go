// Package http exposes the transaction store as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"pocketbook/internal/auth"
	"pocketbook/internal/cache"
	"pocketbook/internal/core"
	"pocketbook/internal/log"
	"pocketbook/internal/middleware/ratelimit"
	"pocketbook/internal/middleware/security"
	"pocketbook/internal/middleware/trace"
	"pocketbook/internal/store"
)

// TransactionStore is the part of store.Store the handlers use.
type TransactionStore interface {
	Transactions() []core.Transaction
	Add(tx core.Transaction) error
	AddIncome(amount decimal.Decimal, note string, date time.Time) (core.Transaction, error)
	Reset()
	Stats() store.Stats
	Subscribe(l store.Listener) func()
}

// Options configures NewServer. Zero values fall back to defaults.
type Options struct {
	Logger             *log.Logger
	CurrencySymbol     string
	CacheTTL           time.Duration
	RateLimitPerMinute int
	Location           *time.Location
	Now                func() time.Time
}

type Server struct {
	http.Server
	store    TransactionStore
	session  *auth.Session
	logger   *log.Logger
	currency string
	loc      *time.Location
	now      func() time.Time

	balanceCache *cache.LRUCache[balanceResponse]
	cacheManager *cache.Manager
	balanceGroup singleflight.Group

	tracer      *trace.Middleware
	limiter     *ratelimit.Limiter
	unsubscribe func()

	shutdownOnce sync.Once
}

func NewServer(addr string, st TransactionStore, session *auth.Session, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.New(log.DefaultConfig())
	}
	if opts.CurrencySymbol == "" {
		opts.CurrencySymbol = "₽"
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 5 * time.Minute
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	logger := opts.Logger.WithComponent(log.ComponentHTTP)
	s := &Server{
		store:        st,
		session:      session,
		logger:       logger,
		currency:     opts.CurrencySymbol,
		loc:          opts.Location,
		now:          opts.Now,
		balanceCache: cache.NewLRUCache[balanceResponse](64, opts.CacheTTL),
		cacheManager: cache.NewManager(opts.Logger),
		limiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
	}
	s.cacheManager.Register(s.balanceCache)
	s.cacheManager.StartCleanup(opts.CacheTTL)
	s.unsubscribe = st.Subscribe(func(store.Change) { s.balanceCache.Purge() })

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("POST /api/transactions/income", s.handleCreateIncome)
	mux.HandleFunc("DELETE /api/transactions", s.handleResetTransactions)
	mux.HandleFunc("GET /api/balance", s.handleBalance)
	mux.HandleFunc("GET /api/history", s.handleHistory)

	mux.HandleFunc("GET /api/session", s.handleSessionState)
	mux.HandleFunc("POST /api/session", s.handleSignIn)
	mux.HandleFunc("POST /api/session/guest", s.handleGuest)
	mux.HandleFunc("DELETE /api/session", s.handleSignOut)

	ips := security.NewClientIPResolver()
	s.tracer = trace.NewMiddleware(opts.Logger, ips.ClientIP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var handler http.Handler = mux
	handler = s.limiter.Middleware(ips.ClientIP, s.handleRateLimited)(handler)
	handler = log.Middleware(opts.Logger, trace.RequestIDFromRequest)(handler)
	handler = s.tracer.Middleware(handler)
	handler = headers.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown stops background work and drains the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		s.unsubscribe()
		s.cacheManager.Stop()
		s.limiter.Stop()
	})
	return s.Server.Shutdown(ctx)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type readyResponse struct {
	Status  string        `json:"status"`
	Store   store.Stats   `json:"store"`
	Traffic trace.Metrics `json:"traffic"`
}

// handleReady reports not ready while the last save failed.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	resp := readyResponse{Status: "ok", Store: s.store.Stats(), Traffic: s.tracer.GetMetrics()}
	status := http.StatusOK
	if resp.Store.LastError != "" {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
}
