package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/agentmarket/agent"
	"github.com/BaSui01/agentmarket/api/handlers"
	"github.com/BaSui01/agentmarket/config"
	"github.com/BaSui01/agentmarket/internal/cache"
	"github.com/BaSui01/agentmarket/internal/database"
	"github.com/BaSui01/agentmarket/internal/metrics"
	"github.com/BaSui01/agentmarket/internal/migration"
	"github.com/BaSui01/agentmarket/internal/server"
	"github.com/BaSui01/agentmarket/internal/telemetry"
	"github.com/BaSui01/agentmarket/internal/tlsutil"
	"github.com/BaSui01/agentmarket/llm/bytez"
	"github.com/BaSui01/agentmarket/types"
	"github.com/BaSui01/agentmarket/user"
)

// dbStatsInterval 连接池指标采样间隔
const dbStatsInterval = 15 * time.Second

// =============================================================================
// 🖥️ Server 结构
// =============================================================================

// Server 是 AgentMarket 的主服务器
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	telemetry *telemetry.Providers
	pool      *database.PoolManager
	cache     *cache.Manager
	collector *metrics.Collector

	handler        http.Handler
	metricsHandler http.Handler

	httpManager    *server.Manager
	metricsManager *server.Manager
}

// NewServer 初始化全部依赖并构建路由。
// collector 为 nil 时使用 "agentmarket" 命名空间创建。
// 数据库或 Redis 不可用时降级运行：前者禁用用户接口，后者禁用 Refresh Token 吊销。
func NewServer(ctx context.Context, cfg *config.Config, logger *zap.Logger, collector *metrics.Collector) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if collector == nil {
		collector = metrics.NewCollector("agentmarket", logger)
	}

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		collector: collector,
	}

	providers, err := telemetry.Init(cfg.Telemetry, Version, logger)
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	}
	s.telemetry = providers

	s.initDatabase()
	s.initCache(ctx)

	if err := s.buildHandlers(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// initDatabase 打开连接池，按需先执行迁移
func (s *Server) initDatabase() {
	if s.cfg.Database.AutoMigrate {
		if err := autoMigrate(s.cfg.Database, s.logger); err != nil {
			s.logger.Error("Database auto-migrate failed", zap.Error(err))
		}
	}

	pool, err := database.Open(s.cfg.Database, s.logger)
	if err != nil {
		s.logger.Warn("Database not available, user endpoints disabled", zap.Error(err))
		return
	}
	s.pool = pool
}

// initCache 连接 Redis；未配置地址时跳过
func (s *Server) initCache(ctx context.Context) {
	if s.cfg.Redis.Addr == "" {
		s.logger.Info("Redis not configured, refresh token revocation disabled")
		return
	}
	m, err := cache.NewManager(ctx, s.cfg.Redis, s.logger)
	if err != nil {
		s.logger.Warn("Redis not available, refresh token revocation disabled", zap.Error(err))
		return
	}
	s.cache = m
}

func autoMigrate(cfg config.DatabaseConfig, logger *zap.Logger) error {
	m, err := migration.NewMigratorFromConfig(cfg, logger)
	if err != nil {
		return err
	}
	defer m.Close()
	return m.Up(context.Background())
}

// =============================================================================
// 🔀 路由
// =============================================================================

func (s *Server) buildHandlers(ctx context.Context) error {
	// 两个通道共享同一个 http.Client
	hc := tlsutil.SecureHTTPClient(tlsutil.DefaultTransportOptions())
	models := bytez.NewClient(bytez.Options{
		BaseURL:    s.cfg.Provider.ModelBaseURL,
		APIKey:     s.cfg.Provider.APIKey,
		HTTPClient: hc,
		Observer:   s.collector,
	}, s.logger)
	rest := bytez.NewClient(bytez.Options{
		BaseURL:    s.cfg.Provider.BaseURL,
		APIKey:     s.cfg.Provider.APIKey,
		HTTPClient: hc,
		Observer:   s.collector,
	}, s.logger)
	s.logger.Info("provider endpoints",
		zap.String("models", models.BaseURL()),
		zap.String("rest", rest.BaseURL()))

	factory := agent.NewFactory(agent.FactoryOptions{
		Models:   models,
		REST:     rest,
		Provider: s.cfg.Provider.Name,
		Timeout:  s.cfg.Provider.Timeout,
	}, s.logger)

	agentHandler := handlers.NewAgentHandler(factory, s.collector, s.logger)
	healthHandler := handlers.NewHealthHandler(s.logger)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler.HandleHealth)
	mux.HandleFunc("/healthz", healthHandler.HandleHealth)
	mux.HandleFunc("/ready", healthHandler.HandleReady)
	mux.HandleFunc("/version", healthHandler.HandleVersion(Version, BuildTime, GitCommit))

	mux.HandleFunc("GET /api/agents/{$}", agentHandler.HandleListAgents)
	mux.HandleFunc("GET /api/agents/{id}/details/", agentHandler.HandleAgentDetails)
	mux.HandleFunc("/api/agents/{id}/call/", agentHandler.HandleCallAgent)

	if s.pool != nil {
		healthHandler.RegisterCheck(handlers.NewPingCheck("database", s.pool.Ping))

		issuer, err := user.NewTokenIssuer(s.cfg.Auth.Secret, s.cfg.Auth.Issuer, s.cfg.Auth.AccessTTL, s.cfg.Auth.RefreshTTL)
		if err != nil {
			return fmt.Errorf("failed to init token issuer: %w", err)
		}
		opts := user.ServiceOptions{
			Store:  user.NewStore(s.pool.DB()),
			Tokens: issuer,
		}
		if s.cache != nil {
			opts.Revoker = cache.NewRevocationList(s.cache)
		}
		svc := user.NewService(opts, s.logger)
		authHandler := handlers.NewAuthHandler(svc, s.logger)
		requireAuth := JWTAuth(svc, s.logger)

		mux.HandleFunc("POST /api/auth/register/", authHandler.HandleRegister)
		mux.HandleFunc("POST /api/auth/login/", authHandler.HandleLogin)
		mux.HandleFunc("POST /api/auth/refresh/", authHandler.HandleRefresh)
		mux.Handle("POST /api/auth/logout/", requireAuth(http.HandlerFunc(authHandler.HandleLogout)))
		mux.Handle("GET /api/auth/profile/", requireAuth(http.HandlerFunc(authHandler.HandleProfile)))
	} else {
		mux.HandleFunc("/api/auth/", s.authUnavailable)
	}

	if s.cache != nil {
		healthHandler.RegisterCheck(handlers.NewPingCheck("redis", s.cache.Ping))
	}

	s.handler = Chain(mux,
		Recovery(s.logger),
		RequestID(),
		OTelTracing(),
		MetricsMiddleware(s.collector),
		SecurityHeaders(),
		RequestLogger(s.logger),
		CORS(s.cfg.Server.CORSAllowedOrigins),
		RateLimiter(ctx, float64(s.cfg.Server.RateLimitRPS), s.cfg.Server.RateLimitBurst, s.logger),
	)

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	s.metricsHandler = metricsMux

	return nil
}

func (s *Server) authUnavailable(w http.ResponseWriter, r *http.Request) {
	handlers.WriteErrorMessage(w, http.StatusServiceUnavailable, types.ErrServiceUnavailable,
		"User service is unavailable", s.logger)
}

// Handler 返回带中间件链的 API 处理器
func (s *Server) Handler() http.Handler { return s.handler }

// =============================================================================
// 🚀 运行与关闭
// =============================================================================

// Start 启动 HTTP 与 Metrics 服务器（非阻塞）。metrics_port 为 0 时不启动 Metrics 服务器。
func (s *Server) Start() error {
	s.httpManager = server.NewManager("http", s.handler, server.ConfigFor(s.cfg.Server.HTTPPort, s.cfg.Server), s.logger)
	if err := s.httpManager.Start(); err != nil {
		return err
	}
	s.logger.Info("HTTP server started", zap.String("addr", s.httpManager.Addr()))

	if s.cfg.Server.MetricsPort > 0 {
		s.metricsManager = server.NewManager("metrics", s.metricsHandler, server.ConfigFor(s.cfg.Server.MetricsPort, s.cfg.Server), s.logger)
		if err := s.metricsManager.Start(); err != nil {
			_ = s.httpManager.Shutdown(context.Background())
			return err
		}
		s.logger.Info("Metrics server started", zap.String("addr", s.metricsManager.Addr()))
	}
	return nil
}

// Run 启动服务器并阻塞直到 ctx 结束或任一服务器异常退出，随后释放全部资源
func (s *Server) Run(ctx context.Context) error {
	defer s.Close()

	if err := s.Start(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.httpManager.Run(gctx) })
	if s.metricsManager != nil {
		g.Go(func() error { return s.metricsManager.Run(gctx) })
	}
	if s.pool != nil {
		g.Go(func() error {
			s.reportPoolStats(gctx)
			return nil
		})
	}

	err := g.Wait()
	s.logger.Info("Graceful shutdown completed")
	return err
}

// reportPoolStats 周期性上报连接池指标
func (s *Server) reportPoolStats(ctx context.Context) {
	ticker := time.NewTicker(dbStatsInterval)
	defer ticker.Stop()
	for {
		stats := s.pool.GetStats()
		s.collector.RecordDBConnections(s.pool.Driver(), stats.OpenConnections, stats.Idle)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Close 释放遥测、数据库与 Redis 资源，可重复调用
func (s *Server) Close() {
	var errs []error
	if s.telemetry != nil {
		timeout := s.cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = server.DefaultConfig().ShutdownTimeout
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		errs = append(errs, s.telemetry.Shutdown(ctx))
		cancel()
		s.telemetry = nil
	}
	if s.pool != nil {
		errs = append(errs, s.pool.Close())
		s.pool = nil
	}
	if s.cache != nil {
		errs = append(errs, s.cache.Close())
		s.cache = nil
	}
	if err := errors.Join(errs...); err != nil {
		s.logger.Warn("resource cleanup failed", zap.Error(err))
	}
}
