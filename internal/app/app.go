// Package app はアプリケーションの起動とワイヤリングを提供する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/dharshini/agiletrack/internal/auth"
	"github.com/dharshini/agiletrack/internal/config"
	"github.com/dharshini/agiletrack/internal/database"
	"github.com/dharshini/agiletrack/internal/handler"
	"github.com/dharshini/agiletrack/internal/logger"
	"github.com/dharshini/agiletrack/internal/metrics"
	"github.com/dharshini/agiletrack/internal/middleware"
	"github.com/dharshini/agiletrack/internal/repository"
	"github.com/dharshini/agiletrack/internal/scrum"
	"github.com/dharshini/agiletrack/internal/security"
	"github.com/dharshini/agiletrack/internal/session"
	"github.com/dharshini/agiletrack/internal/store"
	"github.com/dharshini/agiletrack/internal/storeserver"
	"github.com/dharshini/agiletrack/internal/user"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandStore:
		return runStore(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はアプリケーションAPIサーバーモードで起動する。
// リソースストアへのHTTPクライアントと全ドメインサービスをワイヤリングし、
// HTTPサーバーを起動する。SIGINTまたはSIGTERMでグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 2. リソースストアクライアントの初期化
	client := store.NewClient(
		cfg.StoreBaseURL,
		&http.Client{Timeout: cfg.StoreTimeout},
		slog.Default(),
		collector,
	)
	userStore := store.NewHTTPUserStore(client)
	scrumStore := store.NewHTTPScrumStore(client)
	taskStore := store.NewHTTPTaskStore(client)

	// 3. セッションマネージャの初期化
	sessions := session.NewManager(
		time.Duration(cfg.SessionMaxAge)*time.Second,
		10*time.Minute,
	)
	defer sessions.Stop()

	// 4. ドメインサービスの初期化
	authService := auth.NewService(userStore, sessions)
	userService := user.NewService(userStore)
	scrumService := scrum.NewService(
		scrumStore, taskStore, userStore,
		security.NewTextSanitizer(), collector,
	)

	// 起動時にキャッシュを初期読込する。ストアが未起動でもサーバーは
	// 起動し、各リクエストの再読込で回復する。
	startupCtx, startupCancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
	if err := scrumService.RefreshAll(startupCtx); err != nil {
		slog.Warn("initial cache load failed",
			slog.String("error", err.Error()),
		)
	}
	startupCancel()

	// 5. レートリミッターの構築（req/min -> req/sec に変換）
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	rateLimiterCfg.GeneralRate = rateLimit(cfg.RateLimitGeneral)
	rateLimiterCfg.GeneralBurst = cfg.RateLimitGeneral
	rateLimiterCfg.ScrumCreationRate = rateLimit(cfg.RateLimitScrumCreate)
	rateLimiterCfg.ScrumCreationBurst = cfg.RateLimitScrumCreate
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	// 6. ルーターの構築
	router := handler.NewRouter(&handler.RouterDeps{
		SessionFinder:     sessions,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		Logger:            slog.Default(),

		AuthService:   authService,
		SignUpService: userService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		ScrumService: scrumService,
		UserService:  userService,

		MetricsHandler: metrics.Handler(registry),
	})

	return serveHTTP("API server", ":"+cfg.ServerPort, router)
}

// runStore はリソースストアサーバーモードで起動する。
// PostgreSQLへの接続を開き、コレクション別のREST APIを公開する。
func runStore(cfg *config.Config) error {
	if err := cfg.RequireDatabaseURL(); err != nil {
		return err
	}

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	h := storeserver.NewHandler(
		repository.NewPostgresUserRepo(db),
		repository.NewPostgresScrumRepo(db),
		repository.NewPostgresTaskRepo(db),
	)

	return serveHTTP("resource store", ":"+cfg.StorePort, h.Router())
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	if err := cfg.RequireDatabaseURL(); err != nil {
		return err
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// serveHTTP はHTTPサーバーを起動し、SIGINT/SIGTERMでグレースフルシャットダウンする。
func serveHTTP(name, addr string, h http.Handler) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting",
			slog.String("server", name),
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down server...", slog.String("server", name))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("server stopped gracefully", slog.String("server", name))
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// rateLimit はreq/min単位の設定値をreq/sec単位のレートに変換する。
func rateLimit(perMinute int) rate.Limit {
	return rate.Limit(float64(perMinute) / 60.0)
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
