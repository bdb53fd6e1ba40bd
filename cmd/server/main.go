package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/hisaab-app/hisaab/internal/auth"
	"github.com/hisaab-app/hisaab/internal/ledger"
	"github.com/hisaab-app/hisaab/internal/middleware"
	"github.com/hisaab-app/hisaab/internal/seed"
	"github.com/hisaab-app/hisaab/internal/service"
	"github.com/hisaab-app/hisaab/internal/storage/sqlite"
	"github.com/hisaab-app/hisaab/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	if err := godotenv.Load(); err != nil {
		// .env is optional; env vars may come from the environment directly
		slog.Debug("no .env file loaded", "error", err)
	}
	logging.Setup()

	port := getEnv("PORT", "8080")
	dbPath := getEnv("DB_PATH", "./data/hisaab.db")
	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		slog.Error("JWT_SECRET is required")
		os.Exit(1)
	}

	tokenTTL := 24 * time.Hour
	if raw := os.Getenv("TOKEN_TTL_HOURS"); raw != "" {
		hours, err := strconv.Atoi(raw)
		if err != nil || hours <= 0 {
			slog.Error("invalid TOKEN_TTL_HOURS", "value", raw)
			os.Exit(1)
		}
		tokenTTL = time.Duration(hours) * time.Hour
	}

	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage initialized", "database", dbPath)

	ctx := context.Background()
	ldgr, err := ledger.New(ctx, store)
	if err != nil {
		slog.Error("failed to restore ledger", "error", err)
		os.Exit(1)
	}

	authenticator := auth.NewPasswordAuthenticator(ldgr)
	jwtManager := auth.NewJWTManager(jwtSecret, tokenTTL)

	if getEnv("SEED", "false") == "true" {
		if err := seed.Run(ctx, ldgr, authenticator); err != nil {
			slog.Error("failed to seed demo data", "error", err)
			os.Exit(1)
		}
	}

	authSvc := service.NewAuthService(authenticator, jwtManager, ldgr)
	groupSvc := service.NewGroupService(ldgr)
	expenseSvc := service.NewExpenseService(ldgr, groupSvc)

	mux := service.Routes(authSvc, groupSvc, expenseSvc, jwtManager)
	handler := middleware.Logging(middleware.CORS(mux))

	// h2c lets clients speak HTTP/2 without TLS termination in front
	h2cHandler := h2c.NewHandler(handler, &http2.Server{})

	addr := fmt.Sprintf(":%s", port)
	slog.Info("server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
