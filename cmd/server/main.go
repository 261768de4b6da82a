package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/brass-engine/internal/auth"
	"github.com/freeeve/brass-engine/internal/bot"
	"github.com/freeeve/brass-engine/internal/config"
	"github.com/freeeve/brass-engine/internal/handler"
	"github.com/freeeve/brass-engine/internal/logger"
	"github.com/freeeve/brass-engine/internal/middleware"
	"github.com/freeeve/brass-engine/internal/repository/postgres"
	redisrepo "github.com/freeeve/brass-engine/internal/repository/redis"
	"github.com/freeeve/brass-engine/internal/service"
	"github.com/freeeve/brass-engine/pkg/brass"
)

func main() {
	logger.Init(logger.Options{})
	cfg := config.Load()
	log.Info().Str("port", cfg.Port).Bool("devAuth", cfg.DevAuth).Msg("Config loaded")

	data, err := loadGameData(cfg.GameDataFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.GameDataFile).Msg("Game data failed to load")
	}

	// Database
	db, err := postgres.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Database connection failed")
	}
	defer db.Close()

	// Redis
	redisClient, err := redisrepo.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Redis connection failed")
	}
	defer redisClient.Close()

	userRepo := postgres.NewUserRepo(db)
	gameRepo := postgres.NewGameRepo(db)
	eventRepo := postgres.NewEventRepo(db)

	jwtMgr := auth.NewJWTManager(cfg.JWTSecret)
	googleOAuth := auth.NewGoogleOAuth(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GoogleRedirectURL)

	wsHub := handler.NewHub()

	if cfg.BotSeed != 0 {
		bot.SeedBotRng(cfg.BotSeed)
	}
	playSvc := service.NewPlayService(data, gameRepo, eventRepo, redisClient, wsHub)
	playSvc.SetLogSize(cfg.GameLogSize)
	playSvc.SetBotStrategy(bot.StrategyForDifficulty(cfg.BotDifficulty))
	gameSvc := service.NewGameService(gameRepo, userRepo, playSvc)

	authHandler := handler.NewAuthHandler(googleOAuth, jwtMgr, userRepo, cfg.DevAuth)
	userHandler := handler.NewUserHandler(userRepo)
	gameHandler := handler.NewGameHandler(gameSvc, playSvc, wsHub)
	wsHandler := handler.NewWSHandler(wsHub, jwtMgr)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	handler.MountAuth(mux, authHandler)

	api := http.NewServeMux()
	handler.MountAPI(api, userHandler, gameHandler)
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", auth.Middleware(jwtMgr)(api)))

	// WebSocket authenticates with a query parameter, not the middleware.
	mux.HandleFunc("GET /api/v1/ws", wsHandler.ServeWS)

	root := middleware.Chain(mux, middleware.Recover, middleware.Logger, middleware.CORS(cfg.CORSOrigins))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server shutdown error")
	}
	log.Info().Msg("Server stopped")
}

func loadGameData(path string) (*brass.GameData, error) {
	if path == "" {
		return brass.StandardData(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return brass.LoadGameData(f)
}
