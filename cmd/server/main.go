package main

import (
	"chat-desk/auth"
	"chat-desk/infrastructure/grpc/server"
	"chat-desk/infrastructure/rest"
	"chat-desk/infrastructure/ws"
	"chat-desk/internal"
	"chat-desk/repositories"
	"chat-desk/runtime"
	"chat-desk/runtime/workers"
	"chat-desk/services"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/database"
	"github.com/mama165/sdk-go/logs"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires every component, serves until a signal or a server failure,
// then shuts down in dependency order so deferred cleanups always run.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Database (BadgerDB)
	db, err := badger.Open(buildBadgerOpts(config, logger, ctx))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		logger.Info("Closing BadgerDB...")
		_ = db.Close()
	}()
	if config.DebugPort > 0 {
		endpoint := "/inspect"
		logger.Info("Debug Badger inspector available",
			"url", fmt.Sprintf("http://localhost:%d%s", config.DebugPort, endpoint))
		database.StartDebugServer(db, config.DebugPort, endpoint, recordMapper)
	}

	messageRepository, err := repositories.NewMessageRepository(db, logger)
	if err != nil {
		return exitRuntime, fmt.Errorf("message sequence: %w", err)
	}
	defer func() { _ = messageRepository.Close() }()
	adminRepository := repositories.NewAdminRepository(db, logger)
	projectRepository := repositories.NewProjectRepository(db, logger)
	participantRepository := repositories.NewParticipantRepository(db, logger)
	chatRepository := repositories.NewChatRepository(db, logger)

	// Nobody is connected yet
	reset, err := adminRepository.ResetPresence(ctx, time.Now().UTC())
	if err != nil {
		return exitRuntime, fmt.Errorf("presence reset: %w", err)
	}
	logger.Debug("Admin presence reset", "admins", reset)

	// 3. Runtime (registry, fanout, presence)
	registry := runtime.NewRegistry()
	orchestrator := runtime.NewOrchestrator(logger, workers.NewSupervisor(logger), registry,
		config.BufferSize, config.SinkTimeout, config.PublishTimeout, config.MetricInterval)
	presence := runtime.NewPresenceTracker(logger, registry, orchestrator, adminRepository, chatRepository)
	locks := runtime.NewKeyedMutex()

	// 4. Services
	tokens := auth.NewTokens(config.JWTSecret, config.JWTIssuer, config.AuthTokenDuration)
	limits := services.PageLimits{Default: config.PageSize, Max: config.MaxPageSize}
	projects := services.NewProjectService(logger, projectRepository)
	participants := services.NewParticipantService(logger, projects, participantRepository, presence, limits)
	chats := services.NewChatService(logger, services.ChatServiceDeps{
		Ownership:    projects,
		Projects:     projectRepository,
		Participants: participantRepository,
		Chats:        chatRepository,
		Messages:     messageRepository,
		Publisher:    orchestrator,
		Presence:     presence,
		Locks:        locks,
		Limits:       limits,
	})
	messages := services.NewMessageService(logger, chats, messageRepository, orchestrator,
		services.NewClassifier(config.MaxContentLength), locks, limits)
	identities := services.NewIdentityService(logger, tokens, adminRepository, projectRepository, participantRepository)

	// 5. Transports
	gateway := ws.NewGateway(logger, ws.Config{
		IdleTimeout:    config.IdleTimeout,
		WriteTimeout:   config.WriteTimeout,
		RequestTimeout: config.RequestTimeout,
		MaxFrameSize:   int64(config.MaxFrameSize),
		BufferSize:     config.ConnectionBufferSize,
		AllowedOrigins: config.Origins(),
	}, identities, presence, registry, chats, messages)
	router := rest.NewRouter(logger, rest.Services{
		Auth:         services.NewAuthService(logger, adminRepository, tokens),
		Identities:   identities,
		Projects:     projects,
		Participants: participants,
		Chats:        chats,
		Messages:     messages,
	}, gateway)
	httpServer := &http.Server{
		Addr:              config.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 3)
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	orchestratorDone := make(chan struct{})
	go func() {
		defer close(orchestratorDone)
		orchestrator.Start(runCtx)
	}()

	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	if config.HealthPort > 0 {
		address := fmt.Sprintf("%s:%d", config.Host, config.HealthPort)
		listener, err := net.Listen("tcp", address)
		if err != nil {
			return exitRuntime, fmt.Errorf("failed to listen on %s: %w", address, err)
		}
		health := server.NewHealthServer(logger, config.HealthInterval, map[string]server.DependencyCheck{
			"storage": func(context.Context) error {
				if db.IsClosed() {
					return errors.New("database closed")
				}
				return nil
			},
			"fanout": func(context.Context) error {
				if depth := orchestrator.QueueDepth(); depth >= config.BufferSize {
					return fmt.Errorf("event queue saturated (%d)", depth)
				}
				return nil
			},
		})
		go func() {
			if err := health.Serve(runCtx, listener); err != nil {
				errChan <- fmt.Errorf("gRPC health server error: %w", err)
			}
		}()
	}

	// 6. Wait for Stop or Error
	exitCode := exitOK
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-errChan:
		exitCode = exitRuntime
	}

	// 7. Graceful shutdown: stop taking requests, close live sessions,
	// then stop the fanout before storage goes away.
	logger.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown incomplete", "error", err)
	}
	if err := gateway.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Websocket sessions still open at deadline", "error", err)
	}
	cancelRun()
	orchestrator.Stop()
	select {
	case <-orchestratorDone:
	case <-shutdownCtx.Done():
		logger.Warn("Orchestrator did not stop before the deadline")
	}
	logger.Info("Program stopped cleanly")

	return exitCode, runErr
}

func buildBadgerOpts(config internal.Config, logger *slog.Logger, ctx context.Context) badger.Options {
	options := badger.DefaultOptions(config.BadgerFilepath)
	if logger.Enabled(ctx, slog.LevelDebug) {
		return options.WithLoggingLevel(badger.DEBUG)
	}
	return options.WithLoggingLevel(badger.WARNING)
}

// recordMapper renders stored CBOR records in the debug inspector.
func recordMapper(key string, val []byte) database.InspectRow {
	row := database.DefaultMapper(key, val)
	prefix, _, _ := strings.Cut(key, ":")
	row.Type = strings.ToUpper(prefix)

	record, err := repositories.Decode(val)
	if err != nil {
		// Sequences and index entries are not CBOR maps
		return row
	}
	row.Detail = fmt.Sprint(record)
	return row
}
