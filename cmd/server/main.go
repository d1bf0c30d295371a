package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/battulga/naiznet/internal/config"
	"github.com/battulga/naiznet/internal/database"
	"github.com/battulga/naiznet/internal/handlers"
	"github.com/battulga/naiznet/internal/logging"
	"github.com/battulga/naiznet/internal/middleware"
	"github.com/battulga/naiznet/internal/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error("Application error", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
}

func run() error {
	logger := logging.New()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger.Info("Starting Naiznet server...")

	// Connect to PostgreSQL
	logger.Info("Connecting to PostgreSQL", map[string]interface{}{
		"host": cfg.Database.Host,
		"port": cfg.Database.Port,
	})
	db, err := database.NewPostgresDB(cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	defer db.Close()
	logger.Info("Connected to PostgreSQL")

	// Run migrations
	logger.Info("Running database migrations...")
	migrator, err := database.NewMigrator(cfg.Database.DSN(), "migrations")
	if err != nil {
		return fmt.Errorf("creating migrator: %w", err)
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		return fmt.Errorf("running migrations: %w", err)
	}
	_ = migrator.Close()
	logger.Info("Migrations completed")

	// Connect to Redis
	logger.Info("Connecting to Redis", map[string]interface{}{
		"addr": cfg.Redis.Addr(),
	})
	redisDB, err := database.NewRedisDB(cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return fmt.Errorf("connecting to redis: %w", err)
	}
	defer func() { _ = redisDB.Close() }()
	logger.Info("Connected to Redis")

	// Initialize services
	dbAdapter := services.NewPoolAdapter(db.Pool)
	redisAdapter := services.NewRedisAdapter(redisDB.Client)

	userService := services.NewUserService(dbAdapter)
	authService := services.NewAuthService(dbAdapter, redisAdapter, userService)
	resetService := services.NewPasswordResetService(dbAdapter, userService)
	friendshipService := services.NewFriendshipService(dbAdapter)
	groupService := services.NewGroupService(dbAdapter)
	groupPostService := services.NewGroupPostService(dbAdapter, groupService)
	postService := services.NewPostService(dbAdapter)
	messageService := services.NewMessageService(dbAdapter)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, redisDB)
	authHandler := handlers.NewAuthHandler(userService, authService, resetService, cfg.Server.Secure)
	userHandler := handlers.NewUserHandler(userService)
	friendHandler := handlers.NewFriendHandler(friendshipService, userService)
	groupHandler := handlers.NewGroupHandler(groupService, groupPostService)
	postHandler := handlers.NewPostHandler(postService, userService)
	messageHandler := handlers.NewMessageHandler(messageService, userService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(authService)
	csrfMiddleware := middleware.NewCSRFMiddleware(cfg.Server.Secure)
	securityHeaders := middleware.NewSecurityHeaders(cfg.Server.Secure)
	cacheControl := middleware.NewCacheControl()
	compress := middleware.NewCompress()
	requestLogger := middleware.NewRequestLogger(logger)
	authRateLimiter := middleware.NewAuthRateLimiter(redisDB.Client)
	apiRateLimiter := middleware.NewAPIRateLimiter(redisDB.Client)

	requireAuth := authMiddleware.RequireAuth

	// Set up router
	mux := http.NewServeMux()

	// Health endpoints (no auth, no rate limit)
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("GET /ready", healthHandler.Ready)
	mux.HandleFunc("GET /live", healthHandler.Live)

	// CSRF token endpoint
	mux.Handle("GET /api/csrf", http.HandlerFunc(csrfMiddleware.GetToken))

	// Auth endpoints (tighter rate limit against credential stuffing)
	mux.Handle("POST /api/auth/register", authRateLimiter.Limit(http.HandlerFunc(authHandler.Register)))
	mux.Handle("POST /api/auth/login", authRateLimiter.Limit(http.HandlerFunc(authHandler.Login)))
	mux.Handle("POST /api/auth/logout", http.HandlerFunc(authHandler.Logout))
	mux.Handle("GET /api/auth/me", requireAuth(http.HandlerFunc(authHandler.Me)))
	mux.Handle("POST /api/auth/forgot-password", authRateLimiter.Limit(http.HandlerFunc(authHandler.ForgotPassword)))
	mux.Handle("GET /api/auth/reset-password/verify", authRateLimiter.Limit(http.HandlerFunc(authHandler.VerifyResetToken)))
	mux.Handle("POST /api/auth/reset-password", authRateLimiter.Limit(http.HandlerFunc(authHandler.ResetPassword)))

	// User endpoints
	mux.Handle("GET /api/users/search", requireAuth(http.HandlerFunc(userHandler.Search)))
	mux.Handle("GET /api/users/{username}/posts", requireAuth(http.HandlerFunc(postHandler.Profile)))

	// Friend endpoints
	mux.Handle("GET /api/friends", requireAuth(http.HandlerFunc(friendHandler.List)))
	mux.Handle("GET /api/friends/requests", requireAuth(http.HandlerFunc(friendHandler.Incoming)))
	mux.Handle("POST /api/friends/requests", requireAuth(http.HandlerFunc(friendHandler.SendRequest)))
	mux.Handle("PUT /api/friends/requests/{username}/accept", requireAuth(http.HandlerFunc(friendHandler.Accept)))
	mux.Handle("PUT /api/friends/requests/{username}/decline", requireAuth(http.HandlerFunc(friendHandler.Decline)))
	mux.Handle("DELETE /api/friends/{username}", requireAuth(http.HandlerFunc(friendHandler.Unfriend)))
	mux.Handle("GET /api/friends/{username}/status", requireAuth(http.HandlerFunc(friendHandler.Status)))

	// Group endpoints
	mux.Handle("POST /api/groups", requireAuth(http.HandlerFunc(groupHandler.Create)))
	mux.Handle("GET /api/groups", requireAuth(http.HandlerFunc(groupHandler.List)))
	mux.Handle("GET /api/groups/mine", requireAuth(http.HandlerFunc(groupHandler.Mine)))
	mux.Handle("GET /api/groups/{id}", requireAuth(http.HandlerFunc(groupHandler.Get)))
	mux.Handle("POST /api/groups/{id}/join", requireAuth(http.HandlerFunc(groupHandler.Join)))
	mux.Handle("POST /api/groups/{id}/leave", requireAuth(http.HandlerFunc(groupHandler.Leave)))
	mux.Handle("PUT /api/groups/{id}/requests/{username}/approve", requireAuth(http.HandlerFunc(groupHandler.Approve)))
	mux.Handle("PUT /api/groups/{id}/requests/{username}/reject", requireAuth(http.HandlerFunc(groupHandler.Reject)))
	mux.Handle("DELETE /api/groups/{id}/members/{username}", requireAuth(http.HandlerFunc(groupHandler.Kick)))
	mux.Handle("GET /api/groups/{id}/posts", requireAuth(http.HandlerFunc(groupHandler.Posts)))
	mux.Handle("POST /api/groups/{id}/posts", requireAuth(http.HandlerFunc(groupHandler.CreatePost)))
	mux.Handle("POST /api/groups/{id}/share", requireAuth(http.HandlerFunc(groupHandler.SharePost)))
	mux.Handle("PUT /api/group-posts/{postID}/like", requireAuth(http.HandlerFunc(groupHandler.LikePost)))
	mux.Handle("PUT /api/group-posts/{postID}/unlike", requireAuth(http.HandlerFunc(groupHandler.UnlikePost)))

	// Post endpoints
	mux.Handle("POST /api/posts", requireAuth(http.HandlerFunc(postHandler.Create)))
	mux.Handle("GET /api/posts/feed", requireAuth(http.HandlerFunc(postHandler.Feed)))
	mux.Handle("GET /api/posts/search", requireAuth(http.HandlerFunc(postHandler.Search)))
	mux.Handle("GET /api/posts/{id}", requireAuth(http.HandlerFunc(postHandler.Get)))
	mux.Handle("PUT /api/posts/{id}", requireAuth(http.HandlerFunc(postHandler.Update)))
	mux.Handle("DELETE /api/posts/{id}", requireAuth(http.HandlerFunc(postHandler.Delete)))
	mux.Handle("POST /api/posts/{id}/share", requireAuth(http.HandlerFunc(postHandler.Share)))
	mux.Handle("POST /api/posts/{id}/share/{username}", requireAuth(http.HandlerFunc(postHandler.ShareToFriend)))

	// Message endpoints
	mux.Handle("POST /api/messages/{username}", requireAuth(http.HandlerFunc(messageHandler.Send)))
	mux.Handle("GET /api/messages/{username}", requireAuth(http.HandlerFunc(messageHandler.Conversation)))

	// Build middleware chain (order matters: outermost first)
	var handler http.Handler = mux
	handler = authMiddleware.Authenticate(handler)
	handler = csrfMiddleware.Protect(handler)
	handler = apiRateLimiter.Limit(handler)
	handler = cacheControl.Apply(handler)
	handler = compress.Apply(handler)
	handler = securityHeaders.Apply(handler)
	handler = requestLogger.Apply(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Could not gracefully shutdown the server", map[string]interface{}{
				"error": err.Error(),
			})
		}
		close(done)
	}()

	logger.Info("Server listening", map[string]interface{}{
		"addr": addr,
	})
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	<-done
	logger.Info("Server stopped")
	return nil
}
