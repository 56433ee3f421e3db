package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/avoronin/go-taskhub/internal/auth"
	"github.com/avoronin/go-taskhub/internal/config"
	"github.com/avoronin/go-taskhub/internal/delivery/http/v1"
	"github.com/avoronin/go-taskhub/internal/services"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(v1.CORSMiddleware(httpCfg.TrustedOrigins))
	registerRoutes(router)

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// Wait for the interrupt signal to gracefully
	// shut down the server with a timeout.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func registerRoutes(router gin.IRouter) {
	cfg := config.Global()

	tokens, err := auth.NewTokenManager(
		cfg.JWT.Issuer,
		[]byte(cfg.JWT.SigningKey),
		cfg.JWT.AccessTokenTTL,
	)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to create token manager")
		panic(err)
	}

	priorities := services.NewPriorityMirror(globalLogger, globalPostgresPool)
	err = priorities.Refresh(context.Background())
	if err != nil {
		// Startup continues on the seed rows; the mirror retries
		// on the first unknown id it sees.
		globalLogger.Warn().
			Err(err).
			Msg("could not refresh priorities, using seed rows")
	}

	categories := services.NewCategoryMirror(globalLogger, globalPostgresPool)
	err = categories.Refresh(context.Background())
	if err != nil {
		globalLogger.Warn().
			Err(err).
			Msg("could not refresh categories, using seed rows")
	}

	notifier := services.NewLogNotificationService(globalLogger)
	userService := services.NewUserService(globalLogger, globalPostgresPool, tokens)
	taskService := services.NewTaskService(globalLogger, globalPostgresPool, priorities, categories, notifier)

	v1Handler := v1.New(globalLogger, cfg.Env, userService, taskService, tokens)

	api := router.Group("/api/v1")
	api.GET("/healthcheck", v1Handler.HandleHealthCheck)

	authRouter := api.Group("/auth")
	if cfg.Limiter.Enabled {
		authRouter.Use(v1.RateLimitMiddleware(globalLogger, cfg.Limiter.Requests, cfg.Limiter.Window))
	}
	authRouter.POST("/register", v1Handler.HandleRegister)
	authRouter.POST("/login", v1Handler.HandleLogin)

	taskRouter := api.Group("/tasks", v1Handler.HandleAuthMiddleware)
	taskRouter.POST("", v1Handler.HandleCreateTask)
	taskRouter.GET("", v1Handler.HandleGetTasks)
	taskRouter.GET("/:id", v1Handler.HandleGetTask)
	taskRouter.PUT("/:id", v1Handler.HandleUpdateTask)
	taskRouter.DELETE("/:id", v1Handler.HandleDeleteTask)

	userRouter := api.Group("/users", v1Handler.HandleAuthMiddleware)
	userRouter.GET("/profile", v1Handler.HandleGetProfile)
	userRouter.PUT("/profile", v1Handler.HandleUpdateProfile)
	userRouter.POST("/change-password", v1Handler.HandleChangePassword)
}
