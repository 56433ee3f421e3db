package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/avoronin/go-taskhub/internal/auth"
	"github.com/avoronin/go-taskhub/internal/services"
)

const version = "1.0.0"

type Handler interface {
	HandleHealthCheck(c *gin.Context)

	HandleRegister(c *gin.Context)
	HandleLogin(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)

	HandleGetProfile(c *gin.Context)
	HandleUpdateProfile(c *gin.Context)
	HandleChangePassword(c *gin.Context)

	HandleCreateTask(c *gin.Context)
	HandleGetTasks(c *gin.Context)
	HandleGetTask(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTask(c *gin.Context)
}

type handlerImpl struct {
	logger zerolog.Logger
	env    string
	users  services.UserService
	tasks  services.TaskService
	tokens *auth.TokenManager
}

func New(
	logger zerolog.Logger,
	env string,
	userService services.UserService,
	taskService services.TaskService,
	tokens *auth.TokenManager,
) Handler {
	return &handlerImpl{
		logger: logger,
		env:    env,
		users:  userService,
		tasks:  taskService,
		tokens: tokens,
	}
}

func (h *handlerImpl) HandleHealthCheck(c *gin.Context) {
	respond(c, http.StatusOK, "", gin.H{
		"status":      "available",
		"environment": h.env,
		"version":     version,
	})
}
