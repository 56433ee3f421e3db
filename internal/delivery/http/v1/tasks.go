package v1

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/avoronin/go-taskhub/internal/models"
	"github.com/avoronin/go-taskhub/internal/services"
)

type taskResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Category    string     `json:"category,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func newTaskResponse(task *models.Task) taskResponse {
	return taskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		Category:    task.Category,
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func taskIDFromPath(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Category    *string `json:"category,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		abort(c, newUnauthorizedError("no authenticated user"))
		return
	}

	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.CreateTask(c, userID, services.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Category:    req.Category,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.abortServiceError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Task created", newTaskResponse(task))
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		abort(c, newUnauthorizedError("no authenticated user"))
		return
	}

	var filter services.TaskFilter
	if status, exists := c.GetQuery("status"); exists {
		filter.Status = &status
	}
	if priority, exists := c.GetQuery("priority"); exists {
		filter.Priority = &priority
	}
	if category, exists := c.GetQuery("category"); exists {
		filter.Category = &category
	}
	if dueDate, exists := c.GetQuery("due_date"); exists {
		filter.DueDate = &dueDate
	}
	if search, exists := c.GetQuery("search"); exists {
		filter.Search = &search
	}

	tasks, err := h.tasks.ListTasks(c, userID, filter)
	if err != nil {
		h.abortServiceError(c, err)
		return
	}

	response := make([]taskResponse, len(tasks))
	for i, task := range tasks {
		response[i] = newTaskResponse(task)
	}
	respond(c, http.StatusOK, "Tasks fetched", response)
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		abort(c, newUnauthorizedError("no authenticated user"))
		return
	}
	taskID, ok := taskIDFromPath(c)
	if !ok {
		abort(c, newBadRequestError("invalid task id"))
		return
	}

	task, err := h.tasks.GetTask(c, userID, taskID)
	if err != nil {
		h.abortServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, "Task fetched", newTaskResponse(task))
}

type updateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Category    *string `json:"category,omitempty"`
	DueDate     *string `json:"due_date,omitempty"`
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		abort(c, newUnauthorizedError("no authenticated user"))
		return
	}
	taskID, ok := taskIDFromPath(c)
	if !ok {
		abort(c, newBadRequestError("invalid task id"))
		return
	}

	var req updateTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Warn().
			Err(err).
			Msg("failed to bind json")
		abort(c, newBadRequestError(errInvalidRequestBody.Error()))
		return
	}

	task, err := h.tasks.UpdateTask(c, userID, taskID, services.UpdateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		Category:    req.Category,
		DueDate:     req.DueDate,
	})
	if err != nil {
		h.abortServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, "Task updated", newTaskResponse(task))
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	userID, ok := userIDFromContext(c)
	if !ok {
		abort(c, newUnauthorizedError("no authenticated user"))
		return
	}
	taskID, ok := taskIDFromPath(c)
	if !ok {
		abort(c, newBadRequestError("invalid task id"))
		return
	}

	err := h.tasks.DeleteTask(c, userID, taskID)
	if err != nil {
		h.abortServiceError(c, err)
		return
	}

	respond(c, http.StatusOK, "Task deleted", nil)
}
