package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns all tasks of the current user, newest first
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), userID)
	respondTasks(c, tasks, err)
}

// ListTasksByCategory returns the user's tasks in one category
func (h *TaskHandler) ListTasksByCategory(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListTasksByCategory(c.Request.Context(), userID, c.Param("category"))
	respondTasks(c, tasks, err)
}

// ListTasksByStatus returns completed tasks for /status/completed and open
// tasks for any other status
func (h *TaskHandler) ListTasksByStatus(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.ListTasksByStatus(c.Request.Context(), userID, c.Param("status"))
	respondTasks(c, tasks, err)
}

// SearchTasks matches the keyword against task titles
func (h *TaskHandler) SearchTasks(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.SearchTasks(c.Request.Context(), userID, c.Param("keyword"))
	respondTasks(c, tasks, err)
}

// GetTask returns a single task
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// CreateTask creates a new task owned by the current user
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), userID, req)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// UpdateTask applies a partial update. Fields absent from the body are left
// unchanged and an empty body is a no-op.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var patch dto.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil && !errors.Is(err, io.EOF) {
		apierrors.BadRequest(c, err.Error())
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), userID, c.Param("id"), patch)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// DeleteTask permanently removes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), userID, c.Param("id")); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Task removed"})
}

func requireUserID(c *gin.Context) (string, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return "", false
	}
	return userID, true
}

func respondTasks(c *gin.Context, tasks []models.Task, err error) {
	if err != nil {
		respondTaskError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrNotTaskOwner):
		apierrors.Unauthorized(c, "User not authorized")
	case errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidPriority):
		apierrors.BadRequest(c, err.Error())
	default:
		log.Printf("task request failed: %v", err)
		apierrors.InternalError(c, "Server error")
	}
}
