package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/task-tracker-api/internal/constants"
	"github.com/yukikurage/task-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"github.com/yukikurage/task-tracker-api/internal/services"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	service *services.TaskService
	handler *TaskHandler
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	db := openTestDB(suite.T())
	suite.service = services.NewTaskService(repository.NewTaskRepository(db))
	suite.handler = NewTaskHandler(suite.service)

	gin.SetMode(gin.TestMode)
}

func (suite *TaskHandlerTestSuite) createTestTask(userID string, req dto.CreateTaskRequest) *models.Task {
	task, err := suite.service.CreateTask(context.Background(), userID, req)
	suite.Require().NoError(err)
	return task
}

// Helper function to create authenticated context
func (suite *TaskHandlerTestSuite) createAuthContext(method, url string, body []byte, userID string, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = params
	if userID != "" {
		c.Set(constants.ContextKeyUserID, userID)
	}

	return c, w
}

func (suite *TaskHandlerTestSuite) decodeTasks(w *httptest.ResponseRecorder) []models.Task {
	var tasks []models.Task
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &tasks))
	return tasks
}

func (suite *TaskHandlerTestSuite) decodeError(w *httptest.ResponseRecorder) apierrors.APIError {
	var apiErr apierrors.APIError
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &apiErr))
	return apiErr
}

func idParam(id string) gin.Param {
	return gin.Param{Key: "id", Value: id}
}

func (suite *TaskHandlerTestSuite) TestListTasks_Success() {
	suite.createTestTask("alice", dto.CreateTaskRequest{Title: "Mine"})
	suite.createTestTask("bob", dto.CreateTaskRequest{Title: "Not mine"})

	c, w := suite.createAuthContext(http.MethodGet, "/api/tasks", nil, "alice")
	suite.handler.ListTasks(c)

	suite.Equal(http.StatusOK, w.Code)
	tasks := suite.decodeTasks(w)
	suite.Require().Len(tasks, 1)
	suite.Equal("Mine", tasks[0].Title)
	suite.Equal("alice", tasks[0].UserID)
}

func (suite *TaskHandlerTestSuite) TestListTasks_EmptyArray() {
	c, w := suite.createAuthContext(http.MethodGet, "/api/tasks", nil, "alice")
	suite.handler.ListTasks(c)

	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`[]`, w.Body.String())
}

func (suite *TaskHandlerTestSuite) TestListTasks_Unauthorized() {
	c, w := suite.createAuthContext(http.MethodGet, "/api/tasks", nil, "")
	suite.handler.ListTasks(c)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	body := []byte(`{"title":"New Task","description":"Task Description","category":"Work","tags":["a","b"],"priority":"High","dueDate":"2024-07-01"}`)

	c, w := suite.createAuthContext(http.MethodPost, "/api/tasks", body, "alice")
	suite.handler.CreateTask(c)

	suite.Equal(http.StatusCreated, w.Code)

	var response map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal("New Task", response["title"])
	suite.Equal("alice", response["user"])
	suite.Equal("High", response["priority"])
	suite.Equal([]any{"a", "b"}, response["tags"])
	suite.Equal(false, response["completed"])
	suite.Contains(response, "createdAt")
	suite.Contains(response, "dueDate")
	suite.NotEmpty(response["id"])
}

func (suite *TaskHandlerTestSuite) TestCreateTask_DefaultsSerialize() {
	c, w := suite.createAuthContext(http.MethodPost, "/api/tasks", []byte(`{"title":"Bare"}`), "alice")
	suite.handler.CreateTask(c)

	suite.Equal(http.StatusCreated, w.Code)

	var response map[string]any
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal([]any{}, response["tags"])
	suite.Equal("Medium", response["priority"])
	suite.Nil(response["dueDate"])
}

func (suite *TaskHandlerTestSuite) TestCreateTask_InvalidRequest() {
	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"description":"no title"}`},
		{"bad priority", `{"title":"t","priority":"Urgent"}`},
		{"bad due date", `{"title":"t","dueDate":"next week"}`},
		{"malformed json", `{"title":`},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			c, w := suite.createAuthContext(http.MethodPost, "/api/tasks", []byte(tt.body), "alice")
			suite.handler.CreateTask(c)

			suite.Equal(http.StatusBadRequest, w.Code)
			suite.Equal(apierrors.ErrCodeInvalidInput, suite.decodeError(w).Code)
		})
	}
}

func (suite *TaskHandlerTestSuite) TestGetTask() {
	task := suite.createTestTask("alice", dto.CreateTaskRequest{Title: "Lookup"})

	c, w := suite.createAuthContext(http.MethodGet, "/api/tasks/"+task.ID, nil, "alice", idParam(task.ID))
	suite.handler.GetTask(c)
	suite.Equal(http.StatusOK, w.Code)

	var response models.Task
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal(task.ID, response.ID)

	c, w = suite.createAuthContext(http.MethodGet, "/api/tasks/"+task.ID, nil, "bob", idParam(task.ID))
	suite.handler.GetTask(c)
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal("User not authorized", suite.decodeError(w).Message)

	missing := uuid.NewString()
	c, w = suite.createAuthContext(http.MethodGet, "/api/tasks/"+missing, nil, "alice", idParam(missing))
	suite.handler.GetTask(c)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.Equal("Task not found", suite.decodeError(w).Message)

	c, w = suite.createAuthContext(http.MethodGet, "/api/tasks/garbage", nil, "alice", idParam("garbage"))
	suite.handler.GetTask(c)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_Partial() {
	task := suite.createTestTask("alice", dto.CreateTaskRequest{Title: "Original", Category: "Home"})

	c, w := suite.createAuthContext(http.MethodPut, "/api/tasks/"+task.ID, []byte(`{"completed":true}`), "alice", idParam(task.ID))
	suite.handler.UpdateTask(c)
	suite.Equal(http.StatusOK, w.Code)

	var response models.Task
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.True(response.Completed)
	suite.Equal("Original", response.Title)
	suite.Equal("Home", response.Category)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_EmptyBodyIsNoop() {
	task := suite.createTestTask("alice", dto.CreateTaskRequest{Title: "Untouched"})

	c, w := suite.createAuthContext(http.MethodPut, "/api/tasks/"+task.ID, nil, "alice", idParam(task.ID))
	suite.handler.UpdateTask(c)
	suite.Equal(http.StatusOK, w.Code)

	var response models.Task
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.Equal("Untouched", response.Title)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_Errors() {
	task := suite.createTestTask("alice", dto.CreateTaskRequest{Title: "Original"})

	c, w := suite.createAuthContext(http.MethodPut, "/api/tasks/"+task.ID, []byte(`{"title":null}`), "alice", idParam(task.ID))
	suite.handler.UpdateTask(c)
	suite.Equal(http.StatusBadRequest, w.Code)

	c, w = suite.createAuthContext(http.MethodPut, "/api/tasks/"+task.ID, []byte(`{"priority":"Urgent"}`), "alice", idParam(task.ID))
	suite.handler.UpdateTask(c)
	suite.Equal(http.StatusBadRequest, w.Code)

	c, w = suite.createAuthContext(http.MethodPut, "/api/tasks/"+task.ID, []byte(`{"completed":"yes"}`), "alice", idParam(task.ID))
	suite.handler.UpdateTask(c)
	suite.Equal(http.StatusBadRequest, w.Code)

	c, w = suite.createAuthContext(http.MethodPut, "/api/tasks/"+task.ID, []byte(`{"title":"Stolen"}`), "bob", idParam(task.ID))
	suite.handler.UpdateTask(c)
	suite.Equal(http.StatusUnauthorized, w.Code)

	found, err := suite.service.GetTask(context.Background(), "alice", task.ID)
	suite.Require().NoError(err)
	suite.Equal("Original", found.Title)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask() {
	task := suite.createTestTask("alice", dto.CreateTaskRequest{Title: "Doomed"})

	c, w := suite.createAuthContext(http.MethodDelete, "/api/tasks/"+task.ID, nil, "bob", idParam(task.ID))
	suite.handler.DeleteTask(c)
	suite.Equal(http.StatusUnauthorized, w.Code)

	c, w = suite.createAuthContext(http.MethodDelete, "/api/tasks/"+task.ID, nil, "alice", idParam(task.ID))
	suite.handler.DeleteTask(c)
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"message":"Task removed"}`, w.Body.String())

	c, w = suite.createAuthContext(http.MethodDelete, "/api/tasks/"+task.ID, nil, "alice", idParam(task.ID))
	suite.handler.DeleteTask(c)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestListTasksByCategory() {
	suite.createTestTask("alice", dto.CreateTaskRequest{Title: "w", Category: "Work"})
	suite.createTestTask("alice", dto.CreateTaskRequest{Title: "h", Category: "Home"})

	c, w := suite.createAuthContext(http.MethodGet, "/api/tasks/category/Work", nil, "alice", gin.Param{Key: "category", Value: "Work"})
	suite.handler.ListTasksByCategory(c)

	suite.Equal(http.StatusOK, w.Code)
	tasks := suite.decodeTasks(w)
	suite.Require().Len(tasks, 1)
	suite.Equal("w", tasks[0].Title)
}

func (suite *TaskHandlerTestSuite) TestListTasksByStatus() {
	done := suite.createTestTask("alice", dto.CreateTaskRequest{Title: "done"})
	suite.createTestTask("alice", dto.CreateTaskRequest{Title: "open"})
	_, err := suite.service.UpdateTask(context.Background(), "alice", done.ID, dto.TaskPatch{Completed: dto.Some(true)})
	suite.Require().NoError(err)

	c, w := suite.createAuthContext(http.MethodGet, "/api/tasks/status/completed", nil, "alice", gin.Param{Key: "status", Value: "completed"})
	suite.handler.ListTasksByStatus(c)
	suite.Equal(http.StatusOK, w.Code)
	tasks := suite.decodeTasks(w)
	suite.Require().Len(tasks, 1)
	suite.Equal("done", tasks[0].Title)

	c, w = suite.createAuthContext(http.MethodGet, "/api/tasks/status/pending", nil, "alice", gin.Param{Key: "status", Value: "pending"})
	suite.handler.ListTasksByStatus(c)
	suite.Equal(http.StatusOK, w.Code)
	tasks = suite.decodeTasks(w)
	suite.Require().Len(tasks, 1)
	suite.Equal("open", tasks[0].Title)
}

func (suite *TaskHandlerTestSuite) TestSearchTasks() {
	suite.createTestTask("alice", dto.CreateTaskRequest{Title: "Buy milk"})
	suite.createTestTask("alice", dto.CreateTaskRequest{Title: "Walk dog"})

	c, w := suite.createAuthContext(http.MethodGet, "/api/tasks/search/MILK", nil, "alice", gin.Param{Key: "keyword", Value: "MILK"})
	suite.handler.SearchTasks(c)

	suite.Equal(http.StatusOK, w.Code)
	tasks := suite.decodeTasks(w)
	suite.Require().Len(tasks, 1)
	suite.Equal("Buy milk", tasks[0].Title)
}

// TestTaskHandlerTestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}

func TestRespondTaskError_InternalIsGeneric(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	respondTaskError(c, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":"INTERNAL_ERROR","message":"Server error"}`, w.Body.String())
}

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewHealthHandler("memory")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	handler.Root(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Todo API is running", w.Body.String())

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	handler.Health(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","store":"memory"}`, w.Body.String())
}
