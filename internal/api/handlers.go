package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/luispater/seleniumKeywordAPI/internal/library"
	"github.com/luispater/seleniumKeywordAPI/internal/registry"
	"github.com/luispater/seleniumKeywordAPI/internal/runner"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const (
	statusPass = "PASS"
	statusFail = "FAIL"
)

// APIHandlers contains the handlers for API endpoints
type APIHandlers struct {
	queue   *RequestQueue
	lib     *library.Library
	timeout time.Duration
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(lib *library.Library, queue *RequestQueue, timeout time.Duration) *APIHandlers {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &APIHandlers{
		queue:   queue,
		lib:     lib,
		timeout: timeout,
	}
}

// ListKeywords handles GET /keywords
func (h *APIHandlers) ListKeywords(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"keywords": h.lib.Keywords()})
}

// GetKeyword handles GET /keywords/:name
func (h *APIHandlers) GetKeyword(c *gin.Context) {
	info, ok := h.lib.KeywordInfo(c.Param("name"))
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{
				Message: fmt.Sprintf("No keyword with name '%s' found", c.Param("name")),
				Type:    "invalid_request_error",
				Code:    "keyword_not_found",
			},
		})
		return
	}
	c.JSON(http.StatusOK, info)
}

// RunKeyword handles POST /keywords/:name/run. The body is optional; when
// present it is {"args": [...]}.
func (h *APIHandlers) RunKeyword(c *gin.Context) {
	name := c.Param("name")
	if _, ok := h.lib.KeywordInfo(name); !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error: ErrorDetail{
				Message: fmt.Sprintf("No keyword with name '%s' found", name),
				Type:    "invalid_request_error",
				Code:    "keyword_not_found",
			},
		})
		return
	}

	rawJson, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request: %v", err), "code": 400})
		return
	}
	args, err := parseArgs(rawJson)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{Message: err.Error(), Type: "invalid_request_error"},
		})
		return
	}

	task := &RequestTask{
		ID:        uuid.New().String(),
		Kind:      TaskKeyword,
		Keyword:   name,
		Args:      args,
		CreatedAt: time.Now(),
	}
	response, ok := h.submit(c, task)
	if !ok {
		return
	}

	body, err := keywordResult(task.ID, response)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{Message: err.Error(), Type: "server_error"},
		})
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

// ListSessions handles GET /sessions
func (h *APIHandlers) ListSessions(c *gin.Context) {
	task := &RequestTask{ID: uuid.New().String(), Kind: TaskSessions, CreatedAt: time.Now()}
	response, ok := h.submit(c, task)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, response.Sessions)
}

// TakeScreenshot handles GET /screenshot and returns the current page as PNG.
func (h *APIHandlers) TakeScreenshot(c *gin.Context) {
	task := &RequestTask{ID: uuid.New().String(), Kind: TaskScreenshot, CreatedAt: time.Now()}
	response, ok := h.submit(c, task)
	if !ok {
		return
	}
	if !response.Success {
		status := http.StatusInternalServerError
		if errors.Is(response.Error, registry.ErrNoCurrentSession) {
			status = http.StatusNotFound
		}
		c.JSON(status, ErrorResponse{
			Error: ErrorDetail{Message: response.Error.Error(), Type: "browser_error"},
		})
		return
	}
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "image/png", response.Screenshot)
}

// RunSuite handles POST /suites/run with a YAML suite as body.
func (h *APIHandlers) RunSuite(c *gin.Context) {
	data, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Invalid request: %v", err), "code": 400})
		return
	}
	suite, err := runner.ParseSuite(data, c.DefaultQuery("name", "api"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: ErrorDetail{Message: err.Error(), Type: "invalid_request_error"},
		})
		return
	}

	task := &RequestTask{ID: uuid.New().String(), Kind: TaskSuite, Suite: suite, CreatedAt: time.Now()}
	response, ok := h.submit(c, task)
	if !ok {
		return
	}
	if response.Suite == nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: ErrorDetail{Message: response.Error.Error(), Type: "server_error"},
		})
		return
	}
	c.JSON(http.StatusOK, response.Suite)
}

// submit queues task and waits for the response. It writes the error reply
// itself and reports false when the task could not be run.
func (h *APIHandlers) submit(c *gin.Context, task *RequestTask) (*TaskResponse, bool) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	response, err := h.queue.Submit(ctx, task)
	if err == nil {
		return response, true
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusRequestTimeout, ErrorResponse{
			Error: ErrorDetail{
				Message: "Request timeout",
				Type:    "timeout_error",
			},
		})
	case errors.Is(err, context.Canceled):
		log.Debugf("Client disconnected while task %s was pending", task.ID)
	default:
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error: ErrorDetail{
				Message: fmt.Sprintf("Failed to queue request: %v", err),
				Type:    "server_error",
			},
		})
	}
	return nil, false
}

// parseArgs reads the "args" array of a run request. Strings are taken
// verbatim; other JSON values are passed in their keyword text form.
func parseArgs(rawJson []byte) ([]string, error) {
	args := make([]string, 0)
	if len(rawJson) == 0 {
		return args, nil
	}
	if !gjson.ValidBytes(rawJson) {
		return nil, fmt.Errorf("request body is not valid JSON")
	}
	argsResult := gjson.GetBytes(rawJson, "args")
	if !argsResult.Exists() {
		return args, nil
	}
	if !argsResult.IsArray() {
		return nil, fmt.Errorf("args must be an array")
	}
	for _, arg := range argsResult.Array() {
		switch arg.Type {
		case gjson.String:
			args = append(args, arg.Str)
		case gjson.True:
			args = append(args, "True")
		case gjson.False:
			args = append(args, "False")
		case gjson.Null:
			args = append(args, "None")
		default:
			args = append(args, arg.Raw)
		}
	}
	return args, nil
}

// keywordResult renders {"status":..., "return":..., "error":...}.
func keywordResult(taskID string, response *TaskResponse) ([]byte, error) {
	body := []byte(`{}`)
	var err error
	if body, err = sjson.SetBytes(body, "task", taskID); err != nil {
		return nil, err
	}
	if !response.Success {
		if body, err = sjson.SetBytes(body, "status", statusFail); err != nil {
			return nil, err
		}
		message := "keyword failed"
		if response.Error != nil {
			message = response.Error.Error()
		}
		return sjson.SetBytes(body, "error", message)
	}
	if body, err = sjson.SetBytes(body, "status", statusPass); err != nil {
		return nil, err
	}
	return sjson.SetBytes(body, "return", response.Return)
}
