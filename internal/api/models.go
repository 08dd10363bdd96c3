package api

import (
	"context"
	"time"

	"github.com/luispater/seleniumKeywordAPI/internal/runner"
)

// TaskKind selects what the processor does with a task.
type TaskKind string

const (
	TaskKeyword    TaskKind = "keyword"
	TaskSuite      TaskKind = "suite"
	TaskSessions   TaskKind = "sessions"
	TaskScreenshot TaskKind = "screenshot"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

// RequestTask represents a queued request task
type RequestTask struct {
	ID        string             `json:"id"`
	Kind      TaskKind           `json:"kind"`
	Keyword   string             `json:"keyword,omitempty"`
	Args      []string           `json:"args,omitempty"`
	Suite     *runner.Suite      `json:"-"`
	Response  chan *TaskResponse `json:"-"`
	CreatedAt time.Time          `json:"created_at"`

	ctx context.Context
}

// TaskResponse represents the response from processing a task
type TaskResponse struct {
	Success    bool                `json:"success"`
	Return     any                 `json:"return,omitempty"`
	Error      error               `json:"-"`
	Sessions   *SessionsInfo       `json:"sessions,omitempty"`
	Suite      *runner.SuiteResult `json:"suite,omitempty"`
	Screenshot []byte              `json:"-"`
}

// SessionsInfo lists the open browsers.
type SessionsInfo struct {
	Current any           `json:"current"`
	Count   int           `json:"count"`
	Open    []SessionInfo `json:"open"`
}

// SessionInfo is one open browser.
type SessionInfo struct {
	Key     any  `json:"key"`
	Alias   bool `json:"alias"`
	Current bool `json:"current"`
}
