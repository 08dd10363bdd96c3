package api

import (
	"context"
	"fmt"

	"github.com/luispater/seleniumKeywordAPI/internal/library"
	"github.com/luispater/seleniumKeywordAPI/internal/runner"
	log "github.com/sirupsen/logrus"
)

// KeywordProcessor implements TaskProcessor on top of a keyword library.
type KeywordProcessor struct {
	lib    *library.Library
	runner *runner.RunnerManager
}

// NewKeywordProcessor creates a processor that owns lib while the queue runs.
func NewKeywordProcessor(lib *library.Library) *KeywordProcessor {
	return &KeywordProcessor{
		lib:    lib,
		runner: runner.NewRunnerManager(lib),
	}
}

// Abort makes a running suite stop after its current step and skips the
// steps of suites that are still queued.
func (kp *KeywordProcessor) Abort() {
	kp.runner.Abort()
}

// ProcessTask runs one task against the library.
func (kp *KeywordProcessor) ProcessTask(ctx context.Context, task *RequestTask) *TaskResponse {
	log.Debugf("Starting to process task %s", task.ID)

	switch task.Kind {
	case TaskKeyword:
		value, err := kp.lib.RunKeyword(ctx, task.Keyword, task.Args)
		if err != nil {
			return &TaskResponse{Error: err}
		}
		return &TaskResponse{Success: true, Return: value}

	case TaskSuite:
		if task.Suite == nil {
			return &TaskResponse{Error: fmt.Errorf("no suite given")}
		}
		result := kp.runner.Run(ctx, task.Suite)
		response := &TaskResponse{Success: result.Passed(), Suite: result}
		if !result.Passed() {
			response.Error = fmt.Errorf("suite '%s' failed", result.Name)
		}
		return response

	case TaskSessions:
		return &TaskResponse{Success: true, Sessions: kp.sessions()}

	case TaskScreenshot:
		b, err := kp.lib.Browser()
		if err != nil {
			return &TaskResponse{Error: err}
		}
		data, err := b.Screenshot(ctx)
		if err != nil {
			return &TaskResponse{Error: err}
		}
		return &TaskResponse{Success: true, Screenshot: data}

	default:
		return &TaskResponse{Error: fmt.Errorf("unknown task kind '%s'", task.Kind)}
	}
}

func (kp *KeywordProcessor) sessions() *SessionsInfo {
	browsers := kp.lib.Browsers()
	info := &SessionsInfo{Count: browsers.Count(), Open: make([]SessionInfo, 0, browsers.Count())}
	current, hasCurrent := browsers.CurrentKey()
	if hasCurrent {
		info.Current = current.Value()
	}
	for _, key := range browsers.Keys() {
		info.Open = append(info.Open, SessionInfo{
			Key:     key.Value(),
			Alias:   key.IsAlias(),
			Current: hasCurrent && key == current,
		})
	}
	return info
}
