// Package runner executes keyword suites against a keyword library.
package runner

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/luispater/seleniumKeywordAPI/internal/utils"
	log "github.com/sirupsen/logrus"
)

const (
	StatusPass = "PASS"
	StatusFail = "FAIL"

	PhaseSetup    = "setup"
	PhaseSteps    = "steps"
	PhaseTeardown = "teardown"

	defaultRetryInterval = time.Second
)

var variablePattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Executor runs keywords. *library.Library implements it.
type Executor interface {
	RunKeyword(ctx context.Context, name string, args []string) (any, error)
	Close() error
	EndSuite()
}

// StepResult is the outcome of one step.
type StepResult struct {
	Phase    string        `json:"phase"`
	Keyword  string        `json:"keyword"`
	Args     []string      `json:"args"`
	Status   string        `json:"status"`
	Return   any           `json:"return,omitempty"`
	Error    string        `json:"error,omitempty"`
	Attempts int           `json:"attempts"`
	Elapsed  time.Duration `json:"elapsed"`
}

// SuiteResult is the outcome of a suite run.
type SuiteResult struct {
	Name    string        `json:"name"`
	Status  string        `json:"status"`
	Steps   []StepResult  `json:"steps"`
	Elapsed time.Duration `json:"elapsed"`
}

// Passed reports whether every step passed.
func (r *SuiteResult) Passed() bool {
	return r.Status == StatusPass
}

// RunnerManager runs suites one after another on a single executor.
type RunnerManager struct {
	executor  Executor
	variables map[string]any
	abort     atomic.Bool
}

func NewRunnerManager(executor Executor) *RunnerManager {
	return &RunnerManager{
		executor:  executor,
		variables: make(map[string]any),
	}
}

// Abort stops the running suite after the current step. Teardown still
// runs. Suites started afterwards skip their setup and steps.
func (rm *RunnerManager) Abort() {
	rm.abort.Store(true)
}

// Aborted reports whether Abort was called.
func (rm *RunnerManager) Aborted() bool {
	return rm.abort.Load()
}

// SetVariable presets a variable for every suite run by this manager. Suite
// variables override it.
func (rm *RunnerManager) SetVariable(name string, value any) {
	rm.variables[name] = value
}

// Run executes setup and steps until the first failure, then always runs
// the teardown, closes all browsers and ends the suite.
func (rm *RunnerManager) Run(ctx context.Context, suite *Suite) *SuiteResult {
	start := time.Now()
	result := &SuiteResult{Name: suite.Name, Status: StatusPass, Steps: make([]StepResult, 0)}

	variables := make(map[string]any, len(rm.variables)+len(suite.Variables))
	for k, v := range rm.variables {
		variables[k] = v
	}
	for k, v := range suite.Variables {
		variables[k] = v
	}

	log.Infof("Running suite '%s'", suite.Name)
	failed := rm.runPhase(ctx, PhaseSetup, suite.Setup, variables, result, true)
	if !failed {
		failed = rm.runPhase(ctx, PhaseSteps, suite.Steps, variables, result, true)
	}
	if rm.runPhase(context.WithoutCancel(ctx), PhaseTeardown, suite.Teardown, variables, result, false) {
		failed = true
	}

	if err := rm.executor.Close(); err != nil {
		log.Warnf("Closing browsers after suite '%s' failed: %v", suite.Name, err)
		result.Steps = append(result.Steps, StepResult{
			Phase:   PhaseTeardown,
			Keyword: "Close All Browsers",
			Status:  StatusFail,
			Error:   err.Error(),
		})
		failed = true
	}
	rm.executor.EndSuite()

	if failed {
		result.Status = StatusFail
	}
	result.Elapsed = time.Since(start)
	log.Infof("Suite '%s' finished: %s in %s", suite.Name, result.Status, result.Elapsed.Round(time.Millisecond))
	return result
}

// runPhase runs steps and reports whether any of them failed. With
// stopOnFailure the remaining steps are skipped after the first failure.
func (rm *RunnerManager) runPhase(ctx context.Context, phase string, steps []Step, variables map[string]any, result *SuiteResult, stopOnFailure bool) bool {
	failed := false
	for _, step := range steps {
		if phase != PhaseTeardown && (rm.abort.Load() || ctx.Err() != nil) {
			log.Debugf("Get abort signal, stop %s of suite '%s'", phase, result.Name)
			return true
		}
		stepResult := rm.runStep(ctx, phase, step, variables)
		result.Steps = append(result.Steps, stepResult)
		if stepResult.Status == StatusFail {
			failed = true
			if stopOnFailure {
				return true
			}
		}
	}
	return failed
}

func (rm *RunnerManager) runStep(ctx context.Context, phase string, step Step, variables map[string]any) StepResult {
	start := time.Now()
	stepResult := StepResult{Phase: phase, Keyword: step.Keyword, Status: StatusFail}

	args, err := substitute(step.Args, variables)
	if err != nil {
		stepResult.Error = err.Error()
		stepResult.Elapsed = time.Since(start)
		log.Infof("[%s] %s: %s (%v)", phase, step.Keyword, StatusFail, err)
		return stepResult
	}
	stepResult.Args = args

	interval := defaultRetryInterval
	if step.RetryInterval != "" {
		if interval, err = utils.ParseTimeString(step.RetryInterval); err != nil {
			stepResult.Error = fmt.Sprintf("invalid retry-interval: %v", err)
			stepResult.Elapsed = time.Since(start)
			return stepResult
		}
	}

	var value any
	for attempt := 0; attempt <= step.Retry; attempt++ {
		if attempt > 0 {
			log.Debugf("Retrying '%s' (%d/%d)", step.Keyword, attempt, step.Retry)
			select {
			case <-ctx.Done():
				err = ctx.Err()
			case <-time.After(interval):
			}
			if ctx.Err() != nil {
				break
			}
		}
		stepResult.Attempts = attempt + 1
		value, err = rm.executor.RunKeyword(ctx, step.Keyword, args)
		err = checkExpectedError(step.ExpectError, err)
		if err == nil {
			break
		}
	}

	if err != nil {
		stepResult.Error = err.Error()
		log.Infof("[%s] %s: %s (%v)", phase, step.Keyword, StatusFail, err)
	} else {
		stepResult.Status = StatusPass
		stepResult.Return = value
		if step.Assign != "" {
			variables[strings.TrimSuffix(strings.TrimPrefix(step.Assign, "${"), "}")] = value
		}
		log.Infof("[%s] %s: %s", phase, step.Keyword, StatusPass)
	}
	stepResult.Elapsed = time.Since(start)
	return stepResult
}

// checkExpectedError turns the keyword error into the step error. Without an
// expectation the keyword error is returned unchanged.
func checkExpectedError(expected string, err error) error {
	if expected == "" {
		return err
	}
	if err == nil {
		return fmt.Errorf("expected error containing '%s' but the keyword passed", expected)
	}
	if !strings.Contains(err.Error(), expected) {
		return fmt.Errorf("expected error containing '%s' but got '%s'", expected, err.Error())
	}
	return nil
}

func substitute(rawArgs []any, variables map[string]any) ([]string, error) {
	args := make([]string, 0, len(rawArgs))
	for _, raw := range rawArgs {
		arg := formatValue(raw)
		var missing string
		arg = variablePattern.ReplaceAllStringFunc(arg, func(match string) string {
			name := match[2 : len(match)-1]
			value, ok := variables[name]
			if !ok {
				if missing == "" {
					missing = name
				}
				return match
			}
			return formatValue(value)
		})
		if missing != "" {
			return nil, fmt.Errorf("variable '${%s}' not found", missing)
		}
		args = append(args, arg)
	}
	return args, nil
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "None"
	case string:
		return v
	case bool:
		if v {
			return "True"
		}
		return "False"
	default:
		return fmt.Sprint(v)
	}
}
