package runner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

type fakeExecutor struct {
	keywords map[string]func(args []string) (any, error)
	calls    []call
	closed   int
	ended    int
	closeErr error
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{keywords: map[string]func([]string) (any, error){
		"Log": func([]string) (any, error) { return nil, nil },
		"Fail": func(args []string) (any, error) {
			return nil, errors.New("failed: " + args[0])
		},
	}}
}

func (f *fakeExecutor) RunKeyword(_ context.Context, name string, args []string) (any, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	kw, ok := f.keywords[name]
	if !ok {
		return nil, errors.New("no keyword with name '" + name + "' found")
	}
	return kw(args)
}

func (f *fakeExecutor) Close() error {
	f.closed++
	return f.closeErr
}

func (f *fakeExecutor) EndSuite() {
	f.ended++
}

func (f *fakeExecutor) names() []string {
	names := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		names = append(names, c.name)
	}
	return names
}

func TestLoadSuite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "login.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
variables:
  base: https://example.com
  retries: 3
setup:
  - keyword: Open Browser
    args: ["${base}", chrome]
steps:
  - keyword: Set Selenium Timeout
    args: [10]
  - keyword: Input Text
    args: [id=remember, "x", true]
    retry: 2
    retry-interval: 100ms
    expect-error: not found
    assign: result
teardown:
  - keyword: Close All Browsers
`), 0644))

	suite, err := LoadSuite(path)
	require.NoError(t, err)
	assert.Equal(t, "login", suite.Name)
	assert.Equal(t, path, suite.Path())
	assert.Equal(t, "https://example.com", suite.Variables["base"])
	require.Len(t, suite.Steps, 2)
	step := suite.Steps[1]
	assert.Equal(t, 2, step.Retry)
	assert.Equal(t, "100ms", step.RetryInterval)
	assert.Equal(t, "not found", step.ExpectError)
	assert.Equal(t, "result", step.Assign)

	args, err := substitute(suite.Steps[0].Args, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, []string{"10"}, args)
	args, err = substitute(step.Args, map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, []string{"id=remember", "x", "True"}, args)
}

func TestLoadSuiteErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := LoadSuite(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps:\n  - args: [a]\n"), 0644))
	_, err = LoadSuite(path)
	assert.ErrorContains(t, err, "has no keyword")
}

func TestLoadSuites(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yml"), []byte("name: second\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("name: first\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	suites, err := LoadSuites(dir)
	require.NoError(t, err)
	require.Len(t, suites, 2)
	assert.Equal(t, "first", suites[0].Name)
	assert.Equal(t, "second", suites[1].Name)
}

func TestRunPassingSuite(t *testing.T) {
	exec := newFakeExecutor()
	exec.keywords["Open Browser"] = func([]string) (any, error) { return 1, nil }
	rm := NewRunnerManager(exec)
	rm.SetVariable("browser", "chrome")

	suite := &Suite{
		Name:      "passing",
		Variables: map[string]any{"url": "http://a.test"},
		Setup:     []Step{{Keyword: "Open Browser", Args: []any{"${url}", "${browser}"}, Assign: "${id}"}},
		Steps:     []Step{{Keyword: "Log", Args: []any{"opened ${id} at ${url}/x"}}},
		Teardown:  []Step{{Keyword: "Log", Args: []any{"bye"}}},
	}
	result := rm.Run(context.Background(), suite)

	assert.True(t, result.Passed())
	require.Len(t, result.Steps, 3)
	assert.Equal(t, []string{"http://a.test", "chrome"}, exec.calls[0].args)
	assert.Equal(t, []string{"opened 1 at http://a.test/x"}, exec.calls[1].args)
	assert.Equal(t, 1, result.Steps[0].Return)
	assert.Equal(t, PhaseTeardown, result.Steps[2].Phase)
	assert.Equal(t, 1, exec.closed)
	assert.Equal(t, 1, exec.ended)
}

func TestRunStopsAtFirstFailureButRunsTeardown(t *testing.T) {
	exec := newFakeExecutor()
	rm := NewRunnerManager(exec)
	suite := &Suite{
		Name:     "failing",
		Steps:    []Step{{Keyword: "Fail", Args: []any{"one"}}, {Keyword: "Log"}},
		Teardown: []Step{{Keyword: "Fail", Args: []any{"two"}}, {Keyword: "Log", Args: []any{"still runs"}}},
	}
	result := rm.Run(context.Background(), suite)

	assert.False(t, result.Passed())
	assert.Equal(t, []string{"Fail", "Fail", "Log"}, exec.names())
	require.Len(t, result.Steps, 3)
	assert.Equal(t, "failed: one", result.Steps[0].Error)
	assert.Equal(t, StatusFail, result.Steps[1].Status)
	assert.Equal(t, StatusPass, result.Steps[2].Status)
	assert.Equal(t, 1, exec.closed)
}

func TestRunSetupFailureSkipsSteps(t *testing.T) {
	exec := newFakeExecutor()
	rm := NewRunnerManager(exec)
	result := rm.Run(context.Background(), &Suite{
		Setup: []Step{{Keyword: "Fail", Args: []any{"setup"}}},
		Steps: []Step{{Keyword: "Log"}},
	})
	assert.False(t, result.Passed())
	assert.Equal(t, []string{"Fail"}, exec.names())
}

func TestRunRetry(t *testing.T) {
	exec := newFakeExecutor()
	attempts := 0
	exec.keywords["Flaky"] = func([]string) (any, error) {
		attempts++
		if attempts < 3 {
			return nil, errors.New("not yet")
		}
		return "ok", nil
	}
	rm := NewRunnerManager(exec)
	result := rm.Run(context.Background(), &Suite{
		Steps: []Step{{Keyword: "Flaky", Retry: 2, RetryInterval: "1ms"}},
	})
	require.True(t, result.Passed())
	assert.Equal(t, 3, result.Steps[0].Attempts)
	assert.Equal(t, "ok", result.Steps[0].Return)

	attempts = 0
	result = rm.Run(context.Background(), &Suite{
		Steps: []Step{{Keyword: "Flaky", Retry: 1, RetryInterval: "1ms"}},
	})
	assert.False(t, result.Passed())
	assert.Equal(t, 2, result.Steps[0].Attempts)
}

func TestRunExpectError(t *testing.T) {
	exec := newFakeExecutor()
	rm := NewRunnerManager(exec)

	result := rm.Run(context.Background(), &Suite{
		Steps: []Step{{Keyword: "Fail", Args: []any{"boom"}, ExpectError: "boom"}},
	})
	assert.True(t, result.Passed())

	result = rm.Run(context.Background(), &Suite{
		Steps: []Step{{Keyword: "Log", ExpectError: "boom"}},
	})
	assert.False(t, result.Passed())
	assert.Contains(t, result.Steps[0].Error, "but the keyword passed")

	result = rm.Run(context.Background(), &Suite{
		Steps: []Step{{Keyword: "Fail", Args: []any{"other"}, ExpectError: "boom"}},
	})
	assert.False(t, result.Passed())
	assert.Contains(t, result.Steps[0].Error, "but got 'failed: other'")
}

func TestRunMissingVariable(t *testing.T) {
	exec := newFakeExecutor()
	rm := NewRunnerManager(exec)
	result := rm.Run(context.Background(), &Suite{
		Steps: []Step{{Keyword: "Log", Args: []any{"${nope}"}}},
	})
	assert.False(t, result.Passed())
	assert.Equal(t, "variable '${nope}' not found", result.Steps[0].Error)
	assert.Empty(t, exec.calls)
}

func TestRunCloseFailureFailsSuite(t *testing.T) {
	exec := newFakeExecutor()
	exec.closeErr = errors.New("hung")
	rm := NewRunnerManager(exec)
	result := rm.Run(context.Background(), &Suite{Steps: []Step{{Keyword: "Log"}}})
	assert.False(t, result.Passed())
	last := result.Steps[len(result.Steps)-1]
	assert.Equal(t, "Close All Browsers", last.Keyword)
	assert.Equal(t, "hung", last.Error)
}

func TestRunCancelledContextStillRunsTeardown(t *testing.T) {
	exec := newFakeExecutor()
	rm := NewRunnerManager(exec)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := rm.Run(ctx, &Suite{
		Steps:    []Step{{Keyword: "Log"}},
		Teardown: []Step{{Keyword: "Log", Args: []any{"teardown"}}},
	})
	assert.False(t, result.Passed())
	assert.Equal(t, []string{"Log"}, exec.names())
	assert.Equal(t, []string{"teardown"}, exec.calls[0].args)
}

func TestAbortStopsAfterCurrentStep(t *testing.T) {
	exec := newFakeExecutor()
	rm := NewRunnerManager(exec)
	exec.keywords["Stop"] = func([]string) (any, error) {
		rm.Abort()
		return nil, nil
	}

	result := rm.Run(context.Background(), &Suite{
		Name:     "aborted",
		Steps:    []Step{{Keyword: "Stop"}, {Keyword: "Log", Args: []any{"skipped"}}},
		Teardown: []Step{{Keyword: "Log", Args: []any{"teardown"}}},
	})
	assert.True(t, rm.Aborted())
	assert.False(t, result.Passed())
	assert.Equal(t, []string{"Stop", "Log"}, exec.names())
	assert.Equal(t, []string{"teardown"}, exec.calls[1].args)
	assert.Equal(t, 1, exec.closed)

	result = rm.Run(context.Background(), &Suite{
		Setup:    []Step{{Keyword: "Log", Args: []any{"setup"}}},
		Teardown: []Step{{Keyword: "Log", Args: []any{"teardown"}}},
	})
	assert.False(t, result.Passed())
	require.Len(t, exec.calls, 3)
	assert.Equal(t, []string{"teardown"}, exec.calls[2].args)
}
