// Package library exposes browser automation as named keywords. Keywords
// are the exported methods of Keywords; the library dispatches them by name,
// converts string arguments to the parameter types and runs the configured
// failure keyword when one fails.
package library

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/luispater/seleniumKeywordAPI/internal/browser"
	"github.com/luispater/seleniumKeywordAPI/internal/config"
	"github.com/luispater/seleniumKeywordAPI/internal/locator"
	"github.com/luispater/seleniumKeywordAPI/internal/registry"
	"github.com/luispater/seleniumKeywordAPI/internal/utils"
	log "github.com/sirupsen/logrus"
)

// Library is one keyword library instance. It owns the browser registry for
// its lifetime. It is not safe for concurrent use; run keywords one at a time.
type Library struct {
	opener   browser.Opener
	browsers *registry.Registry[browser.Browser]
	finder   *locator.Finder
	keywords map[string]*keyword
	kw       *Keywords

	timeout      time.Duration
	implicitWait time.Duration
	speed        time.Duration

	runOnFailure        string
	runningOnFailure    bool
	screenshotRoot      string
	screenshotDirectory string
}

// New creates a library that opens browsers with opener, using the import
// arguments of cfg.
func New(cfg *config.AppConfig, opener browser.Opener) (*Library, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if opener == nil {
		return nil, fmt.Errorf("opener cannot be nil")
	}

	timeout, err := utils.ParseTimeString(cfg.Library.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid timeout: %w", err)
	}
	implicitWait, err := utils.ParseTimeString(cfg.Library.ImplicitWait)
	if err != nil {
		return nil, fmt.Errorf("invalid implicit wait: %w", err)
	}

	l := &Library{
		opener:         opener,
		browsers:       registry.New[browser.Browser](),
		finder:         locator.NewFinder(),
		timeout:        timeout,
		implicitWait:   implicitWait,
		runOnFailure:   resolveRunOnFailure(cfg.Library.RunOnFailure),
		screenshotRoot: cfg.Library.ScreenshotRootDirectory,
	}
	l.kw = &Keywords{lib: l}
	if l.keywords, err = buildKeywordTable(l.kw); err != nil {
		return nil, err
	}
	return l, nil
}

// Browser returns the current browser or registry.ErrNoCurrentSession.
func (l *Library) Browser() (browser.Browser, error) {
	return l.browsers.MustCurrent()
}

// RegisterBrowser adds an already opened browser under alias and makes it
// current. Libraries built on top of this one use it to share sessions.
func (l *Library) RegisterBrowser(b browser.Browser, alias string) (registry.Key, error) {
	key, err := l.browsers.Register(b, alias)
	if err != nil {
		return key, err
	}
	if err = b.SetImplicitWait(l.implicitWait); err != nil {
		log.Debugf("Could not set implicit wait on browser %s: %v", key, err)
	}
	return key, nil
}

// Browsers gives read access to the session registry.
func (l *Library) Browsers() *registry.Registry[browser.Browser] {
	return l.browsers
}

// Finder returns the locator parser.
func (l *Library) Finder() *locator.Finder {
	return l.finder
}

// Timeout is the default wait used by the waiting keywords.
func (l *Library) Timeout() time.Duration {
	return l.timeout
}

// Close closes every open browser. It is safe to call more than once.
func (l *Library) Close() error {
	return l.browsers.CloseAll()
}

// Shutdown closes every open browser and then the opener, for backends that
// keep a driver process running between browsers.
func (l *Library) Shutdown() error {
	err := l.Close()
	if closer, ok := l.opener.(io.Closer); ok {
		if errClose := closer.Close(); errClose != nil && err == nil {
			err = errClose
		}
	}
	return err
}

// EndSuite drops the location strategies that were not registered as
// persistent.
func (l *Library) EndSuite() {
	l.finder.ClearTransient()
	l.screenshotDirectory = ""
}

// RunKeyword runs the keyword called name with args. When it fails the
// run-on-failure keyword is executed before the error is returned.
func (l *Library) RunKeyword(ctx context.Context, name string, args []string) (any, error) {
	result, err := l.runKeyword(ctx, name, args)
	if err != nil {
		log.Debugf("Keyword '%s' failed: %v", name, err)
		l.failureOccurred(ctx)
		return nil, err
	}
	l.delay(ctx)
	return result, nil
}

func (l *Library) runKeyword(ctx context.Context, name string, args []string) (any, error) {
	kw, ok := l.keywords[normalizeName(name)]
	if !ok {
		return nil, fmt.Errorf("%w '%s' found", ErrUnknownKeyword, name)
	}
	log.Debugf("Running keyword '%s' with arguments %v", kw.Name, args)
	return kw.call(ctx, l.kw, args)
}

// failureOccurred runs the registered failure keyword. It never runs
// recursively and its own failure is only logged.
func (l *Library) failureOccurred(ctx context.Context) {
	if l.runningOnFailure || l.runOnFailure == "" {
		return
	}
	l.runningOnFailure = true
	defer func() {
		l.runningOnFailure = false
	}()
	if _, err := l.runKeyword(ctx, l.runOnFailure, nil); err != nil {
		log.Warnf("Keyword '%s' could not be run on failure: %v", l.runOnFailure, err)
	}
}

func (l *Library) delay(ctx context.Context) {
	if l.speed <= 0 {
		return
	}
	select {
	case <-time.After(l.speed):
	case <-ctx.Done():
	}
}

func resolveRunOnFailure(name string) string {
	name = strings.TrimSpace(name)
	if strings.EqualFold(name, "nothing") || utils.IsNoneValue(name) {
		return ""
	}
	return name
}
