package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/luispater/seleniumKeywordAPI/internal/browser"
	"github.com/luispater/seleniumKeywordAPI/internal/utils"
	log "github.com/sirupsen/logrus"
)

const screenshotIndexPlaceholder = "{index}"

func (k *Keywords) ExecuteJavaScript(ctx context.Context, code ...string) (any, error) {
	b, err := k.current()
	if err != nil {
		return nil, err
	}
	script := strings.Join(code, " ")
	log.Infof("Executing JavaScript:\n%s", script)
	return b.ExecuteScript(ctx, script)
}

func (k *Keywords) GetCookies(ctx context.Context) (string, error) {
	b, err := k.current()
	if err != nil {
		return "", err
	}
	cookies, err := b.Cookies(ctx)
	if err != nil {
		return "", err
	}
	pairs := make([]string, 0, len(cookies))
	for _, c := range cookies {
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	return strings.Join(pairs, "; "), nil
}

func (k *Keywords) GetCookieValue(ctx context.Context, name string) (string, error) {
	b, err := k.current()
	if err != nil {
		return "", err
	}
	cookies, err := b.Cookies(ctx)
	if err != nil {
		return "", err
	}
	for _, c := range cookies {
		if c.Name == name {
			return c.Value, nil
		}
	}
	return "", fmt.Errorf("cookie with name '%s' not found", name)
}

func (k *Keywords) AddCookie(ctx context.Context, name, value, path, domain string, secure bool, expiry string) error {
	b, err := k.current()
	if err != nil {
		return err
	}
	cookie := browser.Cookie{
		Name:   name,
		Value:  value,
		Path:   path,
		Domain: domain,
		Secure: secure,
	}
	if expiry != "" {
		if cookie.Expiry, err = parseExpiry(expiry); err != nil {
			return err
		}
	}
	return b.AddCookie(ctx, cookie)
}

func (k *Keywords) DeleteAllCookies(ctx context.Context) error {
	b, err := k.current()
	if err != nil {
		return err
	}
	return b.DeleteAllCookies(ctx)
}

// CapturePageScreenshot logs and returns an empty path when no browser is
// open, so it can serve as the failure keyword.
func (k *Keywords) CapturePageScreenshot(ctx context.Context, filename string) (string, error) {
	b, err := k.current()
	if err != nil {
		log.Info("Cannot capture screenshot because no browser is open.")
		return "", nil
	}
	if filename == "" {
		filename = "selenium-screenshot-" + screenshotIndexPlaceholder + ".png"
	}

	path, err := k.screenshotPath(filename)
	if err != nil {
		return "", err
	}
	data, err := b.Screenshot(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to capture screenshot: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	if err = os.WriteFile(path, data, 0644); err != nil {
		return "", err
	}
	log.Infof("Screenshot saved to %s", path)
	return path, nil
}

func (k *Keywords) SetScreenshotDirectory(_ context.Context, path string) (string, error) {
	previous := k.lib.screenshotDir()
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return "", err
		}
		path = abs
	}
	k.lib.screenshotDirectory = path
	return previous, nil
}

func (k *Keywords) SetSeleniumTimeout(_ context.Context, value time.Duration) (string, error) {
	previous := utils.FormatDuration(k.lib.timeout)
	k.lib.timeout = value
	return previous, nil
}

func (k *Keywords) GetSeleniumTimeout(_ context.Context) (string, error) {
	return utils.FormatDuration(k.lib.timeout), nil
}

func (k *Keywords) SetSeleniumImplicitWait(_ context.Context, value time.Duration) (string, error) {
	previous := utils.FormatDuration(k.lib.implicitWait)
	k.lib.implicitWait = value
	for _, b := range k.lib.browsers.Sessions() {
		if err := b.SetImplicitWait(value); err != nil {
			return "", err
		}
	}
	return previous, nil
}

func (k *Keywords) SetSeleniumSpeed(_ context.Context, value time.Duration) (string, error) {
	previous := utils.FormatDuration(k.lib.speed)
	k.lib.speed = value
	return previous, nil
}

func (k *Keywords) GetSeleniumSpeed(_ context.Context) (string, error) {
	return utils.FormatDuration(k.lib.speed), nil
}

func (k *Keywords) RegisterKeywordToRunOnFailure(_ context.Context, keyword string) (string, error) {
	previous := k.lib.runOnFailure
	if previous == "" {
		previous = "No keyword"
	}
	k.lib.runOnFailure = resolveRunOnFailure(keyword)
	if k.lib.runOnFailure == "" {
		log.Info("Keyword will not be run on failure.")
	} else {
		log.Infof("%s will be run on failure.", k.lib.runOnFailure)
	}
	return previous, nil
}

func (k *Keywords) AddLocationStrategy(_ context.Context, strategyName, script string, persist bool) error {
	return k.lib.finder.Register(strategyName, script, persist)
}

func (k *Keywords) RemoveLocationStrategy(_ context.Context, strategyName string) error {
	return k.lib.finder.Unregister(strategyName)
}

// screenshotPath resolves filename against the screenshot directory and
// replaces the index placeholder with the first number not taken on disk.
func (k *Keywords) screenshotPath(filename string) (string, error) {
	dir := k.lib.screenshotDir()
	if !strings.Contains(filename, screenshotIndexPlaceholder) {
		if filepath.IsAbs(filename) {
			return filename, nil
		}
		return filepath.Join(dir, filename), nil
	}
	for index := 1; ; index++ {
		name := strings.ReplaceAll(filename, screenshotIndexPlaceholder, strconv.Itoa(index))
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, name)
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		} else if err != nil {
			return "", err
		}
	}
}

func (l *Library) screenshotDir() string {
	switch {
	case l.screenshotDirectory != "":
		return l.screenshotDirectory
	case l.screenshotRoot != "":
		return l.screenshotRoot
	default:
		return "."
	}
}

func parseExpiry(value string) (time.Time, error) {
	if seconds, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
		return time.Unix(seconds, 0).UTC(), nil
	}
	t, err := time.Parse(time.DateTime, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid cookie expiry '%s'", value)
	}
	return t, nil
}
