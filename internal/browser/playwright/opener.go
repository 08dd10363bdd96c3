// Package playwright drives local Firefox, Chromium and WebKit browsers
// through Playwright.
package playwright

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/luispater/seleniumKeywordAPI/internal/browser"
	"github.com/luispater/seleniumKeywordAPI/internal/config"
	pw "github.com/playwright-community/playwright-go"
	log "github.com/sirupsen/logrus"
)

const (
	engineFirefox  = "firefox"
	engineChromium = "chromium"
	engineWebKit   = "webkit"
)

// Opener launches browsers through one Playwright driver process, which is
// installed and started on the first Open.
type Opener struct {
	appConfig *config.AppConfig

	mu sync.Mutex
	pw *pw.Playwright
}

func NewOpener(appConfig *config.AppConfig) (*Opener, error) {
	if appConfig == nil {
		return nil, fmt.Errorf("appConfig cannot be nil")
	}
	if appConfig.Browser.UserDataDir != "" {
		log.Warn("user-data-dir is not supported by the playwright driver and is ignored")
	}
	return &Opener{appConfig: appConfig}, nil
}

// Open launches a browser with a fresh context and one page, and navigates
// it to url when url is not empty.
func (o *Opener) Open(ctx context.Context, browserName, url string) (browser.Browser, error) {
	engine, headless, err := engineFor(browserName, o.appConfig.Headless)
	if err != nil {
		return nil, err
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	instance, err := o.start()
	if err != nil {
		return nil, err
	}
	var browserType pw.BrowserType
	switch engine {
	case engineChromium:
		browserType = instance.Chromium
	case engineWebKit:
		browserType = instance.WebKit
	default:
		browserType = instance.Firefox
	}

	b, err := browserType.Launch(o.launchOptions(engine, headless))
	if err != nil {
		return nil, fmt.Errorf("failed to launch %s: %w", engine, err)
	}
	log.Debugf("Browser %s launched successfully.", engine)

	browserContext, err := b.NewContext(o.contextOptions())
	if err != nil {
		if bErr := b.Close(); bErr != nil {
			log.Debugf("Error closing browser after context creation failed: %v", bErr)
		}
		return nil, err
	}
	tab, err := browserContext.NewPage()
	if err != nil {
		if bErr := b.Close(); bErr != nil {
			log.Debugf("Error closing browser after page creation failed: %v", bErr)
		}
		return nil, err
	}

	p := &Page{browser: b, context: browserContext, page: tab}
	p.listen()
	if err = p.SetImplicitWait(0); err != nil {
		_ = p.Close()
		return nil, err
	}
	if url != "" {
		if err = p.Navigate(ctx, url); err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("failed to navigate new page to %s: %w", url, err)
		}
	}
	return p, nil
}

// Close stops the Playwright driver. Browsers still open through it die
// with it.
func (o *Opener) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pw == nil {
		return nil
	}
	err := o.pw.Stop()
	o.pw = nil
	if err != nil {
		log.Debugf("Error stopping playwright: %v", err)
		return err
	}
	log.Debug("Playwright driver stopped")
	return nil
}

func (o *Opener) start() (*pw.Playwright, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.pw != nil {
		return o.pw, nil
	}

	err := pw.Install(&pw.RunOptions{
		Verbose: o.appConfig.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("install playwright failed: %w", err)
	}
	instance, err := pw.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}
	o.pw = instance
	return instance, nil
}

func (o *Opener) launchOptions(engine string, headless bool) pw.BrowserTypeLaunchOptions {
	browserConfig := o.appConfig.Browser
	options := pw.BrowserTypeLaunchOptions{
		Headless: pw.Bool(headless),
	}
	if len(browserConfig.Args) > 0 {
		options.Args = append([]string{}, browserConfig.Args...)
	}
	if engine == engineChromium && browserConfig.ChromePath != "" {
		options.ExecutablePath = pw.String(browserConfig.ChromePath)
	}
	if browserConfig.ProxyURL != "" {
		options.Proxy = &pw.Proxy{Server: browserConfig.ProxyURL}
	}
	return options
}

func (o *Opener) contextOptions() pw.BrowserNewContextOptions {
	browserConfig := o.appConfig.Browser
	options := pw.BrowserNewContextOptions{}
	if browserConfig.UserAgent != "" {
		options.UserAgent = pw.String(browserConfig.UserAgent)
	}
	if len(browserConfig.WindowSize) == 2 {
		options.Viewport = &pw.Size{Width: browserConfig.WindowSize[0], Height: browserConfig.WindowSize[1]}
	}
	return options
}

// engineFor maps a browser name to a Playwright engine. The headless
// variants force headless mode.
func engineFor(browserName string, headless bool) (string, bool, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(browserName), " ", "")) {
	case "", "firefox", "ff":
		return engineFirefox, headless, nil
	case "headlessfirefox":
		return engineFirefox, true, nil
	case "chrome", "googlechrome", "gc", "chromium":
		return engineChromium, headless, nil
	case "headlesschrome":
		return engineChromium, true, nil
	case "webkit", "safari":
		return engineWebKit, headless, nil
	}
	return "", false, fmt.Errorf("%s is not supported by the playwright driver", browserName)
}
