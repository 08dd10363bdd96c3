// Package chrome drives a local Chrome through the DevTools protocol.
package chrome

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/chromedp/chromedp"
	"github.com/luispater/seleniumKeywordAPI/internal/browser"
	"github.com/luispater/seleniumKeywordAPI/internal/config"
	log "github.com/sirupsen/logrus"
)

// Manager launches Chrome processes. Every opened browser gets its own
// allocator so sessions do not share profiles or cookies.
type Manager struct {
	appConfig *config.AppConfig
	execPath  string
}

// NewManager creates a new Chromedp Manager instance. It does not launch a
// browser yet.
func NewManager(appConfig *config.AppConfig) (*Manager, error) {
	if appConfig == nil {
		return nil, fmt.Errorf("appConfig cannot be nil")
	}

	execPath := appConfig.Browser.ChromePath
	if execPath == "" {
		execPath = os.Getenv("CHROME_BIN")
		if execPath == "" {
			log.Warn("Chromedp browser path not specified in config or CHROME_BIN env, will attempt auto-detection.")
		}
	}

	return &Manager{
		appConfig: appConfig,
		execPath:  execPath,
	}, nil
}

// Open launches a browser and navigates it to url when url is not empty.
// Only Chrome flavoured browser names are accepted.
func (m *Manager) Open(ctx context.Context, browserName, url string) (browser.Browser, error) {
	headless := m.appConfig.Headless
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(browserName), " ", "")) {
	case "", "chrome", "googlechrome", "gc", "chromium":
	case "headlesschrome":
		headless = true
	default:
		return nil, fmt.Errorf("%s is not supported by the chrome driver", browserName)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), m.allocatorOptions(headless)...)
	browserCtx, browserCancel := chromedp.NewContext(
		allocCtx,
		chromedp.WithLogf(log.Infof),
	)

	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	log.Infof("Chromedp browser launched successfully with path: %s", m.execPath)

	p := &Page{
		ctx:         browserCtx,
		cancel:      browserCancel,
		allocCancel: allocCancel,
	}
	p.listen()
	if url != "" {
		if err := p.Navigate(ctx, url); err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("failed to navigate new page to %s: %w", url, err)
		}
	}
	return p, nil
}

func (m *Manager) allocatorOptions(headless bool) []chromedp.ExecAllocatorOption {
	opts := make([]chromedp.ExecAllocatorOption, 0, 12)
	if m.execPath != "" {
		opts = append(opts, chromedp.ExecPath(m.execPath))
	}
	for _, f := range m.flags(headless) {
		opts = append(opts, chromedp.Flag(f.name, f.value))
	}
	return opts
}

type flag struct {
	name  string
	value any
}

// flags lists the Chrome command line switches for a new browser. Later
// entries override earlier ones with the same name.
func (m *Manager) flags(headless bool) []flag {
	browserConfig := m.appConfig.Browser
	flags := []flag{
		{"no-first-run", true},
		{"no-default-browser-check", true},
	}

	if headless {
		flags = append(flags, flag{"headless", true}, flag{"disable-gpu", true}, flag{"window-size", "1920,1080"})
	}
	if len(browserConfig.WindowSize) == 2 {
		flags = append(flags, flag{"window-size", fmt.Sprintf("%d,%d", browserConfig.WindowSize[0], browserConfig.WindowSize[1])})
	}

	if browserConfig.UserDataDir != "" {
		flags = append(flags, flag{"user-data-dir", browserConfig.UserDataDir})
	}
	if browserConfig.UserAgent != "" {
		flags = append(flags, flag{"user-agent", browserConfig.UserAgent})
	}
	if browserConfig.ProxyURL != "" {
		flags = append(flags, flag{"proxy-server", browserConfig.ProxyURL})
	}

	for _, arg := range browserConfig.Args {
		if name, value, ok := parseFlag(arg); ok {
			flags = append(flags, flag{name, value})
		}
	}
	return flags
}

// parseFlag turns "--name=value" or "--name" into a chromedp flag.
func parseFlag(arg string) (string, any, bool) {
	if arg == "" {
		return "", nil, false
	}
	parts := strings.SplitN(arg, "=", 2)
	name := strings.TrimPrefix(parts[0], "--")
	if name == "" {
		return "", nil, false
	}
	if len(parts) == 2 {
		return name, parts[1], true
	}
	return name, true, true
}
