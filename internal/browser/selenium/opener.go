// Package selenium drives browsers through a remote WebDriver server.
package selenium

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/luispater/seleniumKeywordAPI/internal/browser"
	"github.com/luispater/seleniumKeywordAPI/internal/config"
	"github.com/luispater/seleniumKeywordAPI/internal/utils"
	log "github.com/sirupsen/logrus"
	sel "github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
	"github.com/tebeka/selenium/firefox"
)

var browserNames = map[string]string{
	"firefox":          "firefox",
	"ff":               "firefox",
	"headlessfirefox":  "headlessfirefox",
	"googlechrome":     "chrome",
	"chrome":           "chrome",
	"gc":               "chrome",
	"headlesschrome":   "headlesschrome",
	"edge":             "MicrosoftEdge",
	"microsoftedge":    "MicrosoftEdge",
	"safari":           "safari",
	"ie":               "internet explorer",
	"internetexplorer": "internet explorer",
}

// Opener opens sessions on the configured WebDriver server.
type Opener struct {
	appConfig *config.AppConfig
}

// proxyOnce guards sel.HTTPClient, which the WebDriver client shares across
// the whole process.
var proxyOnce sync.Once

// NewOpener prepares the WebDriver HTTP client. When the configuration names
// a proxy, all WebDriver traffic goes through it. The client is process wide:
// the first opener with a proxy sets it and later proxies are ignored.
func NewOpener(appConfig *config.AppConfig) (*Opener, error) {
	if appConfig == nil {
		return nil, fmt.Errorf("appConfig cannot be nil")
	}
	if proxyURL := appConfig.Browser.ProxyURL; proxyURL != "" {
		client, err := utils.NewHTTPClient(proxyURL, 0)
		if err != nil {
			return nil, err
		}
		applied := false
		proxyOnce.Do(func() {
			sel.HTTPClient = client
			applied = true
		})
		if applied {
			log.Debugf("WebDriver traffic goes through proxy %s", proxyURL)
		} else {
			log.Warnf("WebDriver HTTP client already set, proxy %s is ignored", proxyURL)
		}
	}
	return &Opener{appConfig: appConfig}, nil
}

// Open starts a remote session and navigates to url when it is not empty.
func (o *Opener) Open(ctx context.Context, browserName, url string) (browser.Browser, error) {
	caps, err := o.capabilities(browserName)
	if err != nil {
		return nil, err
	}
	if err = ctx.Err(); err != nil {
		return nil, err
	}

	log.Debugf("Opening %s on %s", caps["browserName"], o.appConfig.Browser.RemoteURL)
	wd, err := sel.NewRemote(caps, o.appConfig.Browser.RemoteURL)
	if err != nil {
		return nil, fmt.Errorf("failed to start %s session: %w", browserName, err)
	}

	s := &Session{wd: wd}
	if url != "" {
		if err = s.Navigate(ctx, url); err != nil {
			_ = wd.Quit()
			return nil, err
		}
	}
	return s, nil
}

func (o *Opener) capabilities(browserName string) (sel.Capabilities, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(browserName), " ", ""))
	if key == "" {
		key = "firefox"
	}
	name, ok := browserNames[key]
	if !ok {
		return nil, fmt.Errorf("%s is not a supported browser", browserName)
	}

	headless := o.appConfig.Headless
	switch name {
	case "headlesschrome":
		name, headless = "chrome", true
	case "headlessfirefox":
		name, headless = "firefox", true
	}

	caps := sel.Capabilities{"browserName": name}
	args := append([]string{}, o.appConfig.Browser.Args...)
	if o.appConfig.Browser.UserAgent != "" {
		args = append(args, "--user-agent="+o.appConfig.Browser.UserAgent)
	}
	switch name {
	case "chrome":
		if headless {
			args = append(args, "--headless", "--disable-gpu")
		}
		if len(o.appConfig.Browser.WindowSize) == 2 {
			args = append(args, fmt.Sprintf("--window-size=%d,%d", o.appConfig.Browser.WindowSize[0], o.appConfig.Browser.WindowSize[1]))
		}
		if o.appConfig.Browser.UserDataDir != "" {
			args = append(args, "--user-data-dir="+o.appConfig.Browser.UserDataDir)
		}
		caps.AddChrome(chrome.Capabilities{
			Path: o.appConfig.Browser.ChromePath,
			Args: args,
		})
	case "firefox":
		if headless {
			args = append(args, "-headless")
		}
		caps.AddFirefox(firefox.Capabilities{Args: args})
	}
	return caps, nil
}
