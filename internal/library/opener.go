package library

import (
	"fmt"

	"github.com/luispater/seleniumKeywordAPI/internal/browser"
	"github.com/luispater/seleniumKeywordAPI/internal/browser/chrome"
	"github.com/luispater/seleniumKeywordAPI/internal/browser/playwright"
	"github.com/luispater/seleniumKeywordAPI/internal/browser/selenium"
	"github.com/luispater/seleniumKeywordAPI/internal/config"
)

// NewOpener returns the browser backend named by cfg.Driver.
func NewOpener(cfg *config.AppConfig) (browser.Opener, error) {
	switch cfg.Driver {
	case config.DriverSelenium, "":
		opener, err := selenium.NewOpener(cfg)
		if err != nil {
			return nil, err
		}
		return opener, nil
	case config.DriverChrome:
		manager, err := chrome.NewManager(cfg)
		if err != nil {
			return nil, err
		}
		return manager, nil
	case config.DriverPlaywright:
		opener, err := playwright.NewOpener(cfg)
		if err != nil {
			return nil, err
		}
		return opener, nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}
}
