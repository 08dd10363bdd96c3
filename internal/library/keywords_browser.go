package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/luispater/seleniumKeywordAPI/internal/registry"
	"github.com/luispater/seleniumKeywordAPI/internal/utils"
	log "github.com/sirupsen/logrus"
)

func (k *Keywords) OpenBrowser(ctx context.Context, url, browserName, alias string) (any, error) {
	if alias != "" && k.lib.browsers.Contains(registry.Alias(alias)) {
		return nil, &registry.DuplicateAliasError{Alias: alias}
	}
	log.Infof("Opening browser '%s' to base url '%s'.", browserName, url)
	b, err := k.lib.opener.Open(ctx, browserName, url)
	if err != nil {
		return nil, err
	}
	key, err := k.lib.RegisterBrowser(b, alias)
	if err != nil {
		if errClose := b.Close(); errClose != nil {
			log.Warnf("Closing rejected browser failed: %v", errClose)
		}
		return nil, err
	}
	return key.Value(), nil
}

func (k *Keywords) CloseBrowser(_ context.Context) error {
	return k.lib.browsers.CloseCurrent()
}

func (k *Keywords) CloseAllBrowsers(_ context.Context) error {
	return k.lib.browsers.CloseAll()
}

func (k *Keywords) SwitchBrowser(_ context.Context, indexOrAlias string) error {
	key, ok := k.lib.browsers.Resolve(indexOrAlias)
	if !ok {
		return &registry.UnknownSessionError{Key: registry.Alias(indexOrAlias)}
	}
	_, err := k.lib.browsers.Switch(key)
	return err
}

func (k *Keywords) GetBrowserAliases(_ context.Context) ([]string, error) {
	aliases := make([]string, 0)
	for _, key := range k.lib.browsers.Keys() {
		if key.IsAlias() {
			aliases = append(aliases, key.Name())
		}
	}
	return aliases, nil
}

func (k *Keywords) GetBrowserIds(_ context.Context) ([]any, error) {
	keys := k.lib.browsers.Keys()
	ids := make([]any, 0, len(keys))
	for _, key := range keys {
		ids = append(ids, key.Value())
	}
	return ids, nil
}

func (k *Keywords) GoTo(ctx context.Context, url string) error {
	b, err := k.current()
	if err != nil {
		return err
	}
	log.Infof("Opening url '%s'", url)
	return b.Navigate(ctx, url)
}

func (k *Keywords) GoBack(ctx context.Context) error {
	b, err := k.current()
	if err != nil {
		return err
	}
	return b.Back(ctx)
}

func (k *Keywords) ReloadPage(ctx context.Context) error {
	b, err := k.current()
	if err != nil {
		return err
	}
	return b.Reload(ctx)
}

func (k *Keywords) GetTitle(ctx context.Context) (string, error) {
	b, err := k.current()
	if err != nil {
		return "", err
	}
	return b.Title(ctx)
}

func (k *Keywords) GetLocation(ctx context.Context) (string, error) {
	b, err := k.current()
	if err != nil {
		return "", err
	}
	return b.Location(ctx)
}

func (k *Keywords) GetSource(ctx context.Context) (string, error) {
	b, err := k.current()
	if err != nil {
		return "", err
	}
	return b.Source(ctx)
}

func (k *Keywords) TitleShouldBe(ctx context.Context, title, message string) error {
	actual, err := k.GetTitle(ctx)
	if err != nil {
		return err
	}
	if actual != title {
		return assertionf(message, fmt.Sprintf("Title should have been '%s' but was '%s'.", title, actual))
	}
	log.Infof("Page title is '%s'.", title)
	return nil
}

func (k *Keywords) LocationShouldBe(ctx context.Context, url, message string) error {
	actual, err := k.GetLocation(ctx)
	if err != nil {
		return err
	}
	if actual != url {
		return assertionf(message, fmt.Sprintf("Location should have been '%s' but was '%s'.", url, actual))
	}
	log.Infof("Current location is '%s'.", url)
	return nil
}

func (k *Keywords) LocationShouldContain(ctx context.Context, expected, message string) error {
	actual, err := k.GetLocation(ctx)
	if err != nil {
		return err
	}
	if !strings.Contains(actual, expected) {
		return assertionf(message, fmt.Sprintf("Location should have contained '%s' but it was '%s'.", expected, actual))
	}
	log.Infof("Current location contains '%s'.", expected)
	return nil
}

func (k *Keywords) LocationShouldMatch(ctx context.Context, patterns ...string) error {
	if len(patterns) == 0 {
		return fmt.Errorf("at least one url pattern is required")
	}
	actual, err := k.GetLocation(ctx)
	if err != nil {
		return err
	}
	if !utils.MatchUrl(patterns, actual) {
		return &AssertionError{Message: fmt.Sprintf("Location '%s' did not match any of %v.", actual, patterns)}
	}
	return nil
}
