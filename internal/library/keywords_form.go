package library

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/luispater/seleniumKeywordAPI/internal/browser"
	"github.com/luispater/seleniumKeywordAPI/internal/locator"
	log "github.com/sirupsen/logrus"
)

const (
	alertAccept  = "ACCEPT"
	alertDismiss = "DISMISS"
	alertLeave   = "LEAVE"
)

func (k *Keywords) HandleAlert(ctx context.Context, action, timeout string) (string, error) {
	b, err := k.current()
	if err != nil {
		return "", err
	}
	action, err = alertAction(action)
	if err != nil {
		return "", err
	}
	message, err := k.waitForAlert(ctx, b, timeout)
	if err != nil {
		return "", err
	}
	if action != alertLeave {
		if err = b.HandleAlert(ctx, action == alertAccept); err != nil {
			return "", err
		}
	}
	log.Infof("Alert with message '%s' handled with action %s.", message, action)
	return message, nil
}

func (k *Keywords) AlertShouldBePresent(ctx context.Context, text, action, timeout string) error {
	message, err := k.HandleAlert(ctx, action, timeout)
	if err != nil {
		return err
	}
	if text != "" && text != message {
		return assertionf("", fmt.Sprintf("Alert message should have been '%s' but it was '%s'.", text, message))
	}
	return nil
}

func (k *Keywords) AlertShouldNotBePresent(ctx context.Context, action, timeout string) error {
	b, err := k.current()
	if err != nil {
		return err
	}
	action, err = alertAction(action)
	if err != nil {
		return err
	}
	message, err := k.waitForAlert(ctx, b, timeout)
	if err != nil {
		var assertion *AssertionError
		if errors.As(err, &assertion) {
			return nil
		}
		return err
	}
	if action != alertLeave {
		if errHandle := b.HandleAlert(ctx, action == alertAccept); errHandle != nil {
			log.Debugf("Could not handle unexpected alert: %v", errHandle)
		}
	}
	return assertionf("", fmt.Sprintf("Alert with message '%s' present.", message))
}

// waitForAlert returns the message of the alert once one is open.
func (k *Keywords) waitForAlert(ctx context.Context, b browser.Browser, timeout string) (string, error) {
	var message string
	err := k.waitUntil(ctx, timeout, "", "Alert not found in <TIMEOUT>.", func(ctx context.Context) (bool, error) {
		text, err := b.AlertText(ctx)
		if errors.Is(err, browser.ErrNoAlert) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		message = text
		return true, nil
	})
	return message, err
}

func alertAction(action string) (string, error) {
	action = strings.ToUpper(strings.TrimSpace(action))
	switch action {
	case "":
		return alertAccept, nil
	case alertAccept, alertDismiss, alertLeave:
		return action, nil
	}
	return "", fmt.Errorf("invalid alert action '%s', expected ACCEPT, DISMISS or LEAVE", action)
}

func (k *Keywords) SubmitForm(ctx context.Context, locatorText string) error {
	if locatorText == "" {
		locatorText = "tag:form"
	}
	b, loc, err := k.element(locatorText)
	if err != nil {
		return err
	}
	log.Infof("Submitting form '%s'.", loc)
	return b.Submit(ctx, loc)
}

func (k *Keywords) SelectCheckbox(ctx context.Context, locatorText string) error {
	return k.setChecked(ctx, locatorText, true)
}

func (k *Keywords) UnselectCheckbox(ctx context.Context, locatorText string) error {
	return k.setChecked(ctx, locatorText, false)
}

func (k *Keywords) setChecked(ctx context.Context, locatorText string, checked bool) error {
	b, loc, err := k.element(locatorText)
	if err != nil {
		return err
	}
	if checked {
		log.Infof("Selecting checkbox '%s'.", loc)
	} else {
		log.Infof("Unselecting checkbox '%s'.", loc)
	}
	selected, err := b.IsSelected(ctx, loc)
	if err != nil {
		return err
	}
	if selected == checked {
		return nil
	}
	return b.Click(ctx, loc)
}

func (k *Keywords) CheckboxShouldBeSelected(ctx context.Context, locatorText string) error {
	b, loc, err := k.element(locatorText)
	if err != nil {
		return err
	}
	log.Infof("Verifying checkbox '%s' is selected.", loc)
	selected, err := b.IsSelected(ctx, loc)
	if err != nil {
		return err
	}
	if !selected {
		return assertionf("", fmt.Sprintf("Checkbox '%s' should have been selected but was not.", locatorText))
	}
	return nil
}

func (k *Keywords) CheckboxShouldNotBeSelected(ctx context.Context, locatorText string) error {
	b, loc, err := k.element(locatorText)
	if err != nil {
		return err
	}
	log.Infof("Verifying checkbox '%s' is not selected.", loc)
	selected, err := b.IsSelected(ctx, loc)
	if err != nil {
		return err
	}
	if selected {
		return assertionf("", fmt.Sprintf("Checkbox '%s' should not have been selected.", locatorText))
	}
	return nil
}

func (k *Keywords) SelectRadioButton(ctx context.Context, groupName, value string) error {
	b, err := k.current()
	if err != nil {
		return err
	}
	log.Infof("Selecting '%s' from radio button '%s'.", value, groupName)
	loc := radioButton(groupName, value)
	count, err := b.Count(ctx, loc)
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("no radio button with name '%s' and value '%s' found", groupName, value)
	}
	selected, err := b.IsSelected(ctx, loc)
	if err != nil || selected {
		return err
	}
	return b.Click(ctx, loc)
}

func (k *Keywords) RadioButtonShouldBeSetTo(ctx context.Context, groupName, value string) error {
	log.Infof("Verifying radio button '%s' has selection '%s'.", groupName, value)
	actual, err := k.selectedRadio(ctx, groupName)
	if err != nil {
		return err
	}
	if actual != value {
		return assertionf("", fmt.Sprintf("Selection of radio button '%s' should have been '%s' but was '%s'.", groupName, value, actual))
	}
	return nil
}

func (k *Keywords) RadioButtonShouldNotBeSelected(ctx context.Context, groupName string) error {
	log.Infof("Verifying radio button '%s' has no selection.", groupName)
	actual, err := k.selectedRadio(ctx, groupName)
	if err != nil {
		return err
	}
	if actual != "" {
		return assertionf("", fmt.Sprintf("Radio button group '%s' should not have had selection, but '%s' was selected.", groupName, actual))
	}
	return nil
}

// selectedRadio returns the value of the selected button of a group, or ""
// when none is selected.
func (k *Keywords) selectedRadio(ctx context.Context, groupName string) (string, error) {
	b, err := k.current()
	if err != nil {
		return "", err
	}
	group := radioGroup(groupName)
	count, err := b.Count(ctx, locator.Locator{Strategy: locator.XPath, Value: group})
	if err != nil {
		return "", err
	}
	if count == 0 {
		return "", fmt.Errorf("no radio button with name '%s' found", groupName)
	}
	for i := 1; i <= count; i++ {
		button := locator.Locator{Strategy: locator.XPath, Value: fmt.Sprintf("(%s)[%d]", group, i)}
		selected, errSelected := b.IsSelected(ctx, button)
		if errSelected != nil {
			return "", errSelected
		}
		if selected {
			return b.Attribute(ctx, button, "value")
		}
	}
	return "", nil
}

func radioGroup(groupName string) string {
	return fmt.Sprintf("//input[@type='radio' and @name=%s]", locator.XPathLiteral(groupName))
}

// radioButton matches the button of a group by value or id.
func radioButton(groupName, value string) locator.Locator {
	lit := locator.XPathLiteral(value)
	xpath := fmt.Sprintf("//input[@type='radio' and @name=%s and (@value=%s or @id=%s)]", locator.XPathLiteral(groupName), lit, lit)
	return locator.Locator{Strategy: locator.XPath, Value: xpath}
}

func (k *Keywords) SelectFromListByValue(ctx context.Context, locatorText string, values ...string) error {
	return k.selectFromList(ctx, locatorText, values, false)
}

func (k *Keywords) SelectFromListByLabel(ctx context.Context, locatorText string, labels ...string) error {
	return k.selectFromList(ctx, locatorText, labels, true)
}

func (k *Keywords) selectFromList(ctx context.Context, locatorText string, values []string, byLabel bool) error {
	if len(values) == 0 {
		return fmt.Errorf("no values given")
	}
	b, loc, err := k.element(locatorText)
	if err != nil {
		return err
	}
	kind := "value"
	if byLabel {
		kind = "label"
	}
	log.Infof("Selecting options from selection list '%s' by %s %s.", loc, kind, strings.Join(values, ", "))
	return b.SelectOptions(ctx, loc, values, byLabel)
}

func (k *Keywords) GetSelectedListLabel(ctx context.Context, locatorText string) (string, error) {
	selection, err := k.selection(ctx, locatorText)
	if err != nil {
		return "", err
	}
	return selection[0].Label, nil
}

func (k *Keywords) GetSelectedListLabels(ctx context.Context, locatorText string) ([]string, error) {
	selection, err := k.selection(ctx, locatorText)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(selection))
	for _, o := range selection {
		labels = append(labels, o.Label)
	}
	return labels, nil
}

func (k *Keywords) GetSelectedListValue(ctx context.Context, locatorText string) (string, error) {
	selection, err := k.selection(ctx, locatorText)
	if err != nil {
		return "", err
	}
	return selection[0].Value, nil
}

func (k *Keywords) GetSelectedListValues(ctx context.Context, locatorText string) ([]string, error) {
	selection, err := k.selection(ctx, locatorText)
	if err != nil {
		return nil, err
	}
	values := make([]string, 0, len(selection))
	for _, o := range selection {
		values = append(values, o.Value)
	}
	return values, nil
}

// selection returns the selected options and fails when there are none.
func (k *Keywords) selection(ctx context.Context, locatorText string) ([]browser.Option, error) {
	b, loc, err := k.element(locatorText)
	if err != nil {
		return nil, err
	}
	selection, err := b.SelectedOptions(ctx, loc)
	if err != nil {
		return nil, err
	}
	if len(selection) == 0 {
		return nil, fmt.Errorf("select list with locator '%s' does not have any selected values", locatorText)
	}
	return selection, nil
}

func (k *Keywords) ListSelectionShouldBe(ctx context.Context, locatorText string, expected ...string) error {
	b, loc, err := k.element(locatorText)
	if err != nil {
		return err
	}
	log.Infof("Verifying list '%s' has option [ %s ] selected.", locatorText, strings.Join(expected, " | "))
	selection, err := b.SelectedOptions(ctx, loc)
	if err != nil {
		return err
	}
	if !selectionMatches(selection, expected) {
		return assertionf("", fmt.Sprintf("List '%s' should have had selection [ %s ] but selection was [ %s ].", locatorText, strings.Join(expected, " | "), formatSelection(selection)))
	}
	return nil
}

func (k *Keywords) ListShouldHaveNoSelections(ctx context.Context, locatorText string) error {
	b, loc, err := k.element(locatorText)
	if err != nil {
		return err
	}
	log.Infof("Verifying list '%s' has no selections.", locatorText)
	selection, err := b.SelectedOptions(ctx, loc)
	if err != nil {
		return err
	}
	if len(selection) > 0 {
		return assertionf("", fmt.Sprintf("List '%s' should have had no selection but selection was [ %s ].", locatorText, formatSelection(selection)))
	}
	return nil
}

// selectionMatches compares the selection with expected entries that may
// name either labels or values, in any order.
func selectionMatches(selection []browser.Option, expected []string) bool {
	if len(selection) != len(expected) {
		return false
	}
	labels := make([]string, 0, len(selection))
	values := make([]string, 0, len(selection))
	for _, o := range selection {
		labels = append(labels, o.Label)
		values = append(values, o.Value)
	}
	return sameItems(labels, expected) || sameItems(values, expected)
}

func sameItems(a, b []string) bool {
	counts := make(map[string]int, len(a))
	for _, s := range a {
		counts[s]++
	}
	for _, s := range b {
		if counts[s] == 0 {
			return false
		}
		counts[s]--
	}
	return true
}

func formatSelection(selection []browser.Option) string {
	parts := make([]string, 0, len(selection))
	for _, o := range selection {
		parts = append(parts, fmt.Sprintf("%s (%s)", o.Label, o.Value))
	}
	return strings.Join(parts, " | ")
}
