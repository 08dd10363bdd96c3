package library

import (
	"context"
	"fmt"
	"strings"

	"github.com/luispater/seleniumKeywordAPI/internal/locator"
	log "github.com/sirupsen/logrus"
)

func (k *Keywords) GetTableCell(ctx context.Context, locatorText string, row, column int) (string, error) {
	b, err := k.current()
	if err != nil {
		return "", err
	}
	cell, err := k.tableCell(locatorText, row, column)
	if err != nil {
		return "", err
	}
	count, err := b.Count(ctx, cell)
	if err != nil {
		return "", err
	}
	if count == 0 {
		return "", fmt.Errorf("table '%s' has no cell in row %d and column %d", locatorText, row, column)
	}
	return b.Text(ctx, cell)
}

func (k *Keywords) TableCellShouldContain(ctx context.Context, locatorText string, row, column int, expected string) error {
	content, err := k.GetTableCell(ctx, locatorText, row, column)
	if err != nil {
		return err
	}
	log.Infof("Cell contains '%s'.", content)
	if !strings.Contains(content, expected) {
		return assertionf("", fmt.Sprintf("Table '%s' cell on row %d and column %d should have contained text '%s' but it has '%s'.", locatorText, row, column, expected, content))
	}
	return nil
}

func (k *Keywords) TableShouldContain(ctx context.Context, locatorText, expected string) error {
	b, err := k.current()
	if err != nil {
		return err
	}
	table, err := k.tableXPath(locatorText)
	if err != nil {
		return err
	}
	xpath := fmt.Sprintf("(%s)[1]//*[self::td or self::th][contains(normalize-space(.), %s)]", table, locator.XPathLiteral(expected))
	count, err := b.Count(ctx, locator.Locator{Strategy: locator.XPath, Value: xpath})
	if err != nil {
		return err
	}
	if count == 0 {
		return assertionf("", fmt.Sprintf("Table '%s' did not contain text '%s'.", locatorText, expected))
	}
	return nil
}

// tableCell locates a cell of the first table locatorText matches. Rows and
// columns count from 1, negative indices count from the end; header cells
// count as cells.
func (k *Keywords) tableCell(locatorText string, row, column int) (locator.Locator, error) {
	if row == 0 || column == 0 {
		return locator.Locator{}, fmt.Errorf("both row and column must be non-zero, got row %d and column %d", row, column)
	}
	table, err := k.tableXPath(locatorText)
	if err != nil {
		return locator.Locator{}, err
	}
	xpath := fmt.Sprintf("((%s)[1]//tr)[%s]/*[self::td or self::th][%s]", table, xpathIndex(row), xpathIndex(column))
	return locator.Locator{Strategy: locator.XPath, Value: xpath}, nil
}

func (k *Keywords) tableXPath(locatorText string) (string, error) {
	loc, err := k.lib.finder.Parse(locatorText)
	if err != nil {
		return "", err
	}
	xpath, err := locator.ToXPath(loc)
	if err != nil {
		return "", fmt.Errorf("table locator '%s' must be expressible as xpath: %w", locatorText, err)
	}
	return xpath, nil
}

// xpathIndex turns a 1-based index, or a negative one counting from the
// end, into an xpath predicate.
func xpathIndex(i int) string {
	switch {
	case i > 0:
		return fmt.Sprint(i)
	case i == -1:
		return "last()"
	}
	return fmt.Sprintf("last()-%d", -i-1)
}
