package desktop

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/breeze-rmm/displayhost/internal/logging"
)

var selectorLog = logging.L("display.selector")

// ErrSelectorUnresolved is returned alongside the main display id when a
// non-empty selector names no current display.
var ErrSelectorUnresolved = errors.New("display selector unresolved")

// parseSelector parses a decimal display id. Anything else reports ok=false
// so it can never match a real display.
func parseSelector(selector string) (id uint32, ok bool) {
	v, err := strconv.ParseUint(selector, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}

// ResolveDisplay picks the display id for selector out of displays. An empty
// selector yields mainID. Otherwise the last descriptor whose id matches
// wins; with no match mainID is kept and ErrSelectorUnresolved is returned.
func ResolveDisplay(selector string, displays []DisplayDescriptor, mainID uint32) (uint32, error) {
	if selector == "" {
		return mainID, nil
	}

	resolved := mainID
	matched := false
	if want, ok := parseSelector(selector); ok {
		for _, d := range displays {
			if d.ID == want {
				resolved = d.ID
				matched = true
			}
		}
	}

	if !matched {
		return mainID, fmt.Errorf("%w: %q", ErrSelectorUnresolved, selector)
	}
	return resolved, nil
}

// Resolve enumerates the catalog once and resolves selector against it.
// Unresolved selectors fall back to the main display; the returned error is
// informational only.
func (c *DisplayCatalog) Resolve(selector string) (uint32, error) {
	mainID := c.source.MainDisplayID()
	if selector == "" {
		return mainID, nil
	}

	id, err := ResolveDisplay(selector, c.Enumerate(), mainID)
	if err != nil {
		selectorLog.Warn("selector matched no display, using main display",
			logging.KeySelector, selector,
			logging.KeyDisplayID, mainID,
		)
		return id, err
	}
	selectorLog.Debug("resolved display selector", logging.KeySelector, selector, logging.KeyDisplayID, id)
	return id, nil
}
