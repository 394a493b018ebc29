package registry

import (
	"fmt"
	"sort"

	"github.com/aretw0/bigraph/pkg/domain"
)

// Locator resolves the dotted locator of a "local:!<locator>" address to an
// implementation. Go has no runtime import, so locators resolve against tables
// that packages expose explicitly.
type Locator interface {
	Locate(locator string) (Implementation, error)
}

// Catalog is a Locator backed by a fixed table.
type Catalog map[string]Implementation

// Locate implements Locator.
func (c Catalog) Locate(locator string) (Implementation, error) {
	impl, ok := c[locator]
	if !ok {
		return Implementation{}, fmt.Errorf("%w: locator %q cannot be resolved", domain.ErrRegistration, locator)
	}
	return impl, nil
}

// Locators lists the resolvable locators in sorted order.
func (c Catalog) Locators() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Chain is a Locator that tries each of its locators in order.
type Chain []Locator

// Locate implements Locator. The error of the last locator is returned when none resolves.
func (c Chain) Locate(locator string) (Implementation, error) {
	err := fmt.Errorf("%w: locator %q cannot be resolved", domain.ErrRegistration, locator)
	for _, l := range c {
		impl, lerr := l.Locate(locator)
		if lerr == nil {
			return impl, nil
		}
		err = lerr
	}
	return Implementation{}, err
}
