// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package catalog implements the partner -> product -> premium cascade
// used by the enrollment form.
//
// Selecting a partner narrows the product choices, selecting a product
// narrows the premium choices, and selecting a premium resolves the plan
// tenure and the assigned customer service executive. The table is static
// per deployment: a default ships embedded in the binary, and an on-disk
// YAML file can override it (with hot reload, see watcher.go).
//
// # Thread Safety
//
// Catalog is safe for concurrent use. Lookups take a read lock; Reload
// swaps the table atomically under the write lock.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownPartner indicates the partner is not in the table.
	ErrUnknownPartner = errors.New("unknown partner")

	// ErrUnknownProduct indicates the product is not offered by the partner.
	ErrUnknownProduct = errors.New("unknown product for partner")

	// ErrUnknownPremium indicates the premium tier does not exist for the product.
	ErrUnknownPremium = errors.New("unknown premium for product")
)

//go:embed plans.yaml
var defaultPlans []byte

// PlanDetail holds the values derived from a resolved premium selection.
type PlanDetail struct {
	Tenure  string `yaml:"tenure" json:"tenure"`
	CSEName string `yaml:"cse_name" json:"cse_name"`
}

// premiumEntry is one premium tier within a product.
type premiumEntry struct {
	Amount  string `yaml:"amount"`
	Tenure  string `yaml:"tenure"`
	CSEName string `yaml:"cse_name"`
}

// productEntry is one product offered by a partner.
type productEntry struct {
	Name     string         `yaml:"name"`
	Premiums []premiumEntry `yaml:"premiums"`
}

// partnerEntry is one distribution partner and its product list.
type partnerEntry struct {
	Name     string         `yaml:"name"`
	Products []productEntry `yaml:"products"`
}

// table is the parsed YAML document.
type table struct {
	Partners []partnerEntry `yaml:"partners"`
}

// Catalog is the loaded cascade table.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]map[string]map[string]PlanDetail // partner -> product -> amount
	source  string                                      // file path, or "" for the embedded default
}

// Default returns a catalog built from the embedded plan table.
//
// The embedded table is validated at build time by the package tests, so
// a parse failure here is a programming error and panics.
func Default() *Catalog {
	c, err := Parse(defaultPlans)
	if err != nil {
		panic(fmt.Sprintf("embedded plan table is invalid: %v", err))
	}
	return c
}

// Load reads and parses a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", path, err)
	}
	c.source = path
	return c, nil
}

// Parse builds a catalog from YAML bytes.
//
// Returns an error for malformed YAML, empty tables, duplicate names at
// any level, or premium tiers missing a tenure or CSE name.
func Parse(data []byte) (*Catalog, error) {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("unmarshal plan table: %w", err)
	}
	entries, err := index(t)
	if err != nil {
		return nil, err
	}
	return &Catalog{entries: entries}, nil
}

// index flattens the parsed table into nested lookup maps, rejecting
// structural problems the YAML schema cannot express.
func index(t table) (map[string]map[string]map[string]PlanDetail, error) {
	if len(t.Partners) == 0 {
		return nil, errors.New("plan table has no partners")
	}
	entries := make(map[string]map[string]map[string]PlanDetail, len(t.Partners))
	for _, p := range t.Partners {
		if p.Name == "" {
			return nil, errors.New("partner with empty name")
		}
		if _, dup := entries[p.Name]; dup {
			return nil, fmt.Errorf("duplicate partner %q", p.Name)
		}
		if len(p.Products) == 0 {
			return nil, fmt.Errorf("partner %q has no products", p.Name)
		}
		products := make(map[string]map[string]PlanDetail, len(p.Products))
		for _, prod := range p.Products {
			if prod.Name == "" {
				return nil, fmt.Errorf("partner %q: product with empty name", p.Name)
			}
			if _, dup := products[prod.Name]; dup {
				return nil, fmt.Errorf("partner %q: duplicate product %q", p.Name, prod.Name)
			}
			if len(prod.Premiums) == 0 {
				return nil, fmt.Errorf("product %q has no premiums", prod.Name)
			}
			premiums := make(map[string]PlanDetail, len(prod.Premiums))
			for _, prem := range prod.Premiums {
				if prem.Amount == "" || prem.Tenure == "" || prem.CSEName == "" {
					return nil, fmt.Errorf("product %q: premium tier must set amount, tenure, and cse_name", prod.Name)
				}
				if _, dup := premiums[prem.Amount]; dup {
					return nil, fmt.Errorf("product %q: duplicate premium %q", prod.Name, prem.Amount)
				}
				premiums[prem.Amount] = PlanDetail{Tenure: prem.Tenure, CSEName: prem.CSEName}
			}
			products[prod.Name] = premiums
		}
		entries[p.Name] = products
	}
	return entries, nil
}

// Partners returns every partner name, sorted.
func (c *Catalog) Partners() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Products returns the product names offered by a partner, sorted.
func (c *Catalog) Products(partner string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	products, ok := c.entries[partner]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPartner, partner)
	}
	names := make([]string, 0, len(products))
	for name := range products {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Premiums returns the premium amounts available for a product, sorted
// lexically (amounts are stored as the strings the form displays).
func (c *Catalog) Premiums(partner, product string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	products, ok := c.entries[partner]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPartner, partner)
	}
	premiums, ok := products[product]
	if !ok {
		return nil, fmt.Errorf("%w: %q / %q", ErrUnknownProduct, partner, product)
	}
	amounts := make([]string, 0, len(premiums))
	for amount := range premiums {
		amounts = append(amounts, amount)
	}
	sort.Strings(amounts)
	return amounts, nil
}

// Resolve maps a full (partner, product, premium) selection to its
// derived tenure and CSE name. Lookups are exact, case-sensitive matches;
// a miss at any level returns the corresponding sentinel error.
func (c *Catalog) Resolve(partner, product, premium string) (PlanDetail, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	products, ok := c.entries[partner]
	if !ok {
		return PlanDetail{}, fmt.Errorf("%w: %q", ErrUnknownPartner, partner)
	}
	premiums, ok := products[product]
	if !ok {
		return PlanDetail{}, fmt.Errorf("%w: %q / %q", ErrUnknownProduct, partner, product)
	}
	detail, ok := premiums[premium]
	if !ok {
		return PlanDetail{}, fmt.Errorf("%w: %q / %q / %q", ErrUnknownPremium, partner, product, premium)
	}
	return detail, nil
}

// Source returns the file the catalog was loaded from, or "" for the
// embedded default.
func (c *Catalog) Source() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.source
}

// Reload re-reads the backing file and swaps the table in place. A
// catalog built from the embedded default has no backing file and
// returns an error. If the file is malformed the previous table stays
// active.
func (c *Catalog) Reload() error {
	c.mu.RLock()
	path := c.source
	c.mu.RUnlock()
	if path == "" {
		return errors.New("catalog has no backing file")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog file %s: %w", path, err)
	}
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return fmt.Errorf("parse catalog file %s: %w", path, err)
	}
	entries, err := index(t)
	if err != nil {
		return fmt.Errorf("invalid catalog file %s: %w", path, err)
	}

	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()
	return nil
}
