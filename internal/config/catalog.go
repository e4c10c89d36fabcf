package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// PlanCatalogEntry is one plan in configs/plans.yaml. Prices are decimal
// strings so the file never round-trips through float.
type PlanCatalogEntry struct {
	Title                string          `yaml:"title"`
	Description          string          `yaml:"description"`
	MonthlyPrice         decimal.Decimal `yaml:"-"`
	AnnualPrice          decimal.Decimal `yaml:"-"`
	Currency             string          `yaml:"currency"`
	Benefits             []string        `yaml:"benefits"`
	SortOrder            int             `yaml:"sort_order"`
	Status               string          `yaml:"status"`
	StripeProductID      string          `yaml:"stripe_product_id"`
	StripeMonthlyPriceID string          `yaml:"stripe_price_id_monthly"`
	StripeAnnualPriceID  string          `yaml:"stripe_price_id_annual"`
}

type planCatalogFile struct {
	Plans []planCatalogYAML `yaml:"plans"`
}

type planCatalogYAML struct {
	PlanCatalogEntry `yaml:",inline"`
	MonthlyPrice     string `yaml:"monthly_price"`
	AnnualPrice      string `yaml:"annual_price"`
}

// LoadPlanCatalog reads a plan catalog file. An empty file is an empty
// catalog.
func LoadPlanCatalog(path string) ([]PlanCatalogEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan catalog: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var file planCatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("unmarshal plan catalog yaml: %w", err)
	}

	seen := make(map[string]bool, len(file.Plans))
	entries := make([]PlanCatalogEntry, 0, len(file.Plans))
	for i, raw := range file.Plans {
		entry := raw.PlanCatalogEntry
		entry.Title = strings.TrimSpace(entry.Title)
		if entry.Title == "" {
			return nil, fmt.Errorf("plans[%d]: title is required", i)
		}
		key := strings.ToLower(entry.Title)
		if seen[key] {
			return nil, fmt.Errorf("plans[%d]: duplicate title %q", i, entry.Title)
		}
		seen[key] = true

		if entry.MonthlyPrice, err = parsePrice(raw.MonthlyPrice); err != nil {
			return nil, fmt.Errorf("plans[%d]: monthly_price: %w", i, err)
		}
		if entry.AnnualPrice, err = parsePrice(raw.AnnualPrice); err != nil {
			return nil, fmt.Errorf("plans[%d]: annual_price: %w", i, err)
		}
		switch entry.Status {
		case "", "active", "inactive":
		default:
			return nil, fmt.Errorf("plans[%d]: unknown status %q", i, entry.Status)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("must not be negative, got %s", s)
	}
	return d, nil
}
