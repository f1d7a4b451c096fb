package models

import "github.com/cockroachdb/errors"

// BrandAlias maps a lowercase substring pattern onto a brand. The alias
// table is ordered; the first matching pattern wins.
type BrandAlias struct {
	Pattern string
	Brand   BrandName
}

func BrandAliasFromCSV(record, headers []string) (*BrandAlias, error) {
	if len(record) != 2 {
		return nil, errors.Newf("expected 2 fields, got %d", len(record))
	}
	if !IsValidBrand(record[1]) {
		return nil, errors.Newf("unknown brand %q for pattern %q", record[1], record[0])
	}
	return &BrandAlias{
		Pattern: record[0],
		Brand:   BrandName(record[1]),
	}, nil
}
