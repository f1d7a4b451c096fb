// Package brands resolves free-text brand, operator and trading names onto
// the closed BrandName enumeration. Resolution is lossy by design: every
// input maps to something, unknown text maps to Independent.
package brands

import (
	_ "embed"
	"encoding/csv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/servo-saver/servo-saver-api/internal/models"
)

//go:embed aliases.csv
var aliasesCSV string

var aliases = mustLoadAliases()

// Aliases returns the ordered alias table.
func Aliases() []*models.BrandAlias {
	return aliases
}

// Resolve maps free text (possibly several source fields concatenated)
// onto a brand. Matching is case-insensitive substring, first alias wins;
// no match yields Independent.
func Resolve(text string) models.BrandName {
	lower := strings.ToLower(text)
	for _, alias := range aliases {
		if strings.Contains(lower, alias.Pattern) {
			return alias.Brand
		}
	}
	return models.BrandIndependent
}

func loadAliases() ([]*models.BrandAlias, error) {
	reader := csv.NewReader(strings.NewReader(aliasesCSV))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse brand aliases")
	}
	if len(records) < 2 {
		return nil, errors.New("brand alias table is empty")
	}

	headers := records[0]
	arr := make([]*models.BrandAlias, 0, len(records)-1)
	for _, record := range records[1:] {
		alias, err := models.BrandAliasFromCSV(record, headers)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load brand aliases")
		}
		arr = append(arr, alias)
	}

	return arr, nil
}

func mustLoadAliases() []*models.BrandAlias {
	arr, err := loadAliases()
	if err != nil {
		panic(err)
	}
	return arr
}
