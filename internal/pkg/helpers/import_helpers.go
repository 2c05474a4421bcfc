package helpers

import (
	"fmt"
	"strconv"
	"strings"
)

// SplitPCodeCity separates "2300 La Chaux-de-Fonds" into its postal code and city. Values
// not starting with four digits are returned as the city.
func SplitPCodeCity(value string) (pcode, city string) {
	value = strings.TrimSpace(value)
	if len(value) < 4 {
		return "", value
	}
	if _, err := strconv.Atoi(value[:4]); err != nil {
		return "", value
	}
	pcode, city, _ = strings.Cut(value, " ")
	return pcode, strings.TrimSpace(city)
}

// ParsePeriodTotal reads the HyperPlanning TOTAL column: a decimal number that may carry
// apostrophes as thousands separators ("1'234.00"). The fraction is truncated.
func ParsePeriodTotal(value string) (int, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), "'", "")
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("nombre de périodes %q invalide", value)
	}
	return int(f), nil
}

// ParseOptionalID parses an identifier column. An empty value yields nil.
func ParseOptionalID(value string) (*int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		// Spreadsheet exports sometimes render integers as "1234.0"
		f, ferr := strconv.ParseFloat(value, 64)
		if ferr != nil || f != float64(int64(f)) {
			return nil, fmt.Errorf("identifiant %q invalide", value)
		}
		id = int64(f)
	}
	return &id, nil
}
