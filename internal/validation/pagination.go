package validation

import (
	"encoding/json"
	"fmt"
	"math"

	"userhub/internal/domain"
)

const MaxPageSize = 100

// maxPage keeps (page-1)*size inside int for any accepted size.
const maxPage = math.MaxInt32

// PageSize validates a 1-based page number and a page size.
func PageSize(page, size any) (domain.PageRequest, error) {
	p, err := positiveInt("page", page)
	if err != nil {
		return domain.PageRequest{}, err
	}
	s, err := positiveInt("size", size)
	if err != nil {
		return domain.PageRequest{}, err
	}
	if s > MaxPageSize {
		return domain.PageRequest{}, domain.NewValidationError(fmt.Sprintf("size must not exceed %d", MaxPageSize))
	}
	return domain.PageRequest{Page: p, Size: s}, nil
}

func positiveInt(field string, v any) (int, error) {
	if v == nil {
		return 0, domain.NewValidationError(field + " is required")
	}
	f, ok := number(v)
	if !ok || math.IsNaN(f) {
		return 0, domain.NewValidationError(field + " must be a number")
	}
	if f < 1 || math.IsInf(f, 0) || f != math.Trunc(f) || f > maxPage {
		return 0, domain.NewValidationError(field + " must be an integer >= 1")
	}
	return int(f), nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
