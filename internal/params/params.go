package params

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"nawartu/internal/apperror"
	"nawartu/internal/domain/calendar"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Pagination is parsed from ?page=&limit= and completed with ComputeMeta once
// the total is known.
type Pagination struct {
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	Page       int  `json:"page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// ParsePagination never fails: bad values fall back to the defaults.
func ParsePagination(q url.Values) Pagination {
	p := Pagination{
		Limit: DefaultLimit,
		Page:  1,
	}

	if limitStr := strings.TrimSpace(q.Get("limit")); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			switch {
			case limit <= 0:
				p.Limit = DefaultLimit
			case limit > MaxLimit:
				p.Limit = MaxLimit
			default:
				p.Limit = limit
			}
		}
	}

	if pageStr := strings.TrimSpace(q.Get("page")); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page > 0 {
			p.Page = page
		}
	}

	p.Offset = (p.Page - 1) * p.Limit
	return p
}

func (p *Pagination) ComputeMeta(total int) {
	p.Total = total
	if p.Limit > 0 {
		p.TotalPages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	p.HasPrev = p.Page > 1
	p.HasNext = (p.Page * p.Limit) < total
}

// Date reads a required calendar date from the query string.
func Date(q url.Values, key string) (time.Time, error) {
	raw := q.Get(key)
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, apperror.Validation(key, "%s is required", key)
	}
	t, err := calendar.ParseDate(raw)
	if err != nil {
		return time.Time{}, apperror.Validation(key, "%s: %v", key, err)
	}
	return t, nil
}

// DateRange reads two required dates, e.g. check_in and check_out.
func DateRange(q url.Values, fromKey, toKey string) (time.Time, time.Time, error) {
	from, err := Date(q, fromKey)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := Date(q, toKey)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

// Int reads an optional integer, returning def when the key is absent.
func Int(q url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Validation(key, "%s must be a whole number", key)
	}
	return v, nil
}
