package params

import (
	"net/url"
	"testing"
	"time"

	"nawartu/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query  string
		limit  int
		page   int
		offset int
	}{
		{"", DefaultLimit, 1, 0},
		{"page=3&limit=10", 10, 3, 20},
		{"limit=1000", MaxLimit, 1, 0},
		{"limit=-4&page=0", DefaultLimit, 1, 0},
		{"limit=abc&page=xyz", DefaultLimit, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			p := ParsePagination(q)
			assert.Equal(t, tt.limit, p.Limit)
			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.offset, p.Offset)
		})
	}
}

func TestComputeMeta(t *testing.T) {
	p := Pagination{Limit: 10, Page: 2, Offset: 10}
	p.ComputeMeta(25)
	assert.Equal(t, 3, p.TotalPages)
	assert.True(t, p.HasPrev)
	assert.True(t, p.HasNext)

	p = Pagination{Limit: 10, Page: 3, Offset: 20}
	p.ComputeMeta(25)
	assert.False(t, p.HasNext)
}

func TestDateRange(t *testing.T) {
	q := url.Values{"check_in": {"2024-06-01"}, "check_out": {"2024-06-04T15:00:00Z"}}
	in, out, err := DateRange(q, "check_in", "check_out")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), in)
	assert.Equal(t, time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC), out)

	_, _, err = DateRange(url.Values{"check_in": {"2024-06-01"}}, "check_in", "check_out")
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = Date(url.Values{"start": {"June 1st"}}, "start")
	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "start", appErr.Field)
}

func TestInt(t *testing.T) {
	v, err := Int(url.Values{}, "year", 2024)
	require.NoError(t, err)
	assert.Equal(t, 2024, v)

	_, err = Int(url.Values{"year": {"twenty"}}, "year", 0)
	assert.Error(t, err)
}
