package calendar

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func TestFieldsApplyIsIdempotent(t *testing.T) {
	f := Fields{
		IsBlocked:        ptr(true),
		BlockedReason:    ptr(ReasonMaintenance),
		CustomPriceCents: ptr(int64(15000)),
		MinimumStay:      ptr(2),
	}
	base := NewDay(uuid.New(), date("2024-06-02"))

	once := f.Apply(base)
	twice := f.Apply(once)

	assert.Equal(t, once, twice)
	assert.True(t, once.IsBlocked)
	assert.Equal(t, int64(15000), *once.CustomPriceCents)
}

func TestFieldsApplyKeepsUnsetValues(t *testing.T) {
	d := NewDay(uuid.New(), date("2024-06-02"))
	d = Fields{CustomPriceCents: ptr(int64(9900))}.Apply(d)
	d = Fields{MinimumStay: ptr(3)}.Apply(d)

	assert.Equal(t, int64(9900), *d.CustomPriceCents)
	assert.Equal(t, 3, d.MinimumStay)
	assert.True(t, d.IsAvailable)

	d = Fields{ClearCustomPrice: true}.Apply(d)
	assert.Nil(t, d.CustomPriceCents)
}

func TestClosed(t *testing.T) {
	d := NewDay(uuid.New(), date("2024-06-02"))
	assert.False(t, d.Closed())

	d.IsBlocked = true
	assert.True(t, d.Closed())

	d.IsBlocked = false
	d.IsAvailable = false
	assert.True(t, d.Closed())
}

func TestOverridesLookupDistinguishesMissingRecord(t *testing.T) {
	id := uuid.New()
	explicit := NewDay(id, date("2024-06-02"))
	o := NewOverrides([]Day{explicit})

	got, ok := o.Lookup(date("2024-06-02"))
	assert.True(t, ok)
	assert.Equal(t, explicit, got)

	_, ok = o.Lookup(date("2024-06-03"))
	assert.False(t, ok)
}

func TestFirstClosed(t *testing.T) {
	id := uuid.New()
	blocked := Fields{IsBlocked: ptr(true)}.Apply(NewDay(id, date("2024-06-02")))
	o := NewOverrides([]Day{blocked})

	d, ok := o.FirstClosed(date("2024-06-01"), date("2024-06-04"))
	assert.True(t, ok)
	assert.Equal(t, "2024-06-02", Key(d.Date))

	_, ok = o.FirstClosed(date("2024-06-03"), date("2024-06-05"))
	assert.False(t, ok)

	// the checkout date itself is not a night of the stay
	_, ok = o.FirstClosed(date("2024-05-30"), date("2024-06-02"))
	assert.False(t, ok)
}

func TestMinimumStayViolation(t *testing.T) {
	id := uuid.New()
	o := NewOverrides([]Day{
		Fields{MinimumStay: ptr(2)}.Apply(NewDay(id, date("2024-08-10"))),
	})

	d, ok := o.MinimumStayViolation(date("2024-08-10"), date("2024-08-11"))
	assert.True(t, ok)
	assert.Equal(t, 2, d.MinimumStay)

	_, ok = o.MinimumStayViolation(date("2024-08-10"), date("2024-08-12"))
	assert.False(t, ok)
}
