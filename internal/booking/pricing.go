package booking

import (
	"context"
	"time"

	"nawartu/internal/domain/calendar"
	"nawartu/internal/domain/properties"

	"github.com/google/uuid"
)

// DayPrice is one night of a quote.
type DayPrice struct {
	Date        time.Time `json:"date"`
	PriceCents  int64     `json:"price_cents"`
	IsAvailable bool      `json:"is_available"`
	MinimumStay int       `json:"minimum_stay"`
	Custom      bool      `json:"custom"`
}

type Quote struct {
	PropertyID uuid.UUID  `json:"property_id"`
	CheckIn    time.Time  `json:"check_in"`
	CheckOut   time.Time  `json:"check_out"`
	Nights     int        `json:"nights"`
	Days       []DayPrice `json:"days"`
	TotalCents int64      `json:"total_cents"`
	// Fallback is set when the calendar could not be read and every night was
	// priced at the base price.
	Fallback bool `json:"fallback"`
}

// BuildQuote prices every night of [checkIn, checkOut) from the overrides,
// using the base price wherever no custom price is set.
func BuildQuote(p *properties.Property, ov calendar.Overrides, checkIn, checkOut time.Time) *Quote {
	q := &Quote{
		PropertyID: p.ID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
	}
	for _, date := range calendar.Dates(checkIn, checkOut) {
		dp := DayPrice{
			Date:        date,
			PriceCents:  p.BasePriceCents,
			IsAvailable: true,
			MinimumStay: 1,
		}
		if d, ok := ov.Lookup(date); ok {
			dp.IsAvailable = !d.Closed()
			dp.MinimumStay = d.MinimumStay
			if d.CustomPriceCents != nil {
				dp.PriceCents = *d.CustomPriceCents
				dp.Custom = true
			}
		}
		q.Days = append(q.Days, dp)
		q.TotalCents += dp.PriceCents
	}
	q.Nights = len(q.Days)
	return q
}

// FallbackQuote prices nights * base price without consulting the calendar.
func FallbackQuote(p *properties.Property, checkIn, checkOut time.Time) *Quote {
	nights := calendar.Nights(checkIn, checkOut)
	q := &Quote{
		PropertyID: p.ID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Nights:     nights,
		TotalCents: int64(nights) * p.BasePriceCents,
		Fallback:   true,
	}
	first := calendar.DateOf(checkIn)
	for i := 0; i < nights; i++ {
		q.Days = append(q.Days, DayPrice{
			Date:        first.AddDate(0, 0, i),
			PriceCents:  p.BasePriceCents,
			IsAvailable: true,
			MinimumStay: 1,
		})
	}
	return q
}

// PriceRange quotes a stay. A missing property is an error; a calendar that
// cannot be read degrades to FallbackQuote.
func (s *Service) PriceRange(ctx context.Context, propertyID uuid.UUID, checkIn, checkOut time.Time) (*Quote, error) {
	checkIn, checkOut = calendar.DateOf(checkIn), calendar.DateOf(checkOut)
	if err := calendar.ValidateRange(checkIn, checkOut); err != nil {
		return nil, err
	}

	st := s.uow.Stores()
	p, err := loadProperty(ctx, st, propertyID)
	if err != nil {
		return nil, err
	}

	cached, version, hit, cacheErr := s.cache.GetQuote(ctx, propertyID, checkIn, checkOut)
	if cacheErr != nil {
		s.logger.Warnw("quote cache read failed", "property_id", propertyID, "error", cacheErr.Error())
	} else if hit {
		return cached, nil
	}

	days, err := st.Calendar.GetOverridesInRange(ctx, propertyID, checkIn, checkOut)
	if err != nil {
		s.logger.Warnw("calendar lookup failed, pricing at base rate",
			"property_id", propertyID,
			"check_in", calendar.Key(checkIn),
			"check_out", calendar.Key(checkOut),
			"error", err.Error(),
		)
		return FallbackQuote(p, checkIn, checkOut), nil
	}

	q := BuildQuote(p, calendar.NewOverrides(days), checkIn, checkOut)
	if cacheErr != nil {
		return q, nil
	}
	if err := s.cache.PutQuote(ctx, q, version); err != nil {
		s.logger.Warnw("quote cache write failed", "property_id", propertyID, "error", err.Error())
	}
	return q, nil
}
