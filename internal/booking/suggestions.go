package booking

import (
	"context"
	"math"
	"time"

	"nawartu/internal/apperror"
	"nawartu/internal/domain/calendar"
	"nawartu/internal/domain/properties"

	"github.com/google/uuid"
)

const (
	weekendPremium    = 1.2
	similarListLimit  = 10
	marketHighTrigger = 1.1
	marketLowTrigger  = 0.9
)

type Suggestion struct {
	Date                time.Time `json:"date"`
	CurrentPriceCents   int64     `json:"current_price_cents"`
	SuggestedPriceCents int64     `json:"suggested_price_cents"`
	Reasoning           string    `json:"reasoning"`
	DemandLevel         string    `json:"demand_level"`
}

type MarketData struct {
	AveragePriceCents int64 `json:"average_price_cents"`
	SimilarCount      int   `json:"similar_properties_count"`
	MinPriceCents     int64 `json:"min_price_cents"`
	MaxPriceCents     int64 `json:"max_price_cents"`
}

type Suggestions struct {
	PropertyID        uuid.UUID    `json:"property_id"`
	Title             string       `json:"title"`
	CurrentPriceCents int64        `json:"current_price_cents"`
	Market            MarketData   `json:"market"`
	Days              []Suggestion `json:"suggestions"`
}

// Suggest prices each date in [start, endExclusive): weekends get a premium,
// then the price is nudged toward the market average of similar listings.
// Suggested prices are rounded to whole currency units.
func Suggest(p *properties.Property, similar []properties.Property, start, endExclusive time.Time) *Suggestions {
	base := float64(p.BasePriceCents)
	market := MarketData{AveragePriceCents: p.BasePriceCents, SimilarCount: len(similar)}
	if len(similar) > 0 {
		var sum int64
		market.MinPriceCents = similar[0].BasePriceCents
		market.MaxPriceCents = similar[0].BasePriceCents
		for _, sp := range similar {
			sum += sp.BasePriceCents
			market.MinPriceCents = min(market.MinPriceCents, sp.BasePriceCents)
			market.MaxPriceCents = max(market.MaxPriceCents, sp.BasePriceCents)
		}
		market.AveragePriceCents = int64(math.Round(float64(sum) / float64(len(similar))))
	}
	avg := float64(market.AveragePriceCents)

	out := &Suggestions{
		PropertyID:        p.ID,
		Title:             p.Title,
		CurrentPriceCents: p.BasePriceCents,
		Market:            market,
	}
	for _, date := range calendar.Dates(start, endExclusive) {
		weekend := date.Weekday() == time.Saturday || date.Weekday() == time.Sunday

		price := base
		reasoning := "Base price"
		demand := "medium"
		if weekend {
			price *= weekendPremium
			reasoning = "Weekend premium (+20%)"
			demand = "high"
		}

		switch {
		case avg > base*marketHighTrigger:
			price = math.Min(price*1.1, avg)
			reasoning += ", Market opportunity"
		case avg < base*marketLowTrigger:
			price = math.Max(price*0.95, avg)
			reasoning += ", Competitive pricing"
		}

		out.Days = append(out.Days, Suggestion{
			Date:                date,
			CurrentPriceCents:   p.BasePriceCents,
			SuggestedPriceCents: int64(math.Round(price/100)) * 100,
			Reasoning:           reasoning,
			DemandLevel:         demand,
		})
	}
	return out
}

// PricingSuggestions suggests prices for [start, end] against up to ten
// similar listings.
func (s *Service) PricingSuggestions(ctx context.Context, propertyID uuid.UUID, start, end time.Time) (*Suggestions, error) {
	start, endExclusive, err := inclusiveRange(start, end)
	if err != nil {
		return nil, err
	}

	st := s.uow.Stores()
	p, err := loadProperty(ctx, st, propertyID)
	if err != nil {
		return nil, err
	}

	similar, err := st.Properties.ListSimilar(ctx, p, similarListLimit)
	if err != nil {
		return nil, apperror.Dependency(err, "could not load similar properties")
	}
	return Suggest(p, similar, start, endExclusive), nil
}
