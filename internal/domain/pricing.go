package domain

import "math"

// WeekendMarkup is applied when no explicit weekend price is stored.
const WeekendMarkup = 1.2

func roundMoney(x float64) int64 {
	return int64(math.Round(x))
}

// DefaultPrice is the allocator's fallback fare: route distance times the
// armada's per-kilometer rate.
func DefaultPrice(distanceKm float64, ratePerKm float64) int64 {
	return roundMoney(distanceKm * ratePerKm)
}

// DefaultWeekendPrice derives the weekend fare from a base fare.
func DefaultWeekendPrice(price int64) int64 {
	return roundMoney(float64(price) * WeekendMarkup)
}

// EffectivePrice picks the fare for a trip date. Weekend trips use the stored
// weekend price when present, otherwise the markup fallback; both the public
// listing and the booking total use this same rule so they cannot drift.
func EffectivePrice(price, priceWeekend int64, weekend bool) int64 {
	if !weekend {
		return price
	}
	if priceWeekend > 0 {
		return priceWeekend
	}
	return DefaultWeekendPrice(price)
}
