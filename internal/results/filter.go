package results

import (
	"sort"
	"strings"

	"github.com/dharmasatrya/flightbooking/internal/models"
	"github.com/dharmasatrya/flightbooking/internal/ranking"
)

// Apply keeps the offers matching filters, in their original order.
// An empty airline matches every carrier and an empty date matches every day.
func Apply(offers []models.FlightOffer, filters models.FilterSpec) []models.FlightOffer {
	result := make([]models.FlightOffer, 0, len(offers))
	if filters.IsEmpty() {
		return append(result, offers...)
	}

	for _, o := range offers {
		if matchesFilters(o, filters) {
			result = append(result, o)
		}
	}

	return result
}

func matchesFilters(o models.FlightOffer, filters models.FilterSpec) bool {
	airline := strings.ToLower(filters.Airline)
	if !strings.Contains(strings.ToLower(o.MarketingCarrier), airline) {
		return false
	}

	if filters.Date != "" {
		if !strings.HasPrefix(o.FirstSegment().DepartureTime, filters.Date) {
			return false
		}
	}

	return true
}

const (
	SortNone      = ""
	SortPrice     = "price"
	SortDeparture = "departure"
	SortAirline   = "airline"
	SortBestValue = "best_value"
)

// Sort orders offers in place. The sort is stable and an empty sortBy leaves
// the order as received.
func Sort(offers []models.FlightOffer, sortBy, sortOrder string) []models.FlightOffer {
	if len(offers) == 0 {
		return offers
	}

	ascending := strings.ToLower(sortOrder) != "desc"

	switch strings.ToLower(sortBy) {
	case SortPrice:
		sort.SliceStable(offers, func(i, j int) bool {
			if ascending {
				return offers[i].Price < offers[j].Price
			}
			return offers[i].Price > offers[j].Price
		})

	case SortDeparture:
		// ISO timestamps from the same API compare correctly as text.
		sort.SliceStable(offers, func(i, j int) bool {
			a, b := offers[i].FirstSegment().DepartureTime, offers[j].FirstSegment().DepartureTime
			if ascending {
				return a < b
			}
			return a > b
		})

	case SortBestValue:
		scores := ranking.Scores(offers)
		order := make([]int, len(offers))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(i, j int) bool {
			if ascending {
				return scores[order[i]] < scores[order[j]]
			}
			return scores[order[i]] > scores[order[j]]
		})
		sorted := make([]models.FlightOffer, len(offers))
		for i, idx := range order {
			sorted[i] = offers[idx]
		}
		copy(offers, sorted)

	case SortAirline:
		sort.SliceStable(offers, func(i, j int) bool {
			a, b := strings.ToLower(offers[i].MarketingCarrier), strings.ToLower(offers[j].MarketingCarrier)
			if ascending {
				return a < b
			}
			return a > b
		})
	}

	return offers
}
