package ranking

import (
	"math"

	"github.com/dharmasatrya/flightbooking/internal/models"
)

const (
	PriceWeight = 0.7
	StopsWeight = 0.3

	// stopPenalty is the score added per connection before weighting.
	stopPenalty = 15
)

// Scores returns the best-value score of every offer, index-aligned with
// offers. Prices are compared within the list, so scores from different
// lists are not comparable.
func Scores(offers []models.FlightOffer) []float64 {
	scores := make([]float64, len(offers))
	if len(offers) == 0 {
		return scores
	}

	maxPrice := findMaxPrice(offers)
	for i, o := range offers {
		scores[i] = BestValue(o, maxPrice)
	}
	return scores
}

// Lower score = better value
func BestValue(offer models.FlightOffer, maxPrice float64) float64 {
	priceScore := 0.0
	if maxPrice > 0 {
		priceScore = (offer.Price / maxPrice) * 100
	}

	stopsScore := float64(Stops(offer)) * stopPenalty
	score := (priceScore * PriceWeight) + (stopsScore * StopsWeight)

	return math.Round(score*100) / 100
}

// Stops is the number of connections: one less than the number of legs.
func Stops(offer models.FlightOffer) int {
	if len(offer.Itinerary) < 2 {
		return 0
	}
	return len(offer.Itinerary) - 1
}

func findMaxPrice(offers []models.FlightOffer) float64 {
	maxPrice := 0.0
	for _, o := range offers {
		if o.Price > maxPrice {
			maxPrice = o.Price
		}
	}
	return maxPrice
}
