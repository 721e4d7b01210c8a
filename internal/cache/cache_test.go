package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmasatrya/flightbooking/internal/models"
)

func criteria() models.SearchCriteria {
	c := models.DefaultSearchCriteria()
	c.Itinerary[0] = models.ItinerarySegment{
		DepartureCity:     "BOG",
		ArrivalCity:       "MIA",
		DepartureDateTime: "2025-06-01T10:00:00.000Z",
	}
	return c
}

func TestRedisCache_Offers(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheWithClient(db, time.Minute)
	ctx := context.Background()

	offers := []models.FlightOffer{{ID: "1", MarketingCarrier: "AV", Price: 100, Currency: "COP"}}
	data, err := json.Marshal(offers)
	require.NoError(t, err)

	key := OffersKey(criteria())
	mock.ExpectSet(key, data, time.Minute).SetVal("OK")
	require.NoError(t, c.SetOffers(ctx, criteria(), offers))

	mock.ExpectGet(key).SetVal(string(data))
	got, ok := c.GetOffers(ctx, criteria())
	require.True(t, ok)
	assert.Equal(t, offers, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_Miss(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheWithClient(db, time.Minute)
	ctx := context.Background()

	mock.ExpectGet(OffersKey(criteria())).RedisNil()
	_, ok := c.GetOffers(ctx, criteria())
	assert.False(t, ok)

	mock.ExpectGet(CitiesKey("bogota")).SetVal("not json")
	_, ok = c.GetCities(ctx, "bogota")
	assert.False(t, ok, "undecodable entries count as a miss")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCache_CitiesSetError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	c := NewRedisCacheWithClient(db, time.Minute)

	cities := []models.City{{CodeIataCity: "BOG", NameCity: "Bogota"}}
	data, _ := json.Marshal(cities)
	mock.ExpectSet(CitiesKey("Bogota"), data, time.Minute).SetErr(errors.New("down"))

	err := c.SetCities(context.Background(), "Bogota", cities)
	assert.EqualError(t, err, "down")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestKeys(t *testing.T) {
	assert.Equal(t, CitiesKey("Bogota"), CitiesKey("  bogota "))
	assert.NotEqual(t, CitiesKey("bogota"), CitiesKey("medellin"))

	other := criteria()
	other.Adults = 2
	other.TotalPassengers = 2
	assert.Equal(t, OffersKey(criteria()), OffersKey(criteria()))
	assert.NotEqual(t, OffersKey(criteria()), OffersKey(other))
	assert.Contains(t, OffersKey(other), "offers:")
}

func TestNoOpCache(t *testing.T) {
	c := NewNoOpCache()
	ctx := context.Background()

	require.NoError(t, c.SetOffers(ctx, criteria(), []models.FlightOffer{{ID: "1"}}))
	_, ok := c.GetOffers(ctx, criteria())
	assert.False(t, ok)

	require.NoError(t, c.SetCities(ctx, "x", nil))
	_, ok = c.GetCities(ctx, "x")
	assert.False(t, ok)
	assert.NoError(t, c.Close())
}
