package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/tidwall/gjson"

	"github.com/dharmasatrya/flightbooking/internal/cache"
	"github.com/dharmasatrya/flightbooking/internal/models"
	"github.com/dharmasatrya/flightbooking/internal/ratelimit"
)

const (
	EndpointFlights      = "flights"
	EndpointAirports     = "airports"
	EndpointReservations = "reservations"
)

const DefaultBaseURL = "http://localhost:8000/api/"

type Config struct {
	BaseURL     string
	Timeout     time.Duration
	RateLimiter *ratelimit.EndpointLimiter
	Cache       cache.Cache
	HTTPClient  *http.Client
}

// Client talks to the remote flight API. Every call is a single POST; a
// failed call is reported, never retried.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *ratelimit.EndpointLimiter
	cache   cache.Cache
}

func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := cfg.Cache
	if c == nil {
		c = cache.NewNoOpCache()
	}

	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		limiter: cfg.RateLimiter,
		cache:   c,
	}
}

// SearchFlights posts criteria to /flights. A successful answer with no data
// is an empty list, not an error.
func (c *Client) SearchFlights(ctx context.Context, criteria models.SearchCriteria) ([]models.FlightOffer, error) {
	if offers, ok := c.cache.GetOffers(ctx, criteria); ok {
		log.Debugf("gateway: %d offers served from cache", len(offers))
		return offers, nil
	}

	body, err := c.post(ctx, EndpointFlights, criteria)
	if err != nil {
		return nil, err
	}

	if !gjson.GetBytes(body, "success").Bool() {
		return nil, applicationError(EndpointFlights, MsgNoFlights)
	}

	var env models.SearchEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, transportError(EndpointFlights, err)
	}
	if env.Data == nil {
		env.Data = []models.FlightOffer{}
	}

	if err := c.cache.SetOffers(ctx, criteria, env.Data); err != nil {
		log.Warnf("gateway: caching offers failed: %v", err)
	}

	return env.Data, nil
}

// LookupAirport posts the city name to /airports and returns the matching
// cities, best match first.
func (c *Client) LookupAirport(ctx context.Context, city string) ([]models.City, error) {
	city = strings.TrimSpace(city)

	if cities, ok := c.cache.GetCities(ctx, city); ok {
		return cities, nil
	}

	body, err := c.post(ctx, EndpointAirports, models.AirportLookupRequest{Code: city})
	if err != nil {
		return nil, err
	}

	if gjson.GetBytes(body, "cities.#").Int() == 0 {
		return nil, applicationError(EndpointAirports, MsgNoIATA)
	}

	var env models.AirportEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, transportError(EndpointAirports, err)
	}

	if err := c.cache.SetCities(ctx, city, env.Cities); err != nil {
		log.Warnf("gateway: caching cities failed: %v", err)
	}

	return env.Cities, nil
}

// Reserve posts the reservation and returns the confirmed booking.
func (c *Client) Reserve(ctx context.Context, req models.ReservationRequest) (*models.ReservationResult, error) {
	body, err := c.post(ctx, EndpointReservations, req)
	if err != nil {
		return nil, err
	}

	if !gjson.GetBytes(body, "success").Bool() {
		return nil, applicationError(EndpointReservations, MsgReservationFailed)
	}

	var env models.ReservationEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, transportError(EndpointReservations, err)
	}
	if env.Data == nil {
		return nil, applicationError(EndpointReservations, MsgReservationFailed)
	}

	return env.Data, nil
}

func (c *Client) post(ctx context.Context, endpoint string, payload any) ([]byte, error) {
	if err := c.limiter.Wait(ctx, endpoint); err != nil {
		return nil, transportError(endpoint, err)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, transportError(endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, transportError(endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Errorf("gateway: POST %s failed: %v", endpoint, err)
		return nil, transportError(endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(endpoint, err)
	}
	log.Debugf("gateway: POST %s -> %d in %v", endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, transportError(endpoint, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	if !gjson.ValidBytes(body) {
		return nil, transportError(endpoint, errors.New("invalid JSON body"))
	}

	return body, nil
}
