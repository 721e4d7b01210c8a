package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dharmasatrya/flightbooking/internal/models"
)

// Cache stores gateway answers that are safe to replay: offer lists per
// search and city lookups per query. Reservations are never cached.
type Cache interface {
	GetOffers(ctx context.Context, criteria models.SearchCriteria) ([]models.FlightOffer, bool)
	SetOffers(ctx context.Context, criteria models.SearchCriteria, offers []models.FlightOffer) error
	GetCities(ctx context.Context, query string) ([]models.City, bool)
	SetCities(ctx context.Context, query string, cities []models.City) error
	Close() error
}

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Host:     "localhost",
		Port:     "6379",
		Password: "",
		DB:       0,
		TTL:      5 * time.Minute,
	}
}

func NewRedisCache(cfg RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewRedisCacheWithClient(client, cfg.TTL), nil
}

// NewRedisCacheWithClient wraps an existing client without pinging it.
func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisCache) GetOffers(ctx context.Context, criteria models.SearchCriteria) ([]models.FlightOffer, bool) {
	var offers []models.FlightOffer
	if !c.get(ctx, OffersKey(criteria), &offers) {
		return nil, false
	}
	return offers, true
}

func (c *RedisCache) SetOffers(ctx context.Context, criteria models.SearchCriteria, offers []models.FlightOffer) error {
	return c.set(ctx, OffersKey(criteria), offers)
}

func (c *RedisCache) GetCities(ctx context.Context, query string) ([]models.City, bool) {
	var cities []models.City
	if !c.get(ctx, CitiesKey(query), &cities) {
		return nil, false
	}
	return cities, true
}

func (c *RedisCache) SetCities(ctx context.Context, query string, cities []models.City) error {
	return c.set(ctx, CitiesKey(query), cities)
}

func (c *RedisCache) get(ctx context.Context, key string, dst any) bool {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(data, dst) == nil
}

func (c *RedisCache) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) GetOffers(ctx context.Context, criteria models.SearchCriteria) ([]models.FlightOffer, bool) {
	return nil, false
}

func (c *NoOpCache) SetOffers(ctx context.Context, criteria models.SearchCriteria, offers []models.FlightOffer) error {
	return nil
}

func (c *NoOpCache) GetCities(ctx context.Context, query string) ([]models.City, bool) {
	return nil, false
}

func (c *NoOpCache) SetCities(ctx context.Context, query string, cities []models.City) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

// OffersKey hashes the normalized criteria as they are sent on the wire.
func OffersKey(criteria models.SearchCriteria) string {
	data, _ := json.Marshal(criteria)
	return "offers:" + digest(data)
}

// CitiesKey ignores case and surrounding blanks in the query.
func CitiesKey(query string) string {
	return "airports:" + digest([]byte(strings.ToLower(strings.TrimSpace(query))))
}

func digest(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
