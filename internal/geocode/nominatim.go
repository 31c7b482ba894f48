package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"

	"github.com/hydrodata/pegeldict/internal/models"
	"github.com/hydrodata/pegeldict/pkg/http/client"
)

const defaultCacheSize = 4096

// Address is the administrative breakdown of a reverse-geocoded point.
// Fields may be empty when Nominatim has no value at that level.
type Address struct {
	Country string
	State   string
	County  string
	City    string
}

// Place is one candidate of a forward search, ranked by Nominatim.
type Place struct {
	Name string
	Type string
	Lat  string
	Lon  string
}

// Client talks to a Nominatim instance. Reverse lookups are cached per
// (lat, lon, language); there are no retries, a failed call is the
// caller's problem.
type Client struct {
	httpClient client.Interface
	cache      *lru.Cache[string, Address]
}

func New(httpClient client.Interface) (*Client, error) {
	cache, err := lru.New[string, Address](defaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating reverse geocode cache: %w", err)
	}

	return &Client{
		httpClient: httpClient,
		cache:      cache,
	}, nil
}

func cacheKey(lat, lon float64, language string) string {
	return fmt.Sprintf("%.6f:%.6f:%s", lat, lon, language)
}

// Reverse resolves coordinates to an administrative address in the given
// language. A Nominatim "error" payload means no address could be
// resolved and yields an empty Address, not an error.
func (c *Client) Reverse(ctx context.Context, lat, lon float64, language string) (Address, error) {
	key := cacheKey(lat, lon, language)
	if addr, ok := c.cache.Get(key); ok {
		log.Debug().Str("key", key).Msg("reverse geocode cache hit")
		return addr, nil
	}

	path := fmt.Sprintf("/reverse?lat=%v&lon=%v&format=json", lat, lon)
	header := http.Header{}
	header.Set("Accept-Language", language)

	resp, err := c.httpClient.GetWithHeaders(ctx, path, header)
	if err != nil {
		return Address{}, models.NewUpstreamError("nominatim", 0, err)
	}
	if resp.StatusCode != http.StatusOK {
		return Address{}, models.NewUpstreamError("nominatim", resp.StatusCode, nil)
	}

	var payload struct {
		Error   string `json:"error"`
		Address struct {
			State   string `json:"state"`
			County  string `json:"county"`
			City    string `json:"city"`
			Country string `json:"country"`
		} `json:"address"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return Address{}, models.NewUpstreamError("nominatim", 0, err)
	}

	if payload.Error != "" {
		log.Warn().
			Float64("lat", lat).
			Float64("lon", lon).
			Str("error", payload.Error).
			Msg("nominatim could not resolve an address")
		return Address{}, nil
	}

	addr := Address{
		Country: payload.Address.Country,
		State:   payload.Address.State,
		County:  payload.Address.County,
		City:    payload.Address.City,
	}
	c.cache.Add(key, addr)
	return addr, nil
}

// Search performs a forward search and returns the ranked candidates.
func (c *Client) Search(ctx context.Context, text string) ([]Place, error) {
	path := fmt.Sprintf("/search?q=%s&format=jsonv2", url.QueryEscape(text))

	resp, err := c.httpClient.Get(ctx, path)
	if err != nil {
		return nil, models.NewUpstreamError("nominatim", 0, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, models.NewUpstreamError("nominatim", resp.StatusCode, nil)
	}

	var payload []struct {
		Name        string `json:"name"`
		AddressType string `json:"addresstype"`
		Lat         string `json:"lat"`
		Lon         string `json:"lon"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, models.NewUpstreamError("nominatim", 0, err)
	}

	places := make([]Place, len(payload))
	for i, p := range payload {
		places[i] = Place{
			Name: p.Name,
			Type: p.AddressType,
			Lat:  p.Lat,
			Lon:  p.Lon,
		}
	}
	return places, nil
}
