package registry

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hydrodata/pegeldict/internal/models"
	"github.com/hydrodata/pegeldict/pkg/http/client"
)

const stationsPath = "/stations.json?includeTimeseries=true"

// Client fetches the raw station catalog from the PEGELONLINE REST API.
type Client struct {
	httpClient client.Interface
}

func New(httpClient client.Interface) *Client {
	return &Client{httpClient: httpClient}
}

// FetchStations requests the full station list with nested timeseries.
// The returned stations carry registry fields only; enrichment fields
// are zero.
func (c *Client) FetchStations(ctx context.Context) ([]models.Station, error) {
	resp, err := c.httpClient.Get(ctx, stationsPath)
	if err != nil {
		return nil, models.NewUpstreamError("pegelonline", 0, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, models.NewUpstreamError("pegelonline", resp.StatusCode, nil)
	}

	var raw []struct {
		UUID       string   `json:"uuid"`
		Number     string   `json:"number"`
		Shortname  string   `json:"shortname"`
		Longname   string   `json:"longname"`
		KM         float64  `json:"km"`
		Agency     string   `json:"agency"`
		Longitude  *float64 `json:"longitude"`
		Latitude   *float64 `json:"latitude"`
		Water      struct {
			Shortname string `json:"shortname"`
			Longname  string `json:"longname"`
		} `json:"water"`
		Timeseries []struct {
			Shortname    string  `json:"shortname"`
			Longname     string  `json:"longname"`
			Unit         string  `json:"unit"`
			Equidistance float64 `json:"equidistance"`
		} `json:"timeseries"`
	}

	if err := json.Unmarshal(resp.Body, &raw); err != nil {
		return nil, models.NewParseError("pegelonline station list", err)
	}

	stations := make([]models.Station, len(raw))
	for i, r := range raw {
		timeseries := make([]models.Timeseries, len(r.Timeseries))
		for j, ts := range r.Timeseries {
			timeseries[j] = models.Timeseries{
				Shortname:    ts.Shortname,
				Longname:     ts.Longname,
				Unit:         ts.Unit,
				Equidistance: ts.Equidistance,
			}
		}

		stations[i] = models.Station{
			UUID:      r.UUID,
			Number:    r.Number,
			Shortname: r.Shortname,
			Longname:  r.Longname,
			KM:        r.KM,
			Agency:    r.Agency,
			Longitude: r.Longitude,
			Latitude:  r.Latitude,
			Water: models.Water{
				Shortname: r.Water.Shortname,
				Longname:  r.Water.Longname,
			},
			Timeseries: timeseries,
		}
	}

	return stations, nil
}
