package registry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydrodata/pegeldict/internal/models"
	"github.com/hydrodata/pegeldict/pkg/http/client"
)

func newTestClient(srv *httptest.Server) *Client {
	return New(client.New(client.Options{
		BaseURL: srv.URL,
		Timeout: 5 * time.Second,
	}))
}

func TestFetchStations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stations.json", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("includeTimeseries"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{
				"uuid": "593647aa-9fea-43ec-a7d6-6476a76ae868",
				"number": "48900237",
				"shortname": "KÖLN",
				"longname": "KÖLN",
				"km": 688.0,
				"agency": "STANDORT KÖLN",
				"longitude": 6.9633,
				"latitude": 50.9369,
				"water": {"shortname": "RHEIN", "longname": "RHEIN"},
				"timeseries": [
					{"shortname": "W", "longname": "WASSERSTAND ROHDATEN", "unit": "cm", "equidistance": 15}
				]
			},
			{
				"uuid": "707e8821-4cd3-44cb-9cc9-b91f8a76a353",
				"number": "9999999",
				"shortname": "OHNE KOORDINATEN",
				"longname": "OHNE KOORDINATEN",
				"agency": "TESTAMT",
				"water": {"shortname": "TESTFLUSS", "longname": "TESTFLUSS"},
				"timeseries": []
			}
		]`))
	}))
	defer srv.Close()

	stations, err := newTestClient(srv).FetchStations(context.Background())
	require.NoError(t, err)
	require.Len(t, stations, 2)

	koeln := stations[0]
	assert.Equal(t, "593647aa-9fea-43ec-a7d6-6476a76ae868", koeln.UUID)
	assert.Equal(t, "KÖLN", koeln.Shortname)
	assert.Equal(t, "RHEIN", koeln.Water.Shortname)
	require.True(t, koeln.HasCoordinates())
	assert.InDelta(t, 6.9633, *koeln.Longitude, 1e-9)
	assert.InDelta(t, 50.9369, *koeln.Latitude, 1e-9)
	require.Len(t, koeln.Timeseries, 1)
	assert.Equal(t, "W", koeln.Timeseries[0].Shortname)
	assert.Equal(t, "cm", koeln.Timeseries[0].Unit)

	bare := stations[1]
	assert.False(t, bare.HasCoordinates())
	assert.Nil(t, bare.Longitude)
	assert.Nil(t, bare.Latitude)
}

func TestFetchStations_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).FetchStations(context.Background())
	require.Error(t, err)

	var upstream *models.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadGateway, upstream.Status)
}

func TestFetchStations_MalformedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"an array"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv).FetchStations(context.Background())
	require.Error(t, err)

	var parse *models.ParseError
	assert.ErrorAs(t, err, &parse)
}
