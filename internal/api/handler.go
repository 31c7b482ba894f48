// Package api exposes the query surface over HTTP. It stays thin: query
// params in, engine results out, error taxonomy mapped to status codes.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/hydrodata/pegeldict/internal/geocode"
	"github.com/hydrodata/pegeldict/internal/models"
	"github.com/hydrodata/pegeldict/internal/query"
)

// StationSource provides the current station snapshot.
type StationSource interface {
	Snapshot() []models.Station
}

// PlaceSearcher resolves free text to place candidates.
type PlaceSearcher interface {
	Search(ctx context.Context, text string) ([]geocode.Place, error)
}

type Handler struct {
	stations StationSource
	engine   *query.Engine
	places   PlaceSearcher
}

func NewHandler(stations StationSource, engine *query.Engine, places PlaceSearcher) *Handler {
	return &Handler{
		stations: stations,
		engine:   engine,
		places:   places,
	}
}

// Register mounts the routes.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/stations", h.getStations)
	r.GET("/search", h.search)
	r.GET("/options", h.getOptions)
}

func stationQuery(c *gin.Context) models.StationQuery {
	return models.StationQuery{
		Station:       c.Query("station"),
		Gewaesser:     c.Query("gewaesser"),
		Agency:        c.Query("agency"),
		Land:          c.Query("land"),
		Country:       c.Query("country"),
		Einzugsgebiet: c.Query("einzugsgebiet"),
		Kreis:         c.Query("kreis"),
		Parameter:     c.Query("parameter"),
		BBox:          c.Query("bbox"),
		Q:             c.Query("q"),
	}
}

// getStations returns the filtered station list.
func (h *Handler) getStations(c *gin.Context) {
	q := stationQuery(c)
	stations := h.engine.Filter(h.stations.Snapshot(), q)
	c.JSON(http.StatusOK, stations)
}

// search resolves a free-text place query via the geocoder into a
// structured filter, or applies the structured filter directly, and
// returns the aggregated response.
func (h *Handler) search(c *gin.Context) {
	q := stationQuery(c)
	if q.Q == "" {
		c.JSON(http.StatusOK, h.engine.Search(h.stations.Snapshot(), q))
		return
	}

	log.Info().Str("q", q.Q).Msg("resolving free-text place query")
	places, err := h.places.Search(c.Request.Context(), q.Q)
	if err != nil {
		log.Error().Err(err).Msg("place search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not resolve your query"})
		return
	}
	if len(places) == 0 {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not resolve your query"})
		return
	}

	place := places[0]
	log.Info().Str("type", place.Type).Str("value", place.Name).Msg("place query resolved")

	var resolved models.StationQuery
	switch place.Type {
	case "state":
		resolved.Land = place.Name
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not resolve type: " + place.Type})
		return
	}

	c.JSON(http.StatusOK, h.engine.Search(h.stations.Snapshot(), resolved))
}

// getOptions lists the distinct values available for one filter field.
func (h *Handler) getOptions(c *gin.Context) {
	values, err := query.Options(h.stations.Snapshot(), c.Query("parameter"))
	if err != nil {
		var unsupported *models.UnsupportedParameterError
		var missing *models.MissingParameterError
		switch {
		case errors.As(err, &unsupported):
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported parameter"})
		case errors.As(err, &missing):
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing parameter"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, values)
}
