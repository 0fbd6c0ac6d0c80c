package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/florahub/ecocrop-etl/internal/adapter/openmeteo"
	"github.com/florahub/ecocrop-etl/internal/domain"
	"github.com/florahub/ecocrop-etl/internal/suitability"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

var validate = validator.New()

func (s *Server) handleGetPlant(w http.ResponseWriter, r *http.Request) {
	code, err := strconv.Atoi(r.PathValue("code"))
	if err != nil || code <= 0 {
		writeError(w, http.StatusBadRequest, "code must be a positive integer")
		return
	}

	plant, err := s.directory.GetByCode(r.Context(), code)
	if errors.Is(err, domain.ErrPlantNotFound) {
		writeError(w, http.StatusNotFound, "plant not found")
		return
	}
	if err != nil {
		s.logger.Error("plant lookup failed", "code", code, "error", err)
		writeError(w, http.StatusInternalServerError, "plant lookup failed")
		return
	}
	writeJSON(w, http.StatusOK, plant)
}

// handleSearchPlants serves GET /api/v1/plants?q=...&mode=...&limit=...
// Modes: scientific (exact, case-insensitive), common (substring over
// common names), any (substring over scientific names and synonyms,
// the default).
func (s *Server) handleSearchPlants(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	limit := defaultSearchLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > maxSearchLimit {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and "+strconv.Itoa(maxSearchLimit))
			return
		}
		limit = n
	}

	var plants []domain.PlantSummary
	var err error
	switch mode := r.URL.Query().Get("mode"); mode {
	case "scientific":
		var plant domain.PlantSummary
		plant, err = s.directory.GetByScientificName(r.Context(), query)
		if err == nil {
			plants = []domain.PlantSummary{plant}
		} else if errors.Is(err, domain.ErrPlantNotFound) {
			plants, err = nil, nil
		}
	case "common":
		plants, err = s.directory.SearchByCommonName(r.Context(), query, limit)
	case "", "any":
		plants, err = s.directory.SearchByName(r.Context(), query, limit)
	default:
		writeError(w, http.StatusBadRequest, "mode must be scientific, common, or any")
		return
	}
	if err != nil {
		s.logger.Error("plant search failed", "q", query, "error", err)
		writeError(w, http.StatusInternalServerError, "plant search failed")
		return
	}

	if plants == nil {
		plants = []domain.PlantSummary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"plants": plants, "count": len(plants)})
}

// suitabilityRequest identifies a species by code or scientific name
// and where to score it: a place name, explicit coordinates, or both.
// Coordinates skip geocoding.
type suitabilityRequest struct {
	PlantCode      int      `json:"plant_code" validate:"required_without=ScientificName,omitempty,gt=0"`
	ScientificName string   `json:"scientific_name" validate:"required_without=PlantCode"`
	Place          string   `json:"place" validate:"required_without=Latitude"`
	Latitude       *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude      *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

func (s *Server) handleSuitability(w http.ResponseWriter, r *http.Request) {
	var req suitabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "plant_code or scientific_name, and a place or coordinates, are required")
		return
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		writeError(w, http.StatusBadRequest, "latitude and longitude must be provided together")
		return
	}

	place := suitability.Place{Name: req.Place, Lat: req.Latitude, Lon: req.Longitude}

	var a any
	var err error
	if req.PlantCode > 0 {
		a, err = s.assessor.AssessByCode(r.Context(), req.PlantCode, place)
	} else {
		a, err = s.assessor.AssessByName(r.Context(), req.ScientificName, place)
	}

	switch {
	case errors.Is(err, domain.ErrPlantNotFound):
		writeError(w, http.StatusNotFound, "plant not found")
	case errors.Is(err, openmeteo.ErrNoResults):
		writeError(w, http.StatusNotFound, "place not found")
	case errors.Is(err, domain.ErrEmptySeries):
		writeError(w, http.StatusBadGateway, "no usable forecast for this place")
	case err != nil:
		s.logger.Error("suitability request failed", "error", err)
		writeError(w, http.StatusBadGateway, "suitability request failed")
	default:
		writeJSON(w, http.StatusOK, a)
	}
}
