package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"starmap/internal/config"
	"starmap/internal/graph"
	"starmap/internal/logger"
)

// Server exposes the universe query engine over HTTP JSON. It is the
// only surface the map renderer consumes; data is pulled, never pushed.
type Server struct {
	cfg    *config.Config
	atlas  *graph.Atlas
	loader func(context.Context) (*graph.Universe, error)
}

// NewServer creates a Server. loader is invoked by POST /api/reload to
// build a fresh universe from the snapshot source.
func NewServer(cfg *config.Config, atlas *graph.Atlas, loader func(context.Context) (*graph.Universe, error)) *Server {
	return &Server{cfg: cfg, atlas: atlas, loader: loader}
}

// Handler returns the HTTP handler with all API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("GET /api/regions/{id}", s.handleRegion)
	mux.HandleFunc("GET /api/regions/{id}/extent", s.handleRegionExtent)
	mux.HandleFunc("GET /api/constellations/{id}", s.handleConstellation)
	mux.HandleFunc("GET /api/systems/{id}", s.handleSystem)
	mux.HandleFunc("GET /api/systems/{id}/neighbors", s.handleNeighbors)
	mux.HandleFunc("GET /api/route", s.handleRoute)
	mux.HandleFunc("GET /api/viewport", s.handleViewport)
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("POST /api/reload", s.handleReload)
	return mux
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, graph.ErrNotReady):
		status = http.StatusServiceUnavailable
	case errors.Is(err, graph.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, graph.ErrUnreachable):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// universe fetches the current graph, writing 503 when none is loaded.
func (s *Server) universe(w http.ResponseWriter) (*graph.Universe, bool) {
	u, err := s.atlas.Current()
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return u, true
}

func pathID(r *http.Request) (int32, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("bad id %q", r.PathValue("id"))
	}
	return int32(id), nil
}

type statusResponse struct {
	Ready          bool `json:"ready"`
	Regions        int  `json:"regions,omitempty"`
	Constellations int  `json:"constellations,omitempty"`
	Systems        int  `json:"systems,omitempty"`
	Connections    int  `json:"connections,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{Ready: s.atlas.Ready()}
	if u, err := s.atlas.Current(); err == nil {
		resp.Regions = u.RegionCount()
		resp.Constellations = u.ConstellationCount()
		resp.Systems = u.SystemCount()
		resp.Connections = u.ConnectionCount()
	}
	writeJSON(w, http.StatusOK, resp)
}

type regionResponse struct {
	ID             int32   `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	Constellations []int32 `json:"constellation_ids"`
}

func (s *Server) handleRegion(w http.ResponseWriter, r *http.Request) {
	u, ok := s.universe(w)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	region, err := u.Region(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, regionResponse{
		ID:             region.ID,
		Name:           region.Name,
		Description:    region.Description,
		Constellations: region.Constellations,
	})
}

type boxResponse struct {
	Min [3]float64 `json:"min"`
	Max [3]float64 `json:"max"`
}

func toBoxResponse(b graph.Box) boxResponse {
	return boxResponse{
		Min: [3]float64{b.Min.X, b.Min.Y, b.Min.Z},
		Max: [3]float64{b.Max.X, b.Max.Y, b.Max.Z},
	}
}

func (s *Server) handleRegionExtent(w http.ResponseWriter, r *http.Request) {
	u, ok := s.universe(w)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	box, err := u.RegionExtent(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toBoxResponse(box))
}

type constellationResponse struct {
	ID       int32   `json:"id"`
	Name     string  `json:"name"`
	RegionID int32   `json:"region_id"`
	Systems  []int32 `json:"system_ids"`
}

func (s *Server) handleConstellation(w http.ResponseWriter, r *http.Request) {
	u, ok := s.universe(w)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	c, err := u.Constellation(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, constellationResponse{
		ID:       c.ID,
		Name:     c.Name,
		RegionID: c.RegionID,
		Systems:  c.Systems,
	})
}

type systemResponse struct {
	ID              int32      `json:"id"`
	Name            string     `json:"name"`
	Coords          [3]float64 `json:"coords"`
	Security        float64    `json:"security"`
	ConstellationID int32      `json:"constellation_id"`
	RegionID        int32      `json:"region_id"`
}

func toSystemResponse(u *graph.Universe, sys *graph.SolarSystem) systemResponse {
	regionID, _ := u.SystemRegionID(sys.ID)
	return systemResponse{
		ID:              sys.ID,
		Name:            sys.Name,
		Coords:          [3]float64{sys.Coords.X, sys.Coords.Y, sys.Coords.Z},
		Security:        sys.Security,
		ConstellationID: sys.ConstellationID,
		RegionID:        regionID,
	}
}

func (s *Server) handleSystem(w http.ResponseWriter, r *http.Request) {
	u, ok := s.universe(w)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	sys, err := u.System(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSystemResponse(u, sys))
}

func (s *Server) handleNeighbors(w http.ResponseWriter, r *http.Request) {
	u, ok := s.universe(w)
	if !ok {
		return
	}
	id, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	neighbors, err := u.Neighbors(id)
	if err != nil {
		writeError(w, err)
		return
	}
	if neighbors == nil {
		neighbors = []int32{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"system_id": id, "neighbors": neighbors})
}

type routeResponse struct {
	From     int32   `json:"from"`
	To       int32   `json:"to"`
	Mode     string  `json:"mode"`
	Systems  []int32 `json:"systems"`
	Jumps    int     `json:"jumps"`
	Distance float64 `json:"distance"`
}

// resolveSystem accepts a numeric system ID or an exact system name.
func resolveSystem(u *graph.Universe, param string) (int32, error) {
	if id, err := strconv.ParseInt(param, 10, 32); err == nil {
		return int32(id), nil
	}
	if id, ok := u.SystemIDByName(param); ok {
		return id, nil
	}
	return 0, fmt.Errorf("system %q: %w", param, graph.ErrNotFound)
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	u, ok := s.universe(w)
	if !ok {
		return
	}
	q := r.URL.Query()
	if q.Get("from") == "" || q.Get("to") == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "from and to are required"})
		return
	}
	from, err := resolveSystem(u, q.Get("from"))
	if err != nil {
		writeError(w, err)
		return
	}
	to, err := resolveSystem(u, q.Get("to"))
	if err != nil {
		writeError(w, err)
		return
	}

	mode := graph.Hops
	switch q.Get("mode") {
	case "", "hops":
	case "distance":
		mode = graph.Distance
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("bad mode %q", q.Get("mode"))})
		return
	}

	path, err := u.ShortestPath(from, to, mode)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, routeResponse{
		From:     from,
		To:       to,
		Mode:     mode.String(),
		Systems:  path.Systems,
		Jumps:    path.Jumps,
		Distance: path.Distance,
	})
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	u, ok := s.universe(w)
	if !ok {
		return
	}
	q := r.URL.Query()
	coords := [6]float64{}
	for i, name := range []string{"min_x", "min_y", "min_z", "max_x", "max_y", "max_z"} {
		v, err := strconv.ParseFloat(q.Get(name), 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("bad %s %q", name, q.Get(name))})
			return
		}
		coords[i] = v
	}
	box := graph.Box{
		Min: graph.Point3{X: coords[0], Y: coords[1], Z: coords[2]},
		Max: graph.Point3{X: coords[3], Y: coords[4], Z: coords[5]},
	}

	ids := u.SystemsInBounds(box)
	systems := make([]systemResponse, 0, len(ids))
	for _, id := range ids {
		sys, err := u.System(id)
		if err != nil {
			continue
		}
		systems = append(systems, toSystemResponse(u, sys))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"systems": systems})
}

type searchMatch struct {
	Kind string `json:"kind"`
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	u, ok := s.universe(w)
	if !ok {
		return
	}
	q := r.URL.Query()
	scope, ok := graph.ParseScope(q.Get("scope"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("bad scope %q", q.Get("scope"))})
		return
	}

	limit := 100
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("bad limit %q", v)})
			return
		}
		limit = n
	}

	// limit is client-supplied; don't let it size the allocation.
	matches := make([]searchMatch, 0, min(limit, 256))
	for m := range u.Search(q.Get("q"), scope) {
		matches = append(matches, searchMatch{Kind: m.Kind.String(), ID: m.ID, Name: m.Name})
		if len(matches) >= limit {
			break
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"matches": matches})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	u, err := s.atlas.Reload(r.Context(), s.loader)
	if err != nil {
		logger.Error("API", fmt.Sprintf("Reload failed: %v", err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	logger.Success("API", fmt.Sprintf("Reloaded snapshot in %s", time.Since(start).Round(time.Millisecond)))
	writeJSON(w, http.StatusOK, statusResponse{
		Ready:          true,
		Regions:        u.RegionCount(),
		Constellations: u.ConstellationCount(),
		Systems:        u.SystemCount(),
		Connections:    u.ConnectionCount(),
	})
}
