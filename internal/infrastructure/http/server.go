package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/d3code/home-assistant-coingecko/internal/application"
	"github.com/d3code/home-assistant-coingecko/internal/domain"
	"github.com/go-chi/chi/v5"
)

// Server exposes the coordinator and its sensor façades over HTTP. It plays
// the part of the host platform's entity layer: every configured pair is one
// sensor resource.
type Server struct {
	coordinator *application.Coordinator
	sensors     []*application.Sensor
	byPair      map[domain.Pair]*application.Sensor
}

func NewServer(coordinator *application.Coordinator, sensors []*application.Sensor) *Server {
	byPair := make(map[domain.Pair]*application.Sensor, len(sensors))
	for _, s := range sensors {
		byPair[s.Pair()] = s
	}
	return &Server{coordinator: coordinator, sensors: sensors, byPair: byPair}
}

type sensorPayload struct {
	Pair        string         `json:"pair"`
	Name        string         `json:"name"`
	UniqueID    string         `json:"unique_id"`
	Value       *float64       `json:"value"`
	Unit        string         `json:"unit,omitempty"`
	Attributes  map[string]any `json:"attributes"`
	Attribution string         `json:"attribution"`
}

func sensorState(s *application.Sensor) sensorPayload {
	return sensorPayload{
		Pair:        string(s.Pair()),
		Name:        s.Name(),
		UniqueID:    s.UniqueID(),
		Value:       s.NativeValue(),
		Unit:        s.Unit(),
		Attributes:  s.Attributes(),
		Attribution: application.Attribution,
	}
}

func (s *Server) ListSensors(w http.ResponseWriter, r *http.Request) {
	out := make([]sensorPayload, 0, len(s.sensors))
	for _, sensor := range s.sensors {
		out = append(out, sensorState(sensor))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) GetSensor(w http.ResponseWriter, r *http.Request) {
	pair := domain.Pair(chi.URLParam(r, "pair"))
	sensor, ok := s.byPair[pair]
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, sensorState(sensor))
}

func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.coordinator.Snapshot()
	pairs := make(map[string]sensorRecord, len(snap.Pairs))
	for pair, rec := range snap.Pairs {
		pairs[string(pair)] = sensorRecord{
			Price:     rec.Price,
			CoinID:    rec.AssetID,
			Currency:  rec.Currency,
			Change24h: rec.Change24h,
			Volume24h: rec.Volume24h,
			MarketCap: rec.MarketCap,
		}
	}
	resp := snapshotPayload{Pairs: pairs}
	if ts, ok := s.coordinator.LastSuccess(); ok {
		iso := ts.UTC().Format(time.RFC3339)
		resp.LastSuccess = &iso
	}
	writeJSON(w, http.StatusOK, resp)
}

type sensorRecord struct {
	Price     float64  `json:"price"`
	CoinID    string   `json:"coin_id"`
	Currency  string   `json:"currency"`
	Change24h *float64 `json:"change_24h,omitempty"`
	Volume24h *float64 `json:"volume_24h,omitempty"`
	MarketCap *float64 `json:"market_cap,omitempty"`
}

type snapshotPayload struct {
	Pairs       map[string]sensorRecord `json:"pairs"`
	LastSuccess *string                 `json:"last_success,omitempty"`
}

// ForceRefresh runs one cycle on demand. A failed cycle maps to 502 with the
// taxonomy kind; the previous snapshot stays in place either way.
func (s *Server) ForceRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.coordinator.Refresh(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, cycleKind(err))
		return
	}
	ts, _ := s.coordinator.LastSuccess()
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":     "ok",
		"fetched_at": ts.UTC().Format(time.RFC3339),
	})
}

func cycleKind(err error) string {
	switch {
	case errors.Is(err, application.ErrConfiguration):
		return "configuration"
	case errors.Is(err, application.ErrTransport):
		return "transport"
	case errors.Is(err, application.ErrStatus):
		return "status"
	case errors.Is(err, application.ErrParse):
		return "parse"
	}
	return "unknown"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func notFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
}
