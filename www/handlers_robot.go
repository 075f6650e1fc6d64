package www

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"missioncore/points"
)

func (h *Handlers) apiHealthCheck(w http.ResponseWriter, r *http.Request) {
	messagingOK := false
	if mc := h.engine.MsgClient(); mc != nil {
		messagingOK = mc.IsConnected()
	}
	h.jsonOK(w, map[string]any{
		"status":    "ok",
		"robot":     h.engine.RobotOnline(),
		"messaging": messagingOK,
		"pending":   h.engine.PendingCount(),
	})
}

func (h *Handlers) apiRobotState(w http.ResponseWriter, r *http.Request) {
	h.jsonOK(w, h.engine.RobotSnapshot())
}

func (h *Handlers) apiListRobots(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.engine.FleetSnapshots(r.Context())
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, snaps)
}

func (h *Handlers) apiListMapPoints(w http.ResponseWriter, r *http.Request) {
	pts, err := h.engine.DB().ListMapPoints()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, pts)
}

func (h *Handlers) apiResolvePoint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.jsonError(w, "id is required", http.StatusBadRequest)
		return
	}
	pt, err := h.engine.ResolvePoint(id)
	if err != nil {
		if errors.Is(err, points.ErrNotFound) {
			h.jsonError(w, err.Error(), http.StatusNotFound)
			return
		}
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, pt)
}

func (h *Handlers) apiSyncMapPoints(w http.ResponseWriter, r *http.Request) {
	count, err := h.engine.SyncMapPoints()
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}
	log.Printf("www: map points synced by %s (%d points)", h.getUsername(r), count)
	h.jsonOK(w, map[string]any{"synced": count})
}

type robotConfigRequest struct {
	BaseURL string `json:"base_url"`
}

// apiReconfigureRobot repoints the robot client at runtime and
// persists the new endpoint.
func (h *Handlers) apiReconfigureRobot(w http.ResponseWriter, r *http.Request) {
	var req robotConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.BaseURL == "" {
		h.jsonError(w, "base_url is required", http.StatusBadRequest)
		return
	}

	cfg := h.engine.AppConfig()
	cfg.Lock()
	cfg.Robot.BaseURL = req.BaseURL
	timeout := cfg.Robot.Timeout
	cfg.Unlock()

	h.engine.ReconfigureRobot(req.BaseURL, timeout)
	if err := cfg.Save(h.engine.ConfigPath()); err != nil {
		log.Printf("www: save config: %v", err)
	}
	h.jsonOK(w, map[string]string{"base_url": req.BaseURL})
}

type messagingConfigRequest struct {
	Brokers       []string `json:"brokers"`
	MissionsTopic string   `json:"missions_topic,omitempty"`
}

func (h *Handlers) apiReconfigureMessaging(w http.ResponseWriter, r *http.Request) {
	var req messagingConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Brokers) == 0 {
		h.jsonError(w, "brokers is required", http.StatusBadRequest)
		return
	}

	cfg := h.engine.AppConfig()
	cfg.Lock()
	cfg.Messaging.Kafka.Brokers = req.Brokers
	if req.MissionsTopic != "" {
		cfg.Messaging.MissionsTopic = req.MissionsTopic
	}
	msgCfg := cfg.Messaging
	cfg.Unlock()

	if err := h.engine.ReconfigureMessaging(&msgCfg); err != nil {
		log.Printf("www: messaging reconnect: %v", err)
	}
	if err := cfg.Save(h.engine.ConfigPath()); err != nil {
		log.Printf("www: save config: %v", err)
	}
	h.jsonOK(w, map[string]any{"brokers": req.Brokers})
}

func (h *Handlers) apiConfigSave(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.AppConfig().Save(h.engine.ConfigPath()); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, map[string]string{"status": "saved"})
}
