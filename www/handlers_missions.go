package www

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"missioncore/mission"
)

type createMissionRequest struct {
	Name      string   `json:"name"`
	Operation string   `json:"operation"`
	Source    string   `json:"source"`
	Dest      string   `json:"dest"`
	Via       []string `json:"via,omitempty"`
}

type stepView struct {
	Kind       string  `json:"kind"`
	Label      string  `json:"label,omitempty"`
	TargetX    float64 `json:"target_x"`
	TargetY    float64 `json:"target_y"`
	TargetOri  float64 `json:"target_ori"`
	Status     string  `json:"status"`
	RetryCount int     `json:"retry_count"`
}

type missionView struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Operation  string     `json:"operation"`
	RobotID    string     `json:"robot_id"`
	Source     string     `json:"source"`
	Dest       string     `json:"dest"`
	Status     string     `json:"status"`
	FailedStep int        `json:"failed_step"`
	Warning    string     `json:"warning,omitempty"`
	Error      string     `json:"error,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Steps      []stepView `json:"steps"`
}

func viewOf(m *mission.Mission) missionView {
	v := missionView{
		ID:         m.ID,
		Name:       m.Name,
		Operation:  string(m.Operation),
		RobotID:    m.RobotID,
		Source:     m.Source,
		Dest:       m.Dest,
		Status:     string(m.Status),
		FailedStep: m.FailedStep,
		Warning:    m.Warning,
		Error:      m.Error,
		CreatedAt:  m.CreatedAt,
		FinishedAt: m.FinishedAt,
	}
	for _, s := range m.Steps {
		v.Steps = append(v.Steps, stepView{
			Kind:       string(s.Kind),
			Label:      s.Label,
			TargetX:    s.Target.X,
			TargetY:    s.Target.Y,
			TargetOri:  s.Target.Ori,
			Status:     string(s.Status),
			RetryCount: s.RetryCount,
		})
	}
	return v
}

func (h *Handlers) apiCreateMission(w http.ResponseWriter, r *http.Request) {
	var req createMissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.jsonError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	op := mission.OperationType(req.Operation)
	switch op {
	case mission.OpPickup, mission.OpDropoff, mission.OpTransfer:
	default:
		h.jsonError(w, "operation must be pickup, dropoff or transfer", http.StatusBadRequest)
		return
	}
	if req.Source == "" || req.Dest == "" {
		h.jsonError(w, "source and dest are required", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		req.Name = string(op) + " " + req.Source + " -> " + req.Dest
	}

	m, err := h.engine.EnqueueMission(req.Name, op, req.Source, req.Dest, req.Via...)
	if err != nil {
		var pe *mission.PlanningError
		if errors.As(err, &pe) {
			h.jsonError(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, viewOf(m))
}

func (h *Handlers) apiGetMission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, err := h.engine.MissionStatus(id)
	if err != nil {
		h.jsonError(w, "not found", http.StatusNotFound)
		return
	}
	h.jsonOK(w, viewOf(m))
}

func (h *Handlers) apiActiveMissions(w http.ResponseWriter, r *http.Request) {
	missions := h.engine.ActiveMissions(queryLimit(r, 50))
	out := make([]missionView, 0, len(missions))
	for _, m := range missions {
		out = append(out, viewOf(m))
	}
	h.jsonOK(w, out)
}

func (h *Handlers) apiListMissions(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	missions, err := h.engine.MissionLog(status, queryLimit(r, 100))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, missions)
}

func (h *Handlers) apiMissionHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	history, err := h.engine.DB().ListMissionHistory(id)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	h.jsonOK(w, history)
}

func (h *Handlers) apiCancelMission(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.engine.CancelMission(id); err != nil {
		if errors.Is(err, mission.ErrMissionNotFound) {
			h.jsonError(w, "not found", http.StatusNotFound)
			return
		}
		h.jsonError(w, err.Error(), http.StatusConflict)
		return
	}
	h.jsonOK(w, map[string]string{"status": "cancelling"})
}
