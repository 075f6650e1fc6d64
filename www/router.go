package www

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"missioncore/engine"
)

type Handlers struct {
	engine   *engine.Engine
	sessions *sessions.CookieStore
	eventHub *EventHub
}

func NewRouter(eng *engine.Engine) (http.Handler, func()) {
	hub := NewEventHub()
	hub.Start()
	hub.SetupEngineListeners(eng)

	h := &Handlers{
		engine:   eng,
		sessions: newSessionStore(eng.AppConfig().Web.SessionSecret),
		eventHub: hub,
	}

	h.ensureDefaultAdmin(eng.DB())

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// SSE
	r.Get("/events", hub.SSEHandler)

	// Session
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)

	// Read-only API, no auth required
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.apiHealthCheck)
		r.Get("/robot/state", h.apiRobotState)
		r.Get("/robots", h.apiListRobots)
		r.Get("/missions", h.apiListMissions)
		r.Get("/missions/active", h.apiActiveMissions)
		r.Get("/missions/{id}", h.apiGetMission)
		r.Get("/missions/{id}/history", h.apiMissionHistory)
		r.Get("/points", h.apiListMapPoints)
		r.Get("/points/{id}", h.apiResolvePoint)
	})

	// Mutating routes
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Post("/api/missions", h.apiCreateMission)
		r.Post("/api/missions/{id}/cancel", h.apiCancelMission)
		r.Post("/api/points/sync", h.apiSyncMapPoints)
		r.Post("/api/config/robot", h.apiReconfigureRobot)
		r.Post("/api/config/messaging", h.apiReconfigureMessaging)
		r.Post("/api/config/save", h.apiConfigSave)
	})

	stopFn := func() {
		hub.Stop()
	}

	return r, stopFn
}

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	user, err := h.engine.DB().GetAdminUser(username)
	if err != nil || !checkPassword(user.PasswordHash, password) {
		h.jsonError(w, "invalid username or password", http.StatusUnauthorized)
		return
	}

	session, _ := h.sessions.Get(r, sessionName)
	session.Values["authenticated"] = true
	session.Values["username"] = username
	if err := session.Save(r, w); err != nil {
		log.Printf("auth: session save error: %v", err)
	}

	h.jsonOK(w, map[string]string{"username": username})
}

func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := h.sessions.Get(r, sessionName)
	session.Values["authenticated"] = false
	session.Values["username"] = ""
	session.Save(r, w)
	h.jsonOK(w, map[string]string{"status": "ok"})
}
