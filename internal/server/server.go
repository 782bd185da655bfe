// Package server wires the session and translate middleware into the demo
// HTTP application served by "bossanova serve" and the http-minimal example.
package server

import (
	"encoding/json"
	"html"
	"net/http"
	"strings"
	"time"

	"github.com/MrEthical07/bossanova"
	"github.com/MrEthical07/bossanova/internal/render"
	"github.com/MrEthical07/bossanova/metrics"
	"github.com/MrEthical07/bossanova/metrics/export/prometheus"
	"github.com/MrEthical07/bossanova/middleware"
	"github.com/MrEthical07/bossanova/session"
	"github.com/MrEthical07/bossanova/translate"
	"github.com/gorilla/mux"
)

// Options are the collaborators of the demo handler. Without a Translator
// markers are stripped and phrases left untranslated; without Locales every
// request uses no locale.
type Options struct {
	Token          bossanova.TokenConfig
	SessionOptions []session.Option
	Translator     *translate.Translator
	Locales        *translate.LocaleMatcher
	Metrics        *metrics.Metrics
}

type loginRequest struct {
	UID  string `json:"uid"`
	Role string `json:"role,omitempty"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// NewHandler returns the demo application:
//
//	GET  /         localized greeting
//	POST /login    {"uid":"...","role":"..."} saves a session cookie
//	POST /logout   clears the session cookie
//	GET  /me       session claims, 401 without a session
//	GET  /metrics  Prometheus text exposition
//	GET  /healthz  liveness
func NewHandler(opts Options) http.Handler {
	sessionOpts := append([]session.Option{session.WithMetrics(opts.Metrics)}, opts.SessionOptions...)
	withSession := middleware.Session(opts.Token, sessionOpts...)

	router := mux.NewRouter()
	router.Handle("/", withSession(http.HandlerFunc(home))).Methods(http.MethodGet)
	router.Handle("/login", withSession(http.HandlerFunc(login))).Methods(http.MethodPost)
	router.Handle("/logout", withSession(http.HandlerFunc(logout))).Methods(http.MethodPost)
	router.Handle("/me", withSession(middleware.RequireSession()(http.HandlerFunc(me)))).Methods(http.MethodGet)
	router.Handle("/metrics", prometheus.NewPrometheusExporter(opts.Metrics).Handler()).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	translator := opts.Translator
	if translator == nil {
		translator = translate.NewTranslator(nil, translate.WithTranslatorMetrics(opts.Metrics))
	}
	var localeFn func(*http.Request) string
	if opts.Locales != nil {
		localeFn = opts.Locales.Match
	}

	return middleware.RequestID()(middleware.Translate(translator, localeFn)(router))
}

func home(w http.ResponseWriter, r *http.Request) {
	name := "^^[guest]^^"
	if engine, ok := middleware.EngineFromContext(r.Context()); ok && engine.Authenticated() {
		if uid, ok := engine.Claims().String("uid"); ok {
			name = html.EscapeString(uid)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	var b strings.Builder
	b.WriteString("<!doctype html>\n<html><body>\n")
	b.WriteString("<h1>^^[Welcome]^^</h1>\n")
	b.WriteString("<p>^^[Hello]^^, " + name + "!</p>\n")
	b.WriteString("</body></html>\n")
	_, _ = w.Write([]byte(b.String()))
}

func login(w http.ResponseWriter, r *http.Request) {
	engine, _ := middleware.EngineFromContext(r.Context())

	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&req); err != nil {
		render.Error(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.UID = strings.TrimSpace(req.UID)
	if req.UID == "" {
		render.Error(w, r, http.StatusBadRequest, "uid is required")
		return
	}

	claims := map[string]any{"uid": req.UID}
	if req.Role != "" {
		claims["role"] = req.Role
	}

	token, err := engine.Set(claims).Save(time.Time{})
	if err != nil {
		middleware.LoggerFromContext(r.Context()).WithError(err).Error("login: save session")
		render.Error(w, r, http.StatusInternalServerError, "Could not save session")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

func logout(w http.ResponseWriter, r *http.Request) {
	engine, _ := middleware.EngineFromContext(r.Context())
	engine.Destroy()
	w.WriteHeader(http.StatusNoContent)
}

func me(w http.ResponseWriter, r *http.Request) {
	engine, _ := middleware.EngineFromContext(r.Context())
	writeJSON(w, http.StatusOK, engine.Claims())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
