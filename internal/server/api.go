package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/coco-labs/coco/internal/session"
)

type createSessionRequest struct {
	Context      string `json:"context"`
	Goal         string `json:"goal"`
	UserName     string `json:"user_name"`
	Participants string `json:"participants"`
	Tone         string `json:"tone"`
}

type createSessionResponse struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func registerAPIRoutes(mux *http.ServeMux, deps Deps) {
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "COCO - Conversation Coach API running"})
	})

	mux.HandleFunc("POST /session", func(w http.ResponseWriter, r *http.Request) {
		var req createSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Context == "" || req.Goal == "" || req.UserName == "" {
			writeJSONError(w, http.StatusBadRequest, "context, goal and user_name are required")
			return
		}

		sess := deps.Registry.Create(session.Profile{
			UserName:     req.UserName,
			Context:      req.Context,
			Goal:         req.Goal,
			Participants: req.Participants,
			Tone:         req.Tone,
		})
		deps.Logger.Info("session created", "session_id", sess.ID)

		writeJSON(w, http.StatusOK, createSessionResponse{
			SessionID: sess.ID,
			Message:   fmt.Sprintf("Session created. Start by saying: 'Hi, I'm %s.'", req.UserName),
		})
	})

	mux.HandleFunc("POST /session/{id}/finish", func(w http.ResponseWriter, r *http.Request) {
		sess, err := deps.Registry.Get(r.PathValue("id"))
		if err != nil {
			writeJSONError(w, http.StatusNotFound, "session not found")
			return
		}

		report, err := session.Finalize(r.Context(), sess, deps.Gateway)
		if err != nil {
			deps.Logger.Error("finalize failed", "session_id", sess.ID, "error", err)
			status := http.StatusInternalServerError
			if errors.Is(err, session.ErrAnalysis) {
				status = http.StatusBadGateway
			}
			writeJSONError(w, status, "session analysis failed")
			return
		}

		if report.Transcript == nil {
			report.Transcript = []session.Entry{}
		}
		writeJSON(w, http.StatusOK, report)
	})

	mux.HandleFunc("DELETE /session/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if _, err := deps.Registry.Get(id); err != nil {
			writeJSONError(w, http.StatusNotFound, "session not found")
			return
		}
		deps.Registry.Delete(id)
		w.WriteHeader(http.StatusNoContent)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
