package http

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"hisaab/internal/quickentry"
)

// chatSession holds one conversation: its confirmation state and its
// append-only transcript. The mutex serializes turns so two concurrent posts
// for the same session cannot both see the same staged candidate.
type chatSession struct {
	mu         sync.Mutex
	state      quickentry.Session
	transcript *quickentry.Transcript
}

type sessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*chatSession
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{sessions: make(map[string]*chatSession)}
}

// get returns the session for id, creating it when id is empty or unknown.
// The returned id is the one the client must send on the next turn.
func (r *sessionRegistry) get(id string) (string, *chatSession) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id != "" {
		if cs, ok := r.sessions[id]; ok {
			return id, cs
		}
	}

	id = newSessionID()
	cs := &chatSession{transcript: quickentry.NewTranscript()}
	r.sessions[id] = cs
	return id, cs
}

func newSessionID() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		// rand.Read failing means the process is in serious trouble, but a
		// degraded id is still better than refusing the chat turn.
		return "sess_fallback"
	}
	return "sess_" + hex.EncodeToString(bytes)
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

type chatResponse struct {
	SessionID  string            `json:"session_id"`
	State      string            `json:"state"`
	Turns      []quickentry.Turn `json:"turns"`
	Transcript []quickentry.Turn `json:"transcript"`
}

func (s *server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	id, cs := s.sessions.get(req.SessionID)

	cs.mu.Lock()
	defer cs.mu.Unlock()

	next, turns, err := s.chat.HandleTurn(r.Context(), cs.state, req.Text)
	cs.state = next
	cs.transcript.AppendAll(turns)

	// A ledger failure still produced assistant turns describing it; the
	// conversation continues, so the response stays 200 with the transcript.
	_ = err

	s.invalidateOverviews()

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID:  id,
		State:      cs.state.State.String(),
		Turns:      turns,
		Transcript: cs.transcript.All(),
	})
}

func (s *server) handleChatTranscript(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("session")

	s.sessions.mu.Lock()
	cs, ok := s.sessions.sessions[id]
	s.sessions.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "unknown session")
		return
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()
	writeJSON(w, http.StatusOK, chatResponse{
		SessionID:  id,
		State:      cs.state.State.String(),
		Transcript: cs.transcript.All(),
	})
}
