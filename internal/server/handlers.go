package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	libinjection "github.com/jptosso/libinjection-sqli"
	"github.com/jptosso/libinjection-sqli/internal/harness"
)

// ClassifyRequest is the body of POST /v1/classify
type ClassifyRequest struct {
	Input string `json:"input"`
	Set   string `json:"set,omitempty"`
	// Decode URL-decodes the input first, the way the harness reads lines.
	Decode bool `json:"decode,omitempty"`
}

// ClassifyResponse is the verdict for one input
type ClassifyResponse struct {
	RequestID   string `json:"request_id"`
	Set         string `json:"set"`
	IsInjection bool   `json:"is_injection"`
	Fingerprint string `json:"fingerprint"`
	Reason      string `json:"reason,omitempty"`
	Suppressed  string `json:"suppressed,omitempty"`
}

// NormalizeRequest is the body of POST /v1/normalize
type NormalizeRequest struct {
	Input  string `json:"input"`
	Decode bool   `json:"decode,omitempty"`
}

// NormalizeResponse carries the normalized input
type NormalizeResponse struct {
	RequestID  string `json:"request_id"`
	Normalized string `json:"normalized"`
}

// SetInfo describes one pattern set
type SetInfo struct {
	Name         string `json:"name"`
	Fingerprints int    `json:"fingerprints"`
}

// SetsResponse lists the pattern sets
type SetsResponse struct {
	Sets []SetInfo `json:"sets"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RegisterRoutes registers the detector API routes with a gorilla/mux router
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/classify", s.Classify).Methods("POST")
	r.HandleFunc("/normalize", s.Normalize).Methods("POST")
	r.HandleFunc("/sets", s.ListSets).Methods("GET")
}

// Classify handles POST /v1/classify
func (s *Server) Classify(w http.ResponseWriter, r *http.Request) {
	var req ClassifyRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	set := strings.ToLower(strings.TrimSpace(req.Set))
	if set == "" {
		set = libinjection.DefaultSet
	}
	d, ok := s.detectors[set]
	if !ok {
		s.writeError(w, http.StatusNotFound, "UNKNOWN_SET", "Unknown pattern set: "+req.Set)
		return
	}

	input := []byte(req.Input)
	if req.Decode {
		input = harness.URLDecode(input)
	}
	res := d.Classify(input)
	s.metrics.observeVerdict(set, res.IsInjection, res.Suppressed != "")

	id := RequestID(r.Context())
	if res.IsInjection {
		s.logger.WithFields(logrus.Fields{
			"request_id":  id,
			"set":         set,
			"fingerprint": res.Fingerprint,
			"reason":      res.Reason,
			"input_len":   len(input),
		}).Info("SQL injection detected")
	}

	s.writeJSON(w, http.StatusOK, ClassifyResponse{
		RequestID:   id,
		Set:         set,
		IsInjection: res.IsInjection,
		Fingerprint: res.Fingerprint,
		Reason:      res.Reason,
		Suppressed:  res.Suppressed,
	})
}

// Normalize handles POST /v1/normalize
func (s *Server) Normalize(w http.ResponseWriter, r *http.Request) {
	var req NormalizeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	input := []byte(req.Input)
	if req.Decode {
		input = harness.URLDecode(input)
	}
	s.writeJSON(w, http.StatusOK, NormalizeResponse{
		RequestID:  RequestID(r.Context()),
		Normalized: string(libinjection.Normalize(input, s.normalize)),
	})
}

// ListSets handles GET /v1/sets
func (s *Server) ListSets(w http.ResponseWriter, r *http.Request) {
	resp := SetsResponse{Sets: []SetInfo{}}
	for _, name := range s.registry.Names() {
		d := s.detectors[name]
		resp.Sets = append(resp.Sets, SetInfo{Name: name, Fingerprints: d.Table().Len()})
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// Health handles GET /healthz
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeBody reads a bounded JSON body into v and reports whether the
// handler may go on.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "Request body too large")
			return false
		}
		s.writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func (s *Server) writeError(w http.ResponseWriter, status int, code, message string) {
	s.writeJSON(w, status, ErrorResponse{
		Error:   strings.ToLower(code),
		Code:    code,
		Message: message,
	})
}
