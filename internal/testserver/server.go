// Package testserver emulates the BOQ backend in memory for tests: bearer
// auth, paginated list endpoints with skip/limit/search, create/update/
// delete, and CSV ingestion. Some collections answer with a "records"
// envelope and some with "items", matching the real backend's inconsistency
// so the client's normalization is exercised.
package testserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"boqtrack/internal/boq"
	"boqtrack/internal/csvcodec"
)

// itemsEnvelope lists the collections that respond with {"items": ...}
// instead of {"records": ...}.
var itemsEnvelope = map[string]bool{
	"inventory": true,
	"du":        true,
}

type forcedResponse struct {
	status int
	detail string
}

// Server is an in-memory BOQ backend.
type Server struct {
	mu     sync.Mutex
	tokens map[string]string            // token -> username
	data   map[string][]map[string]any  // resource name -> records
	forced []forcedResponse

	router chi.Router
}

func New() *Server {
	s := &Server{
		tokens: map[string]string{},
		data:   map[string][]map[string]any{},
	}
	r := chi.NewRouter()

	r.Post("/auth/login", s.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(s.auth)
		for _, res := range boq.Catalog() {
			res := res
			r.Get(res.Path, s.handleList(res))
			r.Get(res.Path+"/{id}", s.handleGet(res))
			r.Post(res.Path, s.handleCreate(res))
			r.Put(res.Path+"/{id}", s.handleUpdate(res))
			r.Delete(res.Path+"/{id}", s.handleDelete(res))
			r.Post(res.UploadPath(), s.handleUpload(res))
		}
	})

	s.router = r
	return s
}

// Handler exposes the server as an http.Handler for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// AddToken registers a pre-issued bearer token.
func (s *Server) AddToken(token, username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = username
}

// Seed inserts records directly, assigning ids to any that lack one.
func (s *Server) Seed(res boq.Resource, records []map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		cp := map[string]any{}
		for k, v := range rec {
			cp[k] = v
		}
		if _, ok := cp[res.Schema.IDField]; !ok {
			cp[res.Schema.IDField] = uuid.NewString()
		}
		s.data[res.Name] = append(s.data[res.Name], cp)
	}
}

// Count returns how many records a collection holds.
func (s *Server) Count(res boq.Resource) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data[res.Name])
}

// FailNext forces the next authenticated request to fail with the given
// status and detail message.
func (s *Server) FailNext(status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forced = append(s.forced, forcedResponse{status: status, detail: detail})
}

func (s *Server) takeForced() (forcedResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.forced) == 0 {
		return forcedResponse{}, false
	}
	f := s.forced[0]
	s.forced = s.forced[1:]
	return f, true
}

func (s *Server) auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			writeDetail(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		token := strings.TrimPrefix(auth, "Bearer ")
		s.mu.Lock()
		_, ok := s.tokens[token]
		s.mu.Unlock()
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "invalid token")
			return
		}
		if f, forced := s.takeForced(); forced {
			writeDetail(w, f.status, f.detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil || creds.Username == "" || creds.Password == "" {
		writeDetail(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = creds.Username
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user": map[string]any{
			"name":  creds.Username,
			"email": creds.Username + "@example.com",
			"role":  "planner",
		},
	})
}

func (s *Server) handleList(res boq.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		if err != nil || limit <= 0 {
			limit = 50
		}
		if skip < 0 {
			skip = 0
		}
		search := strings.ToLower(r.URL.Query().Get("search"))

		s.mu.Lock()
		var matched []map[string]any
		for _, rec := range s.data[res.Name] {
			if !matchesFilters(res, rec, r) {
				continue
			}
			if search != "" && !matchesSearch(rec, search) {
				continue
			}
			matched = append(matched, rec)
		}
		s.mu.Unlock()

		total := len(matched)
		if skip > total {
			skip = total
		}
		end := skip + limit
		if end > total {
			end = total
		}
		page := make([]map[string]any, 0, end-skip)
		page = append(page, matched[skip:end]...)

		key := "records"
		if itemsEnvelope[res.Name] {
			key = "items"
		}
		writeJSON(w, http.StatusOK, map[string]any{key: page, "total": total})
	}
}

func matchesFilters(res boq.Resource, rec map[string]any, r *http.Request) bool {
	for _, f := range res.Schema.Fields {
		want := r.URL.Query().Get(f.Name)
		if want == "" {
			continue
		}
		got, ok := rec[f.Name].(string)
		if !ok || got != want {
			return false
		}
	}
	return true
}

func matchesSearch(rec map[string]any, search string) bool {
	for _, v := range rec {
		if sv, ok := v.(string); ok && strings.Contains(strings.ToLower(sv), search) {
			return true
		}
	}
	return false
}

func (s *Server) handleGet(res boq.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		s.mu.Lock()
		defer s.mu.Unlock()
		for _, rec := range s.data[res.Name] {
			if rec[res.Schema.IDField] == id {
				writeJSON(w, http.StatusOK, rec)
				return
			}
		}
		writeDetail(w, http.StatusNotFound, "record not found")
	}
}

func (s *Server) handleCreate(res boq.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec map[string]any
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		validated, verr := res.Schema.Validate(rec)
		if verr != nil {
			writeDetail(w, http.StatusUnprocessableEntity, verr.Error())
			return
		}
		validated[res.Schema.IDField] = uuid.NewString()

		s.mu.Lock()
		s.data[res.Name] = append(s.data[res.Name], validated)
		s.mu.Unlock()

		writeJSON(w, http.StatusCreated, validated)
	}
}

func (s *Server) handleUpdate(res boq.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var rec map[string]any
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			writeDetail(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		validated, verr := res.Schema.Validate(rec)
		if verr != nil {
			writeDetail(w, http.StatusUnprocessableEntity, verr.Error())
			return
		}
		validated[res.Schema.IDField] = id

		s.mu.Lock()
		defer s.mu.Unlock()
		for i, existing := range s.data[res.Name] {
			if existing[res.Schema.IDField] == id {
				s.data[res.Name][i] = validated
				writeJSON(w, http.StatusOK, validated)
				return
			}
		}
		writeDetail(w, http.StatusNotFound, "record not found")
	}
}

func (s *Server) handleDelete(res boq.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		s.mu.Lock()
		defer s.mu.Unlock()
		records := s.data[res.Name]
		for i, existing := range records {
			if existing[res.Schema.IDField] == id {
				s.data[res.Name] = append(records[:i:i], records[i+1:]...)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		writeDetail(w, http.StatusNotFound, "record not found")
	}
}

func (s *Server) handleUpload(res boq.Resource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, _, err := r.FormFile("file")
		if err != nil {
			writeDetail(w, http.StatusBadRequest, "missing file field")
			return
		}
		defer file.Close()

		records, rowErrs, err := csvcodec.DecodeRecords(file, res.Schema)
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		s.mu.Lock()
		for _, rec := range records {
			rec[res.Schema.IDField] = uuid.NewString()
			s.data[res.Name] = append(s.data[res.Name], rec)
		}
		s.mu.Unlock()

		errs := make([]string, len(rowErrs))
		for i, re := range rowErrs {
			errs[i] = re.Error()
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"inserted": len(records),
			"errors":   errs,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
