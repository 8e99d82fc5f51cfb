// Package remotetest provides an in-process fake of the remote data API.
//
// The fake assigns fresh ids, scopes every record to the bearer token that
// created it, cascades deletes along parent references, counts requests and
// can be told to fail chosen requests.
package remotetest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Collection names as they appear in URLs.
const (
	Workspaces        = "workspaces"
	Profiles          = "profiles"
	ProfilePoints     = "profile-points"
	Datasets          = "datasets"
	Texts             = "texts"
	AnnotatedDatasets = "annotated-datasets"
	AnnotatedTexts    = "annotated-texts"
	DataPoints        = "data-points"
)

// ref is a field pointing at a record of another collection.
type ref struct {
	field    string
	target   string
	required bool
	cascade  bool
}

var schema = map[string][]ref{
	Workspaces: nil,
	Profiles: {
		{field: "workspace_id", target: Workspaces, cascade: true},
	},
	ProfilePoints: {
		{field: "profile_id", target: Profiles, required: true, cascade: true},
	},
	Datasets: {
		{field: "workspace_id", target: Workspaces, cascade: true},
	},
	Texts: {
		{field: "dataset_id", target: Datasets, required: true, cascade: true},
	},
	AnnotatedDatasets: {
		{field: "workspace_id", target: Workspaces, cascade: true},
		{field: "dataset_id", target: Datasets, required: true, cascade: true},
		{field: "profile_id", target: Profiles, required: true},
	},
	AnnotatedTexts: {
		{field: "annotated_dataset_id", target: AnnotatedDatasets, required: true, cascade: true},
		{field: "text_id", target: Texts, required: true, cascade: true},
	},
	DataPoints: {
		{field: "annotated_text_id", target: AnnotatedTexts, required: true, cascade: true},
	},
}

var wireModes = []string{"datapoint_extraction", "text_segmentation"}

// Failure makes the server answer matching requests with an error.
type Failure struct {
	// Method is the HTTP method to match.
	Method string

	// Collection is the collection to match.
	Collection string

	// Nth selects the nth matching request (1-based). Zero matches all.
	Nth int

	// Status is the response status. Zero means 500.
	Status int

	// Detail is the error message.
	Detail string
}

type record struct {
	seq    int
	owner  string
	fields map[string]any
}

// Server is a fake remote API.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	seq       int
	data      map[string]map[string]*record
	settings  map[string]map[string]any
	llmConfig map[string]map[string]any
	requests  int
	counters  map[string]int
	failures  []Failure
}

// New starts a fake server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		data:      make(map[string]map[string]*record),
		settings:  make(map[string]map[string]any),
		llmConfig: make(map[string]map[string]any),
		counters:  make(map[string]int),
	}
	for name := range schema {
		s.data[name] = make(map[string]*record)
	}

	s.Server = httptest.NewServer(s.router())
	t.Cleanup(s.Close)
	return s
}

func (s *Server) router() http.Handler {
	router := mux.NewRouter()
	router.Use(s.count, s.authenticate, s.inject)

	api := router.PathPrefix("/data").Subrouter()

	api.HandleFunc("/settings", s.handleGetDoc(s.settings)).Methods(http.MethodGet)
	api.HandleFunc("/settings", s.handlePutDoc(s.settings)).Methods(http.MethodPut)
	api.HandleFunc("/llm-config", s.handleGetDoc(s.llmConfig)).Methods(http.MethodGet)
	api.HandleFunc("/llm-config", s.handlePutDoc(s.llmConfig)).Methods(http.MethodPut)

	api.HandleFunc("/profiles/{id}/points", s.handleChildren(ProfilePoints, "profile_id")).Methods(http.MethodGet)
	api.HandleFunc("/datasets/{id}/texts", s.handleChildren(Texts, "dataset_id")).Methods(http.MethodGet)
	api.HandleFunc("/annotated-datasets/{id}/texts",
		s.handleChildren(AnnotatedTexts, "annotated_dataset_id")).Methods(http.MethodGet)
	api.HandleFunc("/annotated-texts/{id}/data-points",
		s.handleChildren(DataPoints, "annotated_text_id")).Methods(http.MethodGet)

	api.HandleFunc("/{collection}", s.handleCreate).Methods(http.MethodPost)
	api.HandleFunc("/{collection}", s.handleList).Methods(http.MethodGet)
	api.HandleFunc("/{collection}/{id}", s.handleGet).Methods(http.MethodGet)
	api.HandleFunc("/{collection}/{id}", s.handleUpdate).Methods(http.MethodPut)
	api.HandleFunc("/{collection}/{id}", s.handleDelete).Methods(http.MethodDelete)

	return router
}

// ==================== Test Controls ====================

// Fail registers a failure rule.
func (s *Server) Fail(f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.Status == 0 {
		f.Status = http.StatusInternalServerError
	}
	if f.Detail == "" {
		f.Detail = "injected failure"
	}
	s.failures = append(s.failures, f)
}

// Requests returns how many requests reached the server.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests
}

// Count returns how many records a token owns in a collection.
func (s *Server) Count(token, collection string) int {
	return len(s.Records(token, collection))
}

// Records returns copies of a token's records in a collection, in creation order.
func (s *Server) Records(token, collection string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs := s.owned(token, collection, nil)
	out := make([]map[string]any, 0, len(recs))
	for _, r := range recs {
		out = append(out, cloneFields(r.fields))
	}
	return out
}

// ==================== Middleware ====================

type tokenKey struct{}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			respondError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tokenKey{}, token)))
	})
}

func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		collection := collectionOf(r.URL.Path)

		s.mu.Lock()
		var hit *Failure
		for i := range s.failures {
			f := &s.failures[i]
			if f.Method != r.Method || f.Collection != collection {
				continue
			}
			key := f.Method + " " + f.Collection
			s.counters[key]++
			if f.Nth == 0 || s.counters[key] == f.Nth {
				matched := *f
				hit = &matched
			}
			break
		}
		s.mu.Unlock()

		if hit != nil {
			respondError(w, hit.Status, hit.Detail)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// collectionOf returns the collection a request path addresses. Child list
// paths resolve to the child collection.
func collectionOf(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	switch {
	case len(parts) == 4 && parts[3] == "points":
		return ProfilePoints
	case len(parts) == 4 && parts[1] == Datasets:
		return Texts
	case len(parts) == 4 && parts[1] == AnnotatedDatasets:
		return AnnotatedTexts
	case len(parts) == 4 && parts[1] == AnnotatedTexts:
		return DataPoints
	case len(parts) >= 2:
		return parts[1]
	default:
		return ""
	}
}

func owner(r *http.Request) string {
	token, _ := r.Context().Value(tokenKey{}).(string)
	return token
}

// ==================== Handlers ====================

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	collection := mux.Vars(r)["collection"]
	refs, ok := schema[collection]
	if !ok {
		respondError(w, http.StatusNotFound, "Not Found")
		return
	}

	fields, ok := decodeBody(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	who := owner(r)
	if detail := s.validate(who, refs, fields); detail != "" {
		respondError(w, http.StatusUnprocessableEntity, detail)
		return
	}

	now := time.Now().UTC().Format(time.RFC3339)
	s.seq++
	id := uuid.NewString()
	fields["id"] = id
	fields["created_at"] = now
	fields["updated_at"] = now
	switch collection {
	case Workspaces:
		fields["owner_id"] = who
		fields["storage_type"] = "cloud"
	case Profiles, Datasets, AnnotatedDatasets:
		fields["user_id"] = who
	}

	s.data[collection][id] = &record{seq: s.seq, owner: who, fields: fields}
	respondJSON(w, http.StatusCreated, fields)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := s.lookup(owner(r), vars["collection"], vars["id"])
	if rec == nil {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	respondJSON(w, http.StatusOK, rec.fields)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	collection := mux.Vars(r)["collection"]
	if _, ok := schema[collection]; !ok {
		respondError(w, http.StatusNotFound, "Not Found")
		return
	}

	var match func(*record) bool
	if ws := r.URL.Query().Get("workspace_id"); ws != "" {
		match = func(rec *record) bool { return rec.fields["workspace_id"] == ws }
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	respondRecords(w, s.owned(owner(r), collection, match))
}

func (s *Server) handleChildren(collection, field string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parent := mux.Vars(r)["id"]

		s.mu.Lock()
		defer s.mu.Unlock()
		respondRecords(w, s.owned(owner(r), collection, func(rec *record) bool {
			return rec.fields[field] == parent
		}))
	}
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	collection := vars["collection"]

	fields, ok := decodeBody(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	who := owner(r)
	rec := s.lookup(who, collection, vars["id"])
	if rec == nil {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	if detail := s.validate(who, schema[collection], fields); detail != "" {
		respondError(w, http.StatusUnprocessableEntity, detail)
		return
	}

	// PUT replaces the body; server-owned fields survive.
	for _, key := range []string{"id", "user_id", "owner_id", "storage_type", "created_at"} {
		if v, ok := rec.fields[key]; ok {
			fields[key] = v
		}
	}
	fields["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	rec.fields = fields
	respondJSON(w, http.StatusOK, fields)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lookup(owner(r), vars["collection"], vars["id"]) == nil {
		respondError(w, http.StatusNotFound, "Not found")
		return
	}
	s.remove(vars["collection"], vars["id"])
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetDoc(docs map[string]map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()

		doc, ok := docs[owner(r)]
		if !ok {
			respondError(w, http.StatusNotFound, "Not found")
			return
		}
		respondJSON(w, http.StatusOK, doc)
	}
}

func (s *Server) handlePutDoc(docs map[string]map[string]any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fields, ok := decodeBody(w, r)
		if !ok {
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		docs[owner(r)] = fields
		respondJSON(w, http.StatusOK, fields)
	}
}

// ==================== Helpers ====================

// validate checks wire modes and references. Callers hold s.mu.
func (s *Server) validate(who string, refs []ref, fields map[string]any) string {
	if mode, ok := fields["mode"]; ok {
		if m, _ := mode.(string); !slices.Contains(wireModes, m) {
			return "invalid mode"
		}
	}
	for _, rf := range refs {
		id, _ := fields[rf.field].(string)
		if id == "" {
			if rf.required {
				return rf.field + " is required"
			}
			continue
		}
		if s.lookup(who, rf.target, id) == nil {
			return rf.field + " references a missing record"
		}
	}
	return ""
}

// lookup returns a record the token owns. Callers hold s.mu.
func (s *Server) lookup(who, collection, id string) *record {
	recs, ok := s.data[collection]
	if !ok {
		return nil
	}
	rec, ok := recs[id]
	if !ok || rec.owner != who {
		return nil
	}
	return rec
}

// owned returns the token's matching records in creation order. Callers hold s.mu.
func (s *Server) owned(who, collection string, match func(*record) bool) []*record {
	var out []*record
	for _, rec := range s.data[collection] {
		if rec.owner != who {
			continue
		}
		if match != nil && !match(rec) {
			continue
		}
		out = append(out, rec)
	}
	slices.SortFunc(out, func(a, b *record) int { return a.seq - b.seq })
	return out
}

// remove deletes a record and everything that cascades from it. Callers hold s.mu.
func (s *Server) remove(collection, id string) {
	delete(s.data[collection], id)
	for child, refs := range schema {
		for _, rf := range refs {
			if rf.target != collection || !rf.cascade {
				continue
			}
			for childID, rec := range s.data[child] {
				if rec.fields[rf.field] == id {
					s.remove(child, childID)
				}
			}
		}
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil || fields == nil {
		respondError(w, http.StatusUnprocessableEntity, "Invalid request payload")
		return nil, false
	}
	return fields, true
}

func cloneFields(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func respondRecords(w http.ResponseWriter, recs []*record) {
	out := make([]map[string]any, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.fields)
	}
	respondJSON(w, http.StatusOK, out)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}
