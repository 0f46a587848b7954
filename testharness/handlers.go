package testharness

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

func (s *EmbeddedServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/db/", s.handleDB)
	mux.HandleFunc("/document/", s.handleDocument)
	mux.HandleFunc("/woql/", s.handleWOQL)
	mux.HandleFunc("/branch/", s.handleBranch)
	mux.HandleFunc("/log/", s.handleLog)
	mux.HandleFunc("/info", s.handleInfo)
	return mux
}

// pathSegments splits r.URL.Path after the given endpoint prefix.
func pathSegments(path, prefix string) []string {
	trimmed := strings.TrimPrefix(path, prefix)
	trimmed = strings.Trim(trimmed, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// splitBranch pulls a trailing "local/branch/<name>" or "local/commit/<id>"
// suffix off segs, returning the branch name (falling back to "main") and
// whatever remained before it (org, db). A commit id resolves to the branch
// it was recorded on (its part before ':', see newCommitID).
func splitBranch(segs []string) (rest []string, branch string) {
	branch = "main"
	if len(segs) >= 3 && segs[len(segs)-3] == "local" && (segs[len(segs)-2] == "branch" || segs[len(segs)-2] == "commit") {
		branch = segs[len(segs)-1]
		if segs[len(segs)-2] == "commit" {
			branch, _, _ = strings.Cut(branch, ":")
		}
		return segs[:len(segs)-3], branch
	}
	return segs, branch
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeServerError(w http.ResponseWriter, status int, failure, what string) {
	writeJSON(w, status, map[string]string{"api:failure": failure, "api:what": what})
}

func newCommitID(branch string) string {
	return fmt.Sprintf("%s:%d", branch, time.Now().UnixNano())
}

func (s *EmbeddedServer) handleInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"terminusdb_version":  "harness",
		"terminusdb_git_hash": "embedded",
	})
}

func (s *EmbeddedServer) handleDB(w http.ResponseWriter, r *http.Request) {
	segs := pathSegments(r.URL.Path, "/db/")
	docs := s.storage.Documents()

	if len(segs) == 1 {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		names, err := docs.ListDatabases()
		if err != nil {
			writeServerError(w, http.StatusInternalServerError, "StorageError", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, names)
		return
	}
	if len(segs) != 2 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	db := segs[1]

	switch r.Method {
	case http.MethodGet:
		if docs.DatabaseExists(db) {
			writeJSON(w, http.StatusOK, map[string]interface{}{})
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	case http.MethodPost:
		var body struct{ Label, Comment string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if err := docs.CreateDatabase(db, body.Label, body.Comment); err != nil {
			writeServerError(w, http.StatusBadRequest, "DatabaseAlreadyExists", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{})
	case http.MethodDelete:
		if err := docs.DeleteDatabase(db); err != nil {
			writeServerError(w, http.StatusInternalServerError, "StorageError", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *EmbeddedServer) handleDocument(w http.ResponseWriter, r *http.Request) {
	segs := pathSegments(r.URL.Path, "/document/")
	if len(segs) < 2 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	rest, branch := splitBranch(segs)
	db := rest[1]
	docs := s.storage.Documents()
	q := r.URL.Query()

	switch r.Method {
	case http.MethodGet:
		if id := q.Get("id"); id != "" {
			doc, found, err := docs.GetDocument(db, branch, id)
			if err != nil {
				writeServerError(w, http.StatusInternalServerError, "StorageError", err.Error())
				return
			}
			if !found {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			writeJSON(w, http.StatusOK, doc)
			return
		}
		all, err := docs.ListDocuments(db, branch, "")
		if err != nil {
			writeServerError(w, http.StatusInternalServerError, "StorageError", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, all)

	case http.MethodPost:
		var incoming []map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
			writeServerError(w, http.StatusBadRequest, "BadRequest", err.Error())
			return
		}
		ids := make([]string, 0, len(incoming))
		for _, doc := range incoming {
			id, _ := doc["@id"].(string)
			class, _ := doc["@type"].(string)
			if id == "" {
				// Like the server's random key: assign a fresh id.
				id = fmt.Sprintf("%s/%d", class, time.Now().UnixNano())
				doc["@id"] = id
			}
			if _, found, _ := docs.GetDocument(db, branch, id); found {
				writeServerError(w, http.StatusBadRequest, "DocumentAlreadyExists", id)
				return
			}
			if err := docs.PutDocument(db, branch, id, class, doc); err != nil {
				writeServerError(w, http.StatusInternalServerError, "StorageError", err.Error())
				return
			}
			ids = append(ids, id)
		}
		commit := newCommitID(branch)
		_ = docs.AppendCommit(db, branch, commit, q.Get("author"), q.Get("message"))
		w.Header().Set("TerminusDB-Data-Version", commit)
		writeJSON(w, http.StatusOK, ids)

	case http.MethodPut:
		var doc map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			writeServerError(w, http.StatusBadRequest, "BadRequest", err.Error())
			return
		}
		id, _ := doc["@id"].(string)
		class, _ := doc["@type"].(string)
		if err := docs.PutDocument(db, branch, id, class, doc); err != nil {
			writeServerError(w, http.StatusInternalServerError, "StorageError", err.Error())
			return
		}
		commit := newCommitID(branch)
		_ = docs.AppendCommit(db, branch, commit, q.Get("author"), q.Get("message"))
		w.Header().Set("TerminusDB-Data-Version", commit)
		writeJSON(w, http.StatusOK, map[string]interface{}{})

	case http.MethodDelete:
		id := q.Get("id")
		if err := docs.DeleteDocument(db, branch, id); err != nil {
			writeServerError(w, http.StatusInternalServerError, "StorageError", err.Error())
			return
		}
		commit := newCommitID(branch)
		_ = docs.AppendCommit(db, branch, commit, q.Get("author"), q.Get("message"))
		w.Header().Set("TerminusDB-Data-Version", commit)
		writeJSON(w, http.StatusOK, map[string]interface{}{})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *EmbeddedServer) handleWOQL(w http.ResponseWriter, r *http.Request) {
	segs := pathSegments(r.URL.Path, "/woql/")
	if len(segs) < 2 || r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	rest, branch := splitBranch(segs)
	db := rest[1]

	var body struct {
		Query map[string]interface{} `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeServerError(w, http.StatusBadRequest, "BadRequest", err.Error())
		return
	}

	interp := newInterpreter(s.storage.Documents(), db, branch)
	bindings, err := interp.Run(body.Query)
	if err != nil {
		writeServerError(w, http.StatusBadRequest, "QueryError", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"bindings": bindings})
}

func (s *EmbeddedServer) handleBranch(w http.ResponseWriter, r *http.Request) {
	segs := pathSegments(r.URL.Path, "/branch/")
	rest, branch := splitBranch(segs)
	if len(rest) != 2 {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	db := rest[1]
	docs := s.storage.Documents()

	switch r.Method {
	case http.MethodPost:
		var body struct{ Origin string `json:"origin"` }
		_ = json.NewDecoder(r.Body).Decode(&body)
		if err := docs.CopyBranch(db, body.Origin, branch); err != nil {
			writeServerError(w, http.StatusInternalServerError, "StorageError", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{})
	case http.MethodDelete:
		if err := docs.DeleteBranch(db, branch); err != nil {
			writeServerError(w, http.StatusInternalServerError, "StorageError", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *EmbeddedServer) handleLog(w http.ResponseWriter, r *http.Request) {
	segs := pathSegments(r.URL.Path, "/log/")
	rest, branch := splitBranch(segs)
	if len(rest) != 2 || r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	db := rest[1]

	commits, err := s.storage.Documents().ListCommits(db, branch)
	if err != nil {
		writeServerError(w, http.StatusInternalServerError, "StorageError", err.Error())
		return
	}
	out := make([]map[string]interface{}, len(commits))
	for i, c := range commits {
		out[i] = map[string]interface{}{
			"identifier": c.Identifier,
			"author":     c.Author,
			"message":    c.Message,
			"timestamp":  float64(c.Timestamp.Unix()),
		}
	}
	writeJSON(w, http.StatusOK, out)
}
