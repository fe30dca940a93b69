package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/evcraddock/gatekeeper/internal/visitor"
)

// testBackend is an in-memory community backend.
type testBackend struct {
	mu        sync.Mutex
	limits    json.RawMessage
	saves     []map[string]int
	saveOK    bool
	visitors  []*visitor.Visitor
	checkins  []visitor.Pass
	rejectMsg string
	failReads bool
}

func (b *testBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	reply := func(status int, v interface{}) {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	switch {
	case strings.HasSuffix(r.URL.Path, "/settings") && r.Method == http.MethodGet:
		if b.failReads {
			reply(http.StatusInternalServerError, map[string]string{"error": "settings unavailable"})
			return
		}
		reply(http.StatusOK, map[string]json.RawMessage{"overstayLimits": b.limits})

	case strings.HasSuffix(r.URL.Path, "/settings") && r.Method == http.MethodPut:
		var req struct {
			OverstayLimits map[string]int `json:"overstayLimits"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			reply(http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		b.saves = append(b.saves, req.OverstayLimits)
		if b.saveOK {
			data, _ := json.Marshal(req.OverstayLimits)
			b.limits = data
		}
		reply(http.StatusOK, map[string]bool{"success": b.saveOK})

	case r.URL.Path == "/api/visitors" && r.Method == http.MethodGet:
		reply(http.StatusOK, b.visitors)

	case r.URL.Path == "/api/visitors/checkin":
		var p visitor.Pass
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			reply(http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		if b.rejectMsg != "" {
			reply(http.StatusConflict, map[string]string{"error": b.rejectMsg})
			return
		}
		b.checkins = append(b.checkins, p)
		reply(http.StatusOK, visitor.Visitor{ID: "v-" + p.PassID, Name: "Ravi", VisitorType: "DELIVERY", Status: visitor.StatusCheckedIn})

	case strings.HasPrefix(r.URL.Path, "/api/visitors/") && strings.HasSuffix(r.URL.Path, "/checkout"):
		id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/visitors/"), "/checkout")
		for _, v := range b.visitors {
			if v.ID == id {
				v.Status = visitor.StatusCheckedOut
				reply(http.StatusOK, v)
				return
			}
		}
		reply(http.StatusNotFound, map[string]string{"error": "visitor not found"})

	default:
		http.NotFound(w, r)
	}
}

func (b *testBackend) lastSave() map[string]int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.saves) == 0 {
		return nil
	}
	return b.saves[len(b.saves)-1]
}

// startBackend serves b and points the CLI at it with a fresh home and
// database. It returns the database path.
func startBackend(t *testing.T, b *testBackend) string {
	t.Helper()

	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)

	t.Setenv("HOME", t.TempDir())
	t.Setenv("GK_SERVER_URL", srv.URL)
	t.Setenv("GK_API_KEY", "gk_testkey")
	t.Setenv("GK_COMMUNITY_ID", "c-1")

	dbPath := filepath.Join(t.TempDir(), "gk.db")
	setFlag(t, &flagDB, dbPath)
	setFlag(t, &flagCommunity, "")
	setFlag(t, &flagFormat, "text")
	return dbPath
}

func (b *testBackend) passes() []visitor.Pass {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]visitor.Pass(nil), b.checkins...)
}
