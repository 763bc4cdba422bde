package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsHandler(origins []string, credentials bool) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return CORSMiddleware(origins, credentials)(next)
}

func TestCORS_AllowedOrigin(t *testing.T) {
	h := corsHandler([]string{"http://localhost:5173"}, true)

	req := httptest.NewRequest("GET", "/docs/ids", http.NoBody)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q", got)
	}
	if got := rr.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q", got)
	}
}

func TestCORS_DisallowedOrigin(t *testing.T) {
	h := corsHandler([]string{"http://localhost:5173"}, false)

	req := httptest.NewRequest("GET", "/docs/ids", http.NoBody)
	req.Header.Set("Origin", "http://evil.example")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected Allow-Origin %q for a disallowed origin", got)
	}
	if rr.Code != http.StatusOK {
		t.Errorf("request itself should still pass through, got %d", rr.Code)
	}
}

func TestCORS_Preflight(t *testing.T) {
	h := corsHandler([]string{"http://localhost:5173"}, false)

	req := httptest.NewRequest("OPTIONS", "/chat", http.NoBody)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rr.Code)
	}
	if got := rr.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Error("missing Allow-Methods on preflight")
	}
}

func TestCORS_Wildcard(t *testing.T) {
	h := corsHandler([]string{"*"}, false)

	req := httptest.NewRequest("GET", "/docs/ids", http.NoBody)
	req.Header.Set("Origin", "http://anywhere.example")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Allow-Origin = %q, want *", got)
	}
}

func TestCORS_NoOriginsConfigured(t *testing.T) {
	h := corsHandler(nil, false)

	req := httptest.NewRequest("GET", "/docs/ids", http.NoBody)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("CORS disabled, unexpected Allow-Origin %q", got)
	}
}
