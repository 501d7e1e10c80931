package job

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"playgate/internal/models"
	"playgate/internal/signer"
)

const (
	testClientID    = "game-1"
	testClientToken = "client-secret"
)

// response is a canned answer of the fake server.
type response struct {
	status int
	tag    string
	result any
}

func ok(result any) response { return response{status: http.StatusOK, result: result} }

func fail(status int, tag string) response { return response{status: status, tag: tag} }

// complianceServer fakes the compliance API and checks every request
// signature.
type complianceServer struct {
	*httptest.Server
	t      *testing.T
	signer *signer.Signer

	mu        sync.Mutex
	responses map[string]response
	calls     map[string]int
	bodies    map[string][]string
}

func newComplianceServer(t *testing.T) *complianceServer {
	t.Helper()
	sig, err := signer.New(signer.Config{ClientToken: testClientToken})
	if err != nil {
		t.Fatal(err)
	}
	s := &complianceServer{
		t:         t,
		signer:    sig,
		responses: map[string]response{},
		calls:     map[string]int{},
		bodies:    map[string][]string{},
	}

	r := chi.NewRouter()
	r.Use(s.verifySignature)
	r.Get("/real-name/v1/get-global-config", s.handle("config"))
	r.Get("/real-name/v1/anti-addiction-token", s.handle("verification"))
	r.Get("/real-name/v1/anti-addiction-token-taptap", s.handle("verification_by_token"))
	r.Post("/real-name/v1/anti-addiction-token-manual", s.handle("manual"))
	r.Post("/real-name/v1/anti-addiction-token-upgrade", s.handle("upgrade"))
	r.Get("/anti-addiction/v1/get-config-by-token", s.handle("user_config"))
	r.Post("/anti-addiction/v1/heartbeat", s.handle("heartbeat"))
	r.Get("/anti-addiction/v1/payable", s.handle("payable"))
	r.Post("/anti-addiction/v1/payment-submit", s.handle("payment_submit"))

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

func (s *complianceServer) set(name string, resp response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[name] = resp
}

func (s *complianceServer) count(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *complianceServer) body(name string, i int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bodies[name][i]
}

func (s *complianceServer) verifySignature(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))

		headers := map[string]string{}
		for k, v := range r.Header {
			if strings.HasPrefix(strings.ToLower(k), "x-tap-") {
				headers[k] = v[0]
			}
		}
		var signed []byte
		if len(body) > 0 {
			signed = body
		}
		want := s.signer.Sign(signer.Canonical(r.Method, r.URL.RequestURI(), headers, signed))
		if r.Header.Get("X-Tap-Sign") != want || r.Header.Get("X-LC-Id") != testClientID {
			s.t.Errorf("bad signature on %s %s", r.Method, r.URL.Path)
			writeJSON(w, http.StatusUnauthorized, map[string]any{"code": 401, "error": "invalid_signature"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *complianceServer) handle(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		s.mu.Lock()
		s.calls[name]++
		s.bodies[name] = append(s.bodies[name], string(body))
		resp, found := s.responses[name]
		s.mu.Unlock()

		if !found {
			resp = fail(http.StatusNotFound, "not_found")
		}
		if resp.status >= 300 {
			writeJSON(w, resp.status, map[string]any{"code": resp.status, "error": resp.tag, "msg": resp.tag})
			return
		}
		writeJSON(w, resp.status, map[string]any{"result": resp.result})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func policy(allow bool, limit models.AgeLimit, adult bool) models.UserPolicyConfig {
	return models.UserPolicyConfig{
		AgeCheckResult: models.AgeCheckResult{Allow: allow},
		UserState:      models.UserState{AgeLimit: limit, IsAdult: adult},
		Policy:         models.Policy{Active: models.PolicyActiveTimeRange, HeartbeatInterval: 3600},
	}
}
