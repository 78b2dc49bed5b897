package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/TheGringo-ai/LineSmart-sub000/models"
	"github.com/TheGringo-ai/LineSmart-sub000/repository"
	"github.com/go-chi/chi/v5"
)

// withUser injects an authenticated user the way the auth middleware does
func withUser(user *models.User) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), "user", user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func setupRouter(store repository.Store, user *models.User) *chi.Mux {
	r := chi.NewRouter()
	r.Use(withUser(user))
	NewSetupEndpoints(store).RegisterRoutes(r)
	return r
}

func doJSON(t *testing.T, router *chi.Mux, method, path, body string) (*httptest.ResponseRecorder, WizardStateResponse) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var state WizardStateResponse
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return rec, state
}

func TestSetupWizardEndpoints(t *testing.T) {
	store := repository.NewMemoryStore()
	admin := &models.User{ID: "u1", CompanyID: "c1", Email: "admin@acme.test", Role: models.RoleAdmin}
	router := setupRouter(store, admin)

	rec, state := doJSON(t, router, "GET", "/setup", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /setup status = %d", rec.Code)
	}
	if state.Step != StepWelcome {
		t.Fatalf("fresh wizard at %s, expected %s", state.Step, StepWelcome)
	}

	rec, state = doJSON(t, router, "POST", "/setup/next", "")
	if rec.Code != http.StatusOK || state.Step != StepCompany {
		t.Fatalf("POST /setup/next status = %d step = %s", rec.Code, state.Step)
	}

	// Advancing past an incomplete company step is a client error
	rec, _ = doJSON(t, router, "POST", "/setup/next", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("advance with empty company status = %d, expected 400", rec.Code)
	}

	rec, _ = doJSON(t, router, "PUT", "/setup/company", `{"name": "Acme", "industry": "Manufacturing"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /setup/company status = %d", rec.Code)
	}

	rec, state = doJSON(t, router, "POST", "/setup/company/industry-defaults", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("industry defaults status = %d", rec.Code)
	}
	if len(state.Config.Company.Departments) == 0 {
		t.Error("industry defaults must populate departments")
	}

	rec, state = doJSON(t, router, "POST", "/setup/next", "")
	if rec.Code != http.StatusOK || state.Step != StepAIModels {
		t.Fatalf("advance to ai-models status = %d step = %s", rec.Code, state.Step)
	}

	rec, _ = doJSON(t, router, "POST", "/setup/next", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("advance without primary provider status = %d, expected 400", rec.Code)
	}

	rec, _ = doJSON(t, router, "PUT", "/setup/ai-models", `{"primary": "openai", "configs": {"openai": {"api_key": "sk-test"}}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /setup/ai-models status = %d", rec.Code)
	}

	for _, want := range []string{StepDataSource, StepOnboarding, StepComplete} {
		rec, state = doJSON(t, router, "POST", "/setup/next", "")
		if rec.Code != http.StatusOK || state.Step != want {
			t.Fatalf("advance status = %d step = %s, expected %s", rec.Code, state.Step, want)
		}
	}
	if !state.Config.Completed {
		t.Error("finishing the wizard must complete the config")
	}

	// The completed config is persisted, not just in the response
	config, err := store.GetSetupConfig(context.Background(), "c1")
	if err != nil || config == nil || !config.Completed {
		t.Fatalf("persisted config = %+v, err %v, expected completed", config, err)
	}
}

func TestSetupWizardEndpointsForbidden(t *testing.T) {
	store := repository.NewMemoryStore()
	worker := &models.User{ID: "u2", CompanyID: "c1", Email: "worker@acme.test", Role: models.RoleEmployee}
	router := setupRouter(store, worker)

	// Reading the wizard is allowed for everyone in the company
	rec, _ := doJSON(t, router, "GET", "/setup", "")
	if rec.Code != http.StatusOK {
		t.Errorf("GET /setup status = %d, expected 200", rec.Code)
	}

	// Mutations need the settings capability
	for _, route := range []struct{ method, path string }{
		{"POST", "/setup/next"},
		{"POST", "/setup/previous"},
		{"PUT", "/setup/company"},
		{"POST", "/setup/company/industry-defaults"},
		{"PUT", "/setup/ai-models"},
		{"PUT", "/setup/data-source"},
		{"PUT", "/setup/onboarding"},
	} {
		rec, _ := doJSON(t, router, route.method, route.path, `{}`)
		if rec.Code != http.StatusForbidden {
			t.Errorf("%s %s status = %d, expected 403", route.method, route.path, rec.Code)
		}
	}
}

func TestCatalogEndpoint(t *testing.T) {
	store := repository.NewMemoryStore()
	user := &models.User{ID: "u1", CompanyID: "c1", Role: models.RoleEmployee}
	router := setupRouter(store, user)

	req := httptest.NewRequest("GET", "/catalog", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /catalog status = %d", rec.Code)
	}

	var catalog map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &catalog); err != nil {
		t.Fatalf("decode catalog: %v", err)
	}
	for _, key := range []string{"industries", "company_sizes", "departments", "safety_requirements", "training_types", "languages"} {
		if _, ok := catalog[key]; !ok {
			t.Errorf("catalog missing %q", key)
		}
	}
}
