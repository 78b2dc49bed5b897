package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TheGringo-ai/LineSmart-sub000/models"
	"github.com/TheGringo-ai/LineSmart-sub000/repository"
	"github.com/go-chi/chi/v5"
)

func intPtr(v int) *int { return &v }

func TestComputeDashboardStats(t *testing.T) {
	tests := []struct {
		name      string
		employees []models.Employee
		want      DashboardStats
	}{
		{
			name:      "Empty roster",
			employees: nil,
			want:      DashboardStats{},
		},
		{
			name: "Full counters",
			employees: []models.Employee{
				{CompletedTrainings: 4, TotalTrainings: 4, Performance: intPtr(90)},
				{CompletedTrainings: 1, TotalTrainings: 2, Performance: intPtr(70)},
				{CompletedTrainings: 0, TotalTrainings: 2},
			},
			want: DashboardStats{TotalEmployees: 3, AvgCompletion: 50, ActiveTrainings: 3, AvgPerformance: 80},
		},
		{
			name: "Completion rounds to nearest",
			employees: []models.Employee{
				{CompletedTrainings: 2, TotalTrainings: 3},
			},
			want: DashboardStats{TotalEmployees: 1, AvgCompletion: 67, ActiveTrainings: 1},
		},
		{
			name: "Performance half rounds up",
			employees: []models.Employee{
				{Performance: intPtr(80)},
				{Performance: intPtr(85)},
			},
			want: DashboardStats{TotalEmployees: 2, AvgCompletion: 0, AvgPerformance: 83},
		},
		{
			name: "Unreviewed employees excluded from performance",
			employees: []models.Employee{
				{CompletedTrainings: 1, TotalTrainings: 1, Performance: intPtr(60)},
				{CompletedTrainings: 1, TotalTrainings: 1},
			},
			want: DashboardStats{TotalEmployees: 2, AvgCompletion: 100, AvgPerformance: 60},
		},
		{
			name: "No assigned trainings counts as zero completion",
			employees: []models.Employee{
				{CompletedTrainings: 0, TotalTrainings: 0},
				{CompletedTrainings: 3, TotalTrainings: 3},
			},
			want: DashboardStats{TotalEmployees: 2, AvgCompletion: 50},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeDashboardStats(tt.employees); got != tt.want {
				t.Errorf("ComputeDashboardStats() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGetStatsHandler(t *testing.T) {
	store := repository.NewMemoryStore()
	ctx := context.Background()
	admin := &models.User{ID: "u1", CompanyID: "c1", Email: "admin@acme.test", Role: models.RoleAdmin}

	roster := []models.Employee{
		{CompanyID: "c1", Name: "John Smith", CompletedTrainings: 2, TotalTrainings: 4, Performance: intPtr(88)},
		{CompanyID: "c1", Name: "Sarah Johnson", CompletedTrainings: 3, TotalTrainings: 3, Performance: intPtr(92)},
		{CompanyID: "c2", Name: "Other Company", CompletedTrainings: 9, TotalTrainings: 9},
	}
	for i := range roster {
		if err := store.SaveEmployee(ctx, &roster[i]); err != nil {
			t.Fatalf("SaveEmployee failed: %v", err)
		}
	}

	router := chi.NewRouter()
	router.Use(withUser(admin))
	NewEmployeeEndpoints(store).RegisterRoutes(router)

	req := httptest.NewRequest("GET", "/employees/stats", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /employees/stats status = %d", rec.Code)
	}

	var stats DashboardStats
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}

	// (50% + 100%) / 2 over the company's own roster, the other company is
	// never counted
	want := DashboardStats{TotalEmployees: 2, AvgCompletion: 75, ActiveTrainings: 2, AvgPerformance: 90}
	if stats != want {
		t.Errorf("stats = %+v, want %+v", stats, want)
	}
}
