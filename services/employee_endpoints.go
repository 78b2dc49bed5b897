package services

import (
	"encoding/json"
	"log/slog"
	"math"
	"net/http"

	"github.com/TheGringo-ai/LineSmart-sub000/models"
	"github.com/TheGringo-ai/LineSmart-sub000/repository"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type EmployeeEndpoints struct {
	store repository.Store
}

type CreateEmployeeRequest struct {
	Name              string `json:"name"`
	Email             string `json:"email"`
	Department        string `json:"department"`
	Position          string `json:"position"`
	Role              string `json:"role"`
	Supervisor        string `json:"supervisor"`
	HireDate          string `json:"hire_date"`
	PreferredLanguage string `json:"preferred_language"`
}

type GetEmployeesResponse struct {
	Employees []models.Employee `json:"employees"`
	Count     int               `json:"count"`
}

// DashboardStats aggregates the roster for the dashboard header cards
type DashboardStats struct {
	TotalEmployees  int `json:"total_employees"`
	AvgCompletion   int `json:"avg_completion"`
	ActiveTrainings int `json:"active_trainings"`
	AvgPerformance  int `json:"avg_performance"`
}

// ComputeDashboardStats derives the dashboard numbers from a roster slice.
// Completion averages over every employee, counting those with no assigned
// trainings as zero. Performance averages only over reviewed employees.
func ComputeDashboardStats(employees []models.Employee) DashboardStats {
	stats := DashboardStats{TotalEmployees: len(employees)}
	if len(employees) == 0 {
		return stats
	}

	var completionSum float64
	var performanceSum, reviewed int
	for _, emp := range employees {
		if emp.TotalTrainings > 0 {
			completionSum += float64(emp.CompletedTrainings) / float64(emp.TotalTrainings) * 100
		}
		stats.ActiveTrainings += emp.TotalTrainings - emp.CompletedTrainings
		if emp.Performance != nil {
			performanceSum += *emp.Performance
			reviewed++
		}
	}

	stats.AvgCompletion = int(math.Round(completionSum / float64(len(employees))))
	if reviewed > 0 {
		stats.AvgPerformance = int(math.Round(float64(performanceSum) / float64(reviewed)))
	}
	return stats
}

func NewEmployeeEndpoints(store repository.Store) *EmployeeEndpoints {
	return &EmployeeEndpoints{
		store: store,
	}
}

func (e *EmployeeEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/employees", func(r chi.Router) {
		r.Post("/", e.CreateEmployeeHandler)
		r.Get("/", e.GetEmployeesHandler)
		r.Get("/stats", e.GetStatsHandler)
		r.Get("/{id}", e.GetEmployeeHandler)
		r.Put("/{id}", e.UpdateEmployeeHandler)
		r.Delete("/{id}", e.DeleteEmployeeHandler)
		r.Get("/{id}/results", e.GetEmployeeResultsHandler)
	})
}

// viewer resolves the requesting user's roster entry. Users without one
// get a synthetic entry carrying their account role, which is all the
// visibility filter needs.
func (e *EmployeeEndpoints) viewer(r *http.Request, user *models.User) *models.Employee {
	if user.EmployeeID != nil {
		employee, err := e.store.GetEmployee(r.Context(), user.CompanyID, *user.EmployeeID)
		if err == nil && employee != nil {
			return employee
		}
	}
	return &models.Employee{
		ID:        user.ID,
		CompanyID: user.CompanyID,
		Name:      user.FullName,
		Role:      user.Role,
	}
}

func (e *EmployeeEndpoints) CreateEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}
	if !RoleCan(user.Role, CapManageUsers) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Employee name is required", http.StatusBadRequest)
		return
	}
	if req.Role == "" {
		req.Role = models.RoleEmployee
	}
	if req.PreferredLanguage == "" {
		req.PreferredLanguage = "en"
	}

	employee := models.Employee{
		ID:                uuid.New().String(),
		CompanyID:         user.CompanyID,
		Name:              req.Name,
		Email:             req.Email,
		Department:        req.Department,
		Position:          req.Position,
		Role:              req.Role,
		Supervisor:        req.Supervisor,
		HireDate:          req.HireDate,
		PreferredLanguage: req.PreferredLanguage,
	}

	if err := e.store.SaveEmployee(r.Context(), &employee); err != nil {
		slog.Error("Failed to create employee", "error", err, "company_id", user.CompanyID)
		http.Error(w, "Failed to create employee", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(employee)

	slog.Info("Employee created", "employee_id", employee.ID, "company_id", user.CompanyID, "name", employee.Name)
}

func (e *EmployeeEndpoints) GetEmployeesHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	employees, err := e.store.ListEmployees(r.Context(), user.CompanyID)
	if err != nil {
		slog.Error("Failed to list employees", "error", err, "company_id", user.CompanyID)
		http.Error(w, "Failed to list employees", http.StatusInternalServerError)
		return
	}

	visible := VisibleEmployees(e.viewer(r, user), employees)

	response := GetEmployeesResponse{
		Employees: visible,
		Count:     len(visible),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (e *EmployeeEndpoints) GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	employees, err := e.store.ListEmployees(r.Context(), user.CompanyID)
	if err != nil {
		slog.Error("Failed to list employees", "error", err, "company_id", user.CompanyID)
		http.Error(w, "Failed to compute dashboard stats", http.StatusInternalServerError)
		return
	}

	stats := ComputeDashboardStats(VisibleEmployees(e.viewer(r, user), employees))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func (e *EmployeeEndpoints) GetEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	employeeID := chi.URLParam(r, "id")
	employee, err := e.store.GetEmployee(r.Context(), user.CompanyID, employeeID)
	if err != nil {
		slog.Error("Failed to get employee", "error", err, "employee_id", employeeID)
		http.Error(w, "Failed to get employee", http.StatusInternalServerError)
		return
	}
	if employee == nil {
		http.Error(w, "Employee not found", http.StatusNotFound)
		return
	}

	if len(VisibleEmployees(e.viewer(r, user), []models.Employee{*employee})) == 0 {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(employee)
}

func (e *EmployeeEndpoints) UpdateEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}
	if !RoleCan(user.Role, CapManageUsers) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	employeeID := chi.URLParam(r, "id")
	existing, err := e.store.GetEmployee(r.Context(), user.CompanyID, employeeID)
	if err != nil {
		slog.Error("Failed to get employee", "error", err, "employee_id", employeeID)
		http.Error(w, "Failed to get employee", http.StatusInternalServerError)
		return
	}
	if existing == nil {
		http.Error(w, "Employee not found", http.StatusNotFound)
		return
	}

	var updated models.Employee
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// Identity and training counters are not writable through this route
	updated.ID = existing.ID
	updated.CompanyID = existing.CompanyID
	updated.CompletedTrainings = existing.CompletedTrainings
	updated.TotalTrainings = existing.TotalTrainings
	updated.TrainingHistory = existing.TrainingHistory
	updated.LastTraining = existing.LastTraining
	updated.CreatedAt = existing.CreatedAt

	if err := e.store.SaveEmployee(r.Context(), &updated); err != nil {
		slog.Error("Failed to update employee", "error", err, "employee_id", employeeID)
		http.Error(w, "Failed to update employee", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(updated)

	slog.Info("Employee updated", "employee_id", employeeID, "company_id", user.CompanyID)
}

func (e *EmployeeEndpoints) DeleteEmployeeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}
	if !RoleCan(user.Role, CapManageUsers) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	employeeID := chi.URLParam(r, "id")
	if err := e.store.DeleteEmployee(r.Context(), user.CompanyID, employeeID); err != nil {
		slog.Error("Failed to delete employee", "error", err, "employee_id", employeeID)
		http.Error(w, "Failed to delete employee", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Employee deleted"})
}

func (e *EmployeeEndpoints) GetEmployeeResultsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := r.Context().Value("user").(*models.User)
	if !ok {
		http.Error(w, "User not found in context", http.StatusInternalServerError)
		return
	}

	employeeID := chi.URLParam(r, "id")
	results, err := e.store.ListQuizResults(r.Context(), user.CompanyID, employeeID)
	if err != nil {
		slog.Error("Failed to list quiz results", "error", err, "employee_id", employeeID)
		http.Error(w, "Failed to list quiz results", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}
