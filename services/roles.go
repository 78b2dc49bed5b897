package services

import "github.com/TheGringo-ai/LineSmart-sub000/models"

// Capability is one access-control permission
type Capability string

const (
	CapViewAllEmployees   Capability = "view_all_employees"
	CapViewAllDepartments Capability = "view_all_departments"
	CapManageUsers        Capability = "manage_users"
	CapManageSettings     Capability = "manage_settings"
	CapCreateTraining     Capability = "create_training"
	CapDeleteTraining     Capability = "delete_training"
)

// roleCapabilities fixes what each role may do. Supervisors share the
// manager capability set; every other roster role acts as a plain
// employee.
var roleCapabilities = map[string]map[Capability]bool{
	models.RoleAdmin: {
		CapViewAllEmployees:   true,
		CapViewAllDepartments: true,
		CapManageUsers:        true,
		CapManageSettings:     true,
		CapCreateTraining:     true,
		CapDeleteTraining:     true,
	},
	models.RoleManager: {
		CapCreateTraining: true,
	},
	models.RoleSupervisor: {
		CapCreateTraining: true,
	},
	models.RoleEmployee: {},
}

// RoleCan reports whether a role holds a capability. Unknown roles get
// the employee capability set.
func RoleCan(role string, capability Capability) bool {
	capabilities, ok := roleCapabilities[role]
	if !ok {
		capabilities = roleCapabilities[models.RoleEmployee]
	}
	return capabilities[capability]
}

// VisibleEmployees filters a company roster down to what the viewer may
// see: admins see everyone, managers and supervisors see their department
// plus anyone they directly supervise, employees see only themselves.
func VisibleEmployees(viewer *models.Employee, employees []models.Employee) []models.Employee {
	if RoleCan(viewer.Role, CapViewAllEmployees) {
		return employees
	}

	supervised := make(map[string]bool, len(viewer.SupervisedIDs))
	for _, id := range viewer.SupervisedIDs {
		supervised[id] = true
	}

	var visible []models.Employee
	for _, employee := range employees {
		switch {
		case employee.ID == viewer.ID:
			visible = append(visible, employee)
		case viewer.Role == models.RoleManager || viewer.Role == models.RoleSupervisor:
			if employee.Department == viewer.Department || supervised[employee.ID] {
				visible = append(visible, employee)
			}
		}
	}
	return visible
}
