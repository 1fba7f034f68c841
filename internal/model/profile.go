package model

import "time"

// Role values stored in users.role and profiles.role.  The portal serves
// three audiences: clients book trainings and open service calls,
// technicians work assigned calls, coordinators manage the agenda.
const (
	RoleClient      = "CLIENT"
	RoleTechnician  = "TECHNICIAN"
	RoleCoordinator = "COORDINATOR"
)

// ValidRole reports whether s is one of the known role names.
func ValidRole(s string) bool {
	switch s {
	case RoleClient, RoleTechnician, RoleCoordinator:
		return true
	}
	return false
}

// Profile represents a row in the `profiles` table.  Every authenticated
// user owns exactly one profile; bookings and service calls reference
// profiles, never users directly.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owning auth user (users.id).
//  Name      – display name.
//  Email     – contact email (copied from the user at registration).
//  Role      – CLIENT, TECHNICIAN or COORDINATOR.
//  Company   – company name (clients only, optional).
//  Phone     – contact phone (optional).
//  TaxID     – company tax identifier (optional).
//  JobTitle  – position inside the company (optional).
type Profile struct {
	ID        uint64    `json:"id"`
	UserID    uint64    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Company   *string   `json:"company,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	TaxID     *string   `json:"tax_id,omitempty"`
	JobTitle  *string   `json:"job_title,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
