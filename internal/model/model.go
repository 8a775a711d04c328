// Package model contains the domain records shared by the client core and the REST server.
// Keep it free of persistence and transport concerns.
package model

// Priority is the document priority. The zero value is treated as PriorityNone.
type Priority string

const (
	PriorityNone   Priority = "none"
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of the known document priorities.
func (p Priority) Valid() bool {
	switch p {
	case "", PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Departments lists the fixed department enumeration in display order.
var Departments = []string{
	"Operations",
	"Maintenance",
	"Human Resources",
	"Finance",
	"Customer Service",
	"IT",
	"Management",
	"Environmental",
	"Engineering",
	"Procurement",
}

// IsDepartment reports whether name is an exact member of Departments.
func IsDepartment(name string) bool {
	for _, d := range Departments {
		if d == name {
			return true
		}
	}
	return false
}

// User is an authenticated account.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthResult is returned by login and registration.
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Credentials is the login payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the sign-up payload.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
