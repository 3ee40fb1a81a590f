package model

import "github.com/defmon-lab/argos/pkg/domain/types"

// Account is one user of a project's dedicated database. UserID uniqueness
// is per-database only; the same userId may appear in several project
// databases and is de-duplicated when rosters are aggregated.
type Account struct {
	UserID types.UserID `json:"userId"`
}

// UserProfile is the organizational record for one userId merged in from
// the external directory service. Only UserID is guaranteed; the remaining
// fields are absent when the directory lookup degraded.
type UserProfile struct {
	UserID         types.UserID `json:"userId"`
	Name           string       `json:"name,omitempty"`
	Department     string       `json:"department,omitempty"`
	Title          string       `json:"title,omitempty"`
	EmployeeNumber string       `json:"employeeNumber,omitempty"`
}
