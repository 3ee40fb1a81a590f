package types

// ProjectName identifies a tracked project by its unique display name
type ProjectName string

// String returns the string representation
func (n ProjectName) String() string {
	return string(n)
}

// GroupName identifies an organizational group of projects
type GroupName string

// String returns the string representation
func (n GroupName) String() string {
	return string(n)
}

// DatabaseName names the per-project database holding a project's
// defect and account tables
type DatabaseName string

// String returns the string representation
func (n DatabaseName) String() string {
	return string(n)
}

// UserID identifies a defect-tracker account
type UserID string

// String returns the string representation
func (id UserID) String() string {
	return string(id)
}
