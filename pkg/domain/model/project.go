package model

import "github.com/defmon-lab/argos/pkg/domain/types"

// ProjectInfo maps a tracked project to its organizational group and to the
// dedicated database that stores the project's defects and accounts.
// Read-only reference data maintained outside this service.
type ProjectInfo struct {
	ID           int                `json:"pid"`
	ProjectName  types.ProjectName  `json:"projectName"`
	GroupName    types.GroupName    `json:"groupName"`
	Language     string             `json:"language"`
	DatabaseName types.DatabaseName `json:"databaseName"`
}
