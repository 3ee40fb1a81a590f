package interfaces

import (
	"context"

	"github.com/defmon-lab/argos/pkg/domain/model"
	"github.com/defmon-lab/argos/pkg/domain/types"
)

// Repository defines read access to the monitor database and to the
// per-project databases it points at. Every result is computed on each
// call; nothing is cached, and zero rows is a valid success.
type Repository interface {
	// Weekly status aggregations (central database)
	ListWeeklyStatus(ctx context.Context) ([]*model.WeeklyStatusRow, error)
	ListWeeklyStatusByProject(ctx context.Context, project types.ProjectName) ([]*model.ProjectWeeklyRow, error)
	SummarizeGroupsByWeek(ctx context.Context, year, week int) ([]*model.GroupWeeklySummary, error)
	ListWeeklyChange(ctx context.Context) ([]*model.WeeklyChangeRow, error)
	MinYear(ctx context.Context) (int, error)
	MaxYear(ctx context.Context) (int, error)
	MaxWeekOfYear(ctx context.Context, year int) (int, error)

	// Project directory
	GetDatabaseNameByProject(ctx context.Context, project types.ProjectName) (types.DatabaseName, error)
	ListDatabaseNames(ctx context.Context) ([]types.DatabaseName, error)
	ListDatabaseNamesByGroup(ctx context.Context, group types.GroupName) ([]types.DatabaseName, error)

	// Per-project databases
	ListAccounts(ctx context.Context, db types.DatabaseName) ([]*model.Account, error)
	CountAccounts(ctx context.Context, db types.DatabaseName) (int, error)
	CountDefects(ctx context.Context, db types.DatabaseName) (*model.DefectCounts, error)

	// Close closes the underlying connection pool
	Close() error
}
