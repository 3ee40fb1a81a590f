package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/defmon-lab/argos/pkg/domain/interfaces"
	"github.com/defmon-lab/argos/pkg/domain/model"
	"github.com/defmon-lab/argos/pkg/domain/types"
)

// Defect provides the weekly defect report aggregations
type Defect struct {
	repo interfaces.Repository
}

// NewDefect creates a new defect report usecase
func NewDefect(repo interfaces.Repository) *Defect {
	return &Defect{repo: repo}
}

// GetAll returns every (project, week) record of the weekly report.
func (d *Defect) GetAll(ctx context.Context) ([]*model.WeeklyStatusRow, error) {
	return d.repo.ListWeeklyStatus(ctx)
}

// GetByProject returns the weekly records of one project.
func (d *Defect) GetByProject(ctx context.Context, project types.ProjectName) ([]*model.ProjectWeeklyRow, error) {
	return d.repo.ListWeeklyStatusByProject(ctx, project)
}

// GetByGroup returns per-group sums for one week. Both year and week set
// to zero select the current ISO week.
func (d *Defect) GetByGroup(ctx context.Context, year, week int) ([]*model.GroupWeeklySummary, error) {
	return d.repo.SummarizeGroupsByWeek(ctx, year, week)
}

// GetWeeklyChange returns the global week-over-week sums.
func (d *Defect) GetWeeklyChange(ctx context.Context) ([]*model.WeeklyChangeRow, error) {
	return d.repo.ListWeeklyChange(ctx)
}

// GetMinYear returns the earliest recorded year.
func (d *Defect) GetMinYear(ctx context.Context) (int, error) {
	return d.repo.MinYear(ctx)
}

// GetMaxYear returns the latest recorded year.
func (d *Defect) GetMaxYear(ctx context.Context) (int, error) {
	return d.repo.MaxYear(ctx)
}

// GetMaxWeek returns the latest recorded week of one year.
func (d *Defect) GetMaxWeek(ctx context.Context, year int) (int, error) {
	return d.repo.MaxWeekOfYear(ctx, year)
}

// GetCountsByProject resolves a project's database and counts its defects
// by status. Project resolution and the per-database query are distinct
// failure causes and keep distinct messages.
func (d *Defect) GetCountsByProject(ctx context.Context, project types.ProjectName) (*model.DefectCounts, error) {
	db, err := d.repo.GetDatabaseNameByProject(ctx, project)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve the project database",
			goerr.V("project", project))
	}

	counts, err := d.repo.CountDefects(ctx, db)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count defects in the project database",
			goerr.V("project", project), goerr.V("database", db))
	}
	return counts, nil
}
