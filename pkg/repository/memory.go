package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/defmon-lab/argos/pkg/domain/interfaces"
	"github.com/defmon-lab/argos/pkg/domain/model"
	"github.com/defmon-lab/argos/pkg/domain/types"
)

// weeklyEntry is one seeded (project, week) record.
type weeklyEntry struct {
	project   *model.ProjectInfo
	year      int
	week      int
	userCount int
	counts    model.WeeklyCounts
}

// Memory implements the Repository interface with in-memory storage.
// It backs tests and runs without a configured database; the aggregation
// semantics mirror the Postgres implementation, including ordering.
type Memory struct {
	mu       sync.RWMutex
	projects []*model.ProjectInfo
	weekly   []*weeklyEntry
	accounts map[types.DatabaseName][]types.UserID
	defects  map[types.DatabaseName][]string
	broken   map[types.DatabaseName]error
	now      func() time.Time
	nextID   int
}

// NewMemory creates a new memory repository
func NewMemory() *Memory {
	return &Memory{
		accounts: make(map[types.DatabaseName][]types.UserID),
		defects:  make(map[types.DatabaseName][]string),
		broken:   make(map[types.DatabaseName]error),
		now:      time.Now,
		nextID:   1,
	}
}

var _ interfaces.Repository = (*Memory)(nil)

// AddProject registers a project in the directory and provisions its
// (empty) database.
func (m *Memory) AddProject(info *model.ProjectInfo) error {
	if info == nil {
		return goerr.New("project info is nil")
	}
	if info.ProjectName == "" || info.DatabaseName == "" {
		return goerr.New("project name and database name are required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.projects {
		if p.ProjectName == info.ProjectName {
			return goerr.New("duplicate project name", goerr.V("project", info.ProjectName))
		}
	}

	reg := *info
	reg.ID = m.nextID
	m.nextID++
	m.projects = append(m.projects, &reg)
	if _, ok := m.accounts[reg.DatabaseName]; !ok {
		m.accounts[reg.DatabaseName] = nil
	}
	return nil
}

// AddWeeklyStatus seeds one (project, week) record.
func (m *Memory) AddWeeklyStatus(project types.ProjectName, year, week, userCount int, counts model.WeeklyCounts) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	info := m.findProject(project)
	if info == nil {
		return goerr.Wrap(model.ErrProjectNotFound, "no such project", goerr.V("project", project))
	}
	m.weekly = append(m.weekly, &weeklyEntry{
		project:   info,
		year:      year,
		week:      week,
		userCount: userCount,
		counts:    counts,
	})
	return nil
}

// AddAccount seeds one account row into a project database.
func (m *Memory) AddAccount(db types.DatabaseName, id types.UserID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[db] = append(m.accounts[db], id)
}

// AddDefect seeds one defect row with the given status code.
func (m *Memory) AddDefect(db types.DatabaseName, statusCode string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defects[db] = append(m.defects[db], statusCode)
}

// BreakDatabase makes every query against one project database fail with
// the given error, to exercise partial fan-out failures.
func (m *Memory) BreakDatabase(db types.DatabaseName, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.broken[db] = err
}

// SetClock overrides the clock used to resolve the current ISO week.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *Memory) findProject(name types.ProjectName) *model.ProjectInfo {
	for _, p := range m.projects {
		if p.ProjectName == name {
			return p
		}
	}
	return nil
}

// ListWeeklyStatus returns every seeded record, most recent week first,
// group then project name ascending within a week.
func (m *Memory) ListWeeklyStatus(ctx context.Context) ([]*model.WeeklyStatusRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := make([]*model.WeeklyStatusRow, 0, len(m.weekly))
	for _, e := range m.weekly {
		rows = append(rows, &model.WeeklyStatusRow{
			Year:         e.year,
			Week:         e.week,
			GroupName:    string(e.project.GroupName),
			ProjectName:  string(e.project.ProjectName),
			Language:     e.project.Language,
			WeeklyCounts: e.counts,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		if a.Week != b.Week {
			return a.Week > b.Week
		}
		if a.GroupName != b.GroupName {
			return a.GroupName < b.GroupName
		}
		return a.ProjectName < b.ProjectName
	})
	return rows, nil
}

// ListWeeklyStatusByProject returns one project's records, most recent
// week first.
func (m *Memory) ListWeeklyStatusByProject(ctx context.Context, project types.ProjectName) ([]*model.ProjectWeeklyRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var rows []*model.ProjectWeeklyRow
	for _, e := range m.weekly {
		if e.project.ProjectName != project {
			continue
		}
		rows = append(rows, &model.ProjectWeeklyRow{
			Year:           e.year,
			Week:           e.week,
			UserCount:      e.userCount,
			AllDefectCount: e.counts.AllDefectCount,
			AllFix:         e.counts.AllFix,
			AllDis:         e.counts.AllDis,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year > rows[j].Year
		}
		return rows[i].Week > rows[j].Week
	})
	return rows, nil
}

// SummarizeGroupsByWeek sums counters per group for one week. year=0 and
// week=0 resolve to the current ISO year/week.
func (m *Memory) SummarizeGroupsByWeek(ctx context.Context, year, week int) ([]*model.GroupWeeklySummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if year == 0 && week == 0 {
		year, week = m.now().ISOWeek()
	}

	byGroup := make(map[string]*model.GroupWeeklySummary)
	for _, e := range m.weekly {
		if e.year != year || e.week != week {
			continue
		}
		group := string(e.project.GroupName)
		s, ok := byGroup[group]
		if !ok {
			s = &model.GroupWeeklySummary{Year: year, Week: week, GroupName: group}
			byGroup[group] = s
		}
		s.UserCount += e.userCount
		s.ProjectCount++
		s.AllDefectCount += e.counts.AllDefectCount
		s.AllFix += e.counts.AllFix
		s.AllDis += e.counts.AllDis
	}

	result := make([]*model.GroupWeeklySummary, 0, len(byGroup))
	for _, s := range byGroup {
		result = append(result, s)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].AllDefectCount != result[j].AllDefectCount {
			return result[i].AllDefectCount > result[j].AllDefectCount
		}
		return result[i].GroupName < result[j].GroupName
	})
	return result, nil
}

// ListWeeklyChange sums counters across all projects per week, most
// recent week first.
func (m *Memory) ListWeeklyChange(ctx context.Context) ([]*model.WeeklyChangeRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	type yearWeek struct{ year, week int }
	byWeek := make(map[yearWeek]*model.WeeklyChangeRow)
	for _, e := range m.weekly {
		key := yearWeek{e.year, e.week}
		row, ok := byWeek[key]
		if !ok {
			row = &model.WeeklyChangeRow{Year: e.year, Week: e.week}
			byWeek[key] = row
		}
		row.DefectCountTotal += e.counts.AllDefectCount
		row.DefectCountFixed += e.counts.AllFix
		row.DefectCountDismissed += e.counts.AllDis
		row.UserCount += e.userCount
	}

	result := make([]*model.WeeklyChangeRow, 0, len(byWeek))
	for _, row := range byWeek {
		result = append(result, row)
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year > result[j].Year
		}
		return result[i].Week > result[j].Week
	})
	return result, nil
}

// MinYear returns the earliest recorded year, or ErrNoWeeklyStatus when
// nothing has been recorded yet.
func (m *Memory) MinYear(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.weekly) == 0 {
		return 0, model.ErrNoWeeklyStatus
	}
	year := m.weekly[0].year
	for _, e := range m.weekly[1:] {
		if e.year < year {
			year = e.year
		}
	}
	return year, nil
}

// MaxYear returns the latest recorded year.
func (m *Memory) MaxYear(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.weekly) == 0 {
		return 0, model.ErrNoWeeklyStatus
	}
	year := m.weekly[0].year
	for _, e := range m.weekly[1:] {
		if e.year > year {
			year = e.year
		}
	}
	return year, nil
}

// MaxWeekOfYear returns the latest recorded week of one year.
func (m *Memory) MaxWeekOfYear(ctx context.Context, year int) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	week := -1
	for _, e := range m.weekly {
		if e.year == year && e.week > week {
			week = e.week
		}
	}
	if week < 0 {
		return 0, model.ErrNoWeeklyStatus
	}
	return week, nil
}

// GetDatabaseNameByProject resolves a project's database name, or
// ErrProjectNotFound.
func (m *Memory) GetDatabaseNameByProject(ctx context.Context, project types.ProjectName) (types.DatabaseName, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if info := m.findProject(project); info != nil {
		return info.DatabaseName, nil
	}
	return "", goerr.Wrap(model.ErrProjectNotFound, "no such project", goerr.V("project", project))
}

// ListDatabaseNames returns every project's database name.
func (m *Memory) ListDatabaseNames(ctx context.Context) ([]types.DatabaseName, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]types.DatabaseName, 0, len(m.projects))
	for _, p := range m.projects {
		names = append(names, p.DatabaseName)
	}
	return names, nil
}

// ListDatabaseNamesByGroup returns the member databases of one group, or
// ErrGroupNotFound when no project belongs to it.
func (m *Memory) ListDatabaseNamesByGroup(ctx context.Context, group types.GroupName) ([]types.DatabaseName, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []types.DatabaseName
	for _, p := range m.projects {
		if p.GroupName == group {
			names = append(names, p.DatabaseName)
		}
	}
	if len(names) == 0 {
		return nil, goerr.Wrap(model.ErrGroupNotFound, "no projects in group", goerr.V("group", group))
	}
	return names, nil
}

// ListAccounts returns the accounts of one project database, ascending by
// userId.
func (m *Memory) ListAccounts(ctx context.Context, db types.DatabaseName) ([]*model.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.broken[db]; err != nil {
		return nil, goerr.Wrap(err, "failed to query accounts", goerr.V("database", db))
	}
	ids, ok := m.accounts[db]
	if !ok {
		return nil, goerr.New("unknown database", goerr.V("database", db))
	}

	accounts := make([]*model.Account, 0, len(ids))
	for _, id := range ids {
		accounts = append(accounts, &model.Account{UserID: id})
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].UserID < accounts[j].UserID })
	return accounts, nil
}

// CountAccounts returns the number of accounts in one project database.
func (m *Memory) CountAccounts(ctx context.Context, db types.DatabaseName) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.broken[db]; err != nil {
		return 0, goerr.Wrap(err, "failed to count accounts", goerr.V("database", db))
	}
	ids, ok := m.accounts[db]
	if !ok {
		return 0, goerr.New("unknown database", goerr.V("database", db))
	}
	return len(ids), nil
}

// CountDefects returns the defect status counts of one project database.
func (m *Memory) CountDefects(ctx context.Context, db types.DatabaseName) (*model.DefectCounts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.broken[db]; err != nil {
		return nil, goerr.Wrap(err, "failed to count defects", goerr.V("database", db))
	}
	if _, ok := m.accounts[db]; !ok {
		return nil, goerr.New("unknown database", goerr.V("database", db))
	}

	counts := &model.DefectCounts{}
	for _, status := range m.defects[db] {
		counts.DefectCountTotal++
		switch status {
		case defectStatusFixed:
			counts.DefectCountFixed++
		case defectStatusDismissed:
			counts.DefectCountDismissed++
		}
	}
	return counts, nil
}

// Close is a no-op for the memory repository.
func (m *Memory) Close() error {
	return nil
}
