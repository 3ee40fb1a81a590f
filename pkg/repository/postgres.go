package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pressly/goose/v3"

	"github.com/defmon-lab/argos/pkg/domain/interfaces"
	"github.com/defmon-lab/argos/pkg/domain/model"
	"github.com/defmon-lab/argos/pkg/domain/types"
	"github.com/defmon-lab/argos/pkg/repository/migrations"
)

// Postgres implements the Repository interface over a pooled database/sql
// connection using the pgx driver.
//
// Per-project "databases" are schemas inside the monitor database: the
// database_name column of project_info names the schema that holds the
// project's account and defect tables. Schema names originate from user
// input (project and group names resolve to them), so every dynamic
// relation reference goes through pgx identifier quoting before it is
// placed in SQL text. All value interpolation uses bound parameters.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a pooled connection to the monitor database and
// verifies it with a ping.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	if dsn == "" {
		return nil, goerr.New("database DSN is empty")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, goerr.Wrap(err, "failed to ping database")
	}

	return &Postgres{db: db}, nil
}

var _ interfaces.Repository = (*Postgres)(nil)

// Migrate runs the embedded goose migrations for the central schema.
func (r *Postgres) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("pgx"); err != nil {
		return goerr.Wrap(err, "failed to set goose dialect")
	}
	if err := goose.UpContext(ctx, r.db, "."); err != nil {
		return goerr.Wrap(err, "failed to run migrations")
	}
	return nil
}

// Close closes the connection pool.
func (r *Postgres) Close() error {
	return r.db.Close()
}

// relation renders a schema-qualified table reference with both
// identifiers quoted.
func relation(db types.DatabaseName, table string) string {
	return pgx.Identifier{string(db), table}.Sanitize()
}

const weeklyCountColumns = `
       w.all_defect_count, w.all_new, w.all_fix, w.all_dis,
       w.cri_new, w.cri_fix, w.cri_dis,
       w.maj_new, w.maj_fix, w.maj_dis,
       w.min_new, w.min_fix, w.min_dis,
       w.crc_new, w.crc_fix, w.crc_dis,
       w.etc_new, w.etc_fix, w.etc_dis`

func scanWeeklyCounts(c *model.WeeklyCounts) []any {
	return []any{
		&c.AllDefectCount, &c.AllNew, &c.AllFix, &c.AllDis,
		&c.CriNew, &c.CriFix, &c.CriDis,
		&c.MajNew, &c.MajFix, &c.MajDis,
		&c.MinNew, &c.MinFix, &c.MinDis,
		&c.CrcNew, &c.CrcFix, &c.CrcDis,
		&c.EtcNew, &c.EtcFix, &c.EtcDis,
	}
}

// ListWeeklyStatus returns every (project, week) record, most recent week
// first with a stable group/project secondary order.
func (r *Postgres) ListWeeklyStatus(ctx context.Context) ([]*model.WeeklyStatusRow, error) {
	query := `
SELECT w.year, w.week,
       COALESCE(p.group_name, '') AS group_name,
       COALESCE(p.project_name, '') AS project_name,
       COALESCE(p.language, '') AS language,` + weeklyCountColumns + `
FROM weekly_status w
LEFT JOIN project_info p ON w.pid = p.pid
ORDER BY w.year DESC, w.week DESC, group_name ASC, project_name ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query weekly status")
	}
	defer rows.Close()

	var result []*model.WeeklyStatusRow
	for rows.Next() {
		row := &model.WeeklyStatusRow{}
		dest := []any{&row.Year, &row.Week, &row.GroupName, &row.ProjectName, &row.Language}
		dest = append(dest, scanWeeklyCounts(&row.WeeklyCounts)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, goerr.Wrap(err, "failed to scan weekly status row")
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate weekly status rows")
	}
	return result, nil
}

// ListWeeklyStatusByProject returns the weekly records of one project,
// resolved by exact name match, most recent week first.
func (r *Postgres) ListWeeklyStatusByProject(ctx context.Context, project types.ProjectName) ([]*model.ProjectWeeklyRow, error) {
	query := `
SELECT w.year, w.week, w.user_count, w.all_defect_count, w.all_fix, w.all_dis
FROM weekly_status w
JOIN project_info p ON w.pid = p.pid
WHERE p.project_name = $1
ORDER BY w.year DESC, w.week DESC`

	rows, err := r.db.QueryContext(ctx, query, string(project))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query weekly status by project",
			goerr.V("project", project))
	}
	defer rows.Close()

	var result []*model.ProjectWeeklyRow
	for rows.Next() {
		row := &model.ProjectWeeklyRow{}
		if err := rows.Scan(&row.Year, &row.Week, &row.UserCount,
			&row.AllDefectCount, &row.AllFix, &row.AllDis); err != nil {
			return nil, goerr.Wrap(err, "failed to scan project weekly row")
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate project weekly rows")
	}
	return result, nil
}

// SummarizeGroupsByWeek sums counters per group for one (year, week).
// year=0 and week=0 select the current ISO year/week as computed by the
// database server's clock. Worst group first, group name breaks ties.
func (r *Postgres) SummarizeGroupsByWeek(ctx context.Context, year, week int) ([]*model.GroupWeeklySummary, error) {
	where := `WHERE w.year = $1 AND w.week = $2`
	args := []any{year, week}
	if year == 0 && week == 0 {
		where = `WHERE w.year = EXTRACT(ISOYEAR FROM CURRENT_DATE)::int
  AND w.week = EXTRACT(WEEK FROM CURRENT_DATE)::int`
		args = nil
	}

	query := `
SELECT w.year, w.week,
       COALESCE(p.group_name, '') AS group_name,
       SUM(w.user_count)::int AS user_count,
       COUNT(p.project_name)::int AS project_count,
       SUM(w.all_defect_count)::int AS all_defect_count,
       SUM(w.all_fix)::int AS all_fix,
       SUM(w.all_dis)::int AS all_dis
FROM weekly_status w
LEFT JOIN project_info p ON w.pid = p.pid
` + where + `
GROUP BY w.year, w.week, group_name
ORDER BY all_defect_count DESC, group_name ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query group summary",
			goerr.V("year", year), goerr.V("week", week))
	}
	defer rows.Close()

	var result []*model.GroupWeeklySummary
	for rows.Next() {
		row := &model.GroupWeeklySummary{}
		if err := rows.Scan(&row.Year, &row.Week, &row.GroupName, &row.UserCount,
			&row.ProjectCount, &row.AllDefectCount, &row.AllFix, &row.AllDis); err != nil {
			return nil, goerr.Wrap(err, "failed to scan group summary row")
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate group summary rows")
	}
	return result, nil
}

// ListWeeklyChange sums counters across all projects per (year, week),
// most recent week first.
func (r *Postgres) ListWeeklyChange(ctx context.Context) ([]*model.WeeklyChangeRow, error) {
	query := `
SELECT w.year, w.week,
       SUM(w.all_defect_count)::int AS defect_count_total,
       SUM(w.all_fix)::int AS defect_count_fixed,
       SUM(w.all_dis)::int AS defect_count_dismissed,
       SUM(w.user_count)::int AS user_count
FROM weekly_status w
GROUP BY w.year, w.week
ORDER BY w.year DESC, w.week DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query weekly change")
	}
	defer rows.Close()

	var result []*model.WeeklyChangeRow
	for rows.Next() {
		row := &model.WeeklyChangeRow{}
		if err := rows.Scan(&row.Year, &row.Week, &row.DefectCountTotal,
			&row.DefectCountFixed, &row.DefectCountDismissed, &row.UserCount); err != nil {
			return nil, goerr.Wrap(err, "failed to scan weekly change row")
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate weekly change rows")
	}
	return result, nil
}

func (r *Postgres) scalarYearWeek(ctx context.Context, query string, args ...any) (int, error) {
	var value int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, model.ErrNoWeeklyStatus
		}
		return 0, goerr.Wrap(err, "failed to query scalar")
	}
	return value, nil
}

// MinYear returns the earliest recorded year. An empty weekly status table
// yields ErrNoWeeklyStatus, distinct from a query failure.
func (r *Postgres) MinYear(ctx context.Context) (int, error) {
	return r.scalarYearWeek(ctx, `SELECT year FROM weekly_status ORDER BY year ASC LIMIT 1`)
}

// MaxYear returns the latest recorded year.
func (r *Postgres) MaxYear(ctx context.Context) (int, error) {
	return r.scalarYearWeek(ctx, `SELECT year FROM weekly_status ORDER BY year DESC LIMIT 1`)
}

// MaxWeekOfYear returns the latest recorded week of one year.
func (r *Postgres) MaxWeekOfYear(ctx context.Context, year int) (int, error) {
	return r.scalarYearWeek(ctx,
		`SELECT week FROM weekly_status WHERE year = $1 ORDER BY week DESC LIMIT 1`, year)
}

// GetDatabaseNameByProject resolves the per-project database name.
// An unknown project yields ErrProjectNotFound, never an empty name.
func (r *Postgres) GetDatabaseNameByProject(ctx context.Context, project types.ProjectName) (types.DatabaseName, error) {
	var name string
	err := r.db.QueryRowContext(ctx,
		`SELECT database_name FROM project_info WHERE project_name = $1`,
		string(project)).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", goerr.Wrap(model.ErrProjectNotFound, "no such project",
				goerr.V("project", project))
		}
		return "", goerr.Wrap(err, "failed to resolve project database",
			goerr.V("project", project))
	}
	return types.DatabaseName(name), nil
}

// ListDatabaseNames returns the database names of all projects.
func (r *Postgres) ListDatabaseNames(ctx context.Context) ([]types.DatabaseName, error) {
	return r.listDatabaseNames(ctx,
		`SELECT database_name FROM project_info ORDER BY project_name ASC`)
}

// ListDatabaseNamesByGroup returns the database names of one group's member
// projects. An unknown group yields ErrGroupNotFound.
func (r *Postgres) ListDatabaseNamesByGroup(ctx context.Context, group types.GroupName) ([]types.DatabaseName, error) {
	names, err := r.listDatabaseNames(ctx,
		`SELECT database_name FROM project_info WHERE group_name = $1 ORDER BY project_name ASC`,
		string(group))
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, goerr.Wrap(model.ErrGroupNotFound, "no projects in group",
			goerr.V("group", group))
	}
	return names, nil
}

func (r *Postgres) listDatabaseNames(ctx context.Context, query string, args ...any) ([]types.DatabaseName, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query database names")
	}
	defer rows.Close()

	var names []types.DatabaseName
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, goerr.Wrap(err, "failed to scan database name")
		}
		names = append(names, types.DatabaseName(name))
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate database names")
	}
	return names, nil
}

// ListAccounts returns the userIds stored in one project database,
// ascending by userId.
func (r *Postgres) ListAccounts(ctx context.Context, db types.DatabaseName) ([]*model.Account, error) {
	query := `SELECT user_id FROM ` + relation(db, "account") + ` ORDER BY user_id ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query accounts", goerr.V("database", db))
	}
	defer rows.Close()

	var accounts []*model.Account
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, goerr.Wrap(err, "failed to scan account row")
		}
		accounts = append(accounts, &model.Account{UserID: types.UserID(id)})
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate account rows")
	}
	return accounts, nil
}

// CountAccounts returns the number of accounts in one project database.
func (r *Postgres) CountAccounts(ctx context.Context, db types.DatabaseName) (int, error) {
	query := `SELECT COUNT(user_id) FROM ` + relation(db, "account")

	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, goerr.Wrap(err, "failed to count accounts", goerr.V("database", db))
	}
	return count, nil
}

// CountDefects returns the total, fixed (FIX) and dismissed (EXC) defect
// counts of one project database.
func (r *Postgres) CountDefects(ctx context.Context, db types.DatabaseName) (*model.DefectCounts, error) {
	defect := relation(db, "defect")
	query := `
SELECT
    (SELECT COUNT(did) FROM ` + defect + `) AS defect_count_total,
    (SELECT COUNT(did) FROM ` + defect + ` WHERE status_code = $1) AS defect_count_fixed,
    (SELECT COUNT(did) FROM ` + defect + ` WHERE status_code = $2) AS defect_count_dismissed`

	counts := &model.DefectCounts{}
	err := r.db.QueryRowContext(ctx, query, defectStatusFixed, defectStatusDismissed).
		Scan(&counts.DefectCountTotal, &counts.DefectCountFixed, &counts.DefectCountDismissed)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count defects", goerr.V("database", db))
	}
	return counts, nil
}

// Defect status codes used by the tracker's per-project defect table.
const (
	defectStatusFixed     = "FIX"
	defectStatusDismissed = "EXC"
)

// ProvisionProjectSchema creates a project schema with its account and
// defect tables. Used by operators and integration tests when registering
// a new project; the monitor itself never writes to project schemas.
func (r *Postgres) ProvisionProjectSchema(ctx context.Context, db types.DatabaseName) error {
	schema := pgx.Identifier{string(db)}.Sanitize()

	statements := []string{
		`CREATE SCHEMA IF NOT EXISTS ` + schema,
		`CREATE TABLE IF NOT EXISTS ` + relation(db, "account") + ` (
            user_id TEXT PRIMARY KEY
        )`,
		`CREATE TABLE IF NOT EXISTS ` + relation(db, "defect") + ` (
            did         SERIAL PRIMARY KEY,
            status_code TEXT NOT NULL DEFAULT 'NEW'
        )`,
	}
	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return goerr.Wrap(err, "failed to provision project schema",
				goerr.V("database", db))
		}
	}
	return nil
}

// RegisterProject records a project in the central directory. Registering
// an existing project updates its group, language and database name.
func (r *Postgres) RegisterProject(ctx context.Context, info *model.ProjectInfo) error {
	query := `
INSERT INTO project_info (project_name, group_name, language, database_name)
VALUES ($1, $2, $3, $4)
ON CONFLICT (project_name) DO UPDATE
SET group_name = EXCLUDED.group_name,
    language = EXCLUDED.language,
    database_name = EXCLUDED.database_name`

	_, err := r.db.ExecContext(ctx, query,
		info.ProjectName, info.GroupName, info.Language, info.DatabaseName)
	if err != nil {
		return goerr.Wrap(err, "failed to register project",
			goerr.V("project", info.ProjectName))
	}
	return nil
}
