package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/defmon-lab/argos/pkg/domain/model"
	"github.com/defmon-lab/argos/pkg/domain/types"
	"github.com/defmon-lab/argos/pkg/repository"
)

func seedProjects(t *testing.T, repo *repository.Memory) {
	t.Helper()
	projects := []*model.ProjectInfo{
		{ProjectName: "P1", GroupName: "G1", Language: "CPP", DatabaseName: "db_p1"},
		{ProjectName: "P2", GroupName: "G1", Language: "JAVA", DatabaseName: "db_p2"},
		{ProjectName: "P3", GroupName: "G2", Language: "CPP", DatabaseName: "db_p3"},
	}
	for _, p := range projects {
		gt.NoError(t, repo.AddProject(p))
	}
}

func TestMemoryWeeklyStatusOrdering(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	seedProjects(t, repo)

	// Seed out of order on purpose
	gt.NoError(t, repo.AddWeeklyStatus("P3", 2016, 10, 4, model.WeeklyCounts{AllDefectCount: 7}))
	gt.NoError(t, repo.AddWeeklyStatus("P2", 2016, 11, 3, model.WeeklyCounts{AllDefectCount: 5}))
	gt.NoError(t, repo.AddWeeklyStatus("P1", 2016, 11, 2, model.WeeklyCounts{AllDefectCount: 9}))
	gt.NoError(t, repo.AddWeeklyStatus("P1", 2015, 52, 2, model.WeeklyCounts{AllDefectCount: 1}))

	rows, err := repo.ListWeeklyStatus(ctx)
	gt.NoError(t, err)
	gt.Equal(t, len(rows), 4)

	// Most recent week first; group then project name break ties
	gt.Equal(t, rows[0].ProjectName, "P1")
	gt.Equal(t, rows[0].Week, 11)
	gt.Equal(t, rows[1].ProjectName, "P2")
	gt.Equal(t, rows[2].ProjectName, "P3")
	gt.Equal(t, rows[2].Week, 10)
	gt.Equal(t, rows[3].Year, 2015)

	for i := 1; i < len(rows); i++ {
		a, b := rows[i-1], rows[i]
		if a.Year == b.Year && a.Week == b.Week && a.GroupName == b.GroupName {
			gt.True(t, a.ProjectName <= b.ProjectName)
		}
	}
}

func TestMemoryWeeklyStatusByProject(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	seedProjects(t, repo)

	gt.NoError(t, repo.AddWeeklyStatus("P1", 2016, 10, 5, model.WeeklyCounts{AllDefectCount: 3, AllFix: 1, AllDis: 1}))
	gt.NoError(t, repo.AddWeeklyStatus("P1", 2016, 12, 6, model.WeeklyCounts{AllDefectCount: 4}))
	gt.NoError(t, repo.AddWeeklyStatus("P2", 2016, 12, 9, model.WeeklyCounts{AllDefectCount: 8}))

	rows, err := repo.ListWeeklyStatusByProject(ctx, "P1")
	gt.NoError(t, err)
	gt.Equal(t, len(rows), 2)
	gt.Equal(t, rows[0].Week, 12)
	gt.Equal(t, rows[1].Week, 10)
	gt.Equal(t, rows[1].UserCount, 5)
	gt.Equal(t, rows[1].AllFix, 1)
}

func TestMemoryGroupSummary(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	seedProjects(t, repo)

	gt.NoError(t, repo.AddWeeklyStatus("P1", 2016, 20, 5, model.WeeklyCounts{AllDefectCount: 3, AllFix: 2}))
	gt.NoError(t, repo.AddWeeklyStatus("P2", 2016, 20, 2, model.WeeklyCounts{AllDefectCount: 1}))
	gt.NoError(t, repo.AddWeeklyStatus("P3", 2016, 20, 4, model.WeeklyCounts{AllDefectCount: 10}))
	gt.NoError(t, repo.AddWeeklyStatus("P1", 2016, 19, 5, model.WeeklyCounts{AllDefectCount: 99}))

	rows, err := repo.SummarizeGroupsByWeek(ctx, 2016, 20)
	gt.NoError(t, err)
	gt.Equal(t, len(rows), 2)

	// Worst group first
	gt.Equal(t, rows[0].GroupName, "G2")
	gt.Equal(t, rows[0].AllDefectCount, 10)
	gt.Equal(t, rows[1].GroupName, "G1")
	gt.Equal(t, rows[1].AllDefectCount, 4)
	gt.Equal(t, rows[1].UserCount, 7)
	gt.Equal(t, rows[1].ProjectCount, 2)
	gt.Equal(t, rows[1].AllFix, 2)
}

func TestMemoryGroupSummaryCurrentWeek(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	seedProjects(t, repo)

	fixed := time.Date(2016, 6, 15, 12, 0, 0, 0, time.UTC)
	repo.SetClock(func() time.Time { return fixed })

	year, week := fixed.ISOWeek()
	gt.NoError(t, repo.AddWeeklyStatus("P1", year, week, 3, model.WeeklyCounts{AllDefectCount: 2}))
	gt.NoError(t, repo.AddWeeklyStatus("P1", year, week-1, 3, model.WeeklyCounts{AllDefectCount: 50}))

	rows, err := repo.SummarizeGroupsByWeek(ctx, 0, 0)
	gt.NoError(t, err)
	gt.Equal(t, len(rows), 1)
	gt.Equal(t, rows[0].Year, year)
	gt.Equal(t, rows[0].Week, week)
	gt.Equal(t, rows[0].AllDefectCount, 2)
}

func TestMemoryWeeklyChange(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	seedProjects(t, repo)

	gt.NoError(t, repo.AddWeeklyStatus("P1", 2016, 20, 5, model.WeeklyCounts{AllDefectCount: 3, AllFix: 1, AllDis: 1}))
	gt.NoError(t, repo.AddWeeklyStatus("P2", 2016, 20, 2, model.WeeklyCounts{AllDefectCount: 2, AllFix: 2}))
	gt.NoError(t, repo.AddWeeklyStatus("P1", 2016, 21, 5, model.WeeklyCounts{AllDefectCount: 7}))

	rows, err := repo.ListWeeklyChange(ctx)
	gt.NoError(t, err)
	gt.Equal(t, len(rows), 2)
	gt.Equal(t, rows[0].Week, 21)
	gt.Equal(t, rows[0].DefectCountTotal, 7)
	gt.Equal(t, rows[1].Week, 20)
	gt.Equal(t, rows[1].DefectCountTotal, 5)
	gt.Equal(t, rows[1].DefectCountFixed, 3)
	gt.Equal(t, rows[1].DefectCountDismissed, 1)
	gt.Equal(t, rows[1].UserCount, 7)
}

func TestMemoryYearWeekScalars(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	seedProjects(t, repo)

	t.Run("Empty table is a distinct failure", func(t *testing.T) {
		_, err := repo.MinYear(ctx)
		gt.True(t, errors.Is(err, model.ErrNoWeeklyStatus))
		_, err = repo.MaxYear(ctx)
		gt.True(t, errors.Is(err, model.ErrNoWeeklyStatus))
		_, err = repo.MaxWeekOfYear(ctx, 2016)
		gt.True(t, errors.Is(err, model.ErrNoWeeklyStatus))
	})

	gt.NoError(t, repo.AddWeeklyStatus("P1", 2014, 9, 1, model.WeeklyCounts{}))
	gt.NoError(t, repo.AddWeeklyStatus("P1", 2016, 22, 1, model.WeeklyCounts{}))
	gt.NoError(t, repo.AddWeeklyStatus("P2", 2016, 17, 1, model.WeeklyCounts{}))

	t.Run("Min and max across seeded years", func(t *testing.T) {
		minYear, err := repo.MinYear(ctx)
		gt.NoError(t, err)
		gt.Equal(t, minYear, 2014)

		maxYear, err := repo.MaxYear(ctx)
		gt.NoError(t, err)
		gt.Equal(t, maxYear, 2016)

		week, err := repo.MaxWeekOfYear(ctx, 2016)
		gt.NoError(t, err)
		gt.Equal(t, week, 22)

		_, err = repo.MaxWeekOfYear(ctx, 2013)
		gt.True(t, errors.Is(err, model.ErrNoWeeklyStatus))
	})
}

func TestMemoryProjectDirectory(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	seedProjects(t, repo)

	db, err := repo.GetDatabaseNameByProject(ctx, "P2")
	gt.NoError(t, err)
	gt.Equal(t, db, types.DatabaseName("db_p2"))

	_, err = repo.GetDatabaseNameByProject(ctx, "Unknown")
	gt.True(t, errors.Is(err, model.ErrProjectNotFound))

	all, err := repo.ListDatabaseNames(ctx)
	gt.NoError(t, err)
	gt.Equal(t, len(all), 3)

	g1, err := repo.ListDatabaseNamesByGroup(ctx, "G1")
	gt.NoError(t, err)
	gt.Equal(t, g1, []types.DatabaseName{"db_p1", "db_p2"})

	_, err = repo.ListDatabaseNamesByGroup(ctx, "NoSuchGroup")
	gt.True(t, errors.Is(err, model.ErrGroupNotFound))
}

func TestMemoryAccounts(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	seedProjects(t, repo)

	repo.AddAccount("db_p1", "u3")
	repo.AddAccount("db_p1", "u1")
	repo.AddAccount("db_p1", "u2")

	accounts, err := repo.ListAccounts(ctx, "db_p1")
	gt.NoError(t, err)
	gt.Equal(t, len(accounts), 3)
	gt.Equal(t, accounts[0].UserID, types.UserID("u1"))
	gt.Equal(t, accounts[2].UserID, types.UserID("u3"))

	count, err := repo.CountAccounts(ctx, "db_p1")
	gt.NoError(t, err)
	gt.Equal(t, count, 3)

	_, err = repo.ListAccounts(ctx, "db_nope")
	gt.Error(t, err)

	repo.BreakDatabase("db_p2", errors.New("connection refused"))
	_, err = repo.ListAccounts(ctx, "db_p2")
	gt.Error(t, err)
}

func TestMemoryDefectCounts(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemory()
	seedProjects(t, repo)

	repo.AddDefect("db_p1", "NEW")
	repo.AddDefect("db_p1", "FIX")
	repo.AddDefect("db_p1", "FIX")
	repo.AddDefect("db_p1", "EXC")

	counts, err := repo.CountDefects(ctx, "db_p1")
	gt.NoError(t, err)
	gt.Equal(t, counts.DefectCountTotal, 4)
	gt.Equal(t, counts.DefectCountFixed, 2)
	gt.Equal(t, counts.DefectCountDismissed, 1)
}
