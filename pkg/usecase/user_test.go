package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/defmon-lab/argos/pkg/domain/model"
	"github.com/defmon-lab/argos/pkg/domain/types"
	"github.com/defmon-lab/argos/pkg/repository"
	"github.com/defmon-lab/argos/pkg/usecase"
)

func seedRosterRepo(t *testing.T) *repository.Memory {
	t.Helper()
	repo := repository.NewMemory()
	projects := []*model.ProjectInfo{
		{ProjectName: "P1", GroupName: "G1", Language: "CPP", DatabaseName: "db_p1"},
		{ProjectName: "P2", GroupName: "G1", Language: "JAVA", DatabaseName: "db_p2"},
		{ProjectName: "P3", GroupName: "G2", Language: "CPP", DatabaseName: "db_p3"},
	}
	for _, p := range projects {
		gt.NoError(t, repo.AddProject(p))
	}
	repo.AddAccount("db_p1", "carol")
	repo.AddAccount("db_p1", "alice")
	repo.AddAccount("db_p2", "alice")
	repo.AddAccount("db_p2", "bob")
	repo.AddAccount("db_p3", "dave")
	return repo
}

func userIDs(accounts []*model.Account) []types.UserID {
	ids := make([]types.UserID, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.UserID)
	}
	return ids
}

func TestUserGetByProject(t *testing.T) {
	ctx := context.Background()
	repo := seedRosterRepo(t)
	uc := usecase.NewUser(repo, nil)

	accounts := gt.R1(uc.GetByProject(ctx, "P1")).NoError(t)
	gt.Equal(t, userIDs(accounts), []types.UserID{"alice", "carol"})

	_, err := uc.GetByProject(ctx, "Nope")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrProjectNotFound))
}

func TestUserGetByGroupUnion(t *testing.T) {
	ctx := context.Background()
	repo := seedRosterRepo(t)
	uc := usecase.NewUser(repo, nil)

	// "alice" belongs to both member projects and must appear once
	accounts := gt.R1(uc.GetByGroup(ctx, "G1")).NoError(t)
	gt.Equal(t, userIDs(accounts), []types.UserID{"alice", "bob", "carol"})

	_, err := uc.GetByGroup(ctx, "G9")
	gt.Error(t, err)
	gt.True(t, errors.Is(err, model.ErrGroupNotFound))
}

func TestUserGetAllToleratesBrokenDatabase(t *testing.T) {
	ctx := context.Background()
	repo := seedRosterRepo(t)
	repo.BreakDatabase("db_p2", goerr.New("connection refused"))
	uc := usecase.NewUser(repo, nil)

	// The broken member contributes zero users but the rest survive
	accounts := gt.R1(uc.GetAll(ctx)).NoError(t)
	gt.Equal(t, userIDs(accounts), []types.UserID{"alice", "carol", "dave"})
}

func TestUserCountByProject(t *testing.T) {
	ctx := context.Background()
	repo := seedRosterRepo(t)
	uc := usecase.NewUser(repo, nil)

	count := gt.R1(uc.CountByProject(ctx, "P2")).NoError(t)
	gt.Equal(t, count, 2)

	_, err := uc.CountByProject(ctx, "Nope")
	gt.Error(t, err)
}

// stubDirectory resolves profiles from a fixed map and fails the rest.
type stubDirectory struct {
	profiles map[types.UserID]*model.UserProfile
}

func (s *stubDirectory) Lookup(_ context.Context, id types.UserID) (*model.UserProfile, error) {
	if p, ok := s.profiles[id]; ok {
		return p, nil
	}
	return nil, goerr.New("not found", goerr.V("userId", id))
}

func TestUserGetMoreInfo(t *testing.T) {
	ctx := context.Background()
	dir := &stubDirectory{profiles: map[types.UserID]*model.UserProfile{
		"alice": {UserID: "alice", Name: "Alice Example", Department: "Engineering"},
		"bob":   {UserID: "bob", Name: "Bob Example"},
	}}
	uc := usecase.NewUser(repository.NewMemory(), dir)

	profiles := uc.GetMoreInfoByUserIDList(ctx, []types.UserID{"bob", "ghost", "alice"})
	gt.Equal(t, len(profiles), 3)

	// Request order is preserved
	gt.Equal(t, profiles[0].UserID, types.UserID("bob"))
	gt.Equal(t, profiles[0].Name, "Bob Example")
	gt.Equal(t, profiles[2].UserID, types.UserID("alice"))
	gt.Equal(t, profiles[2].Department, "Engineering")

	// A failed lookup degrades to the bare userId
	gt.Equal(t, profiles[1].UserID, types.UserID("ghost"))
	gt.Equal(t, profiles[1].Name, "")
}

func TestUserGetMoreInfoWithoutDirectory(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewUser(repository.NewMemory(), nil)

	// No directory configured: every entry degrades instead of failing
	profiles := uc.GetMoreInfoByUserIDList(ctx, []types.UserID{"alice", "bob"})
	gt.Equal(t, len(profiles), 2)
	gt.Equal(t, profiles[0].UserID, types.UserID("alice"))
	gt.Equal(t, profiles[1].UserID, types.UserID("bob"))
	gt.Equal(t, profiles[0].Name, "")
}
