package usecase

import (
	"context"
	"sort"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/defmon-lab/argos/pkg/domain/interfaces"
	"github.com/defmon-lab/argos/pkg/domain/model"
	"github.com/defmon-lab/argos/pkg/domain/types"
	"github.com/defmon-lab/argos/pkg/utils/async"
)

// User provides roster aggregation across project databases and profile
// enrichment via the external directory service.
type User struct {
	repo      interfaces.Repository
	directory interfaces.DirectoryClient
}

// NewUser creates a new user roster usecase
func NewUser(repo interfaces.Repository, directory interfaces.DirectoryClient) *User {
	return &User{repo: repo, directory: directory}
}

// GetByProject returns one project's roster, ascending by userId.
func (u *User) GetByProject(ctx context.Context, project types.ProjectName) ([]*model.Account, error) {
	db, err := u.repo.GetDatabaseNameByProject(ctx, project)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve the project database",
			goerr.V("project", project))
	}

	accounts, err := u.repo.ListAccounts(ctx, db)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list the project roster",
			goerr.V("project", project), goerr.V("database", db))
	}
	return accounts, nil
}

// GetByGroup returns the union of the rosters of one group's member
// projects, de-duplicated and ascending by userId.
func (u *User) GetByGroup(ctx context.Context, group types.GroupName) ([]*model.Account, error) {
	dbs, err := u.repo.ListDatabaseNamesByGroup(ctx, group)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve the group databases",
			goerr.V("group", group))
	}
	return u.collectRosters(ctx, dbs), nil
}

// GetAll returns the de-duplicated roster union across every project.
func (u *User) GetAll(ctx context.Context) ([]*model.Account, error) {
	dbs, err := u.repo.ListDatabaseNames(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list the project databases")
	}
	return u.collectRosters(ctx, dbs), nil
}

// CountByProject returns the number of accounts in one project's database.
func (u *User) CountByProject(ctx context.Context, project types.ProjectName) (int, error) {
	db, err := u.repo.GetDatabaseNameByProject(ctx, project)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to resolve the project database",
			goerr.V("project", project))
	}

	count, err := u.repo.CountAccounts(ctx, db)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to count the project roster",
			goerr.V("project", project), goerr.V("database", db))
	}
	return count, nil
}

// collectRosters fetches every database's roster concurrently and unions
// the results. A failed member contributes zero users and is logged; it
// never fails the aggregate, so one broken project database does not take
// the whole roster down with it.
func (u *User) collectRosters(ctx context.Context, dbs []types.DatabaseName) []*model.Account {
	results := async.Gather(ctx, dbs, func(ctx context.Context, db types.DatabaseName) ([]*model.Account, error) {
		return u.repo.ListAccounts(ctx, db)
	})

	seen := make(map[types.UserID]struct{})
	accounts := make([]*model.Account, 0)
	for i, res := range results {
		if res.Err != nil {
			ctxlog.From(ctx).Warn("Project roster excluded from aggregation",
				"database", dbs[i],
				"error", res.Err,
			)
			continue
		}
		for _, account := range res.Value {
			if _, ok := seen[account.UserID]; ok {
				continue
			}
			seen[account.UserID] = struct{}{}
			accounts = append(accounts, account)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].UserID < accounts[j].UserID })
	return accounts
}

// GetMoreInfoByUserIDList fetches one directory profile per userId
// concurrently. The result has one entry per requested id, in request
// order. A failed or mismatched lookup degrades to a profile carrying
// only the userId and is logged; it never fails the batch.
func (u *User) GetMoreInfoByUserIDList(ctx context.Context, ids []types.UserID) []*model.UserProfile {
	results := async.Gather(ctx, ids, func(ctx context.Context, id types.UserID) (*model.UserProfile, error) {
		if u.directory == nil {
			return nil, goerr.New("directory service is not configured")
		}
		return u.directory.Lookup(ctx, id)
	})

	profiles := make([]*model.UserProfile, len(ids))
	for i, res := range results {
		if res.Err != nil || res.Value == nil {
			ctxlog.From(ctx).Warn("Directory lookup degraded",
				"userId", ids[i],
				"error", res.Err,
			)
			profiles[i] = &model.UserProfile{UserID: ids[i]}
			continue
		}
		profiles[i] = res.Value
	}
	return profiles
}
