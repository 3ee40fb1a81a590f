package interfaces

import (
	"context"

	"github.com/defmon-lab/argos/pkg/domain/model"
	"github.com/defmon-lab/argos/pkg/domain/types"
)

// DirectoryClient looks up one organizational profile per userId from the
// external user-directory service.
type DirectoryClient interface {
	Lookup(ctx context.Context, id types.UserID) (*model.UserProfile, error)
}
