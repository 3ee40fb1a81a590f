package http

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/defmon-lab/argos/pkg/domain/types"
	"github.com/defmon-lab/argos/pkg/usecase"
)

// UserHandler serves the roster and directory enrichment endpoints
type UserHandler struct {
	userUC *usecase.User
}

// NewUserHandler creates a new user roster handler
func NewUserHandler(userUC *usecase.User) *UserHandler {
	return &UserHandler{userUC: userUC}
}

// HandleGetAll serves GET /api/v1/user
func (h *UserHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accounts, err := h.userUC.GetAll(ctx)
	if err != nil {
		respondFail(ctx, w, err)
		return
	}
	respondRows(ctx, w, accounts)
}

// HandleGetByProject serves GET /api/v1/user/project/{projectName}
func (h *UserHandler) HandleGetByProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	project := types.ProjectName(chi.URLParam(r, "projectName"))

	accounts, err := h.userUC.GetByProject(ctx, project)
	if err != nil {
		respondFail(ctx, w, err)
		return
	}
	respondRows(ctx, w, accounts)
}

// HandleGetByGroup serves GET /api/v1/user/group/{groupName}
func (h *UserHandler) HandleGetByGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	group := types.GroupName(chi.URLParam(r, "groupName"))

	accounts, err := h.userUC.GetByGroup(ctx, group)
	if err != nil {
		respondFail(ctx, w, err)
		return
	}
	respondRows(ctx, w, accounts)
}

// HandleCountByProject serves GET /api/v1/user/count/{projectName}
func (h *UserHandler) HandleCountByProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	project := types.ProjectName(chi.URLParam(r, "projectName"))

	count, err := h.userUC.CountByProject(ctx, project)
	if err != nil {
		respondFail(ctx, w, err)
		return
	}
	respondValue(ctx, w, count)
}

// HandleGetMoreInfo serves GET /api/v1/user/info/{userIdList}, where
// userIdList is a comma-separated list of userIds.
func (h *UserHandler) HandleGetMoreInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var ids []types.UserID
	for _, raw := range strings.Split(chi.URLParam(r, "userIdList"), ",") {
		if id := strings.TrimSpace(raw); id != "" {
			ids = append(ids, types.UserID(id))
		}
	}
	if len(ids) == 0 {
		respondFail(ctx, w, goerr.New("no userIds given"))
		return
	}

	respondRows(ctx, w, h.userUC.GetMoreInfoByUserIDList(ctx, ids))
}
