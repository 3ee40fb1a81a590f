package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/defmon-lab/argos/pkg/domain/types"
	"github.com/defmon-lab/argos/pkg/usecase"
)

// DefectHandler serves the weekly defect report endpoints
type DefectHandler struct {
	defectUC *usecase.Defect
}

// NewDefectHandler creates a new defect report handler
func NewDefectHandler(defectUC *usecase.Defect) *DefectHandler {
	return &DefectHandler{defectUC: defectUC}
}

// HandleGetAll serves GET /api/v1/defect
func (h *DefectHandler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rows, err := h.defectUC.GetAll(ctx)
	if err != nil {
		respondFail(ctx, w, err)
		return
	}
	respondRows(ctx, w, rows)
}

// HandleGetByProject serves GET /api/v1/defect/project/{projectName}
func (h *DefectHandler) HandleGetByProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	project := types.ProjectName(chi.URLParam(r, "projectName"))

	rows, err := h.defectUC.GetByProject(ctx, project)
	if err != nil {
		respondFail(ctx, w, err)
		return
	}
	respondRows(ctx, w, rows)
}

// HandleGetByGroup serves GET /api/v1/defect/group/{year}/{week}.
// year=0 and week=0 mean the current ISO week.
func (h *DefectHandler) HandleGetByGroup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		respondFail(ctx, w, goerr.Wrap(err, "invalid year"))
		return
	}
	week, err := strconv.Atoi(chi.URLParam(r, "week"))
	if err != nil {
		respondFail(ctx, w, goerr.Wrap(err, "invalid week"))
		return
	}

	rows, err := h.defectUC.GetByGroup(ctx, year, week)
	if err != nil {
		respondFail(ctx, w, err)
		return
	}
	respondRows(ctx, w, rows)
}

// HandleGetWeeklyChange serves GET /api/v1/defect/weekly-change
func (h *DefectHandler) HandleGetWeeklyChange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rows, err := h.defectUC.GetWeeklyChange(ctx)
	if err != nil {
		respondFail(ctx, w, err)
		return
	}
	respondRows(ctx, w, rows)
}

// HandleGetMinYear serves GET /api/v1/defect/min-year
func (h *DefectHandler) HandleGetMinYear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	year, err := h.defectUC.GetMinYear(ctx)
	if err != nil {
		respondFail(ctx, w, err)
		return
	}
	respondValue(ctx, w, year)
}

// HandleGetMaxYear serves GET /api/v1/defect/max-year
func (h *DefectHandler) HandleGetMaxYear(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	year, err := h.defectUC.GetMaxYear(ctx)
	if err != nil {
		respondFail(ctx, w, err)
		return
	}
	respondValue(ctx, w, year)
}

// HandleGetMaxWeek serves GET /api/v1/defect/max-week/{year}
func (h *DefectHandler) HandleGetMaxWeek(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		respondFail(ctx, w, goerr.Wrap(err, "invalid year"))
		return
	}

	week, err := h.defectUC.GetMaxWeek(ctx, year)
	if err != nil {
		respondFail(ctx, w, err)
		return
	}
	respondValue(ctx, w, week)
}

// HandleGetCounts serves GET /api/v1/defect/count/{projectName}
func (h *DefectHandler) HandleGetCounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	project := types.ProjectName(chi.URLParam(r, "projectName"))

	counts, err := h.defectUC.GetCountsByProject(ctx, project)
	if err != nil {
		respondFail(ctx, w, err)
		return
	}
	respondValues(ctx, w, counts)
}
