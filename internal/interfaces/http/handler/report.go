package handler

import (
	"mime"
	"net/http"
	"strconv"
	"strings"

	appreport "github.com/facultymis/backend/internal/application/report"
	"github.com/facultymis/backend/internal/domain/report"
	"github.com/facultymis/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Export response headers
const (
	HeaderRowCount    = "X-Row-Count"
	HeaderColumnCount = "X-Column-Count"
)

// ReportHandler handles report catalogue, view and export endpoints
type ReportHandler struct {
	BaseHandler
	reportService *appreport.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *appreport.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// ExportEntityQuery is the query string of a one-shot entity export
type ExportEntityQuery struct {
	appreport.FilterInput
	Units   string `form:"units"`
	Columns string `form:"columns"`
	Format  string `form:"format" binding:"omitempty,oneof=csv pdf"`
}

// SummaryQuery selects the units of a summary
type SummaryQuery struct {
	Units string `form:"units"`
}

// splitList splits a comma separated query value, dropping blanks
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ListEntities godoc
// @ID           listReportEntities
// @Summary      List report entities
// @Description  Lists every registered entity in catalogue order
// @Tags         reports
// @Produce      json
// @Success      200 {object} APIResponse[[]appreport.EntityResponse]
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /entities [get]
func (h *ReportHandler) ListEntities(c *gin.Context) {
	h.Success(c, h.reportService.ListEntities())
}

// GetEntity godoc
// @ID           getReportEntity
// @Summary      Get an entity schema
// @Tags         reports
// @Produce      json
// @Param        entity path string true "Entity ID"
// @Success      200 {object} APIResponse[appreport.EntityDetailResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /entities/{entity} [get]
func (h *ReportHandler) GetEntity(c *gin.Context) {
	var uri dto.EntityIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BindError(c, err)
		return
	}
	detail, err := h.reportService.GetEntity(uri.Entity)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}

// ListUnits godoc
// @ID           listReportUnits
// @Summary      List selectable units
// @Description  Department-bound callers only see their own unit
// @Tags         reports
// @Produce      json
// @Success      200 {object} APIResponse[[]report.Unit]
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /units [get]
func (h *ReportHandler) ListUnits(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}
	units, err := h.reportService.ListUnits(c.Request.Context(), caller)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, units)
}

// OpenView godoc
// @ID           openReportView
// @Summary      Open a report view
// @Description  Opens a view for the caller, optionally selecting an entity and units
// @Tags         views
// @Accept       json
// @Produce      json
// @Param        request body appreport.OpenViewRequest false "Initial entity and units"
// @Success      201 {object} APIResponse[appreport.ViewResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /views [post]
func (h *ReportHandler) OpenView(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}
	var req appreport.OpenViewRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BindError(c, err)
			return
		}
	}
	view, err := h.reportService.OpenView(c.Request.Context(), caller, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, view)
}

// GetView godoc
// @ID           getReportView
// @Summary      Get a view's display rows
// @Tags         views
// @Produce      json
// @Param        id path string true "View ID" format(uuid)
// @Success      200 {object} APIResponse[appreport.ViewRowsResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /views/{id} [get]
func (h *ReportHandler) GetView(c *gin.Context) {
	caller, id, ok := h.viewTarget(c)
	if !ok {
		return
	}
	rows, err := h.reportService.GetViewRows(caller, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// SelectEntity godoc
// @ID           selectViewEntity
// @Summary      Switch a view's entity
// @Tags         views
// @Accept       json
// @Produce      json
// @Param        id path string true "View ID" format(uuid)
// @Param        request body appreport.SelectEntityRequest true "Entity"
// @Success      200 {object} APIResponse[appreport.ViewResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /views/{id}/entity [put]
func (h *ReportHandler) SelectEntity(c *gin.Context) {
	caller, id, ok := h.viewTarget(c)
	if !ok {
		return
	}
	var req appreport.SelectEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	h.respondView(c)(h.reportService.SelectEntity(c.Request.Context(), caller, id, req))
}

// SetScope godoc
// @ID           setViewScope
// @Summary      Set a view's units
// @Tags         views
// @Accept       json
// @Produce      json
// @Param        id path string true "View ID" format(uuid)
// @Param        request body appreport.SetScopeRequest true "Units, ALL for every unit"
// @Success      200 {object} APIResponse[appreport.ViewResponse]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /views/{id}/scope [put]
func (h *ReportHandler) SetScope(c *gin.Context) {
	caller, id, ok := h.viewTarget(c)
	if !ok {
		return
	}
	var req appreport.SetScopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	h.respondView(c)(h.reportService.SetScope(c.Request.Context(), caller, id, req))
}

// SetFilter godoc
// @ID           setViewFilter
// @Summary      Set a view's filter
// @Tags         views
// @Accept       json
// @Produce      json
// @Param        id path string true "View ID" format(uuid)
// @Param        request body appreport.FilterInput true "Filter"
// @Success      200 {object} APIResponse[appreport.ViewResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /views/{id}/filter [put]
func (h *ReportHandler) SetFilter(c *gin.Context) {
	caller, id, ok := h.viewTarget(c)
	if !ok {
		return
	}
	var in appreport.FilterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.BindError(c, err)
		return
	}
	h.respondView(c)(h.reportService.SetFilter(caller, id, in))
}

// SetColumns godoc
// @ID           setViewColumns
// @Summary      Set a view's columns
// @Tags         views
// @Accept       json
// @Produce      json
// @Param        id path string true "View ID" format(uuid)
// @Param        request body appreport.SetColumnsRequest true "Column keys, empty for the default"
// @Success      200 {object} APIResponse[appreport.ViewResponse]
// @Security     BearerAuth
// @Router       /views/{id}/columns [put]
func (h *ReportHandler) SetColumns(c *gin.Context) {
	caller, id, ok := h.viewTarget(c)
	if !ok {
		return
	}
	var req appreport.SetColumnsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	h.respondView(c)(h.reportService.SetColumns(caller, id, req))
}

// Refresh godoc
// @ID           refreshReportView
// @Summary      Refetch a view's rows
// @Description  Bypasses the row cache
// @Tags         views
// @Produce      json
// @Param        id path string true "View ID" format(uuid)
// @Success      200 {object} APIResponse[appreport.ViewResponse]
// @Security     BearerAuth
// @Router       /views/{id}/refresh [post]
func (h *ReportHandler) Refresh(c *gin.Context) {
	caller, id, ok := h.viewTarget(c)
	if !ok {
		return
	}
	h.respondView(c)(h.reportService.Refresh(c.Request.Context(), caller, id))
}

// CloseView godoc
// @ID           closeReportView
// @Summary      Close a view
// @Tags         views
// @Param        id path string true "View ID" format(uuid)
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /views/{id} [delete]
func (h *ReportHandler) CloseView(c *gin.Context) {
	caller, id, ok := h.viewTarget(c)
	if !ok {
		return
	}
	if err := h.reportService.CloseView(c.Request.Context(), caller, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ExportView godoc
// @ID           exportReportView
// @Summary      Export a view
// @Description  Downloads the filtered rows as CSV or PDF. With archive=true the payload is stored and a download link returned.
// @Tags         views
// @Produce      text/csv,application/pdf,json
// @Param        id path string true "View ID" format(uuid)
// @Param        format query string false "csv or pdf"
// @Param        archive query bool false "Store instead of download"
// @Success      200 {object} APIResponse[appreport.ArchivedExportResponse]
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /views/{id}/export [get]
func (h *ReportHandler) ExportView(c *gin.Context) {
	caller, id, ok := h.viewTarget(c)
	if !ok {
		return
	}
	var req appreport.ExportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}
	res, err := h.reportService.ExportView(c.Request.Context(), caller, id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if res.Archived != nil {
		h.Success(c, res.Archived)
		return
	}
	h.attachment(c, res.Export)
}

// ExportEntity godoc
// @ID           exportReportEntity
// @Summary      Export an entity without a view
// @Tags         reports
// @Produce      text/csv,application/pdf
// @Param        entity path string true "Entity ID"
// @Param        units query string false "Comma separated unit codes, ALL for every unit"
// @Param        columns query string false "Comma separated column keys"
// @Param        search query string false "Search text"
// @Param        from query string false "Start date (2006-01-02)"
// @Param        to query string false "End date (2006-01-02)"
// @Param        year_from query int false "First year"
// @Param        year_to query int false "Last year"
// @Param        facet query string false "Facet value"
// @Param        format query string false "csv or pdf"
// @Success      200 {file} file
// @Failure      422 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /entities/{entity}/export [get]
func (h *ReportHandler) ExportEntity(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}
	var uri dto.EntityIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BindError(c, err)
		return
	}
	var q ExportEntityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	exp, err := h.reportService.ExportEntity(c.Request.Context(), caller, appreport.ExportEntityRequest{
		Entity:  uri.Entity,
		Units:   splitList(q.Units),
		Filter:  q.FilterInput,
		Columns: splitList(q.Columns),
		Format:  q.Format,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.attachment(c, exp)
}

// Summary godoc
// @ID           getReportSummary
// @Summary      Row counts per entity
// @Description  Counts the rows of every entity under the caller's scope
// @Tags         reports
// @Produce      json
// @Param        units query string false "Comma separated unit codes, ALL for every unit"
// @Success      200 {object} APIResponse[appreport.SummaryResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /summary [get]
func (h *ReportHandler) Summary(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}
	var q SummaryQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	summary, err := h.reportService.Summary(c.Request.Context(), caller, splitList(q.Units))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// viewTarget resolves the caller and the :id path parameter
func (h *ReportHandler) viewTarget(c *gin.Context) (report.Caller, string, bool) {
	caller, ok := h.getCaller(c)
	if !ok {
		return report.Caller{}, "", false
	}
	var uri dto.ViewIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BindError(c, err)
		return report.Caller{}, "", false
	}
	return caller, uri.ID, true
}

// respondView writes the outcome of a view mutation
func (h *ReportHandler) respondView(c *gin.Context) func(*appreport.ViewResponse, error) {
	return func(view *appreport.ViewResponse, err error) {
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, view)
	}
}

// attachment sends an export payload as a file download
func (h *ReportHandler) attachment(c *gin.Context, exp *report.Export) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": exp.Filename}))
	c.Header(HeaderRowCount, strconv.Itoa(exp.RowCount))
	c.Header(HeaderColumnCount, strconv.Itoa(exp.ColumnCount))
	c.Data(http.StatusOK, exp.ContentType, exp.Content)
}
