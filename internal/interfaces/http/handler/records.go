package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/facultymis/backend/internal/domain/report"
	"github.com/facultymis/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// RecordReader reads raw entity records and the branch directory from the records database
type RecordReader interface {
	QueryRecords(ctx context.Context, schema *report.EntitySchema, scope report.UnitScope) ([]map[string]any, error)
	ListUnits(ctx context.Context) ([]report.Unit, error)
}

// RecordsHandler serves the records API the HTTP source reads from
type RecordsHandler struct {
	BaseHandler
	registry *report.Registry
	records  RecordReader
}

// NewRecordsHandler creates a new RecordsHandler
func NewRecordsHandler(registry *report.Registry, records RecordReader) *RecordsHandler {
	return &RecordsHandler{registry: registry, records: records}
}

// BranchesQuery selects the branches of a scoped read
type BranchesQuery struct {
	Branches string `form:"branches"`
}

// ListBranches godoc
// @ID           listRecordBranches
// @Summary      List branches
// @Tags         records
// @Produce      json
// @Success      200 {object} RecordsResponse[[]report.Unit]
// @Failure      503 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/hod/branches [get]
func (h *RecordsHandler) ListBranches(c *gin.Context) {
	units, err := h.records.ListUnits(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, RecordsResponse[[]report.Unit]{Data: units})
}

// ListBranchRecords godoc
// @ID           listBranchRecords
// @Summary      List an entity's records for some branches
// @Description  Without a branches parameter the result is empty. Department-bound callers only read their own branch.
// @Tags         records
// @Produce      json
// @Param        entity path string true "Entity ID"
// @Param        branches query string false "Comma separated branch codes"
// @Success      200 {object} RecordsResponse[[]map[string]any]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/hod/{entity} [get]
func (h *RecordsHandler) ListBranchRecords(c *gin.Context) {
	caller, ok := h.getCaller(c)
	if !ok {
		return
	}
	schema, ok := h.schema(c)
	if !ok {
		return
	}
	var q BranchesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	codes := splitList(q.Branches)
	if !caller.Role.CanChooseUnits() {
		own := strings.TrimSpace(caller.Department)
		kept := codes[:0]
		for _, code := range codes {
			if code == own {
				kept = append(kept, code)
			}
		}
		codes = kept
	}
	if len(codes) == 0 {
		c.JSON(http.StatusOK, RecordsResponse[[]map[string]any]{Data: []map[string]any{}})
		return
	}
	h.respondRecords(c, schema, report.UnitSet(codes...))
}

// ListAllRecords godoc
// @ID           listAllRecords
// @Summary      List every record of an entity
// @Tags         records
// @Produce      json
// @Param        entity path string true "Entity ID"
// @Success      200 {object} RecordsResponse[[]map[string]any]
// @Failure      403 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /api/principal/{entity} [get]
func (h *RecordsHandler) ListAllRecords(c *gin.Context) {
	schema, ok := h.schema(c)
	if !ok {
		return
	}
	h.respondRecords(c, schema, report.AllUnits())
}

func (h *RecordsHandler) schema(c *gin.Context) (*report.EntitySchema, bool) {
	var uri dto.EntityIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BindError(c, err)
		return nil, false
	}
	schema, err := h.registry.GetSchema(uri.Entity)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	return schema, true
}

func (h *RecordsHandler) respondRecords(c *gin.Context, schema *report.EntitySchema, scope report.UnitScope) {
	rows, err := h.records.QueryRecords(c.Request.Context(), schema, scope)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, RecordsResponse[[]map[string]any]{Data: rows})
}
