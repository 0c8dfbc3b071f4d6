package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ogurasousui/codex-shift-clean-arch/internal/core/concept"
)

const msgInvalidConceptID = "El campo ‘id’ solo puede contener números enteros."

// ConceptHandler は /concepto-laboral の HTTP 実装です。
type ConceptHandler struct {
	svc    concept.UseCase
	logger *zap.Logger
}

// NewConceptHandler は ConceptHandler を生成します。
func NewConceptHandler(svc concept.UseCase, logger *zap.Logger) *ConceptHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConceptHandler{svc: svc, logger: logger}
}

type conceptResponse struct {
	ID       int    `json:"id"`
	Name     string `json:"nombre"`
	MinHours *int   `json:"hsMinimo"`
	MaxHours *int   `json:"hsMaximo"`
	Workday  bool   `json:"laborable"`
}

// FindConcepts は勤務区分を検索します。
// GET /concepto-laboral?id=&nombre=
func (h *ConceptHandler) FindConcepts(c *gin.Context) {
	var in concept.FindConceptsInput

	if raw, ok := c.GetQuery("id"); ok && raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			writeError(c, h.logger, badRequest(msgInvalidConceptID))
			return
		}
		in.ID = &id
	}
	if name, ok := c.GetQuery("nombre"); ok && name != "" {
		in.NameContains = &name
	}

	concepts, err := h.svc.FindConcepts(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	out := make([]conceptResponse, 0, len(concepts))
	for _, wc := range concepts {
		out = append(out, conceptResponse{
			ID:       wc.ID,
			Name:     wc.Name,
			MinHours: wc.MinHours,
			MaxHours: wc.MaxHours,
			Workday:  wc.CountsAsWorkday,
		})
	}
	c.JSON(http.StatusOK, out)
}
