package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ogurasousui/codex-shift-clean-arch/internal/core/shift"
)

const (
	msgInvalidBody        = "El cuerpo de la solicitud no es válido."
	msgInvalidShiftDate   = "El campo ‘fecha’ debe respetar el formato yyyy-mm-dd."
	msgInvalidRangeFormat = "Los campos ‘fechaDesde’ y ‘fechaHasta’ deben respetar el formato yyyy-mm-dd."
	msgInvalidDocument    = "El campo ‘nroDocumento’ solo puede contener números enteros."
)

// ShiftHandler は /jornada の HTTP 実装です。
type ShiftHandler struct {
	svc    shift.UseCase
	logger *zap.Logger
}

// NewShiftHandler は ShiftHandler を生成します。
func NewShiftHandler(svc shift.UseCase, logger *zap.Logger) *ShiftHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShiftHandler{svc: svc, logger: logger}
}

type createShiftRequest struct {
	EmployeeID  string  `json:"idEmpleado"`
	ConceptID   int     `json:"idConcepto"`
	Date        *string `json:"fecha"`
	WorkedHours *int    `json:"horasTrabajadas"`
}

type shiftResponse struct {
	ID             string `json:"id"`
	DocumentNumber int    `json:"nroDocumento"`
	FullName       string `json:"nombreCompleto"`
	Date           string `json:"fecha"`
	Concept        string `json:"concepto"`
	WorkedHours    *int   `json:"horasTrabajadas,omitempty"`
}

// CreateShift は勤務記録を登録します。
// POST /jornada
func (h *ShiftHandler) CreateShift(c *gin.Context) {
	var req createShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, badRequest(msgInvalidBody))
		return
	}

	var date time.Time
	if req.Date != nil {
		parsed, err := time.Parse(time.DateOnly, strings.TrimSpace(*req.Date))
		if err != nil {
			writeError(c, h.logger, badRequest(msgInvalidShiftDate))
			return
		}
		date = parsed
	}

	view, err := h.svc.CreateShift(c.Request.Context(), shift.CreateShiftInput{
		EmployeeID:  req.EmployeeID,
		ConceptID:   req.ConceptID,
		Date:        date,
		WorkedHours: req.WorkedHours,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, toShiftResponse(*view))
}

// ListShifts は勤務記録を検索します。
// GET /jornada?fechaDesde=&fechaHasta=&nroDocumento=
func (h *ShiftHandler) ListShifts(c *gin.Context) {
	from, err := parseDateQuery(c, "fechaDesde")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	to, err := parseDateQuery(c, "fechaHasta")
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	var document *int
	if raw, ok := c.GetQuery("nroDocumento"); ok && raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(c, h.logger, badRequest(msgInvalidDocument))
			return
		}
		document = &n
	}

	views, err := h.svc.ListShifts(c.Request.Context(), shift.ListShiftsInput{From: from, To: to, DocumentNumber: document})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	out := make([]shiftResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toShiftResponse(v))
	}
	c.JSON(http.StatusOK, out)
}

func parseDateQuery(c *gin.Context, key string) (*time.Time, error) {
	raw, ok := c.GetQuery(key)
	if !ok || raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, badRequest(msgInvalidRangeFormat)
	}
	return &t, nil
}

func toShiftResponse(v shift.View) shiftResponse {
	return shiftResponse{
		ID:             v.ID,
		DocumentNumber: v.DocumentNumber,
		FullName:       v.FullName,
		Date:           v.Date.Format(time.DateOnly),
		Concept:        v.Concept,
		WorkedHours:    v.WorkedHours,
	}
}
