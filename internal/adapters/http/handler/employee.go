package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ogurasousui/codex-shift-clean-arch/internal/core/employee"
)

const msgInvalidEmployeeDates = "Los campos ‘fechaNacimiento’ y ‘fechaIngreso’ deben respetar el formato yyyy-mm-dd."

// EmployeeHandler は /empleado の HTTP 実装です。
type EmployeeHandler struct {
	svc    employee.UseCase
	logger *zap.Logger
}

// NewEmployeeHandler は EmployeeHandler を生成します。
func NewEmployeeHandler(svc employee.UseCase, logger *zap.Logger) *EmployeeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmployeeHandler{svc: svc, logger: logger}
}

type employeeRequest struct {
	DocumentNumber *int    `json:"nroDocumento"`
	Email          *string `json:"email"`
	FirstName      *string `json:"nombre"`
	LastName       *string `json:"apellido"`
	BirthDate      *string `json:"fechaNacimiento"`
	HireDate       *string `json:"fechaIngreso"`
}

type employeeResponse struct {
	ID             string `json:"id"`
	DocumentNumber int    `json:"nroDocumento"`
	Email          string `json:"email"`
	FirstName      string `json:"nombre"`
	LastName       string `json:"apellido"`
	BirthDate      string `json:"fechaNacimiento"`
	HireDate       string `json:"fechaIngreso"`
	CreatedAt      string `json:"fechaCreacion"`
}

// CreateEmployee は従業員を登録します。
// POST /empleado
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	req, dates, ok := h.bind(c)
	if !ok {
		return
	}

	created, err := h.svc.CreateEmployee(c.Request.Context(), employee.CreateEmployeeInput{
		DocumentNumber: derefInt(req.DocumentNumber),
		Email:          derefString(req.Email),
		FirstName:      derefString(req.FirstName),
		LastName:       derefString(req.LastName),
		BirthDate:      dates.birth,
		HireDate:       dates.hire,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, toEmployeeResponse(created))
}

// ListEmployees は従業員の一覧を返します。
// GET /empleado
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	employees, err := h.svc.ListEmployees(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	out := make([]employeeResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, toEmployeeResponse(e))
	}
	c.JSON(http.StatusOK, out)
}

// GetEmployee は従業員を取得します。
// GET /empleado/:id
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	found, err := h.svc.GetEmployee(c.Request.Context(), employee.GetEmployeeInput{ID: c.Param("id")})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toEmployeeResponse(found))
}

// UpdateEmployee は従業員情報を更新します。省略された項目は変更しません。
// PUT /empleado/:id
func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	req, dates, ok := h.bind(c)
	if !ok {
		return
	}

	updated, err := h.svc.UpdateEmployee(c.Request.Context(), employee.UpdateEmployeeInput{
		ID:             c.Param("id"),
		DocumentNumber: req.DocumentNumber,
		Email:          req.Email,
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		BirthDate:      dates.birth,
		HireDate:       dates.hire,
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toEmployeeResponse(updated))
}

// DeleteEmployee は勤務記録を持たない従業員を削除します。
// DELETE /empleado/:id
func (h *EmployeeHandler) DeleteEmployee(c *gin.Context) {
	if err := h.svc.DeleteEmployee(c.Request.Context(), employee.DeleteEmployeeInput{ID: c.Param("id")}); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type employeeDates struct {
	birth *time.Time
	hire  *time.Time
}

func (h *EmployeeHandler) bind(c *gin.Context) (employeeRequest, employeeDates, bool) {
	var req employeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, badRequest(msgInvalidBody))
		return req, employeeDates{}, false
	}

	birth, err := parseOptionalDate(req.BirthDate)
	if err != nil {
		writeError(c, h.logger, err)
		return req, employeeDates{}, false
	}
	hire, err := parseOptionalDate(req.HireDate)
	if err != nil {
		writeError(c, h.logger, err)
		return req, employeeDates{}, false
	}
	return req, employeeDates{birth: birth, hire: hire}, true
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(*raw))
	if err != nil {
		return nil, badRequest(msgInvalidEmployeeDates)
	}
	return &t, nil
}

func toEmployeeResponse(e *employee.Employee) employeeResponse {
	return employeeResponse{
		ID:             e.ID,
		DocumentNumber: e.DocumentNumber,
		Email:          e.Email,
		FirstName:      e.FirstName,
		LastName:       e.LastName,
		BirthDate:      e.BirthDate.Format(time.DateOnly),
		HireDate:       e.HireDate.Format(time.DateOnly),
		CreatedAt:      e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func derefInt(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
