package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	domain "wanzo-portfolio/internal/domain/leasing"
	leasingUC "wanzo-portfolio/internal/usecase/leasing"
)

type LeasingHandler struct{ uc *leasingUC.Usecase }

func NewLeasingHandler(uc *leasingUC.Usecase) *LeasingHandler {
	return &LeasingHandler{uc: uc}
}

func leasingError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrRequestNotFound),
		errors.Is(err, domain.ErrContractNotFound),
		errors.Is(err, domain.ErrEquipmentNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrReasonRequired):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

type createRequestReq struct {
	EquipmentID       string `json:"equipment_id" validate:"required"`
	ClientID          string `json:"client_id" validate:"required"`
	RequestedDuration int    `json:"requested_duration" validate:"required,gte=1,lte=120"`
	MonthlyBudget     string `json:"monthly_budget" validate:"required,amount"`
}

func (h *LeasingHandler) CreateRequest(c echo.Context) error {
	var req createRequestReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	r, err := h.uc.CreateRequest(c.Request().Context(), leasingUC.CreateRequestInput{
		EquipmentID:       req.EquipmentID,
		ClientID:          req.ClientID,
		RequestedDuration: req.RequestedDuration,
		MonthlyBudget:     parseAmount(req.MonthlyBudget),
	})
	if err != nil {
		return leasingError(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *LeasingHandler) ListRequests(c echo.Context) error {
	return c.JSON(http.StatusOK, h.uc.Requests(c.Request().Context()))
}

func (h *LeasingHandler) ListContracts(c echo.Context) error {
	return c.JSON(http.StatusOK, h.uc.Contracts(c.Request().Context()))
}

// Approve reports partial success when the auto-created contract failed: the
// approval itself is never rolled back.
func (h *LeasingHandler) Approve(c echo.Context) error {
	res, err := h.uc.ApproveRequest(c.Request().Context(), c.Param("id"))
	if err != nil {
		return leasingError(c, err)
	}
	body := map[string]any{"request": res.Request}
	if res.ContractErr != nil {
		body["contract_error"] = res.ContractErr.Error()
		return c.JSON(http.StatusOK, body)
	}
	body["contract"] = res.Contract
	return c.JSON(http.StatusOK, body)
}

type rejectReq struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *LeasingHandler) Reject(c echo.Context) error {
	var req rejectReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	r, err := h.uc.RejectRequest(c.Request().Context(), c.Param("id"), req.Reason)
	if err != nil {
		return leasingError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *LeasingHandler) Activate(c echo.Context) error {
	ct, err := h.uc.ActivateContract(c.Request().Context(), c.Param("id"))
	if err != nil {
		return leasingError(c, err)
	}
	return c.JSON(http.StatusOK, ct)
}

type terminateReq struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *LeasingHandler) Terminate(c echo.Context) error {
	var req terminateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	ct, err := h.uc.TerminateContract(c.Request().Context(), c.Param("id"), req.Reason)
	if err != nil {
		return leasingError(c, err)
	}
	return c.JSON(http.StatusOK, ct)
}

func (h *LeasingHandler) GenerateInvoice(c echo.Context) error {
	ct, err := h.uc.GenerateInvoice(c.Request().Context(), c.Param("id"))
	if err != nil {
		return leasingError(c, err)
	}
	return c.JSON(http.StatusOK, ct)
}

type maintenanceReq struct {
	ScheduledAt string `json:"scheduled_at" validate:"required"`
	Description string `json:"description" validate:"required"`
}

func (h *LeasingHandler) ScheduleMaintenance(c echo.Context) error {
	var req maintenanceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	at, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "scheduled_at must be RFC3339"})
	}
	m, err := h.uc.ScheduleMaintenance(c.Request().Context(), c.Param("id"), at, req.Description)
	if err != nil {
		return leasingError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *LeasingHandler) OrderEquipment(c echo.Context) error {
	ct, err := h.uc.OrderEquipment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return leasingError(c, err)
	}
	return c.JSON(http.StatusOK, ct)
}
