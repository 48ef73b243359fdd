package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	domain "wanzo-portfolio/internal/domain/disbursement"
	disbursementUC "wanzo-portfolio/internal/usecase/disbursement"
)

type DisbursementHandler struct{ uc *disbursementUC.Usecase }

func NewDisbursementHandler(uc *disbursementUC.Usecase) *DisbursementHandler {
	return &DisbursementHandler{uc: uc}
}

type createDisbursementReq struct {
	PortfolioID       string `json:"portfolioId" validate:"required"`
	ContractReference string `json:"contractReference" validate:"required"`
	Amount            string `json:"amount" validate:"required,amount"`
	Currency          string `json:"currency" validate:"omitempty,iso4217"`
	DebitAccount      struct {
		AccountNumber string `json:"account_number" validate:"required"`
		BankName      string `json:"bank_name"`
	} `json:"debitAccount"`
	Beneficiary struct {
		Kind          string `json:"kind" validate:"required,oneof=bank mobilemoney"`
		Name          string `json:"name" validate:"required"`
		AccountNumber string `json:"account_number"`
		BankName      string `json:"bank_name"`
		BankCode      string `json:"bank_code"`
		MobileNumber  string `json:"mobile_number"`
		Provider      string `json:"provider"`
	} `json:"beneficiary"`
}

func (h *DisbursementHandler) Create(c echo.Context) error {
	var req createDisbursementReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	in := disbursementUC.CreateInput{
		PortfolioID:       req.PortfolioID,
		ContractReference: req.ContractReference,
		Amount:            parseAmount(req.Amount),
		Currency:          req.Currency,
		DebitAccount: domain.DebitAccount{
			AccountNumber: req.DebitAccount.AccountNumber,
			BankName:      req.DebitAccount.BankName,
		},
		Beneficiary: domain.Beneficiary{
			Kind:          domain.BeneficiaryKind(req.Beneficiary.Kind),
			Name:          req.Beneficiary.Name,
			AccountNumber: req.Beneficiary.AccountNumber,
			BankName:      req.Beneficiary.BankName,
			BankCode:      req.Beneficiary.BankCode,
			MobileNumber:  req.Beneficiary.MobileNumber,
			Provider:      req.Beneficiary.Provider,
		},
	}
	d, err := h.uc.Create(c.Request().Context(), in)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *DisbursementHandler) Get(c echo.Context) error {
	d := h.uc.Get(c.Request().Context(), c.Param("id"))
	if d == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	return c.JSON(http.StatusOK, d)
}

func (h *DisbursementHandler) ListByContract(c echo.Context) error {
	out := h.uc.GetByContract(c.Request().Context(), c.Param("contractRef"))
	return c.JSON(http.StatusOK, out)
}

type updateDisbursementReq struct {
	Amount   string `json:"amount" validate:"omitempty,amount"`
	Currency string `json:"currency" validate:"omitempty,iso4217"`
	Status   string `json:"status" validate:"omitempty,oneof=draft pending approved rejected processing completed failed canceled"`
}

// Update edits amount, currency or status on an existing order. Fields left
// out of the body keep their current value.
func (h *DisbursementHandler) Update(c echo.Context) error {
	var req updateDisbursementReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	existing := h.uc.Get(c.Request().Context(), c.Param("id"))
	if existing == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	upd := *existing
	if req.Amount != "" {
		upd.Amount = parseAmount(req.Amount)
	}
	if req.Currency != "" {
		upd.Currency = req.Currency
	}
	if req.Status != "" {
		upd.Status = domain.Status(req.Status)
	}
	d, err := h.uc.Update(c.Request().Context(), &upd)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
		case errors.Is(err, domain.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, d)
}

type confirmDisbursementReq struct {
	TransactionReference string `json:"transactionReference" validate:"required"`
	ExecutionDate        string `json:"executionDate" validate:"required"`
	ValueDate            string `json:"valueDate" validate:"required"`
}

func (h *DisbursementHandler) Confirm(c echo.Context) error {
	var req confirmDisbursementReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	d, err := h.uc.Confirm(c.Request().Context(), c.Param("id"), domain.Confirmation{
		TransactionReference: req.TransactionReference,
		ExecutionDate:        req.ExecutionDate,
		ValueDate:            req.ValueDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
		case errors.Is(err, domain.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, d)
}

// Cancel hard-deletes; an unknown id is a 404, never a 500.
func (h *DisbursementHandler) Cancel(c echo.Context) error {
	if !h.uc.Cancel(c.Request().Context(), c.Param("id")) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	return c.NoContent(http.StatusNoContent)
}
