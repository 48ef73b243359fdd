package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	domain "wanzo-portfolio/internal/domain/portfolio"
	portfolioUC "wanzo-portfolio/internal/usecase/portfolio"
	seedingUC "wanzo-portfolio/internal/usecase/seeding"
)

type PortfolioHandler struct {
	uc     *portfolioUC.Usecase
	seeder *seedingUC.Usecase
}

func NewPortfolioHandler(uc *portfolioUC.Usecase, seeder *seedingUC.Usecase) *PortfolioHandler {
	return &PortfolioHandler{uc: uc, seeder: seeder}
}

func (h *PortfolioHandler) List(c echo.Context) error {
	out, err := h.uc.GetAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, out)
}

func (h *PortfolioHandler) ListByType(c echo.Context) error {
	t := domain.Type(c.Param("type"))
	if !t.Valid() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown portfolio type"})
	}
	out, err := h.uc.GetByType(c.Request().Context(), t)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, out)
}

// Get serves one portfolio under an expected variant type. A mismatch is a 404
// carrying the expected/actual pair so the client can redirect to its list
// view instead of rendering the wrong shape.
func (h *PortfolioHandler) Get(c echo.Context) error {
	t := domain.Type(c.Param("type"))
	if !t.Valid() {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown portfolio type"})
	}
	p, err := h.uc.GetOfType(c.Request().Context(), c.Param("id"), t)
	if err != nil {
		var mismatch *domain.TypeMismatchError
		if errors.As(err, &mismatch) {
			return c.JSON(http.StatusNotFound, map[string]any{
				"error":    "portfolio type mismatch",
				"expected": mismatch.Expected,
				"actual":   mismatch.Actual,
			})
		}
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	return c.JSON(http.StatusOK, p)
}

type savePortfolioReq struct {
	ID             string   `json:"id"`
	Type           string   `json:"type" validate:"required,oneof=traditional leasing investment"`
	Name           string   `json:"name" validate:"required"`
	Status         string   `json:"status"`
	TargetSectors  []string `json:"target_sectors"`
	RiskProfile    string   `json:"risk_profile" validate:"omitempty,oneof=conservative moderate aggressive"`
	Manager        string   `json:"manager"`
	TargetAmount   string   `json:"target_amount" validate:"omitempty,amount"`
	TargetReturn   string   `json:"target_return" validate:"omitempty,amount"`
	ManagementFees string   `json:"management_fees" validate:"omitempty,amount"`
}

func (h *PortfolioHandler) Save(c echo.Context) error {
	var req savePortfolioReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	p := &domain.Portfolio{
		ID:            req.ID,
		Type:          domain.Type(req.Type),
		Name:          req.Name,
		Status:        domain.Status(req.Status).OrDefault(),
		TargetSectors: req.TargetSectors,
		RiskProfile:   domain.RiskProfile(req.RiskProfile),
		Manager:       req.Manager,
	}
	p.TargetAmount = parseAmount(req.TargetAmount)
	p.TargetReturn = parseAmount(req.TargetReturn)
	p.ManagementFees = parseAmount(req.ManagementFees)

	out, err := h.uc.Save(c.Request().Context(), p)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, out)
}

type changeStatusReq struct {
	Status string `json:"status" validate:"required"`
}

func (h *PortfolioHandler) ChangeStatus(c echo.Context) error {
	var req changeStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: ToFieldErrors(err)})
	}
	p, err := h.uc.ChangeStatus(c.Request().Context(), c.Param("id"), domain.Status(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
		case errors.Is(err, domain.ErrInvalidTransition):
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, p)
}

func (h *PortfolioHandler) Delete(c echo.Context) error {
	ok, err := h.uc.Delete(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "not found"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ResetMockData forces a fresh seed regardless of the guard flag.
func (h *PortfolioHandler) ResetMockData(c echo.Context) error {
	if err := h.seeder.ResetMockData(c.Request().Context()); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "reseeded"})
}
