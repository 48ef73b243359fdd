package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	domain "wanzo-portfolio/internal/domain/portfolio"
	"wanzo-portfolio/internal/testutil/flatmock"
	"wanzo-portfolio/internal/testutil/outboxmock"
	"wanzo-portfolio/internal/testutil/portfoliomock"
	portfolioUC "wanzo-portfolio/internal/usecase/portfolio"
	seedingUC "wanzo-portfolio/internal/usecase/seeding"
)

// -------- helpers --------

func newEchoWithValidator() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func mustJSON(v any) *bytes.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newPortfolioHandler(repo *portfoliomock.Repo) (*PortfolioHandler, *outboxmock.Outbox) {
	outbox := outboxmock.New()
	uc := portfolioUC.NewUsecase(repo, outbox, quietLogger())
	seeder := seedingUC.NewUsecase(repo, repo, flatmock.New(), quietLogger())
	return NewPortfolioHandler(uc, seeder), outbox
}

// -------- tests --------

func TestSavePortfolio_Success(t *testing.T) {
	e := newEchoWithValidator()

	var stored *domain.Portfolio
	repo := &portfoliomock.Repo{
		AddOrUpdateFn: func(_ context.Context, p *domain.Portfolio) error {
			stored = p
			return nil
		},
	}
	h, outbox := newPortfolioHandler(repo)

	body := map[string]any{
		"type":          "traditional",
		"name":          "Portefeuille PME",
		"target_amount": "500000000",
		"risk_profile":  "moderate",
	}
	req := httptest.NewRequest(stdhttp.MethodPost, "/portfolios", mustJSON(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Save(c); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if rec.Code != stdhttp.StatusCreated {
		t.Fatalf("status = %d, want 201, body=%s", rec.Code, rec.Body.String())
	}
	if stored == nil || stored.Type != domain.TypeTraditional {
		t.Fatalf("stored = %+v", stored)
	}
	if stored.Status != domain.StatusDraft {
		t.Errorf("status defaulted to %s, want draft", stored.Status)
	}
	if stored.TargetAmount.String() != "500000000" {
		t.Errorf("TargetAmount = %s", stored.TargetAmount)
	}
	if len(stored.ID) != 32 {
		t.Errorf("assigned id = %q, want 32-char id", stored.ID)
	}
	if len(outbox.Items) != 1 {
		t.Errorf("outbox items = %d, want 1", len(outbox.Items))
	}
}

func TestSavePortfolio_ValidationFailure(t *testing.T) {
	e := newEchoWithValidator()
	h, _ := newPortfolioHandler(&portfoliomock.Repo{})

	// unknown type and missing name
	body := map[string]any{"type": "crypto"}
	req := httptest.NewRequest(stdhttp.MethodPost, "/portfolios", mustJSON(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Save(c); err != nil {
		t.Fatalf("Save error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if !containsFieldMsg(resp.Details, "Type", "must be one of") {
		t.Errorf("missing oneof detail for Type: %+v", resp.Details)
	}
	if !containsFieldMsg(resp.Details, "Name", "is required") {
		t.Errorf("missing required detail for Name: %+v", resp.Details)
	}
}

func TestGetPortfolio_TypeMismatchIs404WithShape(t *testing.T) {
	e := newEchoWithValidator()

	repo := &portfoliomock.Repo{
		GetFn: func(_ context.Context, id string) (*domain.Portfolio, error) {
			return &domain.Portfolio{ID: id, Type: domain.TypeLeasing}, nil
		},
	}
	h, _ := newPortfolioHandler(repo)

	req := httptest.NewRequest(stdhttp.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/portfolios/:type/:id")
	c.SetParamNames("type", "id")
	c.SetParamValues("traditional", "leas-1")

	if err := h.Get(c); err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if body["expected"] != "traditional" || body["actual"] != "leasing" {
		t.Errorf("mismatch body = %v", body)
	}
}

func TestChangeStatus_InvalidTransitionIs409(t *testing.T) {
	e := newEchoWithValidator()

	repo := &portfoliomock.Repo{
		GetFn: func(_ context.Context, id string) (*domain.Portfolio, error) {
			return &domain.Portfolio{ID: id, Type: domain.TypeTraditional, Status: domain.StatusArchived}, nil
		},
	}
	h, _ := newPortfolioHandler(repo)

	req := httptest.NewRequest(stdhttp.MethodPatch, "/", mustJSON(map[string]string{"status": "active"}))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/portfolios/:id/status")
	c.SetParamNames("id")
	c.SetParamValues("p1")

	if err := h.ChangeStatus(c); err != nil {
		t.Fatalf("ChangeStatus error: %v", err)
	}
	if rec.Code != stdhttp.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestDeletePortfolio_Unknown404(t *testing.T) {
	e := newEchoWithValidator()
	h, _ := newPortfolioHandler(&portfoliomock.Repo{}) // default Get reports missing

	req := httptest.NewRequest(stdhttp.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/portfolios/:id")
	c.SetParamNames("id")
	c.SetParamValues("nope")

	if err := h.Delete(c); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if rec.Code != stdhttp.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestListByType_UnknownTypeIs400(t *testing.T) {
	e := newEchoWithValidator()
	h, _ := newPortfolioHandler(&portfoliomock.Repo{})

	req := httptest.NewRequest(stdhttp.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/portfolios/:type")
	c.SetParamNames("type")
	c.SetParamValues("crypto")

	if err := h.ListByType(c); err != nil {
		t.Fatalf("ListByType error: %v", err)
	}
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
