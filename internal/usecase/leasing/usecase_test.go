package leasing

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"wanzo-portfolio/internal/adapter/storage"
	domain "wanzo-portfolio/internal/domain/leasing"
	"wanzo-portfolio/internal/domain/portfolio"
	"wanzo-portfolio/internal/domain/syncqueue"
)

var errRemoteDown = errors.New("remote unavailable")

type mockAPI struct {
	createRequestFn  func(ctx context.Context, r *domain.Request) (*domain.Request, error)
	approveFn        func(ctx context.Context, id string) error
	rejectFn         func(ctx context.Context, id, reason string) error
	createContractFn func(ctx context.Context, ct *domain.Contract) (*domain.Contract, error)
	updateContractFn func(ctx context.Context, ct *domain.Contract) (*domain.Contract, error)
}

func (m *mockAPI) CreateLeasingRequest(ctx context.Context, r *domain.Request) (*domain.Request, error) {
	if m.createRequestFn == nil {
		return nil, errRemoteDown
	}
	return m.createRequestFn(ctx, r)
}

func (m *mockAPI) ApproveLeasingRequest(ctx context.Context, id string) error {
	if m.approveFn == nil {
		return errRemoteDown
	}
	return m.approveFn(ctx, id)
}

func (m *mockAPI) RejectLeasingRequest(ctx context.Context, id, reason string) error {
	if m.rejectFn == nil {
		return errRemoteDown
	}
	return m.rejectFn(ctx, id, reason)
}

func (m *mockAPI) CreateLeasingContract(ctx context.Context, ct *domain.Contract) (*domain.Contract, error) {
	if m.createContractFn == nil {
		return nil, errRemoteDown
	}
	return m.createContractFn(ctx, ct)
}

func (m *mockAPI) UpdateLeasingContract(ctx context.Context, ct *domain.Contract) (*domain.Contract, error) {
	if m.updateContractFn == nil {
		return nil, errRemoteDown
	}
	return m.updateContractFn(ctx, ct)
}

type memFlat struct{ data map[string][]byte }

func newMemFlat() *memFlat { return &memFlat{data: map[string][]byte{}} }

func (f *memFlat) GetJSON(_ context.Context, key string, out any) bool {
	raw, ok := f.data[key]
	if !ok {
		return false
	}
	return json.Unmarshal(raw, out) == nil
}

func (f *memFlat) SetJSON(_ context.Context, key string, v any) bool {
	raw, err := json.Marshal(v)
	if err != nil {
		return false
	}
	f.data[key] = raw
	return true
}

type memOutbox struct{ items []syncqueue.Item }

func (o *memOutbox) Enqueue(_ context.Context, item *syncqueue.Item) error {
	o.items = append(o.items, *item)
	return nil
}

func (o *memOutbox) Prune(_ context.Context, entity, entityID string) error {
	kept := o.items[:0]
	for _, it := range o.items {
		if it.Entity != entity || it.EntityID != entityID {
			kept = append(kept, it)
		}
	}
	o.items = kept
	return nil
}

var testNow = time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

func newTestUsecase(api *mockAPI) (*Usecase, *memFlat, *memOutbox) {
	flat := newMemFlat()
	outbox := &memOutbox{}
	log := logrus.New()
	log.SetOutput(io.Discard)
	uc := NewUsecase(api, flat, outbox, log)
	uc.now = func() time.Time { return testNow }
	uc.SaveEquipments(context.Background(), []domain.Equipment{
		{ID: "eq-1", Name: "Tracteur agricole", Category: "agriculture", Price: decimal.NewFromInt(45_000_000)},
	})
	return uc, flat, outbox
}

func createRequest(t *testing.T, uc *Usecase) *domain.Request {
	t.Helper()
	r, err := uc.CreateRequest(context.Background(), CreateRequestInput{
		EquipmentID:       "eq-1",
		ClientID:          "client-7",
		RequestedDuration: 24,
		MonthlyBudget:     decimal.NewFromInt(2_100_000),
	})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	return r
}

func TestCreateRequestUnknownEquipment(t *testing.T) {
	uc, _, _ := newTestUsecase(&mockAPI{})
	_, err := uc.CreateRequest(context.Background(), CreateRequestInput{EquipmentID: "eq-404"})
	if !errors.Is(err, domain.ErrEquipmentNotFound) {
		t.Fatalf("err = %v, want ErrEquipmentNotFound", err)
	}
}

func TestCreateRequestStartsPending(t *testing.T) {
	uc, _, outbox := newTestUsecase(&mockAPI{})
	r := createRequest(t, uc)
	if r.Status != domain.RequestPending {
		t.Errorf("Status = %s, want pending", r.Status)
	}
	// remote down: the create is queued
	if len(outbox.items) != 1 || outbox.items[0].Action != syncqueue.ActionCreate {
		t.Errorf("outbox = %+v, want one create item", outbox.items)
	}
}

func TestApproveCreatesContract(t *testing.T) {
	uc, _, _ := newTestUsecase(&mockAPI{})
	ctx := context.Background()
	r := createRequest(t, uc)

	res, err := uc.ApproveRequest(ctx, r.ID)
	if err != nil {
		t.Fatalf("ApproveRequest: %v", err)
	}
	if res.ContractErr != nil {
		t.Fatalf("ContractErr = %v", res.ContractErr)
	}
	ct := res.Contract
	if ct == nil {
		t.Fatalf("no contract created")
	}

	if res.Request.Status != domain.RequestContractCreated {
		t.Errorf("request status = %s, want contract_created", res.Request.Status)
	}
	if res.Request.ContractID != ct.ID {
		t.Errorf("request.ContractID = %q, want %q", res.Request.ContractID, ct.ID)
	}
	if ct.RequestID != r.ID {
		t.Errorf("contract.RequestID = %q, want %q", ct.RequestID, r.ID)
	}
	if ct.Status != domain.ContractPending {
		t.Errorf("contract status = %s, want pending", ct.Status)
	}

	// 24 months requested: end date is start plus 24 calendar months
	wantEnd := testNow.AddDate(0, 24, 0)
	if !ct.EndDate.Equal(wantEnd) {
		t.Errorf("EndDate = %v, want %v", ct.EndDate, wantEnd)
	}
	if !ct.MonthlyPayment.Equal(decimal.NewFromInt(2_100_000)) {
		t.Errorf("MonthlyPayment = %s, want the requested budget", ct.MonthlyPayment)
	}
	if !ct.InterestRate.Equal(domain.DefaultInterestRate) {
		t.Errorf("InterestRate = %s, want %s", ct.InterestRate, domain.DefaultInterestRate)
	}
}

func TestApproveSurvivesContractFailure(t *testing.T) {
	uc, flat, _ := newTestUsecase(&mockAPI{})
	ctx := context.Background()
	r := createRequest(t, uc)

	// drop the equipment catalog so contract creation cannot resolve it
	flat.data["wanzo_leasing_equipments"] = []byte(`[]`)

	res, err := uc.ApproveRequest(ctx, r.ID)
	if err != nil {
		t.Fatalf("ApproveRequest: %v", err)
	}
	if !errors.Is(res.ContractErr, domain.ErrEquipmentNotFound) {
		t.Fatalf("ContractErr = %v, want ErrEquipmentNotFound", res.ContractErr)
	}
	// approval stands even though the follow-up failed
	if res.Request.Status != domain.RequestApproved {
		t.Errorf("request status = %s, want approved", res.Request.Status)
	}
	if res.Contract != nil {
		t.Errorf("Contract = %+v, want nil", res.Contract)
	}
}

func TestApproveRejectedRequestDenied(t *testing.T) {
	uc, _, _ := newTestUsecase(&mockAPI{})
	ctx := context.Background()
	r := createRequest(t, uc)
	if _, err := uc.RejectRequest(ctx, r.ID, "budget insuffisant"); err != nil {
		t.Fatalf("RejectRequest: %v", err)
	}
	if _, err := uc.ApproveRequest(ctx, r.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("approve after reject err = %v, want ErrInvalidTransition", err)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	uc, _, _ := newTestUsecase(&mockAPI{})
	r := createRequest(t, uc)
	if _, err := uc.RejectRequest(context.Background(), r.ID, ""); !errors.Is(err, domain.ErrReasonRequired) {
		t.Fatalf("err = %v, want ErrReasonRequired", err)
	}
}

func TestRejectStoresReasonVerbatim(t *testing.T) {
	uc, _, _ := newTestUsecase(&mockAPI{})
	r := createRequest(t, uc)
	got, err := uc.RejectRequest(context.Background(), r.ID, "garantie manquante")
	if err != nil {
		t.Fatalf("RejectRequest: %v", err)
	}
	if got.Status != domain.RequestRejected || got.RejectionReason != "garantie manquante" {
		t.Errorf("rejected request = %+v", got)
	}
}

func approvedContract(t *testing.T, uc *Usecase) *domain.Contract {
	t.Helper()
	r := createRequest(t, uc)
	res, err := uc.ApproveRequest(context.Background(), r.ID)
	if err != nil || res.Contract == nil {
		t.Fatalf("ApproveRequest: err=%v contract=%v", err, res.Contract)
	}
	return res.Contract
}

func TestActivateStampsDate(t *testing.T) {
	uc, _, _ := newTestUsecase(&mockAPI{})
	ct := approvedContract(t, uc)

	got, err := uc.ActivateContract(context.Background(), ct.ID)
	if err != nil {
		t.Fatalf("ActivateContract: %v", err)
	}
	if got.Status != domain.ContractActive {
		t.Errorf("Status = %s, want active", got.Status)
	}
	if got.ActivationDate == nil || !got.ActivationDate.Equal(testNow) {
		t.Errorf("ActivationDate = %v, want %v", got.ActivationDate, testNow)
	}
}

func TestTerminateIsFinal(t *testing.T) {
	uc, _, _ := newTestUsecase(&mockAPI{})
	ctx := context.Background()
	ct := approvedContract(t, uc)
	if _, err := uc.ActivateContract(ctx, ct.ID); err != nil {
		t.Fatalf("ActivateContract: %v", err)
	}

	got, err := uc.TerminateContract(ctx, ct.ID, "defaut de paiement")
	if err != nil {
		t.Fatalf("TerminateContract: %v", err)
	}
	if got.Status != domain.ContractTerminated || got.TerminationReason != "defaut de paiement" {
		t.Errorf("terminated contract = %+v", got)
	}
	if got.TerminationDate == nil {
		t.Errorf("TerminationDate not stamped")
	}

	if _, err := uc.ActivateContract(ctx, ct.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("activate after terminate err = %v, want ErrInvalidTransition", err)
	}
}

func TestGenerateInvoiceActiveOnly(t *testing.T) {
	uc, _, _ := newTestUsecase(&mockAPI{})
	ctx := context.Background()
	ct := approvedContract(t, uc)

	if _, err := uc.GenerateInvoice(ctx, ct.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("invoice on pending contract err = %v, want ErrInvalidTransition", err)
	}

	if _, err := uc.ActivateContract(ctx, ct.ID); err != nil {
		t.Fatalf("ActivateContract: %v", err)
	}
	got, err := uc.GenerateInvoice(ctx, ct.ID)
	if err != nil {
		t.Fatalf("GenerateInvoice: %v", err)
	}
	wantNext := testNow.AddDate(0, 1, 0)
	if got.NextInvoiceDate == nil || !got.NextInvoiceDate.Equal(wantNext) {
		t.Errorf("NextInvoiceDate = %v, want %v", got.NextInvoiceDate, wantNext)
	}
}

func TestOrderEquipmentResetsActiveContract(t *testing.T) {
	uc, _, _ := newTestUsecase(&mockAPI{})
	ctx := context.Background()
	ct := approvedContract(t, uc)
	if _, err := uc.ActivateContract(ctx, ct.ID); err != nil {
		t.Fatalf("ActivateContract: %v", err)
	}

	got, err := uc.OrderEquipment(ctx, ct.ID)
	if err != nil {
		t.Fatalf("OrderEquipment: %v", err)
	}
	if !got.EquipmentOrdered || !got.PaymentInitiated {
		t.Errorf("flags = ordered:%v initiated:%v, want both true", got.EquipmentOrdered, got.PaymentInitiated)
	}
	if got.EquipmentOrderedDate == nil || got.PaymentInitiatedDate == nil {
		t.Errorf("order/payment dates not stamped")
	}
	// ordering drops the contract back to pending even from active
	if got.Status != domain.ContractPending {
		t.Errorf("Status = %s, want pending", got.Status)
	}
}

func TestScheduleMaintenance(t *testing.T) {
	uc, flat, _ := newTestUsecase(&mockAPI{})
	ctx := context.Background()
	ct := approvedContract(t, uc)

	at := testNow.AddDate(0, 0, 14)
	m, err := uc.ScheduleMaintenance(ctx, ct.ID, at, "revision moteur")
	if err != nil {
		t.Fatalf("ScheduleMaintenance: %v", err)
	}
	if m.ContractID != ct.ID || m.EquipmentID != ct.EquipmentID {
		t.Errorf("maintenance = %+v", m)
	}

	var all []domain.Maintenance
	if !flat.GetJSON(ctx, "wanzo_leasing_maintenances", &all) || len(all) != 1 {
		t.Errorf("maintenances = %+v, want one entry", all)
	}
}

func TestUnknownIDs(t *testing.T) {
	uc, _, _ := newTestUsecase(&mockAPI{})
	ctx := context.Background()
	if _, err := uc.ApproveRequest(ctx, "WL-99999999"); !errors.Is(err, domain.ErrRequestNotFound) {
		t.Errorf("ApproveRequest err = %v, want ErrRequestNotFound", err)
	}
	if _, err := uc.ActivateContract(ctx, "LC-99999"); !errors.Is(err, domain.ErrContractNotFound) {
		t.Errorf("ActivateContract err = %v, want ErrContractNotFound", err)
	}
	if _, err := uc.OrderEquipment(ctx, "LC-99999"); !errors.Is(err, domain.ErrContractNotFound) {
		t.Errorf("OrderEquipment err = %v, want ErrContractNotFound", err)
	}
}

func TestSavePortfoliosKeepsLeasingVariantOnly(t *testing.T) {
	uc, flat, _ := newTestUsecase(&mockAPI{})
	ctx := context.Background()

	uc.SavePortfolios(ctx, []portfolio.Portfolio{
		{ID: "lp-1", Type: portfolio.TypeLeasing, Leasing: &portfolio.LeasingDetails{}},
		{ID: "tp-1", Type: portfolio.TypeTraditional},
		{ID: "lp-broken", Type: portfolio.TypeLeasing}, // nil details never narrows
	})

	var stored []portfolio.Portfolio
	if !flat.GetJSON(ctx, storage.KeyLeasingPortfolios, &stored) {
		t.Fatal("projection key not written")
	}
	if len(stored) != 1 || stored[0].ID != "lp-1" {
		t.Fatalf("projection = %+v, want only lp-1", stored)
	}

	got := uc.Portfolios(ctx)
	if len(got) != 1 || got[0].ID != "lp-1" {
		t.Fatalf("Portfolios() = %+v, want only lp-1", got)
	}
}

func TestPortfoliosEmptyBeforeProjection(t *testing.T) {
	uc, _, _ := newTestUsecase(&mockAPI{})
	if got := uc.Portfolios(context.Background()); len(got) != 0 {
		t.Fatalf("Portfolios() before projection = %+v, want none", got)
	}
}
