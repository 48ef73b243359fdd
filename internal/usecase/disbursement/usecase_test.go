package disbursement

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"regexp"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"wanzo-portfolio/internal/adapter/storage"
	domain "wanzo-portfolio/internal/domain/disbursement"
	"wanzo-portfolio/internal/domain/syncqueue"
)

var errRemoteDown = errors.New("remote unavailable")

// mockAPI drives remote behavior per test through function fields; a nil field
// means "fail", matching how these tests exercise the local fallback.
type mockAPI struct {
	createFn  func(ctx context.Context, d *domain.Disbursement) (*domain.Disbursement, error)
	updateFn  func(ctx context.Context, d *domain.Disbursement) (*domain.Disbursement, error)
	confirmFn func(ctx context.Context, id string, conf domain.Confirmation) (*domain.Disbursement, error)
	cancelFn  func(ctx context.Context, id string) error
}

func (m *mockAPI) CreateDisbursement(ctx context.Context, d *domain.Disbursement) (*domain.Disbursement, error) {
	if m.createFn == nil {
		return nil, errRemoteDown
	}
	return m.createFn(ctx, d)
}

func (m *mockAPI) UpdateDisbursement(ctx context.Context, d *domain.Disbursement) (*domain.Disbursement, error) {
	if m.updateFn == nil {
		return nil, errRemoteDown
	}
	return m.updateFn(ctx, d)
}

func (m *mockAPI) ConfirmDisbursement(ctx context.Context, id string, conf domain.Confirmation) (*domain.Disbursement, error) {
	if m.confirmFn == nil {
		return nil, errRemoteDown
	}
	return m.confirmFn(ctx, id, conf)
}

func (m *mockAPI) CancelDisbursement(ctx context.Context, id string) error {
	if m.cancelFn == nil {
		return errRemoteDown
	}
	return m.cancelFn(ctx, id)
}

// memFlat is an in-memory stand-in for the flat storage surface.
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

func (f *memFlat) RemoveItem(_ context.Context, key string) bool {
	_, ok := f.data[key]
	delete(f.data, key)
	return ok
}

type memOutbox struct {
	items  []syncqueue.Item
	pruned [][2]string
}

func (o *memOutbox) Enqueue(_ context.Context, item *syncqueue.Item) error {
	o.items = append(o.items, *item)
	return nil
}

func (o *memOutbox) Prune(_ context.Context, entity, entityID string) error {
	o.pruned = append(o.pruned, [2]string{entity, entityID})
	kept := o.items[:0]
	for _, it := range o.items {
		if it.Entity != entity || it.EntityID != entityID {
			kept = append(kept, it)
		}
	}
	o.items = kept
	return nil
}

func newTestUsecase(api *mockAPI) (*Usecase, *memFlat, *memOutbox) {
	flat := newMemFlat()
	outbox := &memOutbox{}
	log := logrus.New()
	log.SetOutput(io.Discard)
	uc := NewUsecase(api, flat, outbox, log)
	uc.now = func() time.Time { return time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC) }
	return uc, flat, outbox
}

func validInput() CreateInput {
	return CreateInput{
		PortfolioID:       "trad-1",
		ContractReference: "WZ-C-001",
		Amount:            decimal.NewFromInt(2_500_000),
		DebitAccount:      domain.DebitAccount{AccountNumber: "00123", BankName: "Rawbank"},
		Beneficiary: domain.Beneficiary{
			Kind: domain.BeneficiaryBank, Name: "Kivu Agro SARL",
			AccountNumber: "00987", BankName: "Equity BCDC",
		},
	}
}

func TestCreateRequiresContract(t *testing.T) {
	uc, _, _ := newTestUsecase(&mockAPI{})
	in := validInput()
	in.ContractReference = ""
	if _, err := uc.Create(context.Background(), in); !errors.Is(err, domain.ErrContractRequired) {
		t.Fatalf("err = %v, want ErrContractRequired", err)
	}
}

func TestCreateDefaultsPendingAndCurrency(t *testing.T) {
	uc, _, outbox := newTestUsecase(&mockAPI{}) // remote down: local fallback
	d, err := uc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.Status != domain.StatusPending {
		t.Errorf("Status = %s, want pending", d.Status)
	}
	if d.Currency != domain.DefaultCurrency {
		t.Errorf("Currency = %q, want %q", d.Currency, domain.DefaultCurrency)
	}
	if ok, _ := regexp.MatchString(`^DISB-2026-\d{6}$`, d.ID); !ok {
		t.Errorf("ID = %q, want DISB-<year>-<seq>", d.ID)
	}
	if len(outbox.items) != 1 || outbox.items[0].Action != syncqueue.ActionCreate {
		t.Errorf("outbox = %+v, want one create item", outbox.items)
	}
}

func TestCreateRemoteFirstSkipsOutbox(t *testing.T) {
	api := &mockAPI{
		createFn: func(_ context.Context, d *domain.Disbursement) (*domain.Disbursement, error) {
			remote := *d
			remote.TransactionReference = "" // server echo
			return &remote, nil
		},
	}
	uc, flat, outbox := newTestUsecase(api)
	d, err := uc.Create(context.Background(), validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(outbox.items) != 0 {
		t.Errorf("outbox has %d items after remote success, want 0", len(outbox.items))
	}
	// remote success still persists locally for offline reads
	var all []domain.Disbursement
	if !flat.GetJSON(context.Background(), storage.KeyDisbursements, &all) || len(all) != 1 || all[0].ID != d.ID {
		t.Errorf("local list = %+v, want the created order", all)
	}
}

func TestCreateUpdatesContractProjection(t *testing.T) {
	uc, _, _ := newTestUsecase(&mockAPI{})
	ctx := context.Background()
	d, err := uc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	scoped := uc.GetByContract(ctx, "WZ-C-001")
	if len(scoped) != 1 || scoped[0].ID != d.ID {
		t.Errorf("GetByContract = %+v, want the created order", scoped)
	}
	if got := uc.GetByContract(ctx, "WZ-C-999"); len(got) != 0 {
		t.Errorf("GetByContract(unknown) = %+v, want empty", got)
	}
}

func TestConfirmSetsCompletedAndTransactionFields(t *testing.T) {
	uc, _, _ := newTestUsecase(&mockAPI{})
	ctx := context.Background()
	d, err := uc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	conf := domain.Confirmation{
		TransactionReference: "TXN-778899",
		ExecutionDate:        "2026-04-02",
		ValueDate:            "2026-04-03",
	}
	got, err := uc.Confirm(ctx, d.ID, conf)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if got.Status != domain.StatusCompleted {
		t.Errorf("Status = %s, want completed", got.Status)
	}
	if got.TransactionReference != conf.TransactionReference ||
		got.ExecutionDate != conf.ExecutionDate ||
		got.ValueDate != conf.ValueDate {
		t.Errorf("transaction fields not persisted: %+v", got)
	}

	// the persisted copy carries the same fields
	stored := uc.Get(ctx, d.ID)
	if stored == nil || stored.Status != domain.StatusCompleted || stored.TransactionReference != "TXN-778899" {
		t.Errorf("stored copy = %+v", stored)
	}

	// completed is terminal: a second confirm is rejected
	if _, err := uc.Confirm(ctx, d.ID, conf); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("second Confirm err = %v, want ErrInvalidTransition", err)
	}
}

func TestConfirmUnknownID(t *testing.T) {
	uc, _, _ := newTestUsecase(&mockAPI{})
	_, err := uc.Confirm(context.Background(), "DISB-2026-999999", domain.Confirmation{})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateUnknownID(t *testing.T) {
	uc, _, _ := newTestUsecase(&mockAPI{})
	_, err := uc.Update(context.Background(), &domain.Disbursement{ID: "DISB-2026-999999"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateStatusRidesTransitionTable(t *testing.T) {
	uc, _, _ := newTestUsecase(&mockAPI{})
	ctx := context.Background()
	d, err := uc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// pending → completed only goes through Confirm
	jump := *d
	jump.Status = domain.StatusCompleted
	if _, err := uc.Update(ctx, &jump); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("completed via Update: err = %v, want ErrInvalidTransition", err)
	}

	// pending → processing is a legal table move
	step := *d
	step.Status = domain.StatusProcessing
	out, err := uc.Update(ctx, &step)
	if err != nil {
		t.Fatalf("Update to processing: %v", err)
	}
	if out.Status != domain.StatusProcessing {
		t.Fatalf("status = %s, want processing", out.Status)
	}

	// processing → pending is not in the table
	back := *out
	back.Status = domain.StatusPending
	if _, err := uc.Update(ctx, &back); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("processing back to pending: err = %v, want ErrInvalidTransition", err)
	}
}

func TestUpdateBlankStatusKeepsCurrent(t *testing.T) {
	uc, _, _ := newTestUsecase(&mockAPI{})
	ctx := context.Background()
	d, err := uc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	edit := *d
	edit.Status = ""
	edit.Amount = decimal.NewFromInt(9_000_000)
	out, err := uc.Update(ctx, &edit)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if out.Status != domain.StatusPending {
		t.Fatalf("status = %s, want pending preserved", out.Status)
	}
	if !out.Amount.Equal(decimal.NewFromInt(9_000_000)) {
		t.Fatalf("amount = %s, want edited value", out.Amount)
	}
	if !out.CreatedAt.Equal(d.CreatedAt) {
		t.Fatalf("created_at moved: %v vs %v", out.CreatedAt, d.CreatedAt)
	}
}

func TestCancelRemovesEverywhere(t *testing.T) {
	uc, _, outbox := newTestUsecase(&mockAPI{})
	ctx := context.Background()
	d, err := uc.Create(ctx, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !uc.Cancel(ctx, d.ID) {
		t.Fatalf("Cancel returned false for existing order")
	}
	if uc.Get(ctx, d.ID) != nil {
		t.Errorf("order still readable after cancel")
	}
	if got := uc.GetByContract(ctx, "WZ-C-001"); len(got) != 0 {
		t.Errorf("contract projection still holds the order: %+v", got)
	}
	if len(outbox.items) != 0 {
		t.Errorf("outbox still holds %d items after cancel", len(outbox.items))
	}
	if len(outbox.pruned) != 1 || outbox.pruned[0] != [2]string{"disbursement", d.ID} {
		t.Errorf("prune calls = %v", outbox.pruned)
	}
}

func TestCancelUnknownIDReturnsFalse(t *testing.T) {
	uc, _, _ := newTestUsecase(&mockAPI{})
	if uc.Cancel(context.Background(), "DISB-2026-000000") {
		t.Fatalf("Cancel returned true for unknown id")
	}
}
