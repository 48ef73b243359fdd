package remotemock

import (
	"context"
	"errors"

	"wanzo-portfolio/internal/domain/disbursement"
	"wanzo-portfolio/internal/domain/leasing"
	"wanzo-portfolio/internal/domain/syncqueue"
)

// ErrDown is what every method returns when its function field is nil: the
// default mock behaves like an unreachable remote, which is the branch most
// tests care about.
var ErrDown = errors.New("remote unavailable")

// API is a function-backed mock of the remote system-of-record client.
type API struct {
	CreateDisbursementFn  func(ctx context.Context, d *disbursement.Disbursement) (*disbursement.Disbursement, error)
	UpdateDisbursementFn  func(ctx context.Context, d *disbursement.Disbursement) (*disbursement.Disbursement, error)
	ConfirmDisbursementFn func(ctx context.Context, id string, conf disbursement.Confirmation) (*disbursement.Disbursement, error)
	CancelDisbursementFn  func(ctx context.Context, id string) error

	CreateLeasingRequestFn  func(ctx context.Context, r *leasing.Request) (*leasing.Request, error)
	ApproveLeasingRequestFn func(ctx context.Context, id string) error
	RejectLeasingRequestFn  func(ctx context.Context, id, reason string) error
	CreateLeasingContractFn func(ctx context.Context, ct *leasing.Contract) (*leasing.Contract, error)
	UpdateLeasingContractFn func(ctx context.Context, ct *leasing.Contract) (*leasing.Contract, error)

	PushMutationFn func(ctx context.Context, item syncqueue.Item) error
}

func (m *API) CreateDisbursement(ctx context.Context, d *disbursement.Disbursement) (*disbursement.Disbursement, error) {
	if m.CreateDisbursementFn != nil {
		return m.CreateDisbursementFn(ctx, d)
	}
	return nil, ErrDown
}

func (m *API) UpdateDisbursement(ctx context.Context, d *disbursement.Disbursement) (*disbursement.Disbursement, error) {
	if m.UpdateDisbursementFn != nil {
		return m.UpdateDisbursementFn(ctx, d)
	}
	return nil, ErrDown
}

func (m *API) ConfirmDisbursement(ctx context.Context, id string, conf disbursement.Confirmation) (*disbursement.Disbursement, error) {
	if m.ConfirmDisbursementFn != nil {
		return m.ConfirmDisbursementFn(ctx, id, conf)
	}
	return nil, ErrDown
}

func (m *API) CancelDisbursement(ctx context.Context, id string) error {
	if m.CancelDisbursementFn != nil {
		return m.CancelDisbursementFn(ctx, id)
	}
	return ErrDown
}

func (m *API) CreateLeasingRequest(ctx context.Context, r *leasing.Request) (*leasing.Request, error) {
	if m.CreateLeasingRequestFn != nil {
		return m.CreateLeasingRequestFn(ctx, r)
	}
	return nil, ErrDown
}

func (m *API) ApproveLeasingRequest(ctx context.Context, id string) error {
	if m.ApproveLeasingRequestFn != nil {
		return m.ApproveLeasingRequestFn(ctx, id)
	}
	return ErrDown
}

func (m *API) RejectLeasingRequest(ctx context.Context, id, reason string) error {
	if m.RejectLeasingRequestFn != nil {
		return m.RejectLeasingRequestFn(ctx, id, reason)
	}
	return ErrDown
}

func (m *API) CreateLeasingContract(ctx context.Context, ct *leasing.Contract) (*leasing.Contract, error) {
	if m.CreateLeasingContractFn != nil {
		return m.CreateLeasingContractFn(ctx, ct)
	}
	return nil, ErrDown
}

func (m *API) UpdateLeasingContract(ctx context.Context, ct *leasing.Contract) (*leasing.Contract, error) {
	if m.UpdateLeasingContractFn != nil {
		return m.UpdateLeasingContractFn(ctx, ct)
	}
	return nil, ErrDown
}

func (m *API) PushMutation(ctx context.Context, item syncqueue.Item) error {
	if m.PushMutationFn != nil {
		return m.PushMutationFn(ctx, item)
	}
	return ErrDown
}
