package disposal

import (
	"context"
	"errors"
	"strings"
	"time"

	"fleetauctiongo/internal/audit"
	"fleetauctiongo/internal/models"
	"fleetauctiongo/internal/registry"
	"fleetauctiongo/internal/store"

	"github.com/google/uuid"
)

// SubmitInput carries the raw field values of a new disposal request. Enum
// fields arrive as strings and are rejected here when unknown.
type SubmitInput struct {
	VehicleID      string
	RequesterID    string
	Reason         string
	Method         string
	Condition      string
	Mileage        int64
	EstimatedValue float64
}

type IDisposalService interface {
	Submit(ctx context.Context, in SubmitInput) (*models.DisposalRequest, error)
	Approve(ctx context.Context, id string) (*models.DisposalRequest, error)
	Reject(ctx context.Context, id, reason string) (*models.DisposalRequest, error)
	// MarkTransferred records the ownership transfer performed by an external
	// collaborator; the engine never initiates this transition itself.
	MarkTransferred(ctx context.Context, id string) (*models.DisposalRequest, error)
	Get(ctx context.Context, id string) (*models.DisposalRequest, error)
	List(ctx context.Context, status string, limit, offset int) ([]models.DisposalRequest, error)
}

type disposalService struct {
	store    store.Store
	vehicles registry.VehicleRegistry
	sink     audit.Sink
}

func NewDisposalService(st store.Store, vehicles registry.VehicleRegistry, sink audit.Sink) IDisposalService {
	return &disposalService{store: st, vehicles: vehicles, sink: sink}
}

func (svc *disposalService) Submit(ctx context.Context, in SubmitInput) (*models.DisposalRequest, error) {
	if in.VehicleID == "" {
		return nil, models.Validationf("vehicle_id is required")
	}
	if in.RequesterID == "" {
		return nil, models.Validationf("requester_id is required")
	}
	reason := models.DisposalReason(in.Reason)
	if !models.ValidDisposalReason(reason) {
		return nil, models.Validationf("unknown disposal reason %q", in.Reason)
	}
	method := models.DisposalMethod(in.Method)
	if !models.ValidDisposalMethod(method) {
		return nil, models.Validationf("unknown disposal method %q", in.Method)
	}
	condition := models.ConditionRating(in.Condition)
	if !models.ValidConditionRating(condition) {
		return nil, models.Validationf("unknown condition rating %q", in.Condition)
	}
	if in.Mileage < 0 {
		return nil, models.Validationf("mileage must not be negative")
	}
	if in.EstimatedValue < 0 {
		return nil, models.Validationf("estimated value must not be negative")
	}

	vehicle, err := svc.vehicles.GetVehicle(ctx, in.VehicleID)
	if err != nil {
		return nil, err
	}
	if vehicle == nil {
		return nil, models.Validationf("vehicle %s does not exist", in.VehicleID)
	}

	now := time.Now().UTC()
	req := &models.DisposalRequest{
		ID:             uuid.NewString(),
		DisposalNumber: newDisposalNumber(now),
		VehicleID:      in.VehicleID,
		RequesterID:    in.RequesterID,
		Reason:         reason,
		Method:         method,
		Condition:      condition,
		Mileage:        in.Mileage,
		EstimatedValue: in.EstimatedValue,
		ApprovalStatus: models.ApprovalPending,
		Status:         models.DisposalPendingApproval,
		RequestedAt:    now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := svc.store.CreateDisposal(ctx, req); err != nil {
		return nil, err
	}

	svc.sink.Emit(ctx, "disposal.submitted", map[string]any{
		"disposal_id":     req.ID,
		"disposal_number": req.DisposalNumber,
		"vehicle_id":      req.VehicleID,
	})
	return req, nil
}

func (svc *disposalService) Approve(ctx context.Context, id string) (*models.DisposalRequest, error) {
	req, err := svc.store.DecideDisposal(ctx, id,
		models.ApprovalApproved, models.DisposalListed, "")
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, models.NotFoundf("disposal request %s not found", id)
	case errors.Is(err, store.ErrStaleState):
		return nil, models.InvalidStatef("disposal request %s is not pending approval", id)
	case err != nil:
		return nil, err
	}

	svc.sink.Emit(ctx, "disposal.approved", map[string]any{
		"disposal_id":     req.ID,
		"disposal_number": req.DisposalNumber,
	})
	return req, nil
}

func (svc *disposalService) Reject(ctx context.Context, id, reason string) (*models.DisposalRequest, error) {
	req, err := svc.store.DecideDisposal(ctx, id,
		models.ApprovalRejected, models.DisposalCancelled, reason)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, models.NotFoundf("disposal request %s not found", id)
	case errors.Is(err, store.ErrStaleState):
		return nil, models.InvalidStatef("disposal request %s is not pending approval", id)
	case err != nil:
		return nil, err
	}

	svc.sink.Emit(ctx, "disposal.rejected", map[string]any{
		"disposal_id":     req.ID,
		"disposal_number": req.DisposalNumber,
		"reason":          reason,
	})
	return req, nil
}

func (svc *disposalService) MarkTransferred(ctx context.Context, id string) (*models.DisposalRequest, error) {
	req, err := svc.store.TransitionDisposal(ctx, id,
		models.DisposalSold, models.DisposalTransferred)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return nil, models.NotFoundf("disposal request %s not found", id)
	case errors.Is(err, store.ErrStaleState):
		return nil, models.InvalidStatef("disposal request %s has not been sold", id)
	case err != nil:
		return nil, err
	}

	svc.sink.Emit(ctx, "disposal.transferred", map[string]any{
		"disposal_id":     req.ID,
		"disposal_number": req.DisposalNumber,
	})
	return req, nil
}

func (svc *disposalService) Get(ctx context.Context, id string) (*models.DisposalRequest, error) {
	req, err := svc.store.GetDisposal(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, models.NotFoundf("disposal request %s not found", id)
	}
	return req, err
}

func (svc *disposalService) List(ctx context.Context, status string, limit, offset int) ([]models.DisposalRequest, error) {
	st := models.DisposalStatus(status)
	if status != "" && !models.ValidDisposalStatus(st) {
		return nil, models.Validationf("unknown disposal status %q", status)
	}
	return svc.store.ListDisposals(ctx, st, limit, offset)
}

// newDisposalNumber builds the human-readable request number, e.g.
// DISP-20260823-4F2A91BC. The UUID fragment keeps it unique across every
// request ever created.
func newDisposalNumber(now time.Time) string {
	frag := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "DISP-" + now.Format("20060102") + "-" + frag
}
