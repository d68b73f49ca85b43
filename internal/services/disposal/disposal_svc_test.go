package disposal

import (
	"context"
	"strings"
	"testing"

	"fleetauctiongo/internal/audit"
	"fleetauctiongo/internal/models"
	"fleetauctiongo/internal/registry"
	"fleetauctiongo/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSvc() (IDisposalService, *store.MemStore) {
	st := store.NewMemStore()
	reg := registry.NewStaticRegistry(
		models.Vehicle{ID: "veh-1", Make: "Ford", Model: "F-250", Year: 2014},
	)
	return NewDisposalService(st, reg, audit.NopSink{}), st
}

func validInput() SubmitInput {
	return SubmitInput{
		VehicleID:      "veh-1",
		RequesterID:    "usr-1",
		Reason:         "end_of_life",
		Method:         "auction",
		Condition:      "fair",
		Mileage:        182000,
		EstimatedValue: 100000,
	}
}

func TestSubmit(t *testing.T) {
	svc, _ := newTestSvc()

	req, err := svc.Submit(context.Background(), validInput())
	require.NoError(t, err)

	assert.NotEmpty(t, req.ID)
	assert.True(t, strings.HasPrefix(req.DisposalNumber, "DISP-"), req.DisposalNumber)
	assert.Equal(t, models.ApprovalPending, req.ApprovalStatus)
	assert.Equal(t, models.DisposalPendingApproval, req.Status)
}

func TestSubmitValidation(t *testing.T) {
	svc, _ := newTestSvc()
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*SubmitInput)
	}{
		{"missing vehicle id", func(in *SubmitInput) { in.VehicleID = "" }},
		{"missing requester id", func(in *SubmitInput) { in.RequesterID = "" }},
		{"unknown reason", func(in *SubmitInput) { in.Reason = "totaled" }},
		{"unknown method", func(in *SubmitInput) { in.Method = "raffle" }},
		{"unknown condition", func(in *SubmitInput) { in.Condition = "mint" }},
		{"negative mileage", func(in *SubmitInput) { in.Mileage = -1 }},
		{"negative estimated value", func(in *SubmitInput) { in.EstimatedValue = -0.01 }},
		{"vehicle not in registry", func(in *SubmitInput) { in.VehicleID = "veh-unknown" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			_, err := svc.Submit(ctx, in)
			require.Error(t, err)
			assert.Equal(t, models.KindValidation, models.KindOf(err))
		})
	}
}

func TestSubmitDisposalNumbersUnique(t *testing.T) {
	svc, _ := newTestSvc()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		req, err := svc.Submit(ctx, validInput())
		require.NoError(t, err)
		require.False(t, seen[req.DisposalNumber], "duplicate disposal number %s", req.DisposalNumber)
		seen[req.DisposalNumber] = true
	}
}

func TestApprove(t *testing.T) {
	svc, _ := newTestSvc()
	ctx := context.Background()

	req, err := svc.Submit(ctx, validInput())
	require.NoError(t, err)

	approved, err := svc.Approve(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalApproved, approved.ApprovalStatus)
	assert.Equal(t, models.DisposalListed, approved.Status)

	// Second approval loses.
	_, err = svc.Approve(ctx, req.ID)
	require.Error(t, err)
	assert.Equal(t, models.KindInvalidState, models.KindOf(err))

	// As does rejecting an already-approved request.
	_, err = svc.Reject(ctx, req.ID, "changed my mind")
	require.Error(t, err)
	assert.Equal(t, models.KindInvalidState, models.KindOf(err))
}

func TestApproveUnknown(t *testing.T) {
	svc, _ := newTestSvc()

	_, err := svc.Approve(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

func TestRejectIsTerminal(t *testing.T) {
	svc, _ := newTestSvc()
	ctx := context.Background()

	req, err := svc.Submit(ctx, validInput())
	require.NoError(t, err)

	rejected, err := svc.Reject(ctx, req.ID, "asset still serviceable")
	require.NoError(t, err)
	assert.Equal(t, models.ApprovalRejected, rejected.ApprovalStatus)
	assert.Equal(t, models.DisposalCancelled, rejected.Status)
	assert.Equal(t, "asset still serviceable", rejected.RejectReason)

	_, err = svc.Approve(ctx, req.ID)
	require.Error(t, err)
	assert.Equal(t, models.KindInvalidState, models.KindOf(err))
}

func TestMarkTransferredRequiresSold(t *testing.T) {
	svc, _ := newTestSvc()
	ctx := context.Background()

	req, err := svc.Submit(ctx, validInput())
	require.NoError(t, err)

	_, err = svc.MarkTransferred(ctx, req.ID)
	require.Error(t, err)
	assert.Equal(t, models.KindInvalidState, models.KindOf(err))
}

func TestList(t *testing.T) {
	svc, _ := newTestSvc()
	ctx := context.Background()

	first, err := svc.Submit(ctx, validInput())
	require.NoError(t, err)
	_, err = svc.Submit(ctx, validInput())
	require.NoError(t, err)
	_, err = svc.Approve(ctx, first.ID)
	require.NoError(t, err)

	listed, err := svc.List(ctx, "listed", 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, first.ID, listed[0].ID)

	_, err = svc.List(ctx, "archived", 10, 0)
	require.Error(t, err)
	assert.Equal(t, models.KindValidation, models.KindOf(err))
}
