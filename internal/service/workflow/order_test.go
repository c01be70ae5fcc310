package workflow

import (
	"testing"

	"campusdrive/internal/domain"
	models "campusdrive/internal/domain/models/workflow"
	workflowSvc "campusdrive/internal/domain/services/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaceInColumn(t *testing.T) {
	tests := []struct {
		name    string
		waiting []string
		done    []string
		dest    models.Status
		index   *int
		wantW   []string
		wantD   []string
	}{
		{"append", []string{"a", "x"}, []string{"b"}, models.StatusDone, nil, []string{"a"}, []string{"b", "x"}},
		{"front", []string{"x"}, []string{"b", "c"}, models.StatusDone, intPtr(0), []string{}, []string{"x", "b", "c"}},
		{"clamped high", []string{"x"}, []string{"b"}, models.StatusDone, intPtr(9), []string{}, []string{"b", "x"}},
		{"clamped low", []string{"x"}, []string{"b"}, models.StatusDone, intPtr(-3), []string{}, []string{"x", "b"}},
		{"same column", []string{"x", "a", "b"}, nil, models.StatusWaiting, intPtr(2), []string{"a", "b", "x"}, []string{}},
		{"duplicates collapsed", []string{"x", "a", "x"}, []string{"x"}, models.StatusWaiting, intPtr(1), []string{"a", "x"}, []string{}},
		{"not present", []string{"a"}, nil, models.StatusDone, nil, []string{"a"}, []string{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := models.NewRequireOrder("u")
			order.Waiting = append(order.Waiting, tt.waiting...)
			order.Done = append(order.Done, tt.done...)

			placeInColumn(order, "x", tt.dest, tt.index)

			assert.Equal(t, tt.wantW, order.Waiting)
			assert.Equal(t, tt.wantD, order.Done)
		})
	}
}

func TestReorder_AcrossColumns(t *testing.T) {
	f := newFixture(t)
	r1 := f.create(t, alice, bob)
	r2 := f.create(t, alice, bob)
	r3 := f.create(t, alice, bob)
	f.status(t, alice, r1.ID, models.StatusProcessing)

	order, err := f.svc.Reorder(f.ctx, alice, &workflowSvc.ReorderRequest{
		RequirementID: r3.ID,
		Source:        workflowSvc.Position{Column: models.StatusWaiting, Index: 1},
		Destination:   workflowSvc.Position{Column: models.StatusProcessing, Index: 0},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{r2.ID}, order.Waiting)
	assert.Equal(t, []string{r3.ID, r1.ID}, order.Processing)
	assert.Equal(t, order, f.order(t, "alice"))

	// another participant's board is private
	assert.Equal(t, []string{r1.ID, r2.ID, r3.ID}, f.order(t, "bob").Waiting)
}

func TestReorder_WithinColumn(t *testing.T) {
	f := newFixture(t)
	r1 := f.create(t, alice, bob)
	r2 := f.create(t, alice, bob)
	r3 := f.create(t, alice, bob)

	order, err := f.svc.Reorder(f.ctx, bob, &workflowSvc.ReorderRequest{
		RequirementID: r1.ID,
		Source:        workflowSvc.Position{Column: models.StatusWaiting, Index: 0},
		Destination:   workflowSvc.Position{Column: models.StatusWaiting, Index: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{r2.ID, r3.ID, r1.ID}, order.Waiting)
	assert.Equal(t, models.StatusWaiting, f.requirement(t, r1.ID).To[0].Status, "reorder never changes status")
}

func TestReorder_Rejections(t *testing.T) {
	f := newFixture(t)
	req := f.create(t, alice, bob)

	_, err := f.svc.Reorder(f.ctx, bob, &workflowSvc.ReorderRequest{
		RequirementID: req.ID,
		Source:        workflowSvc.Position{Column: "backlog"},
		Destination:   workflowSvc.Position{Column: models.StatusDone},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.Reorder(f.ctx, carol, &workflowSvc.ReorderRequest{
		RequirementID: req.ID,
		Source:        workflowSvc.Position{Column: models.StatusWaiting},
		Destination:   workflowSvc.Position{Column: models.StatusDone},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
