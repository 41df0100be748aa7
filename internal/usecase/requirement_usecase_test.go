package usecase

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicemarket/internal/domain/entity"
	"servicemarket/pkg/errors"
)

func validRequirement() CreateRequirementInput {
	return CreateRequirementInput{
		Title:       "Fix pipe",
		Description: "Leaky pipe",
		Price:       50,
		Location:    "NYC",
	}
}

func TestCreateRequirement_StartsPending(t *testing.T) {
	f := newFixture()
	uc := f.requirementUseCase()

	requirement, err := uc.CreateRequirement(context.Background(), "C1", validRequirement())
	require.NoError(t, err)

	assert.NotEmpty(t, requirement.ID)
	assert.Equal(t, entity.RequirementPending, requirement.Status)
	assert.Equal(t, entity.DefaultCategory, requirement.Category)
	assert.Equal(t, "C1", requirement.ClientID)

	stored, err := f.requirements.GetByID(context.Background(), requirement.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RequirementPending, stored.Status)
}

func TestCreateRequirement_Validation(t *testing.T) {
	tests := []struct {
		name   string
		client string
		mutate func(*CreateRequirementInput)
	}{
		{"blank title", "C1", func(in *CreateRequirementInput) { in.Title = "  " }},
		{"blank description", "C1", func(in *CreateRequirementInput) { in.Description = "" }},
		{"blank location", "C1", func(in *CreateRequirementInput) { in.Location = "" }},
		{"zero price", "C1", func(in *CreateRequirementInput) { in.Price = 0 }},
		{"negative price", "C1", func(in *CreateRequirementInput) { in.Price = -5 }},
		{"missing client", "", func(in *CreateRequirementInput) {}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			input := validRequirement()
			tt.mutate(&input)

			_, err := f.requirementUseCase().CreateRequirement(context.Background(), tt.client, input)
			assert.True(t, errors.Is(err, errors.CodeValidation), "got %v", err)

			all, listErr := f.requirements.List(context.Background(), "")
			require.NoError(t, listErr)
			assert.Empty(t, all, "nothing is written on validation failure")
		})
	}
}

func TestListRequirements_AnnotatesClient(t *testing.T) {
	f := newFixture()
	uc := f.requirementUseCase()
	ctx := context.Background()
	client := f.addUser("carol", entity.RoleClient)

	_, err := uc.CreateRequirement(ctx, client.ID, validRequirement())
	require.NoError(t, err)
	_, err = uc.CreateRequirement(ctx, "ghost", validRequirement())
	require.NoError(t, err)

	views, err := uc.ListRequirements(ctx, "")
	require.NoError(t, err)
	require.Len(t, views, 2, "requirements with unknown clients are kept")

	byClient := map[string]*entity.UserSummary{}
	for _, v := range views {
		byClient[v.ClientID] = v.Client
	}
	assert.Equal(t, "carol", byClient[client.ID].Name)
	assert.Equal(t, "carol@example.com", byClient[client.ID].Email)
	assert.Equal(t, &entity.UserSummary{ID: "ghost"}, byClient["ghost"])

	mine, err := uc.ListRequirements(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, client.ID, mine[0].ClientID)
}

func TestGetRequirement_NotFound(t *testing.T) {
	_, err := newFixture().requirementUseCase().GetRequirement(context.Background(), "missing")
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestUpdateRequirement_AppliesPatch(t *testing.T) {
	f := newFixture()
	uc := f.requirementUseCase()
	ctx := context.Background()

	created, err := uc.CreateRequirement(ctx, "C1", validRequirement())
	require.NoError(t, err)

	updated, err := uc.UpdateRequirement(ctx, created.ID, UpdateRequirementInput{
		Title:  ptr("Fix two pipes"),
		Price:  ptr(80.0),
		Status: ptr(entity.RequirementActive),
	})
	require.NoError(t, err)
	assert.Equal(t, "Fix two pipes", updated.Title)
	assert.Equal(t, 80.0, updated.Price)
	assert.Equal(t, entity.RequirementActive, updated.Status)
	assert.Equal(t, "Leaky pipe", updated.Description)

	stored, err := f.requirements.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fix two pipes", stored.Title)
	assert.Equal(t, entity.RequirementActive, stored.Status)
	assert.Equal(t, "C1", stored.ClientID)
}

func TestUpdateRequirement_CompletedRejectsEveryPatch(t *testing.T) {
	patches := map[string]UpdateRequirementInput{
		"empty":       {},
		"title":       {Title: ptr("new")},
		"price":       {Price: ptr(10.0)},
		"same status": {Status: ptr(entity.RequirementCompleted)},
		"back":        {Status: ptr(entity.RequirementPending)},
	}

	for name, patch := range patches {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			uc := f.requirementUseCase()
			ctx := context.Background()

			created, err := uc.CreateRequirement(ctx, "C1", validRequirement())
			require.NoError(t, err)
			_, err = uc.SetRequirementStatus(ctx, created.ID, entity.RequirementCompleted)
			require.NoError(t, err)

			_, err = uc.UpdateRequirement(ctx, created.ID, patch)
			assert.True(t, errors.Is(err, errors.CodeForbiddenTransition), "got %v", err)

			stored, err := f.requirements.GetByID(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, "Fix pipe", stored.Title)
		})
	}
}

func TestUpdateRequirement_ConcurrentStatusChange(t *testing.T) {
	tests := []struct {
		name       string
		concurrent entity.RequirementStatus
		patch      UpdateRequirementInput
	}{
		{"completed before a field edit", entity.RequirementCompleted, UpdateRequirementInput{Title: ptr("edited")}},
		{"completed before a status edit", entity.RequirementCompleted, UpdateRequirementInput{Title: ptr("edited"), Status: ptr(entity.RequirementActive)}},
		{"activated before a status edit", entity.RequirementActive, UpdateRequirementInput{Title: ptr("edited"), Status: ptr(entity.RequirementCompleted)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			ctx := context.Background()

			created, err := f.requirementUseCase().CreateRequirement(ctx, "C1", validRequirement())
			require.NoError(t, err)

			racing := &racingRequirementRepo{
				RequirementRepository: f.requirements,
				race: func(ctx context.Context, id string) {
					require.NoError(t, f.requirements.SetStatus(ctx, id, tt.concurrent))
				},
			}
			uc := NewRequirementUseCase(racing, f.bids, f.projector)

			_, err = uc.UpdateRequirement(ctx, created.ID, tt.patch)
			assert.True(t, errors.Is(err, errors.CodeForbiddenTransition), "got %v", err)

			stored, err := f.requirements.GetByID(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, "Fix pipe", stored.Title)
			assert.Equal(t, tt.concurrent, stored.Status)
		})
	}
}

func TestUpdateRequirement_StatusOnlyMovesForward(t *testing.T) {
	f := newFixture()
	uc := f.requirementUseCase()
	ctx := context.Background()

	created, err := uc.CreateRequirement(ctx, "C1", validRequirement())
	require.NoError(t, err)
	_, err = uc.SetRequirementStatus(ctx, created.ID, entity.RequirementActive)
	require.NoError(t, err)

	_, err = uc.UpdateRequirement(ctx, created.ID, UpdateRequirementInput{Status: ptr(entity.RequirementPending)})
	assert.True(t, errors.Is(err, errors.CodeForbiddenTransition))

	_, err = uc.UpdateRequirement(ctx, created.ID, UpdateRequirementInput{Status: ptr(entity.RequirementStatus("Archived"))})
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = uc.UpdateRequirement(ctx, created.ID, UpdateRequirementInput{Title: ptr(" ")})
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestUpdateRequirement_NotFound(t *testing.T) {
	_, err := newFixture().requirementUseCase().UpdateRequirement(context.Background(), "missing", UpdateRequirementInput{Title: ptr("x")})
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestSetRequirementStatus_IsUnguarded(t *testing.T) {
	f := newFixture()
	uc := f.requirementUseCase()
	ctx := context.Background()

	created, err := uc.CreateRequirement(ctx, "C1", validRequirement())
	require.NoError(t, err)

	_, err = uc.SetRequirementStatus(ctx, created.ID, entity.RequirementCompleted)
	require.NoError(t, err)
	reopened, err := uc.SetRequirementStatus(ctx, created.ID, entity.RequirementPending)
	require.NoError(t, err)
	assert.Equal(t, entity.RequirementPending, reopened.Status)

	_, err = uc.SetRequirementStatus(ctx, created.ID, "Closed")
	assert.True(t, errors.Is(err, errors.CodeValidation))

	_, err = uc.SetRequirementStatus(ctx, "missing", entity.RequirementActive)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestDeleteRequirement_CascadesToBids(t *testing.T) {
	f := newFixture()
	requirements := f.requirementUseCase()
	bids := f.bidUseCase()
	ctx := context.Background()

	requirement, err := requirements.CreateRequirement(ctx, "C1", validRequirement())
	require.NoError(t, err)
	other, err := requirements.CreateRequirement(ctx, "C1", validRequirement())
	require.NoError(t, err)

	for _, provider := range []string{"P1", "P2"} {
		_, err := bids.CreateBid(ctx, provider, CreateBidInput{RequirementID: requirement.ID, Amount: 40, DeliveryTime: 2})
		require.NoError(t, err)
	}
	_, err = bids.CreateBid(ctx, "P1", CreateBidInput{RequirementID: other.ID, Amount: 40, DeliveryTime: 2})
	require.NoError(t, err)

	deleted, err := requirements.DeleteRequirement(ctx, requirement.ID)
	require.NoError(t, err)
	assert.Equal(t, requirement.ID, deleted.ID)

	remaining, err := bids.ListBidsForRequirement(ctx, requirement.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	untouched, err := bids.ListBidsForRequirement(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, untouched, 1)

	_, err = requirements.DeleteRequirement(ctx, requirement.ID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestDeleteRequirement_PartialFailureIsDistinct(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	storeErr := stderrors.New("bids collection unavailable")

	requirement, err := f.requirementUseCase().CreateRequirement(ctx, "C1", validRequirement())
	require.NoError(t, err)
	_, err = f.bidUseCase().CreateBid(ctx, "P1", CreateBidInput{RequirementID: requirement.ID, Amount: 40, DeliveryTime: 2})
	require.NoError(t, err)

	broken := NewRequirementUseCase(f.requirements, &failingBidRepo{BidRepository: f.bids, err: storeErr}, f.projector)
	_, err = broken.DeleteRequirement(ctx, requirement.ID)

	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeCascadeIncomplete), "got %v", err)
	assert.ErrorIs(t, err, storeErr)
	assert.Contains(t, err.Error(), requirement.ID)

	_, err = f.requirements.GetByID(ctx, requirement.ID)
	assert.True(t, errors.Is(err, errors.CodeNotFound), "requirement delete is not rolled back")

	orphans, err := f.bids.ListByRequirement(ctx, requirement.ID)
	require.NoError(t, err)
	assert.Len(t, orphans, 1)

	// The drift can be repaired afterwards.
	removed, err := f.requirementUseCase().RepairOrphanBids(ctx, requirement.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	orphans, err = f.bids.ListByRequirement(ctx, requirement.ID)
	require.NoError(t, err)
	assert.Empty(t, orphans)
}

func TestRepairOrphanBids_RefusesLiveRequirement(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	uc := f.requirementUseCase()

	requirement, err := uc.CreateRequirement(ctx, "C1", validRequirement())
	require.NoError(t, err)

	_, err = uc.RepairOrphanBids(ctx, requirement.ID)
	assert.True(t, errors.Is(err, errors.CodeForbiddenTransition))

	_, err = uc.RepairOrphanBids(ctx, " ")
	assert.True(t, errors.Is(err, errors.CodeValidation))
}
