package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servicemarket/internal/domain/entity"
	"servicemarket/internal/domain/repository"
	"servicemarket/pkg/errors"
)

type stores struct {
	users        repository.UserRepository
	requirements repository.RequirementRepository
	bids         repository.BidRepository
	messages     repository.MessageRepository
	// Firestore leaves email uniqueness to the caller.
	uniqueEmails bool
}

// runContract checks the behaviour every store driver must share. open
// returns empty stores for each subtest.
func runContract(t *testing.T, open func(t *testing.T) stores) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	t.Run("requirements", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		for i, client := range []string{"C1", "C2", "C1"} {
			require.NoError(t, s.requirements.Create(ctx, &entity.Requirement{
				ID:        []string{"r-old", "r-mid", "r-new"}[i],
				Title:     "Fix pipe",
				Price:     50,
				Location:  "NYC",
				Category:  entity.DefaultCategory,
				Status:    entity.RequirementPending,
				ClientID:  client,
				CreatedAt: base.Add(time.Duration(i) * time.Hour),
			}))
		}

		all, err := s.requirements.List(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"r-new", "r-mid", "r-old"}, requirementIDs(all))

		mine, err := s.requirements.List(ctx, "C1")
		require.NoError(t, err)
		assert.Equal(t, []string{"r-new", "r-old"}, requirementIDs(mine))

		edit := &entity.Requirement{ID: "r-old", Title: "Fix two pipes", Price: 80, Location: "LA", Category: "Plumbing", Status: entity.RequirementPending, ClientID: "someone"}
		applied, err := s.requirements.Update(ctx, edit, entity.RequirementPending)
		require.NoError(t, err)
		assert.True(t, applied)
		stored, err := s.requirements.GetByID(ctx, "r-old")
		require.NoError(t, err)
		assert.Equal(t, "Fix two pipes", stored.Title)
		assert.Equal(t, "Plumbing", stored.Category)
		assert.Equal(t, entity.RequirementPending, stored.Status)
		assert.Equal(t, "C1", stored.ClientID, "update leaves client alone")

		changed, err := s.requirements.TransitionStatus(ctx, "r-old", entity.RequirementPending, entity.RequirementActive)
		require.NoError(t, err)
		assert.True(t, changed)
		changed, err = s.requirements.TransitionStatus(ctx, "r-old", entity.RequirementPending, entity.RequirementActive)
		require.NoError(t, err)
		assert.False(t, changed)

		require.NoError(t, s.requirements.SetStatus(ctx, "r-old", entity.RequirementPending))
		stored, err = s.requirements.GetByID(ctx, "r-old")
		require.NoError(t, err)
		assert.Equal(t, entity.RequirementPending, stored.Status)

		require.NoError(t, s.requirements.Delete(ctx, "r-old"))
		_, err = s.requirements.GetByID(ctx, "r-old")
		assert.True(t, errors.Is(err, errors.CodeNotFound))
	})

	t.Run("conditional update", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		require.NoError(t, s.requirements.Create(ctx, &entity.Requirement{
			ID: "r1", Title: "Fix pipe", Price: 50, Location: "NYC", Category: entity.DefaultCategory,
			Status: entity.RequirementPending, ClientID: "C1", CreatedAt: base,
		}))
		patch := func(title string, status entity.RequirementStatus) *entity.Requirement {
			return &entity.Requirement{ID: "r1", Title: title, Price: 50, Location: "NYC", Category: entity.DefaultCategory, Status: status}
		}

		// The status is only written while the stored status is still from.
		applied, err := s.requirements.Update(ctx, patch("stale", entity.RequirementCompleted), entity.RequirementActive)
		require.NoError(t, err)
		assert.False(t, applied)

		forward := patch("Fix pipe today", entity.RequirementActive)
		applied, err = s.requirements.Update(ctx, forward, entity.RequirementPending)
		require.NoError(t, err)
		assert.True(t, applied)
		assert.Equal(t, entity.RequirementActive, forward.Status)

		stored, err := s.requirements.GetByID(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, "Fix pipe today", stored.Title)
		assert.Equal(t, entity.RequirementActive, stored.Status)

		// A field-only patch does not overwrite a status it did not read.
		require.NoError(t, s.requirements.SetStatus(ctx, "r1", entity.RequirementPending))
		fields := patch("Fix pipe tonight", entity.RequirementActive)
		applied, err = s.requirements.Update(ctx, fields, entity.RequirementActive)
		require.NoError(t, err)
		assert.True(t, applied)
		assert.Equal(t, entity.RequirementPending, fields.Status)

		// Completed requirements take no writes at all.
		require.NoError(t, s.requirements.SetStatus(ctx, "r1", entity.RequirementCompleted))
		for _, from := range []entity.RequirementStatus{entity.RequirementActive, entity.RequirementCompleted} {
			applied, err = s.requirements.Update(ctx, patch("late", entity.RequirementCompleted), from)
			require.NoError(t, err)
			assert.False(t, applied, "from %s", from)
		}
		applied, err = s.requirements.Update(ctx, patch("late", entity.RequirementActive), entity.RequirementCompleted)
		require.NoError(t, err)
		assert.False(t, applied)

		stored, err = s.requirements.GetByID(ctx, "r1")
		require.NoError(t, err)
		assert.Equal(t, "Fix pipe tonight", stored.Title)
		assert.Equal(t, entity.RequirementCompleted, stored.Status)
	})

	t.Run("missing requirement", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		_, err := s.requirements.GetByID(ctx, "missing")
		assert.True(t, errors.Is(err, errors.CodeNotFound), "get: %v", err)
		_, err = s.requirements.Update(ctx, &entity.Requirement{ID: "missing", Title: "x", Status: entity.RequirementPending}, entity.RequirementPending)
		assert.True(t, errors.Is(err, errors.CodeNotFound), "update: %v", err)
		err = s.requirements.SetStatus(ctx, "missing", entity.RequirementActive)
		assert.True(t, errors.Is(err, errors.CodeNotFound), "set status: %v", err)
		_, err = s.requirements.TransitionStatus(ctx, "missing", entity.RequirementPending, entity.RequirementActive)
		assert.True(t, errors.Is(err, errors.CodeNotFound), "transition: %v", err)
		err = s.requirements.Delete(ctx, "missing")
		assert.True(t, errors.Is(err, errors.CodeNotFound), "delete: %v", err)
	})

	t.Run("bids", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		seed := []entity.Bid{
			{ID: "b1", RequirementID: "R1", ProviderID: "P1"},
			{ID: "b2", RequirementID: "R1", ProviderID: "P2"},
			{ID: "b3", RequirementID: "R2", ProviderID: "P1"},
		}
		for i := range seed {
			bid := seed[i]
			bid.Amount, bid.DeliveryTime, bid.Status = 40, 2, entity.BidPending
			bid.CreatedAt = base.Add(time.Duration(i) * time.Hour)
			require.NoError(t, s.bids.Create(ctx, &bid))
		}

		byRequirement, err := s.bids.ListByRequirement(ctx, "R1")
		require.NoError(t, err)
		assert.Equal(t, []string{"b2", "b1"}, bidIDs(byRequirement))

		byProvider, err := s.bids.ListByProvider(ctx, "P1")
		require.NoError(t, err)
		assert.Equal(t, []string{"b3", "b1"}, bidIDs(byProvider))

		require.NoError(t, s.bids.SetStatus(ctx, "b1", entity.BidAccepted))
		bid, err := s.bids.GetByID(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, entity.BidAccepted, bid.Status)
		assert.Equal(t, 40.0, bid.Amount)

		err = s.bids.SetStatus(ctx, "missing", entity.BidAccepted)
		assert.True(t, errors.Is(err, errors.CodeNotFound), "set status: %v", err)

		accepted, err := s.bids.Accept(ctx, "b2")
		require.NoError(t, err)
		assert.False(t, accepted, "b1 is already accepted for R1")
		accepted, err = s.bids.Accept(ctx, "b1")
		require.NoError(t, err)
		assert.True(t, accepted, "accepting the accepted bid again")
		accepted, err = s.bids.Accept(ctx, "b3")
		require.NoError(t, err)
		assert.True(t, accepted, "other requirements are independent")
		bid, err = s.bids.GetByID(ctx, "b2")
		require.NoError(t, err)
		assert.Equal(t, entity.BidPending, bid.Status)

		require.NoError(t, s.bids.SetStatus(ctx, "b1", entity.BidDeclined))
		accepted, err = s.bids.Accept(ctx, "b2")
		require.NoError(t, err)
		assert.True(t, accepted)
		_, err = s.bids.Accept(ctx, "missing")
		assert.True(t, errors.Is(err, errors.CodeNotFound), "accept: %v", err)

		removed, err := s.bids.DeleteByRequirement(ctx, "R1")
		require.NoError(t, err)
		assert.Equal(t, 2, removed)
		removed, err = s.bids.DeleteByRequirement(ctx, "R1")
		require.NoError(t, err)
		assert.Zero(t, removed)

		require.NoError(t, s.bids.Delete(ctx, "b3"))
		err = s.bids.Delete(ctx, "b3")
		assert.True(t, errors.Is(err, errors.CodeNotFound), "delete: %v", err)
	})

	t.Run("messages", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		seed := []entity.Message{
			{SenderID: "U1", ReceiverID: "U2", BidID: "B1", Text: "one"},
			{SenderID: "U2", ReceiverID: "U1", BidID: "B1", Text: "two"},
			{SenderID: "U1", ReceiverID: "U2", BidID: "B2", Text: "other bid"},
			{SenderID: "U1", ReceiverID: "U2", BidID: "B1", Text: "three"},
		}
		for i := range seed {
			message := seed[i]
			message.CreatedAt = base.Add(time.Duration(i) * time.Minute)
			require.NoError(t, s.messages.Create(ctx, &message))
			assert.NotEmpty(t, message.ID)
		}

		history, err := s.messages.ListConversation(ctx, "U2", "U1", "B1")
		require.NoError(t, err)
		texts := make([]string, 0, len(history))
		for _, m := range history {
			texts = append(texts, m.Text)
		}
		assert.Equal(t, []string{"one", "two", "three"}, texts)

		unread, err := s.messages.CountUnread(ctx, "U2", "")
		require.NoError(t, err)
		assert.Equal(t, 3, unread)

		changed, err := s.messages.MarkRead(ctx, "U2", "U1", "B1")
		require.NoError(t, err)
		assert.Equal(t, 2, changed)
		changed, err = s.messages.MarkRead(ctx, "U2", "U1", "B1")
		require.NoError(t, err)
		assert.Zero(t, changed)

		unread, err = s.messages.CountUnread(ctx, "U2", "B2")
		require.NoError(t, err)
		assert.Equal(t, 1, unread)
		unread, err = s.messages.CountUnread(ctx, "U1", "B1")
		require.NoError(t, err)
		assert.Equal(t, 1, unread)
	})

	t.Run("users", func(t *testing.T) {
		s := open(t)
		ctx := context.Background()

		user := &entity.User{ID: "u1", Name: "Carol", Email: "carol@example.com", Role: entity.RoleClient}
		require.NoError(t, s.users.Create(ctx, user))

		found, err := s.users.GetByEmail(ctx, "carol@example.com")
		require.NoError(t, err)
		assert.Equal(t, "u1", found.ID)

		_, err = s.users.GetByEmail(ctx, "nobody@example.com")
		assert.True(t, errors.Is(err, errors.CodeNotFound))

		found.Company = "Pipes Inc"
		require.NoError(t, s.users.Update(ctx, found))
		reloaded, err := s.users.GetByID(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "Pipes Inc", reloaded.Company)

		err = s.users.Create(ctx, &entity.User{ID: "u1", Name: "Again", Email: "again@example.com"})
		assert.True(t, errors.Is(err, errors.CodeConflict), "same id: %v", err)

		if s.uniqueEmails {
			err = s.users.Create(ctx, &entity.User{ID: "u2", Name: "Copy", Email: "carol@example.com"})
			assert.True(t, errors.Is(err, errors.CodeConflict), "same email: %v", err)
		}
	})
}

func requirementIDs(items []*entity.Requirement) []string {
	ids := make([]string, 0, len(items))
	for _, r := range items {
		ids = append(ids, r.ID)
	}
	return ids
}

func bidIDs(items []*entity.Bid) []string {
	ids := make([]string, 0, len(items))
	for _, b := range items {
		ids = append(ids, b.ID)
	}
	return ids
}
