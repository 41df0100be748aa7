package usecase

import (
	"context"

	"golang.org/x/sync/errgroup"

	"servicemarket/internal/domain/entity"
	"servicemarket/internal/domain/repository"
	"servicemarket/pkg/errors"
)

const lookupConcurrency = 8

type RequirementView struct {
	*entity.Requirement
	Client *entity.UserSummary `json:"client"`
}

type BidView struct {
	*entity.Bid
	Requirement *RequirementView    `json:"requirement,omitempty"`
	Provider    *entity.UserSummary `json:"provider"`
}

// Projector joins requirements and bids with the users and requirements they
// reference. A reference that no longer resolves stays as a bare id; only
// store failures fail the read.
type Projector struct {
	userRepo        repository.UserRepository
	requirementRepo repository.RequirementRepository
}

func NewProjector(userRepo repository.UserRepository, requirementRepo repository.RequirementRepository) *Projector {
	return &Projector{
		userRepo:        userRepo,
		requirementRepo: requirementRepo,
	}
}

func (p *Projector) Requirements(ctx context.Context, requirements []*entity.Requirement) ([]*RequirementView, error) {
	clientIDs := make([]string, 0, len(requirements))
	for _, r := range requirements {
		clientIDs = append(clientIDs, r.ClientID)
	}

	users, err := lookupAll(ctx, clientIDs, p.userRepo.GetByID)
	if err != nil {
		return nil, err
	}

	views := make([]*RequirementView, len(requirements))
	for i, r := range requirements {
		views[i] = &RequirementView{Requirement: r, Client: summaryOf(users, r.ClientID)}
	}
	return views, nil
}

func (p *Projector) Requirement(ctx context.Context, requirement *entity.Requirement) (*RequirementView, error) {
	views, err := p.Requirements(ctx, []*entity.Requirement{requirement})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// Bids attaches each bid's requirement (with its client) and provider.
func (p *Projector) Bids(ctx context.Context, bids []*entity.Bid) ([]*BidView, error) {
	requirementIDs := make([]string, 0, len(bids))
	for _, b := range bids {
		requirementIDs = append(requirementIDs, b.RequirementID)
	}

	requirements, err := lookupAll(ctx, requirementIDs, p.requirementRepo.GetByID)
	if err != nil {
		return nil, err
	}

	userIDs := make([]string, 0, len(bids)+len(requirements))
	for _, b := range bids {
		userIDs = append(userIDs, b.ProviderID)
	}
	for _, r := range requirements {
		userIDs = append(userIDs, r.ClientID)
	}

	users, err := lookupAll(ctx, userIDs, p.userRepo.GetByID)
	if err != nil {
		return nil, err
	}

	views := make([]*BidView, len(bids))
	for i, b := range bids {
		view := &BidView{Bid: b, Provider: summaryOf(users, b.ProviderID)}
		if r, ok := requirements[b.RequirementID]; ok {
			view.Requirement = &RequirementView{Requirement: r, Client: summaryOf(users, r.ClientID)}
		}
		views[i] = view
	}
	return views, nil
}

func (p *Projector) Bid(ctx context.Context, bid *entity.Bid) (*BidView, error) {
	views, err := p.Bids(ctx, []*entity.Bid{bid})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// lookupAll fetches every distinct id concurrently. Ids that are not found
// are left out of the result.
func lookupAll[T any](ctx context.Context, ids []string, get func(context.Context, string) (*T, error)) (map[string]*T, error) {
	unique := distinct(ids)
	found := make([]*T, len(unique))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(lookupConcurrency)
	for i, id := range unique {
		g.Go(func() error {
			item, err := get(gctx, id)
			if err != nil {
				if errors.Is(err, errors.CodeNotFound) {
					return nil
				}
				return err
			}
			found[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := make(map[string]*T, len(unique))
	for i, id := range unique {
		if found[i] != nil {
			result[id] = found[i]
		}
	}
	return result, nil
}

func distinct(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func summaryOf(users map[string]*entity.User, id string) *entity.UserSummary {
	if user, ok := users[id]; ok {
		return user.Summary()
	}
	return &entity.UserSummary{ID: id}
}
