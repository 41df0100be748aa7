package usecase

import (
	"context"
	"sync"

	"servicemarket/internal/adapter/repository"
	"servicemarket/internal/domain/entity"
	domainrepo "servicemarket/internal/domain/repository"
)

type fixture struct {
	users        domainrepo.UserRepository
	requirements domainrepo.RequirementRepository
	bids         domainrepo.BidRepository
	messages     domainrepo.MessageRepository
	projector    *Projector
}

func newFixture() *fixture {
	f := &fixture{
		users:        repository.NewMemoryUserRepository(),
		requirements: repository.NewMemoryRequirementRepository(),
		bids:         repository.NewMemoryBidRepository(),
		messages:     repository.NewMemoryMessageRepository(),
	}
	f.projector = NewProjector(f.users, f.requirements)
	return f
}

func (f *fixture) requirementUseCase() *RequirementUseCase {
	return NewRequirementUseCase(f.requirements, f.bids, f.projector)
}

func (f *fixture) bidUseCase() *BidUseCase {
	return NewBidUseCase(f.bids, f.requirements, f.projector)
}

func (f *fixture) addUser(name string, role entity.Role) *entity.User {
	user := &entity.User{Name: name, Email: name + "@example.com", Role: role}
	if err := f.users.Create(context.Background(), user); err != nil {
		panic(err)
	}
	return user
}

// failingBidRepo fails DeleteByRequirement after removing nothing.
type failingBidRepo struct {
	domainrepo.BidRepository
	err error
}

func (r *failingBidRepo) DeleteByRequirement(ctx context.Context, requirementID string) (int, error) {
	return 0, r.err
}

type failingTransitionRepo struct {
	domainrepo.RequirementRepository
	err error
}

func (r *failingTransitionRepo) TransitionStatus(ctx context.Context, id string, from, to entity.RequirementStatus) (bool, error) {
	return false, r.err
}

// racingRequirementRepo runs race right after GetByID has read the
// requirement, as if another request wrote in between.
type racingRequirementRepo struct {
	domainrepo.RequirementRepository
	race func(ctx context.Context, id string)
}

func (r *racingRequirementRepo) GetByID(ctx context.Context, id string) (*entity.Requirement, error) {
	requirement, err := r.RequirementRepository.GetByID(ctx, id)
	if err == nil {
		r.race(ctx, id)
	}
	return requirement, err
}

// racingBidRepo runs race before each bid is stored. deleteErr, when set,
// fails Delete.
type racingBidRepo struct {
	domainrepo.BidRepository
	race      func(ctx context.Context, bid *entity.Bid)
	deleteErr error
}

func (r *racingBidRepo) Create(ctx context.Context, bid *entity.Bid) error {
	r.race(ctx, bid)
	return r.BidRepository.Create(ctx, bid)
}

func (r *racingBidRepo) Delete(ctx context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	return r.BidRepository.Delete(ctx, id)
}

type recordingBroadcaster struct {
	mu        sync.Mutex
	published []*entity.Message
	err       error
}

func (b *recordingBroadcaster) Publish(message *entity.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, message)
	return b.err
}

type denyAllLimiter struct{}

func (denyAllLimiter) Allow(string) bool { return false }

func ptr[T any](v T) *T {
	return &v
}
