package ballot

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
)

// BallotBox lets a single owner open proposals and lets every identity vote at most once on each.
//
// Calls are serialized: each one runs to completion before the next one's effects become visible.
// A refused call leaves the store untouched, and a notification is published only after the
// changes it describes have been committed.
type BallotBox struct {
	mu       sync.Mutex
	store    BallotStore
	owner    Identity
	notifier Notifier
	logger   *log.Logger
}

// ProposalView is a proposal together with its id.
type ProposalView struct {
	ID          uint32 `json:"id"`
	Description string `json:"description"`
	Votes       uint32 `json:"votes"`
}

// Option configures a BallotBox.
type Option func(*BallotBox)

// WithNotifier sets where ProposalCreated and VoteCast notifications go.
func WithNotifier(notifier Notifier) Option {
	return func(b *BallotBox) {
		if notifier == nil {
			b.notifier = noopNotifier{}
			return
		}
		b.notifier = notifier
	}
}

// WithLogger sets the logger used for refused calls and store failures.
func WithLogger(logger *log.Logger) Option {
	return func(b *BallotBox) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New initializes a ballot box on store with caller as owner. If the store already has an owner
// recorded, that owner is kept.
func New(ctx context.Context, store BallotStore, caller Identity, opts ...Option) (*BallotBox, error) {
	if store == nil {
		return nil, fmt.Errorf("ballot store is required")
	}
	b := &BallotBox{
		store:    store,
		notifier: noopNotifier{},
		logger:   log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(b)
	}
	owner, err := store.Init(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("init ballot store: %w", err)
	}
	if owner != caller {
		b.logger.Printf("store already owned by %s, ignoring %s", owner, caller)
	}
	b.owner = owner
	return b, nil
}

// Owner returns the identity allowed to create proposals.
func (b *BallotBox) Owner() Identity {
	return b.owner
}

// CreateProposal stores a new proposal with zero votes and returns its id. Only the owner may call it.
// Descriptions are not validated: empty and duplicate descriptions are allowed.
func (b *BallotBox) CreateProposal(ctx context.Context, caller Identity, description string) (uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := authorize(caller, b.owner); err != nil {
		b.logger.Printf("create proposal refused for %s: %v", caller, err)
		return 0, err
	}

	cs := newChangeset()
	proposals := &ledger{store: b.store, cs: cs}
	id, err := proposals.create(ctx, description)
	if err != nil {
		return 0, err
	}
	if err := b.store.Commit(ctx, cs); err != nil {
		b.logger.Printf("commit proposal %d: %v", id, err)
		return 0, fmt.Errorf("commit proposal %d: %w", id, err)
	}

	b.notifier.Publish(ProposalCreated{ID: id, Title: description})
	return id, nil
}

// Vote records one vote by caller on proposalID.
func (b *BallotBox) Vote(ctx context.Context, caller Identity, proposalID uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	cs := newChangeset()
	proposals := &ledger{store: b.store, cs: cs}
	voters := &registry{store: b.store, cs: cs}

	if _, err := proposals.get(ctx, proposalID); err != nil {
		b.logger.Printf("vote by %s on %d refused: %v", caller, proposalID, err)
		return err
	}
	voted, err := voters.hasVoted(ctx, proposalID, caller)
	if err != nil {
		return err
	}
	if voted {
		b.logger.Printf("vote by %s on %d refused: %v", caller, proposalID, ErrAlreadyVoted)
		return ErrAlreadyVoted
	}

	if _, err := proposals.incrementVotes(ctx, proposalID); err != nil {
		return err
	}
	voters.markVoted(proposalID, caller)
	if err := b.store.Commit(ctx, cs); err != nil {
		b.logger.Printf("commit vote by %s on %d: %v", caller, proposalID, err)
		return fmt.Errorf("commit vote on %d: %w", proposalID, err)
	}

	b.notifier.Publish(VoteCast{ProposalID: proposalID, Voter: caller})
	return nil
}

// GetProposal returns the description and current vote count of proposalID.
func (b *BallotBox) GetProposal(ctx context.Context, proposalID uint32) (string, uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	proposal, err := b.store.GetProposal(ctx, proposalID)
	if err != nil {
		return "", 0, err
	}
	return proposal.Description, proposal.Votes, nil
}

// TotalProposals returns how many proposals have been created.
func (b *BallotBox) TotalProposals(ctx context.Context) (uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.store.ProposalCount(ctx)
}

// HasVoted reports whether voter has already voted on proposalID.
func (b *BallotBox) HasVoted(ctx context.Context, proposalID uint32, voter Identity) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.store.HasVoted(ctx, proposalID, voter)
}

// Proposals returns every proposal in id order.
func (b *BallotBox) Proposals(ctx context.Context) ([]ProposalView, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	count, err := b.store.ProposalCount(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]ProposalView, 0, count)
	for id := uint32(0); id < count; id++ {
		proposal, err := b.store.GetProposal(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load proposal %d: %w", id, err)
		}
		views = append(views, ProposalView{ID: id, Description: proposal.Description, Votes: proposal.Votes})
	}
	return views, nil
}
