package ballot

import (
	"context"
	"fmt"
	"math"
)

// ledger reads proposals through the store and stages its writes in a Changeset, so that a refused
// call never reaches the store.
type ledger struct {
	store BallotStore
	cs    *Changeset
}

func (l *ledger) count(ctx context.Context) (uint32, error) {
	if l.cs.Count != nil {
		return *l.cs.Count, nil
	}
	count, err := l.store.ProposalCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("load proposal count: %w", err)
	}
	return count, nil
}

// create allocates the next id and stages a fresh record for it. The count saturates at
// math.MaxUint32, after which the last record is overwritten.
func (l *ledger) create(ctx context.Context, description string) (uint32, error) {
	id, err := l.count(ctx)
	if err != nil {
		return 0, err
	}
	l.cs.Proposals[id] = Proposal{Description: description}
	next := saturatingAdd(id, 1)
	l.cs.Count = &next
	return id, nil
}

func (l *ledger) get(ctx context.Context, id uint32) (Proposal, error) {
	if proposal, staged := l.cs.Proposals[id]; staged {
		return proposal, nil
	}
	return l.store.GetProposal(ctx, id)
}

// incrementVotes is only called once existence and uniqueness have been checked.
func (l *ledger) incrementVotes(ctx context.Context, id uint32) (Proposal, error) {
	proposal, err := l.get(ctx, id)
	if err != nil {
		return Proposal{}, err
	}
	proposal.Votes = saturatingAdd(proposal.Votes, 1)
	l.cs.Proposals[id] = proposal
	return proposal, nil
}

// allocated reports whether id has been handed out once the proposal count is count. A saturated
// count keeps handing out math.MaxUint32.
func allocated(id, count uint32) bool {
	return id < count || (count == math.MaxUint32 && id == math.MaxUint32)
}

func saturatingAdd(x, delta uint32) uint32 {
	if x > math.MaxUint32-delta {
		return math.MaxUint32
	}
	return x + delta
}
