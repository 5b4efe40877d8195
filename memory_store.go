package ballot

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is a BallotStore kept entirely in maps.
type MemoryStore struct {
	mu        sync.RWMutex
	owner     Identity
	owned     bool
	count     uint32
	proposals map[uint32]Proposal
	voteMarks map[VoteMark]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		proposals: map[uint32]Proposal{},
		voteMarks: map[VoteMark]struct{}{},
	}
}

func (ms *MemoryStore) Init(_ context.Context, owner Identity) (Identity, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if !ms.owned {
		ms.owner, ms.owned = owner, true
	}
	return ms.owner, nil
}

func (ms *MemoryStore) ProposalCount(_ context.Context) (uint32, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return ms.count, nil
}

func (ms *MemoryStore) GetProposal(_ context.Context, id uint32) (Proposal, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	proposal, found := ms.proposals[id]
	if !found {
		return Proposal{}, ErrProposalDoesNotExist
	}
	return proposal, nil
}

func (ms *MemoryStore) HasVoted(_ context.Context, id uint32, voter Identity) (bool, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	_, found := ms.voteMarks[VoteMark{ProposalID: id, Voter: voter}]
	return found, nil
}

// Commit validates the whole changeset before touching any map.
func (ms *MemoryStore) Commit(_ context.Context, cs *Changeset) error {
	if cs.Empty() {
		return nil
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()

	count := ms.count
	if cs.Count != nil {
		if *cs.Count < ms.count {
			return fmt.Errorf("proposal count cannot move from %d back to %d", ms.count, *cs.Count)
		}
		count = *cs.Count
	}
	for id := range cs.Proposals {
		if _, found := ms.proposals[id]; !found && !allocated(id, count) {
			return fmt.Errorf("proposal %d is outside of [0, %d)", id, count)
		}
	}
	for _, mark := range cs.VoteMarks {
		_, stored := ms.proposals[mark.ProposalID]
		_, staged := cs.Proposals[mark.ProposalID]
		if !stored && !staged {
			return fmt.Errorf("vote mark on missing proposal %d", mark.ProposalID)
		}
	}

	ms.count = count
	for id, proposal := range cs.Proposals {
		ms.proposals[id] = proposal
	}
	for _, mark := range cs.VoteMarks {
		ms.voteMarks[mark] = struct{}{}
	}
	return nil
}
