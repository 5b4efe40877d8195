package ballot

import (
	"context"
	"fmt"
)

// registry tracks which identities have voted on which proposal.
type registry struct {
	store BallotStore
	cs    *Changeset
}

func (r *registry) hasVoted(ctx context.Context, id uint32, voter Identity) (bool, error) {
	if r.cs.hasMark(id, voter) {
		return true, nil
	}
	voted, err := r.store.HasVoted(ctx, id, voter)
	if err != nil {
		return false, fmt.Errorf("load vote mark (%d, %s): %w", id, voter, err)
	}
	return voted, nil
}

func (r *registry) markVoted(id uint32, voter Identity) {
	if r.cs.hasMark(id, voter) {
		return
	}
	r.cs.VoteMarks = append(r.cs.VoteMarks, VoteMark{ProposalID: id, Voter: voter})
}
