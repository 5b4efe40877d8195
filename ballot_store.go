package ballot

import "context"

// Identity is an already-authenticated caller identity handed in by the hosting environment.
type Identity string

// Proposal is a single ballot item. Only Votes ever changes after creation.
type Proposal struct {
	Description string
	Votes       uint32
}

// VoteMark records that Voter has cast a vote on ProposalID. Its presence is its only state.
type VoteMark struct {
	ProposalID uint32
	Voter      Identity
}

// BallotStore is the key-value substrate proposals and vote marks live on.
type BallotStore interface {
	// Init records owner if the store has none yet and returns whichever owner is recorded.
	Init(ctx context.Context, owner Identity) (Identity, error)

	ProposalCount(ctx context.Context) (uint32, error)
	// GetProposal returns ErrProposalDoesNotExist when no record is stored at id.
	GetProposal(ctx context.Context, id uint32) (Proposal, error)
	HasVoted(ctx context.Context, id uint32, voter Identity) (bool, error)

	// Commit applies every staged change in cs, or none of them.
	Commit(ctx context.Context, cs *Changeset) error
}

// Changeset stages the writes of one operation until they are committed together.
type Changeset struct {
	// Count is the proposal count after the operation; nil leaves it untouched.
	Count     *uint32
	Proposals map[uint32]Proposal
	VoteMarks []VoteMark
}

func newChangeset() *Changeset {
	return &Changeset{Proposals: map[uint32]Proposal{}}
}

// Empty reports whether committing cs would change nothing.
func (cs *Changeset) Empty() bool {
	return cs == nil || (cs.Count == nil && len(cs.Proposals) == 0 && len(cs.VoteMarks) == 0)
}

func (cs *Changeset) hasMark(id uint32, voter Identity) bool {
	for _, mark := range cs.VoteMarks {
		if mark.ProposalID == id && mark.Voter == voter {
			return true
		}
	}
	return false
}
