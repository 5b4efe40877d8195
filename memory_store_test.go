package ballot

import (
	"context"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("MemoryStore", func() {

	var (
		ctx   context.Context
		store *MemoryStore
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = NewMemoryStore()
	})

	count := func(n uint32) *uint32 { return &n }

	It("implements the BallotStore interface", func() {
		var _ = BallotStore(store)
	})

	Describe("#Init", func() {
		It("records the first owner only", func() {
			Expect(store.Init(ctx, "alice")).To(Equal(Identity("alice")))
			Expect(store.Init(ctx, "bob")).To(Equal(Identity("alice")))
		})
	})

	Describe("#GetProposal", func() {
		It("returns an error when a proposal hasn't been created", func() {
			_, err := store.GetProposal(ctx, 0)
			Expect(err).To(MatchError(ErrProposalDoesNotExist))
		})
	})

	Describe("#HasVoted", func() {
		It("defaults to false for keys never written", func() {
			Expect(store.HasVoted(ctx, 3, "anyone")).To(BeFalse())
		})
	})

	Describe("#Commit", func() {
		It("applies proposals, marks and the count together", func() {
			err := store.Commit(ctx, &Changeset{
				Count:     count(1),
				Proposals: map[uint32]Proposal{0: {Description: "A", Votes: 1}},
				VoteMarks: []VoteMark{{ProposalID: 0, Voter: "v"}},
			})
			Expect(err).To(Succeed())

			Expect(store.ProposalCount(ctx)).To(Equal(uint32(1)))
			Expect(store.GetProposal(ctx, 0)).To(Equal(Proposal{Description: "A", Votes: 1}))
			Expect(store.HasVoted(ctx, 0, "v")).To(BeTrue())
		})

		It("treats an empty changeset as a no-op", func() {
			Expect(store.Commit(ctx, newChangeset())).To(Succeed())
			Expect(store.Commit(ctx, nil)).To(Succeed())
		})

		It("rejects a changeset that would leave a gap and applies none of it", func() {
			err := store.Commit(ctx, &Changeset{
				Count:     count(1),
				Proposals: map[uint32]Proposal{0: {Description: "A"}, 4: {Description: "gap"}},
			})
			Expect(err).NotTo(Succeed())
			Expect(store.ProposalCount(ctx)).To(Equal(uint32(0)))
			_, err = store.GetProposal(ctx, 0)
			Expect(err).To(MatchError(ErrProposalDoesNotExist))
		})

		It("rejects vote marks on missing proposals", func() {
			err := store.Commit(ctx, &Changeset{VoteMarks: []VoteMark{{ProposalID: 2, Voter: "v"}}})
			Expect(err).NotTo(Succeed())
			Expect(store.HasVoted(ctx, 2, "v")).To(BeFalse())
		})

		It("refuses to move the count backwards", func() {
			Expect(store.Commit(ctx, &Changeset{Count: count(2), Proposals: map[uint32]Proposal{0: {}, 1: {}}})).To(Succeed())
			Expect(store.Commit(ctx, &Changeset{Count: count(1)})).NotTo(Succeed())
			Expect(store.ProposalCount(ctx)).To(Equal(uint32(2)))
		})
	})

})
