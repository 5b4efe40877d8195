package main

import (
	"bytes"
	"context"
	"strings"

	ballot "github.com/jicksta/ballot-box"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

const scenario = `
# owner O opens two proposals
O   init
O   create A
O   create B
O   total
V1  vote 0
V2  vote 0
O   get 0
V1  vote 0
V2  create C
X   vote 5
`

var _ = Describe("ReadTranscript", func() {

	It("parses callers, commands and arguments", func() {
		calls, err := ReadTranscript(strings.NewReader("ALICE init\nALICE create Paint  the shed\nBOB VOTE 0\n"))
		Expect(err).To(Succeed())
		Expect(calls).To(Equal([]Call{
			{Line: 1, Caller: "ALICE", Command: "init", Args: []string{}},
			{Line: 2, Caller: "ALICE", Command: "create", Args: []string{"Paint", "the", "shed"}},
			{Line: 3, Caller: "BOB", Command: "vote", Args: []string{"0"}},
		}))
		Expect(calls[1].description()).To(Equal("Paint the shed"))
	})

	It("skips comments and blank lines", func() {
		calls, err := ReadTranscript(strings.NewReader(scenario))
		Expect(err).To(Succeed())
		Expect(calls).To(HaveLen(10))
		Expect(calls[0].Line).To(Equal(3))
	})

	DescribeTable("rejects malformed transcripts",
		func(transcript string) {
			_, err := ReadTranscript(strings.NewReader(transcript))
			Expect(err).NotTo(Succeed())
		},
		Entry("empty", "# nothing\n"),
		Entry("missing init", "O create A\n"),
		Entry("second init", "O init\nV init\n"),
		Entry("caller only", "O init\nV\n"),
		Entry("unknown command", "O init\nO delete 0\n"),
		Entry("vote without id", "O init\nV vote\n"),
		Entry("negative id", "O init\nV get -1\n"),
		Entry("total with arguments", "O init\nV total 3\n"),
	)

})

var _ = Describe("Replay", func() {

	It("reports every outcome and keeps going after refusals", func() {
		calls, err := ReadTranscript(strings.NewReader(scenario))
		Expect(err).To(Succeed())

		var out bytes.Buffer
		recorder := ballot.NewRecorder()
		box, err := Replay(context.Background(), calls, ballot.NewMemoryStore(), &out, ballot.WithNotifier(recorder))
		Expect(err).To(Succeed())

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		Expect(lines).To(HaveLen(10))
		Expect(lines[0]).To(ContainSubstring("owner O"))
		Expect(lines[1]).To(HaveSuffix("proposal 0"))
		Expect(lines[3]).To(HaveSuffix("-> 2"))
		Expect(lines[6]).To(HaveSuffix(`("A", 2)`))
		Expect(lines[7]).To(ContainSubstring("refused: " + ballot.ErrAlreadyVoted.Error()))
		Expect(lines[8]).To(ContainSubstring("refused: " + ballot.ErrOnlyOwnerCanPerformAction.Error()))
		Expect(lines[9]).To(ContainSubstring("refused: " + ballot.ErrProposalDoesNotExist.Error()))

		Expect(box.TotalProposals(context.Background())).To(Equal(uint32(2)))
		Expect(recorder.Notifications()).To(HaveLen(4))
	})

})
