package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	ballot "github.com/jicksta/ballot-box"
)

// Replay runs calls in order against a ballot box on store and writes one outcome line per call.
// Refused calls are reported and replay continues; store failures stop it.
func Replay(ctx context.Context, calls []Call, store ballot.BallotStore, out io.Writer, opts ...ballot.Option) (*ballot.BallotBox, error) {
	box, err := ballot.New(ctx, store, calls[0].Caller, opts...)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "%4d  %-10s init -> owner %s\n", calls[0].Line, calls[0].Caller, box.Owner())

	for _, call := range calls[1:] {
		outcome, err := invoke(ctx, box, call)
		if err != nil {
			var refused *ballot.Error
			if !errors.As(err, &refused) {
				return box, fmt.Errorf("line %d: %w", call.Line, err)
			}
			outcome = "refused: " + err.Error()
		}
		fmt.Fprintf(out, "%4d  %-10s %s -> %s\n", call.Line, call.Caller, call.Command, outcome)
	}
	return box, nil
}

func invoke(ctx context.Context, box *ballot.BallotBox, call Call) (string, error) {
	switch call.Command {
	case "create":
		id, err := box.CreateProposal(ctx, call.Caller, call.description())
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("proposal %d", id), nil
	case "vote":
		id, _ := call.proposalID()
		if err := box.Vote(ctx, call.Caller, id); err != nil {
			return "", err
		}
		return fmt.Sprintf("voted on %d", id), nil
	case "get":
		id, _ := call.proposalID()
		description, votes, err := box.GetProposal(ctx, id)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("(%q, %d)", description, votes), nil
	case "total":
		total, err := box.TotalProposals(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprint(total), nil
	}
	return "", fmt.Errorf("unknown command %q", call.Command)
}
