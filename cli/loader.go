package main

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	ballot "github.com/jicksta/ballot-box"
)

// Call is one line of a transcript: an identity invoking a command.
type Call struct {
	Line    int
	Caller  ballot.Identity
	Command string
	Args    []string
}

var whitespaceSeparator = regexp.MustCompile(`\s+`)

// ReadTranscript deserializes calls from a Reader using the following format:
//
//     <caller> <command> [args...]
//
// Commands are init, create <description...>, vote <id>, get <id> and total. The first command must
// be init, which makes its caller the owner. Blank lines and lines starting with # are skipped. For
// example:
//
//     ALICE init
//     ALICE create Paint the shed green
//     BOB   vote 0
//     CAROL get 0
func ReadTranscript(reader io.Reader) ([]Call, error) {
	var calls []Call
	scanner := bufio.NewScanner(reader)
	for lineNumber := 1; scanner.Scan(); lineNumber++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		tokens := whitespaceSeparator.Split(line, -1)
		if len(tokens) < 2 {
			return nil, fmt.Errorf("line %d: expected <caller> <command>", lineNumber)
		}
		call := Call{
			Line:    lineNumber,
			Caller:  ballot.Identity(tokens[0]),
			Command: strings.ToLower(tokens[1]),
			Args:    tokens[2:],
		}
		if err := validate(call, len(calls) == 0); err != nil {
			return nil, err
		}
		calls = append(calls, call)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	if len(calls) == 0 {
		return nil, fmt.Errorf("transcript is empty")
	}
	return calls, nil
}

func validate(call Call, first bool) error {
	if first != (call.Command == "init") {
		return fmt.Errorf("line %d: init must be the first command and appear only once", call.Line)
	}
	switch call.Command {
	case "init", "total":
		if len(call.Args) != 0 {
			return fmt.Errorf("line %d: %s takes no arguments", call.Line, call.Command)
		}
	case "vote", "get":
		if len(call.Args) != 1 {
			return fmt.Errorf("line %d: %s takes exactly one proposal id", call.Line, call.Command)
		}
		if _, err := call.proposalID(); err != nil {
			return fmt.Errorf("line %d: %w", call.Line, err)
		}
	case "create":
	default:
		return fmt.Errorf("line %d: unknown command %q", call.Line, call.Command)
	}
	return nil
}

func (call Call) proposalID() (uint32, error) {
	id, err := strconv.ParseUint(call.Args[0], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid proposal id %q", call.Args[0])
	}
	return uint32(id), nil
}

func (call Call) description() string {
	return strings.Join(call.Args, " ")
}
