package ballot

// Code identifies a kind of ballot failure in a machine-readable way.
type Code string

const (
	CodeOnlyOwnerCanPerformAction Code = "ONLY_OWNER_CAN_PERFORM_ACTION"
	CodeProposalDoesNotExist      Code = "PROPOSAL_DOES_NOT_EXIST"
	CodeAlreadyVoted              Code = "ALREADY_VOTED"
)

// Error is returned for every refused call. None of them are retried here and none leave partial writes behind.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Is reports whether target carries the same Code, so errors.Is works against the sentinels below.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

var (
	ErrOnlyOwnerCanPerformAction = &Error{Code: CodeOnlyOwnerCanPerformAction, Message: "only the owner can perform this action"}
	ErrProposalDoesNotExist      = &Error{Code: CodeProposalDoesNotExist, Message: "proposal does not exist"}
	ErrAlreadyVoted              = &Error{Code: CodeAlreadyVoted, Message: "already voted on this proposal"}
)
