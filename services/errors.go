// services/errors.go
package services

import "errors"

// Engine failures. None are retried here; callers own retry policy.
var (
	ErrDuplicateAbility  = errors.New("athlete already has this ability")
	ErrRosterFull        = errors.New("team roster is full")
	ErrPositionFilled    = errors.New("position is already filled on this team")
	ErrNotOnTeam         = errors.New("athlete is not on this team")
	ErrInvalidParameters = errors.New("invalid parameters")
	ErrTournamentClosed  = errors.New("tournament registration is closed")
	ErrTournamentFull    = errors.New("tournament is already full")
	ErrAlreadyRegistered = errors.New("team is already registered for this tournament")
	ErrMatchNotFound     = errors.New("match not found in tournament")
	ErrAlreadyRecorded   = errors.New("match has already been recorded")
	ErrWrongStatus       = errors.New("tournament is not in the required status")
)

// Service-level failures around the engine.
var (
	ErrNotFound              = errors.New("record not found")
	ErrAlreadyExists         = errors.New("record already exists")
	ErrUnauthorized          = errors.New("caller does not control this record")
	ErrAthleteAlreadyOnTeam  = errors.New("athlete is already on a team")
	ErrCreatorNotVerified    = errors.New("creator is not verified")
	ErrInvalidFeeBasisPoints = errors.New("fee basis points must be between 0-1000 (0-10%)")
)

// ErrorCode returns a stable machine-readable kind for err, or "" if err is
// not one of the engine's sentinel errors.
func ErrorCode(err error) string {
	for _, c := range errorCodes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return ""
}

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrDuplicateAbility, "DuplicateAbility"},
	{ErrRosterFull, "RosterFull"},
	{ErrPositionFilled, "PositionFilled"},
	{ErrNotOnTeam, "NotOnTeam"},
	{ErrInvalidParameters, "InvalidParameters"},
	{ErrTournamentClosed, "TournamentClosed"},
	{ErrTournamentFull, "TournamentFull"},
	{ErrAlreadyRegistered, "AlreadyRegistered"},
	{ErrMatchNotFound, "MatchNotFound"},
	{ErrAlreadyRecorded, "AlreadyRecorded"},
	{ErrWrongStatus, "WrongStatus"},
	{ErrNotFound, "NotFound"},
	{ErrAlreadyExists, "AlreadyExists"},
	{ErrUnauthorized, "Unauthorized"},
	{ErrAthleteAlreadyOnTeam, "AthleteAlreadyOnTeam"},
	{ErrCreatorNotVerified, "CreatorNotVerified"},
	{ErrInvalidFeeBasisPoints, "InvalidFeeBasisPoints"},
}
