package models

type ChangeOp string

const (
	ChangeInsert ChangeOp = "INSERT"
	ChangeUpdate ChangeOp = "UPDATE"
	ChangeDelete ChangeOp = "DELETE"
)

// MatchChangedEvent is delivered by the store's change feed, at least once and
// possibly duplicated, for every write to a match row.
type MatchChangedEvent struct {
	Op           ChangeOp    `json:"op"`
	MatchID      int         `json:"match_id"`
	Status       MatchStatus `json:"status"`
	TournamentID int         `json:"tournament_id"`
	DivisionID   int         `json:"division_id"`
	HomePlayerID int         `json:"home_player_id"`
}
