package models

// StandingsRow is one player's aggregated record in a division of a
// tournament. Points come from the stats aggregator; Rank is assigned by the
// standings engine.
type StandingsRow struct {
	PlayerID     int    `json:"player_id" db:"player_id"`
	Name         string `json:"name" db:"-"`
	TournamentID int    `json:"tournament_id" db:"tournament_id"`
	DivisionID   int    `json:"division_id" db:"division_id"`
	Points       int    `json:"points" db:"points"`
	Wins         int    `json:"wins" db:"wins"`
	Losses       int    `json:"losses" db:"losses"`
	SetsWon      int    `json:"sets_won" db:"sets_won"`
	SetsLost     int    `json:"sets_lost" db:"sets_lost"`
	GamesWon     int    `json:"games_won" db:"games_won"`
	GamesLost    int    `json:"games_lost" db:"games_lost"`
	Drinks       int    `json:"drinks" db:"drinks"`
	Rank         int    `json:"rank" db:"-"`
}
