package models

import "time"

type TournamentStatus string

const (
	StatusSoon         TournamentStatus = "soon"
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusCompleted    TournamentStatus = "completed"
	StatusCanceled     TournamentStatus = "canceled"
)

type Tournament struct {
	ID        int              `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	Status    TournamentStatus `json:"status" db:"status"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}

type Division struct {
	ID           int              `json:"id" db:"id"`
	TournamentID int              `json:"tournament_id" db:"tournament_id"`
	Name         string           `json:"name" db:"name"`
	Status       TournamentStatus `json:"status" db:"status"`

	Tournament *Tournament `json:"tournament,omitempty" db:"-"`
}

// RosterEntry is a registered player as seen by the directory.
type RosterEntry struct {
	PlayerID      int     `json:"player_id"`
	Name          string  `json:"name"`
	PreferredName *string `json:"preferred_name,omitempty"`
}

func (e RosterEntry) DisplayName() string {
	if e.PreferredName != nil && *e.PreferredName != "" {
		return *e.PreferredName
	}
	return e.Name
}
