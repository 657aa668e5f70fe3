package models

import "time"

type PlayerRole string

const (
	RolePlayer PlayerRole = "player"
	RoleAdmin  PlayerRole = "admin"
)

// TimeBlock is a coarse part of the day used by the availability calendar.
type TimeBlock string

const (
	BlockMorning   TimeBlock = "morning"
	BlockAfternoon TimeBlock = "afternoon"
	BlockEvening   TimeBlock = "evening"
)

// Availability maps a weekday and time block to whether the player can play.
type Availability map[time.Weekday]map[TimeBlock]bool

func (a Availability) IsAvailable(day time.Weekday, block TimeBlock) bool {
	if a == nil {
		return false
	}
	return a[day][block]
}

type Player struct {
	ID             int          `json:"id" db:"id"`
	Name           string       `json:"name" db:"name"`
	PreferredName  *string      `json:"preferred_name,omitempty" db:"preferred_name"`
	Role           PlayerRole   `json:"role" db:"role"`
	PreferredAreas []int        `json:"preferred_areas,omitempty" db:"-"`
	Availability   Availability `json:"availability,omitempty" db:"-"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
}

// DisplayName returns the preferred short name when the player set one.
func (p *Player) DisplayName() string {
	if p == nil {
		return ""
	}
	if p.PreferredName != nil && *p.PreferredName != "" {
		return *p.PreferredName
	}
	return p.Name
}

// Actor is the identity performing a match operation.
type Actor struct {
	PlayerID int
	Role     PlayerRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
