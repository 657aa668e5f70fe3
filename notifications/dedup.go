// Package notifications turns the store's match change feed into "new open
// match" notifications, each surfaced at most once per session.
package notifications

import (
	"container/list"
	"sync"

	"github.com/Dosada05/league-standings/models"
)

const DefaultFilterCapacity = 1024

// OpenMatchNotification announces a pending match that other players can claim.
type OpenMatchNotification struct {
	MatchID      int `json:"match_id"`
	TournamentID int `json:"tournament_id"`
	DivisionID   int `json:"division_id"`
	HomePlayerID int `json:"home_player_id"`
}

type filterEntry struct {
	matchID int
	open    bool
}

// Filter remembers which matches were already announced. Matches that left
// pending stay remembered as closed, so a late duplicate of their pending
// event is still dropped; closed entries are the first to be evicted once the
// filter is over capacity. Filter is safe for concurrent use.
type Filter struct {
	mu       sync.Mutex
	capacity int
	entries  map[int]*list.Element
	open     *list.List
	closed   *list.List
}

func NewFilter(capacity int) *Filter {
	if capacity <= 0 {
		capacity = DefaultFilterCapacity
	}
	return &Filter{
		capacity: capacity,
		entries:  make(map[int]*list.Element),
		open:     list.New(),
		closed:   list.New(),
	}
}

// Observe consumes one change event and returns the notification to surface,
// if any.
func (f *Filter) Observe(ev models.MatchChangedEvent) (OpenMatchNotification, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	el, seen := f.entries[ev.MatchID]
	isOpen := ev.Op != models.ChangeDelete && ev.Status == models.MatchStatusPending

	if !isOpen {
		if !seen {
			f.entries[ev.MatchID] = f.closed.PushBack(&filterEntry{matchID: ev.MatchID})
			f.evict()
		} else if entry := el.Value.(*filterEntry); entry.open {
			f.open.Remove(el)
			entry.open = false
			f.entries[ev.MatchID] = f.closed.PushBack(entry)
		}
		return OpenMatchNotification{}, false
	}

	if seen {
		return OpenMatchNotification{}, false
	}
	f.entries[ev.MatchID] = f.open.PushBack(&filterEntry{matchID: ev.MatchID, open: true})
	f.evict()

	return OpenMatchNotification{
		MatchID:      ev.MatchID,
		TournamentID: ev.TournamentID,
		DivisionID:   ev.DivisionID,
		HomePlayerID: ev.HomePlayerID,
	}, true
}

// Forget drops an open match so its next pending event is announced again.
// Matches already remembered as closed are kept.
func (f *Filter) Forget(matchID int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	el, ok := f.entries[matchID]
	if !ok || !el.Value.(*filterEntry).open {
		return
	}
	f.open.Remove(el)
	delete(f.entries, matchID)
}

// Len returns the number of remembered matches.
func (f *Filter) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

func (f *Filter) evict() {
	for len(f.entries) > f.capacity {
		victims := f.closed
		if victims.Len() == 0 {
			victims = f.open
		}
		front := victims.Front()
		if front == nil {
			return
		}
		victims.Remove(front)
		delete(f.entries, front.Value.(*filterEntry).matchID)
	}
}
