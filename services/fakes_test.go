package services

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Dosada05/league-standings/models"
	"github.com/Dosada05/league-standings/repositories"
)

// memoryStore is an in-memory match store with the same conditional write
// semantics as the Postgres repository.
type memoryStore struct {
	mu      sync.Mutex
	nextID  int
	matches map[int]*models.Match
	sets    map[int][]models.MatchSet

	// beforeWrite, when set, runs before every conditional write.
	beforeWrite func(s *memoryStore)
}

func newMemoryStore() *memoryStore {
	return &memoryStore{matches: make(map[int]*models.Match), sets: make(map[int][]models.MatchSet)}
}

func cloneMatch(m *models.Match) *models.Match {
	c := *m
	if m.AwayPlayerID != nil {
		away := *m.AwayPlayerID
		c.AwayPlayerID = &away
	}
	c.Sets = nil
	return &c
}

func (s *memoryStore) hook() {
	if s.beforeWrite != nil {
		s.beforeWrite(s)
	}
}

// mutate changes a stored row directly, bypassing the conditional writes.
func (s *memoryStore) mutate(id int, fn func(m *models.Match)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m, ok := s.matches[id]; ok {
		fn(m)
	}
}

func (s *memoryStore) setRows(id int) []models.MatchSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.MatchSet(nil), s.sets[id]...)
}

func (s *memoryStore) Create(ctx context.Context, match *models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := match.Validate(); err != nil {
		return repositories.ErrMatchStateInvalid
	}
	s.nextID++
	match.ID = s.nextID
	match.CreatedAt = time.Now()
	s.matches[match.ID] = cloneMatch(match)
	return nil
}

func (s *memoryStore) GetByID(ctx context.Context, id int) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	c := cloneMatch(m)
	c.Sets = append([]models.MatchSet{}, s.sets[id]...)
	return c, nil
}

func (s *memoryStore) list(keep func(m *models.Match) bool) []*models.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Match, 0)
	for _, m := range s.matches {
		if keep(m) {
			out = append(out, cloneMatch(m))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memoryStore) ListByScope(ctx context.Context, tournamentID, divisionID int, statuses []models.MatchStatus) ([]*models.Match, error) {
	pred := models.MatchPredicate{Statuses: statuses}
	return s.list(func(m *models.Match) bool {
		return m.TournamentID == tournamentID && m.DivisionID == divisionID && pred.Matches(m)
	}), nil
}

func (s *memoryStore) ListByPair(ctx context.Context, tournamentID, divisionID, a, b int) ([]*models.Match, error) {
	return s.list(func(m *models.Match) bool {
		return m.TournamentID == tournamentID && m.DivisionID == divisionID && m.IsPair(a, b)
	}), nil
}

func (s *memoryStore) Claim(ctx context.Context, id, awayPlayerID int) (bool, error) {
	s.hook()
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok || m.Status != models.MatchStatusPending || m.AwayPlayerID != nil {
		return false, nil
	}
	m.AwayPlayerID = &awayPlayerID
	m.Status = models.MatchStatusScheduled
	return true, nil
}

func (s *memoryStore) UpdateSchedule(ctx context.Context, id int, fields models.ScheduleFields, expect models.MatchPredicate) (bool, error) {
	s.hook()
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok || !expect.Matches(m) {
		return false, nil
	}
	m.Date, m.StartTime, m.AreaID, m.Venue = fields.Date, fields.StartTime, fields.AreaID, fields.Venue
	return true, nil
}

func (s *memoryStore) SaveResult(ctx context.Context, id, awayPlayerID int, result models.MatchResult, sets []models.MatchSet, expect models.MatchPredicate) (bool, error) {
	s.hook()
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok || !expect.Matches(m) {
		return false, nil
	}
	m.Status = models.MatchStatusPlayed
	m.AwayPlayerID = &awayPlayerID
	m.MatchResult = result
	rows := make([]models.MatchSet, len(sets))
	for i, set := range sets {
		set.MatchID = id
		rows[i] = set
	}
	s.sets[id] = rows
	return true, nil
}

func (s *memoryStore) Delete(ctx context.Context, id int, expect models.MatchPredicate) (bool, error) {
	s.hook()
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok || !expect.Matches(m) {
		return false, nil
	}
	delete(s.sets, id)
	delete(s.matches, id)
	return true, nil
}

type memoryDirectory struct {
	roster map[[2]int][]models.RosterEntry
}

func newMemoryDirectory(tournamentID, divisionID int, entries ...models.RosterEntry) *memoryDirectory {
	return &memoryDirectory{roster: map[[2]int][]models.RosterEntry{{tournamentID, divisionID}: entries}}
}

func (d *memoryDirectory) ListRoster(ctx context.Context, tournamentID, divisionID int) ([]models.RosterEntry, error) {
	return d.roster[[2]int{tournamentID, divisionID}], nil
}

func (d *memoryDirectory) IsRegistered(ctx context.Context, tournamentID, divisionID, playerID int) (bool, error) {
	for _, e := range d.roster[[2]int{tournamentID, divisionID}] {
		if e.PlayerID == playerID {
			return true, nil
		}
	}
	return false, nil
}

type memoryStats struct {
	rows []*models.StandingsRow
	err  error
}

func (m memoryStats) ListByDivision(ctx context.Context, tournamentID, divisionID int) ([]*models.StandingsRow, error) {
	return m.rows, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
