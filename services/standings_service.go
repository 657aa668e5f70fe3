package services

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Dosada05/league-standings/models"
	"github.com/Dosada05/league-standings/pairing"
	"github.com/Dosada05/league-standings/repositories"
	"github.com/Dosada05/league-standings/standings"
)

// HomeAwayView is the side assignment a pairing would get if a match were
// created for it now.
type HomeAwayView struct {
	TournamentID int `json:"tournament_id"`
	DivisionID   int `json:"division_id"`
	HomePlayerID int `json:"home_player_id"`
	AwayPlayerID int `json:"away_player_id"`
}

type StandingsService interface {
	GetStandings(ctx context.Context, tournamentID, divisionID int) ([]models.StandingsRow, error)
	HomeAway(ctx context.Context, tournamentID, divisionID, a, b int) (HomeAwayView, error)
}

type standingsService struct {
	directory repositories.RegistrationRepository
	stats     repositories.StandingRepository
	matches   repositories.MatchRepository
	engine    *standings.Engine
	logger    *slog.Logger
}

func NewStandingsService(
	directory repositories.RegistrationRepository,
	stats repositories.StandingRepository,
	matches repositories.MatchRepository,
	engine *standings.Engine,
	logger *slog.Logger,
) StandingsService {
	return &standingsService{
		directory: directory,
		stats:     stats,
		matches:   matches,
		engine:    engine,
		logger:    logger,
	}
}

// GetStandings loads the roster, the aggregated stats and the played matches
// of the division concurrently and ranks every registered player.
func (s *standingsService) GetStandings(ctx context.Context, tournamentID, divisionID int) ([]models.StandingsRow, error) {
	var (
		roster []models.RosterEntry
		stats  []*models.StandingsRow
		played []*models.Match
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		roster, err = s.directory.ListRoster(gCtx, tournamentID, divisionID)
		if err != nil {
			return fmt.Errorf("load roster: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		stats, err = s.stats.ListByDivision(gCtx, tournamentID, divisionID)
		if err != nil {
			return fmt.Errorf("load stats: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		played, err = s.matches.ListByScope(gCtx, tournamentID, divisionID, []models.MatchStatus{models.MatchStatusPlayed})
		if err != nil {
			return fmt.Errorf("load played matches: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("failed to load standings data",
			slog.Int("tournament_id", tournamentID),
			slog.Int("division_id", divisionID),
			slog.Any("error", err))
		return nil, fmt.Errorf("standings for tournament %d division %d: %w", tournamentID, divisionID, err)
	}

	matches := make([]models.Match, 0, len(played))
	for _, m := range played {
		if m != nil {
			matches = append(matches, *m)
		}
	}

	rows := standings.FillRoster(roster, stats, divisionID, tournamentID)
	return s.engine.Rank(rows, matches, divisionID, tournamentID), nil
}

func (s *standingsService) HomeAway(ctx context.Context, tournamentID, divisionID, a, b int) (HomeAwayView, error) {
	if err := validatePlayers(a, &b); err != nil {
		return HomeAwayView{}, err
	}
	home, away := pairing.AssignSides(divisionID, tournamentID, a, b)
	return HomeAwayView{
		TournamentID: tournamentID,
		DivisionID:   divisionID,
		HomePlayerID: home,
		AwayPlayerID: away,
	}, nil
}
