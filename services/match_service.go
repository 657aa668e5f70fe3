package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/league-standings/models"
	"github.com/Dosada05/league-standings/pairing"
	"github.com/Dosada05/league-standings/repositories"
)

const (
	MaxAnecdoteWords = 50
	dateLayout       = "2006-01-02"
	startTimeLayout  = "15:04"
)

type CreateMatchInput struct {
	HomePlayerID *int    `json:"home_player_id,omitempty"`
	AwayPlayerID *int    `json:"away_player_id,omitempty"`
	Date         string  `json:"date"`
	StartTime    *string `json:"start_time,omitempty"`
	AreaID       *int    `json:"area_id,omitempty"`
	Venue        *string `json:"venue,omitempty"`
}

type ScheduleInput struct {
	Date      string  `json:"date"`
	StartTime *string `json:"start_time,omitempty"`
	AreaID    *int    `json:"area_id,omitempty"`
	Venue     *string `json:"venue,omitempty"`
}

// SetInput is one set as entered by a player. Sets with a missing score are
// ignored.
type SetInput struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

type ResultInput struct {
	// AwayPlayerID names the opponent when a result is entered directly on a
	// pending match that nobody claimed.
	AwayPlayerID *int       `json:"away_player_id,omitempty"`
	Sets         []SetInput `json:"sets"`
	HomeHadDrink bool       `json:"home_had_drink"`
	AwayHadDrink bool       `json:"away_had_drink"`
	HomeDrinks   int        `json:"home_drinks"`
	AwayDrinks   int        `json:"away_drinks"`
	Anecdote     *string    `json:"anecdote,omitempty"`
}

// MatchService drives the match lifecycle. Writes that depend on an observed
// state are conditional in the store; a lost race surfaces as ErrConflict and
// is never retried here.
type MatchService interface {
	CreateMatch(ctx context.Context, actor models.Actor, tournamentID, divisionID int, input CreateMatchInput) (*models.Match, error)
	ClaimMatch(ctx context.Context, actor models.Actor, matchID int) (*models.Match, error)
	RecordResult(ctx context.Context, actor models.Actor, matchID int, input ResultInput) (*models.Match, error)
	UpdateSchedule(ctx context.Context, actor models.Actor, matchID int, input ScheduleInput) (*models.Match, error)
	DeleteMatch(ctx context.Context, actor models.Actor, matchID int) error
	GetMatch(ctx context.Context, matchID int) (*models.Match, error)
	ListMatches(ctx context.Context, tournamentID, divisionID int, statuses []string) ([]*models.Match, error)
}

type matchService struct {
	matches   repositories.MatchRepository
	directory repositories.RegistrationRepository
	guard     *pairing.Guard
	logger    *slog.Logger
}

func NewMatchService(
	matches repositories.MatchRepository,
	directory repositories.RegistrationRepository,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		matches:   matches,
		directory: directory,
		guard:     pairing.NewGuard(matches),
		logger:    logger,
	}
}

func (s *matchService) CreateMatch(ctx context.Context, actor models.Actor, tournamentID, divisionID int, input CreateMatchInput) (*models.Match, error) {
	schedule, err := parseSchedule(input.Date, input.StartTime, input.AreaID, input.Venue)
	if err != nil {
		return nil, err
	}

	match := &models.Match{
		TournamentID: tournamentID,
		DivisionID:   divisionID,
		Date:         schedule.Date,
		StartTime:    schedule.StartTime,
		AreaID:       schedule.AreaID,
		Venue:        schedule.Venue,
		CreatedBy:    actor.PlayerID,
	}

	if input.AwayPlayerID == nil {
		match.Status = models.MatchStatusPending
		match.HomePlayerID = actor.PlayerID
		if input.HomePlayerID != nil {
			match.HomePlayerID = *input.HomePlayerID
		}
	} else {
		match.Status = models.MatchStatusScheduled
		away := *input.AwayPlayerID
		if input.HomePlayerID != nil {
			match.HomePlayerID = *input.HomePlayerID
		} else {
			match.HomePlayerID, away = pairing.AssignSides(divisionID, tournamentID, actor.PlayerID, away)
		}
		match.AwayPlayerID = &away
	}

	if err := validatePlayers(match.HomePlayerID, match.AwayPlayerID); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !match.Involves(actor.PlayerID) {
		return nil, fmt.Errorf("%w: players can only create their own matches", ErrForbiddenOperation)
	}
	if err := s.requireRegistered(ctx, tournamentID, divisionID, match.HomePlayerID); err != nil {
		return nil, err
	}
	if match.AwayPlayerID != nil {
		if err := s.requireRegistered(ctx, tournamentID, divisionID, *match.AwayPlayerID); err != nil {
			return nil, err
		}
		if err := s.checkPairing(ctx, tournamentID, divisionID, match.HomePlayerID, *match.AwayPlayerID, pairing.CreationStatuses); err != nil {
			return nil, err
		}
	}
	if err := match.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	if err := s.matches.Create(ctx, match); err != nil {
		return nil, mapRepositoryError(err)
	}
	s.logger.Info("match created",
		slog.Int("match_id", match.ID),
		slog.String("status", string(match.Status)),
		slog.Int("division_id", divisionID),
		slog.Int("created_by", actor.PlayerID))
	return match, nil
}

func (s *matchService) ClaimMatch(ctx context.Context, actor models.Actor, matchID int) (*models.Match, error) {
	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	claimant := actor.PlayerID
	if claimant <= 0 {
		return nil, ErrInvalidPlayerID
	}
	if claimant == match.HomePlayerID {
		return nil, ErrCannotClaimOwnMatch
	}
	if err := s.requireRegistered(ctx, match.TournamentID, match.DivisionID, claimant); err != nil {
		return nil, err
	}
	if err := s.checkPairing(ctx, match.TournamentID, match.DivisionID, match.HomePlayerID, claimant, pairing.CreationStatuses); err != nil {
		return nil, err
	}

	applied, err := s.matches.Claim(ctx, matchID, claimant)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if !applied {
		return nil, fmt.Errorf("%w: match %d", ErrMatchAlreadyClaimed, matchID)
	}
	s.logger.Info("match claimed", slog.Int("match_id", matchID), slog.Int("away_player_id", claimant))
	return s.getMatch(ctx, matchID)
}

func (s *matchService) RecordResult(ctx context.Context, actor models.Actor, matchID int, input ResultInput) (*models.Match, error) {
	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	away, err := s.resolveResultOpponent(ctx, match, input.AwayPlayerID)
	if err != nil {
		return nil, err
	}
	if !canRecordResult(actor, match, away) {
		return nil, fmt.Errorf("%w: only participants, the creator or an admin can record results", ErrForbiddenOperation)
	}

	sets, err := normalizeSets(input.Sets)
	if err != nil {
		return nil, err
	}
	anecdote, err := normalizeAnecdote(input.Anecdote)
	if err != nil {
		return nil, err
	}
	if input.HomeDrinks < 0 || input.AwayDrinks < 0 {
		return nil, ErrInvalidDrinkCount
	}

	// A walk-up opponent claims the match, so the pair must not already have
	// a live match of any kind.
	if match.AwayPlayerID == nil {
		if err := s.checkPairing(ctx, match.TournamentID, match.DivisionID, match.HomePlayerID, away, pairing.CreationStatuses, match.ID); err != nil {
			return nil, err
		}
	}
	if err := s.checkPairing(ctx, match.TournamentID, match.DivisionID, match.HomePlayerID, away, pairing.ResultStatuses, match.ID); err != nil {
		return nil, err
	}

	result := models.AggregateSets(sets)
	result.HomeHadDrink = input.HomeHadDrink || input.HomeDrinks > 0
	result.AwayHadDrink = input.AwayHadDrink || input.AwayDrinks > 0
	result.HomeDrinks = input.HomeDrinks
	result.AwayDrinks = input.AwayDrinks
	result.Anecdote = anecdote

	expect := models.MatchPredicate{Statuses: []models.MatchStatus{match.Status}}
	if match.AwayPlayerID == nil {
		expect.AwayUnset = true
	} else {
		expect.AwayPlayerID = match.AwayPlayerID
	}

	applied, err := s.matches.SaveResult(ctx, matchID, away, result, sets, expect)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if !applied {
		return nil, fmt.Errorf("%w: match %d changed while recording the result", ErrMatchNotEditable, matchID)
	}
	s.logger.Info("match result recorded",
		slog.Int("match_id", matchID),
		slog.Int("home_sets", result.HomeSetsWon),
		slog.Int("away_sets", result.AwaySetsWon))
	return s.getMatch(ctx, matchID)
}

func (s *matchService) UpdateSchedule(ctx context.Context, actor models.Actor, matchID int, input ScheduleInput) (*models.Match, error) {
	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !canEdit(actor, match) {
		return nil, fmt.Errorf("%w: only participants, the creator or an admin can edit a match", ErrForbiddenOperation)
	}
	if !match.Status.Editable() {
		return nil, fmt.Errorf("%w: match %d is %s", ErrMatchNotEditable, matchID, match.Status)
	}
	fields, err := parseSchedule(input.Date, input.StartTime, input.AreaID, input.Venue)
	if err != nil {
		return nil, err
	}

	expect := models.MatchPredicate{Statuses: []models.MatchStatus{models.MatchStatusPending, models.MatchStatusScheduled}}
	applied, err := s.matches.UpdateSchedule(ctx, matchID, fields, expect)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if !applied {
		return nil, fmt.Errorf("%w: match %d changed while editing the schedule", ErrMatchNotEditable, matchID)
	}
	return s.getMatch(ctx, matchID)
}

func (s *matchService) DeleteMatch(ctx context.Context, actor models.Actor, matchID int) error {
	match, err := s.getMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if !canEdit(actor, match) {
		return fmt.Errorf("%w: only participants, the creator or an admin can delete a match", ErrForbiddenOperation)
	}

	applied, err := s.matches.Delete(ctx, matchID, models.MatchPredicate{Statuses: []models.MatchStatus{match.Status}})
	if err != nil {
		return mapRepositoryError(err)
	}
	if !applied {
		return fmt.Errorf("%w: match %d changed before it could be deleted", ErrMatchNotEditable, matchID)
	}
	s.logger.Info("match deleted", slog.Int("match_id", matchID), slog.Int("actor_id", actor.PlayerID))
	return nil
}

func (s *matchService) GetMatch(ctx context.Context, matchID int) (*models.Match, error) {
	return s.getMatch(ctx, matchID)
}

func (s *matchService) ListMatches(ctx context.Context, tournamentID, divisionID int, statuses []string) ([]*models.Match, error) {
	filter := make([]models.MatchStatus, 0, len(statuses))
	for _, raw := range statuses {
		st, err := models.ParseMatchStatus(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatusFilter, raw)
		}
		filter = append(filter, st)
	}
	matches, err := s.matches.ListByScope(ctx, tournamentID, divisionID, filter)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return matches, nil
}

func (s *matchService) getMatch(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matches.GetByID(ctx, matchID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return match, nil
}

func (s *matchService) requireRegistered(ctx context.Context, tournamentID, divisionID, playerID int) error {
	ok, err := s.directory.IsRegistered(ctx, tournamentID, divisionID, playerID)
	if err != nil {
		return fmt.Errorf("check registration of player %d: %w", playerID, err)
	}
	if !ok {
		return fmt.Errorf("%w: player %d", ErrPlayerNotRegistered, playerID)
	}
	return nil
}

func (s *matchService) checkPairing(ctx context.Context, tournamentID, divisionID, a, b int, statuses []models.MatchStatus, ignore ...int) error {
	err := s.guard.Check(ctx, tournamentID, divisionID, a, b, statuses, ignore...)
	if errors.Is(err, pairing.ErrDuplicatePairing) {
		return fmt.Errorf("%w: players %d and %d", ErrDuplicatePairing, a, b)
	}
	return err
}

// resolveResultOpponent returns the away player the result will be recorded
// against. A claimed match keeps its opponent; an open one takes it from the
// input.
func (s *matchService) resolveResultOpponent(ctx context.Context, match *models.Match, requested *int) (int, error) {
	if match.AwayPlayerID != nil {
		if requested != nil && *requested != *match.AwayPlayerID {
			return 0, fmt.Errorf("%w: match %d already has player %d as opponent", ErrValidationFailed, match.ID, *match.AwayPlayerID)
		}
		return *match.AwayPlayerID, nil
	}
	if requested == nil {
		return 0, ErrOpponentRequired
	}
	away := *requested
	if err := validatePlayers(match.HomePlayerID, &away); err != nil {
		return 0, err
	}
	if err := s.requireRegistered(ctx, match.TournamentID, match.DivisionID, away); err != nil {
		return 0, err
	}
	return away, nil
}

func canEdit(actor models.Actor, match *models.Match) bool {
	return actor.IsAdmin() || match.CreatedBy == actor.PlayerID || match.Involves(actor.PlayerID)
}

func canRecordResult(actor models.Actor, match *models.Match, away int) bool {
	return canEdit(actor, match) || actor.PlayerID == away
}

func validatePlayers(home int, away *int) error {
	if home <= 0 || (away != nil && *away <= 0) {
		return ErrInvalidPlayerID
	}
	if away != nil && *away == home {
		return ErrSelfPairing
	}
	return nil
}

func parseSchedule(date string, startTime *string, areaID *int, venue *string) (models.ScheduleFields, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(date))
	if err != nil {
		return models.ScheduleFields{}, fmt.Errorf("%w: %q", ErrInvalidMatchDate, date)
	}
	fields := models.ScheduleFields{Date: d, AreaID: areaID}
	if startTime != nil && strings.TrimSpace(*startTime) != "" {
		t, err := time.Parse(startTimeLayout, strings.TrimSpace(*startTime))
		if err != nil {
			return models.ScheduleFields{}, fmt.Errorf("%w: %q", ErrInvalidStartTime, *startTime)
		}
		formatted := t.Format(startTimeLayout)
		fields.StartTime = &formatted
	}
	if venue != nil && strings.TrimSpace(*venue) != "" {
		v := strings.TrimSpace(*venue)
		fields.Venue = &v
	}
	return fields, nil
}

// normalizeSets keeps the sets with both scores present and numbers them
// from 1 in input order.
func normalizeSets(input []SetInput) ([]models.MatchSet, error) {
	sets := make([]models.MatchSet, 0, len(input))
	for _, in := range input {
		if in.Home == nil || in.Away == nil {
			continue
		}
		if *in.Home < 0 || *in.Away < 0 {
			return nil, fmt.Errorf("%w: set %d is %d-%d", ErrInvalidSetScore, len(sets)+1, *in.Home, *in.Away)
		}
		sets = append(sets, models.MatchSet{Number: len(sets) + 1, HomeGames: *in.Home, AwayGames: *in.Away})
	}
	if len(sets) == 0 {
		return nil, ErrNoValidSets
	}
	return sets, nil
}

func normalizeAnecdote(anecdote *string) (*string, error) {
	if anecdote == nil {
		return nil, nil
	}
	text := strings.TrimSpace(*anecdote)
	if text == "" {
		return nil, nil
	}
	if len(strings.Fields(text)) > MaxAnecdoteWords {
		return nil, ErrAnecdoteTooLong
	}
	return &text, nil
}

func mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrMatchReferenceInvalid),
		errors.Is(err, repositories.ErrMatchStateInvalid),
		errors.Is(err, repositories.ErrMatchSetInvalid):
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	default:
		return err
	}
}
