package services

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/Dosada05/tournament-progression/brackets"
	"github.com/Dosada05/tournament-progression/models"
	"github.com/Dosada05/tournament-progression/repositories"
	"github.com/Dosada05/tournament-progression/results"
	"github.com/Dosada05/tournament-progression/scoring"
	"github.com/Dosada05/tournament-progression/storage"
	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"
)

type NextRoundAction string

const (
	// ActionMaterialized: this call filled at least one next-round match.
	ActionMaterialized NextRoundAction = "materialized"
	// ActionWaiting: a dependent match still waits for another feeder.
	ActionWaiting NextRoundAction = "waiting"
	// ActionTerminal: nothing is left to do for this match.
	ActionTerminal NextRoundAction = "terminal"
)

type RecordResultInput struct {
	MatchID     string              `json:"-"`
	Format      models.ResultFormat `json:"format"`
	Payload     json.RawMessage     `json:"data"`
	SubmittedBy *int                `json:"-"`
}

type ProgressionOutcome struct {
	MatchID              string             `json:"match_id"`
	Ranking              []models.RankEntry `json:"ranking"`
	PointsAwarded        map[string]float64 `json:"points_awarded"`
	NextRoundAction      NextRoundAction    `json:"next_round_action"`
	MaterializedMatchIDs []string           `json:"materialized_match_ids"`
	WaitingMatchIDs      []string           `json:"waiting_match_ids,omitempty"`
}

// Notifier pushes progression events to realtime subscribers.
type Notifier interface {
	BroadcastToRoom(roomID string, message interface{})
}

// ResultArchiver stores a copy of recorded results. Archiving is best effort.
type ResultArchiver interface {
	Archive(ctx context.Context, rec *models.ResultRecord) (*storage.StoredObject, error)
}

type ProgressionService interface {
	RecordResult(ctx context.Context, input RecordResultInput) (*ProgressionOutcome, error)
	Advance(ctx context.Context, matchID string) (*ProgressionOutcome, error)
	ConfirmRoster(ctx context.Context, matchID string, participantIDs []string, confirmedBy *int) (*models.MatchRoster, error)
	GetMatch(ctx context.Context, matchID string) (*models.Match, error)
	ListMatches(ctx context.Context, tournamentID int) ([]*models.Match, error)
}

type progressionService struct {
	matchRepo   repositories.MatchRepository
	rosterRepo  repositories.RosterRepository
	scoringRepo repositories.ScoringConfigRepository
	registry    *results.Registry
	notifier    Notifier
	archiver    ResultArchiver
	logger      *slog.Logger
	now         func() time.Time
}

type ProgressionServiceDeps struct {
	MatchRepo   repositories.MatchRepository
	RosterRepo  repositories.RosterRepository
	ScoringRepo repositories.ScoringConfigRepository
	Registry    *results.Registry
	Notifier    Notifier
	Archiver    ResultArchiver
	Logger      *slog.Logger
	Now         func() time.Time
}

func NewProgressionService(deps ProgressionServiceDeps) ProgressionService {
	s := &progressionService{
		matchRepo:   deps.MatchRepo,
		rosterRepo:  deps.RosterRepo,
		scoringRepo: deps.ScoringRepo,
		registry:    deps.Registry,
		notifier:    deps.Notifier,
		archiver:    deps.Archiver,
		logger:      deps.Logger,
		now:         deps.Now,
	}
	if s.registry == nil {
		s.registry = results.NewDefaultRegistry()
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *progressionService) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	m, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, matchID)
		}
		return nil, fmt.Errorf("failed to load match %s: %w", matchID, err)
	}
	return m, nil
}

func (s *progressionService) ListMatches(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	matches, err := s.matchRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches of tournament %d: %w", tournamentID, err)
	}
	return matches, nil
}

func (s *progressionService) ConfirmRoster(ctx context.Context, matchID string, participantIDs []string, confirmedBy *int) (*models.MatchRoster, error) {
	match, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.IsRecorded() {
		return nil, fmt.Errorf("%w: %s", ErrResultConflict, matchID)
	}
	if !match.IsResolved() {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotReady, matchID)
	}
	if err := validateRoster(match, participantIDs); err != nil {
		return nil, err
	}

	roster := &models.MatchRoster{
		MatchID:        matchID,
		ParticipantIDs: slices.Clone(participantIDs),
		ConfirmedBy:    confirmedBy,
		ConfirmedAt:    s.now(),
	}
	if err := s.rosterRepo.Upsert(ctx, nil, roster); err != nil {
		return nil, fmt.Errorf("failed to save roster of %s: %w", matchID, err)
	}
	s.logger.InfoContext(ctx, "match roster confirmed", slog.String("match_id", matchID), slog.Int("participants", len(participantIDs)))
	return roster, nil
}

func validateRoster(match *models.Match, participantIDs []string) error {
	if len(participantIDs) == 0 {
		return fmt.Errorf("%w: roster of %s is empty", ErrRosterInvalid, match.ID)
	}
	allowed := match.Participants()
	seen := make(map[string]struct{}, len(participantIDs))
	for _, id := range participantIDs {
		if !slices.Contains(allowed, id) {
			return fmt.Errorf("%w: %q does not play in %s", ErrRosterInvalid, id, match.ID)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %q listed twice", ErrRosterInvalid, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

// RecordResult validates and records a result, appends its ledger entries and
// materializes whatever next-round matches it completes.
func (s *progressionService) RecordResult(ctx context.Context, input RecordResultInput) (*ProgressionOutcome, error) {
	logger := s.logger.With(slog.String("match_id", input.MatchID))

	match, err := s.GetMatch(ctx, input.MatchID)
	if err != nil {
		return nil, err
	}
	if match.IsRecorded() {
		return nil, fmt.Errorf("%w: %s", ErrResultConflict, match.ID)
	}
	if input.Format != match.Format {
		return nil, fmt.Errorf("%w: got %s, match %s expects %s", ErrFormatMismatch, input.Format, match.ID, match.Format)
	}
	if !match.IsResolved() {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotReady, match.ID)
	}

	var (
		roster     *models.MatchRoster
		cfg        *models.TournamentScoringConfig
		tournament []*models.Match
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.rosterRepo.GetByMatch(gCtx, nil, match.ID)
		if errors.Is(err, repositories.ErrRosterNotFound) {
			return fmt.Errorf("%w: %s", ErrRosterNotConfirmed, match.ID)
		}
		if err != nil {
			return fmt.Errorf("failed to load roster of %s: %w", match.ID, err)
		}
		roster = r
		return nil
	})
	g.Go(func() error {
		c, err := s.scoringRepo.GetByTournament(gCtx, nil, match.TournamentID)
		if errors.Is(err, repositories.ErrScoringConfigNotFound) {
			cfg = models.DefaultScoringConfig(match.TournamentID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load scoring config of tournament %d: %w", match.TournamentID, err)
		}
		cfg = c
		return nil
	})
	g.Go(func() error {
		list, err := s.matchRepo.ListByTournament(gCtx, nil, match.TournamentID)
		if err != nil {
			return fmt.Errorf("failed to list matches of tournament %d: %w", match.TournamentID, err)
		}
		tournament = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := validateRoster(match, roster.ParticipantIDs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRosterNotConfirmed, err)
	}

	ranking, err := s.registry.Interpret(input.Format, input.Payload, roster.ParticipantIDs)
	if err != nil {
		return nil, err
	}
	if match.Format == models.FormatTeamMatch {
		// Команда должна совпадать ровно с одной стороной матча.
		sides := make([][]string, len(match.Slots))
		for i, slot := range match.Slots {
			sides[i] = slot.ParticipantIDs
		}
		if err := (results.TeamMatch{}).CheckSides(input.Payload, sides); err != nil {
			return nil, err
		}
	}

	points, err := scoring.Calculate(ranking, cfg, scoring.MatchContext{Phase: match.Phase, Pod: match.Pod})
	if err != nil {
		return nil, err
	}

	feeder, err := brackets.NewFeederGraph(tournament)
	if err != nil {
		return nil, fmt.Errorf("failed to build feeder graph of tournament %d: %w", match.TournamentID, err)
	}
	if len(feeder.Dependents(match.ID)) > 0 {
		if _, err := brackets.DetermineAdvancers(match.Format, match.Participants(), ranking); err != nil {
			return nil, &AdvancementAmbiguousError{MatchID: match.ID, Ranking: ranking, Err: err}
		}
	}

	raw, err := json.Marshal(models.ResultPayload{Format: input.Format, Data: compactJSON(input.Payload)})
	if err != nil {
		return nil, fmt.Errorf("failed to encode raw result: %w", err)
	}

	recordedAt := s.now().UTC()
	rec := &models.ResultRecord{
		MatchID:       match.ID,
		TournamentID:  match.TournamentID,
		RawResult:     raw,
		Ranking:       ranking,
		PointsAwarded: points,
		Digest:        resultDigest(raw),
		LedgerEntries: ledgerEntries(match, ranking, points, recordedAt),
		RecordedAt:    recordedAt,
	}
	if err := s.matchRepo.RecordResult(ctx, rec); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMatchAlreadyRecorded):
			return nil, fmt.Errorf("%w: %s", ErrResultConflict, match.ID)
		case errors.Is(err, repositories.ErrMatchNotFound):
			return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, match.ID)
		}
		return nil, fmt.Errorf("failed to record result of %s: %w", match.ID, err)
	}
	logger.InfoContext(ctx, "match result recorded",
		slog.Int("tournament_id", match.TournamentID),
		slog.String("phase", string(match.Phase)),
		slog.String("digest", rec.Digest))

	s.notify(match.TournamentID, brackets.EventMatchRecorded, map[string]interface{}{
		"match_id":       match.ID,
		"ranking":        ranking,
		"points_awarded": points,
	})
	s.archive(ctx, rec)

	outcome := &ProgressionOutcome{
		MatchID:       match.ID,
		Ranking:       ranking,
		PointsAwarded: points,
	}
	if err := s.progress(ctx, match, outcome); err != nil {
		logger.ErrorContext(ctx, "next round materialization failed", slog.Any("error", err))
		return outcome, fmt.Errorf("%w: %w", ErrMaterializationFailed, err)
	}
	return outcome, nil
}

// Advance re-evaluates the dependents of an already recorded match. It is how
// a caller retries materialization without submitting anything new.
func (s *progressionService) Advance(ctx context.Context, matchID string) (*ProgressionOutcome, error) {
	match, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if !match.IsRecorded() {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotRecorded, matchID)
	}

	outcome := &ProgressionOutcome{
		MatchID:       match.ID,
		Ranking:       match.Ranking,
		PointsAwarded: match.PointsAwarded,
	}
	if err := s.progress(ctx, match, outcome); err != nil {
		return nil, err
	}
	return outcome, nil
}

// progress plans against the state as stored after the result write, so of two
// sibling feeders recorded concurrently at least one sees both results. The
// per-round write then lets exactly one of them apply.
func (s *progressionService) progress(ctx context.Context, match *models.Match, outcome *ProgressionOutcome) error {
	outcome.MaterializedMatchIDs = []string{}

	matches, err := s.matchRepo.ListByTournament(ctx, nil, match.TournamentID)
	if err != nil {
		return fmt.Errorf("failed to list matches of tournament %d: %w", match.TournamentID, err)
	}
	feeder, err := brackets.NewFeederGraph(matches)
	if err != nil {
		return fmt.Errorf("failed to build feeder graph of tournament %d: %w", match.TournamentID, err)
	}
	plan, err := brackets.PlanAdvancement(feeder, match.ID)
	if err != nil {
		if errors.Is(err, brackets.ErrAdvancementAmbiguous) {
			return &AdvancementAmbiguousError{MatchID: match.ID, Ranking: match.Ranking, Err: err}
		}
		return err
	}

	at := s.now().UTC()
	for _, round := range plan.Ready {
		applied, err := s.matchRepo.MaterializeRound(ctx, round, at)
		if err != nil {
			return fmt.Errorf("failed to materialize round %d of tournament %d: %w", round.Round, round.TournamentID, err)
		}
		if len(applied) == 0 {
			continue
		}
		outcome.MaterializedMatchIDs = append(outcome.MaterializedMatchIDs, applied...)
		s.logger.InfoContext(ctx, "round materialized",
			slog.Int("tournament_id", round.TournamentID),
			slog.Int("round", round.Round),
			slog.Any("match_ids", applied))
		s.notify(round.TournamentID, brackets.EventRoundMaterialized, map[string]interface{}{
			"round":     round.Round,
			"match_ids": applied,
			"source":    match.ID,
		})
	}

	for _, id := range plan.Waiting {
		var pending []string
		for _, f := range feeder.Feeders(id) {
			if !f.IsRecorded() {
				pending = append(pending, f.ID)
			}
		}
		s.logger.DebugContext(ctx, "next round match waits for feeders", slog.String("match_id", id), slog.Any("pending", pending))
	}
	if !plan.HasDependents() {
		s.logger.InfoContext(ctx, "match closes its bracket path", slog.String("match_id", match.ID), slog.String("phase", string(match.Phase)))
	}

	outcome.WaitingMatchIDs = plan.Waiting
	switch {
	case len(outcome.MaterializedMatchIDs) > 0:
		outcome.NextRoundAction = ActionMaterialized
	case len(plan.Waiting) > 0:
		outcome.NextRoundAction = ActionWaiting
	default:
		outcome.NextRoundAction = ActionTerminal
	}
	return nil
}

func (s *progressionService) notify(tournamentID int, event string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	room := brackets.TournamentRoom(tournamentID)
	s.notifier.BroadcastToRoom(room, brackets.WebSocketMessage{Type: event, Payload: payload, RoomID: room})
}

func (s *progressionService) archive(ctx context.Context, rec *models.ResultRecord) {
	if s.archiver == nil {
		return
	}
	if _, err := s.archiver.Archive(ctx, rec); err != nil {
		s.logger.WarnContext(ctx, "failed to archive result", slog.String("match_id", rec.MatchID), slog.Any("error", err))
	}
}

func ledgerEntries(match *models.Match, ranking []models.RankEntry, points map[string]float64, at time.Time) []*models.LedgerEntry {
	entries := make([]*models.LedgerEntry, 0, len(ranking))
	for _, r := range ranking {
		entries = append(entries, &models.LedgerEntry{
			ID:            uuid.NewString(),
			TournamentID:  match.TournamentID,
			ParticipantID: r.ParticipantID,
			MatchID:       match.ID,
			Rank:          r.Rank,
			Points:        points[r.ParticipantID],
			RecordedAt:    at,
		})
	}
	return entries
}

func compactJSON(raw json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}

// resultDigest identifies a stored result by the hash of its raw document.
func resultDigest(raw []byte) string {
	sum := blake2b.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
