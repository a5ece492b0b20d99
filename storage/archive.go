package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Dosada05/tournament-progression/models"
)

const resultContentType = "application/json"

// ArchivedResult is the document stored for every recorded match.
type ArchivedResult struct {
	MatchID       string             `json:"match_id"`
	TournamentID  int                `json:"tournament_id"`
	Digest        string             `json:"digest"`
	RawResult     json.RawMessage    `json:"raw_result"`
	Ranking       []models.RankEntry `json:"ranking"`
	PointsAwarded map[string]float64 `json:"points_awarded"`
	RecordedAt    time.Time          `json:"recorded_at"`
}

// ResultArchive keeps an immutable copy of every submitted result in object
// storage, keyed by its digest.
type ResultArchive struct {
	store  ObjectStore
	logger *slog.Logger
}

func NewResultArchive(store ObjectStore, logger *slog.Logger) *ResultArchive {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultArchive{store: store, logger: logger}
}

func ArchiveKey(tournamentID int, matchID, digest string) string {
	return fmt.Sprintf("results/t%d/%s-%s.json", tournamentID, matchID, digest)
}

func (a *ResultArchive) Archive(ctx context.Context, rec *models.ResultRecord) (*StoredObject, error) {
	doc := ArchivedResult{
		MatchID:       rec.MatchID,
		TournamentID:  rec.TournamentID,
		Digest:        rec.Digest,
		RawResult:     rec.RawResult,
		Ranking:       rec.Ranking,
		PointsAwarded: rec.PointsAwarded,
		RecordedAt:    rec.RecordedAt,
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encoding archived result of %s: %w", rec.MatchID, err)
	}

	key := ArchiveKey(rec.TournamentID, rec.MatchID, rec.Digest)
	res, err := a.store.Put(ctx, PutObjectInput{
		Key:         key,
		ContentType: resultContentType,
		Metadata: map[string]string{
			"match-id":      rec.MatchID,
			"tournament-id": strconv.Itoa(rec.TournamentID),
			"digest":        rec.Digest,
		},
		Body: bytes.NewReader(body),
	})
	if err != nil {
		return nil, err
	}
	a.logger.DebugContext(ctx, "result archived", slog.String("match_id", rec.MatchID), slog.String("key", res.Key))
	return res, nil
}
