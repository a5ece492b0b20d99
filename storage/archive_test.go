package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/Dosada05/tournament-progression/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingStore struct {
	in   PutObjectInput
	body []byte
	err  error
}

func (u *recordingStore) Put(_ context.Context, in PutObjectInput) (*StoredObject, error) {
	if u.err != nil {
		return nil, u.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	u.in, u.body = in, body
	return &StoredObject{Key: in.Key, Location: u.PublicURL(in.Key)}, nil
}

func (u *recordingStore) PublicURL(key string) string { return "https://cdn.example.com/" + key }

func TestResultArchiveStoresDocument(t *testing.T) {
	up := &recordingStore{}
	archive := NewResultArchive(up, nil)

	at := time.Date(2026, 6, 1, 18, 30, 0, 0, time.UTC)
	res, err := archive.Archive(context.Background(), &models.ResultRecord{
		MatchID:       "t3-R2M1",
		TournamentID:  3,
		RawResult:     json.RawMessage(`{"format":"TIME_BASED","data":{"times":{"a":9.8}}}`),
		Ranking:       []models.RankEntry{{ParticipantID: "a", Rank: 1}},
		PointsAwarded: map[string]float64{"a": 3},
		Digest:        "abc123",
		RecordedAt:    at,
	})
	require.NoError(t, err)

	assert.Equal(t, "results/t3/t3-R2M1-abc123.json", res.Key)
	assert.Equal(t, "application/json", up.in.ContentType)
	assert.Equal(t, map[string]string{"match-id": "t3-R2M1", "tournament-id": "3", "digest": "abc123"}, up.in.Metadata)

	var doc ArchivedResult
	require.NoError(t, json.Unmarshal(up.body, &doc))
	assert.Equal(t, "abc123", doc.Digest)
	assert.Equal(t, map[string]float64{"a": 3}, doc.PointsAwarded)
	assert.True(t, doc.RecordedAt.Equal(at))
}

func TestResultArchivePropagatesUploadError(t *testing.T) {
	boom := errors.New("bucket unavailable")
	archive := NewResultArchive(&recordingStore{err: boom}, nil)

	_, err := archive.Archive(context.Background(), &models.ResultRecord{MatchID: "t1-R1M1", TournamentID: 1})
	assert.ErrorIs(t, err, boom)
}

func TestPublicURL(t *testing.T) {
	base, err := url.Parse("https://files.example.com/archive")
	require.NoError(t, err)

	assert.Equal(t, "https://files.example.com/archive/results/t1/x.json", publicURL(base, "/results/t1/x.json", slog.Default()))
	assert.Equal(t, "", publicURL(nil, "results/t1/x.json", slog.Default()))
	assert.Equal(t, "", publicURL(base, "", slog.Default()))
}

func TestR2ConfigValidation(t *testing.T) {
	assert.False(t, CloudflareR2UploaderConfig{}.Enabled())

	_, err := NewCloudflareR2Uploader(context.Background(), CloudflareR2UploaderConfig{AccountID: "acc"}, nil)
	assert.Error(t, err)
}

func TestValidateKey(t *testing.T) {
	assert.NoError(t, validateKey(ArchiveKey(2, "t2-R1M1", "ff00")))
	for _, key := range []string{"", "/results/x.json", "results/../secrets.json"} {
		assert.ErrorIs(t, validateKey(key), ErrInvalidObjectKey, key)
	}
}
