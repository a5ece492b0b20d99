package brackets

import (
	"context"
	"time"

	"github.com/Dosada05/tournament-progression/models"
)

type GenerateBracketParams struct {
	TournamentID int
	Pairings     models.Pairings
	Format       models.ResultFormat
	Now          time.Time
}

type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.Match, error)

	GetName() string
}
