package brackets

import (
	"cmp"
	"encoding/binary"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/Dosada05/tournament-progression/models"
	"golang.org/x/crypto/blake2b"
)

var (
	ErrInvalidStandings       = errors.New("invalid group standings")
	ErrNotEnoughParticipants  = errors.New("not enough group participants for the requested qualifier count")
	ErrDuplicateParticipant   = errors.New("participant appears more than once in group standings")
	ErrMissingGroupIdentifier = errors.New("group standing without group id")
)

// rankedStanding carries the precomputed keys used by the seeding comparator.
type rankedStanding struct {
	*models.GroupStanding
	headToHead int
	draw       uint64
}

// CalculateSeeds orders qualifiers for the knockout stage: group winners
// first, then runners-up, then the best third-placed participants and so on,
// each tier sorted by points, head-to-head, goal difference, goals scored
// and a fixed-seed draw. The result holds exactly `qualifiers` seeds.
//
// The function is pure; the same standings and drawSeed always give the same
// assignment.
func CalculateSeeds(standings []*models.GroupStanding, qualifiers int, drawSeed int64) (models.SeedAssignment, error) {
	if qualifiers < MinQualifiers {
		return models.SeedAssignment{}, fmt.Errorf("%w: got %d", ErrTooFewQualifiers, qualifiers)
	}

	groups, err := groupStandings(standings, drawSeed)
	if err != nil {
		return models.SeedAssignment{}, err
	}
	if len(standings) < qualifiers {
		return models.SeedAssignment{}, fmt.Errorf("%w: %d qualifiers requested, %d participants in %d groups",
			ErrNotEnoughParticipants, qualifiers, len(standings), len(groups))
	}

	groupIDs := make([]string, 0, len(groups))
	maxSize := 0
	for id, table := range groups {
		groupIDs = append(groupIDs, id)
		maxSize = max(maxSize, len(table))
	}
	slices.Sort(groupIDs)

	seeds := make([]models.Seed, 0, qualifiers)
	for pos := 0; pos < maxSize && len(seeds) < qualifiers; pos++ {
		tier := make([]*rankedStanding, 0, len(groupIDs))
		for _, id := range groupIDs {
			if table := groups[id]; pos < len(table) {
				// Participants of different groups never met.
				entry := *table[pos]
				entry.headToHead = 0
				tier = append(tier, &entry)
			}
		}
		slices.SortStableFunc(tier, compareStandings)

		for _, s := range tier {
			if len(seeds) == qualifiers {
				break
			}
			seeds = append(seeds, models.Seed{
				ParticipantID: s.ParticipantID,
				GroupID:       s.GroupID,
				GroupPosition: pos + 1,
			})
		}
	}

	return models.SeedAssignment{Seeds: seeds}, nil
}

// RankGroup returns a single group's table in finishing order.
func RankGroup(standings []*models.GroupStanding, drawSeed int64) ([]*models.GroupStanding, error) {
	groups, err := groupStandings(standings, drawSeed)
	if err != nil {
		return nil, err
	}
	if len(groups) > 1 {
		return nil, fmt.Errorf("%w: expected a single group, got %d", ErrInvalidStandings, len(groups))
	}
	out := make([]*models.GroupStanding, 0, len(standings))
	for _, table := range groups {
		for _, s := range table {
			out = append(out, s.GroupStanding)
		}
	}
	return out, nil
}

func groupStandings(standings []*models.GroupStanding, drawSeed int64) (map[string][]*rankedStanding, error) {
	seen := make(map[string]struct{}, len(standings))
	groups := make(map[string][]*rankedStanding)

	for _, s := range standings {
		if s == nil {
			return nil, fmt.Errorf("%w: nil standing", ErrInvalidStandings)
		}
		if s.GroupID == "" {
			return nil, fmt.Errorf("%w: participant %q", ErrMissingGroupIdentifier, s.ParticipantID)
		}
		if s.ParticipantID == "" {
			return nil, fmt.Errorf("%w: empty participant id in group %q", ErrInvalidStandings, s.GroupID)
		}
		if _, dup := seen[s.ParticipantID]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateParticipant, s.ParticipantID)
		}
		seen[s.ParticipantID] = struct{}{}
		groups[s.GroupID] = append(groups[s.GroupID], &rankedStanding{
			GroupStanding: s,
			draw:          drawKey(drawSeed, s.ParticipantID),
		})
	}

	for _, table := range groups {
		applyHeadToHead(table)
		slices.SortStableFunc(table, compareStandings)
	}
	return groups, nil
}

// applyHeadToHead scores each participant against the others on the same
// points total only, which keeps the comparator transitive for three-way ties.
func applyHeadToHead(table []*rankedStanding) {
	byPoints := make(map[int][]string)
	for _, s := range table {
		byPoints[s.Points] = append(byPoints[s.Points], s.ParticipantID)
	}
	for _, s := range table {
		tied := byPoints[s.Points]
		opponents := make([]string, 0, len(tied))
		for _, id := range tied {
			if id != s.ParticipantID {
				opponents = append(opponents, id)
			}
		}
		s.headToHead = s.HeadToHeadScore(opponents...)
	}
}

func compareStandings(a, b *rankedStanding) int {
	if c := cmp.Compare(b.Points, a.Points); c != 0 {
		return c
	}
	if c := cmp.Compare(b.headToHead, a.headToHead); c != 0 {
		return c
	}
	if c := cmp.Compare(b.GoalDifference, a.GoalDifference); c != 0 {
		return c
	}
	if c := cmp.Compare(b.ScoreFor, a.ScoreFor); c != 0 {
		return c
	}
	if c := cmp.Compare(a.draw, b.draw); c != 0 {
		return c
	}
	return cmp.Compare(a.ParticipantID, b.ParticipantID)
}

// drawKey is the lot drawn for a participant under a given draw seed.
func drawKey(seed int64, participantID string) uint64 {
	sum := blake2b.Sum256([]byte(strconv.FormatInt(seed, 10) + ":" + participantID))
	return binary.BigEndian.Uint64(sum[:8])
}
