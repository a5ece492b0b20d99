package models

// BracketPlan is the knockout shape for a qualifier count. It is recomputed
// on demand and never persisted.
type BracketPlan struct {
	Qualifiers    int  `json:"qualifiers" yaml:"qualifiers"`
	BracketSize   int  `json:"bracket_size" yaml:"bracket_size"`
	Byes          int  `json:"byes" yaml:"byes"`
	PlayInMatches int  `json:"play_in_matches" yaml:"play_in_matches"`
	HasBronze     bool `json:"has_bronze" yaml:"has_bronze"`
}

// Seed is one entry of a SeedAssignment.
type Seed struct {
	ParticipantID string `json:"participant_id" yaml:"participant"`
	GroupID       string `json:"group_id" yaml:"group"`
	GroupPosition int    `json:"group_position" yaml:"group_position"`
}

// SeedAssignment is ordered strongest first; index+1 is the seed number.
type SeedAssignment struct {
	Seeds []Seed `json:"seeds" yaml:"seeds"`
}

func (a SeedAssignment) ParticipantIDs() []string {
	ids := make([]string, len(a.Seeds))
	for i, s := range a.Seeds {
		ids[i] = s.ParticipantID
	}
	return ids
}

// Pairing is a directly paired match: both sides are known seeds.
type Pairing struct {
	Home     Seed `json:"home" yaml:"home"`
	HomeSeed int  `json:"home_seed" yaml:"home_seed"`
	Away     Seed `json:"away" yaml:"away"`
	AwaySeed int  `json:"away_seed" yaml:"away_seed"`
}

// BracketPosition is a seed slot of the first bracket round. A slot held by a
// play-in survivor references its play-in match by index.
type BracketPosition struct {
	SeedNumber  int   `json:"seed_number" yaml:"seed_number"`
	Seed        *Seed `json:"seed,omitempty" yaml:"seed,omitempty"`
	PlayInIndex *int  `json:"play_in_index,omitempty" yaml:"play_in_index,omitempty"`
}

// Pairings is the output of crossover seeding.
type Pairings struct {
	Plan BracketPlan `json:"plan" yaml:"plan"`
	// Byes lists the seeds that skip the play-in round.
	Byes    []Seed    `json:"byes" yaml:"byes"`
	PlayIns []Pairing `json:"play_ins" yaml:"play_ins"`
	// FirstRound holds the bracket round 1 matchups in bracket order; adjacent
	// matchups meet in round 2.
	FirstRound [][2]BracketPosition `json:"first_round" yaml:"first_round"`
}
