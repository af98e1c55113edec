package core

import (
	"go.uber.org/zap"

	"github.com/huozhe/spotify-downloader/pkg/similarity"
)

// Matcher assigns each song the audio-source candidate whose title is closest
// to the song's name under the character-multiset distance.
type Matcher struct {
	logger  *zap.Logger
	metrics Metrics
}

func NewMatcher(logger *zap.Logger, metrics Metrics) *Matcher {
	if metrics == nil {
		metrics = NopMetrics()
	}
	return &Matcher{logger: logger, metrics: metrics}
}

// Match resolves every song's audio link from the best-scoring candidate.
// Matching is greedy and independent per song: it is not a global bipartite
// assignment, so several songs may map to the same candidate. Ties break on
// the lowest candidate index, which keeps repeated runs deterministic.
//
// Returns ErrNoCandidates when candidates is empty and songs is not; the
// caller must then treat the whole reconciliation as empty. A nonzero winning
// distance is logged as a mismatch warning with both titles so likely wrong
// pairings can be audited, but the song is still resolved with the best
// effort match.
func (m *Matcher) Match(songs []*Song, candidates []Candidate) ([]MatchResult, error) {
	if len(songs) == 0 {
		return nil, nil
	}
	if len(candidates) == 0 {
		return nil, ErrNoCandidates
	}

	results := make([]MatchResult, 0, len(songs))
	for i, song := range songs {
		best := 0
		bestDistance := similarity.Distance(song.Name, candidates[0].Title)
		for j := 1; j < len(candidates); j++ {
			if d := similarity.Distance(song.Name, candidates[j].Title); d < bestDistance {
				best = j
				bestDistance = d
			}
		}

		if bestDistance != 0 {
			m.logger.Warn("Best candidate is not an exact title match",
				zap.String("song", song.Name),
				zap.String("candidate", candidates[best].Title),
				zap.Int("distance", bestDistance))
			m.metrics.RecordMismatch()
		}

		song.SetAudioLink(candidates[best].Link)
		results = append(results, MatchResult{
			SongIndex:      i,
			CandidateIndex: best,
			Distance:       bestDistance,
		})
	}

	return results, nil
}
