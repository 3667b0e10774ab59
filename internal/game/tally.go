package game

// SkipVote is the sentinel bucket for players who chose not to accuse.
const SkipVote = "skip"

// CountVotes tallies a meeting's vote map (voter id -> target id, nil
// meaning skip). A player is ejected only when their bucket is the
// strict unique maximum; any tie for the maximum, including a tie with
// the skip bucket, results in no ejection.
func CountVotes(votes map[string]*string) (counts map[string]int, ejected string, ok bool) {
	counts = make(map[string]int)
	for _, target := range votes {
		if target == nil {
			counts[SkipVote]++
			continue
		}
		counts[*target]++
	}

	max, leaders := 0, 0
	for bucket, n := range counts {
		if n > max {
			max = n
			leaders = 1
			ejected = bucket
		} else if n == max {
			leaders++
		}
	}

	if max == 0 || leaders != 1 || ejected == SkipVote {
		return counts, "", false
	}
	return counts, ejected, true
}
