package models

// VoteStats is derived from a crime's vote set on every read
type VoteStats struct {
	Total     int `json:"total"`
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
}

// ComputeVoteStats counts upvotes and derives downvotes from the total so that
// Upvotes+Downvotes == Total always holds.
func ComputeVoteStats(votes []Vote) VoteStats {
	stats := VoteStats{Total: len(votes)}
	for _, v := range votes {
		if v.Value {
			stats.Upvotes++
		}
	}
	stats.Downvotes = stats.Total - stats.Upvotes
	return stats
}

// ApplyVoteStats fills VoteStats on every crime from its loaded votes
func ApplyVoteStats(crimes []Crime) {
	for i := range crimes {
		crimes[i].VoteStats = ComputeVoteStats(crimes[i].Votes)
	}
}

// PartitionComments splits comments into the pinned group and the rest,
// keeping the input order within each group.
func PartitionComments(comments []Comment) (pinned, recent []Comment) {
	pinned = make([]Comment, 0)
	recent = make([]Comment, 0, len(comments))
	for _, c := range comments {
		if c.Pinned {
			pinned = append(pinned, c)
		} else {
			recent = append(recent, c)
		}
	}
	return pinned, recent
}
