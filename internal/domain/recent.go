package domain

// MaxRecentUsers bounds the locally cached list of previously seen members.
const MaxRecentUsers = 10

// RecentUser is a cache entry used to pre-populate invitation targets.
// The cache is most-recent-first and deduplicated by id.
type RecentUser struct {
	ID       UserID `json:"id"`
	Name     string `json:"name"`
	LastSeen int64  `json:"lastSeen"`
}
