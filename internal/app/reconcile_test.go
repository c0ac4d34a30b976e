package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkorolev/tandem/internal/core"
	"github.com/dkorolev/tandem/internal/domain"
)

func TestDiffMembers(t *testing.T) {
	prev := []core.MemberView{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}}
	curr := []core.MemberView{{ID: "b", Name: "B"}, {ID: "c", Name: "C"}}

	joined, left := diffMembers(prev, curr)
	require.Len(t, joined, 1)
	assert.Equal(t, domain.UserID("c"), joined[0].ID)
	require.Len(t, left, 1)
	assert.Equal(t, domain.UserID("a"), left[0].ID)
}

func TestDiffMembersNoChange(t *testing.T) {
	views := []core.MemberView{{ID: "a"}, {ID: "b"}}
	joined, left := diffMembers(views, views)
	assert.Empty(t, joined)
	assert.Empty(t, left)
}

func TestMemberViewsOrderAndHostFlag(t *testing.T) {
	sess := &domain.Session{
		Host: "u-2",
		Members: map[domain.UserID]domain.MemberRecord{
			"u-1": {Name: "First", Joined: 100},
			"u-2": {Name: "Second", Joined: 200, IsHost: false},
			"u-3": {Name: "Third", Joined: 200},
		},
	}

	views := memberViews(sess)
	require.Len(t, views, 3)
	assert.Equal(t, domain.UserID("u-1"), views[0].ID)
	// Equal join times fall back to ID order.
	assert.Equal(t, domain.UserID("u-2"), views[1].ID)
	assert.Equal(t, domain.UserID("u-3"), views[2].ID)

	// The root host field wins over the stale per-member flag.
	assert.False(t, views[0].IsHost)
	assert.True(t, views[1].IsHost)
	assert.False(t, views[2].IsHost)
}
