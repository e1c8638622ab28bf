package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsAdmin(t *testing.T) {
	roles := NewRoles([]int64{5, 9})

	require.True(t, roles.IsAdmin(5))
	require.True(t, roles.IsAdmin(9))
	require.False(t, roles.IsAdmin(7))
	require.False(t, roles.IsAdmin(0))
}

func TestAdminIDsSortedAndDeduplicated(t *testing.T) {
	roles := NewRoles([]int64{9, 5, 9, 0})

	require.Equal(t, []int64{5, 9}, roles.AdminIDs())
}
