package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleRank(t *testing.T) {
	assert.Equal(t, RankUser, RoleRank(RoleUser))
	assert.Equal(t, RankModerator, RoleRank(RoleModerator))
	assert.Equal(t, RankAdmin, RoleRank(RoleAdmin))
	assert.Equal(t, RankUser, RoleRank("something-else"))
}

func TestUserRank(t *testing.T) {
	tests := []struct {
		name        string
		user        User
		isModerator bool
		isAdmin     bool
	}{
		{"plain user", User{Role: RoleUser}, false, false},
		{"moderator", User{Role: RoleModerator}, true, false},
		{"admin", User{Role: RoleAdmin}, true, true},
		{"superuser with user role", User{Role: RoleUser, IsSuperuser: true}, true, true},
		{"empty role", User{}, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isModerator, tt.user.IsModerator())
			assert.Equal(t, tt.isAdmin, tt.user.IsAdmin())
			assert.Equal(t, tt.isModerator, tt.user.HasRank(RankModerator))
		})
	}
}
