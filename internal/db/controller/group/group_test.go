package group

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineverse-captions/cineverse/internal/db/dbtest"
	"github.com/cineverse-captions/cineverse/internal/db/models"
)

func TestCreateMakesOwnerMember(t *testing.T) {
	db := dbtest.Open(t)
	owner := dbtest.User(t, db, "owner@example.com", models.RoleUser)

	g, err := Create(db, owner.ID, Input{Name: "  Noir Club "})
	require.NoError(t, err)
	assert.Equal(t, "Noir Club", g.Name)

	ok, err := IsMember(db, g.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = Create(db, owner.ID, Input{Name: "noir club"})
	require.ErrorIs(t, err, ErrGroupNameTaken)

	_, err = Create(db, owner.ID, Input{Name: "ab"})
	require.ErrorIs(t, err, ErrInvalidGroup)
}

func TestJoinLeaveMembers(t *testing.T) {
	db := dbtest.Open(t)
	owner := dbtest.User(t, db, "owner@example.com", models.RoleUser)
	fan := dbtest.User(t, db, "fan@example.com", models.RoleUser)

	g, err := Create(db, owner.ID, Input{Name: "Anime"})
	require.NoError(t, err)

	require.NoError(t, Join(db, g.ID, fan.ID))
	require.ErrorIs(t, Join(db, g.ID, fan.ID), ErrAlreadyMember)
	require.ErrorIs(t, Join(db, 999, fan.ID), ErrGroupNotFound)

	members, err := Members(db, g.ID)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, owner.ID, members[0].UserID)
	assert.Equal(t, models.GroupRoleOwner, members[0].Role)
	assert.Equal(t, "fan@example.com", members[1].User.Email)

	require.ErrorIs(t, Leave(db, g.ID, owner.ID), ErrOwnerCannotLeave)
	require.NoError(t, Leave(db, g.ID, fan.ID))
	require.ErrorIs(t, Leave(db, g.ID, fan.ID), ErrNotMember)

	groups, err := List(db)
	require.NoError(t, err)
	assert.Len(t, groups, 1)
}

func TestSearchCountsAndDelete(t *testing.T) {
	db := dbtest.Open(t)
	owner := dbtest.User(t, db, "owner@example.com", models.RoleUser)
	fan := dbtest.User(t, db, "fan@example.com", models.RoleUser)

	noir, err := Create(db, owner.ID, Input{Name: "Noir Club", Description: "shadows and rain"})
	require.NoError(t, err)

	anime, err := Create(db, owner.ID, Input{Name: "Anime"})
	require.NoError(t, err)

	require.NoError(t, Join(db, noir.ID, fan.ID))

	total, err := Count(db, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	groups, err := Search(db, "", 0, 10)
	require.NoError(t, err)
	assert.Equal(t, anime.ID, groups[0].ID, "newest first")

	total, err = Count(db, "RAIN")
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	groups, err = Search(db, "rain", 0, 10)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, noir.ID, groups[0].ID)

	counts, err := MemberCounts(db, []uint64{noir.ID, anime.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[noir.ID])
	assert.Equal(t, int64(1), counts[anime.ID])

	require.NoError(t, Delete(db, noir.ID))
	require.ErrorIs(t, Delete(db, noir.ID), ErrGroupNotFound)

	ok, err := IsMember(db, noir.ID, fan.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
