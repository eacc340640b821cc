package post

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/db/controller/setting"
	"github.com/cineverse-captions/cineverse/internal/db/dbtest"
	"github.com/cineverse-captions/cineverse/internal/db/models"
)

// countQueries counts SELECT statements issued through db.
func countQueries(t *testing.T, db *gorm.DB) *int {
	t.Helper()

	n := new(int)
	require.NoError(t, db.Callback().Query().Before("gorm:query").Register("test:count", func(*gorm.DB) {
		*n++
	}))

	return n
}

func seedPosts(t *testing.T, db *gorm.DB, author uint64) {
	t.Helper()

	base := time.Now().Add(-time.Hour)

	posts := []models.Post{
		{Title: "The Matrix", Body: "Neo learns kung fu", Kind: models.PostKindMovie, Published: true},
		{Title: "Matrix Reloaded subtitles", Body: "English SRT", Kind: models.PostKindSubtitle, Published: true},
		{Title: "Draft about the matrix", Body: "unpublished", Kind: models.PostKindArticle, Published: false},
		{Title: "Inception", Body: "dreams within dreams, like a MATRIX", Kind: models.PostKindMovie, Published: true},
		{Title: "100% discount", Body: "promo_code inside", Kind: models.PostKindArticle, Published: true},
	}

	for i := range posts {
		posts[i].AuthorID = author
		posts[i].Slug = fmt.Sprintf("p-%d", i)
		posts[i].CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, db.Create(&posts[i]).Error)
	}

	// gorm skips zero-value bools on create, so unpublish explicitly
	require.NoError(t, db.Model(&models.Post{}).Where("slug = ?", "p-2").Update("published", false).Error)
}

func TestSearchShortQuerySkipsDatabase(t *testing.T) {
	db := dbtest.Open(t)
	queries := countQueries(t, db)

	for _, q := range []string{"", " ", "a", "  b  ", "é"} {
		posts, err := Search(db, q, 10)
		require.NoError(t, err)
		assert.NotNil(t, posts)
		assert.Empty(t, posts)
	}

	assert.Zero(t, *queries)

	posts, err := Search(nil, "x", 10)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestSearch(t *testing.T) {
	db := dbtest.Open(t)
	author := dbtest.User(t, db, "a@example.com", models.RoleUser)
	seedPosts(t, db, author.ID)

	tests := []struct {
		name  string
		q     string
		limit int
		want  []string
	}{
		{name: "case insensitive, newest first, published only", q: "matrix", want: []string{"Inception", "Matrix Reloaded subtitles", "The Matrix"}},
		{name: "trimmed", q: "  neo ", want: []string{"The Matrix"}},
		{name: "limit", q: "matrix", limit: 1, want: []string{"Inception"}},
		{name: "percent is literal", q: "100%", want: []string{"100% discount"}},
		{name: "underscore is literal", q: "o_c", want: []string{"100% discount"}},
		{name: "no match", q: "zz", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, err := Search(db, tt.q, tt.limit)
			require.NoError(t, err)

			titles := make([]string, 0, len(posts))
			for _, p := range posts {
				titles = append(titles, p.Title)
			}

			assert.Equal(t, tt.want, titles)
		})
	}
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, ClampLimit(0))
	assert.Equal(t, DefaultLimit, ClampLimit(-4))
	assert.Equal(t, 1, ClampLimit(1))
	assert.Equal(t, MaxLimit, ClampLimit(MaxLimit+1))
}

func TestCreateAndSlugs(t *testing.T) {
	db := dbtest.Open(t)
	author := dbtest.User(t, db, "a@example.com", models.RoleUser)

	p1, err := Create(db, author.ID, Input{Kind: models.PostKindMovie, Title: "  Blade Runner 2049! "})
	require.NoError(t, err)
	assert.Equal(t, "blade-runner-2049", p1.Slug)
	assert.Equal(t, "Blade Runner 2049!", p1.Title)

	p2, err := Create(db, author.ID, Input{Kind: models.PostKindSubtitle, Title: "Blade runner 2049"})
	require.NoError(t, err)
	assert.Equal(t, "blade-runner-2049-2", p2.Slug)

	got, err := GetBySlug(db, "blade-runner-2049-2")
	require.NoError(t, err)
	assert.Equal(t, p2.ID, got.ID)

	_, err = GetBySlug(db, "nope")
	require.ErrorIs(t, err, ErrPostNotFound)

	_, err = Create(db, author.ID, Input{Kind: "video", Title: "x"})
	require.ErrorIs(t, err, ErrInvalidPost)

	_, err = Create(db, author.ID, Input{Kind: models.PostKindMovie, Title: "   "})
	require.ErrorIs(t, err, ErrInvalidPost)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "amelie-2001", Slugify("Amélie (2001)"))
	assert.Equal(t, "post", Slugify("!!!"))
}

func TestCreateMicroPostAllowlist(t *testing.T) {
	db := dbtest.Open(t)
	author := dbtest.User(t, db, "a@example.com", models.RoleUser)

	g := models.Group{Name: "Horror fans", OwnerID: author.ID}
	require.NoError(t, db.Create(&g).Error)

	in := Input{Kind: models.PostKindMicro, Title: "hello", GroupID: &g.ID}

	_, err := Create(db, author.ID, Input{Kind: models.PostKindMicro, Title: "no group"})
	require.ErrorIs(t, err, ErrInvalidPost)

	_, err = Create(db, author.ID, in)
	require.ErrorIs(t, err, ErrGroupNotAllowed)

	require.NoError(t, setting.SaveMicroPostAllowedGroups(db, []uint64{g.ID}))

	_, err = Create(db, author.ID, in)
	require.ErrorIs(t, err, ErrNotGroupMember)

	require.NoError(t, db.Create(&models.GroupMember{
		GroupID: g.ID, UserID: author.ID, Role: models.GroupRoleOwner, JoinedAt: time.Now(),
	}).Error)

	p, err := Create(db, author.ID, in)
	require.NoError(t, err)
	require.NotNil(t, p.GroupID)
	assert.Equal(t, g.ID, *p.GroupID)

	posts, err := ListByGroup(db, g.ID, 0)
	require.NoError(t, err)
	assert.Len(t, posts, 1)
}

func TestLatestPutsSponsoredFirst(t *testing.T) {
	db := dbtest.Open(t)
	author := dbtest.User(t, db, "a@example.com", models.RoleUser)
	seedPosts(t, db, author.ID)

	require.NoError(t, db.Model(&models.Post{}).Where("slug = ?", "p-0").Update("sponsored", true).Error)

	posts, err := Latest(db, "", 3)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "The Matrix", posts[0].Title)

	movies, err := Latest(db, models.PostKindMovie, 10)
	require.NoError(t, err)
	assert.Len(t, movies, 2)
}

func TestDelete(t *testing.T) {
	db := dbtest.Open(t)
	author := dbtest.User(t, db, "a@example.com", models.RoleUser)
	other := dbtest.User(t, db, "b@example.com", models.RoleUser)

	p, err := Create(db, author.ID, Input{Kind: models.PostKindArticle, Title: "mine"})
	require.NoError(t, err)

	require.ErrorIs(t, Delete(db, p.ID, other.ID, false), ErrForbidden)
	require.ErrorIs(t, Delete(db, 999, author.ID, false), ErrPostNotFound)
	require.NoError(t, Delete(db, p.ID, other.ID, true))
}
