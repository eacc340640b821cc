// Package post provides search and CRUD operations for movies, subtitles, articles and micro-posts.
package post

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/cineverse-captions/cineverse/internal/db/controller/setting"
	"github.com/cineverse-captions/cineverse/internal/db/models"
)

const (
	// MinQueryLen is the shortest trimmed query Search runs against the database.
	MinQueryLen = 2
	// DefaultLimit is used when the caller passes no limit.
	DefaultLimit = 10
	// MaxLimit caps the number of search results.
	MaxLimit = 50

	likeEscape  = "!"
	newestFirst = "created_at DESC, id DESC"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
	// ErrPostNotFound is returned when a post does not exist.
	ErrPostNotFound = errors.New("post not found")
	// ErrInvalidPost is returned when post input fails validation.
	ErrInvalidPost = errors.New("invalid post")
	// ErrForbidden is returned when the actor may not modify the post.
	ErrForbidden = errors.New("not allowed to modify this post")
	// ErrGroupNotAllowed is returned when micro-posts are disabled for a group.
	ErrGroupNotAllowed = errors.New("micro-posts are not allowed in this group")
	// ErrNotGroupMember is returned when the author is not a member of the target group.
	ErrNotGroupMember = errors.New("not a member of this group")

	validate = validator.New()

	slugStrip = regexp.MustCompile(`[^a-z0-9]+`)
)

// Input is the user-supplied part of a post.
type Input struct {
	Kind     models.PostKind `json:"kind"     form:"kind"     validate:"required,oneof=movie subtitle post micro"`
	Title    string          `json:"title"    form:"title"    validate:"required,max=255"`
	Body     string          `json:"body"     form:"body"     validate:"max=65535"`
	Language string          `json:"language" form:"language" validate:"omitempty,max=10"`
	GroupID  *uint64         `json:"groupId"  form:"groupId"`
}

// Search returns published posts whose title or body contains q, case-insensitively, newest first.
// A trimmed q shorter than MinQueryLen yields an empty list without touching the database.
func Search(db *gorm.DB, q string, limit int) ([]models.Post, error) {
	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) < MinQueryLen {
		return []models.Post{}, nil
	}

	if db == nil {
		return nil, ErrDBNil
	}

	like := "%" + escapeLike(strings.ToLower(q)) + "%"

	posts := make([]models.Post, 0)

	err := db.Where("published = ?", true).
		Where("(LOWER(title) LIKE ? ESCAPE '"+likeEscape+"' OR LOWER(body) LIKE ? ESCAPE '"+likeEscape+"')", like, like).
		Order(newestFirst).
		Limit(ClampLimit(limit)).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search posts: %w", err)
	}

	return posts, nil
}

// ClampLimit maps a requested result count into [1, MaxLimit]; zero or negative means DefaultLimit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(
		likeEscape, likeEscape+likeEscape,
		"%", likeEscape+"%",
		"_", likeEscape+"_",
	).Replace(s)
}

// Create stores a new post for authorID. Micro-posts must target a group on the allowlist
// that the author belongs to.
func Create(db *gorm.DB, authorID uint64, in Input) (*models.Post, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	in.Title = strings.TrimSpace(in.Title)

	if err := validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPost, err)
	}

	if in.Kind == models.PostKindMicro {
		if err := checkMicroPostGroup(db, authorID, in.GroupID); err != nil {
			return nil, err
		}
	} else {
		in.GroupID = nil
	}

	slug, err := uniqueSlug(db, in.Title)
	if err != nil {
		return nil, err
	}

	p := &models.Post{
		AuthorID:  authorID,
		Kind:      in.Kind,
		Title:     in.Title,
		Slug:      slug,
		Body:      in.Body,
		Language:  in.Language,
		GroupID:   in.GroupID,
		Published: true,
	}

	if err = db.Create(p).Error; err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return p, nil
}

func checkMicroPostGroup(db *gorm.DB, authorID uint64, groupID *uint64) error {
	if groupID == nil {
		return fmt.Errorf("%w: micro-posts need a group", ErrInvalidPost)
	}

	allowed, err := setting.LoadMicroPostAllowedGroups(db)
	if err != nil {
		return err
	}

	if !slices.Contains(allowed, *groupID) {
		return ErrGroupNotAllowed
	}

	var count int64
	if err = db.Model(&models.GroupMember{}).
		Where("group_id = ? AND user_id = ?", *groupID, authorID).
		Count(&count).Error; err != nil {
		return err
	}

	if count == 0 {
		return ErrNotGroupMember
	}

	return nil
}

// Slugify turns a title into a URL path segment. Accents are folded to their base letters.
func Slugify(title string) string {
	folded, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), title)
	if err != nil {
		folded = title
	}

	slug := strings.Trim(slugStrip.ReplaceAllString(strings.ToLower(folded), "-"), "-")
	if slug == "" {
		return "post"
	}

	if len(slug) > 200 {
		slug = strings.TrimRight(slug[:200], "-")
	}

	return slug
}

func uniqueSlug(db *gorm.DB, title string) (string, error) {
	base := Slugify(title)

	var taken []string
	if err := db.Model(&models.Post{}).
		Where("slug = ? OR slug LIKE ?", base, base+"-%").
		Pluck("slug", &taken).Error; err != nil {
		return "", err
	}

	if !slices.Contains(taken, base) {
		return base, nil
	}

	for i := 2; ; i++ {
		candidate := base + "-" + strconv.Itoa(i)
		if !slices.Contains(taken, candidate) {
			return candidate, nil
		}
	}
}

// GetBySlug returns a published post.
func GetBySlug(db *gorm.DB, slug string) (*models.Post, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var p models.Post
	if err := db.Where("slug = ? AND published = ?", slug, true).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}

		return nil, err
	}

	return &p, nil
}

// Latest returns the newest published posts, optionally of one kind. Sponsored posts come first.
func Latest(db *gorm.DB, kind models.PostKind, limit int) ([]models.Post, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	tx := db.Where("published = ?", true)
	if kind != "" {
		tx = tx.Where("kind = ?", kind)
	}

	posts := make([]models.Post, 0)
	if err := tx.Order("sponsored DESC, " + newestFirst).Limit(ClampLimit(limit)).Find(&posts).Error; err != nil {
		return nil, err
	}

	return posts, nil
}

// ListByGroup returns the posts of a group, newest first.
func ListByGroup(db *gorm.DB, groupID uint64, limit int) ([]models.Post, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	posts := make([]models.Post, 0)
	if err := db.Where("group_id = ? AND published = ?", groupID, true).
		Order(newestFirst).Limit(ClampLimit(limit)).Find(&posts).Error; err != nil {
		return nil, err
	}

	return posts, nil
}

// Delete removes a post. Only its author or a moderator (canManage) may delete it.
func Delete(db *gorm.DB, postID, actorID uint64, canManage bool) error {
	if db == nil {
		return ErrDBNil
	}

	var p models.Post
	if err := db.Select("id", "author_id").First(&p, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrPostNotFound
		}

		return err
	}

	if p.AuthorID != actorID && !canManage {
		return ErrForbidden
	}

	return db.Delete(&models.Post{}, postID).Error
}
