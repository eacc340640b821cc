package models

import "time"

// PostKind distinguishes the content types of the platform.
type PostKind string

const (
	// PostKindMovie is a movie page.
	PostKindMovie PostKind = "movie"
	// PostKindSubtitle is a subtitle release for a movie.
	PostKindSubtitle PostKind = "subtitle"
	// PostKindArticle is a regular blog post.
	PostKindArticle PostKind = "post"
	// PostKindMicro is a short post inside a group.
	PostKindMicro PostKind = "micro"
)

// Valid reports whether k is a known post kind.
func (k PostKind) Valid() bool {
	switch k {
	case PostKindMovie, PostKindSubtitle, PostKindArticle, PostKindMicro:
		return true
	default:
		return false
	}
}

// Post is a content item. A post may be sponsored by exactly one AdPayment.
type Post struct {
	ID        uint64   `gorm:"primaryKey"                    json:"id"`
	AuthorID  uint64   `gorm:"index;not null"                json:"authorId"`
	Author    User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"-"`
	Kind      PostKind `gorm:"type:varchar(20);index;not null" json:"kind"`
	Title     string   `gorm:"size:255;not null"             json:"title"`
	Slug      string   `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	Body      string   `gorm:"type:text"                     json:"body,omitempty"`
	Language  string   `gorm:"size:10"                       json:"language,omitempty"`
	GroupID   *uint64  `gorm:"index"                         json:"groupId,omitempty"`
	Published bool     `gorm:"not null;default:true"         json:"published"`

	// Sponsoring: AdPaymentID is set once and never moved to another post.
	Sponsored      bool       `gorm:"not null;default:false" json:"sponsored"`
	AdPaymentID    *uint64    `gorm:"uniqueIndex"            json:"-"`
	AdPayment      *AdPayment `gorm:"foreignKey:AdPaymentID" json:"-"`
	SponsoredUntil *time.Time `json:"sponsoredUntil,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
