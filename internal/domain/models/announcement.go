// internal/domain/models/announcement.go
package models

import (
	"strings"
	"time"
)

// Announcement is a notice posted to the preparatory-class board.
//
// Content holds sanitized HTML. Pinned announcements sort ahead of the rest.
type Announcement struct {
	ID      string `bson:"_id" json:"id" firestore:"-"`
	Title   string `bson:"title" json:"title" firestore:"title" validate:"required,max=200"`
	TitleCI string `bson:"title_ci" json:"-" firestore:"title_ci"` // lowercase, diacritics-stripped

	Content string `bson:"content" json:"content" firestore:"content" validate:"max=20000"`
	Author  string `bson:"author,omitempty" json:"author,omitempty" firestore:"author,omitempty"`
	Pinned  bool   `bson:"pinned" json:"pinned" firestore:"pinned"`

	Images []Attachment `bson:"images" json:"images" firestore:"images"`
	Files  []Attachment `bson:"files" json:"files" firestore:"files"`

	CreatedAt time.Time `bson:"created_at" json:"created_at" firestore:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at" firestore:"updated_at"`
	CreatedBy string    `bson:"created_by,omitempty" json:"created_by,omitempty" firestore:"created_by,omitempty"`
	UpdatedBy string    `bson:"updated_by,omitempty" json:"updated_by,omitempty" firestore:"updated_by,omitempty"`
}

// AnnouncementUpdate carries the mutable fields of an announcement.
// Nil pointers leave the stored value unchanged.
type AnnouncementUpdate struct {
	Title     *string
	Content   *string
	Author    *string
	Pinned    *bool
	Images    *[]Attachment
	Files     *[]Attachment
	UpdatedBy string
}

// Validate checks the fields every backend requires before writing.
func (a *Announcement) Validate() error {
	return validateStruct(a)
}

// Apply copies the set fields of u onto a and bumps UpdatedAt.
func (u AnnouncementUpdate) Apply(a *Announcement, now time.Time) {
	if u.Title != nil {
		a.Title = strings.TrimSpace(*u.Title)
	}
	if u.Content != nil {
		a.Content = *u.Content
	}
	if u.Author != nil {
		a.Author = strings.TrimSpace(*u.Author)
	}
	if u.Pinned != nil {
		a.Pinned = *u.Pinned
	}
	if u.Images != nil {
		a.Images = *u.Images
	}
	if u.Files != nil {
		a.Files = *u.Files
	}
	if u.UpdatedBy != "" {
		a.UpdatedBy = u.UpdatedBy
	}
	a.UpdatedAt = now
}
