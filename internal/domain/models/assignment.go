// internal/domain/models/assignment.go
package models

import (
	"strings"
	"time"
)

// Assignment is coursework posted to the board, optionally with a due date.
type Assignment struct {
	ID      string `bson:"_id" json:"id" firestore:"-"`
	Title   string `bson:"title" json:"title" firestore:"title" validate:"required,max=200"`
	TitleCI string `bson:"title_ci" json:"-" firestore:"title_ci"`

	Description string     `bson:"description" json:"description" firestore:"description" validate:"max=20000"`
	Subject     string     `bson:"subject,omitempty" json:"subject,omitempty" firestore:"subject,omitempty" validate:"max=100"`
	DueDate     *time.Time `bson:"due_date,omitempty" json:"due_date,omitempty" firestore:"due_date,omitempty"`

	Images []Attachment `bson:"images" json:"images" firestore:"images"`
	Files  []Attachment `bson:"files" json:"files" firestore:"files"`

	CreatedAt time.Time `bson:"created_at" json:"created_at" firestore:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at" firestore:"updated_at"`
	CreatedBy string    `bson:"created_by,omitempty" json:"created_by,omitempty" firestore:"created_by,omitempty"`
	UpdatedBy string    `bson:"updated_by,omitempty" json:"updated_by,omitempty" firestore:"updated_by,omitempty"`
}

// AssignmentUpdate carries the mutable fields of an assignment.
// ClearDue removes the due date; it wins over DueDate.
type AssignmentUpdate struct {
	Title       *string
	Description *string
	Subject     *string
	DueDate     *time.Time
	ClearDue    bool
	Images      *[]Attachment
	Files       *[]Attachment
	UpdatedBy   string
}

// Validate checks the fields every backend requires before writing.
func (a *Assignment) Validate() error {
	return validateStruct(a)
}

// Apply copies the set fields of u onto a and bumps UpdatedAt.
func (u AssignmentUpdate) Apply(a *Assignment, now time.Time) {
	if u.Title != nil {
		a.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		a.Description = *u.Description
	}
	if u.Subject != nil {
		a.Subject = strings.TrimSpace(*u.Subject)
	}
	if u.ClearDue {
		a.DueDate = nil
	} else if u.DueDate != nil {
		d := u.DueDate.UTC()
		a.DueDate = &d
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

// Closed reports whether the due date has passed at now.
func (a *Assignment) Closed(now time.Time) bool {
	return a.DueDate != nil && now.After(*a.DueDate)
}
