// internal/domain/models/attachment.go
package models

import "time"

// AttachmentKind distinguishes inline images from downloadable files.
type AttachmentKind string

const (
	AttachmentImage AttachmentKind = "image"
	AttachmentFile  AttachmentKind = "file"
)

// Attachment is an uploaded file hanging off an announcement or assignment.
// Path is the storage key (local relative path or bucket object name); URL is
// what clients use to fetch it.
type Attachment struct {
	ID          string    `bson:"id" json:"id" firestore:"id"`
	Name        string    `bson:"name" json:"name" firestore:"name"`
	URL         string    `bson:"url" json:"url" firestore:"url"`
	Path        string    `bson:"path" json:"-" firestore:"path"`
	Size        int64     `bson:"size" json:"size" firestore:"size"`
	ContentType string    `bson:"content_type,omitempty" json:"content_type,omitempty" firestore:"content_type,omitempty"`
	UploadedAt  time.Time `bson:"uploaded_at" json:"uploaded_at" firestore:"uploaded_at"`
}

// FindAttachment returns the index of the attachment with the given id, or -1.
func FindAttachment(list []Attachment, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// WithoutAttachment returns a copy of list with the attachment id removed.
func WithoutAttachment(list []Attachment, id string) []Attachment {
	out := make([]Attachment, 0, len(list))
	for _, a := range list {
		if a.ID != id {
			out = append(out, a)
		}
	}
	return out
}
