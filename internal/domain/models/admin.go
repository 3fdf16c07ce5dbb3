// internal/domain/models/admin.go
package models

import "time"

// Admin is a credential allowed to sign in with email and password.
// EmailCI doubles as the lookup key in every backend.
type Admin struct {
	ID           string     `bson:"_id" json:"id" firestore:"-"`
	Email        string     `bson:"email" json:"email" firestore:"email"`
	EmailCI      string     `bson:"email_ci" json:"-" firestore:"email_ci"`
	Name         string     `bson:"name,omitempty" json:"name,omitempty" firestore:"name,omitempty"`
	PasswordHash string     `bson:"password_hash" json:"-" firestore:"password_hash"`
	CreatedAt    time.Time  `bson:"created_at" json:"created_at" firestore:"created_at"`
	UpdatedAt    time.Time  `bson:"updated_at" json:"updated_at" firestore:"updated_at"`
	LastLoginAt  *time.Time `bson:"last_login_at,omitempty" json:"last_login_at,omitempty" firestore:"last_login_at,omitempty"`
}
