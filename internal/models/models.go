// internal/models/models.go
package models

import (
	"time"

	"storyhub/internal/auth"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Story statuses
const (
	StatusDropped = "dropped"
	StatusOngoing = "ongoing"
	StatusFull    = "full"
)

// ValidStatus reports whether s is a known story status
func ValidStatus(s string) bool {
	return s == StatusDropped || s == StatusOngoing || s == StatusFull
}

// User is a registered account. Password holds the bcrypt hash.
type User struct {
	ID             primitive.ObjectID   `bson:"_id" json:"_id"`
	Username       string               `bson:"username" json:"username"`
	Email          string               `bson:"email" json:"email"`
	Password       string               `bson:"password,omitempty" json:"-"`
	Role           auth.Role            `bson:"role" json:"role"`
	ProfilePicture string               `bson:"profile_picture,omitempty" json:"profile_picture,omitempty"`
	Bio            string               `bson:"bio,omitempty" json:"bio,omitempty"`
	Favorites      []primitive.ObjectID `bson:"favorites" json:"favorites"`
	Following      []primitive.ObjectID `bson:"following" json:"following"`
	CreatedAt      time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time            `bson:"updated_at" json:"updated_at"`
}

func (u *User) GetID() primitive.ObjectID   { return u.ID }
func (u *User) SetID(id primitive.ObjectID) { u.ID = id }

// Rating is one user's rating of a story
type Rating struct {
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`
	Rating float64            `bson:"rating" json:"rating"`
}

// Comment is a user comment on a story
type Comment struct {
	UserID    primitive.ObjectID `bson:"user_id" json:"user_id"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Story is a published work. Uploader is its owner.
type Story struct {
	ID            primitive.ObjectID   `bson:"_id" json:"_id"`
	Title         string               `bson:"title" json:"title"`
	Content       string               `bson:"content" json:"content"`
	Author        string               `bson:"author,omitempty" json:"author,omitempty"`
	Uploader      primitive.ObjectID   `bson:"uploader" json:"uploader"`
	Categories    []primitive.ObjectID `bson:"categories" json:"categories"`
	Ratings       []Rating             `bson:"ratings" json:"ratings"`
	AverageRating float64              `bson:"average_rating" json:"average_rating"`
	Comments      []Comment            `bson:"comments" json:"comments"`
	Followers     []primitive.ObjectID `bson:"followers" json:"followers"`
	Views         int64                `bson:"views" json:"views"`
	Status        string               `bson:"status" json:"status"`
	CoverImg      *string              `bson:"cover_img" json:"cover_img"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time            `bson:"updatedAt" json:"updatedAt"`
}

func (s *Story) GetID() primitive.ObjectID   { return s.ID }
func (s *Story) SetID(id primitive.ObjectID) { s.ID = id }

// Chapter belongs to a story
type Chapter struct {
	ID        primitive.ObjectID `bson:"_id" json:"_id"`
	StoryID   primitive.ObjectID `bson:"story_id" json:"story_id"`
	Title     string             `bson:"title" json:"title"`
	Body      string             `bson:"body" json:"body"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

func (c *Chapter) GetID() primitive.ObjectID   { return c.ID }
func (c *Chapter) SetID(id primitive.ObjectID) { c.ID = id }

// Category groups stories. Names are unique.
type Category struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
}

func (c *Category) GetID() primitive.ObjectID   { return c.ID }
func (c *Category) SetID(id primitive.ObjectID) { c.ID = id }
