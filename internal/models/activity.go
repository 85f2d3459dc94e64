package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ActivityCreated      = "wish_created"
	ActivityTransitioned = "wish_transitioned"
	ActivityDeleted      = "wish_deleted"
)

// Activity is one entry in a wish's history.
type Activity struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	WishID    string             `bson:"wish_id" json:"wishId"`
	Type      string             `bson:"type" json:"type"` // e.g. "wish_created", "wish_transitioned"
	From      Status             `bson:"from,omitempty" json:"from,omitempty"`
	To        Status             `bson:"to,omitempty" json:"to,omitempty"`
	Automatic bool               `bson:"automatic" json:"automatic"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
	Message   string             `bson:"message" json:"message"`
}
