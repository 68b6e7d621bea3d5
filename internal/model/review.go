package model

import "time"

// Review is a customer's rating of a completed stay.  Exactly one
// review may exist per reservation.  Besides the overall rating a
// review carries four sub-scores; the property's aggregate rating is
// recomputed whenever a review is added.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – stay this review refers to.
//  PropertyID    – property being reviewed.
//  UserID        – customer who wrote the review.
//  Rating        – overall rating, 1 to 5.
//  Cleanliness   – sub-score, 1 to 5.
//  Communication – sub-score, 1 to 5.
//  Location      – sub-score, 1 to 5.
//  Value         – sub-score, 1 to 5.
//  Text          – free-text body.
//  ManagerReply  – optional reply from the property manager.
//  CreatedAt     – creation timestamp.
type Review struct {
	ID            uint64    // reviews.id
	ReservationID string    // reviews.reservation_id
	PropertyID    uint64    // reviews.property_id
	UserID        uint64    // reviews.user_id
	Rating        int       // reviews.rating
	Cleanliness   float64   // reviews.cleanliness
	Communication float64   // reviews.communication
	Location      float64   // reviews.location
	Value         float64   // reviews.value
	Text          string    // reviews.text
	ManagerReply  *string   // reviews.manager_reply (nullable)
	CreatedAt     time.Time // reviews.created_at
}
