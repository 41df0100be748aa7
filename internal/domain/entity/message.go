package entity

import "time"

// Message belongs to the conversation of exactly one bid.
type Message struct {
	ID         string    `json:"id" firestore:"id" bson:"_id"`
	SenderID   string    `json:"sender_id" firestore:"senderId" bson:"senderId"`
	ReceiverID string    `json:"receiver_id" firestore:"receiverId" bson:"receiverId"`
	BidID      string    `json:"bid_id" firestore:"bidId" bson:"bidId"`
	Text       string    `json:"text" firestore:"text" bson:"text"`
	IsRead     bool      `json:"is_read" firestore:"isRead" bson:"isRead"`
	CreatedAt  time.Time `json:"created_at" firestore:"createdAt" bson:"createdAt"`
}

// Between reports whether the message was exchanged by a and b, in either direction.
func (m *Message) Between(a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}
