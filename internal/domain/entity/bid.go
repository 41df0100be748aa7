package entity

import "time"

type BidStatus string

const (
	BidPending  BidStatus = "Pending"
	BidAccepted BidStatus = "Accepted"
	BidDeclined BidStatus = "Declined"
)

func (s BidStatus) Valid() bool {
	switch s {
	case BidPending, BidAccepted, BidDeclined:
		return true
	}
	return false
}

type Bid struct {
	ID            string    `json:"id" firestore:"id" bson:"_id"`
	RequirementID string    `json:"requirement_id" firestore:"requirementId" bson:"requirementId"`
	ProviderID    string    `json:"provider_id" firestore:"providerId" bson:"providerId"`
	Amount        float64   `json:"amount" firestore:"amount" bson:"amount"`
	DeliveryTime  int       `json:"delivery_time" firestore:"deliveryTime" bson:"deliveryTime"` // days
	Proposal      string    `json:"proposal,omitempty" firestore:"proposal,omitempty" bson:"proposal,omitempty"`
	Status        BidStatus `json:"status" firestore:"status" bson:"status"`
	CreatedAt     time.Time `json:"created_at" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updated_at" firestore:"updatedAt" bson:"updatedAt"`
}
