package entity

import "time"

type RequirementStatus string

const (
	RequirementPending   RequirementStatus = "Pending"
	RequirementActive    RequirementStatus = "Active"
	RequirementCompleted RequirementStatus = "Completed"
)

const DefaultCategory = "Unspecified"

// Position in the Pending -> Active -> Completed lifecycle.
var requirementRank = map[RequirementStatus]int{
	RequirementPending:   0,
	RequirementActive:    1,
	RequirementCompleted: 2,
}

func (s RequirementStatus) Valid() bool {
	_, ok := requirementRank[s]
	return ok
}

// CanTransitionTo reports whether moving to next keeps the lifecycle
// monotonic. Staying in the same status is allowed.
func (s RequirementStatus) CanTransitionTo(next RequirementStatus) bool {
	from, ok := requirementRank[s]
	if !ok {
		return false
	}
	to, ok := requirementRank[next]
	if !ok {
		return false
	}
	return to >= from
}

type Requirement struct {
	ID          string            `json:"id" firestore:"id" bson:"_id"`
	Title       string            `json:"title" firestore:"title" bson:"title"`
	Description string            `json:"description" firestore:"description" bson:"description"`
	Price       float64           `json:"price" firestore:"price" bson:"price"`
	Location    string            `json:"location" firestore:"location" bson:"location"`
	Category    string            `json:"category" firestore:"category" bson:"category"`
	Status      RequirementStatus `json:"status" firestore:"status" bson:"status"`
	ClientID    string            `json:"client_id" firestore:"clientId" bson:"clientId"`
	CreatedAt   time.Time         `json:"created_at" firestore:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time         `json:"updated_at" firestore:"updatedAt" bson:"updatedAt"`
}
