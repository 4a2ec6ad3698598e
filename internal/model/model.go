package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Participant represents a registered campaign participant. A row exists
// only once registration completed (phone, name and surname recorded).
// Phone is immutable once set and unique across all participants.
type Participant struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Identity      int64              `bson:"identity" json:"identity"`
	Phone         string             `bson:"phone" json:"phone"`
	Name          string             `bson:"name" json:"name"`
	Surname       string             `bson:"surname" json:"surname"`
	RedeemedCount int                `bson:"redeemed_count" json:"redeemed_count"`
	Chances       int                `bson:"chances" json:"chances"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
}

// Code represents a pre-provisioned campaign code. Owner is non-nil iff
// Assigned is true; once assigned a code never reverts.
type Code struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Code       string             `bson:"code" json:"code"`
	Assigned   bool               `bson:"assigned" json:"assigned"`
	Owner      *int64             `bson:"owner,omitempty" json:"owner,omitempty"`
	AssignedAt *time.Time         `bson:"assigned_at,omitempty" json:"assigned_at,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
}

// RedemptionResult is returned on a successful redemption.
type RedemptionResult struct {
	Code       string `json:"code"`
	TotalCodes int    `json:"total_codes"`
	Chances    int    `json:"chances"`
}

// CampaignStats summarizes campaign progress for the operator.
type CampaignStats struct {
	Participants  int64 `json:"participants"`
	CodesTotal    int64 `json:"codes_total"`
	CodesAssigned int64 `json:"codes_assigned"`
}

// BroadcastSummary tallies a broadcast fan-out.
type BroadcastSummary struct {
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

// ProvisionCodesRequest represents the admin request to pre-provision codes
type ProvisionCodesRequest struct {
	Codes []string `json:"codes" binding:"required"`
}

// ProvisionCodesResponse reports how many codes were inserted
type ProvisionCodesResponse struct {
	Inserted int      `json:"inserted"`
	Rejected []string `json:"rejected,omitempty"`
}
