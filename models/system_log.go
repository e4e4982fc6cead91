package models

import "time"

// System log actions
const (
	ActionCreate  = "CREATE"
	ActionUpdate  = "UPDATE"
	ActionDelete  = "DELETE"
	ActionLogin   = "LOGIN"
	ActionApprove = "APPROVE"
	ActionReject  = "REJECT"
	ActionAssign  = "ASSIGN"
)

// System log modules
const (
	ModuleBooking    = "BOOKING"
	ModulePayment    = "PAYMENT"
	ModuleTechnician = "TECHNICIAN"
	ModuleUser       = "USER"
	ModuleService    = "SERVICE"
	ModuleSystem     = "SYSTEM"
)

// SystemLog is an append-only audit entry
type SystemLog struct {
	ID          string                 `json:"id" bson:"_id"`
	Action      string                 `json:"action" bson:"action"`
	Module      string                 `json:"module" bson:"module"`
	Description string                 `json:"description" bson:"description"`
	UserID      string                 `json:"userId,omitempty" bson:"userId,omitempty"`
	UserName    string                 `json:"userName,omitempty" bson:"userName,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	Timestamp   time.Time              `json:"timestamp" bson:"timestamp"`
}
