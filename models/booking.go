package models

import (
	"time"
)

// Booking statuses
const (
	BookingStatusPending             = "pending"
	BookingStatusPendingVerification = "pending_verification"
	BookingStatusConfirmed           = "confirmed"
	BookingStatusAssigned            = "assigned"
	BookingStatusCompleted           = "completed"
	BookingStatusCancelled           = "cancelled"
)

// Payment statuses
const (
	PaymentStatusUnpaid              = "unpaid"
	PaymentStatusPendingVerification = "pending_verification"
	PaymentStatusPaid                = "paid"
)

// Payment methods
const (
	PaymentMethodOnline = "online"
	PaymentMethodCash   = "cash"
)

// Booking model
type Booking struct {
	ID                 string          `json:"id" bson:"_id"`
	UserID             string          `json:"userId" bson:"userId"`
	UserName           string          `json:"userName,omitempty" bson:"userName,omitempty"`
	TechnicianID       string          `json:"technicianId" bson:"technicianId"` // empty until assigned
	ServiceID          string          `json:"serviceId" bson:"serviceId"`
	ServiceName        string          `json:"serviceName" bson:"serviceName"`
	Package            string          `json:"package,omitempty" bson:"package,omitempty"`
	Date               string          `json:"date" bson:"date"`
	Time               string          `json:"time" bson:"time"`
	Address            string          `json:"address" bson:"address"`
	Amount             float64         `json:"amount" bson:"amount"`
	Status             string          `json:"status" bson:"status"`
	PaymentStatus      string          `json:"paymentStatus" bson:"paymentStatus"`
	PaymentMethod      string          `json:"paymentMethod,omitempty" bson:"paymentMethod,omitempty"`
	PaymentDetails     *PaymentDetails `json:"paymentDetails,omitempty" bson:"paymentDetails,omitempty"`
	InvoiceID          string          `json:"invoiceId,omitempty" bson:"invoiceId,omitempty"`
	InvoiceGeneratedAt *time.Time      `json:"invoiceGeneratedAt,omitempty" bson:"invoiceGeneratedAt,omitempty"`
	CreatedAt          time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// PaymentDetails is the gateway confirmation stored once an online payment
// has been verified.
type PaymentDetails struct {
	OrderID    string    `json:"orderId" bson:"orderId"`
	PaymentID  string    `json:"paymentId" bson:"paymentId"`
	Signature  string    `json:"signature" bson:"signature"`
	VerifiedAt time.Time `json:"verifiedAt" bson:"verifiedAt"`
}

// IsTerminal reports whether the booking can no longer change status.
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusCompleted || b.Status == BookingStatusCancelled
}

// BookingPatch lists the booking fields an update may set. Nil fields are
// left untouched.
type BookingPatch struct {
	Status             *string
	PaymentStatus      *string
	PaymentMethod      *string
	PaymentDetails     *PaymentDetails
	TechnicianID       *string
	InvoiceID          *string
	InvoiceGeneratedAt *time.Time
	UpdatedAt          time.Time
}

// Apply copies the non-nil fields of p onto b.
func (p BookingPatch) Apply(b *Booking) {
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.PaymentStatus != nil {
		b.PaymentStatus = *p.PaymentStatus
	}
	if p.PaymentMethod != nil {
		b.PaymentMethod = *p.PaymentMethod
	}
	if p.PaymentDetails != nil {
		details := *p.PaymentDetails
		b.PaymentDetails = &details
	}
	if p.TechnicianID != nil {
		b.TechnicianID = *p.TechnicianID
	}
	if p.InvoiceID != nil {
		b.InvoiceID = *p.InvoiceID
	}
	if p.InvoiceGeneratedAt != nil {
		at := *p.InvoiceGeneratedAt
		b.InvoiceGeneratedAt = &at
	}
	if !p.UpdatedAt.IsZero() {
		b.UpdatedAt = p.UpdatedAt
	}
}

// BookingCondition guards a conditional booking update. Empty slices match
// any value; a nil TechnicianID matches any assignment.
type BookingCondition struct {
	Statuses        []string
	PaymentStatuses []string
	TechnicianID    *string
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Matches reports whether b satisfies c.
func (c BookingCondition) Matches(b *Booking) bool {
	if len(c.Statuses) > 0 && !containsString(c.Statuses, b.Status) {
		return false
	}
	if len(c.PaymentStatuses) > 0 && !containsString(c.PaymentStatuses, b.PaymentStatus) {
		return false
	}
	if c.TechnicianID != nil && b.TechnicianID != *c.TechnicianID {
		return false
	}
	return true
}

// StringPtr is a small helper for building patches.
func StringPtr(s string) *string {
	return &s
}

// BookingRequest is the payload for creating a booking
type BookingRequest struct {
	ServiceID   string  `json:"serviceId" validate:"required,notblank"`
	ServiceName string  `json:"serviceName" validate:"required,notblank"`
	Package     string  `json:"package"`
	Date        string  `json:"date" validate:"calendardate"`
	Time        string  `json:"time" validate:"required,notblank"`
	Address     string  `json:"address" validate:"min=5"`
	Amount      float64 `json:"amount" validate:"gte=0,money"`
}

// PaymentVerificationRequest carries the gateway checkout confirmation
type PaymentVerificationRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

// AssignTechnicianRequest is the admin payload for assigning a job
type AssignTechnicianRequest struct {
	TechnicianID string `json:"technicianId" validate:"required"`
}
