package models

import "time"

// Invoice is a rendered billing document. It is never edited after creation.
type Invoice struct {
	ID        string    `json:"id" bson:"_id"`
	BookingID string    `json:"bookingId" bson:"bookingId"`
	UserID    string    `json:"userId" bson:"userId"`
	Number    string    `json:"number" bson:"number"`
	HTML      string    `json:"html" bson:"html"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// InvoiceTotals is the tax breakdown of a tax-inclusive amount, in paise.
type InvoiceTotals struct {
	BasePaise  int64 `json:"basePaise"`
	TaxPaise   int64 `json:"taxPaise"`
	TotalPaise int64 `json:"totalPaise"`
}
