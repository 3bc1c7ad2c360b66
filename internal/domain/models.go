// Package domain defines the core value types of the bakery assistant:
// conversation turns exchanged with the completion API and order records
// appended to the ledger. The idempotency row in idempotency.go is the only
// type mapped with GORM.
package domain

import "time"

// Speaker identifies who authored a ChatTurn.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// ChatTurn is a single utterance within a chat session. Turns are immutable
// once appended to a session.
type ChatTurn struct {
	Speaker   Speaker   `json:"speaker"    example:"assistant"`
	Text      string    `json:"text"       example:"Our Chocolate cake is ₹500."`
	CreatedAt time.Time `json:"created_at"`
}

// Occasions lists the occasions offered on the order form.
var Occasions = []string{"Birthday", "Anniversary", "Baby Shower", "Other"}

// ValidOccasion reports whether o is one of Occasions (exact match).
func ValidOccasion(o string) bool {
	for _, v := range Occasions {
		if v == o {
			return true
		}
	}
	return false
}

// TimestampLayout is the format used for OrderRecord.Timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// DeliveryDateLayout is the format used for OrderRecord.DeliveryDate.
const DeliveryDateLayout = "2006-01-02"

// LedgerHeader is the column header of the order ledger, in record field order.
var LedgerHeader = []string{
	"Name", "Phone", "Category", "Item", "Price",
	"Occasion", "Delivery Date", "Notes", "Timestamp",
}

// OrderRecord is one submitted order. Category, Item and Price always come
// from the menu catalog; the remaining fields are customer input except
// Timestamp, which is stamped at submission.
type OrderRecord struct {
	Name         string  `json:"name"          example:"Asha"`
	Phone        string  `json:"phone"         example:"9999999999"`
	Category     string  `json:"category"      example:"Cakes"`
	Item         string  `json:"item"          example:"Chocolate"`
	Price        float64 `json:"price"         example:"500"`
	Occasion     string  `json:"occasion"      example:"Birthday"`
	DeliveryDate string  `json:"delivery_date" example:"2026-10-20"`
	Notes        string  `json:"notes"         example:"Pink frosting, unicorn topper"`
	Timestamp    string  `json:"timestamp"     example:"2026-10-18 14:03:11"`
}
