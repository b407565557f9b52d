package store

import (
	"time"

	"github.com/mypay/organizze-sync/internal/blob"
)

// AccountDoc is a myPay account document.
type AccountDoc struct {
	Name        string    `firestore:"name"`
	Type        string    `firestore:"type"`
	Balance     float64   `firestore:"balance"`
	IsActive    bool      `firestore:"isActive"`
	CreatedAt   time.Time `firestore:"createdAt,serverTimestamp"`
	OrganizzeID int64     `firestore:"_organizzeId"`
	ImportRunID string    `firestore:"_importRunId"`
}

// CardDoc is a myPay credit card document.
type CardDoc struct {
	Name        string    `firestore:"name"`
	Brand       string    `firestore:"brand"`
	Limit       float64   `firestore:"limit"`
	ClosingDay  int       `firestore:"closingDay"`
	DueDay      int       `firestore:"dueDay"`
	Color       string    `firestore:"color"`
	IsActive    bool      `firestore:"isActive"`
	CreatedAt   time.Time `firestore:"createdAt,serverTimestamp"`
	OrganizzeID int64     `firestore:"_organizzeId"`
	ImportRunID string    `firestore:"_importRunId"`
}

// TransactionDoc is a myPay transaction document. Amount is always
// non-negative; the sign of the source amount is captured once in Type
// (income or expense) at creation time.
type TransactionDoc struct {
	Description string        `firestore:"description"`
	Amount      float64       `firestore:"amount"`
	Type        string        `firestore:"type"`
	Category    string        `firestore:"category"`
	Date        time.Time     `firestore:"date"`
	IsPending   bool          `firestore:"isPending"`
	Notes       string        `firestore:"notes"`
	Tags        []string      `firestore:"tags"`
	Comprovante *blob.Object  `firestore:"comprovante,omitempty"`
	Attachments []blob.Object `firestore:"attachments,omitempty"`
	CreatedAt   time.Time     `firestore:"createdAt,serverTimestamp"`
	OrganizzeID int64         `firestore:"_organizzeId,omitempty"`
	ImportRunID string        `firestore:"_importRunId,omitempty"`
}

// StoredTransaction is a transaction read back from Firestore, with its
// document id.
type StoredTransaction struct {
	ID string
	TransactionDoc
}

// Receipt returns the transaction's receipt reference: the comprovante field
// if set, else the first attachments entry, else nil.
func (t *StoredTransaction) Receipt() *blob.Object {
	if t.Comprovante != nil {
		return t.Comprovante
	}
	if len(t.Attachments) > 0 {
		return &t.Attachments[0]
	}
	return nil
}

// DateKey returns the transaction's calendar day as YYYY-MM-DD in local
// time, the form the matching heuristic compares against Organizze dates.
func (t *StoredTransaction) DateKey() string {
	return t.Date.Format("2006-01-02")
}
