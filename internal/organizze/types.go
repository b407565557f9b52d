package organizze

import "encoding/json"

// Account is a bank account as returned by GET /accounts.
type Account struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"` // checking, savings, other
	Archived bool   `json:"archived"`
}

// Category is a transaction category as returned by GET /categories.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CreditCard is a credit card as returned by GET /credit_cards.
type CreditCard struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	CardNetwork string `json:"card_network"`
	LimitCents  int64  `json:"limit_cents"`
	ClosingDay  int    `json:"closing_day"`
	DueDay      int    `json:"due_day"`
	Archived    bool   `json:"archived"`
}

// Transaction is a transaction as returned by GET /transactions. Amounts are
// signed minor units (cents); negative means expense. Date is the calendar
// day string YYYY-MM-DD exactly as the API sends it.
type Transaction struct {
	ID           int64        `json:"id"`
	Description  string       `json:"description"`
	Date         string       `json:"date"`
	AmountCents  int64        `json:"amount_cents"`
	Paid         bool         `json:"paid"`
	Notes        string       `json:"notes"`
	CategoryID   *int64       `json:"category_id"`
	CreditCardID *int64       `json:"credit_card_id"`
	Tags         []Tag        `json:"tags"`
	Attachments  []Attachment `json:"attachments"`
}

// Amount returns the absolute value in currency units.
func (t *Transaction) Amount() float64 {
	cents := t.AmountCents
	if cents < 0 {
		cents = -cents
	}
	return float64(cents) / 100
}

// Tag is a transaction tag. The API has returned both object form
// {"name": "x"} and bare strings over time, so both are accepted.
type Tag struct {
	Name string `json:"name"`
}

func (t *Tag) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Name = s
		return nil
	}
	type alias Tag
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	t.Name = a.Name
	return nil
}

// Attachment is a file reference attached to a transaction. Which URL field
// is populated varies by attachment age; SourceURL picks the usable one.
type Attachment struct {
	URL         string `json:"url"`
	FileURL     string `json:"file_url"`
	DocumentURL string `json:"document_url"`
	FileName    string `json:"file_name"`
}

// SourceURL returns the first non-empty of url, file_url, document_url, or
// "" when the attachment carries no fetchable reference.
func (a *Attachment) SourceURL() string {
	switch {
	case a.URL != "":
		return a.URL
	case a.FileURL != "":
		return a.FileURL
	default:
		return a.DocumentURL
	}
}
