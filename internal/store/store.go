// Package store is the accessor for the per-user myPay document collections
// in Firestore. All writes are independent and non-transactional; callers
// count outcomes instead of expecting atomicity across a batch.
package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/mypay/organizze-sync/internal/blob"
)

// Store is scoped to one user namespace (users/<userID>). It holds a shared
// Firestore client created once per process.
type Store struct {
	client *firestore.Client
	userID string
}

// New creates a Store from service-account credentials.
func New(ctx context.Context, projectID string, credentials []byte, userID string) (*Store, error) {
	client, err := firestore.NewClient(ctx, projectID, option.WithCredentialsJSON(credentials))
	if err != nil {
		return nil, fmt.Errorf("store: creating firestore client: %w", err)
	}
	return &Store{client: client, userID: userID}, nil
}

// Close closes the underlying Firestore client. Call when the run is done.
func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func (s *Store) user() *firestore.DocumentRef {
	return s.client.Collection("users").Doc(s.userID)
}

// AddAccount creates an account document with a generated id.
func (s *Store) AddAccount(ctx context.Context, doc AccountDoc) (string, error) {
	ref, _, err := s.user().Collection("accounts").Add(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("store: adding account %q: %w", doc.Name, err)
	}
	return ref.ID, nil
}

// AddCard creates a card document with a generated id.
func (s *Store) AddCard(ctx context.Context, doc CardDoc) (string, error) {
	ref, _, err := s.user().Collection("cards").Add(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("store: adding card %q: %w", doc.Name, err)
	}
	return ref.ID, nil
}

// AddTransaction creates a transaction document with a generated id.
func (s *Store) AddTransaction(ctx context.Context, doc TransactionDoc) (string, error) {
	ref, _, err := s.user().Collection("transactions").Add(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("store: adding transaction %q: %w", doc.Description, err)
	}
	return ref.ID, nil
}

// ListOptions bounds a transaction listing. Zero values mean unbounded.
type ListOptions struct {
	Limit int
	Start time.Time
	End   time.Time
}

// ListTransactions streams the user's transactions, optionally bounded by a
// limit or a date range on the indexed date field, preserving the store's
// iteration order.
func (s *Store) ListTransactions(ctx context.Context, opts ListOptions) ([]StoredTransaction, error) {
	q := s.user().Collection("transactions").Query
	if !opts.Start.IsZero() {
		q = q.Where("date", ">=", opts.Start)
	}
	if !opts.End.IsZero() {
		q = q.Where("date", "<=", opts.End)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}

	it := q.Documents(ctx)
	defer it.Stop()

	var result []StoredTransaction
	for {
		snap, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("store: streaming transactions: %w", err)
		}

		var doc TransactionDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("store: decoding transaction %s: %w", snap.Ref.ID, err)
		}
		result = append(result, StoredTransaction{ID: snap.Ref.ID, TransactionDoc: doc})
	}
	return result, nil
}

// SetReceipt replaces the comprovante field on one transaction document,
// leaving every other field untouched.
func (s *Store) SetReceipt(ctx context.Context, id string, obj *blob.Object) error {
	_, err := s.user().Collection("transactions").Doc(id).Update(ctx, []firestore.Update{
		{Path: "comprovante", Value: obj},
	})
	if err != nil {
		return fmt.Errorf("store: setting comprovante on %s: %w", id, err)
	}
	return nil
}

// ClearReceipt deletes the comprovante field from one transaction document
// via the field-delete sentinel.
func (s *Store) ClearReceipt(ctx context.Context, id string) error {
	_, err := s.user().Collection("transactions").Doc(id).Update(ctx, []firestore.Update{
		{Path: "comprovante", Value: firestore.Delete},
	})
	if err != nil {
		return fmt.Errorf("store: clearing comprovante on %s: %w", id, err)
	}
	return nil
}
