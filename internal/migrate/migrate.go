// Package migrate drives a one-shot import of an Organizze date window into
// the per-user myPay collections. It is forward-only and re-runnable: there
// is no rollback, and re-running an overlapping window creates duplicate
// documents, so the operator chooses non-overlapping windows. Every document
// a run creates is stamped with the run's id for later identification.
package migrate

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/mypay/organizze-sync/internal/attachment"
	"github.com/mypay/organizze-sync/internal/blob"
	"github.com/mypay/organizze-sync/internal/logger"
	"github.com/mypay/organizze-sync/internal/mapping"
	"github.com/mypay/organizze-sync/internal/organizze"
	"github.com/mypay/organizze-sync/internal/store"
)

// Source reads reference data and transactions from Organizze.
type Source interface {
	Accounts(ctx context.Context) ([]organizze.Account, error)
	Categories(ctx context.Context) ([]organizze.Category, error)
	CreditCards(ctx context.Context) ([]organizze.CreditCard, error)
	Transactions(ctx context.Context, start, end civil.Date) ([]organizze.Transaction, error)
}

// Target creates myPay documents.
type Target interface {
	AddAccount(ctx context.Context, doc store.AccountDoc) (string, error)
	AddCard(ctx context.Context, doc store.CardDoc) (string, error)
	AddTransaction(ctx context.Context, doc store.TransactionDoc) (string, error)
}

// Mover re-hosts one attachment and returns the stored reference.
type Mover interface {
	Move(ctx context.Context, sourceURL string) (*blob.Object, error)
}

// Summary is the final count report of a migration run.
type Summary struct {
	Accounts           int
	Cards              int
	Transactions       int
	CardTransactions   int
	Attachments        int
	AttachmentsSkipped int // oversized, deliberately not retried
	AttachmentsFailed  int
	RecordsFailed      int // store writes that errored; the batch continued
}

// Migrator holds the collaborators for one migration run.
type Migrator struct {
	source Source
	target Target
	mover  Mover
	dryRun bool
	runID  string
}

// New creates a Migrator. Each Migrator gets a fresh run id.
func New(source Source, target Target, mover Mover, dryRun bool) *Migrator {
	return &Migrator{
		source: source,
		target: target,
		mover:  mover,
		dryRun: dryRun,
		runID:  uuid.NewString(),
	}
}

// RunID returns the id stamped on every document this run creates.
func (m *Migrator) RunID() string { return m.runID }

// Run executes the migration for the inclusive date window. Reference-data
// fetch failures abort the run; per-record failures are counted and the run
// continues.
func (m *Migrator) Run(ctx context.Context, start, end civil.Date) (*Summary, error) {
	log := logger.FromContext(ctx)
	summary := &Summary{}

	log.Info().
		Str("run_id", m.runID).
		Str("start_date", start.String()).
		Str("end_date", end.String()).
		Bool("dry_run", m.dryRun).
		Msg("Fetching Organizze data")

	accounts, err := m.source.Accounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate: fetching accounts: %w", err)
	}
	categories, err := m.source.Categories(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate: fetching categories: %w", err)
	}
	cards, err := m.source.CreditCards(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate: fetching credit cards: %w", err)
	}
	transactions, err := m.source.Transactions(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("migrate: fetching transactions: %w", err)
	}

	categoryNames := make(map[int64]string, len(categories))
	for _, cat := range categories {
		categoryNames[cat.ID] = cat.Name
	}
	cardNames := make(map[int64]string, len(cards))
	for _, card := range cards {
		cardNames[card.ID] = card.Name
	}

	var normal, billed []organizze.Transaction
	for _, t := range transactions {
		if t.CreditCardID != nil {
			billed = append(billed, t)
		} else {
			normal = append(normal, t)
		}
	}

	attachmentCount := 0
	for _, t := range transactions {
		attachmentCount += len(t.Attachments)
	}

	log.Info().
		Int("accounts", countActiveAccounts(accounts)).
		Int("cards", countActiveCards(cards)).
		Int("transactions", len(normal)).
		Int("card_transactions", len(billed)).
		Int("attachments", attachmentCount).
		Msg("Fetched window")

	if m.dryRun {
		log.Info().Msg("[DRY RUN] Nothing imported")
		return summary, nil
	}

	m.importAccounts(ctx, accounts, summary)
	m.importCards(ctx, cards, summary)
	m.importTransactions(ctx, normal, categoryNames, cardNames, summary)
	m.importTransactions(ctx, billed, categoryNames, cardNames, summary)

	return summary, nil
}

func (m *Migrator) importAccounts(ctx context.Context, accounts []organizze.Account, summary *Summary) {
	log := logger.FromContext(ctx)

	for _, acc := range accounts {
		if acc.Archived {
			continue
		}

		doc := store.AccountDoc{
			Name:        acc.Name,
			Type:        mapping.AccountType(acc.Type),
			Balance:     0,
			IsActive:    true,
			OrganizzeID: acc.ID,
			ImportRunID: m.runID,
		}
		if _, err := m.target.AddAccount(ctx, doc); err != nil {
			log.Error().Err(err).Str("account", acc.Name).Msg("Failed to import account")
			summary.RecordsFailed++
			continue
		}
		summary.Accounts++
	}

	log.Info().Int("imported", summary.Accounts).Msg("Imported accounts")
}

func (m *Migrator) importCards(ctx context.Context, cards []organizze.CreditCard, summary *Summary) {
	log := logger.FromContext(ctx)

	for _, card := range cards {
		if card.Archived {
			continue
		}

		doc := store.CardDoc{
			Name:        card.Name,
			Brand:       mapping.CardBrand(card.CardNetwork),
			Limit:       float64(card.LimitCents) / 100,
			ClosingDay:  card.ClosingDay,
			DueDay:      card.DueDay,
			Color:       mapping.CardColor(card.CardNetwork),
			IsActive:    true,
			OrganizzeID: card.ID,
			ImportRunID: m.runID,
		}
		if _, err := m.target.AddCard(ctx, doc); err != nil {
			log.Error().Err(err).Str("card", card.Name).Msg("Failed to import card")
			summary.RecordsFailed++
			continue
		}
		summary.Cards++
	}

	log.Info().Int("imported", summary.Cards).Msg("Imported cards")
}

func (m *Migrator) importTransactions(ctx context.Context, transactions []organizze.Transaction, categoryNames map[int64]string, cardNames map[int64]string, summary *Summary) {
	log := logger.FromContext(ctx)

	imported := 0
	for _, t := range transactions {
		doc := m.buildTransaction(ctx, &t, categoryNames, cardNames, summary)

		if _, err := m.target.AddTransaction(ctx, doc); err != nil {
			log.Error().Err(err).Str("description", t.Description).Msg("Failed to import transaction")
			summary.RecordsFailed++
			continue
		}

		if t.CreditCardID != nil {
			summary.CardTransactions++
		} else {
			summary.Transactions++
		}

		imported++
		if imported%50 == 0 {
			log.Info().Int("done", imported).Int("total", len(transactions)).Msg("Progress")
		}
	}

	log.Info().Int("imported", imported).Msg("Imported transactions")
}

// buildTransaction maps one Organizze transaction to a myPay document. The
// sign of the source amount decides income/expense exactly once, here.
func (m *Migrator) buildTransaction(ctx context.Context, t *organizze.Transaction, categoryNames map[int64]string, cardNames map[int64]string, summary *Summary) store.TransactionDoc {
	categoryName := ""
	if t.CategoryID != nil {
		categoryName = categoryNames[*t.CategoryID]
	}

	var tags []string
	for _, tag := range t.Tags {
		if tag.Name != "" {
			tags = append(tags, tag.Name)
		}
	}

	doc := store.TransactionDoc{
		Description: t.Description,
		Amount:      t.Amount(),
		Category:    mapping.CategorySlug(categoryName),
		Date:        mapping.DateAtNoon(t.Date),
		Notes:       t.Notes,
		Tags:        tags,
		Attachments: m.moveAttachments(ctx, t, summary),
		OrganizzeID: t.ID,
		ImportRunID: m.runID,
	}
	if doc.Description == "" {
		doc.Description = "Sem descrição"
	}

	if t.CreditCardID != nil {
		// Card-billed purchases are stored as settled expenses with the card
		// recorded in the notes; the app has no card-statement model.
		cardName := cardNames[*t.CreditCardID]
		if cardName == "" {
			cardName = "Cartão"
		}
		doc.Type = "expense"
		doc.IsPending = false
		doc.Notes = "Cartão: " + cardName
	} else {
		if t.AmountCents > 0 {
			doc.Type = "income"
		} else {
			doc.Type = "expense"
		}
		doc.IsPending = !t.Paid
	}

	return doc
}

func (m *Migrator) moveAttachments(ctx context.Context, t *organizze.Transaction, summary *Summary) []blob.Object {
	log := logger.FromContext(ctx)

	var moved []blob.Object
	for _, att := range t.Attachments {
		sourceURL := att.SourceURL()
		if sourceURL == "" {
			continue
		}

		obj, err := m.mover.Move(ctx, sourceURL)
		if err != nil {
			if errors.Is(err, attachment.ErrTooLarge) {
				log.Warn().Str("description", t.Description).Msg("Attachment too large, skipping")
				summary.AttachmentsSkipped++
			} else {
				log.Warn().Err(err).Str("description", t.Description).Msg("Failed to transfer attachment")
				summary.AttachmentsFailed++
			}
			continue
		}

		moved = append(moved, *obj)
		summary.Attachments++
	}
	return moved
}

func countActiveAccounts(accounts []organizze.Account) int {
	n := 0
	for _, a := range accounts {
		if !a.Archived {
			n++
		}
	}
	return n
}

func countActiveCards(cards []organizze.CreditCard) int {
	n := 0
	for _, c := range cards {
		if !c.Archived {
			n++
		}
	}
	return n
}
