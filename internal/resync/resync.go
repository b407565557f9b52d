// Package resync repairs transaction receipts: it pairs stored myPay
// transactions with their Organizze originals via the matching heuristic and
// re-hosts the matched attachment, replacing references that point at the
// decommissioned MinIO backend. Where no match exists for a MinIO reference
// the receipt is flagged as permanently lost; this package surfaces the
// ambiguity to the operator instead of guessing.
package resync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/mypay/organizze-sync/internal/blob"
	"github.com/mypay/organizze-sync/internal/logger"
	"github.com/mypay/organizze-sync/internal/match"
	"github.com/mypay/organizze-sync/internal/organizze"
	"github.com/mypay/organizze-sync/internal/store"
)

// Source reads transactions from Organizze.
type Source interface {
	Transactions(ctx context.Context, start, end civil.Date) ([]organizze.Transaction, error)
}

// Target reads and mutates stored myPay transactions.
type Target interface {
	ListTransactions(ctx context.Context, opts store.ListOptions) ([]store.StoredTransaction, error)
	SetReceipt(ctx context.Context, id string, obj *blob.Object) error
	ClearReceipt(ctx context.Context, id string) error
}

// Mover re-hosts one attachment and returns the stored reference.
type Mover interface {
	Move(ctx context.Context, sourceURL string) (*blob.Object, error)
}

// Options control one resync run.
type Options struct {
	DryRun   bool
	AddNew   bool // also attach receipts to transactions that have none
	ForceAll bool // treat every existing receipt as needing replacement
	Verbose  bool // also report skipped records that had no match

	// PublicURL is the current blob store's public base; receipts not served
	// from it are considered broken.
	PublicURL string
}

// Summary is the final count report of a resync run.
type Summary struct {
	Updated   int
	Skipped   int
	Failed    int
	MinioLost int // MinIO-hosted receipts with no Organizze match: unrecoverable
}

// Resyncer holds the collaborators for one resync run.
type Resyncer struct {
	source Source
	target Target
	mover  Mover
	opts   Options
}

// New creates a Resyncer.
func New(source Source, target Target, mover Mover, opts Options) *Resyncer {
	return &Resyncer{source: source, target: target, mover: mover, opts: opts}
}

// Run executes the resync. Per-record failures are counted and the run
// continues; only reference-data fetch failures abort it.
func (r *Resyncer) Run(ctx context.Context) (*Summary, error) {
	log := logger.FromContext(ctx)
	summary := &Summary{}

	log.Info().Msg("Fetching stored transactions")
	stored, err := r.target.ListTransactions(ctx, store.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("resync: listing transactions: %w", err)
	}

	var broken, healthy, withoutReceipt []store.StoredTransaction
	for _, tx := range stored {
		receipt := tx.Receipt()
		switch {
		case receipt != nil && (r.opts.ForceAll || r.needsReplacement(receipt.URL)):
			broken = append(broken, tx)
		case receipt != nil:
			healthy = append(healthy, tx)
		default:
			withoutReceipt = append(withoutReceipt, tx)
		}
	}

	log.Info().
		Int("total", len(stored)).
		Int("healthy", len(healthy)).
		Int("broken", len(broken)).
		Int("without_receipt", len(withoutReceipt)).
		Msg("Classified receipts")

	work := broken
	if r.opts.AddNew {
		work = append(work, withoutReceipt...)
	}
	if len(work) == 0 {
		log.Info().Msg("Nothing to process")
		return summary, nil
	}

	start, end := dateWindow(work)
	log.Info().
		Str("start_date", start.String()).
		Str("end_date", end.String()).
		Msg("Fetching Organizze transactions")

	remote, err := r.source.Transactions(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("resync: fetching Organizze transactions: %w", err)
	}

	var candidates []organizze.Transaction
	for _, t := range remote {
		if len(t.Attachments) > 0 {
			candidates = append(candidates, t)
		}
	}
	log.Info().
		Int("total", len(remote)).
		Int("with_attachments", len(candidates)).
		Msg("Fetched Organizze transactions")

	if len(candidates) == 0 {
		log.Warn().Msg("No Organizze transactions with attachments in window")
		return summary, nil
	}

	for _, tx := range broken {
		r.processBroken(ctx, &tx, candidates, summary)
	}

	if r.opts.AddNew {
		for _, tx := range withoutReceipt {
			r.processNew(ctx, &tx, candidates, summary)
		}
	}

	return summary, nil
}

// processBroken repairs one transaction whose receipt needs replacement.
func (r *Resyncer) processBroken(ctx context.Context, tx *store.StoredTransaction, candidates []organizze.Transaction, summary *Summary) {
	log := logger.FromContext(ctx)

	matched, kind := match.Find(localOf(tx), candidates)
	if kind == match.None {
		receiptURL := ""
		if receipt := tx.Receipt(); receipt != nil {
			receiptURL = receipt.URL
		}
		if onLostBackend(receiptURL) {
			summary.MinioLost++
			log.Warn().
				Str("description", tx.Description).
				Str("date", tx.DateKey()).
				Float64("amount", tx.Amount).
				Str("url", receiptURL).
				Msg("No Organizze match for MinIO receipt: attachment permanently lost")
		} else if r.opts.Verbose {
			log.Info().
				Str("description", tx.Description).
				Str("date", tx.DateKey()).
				Float64("amount", tx.Amount).
				Msg("No match, skipping")
		}
		summary.Skipped++
		return
	}

	if r.opts.DryRun {
		log.Info().
			Str("description", tx.Description).
			Str("kind", kindName(kind)).
			Msg("[DRY RUN] Would replace receipt")
		summary.Updated++
		return
	}

	sourceURL := matched.Attachments[0].SourceURL()
	if sourceURL == "" {
		log.Warn().Str("description", tx.Description).Msg("Matched attachment has no URL")
		summary.Skipped++
		return
	}

	obj, err := r.mover.Move(ctx, sourceURL)
	if err != nil {
		log.Error().Err(err).Str("description", tx.Description).Msg("Failed to transfer attachment")
		summary.Failed++
		return
	}

	if err := r.target.SetReceipt(ctx, tx.ID, obj); err != nil {
		log.Error().Err(err).Str("description", tx.Description).Msg("Failed to update receipt")
		summary.Failed++
		return
	}

	log.Info().
		Str("description", tx.Description).
		Str("url", obj.URL).
		Msg("Replaced receipt")
	summary.Updated++
}

// processNew attaches a receipt to a transaction that never had one.
func (r *Resyncer) processNew(ctx context.Context, tx *store.StoredTransaction, candidates []organizze.Transaction, summary *Summary) {
	log := logger.FromContext(ctx)

	matched, kind := match.Find(localOf(tx), candidates)
	if kind == match.None {
		return
	}

	if r.opts.DryRun {
		log.Info().
			Str("description", tx.Description).
			Str("kind", kindName(kind)).
			Msg("[DRY RUN] Would add receipt")
		summary.Updated++
		return
	}

	sourceURL := matched.Attachments[0].SourceURL()
	if sourceURL == "" {
		return
	}

	obj, err := r.mover.Move(ctx, sourceURL)
	if err != nil {
		log.Error().Err(err).Str("description", tx.Description).Msg("Failed to transfer attachment")
		summary.Failed++
		return
	}

	if err := r.target.SetReceipt(ctx, tx.ID, obj); err != nil {
		log.Error().Err(err).Str("description", tx.Description).Msg("Failed to update receipt")
		summary.Failed++
		return
	}

	log.Info().
		Str("description", tx.Description).
		Str("url", obj.URL).
		Msg("Added receipt")
	summary.Updated++
}

// CleanLost strips the comprovante field from every transaction whose
// receipt URL still points at the decommissioned MinIO backend. Returns the
// number of documents cleaned (or that would be cleaned under dry run).
func (r *Resyncer) CleanLost(ctx context.Context) (int, error) {
	log := logger.FromContext(ctx)

	stored, err := r.target.ListTransactions(ctx, store.ListOptions{})
	if err != nil {
		return 0, fmt.Errorf("resync: listing transactions: %w", err)
	}

	cleaned := 0
	for _, tx := range stored {
		receipt := tx.Receipt()
		if receipt == nil || !onLostBackend(receipt.URL) {
			continue
		}

		if r.opts.DryRun {
			log.Info().
				Str("description", tx.Description).
				Str("date", tx.DateKey()).
				Msg("[DRY RUN] Would clear receipt")
			cleaned++
			continue
		}

		if err := r.target.ClearReceipt(ctx, tx.ID); err != nil {
			log.Error().Err(err).Str("description", tx.Description).Msg("Failed to clear receipt")
			continue
		}
		log.Info().
			Str("description", tx.Description).
			Str("date", tx.DateKey()).
			Msg("Cleared receipt")
		cleaned++
	}

	return cleaned, nil
}

// needsReplacement reports whether a receipt URL must be re-hosted: anything
// on the old MinIO backend, or not served from the current public base.
func (r *Resyncer) needsReplacement(url string) bool {
	if url == "" {
		return false
	}
	return onLostBackend(url) || !strings.Contains(url, r.opts.PublicURL)
}

// onLostBackend reports whether a URL points at the decommissioned MinIO
// deployment. Objects there are unrecoverable.
func onLostBackend(url string) bool {
	return strings.Contains(strings.ToLower(url), "minio") || strings.Contains(url, ":9000")
}

func localOf(tx *store.StoredTransaction) match.Local {
	return match.Local{
		Description: tx.Description,
		Date:        tx.DateKey(),
		Amount:      tx.Amount,
	}
}

func kindName(k match.Kind) string {
	if k == match.Exact {
		return "exact"
	}
	return "partial"
}

// dateWindow returns the inclusive calendar window covering every
// transaction in the work set, with wide defaults when dates are missing.
func dateWindow(work []store.StoredTransaction) (civil.Date, civil.Date) {
	start := civil.Date{Year: 2022, Month: time.January, Day: 1}
	end := civil.DateOf(time.Now())

	var min, max civil.Date
	seen := false
	for _, tx := range work {
		if tx.Date.IsZero() {
			continue
		}
		d := civil.DateOf(tx.Date)
		if !seen || d.Before(min) {
			min = d
		}
		if !seen || d.After(max) {
			max = d
		}
		seen = true
	}
	if !seen {
		return start, end
	}
	return min, max
}
