// Command migrate imports an Organizze date window into the per-user myPay
// Firestore collections, re-hosting attachments in the blob store.
//
// Usage:
//
//	migrate -start-date 2026-01-01 -end-date 2026-01-31 [-dry-run]
//
// Configuration comes from the environment (or a .env file); see
// internal/config. Re-running over an already-imported window duplicates
// documents: pick non-overlapping windows.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"cloud.google.com/go/civil"

	"github.com/mypay/organizze-sync/internal/attachment"
	"github.com/mypay/organizze-sync/internal/blob"
	"github.com/mypay/organizze-sync/internal/config"
	"github.com/mypay/organizze-sync/internal/logger"
	"github.com/mypay/organizze-sync/internal/migrate"
	"github.com/mypay/organizze-sync/internal/organizze"
	"github.com/mypay/organizze-sync/internal/store"
)

func main() {
	log := logger.New()

	startDateStr := flag.String("start-date", "", "Start date in YYYY-MM-DD format (required)")
	endDateStr := flag.String("end-date", "", "End date in YYYY-MM-DD format (required)")
	dryRun := flag.Bool("dry-run", false, "Fetch and report only; import nothing")
	flag.Parse()

	if *startDateStr == "" {
		log.Fatal().Msg("Error: -start-date is required")
	}
	if *endDateStr == "" {
		log.Fatal().Msg("Error: -end-date is required")
	}

	startDate, err := civil.ParseDate(*startDateStr)
	if err != nil {
		log.Fatal().Err(err).Str("start_date", *startDateStr).Msg("Error: invalid start-date format, expected YYYY-MM-DD")
	}
	endDate, err := civil.ParseDate(*endDateStr)
	if err != nil {
		log.Fatal().Err(err).Str("end_date", *endDateStr).Msg("Error: invalid end-date format, expected YYYY-MM-DD")
	}
	if endDate.Before(startDate) {
		log.Fatal().
			Str("start_date", *startDateStr).
			Str("end_date", *endDateStr).
			Msg("Error: end-date must not be before start-date")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Configuration error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	source := organizze.New(cfg.OrganizzeEmail, cfg.OrganizzeAPIKey)

	target, err := store.New(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentials, cfg.UserID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Firestore")
	}
	defer target.Close()

	uploader, err := blob.NewUploader(blob.Options{
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKeyID,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Prefix:    cfg.S3PathPrefix,
		PublicURL: cfg.S3PublicURL,
		UserID:    cfg.UserID,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize blob store")
	}

	mover := attachment.NewTransfer(
		attachment.NewDownloader(cfg.OrganizzeEmail, cfg.OrganizzeAPIKey),
		uploader,
		attachment.NewPacer(500*time.Millisecond, time.Second),
	)

	migrator := migrate.New(source, target, mover, *dryRun)
	summary, err := migrator.Run(ctx, startDate, endDate)
	if err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}

	fmt.Println("Migration completed.")
	fmt.Printf("  Run ID:              %s\n", migrator.RunID())
	fmt.Printf("  Accounts:            %d\n", summary.Accounts)
	fmt.Printf("  Cards:               %d\n", summary.Cards)
	fmt.Printf("  Transactions:        %d\n", summary.Transactions)
	fmt.Printf("  Card transactions:   %d\n", summary.CardTransactions)
	fmt.Printf("  Attachments:         %d\n", summary.Attachments)
	fmt.Printf("  Attachments skipped: %d\n", summary.AttachmentsSkipped)
	fmt.Printf("  Attachments failed:  %d\n", summary.AttachmentsFailed)
	fmt.Printf("  Records failed:      %d\n", summary.RecordsFailed)
}
