// Command resync re-synchronizes transaction receipts between Organizze and
// the myPay blob store: it finds stored transactions whose receipt points at
// the decommissioned MinIO backend (or, with -force-all, every receipt),
// pairs them with their Organizze originals by description/date/amount, and
// replaces the reference with a freshly re-hosted copy.
//
// Usage:
//
//	resync [-dry-run] [-add-new] [-force-all] [-verbose]
//	resync -clean-lost [-dry-run]
//
// -clean-lost skips matching entirely and strips receipt references that
// still point at the MinIO backend.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/mypay/organizze-sync/internal/attachment"
	"github.com/mypay/organizze-sync/internal/blob"
	"github.com/mypay/organizze-sync/internal/config"
	"github.com/mypay/organizze-sync/internal/logger"
	"github.com/mypay/organizze-sync/internal/organizze"
	"github.com/mypay/organizze-sync/internal/resync"
	"github.com/mypay/organizze-sync/internal/store"
)

func main() {
	log := logger.New()

	dryRun := flag.Bool("dry-run", false, "Report intended actions without transferring or mutating anything")
	addNew := flag.Bool("add-new", false, "Also attach receipts to transactions that have none")
	forceAll := flag.Bool("force-all", false, "Treat every existing receipt as needing replacement")
	verbose := flag.Bool("verbose", false, "Also report skipped records that had no match")
	cleanLost := flag.Bool("clean-lost", false, "Strip receipt references pointing at the old MinIO backend and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Configuration error")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	target, err := store.New(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentials, cfg.UserID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize Firestore")
	}
	defer target.Close()

	source := organizze.New(cfg.OrganizzeEmail, cfg.OrganizzeAPIKey)

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

	resyncer := resync.New(source, target, mover, resync.Options{
		DryRun:    *dryRun,
		AddNew:    *addNew,
		ForceAll:  *forceAll,
		Verbose:   *verbose,
		PublicURL: cfg.S3PublicURL,
	})

	if *cleanLost {
		cleaned, err := resyncer.CleanLost(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Cleanup failed")
		}
		fmt.Println("Cleanup completed.")
		fmt.Printf("  Cleared: %d\n", cleaned)
		return
	}

	summary, err := resyncer.Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Resync failed")
	}

	fmt.Println("Resync completed.")
	fmt.Printf("  Updated:    %d\n", summary.Updated)
	fmt.Printf("  Skipped:    %d\n", summary.Skipped)
	fmt.Printf("  Failed:     %d\n", summary.Failed)
	if summary.MinioLost > 0 {
		fmt.Printf("  MinIO lost: %d (no Organizze match)\n", summary.MinioLost)
	}
}
