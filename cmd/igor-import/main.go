package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/KarthikShivasankar/immuneml-prototype/internal/core/domain"
	"github.com/KarthikShivasankar/immuneml-prototype/internal/core/services/importer"
	"github.com/KarthikShivasankar/immuneml-prototype/internal/infrastructure/cache"
	"github.com/KarthikShivasankar/immuneml-prototype/internal/infrastructure/database"
	"github.com/KarthikShivasankar/immuneml-prototype/internal/infrastructure/database/repositories"
	"github.com/KarthikShivasankar/immuneml-prototype/internal/infrastructure/queue"
	"github.com/KarthikShivasankar/immuneml-prototype/internal/infrastructure/storage"
	"github.com/KarthikShivasankar/immuneml-prototype/internal/pkg/config"
	"github.com/KarthikShivasankar/immuneml-prototype/internal/pkg/logger"
)

func main() {
	var (
		inputPath    = flag.String("in", "", "IGoR output file (local mode) or directory (enqueue mode)")
		outputPath   = flag.String("out", "", "cleaned CSV output path (local mode; default: stdout)")
		datasetName  = flag.String("name", "igor_dataset", "dataset name")
		regionType   = flag.String("region", "IMGT_CDR3", "region type of the source sequences")
		seqType      = flag.String("sequence-type", "amino_acid", "active sequence type: amino_acid or nucleotide")
		separator    = flag.String("sep", ",", "column separator")
		stopCodons   = flag.Bool("with-stop-codons", false, "keep sequences containing stop codons")
		outOfFrame   = flag.Bool("out-of-frame", false, "keep out-of-frame sequences")
		illegalChars = flag.Bool("illegal-characters", false, "keep sequences with characters outside the alphabet")
		emptyNT      = flag.Bool("empty-nt", true, "keep rows with an empty nucleotide sequence")
		enqueue      = flag.Bool("enqueue", false, "enqueue a background import instead of running locally")
		metadataFile = flag.String("metadata", "", "metadata file for repertoire imports (enqueue mode)")
		statusID     = flag.String("status", "", "show batch state and progress for a batch ID")
		list         = flag.Bool("list", false, "list recent import batches")
	)
	flag.Parse()

	log := logger.Initialize(os.Getenv("ENV"))
	ctx := context.Background()

	if *statusID != "" {
		if err := showStatus(ctx, log, *statusID); err != nil {
			log.Error("status lookup failed", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}
	if *list {
		if err := listBatches(ctx, log); err != nil {
			log.Error("listing batches failed", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "usage: igor-import -in <file|dir> [flags]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	params := importer.DefaultParams()
	params.Pipeline.ImportWithStopCodon = *stopCodons
	params.Pipeline.ImportOutOfFrame = *outOfFrame
	params.Pipeline.ImportIllegalCharacters = *illegalChars
	params.Pipeline.ImportEmptyNTSequences = *emptyNT
	params.Pipeline.RegionType = domain.RegionType(*regionType)
	params.Pipeline.SequenceType = domain.SequenceType(*seqType)
	if *separator != "" {
		params.Separator = []rune(*separator)[0]
	}

	if !domain.IsValidRegionType(params.Pipeline.RegionType) {
		log.Error("unknown region type", slog.String("region_type", *regionType))
		os.Exit(2)
	}

	if *enqueue {
		params.Path = *inputPath
		params.MetadataFile = *metadataFile
		params.IsRepertoire = *metadataFile != ""
		if err := enqueueImport(ctx, log, params, *datasetName); err != nil {
			log.Error("enqueue failed", slog.Any("error", err))
			os.Exit(1)
		}
		return
	}

	if err := runLocal(ctx, log, params, *inputPath, *outputPath); err != nil {
		log.Error("import failed", slog.Any("error", err))
		os.Exit(1)
	}
}

// runLocal imports a single file in-process and writes the cleaned table
// as CSV.
func runLocal(ctx context.Context, log *slog.Logger, params importer.Params, in, out string) error {
	svc := importer.NewService(log)

	table, err := svc.ImportFile(ctx, in, params)
	if err != nil {
		return err
	}

	data, err := importer.WriteCSV(table)
	if err != nil {
		return err
	}

	if out == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return err
	}

	log.Info("cleaned table written",
		slog.String("path", out),
		slog.Int("rows", table.Len()))
	return nil
}

// enqueueImport records an import batch and hands the work to the queue.
// Re-submitting a file that already has a batch is a no-op.
func enqueueImport(ctx context.Context, log *slog.Logger, params importer.Params, name string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	params.MaxFileSize = cfg.MaxFileSizeMB * 1024 * 1024

	db, err := database.NewPostgresDB(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.AutoMigrate(&domain.ImportBatch{}); err != nil {
		return err
	}

	store, err := storage.NewLocalStorage(&storage.LocalStorageConfig{
		BasePath: cfg.StorageBasePath,
	}, log)
	if err != nil {
		return err
	}

	batch := &domain.ImportBatch{
		ID:          uuid.New(),
		DatasetName: name,
		SourcePath:  params.Path,
	}

	// Hash the first import file so repeated submissions of the same
	// content are detected.
	files, err := os.ReadDir(params.Path)
	if err != nil {
		return err
	}
	repo := repositories.NewImportBatchRepository(db.DB, log)
	for _, entry := range files {
		if entry.IsDir() {
			continue
		}
		f, err := os.Open(filepath.Join(params.Path, entry.Name()))
		if err != nil {
			return err
		}
		meta, err := store.SaveSource(ctx, batch.ID.String(), entry.Name(), f)
		f.Close()
		if err != nil {
			return err
		}
		if batch.FileHash == "" {
			batch.FileHash = meta.Hash
		}
	}

	if batch.FileHash == "" {
		return fmt.Errorf("no importable files under %s", params.Path)
	}

	existing, err := repo.GetByFileHash(ctx, batch.FileHash)
	if err != nil {
		return err
	}
	if existing != nil {
		log.Info("identical batch already submitted",
			slog.String("batch_id", existing.ID.String()),
			slog.String("status", existing.Status))
		return nil
	}

	paramsJSON, err := domain.ToJSONB(params)
	if err != nil {
		return err
	}
	batch.Params = paramsJSON
	if err := repo.Create(ctx, batch); err != nil {
		return err
	}

	client := queue.NewAsynqClient(&cfg.Redis, log)
	defer client.Close()

	task, err := queue.NewImportTask(batch.ID, name, params)
	if err != nil {
		return err
	}
	info, err := client.EnqueueContext(ctx, task)
	if err != nil {
		return err
	}

	log.Info("import task enqueued",
		slog.String("batch_id", batch.ID.String()),
		slog.String("task_id", info.ID),
		slog.String("queue", info.Queue))
	return nil
}

// showStatus prints the persisted batch state alongside the live progress
// snapshot from the worker.
func showStatus(ctx context.Context, log *slog.Logger, id string) error {
	batchID, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid batch id %q: %w", id, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := database.NewPostgresDB(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewImportBatchRepository(db.DB, log)
	batch, err := repo.GetByID(ctx, batchID)
	if err != nil {
		return err
	}

	fmt.Printf("batch %s\n", batch.ID)
	fmt.Printf("  dataset:  %s\n", batch.DatasetName)
	fmt.Printf("  status:   %s\n", batch.Status)
	fmt.Printf("  rows:     %d imported of %d\n", batch.ImportedRows, batch.TotalRows)
	if batch.ErrorMessage != "" {
		fmt.Printf("  error:    %s\n", batch.ErrorMessage)
	}
	if batch.CompletedAt != nil {
		fmt.Printf("  finished: %s\n", batch.CompletedAt.Format(time.RFC3339))
	}

	progress, err := cache.NewRedisCache(&cfg.Redis, log)
	if err != nil {
		// The batch row is authoritative; live progress is best-effort.
		log.Warn("progress cache unavailable", slog.Any("error", err))
		return nil
	}
	defer progress.Close()

	status, total, imported, err := progress.GetProgress(ctx, batch.ID.String())
	if err != nil {
		return err
	}
	if status != "" {
		fmt.Printf("  worker:   %s (%d/%d)\n", status, imported, total)
	}
	return nil
}

// listBatches prints the most recent import batches, newest first
func listBatches(ctx context.Context, log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, err := database.NewPostgresDB(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewImportBatchRepository(db.DB, log)
	batches, err := repo.ListRecent(ctx, 20)
	if err != nil {
		return err
	}

	for _, b := range batches {
		fmt.Printf("%s  %-10s  %6d/%-6d  %s\n",
			b.ID, b.Status, b.ImportedRows, b.TotalRows, b.DatasetName)
	}
	return nil
}
