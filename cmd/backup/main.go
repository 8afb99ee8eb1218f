package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"spellbee/internal/config"
	"spellbee/internal/logger"
	"spellbee/internal/repository"
	"spellbee/internal/service"
)

func main() {
	// Define subcommands
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)

	// Export flags
	exportOutput := exportCmd.String("output", "", "Output file path (default: spellbee_backup_YYYYMMDD_HHMMSS.json)")

	// Import flags
	importInput := importCmd.String("input", "", "Input file path (required)")
	importReplace := importCmd.Bool("replace", false, "Replace all stored users instead of merging (WARNING: destructive)")
	importYes := importCmd.Bool("yes", false, "Skip the confirmation prompt for -replace")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
	default:
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	kv, closeKV, err := repository.OpenKV(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open storage", "backend", cfg.StorageBackend, "error", err)
	}
	defer closeKV()

	store := service.NewUserStore(kv, log)
	users := service.NewUserService(store, log)
	backupService := service.NewBackupService(store, users, log)

	var runErr error
	switch os.Args[1] {
	case "export":
		runErr = handleExport(ctx, backupService, *exportOutput)
	case "import":
		runErr = handleImport(ctx, backupService, log, *importInput, *importReplace, *importYes)
	}
	if runErr != nil {
		log.Error("Backup command failed", "command", os.Args[1], "error", runErr)
		closeKV()
		os.Exit(1)
	}
}

func handleExport(ctx context.Context, backupService *service.BackupService, outputPath string) error {
	// Generate default filename if not provided
	if outputPath == "" {
		outputPath = fmt.Sprintf("spellbee_backup_%s.json", time.Now().Format("20060102_150405"))
	}

	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if err := backupService.Export(ctx, outputPath); err != nil {
		return err
	}

	info, err := os.Stat(outputPath)
	if err != nil {
		return err
	}
	fmt.Printf("Export complete: %s (%.2f KB)\n", outputPath, float64(info.Size())/1024)
	return nil
}

func handleImport(ctx context.Context, backupService *service.BackupService, log *logger.Logger, inputPath string, replace, yes bool) error {
	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("input file: %w", err)
	}

	if replace && !yes {
		fmt.Print("WARNING: This will delete all existing users and progress. Type 'yes' to confirm: ")
		answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.TrimSpace(answer) != "yes" {
			log.Info("Import cancelled")
			return nil
		}
	}

	result, err := backupService.Import(ctx, inputPath, replace)
	if err != nil {
		return err
	}
	mode := "merged"
	if result.Replaced {
		mode = "replaced"
	}
	fmt.Printf("Import complete: %d users (%s)\n", result.Users, mode)
	return nil
}

func printUsage() {
	fmt.Println("Spellbee Backup Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  backup export [options]    Export all users and progress to a JSON file")
	fmt.Println("  backup import [options]    Import users and progress from a JSON file")
	fmt.Println()
	fmt.Println("Export Options:")
	fmt.Println("  -output <file>    Output file path (default: spellbee_backup_YYYYMMDD_HHMMSS.json)")
	fmt.Println()
	fmt.Println("Import Options:")
	fmt.Println("  -input <file>     Input file path (required)")
	fmt.Println("  -replace          Replace all stored users instead of merging (WARNING: destructive)")
	fmt.Println("  -yes              Do not ask for confirmation")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  STORAGE_BACKEND  sql, redis or memory (default: sql)")
	fmt.Println("  DATABASE_TYPE    Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH          SQLite database path (default: ./spellbee.db)")
	fmt.Println("  DATABASE_URL     PostgreSQL or MySQL connection URL")
	fmt.Println("  REDIS_ADDR       Redis address (default: localhost:6379)")
}
