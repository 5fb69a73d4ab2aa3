package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"familyregistry/internal/config"
	"familyregistry/internal/database"
	"familyregistry/internal/repository"
	"familyregistry/internal/security"
	"familyregistry/internal/service"
)

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	hashCmd := flag.NewFlagSet("hash-password", flag.ExitOnError)

	exportOutput := exportCmd.String("output", "", "Output file path (default: registry_backup_YYYYMMDD_HHMMSS.json)")

	importInput := importCmd.String("input", "", "Input file path (required)")
	importClear := importCmd.Bool("clear", false, "Remove existing families before import (WARNING: destructive)")
	importYes := importCmd.Bool("yes", false, "Skip the confirmation prompt for -clear")

	hashPassword := hashCmd.String("password", "", "Admin password to hash (required)")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// hash-password needs no database
	if os.Args[1] == "hash-password" {
		hashCmd.Parse(os.Args[2:])
		handleHashPassword(hashCmd, *hashPassword)
		return
	}

	cfg := config.Load()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations to ensure schema is up to date
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	backupService := service.NewBackupService(repository.NewFamilyRepository(db))
	ctx := context.Background()

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		handleExport(ctx, backupService, *exportOutput)

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		handleImport(ctx, backupService, *importInput, *importClear, *importYes)

	default:
		printUsage()
		os.Exit(1)
	}
}

func handleExport(ctx context.Context, backupService *service.BackupService, outputPath string) {
	if outputPath == "" {
		outputPath = fmt.Sprintf("registry_backup_%s.json", time.Now().Format("20060102_150405"))
	}

	dir := filepath.Dir(outputPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create output directory: %v", err)
		}
	}

	log.Printf("Exporting registry to: %s", outputPath)
	if err := backupService.Export(ctx, outputPath); err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	if info, err := os.Stat(outputPath); err == nil {
		log.Printf("Export complete! File size: %.2f KB", float64(info.Size())/1024)
	}
}

func handleImport(ctx context.Context, backupService *service.BackupService, inputPath string, clearData, skipConfirm bool) {
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		log.Fatalf("Input file does not exist: %s", inputPath)
	}

	if clearData && !skipConfirm {
		fmt.Print("WARNING: This will delete all existing families. Type 'yes' to confirm: ")
		var confirmation string
		fmt.Scanln(&confirmation)
		if confirmation != "yes" {
			log.Println("Import cancelled")
			return
		}
	}

	log.Printf("Importing registry from: %s", inputPath)
	count, err := backupService.Import(ctx, inputPath, clearData)
	if errors.Is(err, repository.ErrDuplicateFamily) {
		log.Fatalf("Import failed: %v (use -clear to replace existing families)", err)
	}
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}

	log.Printf("Import complete! %d families restored", count)
}

func handleHashPassword(hashCmd *flag.FlagSet, password string) {
	if password == "" {
		fmt.Println("Error: -password flag is required")
		hashCmd.PrintDefaults()
		os.Exit(1)
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}
	fmt.Println(hash)
}

func printUsage() {
	fmt.Println("Family Registry Maintenance Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  backup export [options]          Export all families to a JSON file")
	fmt.Println("  backup import [options]          Import families from a JSON file")
	fmt.Println("  backup hash-password [options]   Print a bcrypt hash for ADMIN_PASSWORD_HASH")
	fmt.Println()
	fmt.Println("Export Options:")
	fmt.Println("  -output <file>      Output file path (default: registry_backup_YYYYMMDD_HHMMSS.json)")
	fmt.Println()
	fmt.Println("Import Options:")
	fmt.Println("  -input <file>       Input file path (required)")
	fmt.Println("  -clear              Remove existing families before import (WARNING: destructive)")
	fmt.Println("  -yes                Do not ask for confirmation")
	fmt.Println()
	fmt.Println("Hash Options:")
	fmt.Println("  -password <value>   Password to hash (required)")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DB_TYPE          Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH          SQLite database path (default: ./registry.db)")
	fmt.Println("  DATABASE_URL     PostgreSQL or MySQL connection URL")
}
