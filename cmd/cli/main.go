package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/wadjakorntonsri/paylinks/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/paylinks/pkg/config"
	"github.com/wadjakorntonsri/paylinks/pkg/core/domain"
	"github.com/wadjakorntonsri/paylinks/pkg/core/services"
	"go.uber.org/zap"
)

const usage = "expected 'export', 'import' or 'seed-admin' subcommands"

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importFile := importCmd.String("file", "", "JSON file to import")
	seedCmd := flag.NewFlagSet("seed-admin", flag.ExitOnError)
	seedName := seedCmd.String("name", "Admin", "admin display name")
	seedEmail := seedCmd.String("email", "", "admin email")
	seedPassword := seedCmd.String("password", "", "admin password")

	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(1)
	}

	cfg := config.Load()
	logger, err := config.NewLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	repo, err := sqlite.NewSQLiteRepository(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to db", zap.Error(err))
	}
	defer repo.Close()

	ctx := context.Background()
	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		err = doExport(ctx, repo)
	case "import":
		importCmd.Parse(os.Args[2:])
		if *importFile == "" {
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		err = doImport(ctx, repo, *importFile, logger)
	case "seed-admin":
		seedCmd.Parse(os.Args[2:])
		if *seedEmail == "" || *seedPassword == "" {
			seedCmd.PrintDefaults()
			os.Exit(1)
		}
		auth := services.NewAuthService(repo, cfg.JWTSecret, cfg.AllowedEmails)
		err = auth.SeedAdmin(ctx, *seedName, *seedEmail, *seedPassword)
		if err == nil {
			logger.Info("admin ready", zap.String("email", *seedEmail))
		}
	default:
		fmt.Println(usage)
		os.Exit(1)
	}
	if err != nil {
		logger.Fatal(os.Args[1]+" failed", zap.Error(err))
	}
}

// doExport writes every link and submission to stdout
func doExport(ctx context.Context, repo *sqlite.SQLiteRepository) error {
	dump, err := repo.Dump(ctx)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(dump)
}

func doImport(ctx context.Context, repo *sqlite.SQLiteRepository, filename string, logger *zap.Logger) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	var dump domain.Dump
	if err := json.NewDecoder(file).Decode(&dump); err != nil {
		return fmt.Errorf("decode %s: %w", filename, err)
	}
	if err := repo.Import(ctx, &dump); err != nil {
		return err
	}
	logger.Info("import finished",
		zap.Int("links", len(dump.Links)),
		zap.Int("submissions", len(dump.Submissions)),
	)
	return nil
}
