//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Build compiles the API server, the dashboard and the cli into ./bin.
func Build() error {
	mg.Deps(Tidy)
	for _, target := range []string{"server", "dashboard", "cli"} {
		fmt.Println(">> Building", target)
		if err := sh.Run("go", "build", "-o", "bin/paylinks-"+target, "./cmd/"+target); err != nil {
			return err
		}
	}
	return nil
}

// Dev runs the API and the dashboard together. Ctrl-C stops both.
func Dev() error {
	api := exec.Command("go", "run", "./cmd/server")
	api.Stdout = os.Stdout
	api.Stderr = os.Stderr
	if err := api.Start(); err != nil {
		return fmt.Errorf("start api: %w", err)
	}

	dashboard := exec.Command("go", "run", "./cmd/dashboard")
	dashboard.Stdout = os.Stdout
	dashboard.Stderr = os.Stderr
	if err := dashboard.Start(); err != nil {
		api.Process.Kill()
		return fmt.Errorf("start dashboard: %w", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n>> Shutting down...")
	dashboard.Process.Kill()
	api.Process.Kill()
	return nil
}

// SeedAdmin creates the admin named by ADMIN_EMAIL and ADMIN_PASSWORD.
func SeedAdmin() error {
	email, password := os.Getenv("ADMIN_EMAIL"), os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		return fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}
	return sh.RunV("go", "run", "./cmd/cli", "seed-admin", "-email", email, "-password", password)
}

// Tidy runs go mod tidy.
func Tidy() error {
	fmt.Println(">> go mod tidy...")
	return sh.Run("go", "mod", "tidy")
}

// Test runs all unit tests.
func Test() error {
	fmt.Println(">> Running tests...")
	return sh.RunV("go", "test", "./...")
}

// Lint runs golangci-lint if available.
func Lint() error {
	if _, err := exec.LookPath("golangci-lint"); err != nil {
		fmt.Println(">> golangci-lint not found; skipping.")
		return nil
	}
	return sh.Run("golangci-lint", "run", "./...")
}

// Clean removes build artifacts, uploads and the local SQLite DB.
func Clean() error {
	fmt.Println(">> Cleaning...")
	os.RemoveAll("bin")
	os.RemoveAll("uploads")
	if err := os.Remove("db.sqlite"); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func init() {
	if err := godotenv.Load(); err != nil {
		fmt.Println(">> no .env file loaded")
	}
}
