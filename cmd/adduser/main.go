package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/budgetly/budgetly-backend/internal/repository/postgres"
	"github.com/budgetly/budgetly-backend/internal/service"
	"github.com/joho/godotenv"
	"golang.org/x/term"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	name := fs.String("name", "", "Display name")
	email := fs.String("email", "", "Email address")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")
	databaseURL := fs.String("db", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL (defaults to DATABASE_URL)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if *name == "" || *email == "" {
		fmt.Fprintln(stdout, "Usage: adduser -name <name> -email <email> [-password <password>] [-db <database_url>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: name, email")
	}
	if *databaseURL == "" {
		return fmt.Errorf("no database: set -db or DATABASE_URL")
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout) // Print newline after password input
	}

	if err := postgres.RunMigrations(*databaseURL); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	pool, err := postgres.Connect(context.Background(), *databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer pool.Close()

	// Registration never issues a token
	authService := service.NewAuthService(postgres.NewUserRepository(pool), nil)
	categoryService := service.NewCategoryService(postgres.NewCategoryRepository(pool))

	return createUser(authService, categoryService, *name, *email, password, stdout)
}

// createUser seeds the default categories and registers the user
func createUser(authService *service.AuthService, categoryService *service.CategoryService, name, email, password string, stdout io.Writer) error {
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if err := categoryService.SeedDefaults(); err != nil {
		return fmt.Errorf("failed to seed default categories: %w", err)
	}

	user, err := authService.Register(name, email, password)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %d\n", user.Email, user.ID)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	// Check if stdin is a terminal
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// Fallback for non-terminal (e.g. tests, pipes)
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
