package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tressure/backend/internal/auth"
	"github.com/tressure/backend/internal/config"
	"github.com/tressure/backend/internal/repository"
)

type output struct {
	Token          string `json:"token"`
	AdminTokenHash string `json:"admin_token_hash"`
	Table          string `json:"table,omitempty"`
}

func main() {
	_ = config.LoadDotenv()

	var (
		token       = flag.String("token", "", "Existing token to hash (generated when empty)")
		databaseURL = flag.String("database-url", "", "PostgreSQL connection string; when set the users table is created")
		table       = flag.String("table", envOr("USERS_TABLE", "users"), "Users table name")
		format      = flag.String("format", "plain", "Output format: plain, env or json")
	)
	flag.Parse()

	plaintext := strings.TrimSpace(*token)
	if plaintext == "" {
		generated, err := auth.GenerateToken()
		if err != nil {
			fmt.Fprintln(os.Stderr, "generate token:", err)
			os.Exit(1)
		}
		plaintext = generated
	}

	hash, err := auth.HashToken(plaintext)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash token:", err)
		os.Exit(1)
	}

	out := output{Token: plaintext, AdminTokenHash: hash}

	if *databaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		repo, err := repository.New(ctx, *databaseURL, repository.Options{
			UsersTable:  *table,
			AutoMigrate: true,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "connect database:", err)
			os.Exit(1)
		}
		repo.Close()
		out.Table = *table
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Token)
		fmt.Println(out.AdminTokenHash)
	case "env":
		// Single quotes keep the $ separators of the PHC string intact.
		fmt.Printf("ADMIN_TOKEN_HASH='%s'\n", out.AdminTokenHash)
		fmt.Fprintln(os.Stderr, "admin token:", out.Token)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain, env or json")
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
