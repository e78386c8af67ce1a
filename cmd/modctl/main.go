package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"moderation/internal/config"
	"moderation/internal/dto"
	"moderation/internal/jwtsigner"
	impl "moderation/internal/service/impl"
	"moderation/internal/store"
	"moderation/pkg/db"
)

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "create-admin":
		err = runCreateAdmin(args)
	case "promote":
		err = runPromote(args)
	case "genkey":
		err = runGenKey(args)
	default:
		usage()
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [options]\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  create-admin   Create an admin account or grant admin to an existing one")
	fmt.Fprintln(os.Stderr, "  promote        Admit a pending user (sets role approved)")
	fmt.Fprintln(os.Stderr, "  genkey         Print a fresh Ed25519 SECRET_KEY for ALGORITHM=EdDSA")
	os.Exit(2)
}

func runCreateAdmin(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	username := fs.String("username", "", "admin username (required)")
	password := fs.String("password", os.Getenv("ADMIN_PASSWORD"), "password; defaults to $ADMIN_PASSWORD, empty keeps the stored one")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" {
		return errors.New("--username is required")
	}

	return withAuthService(func(ctx context.Context, as *impl.AuthServiceImpl) error {
		u, err := as.EnsureAdmin(ctx, *username, *password)
		if err != nil {
			return err
		}
		return printJSON(struct {
			dto.UserResponse
			Role string `json:"role"`
		}{dto.NewUserResponse(u), string(u.Role)})
	})
}

func runPromote(args []string) error {
	fs := flag.NewFlagSet("promote", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	rawID := fs.String("id", "", "user id (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	id, err := strconv.ParseInt(*rawID, 10, 64)
	if err != nil || id < 1 {
		return fmt.Errorf("--id must be a positive integer, got %q", *rawID)
	}

	return withAuthService(func(ctx context.Context, as *impl.AuthServiceImpl) error {
		u, err := as.PromoteUser(ctx, id)
		if err != nil {
			return err
		}
		return printJSON(dto.MessageResponse{Message: fmt.Sprintf("user %d admitted to the system", u.ID)})
	})
}

func runGenKey(args []string) error {
	fs := flag.NewFlagSet("genkey", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return err
	}
	key, err := jwtsigner.GenerateEd25519()
	if err != nil {
		return err
	}
	fmt.Println(key)
	return nil
}

// withAuthService opens the configured database and runs fn with an auth
// service bound to it.
func withAuthService(fn func(ctx context.Context, as *impl.AuthServiceImpl) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	gdb, err := db.OpenGorm(db.Config{DSN: cfg.DatabaseURL, LogSQL: cfg.DBLogSQL})
	if err != nil {
		return err
	}
	defer func() { _ = db.Close(gdb) }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st := store.New(gdb)
	if cfg.AutoMigrate {
		if err := st.AutoMigrate(ctx); err != nil {
			return fmt.Errorf("automigrate: %w", err)
		}
	}
	signer, err := jwtsigner.New(cfg.Algorithm, cfg.SecretKey, cfg.AppName)
	if err != nil {
		return err
	}
	as := impl.NewAuthServiceImpl(st, impl.NewPasswordServiceBcrypt(cfg.BcryptCost), impl.NewTokenService(signer, cfg.AccessTokenTTL))
	return fn(ctx, as)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
