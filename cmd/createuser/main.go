// Command createuser provisions a dashboard login.
//
//	createuser -email user@nextmail.com -name User
//
// The password is read from the terminal when -password is omitted.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"dashboard/backend/internal/config"
	authdomain "dashboard/backend/internal/domain/auth"
	"dashboard/backend/internal/infrastructure/postgres"
	"dashboard/backend/internal/logging"
	userusecase "dashboard/backend/internal/usecase/user"
	"dashboard/backend/internal/validate"

	"golang.org/x/term"
)

// readPassword is swapped in tests to avoid touching the terminal.
var readPassword = term.ReadPassword

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "createuser:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	input, err := parseArgs(args, stdin, stdout)
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := logging.New(os.Stderr, cfg.LogLevel)

	db, err := postgres.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(ctx, logger); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	user, err := userusecase.NewService(postgres.NewUserRepository(db.Pool)).Create(ctx, input)
	if err != nil {
		return describe(err)
	}
	logger.Info(ctx, "user created", "user_id", user.ID, "email", user.Email)
	fmt.Fprintf(stdout, "created user %s (%s)\n", user.Email, user.ID)
	return nil
}

func parseArgs(args []string, stdin io.Reader, stdout io.Writer) (userusecase.CreateInput, error) {
	fs := flag.NewFlagSet("createuser", flag.ContinueOnError)
	fs.SetOutput(stdout)
	email := fs.String("email", "", "login email")
	name := fs.String("name", "", "display name")
	password := fs.String("password", "", "password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return userusecase.CreateInput{}, err
	}

	input := userusecase.CreateInput{Email: *email, Name: *name, Password: *password}
	reader := bufio.NewReader(stdin)
	if strings.TrimSpace(input.Email) == "" {
		line, err := prompt(reader, stdout, "Email: ")
		if err != nil {
			return input, err
		}
		input.Email = line
	}
	if strings.TrimSpace(input.Name) == "" {
		line, err := prompt(reader, stdout, "Name: ")
		if err != nil {
			return input, err
		}
		input.Name = line
	}
	if input.Password == "" {
		fmt.Fprint(stdout, "Password: ")
		pw, err := readPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(stdout)
		if err != nil {
			return input, fmt.Errorf("read password: %w", err)
		}
		input.Password = string(pw)
	}
	return input, nil
}

func prompt(reader *bufio.Reader, w io.Writer, label string) (string, error) {
	fmt.Fprint(w, label)
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func describe(err error) error {
	if errors.Is(err, authdomain.ErrEmailExists) {
		return errors.New("a user with this email already exists")
	}
	if fields := validate.Fields(err); len(fields) > 0 {
		msgs := make([]string, 0, len(fields))
		for field, msg := range fields {
			msgs = append(msgs, field+": "+msg)
		}
		return errors.New(strings.Join(msgs, "; "))
	}
	return err
}
