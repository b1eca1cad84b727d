package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/inkpad/inkpad/internal/auth"
	"github.com/inkpad/inkpad/internal/cli/output"
	"github.com/inkpad/inkpad/internal/cli/prompt"
	"github.com/inkpad/inkpad/pkg/config"
	"github.com/inkpad/inkpad/pkg/models"
	"github.com/inkpad/inkpad/pkg/store"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage user accounts",
	Long: `Manage Inkpad user accounts directly against the database.

Examples:
  inkpad user create alice@example.com
  inkpad user list
  inkpad user delete alice@example.com`,
}

var userCreateCmd = &cobra.Command{
	Use:   "create <email>",
	Short: "Create a local account (prompts for password)",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserCreate,
}

var userListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all accounts",
	RunE:    runUserList,
}

var (
	userDeleteForce bool

	userDeleteCmd = &cobra.Command{
		Use:     "delete <email>",
		Aliases: []string{"remove"},
		Short:   "Delete an account",
		Args:    cobra.ExactArgs(1),
		RunE:    runUserDelete,
	}
)

func init() {
	userDeleteCmd.Flags().BoolVar(&userDeleteForce, "force", false, "Skip confirmation prompt")

	userCmd.AddCommand(userCreateCmd)
	userCmd.AddCommand(userListCmd)
	userCmd.AddCommand(userDeleteCmd)
}

// openStore loads the configuration and connects to the database.
func openStore() (*store.GORMStore, error) {
	cfg, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, err
	}
	db, err := store.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return db, nil
}

func runUserCreate(cmd *cobra.Command, args []string) error {
	email := args[0]

	db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	password, err := prompt.PasswordWithConfirmation("Password", "Confirm password", func(input string) error {
		if violations := models.ValidatePassword(input); len(violations) > 0 {
			return errors.New(strings.Join(violations, "; "))
		}
		return nil
	})
	if err != nil {
		if prompt.IsAborted(err) {
			return nil
		}
		return err
	}

	registrar := auth.NewRegistrar(db, 0)
	user, err := registrar.Register(context.Background(), email, password)
	if err != nil {
		var verr *auth.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("invalid input: %s", strings.Join(verr.Errors, "; "))
		}
		if errors.Is(err, models.ErrDuplicateUser) {
			return fmt.Errorf("account %q already exists", models.NormalizeEmail(email))
		}
		return err
	}

	fmt.Printf("Account created: %s (ID %d)\n", user.Email, user.ID)
	return nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	users, err := db.ListUsers(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}

	table := output.NewTableData("ID", "Email", "Provider", "Password", "Created")
	for _, u := range users {
		hasPassword := "no"
		if u.HasLocalPassword() {
			hasPassword = "yes"
		}
		table.AddRow(
			strconv.FormatUint(uint64(u.ID), 10),
			u.Email,
			u.Provider,
			hasPassword,
			u.CreatedAt.Format("2006-01-02 15:04"),
		)
	}

	return output.PrintTable(os.Stdout, table)
}

func runUserDelete(cmd *cobra.Command, args []string) error {
	email := models.NormalizeEmail(args[0])

	db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	ctx := context.Background()
	user, err := db.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return fmt.Errorf("account %q not found", email)
		}
		return err
	}

	if !userDeleteForce {
		ok, err := prompt.Confirm(fmt.Sprintf("Delete account %s", user.Email), false)
		if err != nil {
			if prompt.IsAborted(err) {
				return nil
			}
			return err
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := db.DeleteUser(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	// Sessions referencing the account die on next resolution.
	fmt.Printf("Account deleted: %s\n", user.Email)
	return nil
}
