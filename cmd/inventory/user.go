package main

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"inventory/internal/auth"
	"inventory/internal/db"
	"inventory/internal/store"
)

func newUserCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create NAME [PASSWORD]",
		Short: "Create an account; without PASSWORD a random one is generated",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			hasher, err := auth.NewBcryptHasher(a.cfg.Password.BcryptCost)
			if err != nil {
				return err
			}

			username := args[0]
			password, generated := "", false
			if len(args) == 2 {
				password = args[1]
			} else {
				if password, err = generatePassword(16); err != nil {
					return fmt.Errorf("generating password: %w", err)
				}
				generated = true
			}

			c := db.NewConn(database)
			defer c.Release()
			if _, err := store.CreateUser(cmd.Context(), c, hasher, username, password, generated); err != nil {
				if db.IsUniqueViolation(err) {
					return fmt.Errorf("user %q already exists", username)
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "User created: %s\n", username)
			if generated {
				fmt.Fprintf(out, "Password: %s\n", password)
				fmt.Fprintln(out, "Save this password, it cannot be recovered. It must be changed after the first login.")
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete NAME",
		Short: "Delete an account that has no history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			c := db.NewConn(database)
			defer c.Release()
			if err := store.DeleteUserByName(cmd.Context(), c, args[0]); err != nil {
				if db.IsForeignKeyViolation(err) {
					return fmt.Errorf("user %q has edit history and cannot be deleted", args[0])
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "User deleted: %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer database.Close()

			c := db.NewConn(database)
			defer c.Release()
			users, err := store.ListUsers(cmd.Context(), c)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tUSERNAME\tCREATED\tLAST LOGIN\tRESET REQUIRED")
			for _, u := range users {
				lastLogin := "never"
				if u.LastLogin != nil {
					lastLogin = u.LastLogin.Format(time.DateTime)
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%t\n",
					u.ID, u.Username, u.CreatedAt.Format(time.DateTime), lastLogin, u.PasswordResetRequired)
			}
			return tw.Flush()
		},
	})

	return cmd
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
