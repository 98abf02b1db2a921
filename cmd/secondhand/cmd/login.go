package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func loginCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and persist the session token",
		Long: "Log in to the SecondHandPlatform API and persist the bearer token\n" +
			"for later commands. The token is the only state kept on disk.",
		Example: `  secondhand login alice
  secondhand login alice --password s3cret`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if password == "" {
				fmt.Fprint(os.Stderr, "Password: ")
				line, err := bufio.NewReader(os.Stdin).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("reading password: %w", err)
				}
				password = strings.TrimSpace(line)
			}

			token, err := newClient().Login(context.Background(), args[0], password)
			if err != nil {
				return err
			}
			if err := tokenStore().Save(token); err != nil {
				return err
			}
			fmt.Println("Logged in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")

	return cmd
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the persisted session token",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := tokenStore().Clear(); err != nil {
				return err
			}
			fmt.Println("Logged out.")
			return nil
		},
	}
}
