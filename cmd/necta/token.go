package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/jonathan/necta-results/internal/config"
	"github.com/jonathan/necta-results/internal/server"
	"github.com/spf13/cobra"
)

var (
	tokenHashPassword bool
	tokenSubject      string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an admin token or hash the admin password",
	Long: `Without flags, sign an admin bearer token with JWT_SECRET.
With --hash-password, read a password from stdin and print the bcrypt hash to
store in ADMIN_PASSWORD_HASH.`,
	Example: "  echo -n 's3cret' | necta token --hash-password\n  necta token --subject ops",
	Args:    cobra.NoArgs,
	RunE:    runToken,
}

func init() {
	tokenCmd.Flags().BoolVar(&tokenHashPassword, "hash-password", false, "Hash a password read from stdin")
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", server.RoleAdmin, "Subject recorded in the token")
	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, _ []string) error {
	if tokenHashPassword {
		return hashPassword(cmd)
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return err
	}
	token, expiresAt, err := server.NewJWTService(jwtConfig).GenerateToken(tokenSubject, server.RoleAdmin)
	if err != nil {
		return err
	}

	if outputJSON {
		return writeJSON(cmd.OutOrStdout(), server.TokenResponse{Token: token, ExpiresAt: expiresAt})
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

func hashPassword(cmd *cobra.Command) error {
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		if err != nil {
			return fmt.Errorf("failed to read password from stdin: %w", err)
		}
		return fmt.Errorf("password is empty")
	}

	adminConfig, err := config.NewAdminConfig()
	if err != nil {
		return err
	}
	hash, err := adminConfig.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
