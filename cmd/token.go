package cmd

import (
	"errors"
	"fmt"
	"time"

	"catering/middleware"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	tokenUser  string
	tokenEmail string
	tokenTTL   time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for local testing",
	Long: `Issue an HS256 bearer token signed with auth.secret.

Production tokens come from the identity provider; this command only helps
exercise the API locally. It refuses to run when auth.public_key_file is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := bootstrap()
		if err != nil {
			return err
		}
		if cfg.Auth.PublicKeyFile != "" {
			return errors.New("token signing needs auth.secret; RS256 keys are owned by the identity provider")
		}
		if err := middleware.InitJWT(cfg); err != nil {
			return err
		}

		user := tokenUser
		if user == "" {
			user = uuid.NewString()
		}
		ttl := tokenTTL
		if ttl <= 0 {
			ttl = cfg.Auth.DevTokenTTL
		}

		token, err := middleware.GenerateToken(user, tokenEmail, ttl)
		if err != nil {
			return fmt.Errorf("sign token: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "subject (user id), random when empty")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email claim")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "lifetime, defaults to auth.dev_token_hours")
	rootCmd.AddCommand(tokenCmd)
}
