package cmd

import (
	"fmt"

	"catering/logger"
	"catering/service"

	"github.com/spf13/cobra"
)

var testEmailTo string

var testEmailCmd = &cobra.Command{
	Use:   "test-email",
	Short: "Send a test message with the configured SMTP settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync()

		if err := service.NewEmailService(&cfg.Email).SendTestEmail(testEmailTo); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "test email sent to %s\n", testEmailTo)
		return nil
	},
}

func init() {
	testEmailCmd.Flags().StringVar(&testEmailTo, "to", "", "recipient address")
	_ = testEmailCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(testEmailCmd)
}
