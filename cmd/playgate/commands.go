package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"playgate/internal/account"
	"playgate/internal/models"
)

func newRootCmd() *cobra.Command {
	var (
		userID string
		token  accessToken
		a      *app
	)

	root := &cobra.Command{
		Use:           "playgate",
		Short:         "Compliance gate for game clients",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return fmt.Errorf("--user is required")
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			cmd.SetContext(ctx)
			var err error
			a, err = newApp(ctx, token, cancel)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a != nil {
				a.close()
			}
		},
	}
	root.PersistentFlags().StringVar(&userID, "user", "", "Game user identifier")
	root.PersistentFlags().StringVar(&token.kid, "token-kid", "", "Account access token id")
	root.PersistentFlags().StringVar(&token.macKey, "token-mac-key", "", "Account access token MAC key")
	root.PersistentFlags().StringSliceVar(&token.scopes, "token-scopes", []string{account.ScopeCompliance}, "Scopes granted to the account token")

	startupCmd := &cobra.Command{
		Use:   "startup",
		Short: "Verify the player and keep checking play time until restricted or interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), func(ctx context.Context) error {
				outcome, err := a.login(ctx, userID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "startup: %s (%d)\n", outcome, outcome)
				if outcome != models.OutcomeLoginSuccess {
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "remaining: %ds\n", a.job.GetRemainingTime())
				for {
					outcome, err := a.await(ctx)
					if err != nil {
						a.job.Exit(context.WithoutCancel(ctx))
						return nil
					}
					fmt.Fprintf(cmd.OutOrStdout(), "outcome: %s (%d)\n", outcome, outcome)
					if !a.job.CanPlay() {
						return nil
					}
				}
			})
		},
	}

	var amount int64
	payCmd := &cobra.Command{
		Use:   "pay",
		Short: "Payment limit operations",
	}
	payCmd.PersistentFlags().Int64Var(&amount, "amount", 0, "Amount in cents")

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Ask whether a payment may proceed",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), func(ctx context.Context) error {
				if err := loggedIn(ctx, a, userID); err != nil {
					return err
				}
				res, err := a.job.CheckPaymentLimit(ctx, amount)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "status=%d title=%q description=%q\n", res.Status, res.Title, res.Description)
				return nil
			})
		},
	}

	submitCmd := &cobra.Command{
		Use:   "submit",
		Short: "Record a completed payment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd.Context(), func(ctx context.Context) error {
				if err := loggedIn(ctx, a, userID); err != nil {
					return err
				}
				if err := a.job.SubmitPayment(ctx, amount); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "payment recorded")
				return nil
			})
		},
	}

	payCmd.AddCommand(checkCmd, submitCmd)
	root.AddCommand(startupCmd, payCmd)
	return root
}

// loggedIn runs a startup for userID and fails unless it lets the player in.
func loggedIn(ctx context.Context, a *app, userID string) error {
	outcome, err := a.login(ctx, userID)
	if err != nil {
		return err
	}
	if outcome != models.OutcomeLoginSuccess {
		return fmt.Errorf("player not admitted: %s", outcome)
	}
	return nil
}
