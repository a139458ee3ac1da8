package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/llmbench/internal/agent"
	"github.com/user/llmbench/internal/telegram"
)

func init() {
	rootCmd.AddCommand(telegramCmd)
}

var telegramCmd = &cobra.Command{
	Use:   "telegram",
	Short: "Run the agent as a Telegram bot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if a.cfg.Telegram.Token == "" {
			return errors.New("telegram.token is not set (TELEGRAM_BOT_TOKEN)")
		}
		ag, err := newAgent(a)
		if err != nil {
			return err
		}
		bot, err := telegram.New(a.cfg.Telegram.Token, ag, agent.LimitsFrom(a.cfg.Agent), a.log)
		if err != nil {
			return fmt.Errorf("create telegram adapter: %w", err)
		}

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		fmt.Fprintln(cmd.ErrOrStderr(), "Telegram bot running. Press Ctrl+C to stop.")
		bot.Start(ctx)
		return nil
	},
}
