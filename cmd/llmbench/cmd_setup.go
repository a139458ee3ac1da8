package main

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/llmbench/internal/catalog"
	"github.com/user/llmbench/internal/config"
)

func init() {
	rootCmd.AddCommand(setupCmd)
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		runSetup(bufio.NewScanner(cmd.InOrStdin()), out, cfg)

		// Keys entered here are what the user asked to store.
		if err := config.Save(cfgPath, cfg, true); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, "Configuration saved to", cfgPath)
		return nil
	},
}

// runSetup walks through provider keys and request defaults.
func runSetup(scanner *bufio.Scanner, w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "llmbench Setup Wizard")
	fmt.Fprintln(w, "Press Enter to accept the default value shown in brackets.")
	fmt.Fprintln(w)

	keys := map[catalog.Provider]*string{
		catalog.OpenAI:      &cfg.OpenAI.APIKey,
		catalog.Anthropic:   &cfg.Anthropic.APIKey,
		catalog.HuggingFace: &cfg.HuggingFace.APIKey,
		catalog.Gemini:      &cfg.Gemini.APIKey,
	}
	for _, p := range catalog.Providers {
		label := fmt.Sprintf("%s API key (%s, optional)", p.DisplayName(), p.EnvVar())
		*keys[p] = promptSecret(scanner, w, label, *keys[p])
	}

	if n, err := strconv.Atoi(prompt(scanner, w, "Max output tokens", strconv.Itoa(cfg.Request.MaxTokens))); err == nil && n > 0 {
		cfg.Request.MaxTokens = n
	}
	if t, err := strconv.ParseFloat(prompt(scanner, w, "Temperature", strconv.FormatFloat(cfg.Request.Temperature, 'g', -1, 64)), 64); err == nil && t >= 0 && t <= 2 {
		cfg.Request.Temperature = t
	}

	cfg.Telegram.Token = promptSecret(scanner, w, "Telegram bot token (optional)", cfg.Telegram.Token)
}

// prompt displays a labeled prompt with a default value and reads user input.
// If the user enters nothing, the default is returned.
func prompt(scanner *bufio.Scanner, w io.Writer, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(w, "%s [%s]: ", label, defaultVal)
	} else {
		fmt.Fprintf(w, "%s: ", label)
	}
	if scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input != "" {
			return input
		}
	}
	return defaultVal
}

// promptSecret is prompt with the current value masked.
func promptSecret(scanner *bufio.Scanner, w io.Writer, label, current string) string {
	shown := ""
	if current != "" {
		shown = fmt.Sprint(config.MaskSecrets(map[string]any{"openai.api_key": current})["openai.api_key"])
	}
	if v := prompt(scanner, w, label, shown); v != shown {
		return v
	}
	return current
}
