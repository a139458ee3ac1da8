package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/llmbench/internal/agent"
	"github.com/user/llmbench/internal/report"
	"github.com/user/llmbench/pkg/llm"
)

var agentOpts struct {
	question string
	image    string
	textOnly bool
	json     bool
}

func init() {
	rootCmd.AddCommand(agentCmd)
	agentCmd.AddCommand(agentAskCmd, agentAnalyzeCmd, agentInfoCmd)

	f := agentAskCmd.Flags()
	f.StringVarP(&agentOpts.question, "question", "q", "", "question about the image (required)")
	f.StringVar(&agentOpts.image, "image", "", "image file path or URL")
	f.BoolVar(&agentOpts.textOnly, "text-only", false, "skip the vision model")
	f.BoolVar(&agentOpts.json, "json", false, "print JSON")
	_ = agentAskCmd.MarkFlagRequired("question")

	agentAnalyzeCmd.Flags().StringVar(&agentOpts.image, "image", "", "image file path or URL (required)")
	agentAnalyzeCmd.Flags().BoolVar(&agentOpts.json, "json", false, "print JSON")
	_ = agentAnalyzeCmd.MarkFlagRequired("image")

	agentInfoCmd.Flags().BoolVar(&agentOpts.json, "json", false, "print JSON")
}

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Multimodal QA agent with a text-only fallback",
}

func newAgent(a *app) (*agent.Agent, error) {
	if err := a.cfg.ValidateAgent(); err != nil {
		return nil, fmt.Errorf("agent configuration: %w", err)
	}
	return agent.NewFromFactory(a.svc.Factory(), a.cfg.Agent, a.log, agent.WithBus(a.bus))
}

// loadImage reads src from disk, or downloads it when it is an http(s)
// URL. A URL serving a web page yields page text instead of an image.
func loadImage(ctx context.Context, src string, lim agent.Limits, timeout time.Duration) (*llm.Image, string, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return agent.FetchImage(ctx, &http.Client{Timeout: timeout}, src, lim)
	}
	img, err := agent.LoadImageFile(src, lim)
	return img, "", err
}

var agentAskCmd = &cobra.Command{
	Use:   "ask",
	Short: "Ask a question about an image",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ag, err := newAgent(a)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		question := agentOpts.question
		var img *llm.Image
		if agentOpts.image != "" {
			var page string
			img, page, err = loadImage(ctx, agentOpts.image, agent.LimitsFrom(a.cfg.Agent), a.cfg.RequestTimeout())
			if err != nil {
				return err
			}
			question = agent.WithPageContext(question, page)
		} else if !agentOpts.textOnly {
			fmt.Fprintln(cmd.ErrOrStderr(), "No image given, answering without one.")
		}

		ans, err := ag.Answer(ctx, question, img, !agentOpts.textOnly)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if agentOpts.json {
			return report.JSON(out, map[string]any{
				"question":     agentOpts.question,
				"answer":       ans.Text,
				"mode":         ans.Mode,
				"fell_back":    ans.FellBack,
				"vision_error": ans.VisionError(),
				"elapsed_ms":   ans.Elapsed.Milliseconds(),
			})
		}
		if ans.FellBack {
			fmt.Fprintf(cmd.ErrOrStderr(), "Vision analysis failed (%s), used the text-only model.\n", ans.VisionError())
		}
		fmt.Fprintln(out, ans.Text)
		return nil
	},
}

var agentAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the fixed set of analysis questions on an image",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ag, err := newAgent(a)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext(cmd.Context())
		defer cancel()

		img, _, err := loadImage(ctx, agentOpts.image, agent.LimitsFrom(a.cfg.Agent), a.cfg.RequestTimeout())
		if err != nil {
			return err
		}
		if img == nil {
			return errors.New("the URL did not return an image")
		}

		results, err := ag.AnalyzeComprehensive(ctx, img)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if agentOpts.json {
			return report.JSON(out, results)
		}
		for i, r := range results {
			if i > 0 {
				fmt.Fprintln(out)
			}
			fmt.Fprintf(out, "## %s\n\n%s\n", r.Question, r.Answer)
		}
		return nil
	},
}

var agentInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the agent's models and limits",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ag, err := newAgent(a)
		if err != nil {
			return err
		}
		info := ag.ModelInfo()

		out := cmd.OutOrStdout()
		if agentOpts.json {
			return report.JSON(out, info)
		}
		fmt.Fprintf(out, "Provider:     %s\n", info.Provider)
		fmt.Fprintf(out, "Vision model: %s\n", info.VisionModel)
		fmt.Fprintf(out, "Text model:   %s\n", info.TextModel)
		fmt.Fprintf(out, "Temperature:  %g\n", info.Temperature)
		fmt.Fprintf(out, "Max tokens:   %d\n", info.MaxTokens)
		fmt.Fprintf(out, "Max file:     %d MB\n", info.MaxFileMB)
		fmt.Fprintf(out, "Formats:      %s\n", strings.Join(info.Formats, ", "))
		fmt.Fprintf(out, "Capabilities: %s\n", strings.Join(info.Capabilities, ", "))
		return nil
	},
}
