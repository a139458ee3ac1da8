// Package interactive implements the numbered-menu terminal mode.
package interactive

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/user/llmbench/internal/catalog"
	"github.com/user/llmbench/internal/compare"
	"github.com/user/llmbench/internal/history"
	"github.com/user/llmbench/internal/report"
	"github.com/user/llmbench/internal/visualize"
	"github.com/user/llmbench/pkg/logger"
)

const menu = `Main Menu:
  1. Single Model Query
  2. Compare Multiple Models
  3. View Model Information
  4. View Session History
  5. Settings
  6. Help
  7. Exit`

const helpText = `Navigation:
  Type the number of a menu option and press Enter.
  Press Enter at a prompt to accept the default shown in brackets.

Model types:
  base        completion-style foundation models
  instruct    instruction-following chat models
  fine-tuned  models specialized for a domain such as code

Comparison mode queries every selected provider and model type with the
same prompt and shows the responses side by side. Visualization draws
token, timing and length charts in the terminal.`

var errExit = errors.New("exit")

type entry struct {
	kind   history.Kind
	query  string
	at     time.Time
	result *compare.Result
	cmp    *compare.Comparison
}

// Session is one interactive run over a reader and writer.
type Session struct {
	svc    *compare.Service
	in     *bufio.Scanner
	out    io.Writer
	log    *logger.Logger
	opts   report.Options
	format report.Format
	store  history.Store

	history []entry
}

type Option func(*Session)

// WithTheme selects the chart and table theme.
func WithTheme(theme string) Option {
	return func(s *Session) { s.opts.Theme = theme }
}

// WithFormat sets the initial output format.
func WithFormat(f report.Format) Option {
	return func(s *Session) { s.format = f }
}

// WithStore lets the history view list records saved by earlier runs.
func WithStore(st history.Store) Option {
	return func(s *Session) { s.store = st }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Session) { s.log = l.WithComponent("interactive") }
}

// New creates a session.
func New(svc *compare.Service, in io.Reader, out io.Writer, opts ...Option) *Session {
	s := &Session{
		svc:    svc,
		in:     bufio.NewScanner(in),
		out:    out,
		log:    logger.NewNop(),
		format: report.FormatConsole,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run shows the menu until the user exits or input ends.
func (s *Session) Run(ctx context.Context) error {
	s.println("Model Comparison and Use-case Mapping Tool")
	s.println("Compare OpenAI, Anthropic, Hugging Face and Gemini models side by side.")
	s.println("")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.println(menu)
		s.println("")
		choice, ok := s.ask("Choose an option", "")
		if !ok {
			s.println("Goodbye!")
			return nil
		}

		var err error
		switch choice {
		case "1":
			err = s.singleQuery(ctx)
		case "2":
			err = s.comparison(ctx)
		case "3":
			err = report.Models(s.out, catalog.Providers, report.Options{Theme: s.opts.Theme, Verbose: true})
		case "4":
			err = s.showHistory(ctx)
		case "5":
			s.settings()
		case "6":
			s.println(helpText)
		case "7":
			if s.confirm("Are you sure you want to exit?", true) {
				s.println("Goodbye!")
				return nil
			}
		default:
			s.println("Invalid choice. Please try again.")
		}

		if errors.Is(err, errExit) {
			s.println("Goodbye!")
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Warnw("menu action failed", "choice", choice, "error", err)
			s.printf("Error: %v\n", err)
		}
		s.println("")
	}
}

func (s *Session) singleQuery(ctx context.Context) error {
	s.println("Single Model Query")
	query, ok := s.ask("Enter your query", "")
	if !ok {
		return errExit
	}
	if query == "" {
		s.println("Query cannot be empty")
		return nil
	}

	pv, _ := s.ask("Choose provider (openai/anthropic/huggingface/gemini)", string(catalog.OpenAI))
	p, err := catalog.ParseProvider(pv)
	if err != nil {
		return err
	}
	tv, _ := s.ask("Choose model type (base/instruct/fine-tuned)", string(catalog.Instruct))
	mt, err := catalog.ParseModelType(tv)
	if err != nil {
		return err
	}
	model, _ := s.ask("Model name (optional)", "")

	s.printf("Querying %s %s model...\n", p, mt)
	res, err := s.svc.Query(ctx, compare.Request{Query: query, Provider: p, ModelType: mt, Model: model})
	if err != nil {
		return err
	}
	s.history = append(s.history, entry{kind: history.KindQuery, query: query, at: time.Now(), result: res})

	if err := s.showResult(res); err != nil {
		return err
	}
	if s.confirm("Save this result?", false) {
		name, _ := s.ask("Enter filename", "result.json")
		if err := report.Save(name, res); err != nil {
			return err
		}
		s.printf("Response saved to %s\n", name)
	}
	return nil
}

func (s *Session) comparison(ctx context.Context) error {
	s.println("Multi-Model Comparison")
	query, ok := s.ask("Enter your query", "")
	if !ok {
		return errExit
	}
	if query == "" {
		s.println("Query cannot be empty")
		return nil
	}

	var providers []catalog.Provider
	for _, p := range catalog.Providers {
		if s.confirm(fmt.Sprintf("Include %s?", p), true) {
			providers = append(providers, p)
		}
	}
	if len(providers) == 0 {
		s.println("At least one provider must be selected")
		return nil
	}
	var types []catalog.ModelType
	for _, mt := range catalog.ModelTypes {
		if s.confirm(fmt.Sprintf("Include %s models?", mt), true) {
			types = append(types, mt)
		}
	}
	if len(types) == 0 {
		s.println("At least one model type must be selected")
		return nil
	}

	cmp, err := s.svc.CompareAll(ctx, query, providers, types)
	if err != nil {
		return err
	}
	s.history = append(s.history, entry{kind: history.KindCompare, query: query, at: time.Now(), cmp: cmp})

	if err := report.Write(s.out, s.format, s.opts, cmp); err != nil {
		return err
	}
	if len(cmp.Results) > 0 && s.confirm("Show visualization?", false) {
		if err := visualize.Comparison(s.out, cmp.Results, s.opts.Theme); err != nil {
			return err
		}
	}
	if len(cmp.Results) > 0 && s.confirm("Save comparison results?", false) {
		name, _ := s.ask("Enter filename", "comparison.json")
		if err := report.Save(name, cmp.Results...); err != nil {
			return err
		}
		s.printf("Comparison saved to %s\n", name)
	}
	return nil
}

func (s *Session) showResult(r *compare.Result) error {
	return report.Write(s.out, s.format, s.opts, &compare.Comparison{Query: r.Query, Results: []*compare.Result{r}})
}

func (s *Session) showHistory(ctx context.Context) error {
	if len(s.history) == 0 {
		s.println("No queries in session history")
	} else {
		s.printf("Session History (%d entries)\n\n", len(s.history))
		for i, e := range s.history {
			switch e.kind {
			case history.KindQuery:
				s.printf("%d. Single Query: %s\n", i+1, preview(e.query))
				s.printf("   Provider: %s, Type: %s\n", e.result.Provider, e.result.ModelType)
			default:
				s.printf("%d. Comparison: %s\n", i+1, preview(e.query))
				s.printf("   Results: %d, Warnings: %d\n", len(e.cmp.Results), len(e.cmp.Warnings))
			}
		}
		s.println("")

		if s.confirm("View details for a specific entry?", false) {
			v, _ := s.ask("Enter entry number", "")
			n, err := strconv.Atoi(v)
			switch {
			case err != nil:
				s.println("Please enter a valid number")
			case n < 1 || n > len(s.history):
				s.println("Invalid entry number")
			default:
				e := s.history[n-1]
				s.printf("Query: %s\n\n", e.query)
				if e.result != nil {
					return s.showResult(e.result)
				}
				return report.Write(s.out, s.format, s.opts, e.cmp)
			}
		}
	}

	if s.store == nil || !s.confirm("Show saved history from earlier sessions?", false) {
		return nil
	}
	recs, err := s.store.List(ctx, 10)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		s.println("No saved history")
		return nil
	}
	for _, r := range recs {
		s.printf("%s  %-8s %s  %s\n", shortID(r.ID), r.Kind, r.CreatedAt.Format("2006-01-02 15:04"), preview(r.Query))
	}
	return nil
}

func (s *Session) settings() {
	f := s.svc.Factory()
	opts := f.Options()
	s.println("Current Settings:")
	s.printf("  Max Tokens: %d\n", opts.MaxTokens)
	s.printf("  Temperature: %g\n", opts.Temperature)
	s.printf("  Output Format: %s\n", s.format)
	s.println("")

	if !s.confirm("Modify settings?", false) {
		return
	}
	mtv, _ := s.ask("Max tokens", strconv.Itoa(opts.MaxTokens))
	tv, _ := s.ask("Temperature (0.0-2.0)", strconv.FormatFloat(opts.Temperature, 'g', -1, 64))
	fv, _ := s.ask("Output format (console/json/markdown)", string(s.format))

	maxTokens, err1 := strconv.Atoi(mtv)
	temp, err2 := strconv.ParseFloat(tv, 64)
	format, err3 := report.ParseFormat(fv)
	if err1 != nil || err2 != nil || err3 != nil || maxTokens <= 0 || temp < 0 || temp > 2 {
		s.println("Invalid values entered")
		return
	}
	f.SetOptions(compare.RequestOptions{MaxTokens: maxTokens, Temperature: temp})
	s.format = format
	s.println("Settings updated!")
}

// ask prompts with an optional default. ok is false once input is
// exhausted.
func (s *Session) ask(label, def string) (string, bool) {
	if def != "" {
		s.printf("%s [%s]: ", label, def)
	} else {
		s.printf("%s: ", label)
	}
	if !s.in.Scan() {
		s.println("")
		return def, false
	}
	if v := strings.TrimSpace(s.in.Text()); v != "" {
		return v, true
	}
	return def, true
}

func (s *Session) confirm(label string, def bool) bool {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	s.printf("%s [%s]: ", label, hint)
	if !s.in.Scan() {
		s.println("")
		return def
	}
	switch strings.ToLower(strings.TrimSpace(s.in.Text())) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	}
	return def
}

func (s *Session) println(a string) {
	fmt.Fprintln(s.out, a)
}

func (s *Session) printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}

func preview(q string) string {
	r := []rune(q)
	if len(r) > 50 {
		return string(r[:50]) + "..."
	}
	return q
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
