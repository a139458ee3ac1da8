package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/user/llmbench/pkg/llm"
	"github.com/user/llmbench/pkg/logger"
)

const defaultMaxRounds = 5

// ErrMaxRounds is returned when the model keeps calling tools past the
// round limit.
var ErrMaxRounds = errors.New("max tool rounds exceeded")

// CallRecord is one tool invocation made during a run.
type CallRecord struct {
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments"`
	Result    string          `json:"result"`
	Error     string          `json:"error,omitempty"`
}

// Outcome is the final answer of a run and how it was reached.
type Outcome struct {
	Answer string       `json:"answer"`
	Calls  []CallRecord `json:"calls"`
	Rounds int          `json:"rounds"`
	Usage  llm.Usage    `json:"usage"`
}

// Runner drives the model through tool calls until it answers.
type Runner struct {
	provider  llm.Provider
	registry  *Registry
	maxRounds int
	log       *logger.Logger
}

// NewRunner creates a runner. maxRounds <= 0 means 5.
func NewRunner(provider llm.Provider, registry *Registry, maxRounds int, log *logger.Logger) *Runner {
	if maxRounds <= 0 {
		maxRounds = defaultMaxRounds
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Runner{
		provider:  provider,
		registry:  registry,
		maxRounds: maxRounds,
		log:       log.WithComponent("tools"),
	}
}

func (r *Runner) systemPrompt() string {
	return fmt.Sprintf(
		"You are a helpful assistant with access to these tools: %s. "+
			"Use a tool whenever a calculation or text manipulation is needed, then answer the user directly.",
		strings.Join(r.registry.Names(), ", "),
	)
}

// Run answers query, executing every tool call the model requests.
func (r *Runner) Run(ctx context.Context, query string) (*Outcome, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: r.systemPrompt()},
		{Role: llm.RoleUser, Content: query},
	}
	tools := r.registry.AsLLMTools()
	out := &Outcome{}

	for round := 0; round < r.maxRounds; round++ {
		resp, err := r.provider.Complete(ctx, messages, tools)
		if err != nil {
			return out, fmt.Errorf("LLM call: %w", err)
		}
		out.Rounds++
		out.Usage = out.Usage.Add(resp.Usage)

		if len(resp.ToolCalls) == 0 {
			out.Answer = resp.Content
			return out, nil
		}

		messages = append(messages, llm.Message{Role: llm.RoleAssistant, Content: resp.Content, Tools: resp.ToolCalls})
		for _, tc := range resp.ToolCalls {
			rec := r.execute(ctx, tc)
			out.Calls = append(out.Calls, rec)
			messages = append(messages, llm.Message{
				Role:    llm.RoleTool,
				Content: rec.Result,
				Tools:   []llm.ToolCall{{ID: tc.ID, Type: "function", Function: llm.FunctionCall{Name: tc.Function.Name}}},
			})
		}
	}

	return out, fmt.Errorf("%w (%d)", ErrMaxRounds, r.maxRounds)
}

func (r *Runner) execute(ctx context.Context, tc llm.ToolCall) CallRecord {
	rec := CallRecord{Tool: tc.Function.Name, Arguments: tc.Function.Arguments}
	if _, ok := r.registry.Get(tc.Function.Name); !ok {
		rec.Error = fmt.Sprintf("unknown tool %q", tc.Function.Name)
		rec.Result = "error: " + rec.Error
		r.log.Warnw("model requested unknown tool", "tool", tc.Function.Name)
		return rec
	}
	result, err := r.registry.Call(ctx, tc.Function.Name, tc.Function.Arguments)
	if err != nil {
		rec.Error = err.Error()
		rec.Result = "error: " + err.Error()
		r.log.Debugw("tool failed", "tool", tc.Function.Name, "error", err)
		return rec
	}
	rec.Result = result
	r.log.Debugw("tool executed", "tool", tc.Function.Name)
	return rec
}
