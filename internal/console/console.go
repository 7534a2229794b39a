// Package console implements the interactive terminal front-end: a
// read-eval-print loop over a single in-process conversation buffer.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"companion-bot/internal/models"
	"companion-bot/internal/session"
)

// identity keys the single console conversation in the session store.
const identity = "terminal"

type relay interface {
	Chat(ctx context.Context, messages []models.Message, model string) (models.ChatResponse, error)
	Models(ctx context.Context) ([]models.ModelInfo, error)
}

// Console runs the command loop. Input and output are injected so tests can
// drive the loop with buffers.
type Console struct {
	relay    relay
	sessions *session.Store
	model    string
	in       io.Reader
	out      io.Writer
}

func New(rc relay, sessions *session.Store, model string, in io.Reader, out io.Writer) *Console {
	return &Console{
		relay:    rc,
		sessions: sessions,
		model:    model,
		in:       in,
		out:      out,
	}
}

// Run reads commands until /exit or end of input.
func (c *Console) Run(ctx context.Context) error {
	c.printWelcome()

	scanner := bufio.NewScanner(c.in)
	c.prompt()
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			c.prompt()
			continue
		}
		if c.dispatch(ctx, line) {
			return nil
		}
		c.prompt()
	}
	return scanner.Err()
}

// dispatch handles one input line and reports whether the loop should stop.
func (c *Console) dispatch(ctx context.Context, line string) bool {
	lower := strings.ToLower(line)
	switch {
	case lower == "/exit":
		fmt.Fprintln(c.out, "\nGoodbye!")
		return true
	case lower == "/help":
		c.printHelp()
	case lower == "/clear":
		c.sessions.Clear(identity)
		fmt.Fprintln(c.out, "\nConversation history cleared.")
	case lower == "/models":
		c.listModels(ctx)
	case lower == "/model" || strings.HasPrefix(lower, "/model "):
		arg := strings.TrimSpace(line[len("/model"):])
		if arg == "" {
			fmt.Fprintln(c.out, "\nPlease provide a model ID. For example: /model openai/gpt-3.5-turbo")
		} else {
			c.model = arg
			fmt.Fprintf(c.out, "\nModel changed to: %s\n", c.model)
		}
	default:
		c.chat(ctx, line)
	}
	return false
}

func (c *Console) chat(ctx context.Context, text string) {
	c.sessions.Append(identity, models.Message{Role: models.RoleUser, Content: text})

	fmt.Fprintln(c.out, "\nWaiting for a reply...")

	history := c.sessions.GetOrCreate(identity)
	resp, err := c.relay.Chat(ctx, history, c.model)
	if err != nil {
		// History keeps the user's message so the turn can be retried.
		fmt.Fprintf(c.out, "\nCould not reach the relay: %v\n", err)
		return
	}

	c.sessions.Append(identity, models.Message{Role: models.RoleAssistant, Content: resp.Response})
	fmt.Fprintf(c.out, "\n[%s]:\n%s\n", resp.Model, resp.Response)
}

func (c *Console) listModels(ctx context.Context) {
	fmt.Fprintln(c.out, "\nFetching available models...")

	catalog, err := c.relay.Models(ctx)
	if err != nil {
		fmt.Fprintf(c.out, "Could not fetch the model list: %v\n", err)
		return
	}
	if len(catalog) == 0 {
		fmt.Fprintln(c.out, "Could not fetch the model list.")
		return
	}

	fmt.Fprintln(c.out, "\nAvailable models:")
	for i, m := range catalog {
		name := m.Name
		if name == "" {
			name = m.ID
		}
		contextLength := "N/A"
		if m.ContextLength > 0 {
			contextLength = fmt.Sprintf("%d", m.ContextLength)
		}
		fmt.Fprintf(c.out, "%d. %s (ID: %s, Max context: %s)\n", i+1, name, m.ID, contextLength)
	}
}

func (c *Console) prompt() {
	fmt.Fprint(c.out, "\n> ")
}

func (c *Console) printWelcome() {
	line := strings.Repeat("=", 50)
	fmt.Fprintln(c.out, line)
	fmt.Fprintln(c.out, "Personal companion bot (terminal client)")
	fmt.Fprintln(c.out, line)
	fmt.Fprintln(c.out, "Commands:")
	fmt.Fprintln(c.out, "/help - show help")
	fmt.Fprintln(c.out, "/clear - clear the conversation history")
	fmt.Fprintln(c.out, "/models - list available models")
	fmt.Fprintln(c.out, "/model <id> - choose a model")
	fmt.Fprintln(c.out, "/exit - quit")
	fmt.Fprintln(c.out, strings.Repeat("-", 50))
	fmt.Fprintf(c.out, "Using model: %s\n", c.model)
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, "\nAvailable commands:")
	fmt.Fprintln(c.out, "/help - show this help")
	fmt.Fprintln(c.out, "/clear - clear the conversation history")
	fmt.Fprintln(c.out, "/models - list available models")
	fmt.Fprintln(c.out, "/model <id> - choose a model (for example: /model openai/gpt-3.5-turbo)")
	fmt.Fprintln(c.out, "/exit - quit")
}
