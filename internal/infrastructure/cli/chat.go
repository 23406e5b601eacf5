package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/vino-go/internal/application/query"
	"github.com/doeshing/vino-go/internal/domain"
	"github.com/doeshing/vino-go/internal/infrastructure/cli/commands"
)

const chatHelp = `Commands:
  /model [name]    show or switch the model
  /rag on|off      ground answers in the winery corpus
  /chunks <n>      context records to retrieve (4-16, even)
  /history         show the conversation, newest first
  /reset           clear the conversation
  /quit            leave the chat`

func newChatCommand(deps *commands.Deps) *cobra.Command {
	var flags selectionFlags

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			container, err := deps.Container(ctx)
			if err != nil {
				return err
			}

			sel := flags.apply(cmd, container.Config.DefaultSelection())
			if err := container.QueryService.ValidateSelection(ctx, sel); err != nil {
				return err
			}
			session := query.NewSession("local", container.QueryService, sel)
			session.SetTimeout(flags.timeout)

			chat := &chatLoop{
				session: session,
				models:  container.Config.ModelNames(),
				out:     cmd.OutOrStdout(),
				status:  cmd.ErrOrStderr(),
			}
			return chat.run(ctx, cmd.InOrStdin())
		},
	}

	flags.register(cmd)

	return cmd
}

// chatLoop reads one question per line and keeps a single session.
type chatLoop struct {
	session *query.Session
	models  []string
	out     io.Writer
	// status receives the spinner.
	status io.Writer
}

var errQuit = errors.New("quit")

func (c *chatLoop) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintf(c.out, "%s. Type a question, or /help for commands.\n", query.AssistantName)
	c.printSelection()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for {
		fmt.Fprint(c.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(c.out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			err := c.command(ctx, line)
			if errors.Is(err, errQuit) {
				return nil
			}
			if err != nil {
				fmt.Fprintf(c.out, "Error: %v\n", err)
			}
			continue
		}

		c.ask(ctx, line)
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (c *chatLoop) ask(ctx context.Context, question string) {
	spinner := NewSpinner(c.status, "Thinking...")
	spinner.Start()
	answer, err := c.session.Ask(ctx, question)
	spinner.Stop()

	if err != nil {
		RenderWarning(c.out, err)
		return
	}
	if answer.Response == "" {
		fmt.Fprintln(c.out, "The model returned an empty response.")
		return
	}
	RenderAnswer(c.out, answer)
	fmt.Fprintln(c.out)
}

func (c *chatLoop) command(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]

	switch name {
	case "/quit", "/exit":
		return errQuit
	case "/help":
		fmt.Fprintln(c.out, chatHelp)
	case "/history":
		RenderConversation(c.out, c.session.Conversation())
	case "/reset":
		c.session.Reset()
		fmt.Fprintln(c.out, "Conversation cleared.")
	case "/model":
		if len(args) == 0 {
			fmt.Fprintf(c.out, "Models: %s\n", strings.Join(c.models, ", "))
			c.printSelection()
			return nil
		}
		if err := c.session.SetModel(ctx, args[0]); err != nil {
			return err
		}
		c.printSelection()
	case "/rag":
		on, err := parseToggle(args)
		if err != nil {
			return err
		}
		if err := c.session.SetRAG(ctx, on); err != nil {
			return err
		}
		c.printSelection()
	case "/chunks":
		if len(args) != 1 {
			return fmt.Errorf("usage: /chunks <n>, one of %v", domain.ChunkLimits)
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("%w: %q", domain.ErrInvalidChunkLimit, args[0])
		}
		if err := c.session.SetChunkLimit(ctx, n); err != nil {
			return err
		}
		c.printSelection()
	default:
		return fmt.Errorf("unknown command %s (try /help)", name)
	}
	return nil
}

func (c *chatLoop) printSelection() {
	sel := c.session.Selection()
	rag := "off"
	if sel.UseRAG {
		rag = "on"
	}
	fmt.Fprintf(c.out, "Model: %s · RAG: %s · Chunks: %d\n", sel.ModelName, rag, sel.ChunkLimit)
}

func parseToggle(args []string) (bool, error) {
	if len(args) == 1 {
		switch strings.ToLower(args[0]) {
		case "on", "true", "yes":
			return true, nil
		case "off", "false", "no":
			return false, nil
		}
	}
	return false, errors.New("usage: /rag on|off")
}
