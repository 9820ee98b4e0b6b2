// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/peterh/liner"

	"github.com/jeranaias/paychat/internal/config"
	"github.com/jeranaias/paychat/internal/model"
	"github.com/jeranaias/paychat/internal/payment"
	"github.com/jeranaias/paychat/internal/session"
	"github.com/jeranaias/paychat/internal/ui/components"
	"github.com/jeranaias/paychat/internal/ui/styles"
	"github.com/jeranaias/paychat/internal/util"
)

// =============================================================================
// INPUT
// =============================================================================

// Prompter reads lines from the user. Prompt returns io.EOF at end of
// input and liner.ErrPromptAborted on Ctrl+C.
type Prompter interface {
	Prompt(prompt string) (string, error)
	// Field reads a form value that must not enter the history.
	Field(prompt string) (string, error)
	// Secret reads a value without echoing it when the terminal allows.
	Secret(prompt string) (string, error)
}

// ChatCLI provides input history and line editing for the REPL.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a line editor with persistent history.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	c := &ChatCLI{line: line, historyFile: filepath.Join(dir, "chat_history")}

	if f, err := os.Open(c.historyFile); err == nil {
		_, _ = c.line.ReadHistory(f)
		f.Close()
	}
	return c
}

// Prompt reads one line and records it in the history.
func (c *ChatCLI) Prompt(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// Field reads one line without recording it.
func (c *ChatCLI) Field(prompt string) (string, error) {
	return c.line.Prompt(prompt)
}

// Secret reads a line without echo. Card data never enters the history.
func (c *ChatCLI) Secret(prompt string) (string, error) {
	v, err := c.line.PasswordPrompt(prompt)
	if errors.Is(err, liner.ErrNotTerminalOutput) {
		return c.line.Prompt(prompt)
	}
	return v, err
}

// Close saves the history and restores the terminal.
func (c *ChatCLI) Close() {
	var buf bytes.Buffer
	if _, err := c.line.WriteHistory(&buf); err == nil {
		if err := util.AtomicWriteFile(c.historyFile, buf.Bytes(), 0600, 0700); err != nil {
			slog.Debug("failed to save chat history", "error", err)
		}
	}
	c.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

const chatHelp = `Comandos:
  /pix, /boleto, /cartao   Instruções do método de pagamento
  /plano [id]              Mostra ou troca o plano selecionado
  /status                  Verifica o status do último pagamento
  /copiar                  Copia o código PIX ou do boleto
  /tentar                  Tenta novamente após uma recusa
  /fechar                  Fecha o painel de pagamento
  /limpar                  Reinicia a conversa
  /sair                    Sai do chat`

// NoteNothingToCopy is printed when /copiar has no code to copy.
const NoteNothingToCopy = "Nenhum código para copiar."

// REPL is the line-mode chat. It prints what the session renders: new
// transcript turns, toasts and the payment panel as text.
type REPL struct {
	ctx  context.Context
	sess *session.Session
	in   Prompter
	out  io.Writer
	md   components.MarkdownRenderer

	// ReplyTimeout bounds the wait for an assistant reply.
	ReplyTimeout time.Duration

	printed   int
	lastToast int
	lastPanel string
}

// NewREPL creates a REPL over sess. md may be nil for plain output.
func NewREPL(ctx context.Context, sess *session.Session, in Prompter, out io.Writer, md components.MarkdownRenderer) *REPL {
	return &REPL{
		ctx:          ctx,
		sess:         sess,
		in:           in,
		out:          out,
		md:           md,
		ReplyTimeout: 30 * time.Second,
	}
}

// Run reads and executes lines until /sair, end of input or Ctrl+C.
func (r *REPL) Run() error {
	r.Flush()
	for {
		if err := r.ctx.Err(); err != nil {
			return nil
		}
		if r.sess.Payment.State() == payment.StateCollectingCredentials {
			if err := r.collectCard(); err != nil {
				return ignoreEnd(err)
			}
			continue
		}

		line, err := r.in.Prompt(PromptStyle.Render("você") + " > ")
		if err != nil {
			return ignoreEnd(err)
		}
		quit := r.Execute(line)
		r.Flush()
		if quit {
			return nil
		}
	}
}

func ignoreEnd(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
		return nil
	}
	return err
}

// Execute runs one line of input and reports whether the REPL should end.
func (r *REPL) Execute(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		if r.sess.Dialogue.Send(line) {
			r.waitForReply()
		}
		return false
	}

	fields := strings.Fields(line)
	cmd, rest := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case "/sair", "/quit", "/q":
		return true
	case "/ajuda", "/help", "/h":
		fmt.Fprintln(r.out, DimStyle.Render(chatHelp))
	case "/pix":
		r.selectMethod(payment.MethodInstantTransfer)
	case "/boleto":
		r.selectMethod(payment.MethodBankSlip)
	case "/cartao", "/cartão":
		r.selectMethod(payment.MethodCard)
	case "/plano":
		r.plan(rest)
	case "/status":
		// The controller reports the outcome itself.
		_ = r.sess.Payment.CheckStatus(r.ctx)
	case "/copiar":
		code := r.sess.Payment.View().Code
		if code == "" {
			fmt.Fprintln(r.out, WarningStyle.Render(NoteNothingToCopy))
			break
		}
		_ = r.sess.Toasts.CopyToClipboard(code)
	case "/tentar":
		if err := r.sess.Payment.Retry(); err != nil {
			fmt.Fprintln(r.out, DimStyle.Render("Não há pagamento para tentar novamente."))
		}
	case "/fechar":
		r.sess.Payment.Dismiss()
		r.lastPanel = ""
	case "/limpar":
		r.sess.Reset()
		r.printed = 0
		r.lastPanel = ""
		fmt.Fprintln(r.out, RenderSeparator(GetTerminalWidth()/2))
	default:
		fmt.Fprintln(r.out, WarningStyle.Render(fmt.Sprintf("Comando desconhecido: %s. Digite /ajuda.", cmd)))
	}
	return false
}

func (r *REPL) selectMethod(m payment.Method) {
	if err := r.sess.Payment.SelectMethod(m); err != nil {
		fmt.Fprintln(r.out, ErrorStyle.Render(err.Error()))
	}
}

func (r *REPL) plan(args []string) {
	if len(args) == 0 {
		id := r.sess.Prefs.SelectedPlan()
		if p, ok := model.GetPlan(id); ok {
			fmt.Fprintln(r.out, RenderField("Plano", p.Name+" ("+p.Price()+")"))
		} else {
			fmt.Fprintln(r.out, DimStyle.Render("Nenhum plano selecionado."))
		}
		return
	}
	p, ok := model.GetPlan(strings.ToLower(args[0]))
	if !ok {
		fmt.Fprintln(r.out, ErrorStyle.Render("Plano não encontrado: "+args[0]))
		return
	}
	if err := r.sess.Prefs.SetSelectedPlan(p.ID); err != nil {
		fmt.Fprintln(r.out, ErrorStyle.Render(err.Error()))
		return
	}
	fmt.Fprintln(r.out, SuccessStyle.Render("Plano selecionado: "+p.Name))
}

// waitForReply blocks until the assistant has answered everything queued.
func (r *REPL) waitForReply() {
	deadline := time.NewTimer(r.ReplyTimeout)
	defer deadline.Stop()
	tick := time.NewTicker(25 * time.Millisecond)
	defer tick.Stop()

	for r.sess.Dialogue.Pending() > 0 || r.sess.Transcript.Composing() {
		select {
		case <-r.ctx.Done():
			return
		case <-deadline.C:
			return
		case <-tick.C:
		}
	}
}

// collectCard prompts for every card field, then submits. Aborting a
// prompt closes the form.
func (r *REPL) collectCard() error {
	r.Flush()
	for _, f := range payment.FormFields {
		prompt := fmt.Sprintf("%s (%s): ", f.Label(), f.Placeholder())

		var (
			raw string
			err error
		)
		if f == payment.FieldCVV {
			raw, err = r.in.Secret(prompt)
		} else {
			raw, err = r.in.Field(prompt)
		}
		if err != nil {
			r.sess.Payment.Dismiss()
			r.lastPanel = ""
			fmt.Fprintln(r.out, DimStyle.Render("Pagamento cancelado."))
			if errors.Is(err, liner.ErrPromptAborted) {
				return nil
			}
			return err
		}
		if _, err := r.sess.Payment.SetField(f, raw); err != nil {
			// The form was closed underneath us.
			return nil
		}
	}

	if err := r.sess.Payment.SubmitForm(r.ctx); err != nil {
		slog.Debug("card submission finished with error", "error", err)
	}
	r.Flush()
	return nil
}

// =============================================================================
// OUTPUT
// =============================================================================

// Flush prints everything that changed since the last call.
func (r *REPL) Flush() {
	snap := r.sess.Transcript.Snapshot()
	if len(snap.Messages) < r.printed {
		r.printed = 0
	}
	for _, m := range snap.Messages[r.printed:] {
		if m.IsAssistant() {
			fmt.Fprintln(r.out, r.renderAssistant(m))
		}
	}
	r.printed = len(snap.Messages)

	for _, t := range r.sess.Toasts.Active() {
		if t.ID > r.lastToast {
			r.lastToast = t.ID
			fmt.Fprintln(r.out, DimStyle.Render(components.ToastLine(t)))
		}
	}

	panel := r.sess.Payment.View().Text()
	if panel != r.lastPanel {
		r.lastPanel = panel
		if panel != "" {
			fmt.Fprintln(r.out, RenderSeparator(40))
			fmt.Fprintln(r.out, panel)
			fmt.Fprintln(r.out, RenderSeparator(40))
		}
	}
}

func (r *REPL) renderAssistant(m model.Message) string {
	label := AssistantStyle.Render("Assistente")
	body := components.AssistantBody(m, r.md)
	if r.md != nil || strings.Contains(body, "\n") {
		return label + "\n" + body
	}
	return label + ": " + body
}

// =============================================================================
// COMMAND
// =============================================================================

// HandleChat runs the line-mode chat on the terminal.
func HandleChat(ctx context.Context, cfg *config.Config, logger *slog.Logger, args Args) error {
	sess, err := OpenSession(cfg, logger, args)
	if err != nil {
		return err
	}
	defer sess.Close()
	sess.Start(ctx)
	applyColorProfile()

	var md components.MarkdownRenderer
	if cfg.UI.Markdown && ColorsEnabled() {
		stored, ok := sess.Prefs.DarkTheme()
		md = components.NewMarkdown(GetTerminalWidth()-4, styles.ResolveDark(cfg.UI.Theme, stored, ok))
	}

	in := NewChatCLI()
	defer in.Close()

	fmt.Println(TitleStyle.Render("Assistente Virtual de Pagamentos"))
	fmt.Println(DimStyle.Render("Digite /ajuda para ver os comandos. Ctrl+D sai."))

	repl := NewREPL(ctx, sess, in, os.Stdout, md)
	repl.ReplyTimeout = cfg.Backend.DialogueTimeout() + time.Duration(cfg.Dialogue.ReplyDelayMaxMs+cfg.Dialogue.FailureDelayMs)*time.Millisecond
	err = repl.Run()

	fmt.Println(DimStyle.Render("Sessão encerrada após " + sess.Duration().Round(time.Second).String()))
	return err
}
