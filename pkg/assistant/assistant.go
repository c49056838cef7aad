// Package assistant drives one conversation turn end to end: validate input,
// call the completion endpoint, branch on tool calls versus a direct answer,
// and hand the final text to the caller while keeping the history and the
// transcript consistent through every failure mode.
package assistant

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/openai/openai-go/v3"
	"go.uber.org/zap"

	"github.com/aiae/onboarding-assistant/pkg/conversation"
	"github.com/aiae/onboarding-assistant/pkg/knowledge"
	"github.com/aiae/onboarding-assistant/pkg/prompt"
	"github.com/aiae/onboarding-assistant/pkg/tooling"
	"github.com/aiae/onboarding-assistant/pkg/transcript"
)

// Canned user-facing responses. Internal detail goes to the operational log;
// the user always gets an actionable, non-technical message.
const (
	msgInvalidInput = "Please provide a valid message (not empty and not too long)."
	msgNoConnection = "I'm having trouble connecting to the AI service. Please try again in a moment."
	msgNoContent    = "I didn't receive a proper response. Please try rephrasing your question."
	msgUnexpected   = "I encountered an unexpected error. Please try again with a different question."
)

// Completer is the completion contract the orchestrator depends on. Tests
// substitute a fake; production wiring injects *completion.Client.
type Completer interface {
	Complete(
		ctx context.Context,
		history []openai.ChatCompletionMessageParamUnion,
		tools []openai.ChatCompletionToolUnionParam,
	) (*openai.ChatCompletionMessage, error)
}

// Assistant owns one conversation. Turns are strictly sequential; callers
// must not run two SendMessage calls against the same Assistant
// concurrently.
type Assistant struct {
	client     Completer
	dispatcher *tooling.Dispatcher
	history    *conversation.History
	transcript *transcript.Logger
	maxLength  int
	log        *zap.Logger
}

// New builds an assistant over the given collaborators. maxLength is the
// user input ceiling in characters.
func New(
	client Completer,
	store *knowledge.Store,
	tl *transcript.Logger,
	maxLength int,
	log *zap.Logger,
) *Assistant {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assistant{
		client:     client,
		dispatcher: tooling.NewDispatcher(store, log),
		history:    conversation.New(prompt.System, prompt.FewShotExamples()),
		transcript: tl,
		maxLength:  maxLength,
		log:        log,
	}
}

// SendMessage runs one full turn and returns the assistant's reply. Both the
// raw user text and the final reply are written to the transcript regardless
// of what happens in between. The returned string is always non-empty.
func (a *Assistant) SendMessage(ctx context.Context, text string) string {
	a.transcript.Append("user", text)
	reply := a.turn(ctx, text)
	a.transcript.Append("assistant", reply)
	return reply
}

func (a *Assistant) turn(ctx context.Context, text string) (reply string) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("turn panicked", zap.Any("panic", r))
			a.history.PopTrailingUser()
			reply = msgUnexpected
		}
	}()

	trimmed := strings.TrimSpace(text)
	if trimmed == "" || utf8.RuneCountInString(trimmed) > a.maxLength {
		a.log.Warn("invalid user input rejected", zap.Int("length", utf8.RuneCountInString(trimmed)))
		return msgInvalidInput
	}

	a.history.Append(openai.UserMessage(trimmed))

	msg, err := a.client.Complete(ctx, a.history.Messages(), tooling.Schemas())
	if err != nil || msg == nil {
		a.log.Error("no response from completion endpoint", zap.Error(err))
		// Only turns that produced a durable response stay in history.
		a.history.PopTrailingUser()
		return msgNoConnection
	}

	if len(msg.ToolCalls) > 0 {
		a.log.Info("processing tool calls", zap.Int("count", len(msg.ToolCalls)))
		raw := a.dispatcher.Dispatch(msg, a.history)
		return a.finalResponse(ctx, raw)
	}

	if msg.Content == "" {
		a.log.Warn("completion response had no content")
		a.history.PopTrailingUser()
		return msgNoContent
	}

	a.history.Append(openai.AssistantMessage(msg.Content))
	return msg.Content
}

// finalResponse asks for the natural-language synthesis over the extended
// history, with no tools attached this round. If the follow-up fails or
// comes back empty, the raw tool output is surfaced verbatim rather than
// losing the lookup work.
func (a *Assistant) finalResponse(ctx context.Context, rawToolOutput string) string {
	msg, err := a.client.Complete(ctx, a.history.Messages(), nil)
	if err != nil || msg == nil || msg.Content == "" {
		a.log.Warn("follow-up completion failed, surfacing raw tool output", zap.Error(err))
		a.history.Append(openai.AssistantMessage(rawToolOutput))
		return rawToolOutput
	}

	a.history.Append(openai.AssistantMessage(msg.Content))
	return msg.Content
}

// Reset replaces the conversation with its initial state and truncates the
// transcript.
func (a *Assistant) Reset() {
	a.history.Reset()
	a.transcript.Clear()
	a.log.Info("conversation reset")
}

// SetAdditionalContext seeds free-form context (such as a self-declared name
// and department) into the history as a tagged user message, without
// triggering a completion call. Meant for callers to use before the first
// real turn.
func (a *Assistant) SetAdditionalContext(text string) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		a.log.Warn("empty additional context ignored")
		return
	}
	a.history.Append(openai.UserMessage("Additional context about me: " + trimmed))
	a.log.Info("additional context set", zap.Int("length", len(trimmed)))
}

// Summary returns per-role message counts for the current conversation.
func (a *Assistant) Summary() conversation.Summary {
	return a.history.Summarize()
}

// HistoryLen reports the current conversation length in messages.
func (a *Assistant) HistoryLen() int {
	return a.history.Len()
}

// History returns the current conversation messages. Read-only for callers.
func (a *Assistant) History() []openai.ChatCompletionMessageParamUnion {
	return a.history.Messages()
}
