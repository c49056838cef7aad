package assistant

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/aiae/onboarding-assistant/pkg/knowledge"
	"github.com/aiae/onboarding-assistant/pkg/tooling"
	"github.com/aiae/onboarding-assistant/pkg/transcript"
)

const memberFixture = `[
  {
    "project_code": "AIAE001",
    "project_name": "AI Application Engineering",
    "department": "Engineering",
    "status": "Active",
    "description": "AI application engineering project",
    "members": [
      {
        "employee_id": "E001",
        "name": "Nam Vu Son",
        "role": "Software Engineer",
        "email": "NamVS@fpt.com",
        "department": "Engineering",
        "team": "Core",
        "manager": "Parker Brown",
        "hire_date": "2023-04-01",
        "status": "Active"
      }
    ]
  }
]`

type completeCall struct {
	historyLen int
	withTools  bool
}

type scripted struct {
	msg *openai.ChatCompletionMessage
	err error
}

// fakeCompleter satisfies the Completer contract with scripted responses.
type fakeCompleter struct {
	responses []scripted
	calls     []completeCall
}

func (f *fakeCompleter) Complete(
	_ context.Context,
	history []openai.ChatCompletionMessageParamUnion,
	tools []openai.ChatCompletionToolUnionParam,
) (*openai.ChatCompletionMessage, error) {
	f.calls = append(f.calls, completeCall{historyLen: len(history), withTools: len(tools) > 0})
	if len(f.responses) == 0 {
		return nil, errors.New("unexpected completion call")
	}
	next := f.responses[0]
	f.responses = f.responses[1:]
	return next.msg, next.err
}

func directMessage(content string) *openai.ChatCompletionMessage {
	return &openai.ChatCompletionMessage{Content: content}
}

func toolCallMessage(calls ...openai.ChatCompletionMessageToolCallUnion) *openai.ChatCompletionMessage {
	return &openai.ChatCompletionMessage{ToolCalls: calls}
}

func functionCall(id, name, arguments string) openai.ChatCompletionMessageToolCallUnion {
	return openai.ChatCompletionMessageToolCallUnion{
		ID:   id,
		Type: "function",
		Function: openai.ChatCompletionMessageFunctionToolCallFunction{
			Name:      name,
			Arguments: arguments,
		},
	}
}

func newTestAssistant(t *testing.T, fake *fakeCompleter) (*Assistant, string) {
	t.Helper()
	dir := t.TempDir()
	memberPath := filepath.Join(dir, "member_info.json")
	require.NoError(t, os.WriteFile(memberPath, []byte(memberFixture), 0o644))

	store := knowledge.NewStore(
		memberPath,
		filepath.Join(dir, "processes.json"),
		filepath.Join(dir, "techstack.json"),
		zap.NewNop(),
	)
	transcriptPath := filepath.Join(dir, "chat_history.txt")
	tl := transcript.New(transcriptPath, zap.NewNop())

	return New(fake, store, tl, 5000, zap.NewNop()), transcriptPath
}

func lastRole(t *testing.T, a *Assistant) string {
	t.Helper()
	msgs := a.History()
	require.NotEmpty(t, msgs)
	switch msg := msgs[len(msgs)-1]; {
	case msg.OfSystem != nil:
		return "system"
	case msg.OfUser != nil:
		return "user"
	case msg.OfAssistant != nil:
		return "assistant"
	case msg.OfTool != nil:
		return "tool"
	default:
		t.Fatal("message has no populated role branch")
		return ""
	}
}

func TestSendMessageDirectAnswer(t *testing.T) {
	fake := &fakeCompleter{responses: []scripted{{msg: directMessage("Welcome aboard!")}}}
	a, transcriptPath := newTestAssistant(t, fake)
	before := a.HistoryLen()

	reply := a.SendMessage(context.Background(), "hello")

	assert.Equal(t, "Welcome aboard!", reply)
	assert.Equal(t, before+2, a.HistoryLen())
	assert.Equal(t, "assistant", lastRole(t, a))

	require.Len(t, fake.calls, 1)
	assert.True(t, fake.calls[0].withTools)

	data, err := os.ReadFile(transcriptPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "user: hello")
	assert.Contains(t, string(data), "assistant: Welcome aboard!")
}

func TestSendMessageRollbackOnNoResponse(t *testing.T) {
	fake := &fakeCompleter{responses: []scripted{{err: errors.New("connection refused")}}}
	a, _ := newTestAssistant(t, fake)
	before := a.HistoryLen()

	reply := a.SendMessage(context.Background(), "hello")

	assert.Equal(t, msgNoConnection, reply)
	// The user message must be rolled back so the next turn starts clean.
	assert.Equal(t, before, a.HistoryLen())
}

func TestSendMessageToolCallFlow(t *testing.T) {
	fake := &fakeCompleter{responses: []scripted{
		{msg: toolCallMessage(
			functionCall("call_1", tooling.NameUserAssignment, `{"userName": "Nam Vu Son"}`),
		)},
		{msg: directMessage("You are on project AIAE001.")},
	}}
	a, _ := newTestAssistant(t, fake)

	reply := a.SendMessage(context.Background(), "what project am I on? My name is Nam Vu Son")

	assert.Equal(t, "You are on project AIAE001.", reply)
	assert.Equal(t, "assistant", lastRole(t, a))

	require.Len(t, fake.calls, 2)
	assert.True(t, fake.calls[0].withTools)
	// The follow-up synthesis round carries no tools.
	assert.False(t, fake.calls[1].withTools)
	assert.Greater(t, fake.calls[1].historyLen, fake.calls[0].historyLen)
}

// Whenever an assistant message carries N tool calls, the next N messages
// must be tool messages whose IDs match in the same order.
func TestToolCallOrderingInvariant(t *testing.T) {
	fake := &fakeCompleter{responses: []scripted{
		{msg: toolCallMessage(
			functionCall("call_1", tooling.NameMembers, "{}"),
			functionCall("call_2", tooling.NameTechStacks, "{}"),
		)},
		{msg: directMessage("done")},
	}}
	a, _ := newTestAssistant(t, fake)

	a.SendMessage(context.Background(), "who is on my team and what tools do we use?")

	msgs := a.History()
	for i, msg := range msgs {
		if msg.OfAssistant == nil || len(msg.OfAssistant.ToolCalls) == 0 {
			continue
		}
		calls := msg.OfAssistant.ToolCalls
		require.Greater(t, len(msgs), i+len(calls))
		for j, call := range calls {
			require.NotNil(t, call.OfFunction)
			toolMsg := msgs[i+1+j]
			require.NotNil(t, toolMsg.OfTool)
			assert.Equal(t, call.OfFunction.ID, toolMsg.OfTool.ToolCallID)
		}
	}
}

func TestSendMessageFollowUpFallback(t *testing.T) {
	fake := &fakeCompleter{responses: []scripted{
		{msg: toolCallMessage(
			functionCall("call_1", tooling.NameUserAssignment, `{"userName": "Nam Vu Son"}`),
		)},
		{err: errors.New("timeout")},
	}}
	a, _ := newTestAssistant(t, fake)

	reply := a.SendMessage(context.Background(), "what project am I on?")

	// The lookup result is surfaced verbatim instead of being lost.
	assert.Contains(t, reply, `"user_found": true`)
	assert.Contains(t, reply, "AIAE001")
	assert.Equal(t, "assistant", lastRole(t, a))
}

func TestSendMessageEmptyContentRollsBack(t *testing.T) {
	fake := &fakeCompleter{responses: []scripted{{msg: directMessage("")}}}
	a, _ := newTestAssistant(t, fake)
	before := a.HistoryLen()

	reply := a.SendMessage(context.Background(), "hello")

	assert.Equal(t, msgNoContent, reply)
	assert.Equal(t, before, a.HistoryLen())
}

func TestSendMessageValidation(t *testing.T) {
	fake := &fakeCompleter{}
	a, _ := newTestAssistant(t, fake)
	before := a.HistoryLen()

	for _, input := range []string{"", "   ", "\n\t"} {
		reply := a.SendMessage(context.Background(), input)
		assert.Equal(t, msgInvalidInput, reply)
	}

	assert.Equal(t, before, a.HistoryLen())
	assert.Empty(t, fake.calls)
}

func TestSendMessageLengthBoundary(t *testing.T) {
	fake := &fakeCompleter{responses: []scripted{{msg: directMessage("ok")}}}
	a, _ := newTestAssistant(t, fake)
	before := a.HistoryLen()

	// Exactly at the ceiling is accepted.
	reply := a.SendMessage(context.Background(), strings.Repeat("a", 5000))
	assert.Equal(t, "ok", reply)
	require.Len(t, fake.calls, 1)

	// One past the ceiling is rejected with no completion call and no
	// history mutation.
	after := a.HistoryLen()
	reply = a.SendMessage(context.Background(), strings.Repeat("a", 5001))
	assert.Equal(t, msgInvalidInput, reply)
	assert.Equal(t, after, a.HistoryLen())
	assert.Len(t, fake.calls, 1)
	assert.Equal(t, before+2, after)
}

func TestResetIsIdempotent(t *testing.T) {
	fake := &fakeCompleter{responses: []scripted{{msg: directMessage("hi")}}}
	a, transcriptPath := newTestAssistant(t, fake)
	fresh := a.HistoryLen()

	a.SendMessage(context.Background(), "hello")

	a.Reset()
	first := a.HistoryLen()
	a.Reset()

	assert.Equal(t, fresh, first)
	assert.Equal(t, first, a.HistoryLen())

	data, err := os.ReadFile(transcriptPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "transcript cleared")
	assert.NotContains(t, string(data), "user: hello")
}

func TestSetAdditionalContext(t *testing.T) {
	fake := &fakeCompleter{}
	a, _ := newTestAssistant(t, fake)
	before := a.Summary()

	a.SetAdditionalContext("My name is Nam Vu Son, Engineering department")
	a.SetAdditionalContext("   ")

	s := a.Summary()
	assert.Equal(t, before.UserMessages+1, s.UserMessages)
	assert.Empty(t, fake.calls)
}

func TestSummaryCountsToolLookups(t *testing.T) {
	fake := &fakeCompleter{responses: []scripted{
		{msg: toolCallMessage(functionCall("call_1", tooling.NameMembers, "{}"))},
		{msg: directMessage("your team has one member")},
	}}
	a, _ := newTestAssistant(t, fake)
	before := a.Summary()

	a.SendMessage(context.Background(), "who is on my team?")

	s := a.Summary()
	assert.Equal(t, before.UserMessages+1, s.UserMessages)
	assert.Equal(t, before.AssistantMessages+2, s.AssistantMessages)
	assert.Equal(t, before.ToolCalls+1, s.ToolCalls)
	assert.True(t, s.ConversationStarted)
}
