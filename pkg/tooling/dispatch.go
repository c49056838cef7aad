package tooling

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"go.uber.org/zap"

	"github.com/aiae/onboarding-assistant/pkg/conversation"
	"github.com/aiae/onboarding-assistant/pkg/knowledge"
)

// Dispatcher executes tool-call requests against the knowledge store and
// appends the results to the conversation in the order the completion
// protocol requires.
type Dispatcher struct {
	handlers map[string]func(arguments string) string
	log      *zap.Logger
}

// NewDispatcher binds the static tool registry to a knowledge store.
func NewDispatcher(store *knowledge.Store, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{
		log: log,
		handlers: map[string]func(arguments string) string{
			NameMembers:        func(string) string { return store.Members() },
			NameProcesses:      func(string) string { return store.Processes() },
			NameTechStacks:     func(string) string { return store.TechStacks() },
			NameUserAssignment: func(arguments string) string { return findUserAssignment(store, arguments) },
		},
	}
}

type userAssignmentArgs struct {
	UserName       string `json:"userName"`
	UserDepartment string `json:"userDepartment"`
}

// findUserAssignment decodes the model's free-form arguments permissively:
// malformed JSON falls back to a zero-argument invocation, which yields the
// store's guidance payload instead of aborting the call.
func findUserAssignment(store *knowledge.Store, arguments string) string {
	var args userAssignmentArgs
	if arguments != "" {
		_ = json.Unmarshal([]byte(arguments), &args)
	}
	return store.FindUserAssignment(args.UserName, args.UserDepartment)
}

// Dispatch appends the assistant message carrying the tool calls to the
// conversation, then executes each call and appends one tool message per
// call, in issue order, tagged with that call's ID. This ordering is a hard
// protocol requirement of the follow-up completion call.
//
// The returned string is the newline-joined set of individual results, for
// logging and for the raw fallback; the authoritative effect is the
// conversation mutation.
func (d *Dispatcher) Dispatch(msg *openai.ChatCompletionMessage, conv *conversation.History) string {
	conv.Append(msg.ToParam())

	results := make([]string, 0, len(msg.ToolCalls))
	for _, call := range msg.ToolCalls {
		result := d.execute(call)
		conv.Append(openai.ToolMessage(result, call.ID))
		results = append(results, result)
	}

	return strings.Join(results, "\n")
}

// execute runs a single tool call. A failing call never aborts its siblings:
// unknown names and handler panics both become structured JSON payloads the
// model can relay.
func (d *Dispatcher) execute(call openai.ChatCompletionMessageToolCallUnion) (result string) {
	name := call.Function.Name

	defer func() {
		if r := recover(); r != nil {
			d.log.Error("tool call panicked", zap.String("function", name), zap.Any("panic", r))
			result = errorResult(fmt.Sprintf("function execution failed: %v", r), name)
		}
	}()

	handler, ok := d.handlers[name]
	if !ok {
		d.log.Error("unknown tool call", zap.String("function", name))
		return errorResult("unknown function", name)
	}

	d.log.Info("executing tool call",
		zap.String("function", name),
		zap.String("id", call.ID))
	return handler(call.Function.Arguments)
}

func errorResult(errMsg, function string) string {
	out, err := json.Marshal(map[string]string{
		"error":    errMsg,
		"function": function,
	})
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, errMsg)
	}
	return string(out)
}
