// Package conversation keeps the ordered message history of one chat and the
// bookkeeping the completion protocol demands: append-only mutation, rollback
// of an unpaired trailing user message, and wholesale replacement on reset.
package conversation

import "github.com/openai/openai-go/v3"

// History is the ordered message sequence of a single conversation. It is
// owned by exactly one orchestrator and is not safe for concurrent use.
type History struct {
	system  string
	fewShot []openai.ChatCompletionMessageParamUnion
	msgs    []openai.ChatCompletionMessageParamUnion
}

// New seeds a history with the system message followed by the fixed few-shot
// example block.
func New(system string, fewShot []openai.ChatCompletionMessageParamUnion) *History {
	h := &History{system: system, fewShot: fewShot}
	h.Reset()
	return h
}

// Reset replaces the history with its initial state. Calling Reset twice in
// a row yields the same history both times.
func (h *History) Reset() {
	h.msgs = make([]openai.ChatCompletionMessageParamUnion, 0, len(h.fewShot)+1)
	h.msgs = append(h.msgs, openai.SystemMessage(h.system))
	h.msgs = append(h.msgs, h.fewShot...)
}

// Append adds messages to the end of the history.
func (h *History) Append(msgs ...openai.ChatCompletionMessageParamUnion) {
	h.msgs = append(h.msgs, msgs...)
}

// Messages returns the current history. The returned slice is shared with
// the History; callers must treat it as read-only.
func (h *History) Messages() []openai.ChatCompletionMessageParamUnion {
	return h.msgs
}

// Len returns the number of messages in the history.
func (h *History) Len() int {
	return len(h.msgs)
}

// PopTrailingUser removes the last message if it is a user message and
// reports whether it did. A turn that failed before producing a durable
// response must not leave a dangling user message behind, or the next
// request would carry a protocol-invalid history.
func (h *History) PopTrailingUser() bool {
	if len(h.msgs) == 0 {
		return false
	}
	if h.msgs[len(h.msgs)-1].OfUser == nil {
		return false
	}
	h.msgs = h.msgs[:len(h.msgs)-1]
	return true
}

// Summary holds per-role message counts for one conversation.
type Summary struct {
	TotalMessages       int  `json:"total_messages"`
	UserMessages        int  `json:"user_messages"`
	AssistantMessages   int  `json:"assistant_messages"`
	ToolCalls           int  `json:"tool_calls"`
	ConversationStarted bool `json:"conversation_started"`
}

// Summarize counts the history by role.
func (h *History) Summarize() Summary {
	s := Summary{TotalMessages: len(h.msgs)}
	for _, msg := range h.msgs {
		switch {
		case msg.OfUser != nil:
			s.UserMessages++
		case msg.OfAssistant != nil:
			s.AssistantMessages++
		case msg.OfTool != nil:
			s.ToolCalls++
		}
	}
	s.ConversationStarted = s.TotalMessages > 1+len(h.fewShot)
	return s
}
