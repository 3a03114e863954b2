package core

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"axis.io/contentops/internal/utils"
)

const (
	// StrategyReadyMarker in an assistant reply marks the strategy interview
	// as complete. Matching is an exact, case-sensitive substring test.
	StrategyReadyMarker = "strategy is ready"

	// ManualQuestionCount is the length of the guided questionnaire in
	// manual mode.
	ManualQuestionCount = 5

	chatErrorMessage = "Sorry, I encountered an error connecting to the AI service. Please check your API key and try again."
)

// SessionLookup exposes chat history to other containers.
type SessionLookup interface {
	Session(brandID string) ChatSession
}

type chatSnapshot struct {
	Sessions map[string]ChatSession `json:"sessions"`
}

// ChatEngine runs one strategy conversation per brand.
type ChatEngine struct {
	*storeBase

	brands BrandLookup
	gen    Generator

	mu       sync.Mutex
	sessions map[string]ChatSession
	// epochs advance on every SetMode so replies to a discarded
	// conversation are dropped.
	epochs map[string]uint64
}

func NewChatEngine(brands BrandLookup, gen Generator, opts Options) *ChatEngine {
	return &ChatEngine{
		storeBase: newStoreBase("chat", opts),
		brands:    brands,
		gen:       gen,
		sessions:  make(map[string]ChatSession),
		epochs:    make(map[string]uint64),
	}
}

func (e *ChatEngine) Load() error {
	var snap chatSnapshot
	found, err := e.load(&snap)
	if err != nil || !found {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sessions = make(map[string]ChatSession, len(snap.Sessions))
	for id, s := range snap.Sessions {
		// Nothing can be in flight after a restart.
		s.IsTyping = false
		e.sessions[id] = s
	}
	e.logger.Info().Int("sessions", len(e.sessions)).Msg("Loaded chat sessions")
	return nil
}

func (e *ChatEngine) persistLocked() {
	out := make(map[string]ChatSession, len(e.sessions))
	for id, s := range e.sessions {
		s.IsTyping = false
		out[id] = s
	}
	e.save(chatSnapshot{Sessions: out})
}

// Session returns the brand's conversation, or an empty session without a
// mode if none has been started.
func (e *ChatEngine) Session(brandID string) ChatSession {
	e.mu.Lock()
	defer e.mu.Unlock()
	s, ok := e.sessions[brandID]
	if !ok {
		return ChatSession{Messages: []Message{}}
	}
	return s.clone()
}

func (e *ChatEngine) newMessage(role Role, content string, options []MessageOption) Message {
	return Message{
		ID:        e.newID(),
		Role:      role,
		Content:   content,
		Timestamp: e.now(),
		Options:   options,
	}
}

func (e *ChatEngine) brandName(brandID string) (string, string) {
	brand, ok := e.brands.Brand(brandID)
	if !ok {
		return "your brand", ""
	}
	return brand.Name, brand.Description
}

func welcomeMessage(mode ChatMode, brandName string) string {
	if mode == ModeManual {
		return fmt.Sprintf("Let's build %s's strategy step by step. I'll ask you a series of questions to understand your brand better. Let's start: what industry or niche is %s in?", brandName, brandName)
	}
	return fmt.Sprintf("I'll create a complete social media strategy for **%s**. Tell me about your brand. What does it do, who is it for, and what makes it special?", brandName)
}

// SetMode starts a fresh conversation in the given mode, discarding any
// previous conversation for the brand.
func (e *ChatEngine) SetMode(brandID string, mode ChatMode) bool {
	if brandID == "" || !mode.Valid() {
		return false
	}
	name, _ := e.brandName(brandID)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.epochs[brandID]++
	e.sessions[brandID] = ChatSession{
		Mode:     mode,
		Messages: []Message{e.newMessage(RoleAssistant, welcomeMessage(mode, name), nil)},
	}
	e.persistLocked()
	e.logger.Info().Str("brand_id", brandID).Str("mode", string(mode)).Msg("Chat mode selected")
	return true
}

// importSession installs a session as-is. Used by seeding.
func (e *ChatEngine) importSession(brandID string, s ChatSession) {
	s.IsTyping = false
	e.mu.Lock()
	defer e.mu.Unlock()
	e.epochs[brandID]++
	e.sessions[brandID] = s.clone()
	e.persistLocked()
}

// Forget drops the brand's conversation. Replies still in flight are
// discarded when they settle.
func (e *ChatEngine) Forget(brandID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.sessions[brandID]; !ok {
		return
	}
	delete(e.sessions, brandID)
	e.epochs[brandID]++
	e.persistLocked()
}

// SendMessage appends a user message and requests the next assistant turn.
// It is rejected when no mode is set, a reply is already pending, or the
// text is blank.
func (e *ChatEngine) SendMessage(brandID, content string) (Pending, bool) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, false
	}

	e.mu.Lock()
	session, ok := e.sessions[brandID]
	if !ok || session.Mode == "" {
		e.mu.Unlock()
		e.metrics.RecordRejected("chat", "no_mode")
		return nil, false
	}
	if session.IsTyping {
		e.mu.Unlock()
		e.metrics.RecordRejected("chat", "typing")
		return nil, false
	}

	next := session.clone()
	if n := len(next.Messages); n > 0 && next.Messages[n-1].Options != nil {
		next.Messages[n-1].Options = nil
	}
	next.Messages = append(next.Messages, e.newMessage(RoleUser, content, nil))
	next.IsTyping = true
	e.sessions[brandID] = next
	epoch := e.epochs[brandID]
	e.persistLocked()

	history := make([]ChatTurnMessage, len(next.Messages))
	for i, m := range next.Messages {
		history[i] = ChatTurnMessage{Role: m.Role, Content: m.Content}
	}
	mode := next.Mode
	e.mu.Unlock()

	e.logger.Debug().Str("brand_id", brandID).Str("content", utils.Truncate(content, 50)).Msg("User message accepted")

	return e.async(func(ctx context.Context) {
		e.streamReply(ctx, brandID, epoch, mode, history)
	}), true
}

// SelectOption answers with the option's label.
func (e *ChatEngine) SelectOption(brandID string, option MessageOption) (Pending, bool) {
	return e.SendMessage(brandID, option.Label)
}

// updateLocked applies fn to the session if it still belongs to epoch.
func (e *ChatEngine) updateLocked(brandID string, epoch uint64, fn func(*ChatSession)) bool {
	s, ok := e.sessions[brandID]
	if !ok || e.epochs[brandID] != epoch {
		return false
	}
	next := s.clone()
	fn(&next)
	e.sessions[brandID] = next
	return true
}

func (e *ChatEngine) streamReply(ctx context.Context, brandID string, epoch uint64, mode ChatMode, history []ChatTurnMessage) {
	name, description := e.brandName(brandID)
	req := ChatTurnRequest{
		Messages:         history,
		BrandName:        name,
		BrandDescription: description,
		Mode:             mode,
	}

	replyID := ""
	var streamed strings.Builder
	onChunk := func(chunk string) {
		streamed.WriteString(chunk)
		content := streamed.String()
		e.mu.Lock()
		defer e.mu.Unlock()
		e.updateLocked(brandID, epoch, func(s *ChatSession) {
			if replyID == "" {
				msg := e.newMessage(RoleAssistant, content, nil)
				replyID = msg.ID
				s.Messages = append(s.Messages, msg)
				return
			}
			for i := range s.Messages {
				if s.Messages[i].ID == replyID {
					s.Messages[i].Content = content
				}
			}
		})
	}

	reply, err := e.gen.ChatTurn(ctx, req, onChunk)

	e.mu.Lock()
	defer e.mu.Unlock()
	applied := e.updateLocked(brandID, epoch, func(s *ChatSession) {
		s.IsTyping = false
		if err != nil {
			s.Messages = append(s.Messages, e.newMessage(RoleAssistant, chatErrorMessage, nil))
			return
		}
		if replyID == "" {
			s.Messages = append(s.Messages, e.newMessage(RoleAssistant, reply, nil))
		} else {
			for i := range s.Messages {
				if s.Messages[i].ID == replyID {
					s.Messages[i].Content = reply
				}
			}
		}
		if strings.Contains(reply, StrategyReadyMarker) || questionnaireDone(*s) {
			s.StrategyReady = true
		}
	})
	if !applied {
		e.logger.Debug().Str("brand_id", brandID).Msg("Dropping reply for discarded conversation")
		return
	}
	e.persistLocked()

	if err != nil {
		e.logger.Error().Err(err).Str("brand_id", brandID).Msg("Chat turn failed")
	}
}

// questionnaireDone reports whether a manual-mode session has answered every
// guided question.
func questionnaireDone(s ChatSession) bool {
	if s.Mode != ModeManual {
		return false
	}
	answers := 0
	for _, m := range s.Messages {
		if m.Role == RoleUser {
			answers++
		}
	}
	return answers >= ManualQuestionCount
}
