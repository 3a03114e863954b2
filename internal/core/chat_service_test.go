package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatEngine_SetMode(t *testing.T) {
	ws := newTestWorkspace(t, nil)
	b := addTestBrand(t, ws, "Acme")

	assert.Empty(t, ws.Chat.Session(b.ID).Mode)
	assert.False(t, ws.Chat.SetMode(b.ID, "turbo"))
	assert.False(t, ws.Chat.SetMode("", ModeManual))

	require.True(t, ws.Chat.SetMode(b.ID, ModeFullAuto))
	s := ws.Chat.Session(b.ID)
	assert.Equal(t, ModeFullAuto, s.Mode)
	require.Len(t, s.Messages, 1)
	assert.Equal(t, RoleAssistant, s.Messages[0].Role)
	assert.Contains(t, s.Messages[0].Content, "**Acme**")

	require.True(t, ws.Chat.SetMode(b.ID, ModeManual))
	s = ws.Chat.Session(b.ID)
	require.Len(t, s.Messages, 1, "switching mode starts over")
	assert.Contains(t, s.Messages[0].Content, "step by step")
	assert.False(t, s.StrategyReady)
}

func TestChatEngine_SendMessageRequiresMode(t *testing.T) {
	ws := newTestWorkspace(t, nil)
	b := addTestBrand(t, ws, "Acme")

	_, ok := ws.Chat.SendMessage(b.ID, "hello")
	assert.False(t, ok)
	assert.Empty(t, ws.Chat.Session(b.ID).Messages)
}

func TestChatEngine_TypingGate(t *testing.T) {
	release := make(chan struct{})
	gen := &fakeGenerator{
		chatTurn: func(ctx context.Context, req ChatTurnRequest, onChunk func(string)) (string, error) {
			<-release
			return "Tell me more.", nil
		},
	}
	ws := newTestWorkspace(t, gen)
	b := addTestBrand(t, ws, "Acme")
	require.True(t, ws.Chat.SetMode(b.ID, ModeFullAuto))

	p, ok := ws.Chat.SendMessage(b.ID, "  We sell coffee.  ")
	require.True(t, ok)

	s := ws.Chat.Session(b.ID)
	assert.True(t, s.IsTyping)
	assert.False(t, settled(p))
	require.Len(t, s.Messages, 2)
	assert.Equal(t, "We sell coffee.", s.Messages[1].Content)

	_, ok = ws.Chat.SendMessage(b.ID, "Anything else?")
	assert.False(t, ok, "a second message is rejected while a reply is pending")
	assert.Len(t, ws.Chat.Session(b.ID).Messages, 2)

	close(release)
	await(t, p)

	s = ws.Chat.Session(b.ID)
	assert.False(t, s.IsTyping)
	require.Len(t, s.Messages, 3)
	assert.Equal(t, RoleAssistant, s.Messages[2].Role)
	assert.Equal(t, "Tell me more.", s.Messages[2].Content)

	_, ok = ws.Chat.SendMessage(b.ID, "   ")
	assert.False(t, ok)
}

func TestChatEngine_StreamingUpdatesOneMessage(t *testing.T) {
	gen := &fakeGenerator{
		chatTurn: func(ctx context.Context, req ChatTurnRequest, onChunk func(string)) (string, error) {
			onChunk("Hello ")
			onChunk("there")
			return "Hello there", nil
		},
	}
	ws := newTestWorkspace(t, gen)
	b := addTestBrand(t, ws, "Acme")
	ws.Chat.SetMode(b.ID, ModeFullAuto)

	p, ok := ws.Chat.SendMessage(b.ID, "hi")
	require.True(t, ok)
	await(t, p)

	s := ws.Chat.Session(b.ID)
	require.Len(t, s.Messages, 3)
	assert.Equal(t, "Hello there", s.Messages[2].Content)
}

func TestChatEngine_ReplyFailure(t *testing.T) {
	ws := newTestWorkspace(t, &fakeGenerator{
		chatTurn: func(context.Context, ChatTurnRequest, func(string)) (string, error) {
			return "", errors.New("quota exceeded")
		},
	})
	b := addTestBrand(t, ws, "Acme")
	ws.Chat.SetMode(b.ID, ModeFullAuto)

	p, ok := ws.Chat.SendMessage(b.ID, "hi")
	require.True(t, ok)
	await(t, p)

	s := ws.Chat.Session(b.ID)
	assert.False(t, s.IsTyping)
	require.Len(t, s.Messages, 3)
	assert.Equal(t, chatErrorMessage, s.Messages[2].Content)
	assert.False(t, s.StrategyReady)
}

func TestChatEngine_StrategyReadyMarker(t *testing.T) {
	replies := []string{"What else?", "Your social media strategy is ready!", "Anything to add?"}
	i := 0
	ws := newTestWorkspace(t, &fakeGenerator{
		chatTurn: func(context.Context, ChatTurnRequest, func(string)) (string, error) {
			r := replies[i]
			i++
			return r, nil
		},
	})
	b := addTestBrand(t, ws, "Acme")
	ws.Chat.SetMode(b.ID, ModeFullAuto)

	for n, want := range []bool{false, true, true} {
		p, ok := ws.Chat.SendMessage(b.ID, "answer")
		require.True(t, ok)
		await(t, p)
		assert.Equal(t, want, ws.Chat.Session(b.ID).StrategyReady, "after reply %d", n)
	}
}

func TestChatEngine_MarkerIsCaseSensitive(t *testing.T) {
	ws := newTestWorkspace(t, &fakeGenerator{
		chatTurn: func(context.Context, ChatTurnRequest, func(string)) (string, error) {
			return "Your Strategy Is Ready", nil
		},
	})
	b := addTestBrand(t, ws, "Acme")
	ws.Chat.SetMode(b.ID, ModeFullAuto)
	p, _ := ws.Chat.SendMessage(b.ID, "go")
	await(t, p)
	assert.False(t, ws.Chat.Session(b.ID).StrategyReady)
}

func TestChatEngine_ManualQuestionnaire(t *testing.T) {
	ws := newTestWorkspace(t, &fakeGenerator{
		chatTurn: func(context.Context, ChatTurnRequest, func(string)) (string, error) {
			return "Next question?", nil
		},
	})
	b := addTestBrand(t, ws, "Acme")
	ws.Chat.SetMode(b.ID, ModeManual)

	for n := 1; n <= ManualQuestionCount; n++ {
		p, ok := ws.Chat.SendMessage(b.ID, "answer")
		require.True(t, ok)
		await(t, p)
		assert.Equal(t, n == ManualQuestionCount, ws.Chat.Session(b.ID).StrategyReady)
	}
}

func TestChatEngine_SelectOptionClearsOptions(t *testing.T) {
	ws := newTestWorkspace(t, &fakeGenerator{
		chatTurn: func(context.Context, ChatTurnRequest, func(string)) (string, error) {
			return "Got it.", nil
		},
	})
	b := addTestBrand(t, ws, "Acme")
	opts := []MessageOption{{ID: "b2c", Label: "Consumers"}, {ID: "b2b", Label: "Businesses"}}
	ws.Chat.importSession(b.ID, ChatSession{
		Mode:     ModeManual,
		Messages: []Message{ws.Chat.newMessage(RoleAssistant, "Who do you sell to?", opts)},
	})

	p, ok := ws.Chat.SelectOption(b.ID, opts[1])
	require.True(t, ok)
	await(t, p)

	s := ws.Chat.Session(b.ID)
	require.Len(t, s.Messages, 3)
	assert.Nil(t, s.Messages[0].Options)
	assert.Equal(t, "Businesses", s.Messages[1].Content)
	assert.Equal(t, RoleUser, s.Messages[1].Role)
}

func TestChatEngine_HistorySentToGenerator(t *testing.T) {
	var got ChatTurnRequest
	ws := newTestWorkspace(t, &fakeGenerator{
		chatTurn: func(_ context.Context, req ChatTurnRequest, _ func(string)) (string, error) {
			got = req
			return "ok", nil
		},
	})
	b := addTestBrand(t, ws, "Acme")
	ws.Chat.SetMode(b.ID, ModeManual)
	p, _ := ws.Chat.SendMessage(b.ID, "We roast beans")
	await(t, p)

	assert.Equal(t, "Acme", got.BrandName)
	assert.Equal(t, ModeManual, got.Mode)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, RoleAssistant, got.Messages[0].Role)
	assert.Equal(t, "We roast beans", got.Messages[1].Content)
}

func TestChatEngine_ModeSwitchDropsStaleReply(t *testing.T) {
	release := make(chan struct{})
	ws := newTestWorkspace(t, &fakeGenerator{
		chatTurn: func(context.Context, ChatTurnRequest, func(string)) (string, error) {
			<-release
			return "Your strategy is ready", nil
		},
	})
	b := addTestBrand(t, ws, "Acme")
	ws.Chat.SetMode(b.ID, ModeFullAuto)
	p, ok := ws.Chat.SendMessage(b.ID, "hi")
	require.True(t, ok)

	ws.Chat.SetMode(b.ID, ModeManual)
	close(release)
	await(t, p)

	s := ws.Chat.Session(b.ID)
	require.Len(t, s.Messages, 1)
	assert.False(t, s.StrategyReady)
	assert.False(t, s.IsTyping)
}

func TestChatEngine_Persistence(t *testing.T) {
	p := newMemPersister()
	opts := testOptions(p)
	release := make(chan struct{})
	brands := NewBrandRegistry(opts)
	b, _ := brands.AddBrand(NewBrand{Name: "Acme"})
	chat := NewChatEngine(brands, &fakeGenerator{
		chatTurn: func(context.Context, ChatTurnRequest, func(string)) (string, error) {
			<-release
			return "ok", nil
		},
	}, opts)
	chat.SetMode(b.ID, ModeFullAuto)
	pending, _ := chat.SendMessage(b.ID, "hi")

	restored := NewChatEngine(brands, &fakeGenerator{}, testOptions(p))
	require.NoError(t, restored.Load())
	s := restored.Session(b.ID)
	assert.False(t, s.IsTyping, "typing never survives a restart")
	require.Len(t, s.Messages, 2)
	assert.True(t, strings.HasPrefix(s.Messages[0].Content, "I'll create"))

	close(release)
	await(t, pending)
	chat.Wait()
}
