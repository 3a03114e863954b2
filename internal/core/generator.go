package core

import (
	"context"
	"errors"
	"time"

	"axis.io/contentops/internal/metrics"
)

// ErrGenerationDisabled is returned by the offline generator. Stores treat it
// like any other failure and fall back to local content.
var ErrGenerationDisabled = errors.New("generation service is not configured")

type ChatTurnMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type ChatTurnRequest struct {
	Messages         []ChatTurnMessage
	BrandName        string
	BrandDescription string
	Mode             ChatMode
}

type StrategyRequest struct {
	BrandName        string
	BrandDescription string
	ChatHistory      string // "role: content" lines, may be empty
}

type SectionRequest struct {
	BrandName        string
	BrandDescription string
	Section          SectionID
	Title            string
	CurrentContent   string // the new version must differ from this
}

type CalendarRequest struct {
	BrandName        string
	BrandDescription string
	Strategy         string
	StartDate        string
	EndDate          string
	PostsPerDay      int
	DaysPerWeek      int
	Themes           []Theme
}

// CardDescriptor is one scheduled post proposed by the generation service.
type CardDescriptor struct {
	Date     string        `json:"date"`
	Time     string        `json:"time"`
	Format   ContentFormat `json:"format"`
	Platform Platform      `json:"platform"`
	Theme    string        `json:"theme"`
	Title    string        `json:"title"`
}

type FieldRequest struct {
	BrandName        string
	BrandDescription string
	Card             ContentCard
	Field            GeneratableField
}

// Generator is the remote text-generation collaborator.
type Generator interface {
	// ChatTurn produces the next assistant utterance. onChunk, if non-nil,
	// receives each streamed fragment as it arrives; the returned string is
	// the complete utterance.
	ChatTurn(ctx context.Context, req ChatTurnRequest, onChunk func(string)) (string, error)
	Strategy(ctx context.Context, req StrategyRequest) (map[SectionID]string, error)
	Section(ctx context.Context, req SectionRequest) (string, error)
	Calendar(ctx context.Context, req CalendarRequest) ([]CardDescriptor, error)
	Field(ctx context.Context, req FieldRequest) (string, error)
}

// OfflineGenerator fails every request with ErrGenerationDisabled.
type OfflineGenerator struct{}

func (OfflineGenerator) ChatTurn(context.Context, ChatTurnRequest, func(string)) (string, error) {
	return "", ErrGenerationDisabled
}

func (OfflineGenerator) Strategy(context.Context, StrategyRequest) (map[SectionID]string, error) {
	return nil, ErrGenerationDisabled
}

func (OfflineGenerator) Section(context.Context, SectionRequest) (string, error) {
	return "", ErrGenerationDisabled
}

func (OfflineGenerator) Calendar(context.Context, CalendarRequest) ([]CardDescriptor, error) {
	return nil, ErrGenerationDisabled
}

func (OfflineGenerator) Field(context.Context, FieldRequest) (string, error) {
	return "", ErrGenerationDisabled
}

// instrumentedGenerator records a metric for every call it forwards.
type instrumentedGenerator struct {
	next    Generator
	metrics *metrics.Metrics
}

// Instrument wraps g so every call is counted and timed.
func Instrument(g Generator, m *metrics.Metrics) Generator {
	if m == nil {
		return g
	}
	return &instrumentedGenerator{next: g, metrics: m}
}

func (g *instrumentedGenerator) ChatTurn(ctx context.Context, req ChatTurnRequest, onChunk func(string)) (string, error) {
	start := time.Now()
	out, err := g.next.ChatTurn(ctx, req, onChunk)
	g.metrics.RecordGeneration("chat", err, time.Since(start))
	return out, err
}

func (g *instrumentedGenerator) Strategy(ctx context.Context, req StrategyRequest) (map[SectionID]string, error) {
	start := time.Now()
	out, err := g.next.Strategy(ctx, req)
	g.metrics.RecordGeneration("strategy", err, time.Since(start))
	return out, err
}

func (g *instrumentedGenerator) Section(ctx context.Context, req SectionRequest) (string, error) {
	start := time.Now()
	out, err := g.next.Section(ctx, req)
	g.metrics.RecordGeneration("section", err, time.Since(start))
	return out, err
}

func (g *instrumentedGenerator) Calendar(ctx context.Context, req CalendarRequest) ([]CardDescriptor, error) {
	start := time.Now()
	out, err := g.next.Calendar(ctx, req)
	g.metrics.RecordGeneration("calendar", err, time.Since(start))
	return out, err
}

func (g *instrumentedGenerator) Field(ctx context.Context, req FieldRequest) (string, error) {
	start := time.Now()
	out, err := g.next.Field(ctx, req)
	g.metrics.RecordGeneration("field", err, time.Since(start))
	return out, err
}
