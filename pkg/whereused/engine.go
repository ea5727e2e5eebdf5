package whereused

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vibingsteamer/mcp-abap-adt/pkg/adt"
)

// Gateway sends one request to the ADT API. *adt.Transport implements it.
type Gateway interface {
	Request(ctx context.Context, path string, opts *adt.RequestOptions) (*adt.Response, error)
}

// Outcome records what a single strategy attempt produced.
type Outcome struct {
	Strategy    QueryStrategy
	Status      OutcomeStatus
	StatusCode  int
	RawBody     []byte
	ErrorDetail string
	Duration    time.Duration
}

// Resolution is the result of Engine.Resolve together with the evidence
// gathered on the way.
type Resolution struct {
	Query    ObjectQuery
	Outcomes []Outcome
	Result   *Result
}

// Engine resolves where-used queries. It holds no per-query state and is
// safe for concurrent use.
type Engine struct {
	gateway    Gateway
	classifier *Classifier
	logger     *zap.Logger
	metrics    *Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithMetrics records attempts and resolutions in m.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) {
		e.metrics = m
	}
}

// WithClassifier replaces the default hit classifier.
func WithClassifier(c *Classifier) Option {
	return func(e *Engine) {
		if c != nil {
			e.classifier = c
		}
	}
}

// NewEngine validates cfg and builds an engine that talks to gw.
// Configuration problems are reported here, before any query can run.
func NewEngine(cfg *adt.Config, gw Gateway, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if gw == nil {
		return nil, errors.New("where-used engine: gateway is required")
	}

	e := &Engine{
		gateway:    gw,
		classifier: DefaultClassifier(),
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Resolve runs the strategies for q one after another and stops at the first
// hit. Strategy failures are recorded and skipped. When every strategy comes
// back empty or failed, the result is the guidance document with IsError
// false. Only a cancelled context or an unexpected panic yields IsError.
func (e *Engine) Resolve(ctx context.Context, q ObjectQuery) (res *Resolution) {
	log := e.logger.With(
		zap.String("resolution", uuid.NewString()),
		zap.String("object", q.Name),
		zap.String("declaredType", string(q.DeclaredType)),
		zap.Int("maxResults", q.MaxResults),
	)
	res = &Resolution{Query: q}

	defer func() {
		if r := recover(); r != nil {
			log.Error("where-used resolution panicked", zap.Any("panic", r), zap.Stack("stack"))
			res.Result = unexpectedErrorResult(q, fmt.Errorf("%v", r))
			e.metrics.observeResolution(resolutionError)
		}
	}()

	strategies := SelectStrategies(q)
	log.Debug("resolving where-used", zap.Int("strategies", len(strategies)))

	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return e.cancelled(log, res, err)
		}

		outcome, resp := e.attempt(ctx, s, q)
		res.Outcomes = append(res.Outcomes, outcome)

		fields := []zap.Field{
			zap.String("strategy", s.Name),
			zap.String("remoteType", s.RemoteObjectType),
			zap.String("status", string(outcome.Status)),
			zap.Int("httpStatus", outcome.StatusCode),
			zap.Duration("duration", outcome.Duration),
		}
		if outcome.ErrorDetail != "" {
			fields = append(fields, zap.String("error", outcome.ErrorDetail))
		}
		log.Debug("where-used strategy finished", fields...)

		if outcome.Status == StatusHit {
			log.Info("where-used resolved", zap.String("strategy", s.Name), zap.Int("attempts", len(res.Outcomes)))
			res.Result = Normalize(resp)
			e.metrics.observeResolution(resolutionHit)
			return res
		}
	}

	// A cancel during the last request must not read as "no references".
	if err := ctx.Err(); err != nil {
		return e.cancelled(log, res, err)
	}

	log.Info("where-used unresolved, returning guidance", zap.Int("attempts", len(res.Outcomes)))
	res.Result = &Result{Content: []ContentItem{FormatGuidance(q, res.Outcomes)}}
	e.metrics.observeResolution(resolutionGuidance)
	return res
}

func (e *Engine) cancelled(log *zap.Logger, res *Resolution, err error) *Resolution {
	log.Warn("where-used resolution cancelled", zap.Error(err), zap.Int("attempted", len(res.Outcomes)))
	res.Result = NormalizeError(fmt.Errorf("where-used lookup for %s cancelled: %w", res.Query.Name, err))
	e.metrics.observeResolution(resolutionError)
	return res
}

// attempt issues one strategy request and classifies it.
func (e *Engine) attempt(ctx context.Context, s QueryStrategy, q ObjectQuery) (Outcome, *adt.Response) {
	path, opts := s.Build(q)

	start := time.Now()
	resp, err := e.gateway.Request(ctx, path, opts)
	outcome := Outcome{Strategy: s, Duration: time.Since(start)}

	if err != nil {
		outcome.Status = StatusError
		outcome.StatusCode = adt.StatusCode(err)
		outcome.ErrorDetail = err.Error()
		e.metrics.observeAttempt(outcome)
		return outcome, nil
	}

	outcome.StatusCode = resp.StatusCode
	outcome.RawBody = resp.Body
	outcome.Status = e.classifier.Classify(s.ResponseKind, resp.Body)
	e.metrics.observeAttempt(outcome)
	return outcome, resp
}
