// Package pipeline runs one request through cache lookup, validation, the data
// operation, cache maintenance and error classification.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"blog-api/internal/apperror"
	"blog-api/internal/cache"
	"blog-api/internal/telemetry"
	"blog-api/internal/validation"
)

// Kind separates idempotent reads from writes.
type Kind int

const (
	Read Kind = iota
	Write
)

// Response is what an operation produces on success.
type Response struct {
	Status int
	Body   any
}

// Operation is one route's unit of work.
type Operation struct {
	Name string
	Kind Kind
	// Resource is the collection path, e.g. "/posts".
	Resource string
	// Invalidates lists further collection paths a successful write makes stale.
	Invalidates []string
	Rules       []validation.Rule
	Do          func(ctx context.Context, req *Request) (Response, error)
}

// Notifier receives change events after successful writes.
type Notifier interface {
	Broadcast(topic string, message []byte)
}

// Config holds the pipeline's collaborators. Every field may be nil.
type Config struct {
	Cache    *cache.ResponseCache
	Notifier Notifier
	Metrics  *telemetry.Metrics
	Logger   *zap.Logger
}

// Pipeline is shared by all requests; each Run keeps its state on the stack.
type Pipeline struct {
	cache    *cache.ResponseCache
	notifier Notifier
	metrics  *telemetry.Metrics
	log      *zap.Logger
}

// New creates a Pipeline.
func New(cfg Config) *Pipeline {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		cache:    cfg.Cache,
		notifier: cfg.Notifier,
		metrics:  cfg.Metrics,
		log:      log.Named("pipeline"),
	}
}

// State is a step of a pipeline run.
type State int

const (
	Received State = iota
	CacheCheck
	Validating
	Operating
	CacheUpdating
	Responded
	Failed
)

func (s State) String() string {
	switch s {
	case Received:
		return "received"
	case CacheCheck:
		return "cache_check"
	case Validating:
		return "validating"
	case Operating:
		return "operating"
	case CacheUpdating:
		return "cache_updating"
	case Responded:
		return "responded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// run is the request-scoped state of one pass through the pipeline.
type run struct {
	p       *Pipeline
	op      *Operation
	req     *Request
	res     Response
	err     error
	outcome string
}

// Run drives req through op and returns the status and body to send.
// A nil body means the response has no content.
func (p *Pipeline) Run(ctx context.Context, op *Operation, req *Request) (int, any) {
	r := &run{p: p, op: op, req: req}
	state := Received
	for state != Responded && state != Failed {
		state = r.step(ctx, state)
	}
	if state == Failed {
		return r.classify()
	}
	p.metrics.Outcome(op.Name, r.outcome)
	return r.res.Status, r.res.Body
}

func (r *run) step(ctx context.Context, s State) State {
	switch s {
	case Received:
		return r.received()
	case CacheCheck:
		return r.cacheCheck()
	case Validating:
		return r.validating()
	case Operating:
		return r.operating(ctx)
	case CacheUpdating:
		return r.cacheUpdating()
	default:
		r.err = fmt.Errorf("pipeline: no transition from %s", s)
		return Failed
	}
}

func (r *run) received() State {
	if r.op.Kind == Read && r.p.cache != nil {
		return CacheCheck
	}
	return Validating
}

func (r *run) cacheCheck() State {
	payload, ok := r.p.cache.Lookup(r.req)
	if !ok {
		return Validating
	}
	r.res = Response{Status: http.StatusOK, Body: json.RawMessage(payload)}
	r.req.CacheHit = true
	r.outcome = "hit"
	return Responded
}

func (r *run) validating() State {
	if err := validation.Run(r.req, r.op.Rules); err != nil {
		r.err = err
		return Failed
	}
	return Operating
}

func (r *run) operating(ctx context.Context) State {
	// Once the data call starts it runs to completion, whatever the client does.
	res, err := r.op.Do(context.WithoutCancel(ctx), r.req)
	if err != nil {
		r.err = err
		return Failed
	}
	if res.Status == 0 {
		res.Status = http.StatusOK
	}
	if r.op.Kind == Read && res.Body != nil {
		payload, err := json.Marshal(res.Body)
		if err != nil {
			r.err = fmt.Errorf("encode %s response: %w", r.op.Name, err)
			return Failed
		}
		res.Body = json.RawMessage(payload)
	}
	r.res = res
	return CacheUpdating
}

func (r *run) cacheUpdating() State {
	r.outcome = "ok"
	if r.op.Kind == Read {
		if r.p.cache != nil {
			if payload, ok := r.res.Body.(json.RawMessage); ok {
				r.p.cache.Store(r.req, payload)
			}
		}
		return Responded
	}
	if r.p.cache != nil {
		r.p.cache.Invalidate(r.op.Resource)
		for _, res := range r.op.Invalidates {
			r.p.cache.Invalidate(res)
		}
	}
	r.publish()
	return Responded
}

// changeEvent is broadcast to subscribers of the written resource.
type changeEvent struct {
	Type     string `json:"type"`
	Resource string `json:"resource"`
	Path     string `json:"path"`
}

func (r *run) publish() {
	if r.p.notifier == nil || r.op.Resource == "" {
		return
	}
	evt := changeEvent{Type: eventType(r.req.Method), Resource: r.op.Resource, Path: r.req.Path}
	if b, err := json.Marshal(evt); err == nil {
		r.p.notifier.Broadcast(r.op.Resource, b)
	}
}

func eventType(method string) string {
	switch method {
	case http.MethodPost:
		return "created"
	case http.MethodDelete:
		return "deleted"
	default:
		return "updated"
	}
}

// classify turns the run's failure into its outward form, exactly once.
func (r *run) classify() (int, any) {
	c := apperror.Classify(r.err)
	r.p.metrics.Outcome(r.op.Name, c.Kind().String())
	if c.Kind() == apperror.KindUnclassified {
		r.p.log.Error("request failed",
			zap.String("operation", r.op.Name),
			zap.String("method", r.req.Method),
			zap.String("path", r.req.Path),
			zap.Error(r.err),
		)
	} else if ce := r.p.log.Check(zap.DebugLevel, "request rejected"); ce != nil {
		ce.Write(
			zap.String("operation", r.op.Name),
			zap.Stringer("kind", c.Kind()),
			zap.Error(r.err),
		)
	}
	return c.Status(), c.Body()
}
