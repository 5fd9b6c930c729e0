// ABOUTME: Write orchestration for single and batched metafield mutations
// ABOUTME: Sequences resolve, transform, mutate, and response interpretation

package metafield

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nainya/metawrite/internal/logger"
	"github.com/nainya/metawrite/internal/metrics"
)

// Transport executes a GraphQL document against the Admin API and returns the
// data payload. It owns authentication, pacing, and HTTP-level retries; a
// returned error means the call is terminal.
type Transport interface {
	Execute(ctx context.Context, document string, variables map[string]any) (json.RawMessage, error)
}

// productMetafieldMutation writes one or more metafields onto a product and
// echoes the written fields back alongside any user errors.
const productMetafieldMutation = `
mutation productUpdateMetafields($input: ProductInput!, $identifiers: [HasMetafieldsIdentifier!]!) {
	productUpdate(input: $input) {
		product {
			id
			metafields(identifiers: $identifiers) {
				id
				namespace
				key
				type
				value
			}
		}
		userErrors {
			field
			message
		}
	}
}`

// Writer safely writes product metafields: it resolves the target type,
// coerces the value into the platform's string encoding, submits the
// mutation, and surfaces platform-reported user errors as typed failures.
type Writer struct {
	transport   Transport
	definitions DefinitionLookup
	existing    ExistingLookup
	registry    *Registry
	resolver    *Resolver
	log         *logger.Logger
	metrics     *metrics.Metrics
}

// Option configures a Writer.
type Option func(*Writer)

// WithLogger attaches a structured logger to the writer.
func WithLogger(log *logger.Logger) Option {
	return func(w *Writer) {
		if log != nil {
			w.log = log
		}
	}
}

// WithMetrics attaches Prometheus metrics to the writer.
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Writer) { w.metrics = m }
}

// WithRegistry shares a definition registry between writers.
func WithRegistry(r *Registry) Option {
	return func(w *Writer) {
		if r != nil {
			w.registry = r
		}
	}
}

// WithLookups overrides the resolution collaborators. Either may be nil to
// disable that resolution step.
func WithLookups(definitions DefinitionLookup, existing ExistingLookup) Option {
	return func(w *Writer) {
		w.definitions = definitions
		w.existing = existing
	}
}

// NewWriter creates a writer over the given transport. When the transport
// also implements DefinitionLookup or ExistingLookup (the shopify.Client
// does), those are adopted for type resolution unless overridden.
func NewWriter(transport Transport, opts ...Option) *Writer {
	w := &Writer{
		transport: transport,
		registry:  NewRegistry(),
		log:       logger.NewNop(),
	}
	if d, ok := transport.(DefinitionLookup); ok {
		w.definitions = d
	}
	if e, ok := transport.(ExistingLookup); ok {
		w.existing = e
	}
	for _, opt := range opts {
		opt(w)
	}

	w.resolver = NewResolver(w.registry, w.definitions, w.existing)
	w.resolver.SetLogger(w.log)
	w.resolver.SetMetrics(w.metrics)
	return w
}

// Resolver exposes the writer's type resolver.
func (w *Writer) Resolver() *Resolver {
	return w.resolver
}

// Registry exposes the writer's definition cache.
func (w *Writer) Registry() *Registry {
	return w.registry
}

// Write writes a single metafield onto the product identified by ownerID.
// Failures are typed: ErrInvalidValue when the value cannot be coerced,
// ErrTypeUndeterminable when no type could be established, ErrRejected when
// the platform reports user errors, ErrTransport for network or protocol
// faults.
func (w *Writer) Write(ctx context.Context, ownerID string, f Field) (*WriteResult, error) {
	start := time.Now()

	if strings.TrimSpace(f.Namespace) == "" || strings.TrimSpace(f.Key) == "" {
		return nil, fmt.Errorf("metafield: namespace and key are required")
	}

	input, err := w.prepare(ctx, ownerID, f)
	if err != nil {
		w.metrics.RecordWrite("single", "error")
		return nil, err
	}

	w.log.LogWriteAttempt(ownerID, f.Namespace, f.Key, input.Type)
	result, err := w.submit(ctx, ownerID, f.Namespace, f.Key, []metafieldInput{input})
	w.log.LogWriteResult(ownerID, f.Namespace, f.Key, time.Since(start), err)
	w.metrics.RecordWrite("single", writeStatus(err))
	return result, err
}

// WriteBatch writes several metafields onto one product in a single mutation.
// Entries missing a namespace or key are skipped. The first field that cannot
// be resolved or transformed fails the whole batch before any network call;
// a user-errors response rejects the whole batch even if other fields were
// valid. No partial submission is attempted.
func (w *Writer) WriteBatch(ctx context.Context, ownerID string, fields []Field) (*WriteResult, error) {
	start := time.Now()

	inputs := make([]metafieldInput, 0, len(fields))
	for _, f := range fields {
		if strings.TrimSpace(f.Namespace) == "" || strings.TrimSpace(f.Key) == "" {
			w.log.Warn("Skipping batch entry without namespace or key").
				Str("owner", ownerID).Send()
			continue
		}
		input, err := w.prepare(ctx, ownerID, f)
		if err != nil {
			w.metrics.RecordWrite("batch", "error")
			return nil, err
		}
		inputs = append(inputs, input)
	}

	if len(inputs) == 0 {
		return nil, fmt.Errorf("metafield: batch contains no writable fields")
	}

	result, err := w.submit(ctx, ownerID, "", "", inputs)
	w.log.LogBatchResult(ownerID, len(inputs), time.Since(start), err)
	w.metrics.RecordWrite("batch", writeStatus(err))
	return result, err
}

// metafieldInput is the per-field payload of the productUpdate mutation.
type metafieldInput struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Type      string `json:"type"`
	Value     string `json:"value"`
}

type metafieldIdentifier struct {
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
}

// prepare resolves the field's effective type and transforms its value.
func (w *Writer) prepare(ctx context.Context, ownerID string, f Field) (metafieldInput, error) {
	t, err := w.resolver.Resolve(ctx, ownerID, f.Namespace, f.Key, f.Type, f.ForceType)
	if err != nil {
		return metafieldInput{}, err
	}

	encoded, err := Transform(f.Value, t)
	if err != nil {
		w.metrics.RecordTransform(t.String(), "error")
		return metafieldInput{}, fmt.Errorf("metafield: %s.%s on %s: %w", f.Namespace, f.Key, ownerID, err)
	}
	w.metrics.RecordTransform(t.String(), "ok")
	w.log.LogTransform(t.String(), encoded)

	return metafieldInput{
		Namespace: f.Namespace,
		Key:       f.Key,
		Type:      t.String(),
		Value:     encoded,
	}, nil
}

// submit sends one productUpdate mutation and interprets the mixed-success
// response: a non-empty userErrors sequence rejects the write even though the
// protocol call itself succeeded.
func (w *Writer) submit(ctx context.Context, ownerID, namespace, key string, inputs []metafieldInput) (*WriteResult, error) {
	identifiers := make([]metafieldIdentifier, len(inputs))
	for i, in := range inputs {
		identifiers[i] = metafieldIdentifier{Namespace: in.Namespace, Key: in.Key}
	}

	variables := map[string]any{
		"input": map[string]any{
			"id":         ownerID,
			"metafields": inputs,
		},
		"identifiers": identifiers,
	}

	data, err := w.transport.Execute(ctx, productMetafieldMutation, variables)
	if err != nil {
		return nil, &TransportError{OwnerID: ownerID, Namespace: namespace, Key: key, Cause: err}
	}

	var payload productUpdatePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, &TransportError{
			OwnerID:   ownerID,
			Namespace: namespace,
			Key:       key,
			Cause:     fmt.Errorf("malformed productUpdate response: %w", err),
		}
	}

	update := payload.ProductUpdate
	if len(update.UserErrors) > 0 {
		errs := make([]UserError, len(update.UserErrors))
		for i, ue := range update.UserErrors {
			errs[i] = UserError{Field: ue.Field, Message: ue.Message}
		}
		return nil, &RejectedError{OwnerID: ownerID, Errors: errs}
	}

	result := &WriteResult{
		Success: true,
		OwnerID: ownerID,
	}
	if update.Product.ID != "" {
		result.OwnerID = update.Product.ID
	}
	for _, mf := range update.Product.Metafields {
		result.Metafields = append(result.Metafields, mf.toMetafield())
	}
	return result, nil
}

func writeStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	default:
		if _, ok := AsRejected(err); ok {
			return "rejected"
		}
		return "transport_error"
	}
}

type productUpdatePayload struct {
	ProductUpdate struct {
		Product struct {
			ID         string          `json:"id"`
			Metafields []wireMetafield `json:"metafields"`
		} `json:"product"`
		UserErrors []wireUserError `json:"userErrors"`
	} `json:"productUpdate"`
}

type wireMetafield struct {
	ID        string `json:"id"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Type      string `json:"type"`
	Value     string `json:"value"`
}

func (m wireMetafield) toMetafield() Metafield {
	t, err := ParseType(m.Type)
	if err != nil {
		t = Type{Base: Kind(m.Type)}
	}
	return Metafield{
		ID:        m.ID,
		Namespace: m.Namespace,
		Key:       m.Key,
		Type:      t,
		Value:     m.Value,
	}
}

// wireUserError tolerates the API reporting field as either a string or a
// path array.
type wireUserError struct {
	Field   string
	Message string
}

func (u *wireUserError) UnmarshalJSON(b []byte) error {
	var raw struct {
		Field   json.RawMessage `json:"field"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	u.Message = raw.Message

	if len(raw.Field) == 0 || string(raw.Field) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw.Field, &s); err == nil {
		u.Field = s
		return nil
	}
	var parts []string
	if err := json.Unmarshal(raw.Field, &parts); err == nil {
		u.Field = strings.Join(parts, ".")
		return nil
	}
	u.Field = string(raw.Field)
	return nil
}
