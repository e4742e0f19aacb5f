package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/telhawk-systems/logrelay/internal/models"
	"github.com/telhawk-systems/logrelay/internal/tokens"
)

// Inserter submits one record to the warehouse.
type Inserter interface {
	Insert(ctx context.Context, record models.InsertRecord, bearer string) error
}

// UpstreamError wraps a broker or sink failure. Stage identifies which
// collaborator failed; the original payload never rides along.
type UpstreamError struct {
	Stage string
	Err   error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// DeduplicationKey is stable across retried deliveries of the identical raw
// body: extra.request_id verbatim when present as a non-empty string,
// otherwise the SHA-256 hex digest of the exact raw request bytes.
func DeduplicationKey(event *models.Event, raw []byte) string {
	if id := event.RequestID(); id != "" {
		return id
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

// RelayService forwards one validated event as one warehouse row.
type RelayService struct {
	tokens tokens.Source
	sink   Inserter
}

func NewRelayService(source tokens.Source, sink Inserter) *RelayService {
	return &RelayService{
		tokens: source,
		sink:   sink,
	}
}

// Relay computes the deduplication key, obtains a bearer token and performs
// exactly one insert attempt. A token failure short-circuits before the sink
// is ever contacted.
func (s *RelayService) Relay(ctx context.Context, event *models.Event, raw []byte) error {
	record := models.InsertRecord{
		Row:      event.Fields,
		InsertID: DeduplicationKey(event, raw),
	}

	token, err := s.tokens.Token(ctx)
	if err != nil {
		return &UpstreamError{Stage: "token exchange", Err: err}
	}

	if err := s.sink.Insert(ctx, record, token.AccessToken); err != nil {
		return &UpstreamError{Stage: "warehouse insert", Err: err}
	}

	return nil
}
