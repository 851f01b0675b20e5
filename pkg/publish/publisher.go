// Package publish streams history records to NATS so live convergence data
// can be watched outside the simulation process. Publishing is best-effort
// from the run's point of view: a broker outage must never stall an
// iteration, so failures are retried a bounded number of times, counted
// against a circuit breaker, and otherwise surfaced to the caller as
// errors it may log and ignore.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/wehubfusion/Daedalus/pkg/concurrency"
	sdkerrors "github.com/wehubfusion/Daedalus/pkg/errors"
)

// Conn is the minimal connection surface the publisher depends on.
// Implemented by *nats.Conn; tests provide a double.
type Conn interface {
	Publish(subject string, data []byte) error
	IsConnected() bool
}

// defaultMaxRetries is the number of publish attempts per record
const defaultMaxRetries = 3

// defaultRetryDelay is the pause between publish attempts
const defaultRetryDelay = time.Second

// Publisher streams history records to a NATS subject derived from the
// run ID: <prefix>.<runID>.
type Publisher struct {
	conn       Conn
	subject    string
	maxRetries int
	retryDelay time.Duration
	breaker    *concurrency.CircuitBreaker
	logger     *zap.Logger
}

// NewPublisher creates a publisher for one run. subjectPrefix is the
// subject root (e.g. "daedalus.history"); runID scopes the subject to this
// run.
func NewPublisher(conn Conn, subjectPrefix, runID string, logger *zap.Logger) (*Publisher, error) {
	if conn == nil {
		return nil, errors.New("connection is required")
	}
	if subjectPrefix == "" {
		return nil, errors.New("subject prefix is required")
	}
	if runID == "" {
		return nil, errors.New("run ID is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}

	return &Publisher{
		conn:       conn,
		subject:    fmt.Sprintf("%s.%s", subjectPrefix, runID),
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
		breaker:    concurrency.NewCircuitBreaker(10, 30*time.Second),
		logger:     logger,
	}, nil
}

// Subject returns the subject records are published to
func (p *Publisher) Subject() string {
	return p.subject
}

// Publish marshals and publishes one record, retrying transient failures.
// An open circuit breaker short-circuits immediately so a dead broker does
// not slow the iteration loop down.
func (p *Publisher) Publish(ctx context.Context, record Record) error {
	if p.breaker.IsOpen() {
		return fmt.Errorf("history stream circuit open: %w", sdkerrors.ErrPublishFailed)
	}
	if !p.conn.IsConnected() {
		p.breaker.RecordFailure()
		return sdkerrors.ErrNotConnected
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal history record: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= p.maxRetries; attempt++ {
		if err := p.conn.Publish(p.subject, data); err == nil {
			p.breaker.RecordSuccess()
			return nil
		} else {
			lastErr = err
			p.logger.Warn("history record publish failed",
				zap.String("subject", p.subject),
				zap.Int("attempt", attempt),
				zap.Error(err))
		}

		if attempt < p.maxRetries {
			select {
			case <-ctx.Done():
				return fmt.Errorf("publish cancelled: %w", ctx.Err())
			case <-time.After(p.retryDelay):
			}
		}
	}

	p.breaker.RecordFailure()
	return fmt.Errorf("%w after %d attempts: %v", sdkerrors.ErrPublishFailed, p.maxRetries, lastErr)
}
