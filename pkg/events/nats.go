package events

import (
	"context"
	"encoding/json"
	"time"

	natsclient "github.com/nats-io/nats.go"
	internalnats "github.com/wehubfusion/Daedalus/internal/nats"
	"go.uber.org/zap"
)

// NATSEmitter publishes registry events as JSON messages on subjects of the
// form "<prefix>.<event type>", e.g. "daedalus.unit.executed".
type NATSEmitter struct {
	conn    *natsclient.Conn
	prefix  string
	logger  *zap.Logger
	ownConn bool
}

// NATSConfig configures the event emitter connection.
type NATSConfig struct {
	Connection    *internalnats.ConnectionConfig
	SubjectPrefix string
}

// DefaultNATSConfig returns the default emitter configuration for the given
// server URL.
func DefaultNATSConfig(url string) NATSConfig {
	return NATSConfig{
		Connection:    internalnats.DefaultConnectionConfig(url),
		SubjectPrefix: "daedalus",
	}
}

// NewNATSEmitter connects to the configured NATS server and returns an
// emitter publishing on its subjects.
func NewNATSEmitter(ctx context.Context, config NATSConfig, logger *zap.Logger) (*NATSEmitter, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	conn, err := internalnats.Connect(ctx, config.Connection, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("event emitter connected", zap.String("url", config.Connection.URL))
	return &NATSEmitter{
		conn:    conn,
		prefix:  config.SubjectPrefix,
		logger:  logger,
		ownConn: true,
	}, nil
}

// NewNATSEmitterWithConn wraps an existing connection; Close leaves the
// connection open for its owner.
func NewNATSEmitterWithConn(conn *natsclient.Conn, subjectPrefix string, logger *zap.Logger) *NATSEmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NATSEmitter{conn: conn, prefix: subjectPrefix, logger: logger}
}

// Emit publishes the event. Publish failures are logged and dropped so the
// execution path never blocks on the event transport.
func (e *NATSEmitter) Emit(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		e.logger.Warn("cannot marshal event",
			zap.String("type", string(event.Type)), zap.Error(err))
		return
	}
	subject := e.prefix + "." + string(event.Type)
	if err := e.conn.Publish(subject, payload); err != nil {
		e.logger.Warn("cannot publish event",
			zap.String("subject", subject), zap.Error(err))
	}
}

// Close drains the emitter's connection if it owns it.
func (e *NATSEmitter) Close() error {
	if e.ownConn && e.conn != nil {
		return internalnats.Close(e.conn)
	}
	return nil
}
