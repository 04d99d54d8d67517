package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/pointwatch/internal/errors"
	"git.home.luguber.info/inful/pointwatch/internal/logfields"
)

// NATSPublisher publishes change events and driver runtime info to NATS.
//
// Core publish only, no JetStream: subscribers that miss an event catch up on
// the next change, which matches the best-effort delivery contract.
type NATSPublisher struct {
	conn          *nats.Conn
	subjectPrefix string
}

// NATSConfig configures the NATS publisher.
type NATSConfig struct {
	URL           string
	SubjectPrefix string
}

// NewNATSPublisher connects to NATS and returns a publisher.
func NewNATSPublisher(cfg NATSConfig) (*NATSPublisher, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("nats url is required")
	}
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = "pointwatch.points"
	}

	conn, err := nats.Connect(cfg.URL,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	slog.Info("NATS publisher initialized",
		slog.String("url", cfg.URL),
		logfields.Subject(cfg.SubjectPrefix))

	return &NATSPublisher{conn: conn, subjectPrefix: cfg.SubjectPrefix}, nil
}

// Publish implements Publisher. The subject is <prefix>.<point name>.
func (p *NATSPublisher) Publish(ctx context.Context, event ChangeEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := fmt.Sprintf("%s.%s", p.subjectPrefix, event.PointName)

	data, err := json.Marshal(event)
	if err != nil {
		return errors.WrapPublish(err, subject)
	}

	if err := p.conn.Publish(subject, data); err != nil {
		return errors.WrapPublish(err, subject)
	}

	slog.Debug("Published change event",
		logfields.Point(event.PointName),
		logfields.Subject(subject))
	return nil
}

// UpdateDriverRuntimeInfo implements RuntimeInfoSink on the <prefix>.runtime subject.
func (p *NATSPublisher) UpdateDriverRuntimeInfo(ctx context.Context, info DriverRuntimeInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject := p.subjectPrefix + ".runtime"

	data, err := json.Marshal(info)
	if err != nil {
		return errors.WrapPublish(err, subject)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return errors.WrapPublish(err, subject)
	}
	return nil
}

// Close drains and closes the NATS connection.
func (p *NATSPublisher) Close() error {
	if p.conn != nil {
		if err := p.conn.Drain(); err != nil {
			p.conn.Close()
			return err
		}
	}
	return nil
}
