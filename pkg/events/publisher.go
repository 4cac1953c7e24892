/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package events publishes device reachability transitions as CloudEvents
// on NATS JetStream.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/routerwatch/pkg/logger"
	"github.com/carverauto/routerwatch/pkg/models"
)

const (
	// ReachabilityEventType is the CloudEvents type of published transitions.
	ReachabilityEventType = "com.carverauto.routerwatch.device.reachability"

	eventSource = "routerwatch/scheduler"
)

var errNoURL = errors.New("nats url is required")

// publisher is the part of jetstream.JetStream used to publish.
type publisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// streamManager is the part of jetstream.JetStream used to provision the stream.
type streamManager interface {
	Stream(ctx context.Context, name string) (jetstream.Stream, error)
	CreateOrUpdateStream(ctx context.Context, cfg jetstream.StreamConfig) (jetstream.Stream, error)
}

// EventPublisher publishes reachability CloudEvents. Delivery is
// at-most-once; failures are returned to the caller.
type EventPublisher struct {
	js      publisher
	subject string
	now     func() time.Time
	logger  logger.Logger
}

func NewEventPublisher(js publisher, subject string, log logger.Logger) *EventPublisher {
	if subject == "" {
		subject = models.DefaultNATSSubject
	}

	return &EventPublisher{
		js:      js,
		subject: subject,
		now:     time.Now,
		logger:  logger.Component(log, "events"),
	}
}

// OnTransition publishes the change from previous to current. previous is
// nil for a device seen for the first time.
func (p *EventPublisher) OnTransition(ctx context.Context, previous, current *models.PingStatus) error {
	prevState := models.ReachabilityUnknown
	if previous != nil {
		prevState = models.ReachabilityState(previous.IsAlive)
	}

	ts := current.LastChecked
	if ts.IsZero() {
		ts = p.now().UTC()
	}

	return p.PublishReachability(ctx, &models.ReachabilityEventData{
		DeviceID:       current.DeviceID,
		Hostname:       current.Hostname,
		IPAddress:      current.IPAddress,
		PreviousState:  prevState,
		CurrentState:   models.ReachabilityState(current.IsAlive),
		Timestamp:      ts,
		ResponseTimeMs: current.ResponseTimeMs,
		Error:          current.Error,
	})
}

// PublishReachability wraps data in a CloudEvent and publishes it.
func (p *EventPublisher) PublishReachability(ctx context.Context, data *models.ReachabilityEventData) error {
	event := models.CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Source:          eventSource,
		Type:            ReachabilityEventType,
		DataContentType: "application/json",
		Subject:         p.subject,
		Time:            &data.Timestamp,
		Data:            data,
	}

	eventBytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal reachability event: %w", err)
	}

	ack, err := p.js.Publish(ctx, event.Subject, eventBytes)
	if err != nil {
		return fmt.Errorf("failed to publish reachability event: %w", err)
	}

	p.logger.Debug().
		Str("event_id", event.ID).
		Int64("device_id", data.DeviceID).
		Str("state", data.CurrentState).
		Uint64("seq", ack.Sequence).
		Msg("Published reachability event")

	return nil
}

// Connect dials NATS, makes sure the stream captures the configured subject
// and returns a publisher bound to it.
func Connect(ctx context.Context, cfg *models.NATSConfig, log logger.Logger, extraOpts ...nats.Option) (*EventPublisher, *nats.Conn, error) {
	if cfg.URL == "" {
		return nil, nil, errNoURL
	}

	log = logger.Component(log, "nats")

	opts := []nats.Option{
		nats.Name("routerwatch"),
		nats.MaxReconnects(-1),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	opts = append(opts, extraOpts...)

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if err := ensureStream(ctx, js, cfg.Stream, cfg.Subject); err != nil {
		nc.Close()
		return nil, nil, err
	}

	log.Info().
		Str("url", nc.ConnectedUrl()).
		Str("stream", cfg.Stream).
		Str("subject", cfg.Subject).
		Msg("Connected to NATS JetStream")

	return NewEventPublisher(js, cfg.Subject, log), nc, nil
}

func ensureStream(ctx context.Context, js streamManager, name, subject string) error {
	stream, err := js.Stream(ctx, name)
	if err != nil && !errors.Is(err, jetstream.ErrStreamNotFound) {
		return fmt.Errorf("failed to look up stream %s: %w", name, err)
	}

	cfg := jetstream.StreamConfig{Name: name}

	if stream != nil {
		cfg = stream.CachedInfo().Config

		if subjectCovered(cfg.Subjects, subject) {
			return nil
		}
	}

	cfg.Subjects = ensureSubjectList(cfg.Subjects, subject)

	if _, err := js.CreateOrUpdateStream(ctx, cfg); err != nil {
		return fmt.Errorf("failed to create or update stream %s: %w", name, err)
	}

	return nil
}

// ensureSubjectList appends subject unless an existing pattern covers it.
func ensureSubjectList(subjects []string, subject string) []string {
	if subjectCovered(subjects, subject) {
		return subjects
	}

	return append(subjects, subject)
}

func subjectCovered(patterns []string, subject string) bool {
	for _, p := range patterns {
		if matchesSubject(p, subject) {
			return true
		}
	}

	return false
}

// matchesSubject applies NATS wildcard rules: "*" matches one token and a
// trailing ">" matches one or more.
func matchesSubject(pattern, subject string) bool {
	pt := strings.Split(pattern, ".")
	st := strings.Split(subject, ".")

	for i, tok := range pt {
		if tok == ">" {
			return i == len(pt)-1 && len(st) > i
		}

		if i >= len(st) {
			return false
		}

		if tok != "*" && tok != st[i] {
			return false
		}
	}

	return len(pt) == len(st)
}
