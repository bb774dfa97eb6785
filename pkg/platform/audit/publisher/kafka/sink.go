// Package kafka streams committed change log entries to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "kycreview/pkg/platform/audit"
)

// Message is the JSON value of a change log record.
type Message struct {
	ID           string `json:"id"`
	SubmissionID string `json:"submission_id"`
	Action       string `json:"action"`
	Field        string `json:"field,omitempty"`
	OldValue     string `json:"old_value,omitempty"`
	NewValue     string `json:"new_value,omitempty"`
	Comment      string `json:"comment,omitempty"`
	ActorType    string `json:"actor_type"`
	ActorID      string `json:"actor_id"`
	Timestamp    string `json:"timestamp"`
	RequestID    string `json:"request_id,omitempty"`
}

func toMessage(e audit.Entry) Message {
	return Message{
		ID:           e.ID.String(),
		SubmissionID: e.SubmissionID.String(),
		Action:       string(e.Action),
		Field:        e.Field,
		OldValue:     e.OldValue,
		NewValue:     e.NewValue,
		Comment:      e.Comment,
		ActorType:    string(e.ActorType),
		ActorID:      e.ActorID,
		Timestamp:    e.Timestamp.UTC().Format(time.RFC3339Nano),
		RequestID:    e.RequestID,
	}
}

// Sink produces one record per entry, keyed by submission ID so a
// submission's history stays ordered within its partition.
type Sink struct {
	client *kgo.Client
	topic  string
}

// NewSink connects to brokers. The client is owned by the Sink.
func NewSink(brokers []string, topic string) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(5*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Sink{client: client, topic: topic}, nil
}

// EnsureTopic creates the topic when it does not exist yet.
func (s *Sink) EnsureTopic(ctx context.Context, partitions int32, replicationFactor int16) error {
	adm := kadm.NewClient(s.client)
	resp, err := adm.CreateTopics(ctx, partitions, replicationFactor, nil, s.topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", s.topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}

func (s *Sink) Publish(ctx context.Context, entries []audit.Entry) error {
	records := make([]*kgo.Record, 0, len(entries))
	for _, e := range entries {
		value, err := json.Marshal(toMessage(e))
		if err != nil {
			return fmt.Errorf("marshal change log entry: %w", err)
		}
		records = append(records, &kgo.Record{
			Key:   []byte(e.SubmissionID.String()),
			Value: value,
		})
	}
	if err := s.client.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return fmt.Errorf("produce change log entries: %w", err)
	}
	return nil
}

// Ping checks broker connectivity.
func (s *Sink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *Sink) Close() {
	s.client.Close()
}
