// Package events publishes a summary of every completed simulation.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/terra-clan/readiness-engine/internal/models"
)

// ResultEvent is the message body written for each simulation
type ResultEvent struct {
	SimulationID string              `json:"simulation_id"`
	Status       models.ResultStatus `json:"status"`
	StudentID    string              `json:"student_id"`
	Role         string              `json:"role"`
	ScenarioID   string              `json:"scenario_id"`
	TotalScore   int                 `json:"total_score"`
	Grade        string              `json:"grade"`
	Urgency      string              `json:"improvement_urgency"`
	TotalGaps    int                 `json:"total_gaps"`
	Degraded     []string            `json:"degraded,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

// NewResultEvent summarizes a simulation result
func NewResultEvent(r models.SimulationResult) ResultEvent {
	return ResultEvent{
		SimulationID: r.ID,
		Status:       r.Status,
		StudentID:    r.Student.ID,
		Role:         r.Student.Role,
		ScenarioID:   r.Scenario.ID,
		TotalScore:   r.Evaluation.TotalScore,
		Grade:        r.Evaluation.Grade,
		Urgency:      r.GapAnalysis.Urgency,
		TotalGaps:    r.GapAnalysis.TotalGaps,
		Degraded:     r.Notes,
		CreatedAt:    r.CreatedAt,
	}
}

// Publisher delivers result events
type Publisher interface {
	Publish(ctx context.Context, result models.SimulationResult) error
	Close() error
}

// messageWriter is the part of kafka.Writer the publisher uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig contains the producer settings
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// KafkaPublisher writes one JSON event per result, keyed by result id
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

// NewKafkaPublisher constructs a publisher
func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka: at least one broker required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("kafka: topic required")
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 10 * time.Second
	}

	w := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      cfg.Brokers,
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: cfg.WriteTimeout,
	})

	return &KafkaPublisher{writer: w, topic: cfg.Topic}, nil
}

// Publish implements Publisher
func (p *KafkaPublisher) Publish(ctx context.Context, result models.SimulationResult) error {
	value, err := json.Marshal(NewResultEvent(result))
	if err != nil {
		return fmt.Errorf("kafka: marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(result.ID),
		Value: value,
		Time:  time.Now().UTC(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: write to %s: %w", p.topic, err)
	}
	return nil
}

// Close flushes and closes the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Nop discards events
type Nop struct{}

// Publish implements Publisher
func (Nop) Publish(context.Context, models.SimulationResult) error { return nil }

// Close implements Publisher
func (Nop) Close() error { return nil }
