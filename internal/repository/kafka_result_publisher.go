package repository

import (
	"context"
	"time"

	"github.com/neelpatelshah/swing-trader/internal/domain/models"
	domrepo "github.com/neelpatelshah/swing-trader/internal/domain/repository"
	pkgkafka "github.com/neelpatelshah/swing-trader/pkg/kafka"
)

// Event types carried in the envelope of every published message.
const (
	EventFeatures = "features"
	EventScore    = "score"
	EventSignal   = "signal"
)

// ResultEvent is the Kafka envelope for run outputs.
type ResultEvent struct {
	Type    string      `json:"type"`
	Date    string      `json:"date"`
	Rank    int         `json:"rank,omitempty"`
	Payload interface{} `json:"payload"`
}

// KafkaResultPublisher publishes run outputs keyed by symbol.
type KafkaResultPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaResultPublisher(producer *pkgkafka.Producer, topic string) *KafkaResultPublisher {
	return &KafkaResultPublisher{producer: producer, topic: topic}
}

func (p *KafkaResultPublisher) StoreFeatures(ctx context.Context, features []models.FeatureSet) error {
	return p.producer.PublishBatch(ctx, p.topic, FeatureMessages(features))
}

func (p *KafkaResultPublisher) StoreScores(ctx context.Context, scores []models.ScoreResult) error {
	return p.producer.PublishBatch(ctx, p.topic, ScoreMessages(scores))
}

func (p *KafkaResultPublisher) StoreSignal(ctx context.Context, signal *models.SignalResult) error {
	if signal == nil {
		return nil
	}
	msg := SignalMessage(*signal)
	return p.producer.Publish(ctx, p.topic, msg.Key, msg.Value)
}

func (p *KafkaResultPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// FeatureMessages builds one message per feature set.
func FeatureMessages(features []models.FeatureSet) []pkgkafka.Message {
	msgs := make([]pkgkafka.Message, len(features))
	for i, f := range features {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(f.Symbol),
			Value: ResultEvent{Type: EventFeatures, Date: f.Date.Format(time.DateOnly), Payload: f},
		}
	}
	return msgs
}

// ScoreMessages builds one message per score, carrying the leaderboard rank.
func ScoreMessages(scores []models.ScoreResult) []pkgkafka.Message {
	msgs := make([]pkgkafka.Message, len(scores))
	for i, s := range scores {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(s.Symbol),
			Value: ResultEvent{Type: EventScore, Date: s.Date.Format(time.DateOnly), Rank: i + 1, Payload: s},
		}
	}
	return msgs
}

// SignalMessage builds the message for the holding's signal.
func SignalMessage(s models.SignalResult) pkgkafka.Message {
	return pkgkafka.Message{
		Key:   []byte(s.CurrentSymbol),
		Value: ResultEvent{Type: EventSignal, Date: s.Date.Format(time.DateOnly), Payload: s},
	}
}

var _ domrepo.ResultSink = (*KafkaResultPublisher)(nil)
