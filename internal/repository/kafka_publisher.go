package repository

import (
	"context"

	"CoinPulse/internal/domain/models"
	"CoinPulse/internal/domain/repository"
	pkgkafka "CoinPulse/pkg/kafka"
)

// Topics names the Kafka topics CoinPulse writes to.
type Topics struct {
	Market     string
	ScoredNews string
}

// KafkaPublisher implements Publisher for Kafka. Market events are keyed by
// symbol and scored news by post id, so per-key ordering holds.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topics   Topics
	metrics  repository.Metrics
}

// NewKafkaPublisher creates Kafka publisher.
func NewKafkaPublisher(producer *pkgkafka.Producer, topics Topics, metrics repository.Metrics) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topics: topics, metrics: metrics}
}

func (p *KafkaPublisher) PublishMarket(ctx context.Context, ev *models.MarketEvent) error {
	if err := p.producer.Publish(ctx, p.topics.Market, []byte(ev.Symbol), ev); err != nil {
		return err
	}
	p.sent(p.topics.Market)
	return nil
}

func (p *KafkaPublisher) PublishScoredNews(ctx context.Context, n *models.ScoredNews) error {
	if err := p.producer.Publish(ctx, p.topics.ScoredNews, []byte(n.ID), n); err != nil {
		return err
	}
	p.sent(p.topics.ScoredNews)
	return nil
}

// PublishScoredBatch writes a page of scored news in one produce call.
func (p *KafkaPublisher) PublishScoredBatch(ctx context.Context, news []models.ScoredNews) error {
	if len(news) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(news))
	for i := range news {
		msgs[i] = pkgkafka.Message{Key: []byte(news[i].ID), Value: &news[i]}
	}
	if err := p.producer.PublishBatch(ctx, p.topics.ScoredNews, msgs); err != nil {
		return err
	}
	p.sent(p.topics.ScoredNews)
	return nil
}

func (p *KafkaPublisher) sent(topic string) {
	if p.metrics != nil {
		p.metrics.RecordMessageSent("kafka", topic)
	}
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NopPublisher drops every event. It stands in when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishMarket(context.Context, *models.MarketEvent) error    { return nil }
func (NopPublisher) PublishScoredNews(context.Context, *models.ScoredNews) error { return nil }
func (NopPublisher) Close() error                                                { return nil }

var (
	_ repository.Publisher = (*KafkaPublisher)(nil)
	_ repository.Publisher = NopPublisher{}
)
