package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandler struct {
	topic string
	calls int
	fn    func(call int) error
}

func (h *stubHandler) Topic() string { return h.topic }

func (h *stubHandler) Handle(_ context.Context, _ []byte) error {
	h.calls++
	return h.fn(h.calls)
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	_, err := NewProducer(Config{})
	require.Error(t, err)

	p, err := NewProducer(Config{Brokers: []string{"localhost:9092"}})
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestNewConsumerRequiresBrokers(t *testing.T) {
	_, err := NewConsumer()
	require.Error(t, err)

	c, err := NewConsumer(WithConsumerBrokers([]string{"localhost:9092"}))
	require.NoError(t, err)
	assert.Error(t, c.Start(), "start without handlers")
}

func TestParseCompression(t *testing.T) {
	assert.Equal(t, kafka.Snappy, parseCompression("snappy"))
	assert.Equal(t, kafka.Zstd, parseCompression("zstd"))
	assert.Equal(t, kafka.Gzip, parseCompression("unknown"))
}

func TestBackoffWithJitterBounds(t *testing.T) {
	min, max := 100*time.Millisecond, time.Second
	for attempt := 1; attempt <= 40; attempt++ {
		d := backoffWithJitter(min, max, attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, max)
	}
}

func TestHandleRetriesThenSucceeds(t *testing.T) {
	c, err := NewConsumer(
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRetry(3, time.Millisecond, 2*time.Millisecond),
	)
	require.NoError(t, err)

	h := &stubHandler{topic: "runs", fn: func(call int) error {
		if call < 3 {
			return errors.New("transient")
		}
		return nil
	}}
	require.NoError(t, c.handle(h, kafka.Message{Value: []byte("{}")}))
	assert.Equal(t, 3, h.calls)
}

func TestHandleGivesUpAfterRetries(t *testing.T) {
	c, err := NewConsumer(
		WithConsumerBrokers([]string{"localhost:9092"}),
		WithConsumerRetry(1, time.Millisecond, time.Millisecond),
	)
	require.NoError(t, err)

	h := &stubHandler{topic: "runs", fn: func(int) error { panic("boom") }}
	err = c.handle(h, kafka.Message{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic")
	assert.Equal(t, 2, h.calls)
}

func TestRegisterHandlerKeepsFirst(t *testing.T) {
	c, err := NewConsumer(WithConsumerBrokers([]string{"localhost:9092"}))
	require.NoError(t, err)

	first := &stubHandler{topic: "runs"}
	c.RegisterHandler(first)
	c.RegisterHandler(&stubHandler{topic: "runs"})
	assert.Same(t, first, c.handlers["runs"])
}

func TestEncodeValue(t *testing.T) {
	b, err := encodeValue(map[string]float64{"swing_score": 73})
	require.NoError(t, err)
	assert.JSONEq(t, `{"swing_score":73}`, string(b))

	b, err = encodeValue("raw")
	require.NoError(t, err)
	assert.Equal(t, "raw", string(b))

	_, err = encodeValue(make(chan int))
	assert.Error(t, err)
}

func TestNewWriterFromConfig(t *testing.T) {
	cfg := Config{
		Brokers:      []string{"k1:9092", "k2:9092"},
		RequiredAcks: 1,
		Compression:  "zstd",
		MaxAttempts:  5,
		BatchSize:    50,
		BatchTimeout: 100 * time.Millisecond,
		WriteTimeout: 3 * time.Second,
	}
	w := newWriter(cfg.withFallbacks())

	assert.IsType(t, &kafka.Hash{}, w.Balancer)
	assert.Equal(t, kafka.RequireOne, w.RequiredAcks)
	assert.Equal(t, kafka.Zstd, w.Compression)
	assert.Equal(t, 50, w.BatchSize)
	assert.Equal(t, 3*time.Second, w.ReadTimeout)
}

func TestConfigFallbacks(t *testing.T) {
	cfg := Config{Brokers: []string{"k:9092"}, RequiredAcks: -1}.withFallbacks()
	assert.Equal(t, "gzip", cfg.Compression)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 100, cfg.BatchSize)
	assert.Equal(t, 10*time.Second, cfg.WriteTimeout)
	assert.Equal(t, kafka.RequireAll, newWriter(cfg).RequiredAcks)
}
