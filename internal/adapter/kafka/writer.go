// Package kafka publishes rendered document chunks for downstream
// indexers. The sink is optional and only wired when brokers are
// configured.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/florahub/ecocrop-etl/internal/config"
	"github.com/florahub/ecocrop-etl/internal/domain"
	"github.com/florahub/ecocrop-etl/internal/pipeline"
)

// Writer produces document chunks to a Kafka topic. It implements
// pipeline.Sink.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured document topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// Load publishes every document chunk of a run in a single
// WriteMessages call, keyed by EcoPort code so re-runs compact cleanly.
func (w *Writer) Load(ctx context.Context, res *pipeline.Result) error {
	if len(res.Documents) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(res.Documents))
	for i, doc := range res.Documents {
		msg, err := serializeToMessage(doc, res.RunID)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write documents: %w", err)
	}
	w.logger.Info("documents published", "count", len(msgs), "run_id", res.RunID)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a document chunk into a Kafka message.
func serializeToMessage(doc domain.DocumentChunk, runID string) (kafkago.Message, error) {
	data, err := json.Marshal(struct {
		EcoPortCode    int    `json:"eco_port_code"`
		ScientificName string `json:"scientific_name"`
		Text           string `json:"text"`
	}{doc.EcoPortCode, doc.ScientificName, doc.Text})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize document chunk: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.Itoa(doc.EcoPortCode)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "scientific_name", Value: []byte(doc.ScientificName)},
			{Key: "run_id", Value: []byte(runID)},
		},
	}, nil
}
