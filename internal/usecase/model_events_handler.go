package usecase

import (
	"context"
	"encoding/json"

	"CoinCast/internal/domain/models"
	drepo "CoinCast/internal/domain/repository"
	applogger "CoinCast/pkg/logger"
)

// ModelEventsHandler installs models announced on Kafka.
type ModelEventsHandler struct {
	topic     string
	predictor *Predictor
	metrics   drepo.Metrics
	log       *applogger.Logger
}

func NewModelEventsHandler(topic string, predictor *Predictor, metrics drepo.Metrics, log *applogger.Logger) *ModelEventsHandler {
	return &ModelEventsHandler{topic: topic, predictor: predictor, metrics: metrics, log: log}
}

func (h *ModelEventsHandler) Topic() string { return h.topic }

// Handle never returns an error for payloads that can not succeed on retry;
// those are logged and skipped so their offset is committed.
func (h *ModelEventsHandler) Handle(_ context.Context, b []byte) error {
	var ev models.ModelEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		h.metrics.RecordError("model_event_decode")
		h.log.Error("model event decode failed", applogger.Error(err))
		return nil
	}
	if ev.Type != models.EventModelTrained {
		h.log.Debug("model event ignored", applogger.String("type", ev.Type))
		return nil
	}
	if err := h.predictor.Install(&ev.Model); err != nil {
		h.log.Error("model event rejected",
			applogger.Int("version", ev.Model.Version),
			applogger.Error(err),
		)
		return nil
	}
	return nil
}
