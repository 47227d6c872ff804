package api

import (
	"errors"
	"net/http"
	"strconv"

	"CoinCast/internal/domain/models"
	"CoinCast/internal/usecase"
	xhttp "CoinCast/pkg/http"
	xlogger "CoinCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// PredictEchoHandler serves predictions and model administration.
type PredictEchoHandler struct {
	logger    *xlogger.Logger
	predictor *usecase.Predictor
}

func NewPredictEchoHandler(logger *xlogger.Logger, predictor *usecase.Predictor) *PredictEchoHandler {
	return &PredictEchoHandler{logger: logger, predictor: predictor}
}

// Predict answers GET /predict?timestamp=N with a flat
// {"timestamp","predicted_price"} body.
func (h *PredictEchoHandler) Predict(c echo.Context) error {
	req := &models.PredictRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	ts, err := strconv.ParseInt(req.Timestamp, 10, 64)
	if err != nil {
		msg := "timestamp must be an integer"
		if errors.Is(err, strconv.ErrRange) {
			msg = "timestamp is out of range"
		}
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("timestamp", msg))
	}

	res, err := h.predictor.Predict(ts)
	if err != nil {
		return h.modelError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// Model returns the loaded model's metadata.
func (h *PredictEchoHandler) Model(c echo.Context) error {
	m, err := h.predictor.Current()
	if err != nil {
		return h.modelError(c, err)
	}
	return xhttp.SuccessResponse(c, m)
}

// Reload re-reads the artifact from disk.
func (h *PredictEchoHandler) Reload(c echo.Context) error {
	m, err := h.predictor.Reload(c.Request().Context())
	if err != nil {
		h.logger.Error("model reload failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("model reload failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, models.ReloadResponse{Reloaded: true, Model: *m})
}

func (h *PredictEchoHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *PredictEchoHandler) modelError(c echo.Context, err error) error {
	if errors.Is(err, usecase.ErrModelNotLoaded) {
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("model not loaded"))
	}
	h.logger.Error("predict usecase error", xlogger.Error(err))
	return xhttp.AppErrorResponse(c, err)
}
