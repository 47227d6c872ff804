package api

import (
	"errors"
	"net/http"

	"CoinCast/internal/domain/models"
	"CoinCast/internal/service/coingecko"
	"CoinCast/internal/usecase"
	xhttp "CoinCast/pkg/http"
	xlogger "CoinCast/pkg/logger"

	"github.com/labstack/echo/v4"
)

// ProxyEchoHandler exposes the CoinGecko API through the server.
type ProxyEchoHandler struct {
	logger *xlogger.Logger
	proxy  *usecase.CoinGeckoProxy
}

func NewProxyEchoHandler(logger *xlogger.Logger, proxy *usecase.CoinGeckoProxy) *ProxyEchoHandler {
	return &ProxyEchoHandler{logger: logger, proxy: proxy}
}

// CoinGecko answers GET /api/coingecko?endpoint=/path?query with the
// upstream body. X-Cache reports HIT or MISS.
func (h *ProxyEchoHandler) CoinGecko(c echo.Context) error {
	req := &models.ProxyRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	body, cached, err := h.proxy.Get(c.Request().Context(), req.Endpoint)
	if err != nil {
		return xhttp.AppErrorResponse(c, h.upstreamError(err))
	}

	state := "MISS"
	if cached {
		state = "HIT"
	}
	c.Response().Header().Set("X-Cache", state)
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSONCharsetUTF8, body)
}

func (h *ProxyEchoHandler) upstreamError(err error) *xhttp.AppError {
	if errors.Is(err, coingecko.ErrInvalidEndpoint) {
		return xhttp.BadRequestError("endpoint", err.Error())
	}

	var se *xhttp.StatusError
	if errors.As(err, &se) {
		h.logger.Warn("coingecko proxy upstream status", xlogger.Int("status", se.Code))
		if se.Code == http.StatusTooManyRequests {
			return xhttp.TooManyRequestsError("upstream rate limit exceeded").WithError(err)
		}
		if se.Code == http.StatusNotFound {
			return xhttp.NotFoundError("upstream endpoint not found").WithError(err)
		}
		return xhttp.BadGatewayError("upstream request failed").WithParam("upstream_status", se.Code).WithError(err)
	}

	h.logger.Error("coingecko proxy failed", xlogger.Error(err))
	return xhttp.BadGatewayError("upstream request failed").WithError(err)
}
