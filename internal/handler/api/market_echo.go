package api

import (
	"time"

	models "MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
	"MarketPulse/internal/usecase"
	xhttp "MarketPulse/pkg/http"
	xlogger "MarketPulse/pkg/logger"
	"MarketPulse/pkg/util"

	"github.com/labstack/echo/v4"
)

// MarketEchoHandler implements Echo-based HTTP handlers following Clean Architecture.
type MarketEchoHandler struct {
	logger    *xlogger.Logger
	market    *usecase.MarketDataUseCase
	recommend *usecase.RecommendUseCase
	alerts    *usecase.AlertUseCase
	archive   domrepo.AlertStore
}

func NewMarketEchoHandler(
	logger *xlogger.Logger,
	market *usecase.MarketDataUseCase,
	recommend *usecase.RecommendUseCase,
	alerts *usecase.AlertUseCase,
	archive domrepo.AlertStore,
) *MarketEchoHandler {
	return &MarketEchoHandler{logger: logger, market: market, recommend: recommend, alerts: alerts, archive: archive}
}

func (h *MarketEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/market/prices", h.Prices)
	g.GET("/market/overview", h.Overview)
	g.GET("/market/trending/stocks", h.TrendingStocks)
	g.GET("/market/trending/crypto", h.TrendingCrypto)
	g.GET("/market/profile/:symbol", h.Profile)
	g.GET("/recommendations", h.Recommendations)
	g.GET("/alerts", h.Alerts)
	g.GET("/alerts/history", h.AlertHistory)
}

func (h *MarketEchoHandler) Prices(c echo.Context) error {
	req := &models.PricesRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	q := h.market.GetQuote(c.Request().Context(), req.Symbol)
	if q == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no quote for symbol %s", req.Symbol))
	}
	return xhttp.SuccessResponse(c, q)
}

func (h *MarketEchoHandler) Overview(c echo.Context) error {
	res := h.market.Overview(c.Request().Context())
	return xhttp.SuccessResponse(c, res)
}

func (h *MarketEchoHandler) TrendingStocks(c echo.Context) error {
	req := &models.TrendingRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	list := h.market.Trending(c.Request().Context(), models.AssetStock, req.Limit)
	if len(list) == 0 {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no trending stocks available"))
	}
	return xhttp.SuccessResponse(c, list)
}

func (h *MarketEchoHandler) TrendingCrypto(c echo.Context) error {
	req := &models.TrendingRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	list := h.market.Trending(c.Request().Context(), models.AssetCrypto, req.Limit)
	if len(list) == 0 {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("no trending cryptocurrencies available"))
	}
	return xhttp.SuccessResponse(c, list)
}

func (h *MarketEchoHandler) Profile(c echo.Context) error {
	req := &models.ProfileRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	p := h.market.Profile(c.Request().Context(), req.Symbol)
	if p == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundErrorf("no profile for symbol %s", req.Symbol))
	}
	return xhttp.SuccessResponse(c, p)
}

func (h *MarketEchoHandler) Recommendations(c echo.Context) error {
	req := &models.RecommendationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	rec := h.recommend.Recommend(c.Request().Context(), req.Symbol, req.Q)
	return xhttp.SuccessResponse(c, rec)
}

// Alerts runs an on-demand sweep over the configured universe. An empty
// sweep is a valid result, not a 404.
func (h *MarketEchoHandler) Alerts(c echo.Context) error {
	alerts := h.alerts.Sweep(c.Request().Context())
	if alerts == nil {
		alerts = []models.Alert{}
	}
	return xhttp.SuccessResponse(c, alerts)
}

// AlertHistory queries the archive for one symbol's past alerts. Only
// available when archiving is enabled.
func (h *MarketEchoHandler) AlertHistory(c echo.Context) error {
	if h.archive == nil {
		return xhttp.AppErrorResponse(c, xhttp.NotFoundError("alert archive is not enabled"))
	}
	symbol := c.QueryParam("symbol")
	if symbol == "" {
		return xhttp.BadRequestResponse(c, "symbol is required")
	}

	now := time.Now()
	from := util.ParseTimeDefault(c.QueryParam("from"), now.AddDate(0, 0, -7))
	to := util.ParseTimeDefault(c.QueryParam("to"), now)
	limit := util.ParseIntDefault(c.QueryParam("limit"), 100)

	alerts, err := h.archive.Query(c.Request().Context(), symbol, from, to, limit)
	if err != nil {
		h.logger.Error("alert history query failed", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("alert history query failed"))
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	return xhttp.SuccessResponse(c, alerts)
}
