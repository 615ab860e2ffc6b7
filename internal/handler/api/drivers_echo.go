package api

import (
	"strings"
	"time"

	"MacroLens/internal/domain/models"
	drepo "MacroLens/internal/domain/repository"
	domsvc "MacroLens/internal/domain/service"
	"MacroLens/pkg/cache"
	xhttp "MacroLens/pkg/http"
	xlogger "MacroLens/pkg/logger"
	"MacroLens/pkg/util"

	"github.com/labstack/echo/v4"
)

var defaultRegimeStart = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// DriversEchoHandler exposes the scan and valuation operations over HTTP.
type DriversEchoHandler struct {
	logger  *xlogger.Logger
	scanner domsvc.DriverScanner
	valuer  domsvc.Valuer
	store   drepo.SeriesStore
	cache   cache.Service
	scanTTL time.Duration
}

func NewDriversEchoHandler(
	logger *xlogger.Logger,
	scanner domsvc.DriverScanner,
	valuer domsvc.Valuer,
	store drepo.SeriesStore,
) *DriversEchoHandler {
	return &DriversEchoHandler{logger: logger, scanner: scanner, valuer: valuer, store: store}
}

// SetCache enables scan memoization. Valuations are never cached; the driver
// selection varies per request and the fit is cheap next to the fetches.
func (h *DriversEchoHandler) SetCache(c cache.Service, ttl time.Duration) {
	h.cache = c
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	h.scanTTL = ttl
}

func (h *DriversEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/scan", h.Scan)
	g.POST("/valuation", h.Valuation)
	e.GET("/healthz", h.Health)
}

func (h *DriversEchoHandler) Scan(c echo.Context) error {
	req := &models.ScanRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	params := domsvc.ScanParams{
		TargetID:     req.Target,
		DriverIDs:    splitCSV(req.Drivers),
		RegimeStart:  util.ParseTimeDefault(req.From, defaultRegimeStart),
		ForceInclude: splitCSV(req.Force),
		Seed:         req.Seed,
	}

	// Seeded scans are for reproducibility runs; keep them out of the cache.
	cacheable := h.cache != nil && req.Seed == 0
	key := cache.GenerateKeyWithParams("scan", req.Target, req.From, req.Drivers, req.Force)
	if cacheable {
		var cached []models.Finding
		if err := h.cache.Get(c.Request().Context(), key, &cached); err == nil {
			return xhttp.SuccessResponse(c, cached)
		}
	}

	findings, err := h.scanner.Scan(c.Request().Context(), params)
	if err != nil {
		h.logger.Error("scan usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}

	if cacheable {
		if err := h.cache.Set(c.Request().Context(), key, findings, h.scanTTL); err != nil {
			h.logger.Warn("scan cache set failed", xlogger.Error(err))
		}
	}
	return xhttp.SuccessResponse(c, findings)
}

func (h *DriversEchoHandler) Valuation(c echo.Context) error {
	req := &models.ValuationRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	report, err := h.valuer.Valuate(c.Request().Context(), domsvc.ValuationParams{
		TargetID: req.Target,
		Drivers:  req.Drivers,
		Cutoff:   util.ParseTimeDefault(req.Cutoff, defaultRegimeStart),
	})
	if err != nil {
		h.logger.Error("valuation usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if report == nil {
		return xhttp.NotFoundResponse(c, "not enough overlapping data to fit a model")
	}
	return xhttp.SuccessResponse(c, report)
}

func (h *DriversEchoHandler) Health(c echo.Context) error {
	status := map[string]string{"status": "ok"}
	if h.store != nil {
		if err := h.store.Health(c.Request().Context()); err != nil {
			status["store"] = "unavailable"
		} else {
			status["store"] = "ok"
		}
	}
	return xhttp.SuccessResponse(c, status)
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
