package api

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tphakala/go-audiofilters/internal/audiofilters"
	"github.com/tphakala/go-audiofilters/internal/errors"
	"github.com/tphakala/go-audiofilters/internal/logger"
	"github.com/tphakala/go-audiofilters/internal/pipeline"
)

// APIPrefix is the route prefix of every JSON endpoint.
const APIPrefix = "/api/v1"

// StatusSource reports the pipeline slots.
type StatusSource interface {
	Status() []pipeline.SlotStatus
}

// Controller serves the settings panel and the Equalizer GUI.
type Controller struct {
	bundle   *audiofilters.Bundle
	panel    *audiofilters.Panel
	gui      *audiofilters.EqualizerGUI
	pipeline StatusSource
	metrics  http.Handler
	log      logger.Logger
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithPipeline exposes the pipeline slots under /pipeline.
func WithPipeline(p StatusSource) ControllerOption {
	return func(c *Controller) {
		c.pipeline = p
	}
}

// WithMetricsHandler serves h at /metrics.
func WithMetricsHandler(h http.Handler) ControllerOption {
	return func(c *Controller) {
		c.metrics = h
	}
}

// NewController creates a controller over bundle and panel. The Equalizer
// GUI instance is created here, so the bundle's rebuilder must already be
// attached.
func NewController(bundle *audiofilters.Bundle, panel *audiofilters.Panel, opts ...ControllerOption) (*Controller, error) {
	if bundle == nil || panel == nil {
		return nil, errors.Newf("controller requires a bundle and a settings panel").
			Component("api").
			Category(errors.CategoryValidation).
			Build()
	}
	gui, ok := bundle.CreateInstance(audiofilters.NameEqualizerGUI).(*audiofilters.EqualizerGUI)
	if !ok {
		return nil, errors.Newf("bundle did not provide %q", audiofilters.NameEqualizerGUI).
			Component("api").
			Category(errors.CategoryNotFound).
			Build()
	}

	c := &Controller{
		bundle: bundle,
		panel:  panel,
		gui:    gui,
		log:    GetLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// RegisterRoutes adds every endpoint to e.
func (c *Controller) RegisterRoutes(e *echo.Echo) {
	g := e.Group(APIPrefix)

	g.GET("/filters", c.GetFilters)
	g.GET("/pipeline", c.GetPipeline)

	settings := g.Group("/settings")
	settings.GET("", c.GetSettings)
	settings.PUT("/bs2b", c.UpdateBS2B)
	settings.PUT("/voiceremoval", c.UpdateVoiceRemoval)
	settings.PUT("/phasereverse", c.UpdatePhaseReverse)
	settings.PUT("/echo", c.UpdateEcho)
	settings.PUT("/compressor", c.UpdateCompressor)
	settings.PUT("/equalizer", c.StageEqualizer)
	settings.POST("/equalizer/save", c.SaveEqualizer)

	eq := g.Group("/equalizer")
	eq.GET("", c.GetEqualizer)
	eq.PUT("/bands/:index", c.UpdateBand)
	eq.PUT("/enabled", c.UpdateEqualizerEnabled)
	eq.POST("/reset", c.ResetEqualizer)

	if c.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(c.metrics))
	}
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Code          int    `json:"code"`
	CorrelationID string `json:"correlation_id"`
}

// NewErrorResponse creates an error response with a fresh correlation ID.
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	errorStr := message
	if err != nil {
		errorStr = err.Error()
	}
	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: uuid.New().String()[:8],
	}
}

// HandleError logs err and writes it as an ErrorResponse.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	resp := NewErrorResponse(err, message, code)
	c.log.Error("API error",
		logger.String("correlation_id", resp.CorrelationID),
		logger.String("message", message),
		logger.String("error", resp.Error),
		logger.Int("code", code),
		logger.String("path", ctx.Request().URL.Path),
		logger.String("method", ctx.Request().Method),
		logger.String("ip", ctx.RealIP()))
	return ctx.JSON(code, resp)
}

// statusFor maps an error category to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.IsValidation(err):
		return http.StatusBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// handleEditError writes a failed settings edit.
func (c *Controller) handleEditError(ctx echo.Context, err error, group string) error {
	code := statusFor(err)
	message := "Failed to update " + group + " settings"
	switch {
	case code == http.StatusBadRequest:
		message = "Invalid " + group + " settings"
	case errors.IsCategory(err, errors.CategoryPipeline):
		message = "Settings saved but the " + group + " filter could not be rebuilt"
	}
	return c.HandleError(ctx, err, message, code)
}

// badRequest writes a body that could not be decoded.
func (c *Controller) badRequest(ctx echo.Context, err error) error {
	return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
}

// FilterEntry is one catalog entry.
type FilterEntry struct {
	Name string            `json:"name"`
	Kind audiofilters.Kind `json:"kind"`
}

// GetFilters lists the catalog in enumeration order.
func (c *Controller) GetFilters(ctx echo.Context) error {
	modules := c.bundle.ModulesInfo()
	out := make([]FilterEntry, 0, len(modules))
	for _, m := range modules {
		out = append(out, FilterEntry(m))
	}
	return ctx.JSON(http.StatusOK, out)
}

// GetPipeline lists the pipeline slots.
func (c *Controller) GetPipeline(ctx echo.Context) error {
	if c.pipeline == nil {
		return c.HandleError(ctx, nil, "No pipeline attached", http.StatusNotFound)
	}
	return ctx.JSON(http.StatusOK, c.pipeline.Status())
}

// SettingsResponse is the panel state plus the selectable FIR sizes.
type SettingsResponse struct {
	audiofilters.PanelState
	QualityLabels []string `json:"quality_labels"`
}

// GetSettings returns the panel state.
func (c *Controller) GetSettings(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, SettingsResponse{
		PanelState:    c.panel.State(),
		QualityLabels: audiofilters.QualityLabels(),
	})
}

// ToggleRequest enables or disables a single-flag filter.
type ToggleRequest struct {
	Enabled bool `json:"enabled"`
}

// UpdateBS2B toggles the crossfeed.
func (c *Controller) UpdateBS2B(ctx echo.Context) error {
	var req ToggleRequest
	if err := ctx.Bind(&req); err != nil {
		return c.badRequest(ctx, err)
	}
	if err := c.panel.ToggleBS2B(req.Enabled); err != nil {
		return c.handleEditError(ctx, err, "bs2b")
	}
	return c.GetSettings(ctx)
}

// UpdateVoiceRemoval toggles voice removal.
func (c *Controller) UpdateVoiceRemoval(ctx echo.Context) error {
	var req ToggleRequest
	if err := ctx.Bind(&req); err != nil {
		return c.badRequest(ctx, err)
	}
	if err := c.panel.ToggleVoiceRemoval(req.Enabled); err != nil {
		return c.handleEditError(ctx, err, "voice removal")
	}
	return c.GetSettings(ctx)
}

// PhaseReverseRequest sets the phase reverse group.
type PhaseReverseRequest struct {
	Enabled      bool `json:"enabled"`
	ReverseRight bool `json:"reverse_right"`
}

// UpdatePhaseReverse writes the phase reverse group.
func (c *Controller) UpdatePhaseReverse(ctx echo.Context) error {
	var req PhaseReverseRequest
	if err := ctx.Bind(&req); err != nil {
		return c.badRequest(ctx, err)
	}
	if err := c.panel.SetPhaseReverse(req.Enabled, req.ReverseRight); err != nil {
		return c.handleEditError(ctx, err, "phase reverse")
	}
	return c.GetSettings(ctx)
}

// UpdateEcho writes the echo group.
func (c *Controller) UpdateEcho(ctx echo.Context) error {
	var req audiofilters.EchoEdit
	if err := ctx.Bind(&req); err != nil {
		return c.badRequest(ctx, err)
	}
	if err := c.panel.EditEcho(req); err != nil {
		return c.handleEditError(ctx, err, "echo")
	}
	return c.GetSettings(ctx)
}

// UpdateCompressor writes the compressor group from slider positions.
func (c *Controller) UpdateCompressor(ctx echo.Context) error {
	var req audiofilters.CompressorSliders
	if err := ctx.Bind(&req); err != nil {
		return c.badRequest(ctx, err)
	}
	if err := c.panel.EditCompressor(req); err != nil {
		return c.handleEditError(ctx, err, "compressor")
	}
	return c.GetSettings(ctx)
}

// StageEqualizer holds equalizer layout fields until SaveEqualizer.
func (c *Controller) StageEqualizer(ctx echo.Context) error {
	var req audiofilters.EqualizerStage
	if err := ctx.Bind(&req); err != nil {
		return c.badRequest(ctx, err)
	}
	if err := c.panel.StageEqualizer(req); err != nil {
		return c.handleEditError(ctx, err, "equalizer")
	}
	return c.GetSettings(ctx)
}

// SaveEqualizer commits the staged equalizer layout.
func (c *Controller) SaveEqualizer(ctx echo.Context) error {
	if err := c.panel.SaveSettings(); err != nil {
		return c.handleEditError(ctx, err, "equalizer")
	}
	return c.GetSettings(ctx)
}

// EqualizerResponse is the Equalizer GUI view of the equalizer group.
type EqualizerResponse struct {
	Enabled     bool      `json:"enabled"`
	Preamp      int       `json:"preamp"`
	Bands       []int     `json:"bands"`
	Frequencies []float64 `json:"frequencies"`
}

// GetEqualizer returns the preamp, band values and centre frequencies.
func (c *Controller) GetEqualizer(ctx echo.Context) error {
	cfg := c.gui.Config()
	var bands []int
	if len(cfg.Bands) > 1 {
		bands = cfg.Bands[1:]
	}
	return ctx.JSON(http.StatusOK, EqualizerResponse{
		Enabled:     cfg.Enabled,
		Preamp:      cfg.Preamp(),
		Bands:       bands,
		Frequencies: cfg.Frequencies(),
	})
}

// BandRequest sets one band value.
type BandRequest struct {
	Value int `json:"value"`
}

// UpdateBand sets band :index; index -1 is the preamp.
func (c *Controller) UpdateBand(ctx echo.Context) error {
	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		return c.HandleError(ctx, err, "Band index must be an integer", http.StatusBadRequest)
	}
	var req BandRequest
	if err := ctx.Bind(&req); err != nil {
		return c.badRequest(ctx, err)
	}
	if err := c.gui.SetBand(index, req.Value); err != nil {
		return c.handleEditError(ctx, err, "equalizer band")
	}
	return c.GetEqualizer(ctx)
}

// UpdateEqualizerEnabled toggles the equalizer from the band editor.
func (c *Controller) UpdateEqualizerEnabled(ctx echo.Context) error {
	var req ToggleRequest
	if err := ctx.Bind(&req); err != nil {
		return c.badRequest(ctx, err)
	}
	if err := c.gui.SetEnabled(req.Enabled); err != nil {
		return c.handleEditError(ctx, err, "equalizer")
	}
	return c.GetEqualizer(ctx)
}

// ResetEqualizer sets the preamp and every band to neutral.
func (c *Controller) ResetEqualizer(ctx echo.Context) error {
	if err := c.gui.Reset(); err != nil {
		return c.handleEditError(ctx, err, "equalizer")
	}
	return c.GetEqualizer(ctx)
}
