package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/witness-archive/internal/adapters/http/dto"
	"github.com/jsamuelsen/witness-archive/internal/app"
)

// cursorField names the sort field encoded in list cursors.
const cursorField = "published_at"

// ArchiveHandler handles testimony archive HTTP endpoints.
type ArchiveHandler struct {
	service     *app.ArchiveService
	maxPageSize int
}

// NewArchiveHandler creates a new archive handler. maxPageSize caps the
// per-page item count regardless of the client-requested limit; values
// below 1 fall back to the dto maximum.
func NewArchiveHandler(service *app.ArchiveService, maxPageSize int) *ArchiveHandler {
	if maxPageSize < 1 {
		maxPageSize = dto.MaxLimit
	}

	return &ArchiveHandler{
		service:     service,
		maxPageSize: maxPageSize,
	}
}

// GetOverview handles GET /api/v1/archive/overview
// Returns the headline metrics for the current filter selection.
//
// @Summary Get dashboard overview metrics
// @Description Returns total, filtered, and original-URL row counts
// @Tags archive
// @Produce json
// @Success 200 {object} dto.OverviewResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/archive/overview [get]
func (h *ArchiveHandler) GetOverview(c *gin.Context) {
	var req dto.FilterRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	overview, err := h.service.Overview(c.Request.Context(), req.ToFilter())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OverviewResponse{
		TotalRows:    overview.TotalRows,
		FilteredRows: overview.FilteredRows,
		OriginalURLs: overview.OriginalURLs,
	})
}

// ListTestimonies handles GET /api/v1/archive/testimonies
// Returns a filtered, cursor-paginated page of testimonies, newest first.
//
// @Summary List testimonies
// @Description Returns filtered testimonies sorted newest-first with cursor pagination
// @Tags archive
// @Produce json
// @Param emotion query []string false "Emotion tags (repeatable)"
// @Param theme query []string false "Theme tags (repeatable)"
// @Param source query []string false "Source names (repeatable)"
// @Param url_status query string false "URL status filter" Enums(all, original, missing)
// @Param from query string false "Inclusive start date (YYYY-MM-DD)"
// @Param to query string false "Inclusive end date (YYYY-MM-DD)"
// @Param cursor query string false "Opaque pagination cursor"
// @Param limit query int false "Page size (1-100, default 20)"
// @Success 200 {object} dto.PaginatedResponse[dto.TestimonyResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/archive/testimonies [get]
func (h *ArchiveHandler) ListTestimonies(c *gin.Context) {
	var req dto.ListTestimoniesRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	limit := req.GetLimit()
	if limit > h.maxPageSize {
		limit = h.maxPageSize
	}

	query := app.ListQuery{
		Filter: req.ToFilter(),
		// Ask for one extra row to detect whether more pages exist.
		Limit: limit + 1,
	}

	cursor, err := req.DecodeCursor()
	if err == nil {
		after, parseErr := time.Parse(time.RFC3339, cursor.Value)
		if parseErr != nil || cursor.Field != cursorField {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
				dto.ErrorCodeBadRequest,
				"invalid pagination cursor",
			).WithTraceID(dto.GetTraceID(c)))

			return
		}

		query.AfterTime = after
		query.AfterID = cursor.ID
	} else if !errors.Is(err, dto.ErrNoCursor) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.ErrorCodeBadRequest,
			"invalid pagination cursor",
		).WithTraceID(dto.GetTraceID(c)))

		return
	}

	result, err := h.service.ListTestimonies(c.Request.Context(), query)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	items := make([]*dto.TestimonyResponse, 0, len(result.Items))
	published := make(map[string]time.Time, len(result.Items))

	for i := range result.Items {
		t := &result.Items[i]
		items = append(items, dto.ToTestimonyResponse(t))
		published[t.ID] = t.PublishedAt
	}

	resp := dto.NewPaginatedResponse(items, limit, func(item *dto.TestimonyResponse) *dto.CursorData {
		return dto.NewCursor(cursorField, published[item.ID].Format(time.RFC3339), item.ID)
	})

	c.JSON(http.StatusOK, resp)
}

// GetTestimonyByID handles GET /api/v1/archive/testimonies/:id
// Returns a single testimony by its identifier.
//
// @Summary Get a testimony by ID
// @Description Fetches a specific testimony by its identifier
// @Tags archive
// @Produce json
// @Param id path string true "Testimony ID"
// @Success 200 {object} dto.TestimonyResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/archive/testimonies/{id} [get]
func (h *ArchiveHandler) GetTestimonyByID(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(
			dto.ErrorCodeBadRequest,
			"testimony ID is required",
		).WithTraceID(dto.GetTraceID(c)))

		return
	}

	testimony, err := h.service.GetTestimony(c.Request.Context(), id)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTestimonyResponse(testimony))
}

// chartTypeRequest carries the chart rendering selector for breakdown
// endpoints alongside the shared filter parameters.
type chartTypeRequest struct {
	dto.FilterRequest

	Type string `form:"type" validate:"omitempty,oneof=bar pie"`
}

// GetEmotionChart handles GET /api/v1/archive/charts/emotions
// Returns the per-emotion breakdown as a render-ready chart.
//
// @Summary Get the emotion breakdown chart
// @Description Aggregates filtered testimonies per emotion tag
// @Tags archive
// @Produce json
// @Param type query string false "Chart type" Enums(bar, pie) default(bar)
// @Success 200 {object} dto.ChartResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/archive/charts/emotions [get]
func (h *ArchiveHandler) GetEmotionChart(c *gin.Context) {
	var req chartTypeRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	result, err := h.service.EmotionBreakdown(c.Request.Context(), req.ToFilter(), req.Type)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewChartResponse(result.Matches, result.Groups, result.Chart))
}

// GetThemeChart handles GET /api/v1/archive/charts/themes
// Returns the per-theme breakdown as a render-ready chart.
//
// @Summary Get the theme breakdown chart
// @Description Aggregates filtered testimonies per theme tag
// @Tags archive
// @Produce json
// @Param type query string false "Chart type" Enums(bar, pie) default(bar)
// @Success 200 {object} dto.ChartResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/archive/charts/themes [get]
func (h *ArchiveHandler) GetThemeChart(c *gin.Context) {
	var req chartTypeRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	result, err := h.service.ThemeBreakdown(c.Request.Context(), req.ToFilter(), req.Type)
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewChartResponse(result.Matches, result.Groups, result.Chart))
}

// GetTimelineChart handles GET /api/v1/archive/charts/timeline
// Returns the per-day publication counts as a line chart.
//
// @Summary Get the publication timeline chart
// @Description Aggregates filtered testimonies per publication day
// @Tags archive
// @Produce json
// @Success 200 {object} dto.ChartResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/archive/charts/timeline [get]
func (h *ArchiveHandler) GetTimelineChart(c *gin.Context) {
	var req dto.FilterRequest
	if err := dto.BindQueryAndValidate(c, &req); err != nil {
		dto.HandleError(c, err)
		return
	}

	result, err := h.service.Timeline(c.Request.Context(), req.ToFilter())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewChartResponse(result.Matches, nil, result.Chart))
}

// GetFilterOptions handles GET /api/v1/archive/filters
// Returns the selectable values for each filter dimension.
//
// @Summary Get filter options
// @Description Returns distinct values per filter dimension and the date bounds of the table
// @Tags archive
// @Produce json
// @Success 200 {object} dto.FilterOptionsResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/v1/archive/filters [get]
func (h *ArchiveHandler) GetFilterOptions(c *gin.Context) {
	options, err := h.service.FilterOptions(c.Request.Context())
	if err != nil {
		dto.HandleError(c, err)
		return
	}

	resp := dto.FilterOptionsResponse{
		Emotions:    options.Emotions,
		Themes:      options.Themes,
		Sources:     options.Sources,
		URLStatuses: options.URLStatuses,
	}
	if !options.DateFrom.IsZero() {
		resp.DateFrom = options.DateFrom.Format("2006-01-02")
	}

	if !options.DateTo.IsZero() {
		resp.DateTo = options.DateTo.Format("2006-01-02")
	}

	c.JSON(http.StatusOK, resp)
}

// RegisterArchiveRoutes registers archive routes on the given router group.
func (h *ArchiveHandler) RegisterArchiveRoutes(rg *gin.RouterGroup) {
	archive := rg.Group("/archive")
	archive.GET("/overview", h.GetOverview)
	archive.GET("/testimonies", h.ListTestimonies)
	archive.GET("/testimonies/:id", h.GetTestimonyByID)
	archive.GET("/charts/emotions", h.GetEmotionChart)
	archive.GET("/charts/themes", h.GetThemeChart)
	archive.GET("/charts/timeline", h.GetTimelineChart)
	archive.GET("/filters", h.GetFilterOptions)
}
