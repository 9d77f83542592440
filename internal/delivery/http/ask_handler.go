package http

import (
	"errors"
	"net/http"

	"news-nexus/internal/dto"
	"news-nexus/internal/service"
	"news-nexus/pkg/logger"

	"github.com/labstack/echo/v4"
)

// AskHandler handles HTTP requests for question answering.
type AskHandler struct {
	ragService service.RAGService
	logger     *logger.Logger
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(ragService service.RAGService, logger *logger.Logger) *AskHandler {
	return &AskHandler{ragService: ragService, logger: logger}
}

// RegisterRoutes registers the ask routes to the Echo group.
func (h *AskHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/ask", h.Ask)
	g.GET("/health", h.Health)
}

// Ask godoc
// @Summary Answer a question over the news corpus
// @Description Retrieves the most relevant articles and generates a grounded answer
// @Tags ask
// @Accept  json
// @Produce  json
// @Param   question  body    dto.AskRequest   true    "Question to answer"
// @Success 200 {object} dto.AskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /ask [post]
func (h *AskHandler) Ask(c echo.Context) error {
	var req dto.AskRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Request must be JSON"})
	}

	result, err := h.ragService.Answer(c.Request().Context(), req.Question)
	if err != nil {
		if errors.Is(err, service.ErrEmptyQuestion) {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "JSON payload must include a non-empty 'question' key"})
		}
		h.logger.Error("Failed to process question", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "An internal server error occurred."})
	}

	return c.JSON(http.StatusOK, result)
}

// Health godoc
// @Summary Liveness probe
// @Produce  json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *AskHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
