package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/camaradevs/pautacamara/internal/models"
	"github.com/camaradevs/pautacamara/internal/services"
)

// PautaHandler serves the aggregated agenda API
type PautaHandler struct {
	agg *services.Aggregator
}

// NewPautaHandler creates a new pauta handler
func NewPautaHandler(agg *services.Aggregator) *PautaHandler {
	return &PautaHandler{agg: agg}
}

// RegisterRoutes wires the handler's routes on the app
func (h *PautaHandler) RegisterRoutes(app *fiber.App) {
	app.Get("/health", h.Health)
	app.Get("/api/pauta/:data", h.GetPauta)
}

// pautaResponse is the JSON projection of an aggregation result
type pautaResponse struct {
	TemSessao  bool               `json:"tem_sessao"`
	Data       string             `json:"data,omitempty"`
	Situacao   string             `json:"situacao,omitempty"`
	Mensagem   string             `json:"mensagem,omitempty"`
	ItensPauta []models.ItemPauta `json:"itens_pauta,omitempty"`
	Erro       string             `json:"erro,omitempty"`
}

// GetPauta returns the fully aggregated plenary agenda for a date
// @Summary Get the plenary agenda for a date
// @Description Returns the resolved, deduplicated, author/highlight-enriched agenda of the day's deliberative sitting
// @Tags pauta
// @Accept json
// @Produce json
// @Param data path string true "Date in YYYY-MM-DD format"
// @Param nocache query string false "Set to 1 to clear the cache before aggregating"
// @Success 200 {object} pautaResponse "Aggregated agenda"
// @Router /api/pauta/{data} [get]
func (h *PautaHandler) GetPauta(c *fiber.Ctx) error {
	switch strings.ToLower(c.Query("nocache")) {
	case "1", "true", "yes":
		h.agg.ClearCache()
	}

	dataStr, dataBR := normalizeData(c.Params("data"))
	resultado := h.agg.Aggregate(c.UserContext(), dataStr)

	if !resultado.TemSessao {
		return c.JSON(pautaResponse{
			TemSessao: false,
			Data:      dataBR,
			Mensagem:  fmt.Sprintf("Não há Sessão Deliberativa para %s", dataBR),
			Erro:      resultado.Erro,
		})
	}

	resp := pautaResponse{
		TemSessao:  true,
		Data:       dataBR,
		Situacao:   resultado.Situacao,
		ItensPauta: resultado.Pauta,
		Erro:       resultado.Erro,
	}
	if resultado.Erro == "" {
		resp.Mensagem = mensagemPauta(resultado, dataBR)
	}
	return c.JSON(resp)
}

// Health reports liveness and the current cache size
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{} "Service status"
// @Router /health [get]
func (h *PautaHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":     "ok",
		"cache_size": h.agg.CacheSize(),
	})
}

// mensagemPauta builds the one-line summary of a successful aggregation
func mensagemPauta(resultado models.ResultadoPauta, dataBR string) string {
	topico := ""
	if len(resultado.Pauta) > 0 {
		topico = resultado.Pauta[0].Topico
	}
	situacao := resultado.Situacao
	if situacao == "" {
		situacao = "Em Andamento"
	}

	var sb strings.Builder
	sb.WriteString("Pauta da Sessão")
	if topico != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", topico))
	}
	sb.WriteString(fmt.Sprintf(" - %s | Status: %s | Destaques DTQ: %d", dataBR, situacao, resultado.TotalDestaques()))
	return sb.String()
}

// normalizeData validates the requested date and returns it in ISO and
// Brazilian formats. Unparseable dates and dates more than a year in the
// past fall back to today in the chamber's timezone
func normalizeData(raw string) (string, string) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		loc = time.Local
	}
	hoje := time.Now().In(loc)

	// day-level limit: a date exactly one year old is still accepted
	limite := hoje.AddDate(-1, 0, 0)
	limite = time.Date(limite.Year(), limite.Month(), limite.Day(), 0, 0, 0, 0, loc)

	d, err := time.ParseInLocation("2006-01-02", raw, loc)
	if err != nil || d.Before(limite) {
		d = hoje
	}
	return d.Format("2006-01-02"), d.Format("02/01/2006")
}
