package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/camaradevs/pautacamara/internal/cache"
	"github.com/camaradevs/pautacamara/internal/camara"
	"github.com/camaradevs/pautacamara/internal/logger"
	"github.com/camaradevs/pautacamara/internal/models"
)

const pautaCachePrefix = "pauta:"

// Aggregator orchestrates the per-date aggregation: session resolution,
// item construction, dedup, enrichment fan-out and caching. It is the single
// entry point the HTTP surface calls
type Aggregator struct {
	api      *camara.Client
	cache    cache.Cache
	sessions *SessionResolver
	builder  *ItemBuilder
	enricher *Enricher
}

// NewAggregator wires the aggregation pipeline onto an explicit cache and
// worker-pool handle
func NewAggregator(api *camara.Client, c cache.Cache, idOrgao int, pool *WorkerPool) *Aggregator {
	return &Aggregator{
		api:      api,
		cache:    c,
		sessions: NewSessionResolver(api, idOrgao),
		builder:  NewItemBuilder(api, c),
		enricher: NewEnricher(api, pool),
	}
}

// ClearCache wipes the whole cache. Triggered by the force-refresh flag;
// a blunt, process-wide invalidation by design
func (a *Aggregator) ClearCache() {
	a.cache.Clear()
	logger.Info("cache limpo (nocache=1)")
}

// CacheSize reports the current number of cached entries
func (a *Aggregator) CacheSize() int {
	return a.cache.Size()
}

// Aggregate produces the fully resolved, deduplicated, enriched agenda for a
// date. Every outcome, including upstream errors, is cached for the TTL
// window so repeated failures do not repeatedly hit the network
func (a *Aggregator) Aggregate(ctx context.Context, data string) models.ResultadoPauta {
	key := pautaCachePrefix + data
	if v, ok := a.cache.Get(key); ok {
		if res, ok := v.(models.ResultadoPauta); ok {
			return res
		}
	}

	log := logger.WithField("run_id", uuid.NewString())
	log.Info().Msgf("agregando pauta de %s", data)

	res := a.aggregate(ctx, data)
	a.cache.Set(key, res)
	return res
}

func (a *Aggregator) aggregate(ctx context.Context, data string) models.ResultadoPauta {
	evento, found, err := a.sessions.Resolve(ctx, data)
	if err != nil {
		logger.Errorf("pauta erro: %v", err)
		return models.ResultadoPauta{
			Pauta: []models.ItemPauta{},
			Erro:  fmt.Sprintf("Erro na API: %v", err),
		}
	}
	if !found {
		return models.ResultadoPauta{
			Pauta: []models.ItemPauta{},
			Erro:  fmt.Sprintf("Nenhuma sessão deliberativa em %s", data),
		}
	}

	situacao := evento.Situacao
	if situacao == "" {
		situacao = "Não Informada"
	}

	brutos, err := a.api.Pauta(ctx, evento.ID)
	if err != nil {
		logger.Errorf("pauta erro: %v", err)
		var statusErr *camara.StatusError
		if errors.As(err, &statusErr) {
			return models.ResultadoPauta{
				TemSessao: true,
				Situacao:  situacao,
				Pauta:     []models.ItemPauta{},
				Erro:      fmt.Sprintf("Erro ao buscar pauta (HTTP %d)", statusErr.Code),
			}
		}
		return models.ResultadoPauta{
			Pauta: []models.ItemPauta{},
			Erro:  fmt.Sprintf("Erro na API: %v", err),
		}
	}

	// build + dedup by principal id, first occurrence wins
	seen := make(map[int64]bool)
	base := []models.ItemPauta{}
	for _, raw := range brutos {
		item, err := a.builder.Build(ctx, raw)
		if err != nil {
			logger.Errorf("prep item: %v", err)
			continue
		}
		if seen[item.IDProposicao] {
			continue
		}
		seen[item.IDProposicao] = true
		base = append(base, item)
	}

	itens := a.enricher.Enrich(ctx, base)

	logger.Infof("pauta de %s: %d itens, situação %q", data, len(itens), situacao)
	return models.ResultadoPauta{
		Encontrou: true,
		TemSessao: true,
		Pauta:     itens,
		Situacao:  situacao,
	}
}
