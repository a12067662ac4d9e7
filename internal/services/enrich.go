package services

import (
	"context"
	"strings"
	"sync"

	"github.com/camaradevs/pautacamara/internal/camara"
	"github.com/camaradevs/pautacamara/internal/logger"
	"github.com/camaradevs/pautacamara/internal/models"
)

// siglaDestaque is the only related-proposition subtype retained as a
// highlight; everything else is discarded at the listing stage
const siglaDestaque = "DTQ"

// Enricher fans authorship and highlight fetches out over the shared worker
// pool, isolating per-item failures
type Enricher struct {
	api  *camara.Client
	pool *WorkerPool
}

// NewEnricher creates an enricher on top of the shared pool
func NewEnricher(api *camara.Client, pool *WorkerPool) *Enricher {
	return &Enricher{api: api, pool: pool}
}

// Enrich fetches the author list and DTQ highlights for every item. An item
// whose enrichment fails keeps empty lists; the batch as a whole always
// succeeds. Output order follows completion, so consumers must re-associate
// by IDProposicao, never by position
func (e *Enricher) Enrich(ctx context.Context, itens []models.ItemPauta) []models.ItemPauta {
	out := make([]models.ItemPauta, 0, len(itens))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, item := range itens {
		item := item
		wg.Add(1)
		go func() {
			defer wg.Done()
			item.Autores, item.Destaques = e.enrichOne(ctx, item.IDProposicao)
			mu.Lock()
			out = append(out, item)
			mu.Unlock()
		}()
	}

	wg.Wait()
	return out
}

// withSlot runs fn under a pool slot. Slots are held only around upstream
// calls, never across a nested fan-out, so the shared budget cannot deadlock
// on itself
func (e *Enricher) withSlot(ctx context.Context, fn func()) bool {
	release, ok := e.pool.Acquire(ctx)
	if !ok {
		return false
	}
	defer release()
	fn()
	return true
}

func (e *Enricher) enrichOne(ctx context.Context, id int64) ([]string, []models.Destaque) {
	autores := []string{}

	var base []camara.Autor
	var err error
	if ok := e.withSlot(ctx, func() { base, err = e.api.Autores(ctx, id) }); !ok {
		return autores, []models.Destaque{}
	}
	if err != nil {
		logger.Errorf("autores %d: %v", id, err)
	} else {
		autores = e.resolveAutores(ctx, base)
	}

	return autores, e.destaquesDTQ(ctx, id)
}

// resolveAutores formats the author list, resolving party affiliation through
// one deputy lookup per deputy-type author. Lookups run concurrently through
// the shared pool; results keep the listing order
func (e *Enricher) resolveAutores(ctx context.Context, base []camara.Autor) []string {
	resultados := make([]string, len(base))
	var wg sync.WaitGroup

	for i, autor := range base {
		i, autor := i, autor
		if !strings.Contains(autor.URI, "/deputados/") {
			resultados[i] = formatNomePartido(autor.Nome, "")
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			sigla := ""
			e.withSlot(ctx, func() {
				dep, err := e.api.DeputadoPorURI(ctx, autor.URI)
				if err != nil {
					logger.Warnf("partido %s: %v", autor.URI, err)
					return
				}
				sigla = dep.SiglaPartido
			})
			resultados[i] = formatNomePartido(autor.Nome, sigla)
		}()
	}
	wg.Wait()

	nomes := make([]string, 0, len(resultados))
	for _, n := range resultados {
		if n != "" {
			nomes = append(nomes, n)
		}
	}
	return nomes
}

// destaquesDTQ resolves the DTQ highlights of a principal proposition: the
// related listing filtered to the DTQ subtype, then one detail fetch and one
// author-list fetch per retained highlight, sequential per item
func (e *Enricher) destaquesDTQ(ctx context.Context, id int64) []models.Destaque {
	out := []models.Destaque{}

	var rels []camara.Relacionada
	var err error
	if ok := e.withSlot(ctx, func() { rels, err = e.api.Relacionadas(ctx, id) }); !ok {
		return out
	}
	if err != nil {
		logger.Errorf("destaques %d: %v", id, err)
		return out
	}

	for _, rel := range rels {
		if rel.SiglaTipo != siglaDestaque || rel.ID == 0 {
			continue
		}

		var det camara.DetalheProposicao
		var errDet error
		e.withSlot(ctx, func() { det, errDet = e.api.DetalheProposicao(ctx, rel.ID) })
		if errDet != nil {
			// the highlight survives with whatever the listing gave us
			logger.Errorf("destaque %d: %v", rel.ID, errDet)
		}

		var baseAutores []camara.Autor
		var errAut error
		e.withSlot(ctx, func() { baseAutores, errAut = e.api.Autores(ctx, rel.ID) })
		autores := []string{}
		if errAut != nil {
			logger.Errorf("autores destaque %d: %v", rel.ID, errAut)
		} else {
			autores = e.resolveAutores(ctx, baseAutores)
		}

		sigla := det.SiglaTipo
		if sigla == "" {
			sigla = siglaDestaque
		}
		out = append(out, models.Destaque{
			IDProposicao:   rel.ID,
			Numero:         det.Numero,
			SiglaTipo:      sigla,
			DataHora:       formatDataHoraFlex(det.DataApresentacao),
			Ementa:         det.Ementa,
			URLInteiroTeor: det.URLInteiroTeor,
			DescricaoTipo:  rel.DescricaoTipo,
			Despacho:       rel.Despacho,
			Autores:        autores,
		})
	}
	return out
}
