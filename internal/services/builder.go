package services

import (
	"context"
	"errors"
	"strconv"

	"github.com/camaradevs/pautacamara/internal/cache"
	"github.com/camaradevs/pautacamara/internal/camara"
	"github.com/camaradevs/pautacamara/internal/logger"
	"github.com/camaradevs/pautacamara/internal/models"
)

// Procedural-bundle markers: a PPP proposition is a wrapper that only refers
// to the substantive proposition listed alongside it
const (
	siglaPPP   = "PPP"
	codTipoPPP = 192
)

const metaCachePrefix = "prop_meta:"

// ErrSemProposicao rejects agenda entries with no resolvable principal id
var ErrSemProposicao = errors.New("item da pauta sem proposição principal identificável")

// ItemBuilder normalizes raw agenda entries into consumer-facing items,
// resolving the PPP bundle case and completing reporter data
type ItemBuilder struct {
	api   *camara.Client
	cache cache.Cache
}

// NewItemBuilder creates a builder sharing the service-wide cache for
// proposition metadata lookups
func NewItemBuilder(api *camara.Client, c cache.Cache) *ItemBuilder {
	return &ItemBuilder{api: api, cache: c}
}

// Build produces a normalized item from one raw agenda entry.
//
// When the entry's proposition carries the PPP marker and a related
// proposition is present, the related proposition becomes the principal
// (id, type, number, year, summary) and the listing's own id is kept as
// PautaID. Otherwise the listing proposition is used unmodified
func (b *ItemBuilder) Build(ctx context.Context, raw camara.PautaItem) (models.ItemPauta, error) {
	prop := raw.Proposicao

	isPPP := prop.SiglaTipo == siglaPPP || prop.CodTipo == codTipoPPP
	principal := prop
	if isPPP && raw.ProposicaoRelacionada.ID != 0 {
		principal = raw.ProposicaoRelacionada
	}
	if principal.ID == 0 {
		return models.ItemPauta{}, ErrSemProposicao
	}

	// Listings occasionally omit detail fields; the cached detail endpoint
	// fills the gaps
	if principal.Numero == "" || principal.Ano == "" || principal.Ementa == "" {
		if meta, ok := b.meta(ctx, principal.ID); ok {
			if principal.SiglaTipo == "" {
				principal.SiglaTipo = meta.SiglaTipo
			}
			if principal.Numero == "" {
				principal.Numero = meta.Numero
			}
			if principal.Ano == "" {
				principal.Ano = meta.Ano
			}
			if principal.Ementa == "" {
				principal.Ementa = meta.Ementa
			}
		}
	}

	relator := raw.Relator
	if (relator.SiglaPartido == "" || relator.URLFoto == "") && relator.URI != "" {
		if dep, err := b.api.DeputadoPorURI(ctx, relator.URI); err != nil {
			logger.Warnf("relator %s: %v", relator.URI, err)
		} else {
			if relator.SiglaPartido == "" {
				relator.SiglaPartido = dep.SiglaPartido
			}
			if relator.URLFoto == "" {
				relator.URLFoto = dep.URLFoto
			}
		}
	}

	return models.NewItemPauta(models.ItemPauta{
		IDProposicao: principal.ID,
		PautaID:      prop.ID,
		Titulo:       raw.Titulo,
		SiglaTipo:    principal.SiglaTipo,
		Numero:       principal.Numero,
		Ano:          principal.Ano,
		Ementa:       principal.Ementa,
		NomeRelator:  formatNomePartido(relator.Nome, relator.SiglaPartido),
		RelatorFoto:  relator.URLFoto,
		Regime:       raw.Regime,
		Topico:       raw.Topico,
	}), nil
}

// meta returns the cached detail record of a proposition, fetching on miss
func (b *ItemBuilder) meta(ctx context.Context, id int64) (camara.DetalheProposicao, bool) {
	key := metaCachePrefix + strconv.FormatInt(id, 10)
	if v, ok := b.cache.Get(key); ok {
		if det, ok := v.(camara.DetalheProposicao); ok {
			return det, true
		}
	}

	det, err := b.api.DetalheProposicao(ctx, id)
	if err != nil {
		logger.Warnf("meta %d: %v", id, err)
		return camara.DetalheProposicao{}, false
	}
	b.cache.Set(key, det)
	return det, true
}
