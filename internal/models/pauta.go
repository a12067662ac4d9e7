package models

import (
	"fmt"
	"strings"
)

// Destaque represents a DTQ highlight (amendment or separate-voting request)
// attached to a principal proposition
type Destaque struct {
	IDProposicao   int64    `json:"id_proposicao"`
	Numero         string   `json:"numero"`
	SiglaTipo      string   `json:"sigla_tipo"`
	DataHora       string   `json:"data_hora"`
	Ementa         string   `json:"ementa"`
	URLInteiroTeor string   `json:"url_inteiro_teor"`
	DescricaoTipo  string   `json:"descricao_tipo"`
	Despacho       string   `json:"despacho"`
	Autores        []string `json:"autores"`
}

// ItemPauta is the normalized, consumer-facing agenda item. IDProposicao
// always identifies the principal (non-PPP) proposition; PautaID keeps the
// id that came in the agenda listing, which differs when the listing points
// at a procedural bundle
type ItemPauta struct {
	IDProposicao  int64      `json:"id_proposicao"`
	PautaID       int64      `json:"pauta_id"`
	Titulo        string     `json:"titulo"`
	Identificacao string     `json:"identificacao"`
	SiglaTipo     string     `json:"sigla_tipo"`
	Numero        string     `json:"numero"`
	Ano           string     `json:"ano"`
	Ementa        string     `json:"ementa"`
	NomeRelator   string     `json:"relator"`
	RelatorFoto   string     `json:"relator_foto"`
	Regime        string     `json:"regime"`
	Topico        string     `json:"topico"`
	Autores       []string   `json:"autores"`
	Destaques     []Destaque `json:"destaques"`
}

// NewItemPauta builds an item. An empty listing title falls back to
// "TYPE NUMBER/YEAR"; the display identification mirrors the final title
func NewItemPauta(item ItemPauta) ItemPauta {
	item.Titulo = strings.TrimSpace(item.Titulo)
	if item.Titulo == "" {
		item.Titulo = strings.TrimSpace(fmt.Sprintf("%s %s/%s", item.SiglaTipo, item.Numero, item.Ano))
	}
	item.Identificacao = item.Titulo
	if item.Autores == nil {
		item.Autores = []string{}
	}
	if item.Destaques == nil {
		item.Destaques = []Destaque{}
	}
	return item
}

// ResultadoPauta wraps one fully aggregated agenda for a date. This is the
// unit stored in the cache
type ResultadoPauta struct {
	Encontrou bool        `json:"encontrou"`
	TemSessao bool        `json:"tem_sessao"`
	Pauta     []ItemPauta `json:"pauta"`
	Erro      string      `json:"erro,omitempty"`
	Situacao  string      `json:"situacao,omitempty"`
}

// TotalDestaques counts DTQ highlights across all items
func (r ResultadoPauta) TotalDestaques() int {
	total := 0
	for _, item := range r.Pauta {
		total += len(item.Destaques)
	}
	return total
}
