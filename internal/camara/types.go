package camara

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Evento is one event of the plenary calendar
type Evento struct {
	ID             int64
	DescricaoTipo  string
	Situacao       string
	DataHoraInicio string
}

// Proposicao identifies a legislative proposition as embedded in an agenda
// listing. A zero ID means the sub-record was absent
type Proposicao struct {
	ID        int64
	SiglaTipo string
	CodTipo   int
	Numero    string
	Ano       string
	Ementa    string
}

// Relator is the deputy assigned to report on a proposition
type Relator struct {
	Nome         string
	SiglaPartido string
	URLFoto      string
	URI          string
}

// PautaItem is one raw agenda entry as delivered by the pauta listing
type PautaItem struct {
	Titulo                string
	Topico                string
	Regime                string
	Proposicao            Proposicao
	Relator               Relator
	ProposicaoRelacionada Proposicao
}

// DetalheProposicao is the proposition detail record
type DetalheProposicao struct {
	SiglaTipo        string
	Numero           string
	Ano              string
	Ementa           string
	DataApresentacao string
	URLInteiroTeor   string
}

// Autor is one entry of a proposition's author list. URI points at the
// deputy detail endpoint when the author is a sitting deputy
type Autor struct {
	Nome string
	URI  string
}

// Relacionada is one entry of a proposition's related-propositions listing
type Relacionada struct {
	ID            int64
	SiglaTipo     string
	DescricaoTipo string
	Despacho      string
}

// Deputado carries the fields of interest from the deputy detail endpoint
type Deputado struct {
	SiglaPartido string
	URLFoto      string
}

// flexString tolerates upstream fields that arrive as either JSON strings or
// numbers. XML character data lands in it directly
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*s = ""
		return nil
	}
	if data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(strings.TrimSpace(v))
		return nil
	}
	*s = flexString(string(data))
	return nil
}

// Wire envelopes. Every endpoint may answer in JSON or XML depending on
// content negotiation, so each struct carries both tag sets and is decoded
// exactly once at the client boundary. The XML listings wrap each record in
// an element named after the entity with a trailing underscore

type wireEvento struct {
	ID             int64  `json:"id" xml:"id"`
	DescricaoTipo  string `json:"descricaoTipo" xml:"descricaoTipo"`
	Situacao       string `json:"situacao" xml:"situacao"`
	DataHoraInicio string `json:"dataHoraInicio" xml:"dataHoraInicio"`
}

type eventosEnvelope struct {
	Dados []wireEvento `json:"dados" xml:"dados>evento_"`
}

type wireProposicao struct {
	ID        int64      `json:"id" xml:"id"`
	SiglaTipo string     `json:"siglaTipo" xml:"siglaTipo"`
	CodTipo   int        `json:"codTipo" xml:"codTipo"`
	Numero    flexString `json:"numero" xml:"numero"`
	Ano       flexString `json:"ano" xml:"ano"`
	Ementa    string     `json:"ementa" xml:"ementa"`
}

type wireRelator struct {
	Nome         string `json:"nome" xml:"nome"`
	SiglaPartido string `json:"siglaPartido" xml:"siglaPartido"`
	URLFoto      string `json:"urlFoto" xml:"urlFoto"`
	URI          string `json:"uri" xml:"uri"`
}

type wirePautaItem struct {
	Titulo                string         `json:"titulo" xml:"titulo"`
	Topico                string         `json:"topico" xml:"topico"`
	Regime                string         `json:"regime" xml:"regime"`
	Proposicao            wireProposicao `json:"proposicao_" xml:"proposicao_"`
	Relator               wireRelator    `json:"relator" xml:"relator"`
	ProposicaoRelacionada wireProposicao `json:"proposicaoRelacionada_" xml:"proposicaoRelacionada_"`
}

type pautaEnvelope struct {
	Dados []wirePautaItem `json:"dados" xml:"dados>pauta_"`
}

type wireDetalhe struct {
	SiglaTipo        string     `json:"siglaTipo" xml:"siglaTipo"`
	Numero           flexString `json:"numero" xml:"numero"`
	Ano              flexString `json:"ano" xml:"ano"`
	Ementa           string     `json:"ementa" xml:"ementa"`
	DataApresentacao string     `json:"dataApresentacao" xml:"dataApresentacao"`
	URLInteiroTeor   string     `json:"urlInteiroTeor" xml:"urlInteiroTeor"`
}

type proposicaoEnvelope struct {
	Dados wireDetalhe `json:"dados" xml:"dados"`
}

// wireAutor covers the two author shapes the listing uses: fields inline or
// nested under an "autor" sub-record, with "uri" sometimes spelled "uriAutor"
type wireAutor struct {
	Nome     string        `json:"nome" xml:"nome"`
	URI      string        `json:"uri" xml:"uri"`
	URIAutor string        `json:"uriAutor" xml:"uriAutor"`
	Autor    *wireAutorRef `json:"autor" xml:"autor"`
}

type wireAutorRef struct {
	Nome string `json:"nome" xml:"nome"`
	URI  string `json:"uri" xml:"uri"`
}

type autoresEnvelope struct {
	Dados []wireAutor `json:"dados" xml:"dados>autor_"`
}

type wireRelacionada struct {
	ID            int64  `json:"id" xml:"id"`
	SiglaTipo     string `json:"siglaTipo" xml:"siglaTipo"`
	DescricaoTipo string `json:"descricaoTipo" xml:"descricaoTipo"`
	Despacho      string `json:"despacho" xml:"despacho"`
}

type relacionadasEnvelope struct {
	Dados []wireRelacionada `json:"dados" xml:"dados>relacionada_"`
}

type wireStatusDeputado struct {
	SiglaPartido string `json:"siglaPartido" xml:"siglaPartido"`
	URLFoto      string `json:"urlFoto" xml:"urlFoto"`
}

type wireDeputado struct {
	SiglaPartido string             `json:"siglaPartido" xml:"siglaPartido"`
	URLFoto      string             `json:"urlFoto" xml:"urlFoto"`
	UltimoStatus wireStatusDeputado `json:"ultimoStatus" xml:"ultimoStatus"`
}

type deputadoEnvelope struct {
	Dados wireDeputado `json:"dados" xml:"dados"`
}

func norm(v string) string {
	return strings.TrimSpace(v)
}

func (w wireEvento) toEvento() Evento {
	return Evento{
		ID:             w.ID,
		DescricaoTipo:  norm(w.DescricaoTipo),
		Situacao:       norm(w.Situacao),
		DataHoraInicio: norm(w.DataHoraInicio),
	}
}

func (w wireProposicao) toProposicao() Proposicao {
	return Proposicao{
		ID:        w.ID,
		SiglaTipo: norm(w.SiglaTipo),
		CodTipo:   w.CodTipo,
		Numero:    norm(string(w.Numero)),
		Ano:       norm(string(w.Ano)),
		Ementa:    norm(w.Ementa),
	}
}

func (w wirePautaItem) toPautaItem() PautaItem {
	return PautaItem{
		Titulo:     norm(w.Titulo),
		Topico:     norm(w.Topico),
		Regime:     norm(w.Regime),
		Proposicao: w.Proposicao.toProposicao(),
		Relator: Relator{
			Nome:         norm(w.Relator.Nome),
			SiglaPartido: norm(w.Relator.SiglaPartido),
			URLFoto:      norm(w.Relator.URLFoto),
			URI:          norm(w.Relator.URI),
		},
		ProposicaoRelacionada: w.ProposicaoRelacionada.toProposicao(),
	}
}

func (w wireDetalhe) toDetalhe() DetalheProposicao {
	return DetalheProposicao{
		SiglaTipo:        norm(w.SiglaTipo),
		Numero:           norm(string(w.Numero)),
		Ano:              norm(string(w.Ano)),
		Ementa:           norm(w.Ementa),
		DataApresentacao: norm(w.DataApresentacao),
		URLInteiroTeor:   norm(w.URLInteiroTeor),
	}
}

func (w wireAutor) toAutor() Autor {
	nome := norm(w.Nome)
	uri := norm(w.URI)
	if uri == "" {
		uri = norm(w.URIAutor)
	}
	if w.Autor != nil {
		if nome == "" {
			nome = norm(w.Autor.Nome)
		}
		if uri == "" {
			uri = norm(w.Autor.URI)
		}
	}
	return Autor{Nome: nome, URI: uri}
}

func (w wireRelacionada) toRelacionada() Relacionada {
	return Relacionada{
		ID:            w.ID,
		SiglaTipo:     norm(w.SiglaTipo),
		DescricaoTipo: norm(w.DescricaoTipo),
		Despacho:      norm(w.Despacho),
	}
}

func (w wireDeputado) toDeputado() Deputado {
	partido := norm(w.UltimoStatus.SiglaPartido)
	if partido == "" {
		partido = norm(w.SiglaPartido)
	}
	foto := norm(w.UltimoStatus.URLFoto)
	if foto == "" {
		foto = norm(w.URLFoto)
	}
	return Deputado{SiglaPartido: partido, URLFoto: foto}
}
