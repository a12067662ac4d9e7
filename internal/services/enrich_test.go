package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camaradevs/pautacamara/internal/models"
)

// enrichUpstream fakes the proposition endpoints for two propositions: 100
// (authors + one DTQ highlight) and 200 (empty lists)
func enrichUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/proposicoes/100/autores", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"dados":[
			{"nome":"Deputado A","uri":"%s/deputados/11"},
			{"nome":"Poder Executivo","uri":""}
		]}`, serverURL(r))
	})
	mux.HandleFunc("/proposicoes/100/relacionadas", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"dados":[
			{"id":555,"siglaTipo":"DTQ","descricaoTipo":"Destaque de Bancada","despacho":"Apresentado"},
			{"id":556,"siglaTipo":"EMP","descricaoTipo":"Emenda","despacho":""}
		]}`))
	})
	mux.HandleFunc("/proposicoes/555", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"dados":{
			"siglaTipo":"DTQ","numero":12,
			"dataApresentacao":"2025-02-13T14:00:00",
			"ementa":"Destaque para votação em separado.",
			"urlInteiroTeor":"https://x/destaque.pdf"
		}}`))
	})
	mux.HandleFunc("/proposicoes/555/autores", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"dados":[{"nome":"Bancada B","uri":""}]}`))
	})
	mux.HandleFunc("/proposicoes/200/autores", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"dados":[]}`))
	})
	mux.HandleFunc("/proposicoes/200/relacionadas", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"dados":[]}`))
	})
	mux.HandleFunc("/deputados/11", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"dados":{"ultimoStatus":{"siglaPartido":"XYZ"}}}`))
	})

	return httptest.NewServer(mux)
}

// serverURL rebuilds the test server's base URL from the incoming request
func serverURL(r *http.Request) string {
	return "http://" + r.Host
}

func itemsByID(itens []models.ItemPauta) map[int64]models.ItemPauta {
	m := make(map[int64]models.ItemPauta, len(itens))
	for _, it := range itens {
		m[it.IDProposicao] = it
	}
	return m
}

func TestEnricher_FetchesAuthorsAndHighlights(t *testing.T) {
	srv := enrichUpstream(t)
	defer srv.Close()

	e := NewEnricher(newAPIClient(srv.URL), NewWorkerPool(6))
	itens := e.Enrich(context.Background(), []models.ItemPauta{
		{IDProposicao: 100, Titulo: "PL 743/2023"},
	})

	require.Len(t, itens, 1)
	item := itens[0]
	assert.Equal(t, []string{"Deputado A (XYZ)", "Poder Executivo"}, item.Autores)

	require.Len(t, item.Destaques, 1, "non-DTQ related propositions must be discarded")
	d := item.Destaques[0]
	assert.Equal(t, int64(555), d.IDProposicao)
	assert.Equal(t, "DTQ", d.SiglaTipo)
	assert.Equal(t, "12", d.Numero)
	assert.Equal(t, "13/02/2025 14:00", d.DataHora)
	assert.Equal(t, "Destaque de Bancada", d.DescricaoTipo)
	assert.Equal(t, "Apresentado", d.Despacho)
	assert.Equal(t, []string{"Bancada B"}, d.Autores)
}

func TestEnricher_SameCardinalityKeyedByID(t *testing.T) {
	srv := enrichUpstream(t)
	defer srv.Close()

	e := NewEnricher(newAPIClient(srv.URL), NewWorkerPool(2))
	itens := e.Enrich(context.Background(), []models.ItemPauta{
		{IDProposicao: 100},
		{IDProposicao: 200},
	})

	require.Len(t, itens, 2)
	m := itemsByID(itens)
	require.Contains(t, m, int64(100))
	require.Contains(t, m, int64(200))
	assert.Empty(t, m[200].Autores)
	assert.Empty(t, m[200].Destaques)
}

func TestEnricher_IsolatesPerItemFailure(t *testing.T) {
	mux := http.NewServeMux()
	// item 100 fails on every endpoint
	mux.HandleFunc("/proposicoes/100/autores", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/proposicoes/100/relacionadas", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	// item 200 succeeds
	mux.HandleFunc("/proposicoes/200/autores", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"dados":[{"nome":"Autora C","uri":""}]}`))
	})
	mux.HandleFunc("/proposicoes/200/relacionadas", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"dados":[]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	e := NewEnricher(newAPIClient(srv.URL), NewWorkerPool(6))
	itens := e.Enrich(context.Background(), []models.ItemPauta{
		{IDProposicao: 100},
		{IDProposicao: 200},
	})

	require.Len(t, itens, 2, "a failing item must not abort the batch")
	m := itemsByID(itens)
	assert.Empty(t, m[100].Autores)
	assert.Empty(t, m[100].Destaques)
	assert.Equal(t, []string{"Autora C"}, m[200].Autores)
}

func TestEnricher_DeputyLookupFailureKeepsAuthorName(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/proposicoes/100/autores", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"dados":[{"nome":"Deputado Sem Partido","uri":"%s/deputados/99"}]}`, serverURL(r))
	})
	mux.HandleFunc("/proposicoes/100/relacionadas", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"dados":[]}`))
	})
	mux.HandleFunc("/deputados/99", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	e := NewEnricher(newAPIClient(srv.URL), NewWorkerPool(6))
	itens := e.Enrich(context.Background(), []models.ItemPauta{{IDProposicao: 100}})

	require.Len(t, itens, 1)
	assert.Equal(t, []string{"Deputado Sem Partido"}, itens[0].Autores)
}

func TestEnricher_EmptyBatch(t *testing.T) {
	e := NewEnricher(newAPIClient("http://unreachable.invalid"), NewWorkerPool(6))

	itens := e.Enrich(context.Background(), nil)

	assert.Empty(t, itens)
}
