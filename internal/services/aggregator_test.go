package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camaradevs/pautacamara/internal/cache"
)

// countingUpstream fakes the full API surface for one aggregation and counts
// hits per path
type countingUpstream struct {
	mu       sync.Mutex
	hits     map[string]int
	handlers map[string]http.HandlerFunc
	srv      *httptest.Server
}

func newCountingUpstream() *countingUpstream {
	u := &countingUpstream{
		hits:     make(map[string]int),
		handlers: make(map[string]http.HandlerFunc),
	}
	u.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		u.hits[r.URL.Path]++
		h := u.handlers[r.URL.Path]
		u.mu.Unlock()
		if h == nil {
			_, _ = w.Write([]byte(`{"dados":[]}`))
			return
		}
		h(w, r)
	}))
	return u
}

func (u *countingUpstream) handle(path string, body string) {
	u.handlers[path] = func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}
}

func (u *countingUpstream) handleStatus(path string, status int) {
	u.handlers[path] = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}
}

func (u *countingUpstream) count(path string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.hits[path]
}

func (u *countingUpstream) total() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := 0
	for _, c := range u.hits {
		n += c
	}
	return n
}

func newTestAggregator(u *countingUpstream) *Aggregator {
	return NewAggregator(newAPIClient(u.srv.URL), cache.NewTTLCacheWithDefaults(), 180, NewWorkerPool(6))
}

const eventoDeliberativo = `{"dados":[{"id":42,"descricaoTipo":"Sessão Deliberativa Ordinária","situacao":"Em Andamento"}]}`

func TestAggregator_FullPipeline(t *testing.T) {
	u := newCountingUpstream()
	defer u.srv.Close()

	u.handle("/eventos", eventoDeliberativo)
	u.handle("/eventos/42/pauta", `{"dados":[
		{"titulo":"PL 743/2023","topico":"Urgência","regime":"Especial",
		 "proposicao_":{"id":900,"siglaTipo":"PPP","codTipo":192,"numero":"1","ano":"2023","ementa":"wrapper"},
		 "proposicaoRelacionada_":{"id":100,"siglaTipo":"PL","numero":"743","ano":"2023","ementa":"A matéria."}},
		{"titulo":"PEC 5/2024",
		 "proposicao_":{"id":300,"siglaTipo":"PEC","numero":"5","ano":"2024","ementa":"Constitucional."}}
	]}`)
	u.handle("/proposicoes/100/autores", `{"dados":[{"nome":"Autor A","uri":""}]}`)

	agg := newTestAggregator(u)
	res := agg.Aggregate(context.Background(), "2025-02-13")

	assert.True(t, res.Encontrou)
	assert.True(t, res.TemSessao)
	assert.Equal(t, "Em Andamento", res.Situacao)
	assert.Empty(t, res.Erro)
	require.Len(t, res.Pauta, 2)

	m := itemsByID(res.Pauta)
	require.Contains(t, m, int64(100))
	require.Contains(t, m, int64(300))
	assert.Equal(t, int64(900), m[100].PautaID)
	assert.Equal(t, []string{"Autor A"}, m[100].Autores)
}

func TestAggregator_CacheIdempotence(t *testing.T) {
	u := newCountingUpstream()
	defer u.srv.Close()

	u.handle("/eventos", eventoDeliberativo)
	u.handle("/eventos/42/pauta", `{"dados":[
		{"titulo":"PL 1/2025","proposicao_":{"id":100,"siglaTipo":"PL","numero":"1","ano":"2025","ementa":"E."}}
	]}`)

	agg := newTestAggregator(u)
	primeira := agg.Aggregate(context.Background(), "2025-02-13")
	chamadas := u.total()

	segunda := agg.Aggregate(context.Background(), "2025-02-13")

	assert.Equal(t, chamadas, u.total(), "a cached call must issue zero upstream requests")
	assert.Equal(t, primeira, segunda)
}

func TestAggregator_ForceRefreshClearsCache(t *testing.T) {
	u := newCountingUpstream()
	defer u.srv.Close()

	u.handle("/eventos", eventoDeliberativo)

	agg := newTestAggregator(u)
	agg.Aggregate(context.Background(), "2025-02-13")
	require.Equal(t, 1, u.count("/eventos"))

	agg.ClearCache()
	agg.Aggregate(context.Background(), "2025-02-13")

	assert.Equal(t, 2, u.count("/eventos"))
}

func TestAggregator_NoSessionDay(t *testing.T) {
	u := newCountingUpstream()
	defer u.srv.Close()

	u.handle("/eventos", `{"dados":[{"id":9,"descricaoTipo":"Sessão Solene","situacao":"Encerrada"}]}`)

	agg := newTestAggregator(u)
	res := agg.Aggregate(context.Background(), "2025-02-15")

	assert.False(t, res.TemSessao)
	assert.False(t, res.Encontrou)
	assert.Empty(t, res.Pauta)
	assert.Contains(t, res.Erro, "Nenhuma sessão deliberativa")
	assert.Zero(t, u.count("/eventos/9/pauta"), "no-session days must not fetch the agenda")
}

func TestAggregator_DedupFirstOccurrenceWins(t *testing.T) {
	u := newCountingUpstream()
	defer u.srv.Close()

	u.handle("/eventos", eventoDeliberativo)
	// the same principal (100) appears twice: once through a PPP wrapper,
	// once directly with different attributes
	u.handle("/eventos/42/pauta", `{"dados":[
		{"titulo":"Primeira Ocorrência","topico":"T1",
		 "proposicao_":{"id":900,"siglaTipo":"PPP","numero":"1","ano":"2023","ementa":"w"},
		 "proposicaoRelacionada_":{"id":100,"siglaTipo":"PL","numero":"743","ano":"2023","ementa":"A."}},
		{"titulo":"Segunda Ocorrência","topico":"T2",
		 "proposicao_":{"id":100,"siglaTipo":"PL","numero":"743","ano":"2023","ementa":"B."}}
	]}`)

	agg := newTestAggregator(u)
	res := agg.Aggregate(context.Background(), "2025-02-13")

	require.Len(t, res.Pauta, 1)
	assert.Equal(t, int64(100), res.Pauta[0].IDProposicao)
	assert.Equal(t, "Primeira Ocorrência", res.Pauta[0].Titulo)
	assert.Equal(t, "T1", res.Pauta[0].Topico)
}

func TestAggregator_AgendaFetchHTTPError(t *testing.T) {
	u := newCountingUpstream()
	defer u.srv.Close()

	u.handle("/eventos", eventoDeliberativo)
	u.handleStatus("/eventos/42/pauta", http.StatusForbidden)

	agg := newTestAggregator(u)
	res := agg.Aggregate(context.Background(), "2025-02-13")

	assert.True(t, res.TemSessao)
	assert.Equal(t, "Em Andamento", res.Situacao)
	assert.Empty(t, res.Pauta)
	assert.Equal(t, "Erro ao buscar pauta (HTTP 403)", res.Erro)
}

func TestAggregator_ErrorResultIsCached(t *testing.T) {
	u := newCountingUpstream()
	defer u.srv.Close()

	u.handle("/eventos", eventoDeliberativo)
	u.handleStatus("/eventos/42/pauta", http.StatusForbidden)

	agg := newTestAggregator(u)
	agg.Aggregate(context.Background(), "2025-02-13")
	chamadas := u.total()

	res := agg.Aggregate(context.Background(), "2025-02-13")

	assert.Equal(t, chamadas, u.total(), "error results shed load for the TTL window")
	assert.NotEmpty(t, res.Erro)
}

func TestAggregator_SessionFetchFailure(t *testing.T) {
	u := newCountingUpstream()
	defer u.srv.Close()

	u.handleStatus("/eventos", http.StatusServiceUnavailable)

	agg := newTestAggregator(u)
	res := agg.Aggregate(context.Background(), "2025-02-13")

	assert.False(t, res.TemSessao)
	assert.Empty(t, res.Pauta)
	assert.Contains(t, res.Erro, "Erro na API")
}

func TestAggregator_MissingSituacaoDefaults(t *testing.T) {
	u := newCountingUpstream()
	defer u.srv.Close()

	u.handle("/eventos", `{"dados":[{"id":42,"descricaoTipo":"Sessão Deliberativa"}]}`)

	agg := newTestAggregator(u)
	res := agg.Aggregate(context.Background(), "2025-02-13")

	assert.Equal(t, "Não Informada", res.Situacao)
}

func TestAggregator_SkipsUnresolvableEntries(t *testing.T) {
	u := newCountingUpstream()
	defer u.srv.Close()

	u.handle("/eventos", eventoDeliberativo)
	u.handle("/eventos/42/pauta", `{"dados":[
		{"titulo":"Sem proposição"},
		{"titulo":"PL 1/2025","proposicao_":{"id":100,"siglaTipo":"PL","numero":"1","ano":"2025","ementa":"E."}}
	]}`)

	agg := newTestAggregator(u)
	res := agg.Aggregate(context.Background(), "2025-02-13")

	require.Len(t, res.Pauta, 1)
	assert.Equal(t, int64(100), res.Pauta[0].IDProposicao)
}
