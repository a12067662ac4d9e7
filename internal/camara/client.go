package camara

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/camaradevs/pautacamara/internal/logger"
)

const (
	defaultBaseURL   = "https://dadosabertos.camara.leg.br/api/v2"
	defaultUserAgent = "PautaCamara/2.1 (+https://dadosabertos.camara.leg.br/)"

	maxAttempts    = 3
	initialBackoff = 600 * time.Millisecond
)

// retryableStatus lists the upstream statuses worth another attempt. Anything
// else is returned as-is without retry
var retryableStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// StatusError reports an upstream HTTP status outside the 200 range
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream status %d", e.Code)
}

// Config holds construction options for the API client
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	// RPS caps the outbound request rate against the public API; zero disables pacing
	RPS float64
	// Backoff overrides the initial retry backoff; zero keeps the default
	Backoff time.Duration
}

// Client issues calls against the Dados Abertos API with automatic retry on
// transient failures and a single dual-decode step (JSON first, XML fallback).
// All upstream access in the service goes through it
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	backoff    time.Duration
}

// NewClient creates a new API client. A zero Config targets the production API
func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 5 * time.Second,
			},
		}
	}
	var limiter *rate.Limiter
	if cfg.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RPS), 1)
	}
	backoff := cfg.Backoff
	if backoff == 0 {
		backoff = initialBackoff
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		limiter:    limiter,
		userAgent:  defaultUserAgent,
		backoff:    backoff,
	}
}

// get performs a GET with the fixed retry policy: up to 3 attempts,
// exponential backoff starting at 600ms, retried only on {429,500,502,503,504}
// and network-level failures. Returns the raw body of a 200 response
func (c *Client) get(ctx context.Context, rawURL string, query url.Values, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if query != nil {
		rawURL = rawURL + "?" + query.Encode()
	}

	var lastErr error
	backoff := c.backoff
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request %s: %w", rawURL, err)
			continue
		}

		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if retryableStatus[resp.StatusCode] {
			lastErr = &StatusError{Code: resp.StatusCode}
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, &StatusError{Code: resp.StatusCode}
		}
		if readErr != nil {
			lastErr = fmt.Errorf("read body %s: %w", rawURL, readErr)
			continue
		}
		return body, nil
	}

	return nil, lastErr
}

// decode tries the structured-map encoding first, then the markup tree. A body
// matching neither is treated like an empty-but-successful response
func decode(body []byte, v interface{}) bool {
	if err := json.Unmarshal(body, v); err == nil {
		return true
	}
	if err := xml.Unmarshal(body, v); err == nil {
		return true
	}
	return false
}

// Eventos lists the events of one organ for a calendar date, ascending by
// start time
func (c *Client) Eventos(ctx context.Context, idOrgao int, data string) ([]Evento, error) {
	query := url.Values{}
	query.Set("idOrgao", strconv.Itoa(idOrgao))
	query.Set("dataInicio", data)
	query.Set("dataFim", data)
	query.Set("ordem", "ASC")
	query.Set("ordenarPor", "dataHoraInicio")

	body, err := c.get(ctx, c.baseURL+"/eventos", query, 15*time.Second)
	if err != nil {
		return nil, err
	}

	var env eventosEnvelope
	if !decode(body, &env) {
		logger.Warnf("eventos %s: resposta em formato desconhecido (%d bytes)", data, len(body))
		return nil, nil
	}
	eventos := make([]Evento, 0, len(env.Dados))
	for _, w := range env.Dados {
		eventos = append(eventos, w.toEvento())
	}
	return eventos, nil
}

// Pauta lists the raw agenda entries of one event
func (c *Client) Pauta(ctx context.Context, eventoID int64) ([]PautaItem, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/eventos/%d/pauta", c.baseURL, eventoID), nil, 15*time.Second)
	if err != nil {
		return nil, err
	}

	var env pautaEnvelope
	if !decode(body, &env) {
		logger.Warnf("pauta %d: resposta em formato desconhecido (%d bytes)", eventoID, len(body))
		return nil, nil
	}
	itens := make([]PautaItem, 0, len(env.Dados))
	for _, w := range env.Dados {
		itens = append(itens, w.toPautaItem())
	}
	return itens, nil
}

// DetalheProposicao fetches the detail record of one proposition
func (c *Client) DetalheProposicao(ctx context.Context, id int64) (DetalheProposicao, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/proposicoes/%d", c.baseURL, id), nil, 12*time.Second)
	if err != nil {
		return DetalheProposicao{}, err
	}

	var env proposicaoEnvelope
	if !decode(body, &env) {
		logger.Warnf("proposicao %d: resposta em formato desconhecido (%d bytes)", id, len(body))
		return DetalheProposicao{}, nil
	}
	return env.Dados.toDetalhe(), nil
}

// Autores fetches the author list of one proposition. The endpoint does not
// return party affiliation; that takes a deputy lookup per author
func (c *Client) Autores(ctx context.Context, id int64) ([]Autor, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/proposicoes/%d/autores", c.baseURL, id), nil, 12*time.Second)
	if err != nil {
		return nil, err
	}

	var env autoresEnvelope
	if !decode(body, &env) {
		logger.Warnf("autores %d: resposta em formato desconhecido (%d bytes)", id, len(body))
		return nil, nil
	}
	autores := make([]Autor, 0, len(env.Dados))
	for _, w := range env.Dados {
		autores = append(autores, w.toAutor())
	}
	return autores, nil
}

// Relacionadas fetches the related-propositions listing of one proposition
func (c *Client) Relacionadas(ctx context.Context, id int64) ([]Relacionada, error) {
	body, err := c.get(ctx, fmt.Sprintf("%s/proposicoes/%d/relacionadas", c.baseURL, id), nil, 15*time.Second)
	if err != nil {
		return nil, err
	}

	var env relacionadasEnvelope
	if !decode(body, &env) {
		logger.Warnf("relacionadas %d: resposta em formato desconhecido (%d bytes)", id, len(body))
		return nil, nil
	}
	rels := make([]Relacionada, 0, len(env.Dados))
	for _, w := range env.Dados {
		rels = append(rels, w.toRelacionada())
	}
	return rels, nil
}

// DeputadoPorURI fetches a deputy detail record from its full reference URL,
// as delivered in author and reporter sub-records
func (c *Client) DeputadoPorURI(ctx context.Context, uri string) (Deputado, error) {
	if uri == "" {
		return Deputado{}, nil
	}

	body, err := c.get(ctx, uri, nil, 10*time.Second)
	if err != nil {
		return Deputado{}, err
	}

	var env deputadoEnvelope
	if !decode(body, &env) {
		logger.Warnf("deputado %s: resposta em formato desconhecido (%d bytes)", uri, len(body))
		return Deputado{}, nil
	}
	return env.Dados.toDeputado(), nil
}
