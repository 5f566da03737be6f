package spell

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"notes-service/models"
)

// DefaultURL è l'endpoint checkText di Yandex Speller
const DefaultURL = "https://speller.yandex.net/services/spellservice.json/checkText"

var (
	ErrUnexpectedStatus   = errors.New("risposta HTTP inattesa dal servizio di ortografia")
	ErrUnexpectedResponse = errors.New("formato di risposta inatteso dal servizio di ortografia")
)

// Client interroga un servizio di controllo ortografico compatibile con Yandex Speller
type Client struct {
	url        string
	lang       string
	options    int
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient sostituisce il client HTTP (usato nei test)
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLang imposta il parametro lang (es. "ru,en")
func WithLang(lang string) Option {
	return func(c *Client) {
		c.lang = lang
	}
}

// WithOptions imposta la maschera options di Yandex Speller
func WithOptions(options int) Option {
	return func(c *Client) {
		c.options = options
	}
}

// NewClient crea un client verso l'endpoint indicato. URL vuoto usa DefaultURL.
func NewClient(endpoint string, timeout time.Duration, opts ...Option) *Client {
	if endpoint == "" {
		endpoint = DefaultURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		url:        endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check invia il testo al servizio e restituisce le annotazioni di errore.
// Una risposta non 200 o con un corpo che non è una lista JSON è un errore.
func (c *Client) Check(ctx context.Context, text string) ([]models.SpellError, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return nil, fmt.Errorf("url del servizio non valido: %w", err)
	}

	q := u.Query()
	q.Set("text", text)
	if c.lang != "" {
		q.Set("lang", c.lang)
	}
	if c.options > 0 {
		q.Set("options", strconv.Itoa(c.options))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creazione della richiesta: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("invio della richiesta: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var annotations []models.SpellError
	if err := json.NewDecoder(resp.Body).Decode(&annotations); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedResponse, err)
	}
	// "null" decodifica senza errori ma non è una lista
	if annotations == nil {
		return nil, ErrUnexpectedResponse
	}

	return annotations, nil
}

// IsClean è true solo se il servizio risponde 200 con una lista vuota.
// Qualsiasi errore rifiuta il testo. Il gate HTTP usa Check per poter
// restituire le annotazioni, con la stessa regola: errore o lista non
// vuota significano testo rifiutato.
func (c *Client) IsClean(ctx context.Context, text string) bool {
	annotations, err := c.Check(ctx, text)
	if err != nil {
		log.Warn().Err(err).Msg("❌ Controllo ortografico fallito")
		return false
	}
	return len(annotations) == 0
}
