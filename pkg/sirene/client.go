// Package sirene provides a client for the INSEE Sirene V3.11 API,
// which resolves SIRET establishment identifiers to company records.
package sirene

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const defaultBaseURL = "https://api.insee.fr/api-sirene/3.11"

// Client looks up establishments in the Sirene registry.
type Client interface {
	// Etablissement fetches the establishment record for a SIRET.
	Etablissement(ctx context.Context, siret string) (*Etablissement, error)
}

// StatusError is returned when the registry answers with a non-200 status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("sirene: registry returned status %d: %s", e.StatusCode, e.Body)
}

// Etablissement is an establishment record, limited to the fields the
// eligibility analysis consumes.
type Etablissement struct {
	Siret        string      `json:"siret"`
	Denomination string      `json:"denominationUsuelleEtablissement"`
	UniteLegale  UniteLegale `json:"uniteLegale"`
	Adresse      Adresse     `json:"adresseEtablissement"`
}

// UniteLegale is the legal unit that owns the establishment.
type UniteLegale struct {
	Denomination string `json:"denominationUniteLegale"`
}

// Adresse is the registered establishment address.
type Adresse struct {
	NumeroVoie     string `json:"numeroVoieEtablissement"`
	TypeVoie       string `json:"typeVoieEtablissement"`
	LibelleVoie    string `json:"libelleVoieEtablissement"`
	CodePostal     string `json:"codePostalEtablissement"`
	LibelleCommune string `json:"libelleCommuneEtablissement"`
	CodeCommune    string `json:"codeCommuneEtablissement"`
}

// OneLine renders the address as "numero type voie, code postal commune",
// the shape the BAN geocoder expects. Missing parts collapse cleanly.
func (a Adresse) OneLine() string {
	street := strings.Join(strings.Fields(a.NumeroVoie+" "+a.TypeVoie+" "+a.LibelleVoie), " ")
	locality := strings.Join(strings.Fields(a.CodePostal+" "+a.LibelleCommune), " ")
	switch {
	case street == "":
		return locality
	case locality == "":
		return street
	}
	return street + ", " + locality
}

// DisplayName returns the legal unit denomination, falling back to the
// establishment's usual name when the legal unit carries none.
func (e *Etablissement) DisplayName() string {
	if e.UniteLegale.Denomination != "" {
		return e.UniteLegale.Denomination
	}
	return e.Denomination
}

// envelope is the Sirene response wrapper around the establishment.
type envelope struct {
	Header struct {
		Statut  int    `json:"statut"`
		Message string `json:"message"`
	} `json:"header"`
	Etablissement *Etablissement `json:"etablissement"`
}

// Option configures the client.
type Option func(*client)

// WithBaseURL overrides the INSEE API base URL. Empty keeps the default.
func WithBaseURL(u string) Option {
	return func(c *client) {
		if u == "" {
			return
		}
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second limit for registry calls.
// Non-positive values keep the default.
func WithRateLimit(rps float64) Option {
	return func(c *client) {
		if rps <= 0 {
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

type client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a Sirene client authenticated with the given API key.
// The default limiter honors the INSEE public quota of 30 requests per
// minute.
func NewClient(apiKey string, opts ...Option) Client {
	c := &client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(2*time.Second), 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Etablissement fetches /siret/{siret} and unwraps the establishment.
func (c *client) Etablissement(ctx context.Context, siret string) (*Etablissement, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "sirene: rate limit")
	}

	reqURL := c.baseURL + "/siret/" + url.PathEscape(siret)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sirene: build request")
	}
	req.Header.Set("X-INSEE-Api-Key-Integration", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "sirene: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "sirene: read body")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: snippet(body)}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, eris.Wrap(err, "sirene: parse response")
	}
	if env.Etablissement == nil {
		return nil, eris.Errorf("sirene: response carries no establishment (statut %d)", env.Header.Statut)
	}
	return env.Etablissement, nil
}

// snippet truncates error bodies so a misbehaving upstream cannot flood logs.
func snippet(body []byte) string {
	const max = 512
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
