package trm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/andina-erp/andina-erp/internal/numfmt"
)

// SourcePort fetches the latest published rate from the external service.
type SourcePort interface {
	FetchLatest(ctx context.Context) (*Rate, error)
}

// HTTPSource reads the datos.gov.co TRM dataset.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource constructs the source against baseURL.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// sourceRow mirrors the dataset's JSON shape. All values come back as
// strings.
type sourceRow struct {
	Valor         string `json:"valor"`
	VigenciaDesde string `json:"vigenciadesde"`
	VigenciaHasta string `json:"vigenciahasta"`
}

const sourceTimeLayout = "2006-01-02T15:04:05.000"

// FetchLatest pulls the most recent row, ordered by validity start.
func (s *HTTPSource) FetchLatest(ctx context.Context) (*Rate, error) {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("trm: source url: %w", err)
	}
	q := u.Query()
	q.Set("$order", "vigenciadesde DESC")
	q.Set("$limit", "1")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("trm: build request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trm: fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trm: fetch: unexpected status %d", resp.StatusCode)
	}

	var rows []sourceRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("trm: decode: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("trm: source returned no rows")
	}
	return rows[0].toRate()
}

func (r sourceRow) toRate() (*Rate, error) {
	valor := numfmt.ParseAmount(r.Valor)
	if valor <= 0 {
		return nil, fmt.Errorf("trm: invalid valor %q", r.Valor)
	}
	desde, err := time.Parse(sourceTimeLayout, r.VigenciaDesde)
	if err != nil {
		return nil, fmt.Errorf("trm: parse vigenciadesde: %w", err)
	}
	hasta, err := time.Parse(sourceTimeLayout, r.VigenciaHasta)
	if err != nil {
		return nil, fmt.Errorf("trm: parse vigenciahasta: %w", err)
	}
	return &Rate{Valor: valor, VigenteDesde: desde, VigenteHasta: hasta}, nil
}
