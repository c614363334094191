// Package printer implementa el cliente HTTP del puente de impresora fiscal.
// El puente corre en la máquina del punto de venta y expone POST /print y
// GET /status; este cliente es la única pieza del servidor que habla con él.
package printer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tu-usuario/facturacion-pro/internal/application/billing"
)

var _ billing.PrinterClient = (*HTTPPrinterClient)(nil)

// HTTPPrinterClient implementa billing.PrinterClient sobre HTTP/JSON.
type HTTPPrinterClient struct {
	httpClient *http.Client
}

// NewHTTPPrinterClient construye el cliente con un timeout corto: el puente es
// local al punto de venta y si no responde rápido se lo da por caído.
func NewHTTPPrinterClient() *HTTPPrinterClient {
	return &HTTPPrinterClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Print envía el documento al puente y devuelve su veredicto. Un error aquí
// nunca debe revertir la liquidación: el que llama decide si reintenta.
func (c *HTTPPrinterClient) Print(ctx context.Context, endpoint string, payload *billing.PrintPayload) (*billing.PrintResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("printer: serializar payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, joinURL(endpoint, "/print"), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("printer: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("printer: puente inalcanzable: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("printer: leer respuesta: %w", err)
	}
	var result billing.PrintResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("printer: respuesta inválida del puente (HTTP %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK && result.Message == "" {
		result.Message = fmt.Sprintf("puente respondió HTTP %d", resp.StatusCode)
	}
	return &result, nil
}

// Status sondea la vida del puente.
func (c *HTTPPrinterClient) Status(ctx context.Context, endpoint string) (*billing.BridgeStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, joinURL(endpoint, "/status"), nil)
	if err != nil {
		return nil, fmt.Errorf("printer: crear request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("printer: puente inalcanzable: %w", err)
	}
	defer resp.Body.Close()

	var status billing.BridgeStatus
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&status); err != nil {
		return nil, fmt.Errorf("printer: respuesta inválida del puente: %w", err)
	}
	return &status, nil
}

func joinURL(endpoint, path string) string {
	return strings.TrimRight(endpoint, "/") + path
}
