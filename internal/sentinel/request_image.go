package sentinel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Vibencrypt/COD492/internal/logger"
	"github.com/Vibencrypt/COD492/internal/properties"
	"github.com/paulmach/orb"
	"golang.org/x/oauth2/clientcredentials"
)

var (
	ErrUnauthorized  = errors.New("unauthorized access, check your client ID and secret")
	ErrImageNotFound = errors.New("image not found")
)

var (
	retries    = 10
	retryDelay = 5 * time.Second
)

const maxPixels = 2500

func calculatePixels(distance float64, resolution float64) int {
	pixels := distance * (111_000.0 / resolution)
	if pixels < 1 {
		return 1
	}
	if pixels > maxPixels {
		return maxPixels
	}
	return int(pixels)
}

func buildRequest(product Product, from, to time.Time, bound orb.Bound) ([]byte, error) {
	dataFilter := map[string]any{
		"timeRange": map[string]string{
			"from": from.Format(time.RFC3339),
			"to":   to.Format(time.RFC3339),
		},
	}
	for k, v := range product.DataFilter {
		dataFilter[k] = v
	}

	data := map[string]any{
		"type":       product.Collection,
		"dataFilter": dataFilter,
	}
	if len(product.Processing) > 0 {
		data["processing"] = product.Processing
	}

	payload := map[string]any{
		"input": map[string]any{
			"bounds": map[string]any{
				"bbox": []float64{bound.Min.X(), bound.Min.Y(), bound.Max.X(), bound.Max.Y()},
				"properties": map[string]string{
					"crs": "http://www.opengis.net/def/crs/OGC/1.3/CRS84",
				},
			},
			"data": []map[string]any{data},
		},
		"output": map[string]any{
			"width":  calculatePixels(bound.Max.X()-bound.Min.X(), product.Resolution),
			"height": calculatePixels(bound.Max.Y()-bound.Min.Y(), product.Resolution),
			"responses": []map[string]any{
				{
					"identifier": "default",
					"format":     map[string]string{"type": "image/tiff"},
				},
			},
		},
		"evalscript": product.Evalscript,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}
	return body, nil
}

// requestImage downloads product over bound (lon/lat) for the window [from, to]
// as a GeoTIFF. Credentials are comma-separated lists tried in order.
func requestImage(ctx context.Context, product Product, from, to time.Time, bound orb.Bound) ([]byte, error) {
	log := logger.New("sentinel")

	requestBody, err := buildRequest(product, from, to, bound)
	if err != nil {
		return nil, err
	}

	clientIDs := properties.CopernicusClientIDs()
	clientSecrets := properties.CopernicusClientSecrets()
	tokenURL := properties.CopernicusTokenURL()
	if clientIDs == "" || clientSecrets == "" || tokenURL == "" {
		return nil, fmt.Errorf("missing required environment variables: COPERNICUS_CLIENT_ID, COPERNICUS_CLIENT_SECRET, or COPERNICUS_TOKEN_URL")
	}

	clientIDList := strings.Split(clientIDs, ",")
	clientSecretList := strings.Split(clientSecrets, ",")
	if len(clientIDList) != len(clientSecretList) {
		return nil, fmt.Errorf("mismatched number of client IDs and secrets")
	}

	for i, clientID := range clientIDList {
		config := &clientcredentials.Config{
			ClientID:     strings.TrimSpace(clientID),
			ClientSecret: strings.TrimSpace(clientSecretList[i]),
			TokenURL:     tokenURL,
		}
		httpClient := config.Client(ctx)

		var content []byte
		content, err = post(ctx, httpClient, requestBody)
		if err == nil {
			return content, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn().Err(err).Int("credential", i).Msg("credential failed, trying next")
	}

	return nil, err
}

func post(ctx context.Context, httpClient *http.Client, body []byte) ([]byte, error) {
	log := logger.New("sentinel")

	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, properties.CopernicusProcessURL(), bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "image/tiff")

		response, err := httpClient.Do(req)
		if err == nil && response.StatusCode == http.StatusOK {
			content, err := io.ReadAll(response.Body)
			response.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("failed to read response body: %w", err)
			}
			return content, nil
		}

		if response != nil {
			respBody, _ := io.ReadAll(response.Body)
			response.Body.Close()
			if response.StatusCode == http.StatusForbidden || response.StatusCode == http.StatusUnauthorized {
				return nil, ErrUnauthorized
			}
			lastErr = fmt.Errorf("status %d: %s", response.StatusCode, strings.TrimSpace(string(respBody)))
		} else {
			lastErr = err
		}
		log.Warn().Int("attempt", attempt).Err(lastErr).Msg("process request failed")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	return nil, fmt.Errorf("failed to request image after %d attempts: %w", retries, lastErr)
}
