package pose

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ergolab/human-factors-backend/internal/geom"
)

// httpEstimator is the concrete Estimator backed by a pose-inference service
// (SAM 3D Body behind an HTTP endpoint). The service accepts a raw encoded
// image and returns per-person joint arrays; image decoding and the model
// execution context are entirely its concern.
type httpEstimator struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPEstimator returns an Estimator that POSTs images to the inference
// service at baseURL. timeout should be set above the service's p99 inference
// latency; per-request cancellation still comes from ctx.
func NewHTTPEstimator(baseURL string, timeout time.Duration) Estimator {
	return &httpEstimator{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// ─── INFERENCE SERVICE SHAPES ────────────────────────────────────────────────

type estimateResponse struct {
	People []struct {
		Joints3D [][3]float64 `json:"joints_3d"`
	} `json:"people"`
	Error string `json:"error"`
}

// ─── IMPLEMENTATION ───────────────────────────────────────────────────────────

// Estimate sends one image to the inference service and returns the decoded
// joint frames. An image with no detectable person yields an empty slice and
// no error; it is the caller's pipeline that decides whether that is fatal.
func (c *httpEstimator) Estimate(ctx context.Context, image []byte) ([]Frame, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/estimate",
		bytes.NewReader(image),
	)
	if err != nil {
		return nil, fmt.Errorf("pose: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pose: http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20)) // 4 MB cap
	if err != nil {
		return nil, fmt.Errorf("pose: read response body: %w", err)
	}

	var parsed estimateResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return nil, fmt.Errorf("pose: unmarshal response: %w", err)
	}

	if parsed.Error != "" {
		return nil, fmt.Errorf("pose: service error: %s", parsed.Error)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pose: unexpected status %d: %.200s", resp.StatusCode, string(respBytes))
	}

	frames := make([]Frame, 0, len(parsed.People))
	for _, p := range parsed.People {
		joints := make([]geom.Vec3, len(p.Joints3D))
		for i, j := range p.Joints3D {
			joints[i] = geom.Vec3{X: j[0], Y: j[1], Z: j[2]}
		}
		frames = append(frames, Frame{Joints: joints})
	}

	return frames, nil
}
