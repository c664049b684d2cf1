package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const defaultCoquiServerEndpoint = "http://localhost:5002"

// coquiServer talks to a running Coqui tts-server. The server decides the
// model, so Request.Model is not sent.
type coquiServer struct {
	endpoint string
	client   *http.Client
}

func newCoquiServer(endpoint string, client *http.Client) *coquiServer {
	if endpoint == "" {
		endpoint = defaultCoquiServerEndpoint
	}
	return &coquiServer{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		client:   client,
	}
}

func (c *coquiServer) Backend() Backend {
	return CoquiServer
}

func (c *coquiServer) Synthesize(ctx context.Context, req Request, dst string) error {
	u, err := url.Parse(c.endpoint + "/api/tts")
	if err != nil {
		return fmt.Errorf("invalid endpoint '%s': %w", c.endpoint, err)
	}
	query := url.Values{}
	query.Set("text", req.Text)
	query.Set("speaker_id", req.Voice)
	query.Set("language_id", req.Language)
	query.Set("style_wav", "")
	u.RawQuery = query.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("tts-server %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return writeFile(dst, resp.Body)
}
