// Package mcpclient talks to the LinkedIn MCP server over streamable HTTP.
// It exposes the two tools the pipeline consumes: search_jobs and
// get_job_details.
package mcpclient

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	mcpclient "github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/ArseneVrnd/linkedin-mcp-server/errors"
	"github.com/ArseneVrnd/linkedin-mcp-server/tracker"
)

// Client is a lazily connected MCP client. The first tool call establishes
// the session; a failed call drops it so the next call reconnects.
type Client struct {
	url     string
	timeout time.Duration
	logger  *zap.SugaredLogger

	mu     sync.Mutex
	client *mcpclient.Client
}

// New creates a client for the MCP endpoint at url. timeout bounds each
// individual tool call.
func New(url string, timeout time.Duration, logger *zap.SugaredLogger) *Client {
	return &Client{
		url:     url,
		timeout: timeout,
		logger:  logger,
	}
}

// SearchJobs invokes the search_jobs tool and returns its text payload.
func (c *Client) SearchJobs(ctx context.Context, keywords, location string, limit int) (string, error) {
	return c.callTool(ctx, "search_jobs", map[string]interface{}{
		"keywords": keywords,
		"location": location,
		"limit":    limit,
	})
}

// GetJobDetails invokes get_job_details for an external listing id and
// decodes the enrichment payload.
func (c *Client) GetJobDetails(ctx context.Context, externalID string) (*tracker.JobDetails, error) {
	raw, err := c.callTool(ctx, "get_job_details", map[string]interface{}{
		"job_id": externalID,
	})
	if err != nil {
		return nil, err
	}

	var details tracker.JobDetails
	if err := json.Unmarshal([]byte(raw), &details); err != nil {
		return nil, errors.Wrapf(err, "decode job details for %s", externalID)
	}
	return &details, nil
}

// Connected reports whether the MCP server is reachable, connecting if
// necessary.
func (c *Client) Connected(ctx context.Context) bool {
	_, err := c.ensureConnected(ctx)
	return err == nil
}

// Close tears down the MCP session.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		_ = c.client.Close()
		c.client = nil
	}
}

// callTool runs one tool call with the configured timeout and returns the
// concatenated text content of the result.
func (c *Client) callTool(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	session, err := c.ensureConnected(ctx)
	if err != nil {
		return "", err
	}

	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := session.CallTool(ctx, req)
	if err != nil {
		// Drop the session so the next call reconnects
		c.disconnect()
		return "", errors.Wrapf(err, "call tool %s", name)
	}

	text := textContent(result)
	if result.IsError {
		return "", errors.Newf("tool %s returned an error: %s", name, text)
	}
	return text, nil
}

// ensureConnected returns the live session, establishing it on first use.
func (c *Client) ensureConnected(ctx context.Context) (*mcpclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	session, err := mcpclient.NewStreamableHttpClient(c.url)
	if err != nil {
		return nil, errors.Wrapf(err, "create MCP client for %s", c.url)
	}

	if err := session.Start(ctx); err != nil {
		return nil, errors.Wrapf(err, "connect to MCP server at %s", c.url)
	}

	initReq := mcp.InitializeRequest{}
	initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
	initReq.Params.ClientInfo = mcp.Implementation{
		Name:    "job-tracker",
		Version: "1.0.0",
	}
	if _, err := session.Initialize(ctx, initReq); err != nil {
		_ = session.Close()
		return nil, errors.Wrapf(err, "initialize MCP session with %s", c.url)
	}

	c.logger.Infow("Connected to MCP server", "url", c.url)
	c.client = session
	return c.client, nil
}

func (c *Client) disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.client != nil {
		_ = c.client.Close()
		c.client = nil
	}
}

// textContent concatenates the text blocks of a tool result.
func textContent(result *mcp.CallToolResult) string {
	var text string
	for _, content := range result.Content {
		if tc, ok := mcp.AsTextContent(content); ok {
			text += tc.Text
		}
	}
	return text
}
