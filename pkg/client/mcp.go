package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/lk2023060901/websearch-mcp/internal/pkg/sse"
)

const (
	mcpPath   = "/mcp"
	eventDone = "done"
	eventErr  = "error"
)

// Call posts one JSON-RPC envelope to /mcp and collects the SSE frames up
// to and including done. A nil id sends a notification.
func (c *Client) Call(ctx context.Context, method string, id any, params any) ([]Event, error) {
	env := map[string]any{"jsonrpc": "2.0", "method": method}
	if id != nil {
		env["id"] = id
	}
	if params != nil {
		env["params"] = params
	}

	resp, err := c.send(ctx, http.MethodPost, mcpPath, env, "text/event-stream")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var events []Event
	rd := sse.NewReader(resp.Body)
	for {
		f, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return events, fmt.Errorf("failed to read stream: %w", err)
		}
		events = append(events, Event{Type: f.Event, Data: json.RawMessage(f.Data)})
		if f.Event == eventDone {
			break
		}
	}

	if len(events) == 0 && (resp.StatusCode < 200 || resp.StatusCode >= 300) {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return events, nil
}

// SearchTool calls the web_search tool and decodes its result. Errors
// reported in the stream come back as *RPCError.
func (c *Client) SearchTool(ctx context.Context, query string, maxResults int) (*ToolResult, error) {
	args := map[string]any{"query": query}
	if maxResults > 0 {
		args["max_results"] = maxResults
	}

	events, err := c.Call(ctx, "tools/call", 1, map[string]any{
		"name":      "web_search",
		"arguments": args,
	})
	if err != nil {
		return nil, err
	}

	for _, ev := range events {
		r := gjson.ParseBytes(ev.Data)
		switch {
		case ev.Type == eventErr:
			return nil, &RPCError{Message: r.Get("message").String()}
		case r.Get("error").Exists():
			return nil, &RPCError{Code: int(r.Get("error.code").Int()), Message: r.Get("error.message").String()}
		case r.Get("result").Exists():
			return decodeToolResult(r.Get("result"))
		}
	}
	return nil, fmt.Errorf("stream ended without a result")
}

func decodeToolResult(r gjson.Result) (*ToolResult, error) {
	sc := r.Get("structuredContent")
	out := &ToolResult{
		Text:   r.Get("content.0.text").String(),
		Query:  sc.Get("query").String(),
		Count:  int(sc.Get("count").Int()),
		Cached: sc.Get("cached").Bool(),
	}
	if results := sc.Get("results"); results.IsArray() {
		if err := json.Unmarshal([]byte(results.Raw), &out.Results); err != nil {
			return nil, fmt.Errorf("failed to decode results: %w", err)
		}
	}
	return out, nil
}
