package mcp

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// JSONRPCVersion is the only version marker that switches on response wrapping.
const JSONRPCVersion = "2.0"

// Envelope is one parsed inbound request. It is not modified during dispatch.
type Envelope struct {
	Method    string
	HasMethod bool
	Params    gjson.Result
	// ID is nil when the id is absent or null.
	ID      json.RawMessage
	JSONRPC bool
}

// ErrNotObject is returned for bodies that are valid JSON but not an object.
var ErrNotObject = errors.New("request body must be a JSON object")

// ParseEnvelope reads a request body.
func ParseEnvelope(body []byte) (*Envelope, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, ErrNotObject
	}

	env := &Envelope{Params: doc.Get("params")}
	if m := doc.Get("method"); m.Exists() && m.Type != gjson.Null {
		env.HasMethod = true
		env.Method = m.String()
	}
	if id := doc.Get("id"); id.Exists() && id.Type != gjson.Null {
		env.ID = json.RawMessage(id.Raw)
	}
	if v := doc.Get("jsonrpc"); v.Type == gjson.String && v.Str == JSONRPCVersion {
		env.JSONRPC = true
	}
	return env, nil
}

// IsNotification reports whether the envelope expects no reply.
func (e *Envelope) IsNotification() bool {
	return e.ID == nil
}

// Wrapped reports whether replies carry the JSON-RPC response envelope.
func (e *Envelope) Wrapped() bool {
	return e.JSONRPC && e.ID != nil
}

// RPCError is the error object of a reply.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  any             `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// wrapResult shapes a result for the envelope's mode.
func (e *Envelope) wrapResult(result any) any {
	if !e.Wrapped() {
		return result
	}
	return rpcResponse{JSONRPC: JSONRPCVersion, ID: e.ID, Result: result}
}

// wrapError shapes an error for the envelope's mode.
func (e *Envelope) wrapError(rpcErr *RPCError) any {
	if !e.Wrapped() {
		return rpcErr
	}
	return rpcResponse{JSONRPC: JSONRPCVersion, ID: e.ID, Error: rpcErr}
}
