package mcp

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	apperrors "github.com/lk2023060901/websearch-mcp/internal/pkg/errors"
	"github.com/lk2023060901/websearch-mcp/internal/pkg/logger"
	"github.com/lk2023060901/websearch-mcp/internal/pkg/sse"
	"github.com/lk2023060901/websearch-mcp/internal/websearch/biz"
)

// Methods understood by the dispatcher.
const (
	MethodInitialize        = "initialize"
	MethodResourcesList     = "resources/list"
	MethodToolsList         = "tools/list"
	MethodToolsCall         = "tools/call"
	MethodNotifyInitialized = "notifications/initialized"
	MethodNotifyCancelled   = "notifications/cancelled"
)

const (
	msgQueryRequired = "query parameter is required"
	msgNoMethod      = "No method specified in request"
)

// SearchService runs the search pipeline for tools/call.
type SearchService interface {
	Search(ctx context.Context, p biz.Params) (*biz.Outcome, error)
}

// Dispatcher turns one request envelope into an ordered sequence of frames.
// It holds no per-request state and is safe for concurrent use.
type Dispatcher struct {
	search SearchService
	info   ServerInfo
	logger *logger.Logger
}

// NewDispatcher creates a new dispatcher
func NewDispatcher(search SearchService, info ServerInfo, log *logger.Logger) *Dispatcher {
	if info.Name == "" {
		info.Name = DefaultServerInfo.Name
	}
	if info.Version == "" {
		info.Version = DefaultServerInfo.Version
	}
	return &Dispatcher{search: search, info: info, logger: log.Named("mcp")}
}

// reply is the routed outcome of one envelope: a result, an error or
// nothing. final suppresses the trailing done frame.
type reply struct {
	result any
	err    *RPCError
	final  bool
}

type errorMessage struct {
	Message string `json:"message"`
}

func failWith(code int, msg string) reply {
	return reply{err: &RPCError{Code: code, Message: msg}}
}

// Dispatch parses body, routes it and writes the resulting frames to sink.
// Writing stops at the first failed frame; that error is returned.
func (d *Dispatcher) Dispatch(ctx context.Context, body []byte, sink sse.Sink) (err error) {
	log := d.logger.WithContext(ctx)

	env, perr := ParseEnvelope(body)
	if perr != nil {
		log.Warn("invalid request body", zap.Error(perr))
		return sink.Send(ctx, sse.Event{
			Type: sse.EventError,
			Data: errorMessage{Message: "Invalid JSON: " + perr.Error()},
		})
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic during dispatch", zap.Any("panic", r), zap.Stack("stack"))
			err = d.abort(ctx, sink, fmt.Errorf("%v", r))
		}
	}()

	log.Info("mcp request",
		zap.String("method", env.Method),
		zap.Bool("jsonrpc", env.JSONRPC),
		zap.ByteString("id", env.ID),
	)

	if err := d.emit(ctx, env, sink, d.route(ctx, env)); err != nil {
		if errors.Is(err, sse.ErrClosed) || ctx.Err() != nil {
			log.Debug("client went away", zap.Error(err))
			return err
		}
		log.Error("failed to write frame", zap.Error(err))
		return d.abort(ctx, sink, err)
	}
	return nil
}

func (d *Dispatcher) route(ctx context.Context, env *Envelope) reply {
	if !env.HasMethod {
		return failWith(apperrors.RPCInvalidRequest, msgNoMethod)
	}

	switch env.Method {
	case MethodInitialize:
		return reply{result: newInitializeResult(d.info)}
	case MethodResourcesList:
		return reply{result: newResourcesResult()}
	case MethodToolsList:
		return reply{result: newToolsResult()}
	case MethodNotifyInitialized:
		d.logger.WithContext(ctx).Info("client initialized")
		return reply{}
	case MethodNotifyCancelled:
		d.logger.WithContext(ctx).Debug("request cancelled by client",
			zap.String("request_id", env.Params.Get("requestId").String()),
			zap.String("reason", env.Params.Get("reason").String()),
		)
		return reply{}
	case MethodToolsCall:
		return d.callTool(ctx, env)
	default:
		return failWith(apperrors.RPCMethodNotFound, "Unknown method: "+env.Method)
	}
}

func (d *Dispatcher) callTool(ctx context.Context, env *Envelope) reply {
	name := env.Params.Get("name").String()
	if name != SearchToolName {
		return failWith(apperrors.RPCMethodNotFound, "Unknown tool: "+name)
	}

	p, err := biz.NewParams(searchArguments(env.Params.Get("arguments")))
	if err != nil {
		// The exchange ends here without a done frame.
		r := failWith(apperrors.RPCInvalidParams, msgQueryRequired)
		r.final = true
		return r
	}

	out, err := d.search.Search(ctx, p)
	if err != nil {
		d.logger.WithContext(ctx).Error("search failed", zap.String("query", p.Query), zap.Error(err))
		code := apperrors.ExtractCode(err)
		return failWith(apperrors.GetRPCCode(code), apperrors.FormatError(code, apperrors.GetDetails(err)))
	}
	return reply{result: newToolCallResult(out)}
}

// emit writes the reply frame, if any, followed by done unless the reply is
// final. Results addressed to notifications are dropped; errors are not.
func (d *Dispatcher) emit(ctx context.Context, env *Envelope, sink sse.Sink, r reply) error {
	var payload any
	switch {
	case r.err != nil:
		payload = env.wrapError(r.err)
	case r.result != nil && !env.IsNotification():
		payload = env.wrapResult(r.result)
	}

	if payload != nil {
		if err := sink.Send(ctx, sse.Event{Type: sse.EventMessage, Data: payload}); err != nil {
			return err
		}
	}
	if r.final {
		return nil
	}
	return sink.Send(ctx, sse.Event{Type: sse.EventDone})
}

// abort reports an unexpected failure as an error frame and closes the exchange.
func (d *Dispatcher) abort(ctx context.Context, sink sse.Sink, cause error) error {
	if err := sink.Send(ctx, sse.Event{
		Type: sse.EventError,
		Data: errorMessage{Message: "Error: " + cause.Error()},
	}); err != nil {
		return errors.Join(cause, err)
	}
	if err := sink.Send(ctx, sse.Event{Type: sse.EventDone}); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}
