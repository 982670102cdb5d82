package history

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/chat/client"
	"github.com/tailored-agentic-units/chat/core/protocol"
)

// ListMessagesProcedure is the Connect procedure serving history pages.
const ListMessagesProcedure = "/chat.history.v1.HistoryService/ListMessages"

// ErrMalformedPage is returned when a page does not match the wire shape.
var ErrMalformedPage = errors.New("malformed history page")

// Connect is a Provider backed by a Connect RPC history service. Requests
// and responses are google.protobuf.Struct messages:
//
//	request:  {"before_id": string, "limit": number}
//	response: {"messages": [{"id", "content", "role", "timestamp"}]}
type Connect struct {
	client *connect.Client[structpb.Struct, structpb.Struct]
}

// NewConnect creates a Connect provider for the service at baseURL.
func NewConnect(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Connect {
	return &Connect{
		client: connect.NewClient[structpb.Struct, structpb.Struct](
			httpClient,
			strings.TrimRight(baseURL, "/")+ListMessagesProcedure,
			opts...,
		),
	}
}

// Fetch requests one page. Unavailable, cancelled, and timed-out calls are
// reported as network errors; every other failure is a service error.
func (c *Connect) Fetch(ctx context.Context, beforeID string, limit int) ([]protocol.Message, error) {
	req, err := structpb.NewStruct(map[string]any{
		"before_id": beforeID,
		"limit":     limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build history request: %w", err)
	}

	res, err := c.client.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, requestError(err)
	}

	page, err := decodePage(res.Msg)
	if err != nil {
		return nil, &client.RequestError{Kind: client.KindService, Err: err}
	}
	return page, nil
}

// FetchFunc serves one history page.
type FetchFunc func(ctx context.Context, beforeID string, limit int) ([]protocol.Message, error)

// NewHandler returns the path and handler of a Connect history service
// backed by fetch, ready to mount on an http.ServeMux.
func NewHandler(fetch FetchFunc, opts ...connect.HandlerOption) (string, http.Handler) {
	handler := connect.NewUnaryHandler(
		ListMessagesProcedure,
		func(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
			fields := req.Msg.GetFields()
			beforeID := fields["before_id"].GetStringValue()
			limit := int(fields["limit"].GetNumberValue())
			if limit <= 0 {
				return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("limit must be positive"))
			}

			page, err := fetch(ctx, beforeID, limit)
			if err != nil {
				return nil, connect.NewError(connect.CodeInternal, err)
			}

			msg, err := encodePage(page)
			if err != nil {
				return nil, connect.NewError(connect.CodeInternal, err)
			}
			return connect.NewResponse(msg), nil
		},
		opts...,
	)
	return ListMessagesProcedure, handler
}

func requestError(err error) error {
	switch connect.CodeOf(err) {
	case connect.CodeUnavailable, connect.CodeDeadlineExceeded, connect.CodeCanceled:
		return &client.RequestError{Kind: client.KindNetwork, Err: err}
	default:
		return &client.RequestError{Kind: client.KindService, Err: err}
	}
}

func encodePage(page []protocol.Message) (*structpb.Struct, error) {
	list := make([]any, len(page))
	for i, msg := range page {
		list[i] = map[string]any{
			"id":        msg.ID,
			"content":   msg.Content,
			"role":      string(msg.Role),
			"timestamp": msg.Timestamp,
		}
	}
	return structpb.NewStruct(map[string]any{"messages": list})
}

func decodePage(msg *structpb.Struct) ([]protocol.Message, error) {
	values := msg.GetFields()["messages"].GetListValue().GetValues()
	page := make([]protocol.Message, 0, len(values))
	for i, v := range values {
		entry := v.GetStructValue()
		if entry == nil {
			return nil, fmt.Errorf("%w: entry %d is not an object", ErrMalformedPage, i)
		}
		fields := entry.GetFields()
		page = append(page, protocol.Message{
			ID:        fields["id"].GetStringValue(),
			Content:   fields["content"].GetStringValue(),
			Role:      protocol.Role(fields["role"].GetStringValue()),
			Timestamp: int64(fields["timestamp"].GetNumberValue()),
		})
	}
	return page, nil
}
