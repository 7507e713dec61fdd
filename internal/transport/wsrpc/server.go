package wsrpc

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/suderio/scenario-engine/internal/invoke"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Handler exposes a transport as a node. Rejections become CodeRejected
// errors; transport failures become CodeInternal.
func Handler(t invoke.Transport, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			if logger != nil {
				logger.Printf("wsrpc: upgrade: %v", err)
			}
			return
		}
		defer conn.Close()

		for {
			var req request
			if err := conn.ReadJSON(&req); err != nil {
				if logger != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					logger.Printf("wsrpc: read: %v", err)
				}
				return
			}
			resp := serve(r.Context(), t, req)
			if err := conn.WriteJSON(resp); err != nil {
				if logger != nil {
					logger.Printf("wsrpc: write: %v", err)
				}
				return
			}
		}
	})
}

func serve(ctx context.Context, t invoke.Transport, req request) response {
	resp := response{JSONRPC: "2.0", ID: req.ID}
	if req.JSONRPC != "2.0" {
		resp.Error = &RPCError{Code: CodeInvalidRequest, Message: "jsonrpc must be 2.0"}
		return resp
	}
	if req.Method != MethodCall && req.Method != MethodDeploy {
		resp.Error = &RPCError{Code: CodeMethodNotFound, Message: "method not found: " + req.Method}
		return resp
	}

	var params []callParams
	if err := json.Unmarshal(req.Params, &params); err != nil || len(params) != 1 {
		resp.Error = &RPCError{Code: CodeParseError, Message: "expected one call parameter"}
		return resp
	}
	p := params[0]
	p.Call.Deploy = req.Method == MethodDeploy

	out, err := t.Send(ctx, p.Call, p.From)
	switch {
	case err != nil:
		resp.Error = &RPCError{Code: CodeInternal, Message: err.Error()}
	case out.Rejection != nil:
		resp.Error = &RPCError{Code: CodeRejected, Message: "execution reverted", Data: out.Rejection}
	default:
		resp.Result = &out
	}
	return resp
}
