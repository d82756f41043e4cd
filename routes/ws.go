package routes

import (
	"context"
	"time"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/luciano-gp/pet-found/realtime"
	"github.com/luciano-gp/pet-found/utils"
)

// ChatWebsocket upgrades the connection and streams chat events to the
// caller until the socket closes. Clients authenticate with
// ?token=<accessToken> since browsers cannot set headers on websocket
// upgrades.
func ChatWebsocket(ctx iris.Context) {
	claims := jwt.Get(ctx).(*utils.AccessToken)

	conn, err := websocket.Accept(ctx.ResponseWriter(), ctx.Request(), &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusInternalError, "connection closed")

	client := realtime.DefaultHub.AddClient(claims.ID)
	defer realtime.DefaultHub.RemoveClient(client)

	connCtx, cancel := context.WithCancel(ctx.Request().Context())
	defer cancel()

	// reads only watch for the peer closing
	go func() {
		defer cancel()
		for {
			if _, _, readErr := conn.Read(connCtx); readErr != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case ev, ok := <-client.Send:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			writeCtx, writeCancel := context.WithTimeout(connCtx, 10*time.Second)
			writeErr := wsjson.Write(writeCtx, conn, ev)
			writeCancel()
			if writeErr != nil {
				return
			}
		case <-pingTicker.C:
			pingCtx, pingCancel := context.WithTimeout(connCtx, 10*time.Second)
			pingErr := conn.Ping(pingCtx)
			pingCancel()
			if pingErr != nil {
				return
			}
		case <-connCtx.Done():
			conn.Close(websocket.StatusNormalClosure, "")
			return
		}
	}
}
