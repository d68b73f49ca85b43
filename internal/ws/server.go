package ws

import (
	"net/http"
	"time"

	"fleetauctiongo/internal/services/auction"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 10 * time.Second // must be < pongWait
)

// WsServer exposes a read-only live feed per auction: an initial snapshot
// followed by every bid/settlement event fanned out from Redis. Bids are
// placed over the REST API, not over the socket.
type WsServer struct {
	hub      *Hub
	auctions auction.IAuctionService
	upgrader websocket.Upgrader
}

func NewWsServer(hub *Hub, auctions auction.IAuctionService) *WsServer {
	return &WsServer{
		hub:      hub,
		auctions: auctions,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  512,
			WriteBufferSize: 1024,
			// Observers only; same-origin enforcement belongs to the gateway.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (s *WsServer) Handle(ginCtx *gin.Context) {
	auctionID := ginCtx.Query("auction_id")
	if auctionID == "" {
		ginCtx.JSON(http.StatusBadRequest, gin.H{"error": "auction_id is required"})
		return
	}

	rawConn, err := s.upgrader.Upgrade(ginCtx.Writer, ginCtx.Request, nil)
	if err != nil {
		zap.L().Warn("ws.upgrade", zap.Error(err))
		return
	}

	conn := &clientConn{rawConn: rawConn}
	s.hub.Join(auctionID, conn)

	if dto, err := s.auctions.Get(ginCtx.Request.Context(), auctionID); err == nil {
		_ = conn.writeJSON(gin.H{"event": "auction.snapshot", "body": dto})
	}

	go s.reader(auctionID, conn)
	go s.pinger(conn)
}

// reader only services control frames and detects disconnects; inbound data
// frames are discarded.
func (s *WsServer) reader(auctionID string, conn *clientConn) {
	defer s.hub.Leave(auctionID, conn)

	conn.rawConn.SetReadLimit(512)
	_ = conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	conn.rawConn.SetPongHandler(func(string) error {
		return conn.rawConn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.rawConn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *WsServer) pinger(conn *clientConn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		if err := conn.ping(); err != nil {
			conn.close()
			return
		}
	}
}
