package http_server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"fleetauctiongo/internal/http/auctionhandler"
	"fleetauctiongo/internal/http/disposalhandler"
	"fleetauctiongo/internal/services/auction"
	"fleetauctiongo/internal/services/bidledger"
	"fleetauctiongo/internal/services/disposal"
	"fleetauctiongo/internal/ws"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/abrar71/swaggerfilesv2" // swagger embed files
)

type httpServer struct {
	listenPort  uint16
	srv         http.Server
	ln          net.Listener
	disposalSvc disposal.IDisposalService
	auctionSvc  auction.IAuctionService
	ledger      bidledger.IBidLedger
	wsSrv       *ws.WsServer
	ctx         context.Context
}

func NewHttpServer(ctx context.Context, listenPort uint16, wsSrv *ws.WsServer,
	disposalSvc disposal.IDisposalService, auctionSvc auction.IAuctionService,
	ledger bidledger.IBidLedger) *httpServer {
	return &httpServer{
		listenPort:  listenPort,
		wsSrv:       wsSrv,
		disposalSvc: disposalSvc,
		auctionSvc:  auctionSvc,
		ledger:      ledger,
		ctx:         ctx,
	}
}

func (h *httpServer) Start() error {
	var err error
	listenAddr := fmt.Sprintf(":%d", h.listenPort)
	h.ln, err = net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}

	routerEngine := gin.New()

	// Swagger UI and API specs
	routerEngine.StaticFS("/swagger-apis", http.FS(swaggerfilesv2.FS))
	routerEngine.Static("/api-specs", "api_specs")

	routerEngine.Use(ginzap.Ginzap(zap.L(), time.RFC3339, true))
	routerEngine.Use(ginzap.RecoveryWithZap(zap.L(), true))

	// live auction feed
	routerEngine.GET("/ws", h.wsSrv.Handle)

	// REST API
	disposalhandler.New(h.disposalSvc).Register(routerEngine)
	auctionhandler.New(h.auctionSvc, h.ledger).Register(routerEngine)

	h.srv = http.Server{
		Handler: routerEngine,
	}

	return h.srv.Serve(h.ln)
}

// Dispose gracefully shuts the HTTP server down.
// It waits up to 10 s for in-flight requests to finish.
func (h *httpServer) Dispose() error {
	ctx, cancel := context.WithTimeout(h.ctx, 10*time.Second)
	defer cancel()

	if err := h.srv.Shutdown(ctx); err != nil {
		zap.L().Error("http_dispose", zap.Error(err))
		return err
	}

	if ctx.Err() == context.DeadlineExceeded {
		zap.L().Error("http_dispose", zap.Error(errors.New("shutdown timed out")))
	}

	return nil
}
