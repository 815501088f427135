package storageserver

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/arvindsh/dfscore/internal/logger"
	"github.com/arvindsh/dfscore/internal/metrics"
	"github.com/arvindsh/dfscore/internal/protocol/wire"
	"github.com/arvindsh/dfscore/internal/session"
)

// Config holds everything needed to start a storage server.
type Config struct {
	ClientFacingAddr  string
	NMFacingAddr      string
	NMAddr            string
	StorageRoot       string
	ShadowRoot        string
	HeartbeatInterval time.Duration
}

// Server is one storage server process: it accepts client-facing
// connections (read/write/stream/undo) and NM-facing connections
// (create/delete/read/stat forwarded by the NM), and separately sends
// REGISTER_SS and periodic HEARTBEAT to the name server.
type Server struct {
	cfg     Config
	storage *Storage
	locks   *LockTable
	metrics *metrics.Ops

	clientListener net.Listener
	nmListener     net.Listener

	shutdown     chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup
}

// NewServer creates a storage server with a fresh lock table, not yet
// listening.
func NewServer(cfg Config, ops *metrics.Ops) *Server {
	return &Server{
		cfg:     cfg,
		storage: NewStorage(cfg.StorageRoot, cfg.ShadowRoot),
		locks:   NewLockTable(),
		metrics: ops,
		shutdown: make(chan struct{}),
	}
}

// Serve starts both listeners, registers with the NM, begins the
// heartbeat loop, and blocks until ctx is cancelled or Stop is called.
func (s *Server) Serve(ctx context.Context) error {
	clientLn, err := net.Listen("tcp", s.cfg.ClientFacingAddr)
	if err != nil {
		return fmt.Errorf("listen client-facing %s: %w", s.cfg.ClientFacingAddr, err)
	}
	s.clientListener = clientLn

	nmLn, err := net.Listen("tcp", s.cfg.NMFacingAddr)
	if err != nil {
		_ = clientLn.Close()
		return fmt.Errorf("listen nm-facing %s: %w", s.cfg.NMFacingAddr, err)
	}
	s.nmListener = nmLn

	logger.Info("storage server listening", "client_addr", s.cfg.ClientFacingAddr, "nm_addr", s.cfg.NMFacingAddr)

	if err := s.register(); err != nil {
		logger.Error("storage server registration failed", logger.Err(err))
	}

	s.wg.Add(3)
	go s.acceptLoop(ctx, clientLn, s.handleClientConn)
	go s.acceptLoop(ctx, nmLn, s.handleNMConn)
	go s.heartbeatLoop(ctx)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.wg.Wait()
	return nil
}

// Stop closes both listeners and signals background loops to exit.
func (s *Server) Stop() {
	s.shutdownOnce.Do(func() {
		close(s.shutdown)
		if s.clientListener != nil {
			_ = s.clientListener.Close()
		}
		if s.nmListener != nil {
			_ = s.nmListener.Close()
		}
	})
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener, handle func(*wire.Conn)) {
	defer s.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return
			default:
				logger.Debug("storage server accept error", logger.Err(err))
				return
			}
		}

		connID := session.NewID()
		lc := logger.NewLogContext(connID, conn.RemoteAddr().String())
		connCtx := logger.WithContext(ctx, lc)

		s.wg.Add(1)
		go func(c net.Conn) {
			defer s.wg.Done()
			defer c.Close()
			logger.DebugCtx(connCtx, "storage server connection accepted")
			handle(wire.NewConn(c))
		}(conn)
	}
}

// handleClientConn dispatches exactly one operation per client-facing
// connection, matching the one-session-per-connection model used for
// reads, writes, streams, and undos.
func (s *Server) handleClientConn(conn *wire.Conn) {
	req, err := conn.ReadRecord()
	if err != nil {
		logger.Debug("storage server client read failed", logger.Err(err))
		return
	}

	start := time.Now()
	op := req.Kind.String()
	result := wire.Success.String()
	defer func() {
		if s.metrics != nil {
			s.metrics.Observe(op, result, time.Since(start).Seconds())
		}
	}()

	switch req.Kind {
	case wire.KindRead:
		s.handleRead(conn, req)
	case wire.KindWrite:
		s.handleWrite(conn, req)
	case wire.KindStream:
		s.handleStream(conn, req)
	case wire.KindUndo:
		s.handleUndo(conn, req)
	default:
		result = wire.ErrInvalidCommand.String()
		_ = conn.WriteRecord(wire.Response(wire.ErrInvalidCommand, "unsupported client operation"))
	}
}

// handleNMConn dispatches SS_CREATE/SS_DELETE/SS_READ/SS_STAT forwarded by
// the name server.
func (s *Server) handleNMConn(conn *wire.Conn) {
	req, err := conn.ReadRecord()
	if err != nil {
		logger.Debug("storage server nm-facing read failed", logger.Err(err))
		return
	}

	switch req.Kind {
	case wire.KindSSCreate:
		s.handleSSCreate(conn, req)
	case wire.KindSSDelete:
		s.handleSSDelete(conn, req)
	case wire.KindSSRead:
		s.handleRead(conn, req)
	case wire.KindSSStat:
		s.handleSSStat(conn, req)
	default:
		_ = conn.WriteRecord(wire.Response(wire.ErrInvalidCommand, "unsupported nm-facing operation"))
	}
}

// register scans the storage root and sends REGISTER_SS to the name
// server, carrying this SS's ports and a newline-joined file inventory.
func (s *Server) register() error {
	names, err := s.storage.Inventory()
	if err != nil {
		return fmt.Errorf("inventory storage root: %w", err)
	}

	ip, nmPort, err := splitHostPort(s.cfg.NMFacingAddr)
	if err != nil {
		return err
	}
	_, clientPort, err := splitHostPort(s.cfg.ClientFacingAddr)
	if err != nil {
		return err
	}

	req := &wire.Record{
		Kind:   wire.KindRegisterSS,
		SSIP:   ip,
		SSPort: nmPort,
		Flags:  clientPort,
		Data:   []byte(strings.Join(names, "\n")),
	}

	conn, err := net.DialTimeout("tcp", s.cfg.NMAddr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("dial name server %s: %w", s.cfg.NMAddr, err)
	}
	defer conn.Close()

	wc := wire.NewConn(conn)
	if err := wc.WriteRecord(req); err != nil {
		return fmt.Errorf("send REGISTER_SS: %w", err)
	}
	reply, err := wc.ReadRecord()
	if err != nil {
		return fmt.Errorf("read REGISTER_SS reply: %w", err)
	}
	if !reply.OK() {
		return fmt.Errorf("name server rejected registration: %s", reply.Error)
	}
	logger.Info("registered with name server", "files", len(names))
	return nil
}

// heartbeatLoop sends a HEARTBEAT on a fresh connection every
// HeartbeatInterval. Failures are logged and ignored, matching the
// spec's advisory-only heartbeat handling.
func (s *Server) heartbeatLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.shutdown:
			return
		case <-ticker.C:
			s.sendHeartbeat()
		}
	}
}

func (s *Server) sendHeartbeat() {
	ip, _, err := splitHostPort(s.cfg.NMFacingAddr)
	if err != nil {
		return
	}
	conn, err := net.DialTimeout("tcp", s.cfg.NMAddr, 5*time.Second)
	if err != nil {
		logger.Debug("heartbeat dial failed", logger.Err(err))
		return
	}
	defer conn.Close()

	wc := wire.NewConn(conn)
	if err := wc.WriteRecord(&wire.Record{Kind: wire.KindHeartbeat, SSIP: ip}); err != nil {
		logger.Debug("heartbeat send failed", logger.Err(err))
	}
}

func splitHostPort(addr string) (string, int32, error) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, fmt.Errorf("split host:port %q: %w", addr, err)
	}
	if host == "" {
		host = "127.0.0.1"
	}
	var port int
	if _, err := fmt.Sscanf(portStr, "%d", &port); err != nil {
		return "", 0, fmt.Errorf("parse port %q: %w", portStr, err)
	}
	return host, int32(port), nil
}
