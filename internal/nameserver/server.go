package nameserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/arvindsh/dfscore/internal/logger"
	"github.com/arvindsh/dfscore/internal/metadata"
	"github.com/arvindsh/dfscore/internal/metrics"
	"github.com/arvindsh/dfscore/internal/protocol/wire"
	"github.com/arvindsh/dfscore/internal/session"
)

// ViewFlag bits decode the VIEW command's -a/-l flags carried in
// wire.Record.Flags.
const (
	ViewFlagAll     int32 = 1 << 0
	ViewFlagDetails int32 = 1 << 1
)

// accessMode values decode ADD_ACCESS's mode carried in wire.Record.Flags.
const (
	accessModeRead      int32 = 0
	accessModeReadWrite int32 = 1
)

// Config holds everything needed to start a name server.
type Config struct {
	ListenAddr string
	EnableExec bool
}

// Server is the name server process: one accept loop discriminating
// client and storage-server connections by the first record's kind, and
// the dispatcher for every op in the public contract.
type Server struct {
	cfg     Config
	store   *Store
	clients *clientTable
	metrics *metrics.Ops

	listener     net.Listener
	shutdown     chan struct{}
	shutdownOnce sync.Once
	wg           sync.WaitGroup
}

// NewServer creates a name server bound to store and ready to accept
// connections once Serve is called.
func NewServer(cfg Config, store *Store, ops *metrics.Ops) *Server {
	return &Server{
		cfg:      cfg,
		store:    store,
		clients:  newClientTable(),
		metrics:  ops,
		shutdown: make(chan struct{}),
	}
}

// Serve starts accepting connections and blocks until ctx is cancelled
// or Stop is called.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.ListenAddr, err)
	}
	s.listener = ln
	logger.Info("name server listening", "addr", s.cfg.ListenAddr)

	s.wg.Add(1)
	go s.acceptLoop(ctx)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	s.wg.Wait()
	return nil
}

// Stop closes the listener and signals the accept loop to exit.
func (s *Server) Stop() {
	s.shutdownOnce.Do(func() {
		close(s.shutdown)
		if s.listener != nil {
			_ = s.listener.Close()
		}
	})
}

func (s *Server) acceptLoop(ctx context.Context) {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				return
			default:
				logger.Debug("name server accept error", logger.Err(err))
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
			s.handleConn(connCtx, connID, wire.NewConn(c))
		}(conn)
	}
}

// handleConn discriminates the connection by its first record's kind.
// REGISTER_SS and HEARTBEAT are one-shot SS connections; everything
// else is a client session that loops until disconnect.
func (s *Server) handleConn(ctx context.Context, connID string, conn *wire.Conn) {
	first, err := conn.ReadRecord()
	if err != nil {
		logger.DebugCtx(ctx, "name server read first record failed", logger.Err(err))
		return
	}

	switch first.Kind {
	case wire.KindRegisterSS:
		s.handleRegisterSS(ctx, conn, first)
		return
	case wire.KindHeartbeat:
		s.handleHeartbeat(ctx, first)
		return
	}

	s.handleClientSession(ctx, connID, conn, first)
}

// handleClientSession processes REGISTER_CLIENT (the first record) and
// then dispatches every subsequent record on the same connection until
// it disconnects.
func (s *Server) handleClientSession(ctx context.Context, connID string, conn *wire.Conn, first *wire.Record) {
	username := first.Username
	if first.Kind == wire.KindRegisterClient {
		s.clients.Register(connID, username, peerFromContext(ctx))
		defer s.clients.Unregister(connID)
		if err := conn.WriteRecord(wire.Ack("registered")); err != nil {
			return
		}
	} else {
		// Tolerate a client whose first record is already an operation,
		// registering it implicitly so list-users still sees them.
		s.clients.Register(connID, username, peerFromContext(ctx))
		defer s.clients.Unregister(connID)
		s.dispatch(ctx, conn, first)
	}

	for {
		req, err := conn.ReadRecord()
		if err != nil {
			return
		}
		s.dispatch(ctx, conn, req)
	}
}

func peerFromContext(ctx context.Context) string {
	lc := logger.FromContext(ctx)
	if lc == nil {
		return ""
	}
	return lc.Peer
}

func (s *Server) dispatch(ctx context.Context, conn *wire.Conn, req *wire.Record) {
	start := time.Now()
	op := req.Kind.String()
	result := wire.Success.String()
	defer func() {
		if s.metrics != nil {
			s.metrics.Observe(op, result, time.Since(start).Seconds())
		}
	}()

	reply := s.handle(ctx, req)
	result = reply.Error.String()
	if err := conn.WriteRecord(reply); err != nil {
		logger.DebugCtx(ctx, "name server write reply failed", logger.Err(err))
	}
}

func (s *Server) handle(ctx context.Context, req *wire.Record) *wire.Record {
	switch req.Kind {
	case wire.KindView:
		return s.opView(req)
	case wire.KindInfo:
		return s.opInfo(ctx, req)
	case wire.KindCreate:
		return s.opCreate(ctx, req)
	case wire.KindDelete:
		return s.opDelete(ctx, req)
	case wire.KindAddAccess:
		return s.opAddAccess(req)
	case wire.KindRemAccess:
		return s.opRemAccess(req)
	case wire.KindRead:
		return s.opLocate(req, metadata.RightsRead)
	case wire.KindWrite:
		return s.opLocate(req, metadata.RightsWrite)
	case wire.KindStream:
		return s.opLocate(req, metadata.RightsRead)
	case wire.KindUndo:
		return s.opLocate(req, metadata.RightsRead)
	case wire.KindExec:
		return s.opExec(ctx, req)
	case wire.KindListUsers:
		return s.opListUsers()
	default:
		return wire.Response(wire.ErrInvalidCommand, "unrecognized operation")
	}
}

func (s *Server) opView(req *wire.Record) *wire.Record {
	flags := ViewFlags{
		All:     req.Flags&ViewFlagAll != 0,
		Details: req.Flags&ViewFlagDetails != 0,
	}
	listing := s.store.View(req.Username, flags)
	return wire.Response(wire.Success, listing)
}

func (s *Server) opInfo(ctx context.Context, req *wire.Record) *wire.Record {
	r, err := s.store.Info(req.Filename)
	if errors.Is(err, ErrNotFound) {
		return wire.Response(wire.ErrFileNotFound, "file not found")
	}
	if r.RightsFor(req.Username) == metadata.RightsNone && r.Owner != req.Username {
		return wire.Response(wire.ErrUnauthorized, "no access to file")
	}

	s.statRefresh(ctx, r)
	r, _ = s.store.Info(req.Filename)

	msg := fmt.Sprintf("owner=%s words=%d chars=%d", r.Owner, r.WordCount, r.CharCount)
	return wire.Response(wire.Success, msg)
}

// statRefresh opens an NM-facing session to the owning SS, requests
// fresh word/char counts, and updates the record. Failure is tolerated
// silently, exactly as specified.
func (s *Server) statRefresh(ctx context.Context, r *metadata.Record) {
	desc, ok := s.store.Registry().Get(r.SSIndex)
	if !ok {
		return
	}
	reply, err := callSS(desc.IP, desc.NMFacingPort, &wire.Record{Kind: wire.KindSSStat, Filename: r.Filename})
	if err != nil || !reply.OK() {
		logger.DebugCtx(ctx, "stat refresh failed, tolerating", "filename", r.Filename, logger.Err(err))
		return
	}
	s.store.UpdateStats(r.Filename, reply.WordIndex, reply.Flags, time.Now())
}

func (s *Server) opCreate(ctx context.Context, req *wire.Record) *wire.Record {
	if _, err := s.store.Info(req.Filename); err == nil {
		return wire.Response(wire.ErrFileExists, "file already exists")
	}

	ssIndex, ok := s.store.Registry().FirstActive()
	if !ok {
		return wire.Response(wire.ErrNoStorageServer, "no active storage server")
	}
	desc, _ := s.store.Registry().Get(ssIndex)

	reply, err := callSS(desc.IP, desc.NMFacingPort, &wire.Record{Kind: wire.KindSSCreate, Filename: req.Filename})
	if err != nil {
		return wire.Response(wire.ErrConnectionFailed, "storage server unreachable")
	}
	if !reply.OK() {
		return wire.Response(reply.Error, string(reply.Data))
	}

	if _, err := s.store.Create(req.Filename, req.Username, ssIndex, time.Now()); err != nil {
		logger.ErrorCtx(ctx, "create: checkpoint persist failed", logger.Err(err))
		return wire.Response(wire.ErrServerError, "failed to persist metadata")
	}
	return wire.Response(wire.Success, "created")
}

func (s *Server) opDelete(ctx context.Context, req *wire.Record) *wire.Record {
	r, err := s.store.Info(req.Filename)
	if errors.Is(err, ErrNotFound) {
		return wire.Response(wire.ErrFileNotFound, "file not found")
	}
	if r.Owner != req.Username {
		return wire.Response(wire.ErrUnauthorized, "not owner")
	}

	desc, ok := s.store.Registry().Get(r.SSIndex)
	if !ok {
		return wire.Response(wire.ErrServerError, "storage server registry entry missing")
	}
	reply, err := callSS(desc.IP, desc.NMFacingPort, &wire.Record{Kind: wire.KindSSDelete, Filename: req.Filename})
	if err != nil {
		return wire.Response(wire.ErrConnectionFailed, "storage server unreachable")
	}
	if !reply.OK() {
		return wire.Response(reply.Error, string(reply.Data))
	}

	if err := s.store.Delete(req.Filename); err != nil {
		logger.ErrorCtx(ctx, "delete: checkpoint persist failed", logger.Err(err))
		return wire.Response(wire.ErrServerError, "failed to persist metadata")
	}
	return wire.Response(wire.Success, "deleted")
}

func (s *Server) opAddAccess(req *wire.Record) *wire.Record {
	r, err := s.store.Info(req.Filename)
	if errors.Is(err, ErrNotFound) {
		return wire.Response(wire.ErrFileNotFound, "file not found")
	}
	if r.Owner != req.Username {
		return wire.Response(wire.ErrUnauthorized, "not owner")
	}

	rights := metadata.RightsRead
	if req.Flags == accessModeReadWrite {
		rights = metadata.RightsReadWrite
	}
	if err := s.store.Grant(req.Filename, req.Target, rights); err != nil {
		return wire.Response(wire.ErrServerError, "failed to persist access grant")
	}
	return wire.Response(wire.Success, "access granted")
}

func (s *Server) opRemAccess(req *wire.Record) *wire.Record {
	r, err := s.store.Info(req.Filename)
	if errors.Is(err, ErrNotFound) {
		return wire.Response(wire.ErrFileNotFound, "file not found")
	}
	if r.Owner != req.Username {
		return wire.Response(wire.ErrUnauthorized, "not owner")
	}
	if req.Target == r.Owner {
		return wire.Response(wire.ErrInvalidCommand, "cannot revoke owner access")
	}
	if err := s.store.Revoke(req.Filename, req.Target); err != nil {
		return wire.Response(wire.ErrServerError, "failed to persist access revoke")
	}
	return wire.Response(wire.Success, "access revoked")
}

// opLocate answers read/write/stream/undo with the owning SS's client-
// facing address after checking the caller holds required on filename.
func (s *Server) opLocate(req *wire.Record, required metadata.Rights) *wire.Record {
	r, err := s.store.Info(req.Filename)
	if errors.Is(err, ErrNotFound) {
		return wire.Response(wire.ErrFileNotFound, "file not found")
	}
	rights := r.RightsFor(req.Username)
	if required == metadata.RightsWrite && !rights.CanWrite() {
		return wire.Response(wire.ErrUnauthorized, "write access required")
	}
	if required == metadata.RightsRead && !rights.CanRead() {
		return wire.Response(wire.ErrUnauthorized, "read access required")
	}

	desc, ok := s.store.Registry().Get(r.SSIndex)
	if !ok {
		return wire.Response(wire.ErrServerError, "storage server registry entry missing")
	}

	reply := wire.Response(wire.Success, "")
	reply.SSIP = desc.IP
	reply.SSPort = desc.ClientFacingPort
	return reply
}

// opExec reads filename's content from its owning SS and runs it as a
// shell command, capturing stdout. A deliberate security sink, gated
// behind the enable_exec config setting.
func (s *Server) opExec(ctx context.Context, req *wire.Record) *wire.Record {
	if !s.cfg.EnableExec {
		return wire.Response(wire.ErrInvalidCommand, "exec is disabled")
	}

	r, err := s.store.Info(req.Filename)
	if errors.Is(err, ErrNotFound) {
		return wire.Response(wire.ErrFileNotFound, "file not found")
	}
	if !r.RightsFor(req.Username).CanRead() {
		return wire.Response(wire.ErrUnauthorized, "read access required")
	}

	desc, ok := s.store.Registry().Get(r.SSIndex)
	if !ok {
		return wire.Response(wire.ErrServerError, "storage server registry entry missing")
	}
	reply, err := callSS(desc.IP, desc.NMFacingPort, &wire.Record{Kind: wire.KindSSRead, Filename: req.Filename})
	if err != nil {
		return wire.Response(wire.ErrConnectionFailed, "storage server unreachable")
	}
	if !reply.OK() {
		return wire.Response(reply.Error, string(reply.Data))
	}

	out, err := exec.CommandContext(ctx, "sh", "-c", string(reply.Data)).Output()
	if err != nil {
		logger.WarnCtx(ctx, "exec: command failed", logger.Err(err), "filename", req.Filename)
		return wire.Response(wire.ErrServerError, "command execution failed")
	}
	return wire.Response(wire.Success, string(out))
}

func (s *Server) opListUsers() *wire.Record {
	users := s.store.ListUsers(s.clients)
	return wire.Response(wire.Success, strings.Join(users, "\n"))
}

func (s *Server) handleRegisterSS(ctx context.Context, conn *wire.Conn, req *wire.Record) {
	ssIndex, err := s.store.Registry().Register(req.SSIP, req.SSPort, req.Flags)
	if err != nil {
		_ = conn.WriteRecord(wire.Response(wire.ErrServerError, err.Error()))
		return
	}

	now := time.Now()
	for _, name := range strings.Split(string(req.Data), "\n") {
		if name == "" {
			continue
		}
		s.store.RegisterUnknown(name, ssIndex, now)
	}

	logger.InfoCtx(ctx, "storage server registered", "ss_index", ssIndex, "ip", req.SSIP)
	_ = conn.WriteRecord(wire.Response(wire.Success, "registered"))
}

func (s *Server) handleHeartbeat(ctx context.Context, req *wire.Record) {
	s.store.Registry().Heartbeat(req.SSIP)
	logger.DebugCtx(ctx, "heartbeat received", "ip", req.SSIP)
}
