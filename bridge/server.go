package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"os"
	"sync"

	"launchtray/model"
)

const (
	codeParse    = -32700
	codeInternal = -32603
	codeMethod   = -32601
)

// Server listens on a Unix socket and routes requests to a Router.
type Server struct {
	router   Router
	listener net.Listener
	sockPath string
	logger   *slog.Logger
	wg       sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a Server bound to sockPath. An empty path means
// SocketPath().
func NewServer(sockPath string, router Router, logger *slog.Logger) (*Server, error) {
	if sockPath == "" {
		sockPath = SocketPath()
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Remove stale socket file.
	_ = os.Remove(sockPath)

	listener, err := net.Listen("unix", sockPath)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		router:   router,
		listener: listener,
		sockPath: sockPath,
		logger:   logger.With("component", "bridge"),
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Addr returns the socket path.
func (s *Server) Addr() string {
	return s.sockPath
}

// Serve accepts connections and handles them. Blocks until the listener is closed.
func (s *Server) Serve() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// Listener was closed.
			return err
		}
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

// Close shuts down the server: closes the listener, waits for connections, removes the socket.
func (s *Server) Close() {
	s.cancel()
	_ = s.listener.Close()
	s.wg.Wait()
	_ = os.Remove(s.sockPath)
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		resp := s.handleRequest(scanner.Bytes())

		data, err := json.Marshal(resp)
		if err != nil {
			data, _ = json.Marshal(Response{Type: "Error", Code: -1, Message: err.Error()})
		}
		data = append(data, '\n')

		if _, err := conn.Write(data); err != nil {
			return
		}
	}
}

func (s *Server) handleRequest(line []byte) Response {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return errorResponse(codeParse, "parse error: "+err.Error())
	}

	switch req.Type {
	case TypeSearch:
		return Response{Type: "Entries", Entries: s.router.Search(req.Query)}

	case TypeSubmit:
		entry, err := s.router.Submit(s.ctx)
		if err != nil {
			return errorResponse(codeInternal, err.Error())
		}
		return Response{Type: "Entries", Entries: []model.AppEntry{entry}}

	case TypeSnapshot:
		snap := s.router.Snapshot()
		return Response{Type: "Snapshot", Snapshot: &snap}

	case TypeRun:
		if err := s.router.Run(s.ctx, req.Entry); err != nil {
			return errorResponse(codeInternal, err.Error())
		}
		return Response{Type: "OK"}

	case TypePin, TypeUnpin:
		pin := s.router.Pin
		if req.Type == TypeUnpin {
			pin = s.router.Unpin
		}
		outcome, err := pin(s.ctx, req.Entry)
		if err != nil {
			return errorResponse(codeInternal, err.Error())
		}
		return Response{Type: "Outcome", Outcome: outcome}

	default:
		s.logger.Warn("Unknown request type", "type", req.Type)
		return errorResponse(codeMethod, "unknown request type: "+req.Type)
	}
}

func errorResponse(code int, msg string) Response {
	return Response{Type: "Error", Code: code, Message: msg}
}
