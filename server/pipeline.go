package server

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"reflect"
	"sync"
	"time"

	uuid "github.com/satori/go.uuid"

	"krypt.co/rpcgate/common/descriptor"
	"krypt.co/rpcgate/common/log"
	"krypt.co/rpcgate/common/mapper"
	"krypt.co/rpcgate/common/security"
	"krypt.co/rpcgate/common/version"
	"krypt.co/rpcgate/common/wire"
	"krypt.co/rpcgate/registry"
)

// Server is the ServerPipeline: it accepts connections concurrently, and
// handles each one fully synchronously — read one line, process, write one
// line, close. There is no pipelining and no server-side per-request
// timeout; a misbehaving handler occupies its goroutine until it returns.
type Server struct {
	opts     Options
	security *security.ProtocolSecurity
	parser   *Parser

	mu       sync.Mutex
	listener net.Listener
	wg       sync.WaitGroup
	closed   bool
}

// New builds a Server from opts, filling in defaults for any registry the
// caller didn't supply.
func New(opts Options) *Server {
	installTracerProvider()
	opts = opts.withDefaults()
	sec := security.NewProtocolSecurity(opts.Security, opts.SPI)
	resolver := registry.NewResolver(opts.Resources)
	codecV1 := wire.NewV1Codec(opts.Descriptors, opts.Overloads, opts.Mappers, sec)
	codecV2 := wire.NewV2Codec(opts.Descriptors, opts.Mappers, sec)
	return &Server{
		opts:     opts,
		security: sec,
		parser:   NewParser(opts.Descriptors, opts.Overloads, opts.Mappers, resolver, codecV1, codecV2, opts.Pinned),
	}
}

// Resources returns the bound ResourceRegistry; callers invoke AddResource/
// DeleteResource/AddSingleton/DeleteSingleton on it directly — that is the
// registerResource/registerSingleton/unregister… control surface.
func (s *Server) Resources() *registry.ResourceRegistry { return s.opts.Resources }

// Mappers returns the bound Mapper registry, for registerMapper calls.
func (s *Server) Mappers() *mapper.Registry { return s.opts.Mappers }

// Descriptors returns the bound TypeDescriptor registry.
func (s *Server) Descriptors() *descriptor.Registry { return s.opts.Descriptors }

// SetSecurityConfig atomically replaces the running server's SecurityConfig.
func (s *Server) SetSecurityConfig(cfg *security.SecurityConfig) { s.security.SetConfig(cfg) }

// SetStrictTypeCheck toggles whether resource registration rejects or warns
// about unmappable method signatures.
func (s *Server) SetStrictTypeCheck(strict bool) { s.opts.Resources.SetStrictTypeCheck(strict) }

// Addr returns the listener's bound address. Valid only after Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Start begins accepting connections on opts.BindAddress. It returns once
// the listener is open; connection handling runs in background goroutines.
func (s *Server) Start() error {
	tlsCfg, err := s.opts.tlsConfig()
	if err != nil {
		return err
	}

	var ln net.Listener
	if tlsCfg != nil {
		ln, err = tls.Listen("tcp", s.opts.BindAddress, tlsCfg)
	} else {
		ln, err = net.Listen("tcp", s.opts.BindAddress)
	}
	if err != nil {
		return fmt.Errorf("rpcgate: listen: %w", err)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	log.Log.Noticef("%s listening on %s", version.Banner(), ln.Addr())

	s.wg.Add(1)
	go s.acceptLoop(ln)
	return nil
}

func (s *Server) acceptLoop(ln net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return
			}
			log.Log.Warningf("accept: %v", err)
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// Stop closes the listener and waits for in-flight connections to finish
// their single request/response exchange.
func (s *Server) Stop() error {
	s.mu.Lock()
	s.closed = true
	ln := s.listener
	s.mu.Unlock()
	if ln == nil {
		return nil
	}
	err := ln.Close()
	s.wg.Wait()
	return err
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	correlationID := uuid.NewV4().String()
	start := time.Now()

	ctx, span := startInvocationSpan(context.Background(), correlationID)

	var outcome error
	defer func() { endSpan(span, outcome) }()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	scanner.Split(scanLinesCRLF)

	if !scanner.Scan() {
		return
	}
	line := scanner.Text()

	log.Log.Debugf("[%s] request: %s", correlationID, truncate(line, 200))

	_, parseSpan := childSpan(ctx, "rpcgate.parse")
	invCtx, codec, err := s.parser.Parse(line)
	endSpan(parseSpan, err)

	var status wire.StatusCode
	var body string
	var class, method string

	if err != nil {
		outcome = err
		status = wire.ClassifyStatus(err)
		body = err.Error()
		if codec == nil {
			codec = s.parser.codecV2
		}
	} else {
		class, method = invCtx.Class, invCtx.MethodName
		_, invokeSpan := childSpan(ctx, "rpcgate.invoke")
		value, invokeErr := Invoke(invCtx)
		endSpan(invokeSpan, invokeErr)

		status = wire.ClassifyStatus(invokeErr)
		if invokeErr != nil {
			outcome = invokeErr
			body = wire.ShortClassName(invokeErr) + ": " + invokeErr.Error()
		} else {
			body, err = encodeReturnValue(s.opts.Mappers, value)
			if err != nil {
				outcome = err
				status = wire.StatusServerError
				body = wire.ShortClassName(err) + ": " + err.Error()
			}
		}
	}

	response, encErr := codec.EncodeResponse(status, body)
	if encErr != nil {
		log.Log.Errorf("[%s] encoding response: %v", correlationID, encErr)
		outcome = encErr
		return
	}

	if _, werr := fmt.Fprintln(conn, response); werr != nil {
		log.Log.Warningf("[%s] writing response: %v", correlationID, werr)
	}

	observeRequest(class, method, status, time.Since(start).Seconds())
}

func encodeReturnValue(mappers *mapper.Registry, value reflect.Value) (string, error) {
	if !value.IsValid() {
		return "null", nil
	}
	m, err := mappers.Resolve(value.Type())
	if err != nil {
		return "", err
	}
	return m.EncodeValue(value)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}

// scanLinesCRLF is bufio.ScanLines with \r\n also treated as one
// terminator — ScanLines already strips a trailing \r, so this just
// documents the intent; both terminators are accepted without change.
func scanLinesCRLF(data []byte, atEOF bool) (advance int, token []byte, err error) {
	return bufio.ScanLines(data, atEOF)
}
