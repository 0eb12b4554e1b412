package mcp

import (
	"context"
	"sync"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"vnforge/internal/editor"
	"vnforge/internal/imageload"
)

type Options struct {
	Version string
	// Store, when set, receives the project after every successful mutation.
	Store editor.ProjectStore
	// Loader inlines backgrounds on export when set.
	Loader imageload.Loader
	Logger *zap.Logger
}

// Server exposes an editor session as MCP tools. Tool calls may arrive
// concurrently; mu serializes them so the session sees one operation at a
// time.
type Server struct {
	mu      sync.Mutex
	session *editor.Session
	store   editor.ProjectStore
	loader  imageload.Loader
	version string
	logger  *zap.Logger
	mcp     *sdk.Server
}

func NewServer(session *editor.Session, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		session: session,
		store:   opts.Store,
		loader:  opts.Loader,
		version: opts.Version,
		logger:  logger.Named("mcp"),
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "vnforge",
			Version: opts.Version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}

// persist saves the project after a mutation; callers hold mu.
func (s *Server) persist(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	if err := editor.SaveProject(ctx, s.store, s.session.Project()); err != nil {
		s.logger.Error("saving project failed", zap.Error(err))
		return err
	}
	return nil
}
