// Package mcp provides an MCP (Model Context Protocol) server exposing
// metric families, multi-run averaging, export and the summary archive.
package mcp

import (
	"context"
	"fmt"
	"log/slog"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/reportsummary/internal/backup"
	"github.com/nvandessel/reportsummary/internal/config"
	"github.com/nvandessel/reportsummary/internal/constants"
	"github.com/nvandessel/reportsummary/internal/logging"
	"github.com/nvandessel/reportsummary/internal/pathutil"
	"github.com/nvandessel/reportsummary/internal/ratelimit"
	"github.com/nvandessel/reportsummary/internal/store"
)

// Server wraps the MCP SDK server and the summary archive.
type Server struct {
	server          *sdk.Server
	store           store.SummaryStore
	root            string
	settings        *config.Config
	logger          *slog.Logger
	allowedDirs     []string
	toolLimiters    ratelimit.ToolLimiters
	auditLogger     *AuditLogger
	retentionPolicy backup.RetentionPolicy
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "reportsummary")
	Version string // Server version
	Root    string // Workspace root directory

	// Settings defaults to config.Default() when nil.
	Settings *config.Config

	// Logger defaults to a discarding logger. stdout carries the protocol,
	// so loggers must write elsewhere.
	Logger *slog.Logger
}

// NewServer creates a new MCP server with the summary tools registered.
func NewServer(cfg *Config) (*Server, error) {
	settings := cfg.Settings
	if settings == nil {
		settings = config.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	allowed, err := pathutil.AllowedDirs(cfg.Root, settings.MCP.AllowedDirs)
	if err != nil {
		return nil, err
	}

	st, err := store.NewSQLiteSummaryStore(settings.StorePath(cfg.Root))
	if err != nil {
		return nil, fmt.Errorf("failed to open summary archive: %w", err)
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			logger.Debug("mcp client initialized")
		},
	})

	s := &Server{
		server:          mcpServer,
		store:           st,
		root:            cfg.Root,
		settings:        settings,
		logger:          logger,
		allowedDirs:     allowed,
		toolLimiters:    ratelimit.NewToolLimiters(),
		auditLogger:     NewAuditLogger(cfg.Root),
		retentionPolicy: &backup.CountPolicy{MaxCount: constants.DefaultBackupRetention},
	}

	s.registerTools()
	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or ctx is cancelled.
// The caller still owns Close.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &sdk.StdioTransport{})
}

// Close closes the archive and the audit log.
func (s *Server) Close() error {
	s.auditLogger.Close()
	return s.store.Close()
}
