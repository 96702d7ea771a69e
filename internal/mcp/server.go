// Package mcp exposes one series' continuity to agents as MCP tools.
package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"serieskeeper/internal/config"
	"serieskeeper/internal/continuity"
)

// Series is the continuity surface the tools read and advance.
// *series.Tracker satisfies it.
type Series interface {
	Summary(forBook int) continuity.Summary
	PromptContext(forBook int) string
	CharacterNotes(name string) (continuity.DevelopmentNotes, error)
	Characters() []continuity.Character
	PlotThreads() []continuity.PlotThread
	WorldElements() []continuity.WorldElement
	StartNewBook(n int) error
}

type Server struct {
	schema *config.Schema
	series Series
	mcp    *sdk.Server
}

func NewServer(schema *config.Schema, series Series, version string) *Server {
	s := &Server{
		schema: schema,
		series: series,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "serieskeeper",
			Version: version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
