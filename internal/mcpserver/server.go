// Package mcpserver exposes the layering checker as Model Context Protocol
// tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/leapstack-labs/layerlint/internal/cli/output"
	"github.com/leapstack-labs/layerlint/pkg/archcheck"
	"github.com/leapstack-labs/layerlint/pkg/layering"
	"github.com/leapstack-labs/layerlint/pkg/scan"
)

// Tool names.
const (
	ToolCheckLayering = "check_layering"
	ToolListUnits     = "list_units"
	ToolListRules     = "list_rules"
)

// OptionsFunc builds the check options for a directory.
type OptionsFunc func(dir string) (archcheck.Options, error)

// Server serves layering tools.
type Server struct {
	options OptionsFunc
	logger  *slog.Logger
	mcp     *server.MCPServer
}

// New creates a server whose tools build their options with options.
func New(version string, options OptionsFunc, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		options: options,
		logger:  logger,
		mcp: server.NewMCPServer(
			"layerlint",
			version,
			server.WithToolCapabilities(false),
		),
	}

	s.mcp.AddTool(mcp.NewTool(ToolCheckLayering,
		mcp.WithDescription("Check that services and repositories do not depend on the web layer, and any configured layering rules, for a Go module. Returns the violations as JSON."),
		mcp.WithString("dir",
			mcp.Description("Module directory to check (default: configured directory)"),
		),
		mcp.WithString("root",
			mcp.Description("Root namespace to scan (default: module path)"),
		),
		mcp.WithBoolean("include_tests",
			mcp.Description("Include _test.go files (default: configured value)"),
		),
		mcp.WithString("exclude",
			mcp.Description("Comma-separated package patterns to skip, e.g. ..generated..,..mock.."),
		),
	), s.handleCheck)

	s.mcp.AddTool(mcp.NewTool(ToolListUnits,
		mcp.WithDescription("List the package-level declarations of a Go module with their layer tags"),
		mcp.WithString("dir",
			mcp.Description("Module directory to scan (default: configured directory)"),
		),
		mcp.WithString("tag",
			mcp.Description("Only list units with this tag, e.g. service"),
		),
	), s.handleListUnits)

	s.mcp.AddTool(mcp.NewTool(ToolListRules,
		mcp.WithDescription("List the layering rules and tag patterns in effect"),
		mcp.WithString("dir",
			mcp.Description("Module directory (default: configured directory)"),
		),
	), s.handleListRules)

	return s
}

// MCPServer returns the underlying MCP server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

// Serve reads requests from in and writes responses to out until ctx is
// cancelled or in is closed.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcp)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))

	err := stdio.Listen(ctx, in, out)
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("mcp server: %w", err)
}

func (s *Server) optionsFor(request mcp.CallToolRequest) (archcheck.Options, error) {
	opts, err := s.options(request.GetString("dir", ""))
	if err != nil {
		return archcheck.Options{}, err
	}
	if root := request.GetString("root", ""); root != "" {
		opts.Scan.Root = root
	}
	opts.Scan.IncludeTests = request.GetBool("include_tests", opts.Scan.IncludeTests)
	if exclude := request.GetString("exclude", ""); exclude != "" {
		for _, p := range strings.Split(exclude, ",") {
			if p = strings.TrimSpace(p); p != "" {
				opts.Scan.Exclude = append(opts.Scan.Exclude, p)
			}
		}
	}
	return opts, nil
}

func (s *Server) handleCheck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts, err := s.optionsFor(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out, err := archcheck.Run(ctx, opts)
	if err != nil {
		var scanErr *scan.ScanError
		if errors.As(err, &scanErr) {
			return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("check failed: %v", err)), nil
	}
	s.logger.Debug("mcp check", slog.String("dir", opts.Scan.Dir), slog.Bool("passed", out.Result.Passed))

	return jsonResult(output.NewCheckOutput(opts.Scan.Dir, opts.Scan.Root, out))
}

func (s *Server) handleListUnits(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts, err := s.optionsFor(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	classifier := opts.Classifier
	if classifier == nil {
		classifier = layering.DefaultClassifier()
	}
	loader := opts.Loader
	if loader == nil {
		loader = scan.ParserLoader{}
	}

	tag := layering.Tag(request.GetString("tag", ""))
	if tag != "" && !classifier.HasTag(tag) {
		return mcp.NewToolResultError(fmt.Sprintf("%v %q", layering.ErrUnknownTag, tag)), nil
	}

	units, err := loader.Load(ctx, opts.Scan)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scan failed: %v", err)), nil
	}
	if tag != "" {
		kept := units[:0:0]
		for _, u := range units {
			if classifier.ClassifyUnit(u).Has(tag) {
				kept = append(kept, u)
			}
		}
		units = kept
	}

	return jsonResult(output.NewUnitsOutput(units, classifier))
}

func (s *Server) handleListRules(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	opts, err := s.optionsFor(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	classifier := opts.Classifier
	if classifier == nil {
		classifier = layering.DefaultClassifier()
	}
	rules := opts.Rules
	if rules == nil {
		rules = layering.GetAll()
	}

	return jsonResult(output.NewRulesOutput(rules, classifier, opts.Checker))
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
