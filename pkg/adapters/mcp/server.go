// Package mcp exposes the function catalog as Model Context Protocol tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/weft"
	"github.com/aretw0/weft/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CatalogURI is the resource listing every registered function.
const CatalogURI = "weft://functions"

// Engine is the subset of the weft engine the MCP server needs.
type Engine interface {
	Definitions() []domain.Definition
	Definition(id string) (domain.Definition, bool)
	NewContext(nodeID string, store map[string]any) *domain.ExecutionContext
	Invoke(ctx context.Context, id string, params map[string]any, ec *domain.ExecutionContext) (domain.Result, error)
}

// FunctionList is the structured answer of list_functions.
type FunctionList struct {
	Functions []domain.Definition `json:"functions" jsonschema_description:"Registered functions sorted by id"`
}

// InvokeResponse is the structured answer of invoke_function.
type InvokeResponse struct {
	Result domain.Result  `json:"result" jsonschema_description:"The function Result"`
	Store  map[string]any `json:"store" jsonschema_description:"The store after the invocation"`
}

// Server wraps the engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance. A nil logger discards output.
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		engine:    engine,
		logger:    logger,
		mcpServer: server.NewMCPServer("weft-mcp", weft.Version),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on port until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	listTool := mcp.NewTool("list_functions",
		mcp.WithDescription("List the registered functions, optionally filtered by category."),
		mcp.WithString("category", mcp.Description("Only return functions of this category (optional)")),
		mcp.WithOutputSchema[FunctionList](),
	)
	s.mcpServer.AddTool(listTool, mcp.NewStructuredToolHandler(s.handleList))

	describeTool := mcp.NewTool("describe_function",
		mcp.WithDescription("Describe one function: parameters, outputs and the actions it may emit."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Function id")),
		mcp.WithOutputSchema[domain.Definition](),
	)
	s.mcpServer.AddTool(describeTool, mcp.NewStructuredToolHandler(s.handleDescribe))

	invokeTool := mcp.NewTool("invoke_function",
		mcp.WithDescription("Invoke one function against a fresh store and return its Result."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Function id")),
		mcp.WithString("params", mcp.Description("JSON object of parameters (optional)")),
		mcp.WithString("store", mcp.Description("JSON object seeding the store (optional)")),
		mcp.WithOutputSchema[InvokeResponse](),
	)
	s.mcpServer.AddTool(invokeTool, mcp.NewStructuredToolHandler(s.handleInvoke))
}

func (s *Server) handleList(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (FunctionList, error) {
	category, _ := args["category"].(string)
	out := FunctionList{Functions: []domain.Definition{}}
	for _, d := range s.engine.Definitions() {
		if category == "" || d.Category == category {
			out.Functions = append(out.Functions, d)
		}
	}
	return out, nil
}

func (s *Server) handleDescribe(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (domain.Definition, error) {
	id, _ := args["id"].(string)
	def, ok := s.engine.Definition(id)
	if !ok {
		return domain.Definition{}, fmt.Errorf("%w: %s", domain.ErrFunctionNotFound, id)
	}
	return def, nil
}

func (s *Server) handleInvoke(ctx context.Context, request mcp.CallToolRequest, args map[string]any) (InvokeResponse, error) {
	id, _ := args["id"].(string)

	params, err := decodeObject(args, "params")
	if err != nil {
		return InvokeResponse{}, err
	}
	store, err := decodeObject(args, "store")
	if err != nil {
		return InvokeResponse{}, err
	}

	ec := s.engine.NewContext("mcp:"+id, store)
	res, err := s.engine.Invoke(ctx, id, params, ec)
	if err != nil {
		return InvokeResponse{}, err
	}
	s.logger.Debug("mcp invoke", "function", id, "success", res.Success)
	return InvokeResponse{Result: res, Store: ec.Store.Snapshot()}, nil
}

// decodeObject reads a JSON-encoded object argument. Clients that send the
// object inline are accepted too.
func decodeObject(args map[string]any, key string) (map[string]any, error) {
	switch v := args[key].(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return v, nil
	case string:
		if v == "" {
			return nil, nil
		}
		var out map[string]any
		if err := json.Unmarshal([]byte(v), &out); err != nil {
			return nil, fmt.Errorf("invalid %s: %w", key, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("invalid %s: expected a JSON object", key)
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, "Function Catalog",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.engine.Definitions())
		if err != nil {
			return nil, fmt.Errorf("failed to encode catalog: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      CatalogURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
