// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes newsledger queries for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/newsledger/internal/dataset"
	"github.com/starford/newsledger/internal/newsservice"
	"github.com/starford/newsledger/internal/render"
)

const datasetFormatURI = "newsledger://dataset-format"

// Server wraps the MCP server with newsledger tools.
type Server struct {
	mcp *server.MCPServer
	svc *newsservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *newsservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Newsledger",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	datasetArg := mcp.WithString("dataset", mcp.Required(),
		mcp.Description("Dataset to use: true, fake or combined (menu numbers 1-3 also work)"))

	s.mcp.AddTool(mcp.NewTool("list_datasets",
		mcp.WithDescription("List the datasets with their record counts, sort state and load diagnostics."),
	), s.listDatasets)

	s.mcp.AddTool(mcp.NewTool("display_articles",
		mcp.WithDescription("Show articles of a dataset in its current order as Title/Text/Subject/Date blocks."),
		datasetArg,
		mcp.WithNumber("offset", mcp.Description("Articles to skip (default 0)")),
		mcp.WithNumber("limit", mcp.Description("Maximum articles to return (default 20)")),
	), s.displayArticles)

	s.mcp.AddTool(mcp.NewTool("count_articles",
		mcp.WithDescription("Count the articles of a dataset. Use \"both\" for true and fake together."),
		mcp.WithString("dataset", mcp.Required(),
			mcp.Description("Dataset to count: true, fake, combined or both (menu numbers 1-3 also work)")),
	), s.countArticles)

	s.mcp.AddTool(mcp.NewTool("search_articles",
		mcp.WithDescription("Search a dataset by exact, case-sensitive subject or by four-digit year. "+
			"Give exactly one of subject or year."),
		datasetArg,
		mcp.WithString("subject", mcp.Description("Subject to match exactly")),
		mcp.WithNumber("year", mcp.Description("Year to match, e.g. 2016")),
	), s.searchArticles)

	s.mcp.AddTool(mcp.NewTool("monthly_report",
		mcp.WithDescription("Monthly share of keyword-tagged articles for one year, as a star-bar chart."),
		datasetArg,
		mcp.WithNumber("year", mcp.Description("Report year (defaults to the configured year)")),
	), s.monthlyReport)

	s.mcp.AddTool(mcp.NewTool("sort_dataset",
		mcp.WithDescription("Sort a dataset by date, oldest first. Articles with unreadable dates go last."),
		datasetArg,
	), s.sortDataset)

	s.mcp.AddTool(mcp.NewTool("get_dataset_format",
		mcp.WithDescription("Returns the dataset file format and query rules. "+
			"Call this before interpreting search results or reports."),
	), s.getDatasetFormat)

	s.mcp.AddResource(
		mcp.NewResource(datasetFormatURI, "Dataset Format",
			mcp.WithResourceDescription("Layout of the article datasets and the rules of the queries over them."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDatasetFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func requireDataset(req mcp.CallToolRequest) (dataset.ID, error) {
	raw, err := req.RequireString("dataset")
	if err != nil {
		return "", err
	}
	return dataset.ParseID(raw)
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listDatasets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Datasets(ctx)), nil
}

func (s *Server) displayArticles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireDataset(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	offset := req.GetInt("offset", 0)
	limit := req.GetInt("limit", 20)
	if offset < 0 {
		return mcp.NewToolResultError("offset must not be negative"), nil
	}

	page, err := s.svc.Display(ctx, id, offset, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if page.Empty {
		return mcp.NewToolResultText(fmt.Sprintf("%s: dataset is empty", id)), nil
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s: articles %d-%d of %d\n\n", id, offset+1, offset+len(page.Records), page.Total)
	if err := render.Records(&b, page.Records); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) countArticles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := req.RequireString("dataset")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ids, err := dataset.ParseIDs(raw)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.CountAll(ctx, ids)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(ids) == 1 {
		return mcp.NewToolResultText(fmt.Sprintf("%s: %d articles", ids[0], res.Total)), nil
	}
	var b strings.Builder
	for _, id := range ids {
		fmt.Fprintf(&b, "%s: %d articles\n", id, res.Counts[id])
	}
	fmt.Fprintf(&b, "%s: %d articles", dataset.Both, res.Total)
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) searchArticles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireDataset(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	args := req.GetArguments()
	_, hasSubject := args["subject"]
	_, hasYear := args["year"]
	if hasSubject == hasYear {
		return mcp.NewToolResultError("give exactly one of subject or year"), nil
	}

	var res *newsservice.SearchResult
	if hasSubject {
		res, err = s.svc.SearchBySubject(ctx, id, req.GetString("subject", ""))
	} else {
		res, err = s.svc.SearchByYear(ctx, id, req.GetInt("year", 0))
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !res.Found {
		return mcp.NewToolResultText("no matching articles found"), nil
	}
	return jsonResult(res), nil
}

func (s *Server) monthlyReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireDataset(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	year := req.GetInt("year", 0)
	if year < 0 {
		return mcp.NewToolResultError("year must be positive"), nil
	}
	rep, err := s.svc.MonthlyReport(ctx, id, year)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var b strings.Builder
	if err := render.Report(&b, *rep); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) sortDataset(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireDataset(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	info, err := s.svc.Sort(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("sorted %s: %d articles", id, info.Stats.Rows)), nil
}

func (s *Server) getDatasetFormat(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DatasetFormat), nil
}

func (s *Server) readDatasetFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      datasetFormatURI,
			MIMEType: "text/markdown",
			Text:     DatasetFormat,
		},
	}, nil
}
