package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchDocumentsTool defines the search_documents MCP tool.
var searchDocumentsTool = mcp.NewTool("search_documents",
	mcp.WithDescription("Search the ingested documents semantically. Returns the most relevant passages with their source file and page."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of passages to return (default 5)"),
	),
)

// askDocumentsTool defines the ask_documents MCP tool.
var askDocumentsTool = mcp.NewTool("ask_documents",
	mcp.WithDescription("Answer a question using the ingested documents. Retrieves relevant passages and generates an answer grounded in them."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Question to answer"),
	),
)

// indexStatusTool defines the index_status MCP tool.
var indexStatusTool = mcp.NewTool("index_status",
	mcp.WithDescription("Report whether a document index exists and how many chunks it holds."),
)
