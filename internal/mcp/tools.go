package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchCaselawTool defines the search_caselaw MCP tool.
var searchCaselawTool = mcp.NewTool("search_caselaw",
	mcp.WithDescription("Search South African case law and legislation semantically. Returns ranked passages with citations and source links."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 8)"),
	),
)

// askDocketdiveTool defines the ask_docketdive MCP tool.
var askDocketdiveTool = mcp.NewTool("ask_docketdive",
	mcp.WithDescription("Ask a South African legal research question. Returns a grounded answer with the sources it relies on, or states that no supporting material was found."),
	mcp.WithString("question",
		mcp.Required(),
		mcp.Description("The legal question to answer"),
	),
	mcp.WithString("language",
		mcp.Description("Response language code"),
		mcp.Enum("en", "af", "zu", "xh"),
	),
	mcp.WithBoolean("legal_aid_mode",
		mcp.Description("Include guidance on Legal Aid South Africa eligibility"),
	),
)
