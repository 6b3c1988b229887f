package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/hazyhaar/paperlens/analyzer"
	"github.com/hazyhaar/paperlens/embedding"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the paper tools over MCP on stdio",
	Long: `Run an MCP server on stdin/stdout exposing paper_analyze,
paper_questions, paper_extract and paper_formats.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer embedding.Close()

		a, err := analyzer.New(analyzerConfig(m.Get(), logger))
		if err != nil {
			return err
		}
		srv := mcp.NewServer(&mcp.Implementation{Name: "paperlens", Version: version}, nil)
		a.RegisterMCP(srv)

		logger.Info("mcp server starting", "transport", "stdio")
		return srv.Run(cmd.Context(), &mcp.StdioTransport{})
	},
}
