package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/zappy/internal/allowlist"
	"github.com/nextlevelbuilder/zappy/internal/chat"
	"github.com/nextlevelbuilder/zappy/internal/config"
	"github.com/nextlevelbuilder/zappy/internal/mcp"
	"github.com/nextlevelbuilder/zappy/internal/qrlink"
	"github.com/nextlevelbuilder/zappy/internal/session"
	"github.com/nextlevelbuilder/zappy/internal/tools"
	"github.com/nextlevelbuilder/zappy/internal/wa"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the MCP tools on stdio",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	// stdout carries the MCP protocol; everything else goes to stderr.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	paths, err := config.DefaultPaths(dataDir)
	if err != nil {
		return fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := config.Load(configPath)
	allow := allowlist.NewRegistry(cfg.Allowed, cfg.SuppressWarnings)

	// The pairing channel polls the manager for readiness, and the manager
	// relays pairing codes to the channel.
	var mgr *session.Manager
	pairing := qrlink.New(func() bool { return mgr.IsReady() })
	factory := func() (chat.Transport, error) {
		return wa.NewClient(paths.AuthDB, paths.MessageDB)
	}
	mgr = session.NewManager(factory, pairing, session.Config{})
	defer mgr.Shutdown()

	deps := &tools.Deps{
		Session:    mgr,
		Allow:      allow,
		ConfigPath: configPath,
		AuthPath:   paths.AuthDB,
	}

	reg := tools.NewRegistry()
	reg.Register(tools.NewStatusTool(deps))
	reg.Register(tools.NewListAllowedTool(deps))
	reg.Register(tools.NewListChatsTool(deps))
	reg.Register(tools.NewSendTool(deps))
	reg.Register(tools.NewMessagesTool(deps))
	reg.Register(tools.NewDeleteTool(deps))

	srv, err := mcp.NewServer(reg, "zappy", Version)
	if err != nil {
		return err
	}

	slog.Info("mcp server started", "tools", reg.Count(), "data_dir", paths.DataDir)
	return mcp.ServeStdio(srv)
}
