package cmd

import (
	"fmt"
	"net"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/zappy/internal/config"
	"github.com/nextlevelbuilder/zappy/internal/qrlink"
	"github.com/nextlevelbuilder/zappy/internal/wa"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check environment and configuration health",
		Run: func(cmd *cobra.Command, args []string) {
			runDoctor()
		},
	}
}

func runDoctor() {
	fmt.Println("zappy doctor")
	fmt.Printf("  Version:  %s\n", Version)
	fmt.Printf("  OS:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  Go:       %s\n", runtime.Version())
	fmt.Println()

	paths, err := config.DefaultPaths(dataDir)
	if err != nil {
		fmt.Printf("  Data dir: error: %s\n", err)
		return
	}
	fmt.Printf("  Data dir: %s (OK)\n", paths.DataDir)

	if client, err := wa.NewClient(paths.AuthDB, paths.MessageDB); err != nil {
		fmt.Printf("  Pairing:  cannot open credential store: %s\n", err)
	} else {
		if client.HasCredentials() {
			fmt.Println("  Pairing:  paired (stored credential found)")
		} else {
			fmt.Println("  Pairing:  no stored credential (first tool use will open a QR page)")
		}
		client.Disconnect()
	}

	if configPath == "" {
		fmt.Println("  Config:   none (send/read/delete blocked; list_chats available for setup)")
	} else if _, err := os.Stat(configPath); err != nil {
		fmt.Printf("  Config:   %s (NOT FOUND)\n", configPath)
	} else {
		cfg := config.Load(configPath)
		fmt.Printf("  Config:   %s (%d allowed recipients)\n", configPath, len(cfg.Allowed))
	}

	// The pairing page needs a local port from the scan range.
	addr := fmt.Sprintf("127.0.0.1:%d", qrlink.DefaultBasePort)
	if ln, err := net.Listen("tcp", addr); err == nil {
		ln.Close()
		fmt.Printf("  QR port:  %d free\n", qrlink.DefaultBasePort)
	} else {
		fmt.Printf("  QR port:  %d busy (next candidates will be tried)\n", qrlink.DefaultBasePort)
	}
}
