package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"awspanel/pkg/server"

	_ "awspanel/toolsets/compute"
	_ "awspanel/toolsets/containers"
	_ "awspanel/toolsets/database"
	_ "awspanel/toolsets/management"
	_ "awspanel/toolsets/messaging"
	_ "awspanel/toolsets/mlai"
	_ "awspanel/toolsets/network"
	_ "awspanel/toolsets/security"
	_ "awspanel/toolsets/storage"
)

const version = "0.1.0"

var runServer = server.Run
var exit = os.Exit

func main() {
	ctx := context.Background()

	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	listenAddr := flags.String("listen", "", "HTTP listen address")
	region := flags.String("region", "", "default AWS region")
	profile := flags.String("profile", "", "AWS shared config profile")
	toolsets := flags.String("toolsets", "", "comma-separated toolsets to enable")
	configPath := flags.String("config", "", "config file path")
	readOnly := flags.Bool("read-only", false, "disable write operations")
	disableDestructive := flags.Bool("disable-destructive", false, "disable destructive operations")
	chatProvider := flags.String("chat-provider", "", "chat provider (gemini or deepseek)")
	mcpStdio := flags.Bool("mcp-stdio", false, "serve tools over MCP stdio instead of HTTP")

	_ = flags.Parse(os.Args[1:])

	options := server.Options{
		ConfigPath: *configPath,
		MCPStdio:   *mcpStdio,
		Version:    version,
		Stderr:     os.Stderr,
	}
	set := map[string]bool{}
	flags.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["listen"] {
		options.ListenAddr = *listenAddr
	}
	if set["region"] {
		options.Region = *region
	}
	if set["profile"] {
		options.Profile = *profile
	}
	if set["toolsets"] {
		options.Toolsets = parseCSV(*toolsets)
	}
	if set["read-only"] {
		options.ReadOnly = *readOnly
	}
	if set["disable-destructive"] {
		options.DisableDestructive = *disableDestructive
	}
	if set["chat-provider"] {
		options.ChatProvider = *chatProvider
	}

	if err := runServer(ctx, options); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		exit(1)
	}
}

func parseCSV(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
