// ABOUTME: Entry point for the mcp-sonarr gateway server
// ABOUTME: Exposes the Sonarr library to AI assistants over MCP with OAuth

package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"

	"github.com/ZakiZtraki/mcp-sonarr/internal/config"
	"github.com/ZakiZtraki/mcp-sonarr/internal/gateway"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
 _ __ ___   ___ _ __        ___  ___  _ __   __ _ _ __ _ __
| '_ ' _ \ / __| '_ \ _____/ __|/ _ \| '_ \ / _' | '__| '__|
| | | | | | (__| |_) |_____\__ \ (_) | | | | (_| | |  | |
|_| |_| |_|\___| .__/      |___/\___/|_| |_|\__,_|_|  |_|
               |_|
`

// getConfigPath returns the path to the config file.
// Priority: SONARR_MCP_CONFIG env var > XDG_CONFIG_HOME/mcp-sonarr/config.yaml > ~/.config/mcp-sonarr/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("SONARR_MCP_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "mcp-sonarr", "config.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: mcp-sonarr <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve    Start the MCP gateway server")
		fmt.Println("  init     Create a new config file interactively")
		fmt.Println("  health   Check gateway health")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "init":
		err = runInit()
	case "health":
		err = runHealth(ctx)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads from the config file when it exists, otherwise falls back
// to environment variables so container deployments need no file at all.
func loadConfig() (*config.Config, string, error) {
	configPath := getConfigPath()
	if _, err := os.Stat(configPath); err == nil {
		cfg, err := config.Load(configPath)
		return cfg, configPath, err
	}
	cfg, err := config.FromEnv()
	return cfg, "(environment)", err
}

func runServe(ctx context.Context) error {
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	cfg, configSource, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Logging)

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)

	green.Print("    ▶ ")
	fmt.Printf("Config:  %s\n", configSource)
	green.Print("    ▶ ")
	fmt.Printf("Listen:  %s\n", cfg.Server.Addr())
	green.Print("    ▶ ")
	fmt.Printf("Sonarr:  %s\n", cfg.Sonarr.URL)

	green.Print("    ▶ ")
	fmt.Printf("Auth:    ")
	switch {
	case cfg.OAuth.OAuthEnabled():
		cyan.Print("oauth")
		if cfg.OAuth.FallbackToken != "" {
			gray.Print(" (+ static token)")
		}
		fmt.Println()
	case cfg.OAuth.FallbackToken != "":
		cyan.Println("static token")
	default:
		yellow.Println("disabled")
	}

	fmt.Println()

	logger.Info("starting mcp-sonarr",
		"config", configSource,
		"addr", cfg.Server.Addr(),
		"sonarr_url", cfg.Sonarr.URL,
	)

	gw, err := gateway.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating gateway: %w", err)
	}

	return gw.Run(ctx)
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	buf.WriteString(r.Message)

	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}

func runHealth(ctx context.Context) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	host := cfg.Server.Host
	if host == "0.0.0.0" || host == "" {
		host = "localhost"
	}
	url := fmt.Sprintf("http://%s:%d/health", host, cfg.Server.Port)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unhealthy: status %d", resp.StatusCode)
	}

	fmt.Println("healthy")
	return nil
}

func runInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("mcp-sonarr configuration setup")
	fmt.Println("==============================")
	fmt.Println()

	defaultConfigPath := getConfigPath()
	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if strings.ToLower(overwrite) != "yes" && strings.ToLower(overwrite) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	fmt.Println("\n--- Server Configuration ---")
	host := prompt(reader, "Listen host", "0.0.0.0")
	port := prompt(reader, "Listen port", "8080")

	fmt.Println("\n--- Sonarr Configuration ---")
	sonarrURL := prompt(reader, "Sonarr URL", "http://localhost:8989")
	sonarrAPIKey := prompt(reader, "Sonarr API key", "")

	fmt.Println("\n--- Authentication ---")
	enableOAuth := prompt(reader, "Enable OAuth?", "yes")
	oauthEnabled := strings.ToLower(enableOAuth) == "yes" || strings.ToLower(enableOAuth) == "y"

	var clientID, clientSecret, authPassword string
	if oauthEnabled {
		clientID = prompt(reader, "OAuth client ID", "mcp-sonarr")
		clientSecret = prompt(reader, "OAuth client secret", "")
		authPassword = prompt(reader, "Authorization password", "")
	}
	fallbackToken := prompt(reader, "Static bearer token (leave empty to disable)", "")

	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	var cfg strings.Builder
	cfg.WriteString("# mcp-sonarr configuration\n")
	cfg.WriteString("# Generated by mcp-sonarr init\n\n")

	cfg.WriteString("server:\n")
	cfg.WriteString(fmt.Sprintf("  host: \"%s\"\n", host))
	cfg.WriteString(fmt.Sprintf("  port: %s\n", port))
	cfg.WriteString("\n")

	cfg.WriteString("sonarr:\n")
	cfg.WriteString(fmt.Sprintf("  url: \"%s\"\n", sonarrURL))
	cfg.WriteString(fmt.Sprintf("  api_key: \"%s\"\n", sonarrAPIKey))
	cfg.WriteString("  timeout: \"30s\"\n")
	cfg.WriteString("\n")

	if oauthEnabled || fallbackToken != "" {
		cfg.WriteString("oauth:\n")
		if oauthEnabled {
			cfg.WriteString(fmt.Sprintf("  client_id: \"%s\"\n", clientID))
			cfg.WriteString(fmt.Sprintf("  client_secret: \"%s\"\n", clientSecret))
			cfg.WriteString(fmt.Sprintf("  auth_password: \"%s\"\n", authPassword))
			cfg.WriteString("  token_ttl_minutes: 60\n")
		}
		if fallbackToken != "" {
			cfg.WriteString(fmt.Sprintf("  fallback_token: \"%s\"\n", fallbackToken))
		}
		cfg.WriteString("\n")
	}

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: \"%s\"\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: \"%s\"\n", logFormat))

	configDir := filepath.Dir(outputFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	// Secrets live in this file
	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	fmt.Printf("\nConfig written to %s\n", outputFile)
	fmt.Println("\nTo start the server:")
	fmt.Printf("  mcp-sonarr serve\n")

	return nil
}

func prompt(reader *bufio.Reader, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", question, defaultVal)
	} else {
		fmt.Printf("%s: ", question)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		// On EOF or error, return default
		fmt.Println()
		return defaultVal
	}
	input = strings.TrimSpace(input)

	if input == "" {
		return defaultVal
	}
	return input
}
