package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lexiqai/translate-client/internal/config"
	"github.com/lexiqai/translate-client/internal/credential"
	"github.com/lexiqai/translate-client/internal/observability"
	"github.com/lexiqai/translate-client/internal/panel"
	"github.com/lexiqai/translate-client/internal/segment"
	"github.com/lexiqai/translate-client/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.LogLevel, cfg.LogPretty)
	logger := observability.GetLogger()

	logger.Info().
		Str("transport", cfg.Transport).
		Str("translation_model", cfg.TranslationModel).
		Str("target_language", cfg.TargetLanguage).
		Msg("Translate client starting")

	if cfg.MetricsEnabled {
		go serveMetrics(cfg.MetricsPort)
	}

	status := newTerminalStatus(os.Stdout)
	transcripts := panel.New(segment.NewStore("…waiting for speech"), newTerminalRegion("transcript", os.Stdout))
	translations := panel.New(segment.NewStore("…waiting for translation"), newTerminalRegion("translation", os.Stdout))

	exchange := credential.NewExchange(cfg.MintURL, nil)
	controller := session.NewController(cfg, exchange, transcripts, translations, status)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		controller.Stop()
		cancel()
		os.Exit(0)
	}()

	fmt.Println("commands: start | stop | set key=value … | quit")
	runCommandLoop(ctx, controller)

	controller.Stop()
	logger.Info().Msg("Translate client exited")
}

// runCommandLoop drives the session from stdin. The API key is asked for on
// every start and held only for the duration of the mint call.
func runCommandLoop(ctx context.Context, controller *session.Controller) {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "start":
			if controller.Active() {
				fmt.Println("a session is already running; stop it first")
				continue
			}
			fmt.Print("API key: ")
			if !scanner.Scan() {
				return
			}
			key := strings.TrimSpace(scanner.Text())
			if err := controller.Start(ctx, key); err != nil {
				fmt.Printf("start failed: %v\n", err)
			}

		case "stop":
			controller.Stop()

		case "set":
			controller.Reconfigure(parseSettings(fields[1:]))
			fmt.Println("settings applied")

		case "quit", "exit":
			return

		default:
			fmt.Printf("unknown command %q\n", fields[0])
		}
	}
}

func serveMetrics(port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", observability.HealthCheckHandler())
	mux.HandleFunc("/ready", observability.HealthCheckHandler())

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger := observability.GetLogger()
		logger.Error().Err(err).Msg("Metrics server failed")
	}
}
