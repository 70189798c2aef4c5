package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"dispatch-ai/internal/adapter/audit"
	"dispatch-ai/internal/adapter/llm"
	"dispatch-ai/internal/domain"
	"dispatch-ai/internal/infra/config"
	"dispatch-ai/internal/infra/logger"
	"dispatch-ai/internal/infra/tracer"
	"dispatch-ai/internal/usecase/eventbus"
	"dispatch-ai/internal/usecase/routing"
)

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "--help", "-h", "help":
		showUsage()
	case "route":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "route: missing request text")
			os.Exit(1)
		}
		if err := runRoute(os.Args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "route: %v\n", err)
			os.Exit(1)
		}
	case "audit":
		limit := 20
		if len(os.Args) >= 3 {
			if n, err := strconv.Atoi(os.Args[2]); err == nil {
				limit = n
			}
		}
		if err := runAudit(limit); err != nil {
			fmt.Fprintf(os.Stderr, "audit: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\nRun 'dispatchd --help' for usage.\n", os.Args[1])
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`dispatchd - request routing core for multi-agent dispatch

USAGE:
    dispatchd COMMAND [ARGS]

COMMANDS:
    route TEXT     Classify a request and print the routing decision as JSON
    audit [N]      Print the N most recent routing decisions (default 20)

CONFIGURATION:
    Config file: ./config.yaml
    Environment: DISPATCHAI_* variables override config

EXAMPLES:
    dispatchd route "hello there"
    dispatchd route "search the codebase for the retry loop"
    DISPATCHAI_AUDIT_DB=audit.db dispatchd audit 50`)
}

// configPath can be overridden for deployments; the dev harness keeps it
// simple and reads config.yaml from the working directory.
const configPath = "config.yaml"

func runRoute(request string) error {
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	log, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer closeLog()

	shutdownTracer, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return err
	}
	defer shutdownTracer(ctx)

	bus := eventbus.New(log)
	defer bus.Close()

	// Without an API key every request resolves on the pattern fast path.
	var classifier domain.Classifier
	if cfg.Classifier.APIKey != "" {
		classifier = buildClassifier(cfg, log)
	}

	router := routing.New(classifier, routing.DefaultCapabilities(), routing.Config{
		Model:        cfg.Classifier.Model,
		Temperature:  cfg.Routing.Temperature,
		MaxTokens:    cfg.Routing.MaxTokens,
		TopP:         cfg.Routing.TopP,
		PromptBudget: cfg.Routing.PromptBudget,
	}, bus, log)

	decision := router.Classify(ctx, request, nil)

	out, err := json.MarshalIndent(decision, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// buildClassifier layers rate limiting and circuit breaking around the
// HTTP provider, outermost first.
func buildClassifier(cfg *config.Config, log *slog.Logger) domain.Classifier {
	var classifier domain.Classifier = llm.NewOpenAIClassifier(cfg.Classifier, log)
	classifier = llm.NewCircuitBreakerClassifier(classifier, cfg.Classifier.Breaker, log)
	return llm.NewRateLimitedClassifier(classifier, cfg.Classifier.RatePerMinute)
}

func runAudit(limit int) error {
	ctx := context.Background()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if !cfg.Audit.Enabled {
		return fmt.Errorf("audit store disabled; set audit.enabled or DISPATCHAI_AUDIT_DB")
	}

	store, err := audit.NewSQLiteAuditStore(cfg.Audit.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Recent(ctx, limit)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
