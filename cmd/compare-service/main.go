package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const (
	modeAPI    = "api"
	modeWorker = "worker"
	modeAll    = "all"
)

var (
	runMode string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:           "compare-service",
	Short:         "Compare weekly task screenshots and task database snapshots",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Print which credentials and backends are configured",
	RunE:  runCheck,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional dotenv file with configuration")
	rootCmd.Flags().StringVar(&runMode, "mode", modeAPI, "run mode: api|worker|all")
	rootCmd.AddCommand(checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func setup(ctx context.Context) (*appState, error) {
	cfg, err := loadConfig(envFile)
	if err != nil {
		return nil, err
	}
	logger = initLogger(os.Stdout, cfg.logLevel)
	return newAppState(ctx, cfg)
}

func runServe(cmd *cobra.Command, _ []string) error {
	switch runMode {
	case modeAPI, modeWorker, modeAll:
	default:
		return fmt.Errorf("unknown run mode %q", runMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := setup(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	switch runMode {
	case modeAPI:
		return runAPI(ctx, st)
	case modeWorker:
		return runWorker(ctx, st)
	default:
		if !st.cfg.jobsEnabled() {
			logger.Warn("REDIS_ADDR is not set; running the api without a worker")
			return runAPI(ctx, st)
		}
		workerErr := make(chan error, 1)
		go func() { workerErr <- runWorker(ctx, st) }()
		apiErr := runAPI(ctx, st)
		stop()
		if err := <-workerErr; err != nil && apiErr == nil {
			return err
		}
		return apiErr
	}
}

func runCheck(cmd *cobra.Command, _ []string) error {
	st, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(st.credentialReport())
}

// newAppState builds every external client once. A model or task database
// client that cannot be built is left nil and reported by /debug.
func newAppState(ctx context.Context, cfg config) (*appState, error) {
	buckets := newBucketStore(cfg.uploadDir)
	if err := buckets.EnsureGroups(); err != nil {
		return nil, err
	}
	st := &appState{cfg: cfg, buckets: buckets}

	switch cfg.modelProvider {
	case "gemini":
		if c, err := newGeminiClient(ctx, cfg.geminiAPIKey, cfg.geminiModel, cfg.modelMaxTokens, cfg.modelTimeout, ""); err != nil {
			logger.Warn("model client not initialized", "provider", cfg.modelProvider, "error", err)
		} else {
			st.comparator = c
		}
	default:
		if c, err := newAnthropicClient(cfg.anthropicAPIKey, cfg.anthropicBaseURL, cfg.anthropicModel, cfg.modelMaxTokens, cfg.modelTimeout); err != nil {
			logger.Warn("model client not initialized", "provider", cfg.modelProvider, "error", err)
		} else {
			st.comparator = c
		}
	}

	if c, err := newNotionClient(cfg.notionToken, cfg.notionDatabaseID, cfg.notionBaseURL, cfg.notionPageSize, cfg.notionProps, cfg.notionTimeout); err != nil {
		logger.Warn("task database client not initialized", "error", err)
	} else {
		st.tasks = c
	}

	if cfg.historyDBPath != "" {
		store, err := openHistoryStore(cfg.historyDBPath)
		if err != nil {
			return nil, err
		}
		st.history = store
	}

	if cfg.jobsEnabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.redisAddr,
			Password: cfg.redisPassword,
			DB:       cfg.redisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			st.Close()
			return nil, fmt.Errorf("redis ping %s: %w", cfg.redisAddr, err)
		}
		st.redis = rdb
		st.asynqCli = asynq.NewClient(cfg.asynqRedisOpt())
	}

	logger.Info("app state initialized",
		"model_provider", cfg.modelProvider,
		"model_ready", st.comparator != nil,
		"task_source_ready", st.tasks != nil,
		"history", cfg.historyDBPath,
		"jobs_enabled", cfg.jobsEnabled(),
	)
	return st, nil
}

func (c config) asynqRedisOpt() asynq.RedisClientOpt {
	return asynq.RedisClientOpt{Addr: c.redisAddr, Password: c.redisPassword, DB: c.redisDB}
}

func (st *appState) Close() {
	if st.asynqCli != nil {
		st.asynqCli.Close()
	}
	if st.redis != nil {
		st.redis.Close()
	}
	if st.history != nil {
		st.history.Close()
	}
}

func runAPI(ctx context.Context, st *appState) error {
	srv := &http.Server{
		Addr:              st.cfg.addr,
		Handler:           st.router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("compare api listening", "addr", st.cfg.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("api server stopped: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down compare api")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runWorker(ctx context.Context, st *appState) error {
	if !st.cfg.jobsEnabled() {
		return errors.New("worker mode needs REDIS_ADDR")
	}
	srv := asynq.NewServer(
		st.cfg.asynqRedisOpt(),
		asynq.Config{
			Concurrency: st.cfg.concurrency,
			Queues:      map[string]int{st.cfg.queueName: 1},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(taskTypeCompareGroups, st.processCompareTask)

	logger.Info("compare worker started",
		"queue", st.cfg.queueName,
		"concurrency", st.cfg.concurrency,
	)
	if err := srv.Start(mux); err != nil {
		return fmt.Errorf("worker stopped: %w", err)
	}
	<-ctx.Done()
	srv.Shutdown()
	logger.Info("compare worker stopped")
	return nil
}
