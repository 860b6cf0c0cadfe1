package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"fluxnet/internal/storage"
	fluxapi "fluxnet/pkg/fluxnet"
)

const reportsDir = "reports_base"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "reset":
		return runReset(ctx, args[1:])
	case "train":
		return runTrain(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "rewards":
		return runRewards(ctx, args[1:])
	case "diagnostics":
		return runDiagnostics(ctx, args[1:])
	case "network":
		return runNetwork(ctx, args[1:])
	case "scapes":
		return runScapes(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: fluxnetctl <init|reset|train|runs|rewards|diagnostics|network|scapes> [flags]", msg)
}

func newClient(storeKind, dbPath string) (*fluxapi.Client, error) {
	return fluxapi.New(fluxapi.Options{
		StoreKind:  storeKind,
		DBPath:     dbPath,
		ReportsDir: reportsDir,
	})
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "fluxnet.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "fluxnet.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Reset(ctx); err != nil {
		return err
	}

	fmt.Printf("reset store=%s\n", *storeKind)
	return nil
}

func runTrain(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional train config JSON path")
	runID := fs.String("run-id", "", "explicit run id (optional)")
	scapeName := fs.String("scape", "signal-mimic", "scape name")
	mode := fs.String("mode", "", "scape evaluation mode: gt|validation|test (empty uses the scape default)")
	nodes := fs.Int("nodes", 4, "network node count")
	episodes := fs.Int("episodes", 50, "training episode count")
	workers := fs.Int("workers", 1, "independently seeded networks trained in parallel")
	seed := fs.Int64("seed", 1, "rng seed")
	initScale := fs.Float64("init-scale", 0.5, "uniform bound for initial weight and bias centers")
	exploration := fs.Float64("exploration", 0.05, "initial exploration amplitude for every parameter")
	activation := fs.String("activation", "", "activation name (empty uses the network default)")
	rewardPolicy := fs.String("reward-policy", "", "reward shaping: fixed|linear_decay|window_normalized (empty uses the API default)")
	rewardPolicyParam := fs.Float64("reward-policy-param", 0, "reward policy parameter (scale, total steps or window)")
	rewardGoal := fs.Float64("reward-goal", 0, "early-stop mean reward goal (0 disables)")
	weightGain := fs.Float64("w-gain", 0, "reward gain for weight adaptation (0 uses defaults)")
	biasGain := fs.Float64("b-gain", 0, "reward gain for bias adaptation (0 uses defaults)")
	tauGain := fs.Float64("t-gain", 0, "reward gain for time-constant adaptation (0 uses defaults)")
	inputGain := fs.Float64("input-gain", 0, "observation input gain (0 uses the agent default)")
	outputCount := fs.Int("outputs", 0, "control output count (0 uses the agent default)")
	outputScale := fs.Float64("output-scale", 0, "control output scale (0 uses the agent default)")
	writeReport := fs.Bool("report", false, "write the JSON training report")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "fluxnet.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	setFlags := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		setFlags[f.Name] = true
	})

	req, err := loadOrDefaultTrainRequest(*configPath)
	if err != nil {
		return err
	}
	if *configPath == "" {
		req = fluxapi.TrainRequest{
			RunID:                *runID,
			Scape:                *scapeName,
			Mode:                 *mode,
			Nodes:                *nodes,
			Episodes:             *episodes,
			Workers:              *workers,
			Seed:                 *seed,
			InitScale:            *initScale,
			ExplorationAmplitude: *exploration,
			Activation:           *activation,
			RewardPolicy:         *rewardPolicy,
			RewardPolicyParam:    *rewardPolicyParam,
			WeightGain:           *weightGain,
			BiasGain:             *biasGain,
			TimeConstantGain:     *tauGain,
			InputGain:            *inputGain,
			OutputCount:          *outputCount,
			OutputScale:          *outputScale,
			WriteReport:          *writeReport,
		}
		if *rewardGoal != 0 {
			goal := *rewardGoal
			req.RewardGoal = &goal
		}
	} else {
		overrideTrainRequest(&req, setFlags, trainOverrides{
			runID:             *runID,
			scape:             *scapeName,
			mode:              *mode,
			nodes:             *nodes,
			episodes:          *episodes,
			workers:           *workers,
			seed:              *seed,
			initScale:         *initScale,
			exploration:       *exploration,
			activation:        *activation,
			rewardPolicy:      *rewardPolicy,
			rewardPolicyParam: *rewardPolicyParam,
			rewardGoal:        *rewardGoal,
			weightGain:        *weightGain,
			biasGain:          *biasGain,
			tauGain:           *tauGain,
			inputGain:         *inputGain,
			outputCount:       *outputCount,
			outputScale:       *outputScale,
			writeReport:       *writeReport,
		})
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Train(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("train completed run_id=%s scape=%s nodes=%d episodes=%d seed=%d workers=%d\n",
		summary.RunID, req.Scape, req.Nodes, len(summary.History), req.Seed, req.Workers)
	for i, mean := range summary.History {
		fmt.Printf("episode=%d mean_reward=%.6f\n", i+1, mean)
	}
	fmt.Println(summary.Stats.Summary())
	if summary.GoalReached {
		fmt.Println("reward goal reached")
	}
	if summary.ReportDir != "" {
		fmt.Printf("report_dir=%s\n", summary.ReportDir)
	}
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max runs to list")
	jsonOut := fs.Bool("json", false, "emit runs list as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "fluxnet.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx, fluxapi.RunsRequest{Limit: *limit})
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	for _, r := range runs {
		fmt.Printf("run_id=%s created_at=%s scape=%s nodes=%d episodes=%d steps=%d seed=%d workers=%d best_mean_reward=%.6f goal_reached=%t\n",
			r.RunID,
			r.CreatedAtUTC,
			r.Scape,
			r.Nodes,
			r.Episodes,
			r.Steps,
			r.Seed,
			r.Workers,
			r.BestMeanReward,
			r.GoalReached,
		)
	}
	return nil
}

func runRewards(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rewards", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show reward history for the most recent run")
	limit := fs.Int("limit", 50, "max episodes to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit reward history as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "fluxnet.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("rewards requires --run-id or --latest")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	history, err := client.RewardHistory(ctx, fluxapi.RewardHistoryRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(history) == 0 {
		fmt.Println("no reward history")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(history)
	}

	for i, mean := range history {
		fmt.Printf("episode=%d mean_reward=%.6f\n", i+1, mean)
	}
	return nil
}

func runDiagnostics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("diagnostics", flag.ContinueOnError)
	runID := fs.String("run-id", "", "run id")
	latest := fs.Bool("latest", false, "show diagnostics for the most recent run")
	limit := fs.Int("limit", 50, "max episodes to print (<=0 for all)")
	jsonOut := fs.Bool("json", false, "emit diagnostics as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "fluxnet.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID != "" && *latest {
		return errors.New("use either --run-id or --latest, not both")
	}
	if *runID == "" && !*latest {
		return errors.New("diagnostics requires --run-id or --latest")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	diagnostics, err := client.Diagnostics(ctx, fluxapi.DiagnosticsRequest{
		RunID:  *runID,
		Latest: *latest,
		Limit:  *limit,
	})
	if err != nil {
		return err
	}
	if len(diagnostics) == 0 {
		fmt.Println("no diagnostics")
		return nil
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(diagnostics)
	}

	for _, d := range diagnostics {
		fmt.Printf("episode=%d steps=%d mean=%.6f min=%.6f max=%.6f amplitude=%.6f\n",
			d.Episode,
			d.Steps,
			d.MeanReward,
			d.MinReward,
			d.MaxReward,
			d.MeanAmplitude,
		)
	}
	return nil
}

func runNetwork(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("network", flag.ContinueOnError)
	networkID := fs.String("network-id", "", "network id")
	jsonOut := fs.Bool("json", false, "emit the full network record as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "fluxnet.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *networkID == "" {
		return errors.New("network requires --network-id")
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	network, err := client.Network(ctx, *networkID)
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(network)
	}

	fmt.Printf("network_id=%s nodes=%d activation=%s\n", network.ID, network.Nodes, network.Activation)
	for i, bias := range network.Biases {
		fmt.Printf("node=%d bias_center=%.6f tau_center=%.6f bias_amplitude=%.6f\n",
			i, bias.Center, network.TimeConstants[i].Center, bias.Amplitude)
	}
	return nil
}

func runScapes(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("scapes", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "emit scape summaries as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "fluxnet.db", "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	scapes, err := client.Scapes(ctx)
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(scapes)
	}

	for _, s := range scapes {
		fmt.Printf("scape=%s best_mean_reward=%.6f description=%s\n", s.Name, s.BestMeanReward, s.Description)
	}
	return nil
}
