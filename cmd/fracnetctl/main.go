package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	fracnetapi "fracnet/pkg/fracnet"
)

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
	case "run":
		return runRun(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "history":
		return runHistory(ctx, args[1:])
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(message string) error {
	printUsage()
	return fmt.Errorf("%s", message)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `usage: fracnetctl <command> [flags]

commands:
  run      evolve a population against a built-in environment
  runs     list stored runs
  history  print the best-fitness trajectory of a run`)
}

func storeFlags(fs *flag.FlagSet) (*string, *string, *string) {
	storeKind := fs.String("store", "", "store backend: memory or sqlite")
	dbPath := fs.String("db", "", "sqlite database path")
	artifactsDir := fs.String("artifacts", "", "run artifacts directory")
	return storeKind, dbPath, artifactsDir
}

func newClient(storeKind, dbPath, artifactsDir string) (*fracnetapi.Client, error) {
	return fracnetapi.New(fracnetapi.Options{
		StoreKind:    storeKind,
		DBPath:       dbPath,
		ArtifactsDir: artifactsDir,
	})
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	storeKind, dbPath, artifactsDir := storeFlags(fs)
	configPath := fs.String("config", "", "JSON run config; flags override file values")

	runID := fs.String("run-id", "", "run identifier")
	environment := fs.String("env", "cart-pole", "environment name")
	seed := fs.Int64("seed", 42, "random seed")
	population := fs.Int("population", 100, "population size")
	judgmentNodes := fs.Int("jn", 1, "initial judgment nodes")
	judgmentFuncs := fs.Int("jnf", 4, "judgment function alphabet size")
	processingNodes := fs.Int("pn", 2, "initial processing nodes")
	processingFuncs := fs.Int("pnf", 2, "processing function alphabet size")
	fractal := fs.Bool("fractal", false, "fractal judgment nodes")
	generations := fs.Int("generations", 50, "generation count")
	stallLimit := fs.Int("stall-limit", 0, "stop after this many generations without improvement (0 disables)")
	tournament := fs.Int("tournament", 2, "tournament size")
	elite := fs.Int("elite", 1, "elite count")
	probCrossover := fs.Float64("p-crossover", 0.05, "crossover probability per position")
	probEdgeInner := fs.Float64("p-edge-inner", 0.03, "inner edge mutation probability")
	probEdgeStart := fs.Float64("p-edge-start", 0.03, "start edge mutation probability")
	probBoundary := fs.Float64("p-boundary", 0.1, "boundary mutation probability")
	sigmaBoundary := fs.Float64("sigma-boundary", 0.1, "boundary mutation sigma")
	boundaryKind := fs.String("boundary-mutation", "uniform", "uniform, normal, network-size, edge-size or fractal")
	addDelete := fs.Bool("add-delete", true, "enable the variable-size operator")
	dMax := fs.Int("d-max", 10, "judgment depth cap")
	maxSteps := fs.Int("max-steps", 500, "episode step cap")
	maxConsecutiveP := fs.Int("max-consecutive-p", 5, "processing run cap")
	worstFitness := fs.Float64("worst-fitness", 0, "fitness for invalidated episodes")
	workers := fs.Int("workers", 1, "supervised evaluation workers")

	if err := fs.Parse(args); err != nil {
		return err
	}

	req := fracnetapi.RunRequest{}
	if *configPath != "" {
		loaded, err := loadRunRequestFromConfig(*configPath)
		if err != nil {
			return fmt.Errorf("load config %s: %w", *configPath, err)
		}
		req = loaded
	}
	setIfFlagged := func(name string, apply func()) {
		if *configPath == "" {
			apply()
			return
		}
		seen := false
		fs.Visit(func(f *flag.Flag) {
			if f.Name == name {
				seen = true
			}
		})
		if seen {
			apply()
		}
	}
	setIfFlagged("run-id", func() { req.RunID = *runID })
	setIfFlagged("env", func() { req.Environment = *environment })
	setIfFlagged("seed", func() { req.Seed = *seed })
	setIfFlagged("population", func() { req.Population = *population })
	setIfFlagged("jn", func() { req.JudgmentNodes = *judgmentNodes })
	setIfFlagged("jnf", func() { req.JudgmentFuncs = *judgmentFuncs })
	setIfFlagged("pn", func() { req.ProcessingNodes = *processingNodes })
	setIfFlagged("pnf", func() { req.ProcessingFuncs = *processingFuncs })
	setIfFlagged("fractal", func() { req.FractalJudgment = *fractal })
	setIfFlagged("generations", func() { req.Generations = *generations })
	setIfFlagged("stall-limit", func() { req.StallLimit = *stallLimit })
	setIfFlagged("tournament", func() { req.TournamentSize = *tournament })
	setIfFlagged("elite", func() { req.EliteCount = *elite })
	setIfFlagged("p-crossover", func() { req.ProbCrossover = *probCrossover })
	setIfFlagged("p-edge-inner", func() { req.ProbEdgeMutationInner = *probEdgeInner })
	setIfFlagged("p-edge-start", func() { req.ProbEdgeMutationStart = *probEdgeStart })
	setIfFlagged("p-boundary", func() { req.ProbBoundaryMutation = *probBoundary })
	setIfFlagged("sigma-boundary", func() { req.SigmaBoundaryMutation = *sigmaBoundary })
	setIfFlagged("boundary-mutation", func() { req.BoundaryMutation = *boundaryKind })
	setIfFlagged("add-delete", func() { req.AddDelete = *addDelete })
	setIfFlagged("d-max", func() { req.DMax = *dMax })
	setIfFlagged("max-steps", func() { req.MaxSteps = *maxSteps })
	setIfFlagged("max-consecutive-p", func() { req.MaxConsecutiveP = *maxConsecutiveP })
	setIfFlagged("worst-fitness", func() { req.WorstFitness = *worstFitness })
	setIfFlagged("workers", func() { req.Workers = *workers })

	client, err := newClient(*storeKind, *dbPath, *artifactsDir)
	if err != nil {
		return err
	}
	defer client.Close()
	if err := client.Init(ctx); err != nil {
		return err
	}

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}
	for g, best := range summary.BestByGeneration {
		fmt.Printf("generation %d best %g\n", g+1, best)
	}
	fmt.Printf("run %s finished: best fitness %g, artifacts in %s\n",
		summary.RunID, summary.FinalBestFitness, summary.ArtifactsDir)
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	storeKind, dbPath, artifactsDir := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, *artifactsDir)
	if err != nil {
		return err
	}
	defer client.Close()
	if err := client.Init(ctx); err != nil {
		return err
	}

	runs, err := client.Runs(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no stored runs")
		return nil
	}
	for _, run := range runs {
		fmt.Printf("%s  %s  seed=%d  population=%d  generations=%d  best=%g\n",
			run.RunID, run.Scape, run.Seed, run.Population, run.Generations, run.BestFitness)
	}
	return nil
}

func runHistory(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	storeKind, dbPath, artifactsDir := storeFlags(fs)
	runID := fs.String("run-id", "", "run identifier")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *runID == "" {
		return usageError("history requires -run-id")
	}

	client, err := newClient(*storeKind, *dbPath, *artifactsDir)
	if err != nil {
		return err
	}
	defer client.Close()
	if err := client.Init(ctx); err != nil {
		return err
	}

	history, err := client.History(ctx, *runID)
	if err != nil {
		return err
	}
	for g, best := range history {
		fmt.Printf("%d,%g\n", g+1, best)
	}
	return nil
}
