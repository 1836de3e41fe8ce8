// Command mcprice prints a sample price path and then prices one European option
// sequentially and concurrently, reporting both prices, both runtimes and the
// speedup. With -remote the pricings run on a pricerd daemon over gRPC.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/GoSim-25-26J-441/mc-option-pricer/internal/pricer"
	"github.com/GoSim-25-26J-441/mc-option-pricer/internal/pricerd"
	"github.com/GoSim-25-26J-441/mc-option-pricer/internal/scenario"
	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/config"
	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/logger"
	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/models"
	"github.com/GoSim-25-26J-441/mc-option-pricer/pkg/utils"
)

type options struct {
	configPath string
	remote     string
	mode       string
	logLevel   string
	scenarios  int
	steps      int
	pathSteps  int
	pathSeed   int64
	timeout    time.Duration
}

// demoRequest is the ten-year call priced when no config file is given
func demoRequest() models.PricingRequest {
	return models.PricingRequest{
		Strike:       102,
		Spot:         100,
		RiskFreeRate: 0.025,
		Volatility:   0.06,
		TimeToExpiry: 10,
		OptionKind:   models.OptionKindCall,
		NumTimeSteps: 1200,
		NumScenarios: 100000,
		InitialSeed:  100,
		Quantity:     7000,
	}
}

func main() {
	var opts options
	flag.StringVar(&opts.configPath, "config", "", "YAML config with a pricing section (default: built-in demo contract)")
	flag.StringVar(&opts.remote, "remote", "", "price on a pricerd gRPC address instead of in-process")
	flag.StringVar(&opts.mode, "mode", "both", "execution mode: both, sequential or concurrent")
	flag.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	flag.IntVar(&opts.scenarios, "scenarios", 0, "override the number of scenarios")
	flag.IntVar(&opts.steps, "steps", 0, "override the number of time steps")
	flag.IntVar(&opts.pathSteps, "path-steps", 12, "time steps of the printed sample path over one year")
	flag.Int64Var(&opts.pathSeed, "path-seed", -106, "seed of the printed sample path")
	flag.DurationVar(&opts.timeout, "timeout", 10*time.Minute, "timeout for remote pricing")
	flag.Parse()

	logger.SetDefault(logger.NewText(opts.logLevel, os.Stderr))

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		logger.Error("mcprice failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	req := demoRequest()
	if opts.configPath != "" {
		cfg, err := config.LoadConfig(opts.configPath)
		if err != nil {
			return err
		}
		req = cfg.Pricing.Request()
	}
	if opts.scenarios > 0 {
		req.NumScenarios = opts.scenarios
	}
	if opts.steps > 0 {
		req.NumTimeSteps = opts.steps
	}

	modes, err := parseModes(opts.mode)
	if err != nil {
		return err
	}

	if err := printSamplePath(out, req, opts.pathSteps, opts.pathSeed); err != nil {
		return err
	}

	price := localPrice
	if opts.remote != "" {
		conn, err := grpc.NewClient(opts.remote, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return fmt.Errorf("connect %s: %w", opts.remote, err)
		}
		defer conn.Close()
		price = remotePrice(ctx, pricerd.NewPricingClient(conn), opts.timeout)
	}

	results := make(map[bool]models.PricingResult, len(modes))
	for _, concurrent := range modes {
		r := req
		r.Concurrent = concurrent
		res, err := price(r)
		if err != nil {
			return fmt.Errorf("%s pricing: %w", models.ExecutionMode(concurrent), err)
		}
		results[concurrent] = res
		printResult(out, res)
	}

	seq, haveSeq := results[false]
	conc, haveConc := results[true]
	if haveSeq && haveConc {
		speedup := utils.Speedup(seconds(seq.ElapsedSeconds), seconds(conc.ElapsedSeconds))
		fmt.Fprintf(out, "Speedup (sequential / concurrent) = %.2fx with %d workers\n", speedup, conc.Workers)
		fmt.Fprintf(out, "Price difference = %g\n", utils.RelativeDiff(seq.Price, conc.Price))
	}
	return nil
}

func parseModes(mode string) ([]bool, error) {
	switch strings.ToLower(mode) {
	case "both", "":
		return []bool{false, true}, nil
	case "sequential":
		return []bool{false}, nil
	case "concurrent":
		return []bool{true}, nil
	default:
		return nil, fmt.Errorf("unknown mode %q (must be both, sequential or concurrent)", mode)
	}
}

func printSamplePath(out io.Writer, req models.PricingRequest, steps int, seed int64) error {
	gen, err := scenario.NewGenerator(req.Spot, steps, 1.0, req.RiskFreeRate, req.Volatility)
	if err != nil {
		return err
	}
	path := gen.Generate(seed)

	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = fmt.Sprintf("%.4f", p)
	}
	fmt.Fprintf(out, "--- sample path, seed = %d ---\n%s\n\n", seed, strings.Join(parts, " "))
	return nil
}

func printResult(out io.Writer, res models.PricingResult) {
	fmt.Fprintf(out, "--- %s ---\n", res.Mode())
	fmt.Fprintf(out, "Runtime = %s; price = %.4f (%s)\n", utils.FormatDuration(seconds(res.ElapsedSeconds)), res.Price, res.Value.StringFixed(2))
	fmt.Fprintf(out, "Std error = %.4f; 95%% CI = [%.4f, %.4f]; Black-Scholes = %.4f\n\n",
		res.StdError, res.CI95Low, res.CI95High, res.AnalyticPrice)
}

func localPrice(req models.PricingRequest) (models.PricingResult, error) {
	p := pricer.FromRequest(req)
	p.Logger = logger.ForRun("mcprice-" + models.ExecutionMode(req.Concurrent))
	return pricer.Run(p)
}

func remotePrice(ctx context.Context, client *pricerd.PricingClient, timeout time.Duration) func(models.PricingRequest) (models.PricingResult, error) {
	return func(req models.PricingRequest) (models.PricingResult, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		run, err := client.Price(ctx, "", req)
		if err != nil {
			return models.PricingResult{}, err
		}
		if run.Result == nil {
			return models.PricingResult{}, fmt.Errorf("run %s has no result (status %s)", run.ID, run.Status)
		}
		return *run.Result, nil
	}
}

func seconds(s float64) time.Duration {
	return utils.MsToTime(s * 1000)
}
