package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/iwvelando/mortgage-schedule/internal/config"
	"github.com/iwvelando/mortgage-schedule/internal/logging"
	"github.com/iwvelando/mortgage-schedule/internal/prompt"
	"github.com/iwvelando/mortgage-schedule/internal/simulation"
	"github.com/iwvelando/mortgage-schedule/pkg/constants"
	"github.com/iwvelando/mortgage-schedule/pkg/output"
	"github.com/iwvelando/mortgage-schedule/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	// A missing .env file is not an error.
	_ = godotenv.Load()

	flags := pflag.NewFlagSet("mortgage-schedule", pflag.ExitOnError)
	flags.String("config", constants.DefaultConfigFile, "path to configuration file")
	flags.Bool("demo", false, "simulate the sample loan instead of reading one")
	flags.Bool("interactive", false, "prompt for the loan even when the configuration defines one")
	flags.String("output-format", "", "type of output override: pretty, csv, json, yaml")
	flags.String("log-level", "", "log level override (debug, info, warn, error)")
	_ = flags.Parse(os.Args[1:])

	// Flags may also be given as MORTGAGE_<FLAG> environment variables.
	opts := viper.New()
	opts.SetEnvPrefix(constants.EnvPrefix)
	opts.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	opts.AutomaticEnv()
	if err := opts.BindPFlags(flags); err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to bind flags\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}

	configLocation := opts.GetString("config")
	conf, err := config.LoadConfiguration(configLocation)
	if err != nil {
		// Only the default config file may be absent.
		explicit := flags.Changed("config") || os.Getenv(constants.EnvPrefix+"_CONFIG") != ""
		if !errors.Is(err, fs.ErrNotExist) || explicit {
			fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", configLocation, err)
			os.Exit(1)
		}
		conf = config.DefaultConfiguration()
	}

	logger, err := logging.New(conf.Logging, opts.GetString("log-level"))
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI override takes precedence over config
	outputFormat := conf.Output.Format
	if override := opts.GetString("output-format"); override != "" {
		outputFormat = override
	}
	if outputFormat == "" {
		outputFormat = constants.OutputFormatPretty
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	terms, err := resolveTerms(conf, opts.GetBool("demo"), opts.GetBool("interactive"), logger)
	if err != nil {
		if errors.Is(err, prompt.ErrRetryExhausted) {
			fmt.Fprintln(os.Stderr, prompt.ErrRetryExhausted.Error())
			os.Exit(1)
		}
		fatalValidation(logger, "invalid loan terms", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := simulation.RunWithLimits(ctx, logger, terms, conf.Simulator)
	if err != nil {
		fatalValidation(logger, "failed to simulate loan", err)
	}

	if err := output.Write(os.Stdout, outputFormat, result); err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}

// resolveTerms picks the loan to simulate: the sample loan, the configured
// loan, or one entered at the terminal.
func resolveTerms(conf *config.Configuration, demo, interactive bool, logger *zap.Logger) (config.LoanTerms, error) {
	now := time.Now()

	if demo {
		terms := config.DemoLoanTerms(now)
		return terms, prompt.EchoTerms(os.Stderr, terms)
	}

	if conf.Loan != nil && !interactive {
		logger.Debug("using configured loan",
			zap.String("op", "main.resolveTerms"),
		)
		return conf.Loan.ToLoanTerms(now)
	}

	collector := prompt.NewCollector(os.Stdin, os.Stderr, logger, conf.Simulator)
	useSample, err := collector.Confirm("Simulate the schedule with sample data?")
	if err != nil {
		return config.LoanTerms{}, err
	}
	if useSample {
		terms := config.DemoLoanTerms(now)
		return terms, prompt.EchoTerms(os.Stderr, terms)
	}
	return collector.Collect(now)
}

func fatalValidation(logger *zap.Logger, msg string, err error) {
	if verr, ok := validation.AsValidationError(err); ok {
		logger.Fatal(msg,
			zap.String("op", "main"),
			zap.String("field", verr.Field),
			zap.String("rule", verr.Rule),
			zap.Error(err),
		)
	}
	logger.Fatal(msg,
		zap.String("op", "main"),
		zap.Error(err),
	)
}
