package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/amstokely/nfsim/internal/nfcore"
)

type simOptions struct {
	modelFile   string
	duration    float64
	sampleCount int
	equilibrate float64
	seed        int64
	csvOut      string
	firesCSVOut string
	logLevel    string
}

func runSimulation(opts simOptions) error {
	logger := NewLogger(opts.logLevel)

	data, err := os.ReadFile(opts.modelFile)
	if err != nil {
		return fmt.Errorf("reading model file: %w", err)
	}
	var cfg nfcore.ModelConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing model file: %w", err)
	}
	if opts.seed != 0 {
		cfg.RandomSeed = opts.seed
	}

	sys, err := nfcore.BuildModelFromConfig(&cfg, logger)
	if err != nil {
		return fmt.Errorf("building model: %w", err)
	}
	if err := sys.PrepareForSimulation(); err != nil {
		return fmt.Errorf("preparing simulation: %w", err)
	}

	if opts.equilibrate > 0 {
		logger.Infof("equilibrating for %g time units", opts.equilibrate)
		if err := sys.Equilibrate(opts.equilibrate); err != nil {
			return fmt.Errorf("equilibrating: %w", err)
		}
	}

	logger.Infof("running %g time units (run %s)", opts.duration, sys.RunID)
	samples, err := sys.Sim(opts.duration, opts.sampleCount)
	if err != nil {
		return fmt.Errorf("running simulation: %w", err)
	}

	if opts.firesCSVOut != "" {
		firesData, err := nfcore.EncodeRuleFiringCountsCSV(sys)
		if err != nil {
			return fmt.Errorf("encoding rule firing counts CSV: %w", err)
		}
		if err := os.WriteFile(opts.firesCSVOut, firesData, 0o644); err != nil {
			return fmt.Errorf("writing rule firing counts CSV: %w", err)
		}
		logger.Infof("wrote rule firing counts to %s", opts.firesCSVOut)
	}

	if opts.csvOut != "" {
		csvData, err := nfcore.EncodeSamplesCSV(samples)
		if err != nil {
			return fmt.Errorf("encoding samples CSV: %w", err)
		}
		if err := os.WriteFile(opts.csvOut, csvData, 0o644); err != nil {
			return fmt.Errorf("writing CSV: %w", err)
		}
		logger.Infof("wrote %d samples to %s", len(samples), opts.csvOut)
		return nil
	}

	return printSamples(samples)
}

func printSamples(samples []nfcore.Sample) error {
	if len(samples) == 0 {
		return nil
	}
	names := make([]string, 0)
	for name := range samples[0].Values {
		names = append(names, name)
	}
	fmt.Print("time")
	for _, n := range names {
		fmt.Printf("\t%s", n)
	}
	fmt.Println()
	for _, s := range samples {
		fmt.Printf("%g", s.Time)
		for _, n := range names {
			fmt.Printf("\t%d", s.Values[n])
		}
		fmt.Println()
	}
	return nil
}
