// Copyright 2021 The Horn Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Command horn decides SMT-LIB 2 Horn problems.  It prints exactly one of
// sat (a refutation exists), unsat (the system is safe) or unknown, and
// exits 0 on any verdict.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/go-air/horn/chc"
	"github.com/go-air/horn/engine"
	"github.com/go-air/horn/logic"
	"github.com/go-air/horn/parse"
)

var opts struct {
	engine        string
	maxUnrollings int
	timeout       time.Duration
	logLevel      string
	printWitness  bool
}

func main() {
	root := &cobra.Command{
		Use:          "horn [flags] file.smt2",
		Short:        "a constrained Horn clause solver",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE:         run,
	}
	root.Flags().StringVar(&opts.engine, "engine", "bmc", "verification engine: bmc or kind")
	root.Flags().IntVar(&opts.maxUnrollings, "max-unrollings", 0, "bound on loop unrollings, 0 for unbounded")
	root.Flags().DurationVar(&opts.timeout, "timeout", 0, "give up after this long, 0 for no timeout")
	root.Flags().StringVar(&opts.logLevel, "log-level", "warn", "logrus level: debug, info, warn, error")
	root.Flags().BoolVar(&opts.printWitness, "print-witness", false, "print the counterexample path or safety certificate")
	if err := root.Execute(); err != nil {
		os.Exit(2)
	}
}

func run(cmd *cobra.Command, args []string) error {
	log := logrus.New()
	level, err := logrus.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)

	var in io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	l := logic.New()
	sys, err := parse.System(in, l)
	if err != nil {
		return err
	}
	ns, err := chc.Normalize(sys)
	if err != nil {
		return err
	}
	g := chc.BuildGraph(ns)

	var eng engine.Engine
	eopts := engine.Options{MaxUnrollings: opts.maxUnrollings, Logger: log}
	switch opts.engine {
	case "bmc":
		eng = engine.NewBMC(l, eopts)
	case "kind":
		eng = engine.NewKInd(l, eopts)
	default:
		return fmt.Errorf("unknown engine %q", opts.engine)
	}

	ctx := context.Background()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	res, err := eng.Solve(ctx, g)
	if err != nil {
		return err
	}
	switch res.Answer {
	case chc.Safe:
		fmt.Println("unsat")
	case chc.Unsafe:
		fmt.Println("sat")
	default:
		fmt.Println("unknown")
	}
	if opts.printWitness {
		printWitness(l, res)
	}
	return nil
}

func printWitness(l *logic.Logic, res chc.VerificationResult) {
	switch res.Answer {
	case chc.Safe:
		if res.Witness != logic.PTRefUndef {
			fmt.Printf("; certificate: %s\n", l.PrintWithLets(res.Witness))
		}
	case chc.Unsafe:
		fmt.Printf("; depth: %d\n", res.CexDepth)
		if len(res.CexPath) > 0 {
			fmt.Print("; path:")
			for _, sym := range res.CexPath {
				fmt.Printf(" %s", l.SymName(sym))
			}
			fmt.Println()
		}
	}
}
