// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/ezrec/mipsim/config"
	"github.com/ezrec/mipsim/emulator"
)

func main() {
	var configFile string
	var mode string
	var icache int
	var dcache int
	var hardZero bool
	var maxTicks int
	var listing bool
	var verbose bool
	var quiet bool

	flag.StringVar(&configFile, "config", "", "JSON machine configuration")
	flag.StringVar(&mode, "mode", "reference", "Datapath mode: reference or canonical")
	flag.IntVar(&icache, "icache", 12, "Instruction cache capacity")
	flag.IntVar(&dcache, "dcache", 12, "Data cache capacity")
	flag.BoolVar(&hardZero, "z", false, "Discard writes to $zero")
	flag.IntVar(&maxTicks, "max", 0, "Maximum instructions to execute (0 is unlimited)")
	flag.BoolVar(&listing, "l", false, "Print the assembled listing")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")
	flag.BoolVar(&quiet, "q", false, "Do not print the final machine state")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %v [options] program.asm\n", os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	source := flag.Arg(0)

	cfg := config.Default()
	if len(configFile) != 0 {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			log.Fatalf("%v: %v", configFile, err)
		}
	}

	cfg.FromEnv()

	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "mode":
			cfg.Mode = mode
		case "icache":
			cfg.ICacheCapacity = icache
		case "dcache":
			cfg.DCacheCapacity = dcache
		case "z":
			cfg.HardZero = hardZero
		case "max":
			cfg.MaxTicks = maxTicks
		case "v":
			cfg.Verbose = verbose
		}
	})

	emu, err := emulator.NewEmulator(cfg)
	if err != nil {
		log.Fatalf("%v: %v", os.Args[0], err)
	}
	emu.Console.Output = os.Stdout

	inf, err := os.Open(source)
	if err != nil {
		log.Fatalf("%v: %v", source, err)
	}
	defer inf.Close()

	err = emu.Load(inf)
	if err != nil {
		log.Fatalf("%v: %v", source, err)
	}

	runErr := emu.Run()

	rep := newReport(os.Stdout)
	if listing {
		rep.Listing(emu)
	}
	if !quiet {
		rep.State(emu)
	}

	if runErr != nil {
		log.Fatalf("%v: %v", source, runErr)
	}
}
