package main

import "flag"

// Options holds CLI options for the echo server.
type Options struct {
	ConfigPath string
	Workers    int
}

// ParseFlags parses CLI flags from args and returns Options.
func ParseFlags(args []string) Options {
	fs := flag.NewFlagSet("conduit-echod", flag.ExitOnError)
	var opts Options
	fs.StringVar(&opts.ConfigPath, "config", "", "Path to YAML config file")
	fs.IntVar(&opts.Workers, "workers", 0, "Bound concurrent echo handlers (0 = unbounded)")
	_ = fs.Parse(args)
	return opts
}
