package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/forge-lang/forge/internal/config"
	"github.com/forge-lang/forge/pkg/cli"
)

func main() {
	// Optional per-project environment, same lookup as the config file.
	_ = godotenv.Load()

	var opts cli.Options

	root := &cobra.Command{
		Use:           "forge",
		Short:         "Forge compiler and JIT driver",
		Version:       config.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVar(&opts.NoCache, "no-cache", false, "bypass the build cache")
	root.PersistentFlags().BoolVar(&opts.WarningsAsErrors, "Werror", false, "treat warnings as errors")

	compileCmd := &cobra.Command{
		Use:   "compile FILE...",
		Short: "Compile Forge sources to LLVM assembly",
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(cli.Compile(args, opts))
		},
	}
	compileCmd.Flags().StringVarP(&opts.OutputPath, "output", "o", "", "output path (single input only)")

	jitCmd := &cobra.Command{
		Use:   "jit FILE",
		Short: "Compile and run a Forge source in the embedded interpreter",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(cli.JIT(args[0], opts))
		},
	}

	dumpCmd := &cobra.Command{
		Use:   "dump-ast FILE",
		Short: "Print the annotated syntax tree of a Forge source",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(cli.DumpAST(args[0], opts))
		},
	}

	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the build cache",
	}
	cacheCmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every cached build",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				os.Exit(cli.CacheClear(opts))
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Show build cache statistics",
			Args:  cobra.NoArgs,
			Run: func(cmd *cobra.Command, args []string) {
				os.Exit(cli.CacheStats(opts))
			},
		},
	)

	root.AddCommand(compileCmd, jitCmd, dumpCmd, cacheCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "forge: %v\n", err)
		os.Exit(1)
	}
}
