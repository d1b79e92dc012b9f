// Command bch2obj converts BCH model containers to Wavefront OBJ or
// DXF, and inspects their structure.
//
// Usage:
//
//	bch2obj convert [--output out.obj] [--format obj|dxf] <input.bch>
//	bch2obj info <input.bch>
//
// Defaults for --format and --output may also come from the
// BCH2OBJ_FORMAT and BCH2OBJ_OUTPUT environment variables.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"github.com/xyproto/env/v2"

	"github.com/deepteams/bch"
	"github.com/deepteams/bch/export"
)

var (
	outputPath string
	format     string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "bch2obj",
		Short:         "Convert BCH model containers to OBJ or DXF.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	convertCmd := &cobra.Command{
		Use:   "convert <input.bch>",
		Short: "Decode a BCH file and write its geometry.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(args[0])
		},
	}
	convertCmd.Flags().StringVarP(&outputPath, "output", "o", env.Str("BCH2OBJ_OUTPUT"),
		"output path (default: input with the format's extension)")
	convertCmd.Flags().StringVarP(&format, "format", "f", env.Str("BCH2OBJ_FORMAT", "obj"),
		"output format: obj or dxf")

	infoCmd := &cobra.Command{
		Use:   "info <input.bch>",
		Short: "Print container structure without writing geometry.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args[0])
		},
	}

	rootCmd.AddCommand(convertCmd, infoCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "bch2obj: %v\n", err)
		os.Exit(1)
	}
}

func runConvert(input string) error {
	format = strings.ToLower(format)
	if format != "obj" && format != "dxf" {
		return fmt.Errorf("unknown format %q (want obj or dxf)", format)
	}
	out := outputPath
	if out == "" {
		out = strings.TrimSuffix(input, ".bch") + "." + format
	}

	in, err := os.Open(input)
	if err != nil {
		return err
	}
	defer in.Close()

	spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	spin.Prefix = fmt.Sprintf("Converting %s... ", input)
	spin.Start()
	f, err := bch.Decode(in)
	spin.Stop()
	if err != nil {
		return err
	}

	switch format {
	case "dxf":
		if err := export.DXF(out, f); err != nil {
			return err
		}
	default:
		w, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := export.OBJ(w, f); err != nil {
			w.Close()
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
	}

	fmt.Printf("wrote %s\n", out)
	return nil
}

func runInfo(input string) error {
	in, err := os.Open(input)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := bch.GetInfo(in)
	if err != nil {
		return err
	}

	fmt.Printf("converter version: %d\n", info.ConverterVersion)
	fmt.Printf("compatibility:     backward %d, forward %d\n", info.BackwardCompat, info.ForwardCompat)
	fmt.Printf("models:            %d\n", info.ModelCount)
	fmt.Printf("meshes:            %d\n", info.MeshCount)
	fmt.Printf("vertices:          %d\n", info.VertexCount)
	for _, name := range info.ModelNames {
		fmt.Printf("  model %s\n", name)
	}
	return nil
}
