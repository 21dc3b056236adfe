// Copyright (c) 2026, Gaussio Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command gaussio converts Gaussian splat files between formats and
// prints summaries of their contents.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gaussio/gaussio"
	"github.com/gaussio/gaussio/formats"
	"github.com/gaussio/gaussio/gauss"
)

var (
	strict  bool
	verbose bool
)

func main() {
	root := &cobra.Command{
		Use:           "gaussio",
		Short:         "Convert and inspect Gaussian splat files",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}
	root.PersistentFlags().BoolVar(&strict, "strict", false, "fail on validation warnings")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(convertCmd(), infoCmd())

	if err := root.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func readCloud(reg *formats.Registry, path string) (*gauss.Cloud, int, error) {
	ext := gaussio.Ext(path)
	reader := reg.ReaderFor(ext)
	if reader == nil {
		return nil, 0, fmt.Errorf("no reader for extension %q", ext)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}
	opts := &formats.ReadOptions{
		Strict: strict,
		Warn:   func(msg string) { logrus.Warn(msg) },
	}
	cloud, err := reader.Read(data, opts)
	if err != nil {
		return nil, 0, err
	}
	return cloud, len(data), nil
}

func convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <input> <output>",
		Short: "Convert a splat file to another format",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := gaussio.NewRegistry()
			cloud, _, err := readCloud(reg, args[0])
			if err != nil {
				return err
			}
			logrus.Debugf("read %d points from %s", cloud.NumPoints, args[0])

			outExt := gaussio.Ext(args[1])
			writer := reg.WriterFor(outExt)
			if writer == nil {
				return fmt.Errorf("no writer for extension %q", outExt)
			}
			opts := &formats.WriteOptions{
				Strict: strict,
				Warn:   func(msg string) { logrus.Warn(msg) },
			}
			out, err := writer.Write(cloud, opts)
			if err != nil {
				return err
			}
			if err := os.WriteFile(args[1], out, 0o666); err != nil {
				return err
			}
			logrus.Infof("wrote %s (%s, %d points)", args[1], gauss.FormatBytes(len(out)), cloud.NumPoints)
			return nil
		},
	}
}

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Summarize a splat file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := gaussio.NewRegistry()
			cloud, fileSize, err := readCloud(reg, args[0])
			if err != nil {
				return err
			}
			printInfo(gauss.Summarize(cloud, fileSize))
			return nil
		},
	}
}

func printInfo(info *gauss.Info) {
	fmt.Printf("Model\n")
	fmt.Printf("  Points:         %d\n", info.NumPoints)
	if info.FileSize > 0 {
		fmt.Printf("  File size:      %s\n", gauss.FormatBytes(info.FileSize))
	}
	if info.SourceFormat != "" {
		fmt.Printf("  Source format:  %s\n", info.SourceFormat)
	}
	fmt.Printf("  SH degree:      %d\n", info.SHDegree)
	if info.Antialiased {
		fmt.Printf("  Antialiased:    true\n")
	}
	if info.Handedness != gauss.HandednessUnknown {
		fmt.Printf("  Handedness:     %s\n", info.Handedness)
	}
	if info.Up != gauss.UpUnknown {
		fmt.Printf("  Up axis:        %s\n", info.Up)
	}
	if info.Color != gauss.ColorUnknown {
		fmt.Printf("  Color space:    %s\n", info.Color)
	}

	if info.NumPoints > 0 {
		b := info.Bounds
		fmt.Printf("Bounds\n")
		fmt.Printf("  X:  [%g, %g]\n", b.MinX, b.MaxX)
		fmt.Printf("  Y:  [%g, %g]\n", b.MinY, b.MaxY)
		fmt.Printf("  Z:  [%g, %g]\n", b.MinZ, b.MaxZ)
	}
	if info.ScaleStats.Count > 0 {
		fmt.Printf("Scales (log)\n")
		fmt.Printf("  Min: %g  Max: %g  Mean: %g\n", info.ScaleStats.Min, info.ScaleStats.Max, info.ScaleStats.Mean)
	}
	if info.AlphaStats.Count > 0 {
		fmt.Printf("Alphas (logit)\n")
		fmt.Printf("  Min: %g  Max: %g  Mean: %g\n", info.AlphaStats.Min, info.AlphaStats.Max, info.AlphaStats.Mean)
	}

	fmt.Printf("Memory\n")
	fmt.Printf("  Positions:  %s\n", gauss.FormatBytes(info.PositionsSize))
	fmt.Printf("  Scales:     %s\n", gauss.FormatBytes(info.ScalesSize))
	fmt.Printf("  Rotations:  %s\n", gauss.FormatBytes(info.RotationsSize))
	fmt.Printf("  Alphas:     %s\n", gauss.FormatBytes(info.AlphasSize))
	fmt.Printf("  Colors:     %s\n", gauss.FormatBytes(info.ColorsSize))
	fmt.Printf("  SH coeffs:  %s\n", gauss.FormatBytes(info.SHSize))
	for _, e := range info.Extras {
		fmt.Printf("  %-10s  %s\n", e.Name+":", gauss.FormatBytes(e.Size))
	}
	fmt.Printf("  Total:      %s\n", gauss.FormatBytes(info.TotalSize))
}
