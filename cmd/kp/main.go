// Copyright 2024 The Cockroach Authors.
//
// Use of this software is governed by the Business Source License
// included in the file licenses/BSL.txt.
//
// As of the Change Date specified in that file, in accordance with
// the Business Source License, use of this software will be governed
// by the Apache License, Version 2.0, included in the file
// licenses/APL.txt.

// kp is a command line coordinate processor: it applies an operator
// pipeline to coordinate tuples read from standard input.
//
//	echo 55 12 | kp "geo:in | utm zone=32"
//
// Input lines carry up to four whitespace separated numbers; '#' starts a
// comment. Exit status is non-zero for definition errors; per-point
// failures print as NaN and are reported on stderr without failing the
// run.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/geodesy/pkg/geodesy"
	"github.com/cockroachdb/geodesy/pkg/geodesy/coords"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	inverse  bool
	decimals int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kp [flags] \"definition\"",
		Short: "kp applies a geodetic operator pipeline to coordinate tuples from stdin",
		Args:  cobra.ExactArgs(1),
		RunE:  runPipeline,

		SilenceUsage: true,
	}
	var flags *pflag.FlagSet = rootCmd.Flags()
	flags.BoolVar(&inverse, "inv", false, "apply the operation in the inverse direction")
	flags.IntVarP(&decimals, "decimals", "d", 9, "number of decimals in the output")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "operators",
		Short: "list the built-in operators",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Operator"})
			for _, name := range geodesy.BuiltinNames() {
				table.Append([]string{name})
			}
			table.Render()
		},
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx := geodesy.NewPlain()
	op, err := ctx.Op(args[0])
	if err != nil {
		return err
	}

	direction := geodesy.Fwd
	if inverse {
		direction = geodesy.Inv
	}

	var data coords.Set4D
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line, _, _ := strings.Cut(scanner.Text(), "#")
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		var tuple coords.Coor4D
		for i, field := range fields {
			if i >= 4 {
				break
			}
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return fmt.Errorf("malformed coordinate %q", field)
			}
			tuple[i] = v
		}
		data = append(data, tuple)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	failures, err := ctx.Apply(op, direction, data)
	if err != nil {
		return err
	}
	if failures > 0 {
		fmt.Fprintf(os.Stderr, "kp: %d of %d points failed\n", failures, len(data))
	}

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()
	for _, tuple := range data {
		fmt.Fprintf(out, "%.*f %.*f %.*f %.*f\n",
			decimals, tuple[0], decimals, tuple[1], decimals, tuple[2], decimals, tuple[3])
	}
	return nil
}
