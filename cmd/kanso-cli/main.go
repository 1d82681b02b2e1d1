// SPDX-License-Identifier: Apache-2.0
package main

import (
	"fmt"
	"github.com/fatih/color"
	"kanso/internal/ir"
	"kanso/internal/parser"
	"kanso/internal/semantic"
	"os"
	"strings"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: kanso <file.ka> [-ir]")
		os.Exit(1)
	}

	path := os.Args[1]
	showIR := len(os.Args) > 2 && os.Args[2] == "-ir"

	source, err := os.ReadFile(path)
	if err != nil {
		color.Red("failed to read file: %s", err)
		os.Exit(1)
	}

	contract, parseErrs, scanErrs := parser.ParseSource(path, string(source))
	if len(scanErrs) > 0 || len(parseErrs) > 0 {
		for _, e := range scanErrs {
			reportSourceError(string(source), path, e.Position, e.Message)
		}
		for _, e := range parseErrs {
			reportSourceError(string(source), path, e.Position, e.Message)
		}
		os.Exit(1)
	}

	if !showIR {
		fmt.Println(contract.String())
		color.Green("✅ Successfully processed %s", path)
		return
	}

	analyzer := semantic.NewAnalyzer()
	if semErrs := analyzer.Analyze(contract); len(semErrs) > 0 {
		for _, e := range semErrs {
			color.Red("semantic error: %s", e.Message)
		}
		os.Exit(1)
	}

	program := ir.BuildProgram(contract, analyzer.Context())
	fmt.Println("=== before optimization ===")
	fmt.Println(ir.PrintProgram(program))

	ir.NewOptimizationPipeline().Run(program)

	fmt.Println("=== after optimization ===")
	fmt.Println(ir.PrintProgram(program))

	color.Green("✅ Successfully processed %s", path)
}

// reportSourceError prints a friendly caret-style scan/parse error message.
func reportSourceError(src, path string, pos parser.Position, message string) {
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("Syntax error at unknown location in %s: %s", path, message)
		return
	}

	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", pos.Column-1) + "^"

	color.Red("❌ Syntax error in %s at line %d, column %d:", path, pos.Line, pos.Column)
	fmt.Println(line)
	color.HiRed(caret)
	fmt.Printf("→ %s\n", message)
}
