// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Program jsonurl converts between JSON→URL text and JSON.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/creachadair/jsonurl"
	"github.com/cyberphone/json-canonicalization/go/src/webpki.org/jsoncanonicalizer"
	"github.com/panjf2000/ants/v2"
	"github.com/spf13/cobra"
	"github.com/tailscale/hujson"
)

func main() {
	if err := NewCLI().Execute(); err != nil {
		os.Exit(1)
	}
}

// NewCLI constructs the command tree for the jsonurl tool.
func NewCLI() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jsonurl",
		Short: "Convert between JSON→URL text and JSON",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.Bool("aqf", false, "Use the address-bar friendly (AQF) variant")
	pf.Bool("form", false, "Accept & and = as top-level separators")
	pf.Bool("implied-strings", false, "Treat every literal as a string")
	pf.Bool("skip-nulls", false, "Omit null values")
	pf.Bool("coerce-null", false, "Read null as the empty string")
	pf.Bool("no-empty-composite", false, "Read () as an empty array and (:) as an empty object")
	pf.Bool("empty-key", false, "Allow empty unquoted object keys")
	pf.Bool("empty-value", false, "Allow empty unquoted values")
	pf.String("in", "none", `Implied composite form ("none", "object", or "array")`)
	pf.String("missing-value", "", "Substitute for implied members with no value")
	pf.Int("max-chars", 0, "Maximum input length in bytes (0 for the default)")
	pf.Int("max-depth", 0, "Maximum nesting depth (0 for the default)")
	pf.Int("max-values", 0, "Maximum number of values (0 for the default)")
	pf.Int("batch", 0, "Convert each input line separately on this many workers")

	decodeCmd := &cobra.Command{
		Use:   "decode [text]",
		Short: "Convert JSON→URL text to JSON",
		Long: `Convert JSON→URL text to JSON. The input is taken from the argument
if present, otherwise from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runDecode,
	}
	decodeCmd.Flags().Bool("canonical", false, "Emit RFC 8785 canonical JSON")

	encodeCmd := &cobra.Command{
		Use:   "encode [json]",
		Short: "Convert JSON to JSON→URL text",
		Long: `Convert JSON to JSON→URL text. The input may use the JWCC extensions
(comments and trailing commas); it is taken from the argument if
present, otherwise from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runEncode,
	}

	rootCmd.AddCommand(decodeCmd, encodeCmd)
	return rootCmd
}

// settings collects the grammar options and the implied composite form
// from the flags of cmd.
func settings(cmd *cobra.Command) (*jsonurl.Options, jsonurl.Implied, error) {
	f := cmd.Flags()
	var o jsonurl.Options
	o.AQF, _ = f.GetBool("aqf")
	o.FormURLEncoded, _ = f.GetBool("form")
	o.ImpliedStringLiterals, _ = f.GetBool("implied-strings")
	o.SkipNulls, _ = f.GetBool("skip-nulls")
	o.CoerceNullToEmptyString, _ = f.GetBool("coerce-null")
	o.NoEmptyComposite, _ = f.GetBool("no-empty-composite")
	o.EmptyUnquotedKey, _ = f.GetBool("empty-key")
	o.EmptyUnquotedValue, _ = f.GetBool("empty-value")
	o.Limits.MaxParseChars, _ = f.GetInt("max-chars")
	o.Limits.MaxParseDepth, _ = f.GetInt("max-depth")
	o.Limits.MaxParseValues, _ = f.GetInt("max-values")
	if f.Changed("missing-value") {
		val, _ := f.GetString("missing-value")
		o.MissingValue = func(string) (any, error) { return val, nil }
	}

	in, _ := f.GetString("in")
	switch in {
	case "", "none":
		return &o, jsonurl.ImpliedNone, nil
	case "object":
		return &o, jsonurl.ImpliedObject, nil
	case "array":
		return &o, jsonurl.ImpliedArray, nil
	}
	return nil, 0, fmt.Errorf("invalid input form %q", in)
}

// input returns the text to convert: the argument if present, otherwise
// the contents of stdin.
func input(cmd *cobra.Command, args []string) (string, error) {
	if len(args) != 0 {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

func runDecode(cmd *cobra.Command, args []string) error {
	opts, implied, err := settings(cmd)
	if err != nil {
		return err
	}
	canonical, _ := cmd.Flags().GetBool("canonical")

	decode := func(text string) (string, error) {
		v, err := parseText(text, opts, implied)
		if err != nil {
			return "", err
		}
		data, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		if canonical {
			data, err = jsoncanonicalizer.Transform(data)
			if err != nil {
				return "", err
			}
		}
		return string(data), nil
	}

	if n, _ := cmd.Flags().GetInt("batch"); n > 0 {
		return runBatch(cmd, n, decode)
	}
	text, err := input(cmd, args)
	if err != nil {
		return err
	}
	out, err := decode(text)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func parseText(text string, opts *jsonurl.Options, implied jsonurl.Implied) (any, error) {
	switch implied {
	case jsonurl.ImpliedObject:
		return jsonurl.ParseImpliedObject(text, opts)
	case jsonurl.ImpliedArray:
		return jsonurl.ParseImpliedArray(text, opts)
	}
	return jsonurl.Parse(text, opts)
}

func runEncode(cmd *cobra.Command, args []string) error {
	opts, implied, err := settings(cmd)
	if err != nil {
		return err
	}

	encode := func(text string) (string, error) {
		v, err := decodeJSON(text)
		if err != nil {
			return "", err
		}
		switch implied {
		case jsonurl.ImpliedObject:
			m, ok := v.(map[string]any)
			if !ok {
				return "", fmt.Errorf("input is %T, not an object", v)
			}
			return jsonurl.MarshalImpliedObject(m, opts)
		case jsonurl.ImpliedArray:
			vs, ok := v.([]any)
			if !ok {
				return "", fmt.Errorf("input is %T, not an array", v)
			}
			return jsonurl.MarshalImpliedArray(vs, opts)
		}
		return jsonurl.Marshal(v, opts)
	}

	if n, _ := cmd.Flags().GetInt("batch"); n > 0 {
		return runBatch(cmd, n, encode)
	}
	text, err := input(cmd, args)
	if err != nil {
		return err
	}
	out, err := encode(text)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

// decodeJSON parses text as a single JSON value with the JWCC
// extensions allowed and numbers preserved exactly as written.
func decodeJSON(text string) (any, error) {
	std, err := hujson.Standardize([]byte(text))
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(std))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("extra data after JSON value")
	}
	return v, nil
}

// runBatch converts each line of stdin separately on a fixed pool of
// workers, writing the results in input order. Lines that fail are
// reported to stderr and counted in the returned error.
func runBatch(cmd *cobra.Command, workers int, convert func(string) (string, error)) error {
	var lines []string
	sc := bufio.NewScanner(cmd.InOrStdin())
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return err
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return err
	}
	defer pool.Release()

	type result struct {
		out string
		err error
	}
	results := make([]result, len(lines))
	var wg sync.WaitGroup
	for i, line := range lines {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			out, err := convert(line)
			results[i] = result{out: out, err: err}
		}
		if err := pool.Submit(task); err != nil {
			wg.Done()
			return err
		}
	}
	wg.Wait()

	var failed int
	for i, r := range results {
		if r.err != nil {
			failed++
			fmt.Fprintf(cmd.ErrOrStderr(), "line %d: %v\n", i+1, r.err)
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), r.out)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d inputs failed", failed, len(lines))
	}
	return nil
}
