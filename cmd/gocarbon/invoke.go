// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/blinklabs-io/gocarbon/ledger/common"
)

type invokeFlags struct {
	flagset *flag.FlagSet
	address string
	caller  string
	timeout time.Duration
}

func newInvokeFlags() *invokeFlags {
	f := &invokeFlags{
		flagset: flag.NewFlagSet("invoke", flag.ExitOnError),
	}
	f.flagset.StringVar(
		&f.address,
		"address",
		"http://localhost:8080",
		"base URL of the server",
	)
	f.flagset.StringVar(&f.caller, "caller", "", "identity making the call")
	f.flagset.DurationVar(&f.timeout, "timeout", 30*time.Second, "request timeout")
	return f
}

// runInvoke sends a single invocation to a running server. Argument types
// are looked up from the server's contract listing so that numeric strings
// and identities are not sent as numbers.
func runInvoke(f *globalFlags) {
	invokeFlags := newInvokeFlags()
	err := invokeFlags.flagset.Parse(f.flagset.Args()[1:])
	if err != nil {
		fmt.Printf("failed to parse subcommand args: %s\n", err)
		os.Exit(1)
	}
	if invokeFlags.caller == "" {
		fmt.Printf("ERROR: you must specify -caller\n")
		os.Exit(1)
	}
	if len(invokeFlags.flagset.Args()) < 2 {
		fmt.Printf("ERROR: usage: invoke [flags] <contract> <operation> [args...]\n")
		os.Exit(1)
	}
	contract := invokeFlags.flagset.Arg(0)
	operation := invokeFlags.flagset.Arg(1)
	client := &http.Client{Timeout: invokeFlags.timeout}
	argTypes, err := fetchArgTypes(client, invokeFlags.address, contract, operation)
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	args, err := typedArgs(argTypes, invokeFlags.flagset.Args()[2:])
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}
	body, err := json.Marshal(map[string]any{
		"operation": operation,
		"caller":    invokeFlags.caller,
		"args":      args,
	})
	if err != nil {
		fmt.Printf("ERROR: %s\n", err)
		os.Exit(1)
	}

	endpoint, err := url.JoinPath(invokeFlags.address, "v1", "contracts", contract, "invoke")
	if err != nil {
		fmt.Printf("ERROR: invalid address: %s\n", err)
		os.Exit(1)
	}
	resp, err := client.Post(endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		fmt.Printf("ERROR: request failed: %s\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("ERROR: failed to read response: %s\n", err)
		os.Exit(1)
	}
	fmt.Printf("%s", respBody)
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}

type contractListing struct {
	Name       string `json:"name"`
	Operations []struct {
		Name string   `json:"name"`
		Args []string `json:"args"`
	} `json:"operations"`
}

// fetchArgTypes returns the argument types of an operation as listed by the
// server. Unknown contracts and operations yield no types so that the server
// reports the dispatch failure itself.
func fetchArgTypes(client *http.Client, address, contract, operation string) ([]string, error) {
	endpoint, err := url.JoinPath(address, "v1", "contracts")
	if err != nil {
		return nil, fmt.Errorf("invalid address: %w", err)
	}
	resp, err := client.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to list contracts: %s", resp.Status)
	}
	var listing []contractListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode contract listing: %w", err)
	}
	for _, c := range listing {
		if c.Name != contract {
			continue
		}
		for _, op := range c.Operations {
			if op.Name == operation {
				return op.Args, nil
			}
		}
	}
	return nil, nil
}

// typedArgs converts command line arguments to JSON values. A "uint"
// argument must parse as one and is sent as a number; everything else,
// including arguments past the known types, is sent as a string.
func typedArgs(argTypes []string, raw []string) ([]any, error) {
	args := make([]any, 0, len(raw))
	for idx, arg := range raw {
		if idx < len(argTypes) && argTypes[idx] == common.ArgTypeUint.String() {
			if _, err := strconv.ParseUint(arg, 10, 64); err != nil {
				return nil, fmt.Errorf("argument %d (%q) must be a non-negative integer", idx, arg)
			}
			args = append(args, json.Number(arg))
			continue
		}
		args = append(args, arg)
	}
	return args, nil
}
