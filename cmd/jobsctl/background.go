//
// Copyright © 2017 Solus Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/solus-project/multijobd/schedclient"
)

var backgroundLimitCmd = &cobra.Command{
	Use:   "limit <n>",
	Short: "set the background consumer budget",
	Run:   setBackgroundLimit,
}

var backgroundTerminateCmd = &cobra.Command{
	Use:   "terminate",
	Short: "cancel queued (not yet started) background consumers",
	Run:   terminateBackground,
}

var processCmd = &cobra.Command{
	Use:   "process <class>",
	Short: "synchronously drain a class queue",
	Run:   processClass,
}

func init() {
	backgroundCmd.AddCommand(backgroundLimitCmd)
	backgroundCmd.AddCommand(backgroundTerminateCmd)
	rootCmd.AddCommand(processCmd)
}

func setBackgroundLimit(cmd *cobra.Command, args []string) {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "limit requires exactly one argument\n")
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid limit %q: %v\n", args[0], err)
		return
	}

	client := schedclient.NewClient(socketPath)
	defer client.Close()
	if err := client.SetBackgroundLimit(n); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}

func terminateBackground(cmd *cobra.Command, args []string) {
	client := schedclient.NewClient(socketPath)
	defer client.Close()
	if err := client.TerminateBackground(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}

func processClass(cmd *cobra.Command, args []string) {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "process requires exactly one class argument\n")
		return
	}
	class, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid class %q: %v\n", args[0], err)
		return
	}

	client := schedclient.NewClient(socketPath)
	defer client.Close()
	if err := client.ProcessClass(class); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
}
