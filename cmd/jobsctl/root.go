//
// Copyright © 2016-2017 Solus Project
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

// Command jobsctl is the CLI counterpart to multijobd, talking to it over
// its Unix socket via schedclient.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the main entry point into jobsctl.
var rootCmd = &cobra.Command{
	Use:   "jobsctl",
	Short: "jobsctl controls a running multijobd instance",
}

// backgroundCmd is the parent for background-consumer control commands.
var backgroundCmd = &cobra.Command{
	Use:   "background [limit] [terminate]",
	Short: "control the background consumer budget",
}

var (
	// socketPath is the default location of the daemon's unix socket.
	socketPath = "/run/multijobd.sock"
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&socketPath, "socket", "s", socketPath, "Set the socket path to talk to multijobd")
	rootCmd.AddCommand(backgroundCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
