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

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/solus-project/multijobd/schedclient"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "display multijobd status",
	Long:  "Show pending job counts and background consumer state",
	Run:   getStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func printStatus(status *schedclient.Status) {
	header := []string{
		"Uptime",
		"Pending jobs",
		"Pending background",
		"Running consumers",
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetBorder(false)
	table.Append([]string{
		status.Uptime,
		fmt.Sprintf("%d", status.PendingJobs),
		fmt.Sprintf("%d", status.PendingBackgroundJobs),
		fmt.Sprintf("%d", status.RunningBackgroundConsumers),
	})
	table.Render()
}

func getStatus(cmd *cobra.Command, args []string) {
	if len(args) != 0 {
		fmt.Fprintf(os.Stderr, "status takes no arguments\n")
		return
	}

	client := schedclient.NewClient(socketPath)
	defer client.Close()

	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return
	}
	printStatus(status)
}
