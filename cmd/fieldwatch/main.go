// Copyright 2025 SirSeer, LLC
//
// Licensed under the Business Source License 1.1 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://mariadb.com/bsl11
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sirseerhq/sirseer-fieldwatch/pkg/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "fieldwatch",
		Short: "Audit GitHub project boards for missing required field values",
		Long: `Fieldwatch audits a GitHub Projects V2 board for closed issues whose
required custom fields were never filled in, and reminds the assignees with
a single consolidated issue comment. Reruns are safe: an issue that already
carries a reminder is never commented on twice.`,
		Version:       version.Version,
		SilenceUsage:  true, // Don't show usage on error
		SilenceErrors: true, // We'll handle error printing ourselves
	}

	rootCmd.AddCommand(newAuditCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(mapErrorToExitCode(err))
	}
}
