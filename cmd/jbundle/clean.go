// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cereda/jbundle/internal/cache"
	"github.com/cereda/jbundle/internal/config"
)

func cmdClean() *cobra.Command {
	return &cobra.Command{
		Use:   "clean",
		Short: "Remove the cached runtime downloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := config.CacheRoot()
			if err != nil {
				return err
			}
			if err := cache.Clean(root); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "removed", root)
			return nil
		},
	}
}
