package logout

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/denysvitali/ladeklubben-cli/cmd/root"
)

var LogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored access token",
	Long: `Remove the access token from the config file and drop the member prices.
The username and password stay in the config, the next command logs in again.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := root.GetClient()
		if client == nil {
			return fmt.Errorf("client not initialized")
		}
		if err := client.Logout(); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		root.GetMembers().Clear()
		fmt.Println("✅ Logged out")
		return nil
	},
}

func init() {
	root.RootCmd.AddCommand(LogoutCmd)
}
