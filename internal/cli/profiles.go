package cli

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newProfilesCmd(g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "Print the layout profiles in effect",
		Long:  `Print the local and global layout profiles as YAML, with the overrides from the config file applied.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := g.loadConfig()
			if err != nil {
				return err
			}
			local, global := cfg.Profiles()

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			defer enc.Close()
			return enc.Encode(map[string]any{
				"local":  local,
				"global": global,
			})
		},
	}
}
