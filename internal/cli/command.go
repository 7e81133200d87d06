package cli

import "github.com/spf13/cobra"

// StringFlag defines a string flag for a command.
type StringFlag struct {
	Name    string
	Usage   string
	Default string
}

// LeafCommand defines a command that executes logic.
type LeafCommand struct {
	Use      string
	Short    string
	Long     string
	Args     cobra.PositionalArgs
	StrFlags []StringFlag
	RunE     func(cmd *cobra.Command, args []string) error
}

// Build creates a cobra.Command with all flags registered.
func (lc LeafCommand) Build() *cobra.Command {
	cmd := &cobra.Command{
		Use:   lc.Use,
		Short: lc.Short,
		Long:  lc.Long,
		Args:  lc.Args,
		RunE:  lc.RunE,
	}
	for _, f := range lc.StrFlags {
		cmd.Flags().String(f.Name, f.Default, f.Usage)
	}
	return cmd
}

// GroupCommand defines a command that only holds subcommands.
type GroupCommand struct {
	Use         string
	Short       string
	Subcommands []*cobra.Command
}

func (gc GroupCommand) Build() *cobra.Command {
	cmd := &cobra.Command{
		Use:   gc.Use,
		Short: gc.Short,
	}
	for _, sub := range gc.Subcommands {
		cmd.AddCommand(sub)
	}
	return cmd
}

// dateFlag is shared by every command that acts on one day.
var dateFlag = StringFlag{Name: "date", Usage: "day to act on (YYYY-MM-DD, default: today)"}
