package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/molview/pkg/pipeline"
	"github.com/matzehuels/molview/pkg/sdf"
	"github.com/matzehuels/molview/pkg/store"
)

// dbCommand creates the db command for managing stored molecules.
func (c *CLI) dbCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage stored molecules",
		Long: `Manage molecules in the configured store.

The store backend is selected by the [store] section of molview.toml or the
MOLVIEW_STORE_BACKEND environment variable. The memory backend keeps nothing
between runs.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if root := cmd.Root(); root.PersistentPreRunE != nil {
				if err := root.PersistentPreRunE(cmd, args); err != nil {
					return err
				}
			}
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if cfg.Store.Backend == "" || cfg.Store.Backend == store.BackendMemory {
				c.Logger.Warn("using the memory store; molecules are discarded on exit")
			}
			return nil
		},
	}

	cmd.AddCommand(c.dbAddCommand())
	cmd.AddCommand(c.dbListCommand())
	cmd.AddCommand(c.dbShowCommand())
	cmd.AddCommand(c.dbRemoveCommand())
	cmd.AddCommand(c.dbExportCommand())
	return cmd
}

func (c *CLI) dbAddCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "add [file]",
		Short: "Parse a structure file and store it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readInput(args[0])
			if err != nil {
				return err
			}
			m, err := pipeline.Parse(src, firstNonEmpty(name, nameFromPath(args[0])))
			if err != nil {
				return err
			}
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Save(cmd.Context(), m.Name, m); err != nil {
				return err
			}
			printSuccess("Stored %s", StyleHighlight.Render(m.Name))
			printStats(m.AtomCount(), m.BondCount(), false)
			printNextStep("Render it", "molview db export "+m.Name+" | molview render -")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "name to store under (default: file name)")
	return cmd
}

func (c *CLI) dbListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored molecules",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			list, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				printInfo("No stored molecules")
				return nil
			}
			fmt.Println(summaryTable(list))
			return nil
		},
	}
}

// summaryTable formats stored molecule summaries.
func summaryTable(list []store.Summary) string {
	rows := make([][]string, len(list))
	for i, s := range list {
		rows[i] = []string{s.Name, strconv.Itoa(s.Atoms), strconv.Itoa(s.Bonds), s.CreatedAt.Local().Format("2006-01-02 15:04")}
	}
	return renderTable([]string{"Name", "Atoms", "Bonds", "Created"}, rows)
}

func (c *CLI) dbShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Summarize a stored molecule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			m, err := st.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			tbl, err := st.Elements(cmd.Context())
			if err != nil {
				return err
			}
			printMolecule(m, tbl)
			return nil
		},
	}
}

func (c *CLI) dbRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm [name...]",
		Aliases: []string{"remove"},
		Short:   "Delete stored molecules",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			for _, name := range args {
				if err := st.Delete(cmd.Context(), name); err != nil {
					return err
				}
				printSuccess("Deleted %s", name)
			}
			return nil
		},
	}
}

func (c *CLI) dbExportCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export [name]",
		Short: "Write a stored molecule as a structure file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			m, err := st.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				return sdf.Write(os.Stdout, m)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := sdf.Write(f, m); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			printSuccess("Exported %s", m.Name)
			printFile(output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}
