package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/molview/pkg/elements"
	"github.com/matzehuels/molview/pkg/errors"
)

// elementsCommand creates the elements command for the display table.
func (c *CLI) elementsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "elements",
		Short: "Inspect and edit the element display table",
	}
	cmd.AddCommand(c.elementsListCommand())
	cmd.AddCommand(c.elementsAddCommand())
	cmd.AddCommand(c.elementsRemoveCommand())
	return cmd
}

func (c *CLI) elementsListCommand() *cobra.Command {
	var stored bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List known elements",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var tbl *elements.Table
			if stored {
				st, err := c.openStore(cmd.Context())
				if err != nil {
					return err
				}
				defer st.Close()
				if tbl, err = st.Elements(cmd.Context()); err != nil {
					return err
				}
			} else {
				cfg, err := c.config()
				if err != nil {
					return err
				}
				if tbl, err = loadElements(cfg); err != nil {
					return err
				}
			}
			fmt.Println(elementTable(tbl.All()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&stored, "stored", false, "list the table held by the store")
	return cmd
}

// elementTable formats elements ordered as given.
func elementTable(all []elements.Element) string {
	rows := make([][]string, len(all))
	for i, e := range all {
		rows[i] = []string{
			strconv.Itoa(e.Number),
			e.Code,
			e.Name,
			strconv.FormatFloat(e.Radius, 'f', -1, 64),
			strings.Join(e.Colours[:], " "),
		}
	}
	return renderTable([]string{"#", "Code", "Name", "Radius", "Colours"}, rows)
}

func (c *CLI) elementsAddCommand() *cobra.Command {
	var (
		e       elements.Element
		colours string
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or replace an element in the store",
		Example: `  molview elements add --code Se --name Selenium --number 34 \
      --radius 45 --colours FFA100,B07000,603C00`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseColours(colours)
			if err != nil {
				return err
			}
			e.Colours = parsed
			if err := e.Validate(); err != nil {
				return err
			}

			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.PutElement(cmd.Context(), e); err != nil {
				return err
			}
			printSuccess("Stored element %s (%s)", StyleHighlight.Render(e.Code), e.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&e.Code, "code", "", "element code, e.g. Se")
	cmd.Flags().StringVar(&e.Name, "name", "", "element name")
	cmd.Flags().IntVar(&e.Number, "number", 0, "atomic number")
	cmd.Flags().Float64Var(&e.Radius, "radius", 0, "drawn radius in canvas units")
	cmd.Flags().StringVar(&colours, "colours", "", "three gradient stops: inner,middle,outer")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("colours")
	return cmd
}

// parseColours splits three comma-separated hex colours.
func parseColours(s string) ([3]string, error) {
	var out [3]string
	parts := strings.Split(s, ",")
	if len(parts) != len(out) {
		return out, errors.New(errors.ErrCodeInvalidElement, "want 3 colours, got %d", len(parts))
	}
	for i, p := range parts {
		out[i] = strings.TrimPrefix(strings.TrimSpace(p), "#")
	}
	return out, nil
}

func (c *CLI) elementsRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm [code]",
		Aliases: []string{"remove"},
		Short:   "Remove an element from the store",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := c.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.DeleteElement(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess("Removed element %s", args[0])
			return nil
		},
	}
}
