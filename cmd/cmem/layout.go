package main

import (
	"fmt"
	"io"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"cmem/internal/ctypes"
	"cmem/internal/layout"
)

var layoutTargetFile string

func init() {
	layoutCmd.Flags().StringVar(&layoutTargetFile, "target", "", "target description file (TOML)")
}

const layoutNameWidth = 28

var layoutCmd = &cobra.Command{
	Use:   "layout <types.toml>",
	Short: "Report size, alignment and field offsets for described types",
	Long:  `Reads a TOML type table (struct declarations plus type expressions) and prints the computed layout for each entry.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := layout.X86_64LinuxGNU()
		if layoutTargetFile != "" {
			var err error
			target, err = layout.LoadTarget(layoutTargetFile)
			if err != nil {
				return err
			}
		}
		table, err := loadTypeTable(args[0])
		if err != nil {
			return err
		}

		in := ctypes.NewInterner()
		eng := layout.New(target, in)
		resolver := newTypeResolver(in)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "target %s (pointer size %d)\n\n", target.Name, target.PtrSize)
		fmt.Fprintf(out, "%s %5s %6s\n", runewidth.FillRight("TYPE", layoutNameWidth), "SIZE", "ALIGN")

		for _, decl := range table.Structs {
			id, err := resolver.declare(decl)
			if err != nil {
				return err
			}
			if err := printLayoutRow(out, eng, in, id); err != nil {
				return err
			}
			if err := printFieldRows(out, eng, in, id); err != nil {
				return err
			}
		}
		for _, expr := range table.Types {
			id, err := resolver.parse(expr)
			if err != nil {
				return err
			}
			if err := printLayoutRow(out, eng, in, id); err != nil {
				return err
			}
		}
		return nil
	},
}

func printLayoutRow(out io.Writer, eng *layout.Engine, in *ctypes.Interner, id ctypes.TypeID) error {
	l, err := eng.LayoutOf(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %5d %6d\n", runewidth.FillRight(in.TypeString(id), layoutNameWidth), l.Size, l.Align)
	return nil
}

func printFieldRows(out io.Writer, eng *layout.Engine, in *ctypes.Interner, id ctypes.TypeID) error {
	info, ok := in.StructInfo(id)
	if !ok {
		return nil
	}
	for i, f := range info.Fields {
		off, err := eng.FieldOffset(id, i)
		if err != nil {
			return err
		}
		row := fmt.Sprintf("  .%s %s", f.Name, in.TypeString(f.Type))
		fmt.Fprintf(out, "%s offset %d\n", runewidth.FillRight(row, layoutNameWidth), off)
	}
	return nil
}
