package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	edsruntime "github.com/wippyai/eds-runtime"
	"github.com/wippyai/eds-runtime/datasheet"
)

func main() {
	var (
		file      = pflag.StringP("file", "f", "", "Path to datasheet file (.eds binary or .yaml)")
		component = pflag.Int32P("component", "c", -1, "Only show types of this component slot")
		list      = pflag.BoolP("list", "l", false, "Print the type listing and exit")
	)
	pflag.Parse()

	if *file == "" {
		fmt.Fprintln(os.Stderr, "Usage: edsview --file <datasheet> [--component N]")
		fmt.Fprintln(os.Stderr, "       edsview --file <datasheet> --list")
		os.Exit(1)
	}

	if *list {
		if err := listTypes(*file, *component); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runInteractive(*file, *component); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func listTypes(file string, slot int32) error {
	rt, err := edsruntime.Open(file)
	if err != nil {
		return err
	}

	for _, comp := range rt.Database().Components() {
		if slot >= 0 && int32(comp.Slot) != slot {
			continue
		}
		fmt.Printf("Component %d: %s (%d types)\n", comp.Slot, comp.Name, len(comp.Types)-1)
		for i := 1; i < len(comp.Types); i++ {
			id := datasheet.TypeId{Component: comp.Slot, Index: uint16(i)}
			d, err := rt.Database().Resolve(id)
			if err != nil {
				return err
			}
			extra := ""
			if d.NumSub > 0 {
				extra = fmt.Sprintf(", %d members", d.NumSub)
			}
			fmt.Printf("  %-6s %-32s %s (%d bits / %d bytes%s)\n",
				id, d.Name, d.Kind, d.Size.Bits, d.Size.Bytes, extra)
		}
	}
	return nil
}
