package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"amigaio/amiga"
)

var createFloppyType string
var createForceOverwrite bool

var createCmd = &cobra.Command{
	Use:                   "create IMAGE",
	Short:                 "Create a new, empty Amiga disk image",
	Long:                  `Allocates a zero-filled DD or HD floppy image and writes it to a new host file.`,
	Args:                  cobra.ExactArgs(1),
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		path := args[0]

		if _, err := os.Stat(path); err == nil && !createForceOverwrite {
			fail(fmt.Errorf("%s already exists, use --force-overwrite to replace it", path))
		}

		var kind amiga.FloppyKind
		switch createFloppyType {
		case "", "dd":
			kind = amiga.DD
		case "hd":
			kind = amiga.HD
		default:
			fail(fmt.Errorf("unrecognized floppy disk type: %q", createFloppyType))
		}

		img := amiga.EmptyImage(kind)
		if err := os.WriteFile(path, img.Data(), 0644); err != nil {
			fail(err)
		}
	},
}

func init() {
	createCmd.Flags().StringVar(&createFloppyType, "floppy-disk-type", "dd", `Image geometry, "dd" or "hd"`)
	createCmd.Flags().BoolVar(&createForceOverwrite, "force-overwrite", false, "Overwrite IMAGE if it already exists")
	rootCmd.AddCommand(createCmd)
}
