package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"amigaio/amiga"
)

var formatFilesystemType string
var formatCacheMode string
var formatInternationalMode string

var formatCmd = &cobra.Command{
	Use:                   "format IMAGE VOLUME-NAME",
	Short:                 "Write a fresh filesystem onto an existing image",
	Long:                  `Writes a boot block, root block, and bitmap onto IMAGE, naming the volume VOLUME-NAME.`,
	Args:                  cobra.ExactArgs(2),
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		path, name := args[0], args[1]

		var flavor amiga.Flavor
		switch formatFilesystemType {
		case "", "ofs":
			flavor = amiga.OFS
		case "ffs":
			flavor = amiga.FFS
		default:
			fail(fmt.Errorf("unrecognized filesystem type: %q", formatFilesystemType))
		}

		data, err := os.ReadFile(path)
		if err != nil {
			fail(err)
		}
		img, err := amiga.ImageFromBytes(data)
		if err != nil {
			fail(err)
		}

		fs, err := amiga.Format(img, name, amiga.FormatOptions{
			Flavor:        flavor,
			International: onOff(formatInternationalMode),
			Cache:         onOff(formatCacheMode),
		})
		if err != nil {
			fail(err)
		}

		if err := fs.DumpFile(path); err != nil {
			fail(err)
		}
	},
}

func onOff(v string) bool {
	return v == "on"
}

func init() {
	formatCmd.Flags().StringVar(&formatFilesystemType, "filesystem-type", "ofs", `"ofs" or "ffs"`)
	formatCmd.Flags().StringVar(&formatCacheMode, "cache-mode", "off", `"on" or "off"`)
	formatCmd.Flags().StringVar(&formatInternationalMode, "international-mode", "off", `"on" or "off"`)
	rootCmd.AddCommand(formatCmd)
}
