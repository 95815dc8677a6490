package cmd

import (
	"fmt"

	"code.cloudfoundry.org/bytefmt"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:                   "info IMAGE",
	Short:                 "Print volume identity, flags, and free/total space",
	Args:                  cobra.ExactArgs(1),
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		fs := mountImage(args[0])

		info, err := fs.Info()
		if err != nil {
			fail(err)
		}

		fmt.Printf("Volume name:    %s\n", info.VolumeName)
		fmt.Printf("Filesystem:     %s\n", info.Flavor)
		fmt.Printf("International:  %t\n", info.International)
		fmt.Printf("Cache:          %t\n", info.Cache)
		fmt.Printf("Total blocks:   %d (%s)\n", info.TotalBlockCount, bytefmt.ByteSize(info.TotalSize))
		fmt.Printf("Free blocks:    %d (%s)\n", info.FreeBlockCount, bytefmt.ByteSize(info.FreeSize))
		fmt.Printf("Last altered:   %s\n", info.RootAlteration.Time().Format("2006-01-02 15:04:05"))
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
