package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var readForce bool

var readCmd = &cobra.Command{
	Use:                   "read IMAGE SRC [DST]",
	Short:                 "Copy a file out of the image to the host filesystem",
	Args:                  cobra.RangeArgs(2, 3),
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		src := args[1]
		dst := filepath.Base(src)
		if len(args) > 2 {
			dst = args[2]
		}

		if _, err := os.Stat(dst); err == nil {
			if !confirm(readForce, dst+" already exists, overwrite?") {
				fail(os.ErrExist)
			}
		}

		fs := mountImage(args[0])
		data, err := fs.Read(src)
		if err != nil {
			fail(err)
		}
		if err := os.WriteFile(dst, data, 0644); err != nil {
			fail(err)
		}
	},
}

func init() {
	readCmd.Flags().BoolVar(&readForce, "force", false, "Overwrite DST without prompting")
	rootCmd.AddCommand(readCmd)
}
