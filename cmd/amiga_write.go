package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var writeForce bool

var writeCmd = &cobra.Command{
	Use:                   "write IMAGE HOST-SRC DST",
	Short:                 "Copy a host file into the image",
	Args:                  cobra.ExactArgs(3),
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		imagePath, hostSrc, dst := args[0], args[1], args[2]

		data, err := os.ReadFile(hostSrc)
		if err != nil {
			fail(err)
		}

		fs := mountImage(imagePath)
		if fs.Exists(dst) && !confirm(writeForce, dst+" already exists in the image, overwrite?") {
			fail(os.ErrExist)
		}

		if err := fs.Write(dst, data); err != nil {
			fail(err)
		}
		saveImage(imagePath, fs)
	},
}

func init() {
	writeCmd.Flags().BoolVar(&writeForce, "force", false, "Overwrite DST in the image without prompting")
	rootCmd.AddCommand(writeCmd)
}
