package cmd

import (
	"github.com/spf13/cobra"
)

var mkdirParents bool

var mkdirCmd = &cobra.Command{
	Use:                   "mkdir IMAGE PATH",
	Short:                 "Create a directory inside the image",
	Args:                  cobra.ExactArgs(2),
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		imagePath, path := args[0], args[1]

		fs := mountImage(imagePath)

		var err error
		if mkdirParents {
			err = fs.CreateDirAll(path)
		} else {
			err = fs.CreateDir(path)
		}
		if err != nil {
			fail(err)
		}
		saveImage(imagePath, fs)
	},
}

func init() {
	mkdirCmd.Flags().BoolVar(&mkdirParents, "parent", false, "Create missing parent directories")
	rootCmd.AddCommand(mkdirCmd)
}
