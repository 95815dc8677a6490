package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var catCmd = &cobra.Command{
	Use:                   "cat IMAGE PATH",
	Short:                 "Print a file's contents to standard output",
	Args:                  cobra.ExactArgs(2),
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		fs := mountImage(args[0])

		data, err := fs.Read(args[1])
		if err != nil {
			fail(err)
		}
		os.Stdout.Write(data)
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
}
