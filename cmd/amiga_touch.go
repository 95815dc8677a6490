package cmd

import (
	"time"

	"github.com/spf13/cobra"
)

var touchNoCreate bool
var touchDateTime string

var touchCmd = &cobra.Command{
	Use:                   "touch IMAGE PATH",
	Short:                 "Update a file's alteration date, creating it if missing",
	Args:                  cobra.ExactArgs(2),
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		imagePath, path := args[0], args[1]

		when := time.Now()
		if touchDateTime != "" {
			t, err := time.Parse(time.RFC3339, touchDateTime)
			if err != nil {
				fail(err)
			}
			when = t
		}

		fs := mountImage(imagePath)

		if !fs.Exists(path) {
			if touchNoCreate {
				return
			}
			if err := fs.Write(path, nil); err != nil {
				fail(err)
			}
		}

		if err := fs.SetModified(path, when); err != nil {
			fail(err)
		}
		saveImage(imagePath, fs)
	},
}

func init() {
	touchCmd.Flags().BoolVar(&touchNoCreate, "no-create", false, "Do not create PATH if it does not exist")
	touchCmd.Flags().StringVar(&touchDateTime, "date-time", "", "RFC3339 timestamp to set instead of the current time")
	rootCmd.AddCommand(touchCmd)
}
