package cmd

import (
	"path"

	"github.com/spf13/cobra"

	"amigaio/amiga"
)

var removeRecursive bool
var removeForce bool

var removeCmd = &cobra.Command{
	Use:                   "remove IMAGE PATH...",
	Short:                 "Remove files or directories from the image",
	Args:                  cobra.MinimumNArgs(2),
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		imagePath := args[0]
		fs := mountImage(imagePath)

		for _, p := range args[1:] {
			if !confirm(removeForce, "remove "+p+"?") {
				continue
			}
			if err := removePath(fs, p, removeRecursive); err != nil {
				fail(err)
			}
		}
		saveImage(imagePath, fs)
	},
}

// removePath removes a single file or directory at p. When recurse is set
// and p names a non-empty directory, its children are removed first.
func removePath(fs *amiga.Filesystem, p string, recurse bool) error {
	md, err := fs.Metadata(p)
	if err != nil {
		return err
	}

	if md.Type != amiga.EntryDir {
		return fs.RemoveFile(p)
	}

	if recurse {
		children, err := fs.ReadDirAll(p)
		if err != nil {
			return err
		}
		for _, child := range children {
			if err := removePath(fs, path.Join(p, child.Name), true); err != nil {
				return err
			}
		}
	}
	return fs.RemoveDir(p)
}

func init() {
	removeCmd.Flags().BoolVar(&removeRecursive, "recursive", false, "Remove non-empty directories and their contents")
	removeCmd.Flags().BoolVar(&removeForce, "force", false, "Do not prompt before removing")
	rootCmd.AddCommand(removeCmd)
}
