package cmd

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"

	"amigaio/amiga"
)

var listRecurse bool

var listCmd = &cobra.Command{
	Use:                   "list IMAGE [PATH]",
	Short:                 "List a directory's entries",
	Args:                  cobra.RangeArgs(1, 2),
	DisableFlagsInUseLine: true,
	Run: func(cmd *cobra.Command, args []string) {
		dir := "/"
		if len(args) > 1 {
			dir = args[1]
		}

		fs := mountImage(args[0])
		if err := listDir(fs, dir, listRecurse); err != nil {
			fail(err)
		}
	},
}

func listDir(fs *amiga.Filesystem, dir string, recurse bool) error {
	entries, err := fs.ReadDirAll(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		full := path.Join(dir, e.Name)
		fmt.Println(entryLine(full, e))
		if recurse && e.Type == amiga.EntryDir {
			if err := listDir(fs, full, recurse); err != nil {
				return err
			}
		}
	}
	return nil
}

func entryLine(full string, e amiga.Metadata) string {
	switch e.Type {
	case amiga.EntryDir:
		return fmt.Sprintf("%s/", full)
	case amiga.EntryLink:
		return fmt.Sprintf("%s@", full)
	default:
		return fmt.Sprintf("%-40s %8d", full, e.Size)
	}
}

func init() {
	listCmd.Flags().BoolVar(&listRecurse, "recurse", false, "List subdirectories recursively")
	rootCmd.AddCommand(listCmd)
}
