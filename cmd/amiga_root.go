package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"amigaio/amiga"
)

var rootCmd = &cobra.Command{
	Use:   "amigaio",
	Short: "Read and write Amiga FFS/OFS floppy disk images",
	Long: `amigaio is a command-line tool for inspecting and manipulating Amiga
Fast File System and Original File System floppy disk images: format,
browse, read, write, and delete files and directories against a raw
DD or HD disk image file.`,
}

// Execute runs the root command, exiting the process with a non-zero
// status on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// confirm prompts the user on stderr with a yes/no question, defaulting to
// "no" when input isn't a terminal or the answer is empty/unrecognized.
func confirm(force bool, prompt string) bool {
	if force {
		return true
	}
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return false
	}

	fmt.Fprintf(os.Stderr, "%s [y/N] ", prompt)
	var answer string
	fmt.Scanln(&answer)
	return answer == "y" || answer == "Y" || answer == "yes"
}

// fail prints err to stderr and terminates the process with exit code 1.
func fail(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

// mountImage loads path as an Amiga disk image and mounts it, terminating
// the process on any error.
func mountImage(path string) *amiga.Filesystem {
	data, err := os.ReadFile(path)
	if err != nil {
		fail(err)
	}
	img, err := amiga.ImageFromBytes(data)
	if err != nil {
		fail(err)
	}
	fs, err := amiga.Mount(img)
	if err != nil {
		fail(err)
	}
	return fs
}

// saveImage writes fs's backing image back to path.
func saveImage(path string, fs *amiga.Filesystem) {
	if err := fs.DumpFile(path); err != nil {
		fail(err)
	}
}
