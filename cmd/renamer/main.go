// Command renamer normalizes the filenames in an image directory without
// running the full gallery build. Useful for cleaning up a screenshot
// dump before committing it to the gallery source bucket.
package main

import (
	"fmt"
	"os"

	"mc-gallery/internal/normalize"
)

const defaultImagesDir = "images"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	dir := os.Getenv("IMAGES_DIR")
	if dir == "" {
		dir = defaultImagesDir
	}

	switch command {
	case "plan":
		if !plan(dir, false) {
			os.Exit(1)
		}
	case "apply":
		if !plan(dir, true) {
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Gallery Filename Normalizer")
	fmt.Println("")
	fmt.Println("Usage: renamer <command>")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  plan    - Show the renames that a build would perform")
	fmt.Println("  apply   - Perform the renames")
	fmt.Println("")
	fmt.Println("Environment:")
	fmt.Printf("  IMAGES_DIR - Path to image directory (default: %s)\n", defaultImagesDir)
}

func plan(dir string, apply bool) bool {
	names, err := normalize.ListImages(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}

	mappings, err := normalize.Plan(names)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v (%s)\n", err, dir)
		return false
	}

	renames := 0
	for _, m := range mappings {
		if !m.Renamed() {
			fmt.Printf("  ok      %s\n", m.Canonical)
			continue
		}
		renames++
		fmt.Printf("  rename  %s -> %s\n", m.Original, m.Canonical)
	}

	if renames == 0 {
		fmt.Println("All filenames are already canonical.")
		return true
	}

	if !apply {
		fmt.Printf("%d renames planned. Run 'renamer apply' to perform them.\n", renames)
		return true
	}

	if err := normalize.Apply(dir, mappings); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}
	fmt.Printf("%d files renamed.\n", renames)
	return true
}
