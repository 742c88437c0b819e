package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/mirpeset/mirpeset/core/lesson"
	"github.com/mirpeset/mirpeset/core/schedule"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	lessonSvc *lesson.Service
	parser    *schedule.Parser
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  import -file FILE [-replace]  - parse a freeform schedule file and import its lessons")
	fmt.Println("  export -out FILE              - export the lesson collection as JSON")
	fmt.Println("  fixcategories                 - re-derive lesson categories from titles")
	fmt.Println("  hashpassword                  - print the bcrypt hash for the admin password")
	fmt.Println("  sweep                         - mark elapsed lessons as completed")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importFile := importCmd.String("file", "", "Freeform schedule text file to import.")
	importReplace := importCmd.Bool("replace", false, "Replace existing lessons on day+time conflicts.")

	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	exportOut := exportCmd.String("out", "", "Destination JSON file.")

	switch args[1] {
	case "import":
		if err := importCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *importFile == "" {
			importCmd.Usage()
			return errHelp
		}
		return cli.importSchedule(*importFile, *importReplace)
	case "export":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *exportOut == "" {
			exportCmd.Usage()
			return errHelp
		}
		return cli.exportLessons(*exportOut)
	case "fixcategories":
		return cli.fixCategories()
	case "hashpassword":
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			return errHelp
		}
		return cli.hashPassword(string(pwd))
	case "sweep":
		return cli.sweep()
	default:
		cli.printUsage()
		return errHelp
	}
}
