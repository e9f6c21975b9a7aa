package main

import (
	"errors"
	"flag"
	"fmt"

	"github.com/shikshaconnect/shiksha/core/user"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	usrSvc *user.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  adduser -email EMAIL -name NAME [-role ROLE] [-school SCHOOL_ID] [-district DISTRICT_ID] - create or update a user")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserRole := addUserCmd.String("role", user.DefaultRole, "One of: teacher, administrator, district_officer.")
	addUserSchool := addUserCmd.String("school", "", "The user's school ID.")
	addUserDistrict := addUserCmd.String("district", "", "The user's district ID.")

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserEmail == "" || *addUserName == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserEmail, *addUserName, *addUserRole, *addUserSchool, *addUserDistrict)
	default:
		cli.printUsage()
		return errHelp
	}
}
