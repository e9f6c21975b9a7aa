package main

import (
	"context"

	"github.com/shikshaconnect/shiksha/core/user"
)

// addUser creates or updates a user with the given role and scoping.
func (cli *commandLine) addUser(email, name, role, schoolID, districtID string) error {
	usr, err := cli.usrSvc.UpdateOrCreate(context.Background(), user.User{
		Email:      email,
		Name:       name,
		Role:       role,
		SchoolID:   schoolID,
		DistrictID: districtID,
	})
	if err != nil {
		return err
	}
	logger.Printf("user %q saved with role %q\n", usr.Email, usr.Role)
	return nil
}
