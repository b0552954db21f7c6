package main

import (
	"fmt"
	"strings"
)

// confirmPrivileged asks before running steps that may escalate privileges.
func confirmPrivileged(steps []string) bool {
	if len(steps) == 0 {
		return true
	}
	if yesFlag {
		return true
	}
	fmt.Println("These steps may use sudo:")
	for _, step := range steps {
		fmt.Printf("  - %s\n", step)
	}
	fmt.Print("Proceed? [y/N]: ")
	var response string
	if _, err := fmt.Scanln(&response); err != nil {
		return false
	}
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
