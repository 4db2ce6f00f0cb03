package main

import "fmt"

func parseDirectionArg(arg string) (string, error) {
	switch arg {
	case "up", "down":
		return arg, nil
	}
	return "", fmt.Errorf("direction must be up or down, got %q", arg)
}
