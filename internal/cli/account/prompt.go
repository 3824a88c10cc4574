package account

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
)

// promptSecret asks for a value without echoing it
func promptSecret(title string) (string, error) {
	var value string
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&value).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return "", fmt.Errorf("cancelled")
	}
	return value, err
}
