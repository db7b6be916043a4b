//go:build linux

package notify

import (
	"os/exec"

	"github.com/pkg/errors"
)

func platformShow(title, message string) error {
	path, err := exec.LookPath("notify-send")
	if err != nil {
		return errors.Wrap(err, "notify-send not found")
	}
	if err := exec.Command(path, "--urgency=normal", "--app-name=eyeremote", title, message).Run(); err != nil {
		return errors.Wrap(err, "notify-send failed")
	}
	return nil
}
