//go:build darwin

package notify

import (
	"fmt"
	"os/exec"
	"strconv"

	"github.com/pkg/errors"
)

func platformShow(title, message string) error {
	script := fmt.Sprintf("display notification %s with title %s", strconv.Quote(message), strconv.Quote(title))
	if err := exec.Command("osascript", "-e", script).Run(); err != nil {
		return errors.Wrap(err, "osascript notification failed")
	}
	return nil
}
