package crash

import (
	"errors"
	"io"
	"strings"

	"djdeploy/internal/i18n"
	"djdeploy/internal/prompt"
)

// Confirm asks whether to file the bug until it gets an answer it
// understands. Empty input and "n" mean no, "y" means yes (both case
// insensitive). Running out of input also means no: nothing is filed
// without an explicit yes.
func Confirm(c prompt.Console) (bool, error) {
	for {
		ans, err := c.Ask(i18n.T(i18n.MsgCrashAskFileBug))
		if err != nil {
			if errors.Is(err, io.EOF) {
				return false, nil
			}
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(ans)) {
		case "", "n":
			return false, nil
		case "y":
			return true, nil
		}
	}
}
