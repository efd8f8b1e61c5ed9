//go:build windows

package commands

import (
	"os"

	"djdeploy/internal/i18n"
)

func ownerOf(os.FileInfo) string {
	return i18n.T(i18n.MsgOwnerUnknown)
}
