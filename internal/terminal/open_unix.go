//go:build unix

package terminal

import (
	"os"

	"golang.org/x/sys/unix"
)

const openFlags = os.O_WRONLY | unix.O_NOCTTY
