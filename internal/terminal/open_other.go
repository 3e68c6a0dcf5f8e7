//go:build !unix

package terminal

import "os"

const openFlags = os.O_WRONLY
