package custody

import (
	"github.com/iov-one/coffer/errors"
)

// ErrTransferFailed is returned when the funds release failed or the
// destination received less than the proposed amount. The operation that
// triggered the transfer is rolled back completely.
var ErrTransferFailed = errors.Register(1030, "transfer failed")
