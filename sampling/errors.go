// SPDX-License-Identifier: MIT

package sampling

import "errors"

// ErrNegativeSize indicates a negative population or draw count.
var ErrNegativeSize = errors.New("sampling: negative size")

// ErrSampleTooLarge indicates a without-replacement draw larger than its pool.
var ErrSampleTooLarge = errors.New("sampling: sample larger than population")
