// Copyright (c) 2021-2026 Rustam Gilyazov and Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

//go:build !linux

package registry

import "errors"

var errUnsupported = errors.New("core size limit is not supported on this platform")

type rlimitCore struct{}

func defaultLimiter() Limiter {
	return rlimitCore{}
}

func (rlimitCore) CoreLimit() (uint64, error) {
	return 0, errUnsupported
}

func (rlimitCore) SetCoreLimit(bool) error {
	return errUnsupported
}
