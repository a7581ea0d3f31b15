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

package registry

import "errors"

var (
	// ErrNotFound is returned when the id is not known even after a refresh.
	ErrNotFound = errors.New("coredump not found")
	// ErrInvalidParams is returned when a required argument is missing or
	// invalid.
	ErrInvalidParams = errors.New("invalid parameters")
	// ErrInternal is returned when an external command fails or produces
	// output that can't be parsed.
	ErrInternal = errors.New("internal error")
)
