// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package corpus

import "errors"

var (
	// ErrMemoryDirRequired is returned when a memory directory is not provided.
	ErrMemoryDirRequired = errors.New("memory directory required")

	// ErrFactPathRequired is returned when a fact store path is not provided.
	ErrFactPathRequired = errors.New("fact store path required")

	// ErrScannerRequired is returned when a scanner is not provided.
	ErrScannerRequired = errors.New("scanner required")

	// ErrChangeCallbackRequired is returned when a change callback is not provided.
	ErrChangeCallbackRequired = errors.New("change callback required")

	// ErrNothingToWatch is returned when none of the workspace directories
	// can be registered with the filesystem watcher.
	ErrNothingToWatch = errors.New("no watchable directories")
)
