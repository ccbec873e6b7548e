// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package blobstore stores photo bytes by path and resolves fetch URLs.
// FSStore runs over an afero filesystem: the OS (rooted at a directory) in
// production, memory in tests. Both are served by Handler under /blobs/.
package blobstore
