// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package upload coordinates photo uploads for one session.

A file name that is already uploading is rejected with DuplicateUpload.
The name is released when the upload finishes, whether it succeeded or not,
so a retry works.

Files over 5 MiB are fitted into 1920x1080 and re-encoded as JPEG before
they reach the blob store. Blobs are written under

	party-photos/<uuid v7>-<file name>

and the photo record is created through the content store with the
resolved URL. SubmitBatch runs one goroutine per file and reports each
file's outcome on its own.
*/
package upload
