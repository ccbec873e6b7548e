// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package content is the ownership-gated store for bring-list items, photos
and feedback.

# Records

Every record carries the id assigned by the document store, the owning user
id and its creation time. The owner is stamped from the acting identity on
Create and is never part of an update patch.

# Authorization

Delete and Update are allowed when

	record.OwnerUserID == actor.UserID || actor.Privileged

The Actor is built by the caller at the moment of the call, so a privilege
window that lapsed after a list was rendered no longer applies.

# Cache and reconcile

Each Store keeps a Cache of its collection. List replaces it with a full
reload (newest first); Create prepends; Delete removes; Update patches in
place. A failed List keeps the previous cache and returns StoreUnavailable.
Delete and Update look ids up in the cache and return NotFound for unknown
ones, which tells the caller to List again.

# Kinds

	ItemKind()          partyItems, immutable
	PhotoKind(blobs)    partyPhotos, delete cascades to the blob
	FeedbackKind()      partyFeedback, message editable, reactions tally
*/
package content
