// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package session is the per-client context object and intent queue.

# Session

A Session owns, for one user id:

  - the privilege window (privilege.Window)
  - the phase latch and its poller
  - the item, photo and feedback stores with their caches
  - the upload coordinator and the reaction aggregator
  - a Notifier for pushed events

# Intents

The rendering surface sends intents (CreateItem, DeleteItem, UploadPhotos,
DeletePhoto, CreateFeedback, UpdateFeedback, DeleteFeedback, React, Tap,
ListAll) through Dispatch or the typed helpers. The session loop handles one
intent at a time. Uploads and reactions finish on their own goroutines, so
a second upload of the same file name is seen, and rejected, while the
first is still running.

# Phase gating

Every intent observes the latch first:

	items     create only while upcoming; delete after start needs privilege
	photos    from started
	feedback  from feedback_open (reactions included)

# Events

	privilege-changed  the window opened or closed
	reload             the window expired and every section was reloaded
	phase-changed      the poller saw a new phase

# Registry

Registry keeps one Session per running client instance (a tab or an app
launch), so privilege never carries over to a reload or to another tab of
the same user. Ownership still follows the user id held by each Session.
Idle sessions without subscribers are pruned and all are closed on
shutdown.
*/
package session
