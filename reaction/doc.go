// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package reaction applies emoji reactions to feedback records through the
// document store's atomic increment, so concurrent clients never lose a
// click. Reactions are not owned and not de-duplicated per identity.
package reaction
