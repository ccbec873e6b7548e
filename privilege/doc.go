// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package privilege implements the gesture-activated privilege window.

Eight taps, each within 500ms of the previous one, open the window for 60
seconds. While it is open, ownership checks are bypassed. On expiry the host
is told to reload everything so no elevated UI survives.

	w := privilege.NewWindow(clock, privilege.Options{
		OnChange: func(active bool) { ... },
		OnExpire: func() { ... },
	})
	defer w.Close()

	w.Tap()
	if w.IsActive() { ... }
*/
package privilege
