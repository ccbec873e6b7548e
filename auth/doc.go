// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identifier generation for anonymous participants.

There is no authentication in partyplanner. A participant is whoever holds a
user id, and ownership of content is a plain comparison of ids.

# User IDs

User ids are generated once per client and then persisted by the identity
package:

	id, err := auth.GenerateUserID(time.Now())  // user_1735689600000_k3j9x0a1b

IsUserID validates the shape so a tampered cookie cannot smuggle an
arbitrary string in as a record owner.

# ID Generation

Random hex IDs, used for request ids in the logs:

	id, err := auth.GenerateID(8)  // 16 hex characters
*/
package auth
