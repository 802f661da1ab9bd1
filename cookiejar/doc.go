// Copyright (c) 2025 VoteSpace Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cookiejar stores the cookie-lifetime evidence surface in SQLite.

Two cookies matter to the voting core:

  - anonymousId: the persistent guest identity (30-day lifetime)
  - voted_<roomId>: the per-room vote flag (30-day lifetime)

Entries past their expiry are invisible to Get and eventually removed by
PurgeExpired. The jar is intentionally not a net/http cookie jar; nothing
here is sent on the wire except the guest id, which the API client attaches
itself.
*/
package cookiejar
