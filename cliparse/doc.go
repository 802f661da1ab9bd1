// Copyright (c) 2025 VoteSpace Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse resolves CLI configuration.

Sources in precedence order:

 1. command-line flags (-api, -state-dir, -token, -interval, -log-level)
 2. environment variables (VOTESPACE_API_URL, VOTESPACE_STATE_DIR,
    VOTESPACE_TOKEN, VOTESPACE_POLL_INTERVAL, VOTESPACE_LOG_LEVEL)
 3. YAML config file (-config, default ~/.votespace/config.yaml)
 4. built-in defaults

Nothing here is required: a bare invocation talks to the hosted API with
state under ~/.votespace.
*/
package cliparse
