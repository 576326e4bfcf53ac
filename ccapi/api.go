// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ccapi

import (
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/luxfi/cclib/ccproof"
	"github.com/luxfi/cclib/transaction"
	"github.com/luxfi/cclib/zkkeys"
)

// Client is one facade session: a prover over a shared key store, plus
// the transaction under construction between commands. Use one Client
// per concurrent caller.
type Client struct {
	Prover *ccproof.Prover

	mu sync.Mutex
	tx transaction.TxPay
}

// NewClient builds a facade session. An empty key directory defers to
// the CC_PROOF_KEY_DIR environment variable.
func NewClient(proofKeyDir string, log *zap.Logger) *Client {
	store := zkkeys.NewStore(proofKeyDir, log)
	return &Client{Prover: ccproof.NewProver(store)}
}

// Tx exposes the transaction under construction.
func (c *Client) Tx() *transaction.TxPay { return &c.tx }

// innerObject parses a nested JSON object.
func innerObject(raw json.RawMessage) (jmap, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%w: expected object", ErrInvalidValue)
	}
	return jmap(m), nil
}

// JsonCmd is the single textual entry point: a JSON object with exactly
// one top-level key naming the command. The result (or an error
// envelope) returns as a JSON string; commands that produce framed
// binary write it into binbuf.
func (c *Client) JsonCmd(jsonText string, binbuf []byte) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	fn, root, err := parseRoot(jsonText)
	if err != nil {
		return resultError("JsonCmd", err)
	}

	out, err := c.dispatch(fn, root, binbuf)
	if err != nil {
		return resultError(fn, err)
	}
	return out
}

func (c *Client) dispatch(fn string, root jmap, binbuf []byte) (string, error) {
	switch fn {
	case "generate-random":
		return generateRandom(fn, root)
	case "master-secret-generate":
		return generateMasterSecret(fn, root)
	case "master-secret-decrypt":
		return computeMasterSecret(fn, root)
	case "compute-root-secret", "compute-spend-secret", "compute-trust-secret",
		"compute-monitor-secret", "compute-receive-secret":
		return computeSecret(fn, root)
	case "payspec-encode":
		return payspecEncode(fn, root)
	case "payspec-decode":
		return payspecDecode(fn, root)
	case "compute-address":
		return computeAddress(fn, root)
	case "encode-amount":
		return encodeAmount(fn, root)
	case "decode-amount":
		return decodeAmount(fn, root)
	case "compute-amount-encryption":
		return computeAmountEncryption(fn, root)
	case "compute-serial-number":
		return computeSerialnum(fn, root)
	case "tx-create":
		return c.txCreate(fn, root)
	case "tx-verify":
		return c.txVerify(fn, root)
	case "tx-to-json":
		return c.txToJSON(fn, root)
	case "tx-to-wire":
		return c.txToWire(fn, root, binbuf)
	case "tx-from-wire":
		return c.txFromWire(fn, root, binbuf)
	case "tx-dump":
		return c.txDump(fn, root)
	case "tx-query-create":
		return txQueryFromJSON(fn, root, binbuf)
	case "work-reset":
		return workReset(fn, root, binbuf)
	case "work-add":
		return workAdd(fn, root, binbuf)
	case "test-parse-number":
		return testParseNumber(fn, root)
	}

	return "", fmt.Errorf("%w: unrecognized command %q", ErrInvalidValue, fn)
}
