// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ccapi

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/cclib/params"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	return NewClient(t.TempDir(), nil)
}

func result(t *testing.T, c *Client, cmd string, binbuf []byte) map[string]string {
	t.Helper()
	out := c.JsonCmd(cmd, binbuf)
	var m map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &m), out)
	return m
}

func requireOK(t *testing.T, c *Client, cmd string, binbuf []byte) map[string]string {
	t.Helper()
	m := result(t, c, cmd, binbuf)
	require.NotContains(t, m, "error", "command %s", cmd)
	return m
}

func requireErr(t *testing.T, c *Client, cmd string, binbuf []byte) string {
	t.Helper()
	m := result(t, c, cmd, binbuf)
	require.Contains(t, m, "error", "command %s", cmd)
	return m["error"]
}

func TestDispatchErrors(t *testing.T) {
	c := newTestClient(t)

	requireErr(t, c, `{"no-such-command":{}}`, nil)
	requireErr(t, c, `not json`, nil)
	requireErr(t, c, `{"a":{},"b":{}}`, nil)
}

func TestGenerateRandom(t *testing.T) {
	c := newTestClient(t)

	m := requireOK(t, c, `{"generate-random":{"nbits":"128"}}`, nil)
	require.True(t, strings.HasPrefix(m["random"], "0x"))

	// seeded generation is deterministic
	m1 := requireOK(t, c, `{"generate-random":{"nbits":"128","seed":"abc"}}`, nil)
	m2 := requireOK(t, c, `{"generate-random":{"nbits":"128","seed":"abc"}}`, nil)
	require.Equal(t, m1["random"], m2["random"])
}

func TestComputeSecretChain(t *testing.T) {
	c := newTestClient(t)

	root := requireOK(t, c, `{"compute-root-secret":{"master-secret":"0x1"}}`, nil)
	require.NotEmpty(t, root["root-secret"])

	// the chain from the root matches the chain from the master
	spendFromMaster := requireOK(t, c, `{"compute-spend-secret":{"master-secret":"0x1"}}`, nil)
	spendFromRoot := requireOK(t, c,
		`{"compute-spend-secret":{"root-secret":"`+root["root-secret"]+`"}}`, nil)
	require.Equal(t, spendFromMaster["spend-secret"], spendFromRoot["spend-secret"])

	trust := requireOK(t, c,
		`{"compute-trust-secret":{"spend-secret":"`+spendFromRoot["spend-secret"]+`"}}`, nil)
	require.NotEmpty(t, trust["trust-secret"])

	monitor := requireOK(t, c,
		`{"compute-monitor-secret":{"trust-secret":"`+trust["trust-secret"]+`"}}`, nil)
	require.NotEmpty(t, monitor["monitor-secret"])

	requireErr(t, c, `{"compute-root-secret":{}}`, nil)
}

func TestComputeAddress(t *testing.T) {
	c := newTestClient(t)

	m1 := requireOK(t, c,
		`{"compute-address":{"destination":"0x123","destination-chain":"1","payment-number":"42"}}`, nil)
	m2 := requireOK(t, c,
		`{"compute-address":{"destination":"0x123","destination-chain":"1","payment-number":"42"}}`, nil)
	require.Equal(t, m1["address"], m2["address"])

	m3 := requireOK(t, c,
		`{"compute-address":{"destination":"0x123","destination-chain":"1","payment-number":"43"}}`, nil)
	require.NotEqual(t, m1["address"], m3["address"])
}

func TestAmountCodecCommands(t *testing.T) {
	c := newTestClient(t)

	m := requireOK(t, c, `{"encode-amount":{"amount-bits":"40","exponent-bits":"5",`+
		`"amount":"123450000000","minimum-exponent":"0","maximum-exponent":"22","rounding":"0"}}`, nil)
	require.Equal(t, "0x60707", m["amount-encoded"]) // mantissa 12345, exponent 7

	m = requireOK(t, c, `{"decode-amount":{"amount-bits":"40","exponent-bits":"5",`+
		`"amount-encoded":"0x60000001e"}}`, nil)
	decoded := m["amount"]
	require.Equal(t, "0x1cbe318280", decoded) // 123_450_000_000

	requireErr(t, c, `{"encode-amount":{"amount-bits":"39","exponent-bits":"5","amount":"1"}}`, nil)
}

func TestPayspecRoundTrip(t *testing.T) {
	c := newTestClient(t)

	m := requireOK(t, c,
		`{"payspec-encode":{"destination":"0x1234567890abcdef","requested-amount":"0x1FFFFF"}}`, nil)
	payspec := m["payspec"]
	require.True(t, strings.HasPrefix(payspec, "CC0"))

	dec := requireOK(t, c, `{"payspec-decode":{"payspec":"`+payspec+`"}}`, nil)
	require.Equal(t, "0x1234567890abcdef", dec["destination"])
	require.Equal(t, "0x1fffff", dec["requested-amount"])

	// checksum catches mutation
	mutated := []byte(payspec)
	pos := len(mutated) / 2
	if mutated[pos] == '2' {
		mutated[pos] = '3'
	} else {
		mutated[pos] = '2'
	}
	requireErr(t, c, `{"payspec-decode":{"payspec":"`+string(mutated)+`"}}`, nil)
}

func TestPayspecFromSecrets(t *testing.T) {
	c := newTestClient(t)

	m := requireOK(t, c,
		`{"payspec-encode":{"master-secret":"0x42","destination-number":"7"}}`, nil)
	payspec := m["payspec"]

	dec := requireOK(t, c, `{"payspec-decode":{"payspec":"`+payspec+`"}}`, nil)
	require.NotEmpty(t, dec["destination"])

	// the same secrets always produce the same destination
	m2 := requireOK(t, c,
		`{"payspec-encode":{"master-secret":"0x42","destination-number":"7"}}`, nil)
	require.Equal(t, payspec, m2["payspec"])
}

func TestMasterSecretRoundTrip(t *testing.T) {
	c := newTestClient(t)

	m := requireOK(t, c,
		`{"master-secret-generate":{"passphrase":"hunter2","milliseconds":"0"}}`, nil)
	spec := m["master-secret"]
	require.True(t, strings.HasPrefix(spec, "CC1"))

	dec := requireOK(t, c,
		`{"master-secret-decrypt":{"master-secret":"`+spec+`","passphrase":"hunter2"}}`, nil)
	secret := dec["master-secret-decrypted"]
	require.True(t, strings.HasPrefix(secret, "0x"))

	// a wrong passphrase produces a different secret, not an error
	dec2 := requireOK(t, c,
		`{"master-secret-decrypt":{"master-secret":"`+spec+`","passphrase":"wrong"}}`, nil)
	require.NotEqual(t, secret, dec2["master-secret-decrypted"])
}

func TestComputeSerialNumber(t *testing.T) {
	c := newTestClient(t)

	m1 := requireOK(t, c, `{"compute-serial-number":{"monitor-secret":"0x9",`+
		`"commitment":"0x1234","commitment-number":"5"}}`, nil)
	m2 := requireOK(t, c, `{"compute-serial-number":{"monitor-secret":"0x9",`+
		`"commitment":"0x1234","commitment-number":"6"}}`, nil)
	require.NotEqual(t, m1["serial-number"], m2["serial-number"])
}

func TestComputeAmountEncryption(t *testing.T) {
	c := newTestClient(t)

	m := requireOK(t, c, `{"compute-amount-encryption":{"commitment-iv":"0x77",`+
		`"destination":"0x123","payment-number":"0"}}`, nil)
	require.NotEmpty(t, m["asset-encrypt-xor"])
	require.NotEmpty(t, m["amount-encrypt-xor"])
}

func TestWorkCommands(t *testing.T) {
	c := newTestClient(t)

	// build a minimal frame by hand
	size := params.CCMsgHeaderSize + params.TxPowSize + 32
	binbuf := make([]byte, size)
	binbuf[0] = byte(size)
	binbuf[4] = 0x01
	binbuf[5] = 0x00
	binbuf[6] = 0x04
	binbuf[7] = 0xCC

	requireOK(t, c, `{"work-reset":{"timestamp":"1700000000"}}`, binbuf)

	m := requireOK(t, c,
		`{"work-add":{"index":"0","iterations":"0x1000000","difficulty":"0x1000000000000"}}`, binbuf)
	require.Equal(t, "0x0", m["work-result"])
}

func TestQueryCreate(t *testing.T) {
	c := newTestClient(t)
	binbuf := make([]byte, 4096)

	m := requireOK(t, c, `{"tx-query-create":{"parameters":{}}}`, binbuf)
	require.NotEmpty(t, m["query-size"])

	m = requireOK(t, c, `{"tx-query-create":{"address":{"blockchain":"1",`+
		`"address":"0x1234","commitment-number-start":"0","maximum-results":"20"}}}`, binbuf)
	require.NotEmpty(t, m["query-size"])

	m = requireOK(t, c, `{"tx-query-create":{"serial-numbers":{"blockchain":"1",`+
		`"serial-numbers":["0x1","0x2"]}}}`, binbuf)
	require.NotEmpty(t, m["query-size"])

	requireErr(t, c, `{"tx-query-create":{"bogus":{}}}`, binbuf)
}

func TestParseNumberCommand(t *testing.T) {
	c := newTestClient(t)

	m := requireOK(t, c, `{"test-parse-number":{"nbits":"64","amount":"123"}}`, nil)
	require.Equal(t, "123", m["parsed"])

	m = requireOK(t, c, `{"test-parse-number":{"nbits":"64","amount":"-5"}}`, nil)
	require.Equal(t, "-5", m["parsed"])

	requireErr(t, c, `{"test-parse-number":{"nbits":"64","amount":"12x"}}`, nil)
}
