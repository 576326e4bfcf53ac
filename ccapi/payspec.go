// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ccapi

import (
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/aead/siphash"
	"github.com/zeebo/blake3"

	"github.com/luxfi/cclib/bigint"
	"github.com/luxfi/cclib/encode"
	"github.com/luxfi/cclib/params"
	"github.com/luxfi/cclib/transaction"
	"github.com/luxfi/cclib/zkhash"
)

// payspec strings are "CC" + type digit + base-57 destination + optional
// amount + separators + 5-symbol SipHash checksum.
const payspecPrefix = "CC"

var payspecSipKey = [16]byte{
	'C', 'C', '-', 'p', 'a', 'y', 's', 'p',
	'e', 'c', '-', 'c', 'k', 's', 'u', 'm',
}

// generateRandom returns caller-requested random bytes. A seed is
// expanded through the BLAKE3 output stream so short seeds still yield
// full-width values.
func generateRandom(fn string, root jmap) (string, error) {
	nbits, ok, err := root.optUint(fn, "nbits", 16)
	if err != nil {
		return "", err
	}
	if !ok || nbits == 0 || nbits > 256 {
		nbits = 256
	}

	seedRaw, hasSeed := root.remove("seed")

	if err := root.checkEmpty(fn); err != nil {
		return "", err
	}

	var buf [32]byte
	if hasSeed {
		h := blake3.New()
		h.Write([]byte(asString(seedRaw)))
		d := h.Digest()
		d.Read(buf[:])
	} else if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}

	var v bigint.Big
	v.SetBytes(buf[:])
	bigint.Mask(&v, uint(nbits))

	return `{"random":"` + hexBig(&v) + `"}`, nil
}

// hashPassphrase hashes the salt and passphrase, then rehashes the digest
// with the passphrase for the given iteration count. The iteration count
// feeds back into the spec string so decryption replays exactly.
func hashPassphrase(passphrase string, salt *bigint.Big, iterations uint64) bigint.Big {
	if iterations == 0 {
		iterations = 1
	}

	saltLE := bigint.LittleEndianBytes(salt)
	h := blake3.New()
	h.Write(saltLE[:])
	h.Write([]byte(passphrase))
	sum := h.Sum(nil)

	for i := uint64(1); i < iterations; i++ {
		h.Reset()
		h.Write(sum)
		h.Write([]byte(passphrase))
		sum = h.Sum(nil)
	}

	var out bigint.Big
	out.SetBytes(sum[:32])
	return out
}

// generateMasterSecret creates a passphrase-encrypted master secret
// spec string "CC1" + base-57 iterations + salted secret + checksum.
func generateMasterSecret(fn string, root jmap) (string, error) {
	passphrase, ok := root.remove("passphrase")
	if !ok {
		return "", fmt.Errorf("%w: %s: passphrase", ErrMissingKey, fn)
	}

	millisec, _, err := root.optUint(fn, "milliseconds", 32)
	if err != nil {
		return "", err
	}
	if err := root.checkEmpty(fn); err != nil {
		return "", err
	}

	// iteration budget scales with the requested hash time
	iterations := millisec*1000 + 1

	var salt bigint.Big
	if err := bigint.Randomize(&salt); err != nil {
		return "", err
	}
	bigint.Mask(&salt, 64)

	var secret bigint.Big
	if err := bigint.Randomize(&secret); err != nil {
		return "", err
	}

	pad := hashPassphrase(asString(passphrase), &salt, iterations)
	var enc bigint.Big
	enc.Xor(&secret, &pad)

	var sb strings.Builder
	sb.WriteString(payspecPrefix)
	sb.WriteString("1")
	encode.Base57.Stringify(nil, false, -1, bigint.NewBig(iterations), &sb)
	sb.WriteByte(encode.Separator)
	encode.Base57.Stringify(nil, false, -1, &salt, &sb)
	sb.WriteByte(encode.Separator)
	encode.Base57.Stringify(nil, false, 0, &enc, &sb)
	sb.WriteByte(encode.Separator)
	appendChecksum(&sb)

	return `{"master-secret":"` + sb.String() + `"}`, nil
}

// computeMasterSecret decrypts a master secret spec string.
func computeMasterSecret(fn string, root jmap) (string, error) {
	specRaw, ok := root.remove("master-secret")
	if !ok {
		return "", fmt.Errorf("%w: %s: master-secret", ErrMissingKey, fn)
	}
	passphrase, ok := root.remove("passphrase")
	if !ok {
		return "", fmt.Errorf("%w: %s: passphrase", ErrMissingKey, fn)
	}
	if err := root.checkEmpty(fn); err != nil {
		return "", err
	}

	spec := asString(specRaw)
	if !strings.HasPrefix(spec, payspecPrefix+"1") {
		return "", fmt.Errorf("%w: %s: master-secret", ErrInvalidValue, fn)
	}

	if err := verifyChecksum(spec); err != nil {
		return "", err
	}
	body := spec[len(payspecPrefix)+1 : len(spec)-5-1]

	iterBig, rest, err := encode.Base57.Destringify(false, 0, body)
	if err != nil {
		return "", err
	}
	rest = rest[1:] // separator
	salt, rest, err := encode.Base57.Destringify(false, 0, rest)
	if err != nil {
		return "", err
	}
	rest = rest[1:]
	enc, _, err := encode.Base57.Destringify(false, len(rest), rest)
	if err != nil {
		return "", err
	}

	pad := hashPassphrase(asString(passphrase), &salt, iterBig.Uint64())
	var secret bigint.Big
	secret.Xor(&enc, &pad)

	return `{"master-secret-decrypted":"` + hexBig(&secret) + `"}`, nil
}

// secretsFromJSON fills spend secret params and slot secrets from their
// JSON keys. Multi-secret keys are only consumed when allowMulti is set.
func secretsFromJSON(fn string, root jmap, allowMulti bool,
	p *transaction.SpendSecretParams, secrets *transaction.SpendSecrets, noPrecheck bool) error {

	fieldMax := bigint.FieldMax()

	if v, ok, err := root.optIntValue(fn, "master-secret", params.TxInputBits, nil); err != nil {
		return err
	} else if ok {
		secrets[0].MasterSecret = v
		secrets[0].HaveMasterSecret = true
	}
	if v, ok, err := root.optIntValue(fn, "root-secret", 0, fieldMax); err != nil {
		return err
	} else if ok {
		secrets[0].RootSecret = v
		secrets[0].HaveRootSecret = true
	}
	if v, ok, err := root.optUint(fn, "spend-secret-number", params.TxSpendSecretNumBits); err != nil {
		return err
	} else if ok {
		secrets[0].SpendSecretNumber = uint32(v)
	}

	// single-secret forms of the slot arrays
	if v, ok, err := root.optIntValue(fn, "spend-secret", params.TxInputBits, nil); err != nil {
		return err
	} else if ok {
		secrets[0].SpendSecret = v
		secrets[0].HaveSpendSecret = true
	}
	if v, ok, err := root.optIntValue(fn, "trust-secret", params.TxInputBits, nil); err != nil {
		return err
	} else if ok {
		secrets[0].TrustSecret = v
		secrets[0].HaveTrustSecret = true
	}
	if v, ok, err := root.optIntValue(fn, "monitor-secret", params.TxInputBits, nil); err != nil {
		return err
	} else if ok {
		secrets[0].MonitorSecret = v
		secrets[0].HaveMonitorSecret = true
	}
	if v, ok, err := root.optIntValue(fn, "receive-secret", 0, fieldMax); err != nil {
		return err
	} else if ok {
		secrets[0].ReceiveSecret = v
		secrets[0].HaveReceiveSecret = true
	}

	if allowMulti {
		if err := multiSecretArray(fn, root, "spend-secrets", secrets, func(s *transaction.SpendSecret, v bigint.Big) {
			s.SpendSecret = v
			s.HaveSpendSecret = true
		}); err != nil {
			return err
		}
		if err := multiSecretArray(fn, root, "trust-secrets", secrets, func(s *transaction.SpendSecret, v bigint.Big) {
			s.TrustSecret = v
			s.HaveTrustSecret = true
		}); err != nil {
			return err
		}
		if err := multiSecretArray(fn, root, "monitor-secrets", secrets, func(s *transaction.SpendSecret, v bigint.Big) {
			s.MonitorSecret = v
			s.HaveMonitorSecret = true
		}); err != nil {
			return err
		}

		if raw, ok := root.remove("restricted-addresses"); ok {
			vals, err := asStringArray(raw)
			if err != nil {
				return fmt.Errorf("%w: %s: restricted-addresses", ErrNotArray, fn)
			}
			if len(vals) > params.TxMaxRestrictedAddresses {
				return fmt.Errorf("%w: %s: restricted-addresses", ErrTooManyObjects, fn)
			}
			p.RestrictAddresses = true
			for i, sval := range vals {
				v, err := parseIntValue(fn, "restricted-addresses", sval, params.TxAddressBits, nil)
				if err != nil {
					return err
				}
				transaction.SetRestrictedAddress(secrets, uint(i), &v)
			}
			p.Nraddrs = uint16(len(vals))
		}
	}

	if err := paramsFromJSON(fn, root, allowMulti, p); err != nil {
		return err
	}

	// count the populated secret slots
	nsecrets := uint16(0)
	for j := range secrets {
		s := &secrets[j]
		if s.HaveMasterSecret || s.HaveRootSecret || s.HaveSpendSecret ||
			s.HaveTrustSecret || (s.HaveMonitorSecret && !s.HaveRestrictedAddress) ||
			s.HaveReceiveSecret {
			nsecrets = uint16(j + 1)
		}
	}
	if nsecrets == 0 {
		nsecrets = 1
	}
	p.Nsecrets = nsecrets

	for j := uint16(0); j < nsecrets; j++ {
		if err := transaction.ComputeOrVerifySecrets(p, &secrets[j], noPrecheck); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidValue, fn, err)
		}
	}

	return nil
}

func multiSecretArray(fn string, root jmap, key string, secrets *transaction.SpendSecrets,
	set func(*transaction.SpendSecret, bigint.Big)) error {

	raw, ok := root.remove(key)
	if !ok {
		return nil
	}
	vals, err := asStringArray(raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %s", ErrNotArray, fn, key)
	}
	if len(vals) > params.TxMaxSecrets {
		return fmt.Errorf("%w: %s: %s", ErrTooManyObjects, fn, key)
	}
	for i, sval := range vals {
		if sval == "null" || sval == "" {
			continue
		}
		v, err := parseIntValue(fn, key, sval, params.TxInputBits, nil)
		if err != nil {
			return err
		}
		set(&secrets[i], v)
	}
	return nil
}

// paramsFromJSON fills the spend policy terms.
func paramsFromJSON(fn string, root jmap, allowMulti bool, p *transaction.SpendSecretParams) error {
	fieldMax := bigint.FieldMax()

	if v, ok, err := root.optBool(fn, "enforce-spendspec-with-spend-secrets"); err != nil {
		return err
	} else if ok {
		p.EnforceSpendSpecWithSpendSecrets = v
	}
	if v, ok, err := root.optBool(fn, "enforce-spendspec-with-trust-secrets"); err != nil {
		return err
	} else if ok {
		p.EnforceSpendSpecWithTrustSecrets = v
	}
	if v, ok, err := root.optIntValue(fn, "required-spendspec-hash", params.TxInputBits, nil); err != nil {
		return err
	} else if ok {
		p.RequiredSpendSpecHash = v
	}
	if v, ok, err := root.optBool(fn, "allow-master-secret"); err != nil {
		return err
	} else if ok {
		p.AllowMasterSecret = v
	}
	if v, ok, err := root.optBool(fn, "allow-freeze"); err != nil {
		return err
	} else if ok {
		p.AllowFreeze = v
	}
	if v, ok, err := root.optBool(fn, "allow-trust-unfreeze"); err != nil {
		return err
	} else if ok {
		p.AllowTrustUnfreeze = v
	}
	if v, ok, err := root.optBool(fn, "require-public-hashkey"); err != nil {
		return err
	} else if ok {
		p.RequirePublicHashkey = v
	}
	if v, ok, err := root.optBool(fn, "restrict-addresses"); err != nil {
		return err
	} else if ok {
		p.RestrictAddresses = v
	}
	if v, ok, err := root.optUint(fn, "spend-locktime", params.TxTimeBits); err != nil {
		return err
	} else if ok {
		p.SpendLocktime = v
	}
	if v, ok, err := root.optUint(fn, "trust-locktime", params.TxTimeBits); err != nil {
		return err
	} else if ok {
		p.TrustLocktime = v
	}
	if v, ok, err := root.optUint(fn, "spend-delaytime", params.TxDelaytimeBits); err != nil {
		return err
	} else if ok {
		p.SpendDelaytime = uint8(v)
	}
	if v, ok, err := root.optUint(fn, "trust-delaytime", params.TxDelaytimeBits); err != nil {
		return err
	} else if ok {
		p.TrustDelaytime = uint8(v)
	}

	if allowMulti {
		if err := boolArray(fn, root, "use-spend-secret", &p.UseSpendSecret); err != nil {
			return err
		}
		if err := boolArray(fn, root, "use-trust-secret", &p.UseTrustSecret); err != nil {
			return err
		}
		if v, ok, err := root.optUint(fn, "required-spend-secrets", params.TxMaxSecretsBits); err != nil {
			return err
		} else if ok {
			p.RequiredSpendSecrets = uint16(v)
		}
		if v, ok, err := root.optUint(fn, "required-trust-secrets", params.TxMaxSecretsBits); err != nil {
			return err
		} else if ok {
			p.RequiredTrustSecrets = uint16(v)
		}
	}

	if !p.UseSpendSecret[0] && !anySet(p.UseSpendSecret) {
		p.UseSpendSecret[0] = true
	}
	if !p.UseTrustSecret[0] && !anySet(p.UseTrustSecret) {
		p.UseTrustSecret[0] = true
	}
	if p.RequiredSpendSecrets == 0 {
		p.RequiredSpendSecrets = 1
	}
	if p.RequiredTrustSecrets == 0 {
		p.RequiredTrustSecrets = 1
	}

	if v, ok, err := root.optUint(fn, "destination-number", params.TxDestnumBits); err != nil {
		return err
	} else if ok {
		p.Destnum = uint32(v)
	}
	if v, ok, err := root.optUint(fn, "payment-number", params.TxPaynumBits); err != nil {
		return err
	} else if ok {
		p.Addrparams.Paynum = uint32(v)
	}
	if v, ok, err := root.optIntValue(fn, "destination", 0, fieldMax); err != nil {
		return err
	} else if ok {
		p.Addrparams.Dest = v
	}
	if v, ok, err := root.optUint(fn, "destination-chain", params.TxChainBits); err != nil {
		return err
	} else if ok {
		p.Addrparams.DestChain = v
	}

	return nil
}

func anySet(a [params.TxMaxSecrets]bool) bool {
	for _, v := range a {
		if v {
			return true
		}
	}
	return false
}

func boolArray(fn string, root jmap, key string, out *[params.TxMaxSecrets]bool) error {
	raw, ok := root.remove(key)
	if !ok {
		return nil
	}
	vals, err := asStringArray(raw)
	if err != nil {
		return fmt.Errorf("%w: %s: %s", ErrNotArray, fn, key)
	}
	if len(vals) > params.TxMaxSecrets {
		return fmt.Errorf("%w: %s: %s", ErrNumValues, fn, key)
	}
	for i, sval := range vals {
		v, err := parseIntValue(fn, key, sval, 1, nil)
		if err != nil {
			return err
		}
		out[i] = !v.IsZero()
	}
	return nil
}

// computeSecret derives the requested link of the secret chain.
func computeSecret(fn string, root jmap) (string, error) {
	var p transaction.SpendSecretParams
	var secrets transaction.SpendSecrets

	if err := secretsFromJSON(fn, root, false, &p, &secrets, false); err != nil {
		return "", err
	}
	if err := root.checkEmpty(fn); err != nil {
		return "", err
	}

	s := &secrets[0]

	dash := strings.Index(fn, "-")
	name := fn[dash+1:]

	var val bigint.Big
	switch fn {
	case "compute-root-secret":
		if !s.HaveMasterSecret {
			return "", fmt.Errorf("%w: %s: master-secret", ErrMissingKey, fn)
		}
		val = s.RootSecret
	case "compute-spend-secret":
		if !s.HaveMasterSecret && !s.HaveRootSecret {
			return "", fmt.Errorf("%w: %s: master-secret or root-secret", ErrMissingKey, fn)
		}
		val = s.SpendSecret
	case "compute-trust-secret":
		if !s.HaveMasterSecret && !s.HaveRootSecret && !s.HaveSpendSecret {
			return "", fmt.Errorf("%w: %s: master-secret, root-secret, or spend-secret", ErrMissingKey, fn)
		}
		val = s.TrustSecret
	case "compute-monitor-secret":
		if !s.HaveMasterSecret && !s.HaveRootSecret && !s.HaveSpendSecret && !s.HaveTrustSecret {
			return "", fmt.Errorf("%w: %s: master-secret, root-secret, spend-secret, or trust-secret", ErrMissingKey, fn)
		}
		val = s.MonitorSecret
	case "compute-receive-secret":
		if !s.HaveMasterSecret && !s.HaveRootSecret && !s.HaveSpendSecret && !s.HaveTrustSecret && !s.HaveMonitorSecret {
			return "", fmt.Errorf("%w: %s: a chain secret", ErrMissingKey, fn)
		}
		val = s.ReceiveSecret
	default:
		return "", ErrUnexpectedError
	}

	return `{"` + name + `":"` + hexBig(&val) + `"}`, nil
}

// computeAddress derives the payment address for a destination.
func computeAddress(fn string, root jmap) (string, error) {
	fieldMax := bigint.FieldMax()

	dest, err := root.requireIntValue(fn, "destination", 0, fieldMax)
	if err != nil {
		return "", err
	}
	destChain, err := root.requireUint(fn, "destination-chain", params.TxChainBits)
	if err != nil {
		return "", err
	}
	paynum, _, err := root.optUint(fn, "payment-number", params.TxPaynumBits)
	if err != nil {
		return "", err
	}
	if err := root.checkEmpty(fn); err != nil {
		return "", err
	}

	addr := zkhash.Address(dest, destChain, uint32(paynum))
	return `{"address":"` + hexBig(&addr) + `"}`, nil
}

// computeAmountEncryption derives the one-time pad of an output.
func computeAmountEncryption(fn string, root jmap) (string, error) {
	fieldMax := bigint.FieldMax()

	commitIV, err := root.requireIntValue(fn, "commitment-iv", params.TxCommitIVBits, nil)
	if err != nil {
		return "", err
	}
	dest, err := root.requireIntValue(fn, "destination", 0, fieldMax)
	if err != nil {
		return "", err
	}
	paynum, _, err := root.optUint(fn, "payment-number", params.TxPaynumBits)
	if err != nil {
		return "", err
	}
	if err := root.checkEmpty(fn); err != nil {
		return "", err
	}

	assetPad, amountPad := zkhash.AmountPad(commitIV, dest, uint32(paynum))

	return `{"asset-encrypt-xor":"` + hexUint(assetPad) +
		`","amount-encrypt-xor":"` + hexUint(amountPad) + `"}`, nil
}

// computeSerialnum derives a billet's serial number from its secrets.
func computeSerialnum(fn string, root jmap) (string, error) {
	var p transaction.SpendSecretParams
	var secrets transaction.SpendSecrets

	if err := secretsFromJSON(fn, root, false, &p, &secrets, false); err != nil {
		return "", err
	}

	s := &secrets[0]
	if !s.HaveMasterSecret && !s.HaveRootSecret && !s.HaveSpendSecret && !s.HaveTrustSecret && !s.HaveMonitorSecret {
		return "", fmt.Errorf("%w: %s: a chain secret", ErrMissingKey, fn)
	}

	fieldMax := bigint.FieldMax()
	commitment, err := root.requireIntValue(fn, "commitment", 0, fieldMax)
	if err != nil {
		return "", err
	}
	commitnum, err := root.requireUint(fn, "commitment-number", params.TxCommitnumBits)
	if err != nil {
		return "", err
	}
	if err := root.checkEmpty(fn); err != nil {
		return "", err
	}

	serial := zkhash.Serialnum(s.MonitorSecret, commitment, commitnum)
	return `{"serial-number":"` + hexBig(&serial) + `"}`, nil
}

// appendChecksum appends the 5-symbol SipHash checksum of everything
// already in the builder.
func appendChecksum(sb *strings.Builder) {
	hash := siphash.Sum64([]byte(sb.String()), &payspecSipKey)
	encode.Base57.Stringify(nil, false, 5, bigint.NewBig(hash), sb)
}

// verifyChecksum validates a trailing 5-symbol checksum preceded by a
// separator.
func verifyChecksum(s string) error {
	if len(s) < 6 {
		return encode.ErrInputEnd
	}
	body := s[:len(s)-5]
	if body[len(body)-1] != encode.Separator && body[len(body)-1] != encode.SeparatorAlt {
		return encode.ErrInvalidCharacter
	}

	hash := siphash.Sum64([]byte(body), &payspecSipKey)

	var sb strings.Builder
	encode.Base57.Stringify(nil, false, 5, bigint.NewBig(hash), &sb)
	if sb.String() != s[len(s)-5:] {
		return encode.ErrChecksumMismatch
	}
	return nil
}

// payspecEncode builds a payspec string for a destination.
func payspecEncode(fn string, root jmap) (string, error) {
	fieldMax := bigint.FieldMax()

	var dest bigint.Big
	if v, ok, err := root.optIntValue(fn, "destination", 0, fieldMax); err != nil {
		return "", err
	} else if ok {
		dest = v
	} else {
		var p transaction.SpendSecretParams
		var secrets transaction.SpendSecrets
		if err := secretsFromJSON(fn, root, true, &p, &secrets, false); err != nil {
			return "", err
		}
		dest = transaction.ComputeDestination(&p, &secrets)
	}

	if raw, ok := root.remove("type"); ok {
		t, err := parseIntValue(fn, "type", asString(raw), 0, bigint.NewBig(9))
		if err != nil {
			return "", err
		}
		if !t.IsZero() {
			return "", fmt.Errorf("%w: %s: type", ErrInvalidValue, fn)
		}
	}

	var amount bigint.Big
	hasAmount := false
	if v, ok, err := root.optIntValue(fn, "requested-amount", params.TxAmountBits, nil); err != nil {
		return "", err
	} else if ok {
		amount = v
		hasAmount = true
	}

	if err := root.checkEmpty(fn); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(payspecPrefix)
	sb.WriteString("0") // type, always '0' for now

	encode.Base57.Stringify(fieldMax, false, 0, &dest, &sb)
	if hasAmount {
		encode.Base57.Stringify(nil, true, -1, &amount, &sb)
	}

	sb.WriteByte(encode.Separator)
	sb.WriteByte(encode.Separator)

	appendChecksum(&sb)

	return `{"payspec":"` + sb.String() + `"}`, nil
}

// payspecDecode parses a payspec string back into its fields.
func payspecDecode(fn string, root jmap) (string, error) {
	raw, ok := root.remove("payspec")
	if !ok {
		return "", fmt.Errorf("%w: %s: payspec", ErrMissingKey, fn)
	}
	if err := root.checkEmpty(fn); err != nil {
		return "", err
	}

	spec := asString(raw)
	if !strings.HasPrefix(spec, payspecPrefix) || len(spec) < len(payspecPrefix)+1 {
		return "", fmt.Errorf("%w: %s: payspec", ErrInvalidValue, fn)
	}
	if spec[len(payspecPrefix)] != '0' {
		return "", fmt.Errorf("%w: %s: payspec type", ErrInvalidValue, fn)
	}

	if err := verifyChecksum(spec); err != nil {
		return "", err
	}

	fieldMax := bigint.FieldMax()
	body := spec[len(payspecPrefix)+1:]

	// destination occupies the fixed width needed for the field max
	var width strings.Builder
	encode.Base57.Stringify(fieldMax, false, 0, fieldMax, &width)
	destChars := width.Len()

	dest, rest, err := encode.Base57.Destringify(false, destChars, body)
	if err != nil {
		return "", err
	}

	out := `{"destination":"` + hexBig(&dest) + `"`

	if len(rest) > 0 && rest[0] != encode.Separator && rest[0] != encode.SeparatorAlt {
		amount, _, err := encode.Base57.Destringify(true, 0, rest)
		if err != nil {
			return "", err
		}
		out += `,"requested-amount":"` + hexBig(&amount) + `"`
	}

	return out + "}", nil
}
