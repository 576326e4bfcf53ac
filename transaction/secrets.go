// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package transaction

import (
	"errors"

	"github.com/luxfi/cclib/bigint"
	"github.com/luxfi/cclib/params"
	"github.com/luxfi/cclib/zkhash"
)

// receiveParams lifts the hash-relevant policy terms out of the full
// parameter set.
func receiveParams(p *SpendSecretParams) *zkhash.ReceiveSecretParams {
	return &zkhash.ReceiveSecretParams{
		EnforceSpendSpecWithSpendSecrets: p.EnforceSpendSpecWithSpendSecrets,
		EnforceSpendSpecWithTrustSecrets: p.EnforceSpendSpecWithTrustSecrets,
		RequiredSpendSpecHash:            p.RequiredSpendSpecHash,
		AllowMasterSecret:                p.AllowMasterSecret,
		AllowFreeze:                      p.AllowFreeze,
		AllowTrustUnfreeze:               p.AllowTrustUnfreeze,
		RequirePublicHashkey:             p.RequirePublicHashkey,
		RestrictAddresses:                p.RestrictAddresses,
		SpendLocktime:                    p.SpendLocktime,
		TrustLocktime:                    p.TrustLocktime,
		SpendDelaytime:                   p.SpendDelaytime,
		TrustDelaytime:                   p.TrustDelaytime,
	}
}

// ComputeOrVerifySecrets walks one slot's secret chain, deriving every
// missing link and, unless noPrecheck is set, verifying every supplied
// link against its derivation.
func ComputeOrVerifySecrets(p *SpendSecretParams, s *SpendSecret, noPrecheck bool) error {
	// root_secret = zkhash(master_secret)
	rootCheck := s.RootSecret
	if s.HaveMasterSecret {
		rootCheck = zkhash.RootSecret(s.MasterSecret)
	}
	if !s.HaveRootSecret {
		s.RootSecret = rootCheck
	} else if s.RootSecret != rootCheck && !noPrecheck {
		return errors.New("root-secret != zkhash(master-secret)")
	}
	s.HaveRootSecret = s.HaveRootSecret || s.HaveMasterSecret

	// spend_secret[0] = zkhash(root_secret, spend_secret_number)
	spendCheck := s.SpendSecret
	if s.HaveRootSecret {
		spendCheck = zkhash.SpendSecret(s.RootSecret, s.SpendSecretNumber)
	}
	if !s.HaveSpendSecret {
		s.SpendSecret = spendCheck
	} else if s.SpendSecret != spendCheck && !noPrecheck {
		return errors.New("spend-secret != zkhash(root-secret, spend-secret-number)")
	}
	s.HaveSpendSecret = s.HaveSpendSecret || s.HaveRootSecret

	// trust_secret[i] = zkhash(spend_secret[i])
	trustCheck := s.TrustSecret
	if s.HaveSpendSecret {
		trustCheck = zkhash.TrustSecret(s.SpendSecret)
	}
	if !s.HaveTrustSecret {
		s.TrustSecret = trustCheck
	} else if s.TrustSecret != trustCheck && !noPrecheck {
		return errors.New("trust-secret != zkhash(spend-secret)")
	}
	s.HaveTrustSecret = s.HaveTrustSecret || s.HaveSpendSecret

	// monitor_secret[i] = zkhash(trust_secret[i])
	monitorCheck := s.MonitorSecret
	if s.HaveTrustSecret {
		monitorCheck = zkhash.MonitorSecret(s.TrustSecret)
	}
	if !s.HaveMonitorSecret {
		s.MonitorSecret = monitorCheck
	} else if s.MonitorSecret != monitorCheck && !s.HaveRestrictedAddress && !noPrecheck {
		return errors.New("monitor-secret != zkhash(trust-secret)")
	}
	s.HaveMonitorSecret = s.HaveMonitorSecret || s.HaveTrustSecret

	// receive_secret binds monitor_secret[0] to the spend policy
	receiveCheck := s.ReceiveSecret
	if s.HaveMonitorSecret || !s.HaveReceiveSecret {
		receiveCheck = zkhash.ReceiveSecret(s.MonitorSecret, receiveParams(p))
	}
	if !s.HaveReceiveSecret {
		s.ReceiveSecret = receiveCheck
	} else if s.ReceiveSecret != receiveCheck && !noPrecheck {
		return errors.New("receive-secret != zkhash(monitor-secret)")
	}
	s.HaveReceiveSecret = true

	return nil
}

// RestrictedAddressSecretIndex maps a restricted address slot to the
// secret slot holding it. Addresses pack two per slot from the top of
// the slot array down.
func RestrictedAddressSecretIndex(slot uint) uint {
	return params.TxMaxSecretSlots - 1 - slot/2
}

// RestrictedAddressSlotOpen reports whether a restricted address slot is
// not occupied by a secret.
func RestrictedAddressSlotOpen(p *SpendSecretParams, slot uint) bool {
	secreti := RestrictedAddressSecretIndex(slot)
	return secreti >= uint(p.Nsecrets) && slot < uint(p.Nraddrs)
}

// SetRestrictedAddress stores a 128-bit address into its packed slot
// half.
func SetRestrictedAddress(secrets *SpendSecrets, slot uint, value *bigint.Big) {
	secreti := RestrictedAddressSecretIndex(slot)
	s := &secrets[secreti]
	s.HaveRestrictedAddress = true

	if slot&1 != 0 {
		// high half
		var v bigint.Big
		v.Set(value)
		bigint.ShiftUp(&v, params.TxInputBits/2)
		lo := s.MonitorSecret
		bigint.Mask(&lo, params.TxInputBits/2)
		v.Add(&v, &lo)
		s.MonitorSecret = v
	} else {
		hi := s.MonitorSecret
		bigint.ShiftDown(&hi, params.TxInputBits/2)
		bigint.ShiftUp(&hi, params.TxInputBits/2)
		var v bigint.Big
		v.Set(value)
		bigint.Mask(&v, params.TxInputBits/2)
		v.Add(&v, &hi)
		s.MonitorSecret = v
	}
}

// GetRestrictedAddress reads a packed restricted address slot.
func GetRestrictedAddress(secrets *SpendSecrets, slot uint) bigint.Big {
	secreti := RestrictedAddressSecretIndex(slot)
	v := secrets[secreti].MonitorSecret
	if slot&1 != 0 {
		bigint.ShiftDown(&v, params.TxInputBits/2)
	} else {
		bigint.Mask(&v, params.TxInputBits/2)
	}
	return v
}

// ComputeDestination derives the destination bound to an input's secret
// set and policy.
func ComputeDestination(p *SpendSecretParams, secrets *SpendSecrets) bigint.Big {
	var monitors [params.TxMaxSecretSlots]bigint.Big
	for j := range monitors {
		monitors[j] = secrets[j].MonitorSecret
	}

	return zkhash.Destination(secrets[0].ReceiveSecret, &monitors,
		&p.UseSpendSecret, &p.UseTrustSecret,
		p.RequiredSpendSecrets, p.RequiredTrustSecrets, p.Destnum)
}
