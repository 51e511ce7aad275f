/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package saturn

import (
	"github.com/google/uuid"

	"github.com/webpki/saturn-go/pkg/doc/json"
)

// Version is the version string embedded in software descriptors written by
// this module.
const Version = "1.00"

// Well-known software descriptor names for the Saturn actors.
const (
	SoftwareNamePayee    = "Saturn - Merchant"
	SoftwareNameProvider = "Saturn - Bank"
	SoftwareNameAcquirer = "Saturn - Acquirer"
	SoftwareNameWallet   = "Saturn - Wallet"
)

// Software describes the program that produced a message. It is purely
// informational and never trusted.
type Software struct {
	Name    string
	Version string
}

func writeSoftware(wr *json.Object, software Software) *json.Object {
	return wr.SetObject(softwareProperty, json.NewObject().
		SetString(nameProperty, software.Name).
		SetString(versionProperty, software.Version))
}

func parseSoftware(rd *json.Reader) (Software, error) {
	var software Software

	sub, err := rd.GetObject(softwareProperty)
	if err != nil {
		return software, err
	}

	if software.Name, err = sub.GetString(nameProperty); err != nil {
		return software, err
	}

	if software.Version, err = sub.GetString(versionProperty); err != nil {
		return software, err
	}

	return software, nil
}

// NewReferenceID returns a fresh unique reference id for an outbound message.
func NewReferenceID() string {
	return uuid.NewString()
}
